package constants

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Role mirrors the `role` column of the users table.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMentor Role = "MENTOR"
	RoleMentee Role = "MENTEE"
)

// Stringer ­– convenient for fmt / logs
func (r Role) String() string { return string(r) }

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMentor, RoleMentee:
		return true
	}
	return false
}

// ParseRole accepts any casing, e.g. "mentor" from an import sheet.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

/* ---------- DB adapters so gorm / sqlx scan and write cleanly ---------- */

// Scan implements the sql.Scanner interface
func (r *Role) Scan(src interface{}) error {
	if src == nil {
		*r = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*r = Role(v)
	case []byte:
		*r = Role(v)
	default:
		return fmt.Errorf("Role: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (r Role) Value() (driver.Value, error) { return string(r), nil }

// FamilyRoleKind is the kind of a family_roles row.
type FamilyRoleKind string

const (
	FamilyRoleHead       FamilyRoleKind = "HEAD"
	FamilyRoleAuntUncle  FamilyRoleKind = "AUNT_UNCLE"
	MaxMenteesPerPairing                = 2
)
