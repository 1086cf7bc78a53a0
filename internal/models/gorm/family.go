package gorm

import (
	"time"

	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Family struct {
	ID         string `gorm:"column:id;primaryKey"`
	Name       string `gorm:"column:name;not null"`
	IsArchived bool   `gorm:"column:is_archived;default:false"`
	// LegacyHeadID is the pre-multi-head column. It is only read by the
	// normalization migration and cleared by every head-list update.
	LegacyHeadID *string   `gorm:"column:family_head_id"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	Roles    []FamilyRole `gorm:"foreignKey:FamilyID"`
	Pairings []Pairing    `gorm:"foreignKey:FamilyID"`
}

// TableName specifies the table name for GORM
func (Family) TableName() string {
	return "families"
}

func (f *Family) BeforeCreate(*gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// UserIDs returns the ids holding the given kind of role, in insertion order.
func (f *Family) UserIDs(kind constants.FamilyRoleKind) []string {
	ids := make([]string, 0, len(f.Roles))
	for _, r := range f.Roles {
		if r.Kind == kind {
			ids = append(ids, r.UserID)
		}
	}
	return ids
}

// FamilyRole links a user to a family as a head or an aunt/uncle.
type FamilyRole struct {
	ID       uint                     `gorm:"column:id;primaryKey;autoIncrement"`
	FamilyID string                   `gorm:"column:family_id;index;uniqueIndex:idx_family_role_user"`
	UserID   string                   `gorm:"column:user_id;uniqueIndex:idx_family_role_user"`
	Kind     constants.FamilyRoleKind `gorm:"column:kind;type:varchar(16);uniqueIndex:idx_family_role_user"`
}

// TableName specifies the table name for GORM
func (FamilyRole) TableName() string {
	return "family_roles"
}
