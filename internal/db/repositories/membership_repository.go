package repositories

import (
	"context"
	"fmt"

	"github.com/So-lol/ace-website-sub001/internal/constants"

	"github.com/jmoiron/sqlx"
)

// PairingMembers is one pairing's participants.
type PairingMembers struct {
	PairingID string
	MentorID  string
	MenteeIDs []string
}

// MembershipSources are the three relations a family's membership derives from.
type MembershipSources struct {
	HeadIDs      []string
	AuntUncleIDs []string
	Pairings     []PairingMembers
}

// MembershipReader reads membership sources with plain SQL; the queries are
// rebound for whichever driver the handle uses.
type MembershipReader struct {
	db *sqlx.DB
}

func NewMembershipReader(db *sqlx.DB) *MembershipReader {
	return &MembershipReader{db: db}
}

type roleRow struct {
	UserID string `db:"user_id"`
	Kind   string `db:"kind"`
}

type pairingRow struct {
	PairingID string `db:"pairing_id"`
	MentorID  string `db:"mentor_id"`
	MenteeID  string `db:"mentee_id"`
}

func (r *MembershipReader) Sources(ctx context.Context, familyID string) (*MembershipSources, error) {
	var roles []roleRow
	if err := r.db.SelectContext(ctx, &roles, r.db.Rebind(constants.SelectFamilyRoles), familyID); err != nil {
		return nil, fmt.Errorf("failed to read family roles: %w", err)
	}

	var rows []pairingRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(constants.SelectFamilyPairingMembers), familyID); err != nil {
		return nil, fmt.Errorf("failed to read pairing members: %w", err)
	}

	src := &MembershipSources{}
	for _, role := range roles {
		switch constants.FamilyRoleKind(role.Kind) {
		case constants.FamilyRoleHead:
			src.HeadIDs = append(src.HeadIDs, role.UserID)
		case constants.FamilyRoleAuntUncle:
			src.AuntUncleIDs = append(src.AuntUncleIDs, role.UserID)
		}
	}

	index := map[string]int{}
	for _, row := range rows {
		i, ok := index[row.PairingID]
		if !ok {
			i = len(src.Pairings)
			index[row.PairingID] = i
			src.Pairings = append(src.Pairings, PairingMembers{PairingID: row.PairingID, MentorID: row.MentorID})
		}
		if row.MenteeID != "" {
			src.Pairings[i].MenteeIDs = append(src.Pairings[i].MenteeIDs, row.MenteeID)
		}
	}
	return src, nil
}

// Ping is used by the health check.
func (r *MembershipReader) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
