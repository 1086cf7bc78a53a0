package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/So-lol/ace-website-sub001/internal/apperr"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	gormModels "github.com/So-lol/ace-website-sub001/internal/models/gorm"

	"gorm.io/gorm"
)

// FamilyRepository manages families and their head / aunt-uncle roles
type FamilyRepository struct {
	db *gorm.DB
}

func NewFamilyRepository(db *gorm.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// FamilyUpdate carries optional changes; nil fields are left alone.
type FamilyUpdate struct {
	Name         *string
	IsArchived   *bool
	HeadIDs      *[]string
	AuntUncleIDs *[]string
}

func (r *FamilyRepository) Create(ctx context.Context, family *gormModels.Family, headIDs, auntUncleIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Roles", "Pairings").Create(family).Error; err != nil {
			return fmt.Errorf("failed to create family: %w", err)
		}
		if err := replaceRoles(tx, family.ID, constants.FamilyRoleHead, headIDs); err != nil {
			return err
		}
		return replaceRoles(tx, family.ID, constants.FamilyRoleAuntUncle, auntUncleIDs)
	})
}

func (r *FamilyRepository) Get(ctx context.Context, id string) (*gormModels.Family, error) {
	var family gormModels.Family

	err := r.db.WithContext(ctx).
		Preload("Roles", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id = ?", id).
		First(&family).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("family")
		}
		return nil, fmt.Errorf("failed to fetch family: %w", err)
	}
	return &family, nil
}

func (r *FamilyRepository) List(ctx context.Context, includeArchived bool) ([]gormModels.Family, error) {
	var families []gormModels.Family
	q := r.db.WithContext(ctx).
		Preload("Roles", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("name")
	if !includeArchived {
		q = q.Where("is_archived = ?", false)
	}
	if err := q.Find(&families).Error; err != nil {
		return nil, fmt.Errorf("failed to list families: %w", err)
	}
	return families, nil
}

// Update applies u in one transaction. A head list always clears the legacy
// single-head column so the two representations cannot diverge.
func (r *FamilyRepository) Update(ctx context.Context, id string, u FamilyUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&gormModels.Family{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to fetch family: %w", err)
		}
		if count == 0 {
			return apperr.NotFound("family")
		}

		fields := map[string]any{}
		if u.Name != nil {
			fields["name"] = *u.Name
		}
		if u.IsArchived != nil {
			fields["is_archived"] = *u.IsArchived
		}
		if u.HeadIDs != nil {
			fields["family_head_id"] = nil
		}
		if len(fields) > 0 {
			if err := tx.Model(&gormModels.Family{}).Where("id = ?", id).Updates(fields).Error; err != nil {
				return fmt.Errorf("failed to update family: %w", err)
			}
		}

		if u.HeadIDs != nil {
			if err := replaceRoles(tx, id, constants.FamilyRoleHead, *u.HeadIDs); err != nil {
				return err
			}
		}
		if u.AuntUncleIDs != nil {
			if err := replaceRoles(tx, id, constants.FamilyRoleAuntUncle, *u.AuntUncleIDs); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the family and its role rows and detaches its users.
// Pairings that still reference it are left in place.
func (r *FamilyRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&gormModels.Family{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete family: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("family")
		}
		if err := tx.Where("family_id = ?", id).Delete(&gormModels.FamilyRole{}).Error; err != nil {
			return fmt.Errorf("failed to delete family roles: %w", err)
		}
		err := tx.Model(&gormModels.User{}).
			Where("family_id = ?", id).
			Update("family_id", nil).Error
		if err != nil {
			return fmt.Errorf("failed to detach family users: %w", err)
		}
		return nil
	})
}

func replaceRoles(tx *gorm.DB, familyID string, kind constants.FamilyRoleKind, userIDs []string) error {
	err := tx.Where("family_id = ? AND kind = ?", familyID, kind).Delete(&gormModels.FamilyRole{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear %s roles: %w", kind, err)
	}

	seen := make(map[string]bool, len(userIDs))
	rows := make([]gormModels.FamilyRole, 0, len(userIDs))
	for _, uid := range userIDs {
		if uid == "" || seen[uid] {
			continue
		}
		seen[uid] = true
		rows = append(rows, gormModels.FamilyRole{FamilyID: familyID, UserID: uid, Kind: kind})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to write %s roles: %w", kind, err)
	}
	return nil
}
