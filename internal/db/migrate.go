package db

import (
	"context"
	"fmt"

	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/logging"
	gormModels "github.com/So-lol/ace-website-sub001/internal/models/gorm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(gormModels.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// NormalizeFamilyHeads moves every legacy single-head value into
// family_roles and clears the column. Safe to run repeatedly.
func NormalizeFamilyHeads(ctx context.Context, gdb *gorm.DB) (int, error) {
	var legacy []gormModels.Family
	err := gdb.WithContext(ctx).
		Where("family_head_id IS NOT NULL AND family_head_id <> ''").
		Find(&legacy).Error
	if err != nil {
		return 0, fmt.Errorf("load legacy heads: %w", err)
	}

	migrated := 0
	for _, f := range legacy {
		err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			role := gormModels.FamilyRole{FamilyID: f.ID, UserID: *f.LegacyHeadID, Kind: constants.FamilyRoleHead}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&role).Error; err != nil {
				return err
			}
			return tx.Model(&gormModels.Family{}).
				Where("id = ?", f.ID).
				Update("family_head_id", nil).Error
		})
		if err != nil {
			return migrated, fmt.Errorf("normalize family %s: %w", f.ID, err)
		}
		migrated++
	}

	logging.Info("Family heads normalized", "families", migrated)
	return migrated, nil
}
