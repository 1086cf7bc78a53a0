package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/So-lol/ace-website-sub001/internal/apperr"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	gormModels "github.com/So-lol/ace-website-sub001/internal/models/gorm"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrPairingFull is returned when a mentee would exceed the per-pairing cap.
var ErrPairingFull = apperr.Validation(constants.MsgPairingFull)

type PairingRepository struct {
	db *gorm.DB
}

func NewPairingRepository(db *gorm.DB) *PairingRepository {
	return &PairingRepository{db: db}
}

// Create writes the pairing and its mentee rows together.
func (r *PairingRepository) Create(ctx context.Context, pairing *gormModels.Pairing, menteeIDs []string) error {
	if len(menteeIDs) == 0 {
		return apperr.Validation(constants.MsgPairingNeedsMentee)
	}
	if len(menteeIDs) > constants.MaxMenteesPerPairing {
		return ErrPairingFull
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(pairing).Error; err != nil {
			return fmt.Errorf("failed to create pairing: %w", err)
		}
		rows := make([]gormModels.PairingMentee, 0, len(menteeIDs))
		for _, id := range menteeIDs {
			rows = append(rows, gormModels.PairingMentee{PairingID: pairing.ID, MenteeID: id})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to add mentees: %w", err)
		}
		pairing.Mentees = rows
		return nil
	})
}

// GetWithRelations loads the pairing with its mentor, mentees and family.
func (r *PairingRepository) GetWithRelations(ctx context.Context, id string) (*gormModels.Pairing, error) {
	var pairing gormModels.Pairing

	err := r.db.WithContext(ctx).
		Preload("Mentor").
		Preload("Mentees", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Mentees.Mentee").
		Preload("Family").
		Where("id = ?", id).
		First(&pairing).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("pairing")
		}
		return nil, fmt.Errorf("failed to fetch pairing: %w", err)
	}
	return &pairing, nil
}

// Get loads the bare pairing row.
func (r *PairingRepository) Get(ctx context.Context, id string) (*gormModels.Pairing, error) {
	var pairing gormModels.Pairing
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&pairing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("pairing")
		}
		return nil, fmt.Errorf("failed to fetch pairing: %w", err)
	}
	return &pairing, nil
}

func (r *PairingRepository) ListByFamily(ctx context.Context, familyID string) ([]gormModels.Pairing, error) {
	var pairings []gormModels.Pairing
	q := r.db.WithContext(ctx).
		Preload("Mentor").
		Preload("Mentees", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Mentees.Mentee").
		Order("created_at")
	if familyID != "" {
		q = q.Where("family_id = ?", familyID)
	}
	if err := q.Find(&pairings).Error; err != nil {
		return nil, fmt.Errorf("failed to list pairings: %w", err)
	}
	return pairings, nil
}

// FindByParticipant returns the first pairing where userID is the mentor or
// a mentee.
func (r *PairingRepository) FindByParticipant(ctx context.Context, userID string) (*gormModels.Pairing, error) {
	var pairing gormModels.Pairing
	err := r.db.WithContext(ctx).
		Where("mentor_id = ?", userID).
		Or("id IN (?)", r.db.Model(&gormModels.PairingMentee{}).Select("pairing_id").Where("mentee_id = ?", userID)).
		Order("created_at").
		First(&pairing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("pairing")
		}
		return nil, fmt.Errorf("failed to find pairing: %w", err)
	}
	return &pairing, nil
}

// AddMentee enforces the two-mentee cap under a row lock on the pairing.
func (r *PairingRepository) AddMentee(ctx context.Context, pairingID, menteeID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pairing gormModels.Pairing
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", pairingID).First(&pairing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("pairing")
			}
			return fmt.Errorf("failed to lock pairing: %w", err)
		}

		var mentees []gormModels.PairingMentee
		if err := tx.Where("pairing_id = ?", pairingID).Find(&mentees).Error; err != nil {
			return fmt.Errorf("failed to load mentees: %w", err)
		}
		for _, m := range mentees {
			if m.MenteeID == menteeID {
				return apperr.Validation("mentee is already in this pairing")
			}
		}
		if len(mentees) >= constants.MaxMenteesPerPairing {
			return ErrPairingFull
		}

		if err := tx.Create(&gormModels.PairingMentee{PairingID: pairingID, MenteeID: menteeID}).Error; err != nil {
			return fmt.Errorf("failed to add mentee: %w", err)
		}
		return nil
	})
}

// RemoveMentee refuses to leave a pairing without mentees.
func (r *PairingRepository) RemoveMentee(ctx context.Context, pairingID, menteeID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&gormModels.PairingMentee{}).Where("pairing_id = ?", pairingID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count mentees: %w", err)
		}
		res := tx.Where("pairing_id = ? AND mentee_id = ?", pairingID, menteeID).Delete(&gormModels.PairingMentee{})
		if res.Error != nil {
			return fmt.Errorf("failed to remove mentee: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("mentee in pairing")
		}
		if count <= 1 {
			return apperr.Validation(constants.MsgPairingNeedsMentee)
		}
		return nil
	})
}

func (r *PairingRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pairing_id = ?", id).Delete(&gormModels.PairingMentee{}).Error; err != nil {
			return fmt.Errorf("failed to delete mentees: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&gormModels.Pairing{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete pairing: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("pairing")
		}
		return nil
	})
}
