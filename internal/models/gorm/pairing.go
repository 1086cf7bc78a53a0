package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Pairing struct {
	ID        string    `gorm:"column:id;primaryKey"`
	FamilyID  string    `gorm:"column:family_id;index"`
	MentorID  string    `gorm:"column:mentor_id;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	Mentor  User            `gorm:"foreignKey:MentorID"`
	Family  Family          `gorm:"foreignKey:FamilyID"`
	Mentees []PairingMentee `gorm:"foreignKey:PairingID"`
}

// TableName specifies the table name for GORM
func (Pairing) TableName() string {
	return "pairings"
}

func (p *Pairing) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// MenteeIDs flattens the association rows.
func (p *Pairing) MenteeIDs() []string {
	ids := make([]string, 0, len(p.Mentees))
	for _, m := range p.Mentees {
		ids = append(ids, m.MenteeID)
	}
	return ids
}

type PairingMentee struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement"`
	PairingID string `gorm:"column:pairing_id;uniqueIndex:idx_pairing_mentee"`
	MenteeID  string `gorm:"column:mentee_id;uniqueIndex:idx_pairing_mentee"`

	Mentee User `gorm:"foreignKey:MenteeID"`
}

// TableName specifies the table name for GORM
func (PairingMentee) TableName() string {
	return "pairing_mentees"
}

// All lists the relational models in migration order.
func All() []any {
	return []any{&User{}, &Family{}, &FamilyRole{}, &Pairing{}, &PairingMentee{}}
}
