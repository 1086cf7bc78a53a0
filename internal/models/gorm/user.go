package gorm

import (
	"time"

	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID          string         `gorm:"column:id;primaryKey"`
	ExternalUID *string        `gorm:"column:external_uid;uniqueIndex"`
	Email       string         `gorm:"column:email;uniqueIndex;not null"`
	Name        string         `gorm:"column:name"`
	Role        constants.Role `gorm:"column:role;type:varchar(16);not null"`
	FamilyID    *string        `gorm:"column:family_id;index"`
	AvatarURL   *string        `gorm:"column:avatar_url"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
