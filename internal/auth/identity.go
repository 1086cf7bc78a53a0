package auth

import (
	"github.com/So-lol/ace-website-sub001/internal/constants"
	gormModels "github.com/So-lol/ace-website-sub001/internal/models/gorm"
)

// Identity is the caller resolved for the current request. It is never
// carried across requests.
type Identity struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	Role      constants.Role `json:"role"`
	FamilyID  *string        `json:"familyId,omitempty"`
	AvatarURL *string        `json:"avatarUrl,omitempty"`
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == constants.RoleAdmin
}

// DisplayName falls back to the email when no name was recorded.
func (i *Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Email
}

func FromUser(u *gormModels.User) *Identity {
	return &Identity{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		FamilyID:  u.FamilyID,
		AvatarURL: u.AvatarURL,
	}
}
