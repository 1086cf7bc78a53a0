package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/apperr"
	"github.com/So-lol/ace-website-sub001/internal/audit"
	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/db/repositories"
	"github.com/So-lol/ace-website-sub001/internal/docstore"
	"github.com/So-lol/ace-website-sub001/internal/metrics"
	"github.com/So-lol/ace-website-sub001/internal/models/docs"
	gormModels "github.com/So-lol/ace-website-sub001/internal/models/gorm"
)

// UserPatch is an admin edit. An empty FamilyID detaches the user.
type UserPatch struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	FamilyID *string `json:"familyId"`
}

type ProfilePatch struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
}

// UserService edits identities. The relational row is authoritative; the
// document mirror is written second and only logged when it fails.
type UserService struct {
	clock
	users    *repositories.UserRepositoryGORM
	families *repositories.FamilyRepository
	provider auth.Provisioner
	docs     docstore.Store
	trail    *audit.Trail
	metrics  *metrics.MetricsRegistry
}

func NewUserService(
	users *repositories.UserRepositoryGORM,
	families *repositories.FamilyRepository,
	provider auth.Provisioner,
	store docstore.Store,
	trail *audit.Trail,
	m *metrics.MetricsRegistry,
) *UserService {
	return &UserService{users: users, families: families, provider: provider, docs: store, trail: trail, metrics: m}
}

func (s *UserService) WithClock(now func() time.Time) *UserService {
	s.now = now
	return s
}

func (s *UserService) ListUsers(ctx context.Context, role string) ([]*auth.Identity, error) {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	var r constants.Role
	if role != "" {
		parsed, err := constants.ParseRole(role)
		if err != nil {
			return nil, apperr.Validation("%s", err.Error())
		}
		r = parsed
	}
	users, err := s.users.List(ctx, r)
	if err != nil {
		return nil, apperr.Store("list users", err)
	}
	out := make([]*auth.Identity, 0, len(users))
	for i := range users {
		out = append(out, auth.FromUser(&users[i]))
	}
	return out, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id string, p UserPatch) (*auth.Identity, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, apperr.Validation(constants.MsgNameRequired)
		}
		fields["name"] = name
	}
	if p.Role != nil {
		role, err := constants.ParseRole(*p.Role)
		if err != nil {
			return nil, apperr.Validation("%s", err.Error())
		}
		if id == actor.ID && role != constants.RoleAdmin {
			return nil, apperr.Validation("you cannot remove your own admin role")
		}
		fields["role"] = role
	}
	if p.FamilyID != nil {
		familyID := strings.TrimSpace(*p.FamilyID)
		if familyID == "" {
			fields["family_id"] = nil
		} else {
			if _, err := s.families.Get(ctx, familyID); err != nil {
				return nil, apperr.Store("load family", err)
			}
			fields["family_id"] = familyID
		}
	}
	if len(fields) == 0 {
		return nil, apperr.Validation("nothing to update")
	}

	if err := s.users.Update(ctx, id, fields); err != nil {
		return nil, apperr.Store("update user", err)
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Store("reload user", err)
	}
	s.mirror(ctx, user)

	changed := make([]string, 0, len(fields))
	for k := range fields {
		changed = append(changed, k)
	}
	return auth.FromUser(user), s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     constants.ActionUserUpdated,
		TargetType: constants.TargetUser,
		TargetID:   id,
		Details:    fmt.Sprintf("Updated user %s", user.Email),
		Metadata:   map[string]any{"fields": changed},
	})
}

// DeleteUser revokes the identity provider account, then removes the
// relational row and the mirror. Pairings that reference the user are left
// for manual clean-up.
func (s *UserService) DeleteUser(ctx context.Context, id string) (map[string]string, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if id == actor.ID {
		return nil, apperr.Validation("you cannot delete your own account")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Store("load user", err)
	}
	if user.ExternalUID != nil {
		if err := s.provider.DeleteUser(ctx, *user.ExternalUID); err != nil {
			return nil, apperr.Store("delete identity account", err)
		}
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return nil, apperr.Store("delete user", err)
	}
	bestEffort(s.metrics, "user_mirror_delete", s.docs.Delete(ctx, constants.CollectionUserMirrors, id), "user_id", id)

	return map[string]string{"id": id}, s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     constants.ActionUserDeleted,
		TargetType: constants.TargetUser,
		TargetID:   id,
		Details:    fmt.Sprintf("Deleted user %s", user.Email),
		Metadata:   map[string]any{"email": user.Email, "role": user.Role},
	})
}

// UpdateOwnProfile lets any signed-in user change their own name and avatar.
func (s *UserService) UpdateOwnProfile(ctx context.Context, p ProfilePatch) (*auth.Identity, error) {
	me, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, apperr.Validation(constants.MsgNameRequired)
		}
		fields["name"] = name
	}
	if p.AvatarURL != nil {
		avatar := strings.TrimSpace(*p.AvatarURL)
		if avatar == "" {
			fields["avatar_url"] = nil
		} else {
			fields["avatar_url"] = avatar
		}
	}
	if len(fields) == 0 {
		return nil, apperr.Validation("nothing to update")
	}

	if err := s.users.Update(ctx, me.ID, fields); err != nil {
		return nil, apperr.Store("update profile", err)
	}
	user, err := s.users.GetByID(ctx, me.ID)
	if err != nil {
		return nil, apperr.Store("reload profile", err)
	}
	s.mirror(ctx, user)
	return auth.FromUser(user), nil
}

func (s *UserService) mirror(ctx context.Context, u *gormModels.User) {
	err := s.docs.Set(ctx, constants.CollectionUserMirrors, u.ID, mirrorOf(u, s.Now()))
	bestEffort(s.metrics, "user_mirror_write", err, "user_id", u.ID)
}

func mirrorOf(u *gormModels.User, now time.Time) docs.UserMirror {
	return docs.UserMirror{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		FamilyID:  u.FamilyID,
		AvatarURL: u.AvatarURL,
		UpdatedAt: now,
	}
}
