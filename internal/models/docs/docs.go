// Package docs holds the entities owned by the document store.
package docs

import (
	"time"

	"github.com/So-lol/ace-website-sub001/internal/constants"
)

// PairingPoints is the point tally of one pairing, keyed by pairing id.
type PairingPoints struct {
	PairingID    string    `json:"pairingId"`
	FamilyID     string    `json:"familyId"`
	TotalPoints  int       `json:"totalPoints"`
	WeeklyPoints int       `json:"weeklyPoints"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Submission struct {
	ID               string                     `json:"id"`
	SubmitterID      string                     `json:"submitterId"`
	PairingID        string                     `json:"pairingId,omitempty"`
	ImageURL         string                     `json:"imageUrl"`
	ImagePath        string                     `json:"imagePath"`
	Status           constants.SubmissionStatus `json:"status"`
	BonusActivityIDs []string                   `json:"bonusActivityIds,omitempty"`
	WeekNumber       int                        `json:"weekNumber"`
	Year             int                        `json:"year"`
	TotalPoints      int                        `json:"totalPoints"`
	IsArchived       bool                       `json:"isArchived"`
	ArchivedAt       *time.Time                 `json:"archivedAt"`
	ReviewedBy       string                     `json:"reviewedBy,omitempty"`
	ReviewedAt       *time.Time                 `json:"reviewedAt,omitempty"`
	CreatedAt        time.Time                  `json:"createdAt"`
	UpdatedAt        time.Time                  `json:"updatedAt"`
}

type BonusActivity struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Announcement struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	IsPublished bool       `json:"isPublished"`
	IsPinned    bool       `json:"isPinned"`
	PublishedAt *time.Time `json:"publishedAt"`
	AuthorID    string     `json:"authorId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// UserMirror is the document-store copy of a relational user.
type UserMirror struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	Role      constants.Role `json:"role"`
	FamilyID  *string        `json:"familyId"`
	AvatarURL *string        `json:"avatarUrl"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type AuditLogEntry struct {
	ID         string                `json:"id"`
	ActorID    string                `json:"actorId"`
	ActorEmail string                `json:"actorEmail,omitempty"`
	Action     constants.AuditAction `json:"action"`
	TargetType string                `json:"targetType"`
	TargetID   string                `json:"targetId"`
	Details    string                `json:"details"`
	Metadata   map[string]any        `json:"metadata,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

type RateLimitBucket struct {
	Key       string    `json:"key"`
	Count     int       `json:"count"`
	ResetAt   time.Time `json:"resetAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
