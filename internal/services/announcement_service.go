package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/apperr"
	"github.com/So-lol/ace-website-sub001/internal/audit"
	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/docstore"
	"github.com/So-lol/ace-website-sub001/internal/models/docs"
	"github.com/google/uuid"
)

type AnnouncementInput struct {
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	IsPublished bool       `json:"isPublished"`
	IsPinned    bool       `json:"isPinned"`
	PublishedAt *time.Time `json:"publishedAt"`
}

type AnnouncementPatch struct {
	Title       *string    `json:"title"`
	Content     *string    `json:"content"`
	IsPublished *bool      `json:"isPublished"`
	IsPinned    *bool      `json:"isPinned"`
	PublishedAt *time.Time `json:"publishedAt"`
}

type AnnouncementService struct {
	clock
	docs  docstore.Store
	trail *audit.Trail
}

func NewAnnouncementService(store docstore.Store, trail *audit.Trail) *AnnouncementService {
	return &AnnouncementService{docs: store, trail: trail}
}

func (s *AnnouncementService) WithClock(now func() time.Time) *AnnouncementService {
	s.now = now
	return s
}

// setPublished applies the publish rules: an explicit date always wins,
// otherwise the first publish stamps now and later publishes keep it.
// Unpublishing clears the date.
func setPublished(a *docs.Announcement, publish bool, explicit *time.Time, now time.Time) {
	if !publish {
		a.IsPublished = false
		a.PublishedAt = nil
		return
	}
	a.IsPublished = true
	switch {
	case explicit != nil:
		t := explicit.UTC()
		a.PublishedAt = &t
	case a.PublishedAt == nil:
		a.PublishedAt = &now
	}
}

func (s *AnnouncementService) CreateAnnouncement(ctx context.Context, in AnnouncementInput) (*docs.Announcement, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validation(constants.MsgTitleRequired)
	}

	now := s.Now()
	a := docs.Announcement{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   strings.TrimSpace(in.Content),
		IsPinned:  in.IsPinned,
		AuthorID:  actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	setPublished(&a, in.IsPublished, in.PublishedAt, now)

	if err := s.docs.Set(ctx, constants.CollectionAnnouncements, a.ID, a); err != nil {
		return nil, apperr.Store("create announcement", err)
	}
	return &a, s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     constants.ActionAnnouncementCreate,
		TargetType: constants.TargetAnnouncement,
		TargetID:   a.ID,
		Details:    fmt.Sprintf("Created announcement %q", title),
		Metadata:   map[string]any{"isPublished": a.IsPublished, "isPinned": a.IsPinned},
	})
}

func (s *AnnouncementService) UpdateAnnouncement(ctx context.Context, id string, p AnnouncementPatch) (*docs.Announcement, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return nil, apperr.Validation(constants.MsgTitleRequired)
	}

	now := s.Now()
	var out docs.Announcement
	err = s.docs.RunTransaction(ctx, constants.CollectionAnnouncements, id, func(current json.RawMessage) (any, error) {
		var a docs.Announcement
		exists, err := docstore.Decode(current, &a)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, docstore.ErrNotFound
		}

		if p.Title != nil {
			a.Title = strings.TrimSpace(*p.Title)
		}
		if p.Content != nil {
			a.Content = strings.TrimSpace(*p.Content)
		}
		if p.IsPinned != nil {
			a.IsPinned = *p.IsPinned
		}
		switch {
		case p.IsPublished != nil:
			setPublished(&a, *p.IsPublished, p.PublishedAt, now)
		case p.PublishedAt != nil && a.IsPublished:
			setPublished(&a, true, p.PublishedAt, now)
		}
		a.UpdatedAt = now
		out = a
		return a, nil
	})
	if err != nil {
		return nil, docErr("update announcement", "announcement", err)
	}

	return &out, s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     constants.ActionAnnouncementUpdate,
		TargetType: constants.TargetAnnouncement,
		TargetID:   id,
		Details:    fmt.Sprintf("Updated announcement %q", out.Title),
		Metadata:   map[string]any{"isPublished": out.IsPublished, "isPinned": out.IsPinned},
	})
}

func (s *AnnouncementService) DeleteAnnouncement(ctx context.Context, id string) (map[string]string, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	var a docs.Announcement
	if err := s.docs.Get(ctx, constants.CollectionAnnouncements, id, &a); err != nil {
		return nil, docErr("load announcement", "announcement", err)
	}
	if err := s.docs.Delete(ctx, constants.CollectionAnnouncements, id); err != nil {
		return nil, apperr.Store("delete announcement", err)
	}

	return map[string]string{"id": id}, s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     constants.ActionAnnouncementDelete,
		TargetType: constants.TargetAnnouncement,
		TargetID:   id,
		Details:    fmt.Sprintf("Deleted announcement %q", a.Title),
	})
}

// ListAnnouncements returns pinned announcements first, then newest first.
// Anyone signed in may read published ones; drafts are for admins.
func (s *AnnouncementService) ListAnnouncements(ctx context.Context, publishedOnly bool) ([]docs.Announcement, error) {
	if publishedOnly {
		if _, err := auth.RequireAuth(ctx); err != nil {
			return nil, err
		}
	} else if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	q := docstore.Query{}
	if publishedOnly {
		q.Filters = []docstore.Filter{{Field: "isPublished", Value: true}}
	}
	list, err := docstore.FindAs[docs.Announcement](ctx, s.docs, constants.CollectionAnnouncements, q)
	if err != nil {
		return nil, apperr.Store("list announcements", err)
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].IsPinned != list[j].IsPinned {
			return list[i].IsPinned
		}
		return sortTime(list[i]).After(sortTime(list[j]))
	})
	return list, nil
}

func sortTime(a docs.Announcement) time.Time {
	if a.PublishedAt != nil {
		return *a.PublishedAt
	}
	return a.CreatedAt
}
