package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/apperr"
	"github.com/So-lol/ace-website-sub001/internal/audit"
	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/common"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/db/repositories"
	"github.com/So-lol/ace-website-sub001/internal/docstore"
	"github.com/So-lol/ace-website-sub001/internal/logging"
	"github.com/So-lol/ace-website-sub001/internal/metrics"
	"github.com/So-lol/ace-website-sub001/internal/models/docs"
	gormModels "github.com/So-lol/ace-website-sub001/internal/models/gorm"
	"golang.org/x/sync/errgroup"
)

// resolveConcurrency bounds parallel email lookups during a pairing import.
const resolveConcurrency = 8

type UserImportRow struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type PairingImportRow struct {
	FamilyName   string   `json:"familyName"`
	MentorEmail  string   `json:"mentorEmail"`
	MenteeEmails []string `json:"menteeEmails"`
}

// ImportResult accumulates per-row outcomes; one bad row never stops the rest.
type ImportResult struct {
	Created  int      `json:"created"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (r *ImportResult) fail(row int, format string, args ...any) {
	r.Failed++
	r.Errors = append(r.Errors, fmt.Sprintf("Row %d: %s", row, fmt.Sprintf(format, args...)))
}

func (r *ImportResult) warn(row int, format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf("Row %d: %s", row, fmt.Sprintf(format, args...)))
}

type ImportService struct {
	clock
	users    *repositories.UserRepositoryGORM
	families *repositories.FamilyRepository
	pairings *repositories.PairingRepository
	provider auth.Provisioner
	docs     docstore.Store
	trail    *audit.Trail
	metrics  *metrics.MetricsRegistry
}

func NewImportService(
	users *repositories.UserRepositoryGORM,
	families *repositories.FamilyRepository,
	pairings *repositories.PairingRepository,
	provider auth.Provisioner,
	store docstore.Store,
	trail *audit.Trail,
	m *metrics.MetricsRegistry,
) *ImportService {
	return &ImportService{
		users:    users,
		families: families,
		pairings: pairings,
		provider: provider,
		docs:     store,
		trail:    trail,
		metrics:  m,
	}
}

func (s *ImportService) WithClock(now func() time.Time) *ImportService {
	s.now = now
	return s
}

// ImportUsers creates an identity provider account and a relational user per
// row, and queues the document mirrors into a single batch.
func (s *ImportService) ImportUsers(ctx context.Context, rows []UserImportRow) (*ImportResult, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{Errors: []string{}, Warnings: []string{}}
	batch := docstore.NewBatch()
	seen := map[string]int{}
	now := s.Now()

	for i, row := range rows {
		n := i + 1
		email := common.NormalizeEmail(row.Email)
		name := strings.TrimSpace(row.Name)

		if !strings.Contains(email, "@") {
			res.fail(n, "invalid email %q", row.Email)
			continue
		}
		if name == "" {
			res.fail(n, "name is required")
			continue
		}
		role, err := constants.ParseRole(row.Role)
		if err != nil {
			res.fail(n, "%s", err.Error())
			continue
		}
		if first, dup := seen[email]; dup {
			res.fail(n, "duplicate of row %d (%s)", first, email)
			continue
		}
		seen[email] = n

		_, err = s.users.GetByEmail(ctx, email)
		if err == nil {
			res.fail(n, "a user with email %s already exists", email)
			continue
		}
		if apperr.KindOf(err) != apperr.KindNotFound {
			logging.Error("User import lookup failed", "row", n, "error", err.Error())
			res.fail(n, "could not check for an existing user")
			continue
		}

		subject, err := s.provider.CreateUser(ctx, email, name)
		if err != nil {
			logging.Error("User import account creation failed", "row", n, "error", err.Error())
			res.fail(n, "could not create sign-in account")
			continue
		}
		user := &gormModels.User{ExternalUID: &subject, Email: email, Name: name, Role: role}
		if err := s.users.Create(ctx, user); err != nil {
			logging.Error("User import write failed", "row", n, "error", err.Error())
			bestEffort(s.metrics, "import_account_rollback", s.provider.DeleteUser(ctx, subject), "row", n)
			res.fail(n, "could not save user")
			continue
		}

		batch.Set(constants.CollectionUserMirrors, user.ID, mirrorOf(user, now))
		res.Created++
	}

	s.commit(ctx, batch, res)
	return res, s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     constants.ActionUsersImported,
		TargetType: constants.TargetImport,
		TargetID:   "users",
		Details:    fmt.Sprintf("Imported %s, %d failed", plural(res.Created, "user"), res.Failed),
		Metadata:   map[string]any{"created": res.Created, "failed": res.Failed, "rows": len(rows)},
	})
}

// ImportPairings resolves every email up front, concurrently, then writes
// rows one at a time. A row keeps the mentees that resolved; it fails only
// when none did.
func (s *ImportService) ImportPairings(ctx context.Context, rows []PairingImportRow) (*ImportResult, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	families, err := s.families.List(ctx, true)
	if err != nil {
		return nil, apperr.Store("list families", err)
	}
	familyByName := make(map[string]string, len(families))
	for _, f := range families {
		familyByName[strings.ToLower(strings.TrimSpace(f.Name))] = f.ID
	}

	resolved, err := s.resolveEmails(ctx, rows)
	if err != nil {
		return nil, apperr.Store("resolve import emails", err)
	}

	res := &ImportResult{Errors: []string{}, Warnings: []string{}}
	batch := docstore.NewBatch()
	now := s.Now()

	for i, row := range rows {
		n := i + 1

		familyID, ok := familyByName[strings.ToLower(strings.TrimSpace(row.FamilyName))]
		if !ok {
			res.fail(n, "family %q not found", row.FamilyName)
			continue
		}
		mentorEmail := common.NormalizeEmail(row.MentorEmail)
		mentor := resolved[mentorEmail]
		if mentor == nil {
			res.fail(n, "mentor %q not found", row.MentorEmail)
			continue
		}

		mentees := []string{}
		for _, raw := range row.MenteeEmails {
			email := common.NormalizeEmail(raw)
			if email == "" {
				continue
			}
			m := resolved[email]
			if m == nil {
				res.warn(n, "mentee %q not found, skipped", raw)
				continue
			}
			if m.ID == mentor.ID {
				res.warn(n, "mentee %q is the mentor, skipped", raw)
				continue
			}
			mentees = append(mentees, m.ID)
		}
		mentees = common.DedupeStrings(mentees)
		if len(mentees) == 0 {
			res.fail(n, "no mentees could be resolved")
			continue
		}

		pairing := &gormModels.Pairing{FamilyID: familyID, MentorID: mentor.ID}
		if err := s.pairings.Create(ctx, pairing, mentees); err != nil {
			if msg, ok := apperr.PublicMessage(err); ok {
				res.fail(n, "%s", msg)
			} else {
				logging.Error("Pairing import write failed", "row", n, "error", err.Error())
				res.fail(n, "could not save pairing")
			}
			continue
		}

		batch.Set(constants.CollectionPairingPoints, pairing.ID, docs.PairingPoints{
			PairingID: pairing.ID,
			FamilyID:  familyID,
			UpdatedAt: now,
		})
		res.Created++
	}

	s.commit(ctx, batch, res)
	return res, s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     constants.ActionPairingsImported,
		TargetType: constants.TargetImport,
		TargetID:   "pairings",
		Details:    fmt.Sprintf("Imported %s, %d failed", plural(res.Created, "pairing"), res.Failed),
		Metadata: map[string]any{
			"created":  res.Created,
			"failed":   res.Failed,
			"warnings": len(res.Warnings),
			"rows":     len(rows),
		},
	})
}

// resolveEmails looks up every distinct email in rows. Unknown emails map to
// nil; any other lookup error aborts before anything is written.
func (s *ImportService) resolveEmails(ctx context.Context, rows []PairingImportRow) (map[string]*gormModels.User, error) {
	emails := []string{}
	for _, row := range rows {
		emails = append(emails, common.NormalizeEmail(row.MentorEmail))
		for _, e := range row.MenteeEmails {
			emails = append(emails, common.NormalizeEmail(e))
		}
	}
	emails = common.DedupeStrings(emails)

	found := make([]*gormModels.User, len(emails))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, email := range emails {
		g.Go(func() error {
			u, err := s.users.GetByEmail(gctx, email)
			if err != nil {
				if apperr.KindOf(err) == apperr.KindNotFound {
					return nil
				}
				return err
			}
			found[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*gormModels.User, len(emails))
	for i, email := range emails {
		out[email] = found[i]
	}
	return out, nil
}

// commit writes the queued documents in one atomic batch. The relational rows
// are already saved, so a failure here is reported as a warning.
func (s *ImportService) commit(ctx context.Context, batch *docstore.Batch, res *ImportResult) {
	if batch.Len() == 0 {
		return
	}
	if err := s.docs.Commit(ctx, batch); err != nil {
		bestEffort(s.metrics, "import_batch_commit", err, "documents", batch.Len())
		res.Warnings = append(res.Warnings, "records were saved but their documents could not be written")
	}
}
