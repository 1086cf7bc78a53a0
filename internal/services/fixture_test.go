package services

import (
	"context"
	"testing"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/audit"
	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/blob"
	"github.com/So-lol/ace-website-sub001/internal/common"
	"github.com/So-lol/ace-website-sub001/internal/config"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/db/repositories"
	"github.com/So-lol/ace-website-sub001/internal/docstore"
	"github.com/So-lol/ace-website-sub001/internal/models/docs"
	gormModels "github.com/So-lol/ace-website-sub001/internal/models/gorm"
	"github.com/So-lol/ace-website-sub001/internal/ratelimit"
	"github.com/So-lol/ace-website-sub001/internal/testsupport"
	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testStart = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db    *gorm.DB
	mr    *miniredis.Miniredis
	store *docstore.RedisStore
	fs    afero.Fs
	clock *testsupport.Clock
	cache *common.CacheService

	users      *repositories.UserRepositoryGORM
	families   *repositories.FamilyRepository
	pairings   *repositories.PairingRepository
	provider   *auth.JWTProvider
	trail      *audit.Trail
	limiter    *ratelimit.Limiter
	points     *PointsService
	media      *MediaService
	familySvc  *FamilyService
	pairingSvc *PairingService
	userSvc    *UserService
	imports    *ImportService
	news       *AnnouncementService
	bonus      *BonusService
	subs       *SubmissionService
	board      *LeaderboardService
	auditSvc   *AuditService

	admin    *gormModels.User
	adminCtx context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb, xdb := testsupport.NewDB(t)
	client, mr := testsupport.NewRedis(t)
	store := docstore.NewRedisStore(client, nil)
	clock := testsupport.NewClock(testStart)
	blobs := blob.NewFSStore(afero.NewMemMapFs(), "/media")

	f := &fixture{
		db:       gdb,
		mr:       mr,
		store:    store,
		fs:       blobs.FS(),
		clock:    clock,
		cache:    common.NewCacheService(time.Minute, time.Minute, nil),
		users:    repositories.NewUserRepositoryGORM(gdb),
		families: repositories.NewFamilyRepository(gdb),
		pairings: repositories.NewPairingRepository(gdb),
		provider: auth.NewJWTProvider([]byte("test-secret"), "ace-test", client),
	}
	f.trail = audit.NewTrail(store, config.AuditBestEffort, nil).WithClock(clock.Now)
	f.limiter = ratelimit.NewLimiter(store, true, nil).WithClock(clock.Now)

	f.points = NewPointsService(f.pairings, store, f.trail).WithClock(clock.Now)
	f.media = NewMediaService(store, blobs, f.trail, nil).WithClock(clock.Now)
	f.familySvc = NewFamilyService(f.families, f.users, repositories.NewMembershipReader(xdb), store, f.trail)
	f.pairingSvc = NewPairingService(f.pairings, f.families, f.users, f.points, store, f.trail, nil)
	f.userSvc = NewUserService(f.users, f.families, f.provider, store, f.trail, nil).WithClock(clock.Now)
	f.imports = NewImportService(f.users, f.families, f.pairings, f.provider, store, f.trail, nil).WithClock(clock.Now)
	f.news = NewAnnouncementService(store, f.trail).WithClock(clock.Now)
	f.bonus = NewBonusService(store, f.trail).WithClock(clock.Now)
	f.subs = NewSubmissionService(store, blobs, f.limiter, SubmissionLimit{Limit: 3, Window: time.Hour},
		f.pairings, f.points, f.bonus, f.trail, nil).WithClock(clock.Now)
	f.board = NewLeaderboardService(f.families, store, f.cache)
	f.auditSvc = NewAuditService(f.trail)

	f.admin = f.seedUser(t, "admin@ace.org", constants.RoleAdmin)
	f.adminCtx = f.ctxAs(f.admin)
	return f
}

func (f *fixture) seedUser(t *testing.T, email string, role constants.Role) *gormModels.User {
	t.Helper()
	u := &gormModels.User{Email: email, Name: email, Role: role}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) ctxAs(u *gormModels.User) context.Context {
	return auth.SetIdentity(context.Background(), auth.FromUser(u))
}

func (f *fixture) seedFamily(t *testing.T, name string) *gormModels.Family {
	t.Helper()
	family := &gormModels.Family{Name: name}
	require.NoError(t, f.families.Create(context.Background(), family, nil, nil))
	return family
}

func (f *fixture) seedPairing(t *testing.T, familyID string, mentor *gormModels.User, mentees ...*gormModels.User) *gormModels.Pairing {
	t.Helper()
	ids := make([]string, 0, len(mentees))
	for _, m := range mentees {
		ids = append(ids, m.ID)
	}
	p := &gormModels.Pairing{FamilyID: familyID, MentorID: mentor.ID}
	require.NoError(t, f.pairings.Create(context.Background(), p, ids))
	return p
}

func (f *fixture) auditFor(t *testing.T, targetType, targetID string) []docs.AuditLogEntry {
	t.Helper()
	entries, err := f.trail.List(context.Background(), 100, audit.Filter{TargetType: targetType, TargetID: targetID})
	require.NoError(t, err)
	return entries
}

func (f *fixture) tally(t *testing.T, pairingID string) docs.PairingPoints {
	t.Helper()
	var p docs.PairingPoints
	require.NoError(t, f.store.Get(context.Background(), constants.CollectionPairingPoints, pairingID, &p))
	return p
}
