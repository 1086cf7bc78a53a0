package api

import (
	"time"

	"github.com/So-lol/ace-website-sub001/internal/audit"
	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/blob"
	"github.com/So-lol/ace-website-sub001/internal/common"
	"github.com/So-lol/ace-website-sub001/internal/config"
	"github.com/So-lol/ace-website-sub001/internal/db/repositories"
	"github.com/So-lol/ace-website-sub001/internal/docstore"
	"github.com/So-lol/ace-website-sub001/internal/metrics"
	"github.com/So-lol/ace-website-sub001/internal/ratelimit"
	"github.com/So-lol/ace-website-sub001/internal/services"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Infra holds the connections opened by the caller. The handlers never
// open or close them.
type Infra struct {
	ORM   *gorm.DB
	SQL   *sqlx.DB
	Redis *redis.Client
	Docs  docstore.Store
	Blobs *blob.FSStore
}

type Repositories struct {
	Users      *repositories.UserRepositoryGORM
	Families   *repositories.FamilyRepository
	Pairings   *repositories.PairingRepository
	Membership *repositories.MembershipReader
}

type Services struct {
	Points        *services.PointsService
	Media         *services.MediaService
	Families      *services.FamilyService
	Pairings      *services.PairingService
	Users         *services.UserService
	Imports       *services.ImportService
	Announcements *services.AnnouncementService
	Bonus         *services.BonusService
	Submissions   *services.SubmissionService
	Leaderboard   *services.LeaderboardService
	Audit         *services.AuditService
}

type Dependencies struct {
	Config   config.Config
	Infra    Infra
	Repo     *Repositories
	Services *Services

	Cache    common.CacheInterface
	Pipeline *common.Pipeline
	Limiter  *ratelimit.Limiter
	Trail    *audit.Trail
	Provider *auth.JWTProvider
	Verifier *auth.Verifier
	Metrics  *metrics.MetricsRegistry
	UpSince  time.Time
}

func InitDependencies(infra Infra, cfg config.Config, m *metrics.MetricsRegistry) *Dependencies {
	repos := &Repositories{
		Users:      repositories.NewUserRepositoryGORM(infra.ORM),
		Families:   repositories.NewFamilyRepository(infra.ORM),
		Pairings:   repositories.NewPairingRepository(infra.ORM),
		Membership: repositories.NewMembershipReader(infra.SQL),
	}

	var cacheSvc common.CacheInterface
	if cfg.Cache == config.CacheRedis {
		cacheSvc = common.NewRedisCacheService(infra.Redis, m)
	} else {
		cacheSvc = common.NewCacheService(time.Minute, 10*time.Minute, m)
	}
	provider := auth.NewJWTProvider([]byte(cfg.Session.Secret), cfg.Session.Issuer, infra.Redis)
	trail := audit.NewTrail(infra.Docs, cfg.Policy.Audit, m)
	limiter := ratelimit.NewLimiter(infra.Docs, cfg.Policy.RateLimitFailOpen, m)

	points := services.NewPointsService(repos.Pairings, infra.Docs, trail)
	bonus := services.NewBonusService(infra.Docs, trail)
	svcs := &Services{
		Points:        points,
		Media:         services.NewMediaService(infra.Docs, infra.Blobs, trail, m),
		Families:      services.NewFamilyService(repos.Families, repos.Users, repos.Membership, infra.Docs, trail),
		Pairings:      services.NewPairingService(repos.Pairings, repos.Families, repos.Users, points, infra.Docs, trail, m),
		Users:         services.NewUserService(repos.Users, repos.Families, provider, infra.Docs, trail, m),
		Imports:       services.NewImportService(repos.Users, repos.Families, repos.Pairings, provider, infra.Docs, trail, m),
		Announcements: services.NewAnnouncementService(infra.Docs, trail),
		Bonus:         bonus,
		Submissions: services.NewSubmissionService(infra.Docs, infra.Blobs, limiter,
			services.SubmissionLimit{Limit: cfg.Policy.SubmissionRateLimit, Window: cfg.Policy.SubmissionRateWindow},
			repos.Pairings, points, bonus, trail, m),
		Leaderboard: services.NewLeaderboardService(repos.Families, infra.Docs, cacheSvc),
		Audit:       services.NewAuditService(trail),
	}

	return &Dependencies{
		Config:   cfg,
		Infra:    infra,
		Repo:     repos,
		Services: svcs,
		Cache:    cacheSvc,
		Pipeline: common.NewPipeline(cacheSvc, m),
		Limiter:  limiter,
		Trail:    trail,
		Provider: provider,
		Verifier: auth.NewVerifier(provider, repos.Users),
		Metrics:  m,
		UpSince:  time.Now(),
	}
}
