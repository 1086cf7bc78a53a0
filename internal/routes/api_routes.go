package routes

import (
	"github.com/So-lol/ace-website-sub001/internal/api"
	"github.com/So-lol/ace-website-sub001/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers every /api route. Services enforce their own
// authorization; the gates here only answer early.
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, deps *api.Dependencies) {
	policy := deps.Config.Policy

	r.Route("/api", func(apiRouter chi.Router) {
		// Session routes are public; sign-in is throttled per client IP
		apiRouter.Route("/auth", func(authRouter chi.Router) {
			authRouter.With(middleware.RateLimitMiddleware(deps.Limiter, "login", policy.LoginRateLimit, policy.LoginRateWindow)).
				Post("/session", handlers.CreateSessionHandler())
			authRouter.Post("/logout", handlers.LogoutHandler())
		})

		// Signed-in users
		apiRouter.Group(func(member chi.Router) {
			member.Use(middleware.RequireAuthMiddleware())

			member.Get("/me", handlers.MeHandler())
			member.Patch("/me", handlers.UpdateMeHandler())

			member.Get("/families", handlers.ListFamiliesHandler())
			member.Get("/families/{id}", handlers.GetFamilyHandler())
			member.Get("/leaderboard", handlers.LeaderboardHandler())
			member.Get("/announcements", handlers.ListAnnouncementsHandler(true))
			member.Get("/bonus-activities", handlers.ListBonusActivitiesHandler(true))
			member.Post("/submissions", handlers.CreateSubmissionHandler())
		})

		// Admin-only group
		apiRouter.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.IsAdminMiddleware())

			admin.Post("/points/reset-weekly", handlers.ResetWeeklyPointsHandler())

			admin.Route("/media", func(media chi.Router) {
				media.Get("/archived", handlers.ListArchivedMediaHandler())
				media.Post("/{id}/archive", handlers.ArchiveMediaHandler())
				media.Post("/{id}/restore", handlers.RestoreMediaHandler())
				media.Delete("/{id}", handlers.DeleteArchivedMediaHandler())
			})

			admin.Route("/families", func(families chi.Router) {
				families.Get("/", handlers.ListFamiliesHandler())
				families.Post("/", handlers.CreateFamilyHandler())
				families.Get("/{id}", handlers.GetFamilyHandler())
				families.Patch("/{id}", handlers.UpdateFamilyHandler())
				families.Delete("/{id}", handlers.DeleteFamilyHandler())
			})

			admin.Route("/pairings", func(pairings chi.Router) {
				pairings.Get("/", handlers.ListPairingsHandler())
				pairings.Post("/", handlers.CreatePairingHandler())
				pairings.Get("/{id}", handlers.GetPairingHandler())
				pairings.Delete("/{id}", handlers.DeletePairingHandler())
				pairings.Post("/{id}/points", handlers.AdjustPointsHandler())
				pairings.Post("/{id}/mentees", handlers.AddMenteeHandler())
				pairings.Delete("/{id}/mentees/{menteeId}", handlers.RemoveMenteeHandler())
			})

			admin.Post("/import/users", handlers.ImportUsersHandler())
			admin.Post("/import/pairings", handlers.ImportPairingsHandler())

			admin.Route("/announcements", func(news chi.Router) {
				news.Get("/", handlers.ListAnnouncementsHandler(false))
				news.Post("/", handlers.CreateAnnouncementHandler())
				news.Patch("/{id}", handlers.UpdateAnnouncementHandler())
				news.Delete("/{id}", handlers.DeleteAnnouncementHandler())
			})

			admin.Route("/bonus-activities", func(bonus chi.Router) {
				bonus.Get("/", handlers.ListBonusActivitiesHandler(false))
				bonus.Post("/", handlers.CreateBonusActivityHandler())
				bonus.Patch("/{id}", handlers.UpdateBonusActivityHandler())
				bonus.Delete("/{id}", handlers.DeleteBonusActivityHandler())
			})

			admin.Route("/users", func(users chi.Router) {
				users.Get("/", handlers.ListUsersHandler())
				users.Patch("/{id}", handlers.UpdateUserHandler())
				users.Delete("/{id}", handlers.DeleteUserHandler())
			})

			admin.Get("/submissions", handlers.ListSubmissionsHandler())
			admin.Post("/submissions/{id}/review", handlers.ReviewSubmissionHandler())

			admin.Get("/audit-logs", handlers.ListAuditLogsHandler())
		})
	})
}
