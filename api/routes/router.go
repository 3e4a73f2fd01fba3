package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/astralabs/astra-backend/api/controllers"
	"github.com/astralabs/astra-backend/api/middleware"
	"github.com/astralabs/astra-backend/internal/identity"
	"github.com/astralabs/astra-backend/internal/images"
	"github.com/astralabs/astra-backend/internal/lineage"
	"github.com/astralabs/astra-backend/internal/media"
	"github.com/astralabs/astra-backend/internal/ranking"
	"github.com/astralabs/astra-backend/internal/voting"
	"github.com/astralabs/astra-backend/pkg/auth/session"
	"github.com/astralabs/astra-backend/pkg/config"
	"github.com/astralabs/astra-backend/pkg/enums"
	pkgfirestore "github.com/astralabs/astra-backend/pkg/firestore"
	"github.com/astralabs/astra-backend/pkg/logger"
	pkgredis "github.com/astralabs/astra-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	store pkgfirestore.Pinger,
	redisClient *pkgredis.Client,
	sessionManager *session.Manager,
	identityService *identity.Service,
	imageService *images.Service,
	lineageService *lineage.Service,
	votingService *voting.Service,
	rankingService *ranking.Service,
	mediaService *media.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	authPolicy := middleware.NewRateLimitPolicy("auth", cfg.RateLimit.AuthWindow, cfg.RateLimit.AuthIPLimit)
	generatePolicy := middleware.NewRateLimitPolicy("generate", cfg.RateLimit.GenerateWindow, cfg.RateLimit.GenerateLimit)
	analysisPolicy := middleware.NewRateLimitPolicy("analysis", cfg.RateLimit.AnalysisWindow, cfg.RateLimit.AnalysisLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, store, redisClient))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.IPRateLimit(authPolicy, redisClient, logg)).
			Post("/google", controllers.AuthGoogle(identityService, sessionManager, cfg.JWT, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
			r.Post("/logout", controllers.AuthLogout(sessionManager, logg))
			r.Get("/me", controllers.AuthMe(identityService, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))

		r.Route("/images", func(r chi.Router) {
			r.Get("/", controllers.ImagesList(imageService, rankingService, logg))
			r.Get("/mine", controllers.ImagesMine(imageService, logg))
			r.With(middleware.UserRateLimit(generatePolicy, redisClient, logg)).
				Post("/generate", controllers.ImageGenerate(imageService, identityService, logg))

			r.Route("/{imageId}", func(r chi.Router) {
				r.Get("/", controllers.ImageGet(imageService, logg))
				r.Delete("/", controllers.ImageDelete(imageService, logg))
				r.Get("/versions", controllers.ImageVersions(lineageService, logg))
				r.Get("/ancestors", controllers.ImageAncestors(lineageService, logg))
				r.Post("/vote", controllers.ImageVote(votingService, logg))
				r.Get("/vote", controllers.ImageVoteStatus(votingService, logg))
			})
		})

		r.With(middleware.UserRateLimit(analysisPolicy, redisClient, logg)).
			Post("/search/similar", controllers.SearchSimilar(rankingService, logg))

		r.Route("/leaderboard", func(r chi.Router) {
			r.Get("/images", controllers.LeaderboardImages(rankingService, logg))
			r.Get("/designers", controllers.LeaderboardDesigners(rankingService, logg))
		})

		r.Post("/upload", controllers.MediaUpload(mediaService, logg))
		r.With(middleware.UserRateLimit(analysisPolicy, redisClient, logg)).
			Post("/image-analysis", controllers.ImageAnalysis(mediaService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
		r.Post("/users/{uid}/role", controllers.AdminSetUserRole(identityService, logg))
	})

	return r
}
