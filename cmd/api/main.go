package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/astralabs/astra-backend/api/routes"
	"github.com/astralabs/astra-backend/internal/identity"
	"github.com/astralabs/astra-backend/internal/images"
	"github.com/astralabs/astra-backend/internal/lineage"
	"github.com/astralabs/astra-backend/internal/media"
	"github.com/astralabs/astra-backend/internal/ranking"
	"github.com/astralabs/astra-backend/internal/voting"
	"github.com/astralabs/astra-backend/pkg/auth/session"
	"github.com/astralabs/astra-backend/pkg/cloudinary"
	"github.com/astralabs/astra-backend/pkg/config"
	pkgfirestore "github.com/astralabs/astra-backend/pkg/firestore"
	"github.com/astralabs/astra-backend/pkg/googleauth"
	"github.com/astralabs/astra-backend/pkg/logger"
	"github.com/astralabs/astra-backend/pkg/metrics"
	"github.com/astralabs/astra-backend/pkg/openai"
	pkgredis "github.com/astralabs/astra-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	storeClient, err := pkgfirestore.New(context.Background(), cfg.Firestore, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap firestore", err)
		os.Exit(1)
	}
	defer func() {
		if err := storeClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing firestore", err)
		}
	}()

	redisClient, err := pkgredis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	verifier, err := googleauth.NewVerifier(cfg.Google)
	if err != nil {
		logg.Error(context.Background(), "failed to create google verifier", err)
		os.Exit(1)
	}

	openaiClient, err := openai.NewClient(cfg.OpenAI.APIKey,
		openai.WithImageModel(cfg.OpenAI.ImageModel),
		openai.WithImageSize(cfg.OpenAI.ImageSize),
		openai.WithVisionModel(cfg.OpenAI.VisionModel),
		openai.WithMaxKeywords(cfg.OpenAI.MaxKeywords),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create openai client", err)
		os.Exit(1)
	}

	cloudinaryClient, err := cloudinary.NewClient(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	if err != nil {
		logg.Error(context.Background(), "failed to create cloudinary client", err)
		os.Exit(1)
	}

	apiMetrics := metrics.NewAPIMetrics(prometheus.DefaultRegisterer)

	imageRepo := images.NewRepository(storeClient, logg)
	userRepo := identity.NewRepository(storeClient, logg)

	identityService := identity.NewService(userRepo, verifier, logg)
	imageService := images.NewService(imageRepo, openaiClient, cloudinaryClient, cfg.Cloudinary.DefaultFolder, logg, apiMetrics)
	lineageService := lineage.NewService(imageRepo, logg)
	votingService := voting.NewService(imageRepo, logg, apiMetrics)
	rankingService := ranking.NewService(imageRepo, openaiClient, logg)
	mediaService := media.NewService(cloudinaryClient, openaiClient, cfg.Cloudinary.DefaultFolder, logg, apiMetrics)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			storeClient,
			redisClient,
			sessionManager,
			identityService,
			imageService,
			lineageService,
			votingService,
			rankingService,
			mediaService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
