package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/astralabs/astra-backend/internal/identity"
	"github.com/astralabs/astra-backend/pkg/config"
	pkgfirestore "github.com/astralabs/astra-backend/pkg/firestore"
	"github.com/astralabs/astra-backend/pkg/logger"
)

// make-admin elevates an existing account to the admin role, out-of-band:
//
//	make-admin user@example.com
func main() {
	logg := logger.New(logger.Options{ServiceName: "make-admin"})

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: make-admin <email>")
		os.Exit(2)
	}
	email := os.Args[1]

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	storeClient, err := pkgfirestore.New(context.Background(), cfg.Firestore, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap firestore", err)
		os.Exit(1)
	}
	defer func() { _ = storeClient.Close() }()

	svc := identity.NewService(identity.NewRepository(storeClient, logg), nil, logg)

	user, err := svc.SetAdminByEmail(context.Background(), email)
	if err != nil {
		logg.Error(context.Background(), "failed to elevate user", err)
		os.Exit(1)
	}

	ctx := logg.WithUserID(context.Background(), user.UID)
	logg.Info(ctx, "user elevated to admin")
}
