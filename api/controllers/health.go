package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/astralabs/astra-backend/api/responses"
	"github.com/astralabs/astra-backend/pkg/config"
	pkgerrors "github.com/astralabs/astra-backend/pkg/errors"
	pkgfirestore "github.com/astralabs/astra-backend/pkg/firestore"
	"github.com/astralabs/astra-backend/pkg/logger"
	pkgredis "github.com/astralabs/astra-backend/pkg/redis"
)

const readyCheckTimeout = 3 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Astra-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes every backing dependency and aggregates the failures so
// one degraded backend does not mask another.
func HealthReady(cfg *config.Config, logg *logger.Logger, store pkgfirestore.Pinger, cache pkgredis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Astra-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		var errs error
		if store != nil {
			if err := store.Ping(ctx); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
		if cache != nil {
			if err := cache.Ping(ctx); err != nil {
				errs = multierr.Append(errs, err)
			}
		}

		if errs != nil {
			err := pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "dependencies unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
