package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/astralabs/astra-backend/api/responses"
	"github.com/astralabs/astra-backend/internal/images"
	pkgerrors "github.com/astralabs/astra-backend/pkg/errors"
	"github.com/astralabs/astra-backend/pkg/logger"
)

type lineageService interface {
	Versions(ctx context.Context, imageID string) ([]images.Record, error)
	Ancestors(ctx context.Context, imageID string) ([]images.Record, error)
}

// ImageVersions lists the version set of an image's chain: root first, then
// its direct descendants.
func ImageVersions(svc lineageService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "lineage service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.Versions(r.Context(), chi.URLParam(r, "imageId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}

// ImageAncestors lists the parent chain of an image, oldest first.
func ImageAncestors(svc lineageService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "lineage service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.Ancestors(r.Context(), chi.URLParam(r, "imageId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}
