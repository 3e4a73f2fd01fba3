package controllers

import (
	"context"
	"net/http"

	"github.com/astralabs/astra-backend/api/responses"
	"github.com/astralabs/astra-backend/api/validators"
	pkgerrors "github.com/astralabs/astra-backend/pkg/errors"
	"github.com/astralabs/astra-backend/pkg/logger"
)

type mediaService interface {
	Upload(ctx context.Context, imageData string) (string, error)
	Analyze(ctx context.Context, image []byte, mimeType string) ([]string, error)
}

type uploadRequest struct {
	Image string `json:"image" validate:"required"`
}

// MediaUpload proxies an image payload to the CDN and returns the durable URL.
func MediaUpload(svc mediaService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body uploadRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		url, err := svc.Upload(r.Context(), body.Image)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"url": url})
	}
}

// ImageAnalysis extracts descriptive keywords from an uploaded image.
func ImageAnalysis(svc mediaService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data, mimeType, err := readImageForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		keywords, err := svc.Analyze(r.Context(), data, mimeType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string][]string{"keywords": keywords})
	}
}
