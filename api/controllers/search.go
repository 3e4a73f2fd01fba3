package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/astralabs/astra-backend/api/responses"
	"github.com/astralabs/astra-backend/internal/images"
	pkgerrors "github.com/astralabs/astra-backend/pkg/errors"
	"github.com/astralabs/astra-backend/pkg/logger"
)

const maxUploadBytes = 8 << 20

type similaritySearcher interface {
	SearchBySimilarity(ctx context.Context, image []byte, mimeType string) ([]images.Record, error)
}

// SearchSimilar ranks the gallery against an uploaded reference image.
func SearchSimilar(svc similaritySearcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "search service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data, mimeType, err := readImageForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.SearchBySimilarity(r.Context(), data, mimeType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}

func readImageForm(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image file is required")
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read image file")
	}
	if len(data) > maxUploadBytes {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "image too large")
	}

	return data, header.Header.Get("Content-Type"), nil
}
