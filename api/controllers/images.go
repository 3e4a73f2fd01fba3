package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/astralabs/astra-backend/api/middleware"
	"github.com/astralabs/astra-backend/api/responses"
	"github.com/astralabs/astra-backend/api/validators"
	"github.com/astralabs/astra-backend/internal/images"
	"github.com/astralabs/astra-backend/pkg/enums"
	pkgerrors "github.com/astralabs/astra-backend/pkg/errors"
	"github.com/astralabs/astra-backend/pkg/logger"
)

type imageService interface {
	Generate(ctx context.Context, prompt, parentID string, owner images.Owner) (images.Record, error)
	Get(ctx context.Context, id string) (images.Record, error)
	List(ctx context.Context) ([]images.Record, error)
	ListMine(ctx context.Context, ownerID string) ([]images.Record, error)
	Delete(ctx context.Context, id, actorID string, actorRole enums.Role) error
}

type promptSearcher interface {
	SearchByPrompt(ctx context.Context, term string) ([]images.Record, error)
}

type generateRequest struct {
	Prompt   string `json:"prompt" validate:"required,max=1000"`
	ParentID string `json:"parentId,omitempty" validate:"omitempty,max=128"`
}

// ImagesList returns the shared gallery, ranked by the optional search term.
func ImagesList(svc imageService, search promptSearcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "image service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		term := validators.ParseQueryString(r, "search", "")
		if term != "" && search != nil {
			records, err := search.SearchByPrompt(r.Context(), term)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, records)
			return
		}

		records, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}

// ImagesMine returns the caller's own gallery.
func ImagesMine(svc imageService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "image service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.ListMine(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}

// ImageGenerate runs the full generation pipeline for the caller's prompt.
// Supplying parentId saves the result as a new version of an existing image.
func ImageGenerate(svc imageService, profiles profileService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "image service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body generateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		owner := images.Owner{
			ID:    middleware.UserIDFromContext(r.Context()),
			Email: middleware.EmailFromContext(r.Context()),
		}
		if profiles != nil {
			if user, err := profiles.GetDesigner(r.Context(), owner.ID); err == nil {
				owner.Name = user.DisplayName
				owner.Email = user.Email
			}
		}

		rec, err := svc.Generate(r.Context(), body.Prompt, body.ParentID, owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, rec)
	}
}

// ImageGet returns a single image record.
func ImageGet(svc imageService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "image service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rec, err := svc.Get(r.Context(), chi.URLParam(r, "imageId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rec)
	}
}

// ImageDelete removes an image; the service enforces owner/admin rules.
func ImageDelete(svc imageService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "image service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorRole, err := enums.ParseRole(middleware.RoleFromContext(r.Context()))
		if err != nil {
			actorRole = enums.RoleDesigner
		}

		imageID := chi.URLParam(r, "imageId")
		if err := svc.Delete(r.Context(), imageID, middleware.UserIDFromContext(r.Context()), actorRole); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted", "id": imageID})
	}
}
