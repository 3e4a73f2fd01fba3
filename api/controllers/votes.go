package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/astralabs/astra-backend/api/middleware"
	"github.com/astralabs/astra-backend/api/responses"
	"github.com/astralabs/astra-backend/internal/voting"
	pkgerrors "github.com/astralabs/astra-backend/pkg/errors"
	"github.com/astralabs/astra-backend/pkg/logger"
)

type voteService interface {
	Vote(ctx context.Context, imageID, userID string) (voting.Result, error)
	HasVoted(ctx context.Context, imageID, userID string) (bool, error)
}

// ImageVote toggles the caller's vote and returns the committed state.
func ImageVote(svc voteService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "voting service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Vote(r.Context(), chi.URLParam(r, "imageId"), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"image": result.Record,
			"voted": result.Voted,
		})
	}
}

// ImageVoteStatus reports whether the caller's vote is on the image.
func ImageVoteStatus(svc voteService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "voting service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		voted, err := svc.HasVoted(r.Context(), chi.URLParam(r, "imageId"), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"voted": voted})
	}
}
