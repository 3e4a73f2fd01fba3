package controllers

import (
	"context"
	"net/http"

	"github.com/astralabs/astra-backend/api/responses"
	"github.com/astralabs/astra-backend/api/validators"
	"github.com/astralabs/astra-backend/internal/images"
	"github.com/astralabs/astra-backend/internal/ranking"
	pkgerrors "github.com/astralabs/astra-backend/pkg/errors"
	"github.com/astralabs/astra-backend/pkg/logger"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

type leaderboardService interface {
	TopVoted(ctx context.Context, limit int) ([]images.Record, error)
	DesignerRankings(ctx context.Context) ([]ranking.DesignerRank, error)
}

// LeaderboardImages lists the most voted images.
func LeaderboardImages(svc leaderboardService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "ranking service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultLeaderboardLimit, 1, maxLeaderboardLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.TopVoted(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}

// LeaderboardDesigners lists designers ordered by total votes.
func LeaderboardDesigners(svc leaderboardService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "ranking service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rankings, err := svc.DesignerRankings(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rankings)
	}
}
