package voting

import (
	"context"
	"strings"

	"github.com/astralabs/astra-backend/internal/images"
	pkgerrors "github.com/astralabs/astra-backend/pkg/errors"
	"github.com/astralabs/astra-backend/pkg/logger"
	"github.com/astralabs/astra-backend/pkg/metrics"
)

type voteStore interface {
	Get(ctx context.Context, id string) (images.Record, bool, error)
	UpdateVote(ctx context.Context, id string, mutate func(*images.Record) error) (images.Record, bool, error)
}

// Service applies vote toggles. All mutation runs through the store's
// transactional read-modify-write so concurrent toggles never lose updates,
// and the counter is always recomputed from the voter set.
type Service struct {
	repo    voteStore
	logg    *logger.Logger
	metrics *metrics.APIMetrics
}

func NewService(repo voteStore, logg *logger.Logger, apiMetrics *metrics.APIMetrics) *Service {
	return &Service{repo: repo, logg: logg, metrics: apiMetrics}
}

// Result reports the committed record state and whether the caller's vote is
// now present.
type Result struct {
	Record images.Record
	Voted  bool
}

// Vote toggles the caller's vote on the image.
func (s *Service) Vote(ctx context.Context, imageID, userID string) (Result, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "voter is required")
	}

	rec, found, err := s.repo.UpdateVote(ctx, imageID, func(r *images.Record) error {
		r.VoterIDs = toggleVoter(r.VoterIDs, userID)
		r.Votes = len(r.VoterIDs)
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	if !found {
		return Result{}, pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
	}

	s.metrics.IncVoteToggle()
	return Result{Record: rec, Voted: rec.HasVoter(userID)}, nil
}

// HasVoted reports whether the user's vote is currently on the image.
func (s *Service) HasVoted(ctx context.Context, imageID, userID string) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, pkgerrors.New(pkgerrors.CodeUnauthorized, "voter is required")
	}

	rec, found, err := s.repo.Get(ctx, imageID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
	}
	return rec.HasVoter(userID), nil
}

func toggleVoter(voters []string, userID string) []string {
	out := make([]string, 0, len(voters)+1)
	removed := false
	for _, id := range voters {
		if id == userID {
			removed = true
			continue
		}
		out = append(out, id)
	}
	if !removed {
		out = append(out, userID)
	}
	return out
}
