package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/astralabs/astra-backend/api/middleware"
	"github.com/astralabs/astra-backend/internal/images"
	"github.com/astralabs/astra-backend/internal/voting"
	pkgerrors "github.com/astralabs/astra-backend/pkg/errors"
)

type stubVoteService struct {
	result  voting.Result
	voteErr error
	voted   bool
	imageID string
	userID  string
}

func (s *stubVoteService) Vote(ctx context.Context, imageID, userID string) (voting.Result, error) {
	s.imageID = imageID
	s.userID = userID
	return s.result, s.voteErr
}

func (s *stubVoteService) HasVoted(ctx context.Context, imageID, userID string) (bool, error) {
	return s.voted, nil
}

func TestImageVoteReturnsToggleResult(t *testing.T) {
	svc := &stubVoteService{result: voting.Result{
		Record: images.Record{ID: "img-1", Votes: 1, VoterIDs: []string{"uid-1"}},
		Voted:  true,
	}}
	handler := ImageVote(svc, nil)

	req := requestWithParam(http.MethodPost, "/api/v1/images/img-1/vote", "imageId", "img-1", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), "uid-1"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.imageID != "img-1" || svc.userID != "uid-1" {
		t.Fatalf("unexpected delegation: %s / %s", svc.imageID, svc.userID)
	}

	var payload struct {
		Data struct {
			Voted bool `json:"voted"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.Data.Voted {
		t.Fatal("expected voted true")
	}
}

func TestImageVoteMissingImage(t *testing.T) {
	svc := &stubVoteService{voteErr: pkgerrors.New(pkgerrors.CodeNotFound, "image not found")}
	handler := ImageVote(svc, nil)

	req := requestWithParam(http.MethodPost, "/api/v1/images/ghost/vote", "imageId", "ghost", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestImageVoteStatus(t *testing.T) {
	svc := &stubVoteService{voted: true}
	handler := ImageVoteStatus(svc, nil)

	req := requestWithParam(http.MethodGet, "/api/v1/images/img-1/vote", "imageId", "img-1", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), "uid-1"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payload struct {
		Data struct {
			Voted bool `json:"voted"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.Data.Voted {
		t.Fatal("expected voted true")
	}
}
