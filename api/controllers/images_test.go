package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/astralabs/astra-backend/api/middleware"
	"github.com/astralabs/astra-backend/internal/images"
	"github.com/astralabs/astra-backend/pkg/enums"
	pkgerrors "github.com/astralabs/astra-backend/pkg/errors"
)

type stubImageService struct {
	listed    bool
	mine      []images.Record
	record    images.Record
	getErr    error
	deleteErr error
	deleted   string
	generated *images.Record
	genErr    error
}

func (s *stubImageService) Generate(ctx context.Context, prompt, parentID string, owner images.Owner) (images.Record, error) {
	if s.genErr != nil {
		return images.Record{}, s.genErr
	}
	rec := images.Record{ID: "img-new", Prompt: prompt, ParentID: parentID, OwnerID: owner.ID}
	s.generated = &rec
	return rec, nil
}

func (s *stubImageService) Get(ctx context.Context, id string) (images.Record, error) {
	return s.record, s.getErr
}

func (s *stubImageService) List(ctx context.Context) ([]images.Record, error) {
	s.listed = true
	return []images.Record{{ID: "a"}, {ID: "b"}}, nil
}

func (s *stubImageService) ListMine(ctx context.Context, ownerID string) ([]images.Record, error) {
	return s.mine, nil
}

func (s *stubImageService) Delete(ctx context.Context, id, actorID string, actorRole enums.Role) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = id
	return nil
}

type stubSearcher struct {
	term    string
	records []images.Record
}

func (s *stubSearcher) SearchByPrompt(ctx context.Context, term string) ([]images.Record, error) {
	s.term = term
	return s.records, nil
}

func TestImagesListDelegatesSearchTerm(t *testing.T) {
	svc := &stubImageService{}
	search := &stubSearcher{records: []images.Record{{ID: "hit"}}}
	handler := ImagesList(svc, search, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/images?search=red+fox", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if search.term != "red fox" {
		t.Fatalf("expected search delegation, got %q", search.term)
	}
	if svc.listed {
		t.Fatal("plain listing should not run when a term is present")
	}
}

func TestImagesListWithoutTerm(t *testing.T) {
	svc := &stubImageService{}
	handler := ImagesList(svc, &stubSearcher{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/images", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !svc.listed {
		t.Fatal("expected plain listing")
	}
}

func TestImageGetNotFound(t *testing.T) {
	svc := &stubImageService{getErr: pkgerrors.New(pkgerrors.CodeNotFound, "image not found")}
	handler := ImageGet(svc, nil)

	req := requestWithParam(http.MethodGet, "/api/v1/images/ghost", "imageId", "ghost", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestImageGenerateCreated(t *testing.T) {
	svc := &stubImageService{}
	handler := ImageGenerate(svc, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images/generate", strings.NewReader(`{"prompt":"a red fox"}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), "uid-1"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if svc.generated == nil || svc.generated.OwnerID != "uid-1" {
		t.Fatalf("expected generation for caller, got %+v", svc.generated)
	}

	var payload struct {
		Data images.Record `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data.Prompt != "a red fox" {
		t.Fatalf("unexpected record: %+v", payload.Data)
	}
}

func TestImageGenerateRejectsMissingPrompt(t *testing.T) {
	handler := ImageGenerate(&stubImageService{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/images/generate", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestImageDeleteForbiddenPassthrough(t *testing.T) {
	svc := &stubImageService{deleteErr: pkgerrors.New(pkgerrors.CodeForbidden, "not the image owner")}
	handler := ImageDelete(svc, nil)

	req := requestWithParam(http.MethodDelete, "/api/v1/images/img-1", "imageId", "img-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func requestWithParam(method, url, key, value string, body *strings.Reader) *http.Request {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, url, nil)
	} else {
		req = httptest.NewRequest(method, url, body)
	}
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}
