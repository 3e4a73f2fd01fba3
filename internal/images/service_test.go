package images

import (
	"context"
	"errors"
	"testing"

	"github.com/astralabs/astra-backend/pkg/enums"
	pkgerrors "github.com/astralabs/astra-backend/pkg/errors"
)

type stubStore struct {
	records  map[string]Record
	saved    *Record
	deleted  []string
	getErr   error
	saveErr  error
	listErr  error
	byOwner  []Record
	allOrder []Record
}

func newStubStore() *stubStore {
	return &stubStore{records: map[string]Record{}}
}

func (s *stubStore) Get(ctx context.Context, id string) (Record, bool, error) {
	if s.getErr != nil {
		return Record{}, false, s.getErr
	}
	rec, ok := s.records[id]
	return rec, ok, nil
}

func (s *stubStore) CreateVersioned(ctx context.Context, rec Record) (Record, error) {
	if s.saveErr != nil {
		return Record{}, s.saveErr
	}
	rec.ID = "img-new"
	rec.Version = 1
	rec.IsLatestVersion = true
	if rec.ParentID != "" {
		if parent, ok := s.records[rec.ParentID]; ok {
			rec.Version = parent.Version + 1
		}
	}
	s.saved = &rec
	return rec, nil
}

func (s *stubStore) ListAll(ctx context.Context) ([]Record, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.allOrder, nil
}

func (s *stubStore) ListByOwner(ctx context.Context, ownerID string) ([]Record, error) {
	return s.byOwner, nil
}

func (s *stubStore) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type stubGenerator struct {
	url    string
	err    error
	prompt string
}

func (s *stubGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.url, s.err
}

type stubUploader struct {
	url      string
	err      error
	received string
	folder   string
}

func (s *stubUploader) Upload(ctx context.Context, imageData, folder string) (string, error) {
	s.received = imageData
	s.folder = folder
	return s.url, s.err
}

func TestGenerateComposesPipeline(t *testing.T) {
	store := newStubStore()
	gen := &stubGenerator{url: "https://vendor.example/tmp.png"}
	up := &stubUploader{url: "https://cdn.example/durable.png"}
	svc := NewService(store, gen, up, "astra-images", nil, nil)

	rec, err := svc.Generate(context.Background(), "  a red fox  ", "", Owner{ID: "uid-1", Name: "Dana"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if gen.prompt != "a red fox" {
		t.Fatalf("expected trimmed prompt, got %q", gen.prompt)
	}
	if up.received != gen.url {
		t.Fatalf("expected vendor url re-hosted, got %q", up.received)
	}
	if up.folder != "astra-images" {
		t.Fatalf("unexpected folder %q", up.folder)
	}
	if rec.ImageURL != up.url {
		t.Fatalf("expected durable url persisted, got %q", rec.ImageURL)
	}
	if rec.OwnerID != "uid-1" || rec.OwnerName != "Dana" {
		t.Fatalf("owner not carried onto record: %+v", rec)
	}
	if rec.Version != 1 || !rec.IsLatestVersion {
		t.Fatalf("expected fresh root version, got %+v", rec)
	}
}

func TestGenerateWithParentCarriesPointer(t *testing.T) {
	store := newStubStore()
	store.records["img-parent"] = Record{ID: "img-parent", Version: 2}
	gen := &stubGenerator{url: "https://vendor.example/tmp.png"}
	up := &stubUploader{url: "https://cdn.example/durable.png"}
	svc := NewService(store, gen, up, "astra-images", nil, nil)

	rec, err := svc.Generate(context.Background(), "reprompt", "img-parent", Owner{ID: "uid-1"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if rec.ParentID != "img-parent" {
		t.Fatalf("expected parent pointer, got %q", rec.ParentID)
	}
	if rec.Version != 3 {
		t.Fatalf("expected version 3, got %d", rec.Version)
	}
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	svc := NewService(newStubStore(), &stubGenerator{}, &stubUploader{}, "f", nil, nil)

	_, err := svc.Generate(context.Background(), "   ", "", Owner{ID: "uid-1"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateStopsOnGeneratorFailure(t *testing.T) {
	store := newStubStore()
	gen := &stubGenerator{err: errors.New("vendor down")}
	up := &stubUploader{}
	svc := NewService(store, gen, up, "f", nil, nil)

	if _, err := svc.Generate(context.Background(), "prompt", "", Owner{ID: "uid-1"}); err == nil {
		t.Fatal("expected error")
	}
	if up.received != "" {
		t.Fatal("uploader should not run after generation failure")
	}
	if store.saved != nil {
		t.Fatal("record should not be saved after generation failure")
	}
}

func TestGetNotFound(t *testing.T) {
	svc := NewService(newStubStore(), &stubGenerator{}, &stubUploader{}, "f", nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteAuthorization(t *testing.T) {
	tests := []struct {
		name      string
		actorID   string
		actorRole enums.Role
		wantCode  pkgerrors.Code
		deleted   bool
	}{
		{"owner may delete", "uid-owner", enums.RoleDesigner, "", true},
		{"admin may delete", "uid-admin", enums.RoleAdmin, "", true},
		{"stranger forbidden", "uid-other", enums.RoleDesigner, pkgerrors.CodeForbidden, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStubStore()
			store.records["img-1"] = Record{ID: "img-1", OwnerID: "uid-owner"}
			svc := NewService(store, &stubGenerator{}, &stubUploader{}, "f", nil, nil)

			err := svc.Delete(context.Background(), "img-1", tt.actorID, tt.actorRole)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(store.deleted) != 1 || store.deleted[0] != "img-1" {
					t.Fatalf("expected delete call, got %v", store.deleted)
				}
				return
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != tt.wantCode {
				t.Fatalf("expected %s, got %v", tt.wantCode, err)
			}
			if len(store.deleted) != 0 {
				t.Fatal("delete should not run")
			}
		})
	}
}
