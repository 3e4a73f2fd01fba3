package images

import (
	"context"
	"strings"
	"time"

	"github.com/astralabs/astra-backend/pkg/enums"
	pkgerrors "github.com/astralabs/astra-backend/pkg/errors"
	"github.com/astralabs/astra-backend/pkg/logger"
	"github.com/astralabs/astra-backend/pkg/metrics"
)

const maxPromptLength = 1000

type generator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

type uploader interface {
	Upload(ctx context.Context, imageData, folder string) (string, error)
}

type recordStore interface {
	Get(ctx context.Context, id string) (Record, bool, error)
	CreateVersioned(ctx context.Context, rec Record) (Record, error)
	ListAll(ctx context.Context) ([]Record, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Record, error)
	Delete(ctx context.Context, id string) error
}

// Owner identifies the designer a generated image belongs to.
type Owner struct {
	ID    string
	Name  string
	Email string
}

// Service coordinates generation, CDN re-hosting, and record persistence.
type Service struct {
	repo      recordStore
	generator generator
	uploader  uploader
	folder    string
	logg      *logger.Logger
	metrics   *metrics.APIMetrics
}

func NewService(repo recordStore, gen generator, up uploader, folder string, logg *logger.Logger, apiMetrics *metrics.APIMetrics) *Service {
	return &Service{
		repo:      repo,
		generator: gen,
		uploader:  up,
		folder:    folder,
		logg:      logg,
		metrics:   apiMetrics,
	}
}

// Generate runs prompt → vendor image → durable CDN URL → saved record. The
// vendor URL is transient, so the bytes are re-hosted before the record is
// written. A parentID marks the result as a new version of an existing image.
func (s *Service) Generate(ctx context.Context, prompt, parentID string, owner Owner) (Record, error) {
	start := time.Now()

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Record{}, pkgerrors.New(pkgerrors.CodeValidation, "prompt is required")
	}
	if len(prompt) > maxPromptLength {
		return Record{}, pkgerrors.New(pkgerrors.CodeValidation, "prompt too long")
	}
	if strings.TrimSpace(owner.ID) == "" {
		return Record{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner is required")
	}

	vendorURL, err := s.generator.GenerateImage(ctx, prompt)
	if err != nil {
		s.metrics.ObserveGeneration("error", time.Since(start))
		return Record{}, err
	}

	hostedURL, err := s.uploader.Upload(ctx, vendorURL, s.folder)
	if err != nil {
		s.metrics.ObserveGeneration("error", time.Since(start))
		return Record{}, err
	}

	rec := Record{
		Prompt:     prompt,
		ImageURL:   hostedURL,
		OwnerID:    owner.ID,
		OwnerName:  owner.Name,
		OwnerEmail: owner.Email,
		ParentID:   strings.TrimSpace(parentID),
	}

	saved, err := s.repo.CreateVersioned(ctx, rec)
	if err != nil {
		s.metrics.ObserveGeneration("error", time.Since(start))
		return Record{}, err
	}

	s.metrics.ObserveGeneration("success", time.Since(start))
	if s.logg != nil {
		s.logg.Info(s.logg.WithImageID(ctx, saved.ID), "images.generated")
	}
	return saved, nil
}

// Get returns one record or a not-found error.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	rec, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if !found {
		return Record{}, pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
	}
	return rec, nil
}

// List returns the shared gallery, newest first.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	return s.repo.ListAll(ctx)
}

// ListMine returns the records owned by the given designer.
func (s *Service) ListMine(ctx context.Context, ownerID string) ([]Record, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner is required")
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

// Delete removes a record. Only the owner or an admin may delete; children of
// the record are left in place.
func (s *Service) Delete(ctx context.Context, id, actorID string, actorRole enums.Role) error {
	rec, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
	}
	if actorRole != enums.RoleAdmin && rec.OwnerID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not the image owner")
	}
	return s.repo.Delete(ctx, id)
}
