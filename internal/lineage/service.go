package lineage

import (
	"context"

	"github.com/astralabs/astra-backend/internal/images"
	pkgerrors "github.com/astralabs/astra-backend/pkg/errors"
	"github.com/astralabs/astra-backend/pkg/logger"
)

// maxWalkDepth bounds parent-pointer walks so a corrupted cycle cannot spin.
const maxWalkDepth = 50

type recordStore interface {
	Get(ctx context.Context, id string) (images.Record, bool, error)
	ListByParent(ctx context.Context, parentID string) ([]images.Record, error)
}

// Service answers version and ancestry queries over the parentId graph.
type Service struct {
	repo recordStore
	logg *logger.Logger
}

func NewService(repo recordStore, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg}
}

// Versions walks up to the root of the image's version chain, then returns the
// root followed by every record pointing at it. A missing ancestor stops the
// upward walk at the last record that resolved.
func (s *Service) Versions(ctx context.Context, imageID string) ([]images.Record, error) {
	root, err := s.walkToRoot(ctx, imageID)
	if err != nil {
		return nil, err
	}

	children, err := s.repo.ListByParent(ctx, root.ID)
	if err != nil {
		return nil, err
	}

	return append([]images.Record{root}, children...), nil
}

// Ancestors returns the chain from the oldest resolvable ancestor down to the
// image itself. A missing ancestor truncates the chain rather than failing.
func (s *Service) Ancestors(ctx context.Context, imageID string) ([]images.Record, error) {
	rec, found, err := s.repo.Get(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
	}

	chain := []images.Record{rec}
	cur := rec
	for cur.ParentID != "" && len(chain) < maxWalkDepth {
		parent, parentFound, err := s.repo.Get(ctx, cur.ParentID)
		if err != nil {
			return nil, err
		}
		if !parentFound {
			s.logTruncation(ctx, cur.ParentID)
			break
		}
		chain = append([]images.Record{parent}, chain...)
		cur = parent
	}
	return chain, nil
}

func (s *Service) walkToRoot(ctx context.Context, imageID string) (images.Record, error) {
	rec, found, err := s.repo.Get(ctx, imageID)
	if err != nil {
		return images.Record{}, err
	}
	if !found {
		return images.Record{}, pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
	}

	cur := rec
	for depth := 0; cur.ParentID != "" && depth < maxWalkDepth; depth++ {
		parent, parentFound, err := s.repo.Get(ctx, cur.ParentID)
		if err != nil {
			return images.Record{}, err
		}
		if !parentFound {
			s.logTruncation(ctx, cur.ParentID)
			break
		}
		cur = parent
	}
	return cur, nil
}

func (s *Service) logTruncation(ctx context.Context, parentID string) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithImageID(ctx, parentID), "lineage.ancestor_missing")
}
