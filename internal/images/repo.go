package images

import (
	"context"
	"time"

	firestorelib "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pkgerrors "github.com/astralabs/astra-backend/pkg/errors"
	pkgfirestore "github.com/astralabs/astra-backend/pkg/firestore"
	"github.com/astralabs/astra-backend/pkg/logger"
)

// Repository persists image records in Firestore.
type Repository struct {
	db   *pkgfirestore.Client
	logg *logger.Logger
}

func NewRepository(db *pkgfirestore.Client, logg *logger.Logger) *Repository {
	return &Repository{db: db, logg: logg}
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func decodeRecord(doc *firestorelib.DocumentSnapshot) (Record, error) {
	var rec Record
	if err := doc.DataTo(&rec); err != nil {
		return Record{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode image record")
	}
	rec.ID = doc.Ref.ID
	if rec.Version == 0 {
		rec.Version = 1
	}
	return rec, nil
}

// Get fetches one record. The second result distinguishes a missing document
// from a lookup failure.
func (r *Repository) Get(ctx context.Context, id string) (Record, bool, error) {
	doc, err := r.db.Images().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return Record{}, false, nil
		}
		return Record{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get image record")
	}
	rec, err := decodeRecord(doc)
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

// CreateVersioned inserts a record, resolving its lineage fields against the
// parent inside a single transaction. When the parent exists the child takes
// version parent+1 and the parent's isLatestVersion flag flips false with the
// same commit; a dangling parent pointer leaves the child at version 1.
func (r *Repository) CreateVersioned(ctx context.Context, rec Record) (Record, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.Votes = 0
	rec.VoterIDs = []string{}
	rec.Version = 1
	rec.IsLatestVersion = true
	rec.VersionHistory = nil

	docRef := r.db.Images().NewDoc()

	var saved Record
	err := r.db.Raw().RunTransaction(ctx, func(ctx context.Context, tx *firestorelib.Transaction) error {
		out := rec
		if out.ParentID != "" {
			parentRef := r.db.Images().Doc(out.ParentID)
			snap, err := tx.Get(parentRef)
			switch {
			case err != nil && isNotFound(err):
				// dangling pointer: keep it, stay at version 1
				if r.logg != nil {
					r.logg.Warn(r.logg.WithImageID(ctx, out.ParentID), "images.parent_missing")
				}
			case err != nil:
				return err
			default:
				parent, decodeErr := decodeRecord(snap)
				if decodeErr != nil {
					return decodeErr
				}
				out.Version = parent.Version + 1
				if len(parent.VersionHistory) == 0 {
					out.VersionHistory = []string{out.ParentID}
				} else {
					out.VersionHistory = append(append([]string{}, parent.VersionHistory...), out.ParentID)
				}
				if err := tx.Update(parentRef, []firestorelib.Update{
					{Path: "isLatestVersion", Value: false},
				}); err != nil {
					return err
				}
			}
		}
		if err := tx.Create(docRef, out); err != nil {
			return err
		}
		out.ID = docRef.ID
		saved = out
		return nil
	})
	if err != nil {
		return Record{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save image record")
	}
	return saved, nil
}

// ListAll returns every record, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]Record, error) {
	query := r.db.Images().OrderBy("createdAt", firestorelib.Desc)
	return r.collect(ctx, query.Documents(ctx), "list image records")
}

// ListByOwner returns one designer's records, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]Record, error) {
	query := r.db.Images().
		Where("userId", "==", ownerID).
		OrderBy("createdAt", firestorelib.Desc)
	return r.collect(ctx, query.Documents(ctx), "list owner image records")
}

// ListByParent returns the direct children of the given record.
func (r *Repository) ListByParent(ctx context.Context, parentID string) ([]Record, error) {
	query := r.db.Images().Where("parentId", "==", parentID)
	return r.collect(ctx, query.Documents(ctx), "list child image records")
}

// Delete removes a record. Children keep their parent pointer; the lineage
// walk tolerates the gap.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Images().Doc(id).Delete(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete image record")
	}
	return nil
}

// UpdateVote runs a read-modify-write of one record inside a transaction and
// returns the committed state.
func (r *Repository) UpdateVote(ctx context.Context, id string, mutate func(*Record) error) (Record, bool, error) {
	docRef := r.db.Images().Doc(id)

	var (
		updated Record
		found   bool
	)
	err := r.db.Raw().RunTransaction(ctx, func(ctx context.Context, tx *firestorelib.Transaction) error {
		found = false
		snap, err := tx.Get(docRef)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}
		rec, decodeErr := decodeRecord(snap)
		if decodeErr != nil {
			return decodeErr
		}
		if err := mutate(&rec); err != nil {
			return err
		}
		if err := tx.Set(docRef, rec); err != nil {
			return err
		}
		updated = rec
		found = true
		return nil
	})
	if err != nil {
		return Record{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update image votes")
	}
	return updated, found, nil
}

func (r *Repository) collect(ctx context.Context, iter *firestorelib.DocumentIterator, action string) ([]Record, error) {
	defer iter.Stop()

	records := []Record{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
		}
		rec, decodeErr := decodeRecord(doc)
		if decodeErr != nil {
			return nil, decodeErr
		}
		records = append(records, rec)
	}
	return records, nil
}
