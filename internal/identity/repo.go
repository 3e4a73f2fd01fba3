package identity

import (
	"context"

	firestorelib "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/astralabs/astra-backend/pkg/enums"
	pkgerrors "github.com/astralabs/astra-backend/pkg/errors"
	pkgfirestore "github.com/astralabs/astra-backend/pkg/firestore"
	"github.com/astralabs/astra-backend/pkg/logger"
)

// Repository persists user documents in Firestore, keyed by UID.
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

func decodeUser(doc *firestorelib.DocumentSnapshot) (User, error) {
	var user User
	if err := doc.DataTo(&user); err != nil {
		return User{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode user record")
	}
	user.UID = doc.Ref.ID
	return user, nil
}

// Get fetches one user by UID.
func (r *Repository) Get(ctx context.Context, uid string) (User, bool, error) {
	doc, err := r.db.Users().Doc(uid).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return User{}, false, nil
		}
		return User{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get user record")
	}
	user, err := decodeUser(doc)
	if err != nil {
		return User{}, false, err
	}
	return user, true, nil
}

// GetByEmail fetches the first user matching the email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (User, bool, error) {
	iter := r.db.Users().Where("email", "==", email).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query user by email")
	}
	user, err := decodeUser(doc)
	if err != nil {
		return User{}, false, err
	}
	return user, true, nil
}

// Create writes the user document at its UID.
func (r *Repository) Create(ctx context.Context, user User) error {
	if _, err := r.db.Users().Doc(user.UID).Set(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user record")
	}
	return nil
}

// UpdateRole overwrites the role field of an existing user.
func (r *Repository) UpdateRole(ctx context.Context, uid string, role enums.Role) error {
	_, err := r.db.Users().Doc(uid).Update(ctx, []firestorelib.Update{
		{Path: "role", Value: string(role)},
	})
	if err != nil {
		if isNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user role")
	}
	return nil
}
