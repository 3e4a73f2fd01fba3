package identity

import (
	"context"
	"strings"
	"time"

	"github.com/astralabs/astra-backend/pkg/enums"
	pkgerrors "github.com/astralabs/astra-backend/pkg/errors"
	"github.com/astralabs/astra-backend/pkg/googleauth"
	"github.com/astralabs/astra-backend/pkg/logger"
)

type tokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (googleauth.Claims, error)
}

type userStore interface {
	Get(ctx context.Context, uid string) (User, bool, error)
	GetByEmail(ctx context.Context, email string) (User, bool, error)
	Create(ctx context.Context, user User) error
	UpdateRole(ctx context.Context, uid string, role enums.Role) error
}

// Service owns sign-in and role management.
type Service struct {
	repo     userStore
	verifier tokenVerifier
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(repo userStore, verifier tokenVerifier, logg *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		verifier: verifier,
		logg:     logg,
		now:      time.Now,
	}
}

// SignIn validates a Google ID token and returns the matching user, creating
// the account with the designer role on first sign-in.
func (s *Service) SignIn(ctx context.Context, rawToken string) (User, error) {
	if strings.TrimSpace(rawToken) == "" {
		return User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "id token is required")
	}

	claims, err := s.verifier.Verify(ctx, rawToken)
	if err != nil {
		return User{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid google token")
	}
	if claims.Subject == "" {
		return User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "token carries no subject")
	}

	user, found, err := s.repo.Get(ctx, claims.Subject)
	if err != nil {
		return User{}, err
	}
	if found {
		return user, nil
	}

	user = User{
		UID:         claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.Name,
		PhotoURL:    claims.Picture,
		Role:        enums.RoleDesigner,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithUserID(ctx, user.UID), "identity.user_created")
	}
	return user, nil
}

// GetRole resolves a user's role. Lookup failures and unknown values fall
// open to the designer role so a degraded user store never locks the gallery.
func (s *Service) GetRole(ctx context.Context, uid string) enums.Role {
	user, found, err := s.repo.Get(ctx, uid)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithUserID(ctx, uid), "identity.role_lookup_failed")
		}
		return enums.RoleDesigner
	}
	if !found || !user.Role.IsValid() {
		return enums.RoleDesigner
	}
	return user.Role
}

// GetDesigner returns a designer's public profile.
func (s *Service) GetDesigner(ctx context.Context, uid string) (User, error) {
	user, found, err := s.repo.Get(ctx, uid)
	if err != nil {
		return User{}, err
	}
	if !found {
		return User{}, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}

// SetRole overwrites a user's role.
func (s *Service) SetRole(ctx context.Context, uid string, role enums.Role) (User, error) {
	if !role.IsValid() {
		return User{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	user, found, err := s.repo.Get(ctx, uid)
	if err != nil {
		return User{}, err
	}
	if !found {
		return User{}, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if err := s.repo.UpdateRole(ctx, uid, role); err != nil {
		return User{}, err
	}
	user.Role = role
	return user, nil
}

// SetAdminByEmail elevates the user matching the email to admin.
func (s *Service) SetAdminByEmail(ctx context.Context, email string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return User{}, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	user, found, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if !found {
		return User{}, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if err := s.repo.UpdateRole(ctx, user.UID, enums.RoleAdmin); err != nil {
		return User{}, err
	}
	user.Role = enums.RoleAdmin
	return user, nil
}
