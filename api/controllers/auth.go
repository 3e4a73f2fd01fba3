package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/astralabs/astra-backend/api/middleware"
	"github.com/astralabs/astra-backend/api/responses"
	"github.com/astralabs/astra-backend/api/validators"
	"github.com/astralabs/astra-backend/internal/identity"
	pkgauth "github.com/astralabs/astra-backend/pkg/auth"
	"github.com/astralabs/astra-backend/pkg/auth/session"
	"github.com/astralabs/astra-backend/pkg/config"
	pkgerrors "github.com/astralabs/astra-backend/pkg/errors"
	"github.com/astralabs/astra-backend/pkg/logger"
)

type signInService interface {
	SignIn(ctx context.Context, rawToken string) (identity.User, error)
}

type profileService interface {
	GetDesigner(ctx context.Context, uid string) (identity.User, error)
}

type sessionWriter interface {
	Create(ctx context.Context, accessID, userID string) error
	Revoke(ctx context.Context, accessID string) error
}

type googleSignInRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type signInResponse struct {
	Token string        `json:"token"`
	User  identity.User `json:"user"`
}

// AuthGoogle exchanges a Google ID token for an application session.
func AuthGoogle(svc signInService, sessions sessionWriter, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || sessions == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body googleSignInRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.SignIn(r.Context(), body.IDToken)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		accessID := session.NewAccessID()
		token, err := pkgauth.MintAccessToken(jwtCfg, time.Now(), pkgauth.AccessTokenPayload{
			UserID: user.UID,
			Email:  user.Email,
			Role:   user.Role,
			JTI:    accessID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token"))
			return
		}

		if err := sessions.Create(r.Context(), accessID, user.UID); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session"))
			return
		}

		responses.WriteSuccess(w, signInResponse{Token: token, User: user})
	}
}

// AuthLogout revokes the caller's session so the token dies before its expiry.
func AuthLogout(sessions sessionWriter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "session store unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing"))
			return
		}

		if err := sessions.Revoke(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "signed out"})
	}
}

// AuthMe returns the caller's profile.
func AuthMe(svc profileService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "identity service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		uid := middleware.UserIDFromContext(r.Context())
		if uid == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		user, err := svc.GetDesigner(r.Context(), uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}
