package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/astralabs/astra-backend/api/responses"
	"github.com/astralabs/astra-backend/api/validators"
	"github.com/astralabs/astra-backend/internal/identity"
	"github.com/astralabs/astra-backend/pkg/enums"
	pkgerrors "github.com/astralabs/astra-backend/pkg/errors"
	"github.com/astralabs/astra-backend/pkg/logger"
)

type roleService interface {
	SetRole(ctx context.Context, uid string, role enums.Role) (identity.User, error)
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// AdminSetUserRole overwrites a user's role. Admin-gated by the router.
func AdminSetUserRole(svc roleService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "identity service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setRoleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, err := enums.ParseRole(body.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		user, err := svc.SetRole(r.Context(), chi.URLParam(r, "uid"), role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}
