package rbac

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vagaflow/vagaflow/internal/platform/httpx"
	"github.com/vagaflow/vagaflow/internal/shared"
)

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireGlobalAdmin ensures the caller's global role of record is admin.
// This bypasses company scoping on purpose: it guards system-wide
// operations such as reseeding the grant matrix.
func (m Middleware) RequireGlobalAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, ok := shared.IdentityFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		if ident.GlobalRole != RoleAdmin.String() {
			httpx.RespondError(w, httpx.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCompanyPermission gates a route on the caller holding the
// permission in the company named by the {companyID} URL parameter.
func (m Middleware) RequireCompanyPermission(perm Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := shared.IdentityFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			companyID, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
			if err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid company id")
				return
			}
			allowed, err := m.Service.HasPermission(r.Context(), ident.UserID, companyID, perm)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("rbac company permission", slog.Any("error", err))
				}
				httpx.RespondError(w, err)
				return
			}
			if !allowed {
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
