package rbac

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vagaflow/vagaflow/internal/platform/httpx"
	"github.com/vagaflow/vagaflow/internal/shared"
)

// Handler exposes the permissions HTTP surface.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	mw        Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		mw:        mw,
	}
}

// MountRoutes registers permission routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{companyID}", h.listMine)
	r.Post("/assign", h.assign)
	r.Put("/{assignmentID}/role", h.updateRole)
	r.Delete("/{userID}/{companyID}", h.deactivate)
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireGlobalAdmin)
		r.Post("/setup-defaults", h.setupDefaults)
	})
}

// listMine returns the permission names the current identity holds in the
// company.
func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
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
	perms, err := h.service.PermissionsFor(r.Context(), ident.UserID, companyID)
	if err != nil {
		h.logger.Error("list permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = p.String()
	}
	httpx.JSON(w, http.StatusOK, names)
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	ident, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var req AssignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed payload")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	role, okRole := ParseRole(req.Role)
	if !okRole {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role "+req.Role)
		return
	}
	if err := h.requireManagePermissions(w, r, ident.UserID, req.CompanyID); err != nil {
		return
	}
	assignment, err := h.service.Assign(r.Context(), req.UserID, req.CompanyID, role, req.CostCenterID)
	if err != nil {
		h.logger.Error("assign role", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, assignment)
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	ident, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	assignmentID, err := strconv.ParseInt(chi.URLParam(r, "assignmentID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid assignment id")
		return
	}
	var req UpdateRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed payload")
		return
	}
	role, okRole := ParseRole(req.Role)
	if !okRole {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role "+req.Role)
		return
	}
	// The permission check is scoped to the assignment's own company, so
	// the assignment is resolved first.
	existing, err := h.service.GetAssignment(r.Context(), assignmentID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.requireManagePermissions(w, r, ident.UserID, existing.CompanyID); err != nil {
		return
	}
	updated, err := h.service.UpdateRole(r.Context(), assignmentID, role)
	if err != nil {
		h.logger.Error("update assignment role", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	ident, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return
	}
	companyID, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid company id")
		return
	}
	if err := h.requireManagePermissions(w, r, ident.UserID, companyID); err != nil {
		return
	}
	if err := h.service.Deactivate(r.Context(), userID, companyID); err != nil {
		h.logger.Error("deactivate assignments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) setupDefaults(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ReseedDefaults(r.Context()); err != nil {
		h.logger.Error("reseed defaults", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "seeded"})
}

// requireManagePermissions writes the error response itself and returns a
// non-nil error when the request must not proceed.
func (h *Handler) requireManagePermissions(w http.ResponseWriter, r *http.Request, userID, companyID int64) error {
	allowed, err := h.service.HasPermission(r.Context(), userID, companyID, PermManagePermissions)
	if err != nil {
		h.logger.Error("check manage_permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return err
	}
	if !allowed {
		httpx.RespondError(w, httpx.ErrForbidden)
		return httpx.ErrForbidden
	}
	return nil
}
