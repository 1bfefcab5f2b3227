package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gradesystem/backend/internal/models"
	"go.uber.org/zap"
)

// AdminService is the interface that wraps methods for director user management
type AdminService interface {
	// Method ListUsers returns every account without credentials.
	ListUsers(ctx context.Context) ([]models.UserListItem, error)
	// Method GetTotals counts professors and students.
	GetTotals(ctx context.Context) (*models.UserTotals, error)
	// Method UpdateUser edits a student or professor.
	//
	// "role" parameter selects which kind of account "id" must be.
	// A non-empty password in "req" is stored as a new credential.
	//
	// If no account of that role has such ID, models.ErrNotFound will be returned.
	UpdateUser(ctx context.Context, id int, role models.Role, req models.UpdateUserRequest) error
	// Method DeleteUser removes a student or professor.
	DeleteUser(ctx context.Context, id int, role models.Role) error
}

// AdminHandler handles director-only HTTP requests
type AdminHandler struct {
	BaseHandler
	accountService AccountService
	adminService   AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(accountService AccountService, adminService AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		accountService: accountService,
		adminService:   adminService,
	}
}

// RegisterRoutes registers all admin handler routes.
// The router is expected to be guarded by the director role.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Post("/users", h.CreateUser)
		r.Get("/users", h.ListUsers)
		r.Get("/users/total", h.GetTotals)
		r.Put("/students/{id}", h.UpdateStudent)
		r.Delete("/students/{id}", h.DeleteStudent)
		r.Put("/professors/{id}", h.UpdateProfessor)
		r.Delete("/professors/{id}", h.DeleteProfessor)
	})
}

// CreateUser handles POST /admin/users
// @Summary Register an account with a role
// @Description Creates a student, professor or director account
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateUserRequest true "Account data"
// @Success 201 {object} map[string]int "ID of the new account"
// @Failure 400 {object} map[string]string "Invalid request body or role"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Account already exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/users [post]
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.RespondServiceError(w, models.NewValidationError(err))
		return
	}

	id, err := h.accountService.RegisterWithRole(r.Context(), req.RegisterRequest, req.Role)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, map[string]int{"id": id})
}

// ListUsers handles GET /admin/users
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.UserListItem "List of users"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers(r.Context())
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, users)
}

// GetTotals handles GET /admin/users/total
// @Summary Count professors and students
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserTotals "Totals"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/users/total [get]
func (h *AdminHandler) GetTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.adminService.GetTotals(r.Context())
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, totals)
}

// UpdateStudent handles PUT /admin/students/{id}
// @Summary Edit a student
// @Description Updates name and email. A provided password is stored as a new salted credential.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body models.UpdateUserRequest true "New data"
// @Success 200 {object} map[string]string "Student updated"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Student not found"
// @Failure 409 {object} map[string]string "Email already in use"
// @Router /admin/students/{id} [put]
func (h *AdminHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	h.updateByRole(models.RoleStudent)(w, r)
}

// UpdateProfessor handles PUT /admin/professors/{id}
// @Summary Edit a professor
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Professor ID"
// @Param request body models.UpdateUserRequest true "New data"
// @Success 200 {object} map[string]string "Professor updated"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Professor not found"
// @Router /admin/professors/{id} [put]
func (h *AdminHandler) UpdateProfessor(w http.ResponseWriter, r *http.Request) {
	h.updateByRole(models.RoleProfessor)(w, r)
}

// DeleteStudent handles DELETE /admin/students/{id}
// @Summary Delete a student
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} map[string]string "Student deleted"
// @Failure 404 {object} map[string]string "Student not found"
// @Router /admin/students/{id} [delete]
func (h *AdminHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	h.deleteByRole(models.RoleStudent)(w, r)
}

// DeleteProfessor handles DELETE /admin/professors/{id}
// @Summary Delete a professor
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Professor ID"
// @Success 200 {object} map[string]string "Professor deleted"
// @Failure 404 {object} map[string]string "Professor not found"
// @Router /admin/professors/{id} [delete]
func (h *AdminHandler) DeleteProfessor(w http.ResponseWriter, r *http.Request) {
	h.deleteByRole(models.RoleProfessor)(w, r)
}

func (h *AdminHandler) updateByRole(role models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.pathID(w, r)
		if !ok {
			return
		}

		var req models.UpdateUserRequest
		if !h.decodeJSON(w, r, &req) {
			return
		}

		if err := h.adminService.UpdateUser(r.Context(), id, role, req); err != nil {
			h.RespondServiceError(w, err)
			return
		}

		h.RespondJSON(w, http.StatusOK, map[string]string{"message": string(role) + " updated"})
	}
}

func (h *AdminHandler) deleteByRole(role models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.pathID(w, r)
		if !ok {
			return
		}

		if err := h.adminService.DeleteUser(r.Context(), id, role); err != nil {
			h.RespondServiceError(w, err)
			return
		}

		h.RespondJSON(w, http.StatusOK, map[string]string{"message": string(role) + " deleted"})
	}
}
