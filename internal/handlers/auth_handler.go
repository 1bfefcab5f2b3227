package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	authMiddleware "github.com/gradesystem/backend/internal/auth/middleware"
	"github.com/gradesystem/backend/internal/models"
	"go.uber.org/zap"
)

// AccountService is the interface that wraps methods for registration and login.
type AccountService interface {
	// Method Register creates a student account.
	//
	// "req" parameter contains name, email and password.
	//
	// If the payload is invalid or the email is already registered, the error will be returned together with 0.
	Register(ctx context.Context, req models.RegisterRequest) (int, error)
	// Method RegisterWithRole creates an account with an explicit role.
	//
	// If the role is outside the closed set, models.ErrValidation will be returned.
	RegisterWithRole(ctx context.Context, req models.RegisterRequest, role models.Role) (int, error)
	// Method Login verifies the credentials and returns a session token and the public profile.
	//
	// Unknown email returns models.ErrNotFound; wrong password returns models.ErrInvalidCredentials.
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	accountService AccountService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accountService AccountService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		accountService: accountService,
	}
}

// RegisterRoutes registers all auth handler routes.
// loginLimit throttles login attempts; requireAuth guards /auth/me.
func (h *AuthHandler) RegisterRoutes(r chi.Router, loginLimit, requireAuth func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.With(loginLimit).Post("/login", h.Login)
		r.With(requireAuth).Get("/me", h.Me)
	})
}

// Register handles POST /auth/register
// @Summary Register a student
// @Description Self-registration. The account always gets the estudiante role.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration data"
// @Success 201 {object} map[string]int "ID of the new account"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 409 {object} map[string]string "Account already exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	id, err := h.accountService.Register(r.Context(), req)
	if err != nil {
		h.RespondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, map[string]int{"id": id})
}

// Login handles POST /auth/login
// @Summary Log in
// @Description Verifies email and password and returns a session token with the public profile
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.LoginResult "Session token and profile"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 429 {object} map[string]string "Too many login attempts"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	result, err := h.accountService.Login(r.Context(), req)
	if err != nil {
		// unknown email and wrong password must be indistinguishable
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrInvalidCredentials) {
			h.RespondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.RespondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// Me handles GET /auth/me
// @Summary Current session
// @Description Returns the identity carried by the session token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.PublicProfile "Session identity"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := authMiddleware.ClaimsFromContext(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.RespondJSON(w, http.StatusOK, models.PublicProfile{
		ID:   claims.UserID,
		Name: claims.Name,
		Role: claims.Role,
	})
}
