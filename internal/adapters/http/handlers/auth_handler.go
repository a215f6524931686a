package handlers

import (
	"errors"

	"libraryhub/internal/config"
	"libraryhub/internal/core/domain"
	"libraryhub/internal/core/services"
	"libraryhub/internal/pkg/response"
	"libraryhub/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// LoginResponse is the body of a successful login
type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  uint   `json:"userId"`
	Token   string `json:"token"`
}

// PageInfo describes a form page for the UI
type PageInfo struct {
	Page   string   `json:"page"`
	Title  string   `json:"title"`
	Action string   `json:"action"`
	Fields []string `json:"fields"`
}

// Signup handles user registration
// @Summary Sign up
// @Description Create a login with email, password and name
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.SignupInput true "Signup data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req services.SignupInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if _, err := h.authService.Signup(c.Context(), &req); err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingCredentials):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrDuplicateEmail):
			return response.Conflict(c, err.Error())
		default:
			return renderError(c, err, "Internal server error")
		}
	}

	return response.Success(c, "signup success", nil)
}

// Login handles user login
// @Summary Log in
// @Description Verify credentials, set the session cookies and return the token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 429 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.authService.Login(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingCredentials):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrInvalidCredentials):
			return response.Unauthorized(c, err.Error())
		default:
			return renderError(c, err, "Internal server error")
		}
	}

	session.SetCookies(c, h.cfg, result.UserID, result.Token)

	return c.JSON(LoginResponse{
		Success: true,
		Message: "Login success",
		UserID:  result.UserID,
		Token:   result.Token,
	})
}

// Logout handles user logout
// @Summary Log out
// @Description Clear the session cookies
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	session.ClearCookies(c, h.cfg)
	return response.Success(c, "Logged out", nil)
}

// LoginPage describes the login form
// @Summary Login page
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/login [get]
func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	return response.Success(c, "Login", PageInfo{
		Page:   "login",
		Title:  "Sign in to LibraryHub",
		Action: "/auth/login",
		Fields: []string{"email", "password"},
	})
}

// SignupPage describes the signup form
// @Summary Signup page
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/signup [get]
func (h *AuthHandler) SignupPage(c *fiber.Ctx) error {
	return response.Success(c, "Signup", PageInfo{
		Page:   "signup",
		Title:  "Create a LibraryHub account",
		Action: "/auth/signup",
		Fields: []string{"name", "email", "password"},
	})
}
