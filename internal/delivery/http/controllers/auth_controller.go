package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "collegeevents/internal/delivery/http/helpers"
	"collegeevents/internal/delivery/http/middleware"
	"collegeevents/internal/domain"
)

// SignUpRequest is the request body for POST /auth/signup. Signup always creates a student account.
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (s SignUpRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(s.Email) == "" {
		errs = append(errs, "email is required")
	}
	if s.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginRequest is the request body for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(l.Email) == "" {
		errs = append(errs, "email is required")
	}
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Token     string           `json:"token"`
	TokenType string           `json:"token_type"`
	ExpiresIn int64            `json:"expires_in"`
	User      *domain.Identity `json:"user"`
}

// AuthSuccessResponse is the success response envelope for signup and login.
type AuthSuccessResponse struct {
	Data  *AuthResponse `json:"data"`
	Error *h.APIError   `json:"error"`
}

type AuthController struct {
	Logger      *slog.Logger
	Sessions    domain.SessionService
	Issuer      domain.TokenIssuer
	TokenExpiry time.Duration
}

func NewAuthController(logger *slog.Logger, sessions domain.SessionService, issuer domain.TokenIssuer, tokenExpiry time.Duration) *AuthController {
	return &AuthController{
		Logger:      logger,
		Sessions:    sessions,
		Issuer:      issuer,
		TokenExpiry: tokenExpiry,
	}
}

// SignUp godoc
// @Summary Sign up a new student
// @Description Creates a student account and returns a session token. Club accounts cannot be created here.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body SignUpRequest true "Sign-up data"
// @Success 201 {object} controllers.AuthSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email already in use)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/signup [post]
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	identity, err := c.Sessions.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	c.writeSession(w, r, http.StatusCreated, identity)
}

// Login godoc
// @Summary Log in
// @Description Checks email and password against the stored accounts and returns a session token.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} controllers.AuthSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	identity, err := c.Sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if identity == nil {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid email or password")
		return
	}
	c.writeSession(w, r, http.StatusOK, identity)
}

// Logout godoc
// @Summary Log out
// @Description Clears the process-wide current identity. Tokens stay valid until they expire.
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /auth/logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	c.Sessions.Logout()
	w.WriteHeader(http.StatusNoContent)
}

// Me godoc
// @Summary Current account
// @Description Returns the account behind the bearer token.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the identity"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /auth/me [get]
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	identity, err := c.Sessions.GetByID(r.Context(), caller.ID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, identity)
}

func (c *AuthController) writeSession(w http.ResponseWriter, r *http.Request, status int, identity *domain.Identity) {
	token, err := c.Issuer.Issue(domain.SessionClaims{
		AccountID: identity.ID,
		Email:     identity.Email,
		Role:      identity.Role,
		ClubName:  identity.ClubName,
	}, c.TokenExpiry)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, status, &AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(c.TokenExpiry.Seconds()),
		User:      identity,
	})
}
