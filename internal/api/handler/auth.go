package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Sharadgup/AGI-Innovation/internal/api/middleware"
	"github.com/Sharadgup/AGI-Innovation/internal/api/response"
	"github.com/Sharadgup/AGI-Innovation/internal/domain"
	"github.com/Sharadgup/AGI-Innovation/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input domain.UserCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			response.BadRequest(w, fieldErrors(validationErrors))
			return
		}
		response.BadRequest(w, err.Error())
		return
	}

	user, err := h.authService.Register(r.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			response.Conflict(w, "username or email already registered")
			return
		}
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to register user")
		response.InternalError(w, "failed to register user")
		return
	}

	response.Created(w, map[string]any{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

func fieldErrors(validationErrors validator.ValidationErrors) map[string]string {
	errs := make(map[string]string)
	for _, e := range validationErrors {
		field := e.Field()
		tag := e.Tag()
		switch tag {
		case "required":
			errs[field] = "field is required"
		case "email":
			errs[field] = "invalid email format"
		case "alphanum":
			errs[field] = "must contain only letters and digits"
		case "min":
			errs[field] = "must be at least " + e.Param() + " characters"
		case "max":
			errs[field] = "must be at most " + e.Param() + " characters"
		default:
			errs[field] = "validation failed on " + tag
		}
	}
	return errs
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.UserLogin
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	tokens, err := h.authService.Login(r.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			response.Unauthorized(w, "invalid credentials")
			return
		}
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to log in")
		response.InternalError(w, "failed to log in")
		return
	}

	response.OK(w, tokens)
}

// Refresh handles token refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	tokens, err := h.authService.Refresh(r.Context(), input.RefreshToken)
	if err != nil {
		response.Unauthorized(w, "invalid refresh token")
		return
	}

	response.OK(w, tokens)
}

// Me returns the current authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}
	if user == nil {
		response.Unauthorized(w, "user not found")
		return
	}

	response.OK(w, map[string]any{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"created_at": user.CreatedAt,
	})
}
