package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/iho/smartwealth/internal/adapter/http/dto"
	"github.com/iho/smartwealth/internal/domain"
	"github.com/iho/smartwealth/internal/infrastructure/auth"
	"github.com/iho/smartwealth/internal/usecase"
)

// UserService defines the behavior needed by AuthHandler.
type UserService interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, input usecase.AuthenticateInput) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// Seeder writes the demo ledger for users that have none.
type Seeder interface {
	SeedIfNeeded(ctx context.Context, userID string) (bool, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	userUC     UserService
	seeder     Seeder
	jwtManager *auth.JWTManager
	logger     zerolog.Logger
}

// NewAuthHandler creates a new auth handler. seeder may be nil.
func NewAuthHandler(userUC UserService, seeder Seeder, jwtManager *auth.JWTManager, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userUC:     userUC,
		seeder:     seeder,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// Register creates a user and signs them in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userUC.Register(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to register", err)
		return
	}

	h.respondWithToken(w, http.StatusCreated, user, false)
}

// Login verifies credentials and returns a token. The first login of a
// user without data seeds the demo ledger.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userUC.Authenticate(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "invalid credentials", err)
		return
	}

	seeded := false
	if h.seeder != nil {
		seeded, err = h.seeder.SeedIfNeeded(r.Context(), user.ID)
		if err != nil {
			// The user can still sign in with an empty ledger.
			h.logger.Warn().Err(err).Str("user_id", user.ID).Msg("demo seeding failed")
		}
	}

	h.respondWithToken(w, http.StatusOK, user, seeded)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, user *domain.User, seeded bool) {
	token, expiresAt, err := h.jwtManager.Issue(user)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to sign token")
		writeError(w, http.StatusInternalServerError, "failed to generate token", "")
		return
	}

	writeJSON(w, status, dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.UserFromDomain(user),
		Seeded:    seeded,
	})
}

// GetCurrentUser returns the current authenticated user
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	user, err := h.userUC.GetUser(r.Context(), uid)
	if err != nil {
		writeDomainError(w, "failed to load user", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}
