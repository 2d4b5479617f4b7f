package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/moneyquest/backend/internal/apperrors"
	"github.com/moneyquest/backend/internal/config"
	"github.com/moneyquest/backend/internal/entities"
	"github.com/moneyquest/backend/internal/repository"
	"github.com/moneyquest/backend/pkg/auth"
	"github.com/moneyquest/backend/pkg/crypto"
	"github.com/moneyquest/backend/pkg/logger"
	"github.com/moneyquest/backend/pkg/ratelimit"
)

// AuthHandlers serves account registration and login.
type AuthHandlers struct {
	users   *repository.UserRepository
	cfg     *config.Config
	log     *logger.Logger
	attempts *ratelimit.LoginAttemptTracker
}

// NewAuthHandlers creates an AuthHandlers. attempts may be nil, in which
// case failed-login lockout is skipped (e.g. when Redis isn't configured).
func NewAuthHandlers(users *repository.UserRepository, cfg *config.Config, log *logger.Logger, attempts *ratelimit.LoginAttemptTracker) *AuthHandlers {
	return &AuthHandlers{users: users, cfg: cfg, log: log, attempts: attempts}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type authResponse struct {
	UserID uuid.UUID `json:"userId"`
	Token  string    `json:"token"`
}

// Register creates a new account and issues a bearer token.
func (h *AuthHandlers) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		respondError(c, apperrors.Wrap(apperrors.Internal, "failed to hash password", err))
		return
	}

	u := &entities.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.users.Create(c.Request.Context(), u); err != nil {
		h.log.Warn("registration failed", "error", err)
		respondError(c, apperrors.New(apperrors.Conflict, "username or email already in use"))
		return
	}

	token, _, err := auth.GenerateToken(u.ID, h.cfg.JWT.Secret, h.cfg.JWT.Expiration)
	if err != nil {
		respondError(c, apperrors.Wrap(apperrors.Internal, "failed to issue token", err))
		return
	}

	c.JSON(http.StatusCreated, authResponse{UserID: u.ID, Token: token})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges credentials for a bearer token. Repeated failures for
// the same email are locked out with exponential backoff when a
// LoginAttemptTracker is configured.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	if h.attempts != nil {
		status, err := h.attempts.CheckLoginAllowed(ctx, req.Email)
		if err != nil {
			h.log.Warn("login attempt check failed", "error", err)
		} else if !status.Allowed {
			respondError(c, apperrors.New(apperrors.Unauthorized, "too many failed attempts, try again later"))
			return
		}
	}

	u, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil || !crypto.ValidatePassword(req.Password, u.PasswordHash) {
		if h.attempts != nil {
			if _, recErr := h.attempts.RecordFailedAttempt(ctx, req.Email); recErr != nil {
				h.log.Warn("failed to record login attempt", "error", recErr)
			}
		}
		respondError(c, apperrors.New(apperrors.Unauthorized, "invalid email or password"))
		return
	}

	if h.attempts != nil {
		if recErr := h.attempts.RecordSuccessfulLogin(ctx, req.Email); recErr != nil {
			h.log.Warn("failed to clear login attempts", "error", recErr)
		}
	}

	token, _, err := auth.GenerateToken(u.ID, h.cfg.JWT.Secret, h.cfg.JWT.Expiration)
	if err != nil {
		respondError(c, apperrors.Wrap(apperrors.Internal, "failed to issue token", err))
		return
	}

	ok(c, authResponse{UserID: u.ID, Token: token})
}
