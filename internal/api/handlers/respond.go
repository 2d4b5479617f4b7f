// Package handlers implements the HTTP boundary: one gin handler per
// endpoint in the external surface, translating domain errors into the
// uniform envelope and domain results into the response shapes.
package handlers

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/moneyquest/backend/internal/apperrors"
	"github.com/moneyquest/backend/pkg/logger"
)

// errorEnvelope is the uniform failure response every endpoint returns,
// matching the shape internal/api/middleware already uses for
// pre-handler failures.
type errorEnvelope struct {
	StatusCode       int                     `json:"statusCode"`
	Message          string                  `json:"message"`
	Error            string                  `json:"error"`
	Timestamp        string                  `json:"timestamp"`
	Path             string                  `json:"path"`
	ValidationErrors []apperrors.FieldError `json:"validationErrors,omitempty"`
}

// validate is shared by every handler that binds a request body.
var validate = validator.New()

// respondError converts err into the uniform envelope and writes it.
// Anything not already an *apperrors.Error is logged with a stack trace
// through the request logger and folded into Internal without leaking
// internals.
func respondError(c *gin.Context, err error) {
	appErr, ok := apperrors.Of(err)
	if !ok {
		if v, exists := c.Get("logger"); exists {
			if reqLog, isLogger := v.(*logger.Logger); isLogger {
				reqLog.Errorw("unhandled error", "error", err, "stack", string(debug.Stack()))
			}
		}
		appErr = apperrors.Wrap(apperrors.Internal, "internal server error", err)
	}

	status := appErr.Kind.HTTPStatus()
	c.JSON(status, errorEnvelope{
		StatusCode:       status,
		Message:          appErr.Message,
		Error:            string(appErr.Kind),
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		Path:             c.Request.URL.Path,
		ValidationErrors: appErr.Fields,
	})
}

// respondValidationError converts a validator.ValidationErrors into the
// ValidationFailed envelope.
func respondValidationError(c *gin.Context, err error) {
	appErr := apperrors.New(apperrors.ValidationFailed, "request validation failed")
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			appErr = appErr.WithField(fe.Field(), fe.Tag())
		}
	}
	respondError(c, appErr)
}

// bindJSON binds and validates a request body, responding with the
// uniform envelope on failure. Returns false if the handler should stop.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		respondValidationError(c, err)
		return false
	}
	if err := validate.Struct(dest); err != nil {
		respondValidationError(c, err)
		return false
	}
	return true
}

// userIDFromContext reads the authenticated caller's id, set by
// middleware.Authentication.
func userIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		respondError(c, apperrors.New(apperrors.Unauthorized, "missing authenticated user"))
		return uuid.UUID{}, false
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		respondError(c, apperrors.New(apperrors.Internal, "malformed user context"))
		return uuid.UUID{}, false
	}
	return id, true
}

func ok(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, body)
}

func created(c *gin.Context, body interface{}) {
	c.JSON(http.StatusCreated, body)
}
