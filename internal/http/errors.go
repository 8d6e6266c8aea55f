package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blogit/internal/service"
	"blogit/internal/storage"
)

// writeServiceError traduce los errores del servicio a respuestas. Los errores
// inesperados se loguean y el cliente recibe un mensaje generico.
func writeServiceError(c *gin.Context, logger *zap.Logger, msg string, err error) {
	var (
		vErr    *service.ValidationError
		weakErr *service.WeakPasswordError
	)
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Field + " " + vErr.Reason, "field": vErr.Field})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email address already in use."})
	case errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already in use."})
	case errors.As(err, &weakErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Pick a stronger password", "feedback": weakErr.Feedback})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgWrongCredentials})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, storage.ErrUnsupportedType), errors.Is(err, storage.ErrEmpty):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": storage.ErrUnsupportedType.Error()})
	default:
		logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgGenericFailure})
	}
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, service.ErrValidation):
		return "invalid"
	case errors.Is(err, service.ErrDuplicateIdentity):
		return "duplicate"
	case errors.Is(err, service.ErrWeakPassword):
		return "weak_password"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "error"
	}
}
