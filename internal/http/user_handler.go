package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blogit/internal/service"
)

const (
	msgGenericFailure   = "Something went wrong. Please try again."
	msgWrongCredentials = "Wrong login credentials."
)

// UserHandler mantiene dependencias para signup, login y sesion.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	sessions *service.SessionService
	limiter  service.LoginRateLimiter
	metrics  *AuthMetrics
	cookie   CookieConfig
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(
	logger *zap.Logger,
	userServ *service.UserService,
	sessions *service.SessionService,
	limiter service.LoginRateLimiter,
	metrics *AuthMetrics,
	cookie CookieConfig,
) *UserHandler {
	return &UserHandler{
		logger:   logger,
		userServ: userServ,
		sessions: sessions,
		limiter:  limiter,
		metrics:  metrics,
		cookie:   cookie,
	}
}

// Signup maneja POST /auth/signup.
func (h *UserHandler) Signup(c *gin.Context) {
	var req struct {
		FirstName    string `json:"firstName"`
		LastName     string `json:"lastName"`
		EmailAddress string `json:"emailAddress"`
		Username     string `json:"username"`
		Password     string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid signup request", zap.Error(err))
		h.metrics.Observe("signup", "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	_, err := h.userServ.Signup(c.Request.Context(), service.SignupInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		EmailAddress: req.EmailAddress,
		Username:     req.Username,
		Password:     req.Password,
	})
	if err != nil {
		h.metrics.Observe("signup", outcomeFor(err))
		writeServiceError(c, h.logger, "signup failed", err)
		return
	}

	h.metrics.Observe("signup", "success")
	c.JSON(http.StatusCreated, gin.H{"message": "User successfully created."})
}

// Login maneja POST /auth/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier" binding:"required"`
		Password   string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		h.metrics.Observe("login", "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if h.limiter != nil && !h.limiter.Allow(req.Identifier) {
		h.metrics.Observe("login", "rate_limited")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		return
	}

	user, err := h.userServ.Authenticate(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			if h.limiter != nil {
				h.limiter.RecordFailure(req.Identifier)
			}
			h.metrics.Observe("login", "invalid_credentials")
			c.JSON(http.StatusUnauthorized, gin.H{"error": msgWrongCredentials})
			return
		}
		h.metrics.Observe("login", "error")
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgGenericFailure})
		return
	}

	if h.sessions == nil {
		h.logger.Error("session issuer not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgGenericFailure})
		return
	}
	sess, err := h.sessions.Issue(user)
	if err != nil {
		h.metrics.Observe("login", "error")
		h.logger.Error("session issue failed", zap.Error(err), zap.String("user_id", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgGenericFailure})
		return
	}

	if h.limiter != nil {
		h.limiter.Reset(req.Identifier)
	}
	h.metrics.Observe("login", "success")
	setSessionCookie(c, h.cookie, sess)
	c.JSON(http.StatusOK, user.Public())
}

// Logout maneja POST /auth/logout. Requiere SessionMiddleware.
func (h *UserHandler) Logout(c *gin.Context) {
	claims, ok := GetSessionClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	if err := h.sessions.Revoke(c.Request.Context(), claims); err != nil {
		h.metrics.Observe("logout", "error")
		h.logger.Error("session revoke failed", zap.Error(err), zap.String("user_id", claims.UserID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgGenericFailure})
		return
	}
	h.metrics.Observe("logout", "success")
	clearSessionCookie(c, h.cookie)
	c.Status(http.StatusNoContent)
}

// Me maneja GET /auth/me.
func (h *UserHandler) Me(c *gin.Context) {
	claims, ok := GetSessionClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	user, err := h.userServ.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		writeServiceError(c, h.logger, "get profile failed", err)
		return
	}
	c.JSON(http.StatusOK, user.Profile())
}
