package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blogit/internal/service"
)

// RouterOptions agrupa la configuracion que no pertenece a ningun handler.
type RouterOptions struct {
	CookieName  string
	CORSOrigins []string

	// PhotoDir se sirve en /profile-photos cuando el blob store es local.
	PhotoDir string
}

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(
	logger *zap.Logger,
	sessions *service.SessionService,
	userH *UserHandler,
	profileH *ProfileHandler,
	metrics *AuthMetrics,
	opts RouterOptions,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), corsMiddleware(opts.CORSOrigins))

	requireSession := SessionMiddleware(logger, sessions, opts.CookieName)

	auth := r.Group("/auth", jsonContentTypeMiddleware())
	auth.POST("/signup", userH.Signup)
	auth.POST("/login", userH.Login)
	auth.POST("/logout", requireSession, userH.Logout)
	auth.GET("/me", requireSession, userH.Me)

	profile := r.Group("/profile", jsonContentTypeMiddleware(), requireSession)
	profile.PUT("/password", profileH.ChangePassword)
	profile.PUT("/photo", profileH.UpdatePhoto)

	if opts.PhotoDir != "" {
		r.Static("/profile-photos", opts.PhotoDir)
	}
	if metrics != nil {
		r.GET("/metrics", metrics.Handler())
	}

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

// corsMiddleware solo responde con cabeceras CORS a los origenes de la lista.
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return func(c *gin.Context) {
		reqOrigin := c.GetHeader("Origin")
		if _, ok := allowed[reqOrigin]; ok && reqOrigin != "" && reqOrigin != "*" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", reqOrigin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
		}
		c.Writer.Header().Add("Vary", "Origin")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
