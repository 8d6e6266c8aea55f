package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"blogit/internal/domain"
)

// CookieConfig controla como viaja el token de sesion.
type CookieConfig struct {
	Name   string
	Secure bool
}

// setSessionCookie marca la cookie HttpOnly y SameSite=Lax. Sin expiracion la
// cookie dura lo que la sesion del navegador.
func setSessionCookie(c *gin.Context, cfg CookieConfig, sess domain.Session) {
	maxAge := 0
	if sess.ExpiresAt != nil {
		maxAge = int(time.Until(*sess.ExpiresAt).Seconds())
		if maxAge <= 0 {
			maxAge = -1
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.Name, sess.Token, maxAge, "/", "", cfg.Secure, true)
}

func clearSessionCookie(c *gin.Context, cfg CookieConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.Name, "", -1, "/", "", cfg.Secure, true)
}
