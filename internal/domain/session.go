package domain

import "time"

// Session describe una sesion emitida al cliente. El token viaja en una cookie;
// el servidor solo conserva el jti cuando la sesion se revoca.
type Session struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Token     string     `json:"-"`
	IssuedAt  time.Time  `json:"issuedAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}
