package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"blogit/internal/domain"
)

const sessionIssuer = "blogit"

// SessionService emite y valida los tokens de sesion firmados con HS256.
// El secreto se fija al construir el servicio y no cambia despues.
type SessionService struct {
	secret  []byte
	ttl     time.Duration
	issuer  string
	revoked RevocationStore
	now     func() time.Time
}

// Claims son los datos visibles (no cifrados) del token de sesion.
type Claims struct {
	UserID    string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	jwt.RegisteredClaims
}

var (
	ErrSessionMissing = errors.New("session token missing")
	ErrSessionInvalid = errors.New("session token invalid")
	ErrSessionExpired = errors.New("session token expired")
	ErrSessionRevoked = errors.New("session token revoked")
)

// NewSessionService crea el emisor. ttl == 0 emite tokens sin exp.
func NewSessionService(secret string, ttl time.Duration) *SessionService {
	if ttl < 0 {
		ttl = 0
	}
	return &SessionService{
		secret:  []byte(secret),
		ttl:     ttl,
		issuer:  sessionIssuer,
		revoked: NewMemoryRevocationStore(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func NewSessionServiceWithStore(secret string, ttl time.Duration, store RevocationStore) *SessionService {
	svc := NewSessionService(secret, ttl)
	if store != nil {
		svc.revoked = store
	}
	return svc
}

func (s *SessionService) TTL() time.Duration { return s.ttl }

// Issue firma un token para un usuario ya autenticado.
func (s *SessionService) Issue(user domain.User) (domain.Session, error) {
	if len(s.secret) == 0 {
		return domain.Session{}, ErrSessionInvalid
	}
	if strings.TrimSpace(user.ID) == "" {
		return domain.Session{}, ErrSessionInvalid
	}
	now := s.now()
	jti := uuid.NewString()
	claims := Claims{
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       jti,
			Issuer:   s.issuer,
			Subject:  user.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	var expiresAt *time.Time
	if s.ttl > 0 {
		exp := now.Add(s.ttl)
		expiresAt = &exp
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{
		ID:        jti,
		UserID:    user.ID,
		Token:     signed,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify comprueba firma, emisor, expiracion y revocacion. No modifica nada.
func (s *SessionService) Verify(ctx context.Context, token string) (Claims, error) {
	if len(s.secret) == 0 {
		return Claims{}, ErrSessionInvalid
	}
	if strings.TrimSpace(token) == "" {
		return Claims{}, ErrSessionMissing
	}
	claims, err := s.parseToken(token)
	if err != nil {
		return Claims{}, err
	}
	if !s.isValidClaims(claims) {
		return Claims{}, ErrSessionInvalid
	}
	if claims.ID != "" && s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return Claims{}, err
		}
		if revoked {
			return Claims{}, ErrSessionRevoked
		}
	}
	return claims, nil
}

// Revoke invalida el token hasta su propia expiracion.
func (s *SessionService) Revoke(ctx context.Context, claims Claims) error {
	if claims.ID == "" || s.revoked == nil {
		return nil
	}
	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(s.now())
		if ttl <= 0 {
			return nil
		}
	}
	return s.revoked.Revoke(ctx, claims.ID, ttl)
}

func (s *SessionService) parseToken(tokenString string) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrSessionExpired
		}
		return Claims{}, ErrSessionInvalid
	}
	return claims, nil
}

func (s *SessionService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.UserID) == "" {
		return false
	}
	if claims.Subject != claims.UserID {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
