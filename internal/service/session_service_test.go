package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"blogit/internal/domain"
)

func testUser() domain.User {
	return domain.User{ID: "u1", FirstName: "Ada", LastName: "Lovelace", EmailAddress: "ada@x.com", Username: "ada"}
}

func TestSessionService_IssueVerify(t *testing.T) {
	svc := NewSessionService("secret", time.Hour)

	sess, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if sess.Token == "" || sess.ID == "" || sess.ExpiresAt == nil {
		t.Fatalf("unexpected session: %+v", sess)
	}

	claims, err := svc.Verify(context.Background(), sess.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "u1" || claims.FirstName != "Ada" || claims.LastName != "Lovelace" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Subject != "u1" || claims.Issuer != sessionIssuer {
		t.Fatalf("unexpected registered claims: %+v", claims.RegisteredClaims)
	}
}

func TestSessionService_VerifyIsIdempotent(t *testing.T) {
	svc := NewSessionService("secret", time.Hour)
	sess, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	first, err := svc.Verify(context.Background(), sess.Token)
	if err != nil {
		t.Fatalf("first verify: %v", err)
	}
	second, err := svc.Verify(context.Background(), sess.Token)
	if err != nil {
		t.Fatalf("second verify: %v", err)
	}
	if first.UserID != second.UserID || first.ID != second.ID || first.FirstName != second.FirstName {
		t.Fatalf("claims differ: %+v vs %+v", first, second)
	}
}

func TestSessionService_NoExpiryWhenTTLZero(t *testing.T) {
	svc := NewSessionService("secret", 0)
	sess, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if sess.ExpiresAt != nil {
		t.Fatalf("expected no expiry")
	}
	claims, err := svc.Verify(context.Background(), sess.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.ExpiresAt != nil {
		t.Fatalf("expected no exp claim")
	}
}

func TestSessionService_RejectsExpired(t *testing.T) {
	svc := NewSessionService("secret", time.Minute)
	sess, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	svc.now = func() time.Time { return time.Now().UTC().Add(2 * time.Minute) }

	if _, err := svc.Verify(context.Background(), sess.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestSessionService_RejectsForeignSecret(t *testing.T) {
	issuer := NewSessionService("secret-a", time.Hour)
	verifier := NewSessionService("secret-b", time.Hour)
	sess, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Verify(context.Background(), sess.Token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
}

func TestSessionService_RejectsTamperedToken(t *testing.T) {
	svc := NewSessionService("secret", time.Hour)
	sess, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	other := testUser()
	other.ID = "u2"
	forged, err := svc.Issue(other)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	// payload de u2 con la firma de u1
	a := strings.Split(sess.Token, ".")
	b := strings.Split(forged.Token, ".")
	tampered := a[0] + "." + b[1] + "." + a[2]
	if _, err := svc.Verify(context.Background(), tampered); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
}

func TestSessionService_RejectsOtherAlgorithms(t *testing.T) {
	svc := NewSessionService("secret", time.Hour)
	claims := Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:  sessionIssuer,
			Subject: "u1",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.Verify(context.Background(), signed); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
}

func TestSessionService_RejectsWrongIssuerAndSubject(t *testing.T) {
	svc := NewSessionService("secret", time.Hour)
	cases := map[string]Claims{
		"issuer":  {UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{Issuer: "other", Subject: "u1"}},
		"subject": {UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{Issuer: sessionIssuer, Subject: "u2"}},
	}
	for name, claims := range cases {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte("secret"))
		if err != nil {
			t.Fatalf("%s: sign: %v", name, err)
		}
		if _, err := svc.Verify(context.Background(), signed); !errors.Is(err, ErrSessionInvalid) {
			t.Fatalf("%s: expected ErrSessionInvalid, got %v", name, err)
		}
	}
}

func TestSessionService_EmptyTokenAndSecret(t *testing.T) {
	svc := NewSessionService("secret", time.Hour)
	if _, err := svc.Verify(context.Background(), "  "); !errors.Is(err, ErrSessionMissing) {
		t.Fatalf("expected ErrSessionMissing, got %v", err)
	}

	noSecret := NewSessionService("", time.Hour)
	if _, err := noSecret.Issue(testUser()); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid on empty secret, got %v", err)
	}
}

func TestSessionService_Revoke(t *testing.T) {
	svc := NewSessionServiceWithStore("secret", time.Hour, NewMemoryRevocationStore())
	sess, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := svc.Verify(context.Background(), sess.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := svc.Revoke(context.Background(), claims); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.Verify(context.Background(), sess.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked, got %v", err)
	}

	other, err := svc.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Verify(context.Background(), other.Token); err != nil {
		t.Fatalf("expected other session to stay valid, got %v", err)
	}
}
