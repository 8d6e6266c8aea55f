package service

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	minHashCost = 10
	maxHashCost = 12
	// bcrypt ignora todo lo que pase de 72 bytes.
	maxPasswordBytes = 72
)

// PasswordHasher genera y verifica hashes de contraseñas.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}

// BcryptHasher usa bcrypt; el hash resultante incluye salt y costo.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher limita el costo al rango 10..12.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < minHashCost {
		cost = minHashCost
	}
	if cost > maxHashCost {
		cost = maxHashCost
	}
	return &BcryptHasher{cost: cost}
}

// NewBcryptHasherWithCost no aplica limites. Pensado para tests.
func NewBcryptHasherWithCost(cost int) *BcryptHasher {
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Cost() int { return h.cost }

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", &ValidationError{Field: "password", Reason: "is required"}
	}
	if len(plaintext) > maxPasswordBytes {
		return "", &ValidationError{Field: "password", Reason: "must be at most 72 bytes"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("bcrypt compare: %w", err)
}
