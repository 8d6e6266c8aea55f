package service

import (
	"strings"

	"github.com/nbutton23/zxcvbn-go"
)

// DefaultMinScore es el minimo aceptado en la escala 0..4.
const DefaultMinScore = 3

// PasswordPolicy decide si una contraseña es aceptable antes de crear o
// actualizar una cuenta.
type PasswordPolicy interface {
	Check(plaintext string, userInputs ...string) error
}

// Strength es el resultado del estimador.
type Strength struct {
	Score    int
	Feedback string
}

// StrengthPolicy estima la adivinabilidad con zxcvbn (diccionarios, patrones
// de teclado, repeticiones, secuencias, fechas).
type StrengthPolicy struct {
	minScore int
}

func NewStrengthPolicy(minScore int) *StrengthPolicy {
	if minScore < 0 || minScore > 4 {
		minScore = DefaultMinScore
	}
	return &StrengthPolicy{minScore: minScore}
}

func (p *StrengthPolicy) MinScore() int { return p.minScore }

// Evaluate devuelve el puntaje y una sugerencia legible. userInputs son datos
// propios de la cuenta (nombre, email, username) que no deberian formar parte
// de la contraseña.
func (p *StrengthPolicy) Evaluate(plaintext string, userInputs ...string) Strength {
	inputs := make([]string, 0, len(userInputs))
	for _, in := range userInputs {
		in = strings.TrimSpace(in)
		if in == "" {
			continue
		}
		inputs = append(inputs, strings.ToLower(in))
		if at := strings.IndexByte(in, '@'); at > 0 {
			inputs = append(inputs, strings.ToLower(in[:at]))
		}
	}
	result := zxcvbn.PasswordStrength(plaintext, inputs)

	patterns := make([]string, 0, len(result.MatchSequence))
	for _, m := range result.MatchSequence {
		patterns = append(patterns, m.Pattern)
	}
	return Strength{Score: result.Score, Feedback: feedbackFor(plaintext, patterns)}
}

func (p *StrengthPolicy) Check(plaintext string, userInputs ...string) error {
	if plaintext == "" {
		return &ValidationError{Field: "password", Reason: "is required"}
	}
	s := p.Evaluate(plaintext, userInputs...)
	if s.Score < p.minScore {
		return &WeakPasswordError{Feedback: s.Feedback}
	}
	return nil
}

func feedbackFor(plaintext string, patterns []string) string {
	seen := make(map[string]bool, len(patterns))
	for _, pat := range patterns {
		seen[pat] = true
	}
	switch {
	case seen["dictionary"]:
		return "Avoid common words, names and your own account details."
	case seen["spatial"]:
		return "Avoid keyboard patterns like qwerty or asdf."
	case seen["repeat"]:
		return "Avoid repeated characters."
	case seen["sequence"]:
		return "Avoid sequences like abc or 123."
	case seen["date"]:
		return "Avoid dates and years."
	case len([]rune(plaintext)) < 12:
		return "Use a longer password."
	default:
		return "Add more unrelated words or characters."
	}
}
