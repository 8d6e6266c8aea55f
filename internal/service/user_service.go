package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"blogit/internal/domain"
	"blogit/internal/repository"
	"blogit/internal/storage"
)

// UserService coordina signup, login y las operaciones del usuario autenticado.
type UserService struct {
	logger   *zap.Logger
	users    repository.UserRepository
	hasher   PasswordHasher
	policy   PasswordPolicy
	blobs    storage.BlobStore
	validate *validator.Validate

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(
	logger *zap.Logger,
	users repository.UserRepository,
	hasher PasswordHasher,
	policy PasswordPolicy,
	blobs storage.BlobStore,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		logger:   logger,
		users:    users,
		hasher:   hasher,
		policy:   policy,
		blobs:    blobs,
		validate: newValidator(),
	}
}

type SignupInput struct {
	FirstName    string `json:"firstName" validate:"required,max=100"`
	LastName     string `json:"lastName" validate:"required,max=100"`
	EmailAddress string `json:"emailAddress" validate:"required,email,max=254"`
	Username     string `json:"username" validate:"required,min=3,max=32,excludesall=@"`
	Password     string `json:"password" validate:"required,max=72"`
}

// Signup crea la cuenta. El orden importa: validacion, unicidad, fuerza de la
// contraseña y recien entonces el hash, que es la parte cara.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (domain.User, error) {
	if s.users == nil || s.hasher == nil || s.policy == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.EmailAddress = strings.TrimSpace(input.EmailAddress)
	input.Username = strings.TrimSpace(input.Username)
	if err := s.validateStruct(input); err != nil {
		return domain.User{}, err
	}

	existing, err := s.users.FindByEmailOrUsernameExcept(ctx, input.EmailAddress, input.Username, "")
	switch {
	case err == nil:
		if existing.EmailAddress == input.EmailAddress {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, ErrUsernameTaken
	case !errors.Is(err, repository.ErrNotFound):
		return domain.User{}, fmt.Errorf("duplicate check: %w", err)
	}

	if err := s.policy.Check(input.Password, input.FirstName, input.LastName, input.EmailAddress, input.Username); err != nil {
		return domain.User{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		EmailAddress: input.EmailAddress,
		Username:     input.Username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return domain.User{}, ErrEmailTaken
		case errors.Is(err, repository.ErrDuplicateUsername):
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate no distingue entre identificador inexistente y contraseña
// incorrecta: ambos devuelven ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, identifier, password string) (domain.User, error) {
	if s.users == nil || s.hasher == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmailOrUsername(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.burnHash(password)
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}
	if user.PasswordHash == "" {
		s.burnHash(password)
		return domain.User{}, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return domain.User{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok || user.IsDeactivated {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// ChangePassword exige la contraseña actual y aplica la misma politica que el signup.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" {
		return &ValidationError{Field: "currentPassword", Reason: "is required"}
	}
	if next == "" {
		return &ValidationError{Field: "newPassword", Reason: "is required"}
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := s.hasher.Verify(current, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	if err := s.policy.Check(next, user.FirstName, user.LastName, user.EmailAddress, user.Username); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// UpdateProfilePhoto reemplaza la foto de perfil. Si falla la escritura en el
// store se borra el blob nuevo; el anterior se borra solo despues de persistir.
func (s *UserService) UpdateProfilePhoto(ctx context.Context, userID string, data []byte, contentType string) (domain.User, error) {
	if s.blobs == nil {
		return domain.User{}, errors.New("blob store not configured")
	}
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}

	ref, err := s.blobs.Store(ctx, data, contentType)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.users.UpdateProfilePhoto(ctx, userID, &ref); err != nil {
		if delErr := s.blobs.Delete(ctx, ref); delErr != nil {
			s.logger.Warn("cleanup new profile photo failed", zap.Error(delErr), zap.String("user_id", userID))
		}
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("update profile photo: %w", err)
	}

	if user.ProfilePhoto != nil && *user.ProfilePhoto != "" {
		if err := s.blobs.Delete(ctx, *user.ProfilePhoto); err != nil {
			s.logger.Warn("delete old profile photo failed", zap.Error(err), zap.String("user_id", userID))
		}
	}
	user.ProfilePhoto = &ref
	return user, nil
}

// burnHash compara contra un hash fijo para que un identificador inexistente
// tarde lo mismo que una contraseña incorrecta.
func (s *UserService) burnHash(password string) {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(uuid.NewString())
		if err == nil {
			s.dummyHash = h
		}
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *UserService) validateStruct(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: fe.Field(), Reason: reasonFor(fe)}
	}
	return &ValidationError{Field: "request", Reason: err.Error()}
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "excludesall":
		return "contains characters that are not allowed"
	default:
		return "is invalid"
	}
}
