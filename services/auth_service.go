package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const RoleAdmin = "admin"

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*AdminIdentity, error)
}

type LoginInput struct {
	Password string `json:"password"`
}

// AdminIdentity результат успешного входа, из него хендлер выпускает токен.
type AdminIdentity struct {
	Role string `json:"role"`
}

type authService struct {
	passwordHash []byte
	logger       *slog.Logger
}

// NewAuthService проверяет вход по одному bcrypt-хэшу. Пустой хэш
// отключает вход администратора.
func NewAuthService(passwordHash string, logger *slog.Logger) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		passwordHash: []byte(strings.TrimSpace(passwordHash)),
		logger:       logger,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*AdminIdentity, error) {
	if input.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidationFailed)
	}
	if len(s.passwordHash) == 0 {
		s.logger.Warn("admin login attempted but no admin password hash is configured")
		return nil, ErrAuthInvalidCredentials
	}

	err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("ошибка проверки пароля: %w", err)
	}

	return &AdminIdentity{Role: RoleAdmin}, nil
}
