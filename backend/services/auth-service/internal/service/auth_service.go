package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"smartcashpower/backend/services/auth-service/internal/models"
	"smartcashpower/backend/services/auth-service/internal/password"
	"smartcashpower/backend/services/auth-service/internal/repository"
)

// DefaultRole is assigned to every self-registered account.
const DefaultRole = "USER"

var (
	// ErrAccountExists is returned when email or phone number is taken.
	ErrAccountExists = errors.New("auth: email or phone number already registered")
	// ErrInvalidCredentials represents login failure.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrAccountBlocked rejects logins on suspended accounts.
	ErrAccountBlocked = errors.New("auth: account is blocked")
)

// UserRepository defines storage contract used by the service.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByEmailOrPhone(ctx context.Context, email, phoneNumber string) (*models.User, error)
}

// AuthService contains registration/login logic.
type AuthService struct {
	repo      UserRepository
	hasher    password.Hasher
	tokenizer *TokenService
	logger    *zap.Logger
}

// NewAuthService builds AuthService.
func NewAuthService(repo UserRepository, hasher password.Hasher, tokenizer *TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		tokenizer: tokenizer,
		logger:    logger,
	}
}

// SignupInput is the registration payload.
type SignupInput struct {
	Email       string
	PhoneNumber string
	FullName    string
	Password    string
}

// Signup registers a new user. Email and phone number must both be unused.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.PhoneNumber = strings.TrimSpace(input.PhoneNumber)
	input.FullName = strings.TrimSpace(input.FullName)

	if input.Email == "" {
		return nil, errors.New("auth: email required")
	}
	if input.PhoneNumber == "" {
		return nil, errors.New("auth: phone number required")
	}
	if input.FullName == "" {
		return nil, errors.New("auth: full name required")
	}
	if input.Password == "" {
		return nil, errors.New("auth: password required")
	}

	if _, err := s.repo.GetByEmailOrPhone(ctx, input.Email, input.PhoneNumber); err == nil {
		return nil, ErrAccountExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        input.Email,
		PhoneNumber:  input.PhoneNumber,
		FullName:     input.FullName,
		PasswordHash: hash,
		Role:         DefaultRole,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return user, nil
}

// Login authenticates a user and produces a JWT.
func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || plainPassword == "" {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, plainPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.Active {
		return "", nil, ErrAccountBlocked
	}

	token, err := s.tokenizer.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}
