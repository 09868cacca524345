package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"smartcashpower/backend/services/auth-service/internal/models"
	"smartcashpower/backend/services/auth-service/internal/password"
	"smartcashpower/backend/services/auth-service/internal/repository"
)

type fakeUserRepo struct {
	seq   int64
	users map[int64]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]models.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	f.seq++
	user.ID = f.seq
	user.Active = true
	user.CreatedAt = time.Now()
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmailOrPhone(_ context.Context, email, phoneNumber string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email || user.PhoneNumber == phoneNumber {
			copied := user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func newTestAuthService() (*AuthService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	hasher := password.NewBcryptHasher(bcrypt.MinCost)
	tokenizer := NewTokenService("test-secret", time.Hour)
	return NewAuthService(repo, hasher, tokenizer, zap.NewNop()), repo
}

func validSignup() SignupInput {
	return SignupInput{
		Email:       "Alice@Example.com",
		PhoneNumber: "+250780000001",
		FullName:    "Alice Umutoni",
		Password:    "s3cret",
	}
}

func TestSignup(t *testing.T) {
	svc, _ := newTestAuthService()

	user, err := svc.Signup(context.Background(), validSignup())
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("user not persisted")
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Role != DefaultRole {
		t.Fatalf("role = %q, want %q", user.Role, DefaultRole)
	}
	if user.PasswordHash == "s3cret" || user.PasswordHash == "" {
		t.Fatalf("password stored without hashing")
	}
}

func TestSignupDuplicate(t *testing.T) {
	svc, _ := newTestAuthService()
	if _, err := svc.Signup(context.Background(), validSignup()); err != nil {
		t.Fatalf("first signup: %v", err)
	}

	// Same email, different phone.
	dup := validSignup()
	dup.PhoneNumber = "+250780000099"
	if _, err := svc.Signup(context.Background(), dup); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists for duplicate email, got %v", err)
	}

	// Same phone, different email.
	dup = validSignup()
	dup.Email = "other@example.com"
	if _, err := svc.Signup(context.Background(), dup); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists for duplicate phone, got %v", err)
	}
}

func TestSignupValidation(t *testing.T) {
	svc, _ := newTestAuthService()

	cases := []struct {
		name   string
		mutate func(*SignupInput)
	}{
		{"missing email", func(in *SignupInput) { in.Email = " " }},
		{"missing phone", func(in *SignupInput) { in.PhoneNumber = "" }},
		{"missing name", func(in *SignupInput) { in.FullName = "" }},
		{"missing password", func(in *SignupInput) { in.Password = "" }},
	}
	for _, tc := range cases {
		input := validSignup()
		tc.mutate(&input)
		if _, err := svc.Signup(context.Background(), input); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuthService()
	if _, err := svc.Signup(context.Background(), validSignup()); err != nil {
		t.Fatalf("signup: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatalf("empty token")
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}

	claims, err := NewTokenService("test-secret", time.Hour).ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != DefaultRole {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestLoginFailures(t *testing.T) {
	svc, repo := newTestAuthService()
	if _, err := svc.Signup(context.Background(), validSignup()); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty input, got %v", err)
	}

	// A blocked account authenticates but is rejected.
	for id, user := range repo.users {
		user.Active = false
		repo.users[id] = user
	}
	if _, _, err := svc.Login(context.Background(), "alice@example.com", "s3cret"); !errors.Is(err, ErrAccountBlocked) {
		t.Fatalf("expected ErrAccountBlocked, got %v", err)
	}
}

func TestTokenServiceRejectsForgedToken(t *testing.T) {
	issuer := NewTokenService("secret-a", time.Hour)
	token, err := issuer.GenerateToken(1, "USER")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := NewTokenService("secret-b", time.Hour).ValidateToken(token); err == nil {
		t.Fatalf("token signed with a different secret must not validate")
	}
}

func TestTokenServiceRequiresUserID(t *testing.T) {
	issuer := NewTokenService("secret", time.Hour)
	if _, err := issuer.GenerateToken(0, "USER"); err == nil {
		t.Fatalf("expected error for zero user id")
	}
}
