package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"smartcashpower/backend/services/auth-service/internal/models"
)

// ErrUserNotFound represents missing user rows.
var ErrUserNotFound = errors.New("user not found")

// UserRepository handles CRUD for the users table.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository returns repository instance.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	const query = `
		INSERT INTO users (email, phone_number, full_name, password_hash, role, active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING id, active, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		user.Email,
		user.PhoneNumber,
		user.FullName,
		user.PasswordHash,
		user.Role,
	).Scan(&user.ID, &user.Active, &user.CreatedAt)
}

// GetByEmail fetches a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `
		SELECT id, email, phone_number, full_name, password_hash, role, active, created_at
		FROM users
		WHERE email = $1
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

// GetByEmailOrPhone fetches a user matching either identifier, used for the
// duplicate check at registration.
func (r *UserRepository) GetByEmailOrPhone(ctx context.Context, email, phoneNumber string) (*models.User, error) {
	const query = `
		SELECT id, email, phone_number, full_name, password_hash, role, active, created_at
		FROM users
		WHERE email = $1 OR phone_number = $2
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(phoneNumber)))
}

func (r *UserRepository) scanOne(row *sql.Row) (*models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Email, &user.PhoneNumber, &user.FullName, &user.PasswordHash, &user.Role, &user.Active, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
