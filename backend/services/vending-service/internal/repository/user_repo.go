package repository

import (
	"context"
	"database/sql"
	"errors"

	"smartcashpower/backend/services/vending-service/internal/models"
)

// ErrUserNotFound represents missing user rows.
var ErrUserNotFound = errors.New("user not found")

// UserRepository reads and administers accounts from the shared users table.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository returns repository instance.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID fetches a user by primary key.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	const query = `
		SELECT id, email, phone_number, full_name, role, active, created_at
		FROM users
		WHERE id = $1
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, query, id)
	var user models.User
	if err := row.Scan(&user.ID, &user.Email, &user.PhoneNumber, &user.FullName, &user.Role, &user.Active, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UserWithMeters is the admin listing row: an account plus how many meters
// it has attached.
type UserWithMeters struct {
	models.User
	MeterCount int64 `json:"meter_count"`
}

// ListWithMeterCount returns all accounts with their meter counts.
func (r *UserRepository) ListWithMeterCount(ctx context.Context) ([]UserWithMeters, error) {
	const query = `
		SELECT u.id, u.email, u.phone_number, u.full_name, u.role, u.active, u.created_at,
		       COUNT(m.id) AS meter_count
		FROM users u
		LEFT JOIN meters m ON m.user_id = u.id
		GROUP BY u.id
		ORDER BY u.id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []UserWithMeters
	for rows.Next() {
		var u UserWithMeters
		if err := rows.Scan(&u.ID, &u.Email, &u.PhoneNumber, &u.FullName, &u.Role, &u.Active, &u.CreatedAt, &u.MeterCount); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// SetActive toggles the account's active flag.
func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	const query = `UPDATE users SET active = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes the account row.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM users WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}
