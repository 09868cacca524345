package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"smartcashpower/backend/services/vending-service/internal/models"
)

// ErrMeterNotFound represents missing meter rows.
var ErrMeterNotFound = errors.New("meter not found")

// MeterRepository handles CRUD for the meters table.
type MeterRepository struct {
	db *sql.DB
}

// NewMeterRepository returns repository instance.
func NewMeterRepository(db *sql.DB) *MeterRepository {
	return &MeterRepository{db: db}
}

// Create inserts a new meter.
func (r *MeterRepository) Create(ctx context.Context, meter *models.Meter) error {
	meter.MeterNumber = strings.TrimSpace(meter.MeterNumber)
	const query = `
		INSERT INTO meters (meter_number, current_units, used_units, active, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		meter.MeterNumber,
		meter.CurrentUnits,
		meter.UsedUnits,
		meter.Active,
		meter.UserID,
	).Scan(&meter.ID)
}

// GetByID fetches a meter by primary key.
func (r *MeterRepository) GetByID(ctx context.Context, id int64) (*models.Meter, error) {
	const query = `
		SELECT id, meter_number, current_units, used_units, active, user_id
		FROM meters
		WHERE id = $1
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByNumber fetches a meter by its unique meter number.
func (r *MeterRepository) GetByNumber(ctx context.Context, meterNumber string) (*models.Meter, error) {
	const query = `
		SELECT id, meter_number, current_units, used_units, active, user_id
		FROM meters
		WHERE meter_number = $1
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, strings.TrimSpace(meterNumber)))
}

func (r *MeterRepository) scanOne(row *sql.Row) (*models.Meter, error) {
	var meter models.Meter
	if err := row.Scan(&meter.ID, &meter.MeterNumber, &meter.CurrentUnits, &meter.UsedUnits, &meter.Active, &meter.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMeterNotFound
		}
		return nil, err
	}
	return &meter, nil
}

// ListByUser returns all meters attached to a user.
func (r *MeterRepository) ListByUser(ctx context.Context, userID int64) ([]models.Meter, error) {
	const query = `
		SELECT id, meter_number, current_units, used_units, active, user_id
		FROM meters
		WHERE user_id = $1
		ORDER BY id
	`
	return r.list(ctx, query, userID)
}

// ListAll returns every meter, for admin reporting.
func (r *MeterRepository) ListAll(ctx context.Context) ([]models.Meter, error) {
	const query = `
		SELECT id, meter_number, current_units, used_units, active, user_id
		FROM meters
		ORDER BY id
	`
	return r.list(ctx, query)
}

func (r *MeterRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Meter, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meters []models.Meter
	for rows.Next() {
		var meter models.Meter
		if err := rows.Scan(&meter.ID, &meter.MeterNumber, &meter.CurrentUnits, &meter.UsedUnits, &meter.Active, &meter.UserID); err != nil {
			return nil, err
		}
		meters = append(meters, meter)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return meters, nil
}

// AddUnits increments the meter balance against the currently stored value
// and returns the new balance. The update is a single atomic statement so
// concurrent purchases cannot lose increments.
func (r *MeterRepository) AddUnits(ctx context.Context, meterID int64, units float64) (float64, error) {
	const query = `
		UPDATE meters
		SET current_units = current_units + $2
		WHERE id = $1
		RETURNING current_units
	`
	var balance float64
	if err := r.db.QueryRowContext(ctx, query, meterID, units).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrMeterNotFound
		}
		return 0, err
	}
	return balance, nil
}

// Delete removes a meter row.
func (r *MeterRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM meters WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMeterNotFound
	}
	return nil
}
