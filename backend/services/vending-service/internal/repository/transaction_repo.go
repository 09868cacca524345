package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"smartcashpower/backend/services/vending-service/internal/models"
)

var (
	// ErrTransactionNotFound represents missing transaction rows.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrStatusFinal is returned when a status update targets a transaction
	// that already reached a terminal state. Terminal statuses are write-once.
	ErrStatusFinal = errors.New("transaction status already final")
)

// TransactionRepository persists purchase transactions.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository returns repository instance.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a new transaction. Amount, units and reference never change
// after this insert.
func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	const query = `
		INSERT INTO transactions (user_id, meter_id, amount, units_purchased, status, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		tx.UserID,
		tx.MeterID,
		tx.Amount,
		tx.UnitsPurchased,
		tx.Status,
		tx.Reference,
	).Scan(&tx.ID, &tx.CreatedAt)
}

// UpdateStatus moves a transaction out of PENDING. The WHERE clause is the
// write-once guard: a row that already holds a terminal status is never
// reassigned.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id int64, status models.TransactionStatus) error {
	const query = `
		UPDATE transactions
		SET status = $2
		WHERE id = $1 AND status = $3
	`
	res, err := r.db.ExecContext(ctx, query, id, status, models.TransactionPending)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStatusFinal
	}
	return nil
}

// ListByUser returns the user's purchase history newest-first, already
// projected with the meter number.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID int64) ([]models.PurchaseResult, error) {
	const query = `
		SELECT t.id, m.meter_number, t.amount, t.units_purchased, t.status, t.created_at, t.reference
		FROM transactions t
		JOIN meters m ON m.id = t.meter_id
		WHERE t.user_id = $1
		ORDER BY t.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.PurchaseResult
	for rows.Next() {
		var res models.PurchaseResult
		if err := rows.Scan(&res.TransactionID, &res.MeterNumber, &res.Amount, &res.UnitsPurchased, &res.Status, &res.CreatedAt, &res.Reference); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// ListByDateRange returns transactions created inside [from, to], for admin
// reporting.
func (r *TransactionRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Transaction, error) {
	const query = `
		SELECT id, user_id, meter_id, amount, units_purchased, status, reference, created_at
		FROM transactions
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.MeterID, &tx.Amount, &tx.UnitsPurchased, &tx.Status, &tx.Reference, &tx.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}

// Delete removes a transaction row. Callers must purge the linked payment
// first; the payment holds the foreign key.
func (r *TransactionRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM transactions WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}
