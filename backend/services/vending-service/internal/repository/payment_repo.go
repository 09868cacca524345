package repository

import (
	"context"
	"database/sql"
	"errors"

	"smartcashpower/backend/services/vending-service/internal/models"
)

// ErrPaymentNotFound represents missing payment rows.
var ErrPaymentNotFound = errors.New("payment not found")

// PaymentRepository persists the gateway-interaction record for each
// transaction. Exactly one payment exists per transaction.
type PaymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository returns repository instance.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a payment in its pre-gateway state.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	const query = `
		INSERT INTO payments (transaction_id, provider_name, reference, status, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query,
		payment.TransactionID,
		payment.ProviderName,
		payment.Reference,
		payment.Status,
	).Scan(&payment.ID, &payment.CreatedAt)
}

// Update records the gateway outcome. Called exactly once per payment after
// the verify call returns.
func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	const query = `
		UPDATE payments
		SET status = $2, confirmation_code = NULLIF($3, ''), response_message = NULLIF($4, '')
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.Status,
		payment.ConfirmationCode,
		payment.ResponseMessage,
	)
	return err
}

// GetByTransaction fetches the payment linked to a transaction.
func (r *PaymentRepository) GetByTransaction(ctx context.Context, transactionID int64) (*models.Payment, error) {
	const query = `
		SELECT id, transaction_id, provider_name, reference, status,
		       COALESCE(confirmation_code, ''), COALESCE(response_message, ''), created_at
		FROM payments
		WHERE transaction_id = $1
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, query, transactionID)
	var payment models.Payment
	if err := row.Scan(&payment.ID, &payment.TransactionID, &payment.ProviderName, &payment.Reference,
		&payment.Status, &payment.ConfirmationCode, &payment.ResponseMessage, &payment.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// DeleteByTransaction removes the payment linked to a transaction, used by
// the administrative purge before the transaction row itself goes.
func (r *PaymentRepository) DeleteByTransaction(ctx context.Context, transactionID int64) error {
	const query = `DELETE FROM payments WHERE transaction_id = $1`
	_, err := r.db.ExecContext(ctx, query, transactionID)
	return err
}
