package models

import "time"

// PaymentStatus mirrors the transaction lifecycle on the money-movement side.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Payment records the gateway interaction for exactly one transaction.
// The foreign key lives here; the transaction does not reference back.
type Payment struct {
	ID               int64         `db:"id" json:"id"`
	TransactionID    int64         `db:"transaction_id" json:"transaction_id"`
	ProviderName     string        `db:"provider_name" json:"provider_name"`
	Reference        string        `db:"reference" json:"reference"`
	Status           PaymentStatus `db:"status" json:"status"`
	ConfirmationCode string        `db:"confirmation_code" json:"confirmation_code,omitempty"`
	ResponseMessage  string        `db:"response_message" json:"response_message,omitempty"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
}
