package models

import "time"

// TransactionStatus is the closed set of purchase outcomes.
type TransactionStatus string

const (
	// TransactionPending is the initial state of every purchase attempt.
	TransactionPending TransactionStatus = "PENDING"
	// TransactionSuccess means payment and unit load both succeeded.
	TransactionSuccess TransactionStatus = "SUCCESS"
	// TransactionFailed means the mobile-money provider declined the charge.
	TransactionFailed TransactionStatus = "FAILED"
	// TransactionRegFailed means the charge succeeded but the REG unit load
	// did not. Money was taken, units were not delivered.
	TransactionRegFailed TransactionStatus = "REG_FAILED"
)

// Terminal reports whether the status can no longer change.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionSuccess || s == TransactionFailed || s == TransactionRegFailed
}

// Transaction represents one electricity purchase attempt.
type Transaction struct {
	ID             int64             `db:"id" json:"id"`
	UserID         int64             `db:"user_id" json:"user_id"`
	MeterID        int64             `db:"meter_id" json:"meter_id"`
	Amount         float64           `db:"amount" json:"amount"`
	UnitsPurchased float64           `db:"units_purchased" json:"units_purchased"`
	Status         TransactionStatus `db:"status" json:"status"`
	Reference      string            `db:"reference" json:"reference"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
}

// PurchaseResult is the projection returned by the purchase workflow and
// the history endpoint.
type PurchaseResult struct {
	TransactionID  int64             `json:"transaction_id"`
	MeterNumber    string            `json:"meter_number"`
	Amount         float64           `json:"amount"`
	UnitsPurchased float64           `json:"units_purchased"`
	Status         TransactionStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	Reference      string            `json:"reference"`
}
