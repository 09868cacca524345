package models

// Meter is a physical prepaid meter attached to a user account.
type Meter struct {
	ID           int64   `db:"id" json:"id"`
	MeterNumber  string  `db:"meter_number" json:"meter_number"`
	CurrentUnits float64 `db:"current_units" json:"current_units"`
	UsedUnits    float64 `db:"used_units" json:"used_units"`
	Active       bool    `db:"active" json:"active"`
	UserID       int64   `db:"user_id" json:"user_id"`
}
