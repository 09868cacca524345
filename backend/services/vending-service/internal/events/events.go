package events

import (
	"time"

	"go.uber.org/zap"

	"smartcashpower/backend/services/vending-service/internal/models"
)

// TransactionEvent is emitted once per purchase, at its terminal state.
type TransactionEvent struct {
	TransactionID  int64                    `json:"transaction_id"`
	UserID         int64                    `json:"user_id"`
	MeterNumber    string                   `json:"meter_number"`
	Amount         float64                  `json:"amount"`
	UnitsPurchased float64                  `json:"units_purchased"`
	Status         models.TransactionStatus `json:"status"`
	Reference      string                   `json:"reference"`
	OccurredAt     time.Time                `json:"occurred_at"`
}

// AdminEvent records one administrative action.
type AdminEvent struct {
	AdminID    int64     `json:"admin_id"`
	Action     string    `json:"action"`
	Entity     string    `json:"entity"`
	TargetID   string    `json:"target_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher is the side-effect hook the services emit into. Publishing is
// fire-and-forget; implementations must not block the workflow.
type Publisher interface {
	Transaction(event TransactionEvent)
	AdminAction(event AdminEvent)
}

// LogPublisher writes events to the structured log.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher returns a zap-backed publisher.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Transaction logs a purchase outcome.
func (p *LogPublisher) Transaction(event TransactionEvent) {
	p.logger.Info("purchase transaction finalized",
		zap.Int64("transaction_id", event.TransactionID),
		zap.Int64("user_id", event.UserID),
		zap.String("meter_number", event.MeterNumber),
		zap.Float64("amount", event.Amount),
		zap.Float64("units_purchased", event.UnitsPurchased),
		zap.String("status", string(event.Status)),
		zap.String("reference", event.Reference),
	)
}

// AdminAction logs an administrative action.
func (p *LogPublisher) AdminAction(event AdminEvent) {
	p.logger.Info("admin action",
		zap.Int64("admin_id", event.AdminID),
		zap.String("action", event.Action),
		zap.String("entity", event.Entity),
		zap.String("target_id", event.TargetID),
	)
}

// Fanout forwards each event to every wrapped publisher.
type Fanout []Publisher

// Transaction forwards the event.
func (f Fanout) Transaction(event TransactionEvent) {
	for _, p := range f {
		p.Transaction(event)
	}
}

// AdminAction forwards the event.
func (f Fanout) AdminAction(event AdminEvent) {
	for _, p := range f {
		p.AdminAction(event)
	}
}
