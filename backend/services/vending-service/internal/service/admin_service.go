package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"smartcashpower/backend/services/vending-service/internal/events"
	"smartcashpower/backend/services/vending-service/internal/models"
	"smartcashpower/backend/services/vending-service/internal/repository"
)

// AuditHook receives every administrative action as a side effect. The hook
// is injected so audit sequencing stays out of the service control flow.
type AuditHook func(event events.AdminEvent)

// AdminUserStore is the account surface administration needs.
type AdminUserStore interface {
	ListWithMeterCount(ctx context.Context) ([]repository.UserWithMeters, error)
	SetActive(ctx context.Context, userID int64, active bool) error
	Delete(ctx context.Context, userID int64) error
}

// AdminMeterStore is the meter surface administration needs.
type AdminMeterStore interface {
	ListAll(ctx context.Context) ([]models.Meter, error)
	Delete(ctx context.Context, meterID int64) error
}

// AdminTransactionStore is the transaction surface administration needs.
type AdminTransactionStore interface {
	ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Transaction, error)
	Delete(ctx context.Context, transactionID int64) error
}

// AdminPaymentStore resolves and removes payments by their transaction.
type AdminPaymentStore interface {
	GetByTransaction(ctx context.Context, transactionID int64) (*models.Payment, error)
	DeleteByTransaction(ctx context.Context, transactionID int64) error
}

// AdminService exposes reporting and account administration.
type AdminService struct {
	users        AdminUserStore
	meters       AdminMeterStore
	transactions AdminTransactionStore
	payments     AdminPaymentStore
	audit        AuditHook
	logger       *zap.Logger
}

// NewAdminService builds service. A nil audit hook disables auditing.
func NewAdminService(
	users AdminUserStore,
	meters AdminMeterStore,
	transactions AdminTransactionStore,
	payments AdminPaymentStore,
	audit AuditHook,
	logger *zap.Logger,
) *AdminService {
	return &AdminService{
		users:        users,
		meters:       meters,
		transactions: transactions,
		payments:     payments,
		audit:        audit,
		logger:       logger,
	}
}

func (s *AdminService) record(adminID int64, action, entity string, targetID int64) {
	if s.audit == nil {
		return
	}
	s.audit(events.AdminEvent{
		AdminID:    adminID,
		Action:     action,
		Entity:     entity,
		TargetID:   strconv.FormatInt(targetID, 10),
		OccurredAt: time.Now().UTC(),
	})
}

// UsersWithMeters lists all accounts with meter counts.
func (s *AdminService) UsersWithMeters(ctx context.Context) ([]repository.UserWithMeters, error) {
	return s.users.ListWithMeterCount(ctx)
}

// AllMeters lists every registered meter.
func (s *AdminService) AllMeters(ctx context.Context) ([]models.Meter, error) {
	return s.meters.ListAll(ctx)
}

// TransactionsBetween returns transactions created inside the range.
func (s *AdminService) TransactionsBetween(ctx context.Context, from, to time.Time) ([]models.Transaction, error) {
	return s.transactions.ListByDateRange(ctx, from, to)
}

// PaymentForTransaction returns the payment record behind a transaction, for
// investigating charges where units were never delivered.
func (s *AdminService) PaymentForTransaction(ctx context.Context, transactionID int64) (*models.Payment, error) {
	return s.payments.GetByTransaction(ctx, transactionID)
}

// BlockUser suspends an account.
func (s *AdminService) BlockUser(ctx context.Context, adminID, userID int64) error {
	if err := s.users.SetActive(ctx, userID, false); err != nil {
		return err
	}
	s.record(adminID, "blocked user", "user", userID)
	return nil
}

// DeleteUser removes an account.
func (s *AdminService) DeleteUser(ctx context.Context, adminID, userID int64) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.record(adminID, "deleted user", "user", userID)
	return nil
}

// DeleteMeter removes a meter.
func (s *AdminService) DeleteMeter(ctx context.Context, adminID, meterID int64) error {
	if err := s.meters.Delete(ctx, meterID); err != nil {
		return err
	}
	s.record(adminID, "deleted meter", "meter", meterID)
	return nil
}

// PurgeTransaction removes a transaction and its linked payment. The payment
// goes first; it holds the foreign key.
func (s *AdminService) PurgeTransaction(ctx context.Context, adminID, transactionID int64) error {
	if err := s.payments.DeleteByTransaction(ctx, transactionID); err != nil {
		return err
	}
	if err := s.transactions.Delete(ctx, transactionID); err != nil {
		return err
	}
	s.record(adminID, "purged transaction", "transaction", transactionID)
	return nil
}
