package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"smartcashpower/backend/services/vending-service/internal/events"
	"smartcashpower/backend/services/vending-service/internal/models"
	"smartcashpower/backend/services/vending-service/internal/repository"
)

type adminFakes struct {
	blocked   []int64
	deleted   []int64
	meterDels []int64
	// ops records deletion order across stores for the purge test.
	ops []string
}

func (a *adminFakes) ListWithMeterCount(context.Context) ([]repository.UserWithMeters, error) {
	return []repository.UserWithMeters{{User: models.User{ID: 1}, MeterCount: 2}}, nil
}

func (a *adminFakes) SetActive(_ context.Context, userID int64, active bool) error {
	if !active {
		a.blocked = append(a.blocked, userID)
	}
	return nil
}

func (a *adminFakes) Delete(_ context.Context, userID int64) error {
	a.deleted = append(a.deleted, userID)
	return nil
}

type adminMeterFakes struct{ deleted []int64 }

func (a *adminMeterFakes) ListAll(context.Context) ([]models.Meter, error) {
	return []models.Meter{{ID: 10, MeterNumber: "MTR-1001"}}, nil
}

func (a *adminMeterFakes) Delete(_ context.Context, meterID int64) error {
	a.deleted = append(a.deleted, meterID)
	return nil
}

type adminTxFakes struct{ shared *adminFakes }

func (a *adminTxFakes) ListByDateRange(_ context.Context, from, to time.Time) ([]models.Transaction, error) {
	return []models.Transaction{{ID: 5, CreatedAt: from.Add(time.Hour)}}, nil
}

func (a *adminTxFakes) Delete(_ context.Context, transactionID int64) error {
	a.shared.ops = append(a.shared.ops, "transaction")
	return nil
}

type adminPaymentFakes struct{ shared *adminFakes }

func (a *adminPaymentFakes) GetByTransaction(_ context.Context, transactionID int64) (*models.Payment, error) {
	if transactionID != 5 {
		return nil, repository.ErrPaymentNotFound
	}
	return &models.Payment{ID: 1, TransactionID: 5, Status: models.PaymentCompleted}, nil
}

func (a *adminPaymentFakes) DeleteByTransaction(_ context.Context, transactionID int64) error {
	a.shared.ops = append(a.shared.ops, "payment")
	return nil
}

type auditRecorder struct{ events []events.AdminEvent }

func (r *auditRecorder) hook(event events.AdminEvent) {
	r.events = append(r.events, event)
}

func newAdminFixture() (*AdminService, *adminFakes, *adminMeterFakes, *auditRecorder) {
	users := &adminFakes{}
	meters := &adminMeterFakes{}
	audit := &auditRecorder{}
	svc := NewAdminService(
		users,
		meters,
		&adminTxFakes{shared: users},
		&adminPaymentFakes{shared: users},
		audit.hook,
		zap.NewNop(),
	)
	return svc, users, meters, audit
}

func TestAdminReports(t *testing.T) {
	svc, _, _, _ := newAdminFixture()

	rows, err := svc.UsersWithMeters(context.Background())
	if err != nil {
		t.Fatalf("users with meters: %v", err)
	}
	if len(rows) != 1 || rows[0].MeterCount != 2 {
		t.Fatalf("unexpected rows %#v", rows)
	}

	meters, err := svc.AllMeters(context.Background())
	if err != nil {
		t.Fatalf("all meters: %v", err)
	}
	if len(meters) != 1 {
		t.Fatalf("unexpected meters %#v", meters)
	}

	from := time.Now().Add(-24 * time.Hour)
	txs, err := svc.TransactionsBetween(context.Background(), from, time.Now())
	if err != nil {
		t.Fatalf("transactions between: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("unexpected transactions %#v", txs)
	}
}

func TestPaymentForTransaction(t *testing.T) {
	svc, _, _, _ := newAdminFixture()

	payment, err := svc.PaymentForTransaction(context.Background(), 5)
	if err != nil {
		t.Fatalf("payment for transaction: %v", err)
	}
	if payment.TransactionID != 5 || payment.Status != models.PaymentCompleted {
		t.Fatalf("unexpected payment %+v", payment)
	}

	if _, err := svc.PaymentForTransaction(context.Background(), 99); !errors.Is(err, repository.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestAdminActionsAudited(t *testing.T) {
	svc, users, meters, audit := newAdminFixture()
	ctx := context.Background()

	if err := svc.BlockUser(ctx, 3, 5); err != nil {
		t.Fatalf("block user: %v", err)
	}
	if err := svc.DeleteUser(ctx, 3, 6); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if err := svc.DeleteMeter(ctx, 3, 10); err != nil {
		t.Fatalf("delete meter: %v", err)
	}

	if len(users.blocked) != 1 || users.blocked[0] != 5 {
		t.Fatalf("block not applied: %v", users.blocked)
	}
	if len(users.deleted) != 1 || users.deleted[0] != 6 {
		t.Fatalf("delete not applied: %v", users.deleted)
	}
	if len(meters.deleted) != 1 || meters.deleted[0] != 10 {
		t.Fatalf("meter delete not applied: %v", meters.deleted)
	}

	if len(audit.events) != 3 {
		t.Fatalf("expected 3 audit events, got %d", len(audit.events))
	}
	for _, event := range audit.events {
		if event.AdminID != 3 {
			t.Fatalf("audit event missing admin id: %+v", event)
		}
	}
	if audit.events[0].Action != "blocked user" || audit.events[0].TargetID != "5" {
		t.Fatalf("unexpected first audit event %+v", audit.events[0])
	}
}

func TestPurgeTransactionDeletesPaymentFirst(t *testing.T) {
	svc, users, _, audit := newAdminFixture()

	if err := svc.PurgeTransaction(context.Background(), 3, 5); err != nil {
		t.Fatalf("purge: %v", err)
	}

	if len(users.ops) != 2 || users.ops[0] != "payment" || users.ops[1] != "transaction" {
		t.Fatalf("expected payment deleted before transaction, got %v", users.ops)
	}
	if len(audit.events) != 1 || audit.events[0].Action != "purged transaction" {
		t.Fatalf("unexpected audit %+v", audit.events)
	}
}
