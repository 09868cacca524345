package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"smartcashpower/backend/services/vending-service/internal/events"
	"smartcashpower/backend/services/vending-service/internal/models"
	"smartcashpower/backend/services/vending-service/internal/repository"
)

// Vending policy constants, in RWF.
const (
	// UnitPrice is the price of one unit of electricity.
	UnitPrice = 100.0
	// MinPurchaseAmount is the floor below which a purchase is rejected
	// before anything is persisted.
	MinPurchaseAmount = 100.0
)

const defaultGatewayTimeout = 10 * time.Second

var (
	// ErrUserNotFound is returned when the purchasing account is absent.
	ErrUserNotFound = errors.New("vending: user not found")
	// ErrMeterNotFound is returned when the meter is absent or belongs to
	// another account.
	ErrMeterNotFound = errors.New("vending: meter not found")
	// ErrAmountTooLow rejects purchases below MinPurchaseAmount.
	ErrAmountTooLow = errors.New("vending: amount below minimum purchase")
	// ErrProviderRequired rejects purchases without a mobile-money provider.
	ErrProviderRequired = errors.New("vending: mobile money provider required")
)

// UserStore resolves purchasing accounts.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// MeterStore resolves meters and applies unit credits.
type MeterStore interface {
	GetByID(ctx context.Context, id int64) (*models.Meter, error)
	AddUnits(ctx context.Context, meterID int64, units float64) (float64, error)
}

// TransactionStore persists purchase transactions.
type TransactionStore interface {
	Create(ctx context.Context, tx *models.Transaction) error
	UpdateStatus(ctx context.Context, id int64, status models.TransactionStatus) error
	ListByUser(ctx context.Context, userID int64) ([]models.PurchaseResult, error)
}

// PaymentStore persists the gateway-interaction record.
type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
}

// PaymentGateway verifies a mobile-money charge.
type PaymentGateway interface {
	Verify(ctx context.Context, phoneNumber string, amount float64, reference string) (models.GatewayResult, error)
}

// MeterLoadGateway instructs the grid provider to credit units onto a meter.
type MeterLoadGateway interface {
	Load(ctx context.Context, meterNumber string, units float64) (models.GatewayResult, error)
}

// MeterLocker serializes the balance increment per meter.
type MeterLocker interface {
	Acquire(ctx context.Context, meterID int64) (func(), error)
}

// PurchaseDeps groups the collaborators of the purchase workflow.
type PurchaseDeps struct {
	Users        UserStore
	Meters       MeterStore
	Transactions TransactionStore
	Payments     PaymentStore
	MoMo         PaymentGateway
	REG          MeterLoadGateway
	Locker       MeterLocker
	Publisher    events.Publisher
}

// PurchaseService drives the electricity purchase workflow: charge the user
// through the mobile-money provider, then load units onto the meter, and
// record every outcome durably.
type PurchaseService struct {
	deps           PurchaseDeps
	gatewayTimeout time.Duration
	logger         *zap.Logger
}

// NewPurchaseService builds the orchestrator. gatewayTimeout bounds each
// external call; zero picks a default.
func NewPurchaseService(deps PurchaseDeps, gatewayTimeout time.Duration, logger *zap.Logger) *PurchaseService {
	if gatewayTimeout <= 0 {
		gatewayTimeout = defaultGatewayTimeout
	}
	return &PurchaseService{
		deps:           deps,
		gatewayTimeout: gatewayTimeout,
		logger:         logger,
	}
}

// PurchaseInput is the already-authenticated purchase request.
type PurchaseInput struct {
	UserID   int64
	MeterID  int64
	Amount   float64
	Provider string
}

// InitiatePurchase runs the full purchase workflow. Validation and lookup
// failures return errors before anything is persisted; gateway outcomes are
// never errors — they come back as a normal result whose status is one of
// SUCCESS, FAILED or REG_FAILED. There are no retries here: a REG_FAILED
// purchase is handed to a separate reconciliation path.
func (s *PurchaseService) InitiatePurchase(ctx context.Context, input PurchaseInput) (*models.PurchaseResult, error) {
	if input.Amount < MinPurchaseAmount {
		return nil, ErrAmountTooLow
	}
	if strings.TrimSpace(input.Provider) == "" {
		return nil, ErrProviderRequired
	}

	user, err := s.deps.Users.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	meter, err := s.deps.Meters.GetByID(ctx, input.MeterID)
	if err != nil {
		if errors.Is(err, repository.ErrMeterNotFound) {
			return nil, ErrMeterNotFound
		}
		return nil, err
	}
	if meter.UserID != user.ID {
		// A meter owned by somebody else looks absent to this caller.
		return nil, ErrMeterNotFound
	}

	units := input.Amount / UnitPrice
	reference := uuid.NewString()

	tx := &models.Transaction{
		UserID:         user.ID,
		MeterID:        meter.ID,
		Amount:         input.Amount,
		UnitsPurchased: units,
		Status:         models.TransactionPending,
		Reference:      reference,
	}
	if err := s.deps.Transactions.Create(ctx, tx); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		TransactionID: tx.ID,
		ProviderName:  input.Provider,
		Reference:     "PAY-" + reference,
		Status:        models.PaymentPending,
	}
	if err := s.deps.Payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	verify := s.verifyPayment(ctx, user.PhoneNumber, input.Amount, payment.Reference)
	if !verify.Successful {
		payment.Status = models.PaymentFailed
		payment.ResponseMessage = verify.Message
		if err := s.deps.Payments.Update(ctx, payment); err != nil {
			return nil, err
		}
		return s.finalize(ctx, tx, meter, models.TransactionFailed)
	}

	payment.Status = models.PaymentCompleted
	payment.ConfirmationCode = uuid.NewString()
	payment.ResponseMessage = verify.Message
	if err := s.deps.Payments.Update(ctx, payment); err != nil {
		return nil, err
	}

	load := s.loadUnits(ctx, meter.MeterNumber, units)
	if !load.Successful {
		// Money was taken but units were not delivered. REG_FAILED keeps
		// that distinguishable from a declined charge; compensation is a
		// business decision taken elsewhere, not a rollback here.
		return s.finalize(ctx, tx, meter, models.TransactionRegFailed)
	}

	balance, err := s.creditMeter(ctx, meter.ID, units)
	if err != nil {
		return nil, err
	}
	s.logger.Info("meter credited",
		zap.Int64("meter_id", meter.ID),
		zap.Float64("units", units),
		zap.Float64("balance", balance),
	)

	return s.finalize(ctx, tx, meter, models.TransactionSuccess)
}

// verifyPayment calls the mobile-money gateway with a bounded timeout.
// Transport errors and timeouts count as a declined charge rather than
// leaving the transaction stuck in PENDING.
func (s *PurchaseService) verifyPayment(ctx context.Context, phoneNumber string, amount float64, reference string) models.GatewayResult {
	callCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	result, err := s.deps.MoMo.Verify(callCtx, phoneNumber, amount, reference)
	if err != nil {
		return models.GatewayResult{Successful: false, Message: "payment gateway unreachable: " + err.Error()}
	}
	return result
}

// loadUnits calls the meter-load gateway with a bounded timeout.
func (s *PurchaseService) loadUnits(ctx context.Context, meterNumber string, units float64) models.GatewayResult {
	callCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	result, err := s.deps.REG.Load(callCtx, meterNumber, units)
	if err != nil {
		return models.GatewayResult{Successful: false, Message: "meter load gateway unreachable: " + err.Error()}
	}
	return result
}

// creditMeter applies the unit credit under the per-meter lock. The store
// increment is atomic against the currently stored balance, so concurrent
// purchases on one meter cannot lose updates.
func (s *PurchaseService) creditMeter(ctx context.Context, meterID int64, units float64) (float64, error) {
	release, err := s.deps.Locker.Acquire(ctx, meterID)
	if err != nil {
		return 0, err
	}
	defer release()

	return s.deps.Meters.AddUnits(ctx, meterID, units)
}

// finalize moves the transaction to its terminal status, publishes the
// outcome and builds the caller-facing result.
func (s *PurchaseService) finalize(ctx context.Context, tx *models.Transaction, meter *models.Meter, status models.TransactionStatus) (*models.PurchaseResult, error) {
	if err := s.deps.Transactions.UpdateStatus(ctx, tx.ID, status); err != nil {
		return nil, err
	}
	tx.Status = status

	s.deps.Publisher.Transaction(events.TransactionEvent{
		TransactionID:  tx.ID,
		UserID:         tx.UserID,
		MeterNumber:    meter.MeterNumber,
		Amount:         tx.Amount,
		UnitsPurchased: tx.UnitsPurchased,
		Status:         status,
		Reference:      tx.Reference,
		OccurredAt:     time.Now().UTC(),
	})

	return &models.PurchaseResult{
		TransactionID:  tx.ID,
		MeterNumber:    meter.MeterNumber,
		Amount:         tx.Amount,
		UnitsPurchased: tx.UnitsPurchased,
		Status:         status,
		CreatedAt:      tx.CreatedAt,
		Reference:      tx.Reference,
	}, nil
}

// GetHistory returns the user's purchases newest-first. An unknown user is
// an error; a user without purchases gets an empty slice.
func (s *PurchaseService) GetHistory(ctx context.Context, userID int64) ([]models.PurchaseResult, error) {
	if _, err := s.deps.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	results, err := s.deps.Transactions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []models.PurchaseResult{}
	}
	return results, nil
}
