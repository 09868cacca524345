package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"smartcashpower/backend/services/vending-service/internal/models"
	"smartcashpower/backend/services/vending-service/internal/repository"
)

var (
	// ErrMeterNumberTaken rejects attaching a meter number that is already
	// registered.
	ErrMeterNumberTaken = errors.New("vending: meter number already registered")
	// ErrMeterNumberRequired rejects empty meter numbers.
	ErrMeterNumberRequired = errors.New("vending: meter number required")
)

// MeterRegistry is the storage surface for attaching and listing meters.
type MeterRegistry interface {
	Create(ctx context.Context, meter *models.Meter) error
	GetByNumber(ctx context.Context, meterNumber string) (*models.Meter, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Meter, error)
}

// MeterService handles attaching meters to accounts and listing them.
type MeterService struct {
	meters MeterRegistry
	users  UserStore
	logger *zap.Logger
}

// NewMeterService builds service.
func NewMeterService(meters MeterRegistry, users UserStore, logger *zap.Logger) *MeterService {
	return &MeterService{
		meters: meters,
		users:  users,
		logger: logger,
	}
}

// AttachMeter registers a new meter under the user. Fresh meters start at
// zero units and active.
func (s *MeterService) AttachMeter(ctx context.Context, userID int64, meterNumber string) (*models.Meter, error) {
	meterNumber = strings.TrimSpace(meterNumber)
	if meterNumber == "" {
		return nil, ErrMeterNumberRequired
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if _, err := s.meters.GetByNumber(ctx, meterNumber); err == nil {
		return nil, ErrMeterNumberTaken
	} else if !errors.Is(err, repository.ErrMeterNotFound) {
		return nil, err
	}

	meter := &models.Meter{
		MeterNumber:  meterNumber,
		CurrentUnits: 0,
		UsedUnits:    0,
		Active:       true,
		UserID:       user.ID,
	}
	if err := s.meters.Create(ctx, meter); err != nil {
		return nil, err
	}

	s.logger.Info("meter attached",
		zap.Int64("user_id", user.ID),
		zap.String("meter_number", meter.MeterNumber),
	)
	return meter, nil
}

// MetersForUser lists the user's meters.
func (s *MeterService) MetersForUser(ctx context.Context, userID int64) ([]models.Meter, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	meters, err := s.meters.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if meters == nil {
		meters = []models.Meter{}
	}
	return meters, nil
}
