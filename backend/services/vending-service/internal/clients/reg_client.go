package clients

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"smartcashpower/backend/services/vending-service/internal/models"
)

// REGClient instructs the national grid provider to load purchased units
// onto a physical meter.
type REGClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewREGClient returns HTTP client wrapper with a bounded timeout.
func NewREGClient(baseURL string, timeout time.Duration, logger *zap.Logger) *REGClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &REGClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type loadRequest struct {
	MeterNumber string  `json:"meter_number"`
	Units       float64 `json:"units"`
}

// Load credits units onto the meter. Transport errors and timeouts surface
// as errors; callers treat them as a failed load.
func (c *REGClient) Load(ctx context.Context, meterNumber string, units float64) (models.GatewayResult, error) {
	var result models.GatewayResult
	err := postJSON(ctx, c.client, c.baseURL+"/reg/load", loadRequest{
		MeterNumber: meterNumber,
		Units:       units,
	}, &result)
	if err != nil {
		c.logger.Warn("reg load request failed", zap.String("meter_number", meterNumber), zap.Error(err))
		return models.GatewayResult{}, err
	}
	return result, nil
}
