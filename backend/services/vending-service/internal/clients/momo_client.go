package clients

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"smartcashpower/backend/services/vending-service/internal/models"
)

// MoMoClient talks to the mobile-money provider that charges the user.
type MoMoClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewMoMoClient returns HTTP client wrapper with a bounded timeout.
func NewMoMoClient(baseURL string, timeout time.Duration, logger *zap.Logger) *MoMoClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MoMoClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type verifyRequest struct {
	PhoneNumber string  `json:"phone_number"`
	Amount      float64 `json:"amount"`
	Reference   string  `json:"reference"`
}

// Verify asks the provider to charge the given phone number. A transport
// error or timeout surfaces as an error; callers treat that as a declined
// charge.
func (c *MoMoClient) Verify(ctx context.Context, phoneNumber string, amount float64, reference string) (models.GatewayResult, error) {
	var result models.GatewayResult
	err := postJSON(ctx, c.client, c.baseURL+"/momo/verify", verifyRequest{
		PhoneNumber: phoneNumber,
		Amount:      amount,
		Reference:   reference,
	}, &result)
	if err != nil {
		c.logger.Warn("momo verify request failed", zap.String("reference", reference), zap.Error(err))
		return models.GatewayResult{}, err
	}
	return result, nil
}
