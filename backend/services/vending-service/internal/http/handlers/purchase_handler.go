package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"smartcashpower/backend/services/vending-service/internal/http/middleware"
	"smartcashpower/backend/services/vending-service/internal/service"
)

type purchaseRequest struct {
	MeterID  int64   `json:"meter_id"`
	Amount   float64 `json:"amount"`
	Provider string  `json:"mobile_money_provider"`
}

// NewPurchaseHandler returns POST /api/v1/transactions/purchase handler.
// Gateway declines are not HTTP errors: the response status field carries
// the outcome.
func NewPurchaseHandler(svc *service.PurchaseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing authenticated user")
			return
		}

		var req purchaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		result, err := svc.InitiatePurchase(r.Context(), service.PurchaseInput{
			UserID:   userID,
			MeterID:  req.MeterID,
			Amount:   req.Amount,
			Provider: req.Provider,
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrAmountTooLow), errors.Is(err, service.ErrProviderRequired):
				writeError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrMeterNotFound):
				writeError(w, http.StatusNotFound, err.Error())
			default:
				logger.Error("purchase failed", zap.Int64("user_id", userID), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "purchase failed")
			}
			return
		}

		writeJSON(w, http.StatusCreated, result)
	}
}

// NewHistoryHandler returns GET /api/v1/transactions/history handler.
func NewHistoryHandler(svc *service.PurchaseService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing authenticated user")
			return
		}

		history, err := svc.GetHistory(r.Context(), userID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			logger.Error("failed to load history", zap.Int64("user_id", userID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load history")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"transactions": history,
		})
	}
}
