package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"smartcashpower/backend/services/vending-service/internal/http/middleware"
	"smartcashpower/backend/services/vending-service/internal/service"
)

type attachMeterRequest struct {
	MeterNumber string `json:"meter_number"`
}

// NewAttachMeterHandler returns POST /api/v1/meters handler.
func NewAttachMeterHandler(svc *service.MeterService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing authenticated user")
			return
		}

		var req attachMeterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		meter, err := svc.AttachMeter(r.Context(), userID, req.MeterNumber)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrMeterNumberRequired):
				writeError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, service.ErrMeterNumberTaken):
				writeError(w, http.StatusConflict, err.Error())
			case errors.Is(err, service.ErrUserNotFound):
				writeError(w, http.StatusNotFound, err.Error())
			default:
				logger.Error("failed to attach meter", zap.Int64("user_id", userID), zap.Error(err))
				writeError(w, http.StatusInternalServerError, "failed to attach meter")
			}
			return
		}

		writeJSON(w, http.StatusCreated, meter)
	}
}

// NewMyMetersHandler returns GET /api/v1/meters handler.
func NewMyMetersHandler(svc *service.MeterService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing authenticated user")
			return
		}

		meters, err := svc.MetersForUser(r.Context(), userID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			logger.Error("failed to list meters", zap.Int64("user_id", userID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list meters")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"meters": meters,
		})
	}
}
