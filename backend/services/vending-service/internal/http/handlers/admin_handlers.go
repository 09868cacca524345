package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"smartcashpower/backend/services/vending-service/internal/http/middleware"
	"smartcashpower/backend/services/vending-service/internal/repository"
	"smartcashpower/backend/services/vending-service/internal/service"
)

// AdminHandlers bundles the admin surface around AdminService.
type AdminHandlers struct {
	service *service.AdminService
	logger  *zap.Logger
}

// NewAdminHandlers builds the handler set.
func NewAdminHandlers(svc *service.AdminService, logger *zap.Logger) *AdminHandlers {
	return &AdminHandlers{service: svc, logger: logger}
}

// Users handles GET /api/v1/admin/users.
func (h *AdminHandlers) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.UsersWithMeters(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// Meters handles GET /api/v1/admin/meters.
func (h *AdminHandlers) Meters(w http.ResponseWriter, r *http.Request) {
	meters, err := h.service.AllMeters(r.Context())
	if err != nil {
		h.logger.Error("failed to list meters", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list meters")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"meters": meters})
}

// Transactions handles GET /api/v1/admin/transactions?from=&to= with
// RFC3339 bounds. Missing bounds default to the last 24 hours.
func (h *AdminHandlers) Transactions(w http.ResponseWriter, r *http.Request) {
	to := time.Now().UTC()
	from := to.Add(-24 * time.Hour)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from timestamp")
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to timestamp")
			return
		}
		to = parsed
	}

	txs, err := h.service.TransactionsBetween(r.Context(), from, to)
	if err != nil {
		h.logger.Error("failed to list transactions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"transactions": txs})
}

// TransactionPayment handles GET /api/v1/admin/transactions/payment?transaction_id=.
func (h *AdminHandlers) TransactionPayment(w http.ResponseWriter, r *http.Request) {
	transactionID, err := strconv.ParseInt(r.URL.Query().Get("transaction_id"), 10, 64)
	if err != nil || transactionID == 0 {
		writeError(w, http.StatusBadRequest, "transaction_id required")
		return
	}

	payment, err := h.service.PaymentForTransaction(r.Context(), transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("failed to load payment", zap.Int64("transaction_id", transactionID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load payment")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"payment": payment})
}

type targetRequest struct {
	UserID        int64 `json:"user_id,omitempty"`
	MeterID       int64 `json:"meter_id,omitempty"`
	TransactionID int64 `json:"transaction_id,omitempty"`
}

func (h *AdminHandlers) adminID(r *http.Request) int64 {
	id, _ := middleware.UserIDFromContext(r.Context())
	return id
}

// BlockUser handles POST /api/v1/admin/users/block.
func (h *AdminHandlers) BlockUser(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		writeError(w, http.StatusBadRequest, "user_id required")
		return
	}
	if err := h.service.BlockUser(r.Context(), h.adminID(r), req.UserID); err != nil {
		h.writeActionError(w, err, "failed to block user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "blocked"})
}

// DeleteUser handles POST /api/v1/admin/users/delete.
func (h *AdminHandlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		writeError(w, http.StatusBadRequest, "user_id required")
		return
	}
	if err := h.service.DeleteUser(r.Context(), h.adminID(r), req.UserID); err != nil {
		h.writeActionError(w, err, "failed to delete user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// DeleteMeter handles POST /api/v1/admin/meters/delete.
func (h *AdminHandlers) DeleteMeter(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MeterID == 0 {
		writeError(w, http.StatusBadRequest, "meter_id required")
		return
	}
	if err := h.service.DeleteMeter(r.Context(), h.adminID(r), req.MeterID); err != nil {
		h.writeActionError(w, err, "failed to delete meter")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// PurgeTransaction handles POST /api/v1/admin/transactions/purge.
func (h *AdminHandlers) PurgeTransaction(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TransactionID == 0 {
		writeError(w, http.StatusBadRequest, "transaction_id required")
		return
	}
	if err := h.service.PurgeTransaction(r.Context(), h.adminID(r), req.TransactionID); err != nil {
		h.writeActionError(w, err, "failed to purge transaction")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "purged"})
}

func (h *AdminHandlers) writeActionError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrMeterNotFound),
		errors.Is(err, repository.ErrTransactionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error(fallback, zap.Error(err))
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
