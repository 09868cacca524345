package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"smartcashpower/backend/services/auth-service/internal/service"
)

// NewSignupHandler returns HTTP handler for the registration endpoint.
func NewSignupHandler(authService *service.AuthService) http.HandlerFunc {
	type request struct {
		Email       string `json:"email"`
		PhoneNumber string `json:"phone_number"`
		FullName    string `json:"full_name"`
		Password    string `json:"password"`
	}
	type response struct {
		ID          int64  `json:"id"`
		Email       string `json:"email"`
		PhoneNumber string `json:"phone_number"`
		FullName    string `json:"full_name"`
		Role        string `json:"role"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		user, err := authService.Signup(r.Context(), service.SignupInput{
			Email:       req.Email,
			PhoneNumber: req.PhoneNumber,
			FullName:    req.FullName,
			Password:    req.Password,
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrAccountExists):
				writeError(w, http.StatusConflict, "email or phone number already registered")
			default:
				writeError(w, http.StatusBadRequest, err.Error())
			}
			return
		}

		writeJSON(w, http.StatusCreated, response{
			ID:          user.ID,
			Email:       user.Email,
			PhoneNumber: user.PhoneNumber,
			FullName:    user.FullName,
			Role:        user.Role,
		})
	}
}
