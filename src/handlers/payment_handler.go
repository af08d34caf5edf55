// backend/src/handlers/payment_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/username/sellerledger/backend/src/database"
	"github.com/username/sellerledger/backend/src/logger"
	"github.com/username/sellerledger/backend/src/model"
	"github.com/username/sellerledger/backend/src/utils"
)

type PaymentHandler struct{}

func NewPaymentHandler() *PaymentHandler {
	return &PaymentHandler{}
}

func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	payments, err := model.ListPaymentsByUser(database.DB, userID)
	if err != nil {
		logger.L.Error("Failed to list payments", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to list payments", http.StatusInternalServerError)
		return
	}
	if payments == nil {
		payments = []model.Payment{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payments)
}

func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var payment model.Payment
	if err := json.NewDecoder(r.Body).Decode(&payment); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	payment.UserID = userID
	payment.Reference = strings.TrimSpace(payment.Reference)
	if payment.Status != "" && payment.Status != model.PaymentStatusPending && payment.Status != model.PaymentStatusPaid {
		utils.SendJSONError(w, "status must be 'pending' or 'paid'", http.StatusBadRequest)
		return
	}

	if err := model.CreatePayment(database.DB, &payment); err != nil {
		logger.L.Error("Failed to create payment", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to create payment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(payment)
}

func (h *PaymentHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	paymentID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid payment id", http.StatusBadRequest)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Status != model.PaymentStatusPending && req.Status != model.PaymentStatusPaid {
		utils.SendJSONError(w, "status must be 'pending' or 'paid'", http.StatusBadRequest)
		return
	}

	if err := model.UpdatePaymentStatus(database.DB, paymentID, userID, req.Status); err != nil {
		if errors.Is(err, model.ErrPaymentNotFound) {
			utils.SendJSONError(w, "Payment not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to update payment status", "userID", userID, "paymentID", paymentID, "error", err)
		utils.SendJSONError(w, "Failed to update payment", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
