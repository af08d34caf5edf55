// backend/src/handlers/transaction_handler.go
package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/username/sellerledger/backend/src/database"
	"github.com/username/sellerledger/backend/src/logger"
	"github.com/username/sellerledger/backend/src/models"
	"github.com/username/sellerledger/backend/src/services"
	"github.com/username/sellerledger/backend/src/utils"
)

type TransactionHandler struct {
	analyticsService services.AnalyticsService
}

func NewTransactionHandler(analyticsService services.AnalyticsService) *TransactionHandler {
	return &TransactionHandler{
		analyticsService: analyticsService,
	}
}

// parseTransactionFilter reads the optional account/date query params shared
// by the list and analytics endpoints.
func parseTransactionFilter(r *http.Request) (services.TransactionFilter, error) {
	var filter services.TransactionFilter
	if accStr := r.URL.Query().Get("accountId"); accStr != "" {
		accountID, err := strconv.ParseInt(accStr, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("invalid accountId")
		}
		filter.AccountID = &accountID
	}
	if startStr := r.URL.Query().Get("startDate"); startStr != "" {
		t, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return filter, fmt.Errorf("invalid startDate, expected YYYY-MM-DD")
		}
		filter.DateStart = &t
	}
	if endStr := r.URL.Query().Get("endDate"); endStr != "" {
		t, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return filter, fmt.Errorf("invalid endDate, expected YYYY-MM-DD")
		}
		filter.DateEnd = &t
	}
	return filter, nil
}

func (h *TransactionHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	filter, err := parseTransactionFilter(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	transactions, err := h.analyticsService.ListTransactions(userID, filter)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error querying transactions for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}
	if transactions == nil {
		transactions = []models.CanonicalTransaction{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(transactions); err != nil {
		logger.L.Error("Error generating JSON response for transactions", "userID", userID, "error", err)
	}
}

// HandleGetConsolidatedOrders serves the derived per-order view. It is
// computed fresh from the persisted transactions on every request.
func (h *TransactionHandler) HandleGetConsolidatedOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	filter, err := parseTransactionFilter(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	orders, err := h.analyticsService.ConsolidatedOrders(userID, filter)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error consolidating orders for userID %d: %v", userID, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(orders); err != nil {
		logger.L.Error("Error generating JSON response for consolidated orders", "userID", userID, "error", err)
	}
}

// correctionRequest carries the editable cost fields. Pointers distinguish
// "not provided" from an explicit zero.
type correctionRequest struct {
	SourcingCost *float64 `json:"sourcingCost"`
	ShippingCost *float64 `json:"shippingCost"`
	Fees         *float64 `json:"fees"`
}

// HandleCorrectTransaction applies a per-field cost correction to one
// transaction and recomputes grossProfit server-side from the current gross
// amount and the merged values. Corrected magnitudes are normalized
// non-negative, the same rule ingestion applies.
func (h *TransactionHandler) HandleCorrectTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	txID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}

	var req correctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SourcingCost == nil && req.ShippingCost == nil && req.Fees == nil {
		utils.SendJSONError(w, "At least one of sourcingCost, shippingCost or fees is required", http.StatusBadRequest)
		return
	}

	var tx models.CanonicalTransaction
	err = database.DB.QueryRow(
		`SELECT id, gross_amount, fees, sourcing_cost, shipping_cost
		 FROM order_transactions WHERE id = ? AND user_id = ?`, txID, userID,
	).Scan(&tx.ID, &tx.GrossAmount, &tx.Fees, &tx.SourcingCost, &tx.ShippingCost)
	if err == sql.ErrNoRows {
		utils.SendJSONError(w, "Transaction not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.L.Error("Failed to load transaction for correction", "userID", userID, "txID", txID, "error", err)
		utils.SendJSONError(w, "Failed to load transaction", http.StatusInternalServerError)
		return
	}

	if req.SourcingCost != nil {
		tx.SourcingCost = math.Abs(*req.SourcingCost)
	}
	if req.ShippingCost != nil {
		tx.ShippingCost = math.Abs(*req.ShippingCost)
	}
	if req.Fees != nil {
		tx.Fees = math.Abs(*req.Fees)
	}
	tx.GrossProfit = tx.ComputeGrossProfit()

	_, err = database.DB.Exec(
		`UPDATE order_transactions SET fees = ?, sourcing_cost = ?, shipping_cost = ?, gross_profit = ?
		 WHERE id = ? AND user_id = ?`,
		tx.Fees, tx.SourcingCost, tx.ShippingCost, tx.GrossProfit, txID, userID,
	)
	if err != nil {
		logger.L.Error("Failed to persist transaction correction", "userID", userID, "txID", txID, "error", err)
		utils.SendJSONError(w, "Failed to update transaction", http.StatusInternalServerError)
		return
	}

	h.analyticsService.InvalidateUserCache(userID)
	logger.L.Info("Transaction corrected", "userID", userID, "txID", txID, "grossProfit", tx.GrossProfit)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":           tx.ID,
		"fees":         tx.Fees,
		"sourcingCost": tx.SourcingCost,
		"shippingCost": tx.ShippingCost,
		"grossProfit":  tx.GrossProfit,
	})
}

// deleteTransactionsRequest selects what to wipe: everything, one account, or
// a date window.
type deleteTransactionsRequest struct {
	Type      string `json:"type"` // "all", "account", "range"
	AccountID *int64 `json:"accountId,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

func (h *TransactionHandler) HandleDeleteTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req deleteTransactionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	logger.L.Info("Handling DeleteTransactions request", "userID", userID, "type", req.Type)

	var result sql.Result
	var err error
	switch req.Type {
	case "all":
		result, err = database.DB.Exec(`DELETE FROM order_transactions WHERE user_id = ?`, userID)
	case "account":
		if req.AccountID == nil {
			utils.SendJSONError(w, "accountId is required for type 'account'", http.StatusBadRequest)
			return
		}
		result, err = database.DB.Exec(
			`DELETE FROM order_transactions WHERE user_id = ? AND account_id = ?`, userID, *req.AccountID)
	case "range":
		start, errStart := time.Parse("2006-01-02", req.StartDate)
		end, errEnd := time.Parse("2006-01-02", req.EndDate)
		if errStart != nil || errEnd != nil {
			utils.SendJSONError(w, "startDate and endDate (YYYY-MM-DD) are required for type 'range'", http.StatusBadRequest)
			return
		}
		result, err = database.DB.Exec(
			`DELETE FROM order_transactions WHERE user_id = ? AND order_date >= ? AND order_date <= ?`,
			userID, start, utils.EndOfDay(end))
	default:
		utils.SendJSONError(w, "invalid deletion type specified", http.StatusBadRequest)
		return
	}

	if err != nil {
		logger.L.Error("Error executing delete statement", "userID", userID, "type", req.Type, "error", err)
		utils.SendJSONError(w, "Failed to delete transactions", http.StatusInternalServerError)
		return
	}

	rowsAffected, _ := result.RowsAffected()
	logger.L.Info("Successfully deleted transactions", "userID", userID, "type", req.Type, "rowsAffected", rowsAffected)

	h.analyticsService.InvalidateUserCache(userID)
	w.WriteHeader(http.StatusNoContent)
}
