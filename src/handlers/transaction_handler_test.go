package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/username/sellerledger/backend/src/database"
	"github.com/username/sellerledger/backend/src/logger"
	"github.com/username/sellerledger/backend/src/services"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

// useTestDB points the package-level handle at an in-memory database carrying
// just the transactions table, and restores the previous handle afterward.
func useTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE order_transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		account_id INTEGER NOT NULL,
		order_number TEXT NOT NULL,
		transaction_type TEXT NOT NULL DEFAULT 'order',
		gross_amount REAL NOT NULL DEFAULT 0,
		fees REAL NOT NULL DEFAULT 0,
		sourcing_cost REAL NOT NULL DEFAULT 0,
		shipping_cost REAL NOT NULL DEFAULT 0,
		gross_profit REAL NOT NULL DEFAULT 0,
		order_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	require.NoError(t, err)

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		db.Close()
	})
	return db
}

func newTransactionRouter(db *sql.DB) *chi.Mux {
	analytics := services.NewAnalyticsService(db, cache.New(time.Minute, time.Minute))
	h := NewTransactionHandler(analytics)

	r := chi.NewRouter()
	r.Patch("/transactions/{id}", h.HandleCorrectTransaction)
	r.Delete("/transactions", h.HandleDeleteTransactions)
	return r
}

func authedRequest(method, target, body string, userID int64) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := context.WithValue(req.Context(), userIDContextKey, userID)
	return req.WithContext(ctx)
}

func TestHandleCorrectTransactionRecomputesGrossProfit(t *testing.T) {
	db := useTestDB(t)
	router := newTransactionRouter(db)

	res, err := db.Exec(`INSERT INTO order_transactions
		(user_id, account_id, order_number, gross_amount, fees, sourcing_cost, shipping_cost, gross_profit)
		VALUES (1, 1, 'O-1', 100, 10, 0, 0, 90)`)
	require.NoError(t, err)
	txID, err := res.LastInsertId()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPatch, "/transactions/1", `{"sourcingCost": 5}`, 1))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, 5, body["sourcingCost"], 1e-9)
	assert.InDelta(t, 85, body["grossProfit"], 1e-9)

	var grossProfit, sourcingCost float64
	err = db.QueryRow(`SELECT gross_profit, sourcing_cost FROM order_transactions WHERE id = ?`, txID).
		Scan(&grossProfit, &sourcingCost)
	require.NoError(t, err)
	assert.InDelta(t, 85, grossProfit, 1e-9)
	assert.InDelta(t, 5, sourcingCost, 1e-9)
}

func TestHandleCorrectTransactionNormalizesNegativeValues(t *testing.T) {
	db := useTestDB(t)
	router := newTransactionRouter(db)

	_, err := db.Exec(`INSERT INTO order_transactions
		(user_id, account_id, order_number, gross_amount, fees, gross_profit)
		VALUES (1, 1, 'O-1', 100, 10, 90)`)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPatch, "/transactions/1", `{"fees": -3}`, 1))
	require.Equal(t, http.StatusOK, rec.Code)

	var fees float64
	require.NoError(t, db.QueryRow(`SELECT fees FROM order_transactions WHERE id = 1`).Scan(&fees))
	assert.InDelta(t, 3, fees, 1e-9, "a corrected fee is stored as a magnitude")
}

func TestHandleCorrectTransactionUnknownID(t *testing.T) {
	db := useTestDB(t)
	router := newTransactionRouter(db)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPatch, "/transactions/42", `{"fees": 1}`, 1))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleCorrectTransactionIsTenantScoped(t *testing.T) {
	db := useTestDB(t)
	router := newTransactionRouter(db)

	_, err := db.Exec(`INSERT INTO order_transactions
		(user_id, account_id, order_number, gross_amount) VALUES (2, 1, 'O-1', 100)`)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPatch, "/transactions/1", `{"fees": 1}`, 1))
	assert.Equal(t, http.StatusNotFound, rec.Code, "another user's transaction must look nonexistent")
}

func TestHandleCorrectTransactionRequiresAField(t *testing.T) {
	db := useTestDB(t)
	router := newTransactionRouter(db)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPatch, "/transactions/1", `{}`, 1))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDeleteTransactionsByAccount(t *testing.T) {
	db := useTestDB(t)
	router := newTransactionRouter(db)

	_, err := db.Exec(`INSERT INTO order_transactions (user_id, account_id, order_number) VALUES
		(1, 1, 'A'), (1, 2, 'B'), (2, 1, 'C')`)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodDelete, "/transactions", `{"type":"account","accountId":1}`, 1))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM order_transactions`).Scan(&n))
	assert.Equal(t, 2, n, "only user 1's account 1 rows are gone")
}
