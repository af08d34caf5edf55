package services

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/username/sellerledger/backend/src/logger"
	"github.com/username/sellerledger/backend/src/models"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

const testSchema = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL
);
CREATE TABLE accounts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	marketplace TEXT NOT NULL DEFAULT 'ebay',
	default_currency TEXT NOT NULL DEFAULT 'USD',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	sku TEXT NOT NULL,
	name TEXT NOT NULL,
	unit_cost REAL NOT NULL DEFAULT 0,
	quantity INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (user_id, sku)
);
CREATE TABLE order_transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	account_id INTEGER NOT NULL,
	product_id INTEGER,
	file_hash TEXT NOT NULL DEFAULT '',
	order_number TEXT NOT NULL,
	sku TEXT NOT NULL DEFAULT '',
	item_name TEXT NOT NULL DEFAULT '',
	quantity INTEGER NOT NULL DEFAULT 1,
	transaction_type TEXT NOT NULL,
	gross_amount REAL NOT NULL DEFAULT 0,
	fees REAL NOT NULL DEFAULT 0,
	net_amount REAL NOT NULL DEFAULT 0,
	sourcing_cost REAL NOT NULL DEFAULT 0,
	shipping_cost REAL NOT NULL DEFAULT 0,
	gross_profit REAL NOT NULL DEFAULT 0,
	currency TEXT NOT NULL DEFAULT 'USD',
	order_date TIMESTAMP NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE payments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	account_id INTEGER,
	amount REAL NOT NULL DEFAULT 0,
	currency TEXT NOT NULL DEFAULT 'USD',
	status TEXT NOT NULL DEFAULT 'pending',
	reference TEXT NOT NULL DEFAULT '',
	due_date TIMESTAMP,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// newTestDB opens an in-memory sqlite database with the application schema and
// one user owning one account. Returns the db and the (userID, accountID) pair.
func newTestDB(t *testing.T) (*sql.DB, int64, int64) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	res, err := db.Exec(`INSERT INTO users (username, email, password) VALUES ('seller', 'seller@example.com', 'x')`)
	require.NoError(t, err)
	userID, err := res.LastInsertId()
	require.NoError(t, err)

	res, err = db.Exec(`INSERT INTO accounts (user_id, name, default_currency) VALUES (?, 'Main Store', 'USD')`, userID)
	require.NoError(t, err)
	accountID, err := res.LastInsertId()
	require.NoError(t, err)

	return db, userID, accountID
}

const usReportHeader = "Order number,Type,Custom label,Item title,Quantity,Gross transaction amount,Transaction currency,Transaction creation date,Final Value Fee - fixed,Final Value Fee - variable"

func usOrderLine(orderNumber, sku string, gross float64) string {
	return fmt.Sprintf("%s,Order,%s,Some Item,1,%.2f,USD,03/15/2025,0.30,1.20", orderNumber, sku, gross)
}

func usReport(lines ...string) string {
	return usReportHeader + "\n" + strings.Join(lines, "\n") + "\n"
}

func countTransactions(t *testing.T, db *sql.DB, userID, accountID int64) int {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM order_transactions WHERE user_id = ? AND account_id = ?`, userID, accountID).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestIngestReportBasic(t *testing.T) {
	db, userID, accountID := newTestDB(t)
	svc := NewIngestionService(db, nil)

	content := usReport(
		usOrderLine("11-001", "SKU-1", 25.00),
		usOrderLine("11-002", "SKU-2", 40.00),
	)
	result, err := svc.IngestReport(strings.NewReader(content), userID, accountID, IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Errors)
	assert.Equal(t, models.ReportTypeUS, result.ReportType)
	assert.Len(t, result.FileHash, 64)
	assert.Equal(t, 2, countTransactions(t, db, userID, accountID))

	var fees float64
	err = db.QueryRow(`SELECT fees FROM order_transactions WHERE order_number = '11-001'`).Scan(&fees)
	require.NoError(t, err)
	assert.InDelta(t, 1.50, fees, 1e-9)
}

func TestIngestReportIdempotentReupload(t *testing.T) {
	db, userID, accountID := newTestDB(t)
	svc := NewIngestionService(db, nil)

	content := usReport(usOrderLine("11-001", "SKU-1", 25.00))
	for i := 0; i < 3; i++ {
		result, err := svc.IngestReport(strings.NewReader(content), userID, accountID, IngestOptions{})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Imported)
	}

	assert.Equal(t, 1, countTransactions(t, db, userID, accountID),
		"re-uploading the identical file must not duplicate transactions")
}

func TestIngestReportReplacesByOrderNumber(t *testing.T) {
	db, userID, accountID := newTestDB(t)
	svc := NewIngestionService(db, nil)

	fileA := usReport(
		usOrderLine("11-001", "SKU-1", 25.00),
		usOrderLine("11-002", "SKU-2", 40.00),
	)
	_, err := svc.IngestReport(strings.NewReader(fileA), userID, accountID, IngestOptions{})
	require.NoError(t, err)

	// A different file covering order 11-001 replaces it but leaves 11-002.
	fileB := usReport(usOrderLine("11-001", "SKU-1", 30.00))
	_, err = svc.IngestReport(strings.NewReader(fileB), userID, accountID, IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, countTransactions(t, db, userID, accountID))

	var gross float64
	err = db.QueryRow(`SELECT gross_amount FROM order_transactions WHERE order_number = '11-001'`).Scan(&gross)
	require.NoError(t, err)
	assert.InDelta(t, 30.00, gross, 1e-9, "the newer file's figures win")
}

func TestIngestReportExcludesPayouts(t *testing.T) {
	db, userID, accountID := newTestDB(t)
	svc := NewIngestionService(db, nil)

	content := usReport(
		usOrderLine("11-001", "SKU-1", 25.00),
		"11-001,Payout,,,,,USD,03/16/2025,,",
	)
	result, err := svc.IngestReport(strings.NewReader(content), userID, accountID, IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 0, result.Errors, "payouts are silently excluded, not errors")

	var n int
	err = db.QueryRow(`SELECT COUNT(*) FROM order_transactions WHERE transaction_type = 'payout'`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestIngestReportRowErrorNumbering(t *testing.T) {
	db, userID, accountID := newTestDB(t)
	svc := NewIngestionService(db, nil)

	lines := make([]string, 0, 10)
	for i := 1; i <= 10; i++ {
		orderNumber := fmt.Sprintf("11-%03d", i)
		if i == 5 {
			orderNumber = "" // data row 5 lacks its order number
		}
		lines = append(lines, usOrderLine(orderNumber, "SKU-1", 10.00))
	}

	result, err := svc.IngestReport(strings.NewReader(usReport(lines...)), userID, accountID, IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, 9, result.Imported)
	assert.Equal(t, 1, result.Errors)
	require.Len(t, result.ErrorDetails, 1)
	assert.Equal(t, 7, result.ErrorDetails[0].Row,
		"data row 5 sits two lines below the header line of the spreadsheet")
	assert.Contains(t, result.ErrorDetails[0].Error, "order number")
}

func TestIngestReportReplaceModeDateWindow(t *testing.T) {
	db, userID, accountID := newTestDB(t)
	svc := NewIngestionService(db, nil)

	insert := func(orderNumber string, orderDate time.Time) {
		_, err := db.Exec(`INSERT INTO order_transactions
			(user_id, account_id, order_number, transaction_type, order_date)
			VALUES (?, ?, ?, 'order', ?)`, userID, accountID, orderNumber, orderDate)
		require.NoError(t, err)
	}
	insert("OLD-IN-WINDOW", time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC))
	insert("OLD-END-OF-WINDOW", time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC))
	insert("OLD-OUTSIDE", time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	content := usReport(usOrderLine("11-001", "SKU-1", 25.00))
	_, err := svc.IngestReport(strings.NewReader(content), userID, accountID, IngestOptions{
		ReplaceMode: true,
		DateStart:   &start,
		DateEnd:     &end,
	})
	require.NoError(t, err)

	remaining := map[string]bool{}
	rows, err := db.Query(`SELECT order_number FROM order_transactions WHERE user_id = ?`, userID)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var on string
		require.NoError(t, rows.Scan(&on))
		remaining[on] = true
	}
	require.NoError(t, rows.Err())

	assert.False(t, remaining["OLD-IN-WINDOW"])
	assert.False(t, remaining["OLD-END-OF-WINDOW"], "the end date is inclusive to end of day")
	assert.True(t, remaining["OLD-OUTSIDE"])
	assert.True(t, remaining["11-001"])
}

func TestIngestReportLinksProductAndSeedsSourcingCost(t *testing.T) {
	db, userID, accountID := newTestDB(t)
	svc := NewIngestionService(db, nil)

	_, err := db.Exec(`INSERT INTO products (user_id, sku, name, unit_cost, quantity)
		VALUES (?, 'SKU-1', 'Widget', 7.50, 10)`, userID)
	require.NoError(t, err)

	content := usReport("11-001,Order,SKU-1,Some Item,2,50.00,USD,03/15/2025,0.30,1.20")
	result, err := svc.IngestReport(strings.NewReader(content), userID, accountID, IngestOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, result.Imported)

	var productID sql.NullInt64
	var sourcingCost float64
	err = db.QueryRow(`SELECT product_id, sourcing_cost FROM order_transactions WHERE order_number = '11-001'`).
		Scan(&productID, &sourcingCost)
	require.NoError(t, err)
	assert.True(t, productID.Valid)
	assert.InDelta(t, 15.00, sourcingCost, 1e-9, "unit cost 7.50 times quantity 2")
}

func TestIngestReportUnknownAccount(t *testing.T) {
	db, userID, _ := newTestDB(t)
	svc := NewIngestionService(db, nil)

	_, err := svc.IngestReport(strings.NewReader(usReport(usOrderLine("11-001", "SKU-1", 1))), userID, 9999, IngestOptions{})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestIngestReportStructuralFailure(t *testing.T) {
	db, userID, accountID := newTestDB(t)
	svc := NewIngestionService(db, nil)

	_, err := svc.IngestReport(strings.NewReader(""), userID, accountID, IngestOptions{})
	assert.ErrorIs(t, err, ErrParsingFailed)
}
