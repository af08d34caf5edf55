// backend/src/services/ingestion_service.go
package services

import (
	"bytes"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/username/sellerledger/backend/src/logger"
	"github.com/username/sellerledger/backend/src/model"
	"github.com/username/sellerledger/backend/src/models"
	"github.com/username/sellerledger/backend/src/parsers"
	"github.com/username/sellerledger/backend/src/parsers/ebay"
	"github.com/username/sellerledger/backend/src/security/validation"
	"github.com/username/sellerledger/backend/src/utils"
)

type ingestionServiceImpl struct {
	db        *sql.DB
	analytics AnalyticsService

	// Uploads for the same (user, account) pair are serialized: the
	// delete-then-insert sequence below is not atomic, and two concurrent
	// uploads touching overlapping order numbers would otherwise race.
	locksMu      sync.Mutex
	accountLocks map[string]*sync.Mutex
}

func NewIngestionService(db *sql.DB, analytics AnalyticsService) IngestionService {
	return &ingestionServiceImpl{
		db:           db,
		analytics:    analytics,
		accountLocks: make(map[string]*sync.Mutex),
	}
}

func (s *ingestionServiceImpl) lockAccount(userID, accountID int64) *sync.Mutex {
	key := fmt.Sprintf("%d:%d", userID, accountID)
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	mu, ok := s.accountLocks[key]
	if !ok {
		mu = &sync.Mutex{}
		s.accountLocks[key] = mu
	}
	return mu
}

// classifiedRow pairs a canonical transaction with the 1-based row number it
// came from (header row counts as row 1), so insert failures can be reported
// against the right row.
type classifiedRow struct {
	tx  *models.CanonicalTransaction
	row int
}

// IngestReport runs the full ingestion sequence for one uploaded file:
//
//  1. hash the raw bytes and delete any prior batch with the same hash
//     (exact re-upload protection),
//  2. optionally wipe the account's transactions (replace mode, date-scoped),
//  3. parse and classify every row, collecting per-row errors without
//     aborting the batch,
//  4. delete existing transactions carrying any order number present in the
//     new batch (re-exported reports replace, never append),
//  5. bulk-insert, tolerating per-document failure.
//
// The delete and insert steps are sequential, individually idempotent side
// effects, not one storage transaction. A crash between steps 4 and 5 leaves
// the deleted order numbers absent until the file is re-uploaded; that
// at-most-once behavior is accepted for report ingestion.
func (s *ingestionServiceImpl) IngestReport(fileReader io.Reader, userID, accountID int64, opts IngestOptions) (*models.UploadResult, error) {
	account, err := model.GetAccountForUser(s.db, accountID, userID)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("loading account %d: %w", accountID, err)
	}

	data, err := io.ReadAll(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading upload: %v", ErrParsingFailed, err)
	}
	hashBytes := sha256.Sum256(data)
	fileHash := hex.EncodeToString(hashBytes[:])

	report, err := parsers.ParseReport(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	reportType := parsers.DetectReportType(report.Headers)
	logger.L.Info("Report type detected", "userID", userID, "accountID", accountID,
		"reportType", reportType, "rows", len(report.Rows), "fileHash", fileHash[:12])

	result := &models.UploadResult{ReportType: reportType, FileHash: fileHash}
	var batch []classifiedRow

	for i, row := range report.Rows {
		rowNum := i + 3 // data row i (1-based) is reported as row i+2; the header counts as row 1
		tx, skip, rowErr := ebay.Classify(row, reportType, account.DefaultCurrency)
		if skip {
			continue
		}
		if rowErr != nil {
			result.ErrorDetails = append(result.ErrorDetails, models.RowError{Row: rowNum, Error: rowErr.Error()})
			continue
		}

		// Universal payout guard. Classify already drops payouts per format,
		// but the EXPORTED path resolves its type from a different column
		// set, so the final check stays independent of the per-format one.
		if tx.TransactionType == models.TxTypePayout {
			continue
		}

		tx.UserID = userID
		tx.AccountID = accountID
		tx.FileHash = fileHash
		tx.ItemName = validation.SanitizeText(validation.StripUnprintable(tx.ItemName))
		tx.Description = validation.SanitizeText(validation.StripUnprintable(tx.Description))

		s.linkProduct(tx)
		tx.GrossProfit = tx.ComputeGrossProfit()
		batch = append(batch, classifiedRow{tx: tx, row: rowNum})
	}

	mu := s.lockAccount(userID, accountID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.deleteByFileHash(userID, accountID, fileHash); err != nil {
		return nil, err
	}
	if opts.ReplaceMode {
		if err := s.deleteForReplaceMode(userID, accountID, opts); err != nil {
			return nil, err
		}
	}
	if err := s.deleteByOrderNumbers(userID, accountID, orderNumbersOf(batch)); err != nil {
		return nil, err
	}

	inserted, insertErrs := s.insertBatch(batch)
	result.Imported = inserted
	result.ErrorDetails = append(result.ErrorDetails, insertErrs...)
	result.Errors = len(result.ErrorDetails)

	if s.analytics != nil {
		s.analytics.InvalidateUserCache(userID)
	}

	logger.L.Info("Report ingestion finished", "userID", userID, "accountID", accountID,
		"imported", result.Imported, "errors", result.Errors)
	return result, nil
}

// linkProduct attaches the catalog entry matching (user, sku), when one
// exists. A marketplace report carries no sourcing cost, so a matched
// product also seeds the sourcing cost of sale rows from its unit cost.
// Absence of a product is never an error.
func (s *ingestionServiceImpl) linkProduct(tx *models.CanonicalTransaction) {
	if tx.SKU == "" {
		return
	}
	product, err := model.GetProductBySKU(s.db, tx.UserID, tx.SKU)
	if err != nil {
		if !errors.Is(err, model.ErrProductNotFound) {
			logger.L.Warn("Product lookup failed during ingestion", "userID", tx.UserID, "sku", tx.SKU, "error", err)
		}
		return
	}
	tx.ProductID = &product.ID
	if tx.SourcingCost == 0 && models.IsSaleType(tx.TransactionType) {
		tx.SourcingCost = product.UnitCost * float64(tx.Quantity)
	}
}

func (s *ingestionServiceImpl) deleteByFileHash(userID, accountID int64, fileHash string) error {
	res, err := s.db.Exec(
		`DELETE FROM order_transactions WHERE user_id = ? AND account_id = ? AND file_hash = ?`,
		userID, accountID, fileHash)
	if err != nil {
		return fmt.Errorf("deleting prior batch by file hash: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		logger.L.Info("Deleted prior batch with identical file hash", "userID", userID, "deleted", n)
	}
	return nil
}

func (s *ingestionServiceImpl) deleteForReplaceMode(userID, accountID int64, opts IngestOptions) error {
	query := `DELETE FROM order_transactions WHERE user_id = ? AND account_id = ?`
	args := []interface{}{userID, accountID}
	if opts.DateStart != nil {
		query += ` AND order_date >= ?`
		args = append(args, *opts.DateStart)
	}
	if opts.DateEnd != nil {
		query += ` AND order_date <= ?`
		args = append(args, utils.EndOfDay(*opts.DateEnd))
	}
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("replace-mode delete: %w", err)
	}
	n, _ := res.RowsAffected()
	logger.L.Info("Replace mode wiped existing transactions", "userID", userID, "accountID", accountID, "deleted", n)
	return nil
}

// deleteByOrderNumbers removes every persisted transaction carrying an order
// number present in the new batch. This is what makes re-uploading a report
// covering the same orders a replace rather than an append, independent of
// the exact-file-hash check.
func (s *ingestionServiceImpl) deleteByOrderNumbers(userID, accountID int64, orderNumbers []string) error {
	const chunkSize = 500 // keep IN clauses under sqlite's parameter limit
	for start := 0; start < len(orderNumbers); start += chunkSize {
		end := start + chunkSize
		if end > len(orderNumbers) {
			end = len(orderNumbers)
		}
		chunk := orderNumbers[start:end]

		query := `DELETE FROM order_transactions WHERE user_id = ? AND account_id = ? AND order_number IN (?` +
			strings.Repeat(",?", len(chunk)-1) + `)`
		args := make([]interface{}, 0, len(chunk)+2)
		args = append(args, userID, accountID)
		for _, on := range chunk {
			args = append(args, on)
		}
		if _, err := s.db.Exec(query, args...); err != nil {
			return fmt.Errorf("deleting existing transactions by order number: %w", err)
		}
	}
	return nil
}

func (s *ingestionServiceImpl) insertBatch(batch []classifiedRow) (int, []models.RowError) {
	if len(batch) == 0 {
		return 0, nil
	}

	stmt, err := s.db.Prepare(`INSERT INTO order_transactions
		(user_id, account_id, product_id, file_hash, order_number, sku, item_name, quantity,
		transaction_type, gross_amount, fees, net_amount, sourcing_cost, shipping_cost,
		gross_profit, currency, order_date, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		logger.L.Error("Failed to prepare transaction insert", "error", err)
		errs := make([]models.RowError, 0, len(batch))
		for _, item := range batch {
			errs = append(errs, models.RowError{Row: item.row, Error: "insert failed: " + err.Error()})
		}
		return 0, errs
	}
	defer stmt.Close()

	inserted := 0
	var insertErrs []models.RowError
	for _, item := range batch {
		tx := item.tx
		_, err := stmt.Exec(
			tx.UserID, tx.AccountID, tx.ProductID, tx.FileHash, tx.OrderNumber, tx.SKU, tx.ItemName, tx.Quantity,
			tx.TransactionType, tx.GrossAmount, tx.Fees, tx.NetAmount, tx.SourcingCost, tx.ShippingCost,
			tx.GrossProfit, tx.Currency, tx.OrderDate, tx.Description,
		)
		if err != nil {
			// One bad document must not lose the rest of the batch.
			logger.L.Warn("Failed to insert transaction", "orderNumber", tx.OrderNumber, "row", item.row, "error", err)
			insertErrs = append(insertErrs, models.RowError{Row: item.row, Error: "insert failed: " + err.Error()})
			continue
		}
		inserted++
	}
	return inserted, insertErrs
}

func orderNumbersOf(batch []classifiedRow) []string {
	seen := make(map[string]bool)
	var orderNumbers []string
	for _, item := range batch {
		on := item.tx.OrderNumber
		if on == "" || seen[on] {
			continue
		}
		seen[on] = true
		orderNumbers = append(orderNumbers, on)
	}
	return orderNumbers
}
