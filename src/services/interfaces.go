package services

import (
	"errors"
	"io"
	"time"

	"github.com/username/sellerledger/backend/src/models"
)

var (
	// ErrParsingFailed marks structural file failures: the upload is rejected
	// outright, unlike row-level validation errors which never abort a batch.
	ErrParsingFailed = errors.New("failed to parse report file")

	// ErrAccountNotFound is returned when the target account does not exist
	// or is not owned by the caller.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionNotFound is returned by the correction path for an
	// unknown transaction id.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// IngestOptions carries the optional replace-mode flag and its date window.
// When ReplaceMode is set, all existing transactions for the account are
// deleted before insertion, narrowed to [DateStart, DateEnd] when given; the
// end date is inclusive to end-of-day.
type IngestOptions struct {
	ReplaceMode bool
	DateStart   *time.Time
	DateEnd     *time.Time
}

// IngestionService ingests uploaded transaction reports idempotently.
type IngestionService interface {
	IngestReport(fileReader io.Reader, userID, accountID int64, opts IngestOptions) (*models.UploadResult, error)
}

// TransactionFilter narrows reads over the persisted transaction set.
type TransactionFilter struct {
	AccountID *int64
	DateStart *time.Time
	DateEnd   *time.Time
}

// AnalyticsSummary is the dashboard payload: the consolidation aggregates
// plus the figures contributed by the external collaborators (product
// catalog, payment ledger).
type AnalyticsSummary struct {
	GrossRevenue            float64 `json:"gross_revenue"`
	TotalFees               float64 `json:"total_fees"`
	TotalSourcingCost       float64 `json:"total_sourcing_cost"`
	TotalShippingCost       float64 `json:"total_shipping_cost"`
	NetProfit               float64 `json:"net_profit"`
	StandaloneInsertionFees float64 `json:"standalone_insertion_fees"`
	StandaloneOtherFees     float64 `json:"standalone_other_fees"`
	OrderCount              int     `json:"order_count"`
	InventoryValue          float64 `json:"inventory_value"`
	PaymentsPending         float64 `json:"payments_pending"`
	PaymentsPaid            float64 `json:"payments_paid"`
}

// AnalyticsService re-derives the consolidation view over a filtered window.
type AnalyticsService interface {
	Summary(userID int64, filter TransactionFilter) (*AnalyticsSummary, error)
	ConsolidatedOrders(userID int64, filter TransactionFilter) ([]models.ConsolidatedOrder, error)
	ListTransactions(userID int64, filter TransactionFilter) ([]models.CanonicalTransaction, error)
	InvalidateUserCache(userID int64)
}
