// backend/src/models/transaction.go
package models

import "time"

// Normalized transaction types. Source files spell these many ways; the
// classifier lowercases, trims and rewrites them to this closed set.
const (
	TxTypeOrder         = "order"
	TxTypeSale          = "sale"
	TxTypeRefund        = "refund"
	TxTypeShippingLabel = "shipping label"
	TxTypePostageLabel  = "postage label"
	TxTypeClaim         = "claim"
	TxTypeInsertionFee  = "insertion fee"
	TxTypeListingFee    = "listing fee"
	TxTypeOtherFee      = "other fee"
	TxTypePayout        = "payout"
)

// IsSaleType reports whether a normalized transaction type represents a sale
// row. Sale rows are the only rows that require a SKU.
func IsSaleType(txType string) bool {
	return txType == TxTypeOrder || txType == TxTypeSale
}

// CanonicalTransaction is the persisted representation of one classified
// report row. Multiple rows (Sale + Refund + Shipping Label) share one order
// number, so OrderNumber is not unique.
//
// Invariants: Fees, SourcingCost and ShippingCost are stored as non-negative
// magnitudes regardless of the sign in the source file; rows whose normalized
// type is "payout" are never persisted.
type CanonicalTransaction struct {
	ID          int64  `json:"id,omitempty"`
	UserID      int64  `json:"user_id"`
	AccountID   int64  `json:"account_id"`
	ProductID   *int64 `json:"product_id,omitempty"`
	FileHash    string `json:"file_hash"`
	OrderNumber string `json:"order_number"`
	SKU         string `json:"sku"`
	ItemName    string `json:"item_name"`
	Quantity    int    `json:"quantity"`
	// TransactionType is one of the TxType constants above.
	TransactionType string    `json:"transaction_type"`
	GrossAmount     float64   `json:"gross_amount"` // signed, as reported
	Fees            float64   `json:"fees"`         // always >= 0
	NetAmount       float64   `json:"net_amount"`
	SourcingCost    float64   `json:"sourcing_cost"`
	ShippingCost    float64   `json:"shipping_cost"`
	GrossProfit     float64   `json:"gross_profit"` // derived, persisted at write time
	Currency        string    `json:"currency"`
	OrderDate       time.Time `json:"order_date"`
	Description     string    `json:"description"`
}

// ComputeGrossProfit derives the stored grossProfit from the current field
// values. Called at ingestion time and again after manual corrections.
func (t *CanonicalTransaction) ComputeGrossProfit() float64 {
	return t.GrossAmount - t.Fees - t.SourcingCost - t.ShippingCost
}
