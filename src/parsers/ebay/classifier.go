// backend/src/parsers/ebay/classifier.go
package ebay

import (
	"fmt"
	"math"
	"strings"

	"github.com/username/sellerledger/backend/src/models"
	"github.com/username/sellerledger/backend/src/utils"
)

// NormalizeTransactionType lowercases and trims a reported transaction type
// and rewrites the insertion-fee spellings ("Insertion Fee", "Listing fee",
// "insertion", anything containing "insertion fee") to the single canonical
// value.
func NormalizeTransactionType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	if t == models.TxTypeListingFee || t == "insertion" || strings.Contains(t, models.TxTypeInsertionFee) {
		return models.TxTypeInsertionFee
	}
	return t
}

// isStandaloneFeeType reports whether a normalized type is a fee that exists
// independently of any order, and so may legitimately lack an order number.
func isStandaloneFeeType(txType string) bool {
	return txType == models.TxTypeInsertionFee || txType == models.TxTypeOtherFee
}

// Classify resolves one raw report row into a canonical transaction.
//
// Returns (nil, true, nil) when the row is intentionally excluded (payouts),
// and (nil, false, err) for a row-level validation failure. Validation
// failures are per-row: the caller records them and keeps going.
//
// accountCurrency is the uploading account's configured default, used when
// the row carries no currency column.
func Classify(row models.RawReportRow, reportType models.ReportType, accountCurrency string) (*models.CanonicalTransaction, bool, error) {
	table := columnsFor(reportType)

	txType := NormalizeTransactionType(resolveField(row, table, fieldType))

	// Eager per-format payout exclusion. The ingestion controller applies the
	// same check once more before persistence; the two are intentionally
	// redundant because the EXPORTED path resolves the type from a different
	// column set.
	if txType == models.TxTypePayout {
		return nil, true, nil
	}

	orderNumber := strings.TrimSpace(resolveField(row, table, fieldOrderNumber))
	if orderNumber == "" && !isStandaloneFeeType(txType) {
		return nil, false, fmt.Errorf("missing order number")
	}

	sku := strings.TrimSpace(resolveField(row, table, fieldSKU))
	if sku == "" && models.IsSaleType(txType) {
		return nil, false, fmt.Errorf("missing SKU on %s row", txType)
	}

	currency := strings.ToUpper(strings.TrimSpace(resolveField(row, table, fieldCurrency)))
	if currency == "" {
		currency = strings.ToUpper(strings.TrimSpace(accountCurrency))
	}
	if currency == "" {
		currency = "USD"
	}

	quantity := utils.ParseIntOrDefault(resolveField(row, table, fieldQuantity), 1)
	if quantity < 1 {
		quantity = 1
	}

	grossAmount := utils.ParseFloatOrZero(resolveField(row, table, fieldGrossAmount))
	netAmount := utils.ParseFloatOrZero(resolveField(row, table, fieldNetAmount))

	var fees, sourcingCost, shippingCost float64
	if reportType == models.ReportTypeExported {
		// Re-exports carry already-reconciled figures at face value; the
		// magnitude rule still holds because exports write them positive.
		fees = math.Abs(utils.ParseFloatOrZero(resolveField(row, table, fieldFees)))
		sourcingCost = math.Abs(utils.ParseFloatOrZero(resolveField(row, table, fieldSourcingCost)))
		shippingCost = math.Abs(utils.ParseFloatOrZero(resolveField(row, table, fieldShippingCost)))
	} else {
		fees = ComputeFee(row, reportType)
	}

	tx := &models.CanonicalTransaction{
		OrderNumber:     orderNumber,
		SKU:             sku,
		ItemName:        strings.TrimSpace(resolveField(row, table, fieldItemName)),
		Quantity:        quantity,
		TransactionType: txType,
		GrossAmount:     grossAmount,
		Fees:            fees,
		NetAmount:       netAmount,
		SourcingCost:    sourcingCost,
		ShippingCost:    shippingCost,
		Currency:        currency,
		OrderDate:       utils.ParseOrderDate(resolveField(row, table, fieldDate)),
		Description:     strings.TrimSpace(resolveField(row, table, fieldDescription)),
	}
	tx.GrossProfit = tx.ComputeGrossProfit()
	return tx, false, nil
}
