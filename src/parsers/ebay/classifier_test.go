package ebay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/sellerledger/backend/src/models"
)

func TestNormalizeTransactionType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Order", "order"},
		{"  Refund  ", "refund"},
		{"Insertion Fee", models.TxTypeInsertionFee},
		{"listing fee", models.TxTypeInsertionFee},
		{"insertion", models.TxTypeInsertionFee},
		{"AD: Insertion fee credit", models.TxTypeInsertionFee},
		{"Payout", "payout"},
		{"Shipping label", "shipping label"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeTransactionType(tt.in), "input %q", tt.in)
	}
}

func TestClassifyOrderRow(t *testing.T) {
	r := row(map[string]string{
		"Order number":               "11-11111-11111",
		"Type":                       "Order",
		"Custom label":               "SKU-1",
		"Item title":                 "Vintage Lamp",
		"Quantity":                   "2",
		"Gross transaction amount":   "49.98",
		"Transaction currency":       "USD",
		"Transaction creation date":  "03/15/2025",
		"Final Value Fee - fixed":    "0.30",
		"Final Value Fee - variable": "6.50",
	})

	tx, skip, err := Classify(r, models.ReportTypeUS, "USD")
	require.NoError(t, err)
	require.False(t, skip)

	assert.Equal(t, "11-11111-11111", tx.OrderNumber)
	assert.Equal(t, "SKU-1", tx.SKU)
	assert.Equal(t, "Vintage Lamp", tx.ItemName)
	assert.Equal(t, 2, tx.Quantity)
	assert.Equal(t, models.TxTypeOrder, tx.TransactionType)
	assert.InDelta(t, 49.98, tx.GrossAmount, 1e-9)
	assert.InDelta(t, 6.80, tx.Fees, 1e-9)
	assert.Equal(t, "USD", tx.Currency)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), tx.OrderDate)
	assert.InDelta(t, 49.98-6.80, tx.GrossProfit, 1e-9)
}

func TestClassifyPayoutIsExcluded(t *testing.T) {
	for _, reportType := range []models.ReportType{models.ReportTypeUS, models.ReportTypeUK, models.ReportTypeUnknown} {
		r := row(map[string]string{
			"Order number": "1",
			"Type":         "Payout",
		})
		tx, skip, err := Classify(r, reportType, "USD")
		assert.NoError(t, err)
		assert.True(t, skip)
		assert.Nil(t, tx)
	}

	// EXPORTED resolves the type from its own column set and must exclude too.
	r := row(map[string]string{
		"Order Number":     "1",
		"Transaction Type": "payout",
	})
	tx, skip, err := Classify(r, models.ReportTypeExported, "USD")
	assert.NoError(t, err)
	assert.True(t, skip)
	assert.Nil(t, tx)
}

func TestClassifyMissingOrderNumberIsRowError(t *testing.T) {
	r := row(map[string]string{
		"Type":         "Order",
		"Custom label": "SKU-1",
	})
	tx, skip, err := Classify(r, models.ReportTypeUS, "USD")
	assert.Error(t, err)
	assert.False(t, skip)
	assert.Nil(t, tx)
}

func TestClassifyStandaloneFeeWithoutOrderNumber(t *testing.T) {
	// Insertion fees exist independently of any order and must classify.
	r := row(map[string]string{
		"Type":                     "Insertion Fee",
		"Gross transaction amount": "-0.35",
	})
	tx, skip, err := Classify(r, models.ReportTypeUS, "USD")
	require.NoError(t, err)
	require.False(t, skip)
	assert.Equal(t, models.TxTypeInsertionFee, tx.TransactionType)
	assert.Empty(t, tx.OrderNumber)
}

func TestClassifySKURequiredOnlyForSaleRows(t *testing.T) {
	// Sale row without SKU is rejected.
	r := row(map[string]string{
		"Order number": "1",
		"Type":         "Order",
	})
	_, _, err := Classify(r, models.ReportTypeUS, "USD")
	assert.Error(t, err)

	// Fee and label rows are keyed by order number; no SKU needed.
	for _, typ := range []string{"Refund", "Shipping label", "Other fee", "Claim"} {
		r := row(map[string]string{
			"Order number": "1",
			"Type":         typ,
		})
		tx, skip, err := Classify(r, models.ReportTypeUS, "USD")
		require.NoError(t, err, "type %q", typ)
		require.False(t, skip)
		assert.Empty(t, tx.SKU)
	}
}

func TestClassifyFeeSignNormalization(t *testing.T) {
	r := row(map[string]string{
		"Order number":               "1",
		"Type":                       "Order",
		"Custom label":               "SKU-1",
		"Final Value Fee - fixed":    "-0.30",
		"Final Value Fee - variable": "-1.20",
	})
	tx, _, err := Classify(r, models.ReportTypeUS, "USD")
	require.NoError(t, err)
	assert.InDelta(t, 1.50, tx.Fees, 1e-9)
	assert.GreaterOrEqual(t, tx.Fees, 0.0)
}

func TestClassifyCurrencyFallbackChain(t *testing.T) {
	base := map[string]string{
		"Order number": "1",
		"Type":         "Order",
		"Custom label": "SKU-1",
	}

	// Row currency wins.
	withCurrency := row(map[string]string{})
	for k, v := range base {
		withCurrency.Fields[k] = v
	}
	withCurrency.Fields["Transaction currency"] = "gbp"
	tx, _, err := Classify(withCurrency, models.ReportTypeUK, "EUR")
	require.NoError(t, err)
	assert.Equal(t, "GBP", tx.Currency)

	// Account default next.
	tx, _, err = Classify(row(base), models.ReportTypeUK, "EUR")
	require.NoError(t, err)
	assert.Equal(t, "EUR", tx.Currency)

	// USD last.
	tx, _, err = Classify(row(base), models.ReportTypeUK, "")
	require.NoError(t, err)
	assert.Equal(t, "USD", tx.Currency)
}

func TestClassifyExportedFormatTakesValuesAtFaceValue(t *testing.T) {
	r := row(map[string]string{
		"Order Number":     "22-222",
		"SKU":              "SKU-9",
		"Item Name":        "Widget",
		"Quantity":         "1",
		"Transaction Type": "order",
		"Gross Amount":     "100.00",
		"Fees":             "12.50",
		"Sourcing Cost":    "20.00",
		"Shipping Cost":    "5.00",
		"Currency":         "GBP",
		"Date":             "2025-02-01",
	})
	tx, skip, err := Classify(r, models.ReportTypeExported, "USD")
	require.NoError(t, err)
	require.False(t, skip)

	assert.InDelta(t, 12.50, tx.Fees, 1e-9)
	assert.InDelta(t, 20.00, tx.SourcingCost, 1e-9)
	assert.InDelta(t, 5.00, tx.ShippingCost, 1e-9)
	assert.InDelta(t, 100.00-12.50-20.00-5.00, tx.GrossProfit, 1e-9)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), tx.OrderDate)
}

func TestClassifyOrderNumberFallbackChain(t *testing.T) {
	for _, column := range []string{"Order number", "Order #", "Order Number", "orderNumber", "order_number"} {
		r := row(map[string]string{
			column: "77-777",
			"Type": "Refund",
		})
		tx, _, err := Classify(r, models.ReportTypeUnknown, "USD")
		require.NoError(t, err, "column %q", column)
		assert.Equal(t, "77-777", tx.OrderNumber, "column %q", column)
	}
}

func TestClassifyQuantityDefaultsToOne(t *testing.T) {
	r := row(map[string]string{
		"Order number": "1",
		"Type":         "Order",
		"Custom label": "SKU-1",
		"Quantity":     "garbage",
	})
	tx, _, err := Classify(r, models.ReportTypeUS, "USD")
	require.NoError(t, err)
	assert.Equal(t, 1, tx.Quantity)
}

func TestClassifyUnparseableDateDefaultsToNow(t *testing.T) {
	r := row(map[string]string{
		"Order number":              "1",
		"Type":                      "Refund",
		"Transaction creation date": "not a date",
	})
	before := time.Now()
	tx, _, err := Classify(r, models.ReportTypeUS, "USD")
	require.NoError(t, err)
	assert.False(t, tx.OrderDate.Before(before.Add(-time.Second)))
}
