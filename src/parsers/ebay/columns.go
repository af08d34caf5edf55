// backend/src/parsers/ebay/columns.go
package ebay

import (
	"github.com/username/sellerledger/backend/src/models"
)

// Logical fields resolved from a report row. Each field maps to an ordered
// list of candidate column names; the first candidate with a non-empty value
// wins. New eBay report variants are added here, not in control flow.
type logicalField string

const (
	fieldOrderNumber  logicalField = "orderNumber"
	fieldSKU          logicalField = "sku"
	fieldItemName     logicalField = "itemName"
	fieldQuantity     logicalField = "quantity"
	fieldType         logicalField = "transactionType"
	fieldGrossAmount  logicalField = "grossAmount"
	fieldNetAmount    logicalField = "netAmount"
	fieldFees         logicalField = "fees"
	fieldSourcingCost logicalField = "sourcingCost"
	fieldShippingCost logicalField = "shippingCost"
	fieldCurrency     logicalField = "currency"
	fieldDate         logicalField = "date"
	fieldDescription  logicalField = "description"
)

// marketplaceColumns covers the US and UK transaction-report dialects plus
// anything unrecognized. eBay has shipped several spellings of the same
// column over the years; order reflects how often each appears in practice.
var marketplaceColumns = map[logicalField][]string{
	fieldOrderNumber: {"Order number", "Order #", "Order Number", "orderNumber", "order_number"},
	fieldSKU:         {"Custom label", "Custom Label", "SKU", "sku", "Custom label (SKU)"},
	fieldItemName:    {"Item title", "Item Title", "Item name", "Item Name", "itemName"},
	fieldQuantity:    {"Quantity", "Qty", "quantity"},
	fieldType:        {"Type", "Transaction type", "Transaction Type", "type"},
	fieldGrossAmount: {"Gross transaction amount", "Gross amount", "Gross Amount", "Total", "Amount"},
	fieldNetAmount:   {"Net amount", "Net Amount", "net_amount"},
	fieldCurrency:    {"Transaction currency", "Currency", "Gross transaction currency", "currency"},
	fieldDate:        {"Transaction creation date", "Date", "Order date", "Order Date", "date"},
	fieldDescription: {"Description", "description", "Item title"},
}

// exportedColumns is the fixed column set of a file this system previously
// exported and is now re-importing. No fallbacks: re-exports are our own
// canonical spelling.
var exportedColumns = map[logicalField][]string{
	fieldOrderNumber:  {"Order Number"},
	fieldSKU:          {"SKU"},
	fieldItemName:     {"Item Name"},
	fieldQuantity:     {"Quantity"},
	fieldType:         {"Transaction Type"},
	fieldGrossAmount:  {"Gross Amount"},
	fieldNetAmount:    {"Net Amount"},
	fieldFees:         {"Fees"},
	fieldSourcingCost: {"Sourcing Cost"},
	fieldShippingCost: {"Shipping Cost"},
	fieldCurrency:     {"Currency"},
	fieldDate:         {"Date"},
	fieldDescription:  {"Description"},
}

// Fee component columns per dialect. The UK variants carry both the hyphen
// and en-dash spellings seen in real exports.
var (
	usFeeFixedColumns    = []string{"Final Value Fee - fixed", "Final value fee - fixed"}
	usFeeVariableColumns = []string{"Final Value Fee - variable", "Final value fee - variable"}

	ukFeeFixedColumns      = []string{"Final Value Fee - fixed", "Final value fee - fixed", "Final value fee – fixed"}
	ukFeeVariableColumns   = []string{"Final Value Fee - variable", "Final value fee - variable", "Final value fee – variable"}
	ukRegulatoryFeeColumns = []string{"Regulatory operating fee", "Regulatory Operating Fee"}

	genericFeeColumns = []string{"Fees", "Fee", "fees"}
)

// columnsFor returns the candidate table for a report type.
func columnsFor(reportType models.ReportType) map[logicalField][]string {
	if reportType == models.ReportTypeExported {
		return exportedColumns
	}
	return marketplaceColumns
}

// resolveField returns the first non-empty value among the candidate columns
// for a logical field.
func resolveField(row models.RawReportRow, table map[logicalField][]string, field logicalField) string {
	for _, candidate := range table[field] {
		if v := row.Get(candidate); v != "" {
			return v
		}
	}
	return ""
}

// resolveAny returns the first non-empty value among an explicit candidate
// list, used by the fee calculator.
func resolveAny(row models.RawReportRow, candidates []string) string {
	for _, candidate := range candidates {
		if v := row.Get(candidate); v != "" {
			return v
		}
	}
	return ""
}
