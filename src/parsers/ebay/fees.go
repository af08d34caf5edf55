// backend/src/parsers/ebay/fees.go
package ebay

import (
	"math"

	"github.com/username/sellerledger/backend/src/models"
	"github.com/username/sellerledger/backend/src/utils"
)

// ComputeFee returns the total marketplace fee for one report row under the
// detected dialect. The result is always a non-negative magnitude, even when
// the source columns are already positive.
//
// US reports split the final value fee into fixed and variable components.
// UK reports add a third, the regulatory operating fee. Re-exports and
// unrecognized files fall back to a single generic fee column.
func ComputeFee(row models.RawReportRow, reportType models.ReportType) float64 {
	var total float64
	switch reportType {
	case models.ReportTypeUS:
		total = utils.ParseFloatOrZero(resolveAny(row, usFeeFixedColumns)) +
			utils.ParseFloatOrZero(resolveAny(row, usFeeVariableColumns))
	case models.ReportTypeUK:
		total = utils.ParseFloatOrZero(resolveAny(row, ukFeeFixedColumns)) +
			utils.ParseFloatOrZero(resolveAny(row, ukFeeVariableColumns)) +
			utils.ParseFloatOrZero(resolveAny(row, ukRegulatoryFeeColumns))
	default: // EXPORTED, UNKNOWN
		total = utils.ParseFloatOrZero(resolveAny(row, genericFeeColumns))
	}
	return math.Abs(total)
}
