// backend/src/parsers/detector.go
package parsers

import (
	"github.com/username/sellerledger/backend/src/models"
)

// Columns whose presence identifies a report dialect. Comparison is on
// trimmed, case-folded header names.
const (
	hdrOrderNumber        = "order number"
	hdrSourcingCost       = "sourcing cost"
	hdrShippingCost       = "shipping cost"
	hdrGrossProfit        = "gross profit"
	hdrRegulatoryFee      = "regulatory operating fee"
	hdrFinalValueVarUS    = "final value fee - variable" // hyphen
	hdrFinalValueVarUKAlt = "final value fee – variable" // en-dash, alternate UK export encoding
)

// DetectReportType classifies an uploaded file from its header set alone.
// It runs exactly once per upload, before row classification, because the
// result selects both the fee formula and the column-name tables.
//
// Priority order matters: a file previously exported by this system carries
// our own canonical columns and must win over the marketplace dialects.
func DetectReportType(headers []string) models.ReportType {
	set := make(map[string]bool, len(headers))
	for _, h := range headers {
		set[models.NormalizeHeader(h)] = true
	}

	if set[hdrOrderNumber] && set[hdrSourcingCost] && set[hdrShippingCost] && set[hdrGrossProfit] {
		return models.ReportTypeExported
	}
	if set[hdrRegulatoryFee] {
		return models.ReportTypeUK
	}
	if set[hdrFinalValueVarUS] {
		return models.ReportTypeUS
	}
	if set[hdrFinalValueVarUKAlt] {
		return models.ReportTypeUK
	}
	return models.ReportTypeUnknown
}
