// backend/src/models/report.go
package models

import "strings"

// ReportType is the detected dialect of an uploaded eBay transaction report.
type ReportType string

const (
	ReportTypeUS       ReportType = "US"
	ReportTypeUK       ReportType = "UK"
	ReportTypeExported ReportType = "EXPORTED"
	ReportTypeUnknown  ReportType = "UNKNOWN"
)

// RawReportRow is a single parsed CSV line: a mapping from the column name
// as it appeared in the file (trimmed) to its string value. It is never
// persisted; it only feeds row classification.
type RawReportRow struct {
	Fields map[string]string
	// Line is the 1-based line number in the source file, header included.
	Line int
}

// Get returns the trimmed value for a column, matching the name
// case-insensitively the way header lookup does.
func (r RawReportRow) Get(column string) string {
	if v, ok := r.Fields[column]; ok {
		return v
	}
	lower := normalizeHeader(column)
	for k, v := range r.Fields {
		if normalizeHeader(k) == lower {
			return v
		}
	}
	return ""
}

// normalizeHeader folds a header name for comparison: trimmed and lowercased.
func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeHeader is the exported form used by the report-type detector and
// the column fallback tables.
func NormalizeHeader(s string) string {
	return normalizeHeader(s)
}

// ParsedReport is the output of the CSV reader: the ordered header set plus
// every data row, before any classification.
type ParsedReport struct {
	Headers []string
	Rows    []RawReportRow
}
