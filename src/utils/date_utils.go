// backend/src/utils/date_utils.go
package utils

import (
	"time"

	"github.com/username/sellerledger/backend/src/logger"
)

// Date layouts attempted in order. eBay reports use US-style dates, exports
// from this system use ISO, and some UK reports use day-first.
var orderDateLayouts = []string{
	"01/02/2006", // MM/DD/YYYY
	"2006-01-02", // YYYY-MM-DD
	"02-01-2006", // DD-MM-YYYY
	time.RFC3339,
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseOrderDate parses a report date string, trying each known layout in
// order. It never fails: if nothing matches, the current time is returned so
// a bad date column cannot reject an otherwise valid row.
func ParseOrderDate(dateStr string) time.Time {
	if dateStr == "" {
		return time.Now()
	}
	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t
		}
	}
	if logger.L != nil {
		logger.L.Debug("Unrecognized order date format, defaulting to now", "value", dateStr)
	}
	return time.Now()
}

// EndOfDay returns the last instant of the given date, used for inclusive
// date-range boundaries in replace mode.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
