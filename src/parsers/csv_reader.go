// backend/src/parsers/csv_reader.go
package parsers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/username/sellerledger/backend/src/logger"
	"github.com/username/sellerledger/backend/src/models"
	"github.com/username/sellerledger/backend/src/utils"
)

// ErrEmptyFile is returned when the upload contains no header row at all.
var ErrEmptyFile = errors.New("report file is empty")

var candidateDelimiters = []rune{',', '\t', '|', ';'}

// detectDelimiter picks the delimiter that occurs most often in the header
// line. Comma wins ties, matching how eBay exports are overwhelmingly shaped.
func detectDelimiter(headerLine string) rune {
	best := ','
	bestCount := strings.Count(headerLine, ",")
	for _, d := range candidateDelimiters[1:] {
		if c := strings.Count(headerLine, string(d)); c > bestCount {
			best = d
			bestCount = c
		}
	}
	return best
}

// ParseReport turns raw delimited text into the ordered header list plus one
// field map per data row. The delimiter is auto-detected from the header line
// and header names are trimmed. Rows whose field count does not match the
// header are mapped positionally up to the shorter of the two; that is logged
// as a warning, never treated as a structural failure.
func ParseReport(r io.Reader) (*models.ParsedReport, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}
	// Strip a UTF-8 BOM so the first header matches by name.
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	firstLine := string(data)
	if idx := strings.IndexAny(firstLine, "\r\n"); idx >= 0 {
		firstLine = firstLine[:idx]
	}
	if strings.TrimSpace(firstLine) == "" {
		return nil, ErrEmptyFile
	}
	delimiter := detectDelimiter(firstLine)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1 // field-count mismatches are tolerated
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("failed to read report header: %w", err)
	}

	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}

	report := &models.ParsedReport{Headers: headers}
	line := 1 // header is line 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Anything the csv reader still rejects with LazyQuotes and free
			// field counts is structural and aborts the upload.
			return nil, fmt.Errorf("structural error reading report at line %d: %w", line+1, err)
		}
		line++

		if len(record) != len(headers) {
			logger.L.Warn("Report row field count does not match header",
				"line", line, "fields", len(record), "headers", len(headers))
		}

		fields := make(map[string]string, len(headers))
		n := utils.MinInt(len(record), len(headers))
		for i := 0; i < n; i++ {
			fields[headers[i]] = strings.TrimSpace(record[i])
		}
		report.Rows = append(report.Rows, models.RawReportRow{Fields: fields, Line: line})
	}

	return report, nil
}
