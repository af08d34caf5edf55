package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/sellerledger/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	m.Run()
}

func TestParseReportCommaDelimited(t *testing.T) {
	input := "Order number, Type ,Gross transaction amount\n12-345,Order,19.99\n12-346,Refund,-5.00\n"

	report, err := ParseReport(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"Order number", "Type", "Gross transaction amount"}, report.Headers)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, "12-345", report.Rows[0].Get("Order number"))
	assert.Equal(t, "Order", report.Rows[0].Get("Type"))
	assert.Equal(t, "-5.00", report.Rows[1].Get("Gross transaction amount"))
}

func TestParseReportDelimiterAutodetect(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"tab", "Order number\tType\n1\tOrder\n"},
		{"pipe", "Order number|Type\n1|Order\n"},
		{"semicolon", "Order number;Type\n1;Order\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := ParseReport(strings.NewReader(tt.input))
			require.NoError(t, err)
			require.Len(t, report.Rows, 1)
			assert.Equal(t, "1", report.Rows[0].Get("Order number"))
			assert.Equal(t, "Order", report.Rows[0].Get("Type"))
		})
	}
}

func TestParseReportFieldCountMismatchIsTolerated(t *testing.T) {
	// Second row is short one field, third has an extra. Neither is fatal.
	input := "A,B,C\n1,2\n4,5,6,7\n"

	report, err := ParseReport(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)

	assert.Equal(t, "1", report.Rows[0].Get("A"))
	assert.Equal(t, "", report.Rows[0].Get("C"))
	assert.Equal(t, "6", report.Rows[1].Get("C"))
}

func TestParseReportCaseInsensitiveLookup(t *testing.T) {
	report, err := ParseReport(strings.NewReader("ORDER NUMBER,type\n1,Order\n"))
	require.NoError(t, err)
	assert.Equal(t, "1", report.Rows[0].Get("Order number"))
}

func TestParseReportStripsBOM(t *testing.T) {
	report, err := ParseReport(strings.NewReader("\xEF\xBB\xBFOrder number,Type\n1,Order\n"))
	require.NoError(t, err)
	assert.Equal(t, "Order number", report.Headers[0])
}

func TestParseReportEmptyFile(t *testing.T) {
	_, err := ParseReport(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = ParseReport(strings.NewReader("   \n"))
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestParseReportRowLineNumbers(t *testing.T) {
	report, err := ParseReport(strings.NewReader("A,B\n1,2\n3,4\n"))
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)
	// Header is line 1.
	assert.Equal(t, 2, report.Rows[0].Line)
	assert.Equal(t, 3, report.Rows[1].Line)
}
