package pipeline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/finwise/internal/domain"
)

// Required CSV columns, matched case-insensitively.
const (
	columnDate        = "date"
	columnAmount      = "amount"
	columnType        = "type"
	columnDescription = "description"
)

// Accepted date layouts, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Row is one validated CSV line ready for classification.
type Row struct {
	// Line is the 1-based record number; the header is row 1.
	Line        int
	Date        time.Time
	Amount      float64
	Type        domain.TransactionType
	Description string
}

// RowError describes a rejected CSV record.
type RowError struct {
	Line    int
	Message string
}

func (e RowError) Error() string {
	return fmt.Sprintf("Row %d: %s", e.Line, e.Message)
}

// ParseCSV reads a date,amount,type,description file. Invalid records are
// reported as RowErrors and skipped; only an unreadable file is an error.
func ParseCSV(data []byte) ([]Row, []RowError, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []Row{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	rows := []Row{}
	var rowErrs []RowError

	for line := 2; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			rowErrs = append(rowErrs, RowError{Line: line, Message: parseErr.Err.Error()})
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading CSV row %d: %w", line, err)
		}

		row, rowErr := parseRecord(line, record, columns)
		if rowErr != nil {
			rowErrs = append(rowErrs, *rowErr)
			continue
		}
		rows = append(rows, row)
	}

	return rows, rowErrs, nil
}

func parseRecord(line int, record []string, columns map[string]int) (Row, *RowError) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	dateStr := field(columnDate)
	amountStr := field(columnAmount)
	description := field(columnDescription)
	txType, typeOK := domain.ParseTransactionType(field(columnType))

	if dateStr == "" || amountStr == "" || !typeOK || description == "" {
		return Row{}, &RowError{Line: line, Message: "Invalid or missing data"}
	}

	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return Row{}, &RowError{Line: line, Message: fmt.Sprintf("Invalid amount %q", amountStr)}
	}

	date, ok := ParseDate(dateStr)
	if !ok {
		return Row{}, &RowError{Line: line, Message: "Invalid date format"}
	}

	return Row{
		Line:        line,
		Date:        date,
		Amount:      amount,
		Type:        txType,
		Description: description,
	}, nil
}

// ParseDate accepts ISO-8601 timestamps and plain dates. Values without a
// zone are read as UTC.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
