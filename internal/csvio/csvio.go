// Package csvio reads and writes ledgers as CSV files.
//
// Import files need a header row naming at least type, amount, category and
// date (any order, any case); note is optional. Import is all or nothing: the
// first bad row aborts with a *RowError.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"findash/internal/core"
)

var (
	ErrMissingHeader = errors.New("missing header row")
	ErrMissingColumn = errors.New("missing required column")
	ErrNoRows        = errors.New("no data rows")
)

// RowError reports the 1-based line of the file that failed to parse.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

var requiredColumns = []string{"type", "amount", "category", "date"}

// ExportHeader is the column order written by Write.
var ExportHeader = []string{"id", "date", "type", "amount", "category", "note", "created_at"}

// Parse reads transactions from r. UserID is left for the caller to set.
func Parse(r io.Reader) ([]core.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrMissingHeader
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		cols[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	noteCol, hasNote := cols["note"]

	field := func(record []string, idx int) string {
		if idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	var out []core.Transaction
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &RowError{Row: perr.Line, Err: err}
			}
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := reader.FieldPos(0)

		tx, err := parseRecord(record, cols, field)
		if err != nil {
			return nil, &RowError{Row: line, Err: err}
		}
		if hasNote {
			tx.Note = field(record, noteCol)
		}
		if err := tx.Validate(); err != nil {
			return nil, &RowError{Row: line, Err: err}
		}
		out = append(out, tx)
	}

	if len(out) == 0 {
		return nil, ErrNoRows
	}
	return out, nil
}

func parseRecord(record []string, cols map[string]int, field func([]string, int) string) (core.Transaction, error) {
	kind, err := core.ParseKind(field(record, cols["type"]))
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(field(record, cols["amount"]))
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(field(record, cols["date"]))
	if err != nil {
		return core.Transaction{}, err
	}
	category := field(record, cols["category"])
	if category == "" {
		category = core.FallbackCategory
	}
	return core.Transaction{Kind: kind, Amount: amount, Category: category, Date: date}, nil
}

// Write exports txs with ExportHeader columns.
func Write(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, tx := range txs {
		record := []string{
			strconv.FormatInt(tx.ID, 10),
			tx.Date.String(),
			tx.Kind.String(),
			tx.Amount.String(),
			tx.Category,
			tx.Note,
			tx.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", tx.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename is the download name for a user's export.
func ExportFilename(username string) string {
	return "transactions_" + username + ".csv"
}
