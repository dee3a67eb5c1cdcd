package memory

import (
	"context"
	"fmt"
	"sync"

	"findash/internal/sheets"
)

// Writer keeps appended rows in memory. It stands in for the Google sheet
// in tests and when no spreadsheet is configured.
type Writer struct {
	mu   sync.Mutex
	rows []sheets.Row
	err  error
}

var _ sheets.TransactionWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{}
}

// Append stores the row and returns a synthetic row reference.
func (w *Writer) Append(_ context.Context, row sheets.Row) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return "", w.err
	}
	w.rows = append(w.rows, row)
	return fmt.Sprintf("mem:%d", len(w.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (w *Writer) Rows() []sheets.Row {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]sheets.Row(nil), w.rows...)
}

// FailWith makes subsequent appends return err; nil clears it.
func (w *Writer) FailWith(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.err = err
}
