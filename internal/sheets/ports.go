package sheets

import (
	"context"

	"findash/internal/core"
)

// Row is one mirrored transaction as it appears in the sheet.
type Row struct {
	TransactionID int64
	Date          core.Date
	Username      string
	Kind          core.Kind
	Amount        core.Money
	Category      string
	Note          string
}

// RowFor builds the sheet row for a stored transaction.
func RowFor(tx core.Transaction, username string) Row {
	return Row{
		TransactionID: tx.ID,
		Date:          tx.Date,
		Username:      username,
		Kind:          tx.Kind,
		Amount:        tx.Amount,
		Category:      tx.Category,
		Note:          tx.Note,
	}
}

// Values returns the cells in sheet column order.
func (r Row) Values() []any {
	return []any{r.TransactionID, r.Date.String(), r.Username, string(r.Kind), r.Amount.String(), r.Category, r.Note}
}

// Header is the first row written to an empty sheet.
var Header = []any{"id", "date", "user", "type", "amount", "category", "note"}

// Ports for outbound adapters.
type (
	TransactionWriter interface {
		Append(ctx context.Context, row Row) (rowRef string, err error)
	}
)
