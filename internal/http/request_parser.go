// This file parses request payloads. JSON bodies and HTML form posts are
// both accepted for write endpoints.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"findash/internal/core"
)

const maxJSONBytes = 64 << 10

// errBadRequest marks payloads that could not be read at all.
var errBadRequest = errors.New("bad request")

// transactionRequest is the payload for a new ledger entry.
type transactionRequest struct {
	Kind     string      `json:"kind"`
	Type     string      `json:"type"`
	Amount   json.Number `json:"amount"`
	Category string      `json:"category"`
	Note     string      `json:"note"`
	Date     string      `json:"date"`
}

type budgetRequest struct {
	MonthlyBudget json.Number `json:"monthly_budget"`
}

func isJSON(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/json"
}

// decodeJSON decodes a size-capped JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return badRequest(err)
	}
	return nil
}

// ParseTransaction reads a transaction from JSON or form values. Amounts
// must be strictly positive; the date is optional.
func ParseTransaction(w http.ResponseWriter, r *http.Request) (core.Transaction, error) {
	var req transactionRequest
	if isJSON(r) {
		if err := decodeJSON(w, r, &req); err != nil {
			return core.Transaction{}, err
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
		if err := r.ParseForm(); err != nil {
			return core.Transaction{}, badRequest(err)
		}
		req = transactionRequest{
			Kind:     r.PostForm.Get("kind"),
			Type:     r.PostForm.Get("type"),
			Amount:   json.Number(r.PostForm.Get("amount")),
			Category: r.PostForm.Get("category"),
			Note:     r.PostForm.Get("note"),
			Date:     r.PostForm.Get("date"),
		}
	}
	return req.toTransaction()
}

func (req transactionRequest) toTransaction() (core.Transaction, error) {
	kindText := req.Kind
	if strings.TrimSpace(kindText) == "" {
		kindText = req.Type
	}
	kind, err := core.ParseKind(kindText)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParsePositiveAmount(req.Amount.String())
	if err != nil {
		return core.Transaction{}, err
	}

	tx := core.Transaction{
		Kind:     kind,
		Amount:   amount,
		Category: sanitizeInput(req.Category),
		Note:     sanitizeInput(req.Note),
	}
	if d := strings.TrimSpace(req.Date); d != "" {
		if tx.Date, err = core.ParseDate(d); err != nil {
			return core.Transaction{}, err
		}
	}
	return tx, nil
}

// ParseBudget reads the monthly budget amount; zero is allowed.
func ParseBudget(w http.ResponseWriter, r *http.Request) (core.Money, error) {
	var raw string
	if isJSON(r) {
		var req budgetRequest
		if err := decodeJSON(w, r, &req); err != nil {
			return core.Money{}, err
		}
		raw = req.MonthlyBudget.String()
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
		if err := r.ParseForm(); err != nil {
			return core.Money{}, badRequest(err)
		}
		raw = r.PostForm.Get("monthly_budget")
	}
	return core.ParseAmount(raw)
}

// badRequest wraps err so it maps to 400, or 413 when the body was too big.
func badRequest(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

// sanitizeInput removes control characters except tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}
