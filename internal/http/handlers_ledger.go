package http

import (
	"bytes"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"findash/internal/csvio"
	"findash/internal/log"
)

func usernameParam(r *http.Request) string {
	return chi.URLParam(r, "username")
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	username := usernameParam(r)
	tx, err := ParseTransaction(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	stored, err := s.ledger.AddTransaction(r.Context(), username, tx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.events.LogTransactionCreated(r.Context(), username, stored.ID, string(stored.Kind), stored.Amount.Cents, stored.Category)
	NewResponse().Status(http.StatusCreated).JSON(toTransactionJSON(stored)).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.RecentTransactions(r.Context(), usernameParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]transactionJSON, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionJSON(tx))
	}
	NewResponse().JSON(out).Write(w)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	amount, err := ParseBudget(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.ledger.SetBudget(r.Context(), usernameParam(r), amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(toBudgetJSON(b)).Write(w)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	user, err := s.ledger.ResolveUser(r.Context(), usernameParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.ledger.Budget(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if b == nil {
		ErrorResponse(http.StatusNotFound, "no budget set").Write(w)
		return
	}
	NewResponse().JSON(toBudgetJSON(*b)).Write(w)
}

// handleImport accepts a multipart upload in field "file" or a raw CSV body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	username := usernameParam(r)
	r.Body = http.MaxBytesReader(w, r.Body, s.maxImportBytes)

	var src io.Reader = r.Body
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, badRequest(err))
			return
		}
		defer file.Close()
		src = file
	}

	n, err := s.ledger.ImportCSV(r.Context(), username, src)
	s.events.LogImport(r.Context(), username, n, err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(map[string]int{"imported": n}).Write(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	username := usernameParam(r)
	var buf bytes.Buffer
	if err := s.ledger.ExportCSV(r.Context(), username, &buf); err != nil {
		s.events.LogError(r.Context(), "CSV export failed", err, log.ComponentLedger, log.OpExport,
			log.NewFields().WithUser(username))
		writeError(w, r, err)
		return
	}
	NewResponse().
		Attachment("text/csv; charset=utf-8", csvio.ExportFilename(username)).
		Body(buf.Bytes()).
		Write(w)
}
