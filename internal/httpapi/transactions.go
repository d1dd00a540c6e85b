package httpapi

import (
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/hasbulkhan45/MoneyManager/internal/service/ledger"
	"github.com/hasbulkhan45/MoneyManager/internal/tracker"
)

// amount converts minor units from the wire into the tracker currency.
func (s *Server) amount(minor int64) (money.Amount, error) {
	return money.NewAmountFromMinorUnits(s.curr, minor)
}

// parseDay accepts an empty string (meaning "today") or a YYYY-MM-DD date.
func parseDay(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (s *Server) postTransaction(w http.ResponseWriter, r *http.Request) {
	var req postTransactionRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	amt, err := s.amount(req.AmountMinor)
	if err != nil {
		badRequest(w, "invalid amount")
		return
	}
	date, ok := parseDay(req.Date)
	if !ok {
		badRequest(w, "date must be YYYY-MM-DD")
		return
	}
	created, err := s.svc.Record(r.Context(), ledger.RecordInput{
		Kind:        tracker.Kind(req.Kind),
		Amount:      amt,
		Description: req.Description,
		Category:    req.Category,
		Wallet:      req.Wallet,
		ToWallet:    req.ToWallet,
		Date:        date,
		Recurring:   req.Recurring,
		Override:    req.Confirm,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	transactionsCreated.WithLabelValues(string(created.Kind)).Inc()
	toJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	records, err := s.svc.List(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]transactionResponse, 0, len(records))
	for _, t := range records {
		out = append(out, toTransactionResponse(t))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid transaction id")
		return
	}
	if err := s.svc.Delete(r.Context(), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
