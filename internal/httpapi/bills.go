package httpapi

import (
	"errors"
	"io"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hasbulkhan45/MoneyManager/internal/service/bills"
)

func (s *Server) postBill(w http.ResponseWriter, r *http.Request) {
	var req postBillRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	amt, err := s.amount(req.AmountMinor)
	if err != nil {
		badRequest(w, "invalid amount")
		return
	}
	due, ok := parseDay(req.DueDate)
	if !ok || req.DueDate == "" {
		badRequest(w, "due_date must be YYYY-MM-DD")
		return
	}
	created, err := s.bills.Add(r.Context(), bills.AddInput{
		Amount:      amt,
		Description: req.Description,
		DueDate:     due,
		Repeats:     req.Repeats,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toBillResponse(created))
}

func (s *Server) listBills(w http.ResponseWriter, r *http.Request) {
	list, err := s.bills.List(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]billResponse, 0, len(list))
	for _, b := range list {
		out = append(out, toBillResponse(b))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) payBill(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid bill id")
		return
	}
	// Body is optional; absent means "pay from the default wallet".
	var req payBillRequest
	if err := decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid JSON body")
		return
	}
	tx, bill, err := s.bills.Pay(r.Context(), id, req.Wallet)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	transactionsCreated.WithLabelValues(string(tx.Kind)).Inc()
	resp := payBillResponse{Transaction: toTransactionResponse(tx)}
	if bill != nil {
		b := toBillResponse(*bill)
		resp.Bill = &b
	}
	toJSON(w, http.StatusOK, resp)
}

func (s *Server) deleteBill(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid bill id")
		return
	}
	if err := s.bills.Delete(r.Context(), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
