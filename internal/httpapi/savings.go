package httpapi

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/hasbulkhan45/MoneyManager/internal/service/ledger"
	"github.com/hasbulkhan45/MoneyManager/internal/tracker"
)

func (s *Server) postDeposit(w http.ResponseWriter, r *http.Request) {
	var req postDepositRequest
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
	created, err := s.svc.DepositSavings(r.Context(), ledger.DepositInput{
		Amount:  amt,
		Goal:    req.Goal,
		Vehicle: req.Vehicle,
		Source:  req.Source,
		Date:    date,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	transactionsCreated.WithLabelValues(string(created.Kind)).Inc()
	toJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) postWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req postWithdrawalRequest
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
	created, err := s.svc.WithdrawSavings(r.Context(), ledger.WithdrawInput{
		Amount:   amt,
		Vehicle:  req.Vehicle,
		ToWallet: req.ToWallet,
		Date:     date,
	})
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	transactionsCreated.WithLabelValues(string(created.Kind)).Inc()
	toJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) vehicleBalance(w http.ResponseWriter, r *http.Request) {
	vehicle := chi.URLParam(r, "vehicle")
	balance, err := s.svc.SavingsBalance(r.Context(), vehicle)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	units, _ := balance.MinorUnits()
	toJSON(w, http.StatusOK, balanceResponse{Name: vehicle, BalanceMinor: units})
}

// savingsBreakdown reports the balance and deposit count per registered
// vehicle plus any vehicle that only exists in the records.
func (s *Server) savingsBreakdown(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vehicles, err := s.store.ListSavingsVehicles(ctx)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	records, err := s.svc.List(ctx)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	seen := make(map[string]bool, len(vehicles))
	for _, v := range vehicles {
		seen[v] = true
	}
	for _, t := range records {
		if t.Kind == tracker.KindSaving && !seen[t.Category] {
			seen[t.Category] = true
			vehicles = append(vehicles, t.Category)
		}
	}

	out := make([]savingsVehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		balance, err := s.svc.SavingsBalance(ctx, v)
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		units, _ := balance.MinorUnits()
		deposits := 0
		for _, t := range records {
			if t.Kind == tracker.KindSaving && t.Category == v {
				deposits++
			}
		}
		out = append(out, savingsVehicleResponse{Vehicle: v, BalanceMinor: units, Deposits: deposits})
	}
	toJSON(w, http.StatusOK, out)
}
