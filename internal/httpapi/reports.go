package httpapi

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	chi "github.com/go-chi/chi/v5"
)

func (s *Server) totals(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Totals(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	wu, _ := t.Wallet.MinorUnits()
	su, _ := t.Savings.MinorUnits()
	toJSON(w, http.StatusOK, totalsResponse{Currency: s.curr, WalletMinor: wu, SavingsMinor: su})
}

func (s *Server) walletBalance(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	balance, err := s.svc.WalletBalance(r.Context(), name)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	units, _ := balance.MinorUnits()
	toJSON(w, http.StatusOK, balanceResponse{Name: name, BalanceMinor: units})
}

func (s *Server) expenseReport(w http.ResponseWriter, r *http.Request) {
	breakdown, err := s.svc.ExpenseBreakdown(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]reportEntryResponse, 0, len(breakdown))
	for category, total := range breakdown {
		units, _ := total.MinorUnits()
		out = append(out, reportEntryResponse{Category: category, TotalMinor: units})
	}
	// Largest spend first, name as tie-breaker, so the report is stable.
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalMinor != out[j].TotalMinor {
			return out[i].TotalMinor > out[j].TotalMinor
		}
		return out[i].Category < out[j].Category
	})
	toJSON(w, http.StatusOK, out)
}

// budgetStatus compares each budgeted category's limit against its expense
// total for one calendar month (current month unless ?month= and ?year= are
// given).
func (s *Server) budgetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now()
	month, year := now.Month(), now.Year()
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			badRequest(w, "month must be 1-12")
			return
		}
		month = time.Month(m)
	}
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			badRequest(w, "invalid year")
			return
		}
		year = y
	}

	budgets, err := s.store.Budgets(ctx)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	out := make([]budgetEntryResponse, 0, len(budgets))
	for category, limit := range budgets {
		spent, err := s.svc.MonthSpend(ctx, category, month, year)
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		lu, _ := limit.MinorUnits()
		su, _ := spent.MinorUnits()
		entry := budgetEntryResponse{Category: category, LimitMinor: lu, SpentMinor: su}
		if lu > 0 {
			entry.Percent = float64(su) / float64(lu) * 100
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	toJSON(w, http.StatusOK, out)
}

// putBudget sets the monthly limit for a category. A zero or negative limit
// clears the budget.
func (s *Server) putBudget(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	var req putBudgetRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	limit, err := s.amount(req.LimitMinor)
	if err != nil {
		badRequest(w, "invalid amount")
		return
	}
	if err := s.store.SetBudget(r.Context(), category, limit); err != nil {
		writeDomainErr(w, err)
		return
	}
	toJSON(w, http.StatusOK, budgetEntryResponse{Category: category, LimitMinor: req.LimitMinor})
}
