package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hasbulkhan45/MoneyManager/internal/storage/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func setup(t *testing.T) (*memory.Store, http.Handler) {
	t.Helper()
	store := memory.New()
	h := New(store, nil, testLogger(), "INR", "Bank").Handler()
	return store, h
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode: %v: %s", err, rec.Body.String())
	}
	return v
}

func TestTransactionsEndToEnd(t *testing.T) {
	_, h := setup(t)

	rec := do(t, h, http.MethodPost, "/v1/transactions", map[string]any{
		"kind": "income", "amount_minor": 5000, "wallet": "Cash", "description": "Salary", "category": "Salary",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("income: %d: %s", rec.Code, rec.Body.String())
	}
	income := decodeBody[transactionResponse](t, rec)
	if income.Kind != "income" || income.AmountMinor != 5000 {
		t.Fatalf("unexpected: %+v", income)
	}

	rec = do(t, h, http.MethodPost, "/v1/transactions", map[string]any{
		"kind": "expense", "amount_minor": 1500, "wallet": "Cash", "category": "Food", "date": "2024-01-10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expense: %d: %s", rec.Code, rec.Body.String())
	}
	expense := decodeBody[transactionResponse](t, rec)
	if expense.Date != "2024-01-10" {
		t.Fatalf("date = %q", expense.Date)
	}

	rec = do(t, h, http.MethodGet, "/v1/transactions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d", rec.Code)
	}
	list := decodeBody[[]transactionResponse](t, rec)
	if len(list) != 2 || list[0].ID != expense.ID {
		t.Fatalf("list not newest-first: %+v", list)
	}

	rec = do(t, h, http.MethodGet, "/v1/balances", nil)
	totals := decodeBody[totalsResponse](t, rec)
	if totals.WalletMinor != 3500 || totals.SavingsMinor != 0 || totals.Currency != "INR" {
		t.Fatalf("totals: %+v", totals)
	}

	rec = do(t, h, http.MethodDelete, "/v1/transactions/"+expense.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/v1/balances", nil)
	if totals = decodeBody[totalsResponse](t, rec); totals.WalletMinor != 5000 {
		t.Fatalf("totals after delete: %+v", totals)
	}

	rec = do(t, h, http.MethodDelete, "/v1/transactions/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: %d", rec.Code)
	}
}

func TestInsufficientFundsConfirmFlow(t *testing.T) {
	_, h := setup(t)

	do(t, h, http.MethodPost, "/v1/transactions", map[string]any{
		"kind": "income", "amount_minor": 1000, "wallet": "Cash",
	})

	body := map[string]any{"kind": "expense", "amount_minor": 1500, "wallet": "Cash", "category": "Travel"}
	rec := do(t, h, http.MethodPost, "/v1/transactions", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("shortfall: %d: %s", rec.Code, rec.Body.String())
	}
	short := decodeBody[insufficientFundsResponse](t, rec)
	if short.Code != "insufficient_funds" || !short.Advisory {
		t.Fatalf("unexpected: %+v", short)
	}
	if short.DeficitMinor != 500 || short.BalanceMinor != 1000 || short.Account != "Cash" {
		t.Fatalf("numbers wrong: %+v", short)
	}

	body["confirm"] = true
	rec = do(t, h, http.MethodPost, "/v1/transactions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("confirmed: %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/v1/wallets/Cash/balance", nil)
	bal := decodeBody[balanceResponse](t, rec)
	if bal.BalanceMinor != -500 {
		t.Fatalf("cash = %d, want -500", bal.BalanceMinor)
	}
}

func TestSavingsFlow(t *testing.T) {
	_, h := setup(t)

	rec := do(t, h, http.MethodPost, "/v1/savings/deposits", map[string]any{
		"amount_minor": 200, "vehicle": "FD", "source": "External", "goal": "Vacation",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("deposit: %d: %s", rec.Code, rec.Body.String())
	}
	dep := decodeBody[transactionResponse](t, rec)
	if dep.Kind != "saving" || dep.Deducted {
		t.Fatalf("unexpected: %+v", dep)
	}

	rec = do(t, h, http.MethodPost, "/v1/savings/withdrawals", map[string]any{
		"amount_minor": 50, "vehicle": "FD", "to_wallet": "Bank",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("withdraw: %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/v1/savings", nil)
	breakdown := decodeBody[[]savingsVehicleResponse](t, rec)
	var fd *savingsVehicleResponse
	for i := range breakdown {
		if breakdown[i].Vehicle == "FD" {
			fd = &breakdown[i]
		}
	}
	if fd == nil || fd.BalanceMinor != 150 || fd.Deposits != 1 {
		t.Fatalf("breakdown: %+v", breakdown)
	}

	rec = do(t, h, http.MethodGet, "/v1/savings/FD/balance", nil)
	if bal := decodeBody[balanceResponse](t, rec); bal.BalanceMinor != 150 {
		t.Fatalf("vehicle balance = %d, want 150", bal.BalanceMinor)
	}

	// Hard failure: over-withdrawing the vehicle cannot be confirmed away.
	rec = do(t, h, http.MethodPost, "/v1/savings/withdrawals", map[string]any{
		"amount_minor": 500, "vehicle": "FD", "to_wallet": "Bank",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("over-withdraw: %d", rec.Code)
	}
	short := decodeBody[insufficientFundsResponse](t, rec)
	if short.Advisory {
		t.Fatalf("vehicle shortfall must be hard: %+v", short)
	}

	rec = do(t, h, http.MethodGet, "/v1/balances", nil)
	totals := decodeBody[totalsResponse](t, rec)
	if totals.SavingsMinor != 150 || totals.WalletMinor != 50 {
		t.Fatalf("totals: %+v", totals)
	}
}

func TestBillsFlow(t *testing.T) {
	_, h := setup(t)

	rec := do(t, h, http.MethodPost, "/v1/bills", map[string]any{
		"amount_minor": 2500, "description": "Rent", "due_date": "2024-02-15", "repeats": true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: %d: %s", rec.Code, rec.Body.String())
	}
	bill := decodeBody[billResponse](t, rec)
	if bill.DueDate != "2024-02-15" || !bill.Repeats {
		t.Fatalf("unexpected: %+v", bill)
	}

	rec = do(t, h, http.MethodPost, "/v1/bills/"+bill.ID+"/pay", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pay: %d: %s", rec.Code, rec.Body.String())
	}
	paid := decodeBody[payBillResponse](t, rec)
	if paid.Transaction.Kind != "expense" || paid.Transaction.Category != "Bill" || paid.Transaction.Wallet != "Bank" {
		t.Fatalf("payment record: %+v", paid.Transaction)
	}
	if paid.Bill == nil || paid.Bill.DueDate != "2024-03-15" {
		t.Fatalf("bill not advanced: %+v", paid.Bill)
	}

	// Named wallet overrides the default.
	rec = do(t, h, http.MethodPost, "/v1/bills/"+bill.ID+"/pay", map[string]any{"wallet": "Cash"})
	if rec.Code != http.StatusOK {
		t.Fatalf("pay named: %d", rec.Code)
	}
	paid = decodeBody[payBillResponse](t, rec)
	if paid.Transaction.Wallet != "Cash" {
		t.Fatalf("wallet not honored: %+v", paid.Transaction)
	}

	rec = do(t, h, http.MethodGet, "/v1/bills", nil)
	bills := decodeBody[[]billResponse](t, rec)
	if len(bills) != 1 {
		t.Fatalf("bills: %+v", bills)
	}

	rec = do(t, h, http.MethodDelete, "/v1/bills/"+bill.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/v1/bills", nil)
	if bills = decodeBody[[]billResponse](t, rec); len(bills) != 0 {
		t.Fatalf("bill survived: %+v", bills)
	}
}

func TestRecurringExpenseCreatesBillOverHTTP(t *testing.T) {
	_, h := setup(t)

	do(t, h, http.MethodPost, "/v1/transactions", map[string]any{
		"kind": "income", "amount_minor": 100000, "wallet": "Bank",
	})
	rec := do(t, h, http.MethodPost, "/v1/transactions", map[string]any{
		"kind": "expense", "amount_minor": 2500, "wallet": "Bank",
		"category": "Rent", "description": "Rent", "date": "2024-01-15", "recurring": true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("recurring expense: %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/v1/bills", nil)
	bills := decodeBody[[]billResponse](t, rec)
	if len(bills) != 1 || bills[0].DueDate != "2024-02-15" || !bills[0].Repeats {
		t.Fatalf("bills: %+v", bills)
	}
}

func TestRegistries(t *testing.T) {
	_, h := setup(t)

	rec := do(t, h, http.MethodGet, "/v1/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d", rec.Code)
	}
	before := decodeBody[[]registryResponse](t, rec)

	rec = do(t, h, http.MethodPost, "/v1/categories", map[string]any{"name": "  Weekend   Trips "})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: %d: %s", rec.Code, rec.Body.String())
	}
	if added := decodeBody[registryResponse](t, rec); added.Name != "Weekend Trips" {
		t.Fatalf("normalize: %+v", added)
	}

	rec = do(t, h, http.MethodPost, "/v1/categories", map[string]any{"name": "weekend trips"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate: %d", rec.Code)
	}
	rec = do(t, h, http.MethodPost, "/v1/categories", map[string]any{"name": "Transfer"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("reserved: %d", rec.Code)
	}

	rec = do(t, h, http.MethodDelete, "/v1/categories/Weekend%20Trips", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("remove: %d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/v1/categories", nil)
	after := decodeBody[[]registryResponse](t, rec)
	if len(after) != len(before) {
		t.Fatalf("registry size %d, want %d", len(after), len(before))
	}

	// Wallet listing carries balances.
	do(t, h, http.MethodPost, "/v1/transactions", map[string]any{
		"kind": "income", "amount_minor": 700, "wallet": "Cash",
	})
	rec = do(t, h, http.MethodGet, "/v1/wallets", nil)
	wallets := decodeBody[[]balanceResponse](t, rec)
	found := false
	for _, w := range wallets {
		if w.Name == "Cash" && w.BalanceMinor == 700 {
			found = true
		}
	}
	if !found {
		t.Fatalf("wallets: %+v", wallets)
	}
}

func TestBudgetsAndReports(t *testing.T) {
	_, h := setup(t)

	do(t, h, http.MethodPost, "/v1/transactions", map[string]any{
		"kind": "income", "amount_minor": 100000, "wallet": "Cash",
	})
	do(t, h, http.MethodPost, "/v1/transactions", map[string]any{
		"kind": "expense", "amount_minor": 3000, "wallet": "Cash", "category": "Food", "date": "2024-01-05",
	})
	do(t, h, http.MethodPost, "/v1/transactions", map[string]any{
		"kind": "expense", "amount_minor": 1000, "wallet": "Cash", "category": "Travel", "date": "2024-01-06",
	})

	rec := do(t, h, http.MethodPut, "/v1/budgets/Food", map[string]any{"limit_minor": 6000})
	if rec.Code != http.StatusOK {
		t.Fatalf("put budget: %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/v1/budgets?month=1&year=2024", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("budgets: %d", rec.Code)
	}
	entries := decodeBody[[]budgetEntryResponse](t, rec)
	if len(entries) != 1 {
		t.Fatalf("entries: %+v", entries)
	}
	e := entries[0]
	if e.Category != "Food" || e.LimitMinor != 6000 || e.SpentMinor != 3000 || e.Percent != 50 {
		t.Fatalf("entry: %+v", e)
	}

	rec = do(t, h, http.MethodGet, "/v1/budgets?month=13", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad month: %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/v1/reports/expenses", nil)
	report := decodeBody[[]reportEntryResponse](t, rec)
	if len(report) != 2 || report[0].Category != "Food" || report[0].TotalMinor != 3000 {
		t.Fatalf("report: %+v", report)
	}

	// Zero limit clears the budget.
	rec = do(t, h, http.MethodPut, "/v1/budgets/Food", map[string]any{"limit_minor": 0})
	if rec.Code != http.StatusOK {
		t.Fatalf("clear budget: %d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/v1/budgets", nil)
	if entries = decodeBody[[]budgetEntryResponse](t, rec); len(entries) != 0 {
		t.Fatalf("budget survived clear: %+v", entries)
	}
}

func TestPreferencesEndpoints(t *testing.T) {
	_, h := setup(t)

	rec := do(t, h, http.MethodPut, "/v1/preferences", map[string]any{"theme": "dark"})
	if rec.Code != http.StatusOK {
		t.Fatalf("put: %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodGet, "/v1/preferences", nil)
	prefs := decodeBody[map[string]string](t, rec)
	if prefs["theme"] != "dark" {
		t.Fatalf("prefs: %+v", prefs)
	}
}

func TestOperationalEndpoints(t *testing.T) {
	_, h := setup(t)

	if rec := do(t, h, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/readyz", nil); rec.Code != http.StatusOK {
		t.Fatalf("readyz: %d", rec.Code)
	}
	rec := do(t, h, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rec.Code)
	}
}

func TestUnknownFieldsRejected(t *testing.T) {
	_, h := setup(t)
	rec := do(t, h, http.MethodPost, "/v1/transactions", map[string]any{
		"kind": "income", "amount_minor": 100, "wallet": "Cash", "surprise": true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: %d", rec.Code)
	}
}
