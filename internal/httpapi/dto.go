package httpapi

import (
	"github.com/hasbulkhan45/MoneyManager/internal/tracker"
)

const dateLayout = "2006-01-02"

type postTransactionRequest struct {
	Kind        string `json:"kind"`
	AmountMinor int64  `json:"amount_minor"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Wallet      string `json:"wallet"`
	ToWallet    string `json:"to_wallet"`
	Date        string `json:"date"`
	Recurring   bool   `json:"recurring"`
	// Confirm overrides an advisory insufficient-funds failure.
	Confirm bool `json:"confirm"`
}

type postDepositRequest struct {
	AmountMinor int64  `json:"amount_minor"`
	Goal        string `json:"goal"`
	Vehicle     string `json:"vehicle"`
	Source      string `json:"source"`
	Date        string `json:"date"`
}

type postWithdrawalRequest struct {
	AmountMinor int64  `json:"amount_minor"`
	Vehicle     string `json:"vehicle"`
	ToWallet    string `json:"to_wallet"`
	Date        string `json:"date"`
}

type transactionResponse struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	AmountMinor int64  `json:"amount_minor"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Wallet      string `json:"wallet"`
	ToWallet    string `json:"to_wallet,omitempty"`
	Deducted    bool   `json:"is_deducted,omitempty"`
	Date        string `json:"date"`
	Recurring   bool   `json:"is_recurring,omitempty"`
}

func toTransactionResponse(t tracker.Transaction) transactionResponse {
	units, _ := t.Amount.MinorUnits()
	return transactionResponse{
		ID:          t.ID.String(),
		Kind:        string(t.Kind),
		AmountMinor: units,
		Description: t.Description,
		Category:    t.Category,
		Wallet:      t.Wallet,
		ToWallet:    t.ToWallet,
		Deducted:    t.Deducted,
		Date:        t.Date.Format(dateLayout),
		Recurring:   t.Recurring,
	}
}

type postBillRequest struct {
	AmountMinor int64  `json:"amount_minor"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Repeats     bool   `json:"repeats"`
}

type payBillRequest struct {
	Wallet string `json:"wallet"`
}

type billResponse struct {
	ID          string `json:"id"`
	AmountMinor int64  `json:"amount_minor"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Repeats     bool   `json:"repeats"`
}

func toBillResponse(b tracker.ScheduledBill) billResponse {
	units, _ := b.Amount.MinorUnits()
	return billResponse{
		ID:          b.ID.String(),
		AmountMinor: units,
		Description: b.Description,
		DueDate:     b.DueDate.Format(dateLayout),
		Repeats:     b.Repeats,
	}
}

type payBillResponse struct {
	Transaction transactionResponse `json:"transaction"`
	// Bill is the advanced reminder for repeating bills, absent otherwise.
	Bill *billResponse `json:"bill,omitempty"`
}

type totalsResponse struct {
	Currency     string `json:"currency"`
	WalletMinor  int64  `json:"wallet_minor"`
	SavingsMinor int64  `json:"savings_minor"`
}

type balanceResponse struct {
	Name         string `json:"name"`
	BalanceMinor int64  `json:"balance_minor"`
}

type savingsVehicleResponse struct {
	Vehicle      string `json:"vehicle"`
	BalanceMinor int64  `json:"balance_minor"`
	Deposits     int    `json:"deposits"`
}

type budgetEntryResponse struct {
	Category   string  `json:"category"`
	LimitMinor int64   `json:"limit_minor"`
	SpentMinor int64   `json:"spent_minor"`
	Percent    float64 `json:"percent"`
}

type putBudgetRequest struct {
	LimitMinor int64 `json:"limit_minor"`
}

type reportEntryResponse struct {
	Category   string `json:"category"`
	TotalMinor int64  `json:"total_minor"`
}

type registryRequest struct {
	Name string `json:"name"`
}

type registryResponse struct {
	Name string `json:"name"`
}
