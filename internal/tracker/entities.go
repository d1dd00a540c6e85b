package tracker

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/hasbulkhan45/MoneyManager/internal/prefs"
)

// Kind determines how a transaction affects wallet and savings balances.
type Kind string

const (
	// KindIncome adds to the source wallet.
	KindIncome Kind = "income"
	// KindExpense subtracts from the source wallet.
	KindExpense Kind = "expense"
	// KindTransfer moves money between two wallets; global totals are unchanged.
	KindTransfer Kind = "transfer"
	// KindSaving deposits into a savings vehicle, optionally deducting a wallet.
	KindSaving Kind = "saving"
	// KindWithdrawSaving moves money out of a savings vehicle into a wallet.
	KindWithdrawSaving Kind = "withdraw_saving"
)

// Valid reports whether k is one of the closed set of transaction kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindIncome, KindExpense, KindTransfer, KindSaving, KindWithdrawSaving:
		return true
	}
	return false
}

// Reserved labels. These are fixed vocabulary the engine assigns itself;
// user registries hold everything else.
const (
	// CategoryTransfer is forced onto every transfer record.
	CategoryTransfer = "Transfer"
	// CategoryBill is the category of expense records created by paying a bill.
	CategoryBill = "Bill"
	// CategoryUncategorized is the default when no category is chosen.
	CategoryUncategorized = "Uncategorized"
	// SourceExternal marks savings deposits funded outside any tracked wallet.
	// It can never match a real wallet name, so non-deducted deposits are
	// invisible to per-wallet balances.
	SourceExternal = "External"
	// SourceSavings marks the source side of a savings withdrawal.
	SourceSavings = "Savings"
)

// Transaction is a single immutable ledger record. Records are never mutated
// after creation; every change is a new record or a removal.
type Transaction struct {
	ID          uuid.UUID
	Kind        Kind
	Amount      money.Amount
	Description string
	// Category is a free-form tag. For saving/withdraw_saving records it
	// doubles as the savings-vehicle key.
	Category string
	// Wallet is the account the money leaves or enters, depending on Kind.
	Wallet string
	// ToWallet is the destination for transfers and savings withdrawals.
	ToWallet string
	// Deducted applies to saving records only: true when the deposit was
	// funded from a tracked wallet and must also subtract from it.
	Deducted bool
	// Date has day precision, normalized to UTC midnight.
	Date time.Time
	// Recurring applies to expense records only: creation also enqueued a
	// repeating scheduled bill.
	Recurring bool
}

// ScheduledBill is a reminder for an upcoming payment. Unlike transactions it
// is mutated in place, but only to advance DueDate on a repeat-and-pay.
type ScheduledBill struct {
	ID          uuid.UUID
	Amount      money.Amount
	Description string
	DueDate     time.Time
	// Repeats bills advance DueDate by one calendar month when paid instead
	// of being removed.
	Repeats bool
}

// Advanced returns a copy of the bill due one calendar month later.
// Month-end overflow follows time.AddDate (Jan 31 -> Mar 2/3).
func (b ScheduledBill) Advanced() ScheduledBill {
	b.DueDate = b.DueDate.AddDate(0, 1, 0)
	return b
}

// Totals are the two global figures shown on the home and savings screens.
// Transfers are invisible to both by design.
type Totals struct {
	Wallet  money.Amount
	Savings money.Amount
}

// Guard is a check run over the current record collection inside the store's
// write lock, immediately before an append. It makes check-then-append one
// atomic step so concurrent writers cannot race a balance check.
type Guard func(records []Transaction) error

// Snapshot is the full persisted application state. Balances are never part
// of it; they are always recomputed from Transactions.
type Snapshot struct {
	Transactions    []Transaction
	Bills           []ScheduledBill
	Categories      []string
	Wallets         []string
	SavingsVehicles []string
	// Budgets maps a category to its monthly spending limit.
	Budgets     map[string]money.Amount
	Preferences prefs.Preferences
}

// Day normalizes t to UTC midnight. All transaction and bill dates carry day
// precision.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameMonth reports whether t falls in the given calendar month.
func SameMonth(t time.Time, month time.Month, year int) bool {
	return t.Month() == month && t.Year() == year
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) money.Amount {
	a, _ := money.NewAmountFromMinorUnits(currency, 0)
	return a
}
