// Package ledger implements transaction authoring and the balance engine.
// Every aggregate is a pure, order-independent fold over the full record
// collection; nothing here holds state of its own.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"

	"github.com/hasbulkhan45/MoneyManager/internal/errs"
	"github.com/hasbulkhan45/MoneyManager/internal/tracker"
)

// Repo defines the read side needed by the service.
type Repo interface {
	ListTransactions(ctx context.Context) ([]tracker.Transaction, error)
}

// Writer defines the write side. CreateTransaction must run the guard and
// the insert as one atomic step.
type Writer interface {
	CreateTransaction(ctx context.Context, tx tracker.Transaction, guard tracker.Guard) (tracker.Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
}

// BillWriter lets a recurring expense enqueue its scheduled bill.
type BillWriter interface {
	CreateBill(ctx context.Context, b tracker.ScheduledBill) (tracker.ScheduledBill, error)
}

// Notifier requests reminder notifications for an upcoming bill. Scheduling
// is fire-and-forget; it never fails the authoring operation.
type Notifier interface {
	ScheduleBillReminders(ctx context.Context, title string, due time.Time)
}

// RecordInput is a proposed wallet transaction (income, expense or transfer).
type RecordInput struct {
	Kind        tracker.Kind
	Amount      money.Amount
	Description string
	Category    string
	Wallet      string
	ToWallet    string
	Date        time.Time
	Recurring   bool
	// Override proceeds past an advisory insufficient-funds check. It has no
	// effect on income, which is never checked.
	Override bool
}

// DepositInput is a proposed savings deposit.
type DepositInput struct {
	Amount  money.Amount
	Goal    string
	Vehicle string
	// Source is either a wallet name or the External sentinel.
	Source string
	Date   time.Time
}

// WithdrawInput is a proposed savings withdrawal.
type WithdrawInput struct {
	Amount   money.Amount
	Vehicle  string
	ToWallet string
	Date     time.Time
}

// Service exposes authoring and the balance aggregates.
type Service interface {
	Record(ctx context.Context, in RecordInput) (tracker.Transaction, error)
	DepositSavings(ctx context.Context, in DepositInput) (tracker.Transaction, error)
	WithdrawSavings(ctx context.Context, in WithdrawInput) (tracker.Transaction, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]tracker.Transaction, error)

	Totals(ctx context.Context) (tracker.Totals, error)
	WalletBalance(ctx context.Context, wallet string) (money.Amount, error)
	SavingsBalance(ctx context.Context, vehicle string) (money.Amount, error)
	MonthSpend(ctx context.Context, category string, month time.Month, year int) (money.Amount, error)
	ExpenseBreakdown(ctx context.Context) (map[string]money.Amount, error)
}

type service struct {
	repo   Repo
	writer Writer
	bills  BillWriter
	notify Notifier
	curr   string
}

// New constructs the service. notify may be nil when no reminder scheduling
// is wired (tests, one-shot tools).
func New(repo Repo, writer Writer, bills BillWriter, notify Notifier, currency string) Service {
	return &service{repo: repo, writer: writer, bills: bills, notify: notify, curr: currency}
}

// Record validates and appends an income, expense or transfer record.
// Expense and transfer run an advisory sufficiency check against the source
// wallet: on shortfall the caller gets the deficit back and may retry with
// Override set, in which case the wallet is allowed to go negative.
func (s *service) Record(ctx context.Context, in RecordInput) (tracker.Transaction, error) {
	switch in.Kind {
	case tracker.KindIncome, tracker.KindExpense, tracker.KindTransfer:
	default:
		return tracker.Transaction{}, errs.ErrInvalid
	}
	if units, _ := in.Amount.MinorUnits(); units <= 0 {
		return tracker.Transaction{}, errs.ErrInvalid
	}
	if in.Wallet == "" {
		return tracker.Transaction{}, errs.ErrInvalid
	}
	if in.Kind == tracker.KindTransfer && in.ToWallet == "" {
		return tracker.Transaction{}, errs.ErrInvalid
	}

	category := in.Category
	description := in.Description
	if in.Kind == tracker.KindTransfer {
		category = tracker.CategoryTransfer
		if description == "" {
			description = "Transfer"
		}
	} else {
		if category == "" {
			category = tracker.CategoryUncategorized
		}
		if description == "" {
			description = "No Desc"
		}
	}

	tx := tracker.Transaction{
		ID:          uuid.New(),
		Kind:        in.Kind,
		Amount:      in.Amount,
		Description: description,
		Category:    category,
		Wallet:      in.Wallet,
		Date:        tracker.Day(orNow(in.Date)),
		Recurring:   in.Kind == tracker.KindExpense && in.Recurring,
	}
	if in.Kind == tracker.KindTransfer {
		tx.ToWallet = in.ToWallet
	}

	var guard tracker.Guard
	if (in.Kind == tracker.KindExpense || in.Kind == tracker.KindTransfer) && !in.Override {
		guard = s.sufficientWallet(in.Wallet, in.Amount, true)
	}
	created, err := s.writer.CreateTransaction(ctx, tx, guard)
	if err != nil {
		return tracker.Transaction{}, err
	}

	if created.Recurring && s.bills != nil {
		bill := tracker.ScheduledBill{
			ID:          uuid.New(),
			Amount:      created.Amount,
			Description: created.Description,
			DueDate:     created.Date.AddDate(0, 1, 0),
			Repeats:     true,
		}
		if _, err := s.bills.CreateBill(ctx, bill); err != nil {
			return tracker.Transaction{}, err
		}
		if s.notify != nil {
			s.notify.ScheduleBillReminders(ctx, bill.Description, bill.DueDate)
		}
	}
	return created, nil
}

// DepositSavings appends a saving record. Wallet-funded deposits hard-fail
// on shortfall; the External sentinel is never checked and never deducted.
func (s *service) DepositSavings(ctx context.Context, in DepositInput) (tracker.Transaction, error) {
	if units, _ := in.Amount.MinorUnits(); units <= 0 {
		return tracker.Transaction{}, errs.ErrInvalid
	}
	if in.Vehicle == "" || in.Source == "" {
		return tracker.Transaction{}, errs.ErrInvalid
	}
	external := in.Source == tracker.SourceExternal

	description := in.Goal
	if description == "" {
		description = "Savings Deposit"
	}
	tx := tracker.Transaction{
		ID:          uuid.New(),
		Kind:        tracker.KindSaving,
		Amount:      in.Amount,
		Description: description,
		Category:    in.Vehicle,
		Wallet:      in.Source,
		Deducted:    !external,
		Date:        tracker.Day(orNow(in.Date)),
	}
	if external {
		tx.Wallet = tracker.SourceExternal
	}

	var guard tracker.Guard
	if !external {
		guard = s.sufficientWallet(in.Source, in.Amount, false)
	}
	return s.writer.CreateTransaction(ctx, tx, guard)
}

// WithdrawSavings appends a withdraw_saving record moving money from a
// vehicle into a wallet. The vehicle balance check is hard.
func (s *service) WithdrawSavings(ctx context.Context, in WithdrawInput) (tracker.Transaction, error) {
	if units, _ := in.Amount.MinorUnits(); units <= 0 {
		return tracker.Transaction{}, errs.ErrInvalid
	}
	if in.Vehicle == "" || in.ToWallet == "" {
		return tracker.Transaction{}, errs.ErrInvalid
	}
	tx := tracker.Transaction{
		ID:          uuid.New(),
		Kind:        tracker.KindWithdrawSaving,
		Amount:      in.Amount,
		Description: "Withdrawal from " + in.Vehicle,
		Category:    in.Vehicle,
		Wallet:      tracker.SourceSavings,
		ToWallet:    in.ToWallet,
		Date:        tracker.Day(orNow(in.Date)),
	}
	guard := func(records []tracker.Transaction) error {
		balance := s.savingsBalance(records, in.Vehicle)
		return s.checkSufficient(in.Vehicle, in.Amount, balance, false)
	}
	return s.writer.CreateTransaction(ctx, tx, guard)
}

// Delete removes a record. Absent ids are a no-op.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errs.ErrInvalid
	}
	return s.writer.DeleteTransaction(ctx, id)
}

func (s *service) List(ctx context.Context) ([]tracker.Transaction, error) {
	return s.repo.ListTransactions(ctx)
}

// --- Aggregates ---

// Totals folds the whole collection into the global wallet and savings
// figures. Transfers contribute to neither.
func (s *service) Totals(ctx context.Context) (tracker.Totals, error) {
	records, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return tracker.Totals{}, err
	}
	return s.totals(records), nil
}

func (s *service) totals(records []tracker.Transaction) tracker.Totals {
	wallet := tracker.Zero(s.curr)
	savings := tracker.Zero(s.curr)
	for _, t := range records {
		switch t.Kind {
		case tracker.KindIncome:
			wallet = add(wallet, t.Amount)
		case tracker.KindExpense:
			wallet = sub(wallet, t.Amount)
		case tracker.KindSaving:
			savings = add(savings, t.Amount)
			if t.Deducted {
				wallet = sub(wallet, t.Amount)
			}
		case tracker.KindWithdrawSaving:
			savings = sub(savings, t.Amount)
			wallet = add(wallet, t.Amount)
		}
	}
	return tracker.Totals{Wallet: wallet, Savings: savings}
}

// WalletBalance scans every record and accumulates the ones touching the
// named wallet, on either the source or the destination side.
func (s *service) WalletBalance(ctx context.Context, wallet string) (money.Amount, error) {
	records, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return tracker.Zero(s.curr), err
	}
	return s.walletBalance(records, wallet), nil
}

func (s *service) walletBalance(records []tracker.Transaction, wallet string) money.Amount {
	total := tracker.Zero(s.curr)
	for _, t := range records {
		if t.Wallet == wallet {
			switch t.Kind {
			case tracker.KindIncome:
				total = add(total, t.Amount)
			case tracker.KindExpense, tracker.KindTransfer:
				total = sub(total, t.Amount)
			case tracker.KindSaving:
				if t.Deducted {
					total = sub(total, t.Amount)
				}
			}
		}
		if t.ToWallet == wallet && (t.Kind == tracker.KindTransfer || t.Kind == tracker.KindWithdrawSaving) {
			total = add(total, t.Amount)
		}
	}
	return total
}

// SavingsBalance sums deposits minus withdrawals for one vehicle. Vehicle
// identity is purely the category string.
func (s *service) SavingsBalance(ctx context.Context, vehicle string) (money.Amount, error) {
	records, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return tracker.Zero(s.curr), err
	}
	return s.savingsBalance(records, vehicle), nil
}

func (s *service) savingsBalance(records []tracker.Transaction, vehicle string) money.Amount {
	total := tracker.Zero(s.curr)
	for _, t := range records {
		if t.Category != vehicle {
			continue
		}
		switch t.Kind {
		case tracker.KindSaving:
			total = add(total, t.Amount)
		case tracker.KindWithdrawSaving:
			total = sub(total, t.Amount)
		}
	}
	return total
}

// MonthSpend sums expense records for one category in one calendar month.
func (s *service) MonthSpend(ctx context.Context, category string, month time.Month, year int) (money.Amount, error) {
	records, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return tracker.Zero(s.curr), err
	}
	total := tracker.Zero(s.curr)
	for _, t := range records {
		if t.Kind == tracker.KindExpense && t.Category == category && tracker.SameMonth(t.Date, month, year) {
			total = add(total, t.Amount)
		}
	}
	return total, nil
}

// ExpenseBreakdown totals expenses per category across all time, for the
// report view.
func (s *service) ExpenseBreakdown(ctx context.Context) (map[string]money.Amount, error) {
	records, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]money.Amount)
	for _, t := range records {
		if t.Kind != tracker.KindExpense {
			continue
		}
		cur, ok := out[t.Category]
		if !ok {
			cur = tracker.Zero(s.curr)
		}
		out[t.Category] = add(cur, t.Amount)
	}
	return out, nil
}

// --- Guards ---

// sufficientWallet builds a guard that re-derives the wallet balance from
// the records visible inside the store's write lock, so check and append
// cannot interleave with another writer.
func (s *service) sufficientWallet(wallet string, requested money.Amount, advisory bool) tracker.Guard {
	return func(records []tracker.Transaction) error {
		balance := s.walletBalance(records, wallet)
		return s.checkSufficient(wallet, requested, balance, advisory)
	}
}

func (s *service) checkSufficient(account string, requested, balance money.Amount, advisory bool) error {
	ru, _ := requested.MinorUnits()
	bu, _ := balance.MinorUnits()
	if ru <= bu {
		return nil
	}
	return &errs.InsufficientFunds{
		Account:   account,
		Requested: requested,
		Balance:   balance,
		Deficit:   sub(requested, balance),
		Advisory:  advisory,
	}
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

// add and sub ignore the error path: every amount in one store shares the
// tracker currency, so mismatches cannot occur.
func add(a, b money.Amount) money.Amount {
	if v, err := a.Add(b); err == nil {
		return v
	}
	return a
}

func sub(a, b money.Amount) money.Amount {
	if v, err := a.Sub(b); err == nil {
		return v
	}
	return a
}
