// Package bills manages scheduled bill reminders and their payment.
package bills

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
	GetBill(ctx context.Context, id uuid.UUID) (tracker.ScheduledBill, error)
	ListBills(ctx context.Context) ([]tracker.ScheduledBill, error)
}

// Writer defines the write side for bills.
type Writer interface {
	CreateBill(ctx context.Context, b tracker.ScheduledBill) (tracker.ScheduledBill, error)
	UpdateBill(ctx context.Context, b tracker.ScheduledBill) (tracker.ScheduledBill, error)
	DeleteBill(ctx context.Context, id uuid.UUID) error
}

// TxWriter appends the expense record produced by paying a bill. Payment is
// not subject to a sufficiency check, so the guard is always nil here.
type TxWriter interface {
	CreateTransaction(ctx context.Context, tx tracker.Transaction, guard tracker.Guard) (tracker.Transaction, error)
}

// Notifier requests reminder notifications for an upcoming bill.
type Notifier interface {
	ScheduleBillReminders(ctx context.Context, title string, due time.Time)
}

// AddInput is a proposed bill reminder.
type AddInput struct {
	Amount      money.Amount
	Description string
	DueDate     time.Time
	Repeats     bool
}

// Service exposes bill lifecycle operations.
type Service interface {
	Add(ctx context.Context, in AddInput) (tracker.ScheduledBill, error)
	// Pay records the expense and either advances the due date (repeating
	// bills) or removes the bill. The returned bill is nil when removed.
	Pay(ctx context.Context, id uuid.UUID, wallet string) (tracker.Transaction, *tracker.ScheduledBill, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]tracker.ScheduledBill, error)
}

type service struct {
	repo   Repo
	writer Writer
	txs    TxWriter
	notify Notifier
	// payWallet is the wallet bill payments are drawn from when the caller
	// names none.
	payWallet string
}

// New constructs the service. notify may be nil.
func New(repo Repo, writer Writer, txs TxWriter, notify Notifier, payWallet string) Service {
	if payWallet == "" {
		payWallet = "Bank"
	}
	return &service{repo: repo, writer: writer, txs: txs, notify: notify, payWallet: payWallet}
}

func (s *service) Add(ctx context.Context, in AddInput) (tracker.ScheduledBill, error) {
	if units, _ := in.Amount.MinorUnits(); units <= 0 {
		return tracker.ScheduledBill{}, errs.ErrInvalid
	}
	if in.Description == "" {
		return tracker.ScheduledBill{}, errs.ErrInvalid
	}
	b := tracker.ScheduledBill{
		ID:          uuid.New(),
		Amount:      in.Amount,
		Description: in.Description,
		DueDate:     tracker.Day(in.DueDate),
		Repeats:     in.Repeats,
	}
	created, err := s.writer.CreateBill(ctx, b)
	if err != nil {
		return tracker.ScheduledBill{}, err
	}
	if s.notify != nil {
		s.notify.ScheduleBillReminders(ctx, created.Description, created.DueDate)
	}
	return created, nil
}

func (s *service) Pay(ctx context.Context, id uuid.UUID, wallet string) (tracker.Transaction, *tracker.ScheduledBill, error) {
	bill, err := s.repo.GetBill(ctx, id)
	if err != nil {
		return tracker.Transaction{}, nil, err
	}
	if wallet == "" {
		wallet = s.payWallet
	}
	tx := tracker.Transaction{
		ID:          uuid.New(),
		Kind:        tracker.KindExpense,
		Amount:      bill.Amount,
		Description: bill.Description,
		Category:    tracker.CategoryBill,
		Wallet:      wallet,
		Date:        tracker.Day(time.Now()),
	}
	created, err := s.txs.CreateTransaction(ctx, tx, nil)
	if err != nil {
		return tracker.Transaction{}, nil, err
	}
	if !bill.Repeats {
		if err := s.writer.DeleteBill(ctx, bill.ID); err != nil {
			return created, nil, err
		}
		return created, nil, nil
	}
	next := bill.Advanced()
	updated, err := s.writer.UpdateBill(ctx, next)
	if err != nil {
		return created, nil, err
	}
	if s.notify != nil {
		s.notify.ScheduleBillReminders(ctx, updated.Description, updated.DueDate)
	}
	return created, &updated, nil
}

// Delete removes a bill reminder. Absent ids are a no-op.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errs.ErrInvalid
	}
	return s.writer.DeleteBill(ctx, id)
}

func (s *service) List(ctx context.Context) ([]tracker.ScheduledBill, error) {
	return s.repo.ListBills(ctx)
}
