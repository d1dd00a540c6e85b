// Package notify plans and dispatches local reminder notifications for
// scheduled bills plus a fixed daily tracking digest. Planning is pure;
// dispatch owns timers and delivers through a pluggable sink.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Reminder is one planned notification.
type Reminder struct {
	Title string
	Body  string
	At    time.Time
}

// Bill reminders fire at fixed day offsets before the due date, each at
// 09:30 local time.
var billOffsets = []int{3, 1, 0}

const (
	billHour   = 9
	billMinute = 30
)

// digestSlot is one of the fixed daily nudges.
type digestSlot struct {
	hour int
	body string
}

var digestSlots = []digestSlot{
	{9, "Good morning! Don't forget to track your expenses today."},
	{14, "It's lunch time! Did you spend any money?"},
	{20, "Evening review! Update your wallet before bed."},
}

// BillReminders plans the reminders for one bill: {3,1,0} days before due at
// 09:30, skipping any reminder whose fire time has already passed. Due dates
// are day-precision, so the wall-clock zone comes from now, like NextDigest.
func BillReminders(title string, due, now time.Time) []Reminder {
	out := make([]Reminder, 0, len(billOffsets))
	for _, days := range billOffsets {
		d := due.AddDate(0, 0, -days)
		at := time.Date(d.Year(), d.Month(), d.Day(), billHour, billMinute, 0, 0, now.Location())
		if !at.After(now) {
			continue
		}
		r := Reminder{At: at}
		if days == 0 {
			r.Title = "Bill due today"
			r.Body = fmt.Sprintf("Pay your %s now!", title)
		} else {
			r.Title = "Bill upcoming"
			r.Body = fmt.Sprintf("%s is due in %d days.", title, days)
		}
		out = append(out, r)
	}
	return out
}

// NextDigest plans the next daily digest strictly after now.
func NextDigest(now time.Time) Reminder {
	for _, slot := range digestSlots {
		at := time.Date(now.Year(), now.Month(), now.Day(), slot.hour, 0, 0, 0, now.Location())
		if at.After(now) {
			return Reminder{Title: "Money Manager", Body: slot.body, At: at}
		}
	}
	// All of today's slots have passed; roll to tomorrow's first.
	d := now.AddDate(0, 0, 1)
	slot := digestSlots[0]
	return Reminder{
		Title: "Money Manager",
		Body:  slot.body,
		At:    time.Date(d.Year(), d.Month(), d.Day(), slot.hour, 0, 0, 0, now.Location()),
	}
}

// Sink receives a reminder at its fire time.
type Sink func(r Reminder)

// Scheduler dispatches planned reminders. Delivery is fire-and-forget: a
// schedule request never blocks or fails the authoring operation that
// triggered it.
type Scheduler struct {
	log  *slog.Logger
	sink Sink
	now  func() time.Time

	mu     sync.Mutex
	timers map[*time.Timer]struct{}
}

// NewScheduler constructs a scheduler. A nil sink logs deliveries through
// the provided logger.
func NewScheduler(logger *slog.Logger, sink Sink) *Scheduler {
	s := &Scheduler{log: logger, now: time.Now}
	if sink == nil {
		sink = func(r Reminder) {
			logger.Info("notification", "title", r.Title, "body", r.Body)
		}
	}
	s.sink = sink
	return s
}

// ScheduleBillReminders arms timers for every still-future reminder of the
// bill. Each timer removes its own entry once it fires.
func (s *Scheduler) ScheduleBillReminders(_ context.Context, title string, due time.Time) {
	now := s.now()
	planned := BillReminders(title, due, now)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timers == nil {
		s.timers = make(map[*time.Timer]struct{})
	}
	for _, r := range planned {
		r := r
		var t *time.Timer
		t = time.AfterFunc(r.At.Sub(now), func() {
			s.sink(r)
			s.mu.Lock()
			delete(s.timers, t)
			s.mu.Unlock()
		})
		s.timers[t] = struct{}{}
	}
	s.log.Debug("bill reminders scheduled", "title", title, "due", due.Format("2006-01-02"), "count", len(planned))
}

// Run delivers the daily digest until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		next := NextDigest(s.now())
		timer := time.NewTimer(next.At.Sub(s.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.Stop()
			return ctx.Err()
		case <-timer.C:
			s.sink(next)
		}
	}
}

// Stop cancels all armed bill reminder timers.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}
