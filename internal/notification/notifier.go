package notification

import (
	"context"
	"errors"
	"time"
)

// SendTimeout bounds a single delivery attempt of any notifier.
const SendTimeout = 10 * time.Second

// Event describes a booking whose payment has just been confirmed.
type Event struct {
	BookingID     string    `json:"bookingId"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	CustomerPhone string    `json:"customerPhone"`
	BookingDate   string    `json:"bookingDate"` // YYYY-MM-DD
	Location      string    `json:"location"`
	Tents         int       `json:"tents"`
	Adults        int       `json:"adults"`
	Children      int       `json:"children"`
	Total         float64   `json:"total"`
	PaidAt        time.Time `json:"paidAt"`
}

// Notifier delivers booking confirmations to customers or staff.
// Callers treat failures as non-fatal.
type Notifier interface {
	BookingConfirmed(ctx context.Context, e Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) BookingConfirmed(context.Context, Event) error { return nil }

// Multi fans an event out to every notifier and joins their errors.
type Multi []Notifier

// NewMulti skips nil notifiers and collapses trivial cases.
func NewMulti(notifiers ...Notifier) Notifier {
	var m Multi
	for _, n := range notifiers {
		if n != nil {
			m = append(m, n)
		}
	}
	switch len(m) {
	case 0:
		return Nop{}
	case 1:
		return m[0]
	}
	return m
}

func (m Multi) BookingConfirmed(ctx context.Context, e Event) error {
	var errs []error
	for _, n := range m {
		if err := n.BookingConfirmed(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
