package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/camp-booking-backend/internal/booking"
	"github.com/nekogravitycat/camp-booking-backend/internal/metrics"
)

// BookingService is the part of booking.Service payments drive.
type BookingService interface {
	GetByID(ctx context.Context, id string) (*booking.Booking, error)
	AttachPaymentSession(ctx context.Context, id, sessionID string) error
	ConfirmPayment(ctx context.Context, id, paymentRef string) (*booking.Booking, error)
}

type Service interface {
	// StartCheckout opens a payment page for an unpaid booking.
	StartCheckout(ctx context.Context, bookingID string) (*CheckoutSession, error)
	// HandleEvent applies a verified webhook event. Errors make the provider redeliver.
	HandleEvent(ctx context.Context, e *WebhookEvent) error
}

type service struct {
	bookings BookingService
	checkout Checkout // nil when payments are not configured
	log      *logrus.Logger
}

func NewService(bookings BookingService, checkout Checkout, log *logrus.Logger) Service {
	return &service{bookings: bookings, checkout: checkout, log: log}
}

func (s *service) StartCheckout(ctx context.Context, bookingID string) (*CheckoutSession, error) {
	if s.checkout == nil {
		return nil, ErrNotConfigured
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.IsPaid {
		return nil, booking.ErrAlreadyPaid
	}

	sess, err := s.checkout.CreateSession(ctx, CheckoutRequest{
		BookingID:     b.ID,
		CustomerEmail: b.CustomerEmail,
		Description: fmt.Sprintf("%s, %s, %d tent(s)",
			b.BookingDate.Format("Mon 02 Jan 2006"), b.Location, b.Tents),
		Amount: b.Pricing.Total,
	})
	if err != nil {
		return nil, err
	}

	if err := s.bookings.AttachPaymentSession(ctx, b.ID, sess.ID); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"booking_id": b.ID, "session_id": sess.ID}).Info("checkout session created")
	return sess, nil
}

func (s *service) HandleEvent(ctx context.Context, e *WebhookEvent) error {
	metrics.IncWebhookEvent(e.Type)
	entry := s.log.WithFields(logrus.Fields{
		"event_id":   e.ID,
		"event_type": e.Type,
		"booking_id": e.BookingID,
	})

	switch e.Type {
	case EventCheckoutCompleted:
		if e.BookingID == "" {
			entry.Warn("completed checkout without booking id")
			return nil
		}
		if _, err := uuid.Parse(e.BookingID); err != nil {
			entry.Warn("completed checkout with malformed booking id")
			return nil
		}

		_, err := s.bookings.ConfirmPayment(ctx, e.BookingID, e.PaymentRef)
		switch {
		case errors.Is(err, booking.ErrNotFound):
			// Redelivery cannot fix a booking that does not exist.
			entry.Warn("completed checkout for unknown booking")
			return nil
		case err != nil:
			entry.WithError(err).Error("payment confirmation failed")
			return err
		}
	case EventCheckoutExpired:
		entry.Info("checkout session expired")
	default:
		entry.Debug("unhandled webhook event")
	}
	return nil
}
