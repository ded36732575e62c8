package booking

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nekogravitycat/camp-booking-backend/internal/db"
	"github.com/nekogravitycat/camp-booking-backend/internal/metrics"
	"github.com/nekogravitycat/camp-booking-backend/internal/notification"
	"github.com/nekogravitycat/camp-booking-backend/internal/pricing"
	"github.com/nekogravitycat/camp-booking-backend/internal/settings"
)

// SettingsProvider is the part of settings.Service bookings depend on.
type SettingsProvider interface {
	Get(ctx context.Context) (*settings.Settings, error)
}

type Service interface {
	Create(ctx context.Context, sub Submission) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	ListForExport(ctx context.Context, filter ExportFilter) ([]*Booking, error)

	// Availability reports what can still be booked on date.
	Availability(ctx context.Context, date time.Time) (*Availability, error)
	// RebuildDateLock recomputes the lock record of date from its paid bookings.
	// location is used only when the date has no paid bookings yet.
	RebuildDateLock(ctx context.Context, date time.Time, location Location) (*DateLocationLock, error)

	AttachPaymentSession(ctx context.Context, id, sessionID string) error
	// ConfirmPayment marks a booking paid. Confirming an already paid booking is a no-op.
	ConfirmPayment(ctx context.Context, id, paymentRef string) (*Booking, error)
}

// Options holds the deployment-specific admission parameters.
type Options struct {
	Timezone    *time.Location
	PhonePrefix string
	Now         func() time.Time
	// NotifyTimeout bounds the confirmation notification; defaults to notification.SendTimeout.
	NotifyTimeout time.Duration
}

type service struct {
	repo     Repository
	settings SettingsProvider
	notifier notification.Notifier
	log      *logrus.Logger
	opts     Options
}

func NewService(repo Repository, settings SettingsProvider, notifier notification.Notifier, log *logrus.Logger, opts Options) Service {
	if opts.Timezone == nil {
		opts.Timezone = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = notification.SendTimeout
	}
	if notifier == nil {
		notifier = notification.Nop{}
	}
	return &service{
		repo:     repo,
		settings: settings,
		notifier: notifier,
		log:      log,
		opts:     opts,
	}
}

func (s *service) today() time.Time {
	return DateOf(s.opts.Now().In(s.opts.Timezone))
}

func (s *service) Create(ctx context.Context, sub Submission) (*Booking, error) {
	// 1. Field validation
	if err := sub.Validate(s.today(), s.opts.PhonePrefix); err != nil {
		metrics.IncBookingSubmission("rejected")
		return nil, err
	}

	// 2. Current prices
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		metrics.IncBookingSubmission("failed")
		return nil, err
	}

	b := sub.newBooking()
	b.Pricing = pricing.Calculate(pricing.Input{
		Tents:        b.Tents,
		Location:     string(b.Location),
		AddOns:       b.AddOns,
		HasChildren:  b.HasChildren,
		CustomAddOns: pricing.SelectCustomAddOns(cfg.CustomAddOns, b.SelectedCustomAddOns),
		Date:         &b.BookingDate,
	}, *cfg)

	// 3. Capacity and location checks and both writes, serialized per date
	err = s.repo.WithinTx(ctx, func(tx Repository) error {
		lock, err := tx.AcquireLock(ctx, b.BookingDate)
		if err != nil {
			return err
		}

		paid, err := tx.ListPaidByDate(ctx, b.BookingDate)
		if err != nil {
			return err
		}
		av, err := CalculateAvailability(paid)
		if err != nil {
			return err
		}
		if lock.TotalTents != av.TotalTents {
			s.log.WithFields(logrus.Fields{
				"date":        b.BookingDate.Format(DateLayout),
				"lock_tents":  lock.TotalTents,
				"paid_tents":  av.TotalTents,
				"lock_target": lock.LockedLocation,
			}).Debug("date lock differs from paid bookings")
		}

		if err := av.Admit(b.Location, b.Tents); err != nil {
			return err
		}

		if err := tx.Create(ctx, b); err != nil {
			return err
		}

		locked := b.Location
		if av.LockedLocation != nil {
			locked = *av.LockedLocation
		}
		return tx.UpsertLock(ctx, &DateLocationLock{
			Date:           b.BookingDate,
			LockedLocation: locked,
			TotalTents:     av.TotalTents + b.Tents,
		})
	})
	if err != nil {
		if db.IsRetryable(err) {
			metrics.IncBookingSubmission("conflict")
			return nil, ErrRetry
		}
		if isClientError(err) {
			metrics.IncBookingSubmission("rejected")
		} else {
			metrics.IncBookingSubmission("failed")
		}
		return nil, err
	}

	metrics.IncBookingSubmission("created")
	s.log.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"date":       b.BookingDate.Format(DateLayout),
		"location":   b.Location,
		"tents":      b.Tents,
		"total":      b.Pricing.Total,
	}).Info("booking created")

	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) ListForExport(ctx context.Context, filter ExportFilter) ([]*Booking, error) {
	return s.repo.ListForExport(ctx, filter)
}

func (s *service) Availability(ctx context.Context, date time.Time) (*Availability, error) {
	paid, err := s.repo.ListPaidByDate(ctx, DateOf(date))
	if err != nil {
		return nil, err
	}
	av, err := CalculateAvailability(paid)
	if errors.Is(err, ErrInconsistentLocation) {
		s.log.WithField("date", DateOf(date).Format(DateLayout)).Error("paid bookings disagree on location")
	}
	return av, err
}

func (s *service) RebuildDateLock(ctx context.Context, date time.Time, location Location) (*DateLocationLock, error) {
	date = DateOf(date)
	var lock *DateLocationLock

	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		if _, err := tx.AcquireLock(ctx, date); err != nil {
			return err
		}
		paid, err := tx.ListPaidByDate(ctx, date)
		if err != nil {
			return err
		}

		lock = &DateLocationLock{Date: date, LockedLocation: location}
		if len(paid) > 0 {
			lock.LockedLocation = paid[0].Location
		}
		for _, b := range paid {
			lock.TotalTents += b.Tents
		}
		return tx.UpsertLock(ctx, lock)
	})
	if err != nil {
		if db.IsRetryable(err) {
			return nil, ErrRetry
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"date":        date.Format(DateLayout),
		"location":    lock.LockedLocation,
		"total_tents": lock.TotalTents,
	}).Info("date lock rebuilt")
	return lock, nil
}

func (s *service) AttachPaymentSession(ctx context.Context, id, sessionID string) error {
	return s.repo.SetPaymentSession(ctx, id, sessionID)
}

func (s *service) ConfirmPayment(ctx context.Context, id, paymentRef string) (*Booking, error) {
	var (
		b           *Booking
		alreadyPaid bool
	)

	err := s.repo.WithinTx(ctx, func(tx Repository) error {
		cur, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := tx.AcquireLock(ctx, cur.BookingDate); err != nil {
			return err
		}

		if alreadyPaid, err = tx.MarkPaid(ctx, id, paymentRef); err != nil {
			return err
		}

		paid, err := tx.ListPaidByDate(ctx, cur.BookingDate)
		if err != nil {
			return err
		}
		total := 0
		for _, p := range paid {
			total += p.Tents
			if p.Location != cur.Location {
				s.log.WithFields(logrus.Fields{
					"booking_id": id,
					"date":       cur.BookingDate.Format(DateLayout),
					"location":   cur.Location,
					"conflict":   p.Location,
				}).Error("paid booking conflicts with date location")
			}
		}
		if total > MaxTentsPerDate {
			s.log.WithFields(logrus.Fields{
				"booking_id":  id,
				"date":        cur.BookingDate.Format(DateLayout),
				"total_tents": total,
			}).Warn("date over capacity after payment")
		}

		if err := tx.UpsertLock(ctx, &DateLocationLock{
			Date:           cur.BookingDate,
			LockedLocation: cur.Location,
			TotalTents:     total,
		}); err != nil {
			return err
		}

		b, err = tx.GetByID(ctx, id)
		return err
	})
	if err != nil {
		metrics.IncPaymentConfirmation("failed")
		return nil, err
	}

	entry := s.log.WithFields(logrus.Fields{"booking_id": id, "payment_ref": paymentRef})
	if alreadyPaid {
		metrics.IncPaymentConfirmation("duplicate")
		entry.Info("payment already confirmed")
		return b, nil
	}

	metrics.IncPaymentConfirmation("paid")
	entry.Info("payment confirmed")

	// Notification is best effort; the booking is paid either way.
	notifyCtx, cancel := context.WithTimeout(ctx, s.opts.NotifyTimeout)
	defer cancel()
	if err := s.notifier.BookingConfirmed(notifyCtx, eventFor(b)); err != nil {
		metrics.IncNotificationFailure()
		entry.WithError(err).Error("booking notification failed")
	}

	return b, nil
}

func eventFor(b *Booking) notification.Event {
	e := notification.Event{
		BookingID:     b.ID,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		CustomerPhone: b.CustomerPhone,
		BookingDate:   b.BookingDate.Format(DateLayout),
		Location:      string(b.Location),
		Tents:         b.Tents,
		Adults:        b.Adults,
		Children:      b.Children,
		Total:         b.Pricing.Total,
	}
	if b.PaidAt != nil {
		e.PaidAt = *b.PaidAt
	}
	return e
}

func isClientError(err error) bool {
	type clientError interface{ IsClientError() bool }
	var ce clientError
	return errors.As(err, &ce) && ce.IsClientError()
}
