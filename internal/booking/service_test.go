package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/camp-booking-backend/internal/notification"
	"github.com/nekogravitycat/camp-booking-backend/internal/settings"
)

// memRepository is an in-memory Repository. WithinTx serializes callers and
// restores the previous state when fn fails.
type memRepository struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	bookings map[string]*Booking
	locks    map[time.Time]*DateLocationLock
	seq      int
	clock    time.Time
}

func newMemRepository() *memRepository {
	return &memRepository{
		bookings: map[string]*Booking{},
		locks:    map[time.Time]*DateLocationLock{},
		clock:    time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC),
	}
}

func (r *memRepository) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *memRepository) WithinTx(ctx context.Context, fn func(tx Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	savedBookings := make(map[string]*Booking, len(r.bookings))
	for k, v := range r.bookings {
		cp := *v
		savedBookings[k] = &cp
	}
	savedLocks := make(map[time.Time]*DateLocationLock, len(r.locks))
	for k, v := range r.locks {
		cp := *v
		savedLocks[k] = &cp
	}
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.bookings, r.locks = savedBookings, savedLocks
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *memRepository) Create(_ context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	b.ID = fmt.Sprintf("00000000-0000-4000-8000-%012d", r.seq)
	b.CreatedAt = r.tick()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *memRepository) GetByID(_ context.Context, id string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memRepository) List(_ context.Context, filter Filter) ([]*Booking, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Booking
	for _, b := range r.bookings {
		if filter.IsPaid != nil && b.IsPaid != *filter.IsPaid {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *memRepository) ListPaidByDate(_ context.Context, date time.Time) ([]*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Booking
	for _, b := range r.bookings {
		if b.IsPaid && b.BookingDate.Equal(DateOf(date)) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidAt.Before(*out[j].PaidAt) })
	return out, nil
}

func (r *memRepository) ListForExport(ctx context.Context, _ ExportFilter) ([]*Booking, error) {
	out, _, err := r.List(ctx, Filter{})
	return out, err
}

func (r *memRepository) SetPaymentSession(_ context.Context, id, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.PaymentSessionID = &sessionID
	return nil
}

func (r *memRepository) MarkPaid(_ context.Context, id, paymentRef string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return false, ErrNotFound
	}
	if b.IsPaid {
		return true, nil
	}
	now := r.tick()
	b.IsPaid = true
	b.PaymentIntentID = &paymentRef
	b.PaidAt = &now
	return false, nil
}

func (r *memRepository) AcquireLock(_ context.Context, date time.Time) (*DateLocationLock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[DateOf(date)]
	if !ok {
		lock = &DateLocationLock{Date: DateOf(date)}
		r.locks[lock.Date] = lock
	}
	cp := *lock
	return &cp, nil
}

func (r *memRepository) UpsertLock(_ context.Context, lock *DateLocationLock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *lock
	cp.Date = DateOf(lock.Date)
	r.locks[cp.Date] = &cp
	return nil
}

func (r *memRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

func (r *memRepository) lock(date time.Time) *DateLocationLock {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locks[DateOf(date)]
}

type staticSettings struct {
	s   settings.Settings
	err error
}

func (f *staticSettings) Get(context.Context) (*settings.Settings, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := f.s
	return &cp, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification.Event
	err    error
}

func (n *recordingNotifier) BookingConfirmed(_ context.Context, e notification.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

// blockingNotifier waits for its context to end.
type blockingNotifier struct {
	err error
}

func (n *blockingNotifier) BookingConfirmed(ctx context.Context, _ notification.Event) error {
	<-ctx.Done()
	n.err = ctx.Err()
	return n.err
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fixture struct {
	repo     *memRepository
	notifier *recordingNotifier
	svc      Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{repo: newMemRepository(), notifier: &recordingNotifier{}}
	dubai := time.FixedZone("GST", 4*3600)
	f.svc = NewService(f.repo, &staticSettings{s: settings.Defaults()}, f.notifier, quietLogger(), Options{
		Timezone:    dubai,
		PhonePrefix: "+971",
		// 2026-10-14 22:00 UTC is already 2026-10-15 in Dubai.
		Now: func() time.Time { return time.Date(2026, 10, 14, 22, 0, 0, 0, time.UTC) },
	})
	return f
}

// book creates a booking and confirms its payment.
func (f *fixture) book(t *testing.T, loc string, tents int) *Booking {
	t.Helper()
	sub := validSubmission()
	sub.Location = loc
	sub.Tents = tents
	sub.Adults = tents
	sub.SleepingArrangements = arrangements(tents)
	b, err := f.svc.Create(context.Background(), sub)
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(context.Background(), b.ID, "pi_"+b.ID)
	require.NoError(t, err)
	return b
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Prices and stores an unpaid booking", func(t *testing.T) {
		f := newFixture(t)
		sub := validSubmission()
		sub.Tents = 1
		sub.Adults = 2
		sub.SleepingArrangements = arrangements(1)
		sub.BookingDate = datePtr(2026, 10, 19) // Monday

		b, err := f.svc.Create(ctx, sub)
		require.NoError(t, err)

		assert.NotEmpty(t, b.ID)
		assert.False(t, b.IsPaid)
		assert.InDelta(t, 1297, b.Pricing.Subtotal, 0.001)
		assert.InDelta(t, 64.85, b.Pricing.VAT, 0.001)
		assert.InDelta(t, 1361.85, b.Pricing.Total, 0.001)

		lock := f.repo.lock(b.BookingDate)
		require.NotNil(t, lock)
		assert.Equal(t, LocationDesert, lock.LockedLocation)
		assert.Equal(t, 1, lock.TotalTents, "lock counts paid tents plus the request")
	})

	t.Run("Uses the booking timezone for today", func(t *testing.T) {
		f := newFixture(t)
		sub := validSubmission()
		sub.BookingDate = datePtr(2026, 10, 16) // two days from UTC today, one from Dubai today

		_, err := f.svc.Create(ctx, sub)
		assert.ErrorIs(t, err, ErrDateTooSoon)
	})

	t.Run("Unpaid bookings do not consume capacity", func(t *testing.T) {
		f := newFixture(t)
		for i := 0; i < 3; i++ {
			sub := validSubmission()
			sub.Tents = 5
			sub.Adults = 5
			sub.SleepingArrangements = arrangements(5)
			_, err := f.svc.Create(ctx, sub)
			require.NoError(t, err)
		}
	})

	t.Run("Rejects a different location on a locked date", func(t *testing.T) {
		f := newFixture(t)
		f.book(t, "Desert", 3)

		sub := validSubmission()
		sub.Location = "Mountain"
		_, err := f.svc.Create(ctx, sub)

		require.Error(t, err)
		assert.Equal(t, "This date is already booked for Desert location. All bookings for the same date must be in the same location.", err.Error())
		assert.Equal(t, 1, f.repo.count(), "rejected submissions are not stored")
		assert.Equal(t, LocationDesert, f.repo.lock(*sub.BookingDate).LockedLocation)
	})

	t.Run("Rejects when capacity is exceeded", func(t *testing.T) {
		f := newFixture(t)
		f.book(t, "Desert", 5)
		f.book(t, "Desert", 4)

		sub := validSubmission()
		_, err := f.svc.Create(ctx, sub)

		require.Error(t, err)
		assert.Equal(t, "Only 1 tent available for this date (10 tents maximum per day)", err.Error())
		assert.Equal(t, 9, f.repo.lock(*sub.BookingDate).TotalTents, "rejected submissions leave the lock untouched")
		assert.Equal(t, 2, f.repo.count(), "rejected submissions are not stored")
	})

	t.Run("Settings failure is returned", func(t *testing.T) {
		f := newFixture(t)
		boom := errors.New("db down")
		f.svc = NewService(f.repo, &staticSettings{err: boom}, nil, quietLogger(), Options{PhonePrefix: "+971",
			Now: func() time.Time { return testToday }})

		_, err := f.svc.Create(ctx, validSubmission())
		assert.ErrorIs(t, err, boom)
	})
}

func TestService_ConfirmPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("Marks paid, rebuilds the lock and notifies once", func(t *testing.T) {
		f := newFixture(t)
		b, err := f.svc.Create(ctx, validSubmission())
		require.NoError(t, err)

		paid, err := f.svc.ConfirmPayment(ctx, b.ID, "pi_1")
		require.NoError(t, err)
		assert.True(t, paid.IsPaid)
		require.NotNil(t, paid.PaymentIntentID)
		assert.Equal(t, "pi_1", *paid.PaymentIntentID)

		lock := f.repo.lock(b.BookingDate)
		assert.Equal(t, LocationDesert, lock.LockedLocation)
		assert.Equal(t, 2, lock.TotalTents)

		again, err := f.svc.ConfirmPayment(ctx, b.ID, "pi_1")
		require.NoError(t, err)
		assert.True(t, again.IsPaid)

		require.Len(t, f.notifier.events, 1, "repeated confirmation must not notify again")
		e := f.notifier.events[0]
		assert.Equal(t, b.ID, e.BookingID)
		assert.Equal(t, "2026-10-19", e.BookingDate)
		assert.Equal(t, "Desert", e.Location)
	})

	t.Run("Lock total ignores unpaid bookings", func(t *testing.T) {
		f := newFixture(t)
		unpaid, err := f.svc.Create(ctx, validSubmission())
		require.NoError(t, err)
		b, err := f.svc.Create(ctx, validSubmission())
		require.NoError(t, err)
		assert.Equal(t, 2, f.repo.lock(unpaid.BookingDate).TotalTents)

		_, err = f.svc.ConfirmPayment(ctx, b.ID, "pi_2")
		require.NoError(t, err)
		assert.Equal(t, 2, f.repo.lock(b.BookingDate).TotalTents)
	})

	t.Run("Notification failure does not fail confirmation", func(t *testing.T) {
		f := newFixture(t)
		f.notifier.err = errors.New("smtp down")
		b, err := f.svc.Create(ctx, validSubmission())
		require.NoError(t, err)

		paid, err := f.svc.ConfirmPayment(ctx, b.ID, "pi_3")
		require.NoError(t, err)
		assert.True(t, paid.IsPaid)
	})

	t.Run("Stalled notifier is cut off", func(t *testing.T) {
		f := newFixture(t)
		stalled := &blockingNotifier{}
		f.svc = NewService(f.repo, &staticSettings{s: settings.Defaults()}, stalled, quietLogger(), Options{
			PhonePrefix:   "+971",
			Now:           func() time.Time { return time.Date(2026, 10, 14, 22, 0, 0, 0, time.UTC) },
			NotifyTimeout: 20 * time.Millisecond,
		})
		b, err := f.svc.Create(ctx, validSubmission())
		require.NoError(t, err)

		start := time.Now()
		paid, err := f.svc.ConfirmPayment(ctx, b.ID, "pi_4")
		require.NoError(t, err)
		assert.True(t, paid.IsPaid)
		assert.Less(t, time.Since(start), 2*time.Second)
		assert.ErrorIs(t, stalled.err, context.DeadlineExceeded)
	})

	t.Run("Unknown booking", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.ConfirmPayment(ctx, "00000000-0000-4000-8000-000000000999", "pi_x")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Empty(t, f.notifier.events)
	})
}

func TestService_AvailabilityAndRebuild(t *testing.T) {
	ctx := context.Background()
	date := *validSubmission().BookingDate

	t.Run("Open date", func(t *testing.T) {
		f := newFixture(t)
		av, err := f.svc.Availability(ctx, date)
		require.NoError(t, err)
		assert.Nil(t, av.LockedLocation)
		assert.Equal(t, 10, av.RemainingCapacity)
		assert.Len(t, av.AvailableLocations, 3)
	})

	t.Run("Locked date", func(t *testing.T) {
		f := newFixture(t)
		f.book(t, "Mountain", 4)

		av, err := f.svc.Availability(ctx, date)
		require.NoError(t, err)
		require.NotNil(t, av.LockedLocation)
		assert.Equal(t, LocationMountain, *av.LockedLocation)
		assert.Equal(t, 4, av.TotalTents)
		assert.Equal(t, 6, av.RemainingCapacity)
	})

	t.Run("Rebuild uses paid bookings and is idempotent", func(t *testing.T) {
		f := newFixture(t)
		f.book(t, "Mountain", 4)

		first, err := f.svc.RebuildDateLock(ctx, date, LocationWadi)
		require.NoError(t, err)
		assert.Equal(t, LocationMountain, first.LockedLocation, "paid bookings win over the requested location")
		assert.Equal(t, 4, first.TotalTents)

		second, err := f.svc.RebuildDateLock(ctx, date, LocationWadi)
		require.NoError(t, err)
		assert.Equal(t, first.LockedLocation, second.LockedLocation)
		assert.Equal(t, first.TotalTents, second.TotalTents)
	})

	t.Run("Rebuild on an empty date takes the requested location", func(t *testing.T) {
		f := newFixture(t)
		lock, err := f.svc.RebuildDateLock(ctx, date, LocationWadi)
		require.NoError(t, err)
		assert.Equal(t, LocationWadi, lock.LockedLocation)
		assert.Zero(t, lock.TotalTents)
	})
}
