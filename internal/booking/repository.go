package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/camp-booking-backend/internal/db"
)

const exportLimit = 10000

type Repository interface {
	// WithinTx runs fn against a repository bound to a single transaction.
	WithinTx(ctx context.Context, fn func(tx Repository) error) error

	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	ListPaidByDate(ctx context.Context, date time.Time) ([]*Booking, error)
	ListForExport(ctx context.Context, filter ExportFilter) ([]*Booking, error)
	SetPaymentSession(ctx context.Context, id, sessionID string) error

	// MarkPaid flips an unpaid booking to paid. It reports alreadyPaid when the
	// booking was paid before and leaves it untouched.
	MarkPaid(ctx context.Context, id, paymentRef string) (alreadyPaid bool, err error)

	// AcquireLock makes sure the lock row of date exists and holds a row lock on
	// it until the surrounding transaction ends. Only valid inside WithinTx.
	AcquireLock(ctx context.Context, date time.Time) (*DateLocationLock, error)
	UpsertLock(ctx context.Context, lock *DateLocationLock) error
}

var bookingColumns = []string{
	"id", "customer_name", "customer_email", "customer_phone", "booking_date", "location",
	"tents", "adults", "children", "sleeping_arrangements", "add_ons", "has_children", "notes",
	"selected_custom_add_ons",
	"tent_price", "location_surcharge", "add_ons_cost", "custom_add_ons_cost", "subtotal", "vat", "total",
	"is_paid", "payment_session_id", "payment_intent_id", "paid_at", "created_at", "updated_at",
}

type pgxRepository struct {
	pool *pgxpool.Pool // nil when bound to a transaction
	q    db.DBTX
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool, q: pool}
}

func (r *pgxRepository) WithinTx(ctx context.Context, fn func(tx Repository) error) error {
	if r.pool == nil {
		return fn(r)
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&pgxRepository{q: tx})
	})
}

func psql() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	dest := []any{
		&b.ID, &b.CustomerName, &b.CustomerEmail, &b.CustomerPhone, &b.BookingDate, &b.Location,
		&b.Tents, &b.Adults, &b.Children, &b.SleepingArrangements, &b.AddOns, &b.HasChildren, &b.Notes,
		&b.SelectedCustomAddOns,
		&b.Pricing.TentPrice, &b.Pricing.LocationSurcharge, &b.Pricing.AddOnsCost,
		&b.Pricing.CustomAddOnsCost, &b.Pricing.Subtotal, &b.Pricing.VAT, &b.Pricing.Total,
		&b.IsPaid, &b.PaymentSessionID, &b.PaymentIntentID, &b.PaidAt, &b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	query, args, err := psql().Insert("public.bookings").
		Columns(
			"customer_name", "customer_email", "customer_phone", "booking_date", "location",
			"tents", "adults", "children", "sleeping_arrangements", "add_ons", "has_children", "notes",
			"selected_custom_add_ons",
			"tent_price", "location_surcharge", "add_ons_cost", "custom_add_ons_cost", "subtotal", "vat", "total",
		).
		Values(
			b.CustomerName, b.CustomerEmail, b.CustomerPhone, b.BookingDate, string(b.Location),
			b.Tents, b.Adults, b.Children, b.SleepingArrangements, b.AddOns, b.HasChildren, b.Notes,
			b.SelectedCustomAddOns,
			b.Pricing.TentPrice, b.Pricing.LocationSurcharge, b.Pricing.AddOnsCost,
			b.Pricing.CustomAddOnsCost, b.Pricing.Subtotal, b.Pricing.VAT, b.Pricing.Total,
		).
		Suffix("RETURNING id, is_paid, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.q.QueryRow(ctx, query, args...).Scan(&b.ID, &b.IsPaid, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query, args, err := psql().Select(bookingColumns...).
		From("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	query := applyFilter(psql().Select(append(bookingColumns, "count(*) OVER() AS total_count")...).
		From("public.bookings"), filter)

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	offset := (filter.Page - 1) * filter.Limit

	query = query.OrderBy("created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings failed: %w", err)
	}

	// A page past the end has no rows to carry the window count.
	if len(bookings) == 0 && filter.Page > 1 {
		if total, err = r.count(ctx, filter); err != nil {
			return nil, 0, err
		}
	}

	return bookings, total, nil
}

func (r *pgxRepository) count(ctx context.Context, filter Filter) (int, error) {
	sql, args, err := applyFilter(psql().Select("count(*)").From("public.bookings"), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count bookings query failed: %w", err)
	}

	var total int
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count bookings failed: %w", err)
	}
	return total, nil
}

func applyFilter(query squirrel.SelectBuilder, filter Filter) squirrel.SelectBuilder {
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := "%" + escapeLike(term) + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"customer_name": pattern},
			squirrel.ILike{"customer_email": pattern},
			squirrel.ILike{"customer_phone": pattern},
		})
	}
	if filter.Location != "" {
		query = query.Where(squirrel.Eq{"location": filter.Location})
	}
	if filter.IsPaid != nil {
		query = query.Where(squirrel.Eq{"is_paid": *filter.IsPaid})
	}
	return query
}

// ListPaidByDate returns the paid bookings of date, oldest first, so the first
// element is the booking that fixed the date's location.
func (r *pgxRepository) ListPaidByDate(ctx context.Context, date time.Time) ([]*Booking, error) {
	query, args, err := psql().Select(bookingColumns...).
		From("public.bookings").
		Where(squirrel.Eq{"booking_date": DateOf(date), "is_paid": true}).
		OrderBy("paid_at ASC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list paid bookings query failed: %w", err)
	}
	return r.collect(ctx, query, args)
}

func (r *pgxRepository) ListForExport(ctx context.Context, filter ExportFilter) ([]*Booking, error) {
	query := psql().Select(bookingColumns...).From("public.bookings")

	if filter.From != nil {
		query = query.Where(squirrel.GtOrEq{"booking_date": DateOf(*filter.From)})
	}
	if filter.To != nil {
		query = query.Where(squirrel.LtOrEq{"booking_date": DateOf(*filter.To)})
	}
	if filter.IsPaid != nil {
		query = query.Where(squirrel.Eq{"is_paid": *filter.IsPaid})
	}

	sql, args, err := query.OrderBy("booking_date ASC", "created_at ASC").Limit(exportLimit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build export bookings query failed: %w", err)
	}
	return r.collect(ctx, sql, args)
}

func (r *pgxRepository) collect(ctx context.Context, sql string, args []any) ([]*Booking, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings failed: %w", err)
	}
	return bookings, nil
}

func (r *pgxRepository) SetPaymentSession(ctx context.Context, id, sessionID string) error {
	query, args, err := psql().Update("public.bookings").
		Set("payment_session_id", sessionID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set payment session query failed: %w", err)
	}

	ct, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set payment session failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) MarkPaid(ctx context.Context, id, paymentRef string) (bool, error) {
	query, args, err := psql().Update("public.bookings").
		Set("is_paid", true).
		Set("payment_intent_id", paymentRef).
		Set("paid_at", squirrel.Expr("now()")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "is_paid": false}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build mark paid query failed: %w", err)
	}

	ct, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("mark booking paid failed: %w", err)
	}
	if ct.RowsAffected() == 1 {
		return false, nil
	}

	// Nothing changed: either already paid or missing.
	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

func (r *pgxRepository) AcquireLock(ctx context.Context, date time.Time) (*DateLocationLock, error) {
	date = DateOf(date)

	insert, args, err := psql().Insert("public.date_location_locks").
		Columns("booking_date", "total_tents").
		Values(date, 0).
		Suffix("ON CONFLICT (booking_date) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ensure lock query failed: %w", err)
	}
	if _, err := r.q.Exec(ctx, insert, args...); err != nil {
		return nil, fmt.Errorf("ensure date lock failed: %w", err)
	}

	query, args, err := psql().Select("booking_date", "locked_location", "total_tents", "created_at", "updated_at").
		From("public.date_location_locks").
		Where(squirrel.Eq{"booking_date": date}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build acquire lock query failed: %w", err)
	}

	var lock DateLocationLock
	var locked *string
	if err := r.q.QueryRow(ctx, query, args...).
		Scan(&lock.Date, &locked, &lock.TotalTents, &lock.CreatedAt, &lock.UpdatedAt); err != nil {
		return nil, fmt.Errorf("acquire date lock failed: %w", err)
	}
	if locked != nil {
		lock.LockedLocation = Location(*locked)
	}
	return &lock, nil
}

func (r *pgxRepository) UpsertLock(ctx context.Context, lock *DateLocationLock) error {
	query, args, err := psql().Insert("public.date_location_locks").
		Columns("booking_date", "locked_location", "total_tents").
		Values(DateOf(lock.Date), string(lock.LockedLocation), lock.TotalTents).
		Suffix(`ON CONFLICT (booking_date) DO UPDATE
			SET locked_location = EXCLUDED.locked_location,
			    total_tents = EXCLUDED.total_tents,
			    updated_at = now()
			RETURNING created_at, updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert lock query failed: %w", err)
	}

	if err := r.q.QueryRow(ctx, query, args...).Scan(&lock.CreatedAt, &lock.UpdatedAt); err != nil {
		return fmt.Errorf("upsert date lock failed: %w", err)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
