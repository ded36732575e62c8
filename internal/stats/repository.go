package stats

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	ListRows(ctx context.Context, onlyPaid bool) ([]Row, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) ListRows(ctx context.Context, onlyPaid bool) ([]Row, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	qb := psql.Select("booking_date", "location", "total", "is_paid").
		From("public.bookings").
		OrderBy("booking_date ASC")
	if onlyPaid {
		qb = qb.Where(squirrel.Eq{"is_paid": true})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stats query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stats rows failed: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Row, error) {
		var s Row
		err := row.Scan(&s.BookingDate, &s.Location, &s.Total, &s.IsPaid)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan stats rows failed: %w", err)
	}
	return out, nil
}
