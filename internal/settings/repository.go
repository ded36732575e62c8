package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// settingsRowID is the key of the only row in public.settings.
const settingsRowID = 1

type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	// Save upserts the settings row and refreshes UpdatedAt.
	Save(ctx context.Context, s *Settings) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Get(ctx context.Context) (*Settings, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("data", "updated_at").
		From("public.settings").
		Where(squirrel.Eq{"id": settingsRowID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get settings query failed: %w", err)
	}

	var (
		raw []byte
		s   Settings
	)
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&raw, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get settings failed: %w", err)
	}

	updatedAt := s.UpdatedAt
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode settings failed: %w", err)
	}
	s.UpdatedAt = updatedAt
	return &s, nil
}

func (r *pgxRepository) Save(ctx context.Context, s *Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings failed: %w", err)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.settings").
		Columns("id", "data").
		Values(settingsRowID, raw).
		Suffix("ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now() RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build save settings query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&s.UpdatedAt); err != nil {
		return fmt.Errorf("save settings failed: %w", err)
	}
	return nil
}
