package tax

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/serenity/spa/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const rateCols = `id, name, rate_bps, active, created_at, updated_at`

func (r *repoPG) scanRate(row pgx.Row) (*Rate, error) {
	var rate Rate
	err := row.Scan(&rate.ID, &rate.Name, &rate.RateBps, &rate.Active, &rate.CreatedAt, &rate.UpdatedAt)
	return &rate, err
}

func (r *repoPG) Create(ctx context.Context, rate *Rate) error {
	rate.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO tax_rate (id, name, rate_bps, active)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at, updated_at`,
		rate.ID, rate.Name, rate.RateBps, rate.Active).
		Scan(&rate.CreatedAt, &rate.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Rate, error) {
	return r.scanRate(r.conn(ctx).QueryRow(ctx, `SELECT `+rateCols+` FROM tax_rate WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, rate *Rate) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE tax_rate SET name=$2, rate_bps=$3, active=$4, updated_at=NOW()
		WHERE id = $1`,
		rate.ID, rate.Name, rate.RateBps, rate.Active)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM tax_rate WHERE id = $1`, id)
	return err
}

func (r *repoPG) list(ctx context.Context, query string) ([]*Rate, error) {
	rows, err := r.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Rate
	for rows.Next() {
		rate, err := r.scanRate(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rate)
	}
	return items, nil
}

func (r *repoPG) List(ctx context.Context) ([]*Rate, error) {
	return r.list(ctx, `SELECT `+rateCols+` FROM tax_rate ORDER BY name`)
}

func (r *repoPG) ListActive(ctx context.Context) ([]*Rate, error) {
	return r.list(ctx, `SELECT `+rateCols+` FROM tax_rate WHERE active = TRUE ORDER BY name`)
}
