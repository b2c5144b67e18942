package category

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

const catCols = `id, name, slug, description, image_url, sort_order, active, created_at, updated_at`

func (r *repoPG) scanCategory(row pgx.Row) (*Category, error) {
	var cat Category
	err := row.Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.Description, &cat.ImageURL,
		&cat.SortOrder, &cat.Active, &cat.CreatedAt, &cat.UpdatedAt)
	return &cat, err
}

func (r *repoPG) Create(ctx context.Context, cat *Category) error {
	cat.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO category (id, name, slug, description, image_url, sort_order, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		cat.ID, cat.Name, cat.Slug, cat.Description, cat.ImageURL, cat.SortOrder, cat.Active).
		Scan(&cat.CreatedAt, &cat.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	return r.scanCategory(r.conn(ctx).QueryRow(ctx, `SELECT `+catCols+` FROM category WHERE id = $1`, id))
}

func (r *repoPG) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	return r.scanCategory(r.conn(ctx).QueryRow(ctx, `SELECT `+catCols+` FROM category WHERE slug = $1`, slug))
}

func (r *repoPG) Update(ctx context.Context, cat *Category) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE category SET name=$2, slug=$3, description=$4, image_url=$5, sort_order=$6, active=$7, updated_at=NOW()
		WHERE id = $1`,
		cat.ID, cat.Name, cat.Slug, cat.Description, cat.ImageURL, cat.SortOrder, cat.Active)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM category WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Category, int, error) {
	where := ``
	if activeOnly {
		where = ` WHERE active = TRUE`
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM category`+where).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+catCols+` FROM category`+where+` ORDER BY sort_order, name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Category
	for rows.Next() {
		cat, err := r.scanCategory(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, cat)
	}
	return items, total, nil
}
