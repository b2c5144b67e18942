package packages

import (
	"context"
	"fmt"

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

const pkgCols = `id, category_id, name, description, image_url, price_cents, duration_minutes, active, created_at, updated_at`

func (r *repoPG) scanPackage(row pgx.Row) (*Package, error) {
	var pkg Package
	err := row.Scan(&pkg.ID, &pkg.CategoryID, &pkg.Name, &pkg.Description, &pkg.ImageURL,
		&pkg.PriceCents, &pkg.DurationMinutes, &pkg.Active, &pkg.CreatedAt, &pkg.UpdatedAt)
	return &pkg, err
}

func (r *repoPG) Create(ctx context.Context, pkg *Package) error {
	pkg.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO package (id, category_id, name, description, image_url, price_cents, duration_minutes, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at`,
		pkg.ID, pkg.CategoryID, pkg.Name, pkg.Description, pkg.ImageURL,
		pkg.PriceCents, pkg.DurationMinutes, pkg.Active).
		Scan(&pkg.CreatedAt, &pkg.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Package, error) {
	return r.scanPackage(r.conn(ctx).QueryRow(ctx, `SELECT `+pkgCols+` FROM package WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, pkg *Package) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE package SET category_id=$2, name=$3, description=$4, image_url=$5,
			price_cents=$6, duration_minutes=$7, active=$8, updated_at=NOW()
		WHERE id = $1`,
		pkg.ID, pkg.CategoryID, pkg.Name, pkg.Description, pkg.ImageURL,
		pkg.PriceCents, pkg.DurationMinutes, pkg.Active)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM package WHERE id = $1`, id)
	return err
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Package, int, error) {
	query := `SELECT ` + pkgCols + ` FROM package WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM package WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["category_id"]; ok {
		query += fmt.Sprintf(` AND category_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND category_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["active"]; ok {
		query += fmt.Sprintf(` AND active = $%d`, idx)
		countQuery += fmt.Sprintf(` AND active = $%d`, idx)
		args = append(args, p == "true")
		idx++
	}
	if p, ok := params["name"]; ok {
		query += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		countQuery += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		args = append(args, "%"+p+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Package
	for rows.Next() {
		pkg, err := r.scanPackage(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, pkg)
	}
	return items, total, nil
}
