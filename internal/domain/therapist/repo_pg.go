package therapist

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

const thCols = `id, name, title, bio, photo_url, specialties, active, created_at, updated_at`

func (r *repoPG) scanTherapist(row pgx.Row) (*Therapist, error) {
	var th Therapist
	err := row.Scan(&th.ID, &th.Name, &th.Title, &th.Bio, &th.PhotoURL,
		&th.Specialties, &th.Active, &th.CreatedAt, &th.UpdatedAt)
	return &th, err
}

func (r *repoPG) Create(ctx context.Context, th *Therapist) error {
	th.ID = uuid.New()
	if th.Specialties == nil {
		th.Specialties = []string{}
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO therapist (id, name, title, bio, photo_url, specialties, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at`,
		th.ID, th.Name, th.Title, th.Bio, th.PhotoURL, th.Specialties, th.Active).
		Scan(&th.CreatedAt, &th.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Therapist, error) {
	return r.scanTherapist(r.conn(ctx).QueryRow(ctx, `SELECT `+thCols+` FROM therapist WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, th *Therapist) error {
	if th.Specialties == nil {
		th.Specialties = []string{}
	}
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE therapist SET name=$2, title=$3, bio=$4, photo_url=$5, specialties=$6, active=$7, updated_at=NOW()
		WHERE id = $1`,
		th.ID, th.Name, th.Title, th.Bio, th.PhotoURL, th.Specialties, th.Active)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM therapist WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Therapist, int, error) {
	where := ``
	if activeOnly {
		where = ` WHERE active = TRUE`
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM therapist`+where).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+thCols+` FROM therapist`+where+` ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Therapist
	for rows.Next() {
		th, err := r.scanTherapist(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, th)
	}
	return items, total, nil
}
