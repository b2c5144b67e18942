package customer

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

const custCols = `id, name, email, phone, password_hash, role, created_at, updated_at`

func (r *repoPG) scanCustomer(row pgx.Row) (*Customer, error) {
	var cust Customer
	err := row.Scan(&cust.ID, &cust.Name, &cust.Email, &cust.Phone,
		&cust.PasswordHash, &cust.Role, &cust.CreatedAt, &cust.UpdatedAt)
	return &cust, err
}

func (r *repoPG) Create(ctx context.Context, cust *Customer) error {
	cust.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO user_account (id, name, email, phone, password_hash, role)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`,
		cust.ID, cust.Name, cust.Email, cust.Phone, cust.PasswordHash, cust.Role).
		Scan(&cust.CreatedAt, &cust.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return r.scanCustomer(r.conn(ctx).QueryRow(ctx, `SELECT `+custCols+` FROM user_account WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Customer, error) {
	return r.scanCustomer(r.conn(ctx).QueryRow(ctx, `SELECT `+custCols+` FROM user_account WHERE lower(email) = lower($1)`, email))
}

func (r *repoPG) Update(ctx context.Context, cust *Customer) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE user_account SET name=$2, email=$3, phone=$4, password_hash=$5, updated_at=NOW()
		WHERE id = $1`,
		cust.ID, cust.Name, cust.Email, cust.Phone, cust.PasswordHash)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Customer, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM user_account`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+custCols+` FROM user_account ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Customer
	for rows.Next() {
		cust, err := r.scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, cust)
	}
	return items, total, nil
}
