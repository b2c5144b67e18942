package booking

import (
	"context"
	"fmt"
	"time"

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

const bookingCols = `id, customer_id, therapist_id, package_id, guest_name, guest_email, guest_phone,
	to_char(date, 'YYYY-MM-DD'), start_time, duration_minutes, status,
	price_cents, tax_cents, total_cents, payment_intent_id, notes, created_at, updated_at`

func (r *repoPG) scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.CustomerID, &b.TherapistID, &b.PackageID, &b.GuestName, &b.GuestEmail, &b.GuestPhone,
		&b.Date, &b.StartTime, &b.DurationMinutes, &b.Status,
		&b.PriceCents, &b.TaxCents, &b.TotalCents, &b.PaymentIntentID, &b.Notes, &b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func (r *repoPG) Create(ctx context.Context, b *Booking) error {
	b.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO booking (id, customer_id, therapist_id, package_id, guest_name, guest_email, guest_phone,
			date, start_time, duration_minutes, status, price_cents, tax_cents, total_cents, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8::date,$9,$10,$11,$12,$13,$14,$15)
		RETURNING created_at, updated_at`,
		b.ID, b.CustomerID, b.TherapistID, b.PackageID, b.GuestName, b.GuestEmail, b.GuestPhone,
		b.Date, b.StartTime, b.DurationMinutes, b.Status, b.PriceCents, b.TaxCents, b.TotalCents, b.Notes).
		Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return r.scanBooking(r.conn(ctx).QueryRow(ctx, `SELECT `+bookingCols+` FROM booking WHERE id = $1`, id))
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE booking SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE booking SET payment_intent_id=$2, updated_at=NOW() WHERE id = $1`, id, intentID)
	return err
}

func (r *repoPG) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Booking, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM booking WHERE customer_id = $1`, customerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+bookingCols+` FROM booking WHERE customer_id = $1
		ORDER BY date DESC, start_time DESC LIMIT $2 OFFSET $3`, customerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return r.collect(rows, total)
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Booking, int, error) {
	query := `SELECT ` + bookingCols + ` FROM booking WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM booking WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["therapist_id"]; ok {
		query += fmt.Sprintf(` AND therapist_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND therapist_id = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["date"]; ok {
		query += fmt.Sprintf(` AND date = $%d::date`, idx)
		countQuery += fmt.Sprintf(` AND date = $%d::date`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["date_from"]; ok {
		query += fmt.Sprintf(` AND date >= $%d::date`, idx)
		countQuery += fmt.Sprintf(` AND date >= $%d::date`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["date_to"]; ok {
		query += fmt.Sprintf(` AND date <= $%d::date`, idx)
		countQuery += fmt.Sprintf(` AND date <= $%d::date`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY date DESC, start_time DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return r.collect(rows, total)
}

func (r *repoPG) collect(rows pgx.Rows, total int) ([]*Booking, int, error) {
	defer rows.Close()
	var items []*Booking
	for rows.Next() {
		b, err := r.scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListActiveForDay(ctx context.Context, therapistIDs []uuid.UUID, date string) ([]*Booking, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+bookingCols+` FROM booking
		WHERE therapist_id = ANY($1) AND date = $2::date AND status IN ('pending', 'confirmed')
		ORDER BY start_time`, therapistIDs, date)
	if err != nil {
		return nil, err
	}
	items, _, err := r.collect(rows, 0)
	return items, err
}

func (r *repoPG) LockDay(ctx context.Context, therapistID uuid.UUID, date string) error {
	return db.AdvisoryLock(ctx, r.conn(ctx), therapistID.String()+"|"+date)
}

func (r *repoPG) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE booking SET status = 'completed', updated_at = NOW()
		WHERE status = 'confirmed'
		  AND date + start_time::time + make_interval(mins => duration_minutes) <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
