package analytics

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

// rangeClause builds an AND-able date filter. startIdx is the next free
// placeholder index.
func rangeClause(r Range, startIdx int) (string, []interface{}) {
	clause := ``
	var args []interface{}
	idx := startIdx
	if r.From != "" {
		clause += fmt.Sprintf(` AND date >= $%d::date`, idx)
		args = append(args, r.From)
		idx++
	}
	if r.To != "" {
		clause += fmt.Sprintf(` AND date <= $%d::date`, idx)
		args = append(args, r.To)
	}
	return clause, args
}

func (r *repoPG) Summary(ctx context.Context, rng Range) (*Summary, error) {
	clause, args := rangeClause(rng, 1)
	var s Summary
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'confirmed'),
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COALESCE(SUM(total_cents) FILTER (WHERE status IN ('confirmed', 'completed')), 0),
			COALESCE(SUM(tax_cents) FILTER (WHERE status IN ('confirmed', 'completed')), 0)
		FROM booking WHERE 1=1`+clause, args...).
		Scan(&s.TotalBookings, &s.ConfirmedBookings, &s.CancelledBookings,
			&s.CompletedBookings, &s.RevenueCents, &s.TaxCollectedCents)
	if err != nil {
		return nil, err
	}
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_account WHERE role = 'customer'`).Scan(&s.Customers); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) RevenueByDay(ctx context.Context, rng Range) ([]*RevenuePoint, error) {
	clause, args := rangeClause(rng, 1)
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(date, 'YYYY-MM-DD'), COUNT(*), COALESCE(SUM(total_cents), 0)
		FROM booking
		WHERE status IN ('confirmed', 'completed')`+clause+`
		GROUP BY date ORDER BY date`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var points []*RevenuePoint
	for rows.Next() {
		var p RevenuePoint
		if err := rows.Scan(&p.Date, &p.Bookings, &p.RevenueCents); err != nil {
			return nil, err
		}
		points = append(points, &p)
	}
	return points, rows.Err()
}

func (r *repoPG) TopPackages(ctx context.Context, rng Range, limit int) ([]*PackageStat, error) {
	clause, args := rangeClause(rng, 2)
	args = append([]interface{}{limit}, args...)
	rows, err := r.pool.Query(ctx, `
		SELECT p.id::text, p.name, COUNT(b.id), COALESCE(SUM(b.total_cents), 0)
		FROM booking b
		JOIN package p ON p.id = b.package_id
		WHERE b.status IN ('confirmed', 'completed')`+clause+`
		GROUP BY p.id, p.name
		ORDER BY COUNT(b.id) DESC, SUM(b.total_cents) DESC
		LIMIT $1`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stats []*PackageStat
	for rows.Next() {
		var s PackageStat
		if err := rows.Scan(&s.PackageID, &s.Name, &s.Bookings, &s.RevenueCents); err != nil {
			return nil, err
		}
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}

func (r *repoPG) TherapistUtilization(ctx context.Context, rng Range) ([]*TherapistStat, error) {
	clause, args := rangeClause(rng, 1)
	rows, err := r.pool.Query(ctx, `
		SELECT t.id::text, t.name, COUNT(b.id), COALESCE(SUM(b.duration_minutes), 0)
		FROM therapist t
		LEFT JOIN booking b ON b.therapist_id = t.id
			AND b.status IN ('confirmed', 'completed')`+clause+`
		GROUP BY t.id, t.name
		ORDER BY COALESCE(SUM(b.duration_minutes), 0) DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stats []*TherapistStat
	for rows.Next() {
		var s TherapistStat
		if err := rows.Scan(&s.TherapistID, &s.Name, &s.Bookings, &s.BookedMinutes); err != nil {
			return nil, err
		}
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}
