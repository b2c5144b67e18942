package analytics

import "context"

// Range bounds a report to [From, To] dates, both "YYYY-MM-DD". Zero values
// mean unbounded.
type Range struct {
	From string
	To   string
}

type Repository interface {
	Summary(ctx context.Context, r Range) (*Summary, error)
	RevenueByDay(ctx context.Context, r Range) ([]*RevenuePoint, error)
	TopPackages(ctx context.Context, r Range, limit int) ([]*PackageStat, error)
	TherapistUtilization(ctx context.Context, r Range) ([]*TherapistStat, error)
}
