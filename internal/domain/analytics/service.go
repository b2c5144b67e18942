package analytics

import (
	"context"
	"fmt"
	"time"
)

const defaultTopLimit = 5

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func validateRange(r Range) error {
	for _, d := range []string{r.From, r.To} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", d)
		}
	}
	if r.From != "" && r.To != "" && r.From > r.To {
		return fmt.Errorf("from date %s is after to date %s", r.From, r.To)
	}
	return nil
}

func (s *Service) Summary(ctx context.Context, r Range) (*Summary, error) {
	if err := validateRange(r); err != nil {
		return nil, err
	}
	return s.repo.Summary(ctx, r)
}

func (s *Service) RevenueByDay(ctx context.Context, r Range) ([]*RevenuePoint, error) {
	if err := validateRange(r); err != nil {
		return nil, err
	}
	return s.repo.RevenueByDay(ctx, r)
}

func (s *Service) TopPackages(ctx context.Context, r Range, limit int) ([]*PackageStat, error) {
	if err := validateRange(r); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTopLimit
	}
	return s.repo.TopPackages(ctx, r, limit)
}

func (s *Service) TherapistUtilization(ctx context.Context, r Range) ([]*TherapistStat, error) {
	if err := validateRange(r); err != nil {
		return nil, err
	}
	return s.repo.TherapistUtilization(ctx, r)
}
