package tax

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/serenity/spa/internal/platform/db"
)

// ErrNotFound is returned when no tax rate matches the lookup.
var ErrNotFound = errors.New("tax rate not found")

// A rate above 100% is a data-entry mistake, not a real tax.
const maxRateBps = 10000

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) validate(rate *Rate) error {
	if strings.TrimSpace(rate.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if rate.RateBps < 0 || rate.RateBps > maxRateBps {
		return fmt.Errorf("rate_bps must be between 0 and %d, got %d", maxRateBps, rate.RateBps)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, rate *Rate) error {
	if err := s.validate(rate); err != nil {
		return err
	}
	return s.repo.Create(ctx, rate)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Rate, error) {
	rate, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rate, nil
}

func (s *Service) Update(ctx context.Context, rate *Rate) error {
	if err := s.validate(rate); err != nil {
		return err
	}
	return s.repo.Update(ctx, rate)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Rate, error) {
	return s.repo.List(ctx)
}

// TotalBps sums the active tax rates in basis points.
func (s *Service) TotalBps(ctx context.Context) (int, error) {
	rates, err := s.repo.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, rate := range rates {
		total += rate.RateBps
	}
	return total, nil
}

// Apply computes the tax on an amount using integer basis-point math,
// truncating fractional cents.
func Apply(amountCents int64, totalBps int) int64 {
	return amountCents * int64(totalBps) / 10000
}
