package packages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/serenity/spa/internal/platform/db"
)

// ErrNotFound is returned when no package matches the lookup.
var ErrNotFound = errors.New("package not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) validate(pkg *Package) error {
	if strings.TrimSpace(pkg.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if pkg.CategoryID == uuid.Nil {
		return fmt.Errorf("category_id is required")
	}
	if pkg.PriceCents < 0 {
		return fmt.Errorf("price_cents must not be negative")
	}
	if pkg.DurationMinutes != nil && *pkg.DurationMinutes <= 0 {
		return fmt.Errorf("duration_minutes must be positive when set")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, pkg *Package) error {
	if err := s.validate(pkg); err != nil {
		return err
	}
	return s.repo.Create(ctx, pkg)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Package, error) {
	pkg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return pkg, nil
}

func (s *Service) Update(ctx context.Context, pkg *Package) error {
	if err := s.validate(pkg); err != nil {
		return err
	}
	return s.repo.Update(ctx, pkg)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Package, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}
