package therapist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/serenity/spa/internal/platform/db"
)

// ErrNotFound is returned when no therapist matches the lookup.
var ErrNotFound = errors.New("therapist not found")

// AvailabilityChecker filters therapists down to those free for a requested
// slot. Implemented by the booking service; durationMinutes of zero and a nil
// package id mean "resolve the duration from defaults".
type AvailabilityChecker interface {
	AvailableTherapists(ctx context.Context, ids []uuid.UUID, date, start string, durationMinutes int, packageID uuid.UUID) ([]uuid.UUID, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, th *Therapist) error {
	if strings.TrimSpace(th.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return s.repo.Create(ctx, th)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Therapist, error) {
	th, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return th, nil
}

func (s *Service) Update(ctx context.Context, th *Therapist) error {
	if strings.TrimSpace(th.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return s.repo.Update(ctx, th)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Therapist, int, error) {
	return s.repo.List(ctx, activeOnly, limit, offset)
}

// ListAvailable returns active therapists free for the requested slot,
// preserving the catalog ordering.
func (s *Service) ListAvailable(ctx context.Context, checker AvailabilityChecker, date, start string, durationMinutes int, packageID uuid.UUID, limit, offset int) ([]*Therapist, int, error) {
	all, _, err := s.repo.List(ctx, true, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]uuid.UUID, len(all))
	byID := make(map[uuid.UUID]*Therapist, len(all))
	for i, th := range all {
		ids[i] = th.ID
		byID[th.ID] = th
	}
	freeIDs, err := checker.AvailableTherapists(ctx, ids, date, start, durationMinutes, packageID)
	if err != nil {
		return nil, 0, err
	}
	free := make([]*Therapist, 0, len(freeIDs))
	for _, id := range freeIDs {
		free = append(free, byID[id])
	}
	return free, len(free), nil
}
