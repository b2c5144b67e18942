package category

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/serenity/spa/internal/platform/db"
)

// ErrDuplicateSlug is returned when a category with the same slug exists.
var ErrDuplicateSlug = errors.New("category with this slug already exists")

// ErrNotFound is returned when no category matches the lookup.
var ErrNotFound = errors.New("category not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a display name.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugInvalidChars.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func (s *Service) Create(ctx context.Context, cat *Category) error {
	if strings.TrimSpace(cat.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if cat.Slug == "" {
		cat.Slug = Slugify(cat.Name)
	}
	if cat.Slug == "" {
		return fmt.Errorf("name must contain at least one alphanumeric character")
	}
	if err := s.repo.Create(ctx, cat); err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return err
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Category, error) {
	cat, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return cat, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	cat, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return cat, nil
}

func (s *Service) Update(ctx context.Context, cat *Category) error {
	if strings.TrimSpace(cat.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if cat.Slug == "" {
		cat.Slug = Slugify(cat.Name)
	}
	if err := s.repo.Update(ctx, cat); err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicateSlug
		}
		return err
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Category, int, error) {
	return s.repo.List(ctx, activeOnly, limit, offset)
}
