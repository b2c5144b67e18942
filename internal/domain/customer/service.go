package customer

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/serenity/spa/internal/platform/auth"
	"github.com/serenity/spa/internal/platform/db"
)

var (
	// ErrInvalidCredentials covers both unknown emails and wrong passwords
	// so login failures do not reveal which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when registering with an email already in use.
	ErrEmailTaken = errors.New("an account with this email already exists")

	// ErrNotFound is returned when no account matches the lookup.
	ErrNotFound = errors.New("account not found")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a customer account with a hashed password.
func (s *Service) Register(ctx context.Context, name, email, password string, phone *string) (*Customer, error) {
	return s.create(ctx, name, email, password, phone, auth.RoleCustomer)
}

// CreateAdmin creates a back-office account. Exposed through the CLI only.
func (s *Service) CreateAdmin(ctx context.Context, name, email, password string) (*Customer, error) {
	return s.create(ctx, name, email, password, nil, auth.RoleAdmin)
}

func (s *Service) create(ctx context.Context, name, email, password string, phone *string, role string) (*Customer, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	cust := &Customer{
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Phone:        phone,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.Create(ctx, cust); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return cust, nil
}

// Authenticate verifies credentials and returns the account. Both unknown
// emails and bad passwords produce ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Customer, error) {
	cust, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(cust.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return cust, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Customer, error) {
	cust, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return cust, nil
}

// UpdateProfile changes name, email and phone. Password changes go through
// ChangePassword.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, name, email string, phone *string) (*Customer, error) {
	cust, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != "" {
		cust.Name = strings.TrimSpace(name)
	}
	if email != "" {
		cust.Email = strings.ToLower(strings.TrimSpace(email))
	}
	if phone != nil {
		cust.Phone = phone
	}
	if err := s.repo.Update(ctx, cust); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return cust, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, current, updated string) error {
	cust, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(cust.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	hash, err := auth.HashPassword(updated)
	if err != nil {
		return err
	}
	cust.PasswordHash = hash
	return s.repo.Update(ctx, cust)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Customer, int, error) {
	return s.repo.List(ctx, limit, offset)
}
