package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/serenity/spa/internal/events"
	"github.com/serenity/spa/internal/platform/clock"
	"github.com/serenity/spa/internal/platform/db"
	"github.com/serenity/spa/internal/platform/payments"
)

// PackageInfo is the slice of the catalog the booking flow needs.
type PackageInfo struct {
	ID              uuid.UUID
	Name            string
	PriceCents      int64
	DurationMinutes *int
	Active          bool
}

// PackageResolver looks up packages for pricing and duration defaults.
type PackageResolver interface {
	ResolvePackage(ctx context.Context, id uuid.UUID) (*PackageInfo, error)
}

// TaxCalculator supplies the combined active tax rate in basis points.
type TaxCalculator interface {
	TotalBps(ctx context.Context) (int, error)
}

// TxRunner executes fn inside a database transaction.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// PassthroughTx runs fn without a transaction. For tests and non-pg repos.
func PassthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Service struct {
	repo      Repository
	pkgs      PackageResolver
	taxes     TaxCalculator
	charger   payments.Charger
	publisher events.Publisher
	clock     clock.Clock
	currency  string
	runTx     TxRunner
}

func NewService(repo Repository, pkgs PackageResolver, taxes TaxCalculator, charger payments.Charger,
	publisher events.Publisher, clk clock.Clock, currency string, runTx TxRunner) *Service {
	return &Service{
		repo:      repo,
		pkgs:      pkgs,
		taxes:     taxes,
		charger:   charger,
		publisher: publisher,
		clock:     clk,
		currency:  currency,
		runTx:     runTx,
	}
}

// CheckoutRequest is the validated input to Checkout. EndTime and
// DurationMinutes are alternative ways to size the session; both unset means
// the package default applies. A nil TherapistID books the slot unassigned.
type CheckoutRequest struct {
	CustomerID      *uuid.UUID
	TherapistID     *uuid.UUID
	PackageID       uuid.UUID
	GuestName       string
	GuestEmail      string
	GuestPhone      *string
	Date            string
	StartTime       string
	EndTime         string
	DurationMinutes *int
	Notes           *string
}

// CheckoutResult carries the created booking plus the client secret for
// collecting payment in the browser, when payments are enabled.
type CheckoutResult struct {
	Booking             *Booking
	PaymentClientSecret string
}

// Checkout reserves a slot. When a therapist is chosen, the conflict check
// and the insert run in one transaction holding an advisory lock on the
// therapist's day, so two concurrent requests for the same slot cannot both
// succeed.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return nil, ErrInvalidDate
	}
	start, err := ParseClock(req.StartTime)
	if err != nil {
		return nil, err
	}
	if req.PackageID == uuid.Nil {
		return nil, fmt.Errorf("package_id is required")
	}
	explicit := 0
	if req.DurationMinutes != nil {
		// An explicitly supplied non-positive duration is an input error,
		// never a fallback to the default.
		if *req.DurationMinutes <= 0 {
			return nil, ErrInvalidDuration
		}
		explicit = *req.DurationMinutes
	}

	pkg, err := s.pkgs.ResolvePackage(ctx, req.PackageID)
	if err != nil {
		return nil, err
	}
	pkgDefault := 0
	if pkg.DurationMinutes != nil {
		pkgDefault = *pkg.DurationMinutes
	}
	duration, err := ResolveDuration(explicit, req.StartTime, req.EndTime, pkgDefault)
	if err != nil {
		return nil, err
	}

	taxBps, err := s.taxes.TotalBps(ctx)
	if err != nil {
		return nil, err
	}
	taxCents := pkg.PriceCents * int64(taxBps) / 10000

	b := &Booking{
		CustomerID:      req.CustomerID,
		TherapistID:     req.TherapistID,
		PackageID:       req.PackageID,
		GuestName:       req.GuestName,
		GuestEmail:      req.GuestEmail,
		GuestPhone:      req.GuestPhone,
		Date:            req.Date,
		StartTime:       FormatClock(start),
		DurationMinutes: duration,
		Status:          StatusPending,
		PriceCents:      pkg.PriceCents,
		TaxCents:        taxCents,
		TotalCents:      pkg.PriceCents + taxCents,
		Notes:           req.Notes,
	}

	err = s.runTx(ctx, func(txCtx context.Context) error {
		// Unassigned bookings have no therapist to conflict with; only an
		// assigned slot needs the day lock and overlap check.
		if req.TherapistID != nil {
			if err := s.repo.LockDay(txCtx, *req.TherapistID, req.Date); err != nil {
				return err
			}
			existing, err := s.repo.ListActiveForDay(txCtx, []uuid.UUID{*req.TherapistID}, req.Date)
			if err != nil {
				return err
			}
			requested := Interval{Start: start, End: start + duration}
			if Conflicts(requested, BookedIntervals(existing)) {
				return ErrSlotUnavailable
			}
		}
		return s.repo.Create(txCtx, b)
	})
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{Booking: b}
	intent, err := s.charger.CreateIntent(ctx, b.TotalCents, s.currency, b.ID.String())
	if err != nil {
		// The slot is held; payment can be retried out of band.
		log.Error().Err(err).Str("booking_id", b.ID.String()).Msg("payment intent creation failed")
	} else if intent != nil {
		result.PaymentClientSecret = intent.ClientSecret
		if err := s.repo.SetPaymentIntent(ctx, b.ID, intent.ID); err != nil {
			log.Error().Err(err).Str("booking_id", b.ID.String()).Msg("failed to record payment intent")
		}
	}

	s.publish(ctx, events.TypeBookingCreated, b)
	return result, nil
}

// AvailableTherapists filters candidate therapists down to those free for
// the slot, preserving input order. A zero duration with a package id uses
// the package's default; with neither, the standard session length applies.
func (s *Service) AvailableTherapists(ctx context.Context, ids []uuid.UUID, date, startStr string, durationMinutes int, packageID uuid.UUID) ([]uuid.UUID, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, ErrInvalidDate
	}
	start, err := ParseClock(startStr)
	if err != nil {
		return nil, err
	}
	if durationMinutes == 0 && packageID != uuid.Nil {
		pkg, err := s.pkgs.ResolvePackage(ctx, packageID)
		if err != nil {
			return nil, err
		}
		if pkg.DurationMinutes != nil {
			durationMinutes = *pkg.DurationMinutes
		}
	}
	duration, err := ResolveDuration(durationMinutes, startStr, "", 0)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	bookings, err := s.repo.ListActiveForDay(ctx, ids, date)
	if err != nil {
		return nil, err
	}
	busy := make(map[uuid.UUID][]Interval)
	for _, b := range bookings {
		if b.TherapistID == nil {
			continue
		}
		bStart, err := ParseClock(b.StartTime)
		if err != nil {
			continue
		}
		busy[*b.TherapistID] = append(busy[*b.TherapistID], Interval{Start: bStart, End: bStart + b.DurationMinutes})
	}

	requested := Interval{Start: start, End: start + duration}
	var free []uuid.UUID
	for _, id := range ids {
		if !Conflicts(requested, busy[id]) {
			free = append(free, id)
		}
	}
	return free, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// UpdateStatus moves a booking through its lifecycle, enforcing allowed
// transitions, and emits the matching event.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Booking, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, b.Status, status)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	b.Status = status

	eventType := events.TypeBookingConfirmed
	switch status {
	case StatusCancelled:
		eventType = events.TypeBookingCancelled
	case StatusCompleted:
		eventType = events.TypeBookingCompleted
	}
	s.publish(ctx, eventType, b)
	return b, nil
}

// Cancel is the customer-facing path; it only cancels the caller's own
// booking.
func (s *Service) Cancel(ctx context.Context, id, customerID uuid.UUID) (*Booking, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.CustomerID == nil || *b.CustomerID != customerID {
		return nil, ErrNotFound
	}
	return s.UpdateStatus(ctx, id, StatusCancelled)
}

func (s *Service) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Booking, int, error) {
	return s.repo.ListByCustomer(ctx, customerID, limit, offset)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Booking, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}

// CompleteElapsed marks confirmed bookings that have ended as completed.
// Called periodically by the scheduler.
func (s *Service) CompleteElapsed(ctx context.Context) (int64, error) {
	return s.repo.CompleteElapsed(ctx, s.clock.Now())
}

func (s *Service) publish(ctx context.Context, eventType string, b *Booking) {
	event := events.BookingEvent{
		Type:       eventType,
		BookingID:  b.ID.String(),
		PackageID:  b.PackageID.String(),
		Date:       b.Date,
		Time:       b.StartTime,
		Status:     b.Status,
		OccurredAt: s.clock.Now(),
	}
	if b.TherapistID != nil {
		event.TherapistID = b.TherapistID.String()
	}
	if b.CustomerID != nil {
		event.CustomerID = b.CustomerID.String()
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Error().Err(err).Str("booking_id", event.BookingID).Str("type", eventType).Msg("failed to publish booking event")
	}
}
