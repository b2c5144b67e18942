package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/serenity/spa/internal/events"
	"github.com/serenity/spa/internal/platform/clock"
	"github.com/serenity/spa/internal/platform/payments"
)

type mockRepo struct {
	bookings map[uuid.UUID]*Booking
	locked   []string
}

func newMockRepo() *mockRepo {
	return &mockRepo{bookings: make(map[uuid.UUID]*Booking)}
}

func (m *mockRepo) Create(_ context.Context, b *Booking) error {
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *b
	return &cp, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	b, ok := m.bookings[id]
	if !ok {
		return pgx.ErrNoRows
	}
	b.Status = status
	return nil
}

func (m *mockRepo) SetPaymentIntent(_ context.Context, id uuid.UUID, intentID string) error {
	if b, ok := m.bookings[id]; ok {
		b.PaymentIntentID = &intentID
	}
	return nil
}

func (m *mockRepo) ListByCustomer(_ context.Context, customerID uuid.UUID, limit, offset int) ([]*Booking, int, error) {
	var items []*Booking
	for _, b := range m.bookings {
		if b.CustomerID != nil && *b.CustomerID == customerID {
			items = append(items, b)
		}
	}
	return items, len(items), nil
}

func (m *mockRepo) Search(_ context.Context, params map[string]string, limit, offset int) ([]*Booking, int, error) {
	var items []*Booking
	for _, b := range m.bookings {
		if s, ok := params["status"]; ok && b.Status != s {
			continue
		}
		items = append(items, b)
	}
	return items, len(items), nil
}

func (m *mockRepo) ListActiveForDay(_ context.Context, therapistIDs []uuid.UUID, date string) ([]*Booking, error) {
	wanted := make(map[uuid.UUID]bool, len(therapistIDs))
	for _, id := range therapistIDs {
		wanted[id] = true
	}
	var items []*Booking
	for _, b := range m.bookings {
		if b.TherapistID != nil && wanted[*b.TherapistID] && b.Date == date &&
			(b.Status == StatusPending || b.Status == StatusConfirmed) {
			items = append(items, b)
		}
	}
	return items, nil
}

func (m *mockRepo) LockDay(_ context.Context, therapistID uuid.UUID, date string) error {
	m.locked = append(m.locked, therapistID.String()+"|"+date)
	return nil
}

func (m *mockRepo) CompleteElapsed(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, b := range m.bookings {
		if b.Status != StatusConfirmed {
			continue
		}
		start, err := ParseClock(b.StartTime)
		if err != nil {
			continue
		}
		day, err := time.Parse("2006-01-02", b.Date)
		if err != nil {
			continue
		}
		end := day.Add(time.Duration(start+b.DurationMinutes) * time.Minute)
		if !end.After(now) {
			b.Status = StatusCompleted
			n++
		}
	}
	return n, nil
}

type mockPkgs struct {
	packages map[uuid.UUID]*PackageInfo
}

func (m *mockPkgs) ResolvePackage(_ context.Context, id uuid.UUID) (*PackageInfo, error) {
	pkg, ok := m.packages[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return pkg, nil
}

type fixedTax struct{ bps int }

func (t fixedTax) TotalBps(_ context.Context) (int, error) { return t.bps, nil }

type capturePublisher struct {
	published []events.BookingEvent
}

func (p *capturePublisher) Publish(_ context.Context, event events.BookingEvent) error {
	p.published = append(p.published, event)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

type testEnv struct {
	repo      *mockRepo
	pkgs      *mockPkgs
	publisher *capturePublisher
	svc       *Service

	therapistID uuid.UUID
	packageID   uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := newMockRepo()
	packageID := uuid.New()
	duration := 90
	pkgs := &mockPkgs{packages: map[uuid.UUID]*PackageInfo{
		packageID: {ID: packageID, Name: "Hot Stone Massage", PriceCents: 12000, DurationMinutes: &duration, Active: true},
	}}
	publisher := &capturePublisher{}
	clk := clock.NewFixed(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC))
	svc := NewService(repo, pkgs, fixedTax{bps: 875}, payments.NewDisabled(), publisher, clk, "usd", PassthroughTx)
	return &testEnv{
		repo:        repo,
		pkgs:        pkgs,
		publisher:   publisher,
		svc:         svc,
		therapistID: uuid.New(),
		packageID:   packageID,
	}
}

func (env *testEnv) checkoutReq() CheckoutRequest {
	return CheckoutRequest{
		TherapistID: &env.therapistID,
		PackageID:   env.packageID,
		GuestName:   "Anna Lee",
		GuestEmail:  "anna@example.com",
		Date:        "2026-09-01",
		StartTime:   "14:00",
	}
}

func minutes(n int) *int { return &n }

func TestCheckout_CreatesPendingBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Checkout(ctx, env.checkoutReq())
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	b := result.Booking
	if b.Status != StatusPending {
		t.Errorf("status = %q, want %q", b.Status, StatusPending)
	}
	if b.DurationMinutes != 90 {
		t.Errorf("duration = %d, want package default 90", b.DurationMinutes)
	}
	if b.PriceCents != 12000 {
		t.Errorf("price = %d, want 12000", b.PriceCents)
	}
	if b.TaxCents != 1050 {
		t.Errorf("tax = %d, want 1050", b.TaxCents)
	}
	if b.TotalCents != 13050 {
		t.Errorf("total = %d, want 13050", b.TotalCents)
	}
	if len(env.repo.locked) != 1 {
		t.Errorf("expected the therapist's day to be locked once, got %v", env.repo.locked)
	}
	if len(env.publisher.published) != 1 || env.publisher.published[0].Type != events.TypeBookingCreated {
		t.Errorf("expected one booking.created event, got %v", env.publisher.published)
	}
}

func TestCheckout_ExplicitDurationWins(t *testing.T) {
	env := newTestEnv(t)
	req := env.checkoutReq()
	req.DurationMinutes = minutes(30)

	result, err := env.svc.Checkout(context.Background(), req)
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if result.Booking.DurationMinutes != 30 {
		t.Errorf("duration = %d, want 30", result.Booking.DurationMinutes)
	}
}

func TestCheckout_EndTimeDerivesDuration(t *testing.T) {
	env := newTestEnv(t)
	req := env.checkoutReq()
	req.EndTime = "15:15"

	result, err := env.svc.Checkout(context.Background(), req)
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if result.Booking.DurationMinutes != 75 {
		t.Errorf("duration = %d, want 75", result.Booking.DurationMinutes)
	}
}

func TestCheckout_InvalidInputs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*CheckoutRequest)
		wantErr error
	}{
		{"bad time", func(r *CheckoutRequest) { r.StartTime = "2pm" }, ErrInvalidTimeFormat},
		{"bad hour", func(r *CheckoutRequest) { r.StartTime = "25:00" }, ErrInvalidTimeFormat},
		{"bad date", func(r *CheckoutRequest) { r.Date = "01-09-2026" }, ErrInvalidDate},
		{"negative duration", func(r *CheckoutRequest) { r.DurationMinutes = minutes(-15) }, ErrInvalidDuration},
		{"zero duration", func(r *CheckoutRequest) { r.DurationMinutes = minutes(0) }, ErrInvalidDuration},
		{"end before start", func(r *CheckoutRequest) { r.EndTime = "13:00" }, ErrInvalidDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := env.checkoutReq()
			tt.mutate(&req)
			_, err := env.svc.Checkout(ctx, req)
			if err != tt.wantErr {
				t.Errorf("Checkout() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckout_ConflictingSlotRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.svc.Checkout(ctx, env.checkoutReq()); err != nil {
		t.Fatalf("first Checkout() error = %v", err)
	}

	// Second request overlaps 14:00-15:30.
	req := env.checkoutReq()
	req.StartTime = "15:00"
	if _, err := env.svc.Checkout(ctx, req); err != ErrSlotUnavailable {
		t.Errorf("Checkout() error = %v, want ErrSlotUnavailable", err)
	}
}

func TestCheckout_BackToBackSlotsAllowed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.svc.Checkout(ctx, env.checkoutReq()); err != nil {
		t.Fatalf("first Checkout() error = %v", err)
	}

	// First booking occupies [14:00, 15:30); starting at 15:30 is fine.
	req := env.checkoutReq()
	req.StartTime = "15:30"
	if _, err := env.svc.Checkout(ctx, req); err != nil {
		t.Errorf("back-to-back Checkout() error = %v", err)
	}
}

func TestCheckout_CancelledBookingFreesSlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Checkout(ctx, env.checkoutReq())
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if _, err := env.svc.UpdateStatus(ctx, result.Booking.ID, StatusCancelled); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if _, err := env.svc.Checkout(ctx, env.checkoutReq()); err != nil {
		t.Errorf("Checkout() after cancellation error = %v", err)
	}
}

func TestCheckout_CompletedBookingFreesSlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Checkout(ctx, env.checkoutReq())
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if _, err := env.svc.UpdateStatus(ctx, result.Booking.ID, StatusConfirmed); err != nil {
		t.Fatalf("UpdateStatus(confirmed) error = %v", err)
	}
	if _, err := env.svc.UpdateStatus(ctx, result.Booking.ID, StatusCompleted); err != nil {
		t.Fatalf("UpdateStatus(completed) error = %v", err)
	}
	if _, err := env.svc.Checkout(ctx, env.checkoutReq()); err != nil {
		t.Errorf("Checkout() after completion error = %v", err)
	}
}

func TestCheckout_OtherTherapistUnaffected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.svc.Checkout(ctx, env.checkoutReq()); err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}

	other := uuid.New()
	req := env.checkoutReq()
	req.TherapistID = &other
	if _, err := env.svc.Checkout(ctx, req); err != nil {
		t.Errorf("Checkout() for a different therapist error = %v", err)
	}
}

func TestCheckout_UnassignedTherapist(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := env.checkoutReq()
	req.TherapistID = nil
	result, err := env.svc.Checkout(ctx, req)
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if result.Booking.TherapistID != nil {
		t.Errorf("TherapistID = %v, want nil", result.Booking.TherapistID)
	}
	if len(env.repo.locked) != 0 {
		t.Errorf("no day lock expected without a therapist, got %v", env.repo.locked)
	}

	// With nobody assigned there is nothing to conflict with; a second
	// unassigned request for the same slot also succeeds.
	if _, err := env.svc.Checkout(ctx, req); err != nil {
		t.Errorf("second unassigned Checkout() error = %v", err)
	}

	// An assigned booking on the same slot is likewise unaffected.
	if _, err := env.svc.Checkout(ctx, env.checkoutReq()); err != nil {
		t.Errorf("assigned Checkout() alongside unassigned error = %v", err)
	}
}

func TestAvailableTherapists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	busy := env.therapistID
	free1, free2 := uuid.New(), uuid.New()

	if _, err := env.svc.Checkout(ctx, env.checkoutReq()); err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}

	ids := []uuid.UUID{free1, busy, free2}
	got, err := env.svc.AvailableTherapists(ctx, ids, "2026-09-01", "14:30", 60, uuid.Nil)
	if err != nil {
		t.Fatalf("AvailableTherapists() error = %v", err)
	}
	if len(got) != 2 || got[0] != free1 || got[1] != free2 {
		t.Errorf("AvailableTherapists() = %v, want [%v %v]", got, free1, free2)
	}
}

func TestAvailableTherapists_PackageDurationApplies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Existing booking occupies [14:00, 15:30).
	if _, err := env.svc.Checkout(ctx, env.checkoutReq()); err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}

	ids := []uuid.UUID{env.therapistID}

	// 13:00 with the 90-minute package runs to 14:30 and collides.
	got, err := env.svc.AvailableTherapists(ctx, ids, "2026-09-01", "13:00", 0, env.packageID)
	if err != nil {
		t.Fatalf("AvailableTherapists() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no availability with the package's 90-minute session")
	}

	// An explicit 30-minute session ends at 13:30 and fits.
	got, err = env.svc.AvailableTherapists(ctx, ids, "2026-09-01", "13:00", 30, env.packageID)
	if err != nil {
		t.Fatalf("AvailableTherapists() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected availability with an explicit 30-minute session")
	}
}

func TestAvailableTherapists_InvalidTime(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.AvailableTherapists(context.Background(), []uuid.UUID{uuid.New()}, "2026-09-01", "2pm", 60, uuid.Nil)
	if err != ErrInvalidTimeFormat {
		t.Errorf("AvailableTherapists() error = %v, want ErrInvalidTimeFormat", err)
	}
}

func TestUpdateStatus_Transitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Checkout(ctx, env.checkoutReq())
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	id := result.Booking.ID

	// Pending bookings cannot jump straight to completed.
	if _, err := env.svc.UpdateStatus(ctx, id, StatusCompleted); err == nil {
		t.Error("expected error completing a pending booking")
	}
	if _, err := env.svc.UpdateStatus(ctx, id, StatusConfirmed); err != nil {
		t.Fatalf("UpdateStatus(confirmed) error = %v", err)
	}
	if _, err := env.svc.UpdateStatus(ctx, id, StatusCompleted); err != nil {
		t.Fatalf("UpdateStatus(completed) error = %v", err)
	}
	// Completed is terminal.
	if _, err := env.svc.UpdateStatus(ctx, id, StatusConfirmed); err == nil {
		t.Error("expected error when reopening a completed booking")
	}
}

func TestUpdateStatus_EmitsEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.svc.Checkout(ctx, env.checkoutReq())
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if _, err := env.svc.UpdateStatus(ctx, result.Booking.ID, StatusCancelled); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	last := env.publisher.published[len(env.publisher.published)-1]
	if last.Type != events.TypeBookingCancelled {
		t.Errorf("last event type = %q, want %q", last.Type, events.TypeBookingCancelled)
	}
}

func TestCancel_OnlyOwnBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := uuid.New()
	req := env.checkoutReq()
	req.CustomerID = &owner
	result, err := env.svc.Checkout(ctx, req)
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}

	if _, err := env.svc.Cancel(ctx, result.Booking.ID, uuid.New()); err != ErrNotFound {
		t.Errorf("Cancel() by stranger error = %v, want ErrNotFound", err)
	}
	b, err := env.svc.Cancel(ctx, result.Booking.ID, owner)
	if err != nil {
		t.Fatalf("Cancel() by owner error = %v", err)
	}
	if b.Status != StatusCancelled {
		t.Errorf("status = %q, want %q", b.Status, StatusCancelled)
	}
}

func TestCompleteElapsed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Fixed clock is 2026-09-01 12:00 UTC; a morning booking has elapsed,
	// the afternoon one has not.
	morning := env.checkoutReq()
	morning.StartTime = "09:00"
	afternoon := env.checkoutReq()
	afternoon.StartTime = "15:00"
	for _, req := range []CheckoutRequest{morning, afternoon} {
		result, err := env.svc.Checkout(ctx, req)
		if err != nil {
			t.Fatalf("Checkout() error = %v", err)
		}
		if _, err := env.svc.UpdateStatus(ctx, result.Booking.ID, StatusConfirmed); err != nil {
			t.Fatalf("UpdateStatus(confirmed) error = %v", err)
		}
	}

	n, err := env.svc.CompleteElapsed(ctx)
	if err != nil {
		t.Fatalf("CompleteElapsed() error = %v", err)
	}
	if n != 1 {
		t.Errorf("CompleteElapsed() = %d, want 1", n)
	}
}
