package analytics

import (
	"context"
	"testing"
)

type mockRepo struct {
	lastRange Range
	lastLimit int
}

func (m *mockRepo) Summary(_ context.Context, r Range) (*Summary, error) {
	m.lastRange = r
	return &Summary{}, nil
}

func (m *mockRepo) RevenueByDay(_ context.Context, r Range) ([]*RevenuePoint, error) {
	m.lastRange = r
	return nil, nil
}

func (m *mockRepo) TopPackages(_ context.Context, r Range, limit int) ([]*PackageStat, error) {
	m.lastRange = r
	m.lastLimit = limit
	return nil, nil
}

func (m *mockRepo) TherapistUtilization(_ context.Context, r Range) ([]*TherapistStat, error) {
	m.lastRange = r
	return nil, nil
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name    string
		r       Range
		wantErr bool
	}{
		{"empty range", Range{}, false},
		{"from only", Range{From: "2026-01-01"}, false},
		{"full range", Range{From: "2026-01-01", To: "2026-01-31"}, false},
		{"bad from", Range{From: "01/01/2026"}, true},
		{"bad to", Range{To: "yesterday"}, true},
		{"inverted", Range{From: "2026-02-01", To: "2026-01-01"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRange(tt.r)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRange(%+v) error = %v, wantErr %v", tt.r, err, tt.wantErr)
			}
		})
	}
}

func TestSummary_RejectsBadRange(t *testing.T) {
	svc := NewService(&mockRepo{})
	if _, err := svc.Summary(context.Background(), Range{From: "nope"}); err == nil {
		t.Error("expected error for malformed range")
	}
}

func TestTopPackages_DefaultLimit(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)

	if _, err := svc.TopPackages(context.Background(), Range{}, 0); err != nil {
		t.Fatalf("TopPackages() error = %v", err)
	}
	if repo.lastLimit != defaultTopLimit {
		t.Errorf("limit = %d, want %d", repo.lastLimit, defaultTopLimit)
	}

	if _, err := svc.TopPackages(context.Background(), Range{}, 12); err != nil {
		t.Fatalf("TopPackages() error = %v", err)
	}
	if repo.lastLimit != 12 {
		t.Errorf("limit = %d, want 12", repo.lastLimit)
	}
}
