package therapist

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestHandler_List_AvailabilityRequiresDateAndTime(t *testing.T) {
	e := echo.New()
	h := NewHandler(NewService(newMockRepo()), &busyChecker{busy: map[uuid.UUID]bool{}})

	req := httptest.NewRequest(http.MethodGet, "/therapists?available=true", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.List(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_List_AvailableFiltersBusy(t *testing.T) {
	e := echo.New()
	repo := newMockRepo()
	svc := NewService(repo)

	busy := &Therapist{Name: "Bruno", Active: true}
	free := &Therapist{Name: "Alice", Active: true}
	for _, th := range []*Therapist{free, busy} {
		if err := repo.Create(nil, th); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	h := NewHandler(svc, &busyChecker{busy: map[uuid.UUID]bool{busy.ID: true}})

	req := httptest.NewRequest(http.MethodGet, "/therapists?available=true&date=2026-09-01&time=14:00&duration=90", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var resp struct {
		Data  []Therapist `json:"data"`
		Total int         `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Total != 1 || len(resp.Data) != 1 {
		t.Fatalf("expected exactly one available therapist, got %d", resp.Total)
	}
	if resp.Data[0].Name != "Alice" {
		t.Errorf("available therapist = %q, want Alice", resp.Data[0].Name)
	}
}

func TestHandler_List_InvalidDurationAndPackage(t *testing.T) {
	e := echo.New()
	h := NewHandler(NewService(newMockRepo()), &busyChecker{busy: map[uuid.UUID]bool{}})

	for _, url := range []string{
		"/therapists?available=true&date=2026-09-01&time=14:00&duration=abc",
		"/therapists?available=true&date=2026-09-01&time=14:00&package_id=not-a-uuid",
	} {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := h.List(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %v", url, err)
		}
	}
}
