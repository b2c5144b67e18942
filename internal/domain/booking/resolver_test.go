package booking

import "testing"

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"14:05", 845, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"9:00", 0, true},
		{"12:5", 0, true},
		{"noon", 0, true},
		{"12.30", 0, true},
		{"", 0, true},
		{"-1:30", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				if err != ErrInvalidTimeFormat {
					t.Errorf("ParseClock(%q) error = %v, want ErrInvalidTimeFormat", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClock(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatClock_RoundTrip(t *testing.T) {
	for _, s := range []string{"00:00", "09:05", "14:30", "23:59"} {
		minutes, err := ParseClock(s)
		if err != nil {
			t.Fatalf("ParseClock(%q) error = %v", s, err)
		}
		if got := FormatClock(minutes); got != s {
			t.Errorf("FormatClock(ParseClock(%q)) = %q", s, got)
		}
	}
}

func TestResolveDuration(t *testing.T) {
	tests := []struct {
		name       string
		explicit   int
		start, end string
		pkgDefault int
		want       int
		wantErr    error
	}{
		{"explicit wins over everything", 45, "10:00", "12:00", 90, 45, nil},
		{"end minus start", 0, "10:00", "11:30", 90, 90, nil},
		{"package default", 0, "10:00", "", 75, 75, nil},
		{"standard fallback", 0, "10:00", "", 0, 60, nil},
		{"negative explicit rejected", -30, "10:00", "", 0, 0, ErrInvalidDuration},
		{"end before start rejected", 0, "14:00", "13:00", 0, 0, ErrInvalidDuration},
		{"end equals start rejected", 0, "14:00", "14:00", 0, 0, ErrInvalidDuration},
		{"bad end time", 0, "14:00", "25:00", 0, 0, ErrInvalidTimeFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveDuration(tt.explicit, tt.start, tt.end, tt.pkgDefault)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("ResolveDuration() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveDuration() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveDuration() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResolveDuration_EndMinusStartBeatsPackageDefault(t *testing.T) {
	got, err := ResolveDuration(0, "10:00", "10:20", 90)
	if err != nil {
		t.Fatalf("ResolveDuration() error = %v", err)
	}
	if got != 20 {
		t.Errorf("ResolveDuration() = %d, want 20", got)
	}
}

func TestOverlaps_HalfOpen(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"identical", Interval{600, 660}, Interval{600, 660}, true},
		{"partial overlap", Interval{600, 660}, Interval{630, 690}, true},
		{"containment", Interval{600, 720}, Interval{630, 660}, true},
		{"back to back is free", Interval{600, 660}, Interval{660, 720}, false},
		{"front to back is free", Interval{660, 720}, Interval{600, 660}, false},
		{"disjoint", Interval{600, 660}, Interval{720, 780}, false},
		{"one minute overlap", Interval{600, 661}, Interval{660, 720}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b); got != tt.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			// Overlap is symmetric.
			if got := Overlaps(tt.b, tt.a); got != tt.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestConflicts(t *testing.T) {
	existing := []Interval{{540, 600}, {660, 720}}

	if Conflicts(Interval{600, 660}, existing) {
		t.Error("slot exactly between two bookings should be free")
	}
	if !Conflicts(Interval{590, 650}, existing) {
		t.Error("slot overlapping the first booking should conflict")
	}
	if Conflicts(Interval{720, 780}, nil) {
		t.Error("no existing bookings should never conflict")
	}
}

func TestBookedIntervals_SkipsUnparseableRows(t *testing.T) {
	bookings := []*Booking{
		{StartTime: "10:00", DurationMinutes: 60},
		{StartTime: "corrupt", DurationMinutes: 60},
		{StartTime: "13:30", DurationMinutes: 45},
	}
	got := BookedIntervals(bookings)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0] != (Interval{600, 660}) {
		t.Errorf("got[0] = %v, want {600 660}", got[0])
	}
	if got[1] != (Interval{810, 855}) {
		t.Errorf("got[1] = %v, want {810 855}", got[1])
	}
}
