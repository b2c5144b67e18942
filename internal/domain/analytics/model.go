package analytics

// Summary is the back-office dashboard headline.
type Summary struct {
	TotalBookings     int   `json:"total_bookings"`
	ConfirmedBookings int   `json:"confirmed_bookings"`
	CancelledBookings int   `json:"cancelled_bookings"`
	CompletedBookings int   `json:"completed_bookings"`
	RevenueCents      int64 `json:"revenue_cents"`
	TaxCollectedCents int64 `json:"tax_collected_cents"`
	Customers         int   `json:"customers"`
}

// RevenuePoint is one day of booked revenue.
type RevenuePoint struct {
	Date         string `json:"date"`
	Bookings     int    `json:"bookings"`
	RevenueCents int64  `json:"revenue_cents"`
}

// PackageStat ranks a package by bookings and revenue.
type PackageStat struct {
	PackageID    string `json:"package_id"`
	Name         string `json:"name"`
	Bookings     int    `json:"bookings"`
	RevenueCents int64  `json:"revenue_cents"`
}

// TherapistStat measures how booked a therapist's calendar is.
type TherapistStat struct {
	TherapistID   string `json:"therapist_id"`
	Name          string `json:"name"`
	Bookings      int    `json:"bookings"`
	BookedMinutes int    `json:"booked_minutes"`
}
