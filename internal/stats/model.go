package stats

import (
	"time"

	"github.com/nekogravitycat/camp-booking-backend/internal/booking"
)

// MonthLayout labels monthly rollups, e.g. "Nov 2026".
const MonthLayout = "Jan 2006"

// Row is the slice of a booking the rollups need.
type Row struct {
	BookingDate time.Time
	Location    booking.Location
	Total       float64
	IsPaid      bool
}

type Stats struct {
	TotalBookings   int     `json:"totalBookings"`
	PaidBookings    int     `json:"paidBookings"`
	TotalRevenue    float64 `json:"totalRevenue"`
	PendingBookings int     `json:"pendingBookings"`
}

type MonthlyRollup struct {
	Month    string  `json:"month"`
	Bookings int     `json:"bookings"`
	Revenue  float64 `json:"revenue"`
}

type LocationRollup struct {
	Location booking.Location `json:"location"`
	Bookings int              `json:"bookings"`
	Revenue  float64          `json:"revenue"`
}

type ChartData struct {
	MonthlyBookings []MonthlyRollup  `json:"monthlyBookings"`
	LocationStats   []LocationRollup `json:"locationStats"`
	Stats           Stats            `json:"stats"`
}
