package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/camp-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/camp-booking-backend/internal/pricing"
)

const (
	MaxTentsPerDate     = 10
	MinTentsPerBooking  = 1
	MaxTentsPerBooking  = 5
	WadiMinTents        = 2
	MaxOccupantsPerTent = 4
	MinAdvanceDays      = 2
)

var (
	ErrNotFound             = apperror.New(http.StatusNotFound, "booking not found")
	ErrMissingFields        = apperror.New(http.StatusBadRequest, "Missing required fields")
	ErrTentsOutOfRange      = apperror.New(http.StatusBadRequest, "Number of tents must be between 1 and 5 per booking")
	ErrWadiMinTents         = apperror.New(http.StatusBadRequest, "Wadi location requires at least 2 tents")
	ErrInvalidLocation      = apperror.New(http.StatusBadRequest, "Invalid location")
	ErrInvalidEmail         = apperror.New(http.StatusBadRequest, "Invalid email address")
	ErrTooManyGuests        = apperror.New(http.StatusBadRequest, "Too many guests: at most 4 guests per tent")
	ErrInvalidGuestCount    = apperror.New(http.StatusBadRequest, "Invalid number of guests: at least 1 adult is required and counts cannot be negative")
	ErrArrangementRequired  = apperror.New(http.StatusBadRequest, "A sleeping arrangement is required for each tent")
	ErrDateTooSoon          = apperror.New(http.StatusBadRequest, "Booking date must be at least 2 days from today")
	ErrFullyBooked          = apperror.New(http.StatusBadRequest, "This date is fully booked (10 tents maximum per day)")
	ErrInconsistentLocation = apperror.New(http.StatusInternalServerError, "Internal error: Inconsistent location data for this date")
	ErrRetry                = apperror.New(http.StatusConflict, "Please retry your booking")
	ErrAlreadyPaid          = apperror.New(http.StatusConflict, "booking already paid")
	ErrNotPaid              = apperror.New(http.StatusConflict, "booking is not paid yet")
	ErrDateRequired         = apperror.New(http.StatusBadRequest, "Date parameter is required")
	ErrInvalidDate          = apperror.New(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
	ErrConstraintFields     = apperror.New(http.StatusBadRequest, "Date, location, and tents are required")
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

type Location string

const (
	LocationDesert   Location = "Desert"
	LocationMountain Location = "Mountain"
	LocationWadi     Location = "Wadi"
)

// Locations returns every bookable location in display order.
func Locations() []Location {
	return []Location{LocationDesert, LocationMountain, LocationWadi}
}

// ParseLocation accepts the exact location names only.
func ParseLocation(s string) (Location, bool) {
	for _, l := range Locations() {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

type Arrangement string

const (
	ArrangementAllSingles Arrangement = "all-singles"
	ArrangementTwoDoubles Arrangement = "two-doubles"
	ArrangementMix        Arrangement = "mix"
	ArrangementCustom     Arrangement = "custom"
)

func (a Arrangement) valid() bool {
	switch a {
	case ArrangementAllSingles, ArrangementTwoDoubles, ArrangementMix, ArrangementCustom:
		return true
	}
	return false
}

// SleepingArrangement is how one tent is set up.
type SleepingArrangement struct {
	TentNumber        int         `json:"tentNumber"`
	Arrangement       Arrangement `json:"arrangement"`
	CustomArrangement string      `json:"customArrangement,omitempty"`
}

// Booking is a reservation request. It is created unpaid and becomes paid
// only through payment confirmation.
type Booking struct {
	ID                   string
	CustomerName         string
	CustomerEmail        string
	CustomerPhone        string
	BookingDate          time.Time // calendar date, UTC midnight
	Location             Location
	Tents                int
	Adults               int
	Children             int
	SleepingArrangements []SleepingArrangement
	AddOns               pricing.AddOns
	HasChildren          bool
	Notes                string
	SelectedCustomAddOns []string
	Pricing              pricing.Breakdown
	IsPaid               bool
	PaymentSessionID     *string
	PaymentIntentID      *string
	PaidAt               *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// DateLocationLock records which location a date is committed to and how many
// tents are reserved on it. It is derived from the bookings of that date.
type DateLocationLock struct {
	Date           time.Time
	LockedLocation Location
	TotalTents     int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Filter defines parameters for listing bookings.
type Filter struct {
	Search   string // name, email or phone, case-insensitive
	Location string
	IsPaid   *bool
	Page     int
	Limit    int
}

// ExportFilter selects bookings for spreadsheet export by stay date.
type ExportFilter struct {
	From   *time.Time
	To     *time.Time
	IsPaid *bool
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// DateOf truncates t to its calendar date in t's own location and returns it as UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
