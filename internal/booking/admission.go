package booking

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nekogravitycat/camp-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/camp-booking-backend/internal/pricing"
)

var emailValidator = validator.New()

// Submission is a customer's booking request before admission.
type Submission struct {
	CustomerName         string
	CustomerEmail        string
	CustomerPhone        string
	BookingDate          *time.Time
	Location             string
	Tents                int
	Adults               int
	Children             *int
	SleepingArrangements []SleepingArrangement
	AddOns               pricing.AddOns
	HasChildren          bool
	Notes                string
	SelectedCustomAddOns []string
}

// Validate runs the field-level admission checks in their fixed order.
// today is the current calendar date in the booking timezone, as UTC midnight.
// Capacity and location lock checks need the date's paid bookings and are done by Availability.Admit.
func (s *Submission) Validate(today time.Time, phonePrefix string) error {
	// 1. Required fields
	if strings.TrimSpace(s.CustomerName) == "" ||
		strings.TrimSpace(s.CustomerEmail) == "" ||
		strings.TrimSpace(s.CustomerPhone) == "" ||
		s.BookingDate == nil ||
		s.Location == "" ||
		s.Tents == 0 ||
		s.Adults == 0 ||
		s.Children == nil ||
		len(s.SleepingArrangements) == 0 {
		return ErrMissingFields
	}
	if err := emailValidator.Var(strings.TrimSpace(s.CustomerEmail), "email"); err != nil {
		return ErrInvalidEmail
	}

	// 2. Tent count per booking
	if s.Tents < MinTentsPerBooking || s.Tents > MaxTentsPerBooking {
		return ErrTentsOutOfRange
	}

	loc, ok := ParseLocation(s.Location)
	if !ok {
		return ErrInvalidLocation
	}

	// 3. Wadi minimum
	if loc == LocationWadi && s.Tents < WadiMinTents {
		return ErrWadiMinTents
	}

	// 4. Phone prefix
	phone := strings.TrimSpace(s.CustomerPhone)
	if !strings.HasPrefix(phone, phonePrefix) {
		return apperror.Newf(http.StatusBadRequest, "Phone number must start with %s", phonePrefix)
	}

	// 5. Advance notice
	if DateOf(*s.BookingDate).Before(today.AddDate(0, 0, MinAdvanceDays)) {
		return ErrDateTooSoon
	}

	// 6. Occupants and tent setup
	if s.Adults < 1 || *s.Children < 0 {
		return ErrInvalidGuestCount
	}
	if s.Adults+*s.Children > s.Tents*MaxOccupantsPerTent {
		return ErrTooManyGuests
	}
	if len(s.SleepingArrangements) != s.Tents {
		return ErrArrangementRequired
	}
	for _, a := range s.SleepingArrangements {
		if !a.Arrangement.valid() {
			return ErrArrangementRequired
		}
		if a.Arrangement == ArrangementCustom && strings.TrimSpace(a.CustomArrangement) == "" {
			return ErrArrangementRequired
		}
	}

	return nil
}

// newBooking builds the unpaid record for an admitted submission.
func (s *Submission) newBooking() *Booking {
	loc, _ := ParseLocation(s.Location)
	arrangements := make([]SleepingArrangement, len(s.SleepingArrangements))
	for i, a := range s.SleepingArrangements {
		a.TentNumber = i + 1
		if a.Arrangement != ArrangementCustom {
			a.CustomArrangement = ""
		}
		arrangements[i] = a
	}
	customAddOns := s.SelectedCustomAddOns
	if customAddOns == nil {
		customAddOns = []string{}
	}

	return &Booking{
		CustomerName:         strings.TrimSpace(s.CustomerName),
		CustomerEmail:        strings.ToLower(strings.TrimSpace(s.CustomerEmail)),
		CustomerPhone:        strings.TrimSpace(s.CustomerPhone),
		BookingDate:          DateOf(*s.BookingDate),
		Location:             loc,
		Tents:                s.Tents,
		Adults:               s.Adults,
		Children:             *s.Children,
		SleepingArrangements: arrangements,
		AddOns:               s.AddOns,
		HasChildren:          s.HasChildren || *s.Children > 0,
		Notes:                strings.TrimSpace(s.Notes),
		SelectedCustomAddOns: customAddOns,
	}
}
