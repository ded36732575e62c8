package booking

import (
	"net/http"

	"github.com/nekogravitycat/camp-booking-backend/internal/pkg/apperror"
)

// Availability is what remains bookable on a calendar date.
type Availability struct {
	LockedLocation     *Location
	TotalTents         int
	RemainingCapacity  int
	AvailableLocations []Location
}

// CalculateAvailability derives the date state from the paid bookings of that date.
// The first paid booking decides the locked location; every other paid booking
// must agree with it.
func CalculateAvailability(paid []*Booking) (*Availability, error) {
	if len(paid) == 0 {
		return &Availability{
			RemainingCapacity:  MaxTentsPerDate,
			AvailableLocations: Locations(),
		}, nil
	}

	locked := paid[0].Location
	total := 0
	for _, b := range paid {
		if b.Location != locked {
			return nil, ErrInconsistentLocation
		}
		total += b.Tents
	}

	return &Availability{
		LockedLocation:     &locked,
		TotalTents:         total,
		RemainingCapacity:  MaxTentsPerDate - total,
		AvailableLocations: []Location{locked},
	}, nil
}

// Admit checks capacity first, then the location lock.
func (a *Availability) Admit(loc Location, tents int) error {
	if a.TotalTents+tents > MaxTentsPerDate {
		return capacityError(a.RemainingCapacity)
	}
	if a.LockedLocation != nil && *a.LockedLocation != loc {
		return apperror.Newf(http.StatusBadRequest,
			"This date is already booked for %s location. All bookings for the same date must be in the same location.",
			*a.LockedLocation)
	}
	return nil
}

func capacityError(remaining int) error {
	if remaining <= 0 {
		return ErrFullyBooked
	}
	plural := "s"
	if remaining == 1 {
		plural = ""
	}
	return apperror.Newf(http.StatusBadRequest,
		"Only %d tent%s available for this date (10 tents maximum per day)", remaining, plural)
}
