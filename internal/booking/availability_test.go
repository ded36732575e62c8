package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paidBooking(loc Location, tents int) *Booking {
	return &Booking{Location: loc, Tents: tents, IsPaid: true}
}

func TestCalculateAvailability(t *testing.T) {
	desert := LocationDesert

	tests := []struct {
		name    string
		paid    []*Booking
		want    *Availability
		wantErr error
	}{
		{
			name: "No paid bookings, open to every location",
			paid: nil,
			want: &Availability{
				RemainingCapacity:  10,
				AvailableLocations: []Location{LocationDesert, LocationMountain, LocationWadi},
			},
		},
		{
			name: "Paid bookings lock the date to their location",
			paid: []*Booking{paidBooking(LocationDesert, 3), paidBooking(LocationDesert, 4)},
			want: &Availability{
				LockedLocation:     &desert,
				TotalTents:         7,
				RemainingCapacity:  3,
				AvailableLocations: []Location{LocationDesert},
			},
		},
		{
			name: "Full date",
			paid: []*Booking{paidBooking(LocationDesert, 5), paidBooking(LocationDesert, 5)},
			want: &Availability{
				LockedLocation:     &desert,
				TotalTents:         10,
				RemainingCapacity:  0,
				AvailableLocations: []Location{LocationDesert},
			},
		},
		{
			name:    "Disagreeing locations are an integrity error",
			paid:    []*Booking{paidBooking(LocationDesert, 2), paidBooking(LocationWadi, 2)},
			wantErr: ErrInconsistentLocation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateAvailability(tt.paid)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAvailability_Admit(t *testing.T) {
	open, err := CalculateAvailability(nil)
	require.NoError(t, err)
	sevenDesert, err := CalculateAvailability([]*Booking{paidBooking(LocationDesert, 7)})
	require.NoError(t, err)
	nineDesert, err := CalculateAvailability([]*Booking{paidBooking(LocationDesert, 9)})
	require.NoError(t, err)
	full, err := CalculateAvailability([]*Booking{paidBooking(LocationMountain, 5), paidBooking(LocationMountain, 5)})
	require.NoError(t, err)

	tests := []struct {
		name    string
		av      *Availability
		loc     Location
		tents   int
		wantMsg string
	}{
		{name: "Open date accepts any location", av: open, loc: LocationWadi, tents: 5},
		{name: "Same location within capacity", av: sevenDesert, loc: LocationDesert, tents: 3},
		{
			name:    "Over capacity reports remaining tents",
			av:      sevenDesert,
			loc:     LocationDesert,
			tents:   4,
			wantMsg: "Only 3 tents available for this date (10 tents maximum per day)",
		},
		{
			name:    "Singular tent wording",
			av:      nineDesert,
			loc:     LocationDesert,
			tents:   2,
			wantMsg: "Only 1 tent available for this date (10 tents maximum per day)",
		},
		{
			name:    "Fully booked",
			av:      full,
			loc:     LocationMountain,
			tents:   1,
			wantMsg: "This date is fully booked (10 tents maximum per day)",
		},
		{
			name:    "Capacity is checked before location",
			av:      full,
			loc:     LocationDesert,
			tents:   1,
			wantMsg: "This date is fully booked (10 tents maximum per day)",
		},
		{
			name:    "Different location on a locked date",
			av:      sevenDesert,
			loc:     LocationMountain,
			tents:   2,
			wantMsg: "This date is already booked for Desert location. All bookings for the same date must be in the same location.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.av.Admit(tt.loc, tt.tents)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}
