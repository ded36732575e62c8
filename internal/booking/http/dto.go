package http

import (
	"time"

	"github.com/nekogravitycat/camp-booking-backend/internal/booking"
	"github.com/nekogravitycat/camp-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/camp-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/camp-booking-backend/internal/pricing"
)

// CreateBookingBody is the public booking form. Presence rules are enforced by
// the admission checks so that every failure carries its own message.
type CreateBookingBody struct {
	CustomerName         string                        `json:"customerName"`
	CustomerEmail        string                        `json:"customerEmail"`
	CustomerPhone        string                        `json:"customerPhone"`
	BookingDate          string                        `json:"bookingDate"`
	Location             string                        `json:"location"`
	NumberOfTents        int                           `json:"numberOfTents"`
	Adults               int                           `json:"adults"`
	Children             *int                          `json:"children"`
	SleepingArrangements []booking.SleepingArrangement `json:"sleepingArrangements"`
	AddOns               pricing.AddOns                `json:"addOns"`
	HasChildren          bool                          `json:"hasChildren"`
	Notes                string                        `json:"notes"`
	SelectedCustomAddOns []string                      `json:"selectedCustomAddOns"`
}

// toSubmission parses the date. An empty date is left nil for the required-field check.
func (b *CreateBookingBody) toSubmission() (booking.Submission, error) {
	sub := booking.Submission{
		CustomerName:         b.CustomerName,
		CustomerEmail:        b.CustomerEmail,
		CustomerPhone:        b.CustomerPhone,
		Location:             b.Location,
		Tents:                b.NumberOfTents,
		Adults:               b.Adults,
		Children:             b.Children,
		SleepingArrangements: b.SleepingArrangements,
		AddOns:               b.AddOns,
		HasChildren:          b.HasChildren,
		Notes:                b.Notes,
		SelectedCustomAddOns: b.SelectedCustomAddOns,
	}
	if b.BookingDate != "" {
		d, err := parseBookingDate(b.BookingDate)
		if err != nil {
			return sub, err
		}
		sub.BookingDate = &d
	}
	return sub, nil
}

// parseBookingDate accepts a plain date or a full timestamp from date pickers.
func parseBookingDate(s string) (time.Time, error) {
	if d, err := booking.ParseDate(s); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, booking.ErrInvalidDate
	}
	return booking.DateOf(t), nil
}

type CreateBookingResponse struct {
	BookingID string            `json:"bookingId"`
	Pricing   pricing.Breakdown `json:"pricing"`
}

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.PageParams
	Search   string `form:"search"`
	Location string `form:"location" binding:"omitempty,oneof=Desert Mountain Wadi"`
	// IsPaid defaults to true; pass false to see unpaid requests.
	IsPaid *bool `form:"isPaid"`
}

type ExportBookingsRequest struct {
	From   string `form:"from"`
	To     string `form:"to"`
	IsPaid *bool  `form:"isPaid"`
}

func (r *ExportBookingsRequest) toFilter() (booking.ExportFilter, error) {
	f := booking.ExportFilter{IsPaid: r.IsPaid}
	if r.From != "" {
		d, err := booking.ParseDate(r.From)
		if err != nil {
			return f, err
		}
		f.From = &d
	}
	if r.To != "" {
		d, err := booking.ParseDate(r.To)
		if err != nil {
			return f, err
		}
		f.To = &d
	}
	return f, nil
}

type BookingResponse struct {
	ID                   string                        `json:"id"`
	CustomerName         string                        `json:"customerName"`
	CustomerEmail        string                        `json:"customerEmail"`
	CustomerPhone        string                        `json:"customerPhone"`
	BookingDate          string                        `json:"bookingDate"`
	Location             string                        `json:"location"`
	NumberOfTents        int                           `json:"numberOfTents"`
	Adults               int                           `json:"adults"`
	Children             int                           `json:"children"`
	SleepingArrangements []booking.SleepingArrangement `json:"sleepingArrangements"`
	AddOns               pricing.AddOns                `json:"addOns"`
	HasChildren          bool                          `json:"hasChildren"`
	Notes                string                        `json:"notes"`
	SelectedCustomAddOns []string                      `json:"selectedCustomAddOns"`
	Pricing              pricing.Breakdown             `json:"pricing"`
	Subtotal             float64                       `json:"subtotal"`
	VAT                  float64                       `json:"vat"`
	Total                float64                       `json:"total"`
	IsPaid               bool                          `json:"isPaid"`
	PaymentSessionID     *string                       `json:"paymentSessionId,omitempty"`
	PaymentIntentID      *string                       `json:"paymentIntentId,omitempty"`
	PaidAt               *time.Time                    `json:"paidAt,omitempty"`
	CreatedAt            time.Time                     `json:"createdAt"`
	UpdatedAt            time.Time                     `json:"updatedAt"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:                   b.ID,
		CustomerName:         b.CustomerName,
		CustomerEmail:        b.CustomerEmail,
		CustomerPhone:        b.CustomerPhone,
		BookingDate:          b.BookingDate.Format(booking.DateLayout),
		Location:             string(b.Location),
		NumberOfTents:        b.Tents,
		Adults:               b.Adults,
		Children:             b.Children,
		SleepingArrangements: response.EmptyIfNil(b.SleepingArrangements),
		AddOns:               b.AddOns,
		HasChildren:          b.HasChildren,
		Notes:                b.Notes,
		SelectedCustomAddOns: response.EmptyIfNil(b.SelectedCustomAddOns),
		Pricing:              b.Pricing,
		Subtotal:             b.Pricing.Subtotal,
		VAT:                  b.Pricing.VAT,
		Total:                b.Pricing.Total,
		IsPaid:               b.IsPaid,
		PaymentSessionID:     b.PaymentSessionID,
		PaymentIntentID:      b.PaymentIntentID,
		PaidAt:               b.PaidAt,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}
}

type ListBookingsResponse struct {
	Bookings   []BookingResponse   `json:"bookings"`
	Pagination response.Pagination `json:"pagination"`
}

type DateConstraintsResponse struct {
	LockedLocation     *string  `json:"lockedLocation"`
	TotalTents         int      `json:"totalTents"`
	RemainingCapacity  int      `json:"remainingCapacity"`
	AvailableLocations []string `json:"availableLocations"`
}

func NewDateConstraintsResponse(av *booking.Availability) DateConstraintsResponse {
	resp := DateConstraintsResponse{
		TotalTents:         av.TotalTents,
		RemainingCapacity:  av.RemainingCapacity,
		AvailableLocations: make([]string, 0, len(av.AvailableLocations)),
	}
	if av.LockedLocation != nil {
		loc := string(*av.LockedLocation)
		resp.LockedLocation = &loc
	}
	for _, l := range av.AvailableLocations {
		resp.AvailableLocations = append(resp.AvailableLocations, string(l))
	}
	return resp
}

type RebuildDateLockBody struct {
	Date     string `json:"date"`
	Location string `json:"location"`
	Tents    int    `json:"tents"`
}

type RebuildDateLockResponse struct {
	Success           bool   `json:"success"`
	LockedLocation    string `json:"lockedLocation"`
	TotalTents        int    `json:"totalTents"`
	RemainingCapacity int    `json:"remainingCapacity"`
}
