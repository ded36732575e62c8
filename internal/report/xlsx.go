// Package report renders booking documents for operators.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nekogravitycat/camp-booking-backend/internal/booking"
)

const bookingsSheet = "Bookings"

var bookingHeaders = []any{
	"Booking ID", "Created", "Date", "Location", "Tents", "Adults", "Children",
	"Customer", "Email", "Phone", "Add-ons", "Notes",
	"Subtotal", "VAT", "Total", "Paid", "Payment Ref",
}

// WriteBookingsXLSX writes one row per booking to w as an XLSX workbook.
func WriteBookingsXLSX(w io.Writer, bookings []*booking.Booking) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", bookingsSheet); err != nil {
		return fmt.Errorf("rename sheet failed: %w", err)
	}

	if err := f.SetSheetRow(bookingsSheet, "A1", &bookingHeaders); err != nil {
		return fmt.Errorf("write header failed: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("create header style failed: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(bookingHeaders))
	if err := f.SetCellStyle(bookingsSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("apply header style failed: %w", err)
	}

	for i, b := range bookings {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			b.ID,
			b.CreatedAt.Format("2006-01-02 15:04"),
			b.BookingDate.Format(booking.DateLayout),
			string(b.Location),
			b.Tents,
			b.Adults,
			b.Children,
			b.CustomerName,
			b.CustomerEmail,
			b.CustomerPhone,
			addOnSummary(b),
			b.Notes,
			b.Pricing.Subtotal,
			b.Pricing.VAT,
			b.Pricing.Total,
			yesNo(b.IsPaid),
			deref(b.PaymentIntentID),
		}
		if err := f.SetSheetRow(bookingsSheet, cell, &row); err != nil {
			return fmt.Errorf("write booking row failed: %w", err)
		}
	}

	_ = f.SetColWidth(bookingsSheet, "A", "A", 38)
	_ = f.SetColWidth(bookingsSheet, "B", "D", 16)
	_ = f.SetColWidth(bookingsSheet, "H", "L", 24)
	_ = f.SetPanes(bookingsSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook failed: %w", err)
	}
	return nil
}

func addOnSummary(b *booking.Booking) string {
	var parts []string
	if b.AddOns.Charcoal {
		parts = append(parts, "Charcoal")
	}
	if b.AddOns.Firewood {
		parts = append(parts, "Firewood")
	}
	if b.AddOns.PortableToilet {
		if b.HasChildren {
			parts = append(parts, "Portable toilet (free)")
		} else {
			parts = append(parts, "Portable toilet")
		}
	}
	if n := len(b.SelectedCustomAddOns); n > 0 {
		parts = append(parts, fmt.Sprintf("%d custom", n))
	}
	return strings.Join(parts, ", ")
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
