package report

import (
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"

	"github.com/nekogravitycat/camp-booking-backend/internal/booking"
)

// WriteReceiptPDF renders the payment receipt of a paid booking. Text is
// encoded as cp1252 for the core fonts; runes outside it print as '.'.
func WriteReceiptPDF(w io.Writer, b *booking.Booking) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Booking Receipt", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	line := func(label, value string) {
		pdf.CellFormat(45, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, tr(value), "", 1, "L", false, 0, "")
	}
	line("Booking ID", b.ID)
	if b.PaidAt != nil {
		line("Paid at", b.PaidAt.UTC().Format("2006-01-02 15:04 UTC"))
	}
	line("Payment ref", deref(b.PaymentIntentID))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Guest")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	line("Name", b.CustomerName)
	line("Email", b.CustomerEmail)
	line("Phone", b.CustomerPhone)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Stay")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	line("Date", b.BookingDate.Format("Mon, 02 Jan 2006"))
	line("Location", string(b.Location))
	line("Tents", fmt.Sprintf("%d", b.Tents))
	line("Guests", fmt.Sprintf("%d adults, %d children", b.Adults, b.Children))
	if s := addOnSummary(b); s != "" {
		line("Add-ons", s)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Charges (AED)")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	amount := func(label string, v float64) {
		pdf.CellFormat(120, 7, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, fmt.Sprintf("%.2f", v), "", 1, "R", false, 0, "")
	}
	amount("Tents", b.Pricing.TentPrice)
	if b.Pricing.LocationSurcharge > 0 {
		amount("Location surcharge", b.Pricing.LocationSurcharge)
	}
	if b.Pricing.AddOnsCost > 0 {
		amount("Add-ons", b.Pricing.AddOnsCost)
	}
	if b.Pricing.CustomAddOnsCost > 0 {
		amount("Extras", b.Pricing.CustomAddOnsCost)
	}
	amount("Subtotal", b.Pricing.Subtotal)
	amount("VAT", b.Pricing.VAT)
	pdf.SetFont("Helvetica", "B", 12)
	amount("Total", b.Pricing.Total)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render receipt failed: %w", err)
	}
	return nil
}
