package pdf

import (
	"bytes"
	"fmt"

	"github.com/fianchetto/clubtix/internal/domain"
	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// Ticket renders an A4 admission ticket for a booking: event details, the
// attendee list and a QR code of the booking reference.
func Ticket(e *domain.Event, b *domain.Booking) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Ticket "+b.ID.String(), true)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 22)
	doc.CellFormat(0, 14, e.Title, "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 12)
	doc.CellFormat(0, 8, e.Location, "", 1, "L", false, 0, "")
	doc.CellFormat(0, 8, e.Starts.Format("Monday, 2 January 2006 15:04"), "", 1, "L", false, 0, "")
	doc.Ln(6)

	doc.SetFont("Helvetica", "B", 13)
	doc.CellFormat(0, 8, fmt.Sprintf("Admits %d", b.Quantity), "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 11)
	for _, p := range b.Participants {
		doc.CellFormat(0, 7, p.FirstName+" "+p.LastName, "", 1, "L", false, 0, "")
	}
	doc.Ln(6)

	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(110, 110, 110)
	doc.CellFormat(0, 6, "Booking reference: "+b.ID.String(), "", 1, "L", false, 0, "")
	doc.SetTextColor(0, 0, 0)

	png, err := qrcode.Encode(b.ID.String(), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("pdf.Ticket: encode qr: %w", err)
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	doc.RegisterImageOptionsReader("booking-qr", opts, bytes.NewReader(png))
	doc.ImageOptions("booking-qr", 150, 20, 40, 40, false, opts, 0, "")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf.Ticket: %w", err)
	}

	return buf.Bytes(), nil
}

// Receipt renders a payment receipt: base amount, total discount and the
// final amount of a booking.
func Receipt(e *domain.Event, b *domain.Booking) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Receipt "+b.ID.String(), true)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 20)
	doc.CellFormat(0, 12, "Receipt", "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 7, e.Title, "", 1, "L", false, 0, "")
	doc.CellFormat(0, 7, "Booking "+b.ID.String(), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 7, "Issued "+b.CreatedAt.Format("2 January 2006"), "", 1, "L", false, 0, "")
	doc.Ln(8)

	line := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		doc.SetFont("Helvetica", style, 11)
		doc.CellFormat(120, 8, label, "", 0, "L", false, 0, "")
		doc.CellFormat(0, 8, value, "", 1, "R", false, 0, "")
	}

	line(fmt.Sprintf("Tickets x %d", b.Quantity), b.BaseAmount.StringFixed(2), false)
	line("Discounts", "-"+b.TotalDiscount.StringFixed(2), false)
	doc.Line(10, doc.GetY()+1, 200, doc.GetY()+1)
	doc.Ln(2)
	line("Total", b.FinalAmount.StringFixed(2), true)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf.Receipt: %w", err)
	}

	return buf.Bytes(), nil
}
