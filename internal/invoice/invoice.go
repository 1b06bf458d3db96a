// Package invoice renders saved bills as printable A5 PDFs.
package invoice

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"

	"medbill/m/domain"
	"medbill/m/internal/timeutil"
)

const pageWidth = 132.0 // A5 minus 8mm margins

var columns = []struct {
	title string
	width float64
	align string
}{
	{"#", 6, "C"},
	{"Item", 34, "L"},
	{"HSN", 14, "C"},
	{"Batch", 16, "C"},
	{"Exp", 14, "C"},
	{"Qty", 8, "R"},
	{"Rate", 14, "R"},
	{"GST%", 10, "R"},
	{"Amount", 16, "R"},
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// Render draws the bill with the pharmacy header from settings.
func Render(bill domain.BillDetail, settings domain.Settings) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(8, 8, 8)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(pageWidth, 7, settings.PharmacyName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 8)
	if settings.Address != "" {
		pdf.CellFormat(pageWidth, 4, settings.Address, "", 1, "C", false, 0, "")
	}
	var ids string
	if settings.Phone != "" {
		ids = "Ph: " + settings.Phone
	}
	if settings.GSTIN != "" {
		ids += "  GSTIN: " + settings.GSTIN
	}
	if settings.DrugLicenseNo != "" {
		ids += "  DL: " + settings.DrugLicenseNo
	}
	if ids != "" {
		pdf.CellFormat(pageWidth, 4, ids, "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(pageWidth, 6, "TAX INVOICE", "TB", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(66, 5, "Bill No: "+bill.BillNumber, "", 0, "L", false, 0, "")
	pdf.CellFormat(66, 5, "Date: "+timeutil.Display(bill.CreatedAt), "", 1, "R", false, 0, "")
	if bill.CustomerName != "" || bill.CustomerPhone != "" {
		pdf.CellFormat(66, 5, "Customer: "+bill.CustomerName, "", 0, "L", false, 0, "")
		pdf.CellFormat(66, 5, bill.CustomerPhone, "", 1, "R", false, 0, "")
	}
	if bill.DoctorName != "" {
		pdf.CellFormat(pageWidth, 5, "Doctor: "+bill.DoctorName, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(pageWidth, 5, "Payment: "+string(bill.PaymentMode), "", 1, "L", false, 0, "")
	pdf.Ln(1)

	pdf.SetFont("Arial", "B", 7)
	pdf.SetFillColor(230, 230, 230)
	for i, c := range columns {
		ln := 0
		if i == len(columns)-1 {
			ln = 1
		}
		pdf.CellFormat(c.width, 6, c.title, "1", ln, "C", true, 0, "")
	}

	pdf.SetFont("Arial", "", 7)
	for n, it := range bill.Items {
		cells := []string{
			fmt.Sprintf("%d", n+1),
			truncate(it.MedicineName, 24),
			it.HSNCode,
			truncate(it.BatchNumber, 10),
			expiryMonth(it.ExpiryDate),
			fmt.Sprintf("%d", it.Quantity),
			money(it.UnitPrice),
			it.GSTRate.String(),
			money(it.TotalAmount),
		}
		for i, c := range columns {
			ln := 0
			if i == len(columns)-1 {
				ln = 1
			}
			pdf.CellFormat(c.width, 5, cells[i], "1", ln, c.align, false, 0, "")
		}
	}
	pdf.Ln(2)

	totals := []struct {
		label string
		value decimal.Decimal
	}{
		{"Taxable Amount", bill.TaxableAmount},
		{"CGST", bill.CGSTAmount},
		{"SGST", bill.SGSTAmount},
	}
	for _, t := range totals {
		pdf.CellFormat(pageWidth-30, 5, t.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 5, money(t.value), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(pageWidth-30, 7, "Grand Total (Rs.)", "T", 0, "R", false, 0, "")
	pdf.CellFormat(30, 7, money(bill.GrandTotal), "T", 1, "R", false, 0, "")

	if len(bill.Scheduled) > 0 {
		r := bill.Scheduled[0]
		pdf.Ln(2)
		pdf.SetFont("Arial", "", 7)
		pdf.MultiCell(pageWidth, 4, fmt.Sprintf("Schedule H/H1 sale. Patient: %s (%d/%s). Dr. %s Reg. %s Rx %s",
			r.PatientName, r.PatientAge, r.PatientGender, r.DoctorName, r.DoctorRegistrationNo, r.PrescriptionNo), "", "L", false)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "I", 7)
	pdf.CellFormat(pageWidth, 4, "Goods once sold are returnable only with this bill.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// expiryMonth prints YYYY-MM-DD as MM/YY, the form used on strips.
func expiryMonth(date string) string {
	t, err := timeutil.ParseDate(date)
	if err != nil {
		return date
	}
	return t.Format("01/06")
}
