package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"billcraft/internal/common"
	"billcraft/internal/models"

	"github.com/jung-kurt/gofpdf"
)

// PDFService renders invoices into A4 documents.
type PDFService interface {
	RenderInvoice(invoice *models.Invoice, profile *models.BusinessProfile) ([]byte, error)
}

type pdfService struct{}

func NewPDFService() PDFService {
	return &pdfService{}
}

// RenderInvoice lays out a fixed A4 portrait invoice: issuer block on the
// left, logo on the right, recipient block, items table, totals block.
// Profile may be nil when the tenant never set one up.
func (s *pdfService) RenderInvoice(invoice *models.Invoice, profile *models.BusinessProfile) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	marginX := 20.0
	marginY := 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)

	currency := "INR"
	if profile != nil && profile.Currency != "" {
		currency = profile.Currency
	}

	// Logo in the top-right corner when the profile carries one.
	if profile != nil {
		s.drawLogo(pdf, profile)
	}

	pdf.SetFont("Arial", "B", 20)
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(marginX, marginY)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, invoice.InvoiceNumber)
	pdf.Ln(12)

	// Issuer block.
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, "FROM:")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
	if profile != nil && profile.BusinessName != "" {
		pdf.Cell(0, 6, profile.BusinessName)
		pdf.Ln(6)
		if profile.Email != "" {
			pdf.Cell(0, 6, profile.Email)
			pdf.Ln(6)
		}
		if addr := common.SafeString(profile.Address); addr != "" {
			pdf.MultiCell(90, 6, addr, "", "L", false)
		}
		if phone := common.SafeString(profile.Phone); phone != "" {
			pdf.Cell(0, 6, "Phone: "+phone)
			pdf.Ln(6)
		}
		if gst := common.SafeString(profile.GSTNumber); gst != "" {
			pdf.Cell(0, 6, "GST: "+gst)
			pdf.Ln(6)
		}
	} else {
		pdf.Cell(0, 6, "-")
		pdf.Ln(6)
	}
	pdf.Ln(4)

	// Recipient block from the invoice snapshot.
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, "BILL TO:")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, invoice.Customer.Name)
	pdf.Ln(6)
	if invoice.Customer.Email != "" {
		pdf.Cell(0, 6, invoice.Customer.Email)
		pdf.Ln(6)
	}
	if invoice.Customer.Address != "" {
		pdf.MultiCell(90, 6, invoice.Customer.Address, "", "L", false)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Issue Date: %s", invoice.IssueDate.Format("02-Jan-2006")))
	pdf.Ln(6)
	if invoice.DueDate != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Due Date: %s", invoice.DueDate.Format("02-Jan-2006")))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", strings.ToUpper(invoice.Status)))
	pdf.Ln(10)

	// Items table.
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(80, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 8, "Unit Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Total", "1", 0, "R", true, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	for _, item := range invoice.Items {
		pdf.CellFormat(80, 8, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%.2f", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", item.Total), "1", 0, "R", false, 0, "")
		pdf.Ln(8)
	}
	pdf.Ln(4)

	// Totals block, right aligned.
	totalsLabel := func(label string, value float64) {
		pdf.CellFormat(135, 7, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, fmt.Sprintf("%s %.2f", currency, value), "", 0, "R", false, 0, "")
		pdf.Ln(7)
	}
	totalsLabel("Subtotal:", invoice.SubTotal)
	if invoice.TaxAmount > 0 {
		totalsLabel(fmt.Sprintf("Tax (%.2f%%):", invoice.TaxRate), invoice.TaxAmount)
	}
	if invoice.DiscountAmount > 0 {
		totalsLabel(fmt.Sprintf("Discount (%.2f%%):", invoice.DiscountRate), -invoice.DiscountAmount)
	}
	pdf.SetFont("Arial", "B", 12)
	totalsLabel("Total:", invoice.TotalAmount)

	if notes := common.SafeString(invoice.Notes); notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "Notes:")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 6, notes, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// drawLogo decodes a base64 data URI logo from the profile and places it in
// the top-right corner. A malformed logo is logged and skipped; it never
// fails the render.
func (s *pdfService) drawLogo(pdf *gofpdf.Fpdf, profile *models.BusinessProfile) {
	logo := common.SafeString(profile.LogoURL)
	if logo == "" {
		return
	}

	idx := strings.Index(logo, "base64,")
	if !strings.HasPrefix(logo, "data:image/") || idx < 0 {
		return
	}

	imageType := "PNG"
	if strings.HasPrefix(logo, "data:image/jpeg") || strings.HasPrefix(logo, "data:image/jpg") {
		imageType = "JPG"
	}

	raw, err := base64.StdEncoding.DecodeString(logo[idx+len("base64,"):])
	if err != nil {
		log.Printf("warning: failed to decode business logo: %v", err)
		return
	}

	opts := gofpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader("business-logo", opts, bytes.NewReader(raw))
	if pdf.Err() {
		log.Printf("warning: failed to register business logo: %v", pdf.Error())
		pdf.ClearError()
		return
	}
	pdf.ImageOptions("business-logo", 160, 15, 30, 0, false, opts, 0, "")
}
