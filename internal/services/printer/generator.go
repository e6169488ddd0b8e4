package printer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/vijay-1103/transmittal-craft/internal/models"
)

const (
	pageMargin = 15.0
	lineHeight = 6.0
	qrSize     = 28.0
)

// Column widths of the document table (mm), summing to the printable width
var tableCols = []struct {
	title string
	width float64
	align string
}{
	{"No.", 10, "C"},
	{"Document No.", 32, "L"},
	{"Title", 72, "L"},
	{"Rev", 14, "C"},
	{"Copies", 16, "C"},
	{"Action", 36, "L"},
}

// GenerateTransmittalPDF renders the cover sheet of a transmittal as an A4 PDF
func GenerateTransmittalPDF(t *models.Transmittal) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(t.Title, true)
	pdf.AddPage()

	// Core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	number := "DRAFT"
	if t.TransmittalNumber != nil {
		number = *t.TransmittalNumber
	}

	// QR code top right: the transmittal number, or the id while still a draft
	qrContent := t.ID
	if t.TransmittalNumber != nil {
		qrContent = *t.TransmittalNumber
	}
	qrPng, err := qrcode.Encode(qrContent, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("qr", imgOptions, bytes.NewReader(qrPng))
	pageW, _ := pdf.GetPageSize()
	pdf.ImageOptions("qr", pageW-pageMargin-qrSize, pageMargin, qrSize, qrSize, false, imgOptions, 0, "")

	// Header
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, "TRANSMITTAL", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, tr(number), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(pageW-2*pageMargin-qrSize-4, lineHeight, tr(t.Title), "", "L", false)
	pdf.SetY(pageMargin + qrSize + 4)

	// Addressing block
	rows := [][2]string{
		{"To", fmt.Sprintf("%s %s (%s)", t.Salutation, t.RecipientName, t.SendTo)},
		{"From", fmt.Sprintf("%s, %s", t.SenderName, t.SenderDesignation)},
		{"Date", t.TransmittalDate.String()},
		{"Type", t.TransmittalType},
		{"Department", t.Department},
		{"Send mode", string(t.SendMode)},
	}
	if t.DesignStage != nil {
		rows = append(rows, [2]string{"Design stage", *t.DesignStage})
	}
	if t.ProjectName != nil {
		rows = append(rows, [2]string{"Project", *t.ProjectName})
	}
	if t.Purpose != nil {
		rows = append(rows, [2]string{"Purpose", *t.Purpose})
	}
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(35, lineHeight, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, lineHeight, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Document table
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range tableCols {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	if len(t.Documents) == 0 {
		pdf.CellFormat(0, 7, "No documents attached", "1", 1, "C", false, 0, "")
	}
	for i, doc := range t.Documents {
		cells := []string{
			strconv.Itoa(i + 1),
			doc.DocumentNo,
			doc.Title,
			strconv.Itoa(doc.Revision),
			strconv.Itoa(doc.Copies),
			doc.Action,
		}
		for j, col := range tableCols {
			pdf.CellFormat(col.width, 7, tr(fit(pdf, cells[j], col.width)), "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	if t.Remarks != nil && *t.Remarks != "" {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, lineHeight, "Remarks", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, lineHeight, tr(*t.Remarks), "", "L", false)
		pdf.Ln(4)
	}

	// Acknowledgement footer
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, lineHeight, fmt.Sprintf("Total documents: %d", t.DocumentCount), "", 1, "L", false, 0, "")
	pdf.Ln(10)
	pdf.CellFormat(80, lineHeight, "Received by: ____________________", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, lineHeight, "Date: ____________", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fit shortens s with an ellipsis until it fits into width mm at the current font
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	const pad = 2.0
	if pdf.GetStringWidth(s) <= width-pad {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width-pad {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
