package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"
)

type PDFExporter struct{}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

func (PDFExporter) Format() string    { return FormatPDF }
func (PDFExporter) Extension() string { return "pdf" }
func (PDFExporter) MimeType() string  { return "application/pdf" }

// Export renders a landscape A4 document with one grid per table.
func (e PDFExporter) Export(_ context.Context, doc Document) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(usable, 8, tr(doc.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(usable, 5, tr(periodLine(doc)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, table := range doc.Tables {
		writeGrid(pdf, tr, table, usable)
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(usable, 6, tr(fmt.Sprintf("Total Penalty: %.2f", doc.TotalAmount)), "", 1, "R", false, 0, "")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(usable/2, 5, tr("Prepared by: "+doc.PreparedBy), "", 0, "L", false, 0, "")
	pdf.CellFormat(usable/2, 5, tr("Noted by: "+doc.NotedBy), "", 1, "L", false, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeGrid(pdf *fpdf.Fpdf, tr func(string) string, table Table, usable float64) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(usable, 7, tr(table.Title), "", 1, "L", false, 0, "")

	if len(table.Rows) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(usable, 6, "No records for this period.", "", 1, "L", false, 0, "")
		return
	}

	fontSize := 9.0
	if len(table.Columns) > 8 {
		fontSize = 6
	}
	width := usable / float64(len(table.Columns))
	lineHeight := fontSize * 0.6

	pdf.SetFont("Helvetica", "B", fontSize)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range table.Columns {
		pdf.CellFormat(width, lineHeight+1, fit(pdf, tr(col), width), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", fontSize)
	for _, row := range table.Rows {
		for _, col := range table.Columns {
			v, _ := row.Get(col)
			pdf.CellFormat(width, lineHeight+1, fit(pdf, tr(Text(v)), width), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// fit trims text to the cell width.
func fit(pdf *fpdf.Fpdf, s string, width float64) string {
	limit := width - 2
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > limit {
		s = s[:len(s)-1]
	}
	return s + "..."
}

func periodLine(doc Document) string {
	const layout = "January 2, 2006"
	if doc.Range.From.IsZero() {
		return "Period: " + doc.Period
	}
	return fmt.Sprintf("Period: %s (%s - %s)", doc.Period, doc.Range.From.Format(layout), doc.Range.To.Format(layout))
}
