package main

import (
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/jadenpxrk/fastats/internal/summary"
)

const (
	pdfPageWidth  = 210 // A4 width in mm
	pdfMargin     = 10  // Margin in mm
	pdfLineHeight = 6   // Line height in mm
	pdfFontSize   = 9
)

// pdfColumnWidths are the widths in mm of the summary.Header columns; the
// file name column takes what is left of the page.
var pdfColumnWidths = []float64{0, 22, 28, 22, 22, 22}

// generatePDF renders the summary table as an A4 report.
func generatePDF(results []summary.Summary, failed int, opts Options, outputPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", pdfFontSize+3)
		pdf.CellFormat(0, pdfLineHeight+2, "FASTA sequence length summary", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", pdfFontSize-1)
		pdf.CellFormat(0, pdfLineHeight, fmt.Sprintf("Generated %s, minimum length %d", time.Now().Format(time.RFC3339), opts.MinLen), "", 1, "L", false, 0, "")
		pdf.Ln(2)
		writePDFRow(pdf, summary.Header, true)
	})
	pdf.AddPage()

	pdf.SetFont("Courier", "", pdfFontSize)
	for _, s := range results {
		writePDFRow(pdf, s.Fields(), false)
	}

	pdf.Ln(pdfLineHeight)
	pdf.SetFont("Helvetica", "", pdfFontSize)
	summaryString := fmt.Sprintf("Inputs summarized: %d", len(results))
	if failed > 0 {
		summaryString += fmt.Sprintf("\nInputs failed to read: %d", failed)
	}
	pdf.MultiCell(pdfPageWidth-2*pdfMargin, pdfLineHeight, summaryString, "", "L", false)

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("failed to save PDF to %s: %w", outputPath, err)
	}
	return nil
}

func writePDFRow(pdf *gofpdf.Fpdf, fields []string, header bool) {
	if header {
		pdf.SetFont("Helvetica", "B", pdfFontSize)
		pdf.SetFillColor(230, 230, 230)
	} else {
		pdf.SetFont("Courier", "", pdfFontSize)
	}

	nameWidth := float64(pdfPageWidth - 2*pdfMargin)
	for _, w := range pdfColumnWidths[1:] {
		nameWidth -= w
	}
	for i, field := range fields {
		width, align := pdfColumnWidths[i], "R"
		if i == 0 {
			width, align = nameWidth, "L"
			field = truncateToWidth(pdf, field, width-2)
		}
		pdf.CellFormat(width, pdfLineHeight, field, "1", 0, align, header, 0, "")
	}
	pdf.Ln(-1)
}

// truncateToWidth shortens s from the left so it fits in width mm, keeping
// the file name end of long paths visible.
func truncateToWidth(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth("..."+string(r)) > width {
		r = r[1:]
	}
	return "..." + string(r)
}
