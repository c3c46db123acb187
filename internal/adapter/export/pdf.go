// Package export renders advisories as downloadable PDF and XLSX documents.
package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/jung-kurt/gofpdf"
)

// Content types for the rendered documents.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// PDFColor represents an RGB color.
type PDFColor struct {
	R int
	G int
	B int
}

// PDFOptions configures the advisory card layout.
type PDFOptions struct {
	PageSize       string
	Title          string
	FontFamily     string
	FontSize       float64
	TitleFontSize  float64
	HeaderColor    PDFColor
	AlternateColor PDFColor
	Margin         float64
}

// DefaultPDFOptions returns an A4 portrait layout.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageSize:       "A4",
		Title:          "Crop Advisory",
		FontFamily:     "Arial",
		FontSize:       10,
		TitleFontSize:  16,
		HeaderColor:    PDFColor{R: 56, G: 118, B: 29},
		AlternateColor: PDFColor{R: 242, G: 242, B: 242},
		Margin:         15,
	}
}

var recommendationColumns = []struct {
	label string
	width float64
}{
	{"#", 10}, {"Crop", 40}, {"Suitability", 25}, {"N", 18}, {"P", 18}, {"K", 18}, {"pH", 15}, {"Rainfall (mm)", 36},
}

// WritePDF renders a one-page advisory card: soil summary, ranked crops and
// the soil adjustments for the top crop.
func WritePDF(w io.Writer, a domain.Advisory, opts PDFOptions) error {
	pdf := gofpdf.New("P", "mm", opts.PageSize, "")
	pdf.SetMargins(opts.Margin, opts.Margin, opts.Margin)
	pdf.SetAutoPageBreak(true, opts.Margin)
	pdf.SetTitle(opts.Title, false)
	pdf.AddPage()

	pdf.SetFont(opts.FontFamily, "B", opts.TitleFontSize)
	pdf.CellFormat(0, 10, opts.Title, "", 1, "C", false, 0, "")

	pdf.SetFont(opts.FontFamily, "", opts.FontSize-1)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s  |  Strategy: %s  |  ID: %s",
		a.GeneratedAt.Format("2006-01-02 15:04 MST"), a.Strategy, a.ID), "", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	writeSection(pdf, opts, "Soil Profile")
	pdf.SetFont(opts.FontFamily, "", opts.FontSize)
	if a.Village != "" || a.FarmerID != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Farmer: %s   Village: %s", a.FarmerID, a.Village), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("NPK %s mg/kg   pH %.1f   Organic carbon %.2f%%",
		a.NPK, a.Soil.PH, a.Soil.OrganicCarbon), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	writeSection(pdf, opts, "Recommended Crops")
	if len(a.Recommendations) == 0 {
		pdf.SetFont(opts.FontFamily, "I", opts.FontSize)
		pdf.CellFormat(0, 6, domain.NoRecommendationsMessage, "", 1, "L", false, 0, "")
	} else {
		writeRecommendationTable(pdf, opts, a.Recommendations)
	}
	pdf.Ln(4)

	if top := a.TopCrop(); top != "" {
		writeSection(pdf, opts, "Soil Adjustments for "+domain.DisplayName(top))
		pdf.SetFont(opts.FontFamily, "", opts.FontSize)
		if len(a.Adjustments) == 0 {
			pdf.MultiCell(0, 6, "Soil nutrients and pH are within tolerance.", "", "L", false)
		}
		for _, adj := range a.Adjustments {
			pdf.MultiCell(0, 6, "- "+adj.Message, "", "L", false)
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

// PDFBytes renders the advisory card into memory.
func PDFBytes(a domain.Advisory) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, a, DefaultPDFOptions()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSection(pdf *gofpdf.Fpdf, opts PDFOptions, title string) {
	pdf.SetFont(opts.FontFamily, "B", opts.FontSize+2)
	pdf.SetTextColor(opts.HeaderColor.R, opts.HeaderColor.G, opts.HeaderColor.B)
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(1)
}

func writeRecommendationTable(pdf *gofpdf.Fpdf, opts PDFOptions, recs []domain.RankedRecommendation) {
	pdf.SetFont(opts.FontFamily, "B", opts.FontSize)
	pdf.SetFillColor(opts.HeaderColor.R, opts.HeaderColor.G, opts.HeaderColor.B)
	pdf.SetTextColor(255, 255, 255)
	for _, col := range recommendationColumns {
		pdf.CellFormat(col.width, 7, col.label, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(opts.FontFamily, "", opts.FontSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(opts.AlternateColor.R, opts.AlternateColor.G, opts.AlternateColor.B)
	for i, rec := range recs {
		r := rec.Requirements
		cells := []string{
			fmt.Sprintf("%d", i+1),
			domain.DisplayName(rec.Crop),
			fmt.Sprintf("%d%%", rec.Suitability),
			fmt.Sprintf("%.1f", r.N),
			fmt.Sprintf("%.1f", r.P),
			fmt.Sprintf("%.1f", r.K),
			fmt.Sprintf("%.1f", r.PH),
			fmt.Sprintf("%.1f", r.Rainfall),
		}
		fill := i%2 == 1
		for j, col := range recommendationColumns {
			align := "R"
			if j == 1 {
				align = "L"
			}
			pdf.CellFormat(col.width, 6, cells[j], "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}
}
