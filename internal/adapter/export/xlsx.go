package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/couchcryptid/crop-advisory-service/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Sheet names in the advisory workbook.
const (
	SheetRecommendations = "Recommendations"
	SheetAdjustments     = "Adjustments"
	SheetSoil            = "Soil"
)

// WriteXLSX renders the advisory as a workbook with one sheet each for
// ranked crops, soil adjustments and the submitted soil profile.
func WriteXLSX(w io.Writer, a domain.Advisory) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook

	if err := f.SetSheetName("Sheet1", SheetRecommendations); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetAdjustments, SheetSoil} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"38761D"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	recRows := make([][]any, 0, len(a.Recommendations))
	for i, rec := range a.Recommendations {
		r := rec.Requirements
		recRows = append(recRows, []any{
			i + 1, domain.DisplayName(rec.Crop), rec.Suitability,
			r.N, r.P, r.K, r.PH, r.Temperature, r.Humidity, r.Rainfall,
		})
	}
	if err := writeTable(f, SheetRecommendations, headerStyle,
		[]string{"Rank", "Crop", "Suitability (%)", "N", "P", "K", "pH", "Temperature (C)", "Humidity (%)", "Rainfall (mm)"},
		recRows); err != nil {
		return err
	}

	adjRows := make([][]any, 0, len(a.Adjustments))
	for _, adj := range a.Adjustments {
		adjRows = append(adjRows, []any{adj.Parameter, adj.Action, adj.Amount, adj.Unit, adj.Amendment, adj.Message})
	}
	if err := writeTable(f, SheetAdjustments, headerStyle,
		[]string{"Parameter", "Action", "Amount", "Unit", "Amendment", "Message"},
		adjRows); err != nil {
		return err
	}

	soilRows := [][]any{
		{"Advisory ID", a.ID},
		{"Request ID", a.RequestID},
		{"Farmer ID", a.FarmerID},
		{"Village", a.Village},
		{"NPK", a.NPK},
		{"Nitrogen", a.Soil.Nitrogen},
		{"Phosphorus", a.Soil.Phosphorus},
		{"Potassium", a.Soil.Potassium},
		{"pH", a.Soil.PH},
		{"Organic carbon (%)", a.Soil.OrganicCarbon},
		{"Strategy", a.Strategy},
		{"Generated at", a.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
	}
	if err := writeTable(f, SheetSoil, headerStyle, []string{"Field", "Value"}, soilRows); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// XLSXBytes renders the workbook into memory.
func XLSXBytes(a domain.Advisory) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, a); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeTable(f *excelize.File, sheet string, headerStyle int, header []string, rows [][]any) error {
	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}

	lastHeader, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		return fmt.Errorf("size %s columns: %w", sheet, err)
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
