package http

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	power "quartz-india-api/internal/power/domain"
)

// BuildForecastCSV renders a forecast series as time,power_mw rows.
func BuildForecastCSV(series power.TimeSeries) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"time", "power_mw"}); err != nil {
		return nil, err
	}
	for _, p := range series.Points {
		record := []string{
			p.At.UTC().Format(time.RFC3339),
			strconv.FormatFloat(p.PowerMW, 'f', 3, 64),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildForecastPDF renders a minimal PDF for a forecast series.
func BuildForecastPDF(site power.Site, series power.TimeSeries, horizon power.Horizon) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Generation Forecast")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Site: %s", site.Name))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Asset Type: %s", site.AssetType))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Capacity (MW): %.1f", site.CapacityMW))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Horizon: %s", horizon))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Resolution: %s", series.Resolution))
	pdf.Ln(8)

	// Points table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(70, 6, "Time (UTC)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Power (MW)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, p := range series.Points {
		pdf.CellFormat(70, 6, p.At.UTC().Format("2006-01-02 15:04"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, fmt.Sprintf("%.3f", p.PowerMW), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildForecastXLSX renders a minimal XLSX for a forecast series.
func BuildForecastXLSX(site power.Site, series power.TimeSeries, horizon power.Horizon) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	pointsSheet := "points"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(pointsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Generation Forecast")
	_ = f.SetCellValue(summarySheet, "A3", "Site")
	_ = f.SetCellValue(summarySheet, "B3", site.Name)
	_ = f.SetCellValue(summarySheet, "A4", "Site ID")
	_ = f.SetCellValue(summarySheet, "B4", site.ID)
	_ = f.SetCellValue(summarySheet, "A5", "Asset Type")
	_ = f.SetCellValue(summarySheet, "B5", string(site.AssetType))
	_ = f.SetCellValue(summarySheet, "A6", "Capacity (MW)")
	_ = f.SetCellValue(summarySheet, "B6", site.CapacityMW)
	_ = f.SetCellValue(summarySheet, "A7", "Horizon")
	_ = f.SetCellValue(summarySheet, "B7", string(horizon))
	_ = f.SetCellValue(summarySheet, "A8", "Resolution")
	_ = f.SetCellValue(summarySheet, "B8", series.Resolution.String())
	_ = f.SetCellValue(summarySheet, "A9", "Points")
	_ = f.SetCellValue(summarySheet, "B9", len(series.Points))

	_ = f.SetCellValue(pointsSheet, "A1", "Time (UTC)")
	_ = f.SetCellValue(pointsSheet, "B1", "Power (MW)")
	for i, p := range series.Points {
		row := i + 2
		_ = f.SetCellValue(pointsSheet, fmt.Sprintf("A%d", row), p.At.UTC().Format("2006-01-02 15:04"))
		_ = f.SetCellValue(pointsSheet, fmt.Sprintf("B%d", row), p.PowerMW)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
