package render

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/crop-stage-advisory/internal/domain"
)

// Sheet names of the report workbook.
const (
	SheetReport   = "Report"
	SheetForecast = "Forecast"
)

// ErrNoMatch is returned when an export is requested for a report without a matching row.
var ErrNoMatch = errors.New(domain.MsgNoMatch)

// WeatherColumns are the forecast sheet headers after the date column.
var WeatherColumns = []string{
	"Temperature Max (°C)",
	"Temperature Min (°C)",
	"Humidity (%)",
	"Precipitation (mm)",
	"Windspeed (km/h)",
	"Solar Radiation (MJ/m²)",
}

// Workbook exports a matched report as XLSX. The forecast sheet is only
// written when the report carries a forecast.
func Workbook(r domain.Report) ([]byte, error) {
	if !r.Matched {
		return nil, ErrNoMatch
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetReport); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeReportSheet(f, r); err != nil {
		return nil, err
	}
	if r.Forecast != nil {
		if _, err := f.NewSheet(SheetForecast); err != nil {
			return nil, fmt.Errorf("create forecast sheet: %w", err)
		}
		if err := writeForecastSheet(f, *r.Forecast); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeReportSheet(f *excelize.File, r domain.Report) error {
	w := r.Record.Weather
	rows := [][]any{
		{"State", r.Selection.State},
		{"District", r.Selection.District},
		{"Commodity", r.Selection.Commodity},
		{"Date", r.Selection.Date.Format(domain.DateLayout)},
		{"Crop Stage", r.Record.CropStage},
		{"Temperature Max (°C)", w.TempMax},
		{"Temperature Min (°C)", w.TempMin},
		{"Humidity (%)", w.Humidity},
		{"Precipitation (mm)", w.Precipitation},
		{"Windspeed (km/h)", w.Windspeed},
		{"Solar Radiation (MJ/m²)", w.SolarRadiation},
	}
	if r.AdvisoriesDefined {
		for i, a := range r.Advisories {
			label := ""
			if i == 0 {
				label = "Advisories"
			}
			rows = append(rows, []any{label, a})
		}
	} else {
		rows = append(rows, []any{"Advisories", domain.MsgNoAdvisories})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetReport, cell, &row); err != nil {
			return fmt.Errorf("write report row %d: %w", i+1, err)
		}
	}
	return f.SetColWidth(SheetReport, "A", "B", 28)
}

func writeForecastSheet(f *excelize.File, fc domain.Forecast) error {
	header := append([]any{"Date"}, toAny(WeatherColumns)...)
	if err := f.SetSheetRow(SheetForecast, "A1", &header); err != nil {
		return fmt.Errorf("write forecast header: %w", err)
	}
	for i, d := range fc.Days {
		w := d.Weather
		row := []any{
			d.Date.Format(domain.DateLayout),
			w.TempMax, w.TempMin, w.Humidity, w.Precipitation, w.Windspeed, w.SolarRadiation,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetForecast, cell, &row); err != nil {
			return fmt.Errorf("write forecast row %d: %w", i+2, err)
		}
	}
	if fc.Label != "" {
		cell, err := excelize.CoordinatesToCellName(1, len(fc.Days)+3)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetForecast, cell, fc.Label); err != nil {
			return fmt.Errorf("write forecast label: %w", err)
		}
	}
	return f.SetColWidth(SheetForecast, "A", "G", 22)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
