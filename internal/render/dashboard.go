package render

import (
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/couchcryptid/crop-stage-advisory/internal/domain"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTmpl = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// SelectedView holds the form values shown in the sidebar and header.
type SelectedView struct {
	State     string
	District  string
	Commodity string
	Date      string
}

// WeatherItem is one labelled weather reading.
type WeatherItem struct {
	Name  string
	Value string
	Unit  string
}

// ReportView is the template projection of a domain.Report.
type ReportView struct {
	Matched           bool
	CropStage         string
	Advisories        []string
	AdvisoriesDefined bool
	Message           string
	Weather           []WeatherItem
	ForecastLabel     string
}

// Dashboard is the data rendered by the dashboard page.
type Dashboard struct {
	States      []string
	Districts   []string
	Commodities []string
	Dates       []string
	Selected    SelectedView

	Report    *ReportView
	ChartURI  template.URL
	ExportURL string
	Error     string
}

// NewReportView projects r for the dashboard.
func NewReportView(r domain.Report) *ReportView {
	v := &ReportView{
		Matched:           r.Matched,
		Message:           r.Message(),
		AdvisoriesDefined: r.AdvisoriesDefined,
		Advisories:        r.Advisories,
	}
	if !r.Matched {
		return v
	}
	v.CropStage = r.Record.CropStage
	v.Weather = WeatherItems(r.Record.Weather)
	if r.Forecast != nil {
		v.ForecastLabel = r.Forecast.Label
	}
	return v
}

// WeatherItems lists the recorded readings with their display units.
func WeatherItems(w domain.Weather) []WeatherItem {
	return []WeatherItem{
		{"Temperature Max", formatReading(w.TempMax), "°C"},
		{"Temperature Min", formatReading(w.TempMin), "°C"},
		{"Humidity", formatReading(w.Humidity), "%"},
		{"Precipitation", formatReading(w.Precipitation), "mm"},
		{"Windspeed", formatReading(w.Windspeed), "km/h"},
		{"Solar Radiation", formatReading(w.SolarRadiation), "MJ/m²"},
	}
}

// formatReading prints a value as stored, without padding or rounding.
func formatReading(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PNGDataURI embeds a PNG image for inline display.
func PNGDataURI(png []byte) template.URL {
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)) //nolint:gosec // generated image bytes
}

// RenderDashboard writes the dashboard page for d.
func RenderDashboard(w io.Writer, d Dashboard) error {
	if err := dashboardTmpl.Execute(w, d); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	return nil
}
