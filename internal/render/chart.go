package render

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/couchcryptid/crop-stage-advisory/internal/domain"
)

// ErrEmptyForecast is returned when a chart is requested for a forecast without days.
var ErrEmptyForecast = errors.New("forecast has no days")

// Chart dimensions of the full 3x2 grid.
const (
	ChartWidth  = 15 * vg.Inch
	ChartHeight = 12 * vg.Inch
)

type panel struct {
	title  string
	ylabel string
	color  color.RGBA
	value  func(domain.Weather) float64
}

// panels are laid out row-major over the 3x2 grid.
var panels = []panel{
	{"Max Temperature", "Temperature (°C)", color.RGBA{R: 220, A: 255}, func(w domain.Weather) float64 { return w.TempMax }},
	{"Min Temperature", "Temperature (°C)", color.RGBA{B: 220, A: 255}, func(w domain.Weather) float64 { return w.TempMin }},
	{"Humidity", "Humidity (%)", color.RGBA{G: 128, A: 255}, func(w domain.Weather) float64 { return w.Humidity }},
	{"Precipitation", "Precipitation (mm)", color.RGBA{R: 128, B: 128, A: 255}, func(w domain.Weather) float64 { return w.Precipitation }},
	{"Windspeed", "Windspeed (km/h)", color.RGBA{R: 255, G: 165, A: 255}, func(w domain.Weather) float64 { return w.Windspeed }},
	{"Solar Radiation", "Solar Radiation (MJ/m²)", color.RGBA{R: 165, G: 42, B: 42, A: 255}, func(w domain.Weather) float64 { return w.SolarRadiation }},
}

// ForecastChart draws the weather trend grid for f and returns it as PNG.
func ForecastChart(f domain.Forecast) ([]byte, error) {
	if len(f.Days) == 0 {
		return nil, ErrEmptyForecast
	}

	const rows, cols = 3, 2
	plots := make([][]*plot.Plot, rows)
	for i := range plots {
		plots[i] = make([]*plot.Plot, cols)
		for j := range plots[i] {
			p, err := panelPlot(panels[i*cols+j], f)
			if err != nil {
				return nil, err
			}
			plots[i][j] = p
		}
	}

	img := vgimg.New(ChartWidth, ChartHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      rows,
		Cols:      cols,
		PadX:      vg.Millimeter * 6,
		PadY:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 4,
		PadBottom: vg.Millimeter * 4,
		PadLeft:   vg.Millimeter * 4,
		PadRight:  vg.Millimeter * 4,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range rows {
		for j := range cols {
			plots[i][j].Draw(canvases[i][j])
		}
	}

	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode chart png: %w", err)
	}
	return buf.Bytes(), nil
}

func panelPlot(pn panel, f domain.Forecast) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = pn.title
	if f.Synthetic {
		p.Title.Text += " (synthetic)"
	}
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = pn.ylabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "Jan 02"}

	points := make(plotter.XYs, len(f.Days))
	for i, d := range f.Days {
		points[i].X = float64(d.Date.Unix())
		points[i].Y = pn.value(d.Weather)
	}
	line, err := plotter.NewLine(points)
	if err != nil {
		return nil, fmt.Errorf("plot %s: %w", pn.title, err)
	}
	line.Color = pn.color
	line.Width = vg.Points(2)

	p.Add(line)
	p.Add(plotter.NewGrid())
	return p, nil
}
