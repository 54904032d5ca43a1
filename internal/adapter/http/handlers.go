package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/crop-stage-advisory/internal/domain"
	"github.com/couchcryptid/crop-stage-advisory/internal/render"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type weatherDTO struct {
	TempMax        float64 `json:"temp_max"`
	TempMin        float64 `json:"temp_min"`
	Humidity       float64 `json:"humidity"`
	Precipitation  float64 `json:"precipitation"`
	Windspeed      float64 `json:"windspeed"`
	SolarRadiation float64 `json:"solar_radiation"`
}

func newWeatherDTO(w domain.Weather) weatherDTO {
	return weatherDTO{
		TempMax:        w.TempMax,
		TempMin:        w.TempMin,
		Humidity:       w.Humidity,
		Precipitation:  w.Precipitation,
		Windspeed:      w.Windspeed,
		SolarRadiation: w.SolarRadiation,
	}
}

type forecastDayDTO struct {
	Date string `json:"date"`
	weatherDTO
}

type forecastDTO struct {
	Synthetic bool             `json:"synthetic"`
	Label     string           `json:"label"`
	Days      []forecastDayDTO `json:"days"`
}

type reportResponse struct {
	State             string       `json:"state"`
	District          string       `json:"district"`
	Commodity         string       `json:"commodity"`
	Date              string       `json:"date"`
	Matched           bool         `json:"matched"`
	CropStage         string       `json:"crop_stage,omitempty"`
	Weather           *weatherDTO  `json:"weather,omitempty"`
	AdvisoriesDefined bool         `json:"advisories_defined"`
	Advisories        []string     `json:"advisories"`
	Message           string       `json:"message,omitempty"`
	Forecast          *forecastDTO `json:"forecast,omitempty"`
	ResolvedAt        time.Time    `json:"resolved_at"`
}

func newReportResponse(r domain.Report) reportResponse {
	resp := reportResponse{
		State:             r.Selection.State,
		District:          r.Selection.District,
		Commodity:         r.Selection.Commodity,
		Date:              r.Selection.Date.Format(domain.DateLayout),
		Matched:           r.Matched,
		AdvisoriesDefined: r.AdvisoriesDefined,
		Advisories:        []string{},
		Message:           r.Message(),
		ResolvedAt:        r.ResolvedAt,
	}
	if r.Advisories != nil {
		resp.Advisories = r.Advisories
	}
	if !r.Matched {
		return resp
	}
	resp.CropStage = r.Record.CropStage
	w := newWeatherDTO(r.Record.Weather)
	resp.Weather = &w
	if r.Forecast != nil {
		fc := &forecastDTO{Synthetic: r.Forecast.Synthetic, Label: r.Forecast.Label, Days: make([]forecastDayDTO, len(r.Forecast.Days))}
		for i, d := range r.Forecast.Days {
			fc.Days[i] = forecastDayDTO{Date: d.Date.Format(domain.DateLayout), weatherDTO: newWeatherDTO(d.Weather)}
		}
		resp.Forecast = fc
	}
	return resp
}

type modelDTO struct {
	Path   string `json:"path"`
	Size   int64  `json:"size_bytes"`
	SHA256 string `json:"sha256"`
}

type statusDTO struct {
	Records           int       `json:"records"`
	Stages            int       `json:"stages"`
	ForecastEnabled   bool      `json:"forecast_enabled"`
	PublishingEnabled bool      `json:"publishing_enabled"`
	Model             *modelDTO `json:"model,omitempty"`
}

func newStatusDTO(st domain.Status) statusDTO {
	dto := statusDTO{
		Records:           st.Records,
		Stages:            st.Stages,
		ForecastEnabled:   st.ForecastEnabled,
		PublishingEnabled: st.PublishingEnabled,
	}
	if st.Model != nil {
		dto.Model = &modelDTO{Path: st.Model.Path, Size: st.Model.Size, SHA256: st.Model.SHA256}
	}
	return dto
}

type readyResponse struct {
	Status string    `json:"status"`
	Assets statusDTO `json:"assets"`
}

func (s *Server) handleStates(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.svc.States())
}

func (s *Server) handleDistricts(w http.ResponseWriter, r *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.svc.Districts(r.URL.Query().Get("state")))
}

func (s *Server) handleCommodities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sharedobs.WriteJSON(w, http.StatusOK, s.svc.Commodities(q.Get("state"), q.Get("district")))
}

func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sharedobs.WriteJSON(w, http.StatusOK, formatDates(s.svc.Dates(q.Get("state"), q.Get("district"), q.Get("commodity"))))
}

func (s *Server) handleAdvisory(w http.ResponseWriter, r *http.Request) {
	report, ok := s.resolveQuery(w, r, true)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, newReportResponse(report))
}

func (s *Server) handleForecastChart(w http.ResponseWriter, r *http.Request) {
	report, ok := s.resolveQuery(w, r, false)
	if !ok {
		return
	}
	if !report.Matched {
		writeError(w, http.StatusNotFound, domain.MsgNoMatch)
		return
	}
	if report.Forecast == nil {
		writeError(w, http.StatusNotFound, "forecast disabled")
		return
	}
	png, err := render.ForecastChart(*report.Forecast)
	if err != nil {
		s.logger.Error("render forecast chart", "key", report.Selection.Key(), "error", err)
		writeError(w, http.StatusInternalServerError, "render chart failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png) //nolint:errcheck // client may disconnect
}

func (s *Server) handleWorkbook(w http.ResponseWriter, r *http.Request) {
	report, ok := s.resolveQuery(w, r, false)
	if !ok {
		return
	}
	data, err := render.Workbook(report)
	if errors.Is(err, render.ErrNoMatch) {
		writeError(w, http.StatusNotFound, domain.MsgNoMatch)
		return
	}
	if err != nil {
		s.logger.Error("render workbook", "key", report.Selection.Key(), "error", err)
		writeError(w, http.StatusInternalServerError, "render workbook failed")
		return
	}
	name := fmt.Sprintf("crop-advisory-%s.xlsx", report.Selection.Date.Format(domain.DateLayout))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(data) //nolint:errcheck // client may disconnect
}

// resolveQuery parses the selection from the query string and builds its
// report. Only interactive requests are recorded; exports of a selection the
// user already resolved are not. It writes a 400 response and returns false
// for a malformed or incomplete selection.
func (s *Server) resolveQuery(w http.ResponseWriter, r *http.Request, interactive bool) (domain.Report, bool) {
	q := r.URL.Query()
	sel, err := domain.NewSelection(q.Get("state"), q.Get("district"), q.Get("commodity"), q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return domain.Report{}, false
	}
	var report domain.Report
	if interactive {
		report, err = s.svc.Resolve(r.Context(), sel)
	} else {
		report, err = s.svc.Report(sel)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return domain.Report{}, false
	}
	return report, true
}

// handleDashboard renders the page. Each select defaults to its first option
// when the submitted value is not among the current options, and the date
// defaults to today.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d := render.Dashboard{States: s.svc.States()}
	d.Selected.State = pick(q.Get("state"), d.States)
	d.Districts = s.svc.Districts(d.Selected.State)
	d.Selected.District = pick(q.Get("district"), d.Districts)
	d.Commodities = s.svc.Commodities(d.Selected.State, d.Selected.District)
	d.Selected.Commodity = pick(q.Get("commodity"), d.Commodities)
	d.Dates = formatDates(s.svc.Dates(d.Selected.State, d.Selected.District, d.Selected.Commodity))

	d.Selected.Date = q.Get("date")
	if d.Selected.Date == "" {
		d.Selected.Date = domain.Today().Format(domain.DateLayout)
	}

	if q.Get("predict") != "" {
		s.predict(r, &d)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.RenderDashboard(w, d); err != nil {
		s.logger.Error("render dashboard", "error", err)
	}
}

func (s *Server) predict(r *http.Request, d *render.Dashboard) {
	sel, err := domain.NewSelection(d.Selected.State, d.Selected.District, d.Selected.Commodity, d.Selected.Date)
	if err != nil {
		d.Error = err.Error()
		return
	}
	report, err := s.svc.Resolve(r.Context(), sel)
	if err != nil {
		d.Error = err.Error()
		return
	}

	d.Report = render.NewReportView(report)
	if !report.Matched {
		return
	}
	d.ExportURL = "/api/report.xlsx?" + url.Values{
		"state":     {sel.State},
		"district":  {sel.District},
		"commodity": {sel.Commodity},
		"date":      {d.Selected.Date},
	}.Encode()
	if report.Forecast == nil {
		return
	}
	png, err := render.ForecastChart(*report.Forecast)
	if err != nil {
		s.logger.Warn("render forecast chart", "key", sel.Key(), "error", err)
		return
	}
	d.ChartURI = render.PNGDataURI(png)
}

func pick(v string, options []string) string {
	if slices.Contains(options, v) {
		return v
	}
	if len(options) > 0 {
		return options[0]
	}
	return ""
}

func formatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(domain.DateLayout)
	}
	return out
}
