package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	httpadapter "github.com/couchcryptid/crop-stage-advisory/internal/adapter/http"
	"github.com/couchcryptid/crop-stage-advisory/internal/advisory"
	"github.com/couchcryptid/crop-stage-advisory/internal/domain"
	"github.com/couchcryptid/crop-stage-advisory/internal/observability"
)

const matchQuery = "state=Odisha&district=Cuttack&commodity=Rice&date=2023-07-15"

var july15 = time.Date(2023, 7, 15, 0, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	published []domain.Report
}

func (p *recordingPublisher) Publish(_ context.Context, r domain.Report) error {
	p.published = append(p.published, r)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDataset() *domain.Dataset {
	return domain.NewDataset([]domain.Record{
		{
			State: "Odisha", District: "Cuttack", Commodity: "Rice", Date: july15,
			CropStage: domain.StageVegetative,
			Weather:   domain.Weather{TempMax: 33.1, TempMin: 26.4, Humidity: 84, Precipitation: 12.5, Windspeed: 9.3, SolarRadiation: 17.2},
		},
		{State: "Odisha", District: "Cuttack", Commodity: "Rice", Date: july15.AddDate(0, 0, 1), CropStage: domain.StageVegetative},
		{State: "Odisha", District: "Puri", Commodity: "Groundnut", Date: july15, CropStage: "Flowering stage"},
		{State: "Punjab", District: "Ludhiana", Commodity: "Wheat", Date: july15, CropStage: domain.StageEstablishment},
	})
}

func newTestServer(t *testing.T, opts ...advisory.Option) *httpadapter.Server {
	t.Helper()
	opts = append([]advisory.Option{advisory.WithForecaster(domain.NewSeededForecaster(42))}, opts...)
	svc := advisory.New(testDataset(), domain.DefaultCatalog(), discardLogger(), observability.NewMetricsForTesting(), opts...)
	return httpadapter.NewServer(":0", svc, nil, discardLogger())
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(t), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	model := &domain.ModelArtifact{Path: "xgb_model.pkl", Size: 3, SHA256: "ba7816bf"}
	rec := get(t, newTestServer(t, advisory.WithModelArtifact(model)), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"status": "ready",
		"assets": {
			"records": 4,
			"stages": 4,
			"forecast_enabled": true,
			"publishing_enabled": false,
			"model": {"path": "xgb_model.pkl", "size_bytes": 3, "sha256": "ba7816bf"}
		}
	}`, rec.Body.String())
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	svc := advisory.New(nil, nil, discardLogger(), observability.NewMetricsForTesting())
	srv := httpadapter.NewServer(":0", svc, nil, discardLogger())

	rec := get(t, srv, "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.NotEmpty(t, body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestOptionsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		target string
		want   string
	}{
		{"/api/states", `["Odisha","Punjab"]`},
		{"/api/districts?state=Odisha", `["Cuttack","Puri"]`},
		{"/api/districts?state=Kerala", `[]`},
		{"/api/commodities?state=Odisha&district=Puri", `["Groundnut"]`},
		{"/api/dates?state=Odisha&district=Cuttack&commodity=Rice", `["2023-07-15","2023-07-16"]`},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, srv, tt.target)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestAdvisoryEndpoint(t *testing.T) {
	srv := newTestServer(t)

	t.Run("matched", func(t *testing.T) {
		rec := get(t, srv, "/api/advisory?"+matchQuery)
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, true, body["matched"])
		assert.Equal(t, domain.StageVegetative, body["crop_stage"])
		assert.Equal(t, true, body["advisories_defined"])
		assert.Len(t, body["advisories"], 4)
		assert.NotContains(t, body, "message")

		weather := body["weather"].(map[string]any)
		assert.Equal(t, 33.1, weather["temp_max"])
		assert.Equal(t, 17.2, weather["solar_radiation"])

		forecast := body["forecast"].(map[string]any)
		assert.Equal(t, true, forecast["synthetic"])
		assert.Equal(t, domain.SyntheticLabel, forecast["label"])
		days := forecast["days"].([]any)
		require.Len(t, days, domain.ForecastDays)
		assert.Equal(t, "2023-07-15", days[0].(map[string]any)["date"])
	})

	t.Run("no match", func(t *testing.T) {
		rec := get(t, srv, "/api/advisory?state=Odisha&district=Cuttack&commodity=Rice&date=2023-07-14")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, false, body["matched"])
		assert.Equal(t, domain.MsgNoMatch, body["message"])
		assert.Equal(t, []any{}, body["advisories"])
		assert.NotContains(t, body, "forecast")
		assert.NotContains(t, body, "weather")
	})

	t.Run("stage without advisories", func(t *testing.T) {
		rec := get(t, srv, "/api/advisory?state=Odisha&district=Puri&commodity=Groundnut&date=2023-07-15")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, true, body["matched"])
		assert.Equal(t, false, body["advisories_defined"])
		assert.Equal(t, domain.MsgNoAdvisories, body["message"])
	})
}

func TestAdvisoryEndpoint_BadSelection(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name  string
		query string
	}{
		{"missing date", "state=Odisha&district=Cuttack&commodity=Rice"},
		{"missing state", "district=Cuttack&commodity=Rice&date=2023-07-15"},
		{"malformed date", "state=Odisha&district=Cuttack&commodity=Rice&date=15/07/2023"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, srv, "/api/advisory?"+tt.query)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestForecastChartEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := get(t, srv, "/api/forecast.png?"+matchQuery)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = get(t, srv, "/api/forecast.png?state=Odisha&district=Cuttack&commodity=Rice&date=2023-07-14")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestForecastChartEndpoint_ForecastDisabled(t *testing.T) {
	svc := advisory.New(testDataset(), domain.DefaultCatalog(), discardLogger(), observability.NewMetricsForTesting())
	srv := httpadapter.NewServer(":0", svc, nil, discardLogger())

	rec := get(t, srv, "/api/forecast.png?"+matchQuery)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWorkbookEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := get(t, srv, "/api/report.xlsx?"+matchQuery)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "crop-advisory-2023-07-15.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	stage, err := f.GetCellValue("Report", "B5")
	require.NoError(t, err)
	assert.Equal(t, domain.StageVegetative, stage)

	rec = get(t, srv, "/api/report.xlsx?state=Odisha&district=Cuttack&commodity=Rice&date=2023-07-14")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboard(t *testing.T) {
	srv := newTestServer(t)

	t.Run("defaults to first options", func(t *testing.T) {
		rec := get(t, srv, "/")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

		page := rec.Body.String()
		assert.Contains(t, page, `<option value="Odisha" selected>`)
		assert.Contains(t, page, `<option value="Cuttack" selected>`)
		assert.NotContains(t, page, "Crop Stage:")
	})

	t.Run("falls back when district is not in state", func(t *testing.T) {
		page := get(t, srv, "/?state=Punjab&district=Cuttack").Body.String()
		assert.Contains(t, page, `<option value="Ludhiana" selected>`)
		assert.Contains(t, page, `<option value="Wheat" selected>`)
	})

	t.Run("predict matched", func(t *testing.T) {
		page := get(t, srv, "/?"+matchQuery+"&predict=1").Body.String()
		assert.Contains(t, page, "Crop Stage: Vegetative stage")
		assert.Contains(t, page, "Apply balanced fertilizers.")
		assert.Contains(t, page, "33.1 °C")
		assert.Contains(t, page, "data:image/png;base64,")
		assert.Contains(t, page, "/api/report.xlsx?")
	})

	t.Run("predict no match", func(t *testing.T) {
		page := get(t, srv, "/?state=Odisha&district=Cuttack&commodity=Rice&date=2023-07-20&predict=1").Body.String()
		assert.Contains(t, page, domain.MsgNoMatch)
		assert.NotContains(t, page, "Crop Stage:")
	})

	t.Run("predict malformed date", func(t *testing.T) {
		page := get(t, srv, "/?state=Odisha&district=Cuttack&commodity=Rice&date=yesterday&predict=1").Body.String()
		assert.Contains(t, page, "invalid date")
	})
}

func TestCORSHeadersWhenConfigured(t *testing.T) {
	svc := advisory.New(testDataset(), domain.DefaultCatalog(), discardLogger(), observability.NewMetricsForTesting())
	srv := httpadapter.NewServer(":0", svc, []string{"https://dash.example.org"}, discardLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/states", nil)
	req.Header.Set("Origin", "https://dash.example.org")
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://dash.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestExportsDoNotRepublish(t *testing.T) {
	pub := &recordingPublisher{}
	srv := newTestServer(t, advisory.WithPublisher(pub))

	require.Equal(t, http.StatusOK, get(t, srv, "/?"+matchQuery+"&predict=1").Code)
	require.Equal(t, http.StatusOK, get(t, srv, "/api/report.xlsx?"+matchQuery).Code)
	require.Equal(t, http.StatusOK, get(t, srv, "/api/forecast.png?"+matchQuery).Code)

	require.Len(t, pub.published, 1)
	assert.True(t, pub.published[0].Matched)

	require.Equal(t, http.StatusOK, get(t, srv, "/api/advisory?"+matchQuery).Code)
	assert.Len(t, pub.published, 2)
}
