package advisory

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/crop-stage-advisory/internal/domain"
	"github.com/couchcryptid/crop-stage-advisory/internal/observability"
)

// Forecaster produces the synthetic forecast attached to matched reports.
type Forecaster interface {
	Generate(anchor time.Time) domain.Forecast
}

// Publisher emits resolved reports to a downstream sink.
type Publisher interface {
	Publish(ctx context.Context, report domain.Report) error
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithForecaster attaches a synthetic forecast to each matched report.
func WithForecaster(f Forecaster) Option {
	return func(s *Service) { s.forecaster = f }
}

// WithPublisher publishes every resolved report.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithModelArtifact records the model file found at startup for status reporting.
func WithModelArtifact(a *domain.ModelArtifact) Option {
	return func(s *Service) { s.model = a }
}

// Service resolves selections against the reference table and advisory catalog.
type Service struct {
	dataset    *domain.Dataset
	catalog    *domain.Catalog
	forecaster Forecaster
	publisher  Publisher
	model      *domain.ModelArtifact
	logger     *slog.Logger
	metrics    *observability.Metrics
	ready      atomic.Bool
}

// New creates a Service over a loaded dataset and catalog.
func New(dataset *domain.Dataset, catalog *domain.Catalog, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Service {
	s := &Service{
		dataset: dataset,
		catalog: catalog,
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(s)
	}

	if dataset != nil {
		metrics.DatasetRecords.Set(float64(dataset.Len()))
	}
	if s.forecaster != nil {
		metrics.ForecastEnabled.Set(1)
	} else {
		metrics.ForecastEnabled.Set(0)
	}
	s.ready.Store(dataset != nil && catalog != nil)
	return s
}

// CheckReadiness returns nil once the dataset and catalog are loaded.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("dataset or advisory catalog not loaded")
	}
	return nil
}

// Status summarizes the loaded assets.
func (s *Service) Status() domain.Status {
	st := domain.Status{
		ForecastEnabled:   s.forecaster != nil,
		PublishingEnabled: s.publisher != nil,
		Model:             s.model,
	}
	if s.dataset != nil {
		st.Records = s.dataset.Len()
	}
	if s.catalog != nil {
		st.Stages = len(s.catalog.Stages())
	}
	return st
}

// Resolve runs one lookup pass for sel and records it as a user interaction:
// the outcome is counted, logged, and published. A selection without a
// matching row yields a report with Matched false, not an error; errors are
// reserved for incomplete selections.
func (s *Service) Resolve(ctx context.Context, sel domain.Selection) (domain.Report, error) {
	start := time.Now()
	report, err := s.Report(sel)
	if err != nil {
		s.metrics.InvalidSelections.Inc()
		return domain.Report{}, err
	}
	if report.Matched && !report.AdvisoriesDefined {
		s.metrics.AdvisoryMisses.Inc()
	}

	s.metrics.Lookups.WithLabelValues(report.Outcome()).Inc()
	s.logger.Debug("selection resolved",
		"state", sel.State,
		"district", sel.District,
		"commodity", sel.Commodity,
		"date", report.Selection.Date.Format(domain.DateLayout),
		"outcome", report.Outcome(),
		"crop_stage", report.Record.CropStage,
		"advisories_defined", report.AdvisoriesDefined,
	)

	s.publish(ctx, report)
	s.metrics.LookupDuration.Observe(time.Since(start).Seconds())
	return report, nil
}

// Report builds the report for sel without counting, logging, or publishing
// it. Exports of an already resolved selection use it.
func (s *Service) Report(sel domain.Selection) (domain.Report, error) {
	if err := sel.Validate(); err != nil {
		return domain.Report{}, err
	}
	sel.Date = domain.Day(sel.Date)
	report := domain.NewReport(sel)

	rec, ok := s.dataset.Lookup(sel)
	if !ok {
		return report, nil
	}
	report.Matched = true
	report.Record = rec
	report.Advisories, report.AdvisoriesDefined = s.catalog.Resolve(rec.CropStage)
	if s.forecaster != nil {
		fc := s.forecaster.Generate(sel.Date)
		report.Forecast = &fc
	}
	return report, nil
}

// publish hands the report to the publisher. Failures are logged and
// counted; they never fail the interaction.
func (s *Service) publish(ctx context.Context, report domain.Report) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, report); err != nil {
		s.metrics.PublishErrors.Inc()
		s.logger.Warn("publish report failed",
			"key", report.Selection.Key(),
			"outcome", report.Outcome(),
			"error", err,
		)
		return
	}
	s.metrics.ReportsPublished.Inc()
}

// States lists the selectable states.
func (s *Service) States() []string { return s.dataset.States() }

// Districts lists the selectable districts of a state.
func (s *Service) Districts(state string) []string { return s.dataset.Districts(state) }

// Commodities lists the selectable commodities of a district.
func (s *Service) Commodities(state, district string) []string {
	return s.dataset.Commodities(state, district)
}

// Dates lists the stored days for a tuple.
func (s *Service) Dates(state, district, commodity string) []time.Time {
	return s.dataset.Dates(state, district, commodity)
}
