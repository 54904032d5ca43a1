package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/crop-stage-advisory/internal/config"
	"github.com/couchcryptid/crop-stage-advisory/internal/domain"
	"github.com/couchcryptid/crop-stage-advisory/internal/observability"
)

// Writer produces report events to a Kafka topic.
// It implements advisory.Publisher.
type Writer struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates an asynchronous Kafka producer for the configured report
// topic. Publish only enqueues; delivery failures are logged and counted once
// the batch completes.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &Writer{logger: logger, metrics: metrics}
	w.writer = &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		Completion:   w.completion,
	}
	return w
}

// Publish serializes a resolved report and writes it to the topic.
func (w *Writer) Publish(ctx context.Context, report domain.Report) error {
	msg, err := serializeToMessage(report, uuid.NewString())
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write report event: %w", err)
	}
	return nil
}

// completion runs once per delivered or failed batch.
func (w *Writer) completion(messages []kafkago.Message, err error) {
	if err != nil {
		w.metrics.PublishErrors.Add(float64(len(messages)))
		w.logger.Warn("report delivery failed", "messages", len(messages), "topic", w.writer.Topic, "error", err)
		return
	}
	w.logger.Debug("reports delivered", "messages", len(messages), "topic", w.writer.Topic)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// ReportEvent is the JSON payload of a published report.
type ReportEvent struct {
	EventID           string        `json:"event_id"`
	State             string        `json:"state"`
	District          string        `json:"district"`
	Commodity         string        `json:"commodity"`
	Date              string        `json:"date"`
	Outcome           string        `json:"outcome"`
	CropStage         string        `json:"crop_stage,omitempty"`
	Advisories        []string      `json:"advisories,omitempty"`
	AdvisoriesDefined bool          `json:"advisories_defined"`
	Weather           *WeatherEvent `json:"weather,omitempty"`
	ResolvedAt        time.Time     `json:"resolved_at"`
}

// WeatherEvent carries the recorded weather of a matched row.
type WeatherEvent struct {
	TempMax        float64 `json:"temp_max"`
	TempMin        float64 `json:"temp_min"`
	Humidity       float64 `json:"humidity"`
	Precipitation  float64 `json:"precipitation"`
	Windspeed      float64 `json:"windspeed"`
	SolarRadiation float64 `json:"solar_radiation"`
}

// serializeToMessage marshals a report into a Kafka message keyed by its selection.
// The synthetic forecast is not published.
func serializeToMessage(report domain.Report, eventID string) (kafkago.Message, error) {
	sel := report.Selection
	event := ReportEvent{
		EventID:           eventID,
		State:             sel.State,
		District:          sel.District,
		Commodity:         sel.Commodity,
		Date:              sel.Date.Format(domain.DateLayout),
		Outcome:           report.Outcome(),
		AdvisoriesDefined: report.AdvisoriesDefined,
		ResolvedAt:        report.ResolvedAt.UTC(),
	}
	if report.Matched {
		w := report.Record.Weather
		event.CropStage = report.Record.CropStage
		event.Advisories = report.Advisories
		event.Weather = &WeatherEvent{
			TempMax:        w.TempMax,
			TempMin:        w.TempMin,
			Humidity:       w.Humidity,
			Precipitation:  w.Precipitation,
			Windspeed:      w.Windspeed,
			SolarRadiation: w.SolarRadiation,
		}
	}

	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(sel.Key()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_id", Value: []byte(eventID)},
			{Key: "outcome", Value: []byte(event.Outcome)},
			{Key: "resolved_at", Value: []byte(event.ResolvedAt.Format(time.RFC3339))},
		},
	}, nil
}
