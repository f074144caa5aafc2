// Package kafka is the optional sink that publishes matched fire detections
// for downstream alerting. The pipeline runs identically with the sink
// disabled; nothing else depends on a broker being reachable.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lbhendricks/KTGclimate-fire/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Sink produces matched-detection messages to a Kafka topic.
type Sink struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewSink creates a Kafka producer for the configured topic.
func NewSink(brokers []string, topic string, logger *slog.Logger) *Sink {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Sink{writer: w, logger: logger}
}

// PublishMatches serializes and publishes one radius's result set in a
// single WriteMessages call.
func (s *Sink) PublishMatches(ctx context.Context, radiusLabel string, records []domain.Detection) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(radiusLabel, records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	s.logger.Debug("publishing matches", "radius", radiusLabel, "count", len(msgs))
	return s.writer.WriteMessages(ctx, msgs...)
}

func (s *Sink) Close() error {
	return s.writer.Close()
}

// detectionMessage is the wire form of a matched detection. Coordinates stay
// geographic; consumers reproject as needed.
type detectionMessage struct {
	Date          string  `json:"date"` // 8-digit YYYYMMDD code
	Time          int     `json:"time"`
	Satellite     string  `json:"satellite"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	FRP           float64 `json:"frp"`
	Confidence    int     `json:"confidence"`
	DetectionType string  `json:"detection_type"`
	Radius        string  `json:"radius"`
}

// serializeToMessage marshals a detection into a Kafka message keyed by the
// radius label, so consumers can partition per buffer.
func serializeToMessage(radiusLabel string, d domain.Detection) (kafkago.Message, error) {
	msg := detectionMessage{
		Date:          d.Date.Format("20060102"),
		Time:          d.Time,
		Satellite:     d.Satellite,
		Lat:           d.Lat,
		Lon:           d.Lon,
		FRP:           d.FRP,
		Confidence:    d.Confidence,
		DetectionType: d.DetectionType,
		Radius:        radiusLabel,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize detection: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(radiusLabel),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "radius", Value: []byte(radiusLabel)},
			{Key: "published_at", Value: []byte(domain.Now().Format(time.RFC3339))},
		},
	}, nil
}
