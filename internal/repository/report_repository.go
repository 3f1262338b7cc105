package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"ozzus/printq-probe/internal/backend"
	"ozzus/printq-probe/internal/domain"
	"ozzus/printq-probe/internal/repository/kafka"
)

// ReportRepository delivers a finished run's report to an external sink.
type ReportRepository interface {
	SendReport(ctx context.Context, report domain.Report) error
}

type KafkaReportRepository struct {
	producer *kafka.Producer
	log      *slog.Logger
}

func NewKafkaReportRepository(producer *kafka.Producer, log *slog.Logger) ReportRepository {
	return &KafkaReportRepository{
		producer: producer,
		log:      log,
	}
}

// SendReport keys messages by host so one host's reports stay ordered.
func (r *KafkaReportRepository) SendReport(ctx context.Context, report domain.Report) error {
	if err := r.producer.PublishEvent(ctx, report.Host, report); err != nil {
		return fmt.Errorf("failed to publish report: %w", err)
	}

	r.log.Debug("report published",
		slog.String("run_id", report.RunID),
		slog.String("topic", r.producer.Topic()),
	)
	return nil
}

type BackendReportRepository struct {
	client *backend.Client
	log    *slog.Logger
}

func NewBackendReportRepository(client *backend.Client, log *slog.Logger) ReportRepository {
	return &BackendReportRepository{
		client: client,
		log:    log,
	}
}

func (r *BackendReportRepository) SendReport(ctx context.Context, report domain.Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := r.client.SendReport(ctx, report.Host, bytes.NewReader(body)); err != nil {
		return fmt.Errorf("failed to send report: %w", err)
	}

	r.log.Debug("report sent to backend", slog.String("run_id", report.RunID))
	return nil
}
