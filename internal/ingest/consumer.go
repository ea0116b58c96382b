package ingest

import (
	"log/slog"

	"github.com/arboretica/lore/pkg/lifecycle"
	"github.com/arboretica/lore/pkg/queue"
)

// Consumer binds the pipeline to the durable work queue.
type Consumer struct {
	queue    queue.System
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewConsumer creates a Consumer delivering queue jobs to pipeline.
func NewConsumer(q queue.System, pipeline *Pipeline, logger *slog.Logger) *Consumer {
	return &Consumer{
		queue:    q,
		pipeline: pipeline,
		logger:   logger.With("system", "ingest"),
	}
}

// Start attaches the durable consumer once queue startup completes.
func (c *Consumer) Start(lc *lifecycle.Coordinator) error {
	if err := c.queue.Consume(lc, c.pipeline.Process); err != nil {
		return err
	}

	c.logger.Info("ingestion consumer started")
	return nil
}
