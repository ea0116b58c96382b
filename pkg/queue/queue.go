// Package queue provides a durable at-least-once work queue for document
// ingestion jobs, backed by NATS JetStream.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/arboretica/lore/pkg/lifecycle"
)

// Job is an ingestion work item. Data carries the uploaded bytes so the
// pipeline can persist them to durable storage out-of-band.
type Job struct {
	DocumentID  uuid.UUID `json:"document_id"`
	Data        []byte    `json:"data"`
	ContentType string    `json:"content_type"`
}

// Handler processes a delivered job. Jobs are acknowledged after the handler
// returns regardless of outcome; terminal failure handling belongs to the
// pipeline, redelivery covers process death mid-run.
type Handler func(ctx context.Context, job Job)

// System manages the ingestion work queue and lifecycle coordination.
type System interface {
	// Start registers a startup hook that ensures the stream exists.
	Start(lc *lifecycle.Coordinator) error
	// Enqueue publishes a job for asynchronous processing.
	Enqueue(ctx context.Context, job Job) error
	// Consume attaches a durable consumer that invokes handler per job.
	// The subscription is drained when the lifecycle context ends.
	Consume(lc *lifecycle.Coordinator, handler Handler) error
}

type jetstream struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	cfg    *Config
	logger *slog.Logger
}

// New connects to NATS and creates the queue system. The connection retries
// in the background if the server is not yet reachable.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	conn, err := nats.Connect(
		cfg.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect queue: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	return &jetstream{
		conn:   conn,
		js:     js,
		cfg:    cfg,
		logger: logger.With("system", "queue"),
	}, nil
}

func (q *jetstream) Start(lc *lifecycle.Coordinator) error {
	q.logger.Info("starting queue system")

	lc.OnStartup(func() {
		_, err := q.js.AddStream(&nats.StreamConfig{
			Name:      q.cfg.Stream,
			Subjects:  []string{q.cfg.Subject},
			Retention: nats.WorkQueuePolicy,
			Storage:   nats.FileStorage,
		})
		if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
			q.logger.Error("stream initialization failed", "error", err)
			return
		}
		q.logger.Info("queue stream ready", "stream", q.cfg.Stream)
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		q.logger.Info("closing queue connection")
		q.conn.Close()
	})

	return nil
}

func (q *jetstream) Enqueue(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}

	if _, err := q.js.Publish(q.cfg.Subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish job %s: %w", job.DocumentID, err)
	}

	q.logger.Info("job enqueued", "document_id", job.DocumentID)
	return nil
}

func (q *jetstream) Consume(lc *lifecycle.Coordinator, handler Handler) error {
	sub, err := q.js.QueueSubscribe(
		q.cfg.Subject,
		q.cfg.Durable,
		func(msg *nats.Msg) {
			var job Job
			if err := json.Unmarshal(msg.Data, &job); err != nil {
				q.logger.Error("discarding malformed job", "error", err)
				msg.Term()
				return
			}

			handler(lc.Context(), job)
			if err := msg.Ack(); err != nil {
				q.logger.Warn("job ack failed", "document_id", job.DocumentID, "error", err)
			}
		},
		nats.Durable(q.cfg.Durable),
		nats.ManualAck(),
		nats.AckWait(q.cfg.AckWaitDuration()),
	)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := sub.Drain(); err != nil {
			q.logger.Warn("consumer drain failed", "error", err)
		}
	})

	q.logger.Info("consumer attached", "durable", q.cfg.Durable)
	return nil
}
