package main

import (
	"github.com/arboretica/lore/internal/api"
	"github.com/arboretica/lore/internal/config"
	"github.com/arboretica/lore/internal/infrastructure"
	"github.com/arboretica/lore/internal/ingest"
	"github.com/arboretica/lore/internal/scanner"
	"github.com/arboretica/lore/pkg/lifecycle"
	"github.com/arboretica/lore/pkg/retry"
)

// Workers holds the background subsystems: the ingestion consumer that
// drains the document queue and the notification scanner that runs the
// deadline and contract sweeps.
type Workers struct {
	Consumer *ingest.Consumer
	Scanner  *scanner.Scanner
}

func NewWorkers(infra *infrastructure.Infrastructure, domain *api.Domain, cfg *config.Config) *Workers {
	pipeline := ingest.NewPipeline(
		domain.Documents,
		domain.Knowledge,
		domain.Intelligence,
		infra.Capability,
		infra.Storage,
		retry.DefaultConfig(),
		cfg.Capability.EmbeddingVersion,
		infra.Logger,
	)

	return &Workers{
		Consumer: ingest.NewConsumer(infra.Queue, pipeline, infra.Logger),
		Scanner: scanner.New(
			domain.Knowledge,
			domain.Documents,
			domain.Companies,
			domain.Notifications,
			&cfg.Scanner,
			infra.Logger,
		),
	}
}

func (w *Workers) Start(lc *lifecycle.Coordinator) error {
	if err := w.Consumer.Start(lc); err != nil {
		return err
	}
	return w.Scanner.Start(lc)
}
