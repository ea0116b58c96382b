package queue_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/arboretica/lore/pkg/lifecycle"
	"github.com/arboretica/lore/pkg/queue"
)

func startServer(t *testing.T) *natsserver.Server {
	t.Helper()

	srv, err := natsserver.NewServer(&natsserver.Options{
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	})
	if err != nil {
		t.Fatalf("create server: %v", err)
	}

	srv.Start()
	if !srv.ReadyForConnections(10 * time.Second) {
		t.Fatal("server not ready")
	}

	t.Cleanup(srv.Shutdown)
	return srv
}

func startQueue(t *testing.T, srv *natsserver.Server) (queue.System, *lifecycle.Coordinator) {
	t.Helper()

	cfg := &queue.Config{URL: srv.ClientURL()}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize config: %v", err)
	}

	q, err := queue.New(cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("create queue: %v", err)
	}

	lc := lifecycle.New()
	if err := q.Start(lc); err != nil {
		t.Fatalf("start queue: %v", err)
	}
	lc.WaitForStartup()

	t.Cleanup(func() {
		if err := lc.Shutdown(5 * time.Second); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	})

	return q, lc
}

func TestEnqueueConsume(t *testing.T) {
	srv := startServer(t)
	q, lc := startQueue(t, srv)

	var mu sync.Mutex
	received := make(map[uuid.UUID]queue.Job)
	done := make(chan struct{})

	err := q.Consume(lc, func(_ context.Context, job queue.Job) {
		mu.Lock()
		received[job.DocumentID] = job
		if len(received) == 2 {
			close(done)
		}
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}

	first := queue.Job{DocumentID: uuid.New(), Data: []byte("alpha"), ContentType: "text/plain"}
	second := queue.Job{DocumentID: uuid.New(), Data: []byte("beta"), ContentType: "application/pdf"}

	for _, job := range []queue.Job{first, second} {
		if err := q.Enqueue(context.Background(), job); err != nil {
			t.Fatalf("Enqueue() error = %v", err)
		}
	}

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("jobs not delivered")
	}

	mu.Lock()
	defer mu.Unlock()

	got, ok := received[first.DocumentID]
	if !ok {
		t.Fatal("first job not delivered")
	}
	if string(got.Data) != "alpha" || got.ContentType != "text/plain" {
		t.Errorf("job = %+v", got)
	}
}

func TestConsumeSkipsMalformedMessages(t *testing.T) {
	srv := startServer(t)
	q, lc := startQueue(t, srv)

	delivered := make(chan queue.Job, 1)
	err := q.Consume(lc, func(_ context.Context, job queue.Job) {
		delivered <- job
	})
	if err != nil {
		t.Fatalf("Consume() error = %v", err)
	}

	// Publish garbage directly, then a valid job; only the valid one
	// should reach the handler.
	conn, err := nats.Connect(srv.ClientURL())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer conn.Close()

	js, err := conn.JetStream()
	if err != nil {
		t.Fatalf("jetstream: %v", err)
	}
	if _, err := js.Publish("ingest.document", []byte("not json")); err != nil {
		t.Fatalf("publish raw: %v", err)
	}

	want := queue.Job{DocumentID: uuid.New(), Data: []byte("ok"), ContentType: "text/plain"}
	if err := q.Enqueue(context.Background(), want); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	select {
	case got := <-delivered:
		if got.DocumentID != want.DocumentID {
			t.Errorf("delivered job = %s, want %s", got.DocumentID, want.DocumentID)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("valid job not delivered")
	}
}
