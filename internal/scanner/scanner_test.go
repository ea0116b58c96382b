package scanner_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/arboretica/lore/internal/companies"
	"github.com/arboretica/lore/internal/documents"
	"github.com/arboretica/lore/internal/knowledge"
	"github.com/arboretica/lore/internal/notifications"
	"github.com/arboretica/lore/internal/scanner"
	"github.com/arboretica/lore/pkg/pagination"
	"github.com/arboretica/lore/pkg/repository"
)

type fakeKnowledge struct {
	knowledge.System
	entries []knowledge.Entry
	from    time.Time
	to      time.Time
}

func (f *fakeKnowledge) DeadlinesWithin(_ context.Context, from, to time.Time) ([]knowledge.Entry, error) {
	f.from = from
	f.to = to

	var out []knowledge.Entry
	for _, e := range f.entries {
		if e.Deadline != nil && !e.Deadline.Before(from) && !e.Deadline.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeDocuments struct {
	documents.System
	docs []documents.Document
}

func (f *fakeDocuments) ListByType(_ context.Context, documentType string) ([]documents.Document, error) {
	var out []documents.Document
	for _, d := range f.docs {
		if d.DocumentType == documentType {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeCompanies struct {
	companies.System
	users map[uuid.UUID][]companies.User
}

func (f *fakeCompanies) ListUsers(_ context.Context, companyID uuid.UUID) ([]companies.User, error) {
	return f.users[companyID], nil
}

type ledgerKey struct {
	userID           uuid.UUID
	notificationType string
	sourceID         uuid.UUID
}

// fakeNotifications mimics the dedup ledger: sourced notifications are
// delivered at most once per user, type, and source.
type fakeNotifications struct {
	created []notifications.CreateCommand
	ledger  map[ledgerKey]bool
}

func newFakeNotifications() *fakeNotifications {
	return &fakeNotifications{ledger: make(map[ledgerKey]bool)}
}

func (f *fakeNotifications) Handler() *notifications.Handler { return nil }

func (f *fakeNotifications) Create(_ context.Context, cmd notifications.CreateCommand) (bool, error) {
	if cmd.SourceID != nil {
		key := ledgerKey{cmd.UserID, cmd.NotificationType, *cmd.SourceID}
		if f.ledger[key] {
			return false, nil
		}
		f.ledger[key] = true
	}
	f.created = append(f.created, cmd)
	return true, nil
}

func (f *fakeNotifications) ListForUser(context.Context, uuid.UUID, bool, pagination.PageRequest) (*pagination.PageResult[notifications.Notification], error) {
	return nil, nil
}

func (f *fakeNotifications) MarkRead(context.Context, uuid.UUID) error { return nil }

func (f *fakeNotifications) MarkAllRead(context.Context, uuid.UUID) (int, error) { return 0, nil }

func testConfig() *scanner.Config {
	cfg := &scanner.Config{}
	if err := cfg.Finalize(nil); err != nil {
		panic(err)
	}
	return cfg
}

func deadlineEntry(companyID uuid.UUID, title string, deadline time.Time) knowledge.Entry {
	return knowledge.Entry{
		ID:            uuid.New(),
		CompanyID:     companyID,
		KnowledgeType: knowledge.TypeDeadline,
		Title:         title,
		Content:       "settle the obligation",
		Deadline:      &deadline,
		IsActive:      true,
	}
}

func newScanner(
	know *fakeKnowledge,
	docs *fakeDocuments,
	comps *fakeCompanies,
	notifs *fakeNotifications,
	now time.Time,
) *scanner.Scanner {
	return scanner.New(know, docs, comps, notifs, testConfig(), slog.New(slog.DiscardHandler),
		scanner.WithClock(func() time.Time { return now }))
}

func TestSweepDeadlines(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	companyID := uuid.New()
	users := []companies.User{
		{ID: uuid.New(), CompanyID: companyID},
		{ID: uuid.New(), CompanyID: companyID},
	}

	know := &fakeKnowledge{entries: []knowledge.Entry{
		deadlineEntry(companyID, "VAT filing", now.Add(48*time.Hour)),
		deadlineEntry(companyID, "Far future", now.Add(30*24*time.Hour)),
	}}
	notifs := newFakeNotifications()

	s := newScanner(know, &fakeDocuments{}, &fakeCompanies{users: map[uuid.UUID][]companies.User{companyID: users}}, notifs, now)

	if err := s.SweepDeadlines(context.Background()); err != nil {
		t.Fatalf("SweepDeadlines() error = %v", err)
	}

	// One in-window entry, two users.
	if len(notifs.created) != 2 {
		t.Fatalf("notifications = %d, want 2", len(notifs.created))
	}
	for _, n := range notifs.created {
		if n.NotificationType != notifications.TypeDeadline {
			t.Errorf("type = %s", n.NotificationType)
		}
		if n.Title != "Upcoming Deadline: VAT filing" {
			t.Errorf("title = %q", n.Title)
		}
		if n.Message != "Deadline on 2026-09-02: settle the obligation" {
			t.Errorf("message = %q", n.Message)
		}
		if n.SourceID == nil {
			t.Error("source id not set")
		}
	}

	if !know.from.Equal(now) || !know.to.Equal(now.Add(7*24*time.Hour)) {
		t.Errorf("window = [%v, %v]", know.from, know.to)
	}
}

func TestSweepDeadlinesRepeatIsDeduplicated(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	companyID := uuid.New()
	users := []companies.User{{ID: uuid.New(), CompanyID: companyID}}

	know := &fakeKnowledge{entries: []knowledge.Entry{
		deadlineEntry(companyID, "VAT filing", now.Add(48*time.Hour)),
	}}
	notifs := newFakeNotifications()
	s := newScanner(know, &fakeDocuments{}, &fakeCompanies{users: map[uuid.UUID][]companies.User{companyID: users}}, notifs, now)

	for range 2 {
		if err := s.SweepDeadlines(context.Background()); err != nil {
			t.Fatalf("SweepDeadlines() error = %v", err)
		}
	}

	if len(notifs.created) != 1 {
		t.Errorf("notifications = %d, want 1 after overlapping sweeps", len(notifs.created))
	}
}

func TestSweepContracts(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	companyID := uuid.New()
	users := []companies.User{{ID: uuid.New(), CompanyID: companyID}}

	docs := &fakeDocuments{docs: []documents.Document{
		{
			ID:               uuid.New(),
			CompanyID:        companyID,
			OriginalFilename: "lease.pdf",
			DocumentType:     documents.TypeContract,
			Metadata:         repository.Map{"expiry_date": "2026-09-15"},
		},
		{
			ID:               uuid.New(),
			CompanyID:        companyID,
			OriginalFilename: "msa.pdf",
			DocumentType:     documents.TypeContract,
			Metadata:         repository.Map{"expiry_date": "2027-06-01"},
		},
		{
			ID:               uuid.New(),
			CompanyID:        companyID,
			OriginalFilename: "nda.pdf",
			DocumentType:     documents.TypeContract,
			Metadata:         repository.Map{"expiry_date": "not a date"},
		},
		{
			ID:               uuid.New(),
			CompanyID:        companyID,
			OriginalFilename: "handbook.pdf",
			DocumentType:     documents.TypeHRDocument,
			Metadata:         repository.Map{"expiry_date": "2026-09-10"},
		},
	}}
	notifs := newFakeNotifications()
	s := newScanner(&fakeKnowledge{}, docs, &fakeCompanies{users: map[uuid.UUID][]companies.User{companyID: users}}, notifs, now)

	if err := s.SweepContracts(context.Background()); err != nil {
		t.Fatalf("SweepContracts() error = %v", err)
	}

	// Only the lease expires inside 30 days.
	if len(notifs.created) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifs.created))
	}
	n := notifs.created[0]
	if n.NotificationType != notifications.TypeExpiringContract {
		t.Errorf("type = %s", n.NotificationType)
	}
	if n.Title != "Contract Expiring: lease.pdf" {
		t.Errorf("title = %q", n.Title)
	}
	if n.Message != "Contract expires on 2026-09-15" {
		t.Errorf("message = %q", n.Message)
	}
}

func TestSweepContractsSkipsExpired(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	companyID := uuid.New()

	docs := &fakeDocuments{docs: []documents.Document{{
		ID:               uuid.New(),
		CompanyID:        companyID,
		OriginalFilename: "old.pdf",
		DocumentType:     documents.TypeContract,
		Metadata:         repository.Map{"expiry_date": "2026-01-01"},
	}}}
	notifs := newFakeNotifications()
	s := newScanner(&fakeKnowledge{}, docs, &fakeCompanies{users: map[uuid.UUID][]companies.User{
		companyID: {{ID: uuid.New(), CompanyID: companyID}},
	}}, notifs, now)

	if err := s.SweepContracts(context.Background()); err != nil {
		t.Fatalf("SweepContracts() error = %v", err)
	}
	if len(notifs.created) != 0 {
		t.Errorf("notifications = %d, want 0 for already expired contract", len(notifs.created))
	}
}
