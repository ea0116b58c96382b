// Package scanner runs the scheduled notification sweeps: upcoming
// knowledge deadlines and expiring contracts. Each sweep fans out one
// notification per company user; the notifications dedup ledger keeps
// overlapping sweep windows from notifying anyone twice.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arboretica/lore/internal/companies"
	"github.com/arboretica/lore/internal/documents"
	"github.com/arboretica/lore/internal/knowledge"
	"github.com/arboretica/lore/internal/notifications"
	"github.com/arboretica/lore/pkg/lifecycle"
)

// Scanner owns the two sweep loops.
type Scanner struct {
	knowledge     knowledge.System
	documents     documents.System
	companies     companies.System
	notifications notifications.System
	cfg           *Config
	logger        *slog.Logger

	now func() time.Time
}

// Option adjusts a Scanner at construction.
type Option func(*Scanner)

// WithClock replaces the wall clock used to anchor sweep windows.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) { s.now = now }
}

// New creates a Scanner over the given systems.
func New(
	know knowledge.System,
	docs documents.System,
	comps companies.System,
	notifs notifications.System,
	cfg *Config,
	logger *slog.Logger,
	opts ...Option,
) *Scanner {
	s := &Scanner{
		knowledge:     know,
		documents:     docs,
		companies:     comps,
		notifications: notifs,
		cfg:           cfg,
		logger:        logger.With("system", "scanner"),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches both sweep loops. Each runs once at startup, then on
// its own ticker until the lifecycle context ends. The sweeps are
// independent: one failing or lagging never blocks the other.
func (s *Scanner) Start(lc *lifecycle.Coordinator) error {
	go s.loop(lc.Context(), s.cfg.DeadlineIntervalDuration(), s.SweepDeadlines)
	go s.loop(lc.Context(), s.cfg.ContractIntervalDuration(), s.SweepContracts)

	s.logger.Info("scanner started",
		"deadline_interval", s.cfg.DeadlineInterval,
		"contract_interval", s.cfg.ContractInterval,
	)
	return nil
}

func (s *Scanner) loop(ctx context.Context, interval time.Duration, sweep func(context.Context) error) {
	if err := sweep(ctx); err != nil {
		s.logger.Error("sweep failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sweep(ctx); err != nil {
				s.logger.Error("sweep failed", "error", err)
			}
		}
	}
}

// SweepDeadlines notifies every user of a company about its active
// deadline entries falling inside the look-ahead window.
func (s *Scanner) SweepDeadlines(ctx context.Context) error {
	now := s.now()
	entries, err := s.knowledge.DeadlinesWithin(ctx, now, now.Add(s.cfg.DeadlineWindowDuration()))
	if err != nil {
		return fmt.Errorf("load upcoming deadlines: %w", err)
	}

	delivered := 0
	for _, entry := range entries {
		entryID := entry.ID
		cmd := notifications.CreateCommand{
			NotificationType: notifications.TypeDeadline,
			Title:            fmt.Sprintf("Upcoming Deadline: %s", entry.Title),
			Message:          fmt.Sprintf("Deadline on %s: %s", entry.Deadline.Format("2006-01-02"), entry.Content),
			SourceID:         &entryID,
		}

		n, err := s.fanOut(ctx, entry.CompanyID, cmd)
		if err != nil {
			return err
		}
		delivered += n
	}

	s.logger.Info("deadline sweep complete", "entries", len(entries), "delivered", delivered)
	return nil
}

// SweepContracts notifies every user of a company about its contracts
// whose metadata expiry_date falls inside the look-ahead window.
// Contracts without a parseable expiry date are skipped.
func (s *Scanner) SweepContracts(ctx context.Context) error {
	contracts, err := s.documents.ListByType(ctx, documents.TypeContract)
	if err != nil {
		return fmt.Errorf("load contracts: %w", err)
	}

	now := s.now()
	horizon := now.Add(s.cfg.ContractWindowDuration())

	delivered := 0
	expiring := 0
	for _, contract := range contracts {
		expiry, ok := expiryDate(contract.Metadata)
		if !ok || expiry.Before(now) || expiry.After(horizon) {
			continue
		}
		expiring++

		contractID := contract.ID
		cmd := notifications.CreateCommand{
			NotificationType: notifications.TypeExpiringContract,
			Title:            fmt.Sprintf("Contract Expiring: %s", contract.OriginalFilename),
			Message:          fmt.Sprintf("Contract expires on %s", expiry.Format("2006-01-02")),
			SourceID:         &contractID,
		}

		n, err := s.fanOut(ctx, contract.CompanyID, cmd)
		if err != nil {
			return err
		}
		delivered += n
	}

	s.logger.Info("contract sweep complete", "expiring", expiring, "delivered", delivered)
	return nil
}

func (s *Scanner) fanOut(ctx context.Context, companyID uuid.UUID, cmd notifications.CreateCommand) (int, error) {
	users, err := s.companies.ListUsers(ctx, companyID)
	if err != nil {
		return 0, fmt.Errorf("load users for company %s: %w", companyID, err)
	}

	delivered := 0
	for _, user := range users {
		cmd.UserID = user.ID
		created, err := s.notifications.Create(ctx, cmd)
		if err != nil {
			return delivered, fmt.Errorf("deliver notification to %s: %w", user.ID, err)
		}
		if created {
			delivered++
		}
	}
	return delivered, nil
}

func expiryDate(metadata map[string]any) (time.Time, bool) {
	raw, ok := metadata["expiry_date"].(string)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
