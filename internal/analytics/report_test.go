package analytics_test

import (
	"testing"

	"github.com/arboretica/lore/internal/analytics"
	"github.com/arboretica/lore/internal/documents"
	"github.com/arboretica/lore/internal/knowledge"
)

func TestNewOverview(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		processed int
		wantRate  float64
	}{
		{"all processed", 10, 10, 100},
		{"partial", 3, 2, 66.67},
		{"none processed", 5, 0, 0},
		{"empty corpus", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := analytics.NewOverview(tt.total, tt.processed, 7, 2)
			if o.ProcessingRate != tt.wantRate {
				t.Errorf("ProcessingRate = %v, want %v", o.ProcessingRate, tt.wantRate)
			}
			if o.TotalDocuments != tt.total || o.ProcessedDocuments != tt.processed {
				t.Errorf("counts = (%d, %d), want (%d, %d)",
					o.TotalDocuments, o.ProcessedDocuments, tt.total, tt.processed)
			}
			if o.TotalKnowledgeEntries != 7 || o.UnreadNotifications != 2 {
				t.Errorf("entries = %d, unread = %d", o.TotalKnowledgeEntries, o.UnreadNotifications)
			}
		})
	}
}

func TestNewComplianceReport(t *testing.T) {
	tests := []struct {
		name       string
		overdue    int
		wantScore  int
		wantStatus string
	}{
		{"no overdue", 0, 100, analytics.StatusExcellent},
		{"one overdue", 1, 90, analytics.StatusExcellent},
		{"two overdue", 2, 80, analytics.StatusGood},
		{"three overdue", 3, 70, analytics.StatusGood},
		{"four overdue", 4, 60, analytics.StatusNeedsAttention},
		{"score floors at zero", 15, 0, analytics.StatusNeedsAttention},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := analytics.NewComplianceReport(8, 3, tt.overdue)
			if r.ComplianceScore != tt.wantScore {
				t.Errorf("ComplianceScore = %d, want %d", r.ComplianceScore, tt.wantScore)
			}
			if r.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", r.Status, tt.wantStatus)
			}
			if r.TotalObligations != 8 || r.UpcomingDeadlines != 3 || r.OverdueDeadlines != tt.overdue {
				t.Errorf("counts = (%d, %d, %d)", r.TotalObligations, r.UpcomingDeadlines, r.OverdueDeadlines)
			}
		})
	}
}

func TestNewRiskSummary(t *testing.T) {
	s := analytics.NewRiskSummary(map[string]int{
		knowledge.RiskCritical: 1,
		knowledge.RiskHigh:     2,
		knowledge.RiskLow:      4,
		"unheard-of":           9,
	})

	if s.Critical != 1 || s.High != 2 || s.Medium != 0 || s.Low != 4 {
		t.Errorf("buckets = (%d, %d, %d, %d), want (1, 2, 0, 4)",
			s.Critical, s.High, s.Medium, s.Low)
	}
	if s.TotalRisks != 7 {
		t.Errorf("TotalRisks = %d, want 7", s.TotalRisks)
	}
}

func TestNewDocumentStats(t *testing.T) {
	s := analytics.NewDocumentStats(map[string]int{
		documents.TypeContract: 3,
		documents.TypeInvoice:  2,
	}, 4)

	if s.Total != 5 {
		t.Errorf("Total = %d, want 5", s.Total)
	}
	if s.RecentUploads != 4 {
		t.Errorf("RecentUploads = %d, want 4", s.RecentUploads)
	}
	if len(s.ByType) != len(documents.Types()) {
		t.Errorf("ByType has %d keys, want one per document type", len(s.ByType))
	}
	if s.ByType[documents.TypeContract] != 3 {
		t.Errorf("contract count = %d, want 3", s.ByType[documents.TypeContract])
	}
	if got, ok := s.ByType[documents.TypePolicy]; !ok || got != 0 {
		t.Errorf("policy count = %d (present %t), want explicit 0", got, ok)
	}
}
