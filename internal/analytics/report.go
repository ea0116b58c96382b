// Package analytics serves tenant-scoped aggregate reports derived
// from the document, knowledge, and notification tables: processing
// progress, compliance posture, risk distribution, and upload activity.
package analytics

import (
	"math"

	"github.com/arboretica/lore/internal/documents"
	"github.com/arboretica/lore/internal/knowledge"
)

// Compliance report statuses.
const (
	StatusExcellent      = "excellent"
	StatusGood           = "good"
	StatusNeedsAttention = "needs_attention"
)

// Overview summarizes a company's processing progress alongside the
// requesting user's unread notification count.
type Overview struct {
	TotalDocuments        int     `json:"total_documents"`
	ProcessedDocuments    int     `json:"processed_documents"`
	TotalKnowledgeEntries int     `json:"total_knowledge_entries"`
	UnreadNotifications   int     `json:"unread_notifications"`
	ProcessingRate        float64 `json:"processing_rate"`
}

// NewOverview derives the processing rate from raw counts. The rate is
// the processed share as a percentage, rounded to two decimals; an
// empty corpus rates 0 rather than dividing by zero.
func NewOverview(totalDocs, processedDocs, entries, unread int) Overview {
	rate := float64(processedDocs) / float64(max(totalDocs, 1)) * 100
	return Overview{
		TotalDocuments:        totalDocs,
		ProcessedDocuments:    processedDocs,
		TotalKnowledgeEntries: entries,
		UnreadNotifications:   unread,
		ProcessingRate:        math.Round(rate*100) / 100,
	}
}

// ComplianceReport scores a company by its overdue deadlines: each one
// costs ten points off a perfect hundred, floored at zero.
type ComplianceReport struct {
	ComplianceScore   int    `json:"compliance_score"`
	TotalObligations  int    `json:"total_obligations"`
	UpcomingDeadlines int    `json:"upcoming_deadlines"`
	OverdueDeadlines  int    `json:"overdue_deadlines"`
	Status            string `json:"status"`
}

// NewComplianceReport derives the score and status band from deadline
// counts. Ninety and above is excellent, seventy and above is good,
// anything lower needs attention.
func NewComplianceReport(obligations, upcoming, overdue int) ComplianceReport {
	score := max(0, 100-overdue*10)

	status := StatusNeedsAttention
	switch {
	case score >= 90:
		status = StatusExcellent
	case score >= 70:
		status = StatusGood
	}

	return ComplianceReport{
		ComplianceScore:   score,
		TotalObligations:  obligations,
		UpcomingDeadlines: upcoming,
		OverdueDeadlines:  overdue,
		Status:            status,
	}
}

// RiskSummary counts a company's risk entries by level.
type RiskSummary struct {
	Critical   int `json:"critical"`
	High       int `json:"high"`
	Medium     int `json:"medium"`
	Low        int `json:"low"`
	TotalRisks int `json:"total_risks"`
}

// NewRiskSummary buckets per-level counts. Levels outside the known
// four are ignored.
func NewRiskSummary(byLevel map[string]int) RiskSummary {
	s := RiskSummary{
		Critical: byLevel[knowledge.RiskCritical],
		High:     byLevel[knowledge.RiskHigh],
		Medium:   byLevel[knowledge.RiskMedium],
		Low:      byLevel[knowledge.RiskLow],
	}
	s.TotalRisks = s.Critical + s.High + s.Medium + s.Low
	return s
}

// DocumentStats breaks a company's documents down by type and recent
// upload activity.
type DocumentStats struct {
	ByType        map[string]int `json:"by_type"`
	RecentUploads int            `json:"recent_uploads"`
	Total         int            `json:"total"`
}

// NewDocumentStats fills in a zero count for every known document type
// so the breakdown always carries the full set of keys.
func NewDocumentStats(byType map[string]int, recentUploads int) DocumentStats {
	full := make(map[string]int, len(documents.Types()))
	total := 0
	for _, t := range documents.Types() {
		full[t] = byType[t]
		total += byType[t]
	}
	return DocumentStats{
		ByType:        full,
		RecentUploads: recentUploads,
		Total:         total,
	}
}
