package api

import (
	"github.com/arboretica/lore/internal/advisor"
	"github.com/arboretica/lore/internal/analytics"
	"github.com/arboretica/lore/internal/companies"
	"github.com/arboretica/lore/internal/documents"
	"github.com/arboretica/lore/internal/intelligence"
	"github.com/arboretica/lore/internal/knowledge"
	"github.com/arboretica/lore/internal/notifications"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Companies     companies.System
	Documents     documents.System
	Knowledge     knowledge.System
	Notifications notifications.System
	Intelligence  intelligence.System
	Advisor       advisor.System
	Analytics     analytics.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	companiesSystem := companies.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	documentsSystem := documents.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Queue,
		runtime.Logger,
		runtime.Pagination,
	)

	knowledgeSystem := knowledge.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
		runtime.EmbeddingVersion,
	)

	notificationsSystem := notifications.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	intelligenceSystem := intelligence.NewSystem(
		runtime.Capability,
		runtime.Logger,
	)

	advisorSystem := advisor.New(
		knowledgeSystem,
		intelligenceSystem,
		runtime.Capability,
		runtime.Logger,
	)

	analyticsSystem := analytics.New(
		runtime.Database.Connection(),
		runtime.Logger,
	)

	return &Domain{
		Companies:     companiesSystem,
		Documents:     documentsSystem,
		Knowledge:     knowledgeSystem,
		Notifications: notificationsSystem,
		Intelligence:  intelligenceSystem,
		Advisor:       advisorSystem,
		Analytics:     analyticsSystem,
	}
}
