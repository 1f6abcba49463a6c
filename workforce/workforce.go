package workforce

import (
	"github.com/onlyoneaman/ai-team/config"
	"github.com/onlyoneaman/ai-team/tool"
)

// Canonical role ids of the default team.
const (
	RoleFounder          = "founder"
	RoleMarketingHead    = "marketing_head"
	RoleMarketResearcher = "market_researcher"
	RoleDataAnalyst      = "data_analyst"
	RoleSEOAnalyst       = "seo_analyst"
	RoleContentCreator   = "content_creator"
	RoleEvaluator        = "evaluator"
)

// Workforce bundles a validated hierarchy with the tenant it was built for.
type Workforce struct {
	Company   config.Company
	Hierarchy *Hierarchy
}

// Build constructs the default team for one tenant: a founder orchestrator
// delegating to a marketing lead, two research workers, and an evaluator;
// the marketing lead in turn manages the SEO analyst and content creator.
// Role instructions are templated from the company profile and data-provider
// tools are attached to the roles whose instructions reference them.
func Build(data *config.CompanyData) (*Workforce, error) {
	providers := tool.Providers(data)
	c := data.Company

	roles := []*Role{
		{
			ID:           RoleFounder,
			Name:         "Founder",
			Type:         RoleOrchestrator,
			Instructions: founderInstructions(c),
			Targets:      []string{RoleMarketingHead, RoleMarketResearcher, RoleDataAnalyst, RoleEvaluator},
		},
		{
			ID:           RoleMarketingHead,
			Name:         "Marketing Head",
			Type:         RoleLead,
			Instructions: marketingHeadInstructions(c),
			Targets:      []string{RoleSEOAnalyst, RoleContentCreator, RoleFounder},
		},
		{
			ID:           RoleMarketResearcher,
			Name:         "Market Researcher",
			Type:         RoleWorker,
			Instructions: marketResearcherInstructions(c),
			Tools:        pick(providers, "get_market_research"),
			Targets:      []string{RoleFounder},
		},
		{
			ID:           RoleDataAnalyst,
			Name:         "Data Analyst",
			Type:         RoleWorker,
			Instructions: dataAnalystInstructions(c),
			Tools:        pick(providers, "get_analytics"),
			Targets:      []string{RoleFounder},
		},
		{
			ID:           RoleSEOAnalyst,
			Name:         "SEO Analyst",
			Type:         RoleWorker,
			Instructions: seoAnalystInstructions(c),
			Tools:        pick(providers, "get_seo_data"),
			Targets:      []string{RoleMarketingHead},
		},
		{
			ID:           RoleContentCreator,
			Name:         "Content Creator",
			Type:         RoleWorker,
			Instructions: contentCreatorInstructions(c),
			Tools:        pick(providers, "get_content_templates", "get_brand_assets"),
			Targets:      []string{RoleMarketingHead},
		},
		{
			ID:           RoleEvaluator,
			Name:         "Evaluator",
			Type:         RoleReviewer,
			Instructions: evaluatorInstructions(c),
			Targets:      []string{RoleFounder},
		},
	}

	h, err := NewHierarchy(RoleFounder, roles...)
	if err != nil {
		return nil, err
	}
	return &Workforce{Company: c, Hierarchy: h}, nil
}

func pick(providers map[string]tool.Tool, names ...string) map[string]tool.Tool {
	picked := make(map[string]tool.Tool, len(names))
	for _, name := range names {
		if t, ok := providers[name]; ok {
			picked[name] = t
		}
	}
	return picked
}
