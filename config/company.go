package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Company is the identity block of a tenant's data file.
type Company struct {
	Name           string   `json:"name"`
	Mission        string   `json:"mission,omitempty"`
	BrandVoice     string   `json:"brand_voice,omitempty"`
	Philosophy     string   `json:"philosophy,omitempty"`
	TargetAudience string   `json:"target_audience,omitempty"`
	Products       []string `json:"products,omitempty"`
}

// CompanyData is the full per-tenant dataset: the company profile plus the
// opaque data sections served by the data-provider tools. It is loaded once
// and must never be mutated afterwards so concurrent sessions can share it.
type CompanyData struct {
	Company          Company        `json:"company"`
	MarketResearch   map[string]any `json:"market_research,omitempty"`
	SEOData          map[string]any `json:"seo_data,omitempty"`
	BrandAssets      map[string]any `json:"brand_assets,omitempty"`
	ContentTemplates map[string]any `json:"content_templates,omitempty"`
	Analytics        map[string]any `json:"analytics,omitempty"`
}

// LoadCompany reads <dir>/<companyID>.json.
func LoadCompany(dir, companyID string) (*CompanyData, error) {
	path := filepath.Join(dir, companyID+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("company data not found: %w", err)
	}
	var data CompanyData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse company data %s: %w", path, err)
	}
	if data.Company.Name == "" {
		return nil, fmt.Errorf("company data %s: missing company.name", path)
	}
	return &data, nil
}

// ListCompanies returns the tenant ids available under dir, one per *.json.
func ListCompanies(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	return ids, nil
}

// SuggestedPrompt is a ready-made request a front end can offer for a tenant.
type SuggestedPrompt struct {
	Label        string   `json:"label"`
	Prompt       string   `json:"prompt"`
	Complexity   string   `json:"complexity"`
	ExpectedFlow []string `json:"expected_flow"`
}

// SuggestedPrompts generates example requests based on the company context.
func SuggestedPrompts(data *CompanyData) []SuggestedPrompt {
	name := data.Company.Name
	return []SuggestedPrompt{
		{
			Label:        "Simple Research",
			Prompt:       fmt.Sprintf("Research current industry trends for %s.", name),
			Complexity:   "simple",
			ExpectedFlow: []string{"founder", "market_researcher", "founder"},
		},
		{
			Label:        "SEO Analysis",
			Prompt:       "What keywords should we target for our new product launch?",
			Complexity:   "medium",
			ExpectedFlow: []string{"founder", "marketing_head", "seo_analyst", "marketing_head", "founder"},
		},
		{
			Label:        "Content Creation",
			Prompt:       "Write a seo-optimized blog post about sustainable practices in our industry.",
			Complexity:   "medium",
			ExpectedFlow: []string{"founder", "marketing_head", "seo_analyst", "content_creator", "marketing_head", "founder"},
		},
		{
			Label:        "Competitive Analysis",
			Prompt:       fmt.Sprintf("Analyze our competitors and identify opportunities for %s.", name),
			Complexity:   "medium",
			ExpectedFlow: []string{"founder", "market_researcher", "founder"},
		},
	}
}
