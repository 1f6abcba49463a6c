package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/onlyoneaman/ai-team/config"
)

// Providers builds the data-provider tools bound to one tenant's company
// data. The returned map is keyed by tool name; each tool dumps its data
// section as indented JSON, matching what the role instructions promise.
func Providers(data *config.CompanyData) map[string]Tool {
	tools := []Tool{
		newDataDump(
			"get_market_research",
			"Get all market research data including trends, competitive analysis, and consumer insights.",
			"market research",
			func() any { return data.MarketResearch },
		),
		newDataDump(
			"get_seo_data",
			"Get all SEO and keyword data including keyword rankings, volumes, difficulty scores, and content gaps.",
			"SEO",
			func() any { return data.SEOData },
		),
		newDataDump(
			"get_content_templates",
			"Get content structure templates and social media best practices.",
			"content templates",
			func() any { return data.ContentTemplates },
		),
		newDataDump(
			"get_analytics",
			"Get internal analytics including sales metrics, customer data, marketing performance, and website analytics.",
			"analytics",
			func() any { return data.Analytics },
		),
		newBrandAssetsTool(data),
	}

	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		byName[t.Name()] = t
	}
	return byName
}

// newDataDump wraps a data section in a no-argument JSON dump tool.
func newDataDump(name, description, label string, section func() any) Tool {
	return NewFunctionTool(name, description, nil, func(_ context.Context, _ map[string]any) (any, error) {
		return dumpJSON(section(), label)
	})
}

// newBrandAssetsTool merges the company profile with the brand assets
// section so tone guidance always includes the core identity fields.
func newBrandAssetsTool(data *config.CompanyData) Tool {
	return NewFunctionTool(
		"get_brand_assets",
		"Get brand voice examples, tone guidelines, and value propositions.",
		nil,
		func(_ context.Context, _ map[string]any) (any, error) {
			result := map[string]any{
				"company_info": map[string]any{
					"name":            data.Company.Name,
					"brand_voice":     data.Company.BrandVoice,
					"mission":         data.Company.Mission,
					"target_audience": data.Company.TargetAudience,
					"philosophy":      data.Company.Philosophy,
					"products":        data.Company.Products,
				},
				"brand_assets": data.BrandAssets,
			}
			return dumpJSON(result, "brand assets")
		},
	)
}

func dumpJSON(v any, label string) (string, error) {
	if isEmptySection(v) {
		return fmt.Sprintf("No %s data available.", label), nil
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func isEmptySection(v any) bool {
	if v == nil {
		return true
	}
	if m, ok := v.(map[string]any); ok {
		return len(m) == 0
	}
	return false
}
