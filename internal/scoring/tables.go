package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"curator/internal/domain"
)

// Tables holds every keyword list and multiplier the scoring pipeline uses.
// Defaults ship in code; a YAML file can replace them wholesale so editorial
// policy changes are data edits, not engine rewrites.
type Tables struct {
	Themes              map[string]ThemeDef `yaml:"themes"`
	ActivationThreshold float64             `yaml:"activation_threshold"`
	GroupMatchCap       int                 `yaml:"group_match_cap"`

	Narrative    map[string]NarrativeDef `yaml:"narrative"`
	NarrativeCap int                     `yaml:"narrative_cap"`

	Quality    QualityDef          `yaml:"quality"`
	Exclusions map[string][]string `yaml:"exclusions"`

	SourceTiers     map[domain.SourceTier][]string `yaml:"source_tiers"`
	TierMultipliers map[domain.SourceTier]float64  `yaml:"tier_multipliers"`

	DollarTiers []DollarTier `yaml:"dollar_tiers"`

	compiledPatterns `yaml:"-"`
}

// ThemeDef is one theme's keyword groups. Group match counts are capped
// before summing so breadth of distinct signals outweighs repetition.
type ThemeDef struct {
	Groups map[string][]string `yaml:"groups"`
}

// NarrativeDef is one language-pattern family.
type NarrativeDef struct {
	Phrases    []string `yaml:"phrases"`
	Multiplier float64  `yaml:"multiplier"`
}

type QualityDef struct {
	ROIIndicators         []string `yaml:"roi_indicators"`
	PerformanceIndicators []string `yaml:"performance_indicators"`
	MethodologyIndicators []string `yaml:"methodology_indicators"`
	CaseStudyIndicators   []string `yaml:"case_study_indicators"`

	HighValue   ValueTier `yaml:"high_value"`
	MediumValue ValueTier `yaml:"medium_value"`
	LowValue    ValueTier `yaml:"low_value"`
}

type ValueTier struct {
	Phrases []string `yaml:"phrases"`
	Weight  float64  `yaml:"weight"`
}

// DollarTier maps a minimum amount (in millions) to a multiplier. Tiers
// are matched against the single largest amount found, largest tier first.
type DollarTier struct {
	MinMillions float64 `yaml:"min_millions"`
	Multiplier  float64 `yaml:"multiplier"`
}

// LoadTables returns the defaults when path is empty, otherwise the parsed
// YAML file.
func LoadTables(path string) (*Tables, error) {
	if path == "" {
		return DefaultTables(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scoring tables: %w", err)
	}
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse scoring tables: %w", err)
	}
	return &t, nil
}

func DefaultTables() *Tables {
	return &Tables{
		ActivationThreshold: 10,
		GroupMatchCap:       3,
		NarrativeCap:        3,

		Themes: map[string]ThemeDef{
			"opportunities": {Groups: map[string][]string{
				"transformation": {"grew from", "scaled up", "turned into", "transformed", "expanded from", "started with", "evolved into"},
				"scaling":        {"expansion", "growth story", "rapid growth", "accelerated development", "portfolio growth"},
				"creative_deals": {"creative financing", "innovative deal", "structured deal", "unique partnership", "joint venture", "recapitalization"},
				"wealth":         {"wealth creation", "investor returns", "equity growth", "asset appreciation", "value add", "return on investment", "roi"},
				"case_studies":   {"case study", "success story", "project spotlight", "lessons learned", "before and after", "implementation example"},
			}},
			"practices": {Groups: map[string][]string{
				"building_methods":     {"modular construction", "prefab", "offsite construction", "mass timber", "cross laminated timber", "design-build", "integrated project delivery", "lean construction"},
				"design_principles":    {"biophilic design", "human-centered design", "resilient design", "sustainable design", "universal design", "performance-based design"},
				"process_improvements": {"workflow optimization", "process efficiency", "productivity gains", "streamlined operations", "digital transformation", "automation in construction"},
				"lessons":              {"lessons learned", "best practices", "post-mortem analysis", "project review", "risk mitigation strategies", "challenges overcome"},
			}},
			"systems_codes": {Groups: map[string][]string{
				"policy":         {"policy change", "regulatory update", "government initiative", "new legislation", "incentive program", "tax credit", "opportunity zone"},
				"codes":          {"building code", "zoning reform", "land use", "entitlements", "permitting process", "density bonus", "affordable housing mandates"},
				"infrastructure": {"infrastructure bill", "public works", "transit-oriented development", "smart infrastructure", "grid modernization"},
			}},
			"vision": {Groups: map[string][]string{
				"smart_cities":   {"smart city", "urban innovation", "future cities", "connected communities", "digital infrastructure"},
				"future_living":  {"future of living", "next-gen housing", "co-living", "micro-apartments", "adaptive reuse", "vertical communities"},
				"community":      {"community development", "social impact", "placemaking", "equitable development", "affordable housing", "public realm"},
				"human_centered": {"human-centered", "biophilic design", "wellness architecture", "health and well-being", "accessibility"},
			}},
		},

		Narrative: map[string]NarrativeDef{
			"transformative": {
				Phrases:    []string{"grew from", "scaled up", "turned into", "transformed", "evolved into", "pivoted to", "shifted to"},
				Multiplier: 1.4,
			},
			"impact_roi": {
				Phrases:    []string{"return on investment", "roi", "boosted productivity", "led to growth", "increased efficiency", "reduced costs by", "improved margins", "performance data", "metrics show"},
				Multiplier: 1.5,
			},
			"prescriptive": {
				Phrases:    []string{"lessons learned", "framework", "how-to guide", "roadmap", "strategy for", "methodology", "best practices", "actionable advice"},
				Multiplier: 1.3,
			},
		},

		Quality: QualityDef{
			ROIIndicators:         []string{"roi", "return on investment", "profit margin", "cost savings", "efficiency gains"},
			PerformanceIndicators: []string{"performance data", "metrics", "kpi", "benchmark", "measurement", "analytics"},
			MethodologyIndicators: []string{"methodology", "framework", "workflow", "step by step", "systematic approach"},
			CaseStudyIndicators:   []string{"case study", "success story", "before and after", "implementation example"},
			HighValue: ValueTier{
				Phrases: []string{"roi", "return on investment", "performance data", "metrics", "methodology", "framework", "case study", "lessons learned", "implementation guide", "how-to"},
				Weight:  2.0,
			},
			MediumValue: ValueTier{
				Phrases: []string{"visionary", "future of", "concept", "potential", "outlook", "trends", "forecast"},
				Weight:  1.2,
			},
			LowValue: ValueTier{
				Phrases: []string{"hype", "press release", "announcement", "grand opening", "award", "celebration"},
				Weight:  0.7,
			},
		},

		Exclusions: map[string][]string{
			"furniture":       {"furniture", "chair", "sofa", "couch", "lamp", "lighting fixture"},
			"interior_design": {"interior design", "decor", "decoration"},
			"art_gallery":     {"exhibition", "museum", "gallery", "sculpture", "painting"},
			"fashion":         {"fashion", "clothing", "textile", "wallpaper", "paint color"},
			"academic":        {"student project", "research paper", "thesis", "dissertation"},
		},

		SourceTiers: map[domain.SourceTier][]string{
			domain.TierOne:      {"jll", "cbre", "cushman", "colliers", "marcus & millichap", "newmark", "avison young"},
			domain.TierTwo:      {"bisnow", "commercial observer", "real estate weekly", "costar", "rejournals", "globe st"},
			domain.TierThree:    {"construction dive", "smart cities dive", "engineering news record", "architectural record"},
			domain.TierResearch: {"mckinsey", "deloitte", "pwc", "kpmg", "boston consulting", "bain", "oliver wyman"},
		},
		TierMultipliers: map[domain.SourceTier]float64{
			domain.TierOne:      1.5,
			domain.TierTwo:      1.3,
			domain.TierThree:    1.2,
			domain.TierResearch: 1.4,
			domain.TierUnknown:  1.0,
		},

		DollarTiers: []DollarTier{
			{MinMillions: 1000, Multiplier: 3.5},
			{MinMillions: 500, Multiplier: 2.8},
			{MinMillions: 100, Multiplier: 2.2},
			{MinMillions: 50, Multiplier: 1.8},
			{MinMillions: 25, Multiplier: 1.5},
		},
	}
}
