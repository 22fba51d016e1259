package config

import (
	"fmt"
	"os"

	"github.com/leadscout/discovery-bot/internal/models"
	"gopkg.in/yaml.v3"
)

// CategoryRule holds the keyword list and default priority for one business category.
type CategoryRule struct {
	Keywords []string        `yaml:"keywords"`
	Priority models.Priority `yaml:"priority"`
}

// LocationRules holds the location alias lists used by the scoring engine.
type LocationRules struct {
	Countries     []string `yaml:"countries"`
	MajorCities   []string `yaml:"major_cities"`
	PhonePatterns []string `yaml:"phone_patterns"`
}

// Rules is the immutable keyword/location rule set. It is constructed once at
// startup and passed by value into the scoring engine and the orchestrator.
type Rules struct {
	Categories map[string]CategoryRule `yaml:"business_categories"`
	Locations  LocationRules           `yaml:"location_signals"`
}

// LoadRules reads rule tables from a YAML file, falling back to the built-in
// default set when no path is configured.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse rules file: %w", err)
	}

	if len(rules.Categories) == 0 {
		return Rules{}, fmt.Errorf("rules file %s defines no business categories", path)
	}

	return rules, nil
}

// DefaultRules returns the built-in rule set targeting new Nigerian businesses.
func DefaultRules() Rules {
	return Rules{
		Categories: map[string]CategoryRule{
			"food": {
				Keywords: []string{"restaurant", "bakery", "catering", "kitchen", "food", "bread", "pastries", "grill", "eatery"},
				Priority: models.PriorityHigh,
			},
			"fashion": {
				Keywords: []string{"fashion", "boutique", "tailor", "clothing", "ankara", "designer", "styles"},
				Priority: models.PriorityMedium,
			},
			"beauty": {
				Keywords: []string{"salon", "spa", "barber", "makeup", "beauty", "hair", "nails"},
				Priority: models.PriorityMedium,
			},
			"tech": {
				Keywords: []string{"software", "startup", "fintech", "app", "technology", "digital", "IT services"},
				Priority: models.PriorityHigh,
			},
			"retail": {
				Keywords: []string{"store", "shop", "supermarket", "mart", "wholesale", "trading"},
				Priority: models.PriorityLow,
			},
			"services": {
				Keywords: []string{"logistics", "cleaning", "repairs", "consulting", "printing", "photography"},
				Priority: models.PriorityLow,
			},
		},
		Locations: LocationRules{
			Countries:   []string{"Nigeria", "Nigerian"},
			MajorCities: []string{"Lagos", "Abuja", "Port Harcourt", "Ibadan", "Kano", "Benin City", "Enugu", "Kaduna"},
			PhonePatterns: []string{
				"+234", "0803", "0805", "0806", "0807", "0808", "0809",
				"0810", "0813", "0814", "0816", "0903", "0906",
			},
		},
	}
}
