package sources

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/leadscout/discovery-bot/internal/config"
	"github.com/leadscout/discovery-bot/internal/models"
)

// LinkedInSource discovers new company pages. LinkedIn's own APIs only expose
// content you have explicit permissions for, so public-content discovery goes
// through search-engine indexing restricted to linkedin.com/company.
type LinkedInSource struct {
	search *customSearchClient
	rules  config.Rules
}

// NewLinkedInSource creates a new LinkedIn source.
func NewLinkedInSource(apiKey, engineID string, rules config.Rules) *LinkedInSource {
	return &LinkedInSource{
		search: newCustomSearchClient(apiKey, engineID),
		rules:  rules,
	}
}

func (l *LinkedInSource) GetName() models.Platform {
	return models.PlatformLinkedIn
}

func (l *LinkedInSource) IsEnabled() bool {
	return l.search.enabled()
}

func (l *LinkedInSource) FetchCandidates(ctx context.Context) ([]models.Candidate, error) {
	if !l.IsEnabled() {
		logrus.Debug("LinkedIn source disabled - missing search credentials")
		return nil, nil
	}

	country := ""
	if len(l.rules.Locations.Countries) > 0 {
		country = l.rules.Locations.Countries[0]
	}

	var allCandidates []models.Candidate

	for _, category := range sortedCategoryNames(l.rules.Categories) {
		keywords := l.rules.Categories[category].Keywords
		if len(keywords) > 3 {
			keywords = keywords[:3]
		}

		cities := l.rules.Locations.MajorCities
		if len(cities) > 3 {
			cities = cities[:3]
		}

		for _, keyword := range keywords {
			for _, city := range cities {
				select {
				case <-ctx.Done():
					return allCandidates, ctx.Err()
				default:
				}

				query := fmt.Sprintf("site:linkedin.com/company %s %s %s", keyword, city, country)
				items, err := l.search.search(ctx, query)
				if err != nil {
					logrus.Errorf("LinkedIn search failed for %q: %v", query, err)
					continue
				}

				for _, item := range items {
					allCandidates = append(allCandidates, searchItemToCandidate(item, models.PlatformLinkedIn, category, city, country))
				}
			}
		}
	}

	return allCandidates, nil
}
