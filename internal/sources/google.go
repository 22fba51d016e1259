package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/leadscout/discovery-bot/internal/config"
	"github.com/leadscout/discovery-bot/internal/models"
)

// GoogleSource discovers newly indexed Facebook business pages through Google
// Custom Search dorks. Search-engine discovery is often the most effective
// route because new pages surface in the index before any platform API.
type GoogleSource struct {
	search *customSearchClient
	rules  config.Rules
}

// NewGoogleSource creates a new Google search source.
func NewGoogleSource(apiKey, engineID string, rules config.Rules) *GoogleSource {
	return &GoogleSource{
		search: newCustomSearchClient(apiKey, engineID),
		rules:  rules,
	}
}

func (g *GoogleSource) GetName() models.Platform {
	return models.PlatformGoogleSourced
}

func (g *GoogleSource) IsEnabled() bool {
	return g.search.enabled()
}

func (g *GoogleSource) FetchCandidates(ctx context.Context) ([]models.Candidate, error) {
	if !g.IsEnabled() {
		logrus.Debug("Google source disabled - missing API credentials")
		return nil, nil
	}

	country := ""
	if len(g.rules.Locations.Countries) > 0 {
		country = g.rules.Locations.Countries[0]
	}

	var allCandidates []models.Candidate

	for _, category := range sortedCategoryNames(g.rules.Categories) {
		keywords := g.rules.Categories[category].Keywords
		if len(keywords) > 3 {
			keywords = keywords[:3]
		}

		cities := g.rules.Locations.MajorCities
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

				query := fmt.Sprintf("site:facebook.com/pages %s %s %s", keyword, city, country)
				items, err := g.search.search(ctx, query)
				if err != nil {
					logrus.Errorf("Google search failed for %q: %v", query, err)
					continue
				}

				for _, item := range items {
					allCandidates = append(allCandidates, searchItemToCandidate(item, models.PlatformGoogleSourced, category, city, country))
				}
			}
		}
	}

	return allCandidates, nil
}

// searchItemToCandidate maps one search result to a candidate record. The
// snippet stands in for a description; contact details are left for the
// platform page itself.
func searchItemToCandidate(item customSearchItem, platform models.Platform, category, city, country string) models.Candidate {
	location := city
	if country != "" {
		location = fmt.Sprintf("%s, %s", city, country)
	}

	return models.Candidate{
		BusinessName: cleanResultTitle(item.Title),
		Platform:     platform,
		PageURL:      item.Link,
		Category:     category,
		Location:     location,
		Description:  item.Snippet,
		Metadata: map[string]string{
			"display_link": item.DisplayLink,
			"raw_title":    item.Title,
		},
	}
}

// cleanResultTitle strips the platform suffix search engines append to page
// titles ("Acme Bakery | Facebook" -> "Acme Bakery").
func cleanResultTitle(title string) string {
	for _, sep := range []string{" | ", " - ", " – "} {
		if idx := strings.Index(title, sep); idx > 0 {
			return strings.TrimSpace(title[:idx])
		}
	}
	return strings.TrimSpace(title)
}
