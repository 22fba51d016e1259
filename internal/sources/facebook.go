package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/leadscout/discovery-bot/internal/config"
	"github.com/leadscout/discovery-bot/internal/models"
)

const graphAPIBase = "https://graph.facebook.com/v18.0"

// FacebookSource discovers newly created business pages via the Graph API
// pages search, enumerating category keywords against major cities.
type FacebookSource struct {
	accessToken string
	rules       config.Rules
	client      *resty.Client
}

type fbSearchResponse struct {
	Data []fbPage `json:"data"`
}

type fbPage struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Location struct {
		City    string `json:"city"`
		Country string `json:"country"`
	} `json:"location"`
	Phone       string   `json:"phone"`
	Emails      []string `json:"emails"`
	About       string   `json:"about"`
	Description string   `json:"description"`
	Link        string   `json:"link"`
	Website     string   `json:"website"`
	CreatedTime string   `json:"created_time"`
}

// NewFacebookSource creates a new Facebook source.
func NewFacebookSource(accessToken string, rules config.Rules) *FacebookSource {
	return &FacebookSource{
		accessToken: accessToken,
		rules:       rules,
		client:      resty.New().SetTimeout(30 * time.Second),
	}
}

func (f *FacebookSource) GetName() models.Platform {
	return models.PlatformFacebook
}

func (f *FacebookSource) IsEnabled() bool {
	return f.accessToken != ""
}

func (f *FacebookSource) FetchCandidates(ctx context.Context) ([]models.Candidate, error) {
	if !f.IsEnabled() {
		logrus.Debug("Facebook source disabled - missing access token")
		return nil, nil
	}

	var allCandidates []models.Candidate

	for _, category := range sortedCategoryNames(f.rules.Categories) {
		keywords := f.rules.Categories[category].Keywords
		if len(keywords) > 3 {
			keywords = keywords[:3] // keep query volume within rate limits
		}

		for _, keyword := range keywords {
			cities := f.rules.Locations.MajorCities
			if len(cities) > 5 {
				cities = cities[:5]
			}

			for _, city := range cities {
				select {
				case <-ctx.Done():
					return allCandidates, ctx.Err()
				default:
				}

				candidates, err := f.searchPages(ctx, fmt.Sprintf("%s %s", keyword, city), category)
				if err != nil {
					logrus.Errorf("Facebook search failed for %q in %s: %v", keyword, city, err)
					continue
				}
				allCandidates = append(allCandidates, candidates...)
			}
		}
	}

	return allCandidates, nil
}

func (f *FacebookSource) searchPages(ctx context.Context, query, category string) ([]models.Candidate, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":            query,
			"fields":       "id,name,category,location{city,country},phone,emails,about,description,link,website,created_time",
			"access_token": f.accessToken,
		}).
		Get(graphAPIBase + "/pages/search")

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("graph API returned status %d", resp.StatusCode())
	}

	var searchResp fbSearchResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		return nil, err
	}

	var candidates []models.Candidate
	for _, page := range searchResp.Data {
		candidates = append(candidates, f.transformPage(page, category))
	}
	return candidates, nil
}

func (f *FacebookSource) transformPage(page fbPage, category string) models.Candidate {
	pageURL := page.Link
	if pageURL == "" {
		pageURL = fmt.Sprintf("https://facebook.com/%s", page.ID)
	}

	var location string
	if page.Location.City != "" || page.Location.Country != "" {
		location = strings.TrimPrefix(fmt.Sprintf("%s, %s", page.Location.City, page.Location.Country), ", ")
	}

	var email string
	if len(page.Emails) > 0 {
		email = page.Emails[0]
	}

	description := page.About
	if description == "" {
		description = page.Description
	}

	return models.Candidate{
		BusinessName:    page.Name,
		Platform:        models.PlatformFacebook,
		PageURL:         pageURL,
		Category:        category,
		Location:        location,
		Phone:           page.Phone,
		Email:           email,
		Description:     description,
		PageCreatedDate: page.CreatedTime,
		Metadata: map[string]string{
			"fb_id":       page.ID,
			"fb_category": page.Category,
			"website":     page.Website,
		},
	}
}

func sortedCategoryNames(categories map[string]config.CategoryRule) []string {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
