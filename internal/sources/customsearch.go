package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const customSearchURL = "https://www.googleapis.com/customsearch/v1"

// customSearchClient wraps the Google Custom Search JSON API. Both the Google
// and LinkedIn sources ride on it: search-engine indexing surfaces newly
// created pages faster than the platforms' own restricted APIs.
type customSearchClient struct {
	apiKey   string
	engineID string
	client   *resty.Client
}

type customSearchResponse struct {
	Items []customSearchItem `json:"items"`
}

type customSearchItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	DisplayLink string `json:"displayLink"`
}

func newCustomSearchClient(apiKey, engineID string) *customSearchClient {
	return &customSearchClient{
		apiKey:   apiKey,
		engineID: engineID,
		client:   resty.New().SetTimeout(30 * time.Second),
	}
}

func (c *customSearchClient) enabled() bool {
	return c.apiKey != "" && c.engineID != ""
}

// search runs one query, restricted to results indexed within the last week.
func (c *customSearchClient) search(ctx context.Context, query string) ([]customSearchItem, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":          c.apiKey,
			"cx":           c.engineID,
			"q":            query,
			"num":          "10", // API maximum per request
			"dateRestrict": "w1",
		}).
		Get(customSearchURL)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("custom search API returned status %d", resp.StatusCode())
	}

	var searchResp customSearchResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		return nil, err
	}

	return searchResp.Items, nil
}
