package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leadscout/discovery-bot/internal/config"
	"github.com/leadscout/discovery-bot/internal/models"
)

func TestFacebookSource_TransformPage(t *testing.T) {
	src := NewFacebookSource("token", config.DefaultRules())

	page := fbPage{
		ID:          "12345",
		Name:        "Lagos Bakery",
		Category:    "Bakery",
		Phone:       "+2348012345678",
		Emails:      []string{"hello@lagosbakery.ng", "sales@lagosbakery.ng"},
		About:       "Fresh bread daily",
		Description: "longer fallback description",
		Link:        "https://facebook.com/lagosbakery",
		Website:     "https://lagosbakery.ng",
		CreatedTime: "2024-06-01T00:00:00+0000",
	}
	page.Location.City = "Lagos"
	page.Location.Country = "Nigeria"

	candidate := src.transformPage(page, "food")

	assert.Equal(t, "Lagos Bakery", candidate.BusinessName)
	assert.Equal(t, models.PlatformFacebook, candidate.Platform)
	assert.Equal(t, "https://facebook.com/lagosbakery", candidate.PageURL)
	assert.Equal(t, "food", candidate.Category)
	assert.Equal(t, "Lagos, Nigeria", candidate.Location)
	assert.Equal(t, "hello@lagosbakery.ng", candidate.Email)
	assert.Equal(t, "Fresh bread daily", candidate.Description)
	assert.Equal(t, "2024-06-01T00:00:00+0000", candidate.PageCreatedDate)
	assert.Equal(t, "12345", candidate.Metadata["fb_id"])
	assert.Equal(t, "Bakery", candidate.Metadata["fb_category"])
}

func TestFacebookSource_TransformPage_Fallbacks(t *testing.T) {
	src := NewFacebookSource("token", config.DefaultRules())

	page := fbPage{ID: "67890", Name: "Sparse Page", Description: "only long description"}
	page.Location.Country = "Nigeria"

	candidate := src.transformPage(page, "services")

	// No link: URL is derived from the page ID.
	assert.Equal(t, "https://facebook.com/67890", candidate.PageURL)
	// No city: the leading comma is dropped.
	assert.Equal(t, "Nigeria", candidate.Location)
	// No about text: description is the fallback.
	assert.Equal(t, "only long description", candidate.Description)
	assert.Empty(t, candidate.Email)
}

func TestSearchItemToCandidate(t *testing.T) {
	item := customSearchItem{
		Title:       "TechHub Nigeria | LinkedIn",
		Link:        "https://linkedin.com/company/techhub-nigeria",
		Snippet:     "Software company in Lagos building tools for local merchants.",
		DisplayLink: "linkedin.com",
	}

	candidate := searchItemToCandidate(item, models.PlatformLinkedIn, "tech", "Lagos", "Nigeria")

	assert.Equal(t, "TechHub Nigeria", candidate.BusinessName)
	assert.Equal(t, models.PlatformLinkedIn, candidate.Platform)
	assert.Equal(t, "https://linkedin.com/company/techhub-nigeria", candidate.PageURL)
	assert.Equal(t, "tech", candidate.Category)
	assert.Equal(t, "Lagos, Nigeria", candidate.Location)
	assert.Equal(t, item.Snippet, candidate.Description)
	assert.Equal(t, "TechHub Nigeria | LinkedIn", candidate.Metadata["raw_title"])
}

func TestSearchItemToCandidate_NoCountry(t *testing.T) {
	item := customSearchItem{Title: "Corner Shop", Link: "https://facebook.com/cornershop"}

	candidate := searchItemToCandidate(item, models.PlatformGoogleSourced, "retail", "Abuja", "")

	assert.Equal(t, "Abuja", candidate.Location)
}

func TestCleanResultTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"pipe suffix", "Acme Bakery | Facebook", "Acme Bakery"},
		{"dash suffix", "Acme Bakery - Home", "Acme Bakery"},
		{"en-dash suffix", "Acme Bakery – Posts", "Acme Bakery"},
		{"no suffix", "Acme Bakery", "Acme Bakery"},
		{"leading separator kept", "| Facebook", "| Facebook"},
		{"only first separator counts", "Acme | Bakery | Facebook", "Acme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanResultTitle(tt.title))
		})
	}
}

func TestSortedCategoryNames(t *testing.T) {
	categories := map[string]config.CategoryRule{
		"retail": {}, "food": {}, "tech": {}, "beauty": {},
	}

	names := sortedCategoryNames(categories)

	assert.Equal(t, []string{"beauty", "food", "retail", "tech"}, names)
}

func TestSources_DisabledWithoutCredentials(t *testing.T) {
	rules := config.DefaultRules()

	assert.False(t, NewFacebookSource("", rules).IsEnabled())
	assert.True(t, NewFacebookSource("token", rules).IsEnabled())

	assert.False(t, NewGoogleSource("", "", rules).IsEnabled())
	assert.False(t, NewGoogleSource("key", "", rules).IsEnabled())
	assert.True(t, NewGoogleSource("key", "cx", rules).IsEnabled())

	assert.False(t, NewLinkedInSource("", "", rules).IsEnabled())
	assert.True(t, NewLinkedInSource("key", "cx", rules).IsEnabled())
}
