package scoring

import (
	"fmt"
	"strings"

	"github.com/leadscout/discovery-bot/internal/config"
	"github.com/leadscout/discovery-bot/internal/models"
)

// Sub-score caps. The five capped sub-scores are summed and the total is
// capped at 100.
const (
	maxLocationScore  = 30
	maxCategoryScore  = 25
	maxContactScore   = 20
	maxFreshnessScore = 15
	maxQualityScore   = 10

	maxTotalScore = 100

	highPriorityThreshold   = 80
	mediumPriorityThreshold = 60
)

// Result is the output of scoring a single candidate.
type Result struct {
	Score    int
	Priority models.Priority
	Signals  []string
}

// Engine scores candidates against an immutable rule set. Scoring is a pure
// function of the candidate and the rules: identical inputs always produce
// identical score, priority, and signal list.
type Engine struct {
	rules config.Rules
}

// NewEngine creates a scoring engine bound to the given rule set.
func NewEngine(rules config.Rules) *Engine {
	return &Engine{rules: rules}
}

// Score computes the confidence score, priority tier, and the ordered list of
// human-readable signals for one candidate.
func (e *Engine) Score(candidate models.Candidate) Result {
	combined := strings.ToLower(strings.Join([]string{
		candidate.BusinessName,
		candidate.Description,
		candidate.Location,
		candidate.Category,
	}, " "))

	score := 0
	var signals []string

	locationScore, locationSignals := e.scoreLocation(combined)
	score += locationScore
	signals = append(signals, locationSignals...)

	categoryScore, categorySignals := e.scoreCategory(combined, candidate.Category)
	score += categoryScore
	signals = append(signals, categorySignals...)

	contactScore, contactSignals := scoreContact(candidate)
	score += contactScore
	signals = append(signals, contactSignals...)

	if freshness := scoreFreshness(candidate.PageCreatedDate); freshness > 0 {
		score += freshness
		signals = append(signals, fmt.Sprintf("Freshness: %d points", freshness))
	}

	if quality := scoreQuality(candidate); quality > 0 {
		score += quality
		signals = append(signals, fmt.Sprintf("Content quality: %d points", quality))
	}

	if score > maxTotalScore {
		score = maxTotalScore
	}

	return Result{
		Score:    score,
		Priority: e.determinePriority(score, candidate.Category),
		Signals:  signals,
	}
}

// scoreLocation awards up to 30 points: 10 for a country alias, 15 for a major
// city, 5 for a phone-number pattern. Each sub-component fires at most once.
func (e *Engine) scoreLocation(text string) (int, []string) {
	score := 0
	var signals []string

	for _, country := range e.rules.Locations.Countries {
		if strings.Contains(text, strings.ToLower(country)) {
			score += 10
			signals = append(signals, fmt.Sprintf("Country: %s", country))
			break
		}
	}

	var citiesFound []string
	for _, city := range e.rules.Locations.MajorCities {
		if strings.Contains(text, strings.ToLower(city)) {
			citiesFound = append(citiesFound, city)
		}
	}
	if len(citiesFound) > 0 {
		score += 15
		signals = append(signals, fmt.Sprintf("Cities: %s", strings.Join(truncateList(citiesFound, 3), ", ")))
	}

	for _, pattern := range e.rules.Locations.PhonePatterns {
		if strings.Contains(text, strings.ToLower(pattern)) {
			score += 5
			signals = append(signals, fmt.Sprintf("Phone pattern: %s", pattern))
			break
		}
	}

	if score > maxLocationScore {
		score = maxLocationScore
	}
	return score, signals
}

// scoreCategory awards 5 points per distinct matched category keyword, capped
// at 25. A candidate with no category, or a category with no configured
// keywords, scores zero with no signal.
func (e *Engine) scoreCategory(text, category string) (int, []string) {
	if category == "" {
		return 0, nil
	}

	rule, ok := e.rules.Categories[category]
	if !ok || len(rule.Keywords) == 0 {
		return 0, nil
	}

	var matches []string
	for _, keyword := range rule.Keywords {
		if strings.Contains(text, strings.ToLower(keyword)) {
			matches = append(matches, keyword)
		}
	}

	if len(matches) == 0 {
		return 0, nil
	}

	score := len(matches) * 5
	if score > maxCategoryScore {
		score = maxCategoryScore
	}
	return score, []string{fmt.Sprintf("Category keywords: %s", strings.Join(truncateList(matches, 3), ", "))}
}

func scoreContact(candidate models.Candidate) (int, []string) {
	score := 0
	var signals []string

	if candidate.Phone != "" {
		score += 10
		signals = append(signals, "Has phone")
	}
	if candidate.Email != "" {
		score += 10
		signals = append(signals, "Has email")
	}

	return score, signals
}

// scoreFreshness is a flat award whenever any creation date is present.
// TODO: replace the flat constant with an age-based decay once product decides
// how stale a "new" page is allowed to be.
func scoreFreshness(pageCreatedDate string) int {
	if pageCreatedDate == "" {
		return 0
	}
	return maxFreshnessScore
}

func scoreQuality(candidate models.Candidate) int {
	score := 0
	if len(candidate.Description) > 50 {
		score += 5
	}
	if candidate.BusinessName != "" {
		score += 5
	}
	return score
}

// determinePriority applies the tier rules in order: a high score or a
// high-default category wins, then the medium threshold, then low.
func (e *Engine) determinePriority(score int, category string) models.Priority {
	if score >= highPriorityThreshold {
		return models.PriorityHigh
	}
	if rule, ok := e.rules.Categories[category]; ok && rule.Priority == models.PriorityHigh {
		return models.PriorityHigh
	}
	if score >= mediumPriorityThreshold {
		return models.PriorityMedium
	}
	return models.PriorityLow
}

func truncateList(items []string, limit int) []string {
	if len(items) <= limit {
		return items
	}
	return items[:limit]
}
