package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/leadscout/discovery-bot/internal/config"
	"github.com/leadscout/discovery-bot/internal/models"
	"github.com/leadscout/discovery-bot/internal/scoring"
	"github.com/leadscout/discovery-bot/internal/sources"
	"github.com/leadscout/discovery-bot/internal/store"
)

const passTimeout = 30 * time.Minute

// Service drives discovery passes: fetch candidates from a source, skip known
// identities, score, filter by the confidence threshold, and persist through
// the store's atomic dedup gate. It never sends notifications itself; the
// dispatch gate picks up new records on its own interval.
type Service struct {
	store    store.Store
	engine   *scoring.Engine
	minScore int
	sources  []sources.Source

	mu            sync.RWMutex
	lastSummaries map[models.Platform]models.PassSummary
}

// NewService creates a discovery service with the standard source set.
func NewService(cfg *config.Config, rules config.Rules, st store.Store) *Service {
	svc := &Service{
		store:         st,
		engine:        scoring.NewEngine(rules),
		minScore:      cfg.MinConfidenceScore,
		lastSummaries: make(map[models.Platform]models.PassSummary),
	}

	if cfg.FacebookEnabled {
		svc.sources = append(svc.sources, sources.NewFacebookSource(cfg.FacebookAccessToken, rules))
	}
	if cfg.LinkedInEnabled {
		svc.sources = append(svc.sources, sources.NewLinkedInSource(cfg.GoogleAPIKey, cfg.GoogleSearchEngineID, rules))
	}
	if cfg.GoogleEnabled {
		svc.sources = append(svc.sources, sources.NewGoogleSource(cfg.GoogleAPIKey, cfg.GoogleSearchEngineID, rules))
	}

	return svc
}

// NewServiceWithSources creates a discovery service with an explicit source
// list. Used by tests and tooling.
func NewServiceWithSources(cfg *config.Config, rules config.Rules, st store.Store, srcs ...sources.Source) *Service {
	svc := &Service{
		store:         st,
		engine:        scoring.NewEngine(rules),
		minScore:      cfg.MinConfidenceScore,
		sources:       srcs,
		lastSummaries: make(map[models.Platform]models.PassSummary),
	}
	return svc
}

// Sources returns the configured source list.
func (s *Service) Sources() []sources.Source {
	return s.sources
}

// RunSource runs one pass for the named platform.
func (s *Service) RunSource(ctx context.Context, platform models.Platform) (models.PassSummary, []models.Business, error) {
	for _, src := range s.sources {
		if src.GetName() == platform {
			return s.RunPass(ctx, src)
		}
	}
	return models.PassSummary{}, nil, fmt.Errorf("unknown source: %s", platform)
}

// RunAll runs one pass for every enabled source sequentially and returns all
// newly discovered records. Used by the manual trigger and one-shot discovery.
func (s *Service) RunAll(ctx context.Context) []models.Business {
	var discovered []models.Business

	for _, src := range s.sources {
		if !src.IsEnabled() {
			logrus.Debugf("Skipping disabled source %s", src.GetName())
			continue
		}

		summary, inserted, err := s.RunPass(ctx, src)
		if err != nil {
			logrus.Errorf("Discovery pass for %s failed: %v", src.GetName(), err)
			continue
		}
		logrus.Infof("Pass %s for %s: %d fetched, %d inserted", summary.PassID, src.GetName(), summary.Fetched, summary.Inserted)
		discovered = append(discovered, inserted...)
	}

	return discovered
}

// RunPass executes one full discovery pass for a source. A per-candidate
// failure skips only that candidate; one bad record never aborts the pass.
// The returned list holds the records newly inserted by this pass.
func (s *Service) RunPass(ctx context.Context, src sources.Source) (models.PassSummary, []models.Business, error) {
	summary := models.PassSummary{
		PassID:    uuid.NewString(),
		Platform:  src.GetName(),
		StartedAt: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, passTimeout)
	defer cancel()

	logrus.Infof("Starting discovery pass %s for %s", summary.PassID, src.GetName())

	candidates, err := src.FetchCandidates(ctx)
	if err != nil {
		// Source fetch failure: this pass yields zero candidates, other
		// sources are unaffected.
		summary.Duration = time.Since(summary.StartedAt)
		s.recordSummary(summary)
		return summary, nil, fmt.Errorf("fetch candidates from %s: %w", src.GetName(), err)
	}

	summary.Fetched = len(candidates)

	var inserted []models.Business
	for _, candidate := range candidates {
		outcome := s.processCandidate(ctx, candidate)
		switch outcome.kind {
		case outcomeSkipped:
			summary.Skipped++
		case outcomeBelowMin:
			summary.Scored++
			summary.BelowMin++
		case outcomeRaceLost:
			summary.Scored++
			summary.Races++
		case outcomeInserted:
			summary.Scored++
			summary.Inserted++
			inserted = append(inserted, *outcome.business)
		case outcomeErrored:
			summary.Errored++
			logrus.Warnf("Skipping candidate %q: %v", candidate.PageURL, outcome.err)
		}
	}

	summary.Duration = time.Since(summary.StartedAt)
	s.recordSummary(summary)

	record := models.SearchRecord{
		Platform:    src.GetName(),
		Query:       fmt.Sprintf("%s discovery pass %s", src.GetName(), summary.PassID),
		ExecutedAt:  summary.StartedAt,
		ResultCount: summary.Fetched,
	}
	if err := s.store.AddSearchRecord(ctx, record); err != nil {
		logrus.Warnf("Failed to record search history for %s: %v", src.GetName(), err)
	}

	logrus.Infof("Pass %s completed in %v: fetched=%d skipped=%d scored=%d below_min=%d inserted=%d races=%d errored=%d",
		summary.PassID, summary.Duration, summary.Fetched, summary.Skipped,
		summary.Scored, summary.BelowMin, summary.Inserted, summary.Races, summary.Errored)

	return summary, inserted, nil
}

type outcomeKind int

const (
	outcomeSkipped outcomeKind = iota
	outcomeBelowMin
	outcomeRaceLost
	outcomeInserted
	outcomeErrored
)

type candidateOutcome struct {
	kind     outcomeKind
	business *models.Business
	err      error
}

func (s *Service) processCandidate(ctx context.Context, candidate models.Candidate) candidateOutcome {
	if candidate.PageURL == "" {
		return candidateOutcome{kind: outcomeErrored, err: fmt.Errorf("candidate has no page URL")}
	}

	exists, err := s.store.Exists(ctx, candidate.PageURL)
	if err != nil {
		return candidateOutcome{kind: outcomeErrored, err: fmt.Errorf("existence check: %w", err)}
	}
	if exists {
		return candidateOutcome{kind: outcomeSkipped}
	}

	result := s.engine.Score(candidate)
	if result.Score < s.minScore {
		return candidateOutcome{kind: outcomeBelowMin}
	}

	business := models.Business{
		BusinessName:    candidate.BusinessName,
		Platform:        candidate.Platform,
		PageURL:         candidate.PageURL,
		Category:        candidate.Category,
		Location:        candidate.Location,
		Phone:           candidate.Phone,
		Email:           candidate.Email,
		Description:     candidate.Description,
		PageCreatedDate: candidate.PageCreatedDate,
		Metadata:        candidate.Metadata,
		ConfidenceScore: result.Score,
		Priority:        result.Priority,
		ScoringSignals:  result.Signals,
	}

	ok, err := s.store.Insert(ctx, &business)
	if err != nil {
		return candidateOutcome{kind: outcomeErrored, err: fmt.Errorf("insert: %w", err)}
	}
	if !ok {
		// The identity appeared between the existence check and the insert.
		// The store's unique constraint already holds the winner; drop ours.
		return candidateOutcome{kind: outcomeRaceLost}
	}

	logrus.Infof("New %s lead discovered: %s (score=%d priority=%s)",
		business.Platform, business.BusinessName, business.ConfidenceScore, business.Priority)
	return candidateOutcome{kind: outcomeInserted, business: &business}
}

func (s *Service) recordSummary(summary models.PassSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSummaries[summary.Platform] = summary
}

// GetMetrics returns the last pass summary per platform as JSON.
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.lastSummaries, "", "  ")
	return string(data)
}
