package sources

import (
	"context"

	"github.com/leadscout/discovery-bot/internal/models"
)

// Source defines the contract for all discovery sources. FetchCandidates may
// return fewer results on partial failure; no results is not an error.
type Source interface {
	GetName() models.Platform
	FetchCandidates(ctx context.Context) ([]models.Candidate, error)
	IsEnabled() bool
}
