package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/leadscout/discovery-bot/internal/models"
)

// Store defines the contract for lead persistence. Insert is the single dedup
// gate: at most one stored record per identity, enforced by the storage layer.
type Store interface {
	Exists(ctx context.Context, pageURL string) (bool, error)
	Insert(ctx context.Context, business *models.Business) (bool, error)
	PendingNotifications(ctx context.Context) ([]models.Business, error)
	MarkNotified(ctx context.Context, id int64) error
	RecentBusinesses(ctx context.Context, limit int, platform, category string) ([]models.Business, error)
	Statistics(ctx context.Context) (models.Statistics, error)
	AddSearchRecord(ctx context.Context, record models.SearchRecord) error
	Close() error
}

// ComputeIdentity returns the deterministic dedup key for a page URL: the
// SHA-256 digest of the lower-cased URL. Case variations of the same URL hash
// to the same identity.
func ComputeIdentity(pageURL string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(pageURL)))
	return hex.EncodeToString(sum[:])
}
