package alerts

import "github.com/leadscout/discovery-bot/internal/models"

// Notifier defines the contract for alert delivery channels. Both calls are
// fire-and-forget from the dispatch gate's perspective: failures are logged,
// never pipeline-fatal.
type Notifier interface {
	Notify(business *models.Business) error
	NotifyBatch(businesses []models.Business) error
}
