package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/leadscout/discovery-bot/internal/archive"
	"github.com/leadscout/discovery-bot/internal/models"
	"github.com/leadscout/discovery-bot/internal/store"
)

// Gate tracks which persisted records have been notified and drives delivery.
// Each record moves UNNOTIFIED -> NOTIFIED exactly once, never back.
//
// The two modes deliberately differ on failure:
//   - instant: a record is marked notified only after its delivery succeeded,
//     so a failed record is retried on the next poll;
//   - batch: the whole pending set is marked after the best-effort batch call,
//     success or not, favoring forward progress over redelivery.
type Gate struct {
	store     store.Store
	notifier  Notifier
	archiver  archive.Archiver
	batchMode bool
}

// NewGate creates a dispatch gate. archiver may be nil.
func NewGate(st store.Store, notifier Notifier, archiver archive.Archiver, batchMode bool) *Gate {
	return &Gate{
		store:     st,
		notifier:  notifier,
		archiver:  archiver,
		batchMode: batchMode,
	}
}

// Run executes one dispatch cycle in the configured mode.
func (g *Gate) Run(ctx context.Context) error {
	if g.batchMode {
		return g.RunBatch(ctx)
	}
	return g.RunInstant(ctx)
}

// RunInstant delivers each pending record individually. A delivery failure
// leaves that record unnotified for the next poll and never blocks the rest.
func (g *Gate) RunInstant(ctx context.Context) error {
	pending, err := g.store.PendingNotifications(ctx)
	if err != nil {
		return fmt.Errorf("load pending notifications: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	logrus.Infof("Dispatching instant alerts for %d pending businesses", len(pending))

	sent := 0
	for i := range pending {
		business := pending[i]

		if err := g.notifier.Notify(&business); err != nil {
			logrus.Errorf("Alert delivery failed for %s, will retry next cycle: %v", business.BusinessName, err)
			continue
		}

		if err := g.store.MarkNotified(ctx, business.ID); err != nil {
			logrus.Errorf("Failed to mark %s as notified: %v", business.BusinessName, err)
			continue
		}
		sent++
	}

	logrus.Infof("Instant dispatch complete: %d/%d delivered", sent, len(pending))
	return nil
}

// RunBatch hands the entire pending set to the notifier as one digest, then
// marks everything notified regardless of the delivery outcome.
func (g *Gate) RunBatch(ctx context.Context) error {
	pending, err := g.store.PendingNotifications(ctx)
	if err != nil {
		return fmt.Errorf("load pending notifications: %w", err)
	}

	if len(pending) == 0 {
		logrus.Info("No new businesses to alert")
		return nil
	}

	logrus.Infof("Dispatching batch alert for %d businesses", len(pending))

	if err := g.notifier.NotifyBatch(pending); err != nil {
		logrus.Errorf("Batch delivery failed (best effort, not retried): %v", err)
	}

	g.archiveSnapshot(pending)

	for i := range pending {
		if err := g.store.MarkNotified(ctx, pending[i].ID); err != nil {
			logrus.Errorf("Failed to mark %s as notified: %v", pending[i].BusinessName, err)
		}
	}

	return nil
}

func (g *Gate) archiveSnapshot(businesses []models.Business) {
	if g.archiver == nil {
		return
	}

	data, err := json.Marshal(businesses)
	if err != nil {
		logrus.Errorf("Failed to marshal report snapshot: %v", err)
		return
	}

	name := fmt.Sprintf("leads-%s.json", time.Now().UTC().Format("2006-01-02-15-04-05"))
	if err := g.archiver.Store(name, data); err != nil {
		logrus.Errorf("Failed to archive report snapshot: %v", err)
	}
}
