package alerts

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leadscout/discovery-bot/internal/models"
	"github.com/leadscout/discovery-bot/internal/store"
)

type mockNotifier struct {
	mock.Mock
}

var _ Notifier = (*mockNotifier)(nil)

func (m *mockNotifier) Notify(business *models.Business) error {
	args := m.Called(business)
	return args.Error(0)
}

func (m *mockNotifier) NotifyBatch(businesses []models.Business) error {
	args := m.Called(businesses)
	return args.Error(0)
}

type recordingArchiver struct {
	names []string
	err   error
}

func (r *recordingArchiver) Store(name string, data []byte) error {
	r.names = append(r.names, name)
	return r.err
}

func openGateStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return st
}

func insertLead(t *testing.T, st *store.SQLiteStore, name, pageURL string, score int) models.Business {
	t.Helper()

	business := models.Business{
		BusinessName:    name,
		Platform:        models.PlatformFacebook,
		PageURL:         pageURL,
		Category:        "food",
		ConfidenceScore: score,
		Priority:        models.PriorityMedium,
	}
	inserted, err := st.Insert(context.Background(), &business)
	require.NoError(t, err)
	require.True(t, inserted)

	return business
}

func TestGate_RunInstant_MarksOnlyDelivered(t *testing.T) {
	st := openGateStore(t)
	insertLead(t, st, "High Lead", "https://facebook.com/high", 90)
	insertLead(t, st, "Low Lead", "https://facebook.com/low", 40)

	notifier := new(mockNotifier)
	notifier.On("Notify", mock.MatchedBy(func(b *models.Business) bool {
		return b.BusinessName == "High Lead"
	})).Return(errors.New("smtp unavailable"))
	notifier.On("Notify", mock.MatchedBy(func(b *models.Business) bool {
		return b.BusinessName == "Low Lead"
	})).Return(nil)

	gate := NewGate(st, notifier, nil, false)
	require.NoError(t, gate.RunInstant(context.Background()))

	// The failed record stays pending for the next cycle.
	pending, err := st.PendingNotifications(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "High Lead", pending[0].BusinessName)

	notifier.AssertNumberOfCalls(t, "Notify", 2)
}

func TestGate_RunInstant_RetriesFailedOnNextCycle(t *testing.T) {
	st := openGateStore(t)
	insertLead(t, st, "Flaky Lead", "https://facebook.com/flaky", 70)

	notifier := new(mockNotifier)
	notifier.On("Notify", mock.Anything).Return(errors.New("timeout")).Once()
	notifier.On("Notify", mock.Anything).Return(nil).Once()

	gate := NewGate(st, notifier, nil, false)
	ctx := context.Background()

	require.NoError(t, gate.RunInstant(ctx))
	require.NoError(t, gate.RunInstant(ctx))

	pending, err := st.PendingNotifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
	notifier.AssertNumberOfCalls(t, "Notify", 2)
}

func TestGate_RunBatch_MarksAllDespiteDeliveryFailure(t *testing.T) {
	st := openGateStore(t)
	insertLead(t, st, "Lead A", "https://facebook.com/a", 90)
	insertLead(t, st, "Lead B", "https://facebook.com/b", 70)
	insertLead(t, st, "Lead C", "https://facebook.com/c", 65)

	notifier := new(mockNotifier)
	notifier.On("NotifyBatch", mock.Anything).Return(errors.New("telegram down"))

	gate := NewGate(st, notifier, nil, true)
	require.NoError(t, gate.RunBatch(context.Background()))

	// Batch delivery is best effort: everything is marked regardless.
	pending, err := st.PendingNotifications(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)

	notifier.AssertNumberOfCalls(t, "NotifyBatch", 1)
}

func TestGate_RunBatch_ArchivesSnapshot(t *testing.T) {
	st := openGateStore(t)
	insertLead(t, st, "Lead A", "https://facebook.com/a", 90)

	notifier := new(mockNotifier)
	notifier.On("NotifyBatch", mock.Anything).Return(nil)
	archiver := &recordingArchiver{}

	gate := NewGate(st, notifier, archiver, true)
	require.NoError(t, gate.RunBatch(context.Background()))

	require.Len(t, archiver.names, 1)
	assert.Contains(t, archiver.names[0], "leads-")
	assert.Contains(t, archiver.names[0], ".json")
}

func TestGate_Run_NoPending(t *testing.T) {
	st := openGateStore(t)
	notifier := new(mockNotifier)

	tests := []struct {
		name      string
		batchMode bool
	}{
		{"instant mode", false},
		{"batch mode", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := NewGate(st, notifier, nil, tt.batchMode)
			assert.NoError(t, gate.Run(context.Background()))
		})
	}

	// An empty pending set never reaches the notifier.
	notifier.AssertNotCalled(t, "Notify", mock.Anything)
	notifier.AssertNotCalled(t, "NotifyBatch", mock.Anything)
}
