package factory

import (
	"context"
	"sync"
	"time"

	"github.com/enigmahunt/enigmahunt/internal/dependencies/mocks"
	"github.com/enigmahunt/enigmahunt/internal/services/auth"
	"github.com/enigmahunt/enigmahunt/internal/services/notify"
	"github.com/enigmahunt/enigmahunt/internal/storage/memory"
	"github.com/enigmahunt/enigmahunt/internal/testutil"
)

// RecordingSender captures push sends for assertions
type RecordingSender struct {
	mu    sync.Mutex
	Sends []RecordedSend
}

// RecordedSend is one captured push delivery
type RecordedSend struct {
	Tokens       []string
	Notification notify.Notification
}

// Send records the delivery and succeeds
func (r *RecordingSender) Send(_ context.Context, tokens []string, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sends = append(r.Sends, RecordedSend{Tokens: tokens, Notification: n})
	return nil
}

// Sent returns a copy of the captured sends
func (r *RecordingSender) Sent() []RecordedSend {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedSend(nil), r.Sends...)
}

var _ notify.Sender = (*RecordingSender)(nil)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Sender     *RecordingSender
}

// NewTestApp creates an App configured for testing with mocked
// dependencies. Session tokens come from MockRandom, so tests that log
// in must queue distinct strings with QueueString first.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	sender := &RecordingSender{}

	authCfg := auth.DefaultConfig()
	authCfg.InitialBalance = 20

	app := newWithDependencies(store, mockClock, mockRandom, sender, authCfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Sender:     sender,
	}
}
