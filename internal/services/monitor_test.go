package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"linkmanager/internal/models"
	"linkmanager/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (f *fakeNotifier) Name() string { return "fake" }

func (f *fakeNotifier) Send(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeNotifier) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

type monitorFixture struct {
	monitor  *MonitorService
	settings *SettingsService
	store    storage.Store
	notifier *fakeNotifier
}

func newTestMonitor(t *testing.T) *monitorFixture {
	store := setupTestStore(t)
	settings := NewSettingsService(store, testLogger())
	stats := NewStatsService(store, testLogger(), nil)
	notifier := &fakeNotifier{}
	monitor := NewMonitorService(settings, stats, store, notifier, testLogger(), 2*time.Second, time.Minute)
	clock := fixedClock(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	monitor.now = clock
	stats.now = clock
	return &monitorFixture{monitor: monitor, settings: settings, store: store, notifier: notifier}
}

// probeTarget serves HEAD with a switchable status code.
type probeTarget struct {
	mu     sync.Mutex
	code   int
	server *httptest.Server
}

func newProbeTarget(t *testing.T, code int) *probeTarget {
	target := &probeTarget{code: code}
	target.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target.mu.Lock()
		defer target.mu.Unlock()
		w.WriteHeader(target.code)
	}))
	t.Cleanup(target.server.Close)
	return target
}

func (p *probeTarget) setCode(code int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.code = code
}

func seedLink(t *testing.T, settings *SettingsService, url string, status models.LinkStatus) models.Link {
	link := models.Link{
		ID:     "lnk-1",
		Name:   "Primary",
		URL:    url,
		Order:  0,
		Status: status,
	}
	require.NoError(t, settings.SaveLinks(context.Background(), []models.Link{link}))
	return link
}

func TestRunChecks(t *testing.T) {
	ctx := context.Background()

	t.Run("no links configured", func(t *testing.T) {
		fx := newTestMonitor(t)
		summary := fx.monitor.RunChecks(ctx)
		assert.Contains(t, summary, "No subscription links configured")
		assert.Empty(t, fx.notifier.sent())
	})

	t.Run("healthy link persists active status", func(t *testing.T) {
		fx := newTestMonitor(t)
		target := newProbeTarget(t, http.StatusOK)
		seedLink(t, fx.settings, target.server.URL, models.StatusUnknown)

		summary := fx.monitor.RunChecks(ctx)
		assert.Contains(t, summary, "healthy")

		links, err := fx.settings.Links(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, links[0].Status)
		assert.Equal(t, "2024-03-15 20:00:00", links[0].LastChecked)

		lastCheck, err := fx.store.Get(ctx, KeyLastAutoCheck)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-15 20:00:00", lastCheck)
	})

	t.Run("redirect counts as healthy", func(t *testing.T) {
		fx := newTestMonitor(t)
		target := newProbeTarget(t, http.StatusFound)
		seedLink(t, fx.settings, target.server.URL, models.StatusUnknown)

		fx.monitor.RunChecks(ctx)

		links, err := fx.settings.Links(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.StatusActive, links[0].Status)
	})

	t.Run("server error marks inactive", func(t *testing.T) {
		fx := newTestMonitor(t)
		target := newProbeTarget(t, http.StatusInternalServerError)
		seedLink(t, fx.settings, target.server.URL, models.StatusUnknown)

		summary := fx.monitor.RunChecks(ctx)
		assert.Contains(t, summary, "unhealthy (HTTP 500)")

		links, err := fx.settings.Links(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.StatusInactive, links[0].Status)
	})

	t.Run("unreachable URL marks error", func(t *testing.T) {
		fx := newTestMonitor(t)
		target := newProbeTarget(t, http.StatusOK)
		url := target.server.URL
		target.server.Close()
		seedLink(t, fx.settings, url, models.StatusUnknown)

		summary := fx.monitor.RunChecks(ctx)
		assert.Contains(t, summary, "check failed")

		links, err := fx.settings.Links(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.StatusError, links[0].Status)
	})

	t.Run("placeholder link is skipped", func(t *testing.T) {
		fx := newTestMonitor(t)
		seedLink(t, fx.settings, models.PlaceholderURL, models.StatusUnknown)

		summary := fx.monitor.RunChecks(ctx)
		assert.Contains(t, summary, "not configured")

		links, err := fx.settings.Links(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.StatusUnknown, links[0].Status)
	})
}

func TestTransitionNotifications(t *testing.T) {
	ctx := context.Background()

	t.Run("first check never notifies", func(t *testing.T) {
		fx := newTestMonitor(t)
		target := newProbeTarget(t, http.StatusServiceUnavailable)
		seedLink(t, fx.settings, target.server.URL, models.StatusUnknown)

		fx.monitor.RunChecks(ctx)
		assert.Empty(t, fx.notifier.sent())
	})

	t.Run("active to inactive sends one down message", func(t *testing.T) {
		fx := newTestMonitor(t)
		target := newProbeTarget(t, http.StatusServiceUnavailable)
		seedLink(t, fx.settings, target.server.URL, models.StatusActive)

		summary := fx.monitor.RunChecks(ctx)
		assert.Contains(t, summary, "down notification sent")

		sent := fx.notifier.sent()
		require.Len(t, sent, 1)
		assert.Contains(t, sent[0], "Subscription link down")
		assert.Contains(t, sent[0], "Primary")
	})

	t.Run("repeated failure stays silent", func(t *testing.T) {
		fx := newTestMonitor(t)
		target := newProbeTarget(t, http.StatusServiceUnavailable)
		seedLink(t, fx.settings, target.server.URL, models.StatusActive)

		fx.monitor.RunChecks(ctx)
		fx.monitor.RunChecks(ctx)
		assert.Len(t, fx.notifier.sent(), 1)
	})

	t.Run("inactive to active sends one recovery message", func(t *testing.T) {
		fx := newTestMonitor(t)
		target := newProbeTarget(t, http.StatusOK)
		seedLink(t, fx.settings, target.server.URL, models.StatusInactive)

		summary := fx.monitor.RunChecks(ctx)
		assert.Contains(t, summary, "recovery notification sent")

		sent := fx.notifier.sent()
		require.Len(t, sent, 1)
		assert.Contains(t, sent[0], "Subscription link recovered")
	})

	t.Run("error to active also counts as recovery", func(t *testing.T) {
		fx := newTestMonitor(t)
		target := newProbeTarget(t, http.StatusOK)
		seedLink(t, fx.settings, target.server.URL, models.StatusError)

		fx.monitor.RunChecks(ctx)

		sent := fx.notifier.sent()
		require.Len(t, sent, 1)
		assert.Contains(t, sent[0], "recovered")
	})

	t.Run("active to error sends a down message with the error", func(t *testing.T) {
		fx := newTestMonitor(t)
		target := newProbeTarget(t, http.StatusOK)
		url := target.server.URL
		target.server.Close()
		seedLink(t, fx.settings, url, models.StatusActive)

		fx.monitor.RunChecks(ctx)

		sent := fx.notifier.sent()
		require.Len(t, sent, 1)
		assert.Contains(t, sent[0], "Subscription link down")
		assert.Contains(t, sent[0], "Error:")
	})

	t.Run("down and back up over two cycles", func(t *testing.T) {
		fx := newTestMonitor(t)
		target := newProbeTarget(t, http.StatusServiceUnavailable)
		seedLink(t, fx.settings, target.server.URL, models.StatusActive)

		fx.monitor.RunChecks(ctx)
		target.setCode(http.StatusOK)
		fx.monitor.RunChecks(ctx)

		sent := fx.notifier.sent()
		require.Len(t, sent, 2)
		assert.Contains(t, sent[0], "down")
		assert.Contains(t, sent[1], "recovered")
	})

	t.Run("notifier failure does not abort the batch", func(t *testing.T) {
		fx := newTestMonitor(t)
		fx.notifier.err = ErrNotifierNotConfigured
		target := newProbeTarget(t, http.StatusServiceUnavailable)
		seedLink(t, fx.settings, target.server.URL, models.StatusActive)

		fx.monitor.RunChecks(ctx)

		links, err := fx.settings.Links(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.StatusInactive, links[0].Status)
	})
}

func TestCheckAll(t *testing.T) {
	ctx := context.Background()
	fx := newTestMonitor(t)
	target := newProbeTarget(t, http.StatusOK)

	require.NoError(t, fx.settings.SaveLinks(ctx, []models.Link{
		{ID: "a", Name: "Up", URL: target.server.URL, Order: 0, Status: models.StatusUnknown},
		{ID: "b", Name: "Blank", URL: models.PlaceholderURL, Order: 1, Status: models.StatusUnknown},
	}))

	results, err := fx.monitor.CheckAll(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, results[0].Active)
	assert.Equal(t, http.StatusOK, results[0].Status)
	assert.Equal(t, "never", results[0].LastModified)

	assert.False(t, results[1].Active)
	assert.Equal(t, "link not configured", results[1].Error)

	// read-only: stored statuses untouched, no notifications
	links, err := fx.settings.Links(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnknown, links[0].Status)
	assert.Empty(t, fx.notifier.sent())
}

func TestRunCycle(t *testing.T) {
	ctx := context.Background()

	t.Run("rolls the day once and reports", func(t *testing.T) {
		fx := newTestMonitor(t)
		target := newProbeTarget(t, http.StatusOK)
		seedLink(t, fx.settings, target.server.URL, models.StatusActive)
		require.NoError(t, fx.store.Put(ctx, KeyResetDate, "2024-03-14"))

		fx.monitor.runCycle(ctx)

		sent := fx.notifier.sent()
		require.Len(t, sent, 1)
		assert.Contains(t, sent[0], "Scheduled check report")
		assert.Contains(t, sent[0], "Daily statistics reset")
		assert.Contains(t, sent[0], "IP access log cleared")
		assert.Contains(t, sent[0], "Today's summary")

		fx.monitor.runCycle(ctx)
		sent = fx.notifier.sent()
		require.Len(t, sent, 2)
		assert.Contains(t, sent[1], "Daily reset skipped, already done today")
	})

	t.Run("disabled report suppresses the send", func(t *testing.T) {
		fx := newTestMonitor(t)
		target := newProbeTarget(t, http.StatusOK)
		seedLink(t, fx.settings, target.server.URL, models.StatusActive)
		require.NoError(t, fx.store.Put(ctx, KeyCronReport, "false"))

		fx.monitor.runCycle(ctx)
		assert.Empty(t, fx.notifier.sent())
	})
}

func TestStartStopsOnCancel(t *testing.T) {
	fx := newTestMonitor(t)
	fx.monitor.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		fx.monitor.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
}
