package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"linkmanager/internal/models"
	"linkmanager/internal/storage"
	"linkmanager/pkg/utils"
)

// MonitorService probes the configured links, persists status
// transitions and fires notifications on edge transitions. Probes run
// sequentially; one outbound request at a time is plenty for a handful
// of links and keeps the failure handling simple.
type MonitorService struct {
	settings *SettingsService
	stats    *StatsService
	store    storage.Store
	notifier Notifier
	logger   *slog.Logger
	client   *http.Client
	timeout  time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewMonitorService(
	settings *SettingsService,
	stats *StatsService,
	store storage.Store,
	notifier Notifier,
	logger *slog.Logger,
	timeout time.Duration,
	interval time.Duration,
) *MonitorService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &MonitorService{
		settings: settings,
		stats:    stats,
		store:    store,
		notifier: notifier,
		logger:   logger,
		client:   &http.Client{Timeout: timeout},
		timeout:  timeout,
		interval: interval,
		now:      time.Now,
	}
}

// probe issues a lightweight HEAD request. A response in 200-399 counts
// as success; a transport error or timeout is returned as err.
func (s *MonitorService) probe(ctx context.Context, url string) (int, error) {
	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

func statusFromProbe(code int, err error) models.LinkStatus {
	switch {
	case err != nil:
		return models.StatusError
	case code >= 200 && code < 400:
		return models.StatusActive
	default:
		return models.StatusInactive
	}
}

// RunChecks probes every configured link, persists the updated list and
// last_auto_check, and sends transition notifications. It never returns
// an error to the caller: any failure ends up in the summary text.
func (s *MonitorService) RunChecks(ctx context.Context) string {
	links, err := s.settings.Links(ctx)
	if err != nil {
		return "❌ Link check failed: " + err.Error()
	}
	if len(links) == 0 {
		return "❌ No subscription links configured, skipping automatic check"
	}

	results := make([]string, 0, len(links))
	for i := range links {
		link := &links[i]
		if !link.Configured() {
			results = append(results, fmt.Sprintf("❌ %q: not configured", link.Name))
			continue
		}

		previous := link.Status
		if previous == "" {
			previous = models.StatusUnknown
		}

		code, probeErr := s.probe(ctx, link.URL)
		newStatus := statusFromProbe(code, probeErr)
		link.Status = newStatus
		link.LastChecked = utils.BeijingTimeString(s.now())

		switch {
		case probeErr != nil:
			results = append(results, fmt.Sprintf("❌ %q: check failed (%v)", link.Name, probeErr))
		case newStatus == models.StatusActive:
			results = append(results, fmt.Sprintf("✅ %q: healthy", link.Name))
		default:
			results = append(results, fmt.Sprintf("✅ %q: unhealthy (HTTP %d)", link.Name, code))
		}

		if note := s.notifyTransition(ctx, *link, previous, probeErr); note != "" {
			results[len(results)-1] += note
		}
	}

	if err := s.settings.SaveLinks(ctx, links); err != nil {
		s.logger.Error("Failed to persist link statuses", "error", err)
		return "❌ Link check failed: " + err.Error()
	}
	if err := s.store.Put(ctx, KeyLastAutoCheck, utils.BeijingTimeString(s.now())); err != nil {
		s.logger.Error("Failed to persist last_auto_check", "error", err)
	}

	return "Link check finished:\n" + strings.Join(results, "\n")
}

// notifyTransition sends degraded/recovered messages on edge
// transitions only. Same-state probes stay silent. Returns a marker to
// append to the per-link summary line, or "".
func (s *MonitorService) notifyTransition(ctx context.Context, link models.Link, previous models.LinkStatus, probeErr error) string {
	now := utils.BeijingTimeString(s.now())

	degraded := previous == models.StatusActive && link.Status != models.StatusActive
	recovered := (previous == models.StatusInactive || previous == models.StatusError) &&
		link.Status == models.StatusActive

	switch {
	case degraded:
		detail := "Status: connection failed"
		if probeErr != nil {
			detail = "Error: " + probeErr.Error()
		}
		message := "🔴 <b>Subscription link down</b>\n\n" +
			"Name: " + link.Name + "\n" +
			"URL: " + link.URL + "\n" +
			detail + "\n" +
			"Time: " + now + "\n" +
			"Please check the service."
		s.send(ctx, message)
		return " 🔴 (down notification sent)"
	case recovered:
		message := "🟢 <b>Subscription link recovered</b>\n\n" +
			"Name: " + link.Name + "\n" +
			"URL: " + link.URL + "\n" +
			"Status: connection healthy\n" +
			"Time: " + now + "\n" +
			"The service is back to normal."
		s.send(ctx, message)
		return " 🟢 (recovery notification sent)"
	}
	return ""
}

// send delivers a status-change notification. Delivery failures are
// logged and swallowed so a broken bot never aborts the probe batch.
func (s *MonitorService) send(ctx context.Context, message string) {
	if err := s.notifier.Send(ctx, message); err != nil {
		s.logger.Warn("Notification delivery failed", "notifier", s.notifier.Name(), "error", err)
	}
}

// CheckAll is the on-demand variant used by the public health endpoint.
// It probes without persisting anything and without notifications.
func (s *MonitorService) CheckAll(ctx context.Context) ([]models.CheckResult, error) {
	links, err := s.settings.Links(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]models.CheckResult, 0, len(links))
	for _, link := range links {
		lastModified := link.LastUpdated
		if lastModified == "" {
			lastModified = "never"
		}
		result := models.CheckResult{
			ID:           link.ID,
			Name:         link.Name,
			LastModified: lastModified,
		}

		if !link.Configured() {
			result.Error = "link not configured"
			results = append(results, result)
			continue
		}

		code, probeErr := s.probe(ctx, link.URL)
		if probeErr != nil {
			result.Error = probeErr.Error()
		} else {
			result.Status = code
			result.Active = code >= 200 && code < 400
		}
		results = append(results, result)
	}
	return results, nil
}

// Start runs the periodic cycle until ctx is cancelled: probe batch,
// daily rollover, aggregate report.
func (s *MonitorService) Start(ctx context.Context) {
	s.logger.Info("Link monitor starting", "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runCycle(ctx)
		case <-ctx.Done():
			s.logger.Info("Link monitor stopping")
			return
		}
	}
}

// runCycle is one scheduled firing. The daily reset is gated on the
// stored reset date instead of the wall-clock minute, so a tick that
// does not land exactly on midnight still rolls the day exactly once.
func (s *MonitorService) runCycle(ctx context.Context) {
	report := []string{
		"🕒 <b>Scheduled check report</b>",
		"Time: " + utils.BeijingTimeString(s.now()),
	}

	report = append(report, s.RunChecks(ctx))

	resetDate, err := s.store.Get(ctx, KeyResetDate)
	if err != nil {
		s.logger.Error("Failed to read reset date", "error", err)
	} else if resetDate != utils.BeijingDateString(s.now()) {
		summary, err := s.stats.ResetDailyStats(ctx)
		if err != nil {
			s.logger.Error("Daily reset failed", "error", err)
			report = append(report, "❌ Daily reset failed: "+err.Error())
		} else {
			report = append(report, summary)
		}
		if err := s.stats.ClearAccessLogs(ctx); err != nil {
			s.logger.Error("Failed to clear access logs", "error", err)
			report = append(report, "❌ Clearing IP access log failed: "+err.Error())
		} else {
			report = append(report, "🗑️ IP access log cleared")
		}
	} else {
		report = append(report, "Daily reset skipped, already done today")
	}

	if snapshot, err := s.stats.GetStats(ctx); err != nil {
		s.logger.Error("Failed to read stats snapshot", "error", err)
	} else {
		report = append(report,
			"\n<b>📊 Today's summary</b>",
			fmt.Sprintf("Page views: %d", snapshot.PageViews),
			fmt.Sprintf("Unique visitors: %d", snapshot.UniqueVisitors),
			fmt.Sprintf("Copy clicks: %d", snapshot.CopyClicks),
			fmt.Sprintf("Telegram clicks: %d", snapshot.TelegramClicks),
		)
	}

	enabled, err := s.settings.CronReportEnabled(ctx)
	if err != nil {
		s.logger.Error("Failed to read report toggle", "error", err)
		return
	}
	if !enabled {
		s.logger.Debug("Cron report disabled, skipping send")
		return
	}
	s.send(ctx, strings.Join(report, "\n"))
}
