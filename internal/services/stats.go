package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"linkmanager/internal/models"
	"linkmanager/internal/storage"
	"linkmanager/pkg/utils"

	"github.com/mssola/user_agent"
)

const maxAccessLogEntries = 100

// StatsService owns the daily counters, the per-day IP dedup sets and
// the bounded access log. Counters are valid for the date stored under
// stats_reset_date; every public operation re-checks freshness first.
//
// Counter updates are read-modify-write on the shared store with no
// locking, so concurrent requests can lose increments (last write
// wins). That is a known trade-off of the stateless execution model,
// not something this service papers over.
type StatsService struct {
	store  storage.Store
	logger *slog.Logger
	geoIP  *GeoIPService
	now    func() time.Time
}

func NewStatsService(store storage.Store, logger *slog.Logger, geoIP *GeoIPService) *StatsService {
	return &StatsService{
		store:  store,
		logger: logger,
		geoIP:  geoIP,
		now:    time.Now,
	}
}

func (s *StatsService) today() string {
	return utils.BeijingDateString(s.now())
}

// EnsureFreshDay resets the daily counters when the stored reset date
// is not today. The first-ever run (no reset date at all) counts as
// stale and initializes everything.
func (s *StatsService) EnsureFreshDay(ctx context.Context) error {
	resetDate, err := s.store.Get(ctx, KeyResetDate)
	if err != nil {
		return fmt.Errorf("read reset date: %w", err)
	}
	if resetDate != s.today() {
		if _, err := s.ResetDailyStats(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RecordPageView counts one landing page visit: increments the page
// view counter, prepends an enriched access-log entry and adds the IP
// to today's unique-visitor set. Ignored IPs contribute to nothing.
func (s *StatsService) RecordPageView(ctx context.Context, info models.ClientInfo) error {
	if err := s.EnsureFreshDay(ctx); err != nil {
		return err
	}

	ignored, err := s.isIgnored(ctx, info.IP)
	if err != nil {
		return err
	}
	if ignored {
		s.logger.Debug("Skipping page view from ignored IP", "ip", info.IP)
		return nil
	}

	if err := s.incrementCounter(ctx, KeyPageViews); err != nil {
		return err
	}
	if err := s.appendAccessLog(ctx, info); err != nil {
		return err
	}
	return s.recordUniqueVisitor(ctx, info.IP)
}

// RecordStat counts one copy/telegram click event, at most once per IP
// per day per event type, and per link when linkID is supplied.
func (s *StatsService) RecordStat(ctx context.Context, statType, clientIP, linkID string) error {
	if statType != StatCopyClicks && statType != StatTelegramClicks {
		return fmt.Errorf("unsupported stat type: %s", statType)
	}

	if err := s.EnsureFreshDay(ctx); err != nil {
		return err
	}

	ignored, err := s.isIgnored(ctx, clientIP)
	if err != nil {
		return err
	}
	if ignored {
		s.logger.Debug("Skipping stat from ignored IP", "type", statType, "ip", clientIP)
		return nil
	}

	setKey := fmt.Sprintf("daily_%s_ips_%s", statType, s.today())
	if linkID != "" {
		setKey += "_" + linkID
	}

	ipSet, err := s.readIPSet(ctx, setKey)
	if err != nil {
		return err
	}
	if _, seen := ipSet[clientIP]; seen {
		// already counted today
		return nil
	}

	ipSet[clientIP] = struct{}{}
	if err := s.writeIPSet(ctx, setKey, ipSet); err != nil {
		return err
	}
	return s.incrementCounter(ctx, "daily_"+statType)
}

// ResetDailyStats zeroes the counters for the new day and drops
// yesterday's IP sets. It returns a report of yesterday's numbers.
// Running it twice on the same date is a no-op for the stored state.
func (s *StatsService) ResetDailyStats(ctx context.Context) (string, error) {
	today := s.today()
	yesterday := utils.BeijingDateString(s.now().AddDate(0, 0, -1))

	pageViews, err := s.readCounter(ctx, KeyPageViews)
	if err != nil {
		return "", err
	}
	copyClicks, err := s.readCounter(ctx, KeyCopyClicks)
	if err != nil {
		return "", err
	}
	telegramClicks, err := s.readCounter(ctx, KeyTelegramClicks)
	if err != nil {
		return "", err
	}
	visitorSet, err := s.readIPSet(ctx, "daily_unique_visitors_"+yesterday)
	if err != nil {
		return "", err
	}

	if err := s.store.Put(ctx, KeyResetDate, today); err != nil {
		return "", fmt.Errorf("write reset date: %w", err)
	}
	for _, key := range []string{KeyPageViews, KeyCopyClicks, KeyTelegramClicks} {
		if err := s.store.Put(ctx, key, "0"); err != nil {
			return "", fmt.Errorf("zero %s: %w", key, err)
		}
	}
	for _, key := range []string{
		"daily_unique_visitors_" + yesterday,
		fmt.Sprintf("daily_%s_ips_%s", StatCopyClicks, yesterday),
		fmt.Sprintf("daily_%s_ips_%s", StatTelegramClicks, yesterday),
	} {
		if err := s.store.Delete(ctx, key); err != nil {
			return "", fmt.Errorf("delete %s: %w", key, err)
		}
	}

	report := "🔄 <b>Daily statistics reset</b>\n\n" +
		"Reset date: " + today + "\n\n" +
		"<b>Yesterday's summary:</b>\n" +
		fmt.Sprintf("Page views: %d\n", pageViews) +
		fmt.Sprintf("Unique visitors: %d\n", len(visitorSet)) +
		fmt.Sprintf("Copy clicks: %d\n", copyClicks) +
		fmt.Sprintf("Telegram clicks: %d", telegramClicks)

	s.logger.Info("Daily statistics reset", "date", today,
		"yesterday_page_views", pageViews, "yesterday_unique_visitors", len(visitorSet))
	return report, nil
}

// GetStats assembles the present-day snapshot.
func (s *StatsService) GetStats(ctx context.Context) (*models.StatsSnapshot, error) {
	if err := s.EnsureFreshDay(ctx); err != nil {
		return nil, err
	}

	pageViews, err := s.readCounter(ctx, KeyPageViews)
	if err != nil {
		return nil, err
	}
	copyClicks, err := s.readCounter(ctx, KeyCopyClicks)
	if err != nil {
		return nil, err
	}
	telegramClicks, err := s.readCounter(ctx, KeyTelegramClicks)
	if err != nil {
		return nil, err
	}
	visitorSet, err := s.readIPSet(ctx, "daily_unique_visitors_"+s.today())
	if err != nil {
		return nil, err
	}
	logs, err := s.AccessLogs(ctx)
	if err != nil {
		return nil, err
	}

	token, err := s.store.Get(ctx, KeyTelegramToken)
	if err != nil {
		return nil, err
	}
	chatID, err := s.store.Get(ctx, KeyTelegramChatID)
	if err != nil {
		return nil, err
	}
	ignoredIP, err := s.store.Get(ctx, KeyIgnoredIP)
	if err != nil {
		return nil, err
	}
	cronReport, err := s.store.Get(ctx, KeyCronReport)
	if err != nil {
		return nil, err
	}
	buttonText, err := s.store.Get(ctx, KeyButtonText)
	if err != nil {
		return nil, err
	}
	if buttonText == "" {
		buttonText = defaultButtonText
	}
	buttonHidden, err := s.store.Get(ctx, KeyButtonHidden)
	if err != nil {
		return nil, err
	}
	resetDate, err := s.store.Get(ctx, KeyResetDate)
	if err != nil {
		return nil, err
	}

	return &models.StatsSnapshot{
		PageViews:            pageViews,
		CopyClicks:           copyClicks,
		TelegramClicks:       telegramClicks,
		UniqueVisitors:       len(visitorSet),
		IPLogs:               logs,
		TelegramConfigured:   token != "" && chatID != "",
		IgnoredIP:            ignoredIP,
		CronReportEnabled:    cronReport != "false",
		TelegramButtonText:   buttonText,
		TelegramButtonHidden: buttonHidden == "true",
		ResetDate:            resetDate,
	}, nil
}

// AccessLogs returns the bounded visit log, newest first.
func (s *StatsService) AccessLogs(ctx context.Context) ([]models.AccessLogEntry, error) {
	raw, err := s.store.Get(ctx, KeyAccessLogs)
	if err != nil {
		return nil, fmt.Errorf("read access logs: %w", err)
	}
	if raw == "" {
		return []models.AccessLogEntry{}, nil
	}
	var logs []models.AccessLogEntry
	if err := json.Unmarshal([]byte(raw), &logs); err != nil {
		return nil, fmt.Errorf("decode access logs: %w", err)
	}
	return logs, nil
}

// ClearAccessLogs empties the visit log (part of the nightly rollover).
func (s *StatsService) ClearAccessLogs(ctx context.Context) error {
	return s.store.Put(ctx, KeyAccessLogs, "[]")
}

func (s *StatsService) isIgnored(ctx context.Context, ip string) (bool, error) {
	configured, err := s.store.Get(ctx, KeyIgnoredIP)
	if err != nil {
		return false, fmt.Errorf("read ignored ip: %w", err)
	}
	return utils.IsIgnoredIP(configured, ip), nil
}

func (s *StatsService) appendAccessLog(ctx context.Context, info models.ClientInfo) error {
	entry := models.AccessLogEntry{
		Timestamp: utils.BeijingTimeString(s.now()),
		IP:        info.IP,
	}
	if s.geoIP != nil {
		entry.Country, entry.Region, entry.City = s.geoIP.GetLocation(info.IP)
	} else {
		entry.Country = "Unknown"
	}

	ua := user_agent.New(info.UserAgent)
	browserName, browserVer := ua.Browser()
	entry.Browser = browserName + " " + browserVer
	entry.OS = ua.OS()
	switch {
	case ua.Mobile():
		entry.DeviceType = "Mobile"
	case ua.Bot():
		entry.DeviceType = "Bot"
	default:
		entry.DeviceType = "Desktop"
	}

	logs, err := s.AccessLogs(ctx)
	if err != nil {
		return err
	}
	logs = append([]models.AccessLogEntry{entry}, logs...)
	if len(logs) > maxAccessLogEntries {
		logs = logs[:maxAccessLogEntries]
	}

	data, err := json.Marshal(logs)
	if err != nil {
		return fmt.Errorf("encode access logs: %w", err)
	}
	return s.store.Put(ctx, KeyAccessLogs, string(data))
}

func (s *StatsService) recordUniqueVisitor(ctx context.Context, clientIP string) error {
	key := "daily_unique_visitors_" + s.today()
	ipSet, err := s.readIPSet(ctx, key)
	if err != nil {
		return err
	}
	if _, seen := ipSet[clientIP]; seen {
		return nil
	}
	ipSet[clientIP] = struct{}{}
	return s.writeIPSet(ctx, key, ipSet)
}

func (s *StatsService) readCounter(ctx context.Context, key string) (int, error) {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", key, err)
	}
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		s.logger.Warn("Counter holds a non-numeric value, treating as zero", "key", key, "value", raw)
		return 0, nil
	}
	return n, nil
}

func (s *StatsService) incrementCounter(ctx context.Context, key string) error {
	current, err := s.readCounter(ctx, key)
	if err != nil {
		return err
	}
	return s.store.Put(ctx, key, strconv.Itoa(current+1))
}

func (s *StatsService) readIPSet(ctx context.Context, key string) (map[string]struct{}, error) {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	set := make(map[string]struct{})
	if raw == "" {
		return set, nil
	}
	var ips []string
	if err := json.Unmarshal([]byte(raw), &ips); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	for _, ip := range ips {
		set[ip] = struct{}{}
	}
	return set, nil
}

func (s *StatsService) writeIPSet(ctx context.Context, key string, set map[string]struct{}) error {
	ips := make([]string, 0, len(set))
	for ip := range set {
		ips = append(ips, ip)
	}
	sort.Strings(ips)
	data, err := json.Marshal(ips)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.store.Put(ctx, key, string(data))
}
