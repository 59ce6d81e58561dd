package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"linkmanager/internal/models"
	"linkmanager/internal/storage"
	"linkmanager/pkg/utils"
)

// SettingsService reads and writes the flat configuration keys,
// including the link list blob. Every call re-reads the store; nothing
// is cached between requests.
type SettingsService struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewSettingsService(store storage.Store, logger *slog.Logger) *SettingsService {
	return &SettingsService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Links returns the stored link list. On first read after an upgrade
// from the single-URL layout it migrates the legacy subscription_url
// value into a one-entry list and persists it.
func (s *SettingsService) Links(ctx context.Context) ([]models.Link, error) {
	raw, err := s.store.Get(ctx, KeyLinks)
	if err != nil {
		return nil, fmt.Errorf("read link list: %w", err)
	}

	if raw == "" {
		return s.migrateLegacyURL(ctx)
	}

	var links []models.Link
	if err := json.Unmarshal([]byte(raw), &links); err != nil {
		return nil, fmt.Errorf("decode link list: %w", err)
	}

	valid := links[:0]
	for _, link := range links {
		if link.ID == "" {
			s.logger.Warn("Dropping persisted link without id", "name", link.Name)
			continue
		}
		link.NormalizeStatus()
		valid = append(valid, link)
	}
	return valid, nil
}

func (s *SettingsService) migrateLegacyURL(ctx context.Context) ([]models.Link, error) {
	oldURL, err := s.store.Get(ctx, KeyLegacyURL)
	if err != nil {
		return nil, fmt.Errorf("read legacy url: %w", err)
	}
	if oldURL == "" || oldURL == models.PlaceholderURL {
		return nil, nil
	}

	lastUpdated, err := s.store.Get(ctx, KeyLastUpdated)
	if err != nil {
		return nil, fmt.Errorf("read last_updated: %w", err)
	}
	if lastUpdated == "" {
		lastUpdated = utils.BeijingTimeString(s.now())
	}

	links := []models.Link{{
		ID:          "1",
		Name:        "Default subscription",
		URL:         oldURL,
		Description: "Migrated from the single-link setup",
		Order:       0,
		Status:      models.StatusUnknown,
		LastUpdated: lastUpdated,
	}}

	if err := s.SaveLinks(ctx, links); err != nil {
		return nil, err
	}
	s.logger.Info("Migrated legacy subscription_url to link list", "url", oldURL)
	return links, nil
}

func (s *SettingsService) SaveLinks(ctx context.Context, links []models.Link) error {
	if links == nil {
		links = []models.Link{}
	}
	data, err := json.Marshal(links)
	if err != nil {
		return fmt.Errorf("encode link list: %w", err)
	}
	if err := s.store.Put(ctx, KeyLinks, string(data)); err != nil {
		return fmt.Errorf("write link list: %w", err)
	}
	return nil
}

// Load assembles the full settings record for page rendering.
func (s *SettingsService) Load(ctx context.Context) (*models.Settings, error) {
	links, err := s.Links(ctx)
	if err != nil {
		return nil, err
	}

	group, err := s.store.Get(ctx, KeyTelegramGroup)
	if err != nil {
		return nil, err
	}
	if group == "" {
		group = defaultTelegramGroup
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

	return &models.Settings{
		Links:                links,
		TelegramGroup:        group,
		TelegramBotToken:     token,
		TelegramChatID:       chatID,
		IgnoredIP:            ignoredIP,
		CronReportEnabled:    cronReport != "false",
		TelegramButtonText:   buttonText,
		TelegramButtonHidden: buttonHidden == "true",
	}, nil
}

// SaveConfig persists the admin config form and stamps last_updated.
// Returns the display timestamp written.
func (s *SettingsService) SaveConfig(ctx context.Context, update models.ConfigUpdate) (string, error) {
	pairs := map[string]string{
		KeyTelegramGroup:  update.TelegramGroup,
		KeyTelegramToken:  update.TelegramBotToken,
		KeyTelegramChatID: update.TelegramChatID,
		KeyIgnoredIP:      update.IgnoredIP,
		KeyCronReport:     boolString(update.CronReportEnabled),
		KeyButtonText:     update.TelegramButtonText,
		KeyButtonHidden:   boolString(update.TelegramButtonHidden),
	}
	for key, value := range pairs {
		if err := s.store.Put(ctx, key, value); err != nil {
			return "", fmt.Errorf("write %s: %w", key, err)
		}
	}

	stamp := utils.BeijingTimeString(s.now())
	if err := s.store.Put(ctx, KeyLastUpdated, stamp); err != nil {
		return "", fmt.Errorf("write last_updated: %w", err)
	}
	return stamp, nil
}

func (s *SettingsService) IgnoredIP(ctx context.Context) (string, error) {
	return s.store.Get(ctx, KeyIgnoredIP)
}

func (s *SettingsService) CronReportEnabled(ctx context.Context) (bool, error) {
	val, err := s.store.Get(ctx, KeyCronReport)
	if err != nil {
		return false, err
	}
	return val != "false", nil
}

func (s *SettingsService) AdminPasswordHash(ctx context.Context) (string, error) {
	return s.store.Get(ctx, KeyAdminPassword)
}

func (s *SettingsService) SetAdminPassword(ctx context.Context, hash string) error {
	return s.store.Put(ctx, KeyAdminPassword, hash)
}

func (s *SettingsService) SessionToken(ctx context.Context) (string, error) {
	return s.store.Get(ctx, KeyAdminSession)
}

func (s *SettingsService) SetSessionToken(ctx context.Context, token string) error {
	return s.store.Put(ctx, KeyAdminSession, token)
}

func (s *SettingsService) ClearSessionToken(ctx context.Context) error {
	return s.store.Delete(ctx, KeyAdminSession)
}

func (s *SettingsService) LastUpdated(ctx context.Context) (string, error) {
	return s.store.Get(ctx, KeyLastUpdated)
}

func (s *SettingsService) LastAutoCheck(ctx context.Context) (string, error) {
	return s.store.Get(ctx, KeyLastAutoCheck)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
