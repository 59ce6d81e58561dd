package handlers

import (
	"log/slog"

	"linkmanager/internal/config"
	"linkmanager/internal/services"
	"linkmanager/internal/storage"
)

type Handler struct {
	cfg             config.Config
	logger          *slog.Logger
	store           storage.Store
	settingsService *services.SettingsService
	linksService    *services.LinksService
	statsService    *services.StatsService
	monitorService  *services.MonitorService
	notifier        services.Notifier
	auditService    *services.AuditService
}

func NewHandler(
	cfg config.Config,
	logger *slog.Logger,
	store storage.Store,
	settingsService *services.SettingsService,
	linksService *services.LinksService,
	statsService *services.StatsService,
	monitorService *services.MonitorService,
	notifier services.Notifier,
	auditService *services.AuditService,
) *Handler {
	return &Handler{
		cfg:             cfg,
		logger:          logger,
		store:           store,
		settingsService: settingsService,
		linksService:    linksService,
		statsService:    statsService,
		monitorService:  monitorService,
		notifier:        notifier,
		auditService:    auditService,
	}
}
