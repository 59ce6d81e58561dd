package services

// Logical key names in the shared store. These match what existing
// deployments already have persisted, so they must not change.
const (
	KeyLinks          = "subscription_links"
	KeyLegacyURL      = "subscription_url"
	KeyAdminPassword  = "admin_password"
	KeyAdminSession   = "admin_session_token"
	KeyTelegramGroup  = "telegram_group"
	KeyTelegramToken  = "telegram_bot_token"
	KeyTelegramChatID = "telegram_chat_id"
	KeyIgnoredIP      = "ignored_ip"
	KeyCronReport     = "cron_report_enabled"
	KeyButtonText     = "telegram_button_text"
	KeyButtonHidden   = "telegram_button_hidden"
	KeyLastUpdated    = "last_updated"
	KeyLastAutoCheck  = "last_auto_check"
	KeyResetDate      = "stats_reset_date"
	KeyPageViews      = "daily_page_views"
	KeyCopyClicks     = "daily_copy_clicks"
	KeyTelegramClicks = "daily_telegram_clicks"
	KeyAccessLogs     = "ip_access_logs"
)

const (
	defaultTelegramGroup = "https://t.me"
	defaultButtonText    = "Join our Telegram group"
)

// Recordable stat event types for POST /api/stats.
const (
	StatCopyClicks     = "copy_clicks"
	StatTelegramClicks = "telegram_clicks"
)
