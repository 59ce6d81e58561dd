package models

// ClientInfo is what a request handler extracts about the visitor
// before handing it to the stats engine.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// AccessLogEntry is one record of the bounded visit log, newest first.
type AccessLogEntry struct {
	Timestamp  string `json:"timestamp"`
	IP         string `json:"ip"`
	Country    string `json:"country"`
	Region     string `json:"region"`
	City       string `json:"city"`
	Browser    string `json:"browser"`
	OS         string `json:"os"`
	DeviceType string `json:"device_type"`
}

// StatsSnapshot is the read-only aggregate returned by GET /api/stats
// and rendered on the admin dashboard.
type StatsSnapshot struct {
	PageViews            int              `json:"page_views"`
	CopyClicks           int              `json:"copy_clicks"`
	TelegramClicks       int              `json:"telegram_clicks"`
	UniqueVisitors       int              `json:"unique_visitors"`
	IPLogs               []AccessLogEntry `json:"ip_logs"`
	TelegramConfigured   bool             `json:"telegram_configured"`
	IgnoredIP            string           `json:"ignored_ip"`
	CronReportEnabled    bool             `json:"cron_report_enabled"`
	TelegramButtonText   string           `json:"telegram_button_text"`
	TelegramButtonHidden bool             `json:"telegram_button_hidden"`
	ResetDate            string           `json:"reset_date"`
}
