package models

// Settings is the single global configuration record assembled from
// flat keys in the store. There is no history; last write wins.
type Settings struct {
	Links                []Link
	TelegramGroup        string
	TelegramBotToken     string
	TelegramChatID       string
	IgnoredIP            string
	CronReportEnabled    bool
	TelegramButtonText   string
	TelegramButtonHidden bool
}

// ConfigUpdate carries the admin config form into the settings service.
type ConfigUpdate struct {
	TelegramGroup        string
	TelegramBotToken     string
	TelegramChatID       string
	IgnoredIP            string
	CronReportEnabled    bool
	TelegramButtonText   string
	TelegramButtonHidden bool
}
