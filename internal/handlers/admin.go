package handlers

import (
	"net/http"

	"linkmanager/internal/models"
	"linkmanager/pkg/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// ShowAdmin renders the setup page (no password yet), the login page
// (not authenticated) or the dashboard.
func (h *Handler) ShowAdmin(c *gin.Context) {
	ctx := c.Request.Context()

	passwordHash, err := h.settingsService.AdminPasswordHash(ctx)
	if err != nil {
		h.logger.Error("Failed to read admin password", "error", err)
		c.HTML(http.StatusOK, "login.html", gin.H{"Error": "storage unavailable"})
		return
	}
	if passwordHash == "" {
		c.HTML(http.StatusOK, "setup.html", nil)
		return
	}
	if !h.isAuthenticated(c) {
		c.HTML(http.StatusOK, "login.html", nil)
		return
	}

	settings, err := h.settingsService.Load(ctx)
	if err != nil {
		h.logger.Error("Failed to load settings", "error", err)
		settings = &models.Settings{}
	}
	stats, err := h.statsService.GetStats(ctx)
	if err != nil {
		h.logger.Error("Failed to load stats", "error", err)
		stats = &models.StatsSnapshot{}
	}
	lastUpdated, _ := h.settingsService.LastUpdated(ctx)
	if lastUpdated == "" {
		lastUpdated = "never"
	}
	lastAutoCheck, _ := h.settingsService.LastAutoCheck(ctx)
	if lastAutoCheck == "" {
		lastAutoCheck = "never"
	}

	c.HTML(http.StatusOK, "admin.html", gin.H{
		"Settings":      settings,
		"Stats":         stats,
		"LastUpdated":   lastUpdated,
		"LastAutoCheck": lastAutoCheck,
	})
}

// AdminSetup sets the admin password once and logs the operator in.
func (h *Handler) AdminSetup(c *gin.Context) {
	ctx := c.Request.Context()

	password := c.PostForm("password")
	if password == "" {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "password must not be empty"})
		return
	}

	existing, err := h.settingsService.AdminPasswordHash(ctx)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	if existing != "" {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "admin password is already configured"})
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "failed to hash password"})
		return
	}
	if err := h.settingsService.SetAdminPassword(ctx, hash); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err := h.openSession(c); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	h.auditService.LogAction("SETUP", "", nil, clientIP(c))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AdminLogin verifies the password and opens a session.
func (h *Handler) AdminLogin(c *gin.Context) {
	ctx := c.Request.Context()

	password := c.PostForm("password")
	storedHash, err := h.settingsService.AdminPasswordHash(ctx)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	if storedHash == "" {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "run the initial setup first"})
		return
	}
	if !utils.CheckPasswordHash(password, storedHash) {
		h.auditService.LogAction("LOGIN_FAILED", "", nil, clientIP(c))
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "wrong password"})
		return
	}

	if err := h.openSession(c); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	h.auditService.LogAction("LOGIN", "", nil, clientIP(c))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// openSession mints a fresh token, persists it and sets the cookie.
func (h *Handler) openSession(c *gin.Context) error {
	token := utils.GenerateSessionToken()
	if err := h.settingsService.SetSessionToken(c.Request.Context(), token); err != nil {
		return err
	}

	session := sessions.Default(c)
	session.Set(sessionTokenKey, token)
	return session.Save()
}

func (h *Handler) AdminLogout(c *gin.Context) {
	if err := h.settingsService.ClearSessionToken(c.Request.Context()); err != nil {
		h.logger.Error("Failed to clear session token", "error", err)
	}

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "failed to clear session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateConfig persists the config form and stamps last_updated.
func (h *Handler) UpdateConfig(c *gin.Context) {
	update := models.ConfigUpdate{
		TelegramGroup:        c.PostForm("telegram_group"),
		TelegramBotToken:     c.PostForm("telegram_bot_token"),
		TelegramChatID:       c.PostForm("telegram_chat_id"),
		IgnoredIP:            c.PostForm("ignored_ip"),
		CronReportEnabled:    c.PostForm("cron_report_enabled") == "on",
		TelegramButtonText:   c.PostForm("telegram_button_text"),
		TelegramButtonHidden: c.PostForm("telegram_button_hidden") == "on",
	}

	stamp, err := h.settingsService.SaveConfig(c.Request.Context(), update)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}

	h.auditService.LogAction("UPDATE_CONFIG", "", update, clientIP(c))
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "configuration updated",
		"lastUpdated": stamp,
	})
}

// TestTelegram sends a fixed message through the notification sink so
// the operator can verify the bot settings.
func (h *Handler) TestTelegram(c *gin.Context) {
	message := "🧪 <b>Test notification</b>\n\n" +
		"This message verifies the Telegram notification settings.\n" +
		"If you can read this, the configuration works."

	if err := h.notifier.Send(c.Request.Context(), message); err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "sending failed, check the Telegram configuration"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "test message sent, check Telegram"})
}
