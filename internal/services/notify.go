package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"linkmanager/internal/storage"
)

// ErrNotifierNotConfigured is returned when the bot token or chat id is
// missing. Callers treat it as "nothing to send", not as a failure.
var ErrNotifierNotConfigured = errors.New("telegram bot token or chat id not configured")

// Notifier is the outbound "send text message" sink.
type Notifier interface {
	Name() string
	Send(ctx context.Context, text string) error
}

// TelegramNotifier posts HTML-formatted messages to the Telegram bot
// API. Credentials are read from the store on every send so that config
// edits in the admin panel take effect immediately.
type TelegramNotifier struct {
	store   storage.Store
	logger  *slog.Logger
	apiBase string
	client  *http.Client
}

func NewTelegramNotifier(store storage.Store, logger *slog.Logger, apiBase string) *TelegramNotifier {
	cleanBase := strings.TrimSpace(apiBase)
	if cleanBase == "" {
		cleanBase = "https://api.telegram.org"
	}
	return &TelegramNotifier{
		store:   store,
		logger:  logger,
		apiBase: strings.TrimRight(cleanBase, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *TelegramNotifier) Name() string {
	return "telegram"
}

// Configured reports whether both credentials are present.
func (n *TelegramNotifier) Configured(ctx context.Context) bool {
	token, chatID, err := n.credentials(ctx)
	return err == nil && token != "" && chatID != ""
}

func (n *TelegramNotifier) credentials(ctx context.Context) (token, chatID string, err error) {
	token, err = n.store.Get(ctx, KeyTelegramToken)
	if err != nil {
		return "", "", err
	}
	chatID, err = n.store.Get(ctx, KeyTelegramChatID)
	if err != nil {
		return "", "", err
	}
	return token, chatID, nil
}

func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	token, chatID, err := n.credentials(ctx)
	if err != nil {
		return fmt.Errorf("read telegram credentials: %w", err)
	}
	if token == "" || chatID == "" {
		return ErrNotifierNotConfigured
	}

	payload := map[string]string{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram response status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && !result.OK {
		return fmt.Errorf("telegram API rejected the message")
	}
	return nil
}
