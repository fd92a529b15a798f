package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultTelegramAPIBase = "https://api.telegram.org"

type ReminderSender interface {
	Send(ctx context.Context, message string) error
}

type TelegramSender struct {
	apiBase  string
	botToken string
	chatID   string
	client   *http.Client
}

func NewTelegramSender(botToken string, chatID string) *TelegramSender {
	return &TelegramSender{
		apiBase:  defaultTelegramAPIBase,
		botToken: botToken,
		chatID:   chatID,
		client: &http.Client{
			Timeout: 8 * time.Second,
		},
	}
}

func (sender *TelegramSender) Send(ctx context.Context, message string) error {
	values := url.Values{}
	values.Set("chat_id", sender.chatID)
	values.Set("text", message)

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", sender.apiBase, sender.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := sender.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// LogSender writes reminders to the structured log when no messenger is configured.
type LogSender struct {
	log *logrus.Entry
}

func NewLogSender(log *logrus.Entry) *LogSender {
	return &LogSender{log: log}
}

func (sender *LogSender) Send(_ context.Context, message string) error {
	sender.log.WithField("channel", "log").Info(message)
	return nil
}
