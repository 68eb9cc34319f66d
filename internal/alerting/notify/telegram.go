package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTelegramAPI = "https://api.telegram.org"

// TelegramClient delivers to the team channel family. The delivery
// target is a chat id: a channel for sub-channel addressing or a user
// chat for individual recipients.
type TelegramClient struct {
	apiBase  string
	botToken string
	client   *http.Client
}

func NewTelegramClient(apiBase, botToken string, timeout time.Duration) *TelegramClient {
	if apiBase == "" {
		apiBase = defaultTelegramAPI
	}
	return &TelegramClient{
		apiBase:  strings.TrimSuffix(apiBase, "/"),
		botToken: botToken,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *TelegramClient) Name() string { return "telegram" }

type telegramSendReq struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
	// urgent messages bypass the client-side mute
	DisableNotification bool `json:"disable_notification"`
}

func (c *TelegramClient) Deliver(ctx context.Context, target, title, body string, priority int) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.botToken)
	payload, err := json.Marshal(telegramSendReq{
		ChatID:              target,
		Text:                title + "\n\n" + body,
		DisableNotification: priority <= 0,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
