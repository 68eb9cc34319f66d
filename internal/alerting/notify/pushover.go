package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultPushoverURL = "https://api.pushover.net/1/messages.json"

// PushoverClient delivers direct push notifications. The delivery
// target is the Pushover user key.
type PushoverClient struct {
	apiURL string
	token  string
	client *http.Client
}

func NewPushoverClient(apiURL, token string, timeout time.Duration) *PushoverClient {
	if apiURL == "" {
		apiURL = defaultPushoverURL
	}
	return &PushoverClient{
		apiURL: apiURL,
		token:  token,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *PushoverClient) Name() string { return "pushover" }

func (c *PushoverClient) Deliver(ctx context.Context, target, title, body string, priority int) error {
	form := url.Values{
		"token":    {c.token},
		"user":     {target},
		"title":    {title},
		"message":  {body},
		"priority": {strconv.Itoa(priority)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("pushover status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
