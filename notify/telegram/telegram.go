// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package telegram delivers progress notifications through a Telegram bot.
//
// Delivery is strictly best-effort: every failure is logged and swallowed,
// and an unconfigured notifier (missing token or chat id) silently drops
// all messages.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/distillery/notify"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier sends messages to a Telegram chat via the bot API.
type Notifier struct {
	token   string
	chatID  string
	apiBase string
	client  *http.Client
	logger  *slog.Logger
}

var _ notify.Notifier = (*Notifier)(nil)

// Option configures a Notifier.
type Option func(*Notifier)

// WithAPIBase overrides the Telegram API base URL. Used in tests.
func WithAPIBase(base string) Option {
	return func(n *Notifier) {
		n.apiBase = base
	}
}

// WithHTTPClient sets the HTTP client used for delivery.
func WithHTTPClient(client *http.Client) Option {
	return func(n *Notifier) {
		n.client = client
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		if logger == nil {
			logger = slog.Default()
		}
		n.logger = logger
	}
}

// New creates a Telegram notifier for the given bot token and chat id.
// Either value may be empty, in which case the notifier is disabled and
// drops all messages.
func New(token, chatID string, opts ...Option) *Notifier {
	n := &Notifier{
		token:   token,
		chatID:  chatID,
		apiBase: defaultAPIBase,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  slog.Default().With("component", "telegram"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Enabled reports whether the notifier has both a token and a chat id.
func (n *Notifier) Enabled() bool {
	return n.token != "" && n.chatID != ""
}

// Notify posts the message to the configured chat. Failures are logged
// and swallowed; this method never alters caller behavior.
func (n *Notifier) Notify(ctx context.Context, message string) {
	if !n.Enabled() {
		return
	}

	payload, err := json.Marshal(map[string]string{
		"chat_id": n.chatID,
		"text":    message,
	})
	if err != nil {
		n.logger.Warn("failed to encode telegram payload", "err", err)
		return
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		n.logger.Warn("failed to build telegram request", "err", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("telegram delivery failed", "err", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		n.logger.Warn("telegram API error", "status", resp.StatusCode)
		return
	}

	n.logger.Debug("telegram message sent")
}
