// Package notify pushes alerts to operator channels. Telegram is the
// only channel; a nil notifier disables delivery entirely.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"conti/internal/core"
)

// TelegramNotifier sends alert events to one chat. Messages are plain
// text; alert titles may carry user input, so no parse mode is set.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier connects the bot. An empty token returns
// (nil, nil): the notifier is optional and a nil receiver is safe.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	if chatID == 0 {
		return nil, errors.New("telegram chat id is not set")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	slog.Info("Telegram notifier connected", "bot", bot.Self.UserName)
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// NotifyAlert forwards one alert to the chat.
func (n *TelegramNotifier) NotifyAlert(ctx context.Context, alert core.Alert) error {
	if n == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, AlertText(alert))
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// AlertText renders the chat message for an alert.
func AlertText(alert core.Alert) string {
	icon := "ℹ️" // info
	switch alert.Severity {
	case core.SeverityCritical:
		icon = "\U0001F6A8"
	case core.SeverityWarning:
		icon = "⚠️"
	}
	return fmt.Sprintf("%s %s\n%s", icon, alert.Title, alert.Message)
}
