package notifier

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// TelegramNotifier sends messages to one chat via the Telegram Bot API.
type TelegramNotifier struct {
	Bot        *tgbotapi.BotAPI
	ChatID     int64
	MaxRetries int
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) (*TelegramNotifier, error) {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	client := &http.Client{Timeout: 45 * time.Second, Transport: transport}
	return NewTelegramNotifierWithEndpoint(botToken, chatID, tgbotapi.APIEndpoint, client)
}

// NewTelegramNotifierWithEndpoint creates a notifier against a custom Bot API
// endpoint format (see tgbotapi.APIEndpoint).
func NewTelegramNotifierWithEndpoint(botToken, chatID, endpoint string, client *http.Client) (*TelegramNotifier, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse chat id %q: %w", chatID, err)
	}
	bot, err := tgbotapi.NewBotAPIWithClient(botToken, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	log.Info().Str("username", bot.Self.UserName).Msg("authorized on Telegram")
	return &TelegramNotifier{Bot: bot, ChatID: id, MaxRetries: 3}, nil
}

func (t *TelegramNotifier) Name() string { return "telegram" }

// Send sends an HTML message to the configured chat.
func (t *TelegramNotifier) Send(text string) error {
	return t.sendTo(t.ChatID, text)
}

func (t *TelegramNotifier) sendTo(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.Bot.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := t.Send(text)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Int("max", maxRetries+1).Msg("telegram send failed")
		}
		return err
	}
	strategy := backoff.WithMaxRetries(backoff.WithContext(backoff.NewExponentialBackOff(), ctx), uint64(maxRetries))
	if err := backoff.Retry(operation, strategy); err != nil {
		return fmt.Errorf("telegram: %d attempts failed: %w", attempt, err)
	}
	return nil
}

// Notify implements Sink.
func (t *TelegramNotifier) Notify(ctx context.Context, msg Message) error {
	text := fmt.Sprintf("🚨 <b>%s</b>\n%s", html.EscapeString(msg.Subject), html.EscapeString(msg.Body))
	return t.SendWithRetry(ctx, text, t.MaxRetries)
}
