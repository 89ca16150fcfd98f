package notifier

import (
	"context"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// CommandHandler is called when a user command is received.
type CommandHandler func(command string) string

// StartPolling begins long-polling for Telegram commands from the configured
// chat. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := t.Bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			t.Bot.StopReceivingUpdates()
			log.Info().Msg("Telegram polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			if update.Message.Chat.ID != t.ChatID {
				log.Warn().Int64("chat_id", update.Message.Chat.ID).Msg("ignoring command from unknown chat")
				continue
			}
			text := strings.TrimSpace(update.Message.Text)
			log.Info().Str("command", text).Msg("received command")
			if reply := handler(text); reply != "" {
				if err := t.sendTo(update.Message.Chat.ID, html.EscapeString(reply)); err != nil {
					log.Error().Err(err).Msg("send reply")
				}
			}
		}
	}
}
