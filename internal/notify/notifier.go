// Package notify delivers best-effort Telegram notifications.
package notify

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"zapisnik/internal/metrics"
)

// Sender sends Telegram messages. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier fans messages out to recipients. Delivery is best effort: a
// failed send is logged and counted, the remaining recipients still get
// their copy.
type Notifier struct {
	sender  Sender
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewNotifier creates a notifier sending at most perSecond messages per
// second. Telegram throttles bots around 30 messages per second, staying
// well under that keeps delivery reliable.
func NewNotifier(sender Sender, perSecond float64, logger zerolog.Logger) *Notifier {
	if perSecond <= 0 {
		perSecond = 10
	}
	return &Notifier{
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		logger:  logger.With().Str("component", "notify").Logger(),
	}
}

// Send delivers one message to one chat.
func (n *Notifier) Send(ctx context.Context, chatID int64, msg tgbotapi.Chattable) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := n.sender.Send(msg); err != nil {
		metrics.IncNotifyFailed("user")
		n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send notification")
		return err
	}
	return nil
}

// Broadcast sends a text message to every chat ID. Failures do not stop
// the fan-out; the number of successful deliveries is returned.
func (n *Notifier) Broadcast(ctx context.Context, chatIDs []int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) int {
	delivered := 0
	for _, chatID := range chatIDs {
		if err := n.limiter.Wait(ctx); err != nil {
			n.logger.Warn().Err(err).Msg("broadcast interrupted")
			return delivered
		}
		msg := tgbotapi.NewMessage(chatID, text)
		if keyboard != nil {
			msg.ReplyMarkup = *keyboard
		}
		if _, err := n.sender.Send(msg); err != nil {
			metrics.IncNotifyFailed("admin")
			n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to notify admin")
			continue
		}
		delivered++
	}
	return delivered
}
