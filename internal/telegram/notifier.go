package telegram

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/barka/internal/delivery"
)

const maxTelegramMessage = 4096

// Notifier sends completed agent replies to a Telegram chat. It is
// outbound-only: the conversation itself lives with the session provider.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// New creates a Telegram notifier for the given chat.
func New(token string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &Notifier{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// Handler adapts the notifier to the delivery registry.
func (n *Notifier) Handler() delivery.Handler {
	return func(conversationKey, message string) error {
		return n.Send(message)
	}
}

// Send delivers text to the chat, splitting long replies and retrying
// without markdown when Telegram rejects the formatting.
func (n *Notifier) Send(text string) error {
	parts := splitMessage(text)
	for _, part := range parts {
		msg := tgbotapi.NewMessage(n.chatID, part)
		msg.ParseMode = "Markdown"
		if _, err := n.bot.Send(msg); err != nil {
			// Retry without markdown if it fails
			msg.ParseMode = ""
			if _, err := n.bot.Send(msg); err != nil {
				log.Printf("send message error: %v", err)
				return fmt.Errorf("send telegram message: %w", err)
			}
		}
	}
	return nil
}

func splitMessage(text string) []string {
	if len(text) <= maxTelegramMessage {
		return []string{text}
	}
	var parts []string
	for len(text) > 0 {
		end := maxTelegramMessage
		if end > len(text) {
			end = len(text)
		}
		parts = append(parts, text[:end])
		text = text[end:]
	}
	return parts
}
