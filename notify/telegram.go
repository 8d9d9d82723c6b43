package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier mirrors every message to the admin chat.
type TelegramNotifier struct {
	bot    botSender
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (t *TelegramNotifier) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out := tgbotapi.NewMessage(t.chatID, adminText(msg))
	if _, err := t.bot.Send(out); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func adminText(msg Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔔 %s", msg.Kind)
	if msg.ToName != "" || msg.ToEmail != "" {
		fmt.Fprintf(&b, "\n👤 %s <%s>", msg.ToName, msg.ToEmail)
	}
	for _, k := range sortedKeys(msg.Data) {
		fmt.Fprintf(&b, "\n• %s: %v", k, msg.Data[k])
	}
	return b.String()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
