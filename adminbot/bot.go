// Package adminbot is a Telegram bot for the admin chat. It answers
// leaderboard and achiever queries and awards monthly prizes from inline
// buttons.
package adminbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/SaugatGautam100/courseplex-sub001/ledger"
	"github.com/SaugatGautam100/courseplex-sub001/rewards"
	"github.com/SaugatGautam100/courseplex-sub001/store"
)

const awardPrefix = "award_"

type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Bot struct {
	api         botAPI
	st          store.Store
	opts        ledger.Options
	rewards     *rewards.Service
	adminChatID int64
	log         *zap.Logger
	now         func() time.Time
}

func New(token string, adminChatID int64, st store.Store, opts ledger.Options, rw *rewards.Service, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	log = log.With(zap.String("component", "adminbot"))
	log.Info("🤖 bot started", zap.String("username", api.Self.UserName))
	return &Bot{api: api, st: st, opts: opts, rewards: rw, adminChatID: adminChatID, log: log, now: time.Now}, nil
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handle(ctx, update)
		}
	}
}

func (b *Bot) handle(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	if m.Chat == nil {
		return
	}
	if m.Chat.ID != b.adminChatID {
		b.send(tgbotapi.NewMessage(m.Chat.ID, "⛔ This bot only answers the admin chat."))
		return
	}

	switch m.Command() {
	case "start", "help":
		b.send(tgbotapi.NewMessage(m.Chat.ID, helpText))
	case "leaderboard":
		b.send(tgbotapi.NewMessage(m.Chat.ID, b.leaderboardReply(ctx, m.CommandArguments())))
	case "achievers":
		b.send(b.achieversReply(ctx, m.Chat.ID))
	case "target":
		target, err := b.rewards.Target(ctx)
		if err != nil {
			b.send(tgbotapi.NewMessage(m.Chat.ID, "❌ "+err.Error()))
			return
		}
		b.send(tgbotapi.NewMessage(m.Chat.ID, fmt.Sprintf("🎯 Goal: %.0f\n🎁 Prize: %s", target.GoalAmount.Float(), target.Prize)))
	default:
		if m.IsCommand() {
			b.send(tgbotapi.NewMessage(m.Chat.ID, "🤷 Unknown command. Try /help"))
		}
	}
}

const helpText = "👋 Courseplex admin bot\n\n" +
	"/leaderboard [daily|weekly|monthly|lifetime] – top referrers\n" +
	"/achievers – users past this month's target\n" +
	"/target – current monthly target"

func (b *Bot) leaderboardReply(ctx context.Context, arg string) string {
	window := ledger.Window(strings.ToLower(strings.TrimSpace(arg)))
	if window == "" {
		window = ledger.Monthly
	}

	in, err := ledger.LoadInputs(ctx, b.st)
	if err != nil {
		b.log.Error("❌ leaderboard read failed", zap.Error(err))
		return "❌ Could not read the ledger"
	}
	boards := in.Leaderboards(b.now(), b.opts)

	var entries []ledger.Entry
	switch window {
	case ledger.Daily:
		entries = boards.Daily
	case ledger.Weekly:
		entries = boards.Weekly
	case ledger.Monthly:
		entries = boards.Monthly
	case ledger.Lifetime:
		entries = boards.Lifetime
	default:
		return "🤷 Unknown window. Use daily, weekly, monthly or lifetime."
	}
	return formatBoard(window, entries)
}

func formatBoard(window ledger.Window, entries []ledger.Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏆 %s leaderboard", window)
	if len(entries) == 0 {
		sb.WriteString("\n\nNo earnings yet.")
		return sb.String()
	}
	sb.WriteString("\n")
	for i, e := range entries {
		fmt.Fprintf(&sb, "\n%d. %s – %.2f", i+1, e.Name, e.Earnings)
	}
	return sb.String()
}

func (b *Bot) achieversReply(ctx context.Context, chatID int64) tgbotapi.MessageConfig {
	achievers, target, err := b.rewards.Achievers(ctx, b.now())
	if err != nil {
		b.log.Error("❌ achievers read failed", zap.Error(err))
		return tgbotapi.NewMessage(chatID, "❌ Could not read achievers")
	}
	if len(achievers) == 0 {
		return tgbotapi.NewMessage(chatID, fmt.Sprintf("Nobody has reached %.0f this month yet.", target.GoalAmount.Float()))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🎯 Target %.0f – 🎁 %s\n", target.GoalAmount.Float(), target.Prize)
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, a := range achievers {
		mark := "⏳"
		if a.PrizeGiven {
			mark = "✅"
		}
		fmt.Fprintf(&sb, "\n%s %s – %.2f", mark, a.Name, a.Earnings)
		if !a.PrizeGiven {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🎁 Award "+a.Name, awardPrefix+a.UserID),
			))
		}
	}
	msg := tgbotapi.NewMessage(chatID, sb.String())
	if len(rows) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	return msg
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.log.Warn("callback ack failed", zap.Error(err))
	}
	if q.Message == nil || q.Message.Chat == nil || q.Message.Chat.ID != b.adminChatID {
		return
	}
	chatID := q.Message.Chat.ID

	if !strings.HasPrefix(q.Data, awardPrefix) {
		b.log.Warn("⚠️ unknown button", zap.String("data", q.Data))
		return
	}
	uid := strings.TrimPrefix(q.Data, awardPrefix)
	rec, err := b.rewards.Award(ctx, uid, b.now())
	switch {
	case err == nil:
		b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("✅ %s awarded to %s", rec.Prize, rec.UserName)))
	case errors.Is(err, rewards.ErrAlreadyAwarded):
		b.send(tgbotapi.NewMessage(chatID, "ℹ️ Prize already awarded this month"))
	case errors.Is(err, rewards.ErrNotAchiever):
		b.send(tgbotapi.NewMessage(chatID, "⚠️ User is below the monthly target"))
	default:
		b.log.Error("❌ award from bot failed", zap.String("user_id", uid), zap.Error(err))
		b.send(tgbotapi.NewMessage(chatID, "❌ Award failed"))
	}
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.log.Warn("telegram send failed", zap.Error(err))
	}
}
