package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/smtp"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recorder struct {
	mu   sync.Mutex
	msgs []Message
	err  error
}

func (r *recorder) Notify(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return r.err
}

func prizeMessage() Message {
	return Message{
		Kind:    KindPrizeAwarded,
		ToEmail: "alice@example.com",
		ToName:  "Alice",
		Data:    map[string]any{"earnings": 26000, "goalAmount": 25000, "prize": "iPhone"},
	}
}

func TestRender(t *testing.T) {
	msg, err := Render(prizeMessage())
	require.NoError(t, err)
	assert.Contains(t, msg.Subject, "monthly target")
	assert.Contains(t, msg.Body, "Congratulations, Alice!")
	assert.Contains(t, msg.Body, "iPhone")

	custom, err := Render(Message{Kind: KindPrizeAwarded, Subject: "custom", Body: "<p>hi</p>"})
	require.NoError(t, err)
	assert.Equal(t, "custom", custom.Subject)
	assert.Equal(t, "<p>hi</p>", custom.Body)

	_, err = Render(Message{Kind: "unknown"})
	assert.Error(t, err)
}

func TestRender_EscapesNames(t *testing.T) {
	msg, err := Render(Message{Kind: KindKYCApproved, ToName: "<script>x</script>"})
	require.NoError(t, err)
	assert.NotContains(t, msg.Body, "<script>")
}

func TestMulti_JoinsErrors(t *testing.T) {
	ok := &recorder{}
	failA := &recorder{err: errors.New("a down")}
	failB := &recorder{err: errors.New("b down")}

	err := Multi{failA, ok, failB}.Notify(context.Background(), prizeMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a down")
	assert.Contains(t, err.Error(), "b down")
	assert.Len(t, ok.msgs, 1)

	assert.NoError(t, Multi{ok}.Notify(context.Background(), prizeMessage()))
}

func TestEmailNotifier(t *testing.T) {
	var gotAddr string
	var gotTo []string
	var gotBody string
	n := NewEmailNotifier(SMTPConfig{Host: "smtp.example.com", Port: 587, User: "relay", Password: "pw", From: "noreply@example.com"})
	n.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotBody = addr, to, string(msg)
		return nil
	}

	require.NoError(t, n.Notify(context.Background(), prizeMessage()))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"alice@example.com"}, gotTo)
	assert.Contains(t, gotBody, "Content-Type: text/html; charset=utf-8")
	assert.Contains(t, gotBody, "Congratulations, Alice!")
}

func TestEmailNotifier_SkipsAndFails(t *testing.T) {
	calls := 0
	n := NewEmailNotifier(SMTPConfig{Host: "smtp.example.com", Port: 587, User: "relay"})
	n.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		calls++
		return errors.New("relay refused")
	}

	msg := prizeMessage()
	msg.ToEmail = ""
	assert.NoError(t, n.Notify(context.Background(), msg))
	assert.Zero(t, calls)

	err := n.Notify(context.Background(), prizeMessage())
	assert.ErrorContains(t, err, "relay refused")

	unconfigured := NewEmailNotifier(SMTPConfig{})
	assert.ErrorIs(t, unconfigured.Notify(context.Background(), prizeMessage()), ErrSMTPNotConfigured)
}

type fakeBot struct {
	sent []tgbotapi.Chattable
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func TestTelegramNotifier(t *testing.T) {
	bot := &fakeBot{}
	n := &TelegramNotifier{bot: bot, chatID: -100}

	require.NoError(t, n.Notify(context.Background(), prizeMessage()))
	require.Len(t, bot.sent, 1)
	out, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(-100), out.ChatID)
	assert.Contains(t, out.Text, "prize_awarded")
	assert.Contains(t, out.Text, "Alice <alice@example.com>")
	assert.Contains(t, out.Text, "• prize: iPhone")
}

type fakeWriter struct {
	msgs []kafka.Message
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaNotifier(t *testing.T) {
	w := &fakeWriter{}
	n := &KafkaNotifier{w: w, now: func() time.Time { return time.UnixMilli(1700000000000) }}

	require.NoError(t, n.Notify(context.Background(), prizeMessage()))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "prize_awarded", string(w.msgs[0].Key))

	var ev map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &ev))
	assert.Equal(t, "alice@example.com", ev["toEmail"])
	assert.Equal(t, float64(1700000000000), ev["occurredAt"])
	assert.Equal(t, "iPhone", ev["data"].(map[string]any)["prize"])
}

func TestDispatcher(t *testing.T) {
	rec := &recorder{err: errors.New("down")}
	d := NewDispatcher(rec, zap.NewNop())

	d.Dispatch(prizeMessage())
	d.Dispatch(prizeMessage())
	d.Wait()
	assert.Len(t, rec.msgs, 2)

	var nilDispatcher *Dispatcher
	assert.NotPanics(t, func() {
		nilDispatcher.Dispatch(prizeMessage())
		nilDispatcher.Wait()
	})
}

func TestAdminText_SortsData(t *testing.T) {
	text := adminText(Message{Kind: KindOrderApproved, Data: map[string]any{"orderId": "o1", "amount": 579, "buyer": "u2"}})
	assert.Equal(t, "🔔 order_approved\n• amount: 579\n• buyer: u2\n• orderId: o1", text)
}
