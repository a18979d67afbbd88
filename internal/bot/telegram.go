package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Responder answers one message; *answer.Answerer satisfies it. It is total: the
// returned string is always a plain integer.
type Responder interface {
	Answer(ctx context.Context, text string) string
}

const pollTimeoutSeconds = 30

// Bot runs the Telegram long-polling loop. Each update is handled as an
// independent request; the core pipeline holds no cross-request state, so updates
// are processed concurrently without locking.
type Bot struct {
	api       *tgbotapi.BotAPI
	responder Responder
	log       *slog.Logger
}

// New authenticates against the Telegram API.
func New(token string, responder Responder, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{api: api, responder: responder, log: log}, nil
}

// Run polls for updates until the context is cancelled, waiting for in-flight
// handlers before returning.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info("telegram bot started", "username", b.api.Self.UserName)

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeoutSeconds
	updates := b.api.GetUpdatesChan(cfg)

	var wg sync.WaitGroup
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			wg.Wait()
			b.log.Info("telegram bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				wg.Wait()
				return nil
			}
			msg := update.Message
			if msg == nil {
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.handle(ctx, msg)
			}()
		}
	}
}

func (b *Bot) handle(ctx context.Context, msg *tgbotapi.Message) {
	start := time.Now()

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	reply := b.responder.Answer(ctx, text)

	out := tgbotapi.NewMessage(msg.Chat.ID, reply)
	if _, err := b.api.Send(out); err != nil {
		b.log.Error("failed to send reply", "chat", msg.Chat.ID, "error", err)
		return
	}
	b.log.Debug("reply sent", "chat", msg.Chat.ID, "latency", time.Since(start))
}
