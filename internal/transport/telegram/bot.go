// internal/transport/telegram/bot.go
package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	commonhttp "forecast-bot/internal/common/http"
	"forecast-bot/internal/common/logger"
	"forecast-bot/internal/dialog"
)

const (
	statusOK      = "ok"
	statusError   = "error"
	statusIgnored = "ignored"
)

// Handler answers one conversation event.
type Handler interface {
	Handle(ctx context.Context, chatID int64, ev dialog.Event) (dialog.Reply, error)
}

// Recorder counts processed updates.
type Recorder interface {
	RecordUpdate(ctx context.Context, kind, status string, duration time.Duration)
}

// API is the part of the bot API replies are delivered through.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Config struct {
	Token       string
	PollTimeout int
	Debug       bool
}

// Bot long-polls the Bot API. Updates of one chat are processed in the order
// they arrive; different chats proceed in parallel.
type Bot struct {
	api      *tgbotapi.BotAPI
	sender   API
	handler  Handler
	recorder Recorder
	config   *Config
	logger   logger.Logger
	queue    *chatQueue
}

// New authenticates against the Bot API through client.
func New(cfg *Config, client *commonhttp.Client, handler Handler, recorder Recorder, log logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, err
	}
	api.Debug = cfg.Debug

	b := newBot(api, handler, recorder, cfg, log)
	b.api = api
	b.logger.Info("Authorized on chat API", map[string]interface{}{
		"username": api.Self.UserName,
		"timeout":  client.Timeout().String(),
	})
	return b, nil
}

func newBot(sender API, handler Handler, recorder Recorder, cfg *Config, log logger.Logger) *Bot {
	return &Bot{
		sender:   sender,
		handler:  handler,
		recorder: recorder,
		config:   cfg,
		logger:   log.WithFields(map[string]interface{}{"component": "telegram-bot"}),
		queue:    newChatQueue(),
	}
}

// RegisterCommands publishes the command menu.
func (b *Bot) RegisterCommands() error {
	_, err := b.sender.Request(tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: dialog.CommandStart, Description: "Начать работу с ботом"},
		tgbotapi.BotCommand{Command: dialog.CommandCancel, Description: "Отменить текущее действие"},
	))
	return err
}

// Run polls for updates until ctx is cancelled, then waits for in-flight
// updates to finish.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.config.PollTimeout
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Polling for updates", map[string]interface{}{"timeout": u.Timeout})
	b.serve(ctx, updates, b.api.StopReceivingUpdates)
}

// serve feeds updates into the per-chat queue until ctx is cancelled or
// updates is closed. stop is called on cancellation.
func (b *Bot) serve(ctx context.Context, updates <-chan tgbotapi.Update, stop func()) {
	for {
		select {
		case <-ctx.Done():
			stop()
			b.queue.Wait()
			b.logger.Info("Stopped polling", nil)
			return
		case update, ok := <-updates:
			if !ok {
				b.queue.Wait()
				return
			}
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	chatID, _, _, ok := ToEvent(update)
	if !ok {
		b.Process(ctx, update)
		return
	}
	b.queue.Submit(chatID, func() {
		b.Process(ctx, update)
	})
}

// Process handles a single update end to end.
func (b *Bot) Process(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	chatID, ev, callbackID, ok := ToEvent(update)
	if !ok {
		b.record(ctx, "unsupported", statusIgnored, start)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Panic while handling update", map[string]interface{}{
				"chat_id": chatID,
				"panic":   r,
			})
			b.record(ctx, ev.Kind.String(), statusError, start)
		}
	}()

	status := statusOK
	reply, err := b.handler.Handle(ctx, chatID, ev)
	if err != nil {
		status = statusError
		b.logger.Error("Update handling failed", map[string]interface{}{
			"chat_id": chatID,
			"kind":    ev.Kind.String(),
			"error":   err.Error(),
		})
	}
	if reply.IsSilent() && ev.Kind != dialog.EventCallback {
		status = statusIgnored
	}

	if err := b.deliver(chatID, callbackID, reply); err != nil {
		status = statusError
		b.logger.Error("Reply delivery failed", map[string]interface{}{
			"chat_id": chatID,
			"error":   err.Error(),
		})
	}
	b.record(ctx, ev.Kind.String(), status, start)
}

func (b *Bot) record(ctx context.Context, kind, status string, start time.Time) {
	if b.recorder != nil {
		b.recorder.RecordUpdate(ctx, kind, status, time.Since(start))
	}
}

// deliver performs a reply in order. Callback queries are always answered
// so the client stops its spinner.
func (b *Bot) deliver(chatID int64, callbackID string, reply dialog.Reply) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if reply.DeleteMessageID != 0 {
		_, err := b.sender.Request(tgbotapi.NewDeleteMessage(chatID, reply.DeleteMessageID))
		keep(err)
	}
	for _, msg := range reply.Messages {
		c := Render(chatID, msg)
		if _, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			_, err := b.sender.Request(c)
			keep(err)
			continue
		}
		_, err := b.sender.Send(c)
		keep(err)
	}
	if callbackID != "" {
		_, err := b.sender.Request(Answer(callbackID, reply.Notice))
		keep(err)
	}
	return firstErr
}
