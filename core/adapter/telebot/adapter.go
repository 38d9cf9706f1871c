// Package telebot binds the list widget to gopkg.in/telebot.v4 bots: it
// converts keyboards, answers callback presses and keeps the list message
// edited in place.
package telebot

import (
	"context"
	"errors"
	"strings"
	"time"

	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/pagekit/core/format"
	"github.com/m3rciful/pagekit/core/list"
	"github.com/m3rciful/pagekit/core/logger"
	"github.com/m3rciful/pagekit/core/session"
)

const ctxKey = "pagekit_ctx"

// Options tune how the adapter renders and answers.
type Options struct {
	// ParseMode is applied to outgoing messages; rendered text is escaped to
	// match. Empty sends plain text.
	ParseMode string
	// Silent acknowledges presses without surfacing the result message as
	// the callback answer toast.
	Silent bool
}

// Adapter drives one list widget over telebot contexts.
type Adapter struct {
	widget *list.Widget
	opts   Options
}

// New wraps a widget for telebot delivery.
func New(w *list.Widget, opts Options) *Adapter {
	return &Adapter{widget: w, opts: opts}
}

// Widget exposes the wrapped widget.
func (a *Adapter) Widget() *list.Widget { return a.widget }

// Compose renders the widget into message text and telebot markup, escaping
// the text for the configured parse mode.
func (a *Adapter) Compose() (string, *tele.ReplyMarkup) {
	text, markup := list.RenderTo[*tele.ReplyMarkup](a.widget, a)
	return format.ForParseMode(text, a.opts.ParseMode), markup
}

// Send renders the widget and sends it as a new message.
func (a *Adapter) Send(c tele.Context) error {
	text, markup := a.Compose()
	return c.Send(text, a.sendOptions(markup))
}

// Handle processes a callback press for the wrapped widget: the press is
// answered, the token is applied, and on a state change the originating
// message is re-rendered and edited in place.
func (a *Adapter) Handle(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	start := time.Now()
	ctx := logger.WithHandler(requestContext(c), "list.callback")

	// Telebot frames unique-routed callback data with a leading \f.
	raw := strings.TrimPrefix(cb.Data, "\f")
	handled, msg := a.widget.HandleCallback(raw)
	a.answer(c, msg)

	var err error
	if handled {
		text, markup := a.Compose()
		err = ignoreNotModified(c.Edit(text, a.sendOptions(markup)))
	}

	logSummary(ctx, "adapter.telebot", raw, handled, err, start, a.widget)
	return err
}

// HandleFor returns a callback handler that resolves the widget for the
// current chat through the session manager. Presses for chats without an
// active widget are acknowledged and dropped.
func HandleFor(mgr session.Manager, opts Options) tele.HandlerFunc {
	return func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil || c.Callback() == nil {
			return nil
		}
		err := mgr.Do(chat.ID, func(w *list.Widget) error {
			return New(w, opts).Handle(c)
		})
		if errors.Is(err, session.ErrNoWidget) {
			_ = c.Respond(&tele.CallbackResponse{})
			logger.Debug(requestContext(c), "adapter.telebot", "callback.orphaned")
			return nil
		}
		return err
	}
}

func (a *Adapter) sendOptions(markup *tele.ReplyMarkup) *tele.SendOptions {
	return &tele.SendOptions{
		ParseMode:   tele.ParseMode(a.opts.ParseMode),
		ReplyMarkup: markup,
	}
}

func (a *Adapter) answer(c tele.Context, msg string) {
	resp := &tele.CallbackResponse{}
	if !a.opts.Silent {
		resp.Text = msg
	}
	_ = c.Respond(resp)
}

// requestContext builds (and caches on the telebot context) a context with
// rid and update metadata for correlated logging.
func requestContext(c tele.Context) context.Context {
	if ctx, ok := c.Get(ctxKey).(context.Context); ok {
		return ctx
	}
	upd := c.Update()
	var chatID, userID int64
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		userID = user.ID
	}
	ctx := logger.WithRID(logger.Background(), logger.BuildRID(upd.ID, chatID, userID))
	ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
	c.Set(ctxKey, ctx)
	return ctx
}

// logSummary emits the per-press summary line shared by the adapters.
func logSummary(ctx context.Context, component, raw string, handled bool, err error, start time.Time, w *list.Widget) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "fail"
	case !handled:
		outcome = "noop"
	}
	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.String("outcome", outcome),
		slog.String("cb", logger.SanitizeLimit(raw, 64)),
		slog.Int("page", w.Page()),
		slog.Int("pages", w.TotalPages()),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
	}
	logger.Info(ctx, component, "callback.handled", attrs...)
}

// ignoreNotModified drops the Telegram error for edits that change nothing,
// which detail selections legitimately produce.
func ignoreNotModified(err error) error {
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}
