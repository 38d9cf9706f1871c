// Package telebotv3 is the gopkg.in/telebot.v3 counterpart of the telebot
// adapter, kept for bots that have not moved to v4 yet. It covers rendering
// and callback handling; session routing lives with the v4 adapter.
package telebotv3

import (
	"strings"
	"time"

	"log/slog"

	tele "gopkg.in/telebot.v3"

	"github.com/m3rciful/pagekit/core/format"
	"github.com/m3rciful/pagekit/core/list"
	"github.com/m3rciful/pagekit/core/logger"
)

// Options tune how the adapter renders and answers.
type Options struct {
	ParseMode string
	// Silent acknowledges presses without surfacing the result message.
	Silent bool
}

// Adapter drives one list widget over telebot v3 contexts.
type Adapter struct {
	widget *list.Widget
	opts   Options
}

// New wraps a widget for telebot v3 delivery.
func New(w *list.Widget, opts Options) *Adapter {
	return &Adapter{widget: w, opts: opts}
}

// Widget exposes the wrapped widget.
func (a *Adapter) Widget() *list.Widget { return a.widget }

// Markup converts the abstract button grid into a telebot inline keyboard.
func (a *Adapter) Markup(kb list.Keyboard) *tele.ReplyMarkup {
	rows := make([][]tele.InlineButton, len(kb))
	for i, row := range kb {
		buttons := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			buttons[j] = tele.InlineButton{Text: btn.Text, Data: btn.Data}
		}
		rows[i] = buttons
	}
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}

// Compose renders the widget into message text and markup.
func (a *Adapter) Compose() (string, *tele.ReplyMarkup) {
	text, markup := list.RenderTo[*tele.ReplyMarkup](a.widget, a)
	return format.ForParseMode(text, a.opts.ParseMode), markup
}

// Send renders the widget and sends it as a new message.
func (a *Adapter) Send(c tele.Context) error {
	text, markup := a.Compose()
	return c.Send(text, a.sendOptions(markup))
}

// Handle processes a callback press and edits the message on state changes.
func (a *Adapter) Handle(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	start := time.Now()
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
	ctx = logger.WithHandler(ctx, "list.callback")

	raw := strings.TrimPrefix(cb.Data, "\f")
	handled, msg := a.widget.HandleCallback(raw)

	resp := &tele.CallbackResponse{}
	if !a.opts.Silent {
		resp.Text = msg
	}
	_ = c.Respond(resp)

	var err error
	if handled {
		text, markup := a.Compose()
		err = c.Edit(text, a.sendOptions(markup))
		if err != nil && strings.Contains(err.Error(), "message is not modified") {
			err = nil
		}
	}

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
		slog.Int("page", a.widget.Page()),
		slog.Int("pages", a.widget.TotalPages()),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
	}
	logger.Info(ctx, "adapter.telebot.v3", "callback.handled", attrs...)
	return err
}

func (a *Adapter) sendOptions(markup *tele.ReplyMarkup) *tele.SendOptions {
	return &tele.SendOptions{
		ParseMode:   tele.ParseMode(a.opts.ParseMode),
		ReplyMarkup: markup,
	}
}
