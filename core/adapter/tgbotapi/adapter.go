// Package tgbotapi binds the list widget to the go-telegram-bot-api SDK.
// Unlike the telebot adapters there is no routing context here: the caller
// owns the update loop and hands callback updates to HandleUpdate.
package tgbotapi

import (
	"strings"
	"time"

	"log/slog"

	botapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/m3rciful/pagekit/core/format"
	"github.com/m3rciful/pagekit/core/list"
	"github.com/m3rciful/pagekit/core/logger"
)

// Sender is the slice of *botapi.BotAPI the adapter needs.
type Sender interface {
	Send(c botapi.Chattable) (botapi.Message, error)
	Request(c botapi.Chattable) (*botapi.APIResponse, error)
}

// Options tune how the adapter renders and answers.
type Options struct {
	ParseMode string
	// Silent acknowledges presses without surfacing the result message
	// as the callback answer toast.
	Silent bool
}

// Adapter drives one list widget through a bot API client.
type Adapter struct {
	widget *list.Widget
	bot    Sender
	opts   Options
}

// New wraps a widget for delivery through bot.
func New(w *list.Widget, bot Sender, opts Options) *Adapter {
	return &Adapter{widget: w, bot: bot, opts: opts}
}

// Widget exposes the wrapped widget.
func (a *Adapter) Widget() *list.Widget { return a.widget }

// Markup converts the abstract button grid into an inline keyboard markup.
func (a *Adapter) Markup(kb list.Keyboard) botapi.InlineKeyboardMarkup {
	// An empty keyboard must still marshal as [], not null.
	rows := make([][]botapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]botapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, botapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
		}
		rows = append(rows, buttons)
	}
	return botapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// MessageConfig renders the widget into a ready-to-send message for chatID.
func (a *Adapter) MessageConfig(chatID int64) botapi.MessageConfig {
	text, markup := list.RenderTo[botapi.InlineKeyboardMarkup](a.widget, a)
	msg := botapi.NewMessage(chatID, format.ForParseMode(text, a.opts.ParseMode))
	msg.ParseMode = a.opts.ParseMode
	msg.ReplyMarkup = markup
	return msg
}

// Send renders the widget and sends it as a new message to chatID.
func (a *Adapter) Send(chatID int64) error {
	_, err := a.bot.Send(a.MessageConfig(chatID))
	return err
}

// HandleUpdate consumes a callback update: the press is answered, the token
// applied, and on a state change the originating message is edited in place.
// It reports whether the update carried a callback query, so callers can
// route other updates elsewhere.
func (a *Adapter) HandleUpdate(upd botapi.Update) (bool, error) {
	cq := upd.CallbackQuery
	if cq == nil {
		return false, nil
	}
	start := time.Now()

	var chatID, userID int64
	var messageID int
	if cq.Message != nil {
		messageID = cq.Message.MessageID
		if cq.Message.Chat != nil {
			chatID = cq.Message.Chat.ID
		}
	}
	if cq.From != nil {
		userID = cq.From.ID
	}
	ctx := logger.WithRID(logger.Background(), logger.BuildRID(upd.UpdateID, chatID, userID))
	ctx = logger.WithUpdateMeta(ctx, upd.UpdateID, userID, chatID)
	ctx = logger.WithHandler(ctx, "list.callback")

	handled, msg := a.widget.HandleCallback(cq.Data)

	answerText := msg
	if a.opts.Silent {
		answerText = ""
	}
	if _, err := a.bot.Request(botapi.NewCallback(cq.ID, answerText)); err != nil {
		logger.Warn(ctx, "adapter.tgbotapi", "callback.answer_failed",
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
	}

	var err error
	if handled && cq.Message != nil {
		text, markup := list.RenderTo[botapi.InlineKeyboardMarkup](a.widget, a)
		edit := botapi.NewEditMessageTextAndMarkup(chatID, messageID, format.ForParseMode(text, a.opts.ParseMode), markup)
		edit.ParseMode = a.opts.ParseMode
		if _, editErr := a.bot.Request(edit); editErr != nil &&
			!strings.Contains(editErr.Error(), "message is not modified") {
			err = editErr
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
		slog.String("cb", logger.SanitizeLimit(cq.Data, 64)),
		slog.Int("page", a.widget.Page()),
		slog.Int("pages", a.widget.TotalPages()),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
	}
	logger.Info(ctx, "adapter.tgbotapi", "callback.handled", attrs...)
	return true, err
}
