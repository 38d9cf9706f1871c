package telebot

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/pagekit/core/list"
)

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
