// Package tgui is a small builder for Telegram inline keyboards.
package tgui

import (
	tele "gopkg.in/telebot.v4"
)

// Inline stores rows as tele.Row and applies them via ReplyMarkup.Inline().
type Inline struct {
	rm   *tele.ReplyMarkup
	rows []tele.Row
}

func NewInline() *Inline {
	return &Inline{rm: &tele.ReplyMarkup{}}
}

// Row appends a new row of buttons to the inline keyboard.
func (i *Inline) Row(btn ...tele.Btn) *Inline {
	i.rows = append(i.rows, i.rm.Row(btn...))
	i.rm.Inline(i.rows...)
	return i
}

// Markup returns the underlying reply markup.
func (i *Inline) Markup() *tele.ReplyMarkup { return i.rm }

// Btn creates a callback button with raw callback_data (not encoded).
func Btn(text, data string) tele.Btn {
	return tele.Btn{Text: text, Data: data}
}
