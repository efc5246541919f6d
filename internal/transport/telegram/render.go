package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"forecast-bot/internal/dialog"
)

// ToEvent converts an update into a dialogue event. Updates other than
// messages and inline button presses are not supported.
func ToEvent(update tgbotapi.Update) (chatID int64, ev dialog.Event, callbackID string, ok bool) {
	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.Message == nil || q.Message.Chat == nil {
			return 0, dialog.Event{}, "", false
		}
		ev = dialog.Event{
			Kind:      dialog.EventCallback,
			Data:      q.Data,
			MessageID: q.Message.MessageID,
		}
		if q.From != nil {
			ev.UserID = q.From.ID
			ev.Username = q.From.UserName
		}
		return q.Message.Chat.ID, ev, q.ID, true

	case update.Message != nil && update.Message.Chat != nil:
		m := update.Message
		ev = dialog.Event{Kind: dialog.EventText, Text: m.Text, MessageID: m.MessageID}
		if m.IsCommand() {
			ev.Kind = dialog.EventCommand
			ev.Text = m.Command()
		}
		if m.From != nil {
			ev.UserID = m.From.ID
			ev.Username = m.From.UserName
		}
		return m.Chat.ID, ev, "", true
	}
	return 0, dialog.Event{}, "", false
}

// Render turns one reply message into the request that sends or edits it.
func Render(chatID int64, msg dialog.Message) tgbotapi.Chattable {
	if msg.EditMessageID != 0 {
		edit := tgbotapi.NewEditMessageText(chatID, msg.EditMessageID, msg.Text)
		if len(msg.Inline) > 0 {
			markup := inlineMarkup(msg.Inline)
			edit.ReplyMarkup = &markup
		}
		return edit
	}

	if msg.Document != nil {
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: msg.Document.Name, Bytes: msg.Document.Content})
		doc.Caption = msg.Text
		doc.ReplyMarkup = replyMarkup(msg)
		return doc
	}

	out := tgbotapi.NewMessage(chatID, msg.Text)
	out.ReplyMarkup = replyMarkup(msg)
	return out
}

func replyMarkup(msg dialog.Message) interface{} {
	switch {
	case len(msg.Inline) > 0:
		return inlineMarkup(msg.Inline)
	case msg.RemoveKeyboard:
		return tgbotapi.NewRemoveKeyboard(false)
	case len(msg.Keyboard) > 0:
		rows := make([][]tgbotapi.KeyboardButton, 0, len(msg.Keyboard))
		for _, row := range msg.Keyboard {
			buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
			for _, label := range row {
				buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
			}
			rows = append(rows, tgbotapi.NewKeyboardButtonRow(buttons...))
		}
		kb := tgbotapi.NewReplyKeyboard(rows...)
		kb.ResizeKeyboard = true
		return kb
	}
	return nil
}

func inlineMarkup(rows [][]dialog.Button) tgbotapi.InlineKeyboardMarkup {
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		out = append(out, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...)
}

// Answer acknowledges a callback query, optionally with a toast or alert.
func Answer(callbackID string, notice *dialog.Notice) tgbotapi.CallbackConfig {
	switch {
	case notice == nil:
		return tgbotapi.NewCallback(callbackID, "")
	case notice.Alert:
		return tgbotapi.NewCallbackWithAlert(callbackID, notice.Text)
	}
	return tgbotapi.NewCallback(callbackID, notice.Text)
}
