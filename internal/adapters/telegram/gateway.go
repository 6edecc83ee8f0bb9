package telegram

import (
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"tg-smm-bot/internal/domain"
	"tg-smm-bot/internal/infra/metrics"
)

// Bot реализует domain.Gateway поверх Telegram Bot API.
type Bot struct {
	api *tgbotapi.BotAPI
	log zerolog.Logger
}

var _ domain.Gateway = (*Bot)(nil)

// NewBot создаёт шлюз сообщений.
func NewBot(api *tgbotapi.BotAPI, log zerolog.Logger) *Bot {
	return &Bot{api: api, log: log}
}

// SendMessage отправляет текст оператору, при необходимости частями.
// Клавиатура прикрепляется к первой части; возвращается ссылка на последнюю.
func (b *Bot) SendMessage(chatID int64, text string, keyboard domain.Keyboard) (domain.MessageRef, error) {
	var ref domain.MessageRef
	parts := SplitMessage(text)
	for i, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		if i == 0 && keyboard != nil {
			markup := inlineMarkup(keyboard)
			msg.ReplyMarkup = &markup
		}
		start := time.Now()
		sent, err := b.api.Send(msg)
		metrics.ObserveNetworkRequest("telegram_bot", "send_message", strconv.FormatInt(chatID, 10), start, err)
		if err != nil {
			return domain.MessageRef{}, err
		}
		ref = domain.MessageRef{ChatID: chatID, MessageID: sent.MessageID}
	}
	return ref, nil
}

// DeleteMessage удаляет ранее отправленное сообщение.
func (b *Bot) DeleteMessage(ref domain.MessageRef) error {
	start := time.Now()
	_, err := b.api.Request(tgbotapi.NewDeleteMessage(ref.ChatID, ref.MessageID))
	metrics.ObserveNetworkRequest("telegram_bot", "delete_message", strconv.FormatInt(ref.ChatID, 10), start, err)
	return err
}

// AnswerCallback подтверждает нажатие inline-кнопки.
func (b *Bot) AnswerCallback(callbackID string) error {
	start := time.Now()
	_, err := b.api.Request(tgbotapi.NewCallback(callbackID, ""))
	metrics.ObserveNetworkRequest("telegram_bot", "answer_callback", "callback", start, err)
	return err
}

// SendDocument отправляет файл оператору.
func (b *Bot) SendDocument(chatID int64, path, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	start := time.Now()
	_, err := b.api.Send(doc)
	metrics.ObserveNetworkRequest("telegram_bot", "send_document", strconv.FormatInt(chatID, 10), start, err)
	return err
}

// PublishPost доставляет текст в канал с Markdown-разметкой.
func (b *Bot) PublishPost(channelID, text string) error {
	var msg tgbotapi.MessageConfig
	if numericID, ok := numericChatID(channelID); ok {
		msg = tgbotapi.NewMessage(numericID, text)
	} else {
		msg = tgbotapi.NewMessageToChannel(DeliveryAddress(channelID), text)
	}
	msg.ParseMode = tgbotapi.ModeMarkdown
	start := time.Now()
	_, err := b.api.Send(msg)
	metrics.ObserveNetworkRequest("telegram_bot", "publish_post", channelID, start, err)
	return err
}

// DeliveryAddress возвращает адрес доставки для канала: @ добавляется
// только к нечисловым идентификаторам.
func DeliveryAddress(channelID string) string {
	if _, ok := numericChatID(channelID); ok {
		return channelID
	}
	return "@" + channelID
}

func numericChatID(channelID string) (int64, bool) {
	id, err := strconv.ParseInt(channelID, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// EventFromUpdate переводит апдейт Bot API во входящее событие чата.
// Неподдерживаемые апдейты дают нулевое событие с ChatID == 0.
func EventFromUpdate(upd tgbotapi.Update) domain.ChatEvent {
	switch {
	case upd.Message != nil:
		return domain.ChatEvent{
			ChatID: upd.Message.Chat.ID,
			Text:   upd.Message.Text,
		}
	case upd.CallbackQuery != nil && upd.CallbackQuery.Message != nil:
		return domain.ChatEvent{
			ChatID:       upd.CallbackQuery.Message.Chat.ID,
			CallbackID:   upd.CallbackQuery.ID,
			CallbackData: upd.CallbackQuery.Data,
		}
	default:
		return domain.ChatEvent{}
	}
}

func inlineMarkup(keyboard domain.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
