package bot

import (
	"fmt"

	"tg-smm-bot/internal/domain"
)

// mainMenuKeyboard — главное меню бота под приветственным сообщением.
func mainMenuKeyboard() domain.Keyboard {
	return domain.Keyboard{
		{
			{Label: "➕ Добавить канал", Data: Encode(ActionMenuAddChannel, "", 0)},
			{Label: "📋 Список каналов", Data: Encode(ActionMenuListChannels, "", 0)},
		},
		{
			{Label: "💡 Добавить тему", Data: Encode(ActionMenuAddTheme, "", 0)},
			{Label: "🗑 Удалить тему", Data: Encode(ActionMenuDeleteTheme, "", 0)},
		},
		{
			{Label: "📝 Список тем", Data: Encode(ActionMenuListThemes, "", 0)},
			{Label: "⭐ Эталонные посты", Data: Encode(ActionMenuListIdealPosts, "", 0)},
		},
		{
			{Label: "✨ Добавить эталонный пост", Data: Encode(ActionMenuAddIdealPost, "", 0)},
		},
		{
			{Label: "🚀 Сгенерировать пост", Data: Encode(ActionMenuGeneratePost, "", 0)},
			{Label: "✍️ Пост по своей теме", Data: Encode(ActionMenuManualPost, "", 0)},
		},
		{
			{Label: "ℹ️ Помощь", Data: Encode(ActionMenuHelp, "", 0)},
		},
	}
}

// channelsKeyboard строит список каналов кнопками, по одной на строку.
// Нажатие кодирует указанное действие с id канала.
func channelsKeyboard(channels []domain.Channel, action CallbackAction) domain.Keyboard {
	kb := make(domain.Keyboard, 0, len(channels))
	for _, ch := range channels {
		label := ch.Name
		if label == "" {
			label = ch.ChannelID
		}
		kb = append(kb, []domain.Button{{
			Label: label,
			Data:  Encode(action, ch.ChannelID, 0),
		}})
	}
	return kb
}

// themesKeyboard строит список тем канала кнопками, по одной на строку.
func themesKeyboard(themes []domain.Theme, action CallbackAction) domain.Keyboard {
	kb := make(domain.Keyboard, 0, len(themes))
	for _, th := range themes {
		kb = append(kb, []domain.Button{{
			Label: fmt.Sprintf("%d. %s", th.ID, clipLabel(th.Text)),
			Data:  Encode(action, th.ChannelID, th.ID),
		}})
	}
	return kb
}

const labelRuneLimit = 48

// clipLabel укорачивает текст темы до размера, пригодного для кнопки.
func clipLabel(text string) string {
	runes := []rune(text)
	if len(runes) <= labelRuneLimit {
		return text
	}
	return string(runes[:labelRuneLimit]) + "…"
}
