package telegram

import "strings"

// Telegram не принимает сообщения длиннее 4096 символов.
const messageLimit = 4096

// SplitMessage режет текст на части в пределах лимита Telegram. Граница
// части по возможности проходит по переводу строки, чтобы форматированные
// блоки не рвались посередине.
func SplitMessage(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	runes := []rune(trimmed)
	if len(runes) <= messageLimit {
		return []string{trimmed}
	}

	var parts []string
	start := 0
	for start < len(runes) {
		end := cutPoint(runes, start)
		if chunk := strings.Trim(string(runes[start:end]), "\n"); chunk != "" {
			parts = append(parts, chunk)
		}
		start = end
		for start < len(runes) && runes[start] == '\n' {
			start++
		}
	}

	if len(parts) == 0 {
		return []string{trimmed}
	}
	return parts
}

// cutPoint возвращает границу очередной части: последний перевод строки
// внутри окна лимита, без него — жёсткий срез ровно по лимиту.
func cutPoint(runes []rune, start int) int {
	end := start + messageLimit
	if end >= len(runes) {
		return len(runes)
	}
	for i := end; i > start; i-- {
		if runes[i-1] == '\n' {
			return i
		}
	}
	return end
}
