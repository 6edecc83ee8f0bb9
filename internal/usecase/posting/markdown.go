package posting

import "strings"

// CleanMarkdownFences убирает обрамляющий code fence (```markdown … ```),
// которым провайдер иногда оборачивает ответ. Текст без fence возвращается
// без изменений: канал не должен видеть сырую разметку ограждения.
func CleanMarkdownFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return text
	}
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		trimmed = trimmed[idx+1:]
	} else {
		trimmed = strings.TrimPrefix(trimmed, "```")
	}
	trimmed = strings.TrimSpace(trimmed)
	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "```"))
	}
	return trimmed
}
