package domain

import "time"

// Channel описывает канал-получатель публикаций.
// ChannelID хранится нормализованным: без ведущего @.
type Channel struct {
	ChannelID   string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Theme — тема, поставленная в очередь на генерацию для канала.
// Тема расходуется (удаляется) после успешной плановой публикации.
type Theme struct {
	ID        int64
	ChannelID string
	Text      string
	CreatedAt time.Time
}

// SessionAction определяет, какой шаг диалога ожидает ввод оператора.
type SessionAction string

const (
	ActionNone                SessionAction = ""
	ActionAddingChannelID     SessionAction = "adding_channel_id"
	ActionAddingChannelName   SessionAction = "adding_channel_name"
	ActionAddingTheme         SessionAction = "adding_theme"
	ActionAddingIdealPost     SessionAction = "adding_ideal_post"
	ActionAwaitingPrompt      SessionAction = "awaiting_generation_prompt"
	ActionAwaitingManualTheme SessionAction = "awaiting_manual_post_theme"
)

// Session хранит состояние незавершённого диалога для одного чата.
// Одновременно у чата есть не более одной сессии; новый вход в любой
// поток молча заменяет предыдущую.
type Session struct {
	ChatID    int64
	Action    SessionAction
	ChannelID string
	ThemeID   int64
	ThemeText string
}
