package domain

import "context"

// ChannelRepo управляет каналами.
type ChannelRepo interface {
	// AddChannel идемпотентно регистрирует канал: повторный id игнорируется.
	AddChannel(ctx context.Context, channelID, name, description string) error
	ListChannels(ctx context.Context) ([]Channel, error)
	// GetChannel возвращает ErrNotFound, если канал не зарегистрирован.
	GetChannel(ctx context.Context, channelID string) (Channel, error)
}

// ThemeRepo управляет темами каналов.
type ThemeRepo interface {
	AddTheme(ctx context.Context, channelID, text string) (int64, error)
	// DeleteTheme возвращает false без ошибки, если тема не найдена.
	DeleteTheme(ctx context.Context, channelID string, themeID int64) (bool, error)
	ListThemes(ctx context.Context, channelID string) ([]Theme, error)
	// RandomTheme возвращает ErrNotFound, если у канала нет тем.
	RandomTheme(ctx context.Context, channelID string) (Theme, error)
}

// IdealPostRepo управляет эталонными постами каналов.
type IdealPostRepo interface {
	AddIdealPost(ctx context.Context, channelID, content string) (int64, error)
	ListIdealPosts(ctx context.Context, channelID string) ([]string, error)
}

// Generator превращает тему и примеры постов в новый текст.
type Generator interface {
	GeneratePost(ctx context.Context, theme string, idealPosts []string, extra string) (string, error)
}

// Button — кнопка inline-клавиатуры с callback-данными.
type Button struct {
	Label string
	Data  string
}

// Keyboard — строки inline-кнопок под сообщением.
type Keyboard [][]Button

// MessageRef идентифицирует отправленное сообщение для последующего удаления.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Gateway отправляет сообщения оператору и публикует посты в каналы.
type Gateway interface {
	SendMessage(chatID int64, text string, keyboard Keyboard) (MessageRef, error)
	DeleteMessage(ref MessageRef) error
	AnswerCallback(callbackID string) error
	SendDocument(chatID int64, path, caption string) error
	// PublishPost доставляет текст в канал. Нечисловой идентификатор
	// адресуется как @username, числовой (в том числе отрицательный) —
	// как внутренний chat id.
	PublishPost(channelID, text string) error
}

// ChatEvent — одно входящее событие чата: текст или нажатие кнопки.
type ChatEvent struct {
	ChatID       int64
	Text         string
	CallbackID   string
	CallbackData string
}

// IsCallback сообщает, что событие пришло от inline-кнопки.
func (e ChatEvent) IsCallback() bool { return e.CallbackID != "" }

// ErrorReporter записывает ошибку локально и пересылает уведомление
// в лог-канал оператора. Сбой пересылки только логируется.
type ErrorReporter interface {
	Report(err error, channelID, op string)
}
