package bot

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"tg-smm-bot/internal/adapters/telegram"
	"tg-smm-bot/internal/domain"
	"tg-smm-bot/internal/usecase/channels"
	"tg-smm-bot/internal/usecase/posting"
)

const (
	denyText      = "У вас нет доступа к этому боту."
	skipToken     = "-"
	indicatorText = "⏳ Генерирую пост..."
)

// Handler реализует диалог оператора: команды, inline-кнопки и пошаговые
// сессии ввода. Все события одного чата обрабатываются последовательно.
type Handler struct {
	gw       domain.Gateway
	channels *channels.Service
	posting  *posting.Service
	themes   domain.ThemeRepo
	ideals   domain.IdealPostRepo
	reporter domain.ErrorReporter
	sessions *SessionStore
	allowed  map[int64]struct{}
	log      zerolog.Logger
}

// NewHandler создаёт обработчик диалога. allowedIDs — белый список
// операторов; события остальных чатов отклоняются.
func NewHandler(
	gw domain.Gateway,
	channelsSvc *channels.Service,
	postingSvc *posting.Service,
	themes domain.ThemeRepo,
	ideals domain.IdealPostRepo,
	reporter domain.ErrorReporter,
	allowedIDs []int64,
	log zerolog.Logger,
) *Handler {
	allowed := make(map[int64]struct{}, len(allowedIDs))
	for _, id := range allowedIDs {
		allowed[id] = struct{}{}
	}
	return &Handler{
		gw:       gw,
		channels: channelsSvc,
		posting:  postingSvc,
		themes:   themes,
		ideals:   ideals,
		reporter: reporter,
		sessions: NewSessionStore(),
		allowed:  allowed,
		log:      log,
	}
}

// HandleEvent обрабатывает одно входящее событие чата.
func (h *Handler) HandleEvent(ctx context.Context, ev domain.ChatEvent) {
	if ev.ChatID == 0 {
		return
	}
	if _, ok := h.allowed[ev.ChatID]; !ok {
		if ev.IsCallback() {
			_ = h.gw.AnswerCallback(ev.CallbackID)
		}
		h.log.Warn().Int64("chat_id", ev.ChatID).Msg("отклонено событие неавторизованного чата")
		h.send(ev.ChatID, denyText, nil)
		return
	}

	switch {
	case ev.IsCallback():
		h.handleCallback(ctx, ev)
	default:
		if strings.HasPrefix(ev.Text, "/") && h.handleCommand(ctx, ev.ChatID, ev.Text) {
			return
		}
		// всё остальное, включая нераспознанный текст со слэшем, —
		// свободный ввод для активной сессии; без сессии игнорируется
		if sess, ok := h.sessions.Get(ev.ChatID); ok {
			h.advanceSession(ctx, sess, ev.Text)
		}
	}
}

// handleCommand выполняет распознанную команду и сообщает, была ли она
// распознана. Нераспознанный текст со слэшем командой не считается.
func (h *Handler) handleCommand(ctx context.Context, chatID int64, text string) bool {
	cmd := strings.ToLower(strings.Fields(text)[0])
	if at := strings.Index(cmd, "@"); at > 0 {
		cmd = cmd[:at]
	}

	var run func()
	switch cmd {
	case "/start":
		run = func() { h.send(chatID, welcomeText(), mainMenuKeyboard()) }
	case "/help":
		run = func() { h.send(chatID, helpText(), nil) }
	case "/addchannel":
		run = func() { h.startAddChannel(chatID) }
	case "/addtheme":
		run = func() {
			h.promptChannelChoice(ctx, chatID, ActionSelectChannelTheme, "Для какого канала добавить тему?")
		}
	case "/addidealpost":
		run = func() {
			h.promptChannelChoice(ctx, chatID, ActionSelectChannelIdeal, "Для какого канала добавить эталонный пост?")
		}
	case "/generate":
		run = func() {
			h.promptChannelChoice(ctx, chatID, ActionSelectChannelGenerate, "Для какого канала сгенерировать пост?")
		}
	case "/manualpost":
		run = func() {
			h.promptChannelChoice(ctx, chatID, ActionSelectChannelManual, "Для какого канала написать пост по своей теме?")
		}
	case "/deletetheme":
		run = func() {
			h.promptChannelChoice(ctx, chatID, ActionSelectChannelDelete, "Из какого канала удалить тему?")
		}
	case "/listchannels":
		run = func() { h.sendChannelList(ctx, chatID) }
	case "/listthemes":
		run = func() {
			h.promptChannelChoice(ctx, chatID, ActionSelectChannelThemes, "Темы какого канала показать?")
		}
	case "/listidealposts":
		run = func() {
			h.promptChannelChoice(ctx, chatID, ActionSelectChannelPosts, "Эталонные посты какого канала выгрузить?")
		}
	default:
		return false
	}

	// распознанная команда начинает новый поток, молча заменяя незавершённый
	h.sessions.Delete(chatID)
	run()
	return true
}

func (h *Handler) advanceSession(ctx context.Context, sess domain.Session, text string) {
	chatID := sess.ChatID
	text = strings.TrimSpace(text)

	switch sess.Action {
	case domain.ActionAddingChannelID:
		id, err := channels.NormalizeID(text)
		if err != nil {
			h.send(chatID, "Не удалось распознать идентификатор. Пришлите @username, ссылку t.me или числовой id канала.", nil)
			return
		}
		sess.Action = domain.ActionAddingChannelName
		sess.ChannelID = id
		h.sessions.Put(sess)
		h.send(chatID, "Введите название канала. Описание можно добавить со второй строки.", nil)

	case domain.ActionAddingChannelName:
		name, description, _ := strings.Cut(text, "\n")
		id, err := h.channels.Add(ctx, sess.ChannelID, strings.TrimSpace(name), strings.TrimSpace(description))
		if err != nil {
			h.reporter.Report(err, sess.ChannelID, "add_channel")
			h.send(chatID, "Не удалось сохранить канал. Попробуйте ещё раз.", nil)
			return
		}
		h.sessions.Delete(chatID)
		h.send(chatID, fmt.Sprintf("Канал %s добавлен.", telegram.DeliveryAddress(id)), nil)

	case domain.ActionAddingTheme:
		id, err := h.themes.AddTheme(ctx, sess.ChannelID, text)
		if err != nil {
			h.reporter.Report(err, sess.ChannelID, "add_theme")
			h.send(chatID, "Не удалось сохранить тему. Попробуйте ещё раз.", nil)
			return
		}
		h.sessions.Delete(chatID)
		h.send(chatID, fmt.Sprintf("Тема добавлена!\nID: %d\nКанал: %s", id, telegram.DeliveryAddress(sess.ChannelID)), nil)

	case domain.ActionAddingIdealPost:
		if _, err := h.ideals.AddIdealPost(ctx, sess.ChannelID, text); err != nil {
			h.reporter.Report(err, sess.ChannelID, "add_ideal_post")
			h.send(chatID, "Не удалось сохранить эталонный пост. Попробуйте ещё раз.", nil)
			return
		}
		h.sessions.Delete(chatID)
		h.send(chatID, "Эталонный пост сохранён.", nil)

	case domain.ActionAwaitingPrompt:
		extra := text
		if extra == skipToken {
			extra = ""
		}
		h.sessions.Delete(chatID)
		h.runGeneration(ctx, chatID, sess.ChannelID, sess.ThemeText, extra)

	case domain.ActionAwaitingManualTheme:
		h.sessions.Delete(chatID)
		h.runGeneration(ctx, chatID, sess.ChannelID, text, "")

	default:
		h.sessions.Delete(chatID)
	}
}

func (h *Handler) handleCallback(ctx context.Context, ev domain.ChatEvent) {
	defer func() {
		if err := h.gw.AnswerCallback(ev.CallbackID); err != nil {
			h.log.Error().Err(err).Msg("не удалось подтвердить callback")
		}
	}()

	cb, err := ParseCallback(ev.CallbackData)
	if err != nil {
		h.log.Debug().Str("data", ev.CallbackData).Msg("callback-данные не распознаны")
		return
	}
	chatID := ev.ChatID

	switch cb.Action {
	case ActionMenuAddChannel:
		h.sessions.Delete(chatID)
		h.startAddChannel(chatID)
	case ActionMenuAddTheme:
		h.sessions.Delete(chatID)
		h.promptChannelChoice(ctx, chatID, ActionSelectChannelTheme, "Для какого канала добавить тему?")
	case ActionMenuAddIdealPost:
		h.sessions.Delete(chatID)
		h.promptChannelChoice(ctx, chatID, ActionSelectChannelIdeal, "Для какого канала добавить эталонный пост?")
	case ActionMenuGeneratePost:
		h.sessions.Delete(chatID)
		h.promptChannelChoice(ctx, chatID, ActionSelectChannelGenerate, "Для какого канала сгенерировать пост?")
	case ActionMenuManualPost:
		h.sessions.Delete(chatID)
		h.promptChannelChoice(ctx, chatID, ActionSelectChannelManual, "Для какого канала написать пост по своей теме?")
	case ActionMenuDeleteTheme:
		h.sessions.Delete(chatID)
		h.promptChannelChoice(ctx, chatID, ActionSelectChannelDelete, "Из какого канала удалить тему?")
	case ActionMenuListThemes:
		h.promptChannelChoice(ctx, chatID, ActionSelectChannelThemes, "Темы какого канала показать?")
	case ActionMenuListIdealPosts:
		h.promptChannelChoice(ctx, chatID, ActionSelectChannelPosts, "Эталонные посты какого канала выгрузить?")
	case ActionMenuListChannels:
		h.sendChannelList(ctx, chatID)
	case ActionMenuHelp:
		h.send(chatID, helpText(), nil)

	case ActionSelectChannelTheme:
		h.sessions.Put(domain.Session{ChatID: chatID, Action: domain.ActionAddingTheme, ChannelID: cb.ChannelID})
		h.send(chatID, fmt.Sprintf("Пришлите текст темы для канала %s:", telegram.DeliveryAddress(cb.ChannelID)), nil)
	case ActionSelectChannelIdeal:
		h.sessions.Put(domain.Session{ChatID: chatID, Action: domain.ActionAddingIdealPost, ChannelID: cb.ChannelID})
		h.send(chatID, fmt.Sprintf("Пришлите текст эталонного поста для канала %s:", telegram.DeliveryAddress(cb.ChannelID)), nil)
	case ActionSelectChannelGenerate:
		h.promptThemeChoice(ctx, chatID, cb.ChannelID, ActionSelectThemeGenerate, "Выберите тему для генерации:")
	case ActionSelectChannelManual:
		h.startManualPost(ctx, chatID, cb.ChannelID)
	case ActionSelectChannelDelete:
		h.promptThemeChoice(ctx, chatID, cb.ChannelID, ActionDeleteTheme, "Какую тему удалить?")
	case ActionSelectChannelThemes:
		h.sendThemeList(ctx, chatID, cb.ChannelID)
	case ActionSelectChannelPosts:
		h.sendIdealPostsFile(ctx, chatID, cb.ChannelID)

	case ActionSelectThemeGenerate:
		h.startPromptedGeneration(ctx, chatID, cb.ChannelID, cb.ThemeID)
	case ActionDeleteTheme:
		h.deleteTheme(ctx, chatID, cb.ChannelID, cb.ThemeID)
	}
}

func (h *Handler) startAddChannel(chatID int64) {
	h.sessions.Put(domain.Session{ChatID: chatID, Action: domain.ActionAddingChannelID})
	h.send(chatID, "Пришлите @username или числовой id канала. Бот должен быть администратором канала.", nil)
}

// promptChannelChoice показывает зарегистрированные каналы кнопками.
// Нажатие продолжает поток, закодированный в action.
func (h *Handler) promptChannelChoice(ctx context.Context, chatID int64, action CallbackAction, prompt string) {
	list, err := h.channels.List(ctx)
	if err != nil {
		h.reporter.Report(err, "system", "list_channels")
		h.send(chatID, "Не удалось получить список каналов.", nil)
		return
	}
	if len(list) == 0 {
		h.send(chatID, "Каналы ещё не добавлены. Начните с /addchannel.", nil)
		return
	}
	h.send(chatID, prompt, channelsKeyboard(list, action))
}

func (h *Handler) promptThemeChoice(ctx context.Context, chatID int64, channelID string, action CallbackAction, prompt string) {
	themes, err := h.themes.ListThemes(ctx, channelID)
	if err != nil {
		h.reporter.Report(err, channelID, "list_themes")
		h.send(chatID, "Не удалось получить темы канала.", nil)
		return
	}
	if len(themes) == 0 {
		h.send(chatID, "У канала нет тем. Добавьте тему через /addtheme.", nil)
		return
	}
	h.send(chatID, prompt, themesKeyboard(themes, action))
}

func (h *Handler) startManualPost(ctx context.Context, chatID int64, channelID string) {
	posts, err := h.ideals.ListIdealPosts(ctx, channelID)
	if err != nil {
		h.reporter.Report(err, channelID, "list_ideal_posts")
		h.send(chatID, "Не удалось получить эталонные посты канала.", nil)
		return
	}
	if len(posts) == 0 {
		h.send(chatID, "У канала нет эталонных постов. Сначала добавьте хотя бы один через /addidealpost.", nil)
		return
	}
	h.sessions.Put(domain.Session{ChatID: chatID, Action: domain.ActionAwaitingManualTheme, ChannelID: channelID})
	h.send(chatID, "Пришлите тему будущего поста:", nil)
}

func (h *Handler) startPromptedGeneration(ctx context.Context, chatID int64, channelID string, themeID int64) {
	themes, err := h.themes.ListThemes(ctx, channelID)
	if err != nil {
		h.reporter.Report(err, channelID, "list_themes")
		h.send(chatID, "Не удалось получить темы канала.", nil)
		return
	}
	for _, th := range themes {
		if th.ID != themeID {
			continue
		}
		h.sessions.Put(domain.Session{
			ChatID:    chatID,
			Action:    domain.ActionAwaitingPrompt,
			ChannelID: channelID,
			ThemeID:   th.ID,
			ThemeText: th.Text,
		})
		h.send(chatID, "Дополнительные указания для генерации (или «-», если их нет):", nil)
		return
	}
	h.send(chatID, "Тема не найдена. Возможно, её уже использовал планировщик.", nil)
}

func (h *Handler) deleteTheme(ctx context.Context, chatID int64, channelID string, themeID int64) {
	deleted, err := h.themes.DeleteTheme(ctx, channelID, themeID)
	if err != nil {
		h.reporter.Report(err, channelID, "delete_theme")
		h.send(chatID, "Не удалось удалить тему.", nil)
		return
	}
	if deleted {
		h.send(chatID, "Тема удалена.", nil)
	} else {
		h.send(chatID, "Тема не найдена.", nil)
	}
}

// runGeneration — общий финал потоков генерации: индикатор, генерация,
// ответ оператору полным текстом и публикация в канал. Сбои генерации и
// публикации сообщаются оператору по-разному; тема здесь не расходуется.
func (h *Handler) runGeneration(ctx context.Context, chatID int64, channelID, theme, extra string) {
	indicator, indicatorErr := h.gw.SendMessage(chatID, indicatorText, nil)

	text, err := h.posting.Generate(ctx, channelID, theme, extra)

	if indicatorErr == nil {
		if err := h.gw.DeleteMessage(indicator); err != nil {
			h.log.Debug().Err(err).Msg("не удалось убрать индикатор генерации")
		}
	}

	if err != nil {
		h.reporter.Report(err, channelID, "generate_post")
		h.send(chatID, "Произошла ошибка при генерации поста.", nil)
		return
	}

	// оператор видит текст как есть, до очистки для публикации
	h.send(chatID, text, nil)

	if err := h.posting.Publish(channelID, text); err != nil {
		h.reporter.Report(err, channelID, "publish_post")
		h.send(chatID, fmt.Sprintf("Пост сгенерирован, но опубликовать его в канал %s не удалось.", telegram.DeliveryAddress(channelID)), nil)
		return
	}
	h.send(chatID, fmt.Sprintf("Пост опубликован в канал %s", telegram.DeliveryAddress(channelID)), nil)
}

func (h *Handler) sendChannelList(ctx context.Context, chatID int64) {
	list, err := h.channels.List(ctx)
	if err != nil {
		h.reporter.Report(err, "system", "list_channels")
		h.send(chatID, "Не удалось получить список каналов.", nil)
		return
	}
	if len(list) == 0 {
		h.send(chatID, "Каналы ещё не добавлены. Начните с /addchannel.", nil)
		return
	}
	var b strings.Builder
	b.WriteString("Зарегистрированные каналы:\n")
	for i, ch := range list {
		fmt.Fprintf(&b, "%d. %s — %s", i+1, telegram.DeliveryAddress(ch.ChannelID), ch.Name)
		if ch.Description != "" {
			fmt.Fprintf(&b, " (%s)", ch.Description)
		}
		b.WriteString("\n")
	}
	h.send(chatID, b.String(), nil)
}

func (h *Handler) sendThemeList(ctx context.Context, chatID int64, channelID string) {
	themes, err := h.themes.ListThemes(ctx, channelID)
	if err != nil {
		h.reporter.Report(err, channelID, "list_themes")
		h.send(chatID, "Не удалось получить темы канала.", nil)
		return
	}
	if len(themes) == 0 {
		h.send(chatID, "У канала нет тем.", nil)
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Темы канала %s:\n", telegram.DeliveryAddress(channelID))
	for _, th := range themes {
		fmt.Fprintf(&b, "%d. %s\n", th.ID, th.Text)
	}
	h.send(chatID, b.String(), nil)
}

// sendIdealPostsFile выгружает эталонные посты канала одним текстовым
// файлом: посты бывают длиннее лимита сообщения.
func (h *Handler) sendIdealPostsFile(ctx context.Context, chatID int64, channelID string) {
	posts, err := h.ideals.ListIdealPosts(ctx, channelID)
	if err != nil {
		h.reporter.Report(err, channelID, "list_ideal_posts")
		h.send(chatID, "Не удалось получить эталонные посты канала.", nil)
		return
	}
	if len(posts) == 0 {
		h.send(chatID, "У канала нет эталонных постов.", nil)
		return
	}

	f, err := os.CreateTemp("", "ideal-posts-*.txt")
	if err != nil {
		h.log.Error().Err(err).Msg("не удалось создать временный файл")
		h.send(chatID, "Не удалось подготовить файл с постами.", nil)
		return
	}
	path := f.Name()
	defer os.Remove(path)

	for i, post := range posts {
		fmt.Fprintf(f, "=== Пост %d ===\n%s\n\n", i+1, post)
	}
	if err := f.Close(); err != nil {
		h.log.Error().Err(err).Msg("не удалось записать временный файл")
		h.send(chatID, "Не удалось подготовить файл с постами.", nil)
		return
	}

	caption := fmt.Sprintf("Эталонные посты канала %s", telegram.DeliveryAddress(channelID))
	if err := h.gw.SendDocument(chatID, path, caption); err != nil {
		h.log.Error().Err(err).Msg("не удалось отправить файл с постами")
		h.send(chatID, "Не удалось отправить файл с постами.", nil)
	}
}

func (h *Handler) send(chatID int64, text string, kb domain.Keyboard) {
	if _, err := h.gw.SendMessage(chatID, text, kb); err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("не удалось отправить сообщение")
	}
}

func welcomeText() string {
	return strings.Join([]string{
		"Привет! Я помогаю вести контент в Telegram-каналах:",
		"храню темы и эталонные посты, генерирую публикации и отправляю их в каналы по расписанию.",
		"",
		"Выберите действие в меню ниже или посмотрите /help.",
	}, "\n")
}

func helpText() string {
	return strings.Join([]string{
		"Команды:",
		"/addchannel — добавить канал публикации",
		"/listchannels — список каналов",
		"/addtheme — добавить тему для канала",
		"/listthemes — показать темы канала",
		"/deletetheme — удалить тему",
		"/addidealpost — добавить эталонный пост (пример стиля)",
		"/listidealposts — выгрузить эталонные посты файлом",
		"/generate — сгенерировать пост по сохранённой теме",
		"/manualpost — сгенерировать пост по свободной теме",
		"",
		"Планировщик сам публикует по одному посту на канал по расписанию,",
		"расходуя сохранённые темы.",
	}, "\n")
}
