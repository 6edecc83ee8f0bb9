package bot

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CallbackAction — тип действия, закодированного в callback-данных кнопки.
type CallbackAction string

// Действия главного меню (без аргументов).
const (
	ActionMenuAddChannel     CallbackAction = "add_channel"
	ActionMenuAddTheme       CallbackAction = "add_theme"
	ActionMenuAddIdealPost   CallbackAction = "add_ideal_post"
	ActionMenuGeneratePost   CallbackAction = "generate_post"
	ActionMenuManualPost     CallbackAction = "manual_post"
	ActionMenuDeleteTheme    CallbackAction = "delete_theme_menu"
	ActionMenuListThemes     CallbackAction = "list_themes_menu"
	ActionMenuListIdealPosts CallbackAction = "list_ideal_posts_menu"
	ActionMenuListChannels   CallbackAction = "list_channels"
	ActionMenuHelp           CallbackAction = "help_menu"
)

// Действия выбора канала (один аргумент: channel id).
const (
	ActionSelectChannelTheme    CallbackAction = "select_channel_theme"
	ActionSelectChannelIdeal    CallbackAction = "select_channel_ideal"
	ActionSelectChannelGenerate CallbackAction = "select_channel_generate"
	ActionSelectChannelManual   CallbackAction = "select_channel_manual"
	ActionSelectChannelDelete   CallbackAction = "select_channel_delete"
	ActionSelectChannelThemes   CallbackAction = "select_channel_themes"
	ActionSelectChannelPosts    CallbackAction = "select_channel_posts"
)

// Действия над конкретной темой (два аргумента: channel id и id темы).
const (
	ActionSelectThemeGenerate CallbackAction = "select_theme_generate"
	ActionDeleteTheme         CallbackAction = "delete_theme"
)

// ErrUnknownCallback возвращается для callback-данных, которые бот не узнаёт.
var ErrUnknownCallback = errors.New("неизвестные callback-данные")

// Telegram ограничивает callback_data 64 байтами. Идентификатор канала не
// длиннее 32 символов (нормализация отбрасывает более длинный ввод), так что
// самое длинное действие укладывается в лимит для id тем до девяти знаков.
const maxCallbackDataBytes = 64

// callbackArity задаёт число аргументов каждого действия.
var callbackArity = map[CallbackAction]int{
	ActionMenuAddChannel:     0,
	ActionMenuAddTheme:       0,
	ActionMenuAddIdealPost:   0,
	ActionMenuGeneratePost:   0,
	ActionMenuManualPost:     0,
	ActionMenuDeleteTheme:    0,
	ActionMenuListThemes:     0,
	ActionMenuListIdealPosts: 0,
	ActionMenuListChannels:   0,
	ActionMenuHelp:           0,

	ActionSelectChannelTheme:    1,
	ActionSelectChannelIdeal:    1,
	ActionSelectChannelGenerate: 1,
	ActionSelectChannelManual:   1,
	ActionSelectChannelDelete:   1,
	ActionSelectChannelThemes:   1,
	ActionSelectChannelPosts:    1,

	ActionSelectThemeGenerate: 2,
	ActionDeleteTheme:         2,
}

// actionsByLength — все действия от самого длинного имени к самому короткому.
// Идентификатор канала может содержать подчёркивания, поэтому разбор данных
// сопоставляет известные префиксы, а не режет строку по "_".
var actionsByLength = func() []CallbackAction {
	all := make([]CallbackAction, 0, len(callbackArity))
	for action := range callbackArity {
		all = append(all, action)
	}
	sort.Slice(all, func(i, j int) bool {
		if len(all[i]) != len(all[j]) {
			return len(all[i]) > len(all[j])
		}
		return all[i] < all[j]
	})
	return all
}()

// Callback — разобранные данные нажатой inline-кнопки.
type Callback struct {
	Action    CallbackAction
	ChannelID string
	ThemeID   int64
}

// Encode собирает callback-данные кнопки: action, action_<channel>
// или action_<channel>_<themeID> в зависимости от арности действия.
func Encode(action CallbackAction, channelID string, themeID int64) string {
	switch callbackArity[action] {
	case 1:
		return fmt.Sprintf("%s_%s", action, channelID)
	case 2:
		return fmt.Sprintf("%s_%s_%d", action, channelID, themeID)
	default:
		return string(action)
	}
}

// ParseCallback восстанавливает Callback из данных кнопки.
func ParseCallback(data string) (Callback, error) {
	for _, action := range actionsByLength {
		arity := callbackArity[action]
		if arity == 0 {
			if data == string(action) {
				return Callback{Action: action}, nil
			}
			continue
		}
		prefix := string(action) + "_"
		if !strings.HasPrefix(data, prefix) {
			continue
		}
		rest := data[len(prefix):]
		if rest == "" {
			continue
		}
		if arity == 1 {
			return Callback{Action: action, ChannelID: rest}, nil
		}
		// id темы — число после последнего "_"; всё до него — channel id
		sep := strings.LastIndex(rest, "_")
		if sep <= 0 || sep == len(rest)-1 {
			continue
		}
		themeID, err := strconv.ParseInt(rest[sep+1:], 10, 64)
		if err != nil {
			continue
		}
		return Callback{Action: action, ChannelID: rest[:sep], ThemeID: themeID}, nil
	}
	return Callback{}, fmt.Errorf("%w: %q", ErrUnknownCallback, data)
}
