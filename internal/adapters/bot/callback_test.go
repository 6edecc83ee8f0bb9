package bot

import (
	"errors"
	"strings"
	"testing"
)

func TestParseCallbackRoundTrip(t *testing.T) {
	cases := []Callback{
		{Action: ActionMenuAddChannel},
		{Action: ActionMenuDeleteTheme},
		{Action: ActionSelectChannelTheme, ChannelID: "mychannel"},
		{Action: ActionSelectChannelGenerate, ChannelID: "-1001234567890"},
		{Action: ActionSelectThemeGenerate, ChannelID: "mychannel", ThemeID: 42},
		{Action: ActionDeleteTheme, ChannelID: "mychannel", ThemeID: 7},
	}
	for _, want := range cases {
		data := Encode(want.Action, want.ChannelID, want.ThemeID)
		got, err := ParseCallback(data)
		if err != nil {
			t.Fatalf("ParseCallback(%q): %v", data, err)
		}
		if got != want {
			t.Fatalf("ParseCallback(%q) = %+v, ожидали %+v", data, got, want)
		}
	}
}

func TestParseCallbackChannelWithUnderscores(t *testing.T) {
	// подчёркивания в channel id не должны ломать разбор аргументов
	want := Callback{Action: ActionSelectThemeGenerate, ChannelID: "my_cool_channel", ThemeID: 15}
	got, err := ParseCallback(Encode(want.Action, want.ChannelID, want.ThemeID))
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if got != want {
		t.Fatalf("получили %+v, ожидали %+v", got, want)
	}

	want = Callback{Action: ActionSelectChannelManual, ChannelID: "my_cool_channel"}
	got, err = ParseCallback(Encode(want.Action, want.ChannelID, 0))
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if got != want {
		t.Fatalf("получили %+v, ожидали %+v", got, want)
	}
}

func TestParseCallbackDistinguishesPrefixes(t *testing.T) {
	// select_channel_theme и select_channel_themes — разные действия
	got, err := ParseCallback("select_channel_themes_news")
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if got.Action != ActionSelectChannelThemes || got.ChannelID != "news" {
		t.Fatalf("получили %+v", got)
	}

	got, err = ParseCallback("select_channel_theme_news")
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if got.Action != ActionSelectChannelTheme || got.ChannelID != "news" {
		t.Fatalf("получили %+v", got)
	}
}

func TestEncodeRespectsTelegramLimit(t *testing.T) {
	// худший случай: самый длинный префикс, username предельной длины
	longest := strings.Repeat("a", 32)
	data := Encode(ActionSelectThemeGenerate, longest, 999_999_999)
	if len(data) > maxCallbackDataBytes {
		t.Fatalf("callback-данные длиннее лимита Telegram: %d байт (%q)", len(data), data)
	}
}

func TestParseCallbackUnknown(t *testing.T) {
	for _, data := range []string{"", "nonsense", "select_theme_generate_", "delete_theme_news_x"} {
		if _, err := ParseCallback(data); !errors.Is(err, ErrUnknownCallback) {
			t.Fatalf("ParseCallback(%q): ожидали ErrUnknownCallback, получили %v", data, err)
		}
	}
}
