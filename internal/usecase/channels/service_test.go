package channels

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tg-smm-bot/internal/domain"
)

func TestNormalizeID(t *testing.T) {
	cases := map[string]string{
		"@MyChannel":           "mychannel",
		"mychannel":            "mychannel",
		"https://t.me/news_ru": "news_ru",
		"t.me/news_ru":         "news_ru",
		"-1001234567890":       "-1001234567890",
		"42":                   "42",
		"  @spaced  ":          "spaced",
	}
	for in, want := range cases {
		got, err := NormalizeID(in)
		if err != nil {
			t.Fatalf("NormalizeID(%q): не ожидали ошибку: %v", in, err)
		}
		if got != want {
			t.Fatalf("NormalizeID(%q) = %q, ожидали %q", in, got, want)
		}
	}
}

func TestNormalizeIDIdempotent(t *testing.T) {
	for _, in := range []string{"@MyChannel", "news_ru", "-100123", "t.me/example"} {
		first, err := NormalizeID(in)
		if err != nil {
			t.Fatalf("NormalizeID(%q): %v", in, err)
		}
		second, err := NormalizeID(first)
		if err != nil {
			t.Fatalf("повторная нормализация %q: %v", first, err)
		}
		if first != second {
			t.Fatalf("нормализация не идемпотентна: %q -> %q -> %q", in, first, second)
		}
	}
}

func TestNormalizeIDInvalid(t *testing.T) {
	inputs := []string{
		"", "@", "a b c", "кириллица", "abc",
		// username длиннее лимита Telegram
		strings.Repeat("a", 33),
		// число не помещается в int64
		"-" + strings.Repeat("9", 20),
	}
	for _, in := range inputs {
		if _, err := NormalizeID(in); !errors.Is(err, ErrChannelIDInvalid) {
			t.Fatalf("NormalizeID(%q): ожидали ErrChannelIDInvalid, получили %v", in, err)
		}
	}
}

func TestNormalizeIDAcceptsLimitLengthUsername(t *testing.T) {
	in := strings.Repeat("a", 32)
	got, err := NormalizeID("@" + in)
	if err != nil {
		t.Fatalf("NormalizeID: %v", err)
	}
	if got != in {
		t.Fatalf("получили %q, ожидали %q", got, in)
	}
}

type recordingChannelRepo struct {
	added []domain.Channel
}

func (r *recordingChannelRepo) AddChannel(_ context.Context, id, name, description string) error {
	r.added = append(r.added, domain.Channel{ChannelID: id, Name: name, Description: description})
	return nil
}

func (r *recordingChannelRepo) ListChannels(context.Context) ([]domain.Channel, error) {
	return r.added, nil
}

func (r *recordingChannelRepo) GetChannel(_ context.Context, id string) (domain.Channel, error) {
	for _, ch := range r.added {
		if ch.ChannelID == id {
			return ch, nil
		}
	}
	return domain.Channel{}, domain.ErrNotFound
}

func TestAddStoresNormalizedID(t *testing.T) {
	repo := &recordingChannelRepo{}
	svc := NewService(repo)

	id, err := svc.Add(context.Background(), "@News", "Новости", "")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if id != "news" {
		t.Fatalf("ожидали нормализованный id, получили %q", id)
	}
	if len(repo.added) != 1 || repo.added[0].ChannelID != "news" {
		t.Fatalf("в хранилище должен лежать id без @: %+v", repo.added)
	}
}
