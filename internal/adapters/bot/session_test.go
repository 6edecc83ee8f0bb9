package bot

import (
	"testing"

	"tg-smm-bot/internal/domain"
)

func TestSessionStoreReplacesExisting(t *testing.T) {
	store := NewSessionStore()
	store.Put(domain.Session{ChatID: 1, Action: domain.ActionAddingTheme, ChannelID: "old"})
	store.Put(domain.Session{ChatID: 1, Action: domain.ActionAddingChannelID})

	sess, ok := store.Get(1)
	if !ok {
		t.Fatal("сессия должна существовать")
	}
	if sess.Action != domain.ActionAddingChannelID || sess.ChannelID != "" {
		t.Fatalf("новая сессия должна заменить старую целиком: %+v", sess)
	}
}

func TestSessionStoreDelete(t *testing.T) {
	store := NewSessionStore()
	store.Put(domain.Session{ChatID: 7, Action: domain.ActionAddingTheme})
	store.Delete(7)
	if _, ok := store.Get(7); ok {
		t.Fatal("сессия должна быть удалена")
	}
	// удаление отсутствующей сессии безопасно
	store.Delete(7)
}
