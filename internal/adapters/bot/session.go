package bot

import (
	"sync"

	"tg-smm-bot/internal/domain"
)

// SessionStore хранит диалоговые сессии операторов в памяти процесса.
// Ключ — chat id; у каждого чата не более одной сессии.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]domain.Session
}

// NewSessionStore создаёт пустое хранилище сессий.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]domain.Session)}
}

// Get возвращает сессию чата. Второй результат — false, если сессии нет.
func (s *SessionStore) Get(chatID int64) (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[chatID]
	return sess, ok
}

// Put сохраняет сессию, молча заменяя предыдущую для того же чата.
func (s *SessionStore) Put(sess domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ChatID] = sess
}

// Delete удаляет сессию чата, если она есть.
func (s *SessionStore) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}
