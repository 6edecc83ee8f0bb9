package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tg-smm-bot/internal/domain"
	"tg-smm-bot/internal/usecase/posting"
)

type memRepo struct {
	mu       sync.Mutex
	channels []domain.Channel
	themes   map[string][]domain.Theme
	ideals   map[string][]string
	nextID   int64
	listErr  error
}

func newMemRepo() *memRepo {
	return &memRepo{themes: make(map[string][]domain.Theme), ideals: make(map[string][]string)}
}

func (m *memRepo) AddChannel(_ context.Context, id, name, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.channels {
		if ch.ChannelID == id {
			return nil
		}
	}
	m.channels = append(m.channels, domain.Channel{ChannelID: id, Name: name, Description: description})
	return nil
}

func (m *memRepo) ListChannels(context.Context) ([]domain.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.Channel(nil), m.channels...), nil
}

func (m *memRepo) GetChannel(_ context.Context, id string) (domain.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.channels {
		if ch.ChannelID == id {
			return ch, nil
		}
	}
	return domain.Channel{}, domain.ErrNotFound
}

func (m *memRepo) AddTheme(_ context.Context, channelID, text string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.themes[channelID] = append(m.themes[channelID], domain.Theme{ID: m.nextID, ChannelID: channelID, Text: text})
	return m.nextID, nil
}

func (m *memRepo) DeleteTheme(_ context.Context, channelID string, themeID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	themes := m.themes[channelID]
	for i, th := range themes {
		if th.ID == themeID {
			m.themes[channelID] = append(themes[:i], themes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) ListThemes(_ context.Context, channelID string) ([]domain.Theme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Theme(nil), m.themes[channelID]...), nil
}

func (m *memRepo) RandomTheme(_ context.Context, channelID string) (domain.Theme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	themes := m.themes[channelID]
	if len(themes) == 0 {
		return domain.Theme{}, domain.ErrNotFound
	}
	return themes[0], nil
}

func (m *memRepo) AddIdealPost(_ context.Context, channelID, content string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ideals[channelID] = append(m.ideals[channelID], content)
	return int64(len(m.ideals[channelID])), nil
}

func (m *memRepo) ListIdealPosts(_ context.Context, channelID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ideals[channelID]...), nil
}

type blockingGenerator struct {
	mu      sync.Mutex
	calls   int
	replies map[string]string
	errs    map[string]error
	block   chan struct{}
}

func (g *blockingGenerator) GeneratePost(_ context.Context, theme string, _ []string, _ string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.block != nil {
		<-g.block
	}
	if g.errs != nil {
		if err, ok := g.errs[theme]; ok {
			return "", err
		}
	}
	if g.replies != nil {
		if reply, ok := g.replies[theme]; ok {
			return reply, nil
		}
	}
	return "Generated content", nil
}

func (g *blockingGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type memGateway struct {
	mu        sync.Mutex
	published map[string][]string
	pubErr    error
}

func newMemGateway() *memGateway {
	return &memGateway{published: make(map[string][]string)}
}

func (g *memGateway) SendMessage(int64, string, domain.Keyboard) (domain.MessageRef, error) {
	return domain.MessageRef{}, nil
}
func (g *memGateway) DeleteMessage(domain.MessageRef) error    { return nil }
func (g *memGateway) AnswerCallback(string) error              { return nil }
func (g *memGateway) SendDocument(int64, string, string) error { return nil }
func (g *memGateway) PublishPost(channelID, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pubErr != nil {
		return g.pubErr
	}
	g.published[channelID] = append(g.published[channelID], text)
	return nil
}

func (g *memGateway) publishedTo(channelID string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.published[channelID]...)
}

type memReporter struct {
	mu      sync.Mutex
	reports []string
}

func (r *memReporter) Report(_ error, channelID, op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, channelID+"/"+op)
}

func (r *memReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}

func newTestService(repo *memRepo, gen *blockingGenerator, gw *memGateway, rep *memReporter) *Service {
	postingSvc := posting.NewService(repo, gen, gw)
	return NewService(repo, repo, postingSvc, rep, zerolog.Nop(), "* * * * *")
}

func TestRunOnceConsumesThemeAfterPublish(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	_ = repo.AddChannel(ctx, "news", "News", "")
	themeID, _ := repo.AddTheme(ctx, "news", "Launch")
	_, _ = repo.AddIdealPost(ctx, "news", "Example post body")

	gen := &blockingGenerator{}
	gw := newMemGateway()
	svc := newTestService(repo, gen, gw, &memReporter{})

	svc.RunOnce(ctx)

	if got := gw.publishedTo("news"); len(got) != 1 || got[0] != "Generated content" {
		t.Fatalf("канал должен получить сгенерированный текст, получили %v", got)
	}
	themes, _ := repo.ListThemes(ctx, "news")
	for _, th := range themes {
		if th.ID == themeID {
			t.Fatalf("использованная тема должна быть удалена")
		}
	}
}

func TestRunOnceSkipsChannelWithoutThemes(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	_ = repo.AddChannel(ctx, "empty", "", "")

	gen := &blockingGenerator{}
	gw := newMemGateway()
	rep := &memReporter{}
	svc := newTestService(repo, gen, gw, rep)

	svc.RunOnce(ctx)

	if gen.callCount() != 0 {
		t.Fatalf("без тем генерация не должна вызываться")
	}
	if rep.count() != 0 {
		t.Fatalf("отсутствие тем не является ошибкой")
	}
}

func TestRunOnceIsolatesChannelFailures(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	_ = repo.AddChannel(ctx, "broken", "", "")
	_ = repo.AddChannel(ctx, "healthy", "", "")
	_, _ = repo.AddTheme(ctx, "broken", "bad")
	_, _ = repo.AddTheme(ctx, "healthy", "good")

	gen := &blockingGenerator{errs: map[string]error{"bad": errors.New("provider down")}}
	gw := newMemGateway()
	rep := &memReporter{}
	svc := newTestService(repo, gen, gw, rep)

	svc.RunOnce(ctx)

	if got := gw.publishedTo("healthy"); len(got) != 1 {
		t.Fatalf("сбой одного канала не должен останавливать обход: %v", got)
	}
	if rep.count() != 1 {
		t.Fatalf("ожидали один отчёт об ошибке, получили %d", rep.count())
	}
}

func TestRunOnceBlankGenerationKeepsTheme(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	_ = repo.AddChannel(ctx, "news", "", "")
	_, _ = repo.AddTheme(ctx, "news", "Launch")

	gen := &blockingGenerator{replies: map[string]string{"Launch": "   "}}
	gw := newMemGateway()
	rep := &memReporter{}
	svc := newTestService(repo, gen, gw, rep)

	svc.RunOnce(ctx)

	if len(gw.publishedTo("news")) != 0 {
		t.Fatalf("пустой результат не должен публиковаться")
	}
	themes, _ := repo.ListThemes(ctx, "news")
	if len(themes) != 1 {
		t.Fatalf("тема не должна расходоваться без публикации")
	}
	if rep.count() != 1 {
		t.Fatalf("пустой результат — ошибка канала")
	}
}

func TestRunOncePublishFailureKeepsTheme(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	_ = repo.AddChannel(ctx, "news", "", "")
	_, _ = repo.AddTheme(ctx, "news", "Launch")

	gen := &blockingGenerator{}
	gw := newMemGateway()
	gw.pubErr = errors.New("bot is not admin")
	rep := &memReporter{}
	svc := newTestService(repo, gen, gw, rep)

	svc.RunOnce(ctx)

	themes, _ := repo.ListThemes(ctx, "news")
	if len(themes) != 1 {
		t.Fatalf("тема расходуется только после успешной публикации")
	}
}

func TestRunOnceSingleFlight(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	_ = repo.AddChannel(ctx, "news", "", "")
	_, _ = repo.AddTheme(ctx, "news", "Launch")
	_, _ = repo.AddTheme(ctx, "news", "Второй")

	gen := &blockingGenerator{block: make(chan struct{})}
	gw := newMemGateway()
	svc := newTestService(repo, gen, gw, &memReporter{})

	done := make(chan struct{})
	go func() {
		svc.RunOnce(ctx)
		close(done)
	}()

	// ждём, пока первый проход дойдёт до генерации
	deadline := time.After(2 * time.Second)
	for gen.callCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("первый проход не начал генерацию")
		case <-time.After(5 * time.Millisecond):
		}
	}

	// повторный тик при незавершённом проходе должен быть пропущен целиком
	svc.RunOnce(ctx)
	if gen.callCount() != 1 {
		t.Fatalf("пересекающийся тик не должен порождать генерации, вызовов: %d", gen.callCount())
	}

	close(gen.block)
	<-done

	if len(gw.publishedTo("news")) != 1 {
		t.Fatalf("после завершения прохода ожидали одну публикацию")
	}
}
