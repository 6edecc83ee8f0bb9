package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tg-smm-bot/internal/domain"
	"tg-smm-bot/internal/infra/metrics"
)

// Postgres реализует репозитории каналов, тем и эталонных постов.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ domain.ChannelRepo   = (*Postgres)(nil)
	_ domain.ThemeRepo     = (*Postgres)(nil)
	_ domain.IdealPostRepo = (*Postgres)(nil)
)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// EnsureSchema создаёт таблицы, если их ещё нет.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS channels (
			id BIGSERIAL PRIMARY KEY,
			channel_id TEXT UNIQUE NOT NULL,
			name TEXT,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS themes (
			id BIGSERIAL PRIMARY KEY,
			channel_id TEXT NOT NULL,
			theme TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS ideal_posts (
			id BIGSERIAL PRIMARY KEY,
			channel_id TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	start := time.Now()
	for _, stmt := range statements {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			metrics.ObserveNetworkRequest("postgres", "ensure_schema", "schema", start, err)
			return fmt.Errorf("%w: инициализация схемы: %w", domain.ErrStorage, err)
		}
	}
	metrics.ObserveNetworkRequest("postgres", "ensure_schema", "schema", start, nil)
	return nil
}

// AddChannel регистрирует канал. Повторный channel_id игнорируется.
func (p *Postgres) AddChannel(ctx context.Context, channelID, name, description string) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO channels (channel_id, name, description)
VALUES ($1, $2, $3)
ON CONFLICT (channel_id) DO NOTHING
`, channelID, name, description)
	metrics.ObserveNetworkRequest("postgres", "channel_insert", "channels", start, err)
	if err != nil {
		return fmt.Errorf("%w: добавление канала: %w", domain.ErrStorage, err)
	}
	return nil
}

// ListChannels возвращает все каналы в порядке регистрации.
func (p *Postgres) ListChannels(ctx context.Context) ([]domain.Channel, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT channel_id, COALESCE(name, ''), COALESCE(description, ''), created_at
FROM channels
ORDER BY created_at
`)
	metrics.ObserveNetworkRequest("postgres", "channel_list", "channels", start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: список каналов: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	var channels []domain.Channel
	for rows.Next() {
		var ch domain.Channel
		if err := rows.Scan(&ch.ChannelID, &ch.Name, &ch.Description, &ch.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: чтение канала: %w", domain.ErrStorage, err)
		}
		channels = append(channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: список каналов: %w", domain.ErrStorage, err)
	}
	return channels, nil
}

// GetChannel возвращает канал по идентификатору.
func (p *Postgres) GetChannel(ctx context.Context, channelID string) (domain.Channel, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	var ch domain.Channel
	err := p.pool.QueryRow(ctx, `
SELECT channel_id, COALESCE(name, ''), COALESCE(description, ''), created_at
FROM channels
WHERE channel_id = $1
`, channelID).Scan(&ch.ChannelID, &ch.Name, &ch.Description, &ch.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "channel_get", "channels", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Channel{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Channel{}, fmt.Errorf("%w: чтение канала: %w", domain.ErrStorage, err)
	}
	return ch, nil
}

// AddTheme добавляет тему каналу и возвращает её идентификатор.
func (p *Postgres) AddTheme(ctx context.Context, channelID, text string) (int64, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	var id int64
	err := p.pool.QueryRow(ctx, `
INSERT INTO themes (channel_id, theme) VALUES ($1, $2) RETURNING id
`, channelID, text).Scan(&id)
	metrics.ObserveNetworkRequest("postgres", "theme_insert", "themes", start, err)
	if err != nil {
		return 0, fmt.Errorf("%w: добавление темы: %w", domain.ErrStorage, err)
	}
	return id, nil
}

// DeleteTheme удаляет тему. Отсутствующая тема не считается ошибкой.
func (p *Postgres) DeleteTheme(ctx context.Context, channelID string, themeID int64) (bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `
DELETE FROM themes WHERE channel_id = $1 AND id = $2
`, channelID, themeID)
	metrics.ObserveNetworkRequest("postgres", "theme_delete", "themes", start, err)
	if err != nil {
		return false, fmt.Errorf("%w: удаление темы: %w", domain.ErrStorage, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListThemes возвращает темы канала.
func (p *Postgres) ListThemes(ctx context.Context, channelID string) ([]domain.Theme, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, channel_id, theme, created_at FROM themes WHERE channel_id = $1 ORDER BY id
`, channelID)
	metrics.ObserveNetworkRequest("postgres", "theme_list", "themes", start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: список тем: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	var themes []domain.Theme
	for rows.Next() {
		var th domain.Theme
		if err := rows.Scan(&th.ID, &th.ChannelID, &th.Text, &th.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: чтение темы: %w", domain.ErrStorage, err)
		}
		themes = append(themes, th)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: список тем: %w", domain.ErrStorage, err)
	}
	return themes, nil
}

// RandomTheme возвращает случайную тему канала.
func (p *Postgres) RandomTheme(ctx context.Context, channelID string) (domain.Theme, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	var th domain.Theme
	err := p.pool.QueryRow(ctx, `
SELECT id, channel_id, theme, created_at FROM themes
WHERE channel_id = $1
ORDER BY random()
LIMIT 1
`, channelID).Scan(&th.ID, &th.ChannelID, &th.Text, &th.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "theme_random", "themes", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Theme{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Theme{}, fmt.Errorf("%w: выбор темы: %w", domain.ErrStorage, err)
	}
	return th, nil
}

// AddIdealPost сохраняет эталонный пост канала.
func (p *Postgres) AddIdealPost(ctx context.Context, channelID, content string) (int64, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	var id int64
	err := p.pool.QueryRow(ctx, `
INSERT INTO ideal_posts (channel_id, content) VALUES ($1, $2) RETURNING id
`, channelID, content).Scan(&id)
	metrics.ObserveNetworkRequest("postgres", "ideal_post_insert", "ideal_posts", start, err)
	if err != nil {
		return 0, fmt.Errorf("%w: добавление эталонного поста: %w", domain.ErrStorage, err)
	}
	return id, nil
}

// ListIdealPosts возвращает содержимое эталонных постов канала.
// Привязка — только к каналу: примеры общие для всех тем канала.
func (p *Postgres) ListIdealPosts(ctx context.Context, channelID string) ([]string, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT content FROM ideal_posts WHERE channel_id = $1 ORDER BY id
`, channelID)
	metrics.ObserveNetworkRequest("postgres", "ideal_post_list", "ideal_posts", start, err)
	if err != nil {
		return nil, fmt.Errorf("%w: список эталонных постов: %w", domain.ErrStorage, err)
	}
	defer rows.Close()

	var posts []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("%w: чтение эталонного поста: %w", domain.ErrStorage, err)
		}
		posts = append(posts, content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: список эталонных постов: %w", domain.ErrStorage, err)
	}
	return posts, nil
}
