package posting

import (
	"context"
	"fmt"
	"strings"

	"tg-smm-bot/internal/domain"
	"tg-smm-bot/internal/infra/metrics"
)

// Service оркестрирует генерацию и публикацию постов. Используется и
// диалогом, и планировщиком.
type Service struct {
	ideals    domain.IdealPostRepo
	generator domain.Generator
	gw        domain.Gateway
}

// NewService создаёт сервис постов.
func NewService(ideals domain.IdealPostRepo, generator domain.Generator, gw domain.Gateway) *Service {
	return &Service{ideals: ideals, generator: generator, gw: gw}
}

// Generate строит текст поста по теме канала: эталонные посты канала
// подаются провайдеру как примеры стиля. Пустой результат — ошибка
// генерации.
func (s *Service) Generate(ctx context.Context, channelID, theme, extra string) (string, error) {
	examples, err := s.ideals.ListIdealPosts(ctx, channelID)
	if err != nil {
		return "", fmt.Errorf("эталонные посты канала: %w", err)
	}
	text, err := s.generator.GeneratePost(ctx, theme, examples, extra)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: провайдер вернул пустой текст", domain.ErrGeneration)
	}
	metrics.IncGeneratedPost(channelID)
	return text, nil
}

// Publish очищает текст от обрамляющего code fence и доставляет его в канал.
func (s *Service) Publish(channelID, text string) error {
	if err := s.gw.PublishPost(channelID, CleanMarkdownFences(text)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPublish, err)
	}
	metrics.IncPublishedPost(channelID)
	return nil
}
