package channels

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"tg-smm-bot/internal/domain"
)

// ErrChannelIDInvalid возвращается для нераспознаваемого идентификатора канала.
var ErrChannelIDInvalid = errors.New("некорректный идентификатор канала")

// Username в Telegram — от 5 до 32 символов; числовой chat id помещается
// в int64. Более длинный ввод не может быть настоящим каналом.
var (
	usernameRegex = regexp.MustCompile(`(?i)^(?:@|https?://t\.me/|t\.me/)?([a-z0-9_]{5,32})$`)
	numericRegex  = regexp.MustCompile(`^-?\d{1,19}$`)
)

// Service управляет каналами публикации.
type Service struct {
	repo domain.ChannelRepo
}

// NewService создаёт сервис каналов.
func NewService(repo domain.ChannelRepo) *Service {
	return &Service{repo: repo}
}

// NormalizeID приводит ввод оператора к каноничному идентификатору канала:
// @username без @, числовые chat id (включая отрицательные) как есть.
// Нормализация идемпотентна.
func NormalizeID(input string) (string, error) {
	trim := strings.TrimSpace(input)
	if numericRegex.MatchString(trim) {
		return trim, nil
	}
	matches := usernameRegex.FindStringSubmatch(trim)
	if len(matches) < 2 {
		return "", ErrChannelIDInvalid
	}
	return strings.ToLower(matches[1]), nil
}

// Add нормализует идентификатор и регистрирует канал. Повторная
// регистрация того же канала не является ошибкой.
func (s *Service) Add(ctx context.Context, rawID, name, description string) (string, error) {
	id, err := NormalizeID(rawID)
	if err != nil {
		return "", err
	}
	if err := s.repo.AddChannel(ctx, id, name, description); err != nil {
		return "", fmt.Errorf("сохранение канала: %w", err)
	}
	return id, nil
}

// List возвращает все зарегистрированные каналы.
func (s *Service) List(ctx context.Context) ([]domain.Channel, error) {
	return s.repo.ListChannels(ctx)
}

// Get возвращает канал по нормализованному идентификатору.
func (s *Service) Get(ctx context.Context, channelID string) (domain.Channel, error) {
	return s.repo.GetChannel(ctx, channelID)
}
