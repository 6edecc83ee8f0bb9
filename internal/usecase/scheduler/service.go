package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"tg-smm-bot/internal/domain"
	"tg-smm-bot/internal/infra/metrics"
	"tg-smm-bot/internal/usecase/posting"
)

// Service выполняет плановые публикации: на каждом тике для каждого канала
// расходуется одна случайная тема. Ошибки изолируются по каналам.
type Service struct {
	channels domain.ChannelRepo
	themes   domain.ThemeRepo
	posting  *posting.Service
	reporter domain.ErrorReporter
	log      zerolog.Logger
	cronSpec string
	cron     *cron.Cron
	running  atomic.Bool
}

// NewService создаёт планировщик с crontab-расписанием.
func NewService(channels domain.ChannelRepo, themes domain.ThemeRepo, postingSvc *posting.Service, reporter domain.ErrorReporter, log zerolog.Logger, cronSpec string) *Service {
	return &Service{
		channels: channels,
		themes:   themes,
		posting:  postingSvc,
		reporter: reporter,
		log:      log,
		cronSpec: cronSpec,
	}
}

// Start выполняет немедленный проход и запускает расписание.
func (s *Service) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(s.cronSpec, func() { s.RunOnce(context.Background()) }); err != nil {
		return fmt.Errorf("разбор расписания %q: %w", s.cronSpec, err)
	}
	go s.RunOnce(ctx)
	c.Start()
	s.cron = c
	s.log.Info().Str("cron", s.cronSpec).Msg("планировщик запущен")
	return nil
}

// Stop останавливает расписание. Уже начатый проход довыполняется.
func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// RunOnce выполняет один проход по всем каналам. Если предыдущий проход
// ещё не завершён, тик пропускается целиком.
func (s *Service) RunOnce(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		metrics.SchedulerSkipsTotal.Inc()
		s.log.Debug().Msg("предыдущий проход ещё выполняется, тик пропущен")
		return
	}
	defer s.running.Store(false)
	metrics.SchedulerRunsTotal.Inc()

	logger := s.log.With().Str("tick", uuid.NewString()).Logger()

	channels, err := s.channels.ListChannels(ctx)
	if err != nil {
		s.reporter.Report(err, "system", "scheduler")
		return
	}
	for _, ch := range channels {
		switch err := s.publishForChannel(ctx, ch.ChannelID); {
		case err == nil:
			logger.Info().Str("channel", ch.ChannelID).Msg("плановый пост опубликован")
		case errors.Is(err, domain.ErrNotFound):
			// у канала нет тем — пропускается молча
		default:
			metrics.IncSchedulerChannelError(ch.ChannelID)
			s.reporter.Report(err, ch.ChannelID, "scheduled_generation")
		}
	}
}

func (s *Service) publishForChannel(ctx context.Context, channelID string) error {
	theme, err := s.themes.RandomTheme(ctx, channelID)
	if err != nil {
		return err
	}
	text, err := s.posting.Generate(ctx, channelID, theme.Text, "")
	if err != nil {
		return err
	}
	if err := s.posting.Publish(channelID, text); err != nil {
		return err
	}
	// тема расходуется только после успешной публикации
	if _, err := s.themes.DeleteTheme(ctx, channelID, theme.ID); err != nil {
		return fmt.Errorf("удаление использованной темы %d: %w", theme.ID, err)
	}
	return nil
}
