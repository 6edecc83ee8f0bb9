package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"tg-smm-bot/internal/adapters/bot"
	"tg-smm-bot/internal/adapters/generator"
	"tg-smm-bot/internal/adapters/notifier"
	"tg-smm-bot/internal/adapters/repo"
	"tg-smm-bot/internal/adapters/telegram"
	"tg-smm-bot/internal/domain"
	"tg-smm-bot/internal/infra/config"
	"tg-smm-bot/internal/infra/db"
	"tg-smm-bot/internal/infra/log"
	"tg-smm-bot/internal/infra/metrics"
	"tg-smm-bot/internal/infra/openai"
	"tg-smm-bot/internal/usecase/channels"
	"tg-smm-bot/internal/usecase/posting"
	"tg-smm-bot/internal/usecase/scheduler"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv, "bot")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось подключиться к БД")
	}
	defer pool.Close()

	repoAdapter := repo.NewPostgres(pool)
	if err := repoAdapter.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("не удалось подготовить схему БД")
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)
	metrics.StartServer(ctx, logger, cfg.MetricsAddr)

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось создать бота")
	}
	gw := telegram.NewBot(botAPI, logger)

	var gen domain.Generator
	if cfg.OpenAI.APIKey != "" {
		timeout := time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second
		client := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, timeout)
		gen = generator.NewOpenAI(client, cfg.OpenAI.Model, timeout)
	} else {
		logger.Warn().Msg("ключ OpenAI не задан, используется статический генератор")
		gen = generator.NewStatic()
	}

	reporter := notifier.NewTelegram(logger, gw, cfg.Telegram.LogChannelID)
	channelService := channels.NewService(repoAdapter)
	postingService := posting.NewService(repoAdapter, gen, gw)

	h := bot.NewHandler(gw, channelService, postingService, repoAdapter, repoAdapter, reporter, cfg.Telegram.AuthorizedIDs, logger)

	sched := scheduler.NewService(repoAdapter, repoAdapter, postingService, reporter, logger, cfg.Schedule.Cron)
	if err := sched.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("не удалось запустить планировщик")
	}

	registerCommands(botAPI, logger)

	updCfg := tgbotapi.NewUpdate(0)
	updCfg.Timeout = 30
	updates := botAPI.GetUpdatesChan(updCfg)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	logger.Info().Str("schedule", cfg.Schedule.Cron).Msg("бот запущен")

	for {
		select {
		case <-stop:
			logger.Info().Msg("остановка бота")
			botAPI.StopReceivingUpdates()
			sched.Stop()
			cancel()
			return
		case upd, ok := <-updates:
			if !ok {
				logger.Info().Msg("поток апдейтов закрыт")
				sched.Stop()
				cancel()
				return
			}
			h.HandleEvent(ctx, telegram.EventFromUpdate(upd))
		}
	}
}

func registerCommands(api *tgbotapi.BotAPI, logger zerolog.Logger) {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Главное меню"},
		tgbotapi.BotCommand{Command: "help", Description: "Справка по командам"},
		tgbotapi.BotCommand{Command: "addchannel", Description: "Добавить канал"},
		tgbotapi.BotCommand{Command: "listchannels", Description: "Список каналов"},
		tgbotapi.BotCommand{Command: "addtheme", Description: "Добавить тему"},
		tgbotapi.BotCommand{Command: "listthemes", Description: "Темы канала"},
		tgbotapi.BotCommand{Command: "deletetheme", Description: "Удалить тему"},
		tgbotapi.BotCommand{Command: "addidealpost", Description: "Добавить эталонный пост"},
		tgbotapi.BotCommand{Command: "listidealposts", Description: "Выгрузить эталонные посты"},
		tgbotapi.BotCommand{Command: "generate", Description: "Сгенерировать пост по теме"},
		tgbotapi.BotCommand{Command: "manualpost", Description: "Пост по своей теме"},
	)
	if _, err := api.Request(commands); err != nil {
		logger.Error().Err(err).Msg("не удалось зарегистрировать команды")
	}
}
