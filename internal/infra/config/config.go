package config

import (
	"log"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию процесса бота.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	Telegram struct {
		Token string `envconfig:"TG_BOT_TOKEN"`
		// AuthorizedIDs — фиксированный список чатов операторов.
		AuthorizedIDs []int64 `envconfig:"TG_AUTHORIZED_IDS"`
		// LogChannelID — канал для уведомлений об ошибках, пусто = выключено.
		LogChannelID string `envconfig:"TG_LOG_CHANNEL_ID"`
	} `envconfig:""`

	OpenAI struct {
		APIKey         string `envconfig:"OPENAI_API_KEY"`
		BaseURL        string `envconfig:"OPENAI_BASE_URL"`
		Model          string `envconfig:"OPENAI_MODEL" default:"gpt-4o"`
		TimeoutSeconds int    `envconfig:"OPENAI_TIMEOUT_SECONDS" default:"60"`
	} `envconfig:""`

	PGDSN string `envconfig:"PG_DSN"`

	Schedule struct {
		// Cron — расписание плановых публикаций, формат crontab.
		Cron string `envconfig:"SCHEDULE_CRON" default:"* * * * *"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
