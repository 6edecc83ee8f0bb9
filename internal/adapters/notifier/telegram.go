package notifier

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tg-smm-bot/internal/domain"
)

// Telegram пишет ошибку в лог и пересылает уведомление в лог-канал
// оператора. Сбой пересылки не эскалируется.
type Telegram struct {
	log          zerolog.Logger
	gw           domain.Gateway
	logChannelID string
}

var _ domain.ErrorReporter = (*Telegram)(nil)

// NewTelegram создаёт репортёр. Пустой logChannelID отключает пересылку.
func NewTelegram(log zerolog.Logger, gw domain.Gateway, logChannelID string) *Telegram {
	return &Telegram{log: log, gw: gw, logChannelID: logChannelID}
}

// Report реализует domain.ErrorReporter.
func (n *Telegram) Report(err error, channelID, op string) {
	n.log.Error().Err(err).Str("channel", channelID).Str("op", op).Msg("ошибка операции")
	if n.logChannelID == "" {
		return
	}
	notice := fmt.Sprintf(
		"**Ошибка**\nВремя: %s\nКанал: %s\nОперация: %s\nОписание: %v",
		time.Now().Format("02.01.2006 15:04:05"), channelID, op, err,
	)
	if sendErr := n.gw.PublishPost(n.logChannelID, notice); sendErr != nil {
		n.log.Error().Err(sendErr).Msg("не удалось отправить лог в Telegram")
	}
}
