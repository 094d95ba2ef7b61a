// Package notify pushes operational notices to the studio administrators.
package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fitstudio-backend/internal/domain/model"
	"fitstudio-backend/internal/domain/ports/notify"
)

var _ notify.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier posts run summaries to an admin chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) ReconcileFinished(ctx context.Context, period model.Period, processed int) error {
	text := fmt.Sprintf("Processamento financeiro %s concluído: %d cliente(s) com cobrança gerada.",
		period.Display(), processed)
	_, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, text))
	return err
}
