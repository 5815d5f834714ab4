package reporter

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-hirekit/internal/models"
)

// TelegramReporter pushes auto-apply outcomes to a Telegram chat so the
// operator sees applications land without tailing logs.
type TelegramReporter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramReporter(token string, chatID int64) (*TelegramReporter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &TelegramReporter{bot: bot, chatID: chatID}, nil
}

// NotifyApplication is best effort; delivery problems are only logged.
func (t *TelegramReporter) NotifyApplication(app *models.Application, success bool) {
	icon := "✅"
	verdict := "Auto-applied"
	if !success {
		icon = "⏳"
		verdict = "Saved for manual apply"
	}

	text := fmt.Sprintf(
		"%s <b>%s</b>\n"+
			"🏢 %s\n"+
			"📌 Status: %s\n"+
			"🔗 <a href=\"%s\">Job posting</a>",
		icon, verdict, app.Company, app.Status, app.JobURL,
	)
	if app.JobTitle != "" {
		text = fmt.Sprintf("%s\n💼 %s", text, app.JobTitle)
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "HTML"
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("⚠️ Failed to send telegram notification: %v", err)
	}
}
