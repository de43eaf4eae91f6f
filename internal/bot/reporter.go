package bot

import (
	"fmt"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/wallet-refbot/internal/admin"
	"github.com/wallet-refbot/internal/job"
	"github.com/wallet-refbot/internal/logging"
)

// reporter streams batch progress back to the requesting chat. Progress
// lines carry the configured suffix; success banners use a Markdown code
// block header followed by the caption-and-suffix decorated body.
type reporter struct {
	api     *tgbotapi.BotAPI
	control *admin.Control
	logger  *logging.Logger
}

// NewReporter builds the Telegram-backed progress sink batch runners
// report through
func NewReporter(api *tgbotapi.BotAPI, control *admin.Control) job.Reporter {
	return &reporter{
		api:     api,
		control: control,
		logger:  logging.GetGlobalLogger().WithField("component", "reporter"),
	}
}

func (r *reporter) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := r.api.Send(msg); err != nil {
		r.logger.WithError(err).WithField("chatId", chatID).Warn("Failed to send message")
	}
}

func (r *reporter) sendHeader(chatID int64, header string) {
	msg := tgbotapi.NewMessage(chatID, "```\n"+header+"\n```")
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := r.api.Send(msg); err != nil {
		r.logger.WithError(err).WithField("chatId", chatID).Warn("Failed to send header")
	}
}

func (r *reporter) Progress(requesterID int64, text string) {
	if suffix := r.control.Suffix(); suffix != "" {
		text += "\n" + suffix
	}
	r.send(requesterID, text)
}

func (r *reporter) Success(requesterID int64, header, body string) {
	r.sendHeader(requesterID, header)
	r.send(requesterID, r.control.Decorate(body))
}

// DeliverLedger uploads the wallet file and pins it in the chat. A missing
// file means the batch produced nothing; the requester already has the
// progress log, so only a short note is sent.
func (r *reporter) DeliverLedger(requesterID int64, path string) {
	if _, err := os.Stat(path); err != nil {
		r.Progress(requesterID, fmt.Sprintf("Error sending wallet file: %v", err))
		return
	}

	doc := tgbotapi.NewDocument(requesterID, tgbotapi.FilePath(path))
	doc.Caption = "@" + r.api.Self.UserName
	sent, err := r.api.Send(doc)
	if err != nil {
		r.logger.WithError(err).WithField("chatId", requesterID).Warn("Failed to send ledger file")
		r.Progress(requesterID, fmt.Sprintf("Error sending wallet file: %v", err))
		return
	}

	pin := tgbotapi.PinChatMessageConfig{
		ChatID:    requesterID,
		MessageID: sent.MessageID,
	}
	if _, err := r.api.Request(pin); err != nil {
		r.logger.WithError(err).WithField("chatId", requesterID).Warn("Failed to pin ledger message")
	}
}
