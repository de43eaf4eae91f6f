// Package bot is the Telegram front end: it runs the long-poll update loop,
// walks users through the wallet-request dialog, exposes the admin control
// menu, and hands validated requests to the batch runner.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/wallet-refbot/internal/admin"
	"github.com/wallet-refbot/internal/job"
	"github.com/wallet-refbot/internal/logging"
	"github.com/wallet-refbot/internal/types"
)

// Config holds the bot's collaborators and tunables
type Config struct {
	API             *tgbotapi.BotAPI
	Control         *admin.Control
	Runner          *job.BatchRunner
	AdminID         int64
	UpdateTimeout   int
	ConversationTTL time.Duration
	ReferralCodeLen int
}

// Bot routes Telegram updates to the dialog, admin, and batch machinery
type Bot struct {
	api             *tgbotapi.BotAPI
	control         *admin.Control
	runner          *job.BatchRunner
	adminID         int64
	updateTimeout   int
	refCodeLen      int
	convs           *conversations
	logger          *logging.Logger

	mu         sync.Mutex
	adminStage adminStage

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates the bot front end
func New(cfg *Config) (*Bot, error) {
	if cfg.API == nil {
		return nil, fmt.Errorf("telegram api cannot be nil")
	}
	if cfg.Control == nil {
		return nil, fmt.Errorf("admin control cannot be nil")
	}
	if cfg.Runner == nil {
		return nil, fmt.Errorf("batch runner cannot be nil")
	}
	if cfg.AdminID == 0 {
		return nil, fmt.Errorf("admin id cannot be zero")
	}

	updateTimeout := cfg.UpdateTimeout
	if updateTimeout <= 0 {
		updateTimeout = 60
	}
	refCodeLen := cfg.ReferralCodeLen
	if refCodeLen <= 0 {
		refCodeLen = 15
	}

	logger := logging.GetGlobalLogger().WithField("component", "bot")

	return &Bot{
		api:           cfg.API,
		control:       cfg.Control,
		runner:        cfg.Runner,
		adminID:       cfg.AdminID,
		updateTimeout: updateTimeout,
		refCodeLen:    refCodeLen,
		convs:         newConversations(cfg.ConversationTTL),
		logger:        logger,
		adminStage:    adminIdle,
		stopCh:        make(chan struct{}),
	}, nil
}

// Run drives the long-poll update loop until Stop is called or the context
// ends. Each update is dispatched inline; batches run on their own
// goroutines so the loop stays responsive.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.updateTimeout

	updates := b.api.GetUpdatesChan(u)
	b.logger.WithField("username", b.api.Self.UserName).Info("Bot update loop started")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Bot update loop stopping")
			return
		case <-b.stopCh:
			b.logger.Info("Bot update loop stopping")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.dispatch(ctx, update)
		}
	}
}

// Stop halts polling and waits briefly for in-flight batches
func (b *Bot) Stop() {
	b.stopOnce.Do(func() { close(b.stopCh) })
	b.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.logger.Info("Bot stopped")
	case <-time.After(10 * time.Second):
		b.logger.Warn("Bot shutdown timed out with batches still running")
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.InlineQuery != nil:
		b.handleInlineQuery(update.InlineQuery)
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleInlineQuery(query *tgbotapi.InlineQuery) {
	article := tgbotapi.NewInlineQueryResultArticle(
		"1", "Wallet Creation Bot",
		"Use /start in a private chat with me to create wallets.")
	answer := tgbotapi.InlineConfig{
		InlineQueryID: query.ID,
		Results:       []interface{}{article},
	}
	if _, err := b.api.Request(answer); err != nil {
		b.logger.WithError(err).Warn("Failed to answer inline query")
	}
}

func (b *Bot) handleCallbackQuery(cq *tgbotapi.CallbackQuery) {
	if cq.From.ID != b.adminID {
		callback := tgbotapi.NewCallback(cq.ID, "You are not authorized to perform this action.")
		if _, err := b.api.Request(callback); err != nil {
			b.logger.WithError(err).Warn("Failed to answer callback query")
		}
		return
	}

	b.handleAdminCallback(cq.Data)

	callback := tgbotapi.NewCallback(cq.ID, "")
	if _, err := b.api.Request(callback); err != nil {
		b.logger.WithError(err).Warn("Failed to answer callback query")
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := msg.Text

	if chatID == b.adminID {
		if text == "/admin" {
			b.setAdminStage(adminIdle)
			reply := tgbotapi.NewMessage(chatID, "Admin Menu:")
			reply.ReplyMarkup = adminMenu()
			if _, err := b.api.Send(reply); err != nil {
				b.logger.WithError(err).Warn("Failed to send admin menu")
			}
			return
		}
		if stage := b.currentAdminStage(); stage != adminIdle {
			b.handleAdminInput(stage, text)
			return
		}
	}

	if b.control.IsBlocked(chatID) {
		b.send(chatID, "You are blocked 🚫.")
		return
	}

	if text == "/start" {
		b.handleStart(chatID)
		return
	}

	conv := b.convs.get(chatID)
	if conv == nil {
		return
	}

	switch conv.stage {
	case stageAwaitingCount:
		b.handleCountInput(chatID, text)
	case stageAwaitingRef:
		b.handleReferralInput(ctx, chatID, conv.count, text)
	}
}

func (b *Bot) handleStart(chatID int64) {
	if _, err := b.control.RememberRequester(chatID); err != nil {
		b.logger.WithError(err).Warn("Failed to persist user list")
	}
	b.send(chatID, b.control.Decorate(b.control.Welcome()))
	b.send(chatID, fmt.Sprintf("Please enter the number of wallets you want to create (max %d per day):", b.control.MaxPerDay()))
	b.convs.begin(chatID)
}

func (b *Bot) handleCountInput(chatID int64, text string) {
	maxPerDay := b.control.MaxPerDay()
	count, ok := parseCount(text, maxPerDay)
	if !ok {
		b.send(chatID, fmt.Sprintf("Please enter a valid number (1-%d).", maxPerDay))
		return
	}
	b.convs.advance(chatID, count)
	b.send(chatID, fmt.Sprintf("Please enter your referral code (exactly %d letters):", b.refCodeLen))
}

// parseCount validates the requested wallet count against the daily maximum
func parseCount(text string, max int) (int, bool) {
	count, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || count <= 0 || count > max {
		return 0, false
	}
	return count, true
}

func (b *Bot) handleReferralInput(ctx context.Context, chatID int64, count int, text string) {
	req, err := job.NewJobRequest(chatID, count, text, b.control.MaxPerDay(), b.refCodeLen)
	if err != nil {
		b.send(chatID, fmt.Sprintf("Referral code must be exactly %d letters. Please try again.", b.refCodeLen))
		return
	}
	b.convs.end(chatID)

	b.send(chatID, fmt.Sprintf("Starting wallet creation for %d wallet(s) with referral code %q. Please wait...", req.WalletCount, req.ReferralCode))
	b.startBatch(ctx, req)
}

// startBatch hands the request to the runner on its own goroutine. A panic
// in one batch must not take down the update loop.
func (b *Bot) startBatch(ctx context.Context, req types.JobRequest) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				b.logger.WithFields(map[string]interface{}{
					"jobId": req.ID,
					"panic": fmt.Sprintf("%v", r),
				}).Error("Batch panicked")
			}
		}()
		b.runner.Run(logging.WithLogger(ctx, b.logger), req)
	}()
}

func (b *Bot) currentAdminStage() adminStage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.adminStage
}

func (b *Bot) setAdminStage(s adminStage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.adminStage = s
}

func (b *Bot) send(chatID int64, text string) error {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.WithError(err).WithField("chatId", chatID).Warn("Failed to send message")
		return err
	}
	return nil
}

func (b *Bot) sendMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.logger.WithError(err).WithField("chatId", chatID).Warn("Failed to send message")
		return err
	}
	return nil
}
