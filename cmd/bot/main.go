// Package main provides the Telegram wallet bot entry point.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/wallet-refbot/internal/admin"
	"github.com/wallet-refbot/internal/airdrop"
	"github.com/wallet-refbot/internal/bot"
	"github.com/wallet-refbot/internal/config"
	"github.com/wallet-refbot/internal/job"
	"github.com/wallet-refbot/internal/logging"
	"github.com/wallet-refbot/internal/pace"
	"github.com/wallet-refbot/internal/store"
)

const defaultWelcome = "Welcome! This bot creates wallets and registers them with your referral code."

func main() {
	fmt.Println("Wallet Referral Bot")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// Credentials come from the environment when set, otherwise from stdin
	reader := bufio.NewReader(os.Stdin)
	token := cfg.Bot.Token
	if token == "" {
		token = prompt(reader, "Enter your Telegram Bot Token: ")
	}
	adminID := cfg.Bot.AdminID
	if adminID == 0 {
		raw := prompt(reader, "Enter your Admin Telegram ID: ")
		adminID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			logger.WithError(err).Fatal("Admin ID must be a number")
		}
	}

	// Initialize flat-file stores
	usage, err := store.NewUsageStore(cfg.Storage.DataDir)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load usage data")
	}
	settings := store.NewSettingsStore(cfg.Storage.DataDir)
	ledger := store.NewLedger(cfg.Storage.DataDir)

	control, err := admin.NewControl(settings, cfg.Batch.MaxPerDay, defaultWelcome)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load admin settings")
	}

	// Remote airdrop client
	client := airdrop.NewClient(airdrop.Config{
		BaseURL: cfg.Airdrop.BaseURL,
		Timeout: cfg.Airdrop.HTTPTimeout,
	})

	// Telegram transport
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Telegram")
	}
	logger.WithField("username", api.Self.UserName).Info("Telegram bot authorized")

	reporter := bot.NewReporter(api, control)

	runner, err := job.NewBatchRunner(&job.BatchRunnerConfig{
		Client:          client,
		Pacer:           pace.NewPacer(cfg.Batch.StepDelay, cfg.Batch.WalletDelay),
		Ledger:          ledger,
		Usage:           usage,
		Control:         control,
		Reporter:        reporter,
		ConflictRetries: cfg.Batch.ConflictRetries,
		RetryDelay:      cfg.Batch.WalletDelay,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to build batch runner")
	}

	frontend, err := bot.New(&bot.Config{
		API:             api,
		Control:         control,
		Runner:          runner,
		AdminID:         adminID,
		UpdateTimeout:   cfg.Bot.UpdateTimeout,
		ConversationTTL: cfg.Bot.ConversationTTL,
		ReferralCodeLen: cfg.Batch.ReferralCodeLen,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to build bot")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Info("Shutdown signal received")
		cancel()
		frontend.Stop()
	}()

	logger.Info("Telegram bot started")
	frontend.Run(ctx)
	logger.Info("Telegram bot exited")
}

func prompt(reader *bufio.Reader, question string) string {
	fmt.Print(question)
	line, err := reader.ReadString('\n')
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}
	return strings.TrimSpace(line)
}
