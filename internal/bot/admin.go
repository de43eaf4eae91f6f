package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// adminStage tracks what input the admin menu is waiting for
type adminStage string

const (
	adminIdle      adminStage = "idle"
	adminBlock     adminStage = "block"
	adminUnblock   adminStage = "unblock"
	adminCancel    adminStage = "cancel"
	adminWelcome   adminStage = "change_welcome"
	adminSuffix    adminStage = "set_suffix"
	adminMaxLimit  adminStage = "change_max_limit"
	adminCaption   adminStage = "set_global_caption"
	adminBroadcast adminStage = "broadcast"
)

func adminMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚫 Block User", "block_user"),
			tgbotapi.NewInlineKeyboardButtonData("✅ Unblock User", "unblock_user"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel User Request", "cancel_request"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Show Stats", "show_stats"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Change Welcome Message", "change_welcome"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Set Suffix", "set_suffix"),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Remove Suffix", "remove_suffix"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔧 Change Max Limit", "change_max_limit"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🖼 Set Global Caption", "set_global_caption"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📢 Broadcast", "broadcast"),
		),
	)
}

// handleAdminCallback reacts to admin menu buttons. Most buttons arm the
// stage machine and prompt for the next text input; stats and suffix
// removal complete immediately.
func (b *Bot) handleAdminCallback(action string) {
	switch action {
	case "block_user":
		b.setAdminStage(adminBlock)
		b.send(b.adminID, "Please send the chat ID of the user to block:")
	case "unblock_user":
		b.setAdminStage(adminUnblock)
		b.send(b.adminID, "Please send the chat ID of the user to unblock:")
	case "cancel_request":
		b.setAdminStage(adminCancel)
		b.send(b.adminID, "Please send the chat ID of the user whose request you want to cancel:")
	case "show_stats":
		stats := b.control.Stats()
		text := fmt.Sprintf("*Stats:*\nTotal Users: %d\nTotal Wallet Requests: %d\nMax Limit: %d",
			stats.TotalUsers, stats.TotalWalletRequests, b.control.MaxPerDay())
		b.sendMarkdown(b.adminID, text)
	case "change_welcome":
		b.setAdminStage(adminWelcome)
		b.send(b.adminID, "Please send the new welcome message:")
	case "set_suffix":
		b.setAdminStage(adminSuffix)
		b.send(b.adminID, "Please send the new suffix text:")
	case "remove_suffix":
		if err := b.control.SetSuffix(""); err != nil {
			b.logger.WithError(err).Warn("Failed to clear suffix")
		}
		b.send(b.adminID, "Suffix removed.")
	case "change_max_limit":
		b.setAdminStage(adminMaxLimit)
		b.send(b.adminID, "Please send the new maximum wallet creation limit:")
	case "set_global_caption":
		b.setAdminStage(adminCaption)
		b.send(b.adminID, "Please send the new global caption text (this will be appended to all messages):")
	case "broadcast":
		b.setAdminStage(adminBroadcast)
		b.send(b.adminID, "Please send the message to broadcast to all users:")
	}
}

// handleAdminInput consumes the text the stage machine is waiting for and
// returns to idle
func (b *Bot) handleAdminInput(stage adminStage, text string) {
	defer b.setAdminStage(adminIdle)

	switch stage {
	case adminBlock:
		targetID, err := parseChatID(text)
		if err != nil {
			b.send(b.adminID, "Invalid chat ID. Please send a valid number.")
			return
		}
		if b.control.IsBlocked(targetID) {
			b.send(b.adminID, fmt.Sprintf("User %d is already blocked.", targetID))
			return
		}
		if err := b.control.Block(targetID); err != nil {
			b.logger.WithError(err).Warn("Failed to persist block list")
		}
		b.send(b.adminID, fmt.Sprintf("User %d has been blocked 🚫.", targetID))

	case adminUnblock:
		targetID, err := parseChatID(text)
		if err != nil {
			b.send(b.adminID, "Invalid chat ID. Please send a valid number.")
			return
		}
		if !b.control.IsBlocked(targetID) {
			b.send(b.adminID, fmt.Sprintf("User %d is not in the blocked list.", targetID))
			return
		}
		if err := b.control.Unblock(targetID); err != nil {
			b.logger.WithError(err).Warn("Failed to persist block list")
		}
		b.send(b.adminID, fmt.Sprintf("User %d has been unblocked.", targetID))

	case adminCancel:
		targetID, err := parseChatID(text)
		if err != nil {
			b.send(b.adminID, "Invalid chat ID. Please send a valid number.")
			return
		}
		b.control.Cancel(targetID)
		b.send(b.adminID, fmt.Sprintf("Wallet creation request for user %d has been cancelled.", targetID))
		b.send(targetID, "Your wallet creation request has been cancelled by the admin.")

	case adminWelcome:
		if err := b.control.SetWelcome(text); err != nil {
			b.logger.WithError(err).Warn("Failed to persist welcome message")
		}
		b.send(b.adminID, "Welcome message updated.")

	case adminSuffix:
		if err := b.control.SetSuffix(text); err != nil {
			b.logger.WithError(err).Warn("Failed to persist suffix")
		}
		b.send(b.adminID, "Suffix updated.")

	case adminMaxLimit:
		limit, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil || limit <= 0 {
			b.send(b.adminID, "Please provide a valid positive number for max limit.")
			return
		}
		if err := b.control.SetMaxPerDay(limit); err != nil {
			b.logger.WithError(err).Warn("Failed to persist max limit")
		}
		b.send(b.adminID, fmt.Sprintf("Max wallet creation limit updated to %d.", limit))

	case adminCaption:
		if err := b.control.SetCaption(text); err != nil {
			b.logger.WithError(err).Warn("Failed to persist global caption")
		}
		b.send(b.adminID, "Global caption updated.")

	case adminBroadcast:
		delivered := b.control.Broadcast(func(id int64) error {
			if err := b.sendMarkdown(id, "```\nBroadcast\n```"); err != nil {
				return err
			}
			return b.send(id, text)
		})
		b.logger.WithField("delivered", delivered).Info("Broadcast sent")
		b.send(b.adminID, "Broadcast message sent to all users.")
	}
}

func parseChatID(text string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(text), 10, 64)
}
