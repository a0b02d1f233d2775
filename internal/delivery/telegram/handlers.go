package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avolkov/polyalerts/internal/domain"
	"github.com/avolkov/polyalerts/internal/usecase"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Handlers struct {
	userUC  *usecase.UserUsecase
	alertUC *usecase.AlertUsecase
	dialog  *usecase.DialogManager
	logger  *zap.Logger
}

func NewHandlers(userUC *usecase.UserUsecase, alertUC *usecase.AlertUsecase, dialog *usecase.DialogManager, logger *zap.Logger) *Handlers {
	return &Handlers{userUC: userUC, alertUC: alertUC, dialog: dialog, logger: logger}
}

func (h *Handlers) HandleUpdate(ctx context.Context, api *tgbotapi.BotAPI, update tgbotapi.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	if update.Message.IsCommand() {
		h.handleCommand(ctx, api, update)
		return
	}
	h.handleText(ctx, api, update)
}

// handleText routes plain messages into the /add dialog. Messages from
// users with no open session are ignored.
func (h *Handlers) handleText(ctx context.Context, api *tgbotapi.BotAPI, update tgbotapi.Update) {
	userID := update.Message.From.ID
	reply, handled := h.dialog.HandleMessage(ctx, userID, update.Message.Text)
	if !handled {
		return
	}
	h.reply(api, update.Message.Chat.ID, reply)
}

func (h *Handlers) handleCommand(ctx context.Context, api *tgbotapi.BotAPI, update tgbotapi.Update) {
	command := update.Message.Command()
	args := update.Message.CommandArguments()
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID
	username := update.Message.From.UserName

	h.logger.Info(
		"telegram command received",
		zap.Int64("chat_id", chatID),
		zap.Int64("telegram_user_id", userID),
		zap.String("username", username),
		zap.String("command", command),
	)

	switch command {
	case "start":
		_, err := h.userUC.StartOrGetUser(ctx, userID, username)
		if err != nil {
			h.logger.Warn("start command failed", zap.Int64("telegram_user_id", userID), zap.Error(err))
			h.reply(api, chatID, "Failed to register. Please try again.")
			return
		}
		h.reply(api, chatID, "Hi! This bot alerts you when a Polymarket price crosses your target.\n\n"+HelpText)
	case "help":
		h.reply(api, chatID, HelpText)
	case "add":
		// Implicit registration keeps the flow short for first-time users.
		if _, err := h.userUC.StartOrGetUser(ctx, userID, username); err != nil {
			h.logger.Warn("add command registration failed", zap.Int64("telegram_user_id", userID), zap.Error(err))
			h.reply(api, chatID, "Failed to register. Please try again.")
			return
		}
		h.reply(api, chatID, h.dialog.Begin(userID))
	case "cancel":
		if h.dialog.Cancel(userID) {
			h.reply(api, chatID, "Cancelled.")
			return
		}
		h.reply(api, chatID, "Nothing to cancel.")
	case "list":
		alerts, err := h.alertUC.ListAlerts(ctx, userID)
		if err != nil {
			h.logger.Warn("list command failed", zap.Int64("telegram_user_id", userID), zap.Error(err))
			h.reply(api, chatID, h.errorMessage(err))
			return
		}
		if len(alerts) == 0 {
			h.reply(api, chatID, "No active alerts yet. Use /add to create one.")
			return
		}
		h.reply(api, chatID, formatAlertList(alerts))
	case "delete":
		alertID, err := ParseAlertID(args)
		if err != nil {
			h.reply(api, chatID, "Usage: /delete <alert_id>")
			return
		}
		if err := h.alertUC.DeleteAlert(ctx, userID, alertID); err != nil {
			h.logger.Warn("delete command failed", zap.Int64("telegram_user_id", userID), zap.Uint("alert_id", alertID), zap.Error(err))
			h.reply(api, chatID, h.errorMessage(err))
			return
		}
		h.reply(api, chatID, fmt.Sprintf("Alert #%d deactivated.", alertID))
	default:
		h.reply(api, chatID, "Unknown command.\n\n"+HelpText)
	}
}

func (h *Handlers) errorMessage(err error) string {
	switch {
	case errors.Is(err, usecase.ErrUserNotRegistered):
		return "Please /start to register first."
	case errors.Is(err, usecase.ErrAlertNotFound):
		return "No active alert with that ID (already triggered, deleted, or not yours)."
	}
	h.logger.Warn("unhandled error", zap.Error(err))
	return "Something went wrong. Please try again."
}

func formatAlertList(alerts []domain.Alert) string {
	var builder strings.Builder
	builder.WriteString("Your active alerts:\n\n")
	for _, alert := range alerts {
		builder.WriteString(fmt.Sprintf(
			"#%d %s\nOutcome: %s\nTriggers when price %s %sc\n/delete %d\n\n",
			alert.ID, alert.MarketRef, alert.Outcome, alert.Direction, alert.TargetCents, alert.ID,
		))
	}
	return strings.TrimRight(builder.String(), "\n")
}

func (h *Handlers) reply(api *tgbotapi.BotAPI, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := api.Send(msg); err != nil {
		h.logger.Warn("failed to send message", zap.Error(err))
	}
}
