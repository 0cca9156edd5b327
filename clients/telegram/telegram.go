package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"whalewatch/clients/notifier"
	"whalewatch/config"
)

const sendRetries = 2

// TelegramClient sends bet alerts to a Telegram chat.
// Implements notifier.Notifier.
type TelegramClient struct {
	logger *zap.Logger
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramClient(logger *zap.Logger, cfg *config.Config) *TelegramClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	token := cfg.Telegram.BotToken
	if token == "" {
		logger.Warn("TELEGRAM_BOT_TOKEN not set, Telegram alerts disabled")
		return &TelegramClient{logger: logger}
	}

	chatID, err := strconv.ParseInt(strings.TrimSpace(cfg.Telegram.ChatID), 10, 64)
	if err != nil {
		logger.Warn("TELEGRAM_CHAT_ID invalid, Telegram alerts disabled", zap.Error(err))
		return &TelegramClient{logger: logger}
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("failed to create telegram bot", zap.Error(err))
		return &TelegramClient{logger: logger, chatID: chatID}
	}

	logger.Info("telegram bot initialized", zap.Int64("chatID", chatID))

	return &TelegramClient{
		logger: logger,
		bot:    bot,
		chatID: chatID,
	}
}

// SendBetAlert sends a Markdown-formatted bet alert, retrying transient
// failures a bounded number of times.
// Implements notifier.Notifier.
func (tc *TelegramClient) SendBetAlert(alert notifier.BetAlert) error {
	if tc.bot == nil || tc.chatID == 0 {
		tc.logger.Warn("telegram not configured, skipping alert")
		return nil
	}

	msg := tgbotapi.NewMessage(tc.chatID, tc.buildAlertMessage(alert))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	var lastErr error
	for attempt := 0; attempt <= sendRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
		}
		if _, err := tc.bot.Send(msg); err != nil {
			lastErr = err
			continue
		}
		tc.logger.Info("sent telegram bet alert",
			zap.String("wallet", alert.Wallet),
			zap.Float64("sizeUSD", alert.SizeUSD),
		)
		return nil
	}
	return fmt.Errorf("send telegram message: %w", lastErr)
}

func (tc *TelegramClient) buildAlertMessage(alert notifier.BetAlert) string {
	var sb strings.Builder

	sb.WriteString("*🐋 Smart Money Bet*\n\n")

	if alert.MarketURL != "" {
		sb.WriteString(fmt.Sprintf("*Market:* [%s](%s)\n", escapeMarkdown(alert.MarketQuestion), alert.MarketURL))
	} else {
		sb.WriteString(fmt.Sprintf("*Market:* %s\n", escapeMarkdown(alert.MarketQuestion)))
	}

	walletDisplay := shortAddress(alert.Wallet)
	if alert.Label != "" {
		walletDisplay = fmt.Sprintf("%s (%s)", alert.Label, walletDisplay)
	}
	sb.WriteString(fmt.Sprintf("*Wallet:* %s\n", escapeMarkdown(walletDisplay)))

	sideEmoji := "🟢"
	if alert.Outcome == "NO" {
		sideEmoji = "🔴"
	}
	sb.WriteString(fmt.Sprintf("*Side:* %s %s\n", sideEmoji, alert.Outcome))
	sb.WriteString(fmt.Sprintf("*Bet:* $%.2f @ $%.3f\n", alert.SizeUSD, alert.Price))

	if alert.WinRate > 0 {
		sb.WriteString(fmt.Sprintf("*Win Rate:* %.1f%% over %d trades\n", alert.WinRate*100, alert.TotalTrades))
	}

	return sb.String()
}

// Close is a no-op; the bot API holds no long-lived connection.
// Implements notifier.Notifier.
func (tc *TelegramClient) Close() {}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return replacer.Replace(s)
}

func shortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
