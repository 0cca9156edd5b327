package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"whalewatch/clients/notifier"
	"whalewatch/config"
)

// DiscordClient sends bet alerts to a Discord channel.
// Implements notifier.Notifier.
type DiscordClient struct {
	logger    *zap.Logger
	session   *discordgo.Session
	channelID string
}

func NewDiscordClient(logger *zap.Logger, cfg *config.Config) *DiscordClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	channelID := cfg.Discord.ChannelID

	token := cfg.Discord.BotToken
	if token == "" {
		logger.Warn("DISCORD_BOT_TOKEN not set, Discord alerts disabled")
		return &DiscordClient{
			logger:    logger,
			channelID: channelID,
		}
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		logger.Error("failed to create discord session", zap.Error(err))
		return &DiscordClient{
			logger:    logger,
			channelID: channelID,
		}
	}

	logger.Info("discord bot initialized", zap.String("channelID", channelID))

	return &DiscordClient{
		logger:    logger,
		session:   session,
		channelID: channelID,
	}
}

// SendBetAlert sends a rich embedded bet alert.
// Implements notifier.Notifier.
func (dc *DiscordClient) SendBetAlert(alert notifier.BetAlert) error {
	if dc.session == nil || dc.channelID == "" {
		dc.logger.Warn("discord not configured, skipping alert")
		return nil
	}

	embed := dc.buildBetEmbed(alert)

	if _, err := dc.session.ChannelMessageSendEmbed(dc.channelID, embed); err != nil {
		return fmt.Errorf("send discord embed: %w", err)
	}

	dc.logger.Info("sent discord bet alert",
		zap.String("wallet", alert.Wallet),
		zap.Float64("sizeUSD", alert.SizeUSD),
	)
	return nil
}

func (dc *DiscordClient) buildBetEmbed(alert notifier.BetAlert) *discordgo.MessageEmbed {
	color := 0x2ECC71 // green for YES
	sideEmoji := "🟢"
	if alert.Outcome == "NO" {
		color = 0xE74C3C
		sideEmoji = "🔴"
	}

	walletDisplay := alert.Label
	if walletDisplay == "" {
		walletDisplay = shortAddress(alert.Wallet)
	} else {
		walletDisplay = fmt.Sprintf("%s (%s)", alert.Label, shortAddress(alert.Wallet))
	}

	winRateStr := "N/A"
	if alert.WinRate > 0 {
		winRateStr = fmt.Sprintf("%.1f%%", alert.WinRate*100)
	}

	fields := []*discordgo.MessageEmbedField{
		{
			Name:   "Wallet",
			Value:  walletDisplay,
			Inline: true,
		},
		{
			Name:   "Side",
			Value:  fmt.Sprintf("%s %s", sideEmoji, alert.Outcome),
			Inline: true,
		},
		{
			Name:   "Bet",
			Value:  fmt.Sprintf("$%.2f @ $%.3f", alert.SizeUSD, alert.Price),
			Inline: true,
		},
		{
			Name:   "Win Rate (resolved)",
			Value:  winRateStr,
			Inline: true,
		},
		{
			Name:   "Total Trades",
			Value:  fmt.Sprintf("%d", alert.TotalTrades),
			Inline: true,
		},
	}

	description := fmt.Sprintf("**%s**", alert.MarketQuestion)
	if alert.MarketURL != "" {
		description = fmt.Sprintf("**[%s](%s)**", alert.MarketQuestion, alert.MarketURL)
	}

	return &discordgo.MessageEmbed{
		Title:       "🐋 Smart Money Bet",
		Description: description,
		Color:       color,
		Fields:      fields,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

// Close closes the underlying session.
// Implements notifier.Notifier.
func (dc *DiscordClient) Close() {
	if dc.session == nil {
		return
	}
	if err := dc.session.Close(); err != nil {
		dc.logger.Error("failed to close discord session", zap.Error(err))
	}
}

func shortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
