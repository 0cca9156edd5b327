package clients

import (
	"go.uber.org/zap"

	"whalewatch/clients/discord"
	"whalewatch/clients/nansen"
	"whalewatch/clients/notifier"
	"whalewatch/clients/polymarketapi"
	"whalewatch/clients/telegram"
	"whalewatch/config"
)

type Clients struct {
	Logger *zap.Logger

	Discord    *discord.DiscordClient
	Telegram   *telegram.TelegramClient
	Notifier   notifier.Notifier // combined notifier for all channels
	Polymarket *polymarketapi.PolymarketApiClient
	Nansen     *nansen.Client
}

func NewClients(logger *zap.Logger, cfg *config.Config) *Clients {
	discordClient := discord.NewDiscordClient(logger, cfg)
	telegramClient := telegram.NewTelegramClient(logger, cfg)

	return &Clients{
		Logger:     logger,
		Discord:    discordClient,
		Telegram:   telegramClient,
		Notifier:   notifier.NewMultiNotifier(logger, discordClient, telegramClient),
		Polymarket: polymarketapi.NewPolymarketApiClient(logger, cfg),
		Nansen:     nansen.NewClient(logger, cfg),
	}
}

func (c *Clients) Close() {
	if c.Notifier != nil {
		c.Notifier.Close()
	}
}
