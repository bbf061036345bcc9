package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Discord sends alerts as rich embeds through a Discord bot session.
type Discord struct {
	log       *zap.Logger
	session   *discordgo.Session
	channelID string
}

var _ Notifier = (*Discord)(nil)

// NewDiscord creates a Discord notifier. An empty token disables it.
func NewDiscord(log *zap.Logger, token, channelID string) *Discord {
	if log == nil {
		log = zap.NewNop()
	}
	if token == "" {
		log.Warn("discord token not set, discord alerts disabled")
		return &Discord{log: log, channelID: channelID}
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		log.Error("failed to create discord session", zap.Error(err))
		return &Discord{log: log, channelID: channelID}
	}
	return &Discord{log: log, session: session, channelID: channelID}
}

// Send posts the alert embed. A disabled notifier is a no-op.
func (d *Discord) Send(_ context.Context, n AlertNotification) error {
	if d.session == nil || d.channelID == "" {
		return nil
	}

	_, err := d.session.ChannelMessageSendEmbed(d.channelID, buildEmbed(n))
	if err != nil {
		return fmt.Errorf("send discord embed: %w", err)
	}

	d.log.Info("sent discord alert",
		zap.String("wallet", shortAddress(n.Wallet)),
		zap.String("market", n.Question))
	return nil
}

func buildEmbed(n AlertNotification) *discordgo.MessageEmbed {
	color := 0xE74C3C
	if n.Confidence < 50 {
		color = 0xF39C12
	}

	return &discordgo.MessageEmbed{
		Title:       "🚨 Possible Informed Trading",
		Description: n.Question,
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Confidence", Value: fmt.Sprintf("%d/100", n.Confidence), Inline: true},
			{Name: "Sensitivity", Value: n.Sensitivity, Inline: true},
			{Name: "Outcome", Value: n.Outcome, Inline: true},
			{Name: "Price", Value: fmt.Sprintf("%.1f¢", n.Price*100), Inline: true},
			{Name: "Trade Size", Value: fmt.Sprintf("$%.2f", n.SizeUSD), Inline: true},
			{Name: "Wallet", Value: shortAddress(n.Wallet), Inline: true},
			{Name: "Signals", Value: strings.Join(n.Signals, ", ")},
		},
	}
}
