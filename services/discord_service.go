package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"shmboard/config"
	"shmboard/models"
	"shmboard/utils"
)

const commandPrefix = "!shm"

type DiscordBotService struct {
	session   *discordgo.Session
	channelID string
	botID     string
	enabled   bool

	cfg    *config.Config
	source SnapshotSource
	calc   *CalculatorService
	logger *zap.Logger
}

// NewDiscordBotService connects when a token and channel are configured.
// Otherwise it returns a disabled service whose notifications are no-ops.
func NewDiscordBotService(cfg *config.Config, source SnapshotSource, calc *CalculatorService, logger *zap.Logger) (*DiscordBotService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &DiscordBotService{
		channelID: cfg.Discord.ChannelID,
		cfg:       cfg,
		source:    source,
		calc:      calc,
		logger:    logger,
	}

	if cfg.Discord.Token == "" || cfg.Discord.ChannelID == "" {
		logger.Info("Discord token or channel not provided, Discord notifications disabled")
		return d, nil
	}

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	user, err := session.User("@me")
	if err != nil {
		return nil, fmt.Errorf("failed to get bot user: %w", err)
	}

	d.session = session
	d.botID = user.ID
	d.enabled = true

	session.AddHandler(d.messageHandler)

	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("failed to open Discord connection: %w", err)
	}

	logger.Info("Discord bot connected", zap.String("bot_id", user.ID), zap.String("channel", cfg.Discord.ChannelID))
	return d, nil
}

func (d *DiscordBotService) Enabled() bool {
	return d != nil && d.enabled
}

func (d *DiscordBotService) Close() {
	if d.Enabled() && d.session != nil {
		d.logger.Info("closing Discord bot connection")
		d.session.Close()
	}
}

func (d *DiscordBotService) messageHandler(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == d.botID || m.ChannelID != d.channelID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	reply, ok := d.HandleCommand(ctx, m.Content)
	if !ok {
		return
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		d.logger.Warn("failed to answer Discord command", zap.Error(err))
	}
}

// HandleCommand answers one "!shm" message. ok is false for messages that are not commands.
func (d *DiscordBotService) HandleCommand(ctx context.Context, content string) (reply string, ok bool) {
	args := strings.Fields(content)
	if len(args) == 0 || args[0] != commandPrefix {
		return "", false
	}
	if len(args) < 2 {
		return helpText(), true
	}

	switch args[1] {
	case "ping":
		return "🏓 Pong! Shardeum reward bot is online!", true
	case "help":
		return helpText(), true
	case "price":
		snap := d.source.Snapshot(ctx)
		if snap.SpotPrice.IsZero() {
			return "SHM price is currently unavailable.", true
		}
		return "**SHM price:** " + utils.FormatSpotPrices(snap.SpotPrice), true
	case "network":
		return d.networkText(d.source.Snapshot(ctx)), true
	case "estimate":
		return d.estimateText(ctx, args[2:]), true
	default:
		return fmt.Sprintf("Unknown command: `%s`. Try `%s help`", args[1], commandPrefix), true
	}
}

func helpText() string {
	return "**Shardeum Reward Bot Commands:**\n" +
		"`!shm ping` - Check if bot is online\n" +
		"`!shm help` - Show this help message\n" +
		"`!shm price` - Current SHM price\n" +
		"`!shm network` - Node counts, activation probability and reward\n" +
		"`!shm estimate <servers> [stake]` - Projected rewards in SHM"
}

func (d *DiscordBotService) networkText(snap models.NetworkSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Shardeum network** (%s)\n", snap.Source)
	fmt.Fprintf(&b, "Nodes: %d total, %d community, %d standby\n", snap.TotalNodes, snap.CommunityNodes, snap.StandbyNodes)
	fmt.Fprintf(&b, "Daily activation probability: %s\n", utils.FormatProbability(snap.ActivationProbability))
	fmt.Fprintf(&b, "Reward per activation: %s", utils.FormatAmount(models.CurrencySHM, snap.RewardPerActivation))
	if !snap.SpotPrice.IsZero() {
		fmt.Fprintf(&b, "\nPrice: %s", utils.FormatSpotPrices(snap.SpotPrice))
	}
	return b.String()
}

func (d *DiscordBotService) estimateText(ctx context.Context, args []string) string {
	usage := "Usage: `!shm estimate <servers> [stake]`"
	if len(args) < 1 {
		return usage
	}
	servers, err := strconv.Atoi(args[0])
	if err != nil || servers < 1 {
		return usage
	}
	stake := models.MinStakePerServer
	if len(args) > 1 {
		if stake, err = strconv.ParseFloat(args[1], 64); err != nil {
			return usage
		}
	}

	res := d.calc.Calculate(ctx, models.EstimatorInput{
		NumServers:      servers,
		StakePerServer:  stake,
		NodeCurrency:    models.CurrencySHM,
		RunningCurrency: models.CurrencySHM,
		ProbabilityMode: models.ProbabilityNetwork,
	})
	out := res.Output

	var b strings.Builder
	fmt.Fprintf(&b, "**Estimate for %d server(s), %.0f SHM stake each** (%s)\n", res.Input.NumServers, res.Input.StakePerServer, res.Network.Source)
	fmt.Fprintf(&b, "Daily: %s\n", utils.FormatAmount(models.CurrencySHM, out.DailyReward))
	fmt.Fprintf(&b, "Weekly: %s\n", utils.FormatAmount(models.CurrencySHM, out.WeeklyReward))
	fmt.Fprintf(&b, "Monthly: %s\n", utils.FormatAmount(models.CurrencySHM, out.MonthlyReward))
	fmt.Fprintf(&b, "APY: %s", utils.FormatPercent(out.APY))
	return b.String()
}

// NotifyRewardChange posts a reward change embed. Disabled bots do nothing.
func (d *DiscordBotService) NotifyRewardChange(prev, curr models.NetworkSnapshot) error {
	if !d.Enabled() {
		return nil
	}

	if _, err := d.session.ChannelMessageSendEmbed(d.channelID, rewardChangeEmbed(prev, curr)); err != nil {
		return fmt.Errorf("failed to send Discord message: %w", err)
	}
	d.logger.Info("reward change sent to Discord")
	return nil
}

func rewardChangeEmbed(prev, curr models.NetworkSnapshot) *discordgo.MessageEmbed {
	color := 3066993 // green
	if curr.HourlyReward < prev.HourlyReward {
		color = 15158332 // red
	}

	change := "n/a"
	if prev.HourlyReward > 0 {
		change = fmt.Sprintf("%+.2f%%", (curr.HourlyReward-prev.HourlyReward)/prev.HourlyReward*100)
	}

	return &discordgo.MessageEmbed{
		Title:       "Shardeum node reward changed",
		Description: "The network reward per active hour has changed.",
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Previous", Value: utils.FormatAmount(models.CurrencySHM, prev.HourlyReward) + " / hour", Inline: true},
			{Name: "Current", Value: utils.FormatAmount(models.CurrencySHM, curr.HourlyReward) + " / hour", Inline: true},
			{Name: "Change", Value: change, Inline: true},
			{Name: "Per activation", Value: utils.FormatAmount(models.CurrencySHM, curr.RewardPerActivation), Inline: true},
			{Name: "Activation probability", Value: utils.FormatProbability(curr.ActivationProbability), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "shmboard",
		},
		Timestamp: curr.Timestamp.Format(time.RFC3339),
	}
}
