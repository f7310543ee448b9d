package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"licensegate/pkg/config"
	"licensegate/pkg/logger"
	"licensegate/pkg/redeem"
)

const defaultPrefix = "!redeem"

// Bot wires the redeemer to a Discord session. It registers a /redeem
// slash command and also honors a plain-message prefix command as a
// fallback for guilds that disable application commands.
type Bot struct {
	session  *discordgo.Session
	redeemer *Redeemer
	cfg      config.DiscordConfig
	prefix   string
	cmdID    string
}

type sessionGranter struct {
	s       *discordgo.Session
	guildID string
	roleID  string
}

func (g sessionGranter) GrantRole(_ context.Context, userID string) error {
	return g.s.GuildMemberRoleAdd(g.guildID, userID, g.roleID)
}

// New builds the bot but does not connect; call Start.
func New(cfg config.DiscordConfig, co *redeem.Coordinator, products []string) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	prefix := cfg.CommandPrefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	b := &Bot{
		session:  s,
		redeemer: NewRedeemer(co, products, sessionGranter{s: s, guildID: cfg.GuildID, roleID: cfg.RoleID}),
		cfg:      cfg,
		prefix:   prefix,
	}
	s.AddHandler(b.onInteraction)
	s.AddHandler(b.onMessage)
	return b, nil
}

// Start opens the gateway connection and registers the slash command.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}
	cmd, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.cfg.GuildID, &discordgo.ApplicationCommand{
		Name:        "redeem",
		Description: "Redeem a license key and receive your role",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "key",
				Description: "Your license key",
				Required:    true,
			},
		},
	})
	if err != nil {
		_ = b.session.Close()
		return fmt.Errorf("register command: %w", err)
	}
	b.cmdID = cmd.ID
	logger.Info("discord_bot_started", "guild", b.cfg.GuildID, "prefix", b.prefix)
	return nil
}

// Close deregisters the slash command and closes the session.
func (b *Bot) Close() error {
	if b.cmdID != "" {
		if err := b.session.ApplicationCommandDelete(b.session.State.User.ID, b.cfg.GuildID, b.cmdID); err != nil {
			logger.Warn("discord_command_cleanup_failed", "error", err)
		}
	}
	return b.session.Close()
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if data.Name != "redeem" {
		return
	}
	var key string
	for _, opt := range data.Options {
		if opt.Name == "key" {
			key = strings.TrimSpace(opt.StringValue())
		}
	}
	userID := interactionUserID(i)
	reply := b.redeemer.Redeem(context.Background(), key, userID)

	// license keys are secrets, keep the exchange ephemeral
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: reply.Message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		logger.Warn("discord_respond_failed", "error", err)
	}
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	content := strings.TrimSpace(m.Content)
	if !strings.HasPrefix(content, b.prefix) {
		return
	}
	key := strings.TrimSpace(strings.TrimPrefix(content, b.prefix))
	reply := b.redeemer.Redeem(context.Background(), key, m.Author.ID)
	if _, err := s.ChannelMessageSend(m.ChannelID, reply.Message); err != nil {
		logger.Warn("discord_send_failed", "error", err)
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
