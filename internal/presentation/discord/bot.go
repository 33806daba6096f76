// Package discordpresentation connects the bot to the Discord gateway and
// turns interactions into calls on the application layer.
package discordpresentation

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/sellauth-tools/stockbot/internal/observability"
)

// Bot owns the gateway session.
type Bot struct {
	session *discordgo.Session
	router  *Router
	guildID string
	log     observability.Logger

	// ctx lives as long as the process; interaction handlers derive from it
	// so shutdown cancels in-flight API calls.
	ctx context.Context
}

// NewBot prepares a session for token. guildID limits command registration to
// one guild; empty registers globally.
func NewBot(token, guildID string, router *Router, logger observability.Logger) (*Bot, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord: new session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	session.LogLevel = discordgo.LogWarning

	return &Bot{
		session: session,
		router:  router,
		guildID: guildID,
		log:     logger.With(observability.F("component", "discord_gateway")),
	}, nil
}

// Start opens the gateway connection. Commands are registered once READY arrives.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx = ctx
	routeLibraryLogs(b.log)

	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onInteraction)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord: open gateway: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("bot_connected",
		observability.F("bot_user", r.User.Username),
		observability.F("bot_id", r.User.ID),
		observability.F("guilds", len(r.Guilds)),
	)

	cmds, err := s.ApplicationCommandBulkOverwrite(r.User.ID, b.guildID, b.router.Commands())
	if err != nil {
		b.log.Error("commands_register_failed",
			observability.F("guild_id", b.guildID),
			observability.F("error", err.Error()),
		)
		return
	}
	b.log.Info("commands_registered",
		observability.F("guild_id", b.guildID),
		observability.F("count", len(cmds)),
	)
}

func (b *Bot) onInteraction(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	b.router.Handle(b.ctx, s, ic.Interaction)
}

// routeLibraryLogs sends discordgo's own log lines through the structured logger.
func routeLibraryLogs(logger observability.Logger) {
	discordgo.Logger = func(level, _ int, format string, a ...any) {
		msg := fmt.Sprintf(format, a...)
		switch level {
		case discordgo.LogError:
			logger.Error("discordgo", observability.F("detail", msg))
		case discordgo.LogWarning:
			logger.Warn("discordgo", observability.F("detail", msg))
		case discordgo.LogInformational:
			logger.Info("discordgo", observability.F("detail", msg))
		default:
			logger.Debug("discordgo", observability.F("detail", msg))
		}
	}
}
