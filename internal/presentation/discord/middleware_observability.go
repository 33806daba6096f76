package discordpresentation

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/sellauth-tools/stockbot/internal/observability"
	"github.com/sellauth-tools/stockbot/internal/observability/logctx"
	"go.opentelemetry.io/otel/trace"
)

// WithInteractionContext injects a request-scoped logger for one Discord interaction.
// Dynamic fields only: event_id, the interaction and its actor, kind/name, and
// trace_id/span_id when the context carries a valid span.
func WithInteractionContext(
	ctx context.Context,
	base observability.Logger,
	i *discordgo.Interaction,
	eventID, kind, name string,
) context.Context {
	if base == nil {
		base = observability.NopLogger()
	}

	fields := make([]observability.Field, 0, 8)
	fields = append(fields,
		observability.F("event_id", eventID),
		observability.F("interaction_kind", kind),
		observability.F("interaction_name", name),
	)
	if i != nil {
		fields = append(fields, observability.F("interaction_id", i.ID))
		if i.GuildID != "" {
			fields = append(fields, observability.F("guild_id", i.GuildID))
		}
		if uid := userID(i); uid != "" {
			fields = append(fields, observability.F("user_id", uid))
		}
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}

	ctx, _ = logctx.Enrich(ctx, base, fields...)
	return ctx
}

func userID(i *discordgo.Interaction) string {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User.ID
	case i.User != nil:
		return i.User.ID
	}
	return ""
}
