package discordpresentation

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sellauth-tools/stockbot/internal/application"
	apprestock "github.com/sellauth-tools/stockbot/internal/application/restock"
	"github.com/sellauth-tools/stockbot/internal/domain/commerce"
	"github.com/sellauth-tools/stockbot/internal/domain/restock"
	"github.com/sellauth-tools/stockbot/internal/infrastructure/id"
	"github.com/sellauth-tools/stockbot/internal/observability"
	"github.com/sellauth-tools/stockbot/internal/observability/logctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	componentDiscord = "discord_router"
	spanPrefix       = "Discord."

	kindCommand   = "command"
	kindComponent = "component"
	kindModal     = "modal"
	kindOther     = "other"
)

var ErrUnknownCommand = errors.New("discord: unknown command")

// Responder is the part of *discordgo.Session the handlers use.
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Commerce is the query side the commands need.
type Commerce interface {
	GetInvoice(ctx context.Context, invoiceID string) (*commerce.Order, error)
	GetOrder(ctx context.Context, orderID string) (*commerce.Order, error)
	ListProducts(ctx context.Context) ([]commerce.Product, error)
	GetVariants(ctx context.Context, productID string) ([]commerce.Variant, error)
	ComputeStock(ctx context.Context, productID string) int
}

type StockSubmitter = application.UseCase[restock.Submission, *apprestock.Result]

type commandHandler func(ctx context.Context, rs Responder, i *discordgo.Interaction) error

// Router dispatches interactions to command and restock handlers. It holds no
// per-interaction state; handlers may run concurrently.
type Router struct {
	commerce Commerce
	submit   StockSubmitter
	ids      id.Generator
	tel      observability.Observability
	log      observability.Logger

	commands map[string]commandHandler

	reqCounter   observability.Counter   // discord_interactions_total{kind,name,outcome}
	durHistogram observability.Histogram // discord_interaction_duration_seconds{kind,name}
}

func NewRouter(c Commerce, submit StockSubmitter, ids id.Generator, tel observability.Observability) *Router {
	tel = observability.OrNop(tel)
	baseLog := tel.Logger()
	metricsProvider := tel.Metrics()
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	r := &Router{
		commerce:     c,
		submit:       submit,
		ids:          ids,
		tel:          tel,
		log:          baseLog.With(observability.F("component", componentDiscord)),
		reqCounter:   metricsProvider.Counter(observability.MDiscordInteractions),
		durHistogram: metricsProvider.Histogram(observability.MDiscordInteractionDuration),
	}
	r.commands = map[string]commandHandler{
		cmdInvoice:     r.handleInvoice,
		cmdPanelStock:  r.handlePanelStock,
		cmdProductList: r.handleProductList,
		cmdStock:       r.handleStock,
		cmdOrder:       r.handleOrder,
	}
	return r
}

// Handle processes one interaction to completion. It never panics.
func (r *Router) Handle(ctx context.Context, rs Responder, i *discordgo.Interaction) {
	kind, name := classify(i)

	ctx, span := r.tel.Tracer().Start(ctx, spanPrefix+kind+"."+name,
		attribute.String("discord.interaction.kind", kind),
		attribute.String("discord.interaction.name", name),
		attribute.String("discord.interaction.id", i.ID),
	)
	ctx = WithInteractionContext(ctx, logctx.FromOr(ctx, r.log), i, r.ids.NewID(), kind, name)
	logger := logctx.FromOr(ctx, r.log)
	start := time.Now()
	tracked := &trackingResponder{Responder: rs}

	outcome := "success"
	var err error
	defer func() {
		if rec := recover(); rec != nil {
			outcome = "panic"
			err = fmt.Errorf("discord: panic: %v", rec)
			logger.Error("interaction_panic",
				observability.F("panic", fmt.Sprint(rec)),
				observability.F("stack", string(debug.Stack())),
			)
		}
		if err != nil {
			r.reportFailure(ctx, tracked, i)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "OK")
		}
		span.End()

		latency := time.Since(start).Seconds()
		r.reqCounter.Add(1,
			observability.L("kind", kind),
			observability.L("name", name),
			observability.L("outcome", outcome),
		)
		r.durHistogram.Observe(latency,
			observability.L("kind", kind),
			observability.L("name", name),
		)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("latency_seconds", latency),
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("interaction_done", fields...)
	}()

	err = r.dispatch(ctx, tracked, i)
	if err != nil {
		outcome = "error"
	}
}

func (r *Router) dispatch(ctx context.Context, rs Responder, i *discordgo.Interaction) error {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		h, ok := r.commands[name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
		}
		return h(ctx, rs, i)

	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		state, err := restock.Decode(data.CustomID)
		if err != nil {
			return err
		}
		switch st := state.(type) {
		case restock.Panel:
			return r.handleRestockButton(ctx, rs, i, st)
		case restock.ProductMenu:
			return r.handleProductSelected(ctx, rs, i, st, data.Values)
		case restock.ProductChosen:
			return r.handleVariantSelected(ctx, rs, i, st, data.Values)
		}
		return fmt.Errorf("%w: component for stage %s", restock.ErrUnknownState, state.Stage())

	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		state, err := restock.Decode(data.CustomID)
		if err != nil {
			return err
		}
		st, ok := state.(restock.VariantChosen)
		if !ok {
			return fmt.Errorf("%w: modal for stage %s", restock.ErrUnknownState, state.Stage())
		}
		return r.handleStockSubmitted(ctx, rs, i, st, textInputValue(data.Components, stockInputID))
	}
	return nil
}

func classify(i *discordgo.Interaction) (kind, name string) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return kindCommand, i.ApplicationCommandData().Name
	case discordgo.InteractionMessageComponent:
		return kindComponent, stageName(i.MessageComponentData().CustomID)
	case discordgo.InteractionModalSubmit:
		return kindModal, stageName(i.ModalSubmitData().CustomID)
	}
	return kindOther, i.Type.String()
}

// stageName keeps metric labels bounded: ids never leak into them.
func stageName(customID string) string {
	state, err := restock.Decode(customID)
	if err != nil {
		return "unknown"
	}
	return "restock_" + string(state.Stage())
}

func (r *Router) respond(rs Responder, i *discordgo.Interaction, data *discordgo.InteractionResponseData) error {
	return rs.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

func (r *Router) respondEphemeral(rs Responder, i *discordgo.Interaction, content string) error {
	return r.respond(rs, i, &discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

// deferEphemeral acknowledges within Discord's three-second window; the answer follows later.
func (r *Router) deferEphemeral(ctx context.Context, rs Responder, i *discordgo.Interaction) error {
	err := rs.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord: defer: %w", err)
	}
	return nil
}

func (r *Router) send(ctx context.Context, rs Responder, i *discordgo.Interaction, params *discordgo.WebhookParams) error {
	params.Flags |= discordgo.MessageFlagsEphemeral
	if _, err := rs.FollowupMessageCreate(i, true, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: followup: %w", err)
	}
	return nil
}

// reportFailure tells the user something went wrong. Before any response it
// answers the interaction directly; after one it can only follow up. Best effort.
func (r *Router) reportFailure(ctx context.Context, rs *trackingResponder, i *discordgo.Interaction) {
	var err error
	if rs.responded() {
		err = r.send(context.WithoutCancel(ctx), rs, i, &discordgo.WebhookParams{Content: msgSomethingFailed})
	} else {
		err = r.respondEphemeral(rs, i, msgSomethingFailed)
	}
	if err != nil {
		logctx.FromOr(ctx, r.log).Warn("failure_notice_failed", observability.F("error", err.Error()))
	}
}

// trackingResponder remembers whether the interaction has been answered.
type trackingResponder struct {
	Responder
	answered atomic.Bool
}

func (t *trackingResponder) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	err := t.Responder.InteractionRespond(interaction, resp, options...)
	if err == nil {
		t.answered.Store(true)
	}
	return err
}

func (t *trackingResponder) responded() bool { return t.answered.Load() }

func isAdmin(i *discordgo.Interaction) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

func textInputValue(components []discordgo.MessageComponent, customID string) string {
	for _, c := range components {
		var children []discordgo.MessageComponent
		switch v := c.(type) {
		case *discordgo.ActionsRow:
			children = v.Components
		case discordgo.ActionsRow:
			children = v.Components
		case *discordgo.TextInput:
			children = []discordgo.MessageComponent{v}
		case discordgo.TextInput:
			children = []discordgo.MessageComponent{v}
		}
		for _, child := range children {
			switch in := child.(type) {
			case *discordgo.TextInput:
				if in.CustomID == customID {
					return in.Value
				}
			case discordgo.TextInput:
				if in.CustomID == customID {
					return in.Value
				}
			}
		}
	}
	return ""
}
