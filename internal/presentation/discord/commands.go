package discordpresentation

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/sellauth-tools/stockbot/internal/domain/restock"
	"github.com/sellauth-tools/stockbot/internal/observability"
	"github.com/sellauth-tools/stockbot/internal/observability/logctx"
)

const (
	cmdInvoice     = "invoice"
	cmdPanelStock  = "panel-stock"
	cmdProductList = "product-list"
	cmdStock       = "stock"
	cmdOrder       = "order"

	optInvoiceID = "invoice_id"
	optProductID = "product_id"
	optOrderID   = "order_id"
)

// Commands returns the slash commands the bot registers on startup.
func (r *Router) Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        cmdInvoice,
			Description: "Ver invoice por ID",
			Options:     []*discordgo.ApplicationCommandOption{requiredString(optInvoiceID, "ID de la invoice")},
		},
		{
			Name:        cmdPanelStock,
			Description: "Panel de stock",
		},
		{
			Name:        cmdProductList,
			Description: "Lista productos",
		},
		{
			Name:        cmdStock,
			Description: "Ver stock rápido por product ID",
			Options:     []*discordgo.ApplicationCommandOption{requiredString(optProductID, "ID del producto")},
		},
		{
			Name:        cmdOrder,
			Description: "Ver pedido por ID",
			Options:     []*discordgo.ApplicationCommandOption{requiredString(optOrderID, "ID del pedido")},
		},
	}
}

func requiredString(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    true,
	}
}

func stringOption(i *discordgo.Interaction, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}
	return ""
}

// handleInvoice is restricted to administrators; the check happens before any API call.
func (r *Router) handleInvoice(ctx context.Context, rs Responder, i *discordgo.Interaction) error {
	if !isAdmin(i) {
		logctx.FromOr(ctx, r.log).Info("invoice_denied")
		return r.respondEphemeral(rs, i, msgNoPermission)
	}
	if err := r.deferEphemeral(ctx, rs, i); err != nil {
		return err
	}

	invoiceID := stringOption(i, optInvoiceID)
	order, err := r.commerce.GetInvoice(ctx, invoiceID)
	if order == nil {
		r.logLookupMiss(ctx, "invoice", invoiceID, err)
		return r.send(ctx, rs, i, &discordgo.WebhookParams{Content: msgInvoiceNotFound})
	}
	return r.send(ctx, rs, i, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{invoiceEmbed(invoiceID, order)},
	})
}

func (r *Router) handlePanelStock(_ context.Context, rs Responder, i *discordgo.Interaction) error {
	customID, err := restock.Encode(restock.Panel{})
	if err != nil {
		return err
	}
	return r.respond(rs, i, &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{panelEmbed()},
		Components: row(restockButton(customID)),
	})
}

func (r *Router) handleProductList(ctx context.Context, rs Responder, i *discordgo.Interaction) error {
	if err := r.deferEphemeral(ctx, rs, i); err != nil {
		return err
	}

	products, err := r.commerce.ListProducts(ctx)
	if len(products) == 0 {
		r.logLookupMiss(ctx, "products", "", err)
		return r.send(ctx, rs, i, &discordgo.WebhookParams{Content: msgNoProducts})
	}
	for _, msg := range productListMessages(products) {
		if err := r.send(ctx, rs, i, &discordgo.WebhookParams{Content: msg}); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) handleStock(ctx context.Context, rs Responder, i *discordgo.Interaction) error {
	if err := r.deferEphemeral(ctx, rs, i); err != nil {
		return err
	}
	total := r.commerce.ComputeStock(ctx, stringOption(i, optProductID))
	return r.send(ctx, rs, i, &discordgo.WebhookParams{Content: fmt.Sprintf(msgStockAvailable, total)})
}

func (r *Router) handleOrder(ctx context.Context, rs Responder, i *discordgo.Interaction) error {
	if err := r.deferEphemeral(ctx, rs, i); err != nil {
		return err
	}

	orderID := stringOption(i, optOrderID)
	order, err := r.commerce.GetOrder(ctx, orderID)
	if order == nil {
		r.logLookupMiss(ctx, "order", orderID, err)
		return r.send(ctx, rs, i, &discordgo.WebhookParams{Content: msgOrderNotFound})
	}
	return r.send(ctx, rs, i, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{orderEmbed(orderID, order)},
	})
}

// logLookupMiss records why a lookup came back empty. The user only sees the not-found text.
func (r *Router) logLookupMiss(ctx context.Context, resource, id string, err error) {
	fields := []observability.Field{observability.F("resource", resource)}
	if id != "" {
		fields = append(fields, observability.F("resource_id", id))
	}
	if err != nil {
		fields = append(fields, observability.F("reason", err.Error()))
	}
	logctx.FromOr(ctx, r.log).Info("lookup_empty", fields...)
}
