package discordpresentation

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/sellauth-tools/stockbot/internal/domain/restock"
	"github.com/sellauth-tools/stockbot/internal/observability"
	"github.com/sellauth-tools/stockbot/internal/observability/logctx"
)

// handleRestockButton answers the panel button with a product menu.
func (r *Router) handleRestockButton(ctx context.Context, rs Responder, i *discordgo.Interaction, st restock.Panel) error {
	next, err := st.Next("")
	if err != nil {
		return err
	}
	customID, err := restock.Encode(next)
	if err != nil {
		return err
	}
	if err := r.deferEphemeral(ctx, rs, i); err != nil {
		return err
	}

	products, err := r.commerce.ListProducts(ctx)
	if len(products) == 0 {
		r.logLookupMiss(ctx, "products", "", err)
		return r.send(ctx, rs, i, &discordgo.WebhookParams{Content: msgNoProducts})
	}
	if len(products) > maxSelectOptions {
		logctx.FromOr(ctx, r.log).Warn("select_options_truncated",
			observability.F("available", len(products)),
			observability.F("shown", maxSelectOptions),
		)
	}
	return r.send(ctx, rs, i, &discordgo.WebhookParams{
		Content:    msgSelectProduct,
		Components: row(productMenu(customID, products)),
	})
}

// handleProductSelected answers a product pick with that product's variant menu.
func (r *Router) handleProductSelected(ctx context.Context, rs Responder, i *discordgo.Interaction, st restock.ProductMenu, values []string) error {
	next, err := st.Next(first(values))
	if err != nil {
		return err
	}
	customID, err := restock.Encode(next)
	if err != nil {
		return err
	}
	productID := next.(restock.ProductChosen).ProductID

	if err := r.deferEphemeral(ctx, rs, i); err != nil {
		return err
	}
	variants, err := r.commerce.GetVariants(ctx, productID)
	if len(variants) == 0 {
		r.logLookupMiss(ctx, "variants", productID, err)
		return r.send(ctx, rs, i, &discordgo.WebhookParams{Content: msgNoVariants})
	}
	return r.send(ctx, rs, i, &discordgo.WebhookParams{
		Content:    msgSelectVariant,
		Components: row(variantMenu(customID, variants)),
	})
}

// handleVariantSelected opens the stock form. A modal must be the first
// response, so no API call happens here.
func (r *Router) handleVariantSelected(_ context.Context, rs Responder, i *discordgo.Interaction, st restock.ProductChosen, values []string) error {
	next, err := st.Next(first(values))
	if err != nil {
		return err
	}
	customID, err := restock.Encode(next)
	if err != nil {
		return err
	}
	return rs.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: restockModal(customID),
	})
}

// handleStockSubmitted appends the form's lines and confirms with the count sent,
// whatever the API answered.
func (r *Router) handleStockSubmitted(ctx context.Context, rs Responder, i *discordgo.Interaction, st restock.VariantChosen, text string) error {
	next, err := st.Next(text)
	if err != nil {
		return err
	}
	sub := next.(restock.Submission)

	if err := r.deferEphemeral(ctx, rs, i); err != nil {
		return err
	}
	res, err := r.submit.Execute(ctx, sub)
	if err != nil {
		fields := []observability.Field{
			observability.F("product_id", sub.ProductID),
			observability.F("variant_id", sub.VariantID),
			observability.F("error", err.Error()),
		}
		if res != nil {
			fields = append(fields, observability.F("status", res.Status))
		}
		logctx.FromOr(ctx, r.log).Warn("restock_not_confirmed", fields...)
	}
	return r.send(ctx, rs, i, &discordgo.WebhookParams{Content: fmt.Sprintf(msgItemsAdded, len(sub.Items))})
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
