package discordpresentation

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/sellauth-tools/stockbot/internal/domain/commerce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(c Commerce, s StockSubmitter) *Router {
	return NewRouter(c, s, nil, nil)
}

func TestCommandsDefinition(t *testing.T) {
	cmds := newRouter(&fakeCommerce{}, &fakeSubmitter{}).Commands()

	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
		assert.NotEmpty(t, c.Description)
	}
	assert.ElementsMatch(t, []string{"invoice", "panel-stock", "product-list", "stock", "order"}, names)

	for _, c := range cmds {
		for _, o := range c.Options {
			assert.True(t, o.Required, "%s/%s", c.Name, o.Name)
			assert.Equal(t, discordgo.ApplicationCommandOptionString, o.Type)
		}
	}
}

func TestInvoiceDeniedForNonAdmin(t *testing.T) {
	shop := &fakeCommerce{}
	rs := &fakeResponder{}

	newRouter(shop, &fakeSubmitter{}).Handle(context.Background(), rs, command(regular(), cmdInvoice, [2]string{optInvoiceID, "1"}))

	assert.Zero(t, shop.calls)
	require.Len(t, rs.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, rs.responses[0].Type)
	assert.Equal(t, msgNoPermission, rs.responses[0].Data.Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, rs.responses[0].Data.Flags)
	assert.Empty(t, rs.followups)
}

func TestInvoiceDeniedInDirectMessages(t *testing.T) {
	shop := &fakeCommerce{}
	rs := &fakeResponder{}
	i := command(nil, cmdInvoice, [2]string{optInvoiceID, "1"})
	i.User = &discordgo.User{ID: "dm-user"}

	newRouter(shop, &fakeSubmitter{}).Handle(context.Background(), rs, i)

	assert.Zero(t, shop.calls)
	assert.Equal(t, msgNoPermission, rs.responses[0].Data.Content)
}

func TestInvoiceNotFound(t *testing.T) {
	rs := &fakeResponder{}

	newRouter(&fakeCommerce{}, &fakeSubmitter{}).Handle(context.Background(), rs, command(admin(), cmdInvoice, [2]string{optInvoiceID, "404"}))

	require.Len(t, rs.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, rs.responses[0].Type)
	require.Len(t, rs.followups, 1)
	assert.Equal(t, msgInvoiceNotFound, rs.followups[0].Content)
}

func TestInvoiceShowsFirstTenDeliverables(t *testing.T) {
	keys := make(commerce.Lines, 50)
	for n := range keys {
		keys[n] = fmt.Sprintf("KEY-%02d", n)
	}
	shop := &fakeCommerce{orders: map[string]*commerce.Order{
		"77": {ID: "77", Email: "a@b.c", TotalPrice: "9.99", Status: "completed", Deliverables: keys},
	}}
	rs := &fakeResponder{}

	newRouter(shop, &fakeSubmitter{}).Handle(context.Background(), rs, command(admin(), cmdInvoice, [2]string{optInvoiceID, "77"}))

	require.Len(t, rs.followups, 1)
	require.Len(t, rs.followups[0].Embeds, 1)
	embed := rs.followups[0].Embeds[0]
	assert.Equal(t, "Invoice 77", embed.Title)
	assert.Equal(t, colorGreen, embed.Color)
	require.Len(t, embed.Fields, 5)

	values := map[string]string{}
	for _, f := range embed.Fields {
		values[f.Name] = f.Value
	}
	assert.Equal(t, "a@b.c", values[fieldEmail])
	assert.Equal(t, "9.99", values[fieldPrice])
	assert.Equal(t, "completed", values[fieldStatus])
	assert.Equal(t, commerce.NA, values[fieldProduct])

	preview := values[fieldDeliverables]
	assert.True(t, strings.HasPrefix(preview, "```") && strings.HasSuffix(preview, "```"))
	assert.Contains(t, preview, "KEY-09")
	assert.NotContains(t, preview, "KEY-10")
	assert.Equal(t, 10, strings.Count(preview, "KEY-"))
	assert.False(t, embed.Fields[4].Inline)
}

func TestInvoiceWithoutDeliverablesHasNoPreview(t *testing.T) {
	shop := &fakeCommerce{orders: map[string]*commerce.Order{"1": {ID: "1"}}}
	rs := &fakeResponder{}

	newRouter(shop, &fakeSubmitter{}).Handle(context.Background(), rs, command(admin(), cmdInvoice, [2]string{optInvoiceID, "1"}))

	assert.Len(t, rs.followups[0].Embeds[0].Fields, 4)
}

func TestOrder(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		shop := &fakeCommerce{orders: map[string]*commerce.Order{"5": {Email: "x@y.z", Status: "pending", TotalPrice: "3"}}}
		rs := &fakeResponder{}

		newRouter(shop, &fakeSubmitter{}).Handle(context.Background(), rs, command(regular(), cmdOrder, [2]string{optOrderID, "5"}))

		embed := rs.lastFollowup().Embeds[0]
		assert.Equal(t, "Order 5", embed.Title)
		assert.Equal(t, colorBlue, embed.Color)
		require.Len(t, embed.Fields, 3)
		assert.Equal(t, []string{fieldEmail, fieldStatus, fieldPrice}, []string{embed.Fields[0].Name, embed.Fields[1].Name, embed.Fields[2].Name})
	})

	t.Run("not found", func(t *testing.T) {
		rs := &fakeResponder{}

		newRouter(&fakeCommerce{}, &fakeSubmitter{}).Handle(context.Background(), rs, command(regular(), cmdOrder, [2]string{optOrderID, "nope"}))

		assert.Equal(t, msgOrderNotFound, rs.lastFollowup().Content)
	})
}

func TestStock(t *testing.T) {
	shop := &fakeCommerce{stock: map[string]int{"p1": 8}}
	rs := &fakeResponder{}

	newRouter(shop, &fakeSubmitter{}).Handle(context.Background(), rs, command(regular(), cmdStock, [2]string{optProductID, "p1"}))

	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, rs.responses[0].Type)
	assert.Equal(t, "Stock disponible: 8", rs.lastFollowup().Content)
}

func TestProductList(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		rs := &fakeResponder{}

		newRouter(&fakeCommerce{}, &fakeSubmitter{}).Handle(context.Background(), rs, command(regular(), cmdProductList))

		assert.Equal(t, msgNoProducts, rs.lastFollowup().Content)
	})

	t.Run("lists name and id", func(t *testing.T) {
		shop := &fakeCommerce{products: []commerce.Product{{ID: "1", Name: "Netflix"}, {ID: "2", Name: "Spotify"}}}
		rs := &fakeResponder{}

		newRouter(shop, &fakeSubmitter{}).Handle(context.Background(), rs, command(regular(), cmdProductList))

		require.Len(t, rs.followups, 1)
		assert.Equal(t, "```Netflix - ID: 1\nSpotify - ID: 2```", rs.followups[0].Content)
	})

	t.Run("splits long lists", func(t *testing.T) {
		shop := &fakeCommerce{}
		for n := 0; n < 200; n++ {
			shop.products = append(shop.products, commerce.Product{
				ID:   commerce.Text(fmt.Sprint(n)),
				Name: commerce.Text(strings.Repeat("x", 40)),
			})
		}
		rs := &fakeResponder{}

		newRouter(shop, &fakeSubmitter{}).Handle(context.Background(), rs, command(regular(), cmdProductList))

		require.Greater(t, len(rs.followups), 1)
		total := 0
		for _, f := range rs.followups {
			assert.LessOrEqual(t, len([]rune(f.Content)), maxMessageLen)
			total += strings.Count(f.Content, " - ID: ")
		}
		assert.Equal(t, 200, total)
	})
}

func TestPanelStock(t *testing.T) {
	rs := &fakeResponder{}

	newRouter(&fakeCommerce{}, &fakeSubmitter{}).Handle(context.Background(), rs, command(regular(), cmdPanelStock))

	require.Len(t, rs.responses, 1)
	data := rs.responses[0].Data
	assert.Equal(t, titleStockPanel, data.Embeds[0].Title)
	button := data.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.Button)
	assert.Equal(t, labelRestockButton, button.Label)
	assert.Equal(t, discordgo.SuccessButton, button.Style)
	assert.Equal(t, "restock:panel", button.CustomID)
}
