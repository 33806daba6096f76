package discordpresentation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/sellauth-tools/stockbot/internal/domain/commerce"
)

const codeFence = "```"

// clamp cuts s to at most n runes, marking the cut with an ellipsis.
func clamp(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func codeBlock(s string) string {
	return codeFence + s + codeFence
}

func field(name, value string, inline bool) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: name, Value: clamp(value, maxEmbedFieldValue), Inline: inline}
}

func invoiceEmbed(invoiceID string, o *commerce.Order) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf(titleInvoice, invoiceID),
		Color: colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			field(fieldEmail, o.Email.OrNA(), true),
			field(fieldPrice, o.TotalPrice.OrNA(), true),
			field(fieldStatus, o.Status.OrNA(), true),
			field(fieldProduct, o.ProductName.OrNA(), true),
		},
	}
	if len(o.Deliverables) > 0 {
		shown := o.Deliverables
		if len(shown) > maxDeliverablesShown {
			shown = shown[:maxDeliverablesShown]
		}
		preview := clamp(strings.Join(shown, "\n"), maxEmbedFieldValue-2*len(codeFence))
		embed.Fields = append(embed.Fields, field(fieldDeliverables, codeBlock(preview), false))
	}
	return embed
}

func orderEmbed(orderID string, o *commerce.Order) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf(titleOrder, orderID),
		Color: colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			field(fieldEmail, o.Email.OrNA(), true),
			field(fieldStatus, o.Status.OrNA(), true),
			field(fieldPrice, o.TotalPrice.OrNA(), true),
		},
	}
}

func panelEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: titleStockPanel}
}

// productListMessages renders one line per product, split into code blocks
// that each fit in a single message.
func productListMessages(products []commerce.Product) []string {
	lines := make([]string, 0, len(products))
	for _, p := range products {
		lines = append(lines, fmt.Sprintf(productLine, p.Name.OrNA(), p.ID.OrNA()))
	}
	chunks := chunkLines(lines, maxMessageLen-2*len(codeFence))
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, codeBlock(c))
	}
	return out
}

// chunkLines joins lines with newlines into chunks of at most limit runes.
// A single line longer than limit is clamped.
func chunkLines(lines []string, limit int) []string {
	var (
		out  []string
		cur  strings.Builder
		size int
	)
	for _, line := range lines {
		line = clamp(line, limit)
		n := utf8.RuneCountInString(line)
		if size > 0 && size+1+n > limit {
			out = append(out, cur.String())
			cur.Reset()
			size = 0
		}
		if size > 0 {
			cur.WriteByte('\n')
			size++
		}
		cur.WriteString(line)
		size += n
	}
	if size > 0 {
		out = append(out, cur.String())
	}
	return out
}

func selectOption(label, value string) discordgo.SelectMenuOption {
	return discordgo.SelectMenuOption{
		Label: clamp(label, maxSelectOptionText),
		Value: value,
	}
}

func productMenu(customID string, products []commerce.Product) discordgo.SelectMenu {
	opts := make([]discordgo.SelectMenuOption, 0, min(len(products), maxSelectOptions))
	for _, p := range products {
		if len(opts) == maxSelectOptions {
			break
		}
		if p.ID == "" {
			continue
		}
		opts = append(opts, selectOption(p.Name.OrNA(), p.ID.String()))
	}
	return discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    customID,
		Placeholder: msgSelectProduct,
		Options:     opts,
	}
}

func variantMenu(customID string, variants []commerce.Variant) discordgo.SelectMenu {
	opts := make([]discordgo.SelectMenuOption, 0, min(len(variants), maxSelectOptions))
	for _, v := range variants {
		if len(opts) == maxSelectOptions {
			break
		}
		if v.ID == "" {
			continue
		}
		opts = append(opts, selectOption(v.Name.OrNA(), v.ID.String()))
	}
	return discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    customID,
		Placeholder: msgSelectVariant,
		Options:     opts,
	}
}

func restockButton(customID string) discordgo.Button {
	return discordgo.Button{
		Label:    labelRestockButton,
		Style:    discordgo.SuccessButton,
		CustomID: customID,
	}
}

const stockInputID = "stock"

func restockModal(customID string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: customID,
		Title:    titleRestockModal,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID: stockInputID,
					Label:    labelStockInput,
					Style:    discordgo.TextInputParagraph,
					Required: true,
				},
			}},
		},
	}
}

func row(c discordgo.MessageComponent) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: []discordgo.MessageComponent{c}}}
}
