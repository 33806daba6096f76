package discordpresentation

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"
	apprestock "github.com/sellauth-tools/stockbot/internal/application/restock"
	"github.com/sellauth-tools/stockbot/internal/domain/commerce"
	"github.com/sellauth-tools/stockbot/internal/domain/restock"
)

type fakeResponder struct {
	mu        sync.Mutex
	responses []*discordgo.InteractionResponse
	followups []*discordgo.WebhookParams
	failWith  error
	// panicOnce makes the first InteractionRespond panic.
	panicOnce bool
}

func (f *fakeResponder) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOnce {
		f.panicOnce = false
		panic("respond exploded")
	}
	if f.failWith != nil {
		return f.failWith
	}
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeResponder) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.followups = append(f.followups, data)
	return &discordgo.Message{Content: data.Content}, nil
}

func (f *fakeResponder) lastFollowup() *discordgo.WebhookParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.followups) == 0 {
		return nil
	}
	return f.followups[len(f.followups)-1]
}

type fakeCommerce struct {
	mu       sync.Mutex
	calls    int
	orders   map[string]*commerce.Order
	products []commerce.Product
	variants map[string][]commerce.Variant
	stock    map[string]int
	panicOn  string
}

func (f *fakeCommerce) hit(op string) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.panicOn == op {
		panic("boom in " + op)
	}
}

func (f *fakeCommerce) GetInvoice(_ context.Context, id string) (*commerce.Order, error) {
	f.hit("invoice")
	if o, ok := f.orders[id]; ok {
		return o, nil
	}
	return nil, commerce.ErrNotFound
}

func (f *fakeCommerce) GetOrder(_ context.Context, id string) (*commerce.Order, error) {
	f.hit("order")
	if o, ok := f.orders[id]; ok {
		return o, nil
	}
	return nil, commerce.ErrNotFound
}

func (f *fakeCommerce) ListProducts(context.Context) ([]commerce.Product, error) {
	f.hit("products")
	return append([]commerce.Product{}, f.products...), nil
}

func (f *fakeCommerce) GetVariants(_ context.Context, pid string) ([]commerce.Variant, error) {
	f.hit("variants")
	return append([]commerce.Variant{}, f.variants[pid]...), nil
}

func (f *fakeCommerce) ComputeStock(_ context.Context, pid string) int {
	f.hit("stock")
	return f.stock[pid]
}

type fakeSubmitter struct {
	got []restock.Submission
	err error
}

func (f *fakeSubmitter) Execute(_ context.Context, cmd restock.Submission) (*apprestock.Result, error) {
	f.got = append(f.got, cmd)
	return &apprestock.Result{Submitted: len(cmd.Items), Confirmed: f.err == nil}, f.err
}

func admin() *discordgo.Member {
	return &discordgo.Member{
		User:        &discordgo.User{ID: "admin-1"},
		Permissions: discordgo.PermissionAdministrator | discordgo.PermissionSendMessages,
	}
}

func regular() *discordgo.Member {
	return &discordgo.Member{
		User:        &discordgo.User{ID: "user-1"},
		Permissions: discordgo.PermissionSendMessages,
	}
}

func command(member *discordgo.Member, name string, opts ...[2]string) *discordgo.Interaction {
	data := discordgo.ApplicationCommandInteractionData{Name: name}
	for _, o := range opts {
		data.Options = append(data.Options, &discordgo.ApplicationCommandInteractionDataOption{
			Name:  o[0],
			Type:  discordgo.ApplicationCommandOptionString,
			Value: o[1],
		})
	}
	return &discordgo.Interaction{
		ID:      "int-" + name,
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: "guild-1",
		Member:  member,
		Data:    data,
	}
}

func component(customID string, values ...string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:     "int-component",
		Type:   discordgo.InteractionMessageComponent,
		Member: admin(),
		Data: discordgo.MessageComponentInteractionData{
			CustomID: customID,
			Values:   values,
		},
	}
}

func modalSubmit(customID, text string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:     "int-modal",
		Type:   discordgo.InteractionModalSubmit,
		Member: admin(),
		Data: discordgo.ModalSubmitInteractionData{
			CustomID: customID,
			Components: []discordgo.MessageComponent{
				&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					&discordgo.TextInput{CustomID: stockInputID, Value: text},
				}},
			},
		},
	}
}
