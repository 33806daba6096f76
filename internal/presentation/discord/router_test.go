package discordpresentation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sellauth-tools/stockbot/internal/infrastructure/id"
	infraobs "github.com/sellauth-tools/stockbot/internal/infrastructure/observability"
	"github.com/sellauth-tools/stockbot/internal/infrastructure/observability/prometrics"
	"github.com/sellauth-tools/stockbot/internal/infrastructure/observability/zaplogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fixedID string

func (f fixedID) NewID() string { return string(f) }

func newObservedRouter(t *testing.T, c Commerce) (*Router, *prometheus.Registry, *observer.ObservedLogs) {
	t.Helper()
	reg := prometheus.NewRegistry()
	core, logs := observer.New(zapcore.DebugLevel)
	tel := infraobs.New(nil, zaplogger.New(zap.New(core)), prometrics.New(reg, "", ""))
	var ids id.Generator = fixedID("evt-1")
	return NewRouter(c, &fakeSubmitter{}, ids, tel), reg, logs
}

func TestHandleRecordsInteraction(t *testing.T) {
	router, reg, logs := newObservedRouter(t, &fakeCommerce{stock: map[string]int{"1": 2}})

	router.Handle(context.Background(), &fakeResponder{}, command(admin(), cmdStock, [2]string{optProductID, "1"}))

	expected := `
# HELP discord_interactions_total Total number of Discord interactions handled.
# TYPE discord_interactions_total counter
discord_interactions_total{kind="command",name="stock",outcome="success"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "discord_interactions_total"))

	done := logs.FilterMessage("interaction_done").All()
	require.Len(t, done, 1)
	fields := done[0].ContextMap()
	assert.Equal(t, "success", fields["outcome"])
	assert.Equal(t, "evt-1", fields["event_id"])
	assert.Equal(t, "command", fields["interaction_kind"])
	assert.Equal(t, "stock", fields["interaction_name"])
	assert.Equal(t, "admin-1", fields["user_id"])
}

func TestHandleRecoversFromPanic(t *testing.T) {
	router, reg, logs := newObservedRouter(t, &fakeCommerce{panicOn: "stock"})
	rs := &fakeResponder{}

	assert.NotPanics(t, func() {
		router.Handle(context.Background(), rs, command(admin(), cmdStock, [2]string{optProductID, "1"}))
	})

	assert.Equal(t, msgSomethingFailed, rs.lastFollowup().Content)
	assert.Equal(t, 1, logs.FilterMessage("interaction_panic").Len())
	expected := `
# HELP discord_interactions_total Total number of Discord interactions handled.
# TYPE discord_interactions_total counter
discord_interactions_total{kind="command",name="stock",outcome="panic"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "discord_interactions_total"))
}

func TestHandlePanicBeforeFirstResponseAnswersDirectly(t *testing.T) {
	router, reg, _ := newObservedRouter(t, &fakeCommerce{})
	rs := &fakeResponder{panicOnce: true}

	router.Handle(context.Background(), rs, command(admin(), cmdPanelStock))

	require.Len(t, rs.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, rs.responses[0].Type)
	assert.Equal(t, msgSomethingFailed, rs.responses[0].Data.Content)
	assert.Empty(t, rs.followups)
	expected := `
# HELP discord_interactions_total Total number of Discord interactions handled.
# TYPE discord_interactions_total counter
discord_interactions_total{kind="command",name="panel-stock",outcome="panic"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "discord_interactions_total"))
}

func TestHandleOverlongCustomIDGetsMessage(t *testing.T) {
	rs := &fakeResponder{}
	longID := strings.Repeat("9", 120)

	newRouter(&fakeCommerce{}, &fakeSubmitter{}).Handle(context.Background(), rs, component("restock:variant:1", longID))

	require.Len(t, rs.responses, 1)
	assert.Equal(t, msgSomethingFailed, rs.responses[0].Data.Content)
}

func TestHandleUnknownCommand(t *testing.T) {
	router, _, logs := newObservedRouter(t, &fakeCommerce{})
	rs := &fakeResponder{}

	router.Handle(context.Background(), rs, command(admin(), "refund"))

	require.Len(t, rs.responses, 1)
	assert.Equal(t, msgSomethingFailed, rs.responses[0].Data.Content)
	done := logs.FilterMessage("interaction_done").All()
	require.Len(t, done, 1)
	assert.Equal(t, "error", done[0].ContextMap()["outcome"])
	assert.Contains(t, done[0].ContextMap()["error"], "unknown command")
}

func TestHandleKeepsIDsOutOfLabels(t *testing.T) {
	router, reg, _ := newObservedRouter(t, &fakeCommerce{})

	router.Handle(context.Background(), &fakeResponder{}, component("restock:variant:12345", "999"))
	router.Handle(context.Background(), &fakeResponder{}, component("garbage"))

	expected := `
# HELP discord_interactions_total Total number of Discord interactions handled.
# TYPE discord_interactions_total counter
discord_interactions_total{kind="component",name="restock_variant",outcome="success"} 1
discord_interactions_total{kind="component",name="unknown",outcome="error"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "discord_interactions_total"))
}

func TestHandleReportsResponderFailure(t *testing.T) {
	router, _, logs := newObservedRouter(t, &fakeCommerce{})
	rs := &fakeResponder{failWith: errors.New("unknown interaction")}

	router.Handle(context.Background(), rs, command(admin(), cmdPanelStock))

	done := logs.FilterMessage("interaction_done").All()
	require.Len(t, done, 1)
	assert.Equal(t, "error", done[0].ContextMap()["outcome"])
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   *discordgo.Interaction
		kind string
		want string
	}{
		{"command", command(admin(), cmdOrder), kindCommand, cmdOrder},
		{"panel button", component("restock:panel"), kindComponent, "restock_panel"},
		{"modal", modalSubmit("restock:stock:1:2", ""), kindModal, "restock_stock"},
		{"foreign id", component("other"), kindComponent, "unknown"},
		{"ping", &discordgo.Interaction{Type: discordgo.InteractionPing}, kindOther, discordgo.InteractionPing.String()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, name := classify(tt.in)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.want, name)
		})
	}
}
