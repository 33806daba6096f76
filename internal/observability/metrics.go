package observability

const (
	MUsecaseRequests            MetricKey = "usecase_requests_total"
	MUsecaseDuration            MetricKey = "usecase_duration_seconds"
	MHTTPRequests               MetricKey = "http_requests_total"
	MHTTPRequestDuration        MetricKey = "http_request_duration_seconds"
	MExternalRequests           MetricKey = "external_requests_total"
	MExternalRequestDuration    MetricKey = "external_request_duration_seconds"
	MDiscordInteractions        MetricKey = "discord_interactions_total"
	MDiscordInteractionDuration MetricKey = "discord_interaction_duration_seconds"
)

// MetricSpec describes how a metric key is registered: its help text and label set.
type MetricSpec struct {
	Key    MetricKey
	Help   string
	Labels []string
}

// Counters lists every counter the bot emits.
var Counters = []MetricSpec{
	{MUsecaseRequests, "Total number of use case invocations.", []string{"use_case", "outcome"}},
	{MHTTPRequests, "Total number of HTTP requests served.", []string{"method", "route", "status"}},
	{MExternalRequests, "Total number of calls to external peers.", []string{"peer", "endpoint", "outcome"}},
	{MDiscordInteractions, "Total number of Discord interactions handled.", []string{"kind", "name", "outcome"}},
}

// Histograms lists every histogram the bot emits.
var Histograms = []MetricSpec{
	{MUsecaseDuration, "Duration of use case execution in seconds.", []string{"use_case"}},
	{MHTTPRequestDuration, "Duration of HTTP requests in seconds.", []string{"method", "route", "status"}},
	{MExternalRequestDuration, "Duration of calls to external peers in seconds.", []string{"peer", "endpoint"}},
	{MDiscordInteractionDuration, "Duration of Discord interaction handling in seconds.", []string{"kind", "name"}},
}
