package stream

// Event names dispatched on a Stream's event.Dispatcher, for callers (the
// telemetry package, an application's own UI) that want to observe
// lifecycle transitions without polling ReadyState.
const (
	EventPublishing      = "stream.publishing"
	EventClosed          = "stream.closed"
	EventConnectionLost  = "stream.connectionLost"
	EventDimensionChange = "stream.dimensionChange"
)
