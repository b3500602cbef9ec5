package connection

// Event names dispatched on a Conn's event.Dispatcher.
const (
	// EventConnectionLost fires exactly once, when the read pump stops on a
	// socket read or chunk decode error. Handlers receive the causing error.
	EventConnectionLost = "connection.lost"
	// EventCommand fires for every inbound AMF0 command that isn't a
	// _result/_error reply to a pending call, such as the server's
	// onStatus notifications. Handlers receive a message.Command.
	EventCommand = "connection.command"
)
