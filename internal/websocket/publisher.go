package websocket

// EventPublisher is what the HTTP handlers use to push note events to
// connected editors without depending on the hub directly.
type EventPublisher interface {
	// Publish fans an event out to every client in the workspace.
	Publish(workspaceID int32, event Event)
}

var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher on the hub.
func (h *Hub) Publish(workspaceID int32, event Event) {
	h.Broadcast(workspaceID, event)
}

// NoOpPublisher discards events. Handlers fall back to it when no hub
// is wired, which keeps tests free of WebSocket setup.
type NoOpPublisher struct{}

var _ EventPublisher = (*NoOpPublisher)(nil)

// Publish discards the event.
func (n *NoOpPublisher) Publish(workspaceID int32, event Event) {}
