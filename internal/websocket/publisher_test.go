package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHub_Publish(t *testing.T) {
	hub := NewHub()

	client := newMockClient("client-1", 1)
	hub.Register(client)

	var publisher EventPublisher = hub
	publisher.Publish(1, NoteCreated(notePayload()))

	// Allow async broadcast to complete
	time.Sleep(10 * time.Millisecond)

	assert.Len(t, client.GetMessages(), 1)
}

func TestNoOpPublisher_Publish(t *testing.T) {
	publisher := &NoOpPublisher{}

	assert.NotPanics(t, func() {
		publisher.Publish(1, NoteCreated(notePayload()))
	})
}

func TestNoOpPublisher_Implements_EventPublisher(t *testing.T) {
	var _ EventPublisher = (*NoOpPublisher)(nil)
}
