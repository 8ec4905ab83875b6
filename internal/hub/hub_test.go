package hub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyReachesSubscribers(t *testing.T) {
	h := NewHub()
	client := make(Client, 1)
	h.Subscribe(7, client)

	h.Notify(7, Event{Type: EventFriendRequest, Payload: map[string]uint{"from_user_id": 3}})

	select {
	case msg := <-client:
		var event Event
		require.NoError(t, json.Unmarshal(msg, &event))
		assert.Equal(t, EventFriendRequest, event.Type)
	default:
		t.Fatal("expected a delivered event")
	}
}

func TestNotifyUnknownUserIsNoop(t *testing.T) {
	h := NewHub()
	// Must not panic or block.
	h.Notify(42, Event{Type: EventFriendAccepted})
}

func TestNotifySkipsFullClients(t *testing.T) {
	h := NewHub()
	full := make(Client) // unbuffered, nobody reading
	open := make(Client, 1)
	h.Subscribe(7, full)
	h.Subscribe(7, open)

	h.Notify(7, Event{Type: EventGroupInvite})

	select {
	case <-open:
	default:
		t.Fatal("open client should have received the event")
	}
}

func TestUnsubscribeClosesClient(t *testing.T) {
	h := NewHub()
	client := make(Client, 1)
	h.Subscribe(7, client)
	h.Unsubscribe(7, client)

	_, ok := <-client
	assert.False(t, ok, "channel should be closed")

	// A second unsubscribe for the same client is harmless.
	h.Unsubscribe(7, client)
}

func TestNotifyAll(t *testing.T) {
	h := NewHub()
	a := make(Client, 1)
	b := make(Client, 1)
	h.Subscribe(1, a)
	h.Subscribe(2, b)

	h.NotifyAll([]uint{1, 2, 3}, Event{Type: EventSessionInvite})

	assert.Len(t, a, 1)
	assert.Len(t, b, 1)
}
