package chat

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, s *Subscriber) PushEvent {
	t.Helper()
	select {
	case b := <-s.Send():
		var ev PushEvent
		require.NoError(t, json.Unmarshal(b, &ev))
		return ev
	default:
		t.Fatal("no frame queued")
		return PushEvent{}
	}
}

func TestSubscriberDropsOldestWhenFull(t *testing.T) {
	s := NewSubscriber("U1", 2)
	require.True(t, s.Offer([]byte("1")))
	require.True(t, s.Offer([]byte("2")))
	require.True(t, s.Offer([]byte("3")))

	require.EqualValues(t, 1, s.Dropped())
	require.Equal(t, "2", string(<-s.Send()))
	require.Equal(t, "3", string(<-s.Send()))
}

func TestSubscriberOfferAfterClose(t *testing.T) {
	s := NewSubscriber("U1", 1)
	s.Close()
	s.Close()
	require.False(t, s.Offer([]byte("x")))
}

func TestHubDeliverOnlyToGroupSubscribers(t *testing.T) {
	h := NewHub()
	a := NewSubscriber("A", 4)
	b := NewSubscriber("B", 4)
	c := NewSubscriber("C", 4)
	require.True(t, h.Subscribe("G1", a))
	require.False(t, h.Subscribe("G1", a))
	h.Subscribe("G1", b)
	h.Subscribe("G2", c)

	require.Equal(t, 2, h.Deliver("G1", []byte(`{"event":"x"}`)))
	require.Len(t, a.Send(), 1)
	require.Len(t, b.Send(), 1)
	require.Len(t, c.Send(), 0)
	require.Equal(t, 0, h.Deliver("G9", []byte(`{}`)))
}

func TestHubUnsubscribeAll(t *testing.T) {
	h := NewHub()
	a := NewSubscriber("A", 4)
	h.Subscribe("G1", a)
	h.Subscribe("G2", a)

	h.UnsubscribeAll(a)
	require.Zero(t, h.SubscriberCount("G1"))
	require.Zero(t, h.SubscriberCount("G2"))
	require.Empty(t, a.groups)
}

func TestHubEvictOnlyThatUser(t *testing.T) {
	h := NewHub()
	a1 := NewSubscriber("A", 4)
	a2 := NewSubscriber("A", 4)
	b := NewSubscriber("B", 4)
	h.Subscribe("G1", a1)
	h.Subscribe("G1", a2)
	h.Subscribe("G1", b)
	h.Subscribe("G2", a1)

	require.Equal(t, 2, h.Evict("G1", "A"))
	require.Equal(t, 1, h.SubscriberCount("G1"))
	require.Equal(t, 1, h.SubscriberCount("G2"))

	ev := recv(t, a1)
	require.Equal(t, EventRemovedFromGroup, ev.Event)
	require.Equal(t, "group:G1", ev.Channel)

	h.Deliver("G1", []byte(`{"event":"newGroupMessage"}`))
	require.Len(t, a1.Send(), 0)
	require.Len(t, a2.Send(), 1)
	require.Len(t, b.Send(), 1)
}

func TestHubCloseGroup(t *testing.T) {
	h := NewHub()
	a := NewSubscriber("A", 4)
	b := NewSubscriber("B", 4)
	h.Subscribe("G1", a)
	h.Subscribe("G1", b)

	require.Equal(t, 2, h.CloseGroup("G1"))
	require.Zero(t, h.SubscriberCount("G1"))
	require.Equal(t, EventGroupDeleted, recv(t, a).Event)
	require.Equal(t, EventGroupDeleted, recv(t, b).Event)
}

func TestEncodeGroupEvent(t *testing.T) {
	b, err := EncodeGroupEvent("newGroupMessage", "G1", map[string]string{"text": "hi"})
	require.NoError(t, err)
	require.JSONEq(t, `{"event":"newGroupMessage","channel":"group:G1","data":{"text":"hi"}}`, string(b))
}
