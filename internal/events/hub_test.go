package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHubPublishSubscribe(t *testing.T) {
	h := NewHub()
	var got []Event
	unsub := h.Subscribe(TopicDeckSaved, func(_ context.Context, e Event) {
		got = append(got, e)
	})

	h.Publish(context.Background(), TopicDeckSaved, "deck-1", nil)
	h.Publish(context.Background(), TopicDeckDeleted, "deck-1", nil)
	require.Len(t, got, 1)
	require.Equal(t, TopicDeckSaved, got[0].Topic)
	require.Equal(t, "deck-1", got[0].Payload)

	unsub()
	h.Publish(context.Background(), TopicDeckSaved, "deck-2", nil)
	require.Len(t, got, 1)
}
