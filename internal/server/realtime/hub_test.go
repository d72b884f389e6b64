package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamvivek907/GokulsweetsCostAnalytics/internal/server/models"
)

func TestHub_RoutesByWorkspaceAndCollection(t *testing.T) {
	h := NewHub()

	ingredients, cancel1 := h.Subscribe("ws1", []string{"ingredients"})
	defer cancel1()
	everything, cancel2 := h.Subscribe("ws1", nil)
	defer cancel2()
	otherWS, cancel3 := h.Subscribe("ws2", nil)
	defer cancel3()

	h.Publish("ws1", models.Event{Type: models.EventInsert, Collection: "ingredients"})
	h.Publish("ws1", models.Event{Type: models.EventUpdate, Collection: "recipes"})

	require.Len(t, ingredients, 1)
	assert.Equal(t, "ingredients", (<-ingredients).Collection)

	require.Len(t, everything, 2)
	assert.Len(t, otherWS, 0)
}

func TestHub_CancelStopsDelivery(t *testing.T) {
	h := NewHub()

	ch, cancel := h.Subscribe("ws1", nil)
	cancel()

	// channel is closed, publish must not panic
	h.Publish("ws1", models.Event{Type: models.EventDelete, Collection: "staff"})

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.Len())
}

func TestHub_CancelIsIdempotent(t *testing.T) {
	h := NewHub()

	_, cancel := h.Subscribe("ws1", nil)
	cancel()
	cancel()

	assert.Equal(t, 0, h.Len())
}

func TestHub_DropsSlowSubscriber(t *testing.T) {
	h := NewHub()

	ch, cancel := h.Subscribe("ws1", nil)
	defer cancel()

	for i := 0; i < subscriberBuffer+1; i++ {
		h.Publish("ws1", models.Event{Type: models.EventInsert, Collection: "ingredients"})
	}

	assert.Equal(t, 0, h.Len())

	n := 0
	for range ch {
		n++
	}
	assert.Equal(t, subscriberBuffer, n)
}
