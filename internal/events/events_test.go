package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishJSON(t *testing.T) {
	bus := NewEventBus()

	var received []*Event
	bus.Subscribe(EventAppointmentCreated, func(event *Event) error {
		received = append(received, event)
		return nil
	})

	payload := AppointmentEventPayload{
		AppointmentID: 1,
		UserID:        2,
		ProviderID:    3,
		Date:          time.Date(2026, 9, 14, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, bus.PublishJSON(EventAppointmentCreated, payload))

	require.Len(t, received, 1)
	assert.Equal(t, EventAppointmentCreated, received[0].Type)

	var decoded AppointmentEventPayload
	require.NoError(t, json.Unmarshal(received[0].Payload, &decoded))
	assert.Equal(t, int64(3), decoded.ProviderID)
}

func TestPublish_OnlyMatchingSubscribers(t *testing.T) {
	bus := NewEventBus()

	var created, canceled int
	bus.Subscribe(EventAppointmentCreated, func(*Event) error { created++; return nil })
	bus.Subscribe(EventAppointmentCanceled, func(*Event) error { canceled++; return nil })

	require.NoError(t, bus.PublishJSON(EventAppointmentCanceled, AppointmentEventPayload{AppointmentID: 1}))

	assert.Equal(t, 0, created)
	assert.Equal(t, 1, canceled)
}

func TestPublishJSON_NilBus(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventAppointmentCreated, nil))
}
