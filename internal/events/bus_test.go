package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/nuvme-configurator/internal/events"
)

type stubStore struct {
	last events.Event
	err  error
}

func (s *stubStore) InsertEvent(_ context.Context, ev events.Event) error {
	s.last = ev
	return s.err
}

type captureNotifier struct {
	events []events.Event
}

func (c *captureNotifier) Notify(_ context.Context, ev events.Event) error {
	c.events = append(c.events, ev)
	return nil
}

func TestEmitPersistsEvent(t *testing.T) {
	store := &stubStore{}
	notifier := &captureNotifier{}
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	bus := events.Bus{
		Store:     store,
		Notifiers: []events.Notifier{notifier},
		Now:       func() time.Time { return fixed },
	}

	payload := map[string]any{"quoteId": "q-123"}
	event, err := bus.Emit(context.Background(), events.TopicQuoteSaved, "q-123", payload)
	require.NoError(t, err)
	require.Equal(t, events.TopicQuoteSaved, store.last.Topic)
	require.JSONEq(t, `{"quoteId":"q-123"}`, string(store.last.Payload))
	require.Len(t, notifier.events, 1)
	require.Equal(t, event.ID, notifier.events[0].ID)
	require.Equal(t, fixed, event.OccurredAt)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	require.Equal(t, "q-123", decoded["quoteId"])
}

func TestEmitWithoutStore(t *testing.T) {
	notifier := &captureNotifier{}
	bus := events.Bus{Notifiers: []events.Notifier{notifier}}
	_, err := bus.Emit(context.Background(), events.TopicQuoteSaved, "q-1", `{"a":1}`)
	require.NoError(t, err)
	require.Len(t, notifier.events, 1)
}

func TestEmitRejectsInvalidInput(t *testing.T) {
	bus := events.Bus{}
	_, err := bus.Emit(context.Background(), " ", "q-1", nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicQuoteSaved, "", nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicQuoteSaved, "q-1", "{not json")
	require.Error(t, err)
}

func TestEmitJoinsNotifierErrors(t *testing.T) {
	boom := errors.New("boom")
	capture := &captureNotifier{}
	bus := events.Bus{Notifiers: []events.Notifier{
		events.NotifierFunc(func(context.Context, events.Event) error { return boom }),
		capture,
	}}
	ev, err := bus.Emit(context.Background(), events.TopicQuoteSaved, "q-1", nil)
	require.ErrorIs(t, err, boom)
	require.Len(t, capture.events, 1)
	require.JSONEq(t, `{}`, string(ev.Payload))
}

func TestEmitStoreFailure(t *testing.T) {
	bus := events.Bus{Store: &stubStore{err: errors.New("db down")}}
	_, err := bus.Emit(context.Background(), events.TopicQuoteSaved, "q-1", nil)
	require.ErrorContains(t, err, "persist event")
}
