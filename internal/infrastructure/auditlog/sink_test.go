package auditlog

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/engage-api/internal/domain/audit"
)

type captureWriter struct {
	mu     sync.Mutex
	events []audit.Event
	err    error
}

func (w *captureWriter) Write(_ context.Context, events []audit.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, events...)
	return w.err
}

func TestAsyncSink_DeliversOnStop(t *testing.T) {
	var buf bytes.Buffer
	writer := &captureWriter{}
	sink := NewAsyncSink(16, writer, zerolog.New(&buf))

	meta := map[string]any{"granted": true}
	sink.Emit(context.Background(), "consent_whatsapp", "+919876543210", meta)
	meta["granted"] = false
	sink.Emit(context.Background(), "sms_message_sent", "+919876543210", nil)

	sink.Start(context.Background())
	sink.Stop()

	require.Len(t, writer.events, 2)
	first := writer.events[0]
	assert.Equal(t, "consent_whatsapp", first.Name)
	assert.Equal(t, true, first.Metadata["granted"])
	assert.True(t, strings.HasPrefix(first.ID, "evt_"))
	assert.NotEqual(t, first.ID, writer.events[1].ID)
	assert.False(t, first.Timestamp.IsZero())

	assert.Contains(t, buf.String(), `"audit":true`)
	assert.Contains(t, buf.String(), `"event":"sms_message_sent"`)
}

func TestAsyncSink_DropsWhenFull(t *testing.T) {
	var buf bytes.Buffer
	writer := &captureWriter{}
	sink := NewAsyncSink(1, writer, zerolog.New(&buf))

	sink.Emit(context.Background(), "first", "u1", nil)
	sink.Emit(context.Background(), "second", "u1", map[string]any{"message_sid": "SM9"})

	sink.Start(context.Background())
	sink.Stop()

	require.Len(t, writer.events, 1)
	assert.Equal(t, "first", writer.events[0].Name)
	assert.Contains(t, buf.String(), "audit buffer full, event dropped")
	assert.Contains(t, buf.String(), `"message_sid":"SM9"`)
}

func TestAsyncSink_ConsentEventsAreNeverDropped(t *testing.T) {
	writer := &captureWriter{}
	sink := NewAsyncSink(1, writer, zerolog.Nop())
	sink.consentWait = 10 * time.Millisecond

	sink.Emit(context.Background(), "sms_message_sent", "u1", nil)
	sink.Emit(context.Background(), "consent_whatsapp", "u1", map[string]any{"granted": false})

	// the worker is not running yet, so the consent event went out inline
	writer.mu.Lock()
	require.Len(t, writer.events, 1)
	assert.Equal(t, "consent_whatsapp", writer.events[0].Name)
	assert.Equal(t, false, writer.events[0].Metadata["granted"])
	writer.mu.Unlock()

	sink.Start(context.Background())
	sink.Stop()
	assert.Len(t, writer.events, 2)
}

func TestAsyncSink_ConsentEventWaitsForSpace(t *testing.T) {
	writer := &captureWriter{}
	sink := NewAsyncSink(1, writer, zerolog.Nop())
	sink.consentWait = 2 * time.Second

	sink.Emit(context.Background(), "sms_message_sent", "u1", nil)
	go func() {
		time.Sleep(20 * time.Millisecond)
		sink.Start(context.Background())
	}()
	sink.Emit(context.Background(), "consent_sms", "u1", nil)
	sink.Stop()

	require.Len(t, writer.events, 2)
	assert.Equal(t, "sms_message_sent", writer.events[0].Name)
	assert.Equal(t, "consent_sms", writer.events[1].Name)
}

func TestAsyncSink_WriterErrorDoesNotStopDelivery(t *testing.T) {
	var buf bytes.Buffer
	writer := &captureWriter{err: errors.New("db down")}
	sink := NewAsyncSink(4, writer, zerolog.New(&buf))

	sink.Emit(context.Background(), "a", "u1", nil)
	sink.Emit(context.Background(), "b", "u1", nil)
	sink.Start(context.Background())
	sink.Stop()
	sink.Stop()

	assert.Len(t, writer.events, 2)
	assert.Contains(t, buf.String(), "failed to persist audit event")
}

func TestAsyncSink_ImplementsSink(t *testing.T) {
	var _ audit.Sink = NewAsyncSink(1, nil, zerolog.Nop())
}
