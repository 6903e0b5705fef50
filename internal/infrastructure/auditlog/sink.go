// Package auditlog delivers audit events off the request path.
package auditlog

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"jan-server/services/engage-api/internal/domain/audit"
	"jan-server/services/engage-api/internal/infrastructure/metrics"
	"jan-server/services/engage-api/internal/utils/idgen"
)

const (
	defaultBufferSize = 1024
	// consentEnqueueWait bounds how long a consent event waits for buffer space before inline delivery.
	consentEnqueueWait = 250 * time.Millisecond
	consentEventPrefix = "consent_"
)

// Writer persists a batch of audit events.
type Writer interface {
	Write(ctx context.Context, events []audit.Event) error
}

// AsyncSink queues events on a buffered channel and drains them on a worker goroutine.
// Emit never blocks on ordinary events: when the buffer is full they are dropped, counted and
// logged with their payload. Consent events are never dropped: they wait briefly for space and
// are delivered inline on the caller's goroutine when the buffer stays full.
type AsyncSink struct {
	events      chan audit.Event
	writer      Writer
	consentWait time.Duration
	auditLog  zerolog.Logger
	log       zerolog.Logger
	now       func() time.Time
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewAsyncSink creates a sink. writer may be nil, in which case events are only logged.
func NewAsyncSink(bufferSize int, writer Writer, log zerolog.Logger) *AsyncSink {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &AsyncSink{
		events:      make(chan audit.Event, bufferSize),
		writer:      writer,
		consentWait: consentEnqueueWait,
		auditLog:    log.With().Bool("audit", true).Logger(),
		log:         log.With().Str("component", "audit-sink").Logger(),
		now:         func() time.Time { return time.Now().UTC() },
		done:        make(chan struct{}),
	}
}

// Emit queues an audit event.
func (s *AsyncSink) Emit(ctx context.Context, name, userID string, metadata map[string]any) {
	event := audit.Event{
		ID:        idgen.NewEventID("evt"),
		Name:      name,
		UserID:    userID,
		Metadata:  copyMetadata(metadata),
		Timestamp: s.now(),
	}

	select {
	case s.events <- event:
		return
	default:
	}

	if strings.HasPrefix(name, consentEventPrefix) {
		s.emitConsent(ctx, event)
		return
	}

	metrics.RecordAuditDropped()
	s.log.Warn().
		Str("event_id", event.ID).
		Str("event", name).
		Str("user_id", userID).
		Interface("metadata", event.Metadata).
		Time("event_time", event.Timestamp).
		Msg("audit buffer full, event dropped")
}

func (s *AsyncSink) emitConsent(ctx context.Context, event audit.Event) {
	timer := time.NewTimer(s.consentWait)
	defer timer.Stop()

	select {
	case s.events <- event:
		return
	case <-timer.C:
	case <-ctx.Done():
	}

	s.log.Warn().Str("event_id", event.ID).Str("event", event.Name).Msg("audit buffer full, delivering consent event inline")
	s.deliver(context.WithoutCancel(ctx), event)
}

// Start runs the delivery worker. Only the first call has an effect.
func (s *AsyncSink) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go s.run(ctx)
	})
}

// Stop drains queued events and waits for the worker. Only the first call has an effect.
func (s *AsyncSink) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
}

func (s *AsyncSink) run(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case ev := <-s.events:
			s.deliver(ctx, ev)
		case <-ctx.Done():
			s.drain(context.WithoutCancel(ctx))
			return
		case <-s.done:
			s.drain(ctx)
			return
		}
	}
}

func (s *AsyncSink) drain(ctx context.Context) {
	for {
		select {
		case ev := <-s.events:
			s.deliver(ctx, ev)
		default:
			return
		}
	}
}

func (s *AsyncSink) deliver(ctx context.Context, ev audit.Event) {
	metrics.RecordAuditEvent(ev.Name)
	s.auditLog.Info().
		Str("event_id", ev.ID).
		Str("event", ev.Name).
		Str("user_id", ev.UserID).
		Interface("metadata", ev.Metadata).
		Time("event_time", ev.Timestamp).
		Msg("audit event")

	if s.writer == nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.writer.Write(writeCtx, []audit.Event{ev}); err != nil {
		s.log.Error().Err(err).Str("event_id", ev.ID).Msg("failed to persist audit event")
	}
}

func copyMetadata(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
