package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"jan-server/services/engage-api/internal/domain/call"
	"jan-server/services/engage-api/internal/infrastructure/metrics"
)

// ConversationSweeper drops idle conversation sessions.
type ConversationSweeper interface {
	Sweep(ctx context.Context) int
}

// JanitorConfig sets the janitor's retention windows.
type JanitorConfig struct {
	// Retention is how long a finished call stays readable after it ended.
	Retention time.Duration
	// StaleTTL bounds the age of a call that never reached a terminal state.
	StaleTTL time.Duration
	Interval time.Duration
}

// Janitor periodically evicts finished and abandoned call sessions:
// - terminal calls once they ended more than Retention ago
// - open calls created more than StaleTTL ago
// It also sweeps idle conversations when a sweeper is set.
type Janitor struct {
	calls         call.Store
	conversations ConversationSweeper
	cfg           JanitorConfig
	log           zerolog.Logger
	now           func() time.Time
	done          chan struct{}
	wg            sync.WaitGroup
	startOnce     sync.Once
	stopOnce      sync.Once
}

// NewJanitor creates a janitor. conversations may be nil.
func NewJanitor(calls call.Store, conversations ConversationSweeper, cfg JanitorConfig, log zerolog.Logger) *Janitor {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Janitor{
		calls:         calls,
		conversations: conversations,
		cfg:           cfg,
		log:           log.With().Str("component", "session-janitor").Logger(),
		now:           func() time.Time { return time.Now().UTC() },
		done:          make(chan struct{}),
	}
}

// Start begins the sweep loop in background. Only the first call has an effect.
func (j *Janitor) Start(ctx context.Context) {
	j.startOnce.Do(func() {
		j.wg.Add(1)
		go j.run(ctx)
		j.log.Info().Dur("interval", j.cfg.Interval).Msg("session janitor started")
	})
}

// Stop shuts the loop down and waits for it. Only the first call has an effect.
func (j *Janitor) Stop() {
	j.stopOnce.Do(func() {
		close(j.done)
		j.wg.Wait()
		j.log.Info().Msg("session janitor stopped")
	})
}

func (j *Janitor) run(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-j.done:
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep runs one eviction pass and returns the number of call sessions removed.
func (j *Janitor) Sweep(ctx context.Context) int {
	sessions, err := j.calls.List(ctx)
	if err != nil {
		j.log.Error().Err(err).Msg("failed to list call sessions")
		return 0
	}

	now := j.now()
	removed := 0
	for _, sess := range sessions {
		reason := j.evictionReason(sess, now)
		if reason == "" {
			continue
		}
		if err := j.calls.Delete(ctx, sess.ID); err != nil {
			continue
		}
		removed++
		metrics.RecordCallEvicted(reason)
		j.log.Info().
			Str("call_id", sess.ID).
			Str("status", sess.Status.String()).
			Str("reason", reason).
			Dur("age", now.Sub(sess.CreatedAt)).
			Msg("call session evicted")
	}
	metrics.ActiveCallSessions.Set(float64(len(sessions) - removed))

	if j.conversations != nil {
		if n := j.conversations.Sweep(ctx); n > 0 {
			j.log.Info().Int("removed", n).Msg("idle conversations swept")
		}
	}
	return removed
}

func (j *Janitor) evictionReason(sess *call.Session, now time.Time) string {
	if sess.Status.IsTerminal() {
		ended := sess.UpdatedAt
		if sess.EndedAt != nil {
			ended = *sess.EndedAt
		}
		if j.cfg.Retention > 0 && now.Sub(ended) > j.cfg.Retention {
			return "retention"
		}
		return ""
	}
	if j.cfg.StaleTTL > 0 && now.Sub(sess.CreatedAt) > j.cfg.StaleTTL {
		return "stale"
	}
	return ""
}
