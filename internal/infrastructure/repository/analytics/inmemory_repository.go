package analytics

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "jan-server/services/engage-api/internal/domain/analytics"
)

// InMemoryRepository keeps analytics in process memory.
type InMemoryRepository struct {
	mu       sync.RWMutex
	calls    []domain.CallRecord
	messages []domain.MessageRecord
	intents  []domain.IntentRecord
}

// NewInMemoryRepository returns an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) CreateCall(_ context.Context, record *domain.CallRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, *record)
	return nil
}

func (r *InMemoryRepository) UpsertCallStatus(_ context.Context, callID, status string, duration int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.calls {
		if r.calls[i].CallID != callID {
			continue
		}
		r.calls[i].Status = status
		if duration > 0 {
			r.calls[i].Duration = duration
		}
		r.calls[i].UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (r *InMemoryRepository) CreateMessage(_ context.Context, record *domain.MessageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, *record)
	return nil
}

func (r *InMemoryRepository) CreateIntent(_ context.Context, record *domain.IntentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents = append(r.intents, *record)
	return nil
}

func (r *InMemoryRepository) ListCalls(_ context.Context, filter domain.Filter) ([]domain.CallRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.CallRecord, 0, len(r.calls))
	for i := len(r.calls) - 1; i >= 0; i-- {
		c := r.calls[i]
		if filter.Sector != "" && c.Sector != filter.Sector {
			continue
		}
		if !inRange(c.CreatedAt, filter) {
			continue
		}
		out = append(out, c)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *InMemoryRepository) ListMessages(_ context.Context, filter domain.Filter) ([]domain.MessageRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.MessageRecord, 0, len(r.messages))
	for i := len(r.messages) - 1; i >= 0; i-- {
		m := r.messages[i]
		if filter.Sector != "" && m.Sector != filter.Sector {
			continue
		}
		if filter.Channel != "" && m.Channel != filter.Channel {
			continue
		}
		if !inRange(m.Timestamp, filter) {
			continue
		}
		out = append(out, m)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *InMemoryRepository) CallStats(context.Context) (domain.CallStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var stats domain.CallStats
	var total int
	for _, c := range r.calls {
		stats.Total++
		if c.Status == "completed" {
			stats.Completed++
		}
		total += c.Duration
	}
	if stats.Total > 0 {
		stats.AvgDuration = float64(total) / float64(stats.Total)
	}
	return stats, nil
}

func (r *InMemoryRepository) CountMessages(context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.messages)), nil
}

func (r *InMemoryRepository) TopIntents(_ context.Context, limit int) ([]domain.IntentCount, error) {
	r.mu.RLock()
	counts := make(map[string]int64)
	for _, in := range r.intents {
		counts[in.Intent]++
	}
	r.mu.RUnlock()

	out := make([]domain.IntentCount, 0, len(counts))
	for intent, n := range counts {
		out = append(out, domain.IntentCount{Intent: intent, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Intent < out[j].Intent
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryRepository) IntentDistribution(context.Context) ([]domain.IntentShare, error) {
	type key struct{ sector, intent string }
	r.mu.RLock()
	counts := make(map[key]int64)
	for _, in := range r.intents {
		counts[key{in.Sector, in.Intent}]++
	}
	r.mu.RUnlock()

	out := make([]domain.IntentShare, 0, len(counts))
	for k, n := range counts {
		out = append(out, domain.IntentShare{Sector: k.sector, Intent: k.intent, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sector != out[j].Sector {
			return out[i].Sector < out[j].Sector
		}
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Intent < out[j].Intent
	})
	return out, nil
}

func inRange(t time.Time, filter domain.Filter) bool {
	if filter.StartDate != nil && t.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && t.After(*filter.EndDate) {
		return false
	}
	return true
}
