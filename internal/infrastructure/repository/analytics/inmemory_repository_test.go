package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "jan-server/services/engage-api/internal/domain/analytics"
)

func TestInMemoryRepository_Overview(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := domain.NewService(repo, zerolog.Nop())
	ctx := context.Background()

	for i, status := range []string{"initiated", "initiated", "busy"} {
		_, err := svc.RecordCall(ctx, domain.CallRecord{CallID: callIDs[i], Status: status, Sector: "banking"})
		require.NoError(t, err)
	}
	require.NoError(t, svc.UpdateCallStatus(ctx, "call_a", "completed", 40))
	require.NoError(t, svc.UpdateCallStatus(ctx, "call_b", "completed", 80))
	require.NoError(t, svc.UpdateCallStatus(ctx, "call_missing", "completed", 10))

	for _, intent := range []string{"loan_inquiry", "loan_inquiry", "complaint", "account_inquiry", "loan_inquiry", "complaint", "a", "b", "c"} {
		_, err := svc.RecordIntent(ctx, domain.IntentRecord{Intent: intent, Sector: "banking"})
		require.NoError(t, err)
	}
	_, err := svc.RecordMessage(ctx, domain.MessageRecord{Content: "hi", Role: "user"})
	require.NoError(t, err)

	overview, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), overview.TotalCalls)
	assert.Equal(t, int64(1), overview.TotalMessages)
	assert.InDelta(t, 66.67, overview.SuccessRate, 0.001)
	assert.InDelta(t, 40.0, overview.AvgCallDuration, 0.001)
	require.Len(t, overview.TopIntents, 5)
	assert.Equal(t, domain.IntentCount{Intent: "loan_inquiry", Count: 3}, overview.TopIntents[0])
	assert.Equal(t, domain.IntentCount{Intent: "complaint", Count: 2}, overview.TopIntents[1])
}

var callIDs = []string{"call_a", "call_b", "call_c"}

func TestInMemoryRepository_Filters(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	records := []domain.MessageRecord{
		{ID: "1", Channel: "whatsapp", Sector: "banking", Timestamp: base},
		{ID: "2", Channel: "sms", Sector: "banking", Timestamp: base.Add(time.Hour)},
		{ID: "3", Channel: "whatsapp", Sector: "insurance", Timestamp: base.Add(2 * time.Hour)},
		{ID: "4", Channel: "whatsapp", Sector: "banking", Timestamp: base.Add(3 * time.Hour)},
	}
	for i := range records {
		require.NoError(t, repo.CreateMessage(ctx, &records[i]))
	}

	start := base.Add(30 * time.Minute)
	tests := []struct {
		name   string
		filter domain.Filter
		want   []string
	}{
		{"all newest first", domain.Filter{}, []string{"4", "3", "2", "1"}},
		{"sector", domain.Filter{Sector: "banking"}, []string{"4", "2", "1"}},
		{"channel and start", domain.Filter{Channel: "whatsapp", StartDate: &start}, []string{"4", "3"}},
		{"limit", domain.Filter{Limit: 2}, []string{"4", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListMessages(ctx, tt.filter)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, m := range got {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestInMemoryRepository_IntentDistribution(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	for _, r := range []domain.IntentRecord{
		{Intent: "claim_status", Sector: "insurance"},
		{Intent: "loan_inquiry", Sector: "banking"},
		{Intent: "loan_inquiry", Sector: "banking"},
		{Intent: "complaint", Sector: "banking"},
	} {
		rec := r
		require.NoError(t, repo.CreateIntent(ctx, &rec))
	}

	got, err := repo.IntentDistribution(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.IntentShare{
		{Sector: "banking", Intent: "loan_inquiry", Count: 2},
		{Sector: "banking", Intent: "complaint", Count: 1},
		{Sector: "insurance", Intent: "claim_status", Count: 1},
	}, got)
}
