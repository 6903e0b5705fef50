package analytics

import "context"

// Repository persists analytics records.
type Repository interface {
	CreateCall(ctx context.Context, record *CallRecord) error
	UpsertCallStatus(ctx context.Context, callID, status string, duration int) error
	CreateMessage(ctx context.Context, record *MessageRecord) error
	CreateIntent(ctx context.Context, record *IntentRecord) error

	ListCalls(ctx context.Context, filter Filter) ([]CallRecord, error)
	ListMessages(ctx context.Context, filter Filter) ([]MessageRecord, error)

	CallStats(ctx context.Context) (CallStats, error)
	CountMessages(ctx context.Context) (int64, error)
	TopIntents(ctx context.Context, limit int) ([]IntentCount, error)
	IntentDistribution(ctx context.Context) ([]IntentShare, error)
}
