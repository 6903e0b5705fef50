package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const topIntentLimit = 5

// Service records and reports engagement analytics.
type Service struct {
	repo Repository
	log  zerolog.Logger
	now  func() time.Time
}

// NewService wires the analytics service with its repository.
func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "analytics-service").Logger(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// RecordCall stores a call record, assigning id and timestamps when unset.
func (s *Service) RecordCall(ctx context.Context, record CallRecord) (CallRecord, error) {
	now := s.now()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	if record.Direction == "" {
		record.Direction = DirectionOutbound
	}
	if err := s.repo.CreateCall(ctx, &record); err != nil {
		s.log.Error().Err(err).Str("call_id", record.CallID).Msg("record call")
		return CallRecord{}, err
	}
	return record, nil
}

// UpdateCallStatus mirrors a provider status onto the call's record.
func (s *Service) UpdateCallStatus(ctx context.Context, callID, status string, duration int) error {
	if err := s.repo.UpsertCallStatus(ctx, callID, status, duration); err != nil {
		s.log.Error().Err(err).Str("call_id", callID).Msg("update call status")
		return err
	}
	return nil
}

// RecordMessage stores a message record. Content is expected to be redacted already.
func (s *Service) RecordMessage(ctx context.Context, record MessageRecord) (MessageRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = s.now()
	}
	if record.Channel == "" {
		record.Channel = ChannelWhatsApp
	}
	if err := s.repo.CreateMessage(ctx, &record); err != nil {
		s.log.Error().Err(err).Str("channel", record.Channel).Msg("record message")
		return MessageRecord{}, err
	}
	return record, nil
}

// RecordIntent stores a classified intent.
func (s *Service) RecordIntent(ctx context.Context, record IntentRecord) (IntentRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = s.now()
	}
	if err := s.repo.CreateIntent(ctx, &record); err != nil {
		s.log.Error().Err(err).Str("intent", record.Intent).Msg("record intent")
		return IntentRecord{}, err
	}
	return record, nil
}

// Overview computes totals, the completed-call rate in percent and the five most common intents.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	stats, err := s.repo.CallStats(ctx)
	if err != nil {
		return Overview{}, err
	}
	messages, err := s.repo.CountMessages(ctx)
	if err != nil {
		return Overview{}, err
	}
	top, err := s.repo.TopIntents(ctx, topIntentLimit)
	if err != nil {
		return Overview{}, err
	}

	rate := decimal.Zero
	if stats.Total > 0 {
		rate = decimal.NewFromInt(stats.Completed).
			Div(decimal.NewFromInt(stats.Total)).
			Mul(decimal.NewFromInt(100))
	}
	if top == nil {
		top = []IntentCount{}
	}
	return Overview{
		TotalCalls:      stats.Total,
		TotalMessages:   messages,
		SuccessRate:     rate.Round(2).InexactFloat64(),
		AvgCallDuration: decimal.NewFromFloat(stats.AvgDuration).Round(2).InexactFloat64(),
		TopIntents:      top,
	}, nil
}

// Calls lists call records matching filter.
func (s *Service) Calls(ctx context.Context, filter Filter) ([]CallRecord, error) {
	return s.repo.ListCalls(ctx, filter)
}

// Messages lists message records matching filter.
func (s *Service) Messages(ctx context.Context, filter Filter) ([]MessageRecord, error) {
	return s.repo.ListMessages(ctx, filter)
}

// Intents returns intent counts grouped by sector and intent.
func (s *Service) Intents(ctx context.Context) ([]IntentShare, error) {
	return s.repo.IntentDistribution(ctx)
}
