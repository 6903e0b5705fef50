package analytics

import (
	domain "jan-server/services/engage-api/internal/domain/analytics"
	"jan-server/services/engage-api/internal/infrastructure/database/entities"
)

func callToEntity(r *domain.CallRecord) *entities.Call {
	return &entities.Call{
		ID:           r.ID,
		CallID:       r.CallID,
		CallSID:      r.ProviderSID,
		ToNumber:     r.ToNumber,
		FromNumber:   r.FromNumber,
		Status:       r.Status,
		Duration:     r.Duration,
		Direction:    r.Direction,
		Purpose:      r.Purpose,
		Outcome:      r.Outcome,
		RecordingURL: r.RecordingURL,
		Transcript:   r.Transcript,
		Summary:      r.Summary,
		Sentiment:    r.Sentiment,
		Sector:       r.Sector,
		Language:     r.Language,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func callFromEntity(e entities.Call) domain.CallRecord {
	return domain.CallRecord{
		ID:           e.ID,
		CallID:       e.CallID,
		ProviderSID:  e.CallSID,
		ToNumber:     e.ToNumber,
		FromNumber:   e.FromNumber,
		Status:       e.Status,
		Duration:     e.Duration,
		Direction:    e.Direction,
		Purpose:      e.Purpose,
		Outcome:      e.Outcome,
		RecordingURL: e.RecordingURL,
		Transcript:   e.Transcript,
		Summary:      e.Summary,
		Sentiment:    e.Sentiment,
		Sector:       e.Sector,
		Language:     e.Language,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func messageToEntity(r *domain.MessageRecord) *entities.Message {
	return &entities.Message{
		ID:         r.ID,
		MessageSID: r.MessageSID,
		ToNumber:   r.ToNumber,
		FromNumber: r.FromNumber,
		Content:    r.Content,
		Role:       r.Role,
		Channel:    r.Channel,
		Direction:  r.Direction,
		Sector:     r.Sector,
		Timestamp:  r.Timestamp,
	}
}

func messageFromEntity(e entities.Message) domain.MessageRecord {
	return domain.MessageRecord{
		ID:         e.ID,
		MessageSID: e.MessageSID,
		ToNumber:   e.ToNumber,
		FromNumber: e.FromNumber,
		Content:    e.Content,
		Role:       e.Role,
		Channel:    e.Channel,
		Direction:  e.Direction,
		Sector:     e.Sector,
		Timestamp:  e.Timestamp,
	}
}

func intentToEntity(r *domain.IntentRecord) *entities.Intent {
	return &entities.Intent{
		ID:            r.ID,
		Intent:        r.Intent,
		Text:          r.Text,
		Confidence:    r.Confidence,
		RequiresHuman: r.RequiresHuman,
		Sector:        r.Sector,
		UserID:        r.UserID,
		RecordedAt:    r.RecordedAt,
	}
}
