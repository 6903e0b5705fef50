package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Service exposes the conversation operations used by the router and assistant.
type Service struct {
	store       Store
	maxMessages int
	log         zerolog.Logger
	now         func() time.Time
}

// NewService creates a conversation service. maxMessages <= 0 keeps the full history.
func NewService(store Store, maxMessages int, log zerolog.Logger) *Service {
	return &Service{
		store:       store,
		maxMessages: maxMessages,
		log:         log.With().Str("component", "conversation-service").Logger(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// GetOrCreate returns the user's session, creating it if needed, and touches last activity.
func (s *Service) GetOrCreate(ctx context.Context, userID string) (*Session, error) {
	sess, err := s.store.Mutate(ctx, userID, s.now(), func(sess *Session) error {
		sess.LastActivity = s.now()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return sess, nil
}

// Append adds a message to the user's history, dropping the oldest entries beyond the cap.
func (s *Service) Append(ctx context.Context, userID string, role Role, content string) (*Session, error) {
	sess, err := s.store.Mutate(ctx, userID, s.now(), func(sess *Session) error {
		now := s.now()
		sess.Messages = append(sess.Messages, Message{Role: role, Content: content, Timestamp: now})
		if s.maxMessages > 0 && len(sess.Messages) > s.maxMessages {
			dropped := len(sess.Messages) - s.maxMessages
			sess.Messages = append([]Message(nil), sess.Messages[dropped:]...)
		}
		sess.LastActivity = now
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	return sess, nil
}

// SetContext stores a channel context value such as the customer's sector.
func (s *Service) SetContext(ctx context.Context, userID, key, value string) (*Session, error) {
	sess, err := s.store.Mutate(ctx, userID, s.now(), func(sess *Session) error {
		if sess.Context == nil {
			sess.Context = map[string]string{}
		}
		sess.Context[key] = value
		sess.LastActivity = s.now()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set conversation context: %w", err)
	}
	return sess, nil
}

// Get returns the user's session without creating one.
func (s *Service) Get(ctx context.Context, userID string) (*Session, error) {
	return s.store.Get(ctx, userID)
}
