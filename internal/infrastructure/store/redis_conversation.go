package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"jan-server/services/engage-api/internal/domain/conversation"
)

const conversationLockExpiry = 5 * time.Second

// RedisConversationStore keeps each session as a JSON document that expires after the idle TTL.
// Mutations are serialized across replicas with a redsync mutex per user.
type RedisConversationStore struct {
	client redis.UniversalClient
	rs     *redsync.Redsync
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisConversationStore creates a conversation store on client.
func NewRedisConversationStore(client redis.UniversalClient, ttl time.Duration, log zerolog.Logger) *RedisConversationStore {
	return &RedisConversationStore{
		client: client,
		rs:     redsync.New(goredis.NewPool(client)),
		ttl:    ttl,
		log:    log.With().Str("component", "conversation-store").Logger(),
	}
}

// Mutate loads or creates the session, applies fn under the user's distributed lock and writes it back.
func (s *RedisConversationStore) Mutate(ctx context.Context, userID string, now time.Time, fn conversation.MutateFunc) (*conversation.Session, error) {
	mutex := s.rs.NewMutex(conversationLockName(userID),
		redsync.WithExpiry(conversationLockExpiry),
		redsync.WithTries(64),
		redsync.WithRetryDelay(25*time.Millisecond),
	)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("lock conversation: %w", err)
	}
	defer func() {
		if _, err := mutex.UnlockContext(context.WithoutCancel(ctx)); err != nil {
			s.log.Error().Err(err).Msg("failed to unlock conversation mutex")
		}
	}()

	sess, err := s.load(ctx, userID)
	if errors.Is(err, conversation.ErrSessionNotFound) {
		sess = conversation.NewSession(userID, now)
	} else if err != nil {
		return nil, err
	}

	if err := fn(sess); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("encode conversation: %w", err)
	}
	if err := s.client.Set(ctx, conversationKey(userID), payload, s.expiry()).Err(); err != nil {
		return nil, fmt.Errorf("store conversation: %w", err)
	}
	return sess, nil
}

// Get returns the user's live session.
func (s *RedisConversationStore) Get(ctx context.Context, userID string) (*conversation.Session, error) {
	return s.load(ctx, userID)
}

// Delete removes the user's session.
func (s *RedisConversationStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, conversationKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

func (s *RedisConversationStore) load(ctx context.Context, userID string) (*conversation.Session, error) {
	raw, err := s.client.Get(ctx, conversationKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, conversation.ErrSessionNotFound
		}
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	return decodeConversation(raw)
}

func (s *RedisConversationStore) expiry() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	return s.ttl
}

func decodeConversation(raw []byte) (*conversation.Session, error) {
	var sess conversation.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	if sess.Messages == nil {
		sess.Messages = []conversation.Message{}
	}
	if sess.Context == nil {
		sess.Context = map[string]string{}
	}
	return &sess, nil
}
