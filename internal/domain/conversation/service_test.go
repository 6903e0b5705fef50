package conversation_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/engage-api/internal/domain/conversation"
)

// lockedStore is a minimal Store that serializes every mutation behind one mutex.
type lockedStore struct {
	mu       sync.Mutex
	sessions map[string]*conversation.Session
}

func newLockedStore() *lockedStore {
	return &lockedStore{sessions: make(map[string]*conversation.Session)}
}

func (s *lockedStore) Mutate(_ context.Context, userID string, now time.Time, fn conversation.MutateFunc) (*conversation.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = conversation.NewSession(userID, now)
	}
	working := sess.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	s.sessions[userID] = working
	return working.Clone(), nil
}

func (s *lockedStore) Get(_ context.Context, userID string) (*conversation.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, conversation.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

func (s *lockedStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func TestService_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	svc := conversation.NewService(newLockedStore(), 0, zerolog.Nop())

	first, err := svc.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", first.UserID)
	assert.Empty(t, first.Messages)

	time.Sleep(2 * time.Millisecond)
	second, err := svc.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, second.CreatedAt, "same session is returned")
	assert.True(t, second.LastActivity.After(first.LastActivity), "access touches last activity")
}

func TestService_AppendKeepsOrder(t *testing.T) {
	ctx := context.Background()
	svc := conversation.NewService(newLockedStore(), 0, zerolog.Nop())

	_, err := svc.Append(ctx, "u1", conversation.RoleUser, "hi")
	require.NoError(t, err)
	sess, err := svc.Append(ctx, "u1", conversation.RoleAssistant, "hello")
	require.NoError(t, err)

	require.Len(t, sess.Messages, 2)
	assert.Equal(t, conversation.RoleUser, sess.Messages[0].Role)
	assert.Equal(t, "hello", sess.Messages[1].Content)
}

func TestService_AppendCapsHistory(t *testing.T) {
	ctx := context.Background()
	svc := conversation.NewService(newLockedStore(), 3, zerolog.Nop())

	var sess *conversation.Session
	var err error
	for i := 0; i < 5; i++ {
		sess, err = svc.Append(ctx, "u1", conversation.RoleUser, fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	require.Len(t, sess.Messages, 3)
	assert.Equal(t, "m2", sess.Messages[0].Content)
	assert.Equal(t, "m4", sess.Messages[2].Content)
}

func TestService_SnapshotsAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc := conversation.NewService(newLockedStore(), 0, zerolog.Nop())

	sess, err := svc.Append(ctx, "u1", conversation.RoleUser, "hi")
	require.NoError(t, err)
	sess.Messages[0].Content = "tampered"
	sess.Context["sector"] = "tampered"

	stored, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "hi", stored.Messages[0].Content)
	assert.Empty(t, stored.Context["sector"])
}

func TestService_SetContext(t *testing.T) {
	ctx := context.Background()
	svc := conversation.NewService(newLockedStore(), 0, zerolog.Nop())

	sess, err := svc.SetContext(ctx, "u1", "sector", "insurance")
	require.NoError(t, err)
	assert.Equal(t, "insurance", sess.Context["sector"])
}

func TestService_ConcurrentAppendsLoseNothing(t *testing.T) {
	ctx := context.Background()
	svc := conversation.NewService(newLockedStore(), 0, zerolog.Nop())

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Append(ctx, "u1", conversation.RoleUser, fmt.Sprintf("m%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	sess, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sess.Messages, writers)

	seen := make(map[string]bool, writers)
	for _, m := range sess.Messages {
		assert.False(t, seen[m.Content], "duplicate %s", m.Content)
		seen[m.Content] = true
	}
}

func TestSession_Recent(t *testing.T) {
	sess := conversation.NewSession("u1", time.Now())
	for i := 0; i < 4; i++ {
		sess.Messages = append(sess.Messages, conversation.Message{Content: fmt.Sprintf("m%d", i)})
	}

	recent := sess.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "m2", recent[0].Content)
	assert.Len(t, sess.Recent(0), 4)
}
