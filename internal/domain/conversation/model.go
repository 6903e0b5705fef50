package conversation

import "time"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a conversation history.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the per-user text conversation state.
type Session struct {
	UserID       string            `json:"user_id"`
	Messages     []Message         `json:"messages"`
	Context      map[string]string `json:"context"`
	CreatedAt    time.Time         `json:"created_at"`
	LastActivity time.Time         `json:"last_activity"`
}

// NewSession returns an empty session for userID.
func NewSession(userID string, now time.Time) *Session {
	return &Session{
		UserID:       userID,
		Messages:     []Message{},
		Context:      map[string]string{},
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Messages = append([]Message(nil), s.Messages...)
	out.Context = make(map[string]string, len(s.Context))
	for k, v := range s.Context {
		out.Context[k] = v
	}
	return &out
}

// Recent returns up to n of the newest messages, oldest first.
func (s *Session) Recent(n int) []Message {
	if n <= 0 || n >= len(s.Messages) {
		return append([]Message(nil), s.Messages...)
	}
	return append([]Message(nil), s.Messages[len(s.Messages)-n:]...)
}

// IdleSince reports whether the session has seen no activity for longer than ttl.
func (s *Session) IdleSince(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(s.LastActivity) > ttl
}
