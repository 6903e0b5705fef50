package inbound_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/engage-api/internal/domain/analytics"
	"jan-server/services/engage-api/internal/domain/consent"
	"jan-server/services/engage-api/internal/domain/conversation"
	"jan-server/services/engage-api/internal/domain/inbound"
	"jan-server/services/engage-api/internal/domain/redact"
)

type memLedger struct {
	mu      sync.Mutex
	records map[string]consent.Record
}

func newMemLedger() *memLedger {
	return &memLedger{records: make(map[string]consent.Record)}
}

func (l *memLedger) Check(_ context.Context, userID string, t consent.Type) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.records[consent.Key(userID, t)].Granted
}

func (l *memLedger) Record(_ context.Context, userID string, t consent.Type, granted bool, metadata map[string]any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[consent.Key(userID, t)] = consent.Record{UserID: userID, Type: t, Granted: granted, Metadata: metadata}
	return nil
}

type memConversations struct {
	mu       sync.Mutex
	sessions map[string]*conversation.Session
}

func newMemConversations() *memConversations {
	return &memConversations{sessions: make(map[string]*conversation.Session)}
}

func (c *memConversations) Append(_ context.Context, userID string, role conversation.Role, content string) (*conversation.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sess, ok := c.sessions[userID]
	if !ok {
		sess = conversation.NewSession(userID, time.Now())
		c.sessions[userID] = sess
	}
	sess.Messages = append(sess.Messages, conversation.Message{Role: role, Content: content, Timestamp: time.Now()})
	return sess.Clone(), nil
}

func (c *memConversations) get(userID string) *conversation.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[userID].Clone()
}

type fakeGenerator struct {
	ClassifyIntentFunc   func(ctx context.Context, text, sector string) (inbound.Intent, error)
	GenerateResponseFunc func(ctx context.Context, req inbound.ResponseRequest) (string, error)
	classifyCalls        int
	generateCalls        int
	lastRequest          inbound.ResponseRequest
}

func (f *fakeGenerator) ClassifyIntent(ctx context.Context, text, sector string) (inbound.Intent, error) {
	f.classifyCalls++
	return f.ClassifyIntentFunc(ctx, text, sector)
}

func (f *fakeGenerator) GenerateResponse(ctx context.Context, req inbound.ResponseRequest) (string, error) {
	f.generateCalls++
	f.lastRequest = req
	return f.GenerateResponseFunc(ctx, req)
}

type captureRecorder struct {
	messages []analytics.MessageRecord
	intents  []analytics.IntentRecord
}

func (r *captureRecorder) RecordMessage(_ context.Context, m analytics.MessageRecord) (analytics.MessageRecord, error) {
	r.messages = append(r.messages, m)
	return m, nil
}

func (r *captureRecorder) RecordIntent(_ context.Context, i analytics.IntentRecord) (analytics.IntentRecord, error) {
	r.intents = append(r.intents, i)
	return i, nil
}

type captureSink struct {
	mu     sync.Mutex
	names  []string
	fields []map[string]any
}

func (s *captureSink) Emit(_ context.Context, name, _ string, metadata map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = append(s.names, name)
	s.fields = append(s.fields, metadata)
}

type fixture struct {
	ledger   *memLedger
	convs    *memConversations
	gen      *fakeGenerator
	recorder *captureRecorder
	sink     *captureSink
	router   *inbound.Router
	asst     *inbound.Assistant
}

func newFixture() *fixture {
	f := &fixture{
		ledger:   newMemLedger(),
		convs:    newMemConversations(),
		recorder: &captureRecorder{},
		sink:     &captureSink{},
		gen: &fakeGenerator{
			ClassifyIntentFunc: func(context.Context, string, string) (inbound.Intent, error) {
				return inbound.Intent{Name: "account_inquiry", Confidence: 0.9}, nil
			},
			GenerateResponseFunc: func(context.Context, inbound.ResponseRequest) (string, error) {
				return "Your account is active.", nil
			},
		},
	}
	redactor := redact.New(true, []redact.Kind{redact.KindPhone, redact.KindEmail, redact.KindAadhaar, redact.KindPAN, redact.KindAccount})
	f.router = inbound.NewRouter(f.ledger, f.convs, redactor, f.sink, zerolog.Nop())
	f.asst = inbound.NewAssistant(f.router, f.ledger, f.convs, f.gen, f.recorder, redactor, inbound.AssistantConfig{
		DefaultSector: "banking",
		Timeout:       time.Second,
	}, zerolog.Nop())
	return f
}

const sender = "whatsapp:+919876543210"
const userID = "+919876543210"

func TestNormalizeSender(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"whatsapp:+919876543210", "+919876543210"},
		{"+919876543210", "+919876543210"},
		{" whatsapp:+14155550100 ", "+14155550100"},
	}
	for _, tt := range tests {
		if got := inbound.NormalizeSender(tt.in); got != tt.want {
			t.Errorf("NormalizeSender(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoute_Keywords(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantReply   string
		wantGranted *bool
	}{
		{"start opts in", "START", inbound.OptInReply, boolPtr(true)},
		{"padded yes opts in", "  yes \n", inbound.OptInReply, boolPtr(true)},
		{"join opts in", "Join", inbound.OptInReply, boolPtr(true)},
		{"stop opts out", "stop", inbound.OptOutReply, boolPtr(false)},
		{"cancel opts out", "CANCEL", inbound.OptOutReply, boolPtr(false)},
		{"sentence is not a keyword", "please stop calling", "", nil},
		{"plain question", "what is my balance", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			routed, err := f.router.Route(context.Background(), inbound.Message{From: sender, Body: tt.body, MessageID: "SM1"})
			require.NoError(t, err)

			assert.Equal(t, userID, routed.UserID)
			assert.Equal(t, tt.wantReply, routed.Reply)
			assert.Equal(t, tt.wantReply != "", routed.Handled())

			record, ok := f.ledger.records[consent.Key(userID, consent.TypeWhatsApp)]
			if tt.wantGranted == nil {
				assert.False(t, ok)
			} else {
				require.True(t, ok)
				assert.Equal(t, *tt.wantGranted, record.Granted)
			}

			sess := f.convs.get(userID)
			require.Len(t, sess.Messages, 1)
			assert.Equal(t, tt.body, sess.Messages[0].Content)
		})
	}
}

func TestRoute_AuditPreviewIsRedactedAndTruncated(t *testing.T) {
	f := newFixture()
	body := "call me on 9876543210 " + strings.Repeat("x", 200)
	_, err := f.router.Route(context.Background(), inbound.Message{From: sender, Body: body, MessageID: "SM9"})
	require.NoError(t, err)

	require.Equal(t, []string{"whatsapp_message_received"}, f.sink.names)
	preview := f.sink.fields[0]["message_preview"].(string)
	assert.Contains(t, preview, "[PHONE_REDACTED]")
	assert.NotContains(t, preview, "9876543210")
	assert.LessOrEqual(t, len([]rune(preview)), 100)
	assert.Equal(t, "SM9", f.sink.fields[0]["message_sid"])
}

func TestAssistant_StopFromOptedInUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.ledger.Record(ctx, userID, consent.TypeWhatsApp, true, nil))

	reply := f.asst.Reply(ctx, inbound.Message{From: sender, Body: "STOP", MessageID: "SM2"})

	assert.Equal(t, inbound.OptOutReply, reply)
	assert.False(t, f.ledger.Check(ctx, userID, consent.TypeWhatsApp))
	assert.Zero(t, f.gen.classifyCalls)
	assert.Zero(t, f.gen.generateCalls)
}

func TestAssistant_NoConsent(t *testing.T) {
	f := newFixture()
	reply := f.asst.Reply(context.Background(), inbound.Message{From: sender, Body: "balance?", MessageID: "SM3"})
	assert.Equal(t, inbound.ConsentRequiredReply, reply)
	assert.Zero(t, f.gen.classifyCalls)
}

func TestAssistant_Handoff(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.ledger.Record(ctx, userID, consent.TypeWhatsApp, true, nil))
	f.gen.ClassifyIntentFunc = func(context.Context, string, string) (inbound.Intent, error) {
		return inbound.Intent{Name: "escalation", Confidence: 0.4, RequiresHuman: true}, nil
	}

	reply := f.asst.Reply(ctx, inbound.Message{From: sender, Body: "let me talk to someone", MessageID: "SM4"})
	assert.Equal(t, inbound.HandoffReply, reply)
	assert.Zero(t, f.gen.generateCalls)
	require.Len(t, f.recorder.intents, 1)
	assert.True(t, f.recorder.intents[0].RequiresHuman)
}

func TestAssistant_GeneratesFromRedactedHistory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.ledger.Record(ctx, userID, consent.TypeWhatsApp, true, nil))

	reply := f.asst.Reply(ctx, inbound.Message{From: sender, Body: "my PAN is ABCDE1234F, status?", MessageID: "SM5"})
	assert.Equal(t, "Your account is active.", reply)

	assert.Equal(t, "my PAN is [PAN_REDACTED], status?", f.gen.lastRequest.Query)
	require.NotEmpty(t, f.gen.lastRequest.History)
	for _, m := range f.gen.lastRequest.History {
		assert.NotContains(t, m.Content, "ABCDE1234F")
	}
	assert.Equal(t, "banking", f.gen.lastRequest.Sector)

	sess := f.convs.get(userID)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, conversation.RoleAssistant, sess.Messages[1].Role)
	assert.Equal(t, "Your account is active.", sess.Messages[1].Content)

	require.Len(t, f.recorder.messages, 2)
	assert.Equal(t, analytics.DirectionInbound, f.recorder.messages[0].Direction)
	assert.NotContains(t, f.recorder.messages[0].Content, "ABCDE1234F")
}

func TestAssistant_CollaboratorFailureApologizes(t *testing.T) {
	tests := []struct {
		name     string
		classify error
		generate error
	}{
		{"classification fails", errors.New("groq down"), nil},
		{"generation fails", nil, context.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()
			require.NoError(t, f.ledger.Record(ctx, userID, consent.TypeWhatsApp, true, nil))
			f.gen.ClassifyIntentFunc = func(context.Context, string, string) (inbound.Intent, error) {
				return inbound.Intent{Name: "general_query"}, tt.classify
			}
			f.gen.GenerateResponseFunc = func(context.Context, inbound.ResponseRequest) (string, error) {
				return "", tt.generate
			}

			reply := f.asst.Reply(ctx, inbound.Message{From: sender, Body: "hello", MessageID: "SM6"})
			assert.Equal(t, inbound.ApologyReply, reply)
			assert.Len(t, f.convs.get(userID).Messages, 1)
		})
	}
}

func TestRoute_ConcurrentMessagesKeepEveryEntry(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	const n = 50

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.router.Route(ctx, inbound.Message{From: sender, Body: "hi", MessageID: "SM"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, f.convs.get(userID).Messages, n)
}

func boolPtr(b bool) *bool { return &b }
