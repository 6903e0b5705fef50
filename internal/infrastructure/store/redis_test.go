package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/engage-api/internal/domain/consent"
)

func TestBuildUniversalOptions(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantAddrs []string
		wantDB    int
		wantErr   bool
	}{
		{name: "url", raw: "redis://:secret@cache:6379/2", wantAddrs: []string{"cache:6379"}, wantDB: 2},
		{name: "plain addresses", raw: "a:6379, b:6379", wantAddrs: []string{"a:6379", "b:6379"}},
		{name: "empty", raw: " , ", wantErr: true},
		{name: "bad scheme", raw: "http://cache:6379", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := buildUniversalOptions(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddrs, opts.Addrs)
			assert.Equal(t, tt.wantDB, opts.DB)
		})
	}
}

func TestRedisKeys(t *testing.T) {
	assert.Equal(t, "engage:consent:+919876543210", consentKey("+919876543210"))
	assert.Equal(t, "engage:consent-order:+919876543210", consentOrderKey("+919876543210"))
	assert.Equal(t, "engage:conversation:u1", conversationKey("u1"))
	assert.Equal(t, "engage:lock:conversation:u1", conversationLockName("u1"))
}

func TestDecodeConversation_FillsEmptyCollections(t *testing.T) {
	sess, err := decodeConversation([]byte(`{"user_id":"u1"}`))
	require.NoError(t, err)
	assert.NotNil(t, sess.Messages)
	assert.NotNil(t, sess.Context)

	_, err = decodeConversation([]byte(`{`))
	assert.Error(t, err)
}

func TestSortConsent(t *testing.T) {
	base := time.Now().UTC()
	records := []consent.Record{
		{Type: consent.TypeSMS, Timestamp: base.Add(time.Second)},
		{Type: consent.TypeWhatsApp, Timestamp: base},
		{Type: consent.TypeOutboundCall, Timestamp: base},
	}
	sortConsent(records)
	assert.Equal(t, consent.TypeOutboundCall, records[0].Type)
	assert.Equal(t, consent.TypeWhatsApp, records[1].Type)
	assert.Equal(t, consent.TypeSMS, records[2].Type)
}

func TestOrderConsent_FollowsFirstWrite(t *testing.T) {
	base := time.Now().UTC()
	encode := func(r consent.Record) string {
		raw, err := json.Marshal(r)
		require.NoError(t, err)
		return string(raw)
	}
	// sms was written first but its latest decision is the newest.
	fields := map[string]string{
		"sms":           encode(consent.Record{UserID: "u1", Type: consent.TypeSMS, Timestamp: base.Add(time.Minute)}),
		"whatsapp":      encode(consent.Record{UserID: "u1", Type: consent.TypeWhatsApp, Timestamp: base}),
		"outbound_call": encode(consent.Record{UserID: "u1", Type: consent.TypeOutboundCall, Timestamp: base.Add(-time.Minute)}),
	}

	records, err := orderConsent([]string{"sms", "whatsapp", "sms"}, fields)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, consent.TypeSMS, records[0].Type)
	assert.Equal(t, consent.TypeWhatsApp, records[1].Type)
	assert.Equal(t, consent.TypeOutboundCall, records[2].Type)

	_, err = orderConsent([]string{"sms"}, map[string]string{"sms": "{"})
	assert.Error(t, err)
}
