package twilio

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/engage-api/internal/domain/speech"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		AccountSID:     "AC123",
		AuthToken:      "secret",
		PhoneNumber:    "+15005550006",
		WhatsAppNumber: "+14155238886",
		BaseURL:        srv.URL,
	}, zerolog.Nop())
}

func TestPlaceCall(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2010-04-01/Accounts/AC123/Calls.json", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "secret", pass)

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "+919876543210", r.PostForm.Get("To"))
		assert.Equal(t, "+15005550006", r.PostForm.Get("From"))
		assert.Equal(t, "https://engage.example.com/v1/voice/twiml/call_1", r.PostForm.Get("Url"))
		assert.Equal(t, "POST", r.PostForm.Get("Method"))
		assert.Equal(t, "https://engage.example.com/v1/voice/status/call_1", r.PostForm.Get("StatusCallback"))
		assert.Equal(t, []string{"initiated", "ringing", "answered", "completed"}, r.PostForm["StatusCallbackEvent"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"sid":"CA42","status":"queued"}`)
	})

	got, err := client.PlaceCall(context.Background(), speech.PlaceCallRequest{
		To:              "+919876543210",
		InstructionsURL: "https://engage.example.com/v1/voice/twiml/call_1",
		StatusURL:       "https://engage.example.com/v1/voice/status/call_1",
	})
	require.NoError(t, err)
	assert.Equal(t, speech.Placement{ProviderCallID: "CA42", Status: "queued"}, got)
}

func TestPlaceCall_ProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"code":21211,"message":"The 'To' number is not a valid phone number.","status":400}`)
	})

	_, err := client.PlaceCall(context.Background(), speech.PlaceCallRequest{To: "bad", InstructionsURL: "https://x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "21211")
}

func TestSendWhatsAppAndSMS(t *testing.T) {
	var forms []map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		forms = append(forms, r.PostForm)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"sid":"SM9","status":"queued"}`)
	})

	receipt, err := client.SendWhatsApp(context.Background(), "+919876543210", "hello", "https://cdn.example.com/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "SM9", receipt.MessageSID)

	_, err = client.SendSMS(context.Background(), "+919876543210", "hi")
	require.NoError(t, err)

	require.Len(t, forms, 2)
	assert.Equal(t, "whatsapp:+14155238886", forms[0]["From"][0])
	assert.Equal(t, "whatsapp:+919876543210", forms[0]["To"][0])
	assert.Equal(t, "https://cdn.example.com/a.pdf", forms[0]["MediaUrl"][0])
	assert.Equal(t, "+15005550006", forms[1]["From"][0])
	assert.Equal(t, "+919876543210", forms[1]["To"][0])
}
