package twiml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponse_PreservesVerbOrder(t *testing.T) {
	doc := New().
		Say("Hello", "alice", "en-IN").
		Pause(1).
		Say("Goodbye", "alice", "en-IN").
		String()

	assert.True(t, strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`))
	first := strings.Index(doc, "Hello")
	pause := strings.Index(doc, `<Pause length="1">`)
	last := strings.Index(doc, "Goodbye")
	assert.True(t, first < pause && pause < last, doc)
	assert.Contains(t, doc, `<Say voice="alice" language="en-IN">Hello</Say>`)
}

func TestResponse_EscapesText(t *testing.T) {
	doc := New().Say(`Tom & Jerry <owe> "₹5,000"`, "", "").String()

	assert.Contains(t, doc, "Tom &amp; Jerry &lt;owe&gt;")
	assert.Contains(t, doc, "₹5,000")
	assert.NotContains(t, doc, "<owe>")
}

func TestResponse_Play(t *testing.T) {
	doc := New().Play("https://example.com/v1/voice/audio/call_1.wav").String()
	assert.Contains(t, doc, "<Play>https://example.com/v1/voice/audio/call_1.wav</Play>")
}

func TestMessageReply(t *testing.T) {
	doc := MessageReply("Thank you for opting in!")
	assert.Contains(t, doc, "<Response>")
	assert.Contains(t, doc, "<Message>Thank you for opting in!</Message>")
}
