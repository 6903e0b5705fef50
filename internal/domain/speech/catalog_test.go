package speech

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog_Loads(t *testing.T) {
	c := DefaultCatalog()
	require.NotNil(t, c)
	assert.Equal(t, "en", c.DefaultLanguage)
	for _, lang := range []string{"en", "hi", "ta", "te", "mr", "bn"} {
		_, ok := c.Languages[lang]
		assert.True(t, ok, "missing profile for %s", lang)
	}
}

func TestLoadCatalog_RejectsMissingDefault(t *testing.T) {
	_, err := LoadCatalog([]byte("default_language: fr\nlanguages:\n  en:\n    locale: en-IN\n"))
	require.Error(t, err)
}

func TestCatalog_CallScript(t *testing.T) {
	c := DefaultCatalog()
	en := c.Languages["en"]
	hi := c.Languages["hi"]
	te := c.Languages["te"]

	tests := []struct {
		name    string
		lang    string
		purpose string
		want    string
	}{
		{"hindi sip reminder", "hi", "sip_debit_reminder", hi.Greetings["sip_debit_reminder"] + " " + hi.Disclosure},
		{"upper case language", "HI", "kyc_update_reminder", hi.Greetings["kyc_update_reminder"] + " " + hi.Disclosure},
		{"telugu uses english greeting", "te", "sip_failure_notification", en.Greetings["sip_failure_notification"] + " " + te.Disclosure},
		{"unknown purpose", "en", "loan_offer", en.Greetings["default"] + " " + en.Disclosure},
		{"unknown language", "fr", "sip_debit_reminder", en.Greetings["sip_debit_reminder"] + " " + en.Disclosure},
		{"marathi falls back to english disclosure", "mr", "default", en.Greetings["default"] + " " + en.Disclosure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.CallScript(tt.lang, tt.purpose)
			if got != tt.want {
				t.Errorf("CallScript(%q, %q) = %q, want %q", tt.lang, tt.purpose, got, tt.want)
			}
		})
	}
}

func TestCatalog_Voice(t *testing.T) {
	c := DefaultCatalog()
	tests := []struct {
		lang       string
		wantVoice  string
		wantLocale string
	}{
		{"en", "alice", "en-IN"},
		{"hi", "Polly.Aditi", "hi-IN"},
		{"ta", "Polly.Aditi", "ta-IN"},
		{"te", "Polly.Aditi", "te-IN"},
		{"mr", "Polly.Aditi", "mr-IN"},
		{"bn", "Polly.Aditi", "bn-IN"},
		{"xx", "alice", "en-IN"},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			voice, locale := c.Voice(tt.lang)
			assert.Equal(t, tt.wantVoice, voice)
			assert.Equal(t, tt.wantLocale, locale)
		})
	}
}

func TestCatalog_SpeakersAreCopies(t *testing.T) {
	c := DefaultCatalog()
	speakers := c.Speakers("hi")
	require.NotEmpty(t, speakers)
	speakers[0] = "changed"
	assert.NotEqual(t, "changed", c.Speakers("hi")[0])
	assert.True(t, strings.HasSuffix(c.Locale("ta"), "-IN"))
	assert.Equal(t, "meera", c.Speaker("unknown"))
}
