package speech

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

const defaultPurpose = "default"

// LanguageProfile carries the per-language voice settings and scripted call text.
type LanguageProfile struct {
	Locale          string            `yaml:"locale"`
	Speaker         string            `yaml:"speaker"`
	Speakers        []string          `yaml:"speakers"`
	TelephonyVoice  string            `yaml:"telephony_voice"`
	TelephonyLocale string            `yaml:"telephony_locale"`
	Disclosure      string            `yaml:"disclosure"`
	Greetings       map[string]string `yaml:"greetings"`
}

// Catalog is the scripted text and voice table used to build calls.
type Catalog struct {
	DefaultLanguage  string                     `yaml:"default_language"`
	Closing          string                     `yaml:"closing"`
	ClosingVoice     string                     `yaml:"closing_voice"`
	ClosingLocale    string                     `yaml:"closing_locale"`
	NotFound         string                     `yaml:"not_found"`
	SystemError      string                     `yaml:"system_error"`
	FallbackGreeting string                     `yaml:"fallback_greeting"`
	Languages        map[string]LanguageProfile `yaml:"languages"`
}

// LoadCatalog parses a catalog document.
func LoadCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse speech catalog: %w", err)
	}
	if _, ok := c.Languages[c.DefaultLanguage]; !ok {
		return nil, fmt.Errorf("speech catalog: default language %q has no profile", c.DefaultLanguage)
	}
	return &c, nil
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() *Catalog {
	c, err := LoadCatalog(catalogYAML)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) profile(lang string) (LanguageProfile, bool) {
	p, ok := c.Languages[strings.ToLower(strings.TrimSpace(lang))]
	return p, ok
}

// Greeting returns the greeting for (lang, purpose) without the disclosure.
// Languages without scripted greetings use the default language's; unknown purposes use "default".
func (c *Catalog) Greeting(lang, purpose string) string {
	greetings := c.Languages[c.DefaultLanguage].Greetings
	if p, ok := c.profile(lang); ok && len(p.Greetings) > 0 {
		greetings = p.Greetings
	}
	if g, ok := greetings[purpose]; ok && g != "" {
		return g
	}
	if g, ok := greetings[defaultPurpose]; ok && g != "" {
		return g
	}
	return c.FallbackGreeting
}

// Disclosure returns the recording disclosure for lang, falling back to the default language.
func (c *Catalog) Disclosure(lang string) string {
	if p, ok := c.profile(lang); ok && p.Disclosure != "" {
		return p.Disclosure
	}
	return c.Languages[c.DefaultLanguage].Disclosure
}

// CallScript is the greeting followed by the localized recording disclosure.
func (c *Catalog) CallScript(lang, purpose string) string {
	greeting := c.Greeting(lang, purpose)
	disclosure := c.Disclosure(lang)
	if disclosure == "" {
		return greeting
	}
	return greeting + " " + disclosure
}

// Voice returns the provider TTS voice and locale used for fallback playback.
func (c *Catalog) Voice(lang string) (voice, locale string) {
	if p, ok := c.profile(lang); ok && p.TelephonyVoice != "" {
		return p.TelephonyVoice, p.TelephonyLocale
	}
	def := c.Languages[c.DefaultLanguage]
	return def.TelephonyVoice, def.TelephonyLocale
}

// Locale returns the synthesis locale code for lang.
func (c *Catalog) Locale(lang string) string {
	if p, ok := c.profile(lang); ok && p.Locale != "" {
		return p.Locale
	}
	return c.Languages[c.DefaultLanguage].Locale
}

// Speaker returns the default synthesis speaker for lang.
func (c *Catalog) Speaker(lang string) string {
	if p, ok := c.profile(lang); ok && p.Speaker != "" {
		return p.Speaker
	}
	return c.Languages[c.DefaultLanguage].Speaker
}

// Speakers lists the synthesis speakers available for lang.
func (c *Catalog) Speakers(lang string) []string {
	p, ok := c.profile(lang)
	if !ok {
		p = c.Languages[c.DefaultLanguage]
	}
	return append([]string(nil), p.Speakers...)
}
