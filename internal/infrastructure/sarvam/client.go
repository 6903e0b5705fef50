// Package sarvam synthesizes and transcribes Indic speech through the Sarvam AI REST API.
package sarvam

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"jan-server/services/engage-api/internal/domain/speech"
	"jan-server/services/engage-api/internal/infrastructure/metrics"
)

const (
	providerName = "sarvam"
	apiKeyHeader = "api-subscription-key"
)

// ErrNoAudio is returned when synthesis succeeds without audio.
var ErrNoAudio = errors.New("sarvam returned no audio")

// Config holds the Sarvam connection settings.
type Config struct {
	APIKey   string
	BaseURL  string
	TTSModel string
	STTModel string
	Timeout  time.Duration
}

// Client implements speech.Synthesizer.
type Client struct {
	http *resty.Client
	cfg  Config
	log  zerolog.Logger
}

var _ speech.Synthesizer = (*Client)(nil)

type ttsRequest struct {
	Inputs              []string `json:"inputs"`
	TargetLanguageCode  string   `json:"target_language_code"`
	Speaker             string   `json:"speaker"`
	Model               string   `json:"model"`
	Pitch               float64  `json:"pitch"`
	Pace                float64  `json:"pace"`
	Loudness            float64  `json:"loudness"`
	SpeechSampleRate    int      `json:"speech_sample_rate"`
	EnablePreprocessing bool     `json:"enable_preprocessing"`
}

type ttsResponse struct {
	RequestID string   `json:"request_id"`
	Audios    []string `json:"audios"`
}

type sttResponse struct {
	RequestID    string  `json:"request_id"`
	Transcript   string  `json:"transcript"`
	LanguageCode string  `json:"language_code"`
	Confidence   float64 `json:"confidence"`
}

// NewClient creates a Sarvam client.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
			SetHeader(apiKeyHeader, cfg.APIKey).
			SetTimeout(cfg.Timeout),
		cfg: cfg,
		log: log.With().Str("component", "sarvam-client").Logger(),
	}
}

// Synthesize returns WAV audio for text spoken by speaker in locale.
func (c *Client) Synthesize(ctx context.Context, text, locale, speaker string) (audio []byte, err error) {
	start := time.Now()
	defer func() { metrics.ObserveCollaborator(providerName, "text_to_speech", start, err) }()

	var result ttsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(ttsRequest{
			Inputs:              []string{text},
			TargetLanguageCode:  locale,
			Speaker:             speaker,
			Model:               c.cfg.TTSModel,
			Pitch:               0,
			Pace:                1.0,
			Loudness:            1.5,
			SpeechSampleRate:    8000,
			EnablePreprocessing: true,
		}).
		SetResult(&result).
		Post("/text-to-speech")
	if err != nil {
		return nil, fmt.Errorf("sarvam text-to-speech: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("sarvam text-to-speech error (status %d): %s", resp.StatusCode(), resp.String())
	}
	if len(result.Audios) == 0 || result.Audios[0] == "" {
		return nil, ErrNoAudio
	}

	audio, err = base64.StdEncoding.DecodeString(result.Audios[0])
	if err != nil {
		return nil, fmt.Errorf("decode sarvam audio: %w", err)
	}
	c.log.Debug().Str("locale", locale).Str("speaker", speaker).Int("bytes", len(audio)).Msg("speech synthesized")
	return audio, nil
}

// Transcribe returns the transcript of audio recorded in locale.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename, locale string) (out speech.Transcript, err error) {
	start := time.Now()
	defer func() { metrics.ObserveCollaborator(providerName, "speech_to_text", start, err) }()

	if filename == "" {
		filename = "audio.wav"
	}
	var result sttResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(audio)).
		SetFormData(map[string]string{
			"model":         c.cfg.STTModel,
			"language_code": locale,
		}).
		SetResult(&result).
		Post("/speech-to-text")
	if err != nil {
		return speech.Transcript{}, fmt.Errorf("sarvam speech-to-text: %w", err)
	}
	if resp.IsError() {
		return speech.Transcript{}, fmt.Errorf("sarvam speech-to-text error (status %d): %s", resp.StatusCode(), resp.String())
	}

	language := result.LanguageCode
	if language == "" {
		language = locale
	}
	return speech.Transcript{
		Text:       result.Transcript,
		Confidence: result.Confidence,
		Language:   language,
	}, nil
}
