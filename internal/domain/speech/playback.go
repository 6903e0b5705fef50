package speech

import (
	"context"
	"errors"
	"fmt"

	"jan-server/services/engage-api/internal/domain/call"
	"jan-server/services/engage-api/internal/utils/twiml"
)

// PlaybackMode selects how the greeting is delivered to the callee.
type PlaybackMode string

const (
	PlaybackAudio    PlaybackMode = "audio"
	PlaybackFallback PlaybackMode = "fallback"
)

// PlaybackPlan is the decision behind a playback document.
type PlaybackPlan struct {
	Mode     PlaybackMode
	AudioURL string
	Greeting string
	Voice    string
	Locale   string
}

// PlanPlayback chooses between stored audio and provider text-to-speech for sess.
func (c *Coordinator) PlanPlayback(sess *call.Session) PlaybackPlan {
	if sess.NeedsFallback(c.cfg.FallbackAudioMinBytes) {
		voice, locale := c.catalog.Voice(sess.Language)
		greeting := sess.GreetingText
		if greeting == "" {
			greeting = c.catalog.FallbackGreeting
		}
		return PlaybackPlan{Mode: PlaybackFallback, Greeting: greeting, Voice: voice, Locale: locale}
	}
	base := sess.PublicURL
	if base == "" {
		base = c.cfg.PublicURL
	}
	return PlaybackPlan{Mode: PlaybackAudio, AudioURL: fmt.Sprintf("%s/v1/voice/audio/%s.wav", base, sess.ID)}
}

// RenderPlaybackInstructions returns the TwiML document for callID.
// It always returns a valid document, re-derived from the current session on each request.
func (c *Coordinator) RenderPlaybackInstructions(ctx context.Context, callID string) string {
	sess, err := c.store.Get(ctx, callID)
	if err != nil {
		if !errors.Is(err, call.ErrSessionNotFound) {
			c.log.Error().Err(err).Str("call_id", callID).Msg("failed to load call for playback")
			return twiml.New().Say(c.catalog.SystemError, "", "").String()
		}
		c.log.Warn().Str("call_id", callID).Msg("playback requested for unknown call")
		return twiml.New().Say(c.catalog.NotFound, "", "").String()
	}

	plan := c.PlanPlayback(sess)
	doc := twiml.New()
	switch plan.Mode {
	case PlaybackFallback:
		c.log.Info().Str("call_id", callID).Msg("playing greeting with provider voice")
		doc.Say(plan.Greeting, plan.Voice, plan.Locale).
			Pause(1).
			Say(c.catalog.Closing, plan.Voice, plan.Locale)
	default:
		doc.Play(plan.AudioURL).
			Pause(1).
			Say(c.catalog.Closing, c.catalog.ClosingVoice, c.catalog.ClosingLocale)
	}
	return doc.String()
}
