// Package twilio places voice calls and sends WhatsApp and SMS messages through the Twilio REST API.
package twilio

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"jan-server/services/engage-api/internal/domain/messaging"
	"jan-server/services/engage-api/internal/domain/speech"
	"jan-server/services/engage-api/internal/infrastructure/metrics"
)

const (
	providerName   = "twilio"
	apiVersion     = "2010-04-01"
	whatsappPrefix = "whatsapp:"
)

// statusCallbackEvents are the call progress events the provider reports back.
var statusCallbackEvents = []string{"initiated", "ringing", "answered", "completed"}

// Config holds the Twilio account settings.
type Config struct {
	AccountSID     string
	AuthToken      string
	PhoneNumber    string
	WhatsAppNumber string
	BaseURL        string
	Timeout        time.Duration
}

// Client implements speech.Telephony and messaging.Sender.
type Client struct {
	http *resty.Client
	cfg  Config
	log  zerolog.Logger
}

var (
	_ speech.Telephony = (*Client)(nil)
	_ messaging.Sender = (*Client)(nil)
)

type resource struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type apiError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

// NewClient creates a Twilio client.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if !strings.HasPrefix(cfg.WhatsAppNumber, whatsappPrefix) && cfg.WhatsAppNumber != "" {
		cfg.WhatsAppNumber = whatsappPrefix + cfg.WhatsAppNumber
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		http: resty.New().
			SetBaseURL(base+"/"+apiVersion+"/Accounts/"+url.PathEscape(cfg.AccountSID)).
			SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
			SetTimeout(cfg.Timeout),
		cfg: cfg,
		log: log.With().Str("component", "twilio-client").Logger(),
	}
}

// PlaceCall starts an outbound call that fetches its instructions from req.InstructionsURL.
func (c *Client) PlaceCall(ctx context.Context, req speech.PlaceCallRequest) (placement speech.Placement, err error) {
	start := time.Now()
	defer func() { metrics.ObserveCollaborator(providerName, "place_call", start, err) }()

	form := url.Values{}
	form.Set("To", req.To)
	form.Set("From", c.cfg.PhoneNumber)
	form.Set("Url", req.InstructionsURL)
	form.Set("Method", "POST")
	if req.StatusURL != "" {
		form.Set("StatusCallback", req.StatusURL)
		form.Set("StatusCallbackMethod", "POST")
		for _, ev := range statusCallbackEvents {
			form.Add("StatusCallbackEvent", ev)
		}
	}

	res, err := c.post(ctx, "/Calls.json", form)
	if err != nil {
		return speech.Placement{}, fmt.Errorf("place call: %w", err)
	}
	c.log.Info().Str("provider_call_id", res.SID).Str("status", res.Status).Msg("call placed")
	return speech.Placement{ProviderCallID: res.SID, Status: res.Status}, nil
}

// SendWhatsApp sends body to a "whatsapp:" prefixed recipient.
func (c *Client) SendWhatsApp(ctx context.Context, to, body, mediaURL string) (receipt messaging.Receipt, err error) {
	start := time.Now()
	defer func() { metrics.ObserveCollaborator(providerName, "send_whatsapp", start, err) }()

	if !strings.HasPrefix(to, whatsappPrefix) {
		to = whatsappPrefix + to
	}
	form := url.Values{}
	form.Set("From", c.cfg.WhatsAppNumber)
	form.Set("To", to)
	form.Set("Body", body)
	if mediaURL != "" {
		form.Set("MediaUrl", mediaURL)
	}

	res, err := c.post(ctx, "/Messages.json", form)
	if err != nil {
		return messaging.Receipt{}, fmt.Errorf("send whatsapp message: %w", err)
	}
	return messaging.Receipt{MessageSID: res.SID, Status: res.Status}, nil
}

// SendSMS sends a plain text message from the configured phone number.
func (c *Client) SendSMS(ctx context.Context, to, body string) (receipt messaging.Receipt, err error) {
	start := time.Now()
	defer func() { metrics.ObserveCollaborator(providerName, "send_sms", start, err) }()

	form := url.Values{}
	form.Set("From", c.cfg.PhoneNumber)
	form.Set("To", to)
	form.Set("Body", body)

	res, err := c.post(ctx, "/Messages.json", form)
	if err != nil {
		return messaging.Receipt{}, fmt.Errorf("send sms: %w", err)
	}
	return messaging.Receipt{MessageSID: res.SID, Status: res.Status}, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values) (resource, error) {
	var (
		result resource
		failed apiError
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormDataFromValues(form).
		SetResult(&result).
		SetError(&failed).
		Post(path)
	if err != nil {
		return resource{}, err
	}
	if resp.IsError() {
		if failed.Message != "" {
			return resource{}, fmt.Errorf("twilio error %d (status %d): %s", failed.Code, resp.StatusCode(), failed.Message)
		}
		return resource{}, fmt.Errorf("twilio error (status %d): %s", resp.StatusCode(), resp.String())
	}
	return result, nil
}
