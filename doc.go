// Package engageapi implements the engage-api service, the multi-channel
// customer engagement core for banking, insurance and investment providers.
//
// The service provides:
//   - WhatsApp conversations with consent keywords, intent classification and generated replies
//   - Outbound voice calls with synthesized greetings and provider-voice fallback
//   - Call status reconciliation from telephony callbacks
//   - A consent ledger and PII redaction on every persisted or logged text
//   - Engagement analytics over an in-memory or PostgreSQL repository
//
// For more information, see the README.md file.
package engageapi
