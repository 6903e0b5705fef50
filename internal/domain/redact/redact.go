// Package redact masks personally identifiable information in free text.
package redact

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind names a class of PII.
type Kind string

const (
	KindEmail      Kind = "email"
	KindPhone      Kind = "phone"
	KindCreditCard Kind = "credit_card"
	KindAadhaar    Kind = "aadhaar"
	KindPAN        Kind = "pan"
	KindIFSC       Kind = "ifsc"
	KindAccount    Kind = "account"
)

type pattern struct {
	kind        Kind
	re          *regexp.Regexp
	placeholder string
}

// Patterns run in this order regardless of the order kinds are requested in.
// Specific shapes go before the generic account digit run so a number is labelled by its most precise kind.
var patterns = []pattern{
	newPattern(KindEmail, `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	newPattern(KindPhone, `(?:\+91[\-\s]?|\b)[6-9]\d{9}\b`),
	newPattern(KindCreditCard, `\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`),
	newPattern(KindAadhaar, `\b\d{4}\s?\d{4}\s?\d{4}\b`),
	newPattern(KindPAN, `\b[A-Z]{5}[0-9]{4}[A-Z]\b`),
	newPattern(KindIFSC, `\b[A-Z]{4}0[A-Z0-9]{6}\b`),
	newPattern(KindAccount, `\b\d{9,18}\b`),
}

func newPattern(kind Kind, expr string) pattern {
	return pattern{
		kind:        kind,
		re:          regexp.MustCompile(expr),
		placeholder: "[" + strings.ToUpper(string(kind)) + "_REDACTED]",
	}
}

// AllKinds lists every supported kind in application order.
func AllKinds() []Kind {
	kinds := make([]Kind, len(patterns))
	for i, p := range patterns {
		kinds[i] = p.kind
	}
	return kinds
}

// ParseKinds converts configured names into kinds, rejecting unknown names.
func ParseKinds(names []string) ([]Kind, error) {
	known := make(map[Kind]bool, len(patterns))
	for _, p := range patterns {
		known[p.kind] = true
	}

	kinds := make([]Kind, 0, len(names))
	for _, name := range names {
		k := Kind(strings.ToLower(strings.TrimSpace(name)))
		if k == "" {
			continue
		}
		if !known[k] {
			return nil, fmt.Errorf("unknown PII pattern %q", name)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// Redactor replaces PII with [KIND_REDACTED] placeholders. The result cannot be reversed.
type Redactor struct {
	enabled  bool
	defaults map[Kind]bool
}

// New creates a redactor. When enabled is false Mask returns its input unchanged.
func New(enabled bool, defaults []Kind) *Redactor {
	return &Redactor{enabled: enabled, defaults: toSet(defaults)}
}

// Enabled reports whether masking is switched on.
func (r *Redactor) Enabled() bool {
	return r != nil && r.enabled
}

// Mask applies the given kinds, or the configured defaults when none are given.
func (r *Redactor) Mask(text string, kinds ...Kind) string {
	if !r.Enabled() || text == "" {
		return text
	}

	selected := r.defaults
	if len(kinds) > 0 {
		selected = toSet(kinds)
	}

	for _, p := range patterns {
		if !selected[p.kind] {
			continue
		}
		text = p.re.ReplaceAllLiteralString(text, p.placeholder)
	}
	return text
}

// MaskAll applies every supported kind.
func (r *Redactor) MaskAll(text string) string {
	return r.Mask(text, AllKinds()...)
}

func toSet(kinds []Kind) map[Kind]bool {
	set := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return set
}
