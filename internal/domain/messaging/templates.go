package messaging

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const notAvailable = "N/A"

// PaymentLink is a payment request sent over WhatsApp.
type PaymentLink struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	PaymentURL  string          `json:"payment_url"`
}

// PolicyDetails summarizes an insurance policy.
type PolicyDetails struct {
	PolicyNumber string          `json:"policy_number"`
	Type         string          `json:"type"`
	Premium      decimal.Decimal `json:"premium"`
	Coverage     decimal.Decimal `json:"coverage"`
	Status       string          `json:"status"`
	RenewalDate  string          `json:"renewal_date"`
}

// LoanSummary summarizes a loan account.
type LoanSummary struct {
	AccountNumber string          `json:"account_number"`
	Type          string          `json:"type"`
	Principal     decimal.Decimal `json:"principal"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	EMI           decimal.Decimal `json:"emi"`
	NextDueDate   string          `json:"next_due_date"`
}

// Render formats the payment request body.
func (p PaymentLink) Render() string {
	return strings.Join([]string{
		"💳 Payment Request",
		"",
		"Amount: " + FormatRupees(p.Amount),
		"Description: " + orNA(p.Description),
		"",
		"Click here to pay: " + p.PaymentURL,
		"",
		"This link is secure and expires in 24 hours.",
	}, "\n")
}

// Render formats the policy details body.
func (p PolicyDetails) Render() string {
	return strings.Join([]string{
		"📋 Policy Details",
		"",
		"Policy Number: " + orNA(p.PolicyNumber),
		"Type: " + orNA(p.Type),
		"Premium: " + FormatRupees(p.Premium),
		"Coverage: " + FormatRupees(p.Coverage),
		"Status: " + orNA(p.Status),
		"Renewal Date: " + orNA(p.RenewalDate),
		"",
		"Need help? Reply with your question.",
	}, "\n")
}

// Render formats the loan summary body.
func (l LoanSummary) Render() string {
	return strings.Join([]string{
		"🏦 Loan Summary",
		"",
		"Loan Account: " + orNA(l.AccountNumber),
		"Type: " + orNA(l.Type),
		"Principal: " + FormatRupees(l.Principal),
		"Outstanding: " + FormatRupees(l.Outstanding),
		"EMI: " + FormatRupees(l.EMI),
		"Next Due: " + orNA(l.NextDueDate),
		"",
		"Reply PAY to make payment.",
	}, "\n")
}

// FormatRupees renders an amount with thousands separators and two decimals, e.g. ₹1,234.50.
func FormatRupees(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return fmt.Sprintf("%s₹%s.%s", sign, b.String(), frac)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}
