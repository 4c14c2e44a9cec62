// Package normalize converts raw textual form input into typed invoice
// fields. Parsing is deliberately tolerant: invalid input degrades to
// "absent" (or the documented default) instead of raising an error, so a
// noisy value can never block a save on its own.
package normalize

import (
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ims/internal/domain"
)

const dateLayout = "2006-01-02"

var (
	numericRe = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	stripRe   = regexp.MustCompile(`[^0-9.\-]`)
	splitRe   = regexp.MustCompile(`[,;\n]`)
)

// Fields is a presence-aware view of one form submission. A nil pointer
// means the field was missing or failed to parse; the caller decides
// whether that clears the stored value (full-form save) or leaves it
// untouched (partial integration update).
type Fields struct {
	Title   *string
	Remarks *string

	BillCategory *string
	Project      *string
	ProjectMode  *string
	Location     *string

	InvoiceDate    *time.Time
	SubmissionDate *time.Time
	PaymentDate    *time.Time

	Milestone  *int
	GSTPercent *int

	BasicAmount  *float64
	ClientAmount *float64

	Retention         *float64
	GSTWithheld       *float64
	TDS               *float64
	GSTTDS            *float64
	BOCW              *float64
	LowDepth          *float64
	LiquidatedDamages *float64
	SLAPenalty        *float64
	Penalty           *float64
	Other             *float64

	AmountPaid *float64

	// Status is nil when not submitted at all; an invalid submitted value
	// defaults to pending rather than nil.
	Status *domain.InvoiceStatus

	ToEmail  *string
	CCEmails *[]string
}

// ParseFields normalizes a raw field map keyed by canonical field name.
func ParseFields(raw map[string]string) Fields {
	f := Fields{
		Title:   Text(raw["title"]),
		Remarks: Text(raw["remarks"]),

		BillCategory: Enum(raw["bill_category"], domain.BillCategories),
		Project:      Enum(raw["project"], domain.Projects),
		ProjectMode:  Enum(raw["project_mode"], []string{string(domain.ModeBackToBack), string(domain.ModeDirect)}),
		Location:     Enum(raw["location"], domain.Locations),

		InvoiceDate:    Date(raw["invoice_date"]),
		SubmissionDate: Date(raw["submission_date"]),
		PaymentDate:    Date(raw["payment_date"]),

		Milestone:  Percent(raw["milestone"], 0, 100),
		GSTPercent: Percent(raw["gst_percent"], 0, 30),

		BasicAmount:  Number(raw["basic_amount"]),
		ClientAmount: Number(raw["client_amount"]),

		Retention:         Amount(raw["retention_amount"]),
		GSTWithheld:       Amount(raw["gst_withheld"]),
		TDS:               Amount(raw["tds_amount"]),
		GSTTDS:            Amount(raw["gst_tds_amount"]),
		BOCW:              Amount(raw["bocw_amount"]),
		LowDepth:          Amount(raw["low_depth_deduction_amount"]),
		LiquidatedDamages: Amount(raw["liquidated_damages_amount"]),
		SLAPenalty:        Amount(raw["sla_penalty_amount"]),
		Penalty:           Amount(raw["penalty_amount"]),
		Other:             Amount(raw["other_deduction_amount"]),

		AmountPaid: Amount(raw["amount_paid"]),

		ToEmail: Email(raw["to_email"]),
	}

	if v, ok := raw["status"]; ok {
		f.Status = Status(v)
	}
	if v, ok := raw["cc_emails"]; ok {
		cc := EmailsFromString(v)
		f.CCEmails = &cc
	}
	return f
}

// Text trims the value and returns nil for an empty result.
func Text(raw string) *string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	return &v
}

// Number parses a decimal amount tolerating formatting noise: thousands
// separators (commas, spaces) and any other non-numeric characters are
// stripped before the result must match a plain decimal. Returns nil on
// mismatch.
func Number(raw string) *float64 {
	cleaned := strings.ReplaceAll(raw, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = stripRe.ReplaceAllString(cleaned, "")
	if !numericRe.MatchString(cleaned) {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Amount parses a deduction-class amount: like Number but negatives are
// clamped to zero after parsing.
func Amount(raw string) *float64 {
	v := Number(raw)
	if v == nil {
		return nil
	}
	if *v < 0 {
		zero := 0.0
		return &zero
	}
	return v
}

// Percent parses an integer percent and clamps it into [min, max].
func Percent(raw string, min, max int) *int {
	n := Number(raw)
	if n == nil {
		return nil
	}
	v := int(*n)
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	return &v
}

// Enum returns the value only when it is a member of allowed.
func Enum(raw string, allowed []string) *string {
	v := strings.TrimSpace(raw)
	for _, a := range allowed {
		if v == a {
			return &v
		}
	}
	return nil
}

// Status parses an invoice status, defaulting to pending on invalid or
// missing input. This is the one enum field that is never cleared.
func Status(raw string) *domain.InvoiceStatus {
	s := domain.StatusPending
	if domain.ValidStatus(strings.TrimSpace(raw)) {
		s = domain.InvoiceStatus(strings.TrimSpace(raw))
	}
	return &s
}

// Date parses a YYYY-MM-DD calendar date, nil on failure.
func Date(raw string) *time.Time {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil
	}
	return &t
}

// Email sanitizes a single address to canonical form, nil when invalid.
func Email(raw string) *string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	addr, err := mail.ParseAddress(v)
	if err != nil {
		return nil
	}
	return &addr.Address
}

// EmailsFromString splits a CC list given as one string on commas,
// semicolons and newlines, sanitizes each entry, and drops invalid ones.
// Order is preserved and duplicates are allowed.
func EmailsFromString(raw string) []string {
	parts := splitRe.Split(raw, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if addr := Email(p); addr != nil {
			out = append(out, *addr)
		}
	}
	return out
}

// FormatDate renders a date pointer as YYYY-MM-DD, empty when nil.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
