// Package validator gates invoice persistence on the record-level
// business rules. A validation failure stops the save before any upload,
// derived-field computation, or write.
package validator

import (
	"ims/internal/domain"
)

// Policy controls the rules that historically varied between form
// surfaces and plugin revisions. The admin surface runs the relaxed
// policy; the portal and integration surfaces run the strict one.
type Policy struct {
	// RequireAttachment rejects a publish with neither a stored file nor a
	// new upload. Off by default, matching the latest source revision.
	RequireAttachment bool

	// EnforcePaymentDateOrder rejects a payment date earlier than the
	// submission date.
	EnforcePaymentDateOrder bool
}

// Validate checks inv against the business rules under p. hasUpload
// reports whether the current save carries a new file upload.
func Validate(inv *domain.Invoice, hasUpload bool, p Policy) error {
	if inv.Title == "" {
		return domain.ErrTitleRequired
	}

	if inv.InvoiceDate != nil && inv.SubmissionDate != nil {
		if !inv.InvoiceDate.Before(*inv.SubmissionDate) {
			return domain.ErrDateOrder
		}
	}

	if p.EnforcePaymentDateOrder && inv.PaymentDate != nil && inv.SubmissionDate != nil {
		if inv.PaymentDate.Before(*inv.SubmissionDate) {
			return domain.ErrPaymentDateOrder
		}
	}

	if p.RequireAttachment && inv.State == domain.StatePublished {
		if inv.FileID == nil && !hasUpload {
			return domain.ErrAttachmentRequired
		}
	}

	return nil
}
