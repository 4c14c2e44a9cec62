package domain

// InvoiceStatus is the payment lifecycle status of an invoice.
type InvoiceStatus string

const (
	StatusPending          InvoiceStatus = "pending"
	StatusPaid             InvoiceStatus = "paid"
	StatusCancel           InvoiceStatus = "cancel"
	StatusCreditNoteIssued InvoiceStatus = "credit_note_issued"

	// StatusAny matches every status. List queries treat it as "no
	// filter" and status-count maps use it as the total bucket.
	StatusAny InvoiceStatus = ""
)

// AllStatuses lists every invoice status in display order.
var AllStatuses = []InvoiceStatus{StatusPending, StatusPaid, StatusCancel, StatusCreditNoteIssued}

// ValidStatus reports whether s is a known invoice status.
func ValidStatus(s string) bool {
	switch InvoiceStatus(s) {
	case StatusPending, StatusPaid, StatusCancel, StatusCreditNoteIssued:
		return true
	}
	return false
}

// RecordState is the record lifecycle state, separate from InvoiceStatus.
// Only published invoices trigger webhook notifications.
type RecordState string

const (
	StateDraft     RecordState = "draft"
	StatePublished RecordState = "published"
)

// ProjectMode is how the underlying project is contracted.
type ProjectMode string

const (
	ModeBackToBack ProjectMode = "back_to_back"
	ModeDirect     ProjectMode = "direct"
)

// BillCategories is the fixed set of billing categories.
var BillCategories = []string{
	"service",
	"supply",
	"row",
	"amc",
	"restoration_service",
	"restoration_supply",
	"restoration_row",
	"spares",
	"training",
}

// Projects is the configured project list.
var Projects = []string{"NFS", "GAIL", "BGCL", "STP", "Bharat Net", "NFS AMC"}

// Locations is the configured location list.
var Locations = []string{
	"Bihar", "Delhi", "Goa", "Gujarat", "Haryana", "Jharkhand",
	"Madhya Pradesh", "Odisha", "Port Blair", "Rajasthan", "Sikkim",
	"Uttar Pradesh", "West Bengal",
}

// FileType represents the allowed attachment types.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
}

// UserRole defines the role hierarchy.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleAccounts UserRole = "accounts"
	RoleViewer   UserRole = "viewer"
)
