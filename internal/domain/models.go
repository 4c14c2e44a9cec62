package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User represents an authenticated user of the invoice system.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// EmailList is an ordered list of email addresses stored as a JSONB array.
// Duplicates are allowed and insertion order is preserved.
type EmailList []string

// Value implements driver.Valuer.
func (e EmailList) Value() (driver.Value, error) {
	if e == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e)
}

// Scan implements sql.Scanner.
func (e *EmailList) Scan(src interface{}) error {
	if src == nil {
		*e = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("EmailList.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(data, e)
}

// Invoice is the central record of the system. The five derived amount
// fields (gst_amount, total_amount, total_deduction_amount,
// net_payable_amount, balance_amount) are always recomputed server-side on
// save and never trusted from client input.
type Invoice struct {
	ID      uuid.UUID `db:"id" json:"id"`
	Title   string    `db:"title" json:"title"`
	Remarks string    `db:"remarks" json:"remarks"`

	BillCategory string      `db:"bill_category" json:"bill_category"`
	Project      string      `db:"project" json:"project"`
	ProjectMode  ProjectMode `db:"project_mode" json:"project_mode"`
	Location     string      `db:"location" json:"location"`

	InvoiceDate    *time.Time `db:"invoice_date" json:"invoice_date"`
	SubmissionDate *time.Time `db:"submission_date" json:"submission_date"`
	PaymentDate    *time.Time `db:"payment_date" json:"payment_date"`

	MilestonePercent int `db:"milestone_percent" json:"milestone_percent"`
	GSTPercent       int `db:"gst_percent" json:"gst_percent"`

	BasicAmount  float64 `db:"basic_amount" json:"basic_amount"`
	GSTAmount    float64 `db:"gst_amount" json:"gst_amount"`
	TotalAmount  float64 `db:"total_amount" json:"total_amount"`
	ClientAmount float64 `db:"client_amount" json:"client_amount"`

	RetentionAmount         float64 `db:"retention_amount" json:"retention_amount"`
	GSTWithheld             float64 `db:"gst_withheld" json:"gst_withheld"`
	TDSAmount               float64 `db:"tds_amount" json:"tds_amount"`
	GSTTDSAmount            float64 `db:"gst_tds_amount" json:"gst_tds_amount"`
	BOCWAmount              float64 `db:"bocw_amount" json:"bocw_amount"`
	LowDepthDeductionAmount float64 `db:"low_depth_deduction_amount" json:"low_depth_deduction_amount"`
	LiquidatedDamagesAmount float64 `db:"liquidated_damages_amount" json:"liquidated_damages_amount"`
	SLAPenaltyAmount        float64 `db:"sla_penalty_amount" json:"sla_penalty_amount"`
	PenaltyAmount           float64 `db:"penalty_amount" json:"penalty_amount"`
	OtherDeductionAmount    float64 `db:"other_deduction_amount" json:"other_deduction_amount"`

	TotalDeductionAmount float64 `db:"total_deduction_amount" json:"total_deduction_amount"`
	NetPayableAmount     float64 `db:"net_payable_amount" json:"net_payable_amount"`
	AmountPaid           float64 `db:"amount_paid" json:"amount_paid"`
	BalanceAmount        float64 `db:"balance_amount" json:"balance_amount"`

	Status InvoiceStatus `db:"status" json:"status"`
	State  RecordState   `db:"state" json:"state"`

	// HasBeenPublished transitions false→true exactly once, on the first
	// save that publishes the record. It selects the webhook endpoint.
	HasBeenPublished bool `db:"has_been_published" json:"has_been_published"`

	FileID  *uuid.UUID `db:"file_id" json:"file_id"`
	FileURL string     `db:"file_url" json:"file_url"`

	ToEmail  string    `db:"to_email" json:"to_email"`
	CCEmails EmailList `db:"cc_emails" json:"cc_emails"`

	CreatedBy uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StatusCount is an invoice count plus amount sum for one status value.
type StatusCount struct {
	Status InvoiceStatus `db:"status" json:"status"`
	Count  int           `db:"count" json:"count"`
	Amount float64       `db:"amount" json:"amount"`
}

// MonthlyAmount is the basic-amount sum for one calendar month.
type MonthlyAmount struct {
	Month  string  `db:"month" json:"month"`
	Amount float64 `db:"amount" json:"amount"`
}

// MonthStatusCount is an invoice count for one month and status.
type MonthStatusCount struct {
	Month  string        `db:"month" json:"month"`
	Status InvoiceStatus `db:"status" json:"status"`
	Count  int           `db:"count" json:"count"`
}

// TagCount is an invoice count for one classification label.
type TagCount struct {
	Label string `db:"label" json:"label"`
	Count int    `db:"count" json:"count"`
}

// DashboardData is the read-only aggregate payload backing the charts
// dashboard.
type DashboardData struct {
	StatusRatio    []StatusCount      `json:"status_ratio"`
	AmountTimeline []MonthlyAmount    `json:"amount_timeline"`
	CountByMonth   []MonthStatusCount `json:"count_by_month"`
	ByProject      []TagCount         `json:"by_project"`
	ByLocation     []TagCount         `json:"by_location"`
	ByBillCategory []TagCount         `json:"by_bill_category"`
	TotalInvoices  int                `json:"total_invoices"`
	TotalBalance   float64            `json:"total_balance"`
}
