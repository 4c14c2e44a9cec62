package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"ims/internal/domain"
	"ims/internal/normalize"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the export header row (26 columns).
var columns = []string{
	"Title",
	"Bill Category",
	"Project",
	"Project Mode",
	"Location",
	"Invoice Date",
	"Submission Date",
	"Payment Date",
	"Milestone %",
	"GST %",
	"Basic Amount",
	"GST Amount",
	"Total Amount",
	"Client Amount",
	"Retention",
	"GST Withheld",
	"TDS",
	"GST TDS",
	"BOCW",
	"Other Deductions",
	"Total Deductions",
	"Net Payable",
	"Amount Paid",
	"Balance",
	"Status",
	"Remarks",
}

// Writer wraps csv.Writer for exporting invoices as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteInvoices converts a batch of invoices to CSV rows and writes them.
func (w *Writer) WriteInvoices(invoices []domain.Invoice) error {
	for i := range invoices {
		if err := w.csv.Write(invoiceToRow(&invoices[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// invoiceToRow converts a single invoice to a row matching columns. The
// four smaller penalty deductions are folded into "Other Deductions" to
// keep the sheet readable; the full split is available over the API.
func invoiceToRow(inv *domain.Invoice) []string {
	otherDeductions := inv.LowDepthDeductionAmount + inv.LiquidatedDamagesAmount +
		inv.SLAPenaltyAmount + inv.PenaltyAmount + inv.OtherDeductionAmount

	return []string{
		inv.Title,
		inv.BillCategory,
		inv.Project,
		string(inv.ProjectMode),
		inv.Location,
		normalize.FormatDate(inv.InvoiceDate),
		normalize.FormatDate(inv.SubmissionDate),
		normalize.FormatDate(inv.PaymentDate),
		strconv.Itoa(inv.MilestonePercent),
		strconv.Itoa(inv.GSTPercent),
		formatMoney(inv.BasicAmount),
		formatMoney(inv.GSTAmount),
		formatMoney(inv.TotalAmount),
		formatMoney(inv.ClientAmount),
		formatMoney(inv.RetentionAmount),
		formatMoney(inv.GSTWithheld),
		formatMoney(inv.TDSAmount),
		formatMoney(inv.GSTTDSAmount),
		formatMoney(inv.BOCWAmount),
		formatMoney(otherDeductions),
		formatMoney(inv.TotalDeductionAmount),
		formatMoney(inv.NetPayableAmount),
		formatMoney(inv.AmountPaid),
		formatMoney(inv.BalanceAmount),
		string(inv.Status),
		inv.Remarks,
	}
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses
// consecutive underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header, in the form {name}_{YYYY-MM-DD}.{ext}.
func BuildFilename(name, ext string) string {
	sanitized := SanitizeFilename(name)
	if sanitized == "" {
		sanitized = "invoices"
	}
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
