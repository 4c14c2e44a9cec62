package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ims/internal/domain"
	"ims/internal/export"
	"ims/internal/middleware"
	"ims/internal/service"
)

// InvoiceHandler handles invoice management endpoints.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// formFields flattens the submitted form values into the canonical field
// map, keeping the first value of each key.
func formFields(c *gin.Context) map[string]string {
	if c.Request.PostForm == nil {
		_ = c.Request.ParseMultipartForm(64 << 20)
	}
	fields := make(map[string]string, len(c.Request.PostForm))
	for k, v := range c.Request.PostForm {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	return fields
}

// attachment pulls the optional file upload out of the request. A missing
// file field is not an error.
func attachment(c *gin.Context) (multipart.File, *multipart.FileHeader) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		return nil, nil
	}
	return file, header
}

func (h *InvoiceHandler) save(c *gin.Context, id *uuid.UUID, surface service.Surface) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	file, header := attachment(c)
	if file != nil {
		defer func() { _ = file.Close() }()
	}

	input := service.SaveInput{
		ID:      id,
		Fields:  formFields(c),
		File:    file,
		Header:  header,
		Publish: c.PostForm("publish") != "false",
		Surface: surface,
		ActorID: userID,
	}

	inv, err := h.invoiceService.Save(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	if id == nil {
		RespondCreated(c, inv)
		return
	}
	RespondOK(c, inv)
}

// Create handles POST /api/v1/invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	h.save(c, nil, service.SurfaceAdmin)
}

// Update handles PUT /api/v1/invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice id")
		return
	}
	h.save(c, &id, service.SurfaceAdmin)
}

// PortalCreate handles POST /api/v1/portal/invoices with the strict
// validation policy and the smaller upload ceiling.
func (h *InvoiceHandler) PortalCreate(c *gin.Context) {
	h.save(c, nil, service.SurfacePortal)
}

// PortalUpdate handles PUT /api/v1/portal/invoices/:id
func (h *InvoiceHandler) PortalUpdate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice id")
		return
	}
	h.save(c, &id, service.SurfacePortal)
}

// Get handles GET /api/v1/invoices/:id. The path parameter may be a UUID
// or an exact invoice title.
func (h *InvoiceHandler) Get(c *gin.Context) {
	inv, err := h.invoiceService.GetByRef(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, inv)
}

// List handles GET /api/v1/invoices with optional status filter and
// pagination.
func (h *InvoiceHandler) List(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !domain.ValidStatus(status) {
		RespondError(c, http.StatusBadRequest, "INVALID_STATUS", "unknown invoice status")
		return
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	invoices, total, err := h.invoiceService.List(c.Request.Context(),
		domain.InvoiceStatus(status), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, invoices, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Counts handles GET /api/v1/invoices/counts, returning the per-status
// totals that drive the list filter tabs.
func (h *InvoiceHandler) Counts(c *gin.Context) {
	counts, err := h.invoiceService.CountsByStatus(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"all":                counts[domain.StatusAny],
		"pending":            counts[domain.StatusPending],
		"paid":               counts[domain.StatusPaid],
		"cancel":             counts[domain.StatusCancel],
		"credit_note_issued": counts[domain.StatusCreditNoteIssued],
	})
}

// Recompute handles POST /api/v1/invoices/:id/recompute
func (h *InvoiceHandler) Recompute(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice id")
		return
	}
	inv, err := h.invoiceService.Recompute(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, inv)
}

// Export handles GET /api/v1/invoices/export?format=csv|xlsx with the
// same status filter as List.
func (h *InvoiceHandler) Export(c *gin.Context) {
	status := c.Query("status")
	if status != "" && !domain.ValidStatus(status) {
		RespondError(c, http.StatusBadRequest, "INVALID_STATUS", "unknown invoice status")
		return
	}

	// Export is unpaginated; cap at a batch large enough for any
	// realistic invoice register.
	invoices, _, err := h.invoiceService.List(c.Request.Context(),
		domain.InvoiceStatus(status), 0, 10000)
	if err != nil {
		HandleError(c, err)
		return
	}

	name := "invoices"
	if status != "" {
		name = "invoices_" + status
	}

	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		c.Header("Content-Disposition", `attachment; filename="`+export.BuildFilename(name, "xlsx")+`"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := export.WriteXLSX(c.Writer, invoices); err != nil {
			HandleError(c, err)
		}
	case "csv":
		c.Header("Content-Disposition", `attachment; filename="`+export.BuildFilename(name, "csv")+`"`)
		c.Header("Content-Type", "text/csv; charset=utf-8")
		_, _ = c.Writer.Write(export.BOM)
		w := export.NewWriter(c.Writer)
		if err := w.WriteHeader(); err != nil {
			HandleError(c, err)
			return
		}
		if err := w.WriteInvoices(invoices); err != nil {
			HandleError(c, err)
			return
		}
		w.Flush()
	default:
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx")
	}
}
