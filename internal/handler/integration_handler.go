package handler

import (
	"crypto/subtle"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ims/internal/service"
)

// IntegrationHandler handles the form-automation ingest endpoint. It is
// authenticated by a shared secret header instead of a user token because
// the caller is an external automation service, not a person.
type IntegrationHandler struct {
	invoiceService service.InvoiceService
	secret         string
}

// NewIntegrationHandler creates a new IntegrationHandler.
func NewIntegrationHandler(invoiceService service.InvoiceService, secret string) *IntegrationHandler {
	return &IntegrationHandler{invoiceService: invoiceService, secret: secret}
}

// Ingest handles POST /api/v1/integrations/forms. The body is whatever
// shape the automation service sends; payload decoding tolerates all the
// known variants.
func (h *IntegrationHandler) Ingest(c *gin.Context) {
	if h.secret == "" {
		RespondError(c, http.StatusNotFound, "NOT_FOUND", "integration endpoint is not enabled")
		return
	}
	provided := c.GetHeader("X-Webhook-Secret")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid webhook secret")
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "unable to read request body")
		return
	}

	inv, err := h.invoiceService.IngestFormPayload(c.Request.Context(), body, uuid.Nil)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, inv)
}
