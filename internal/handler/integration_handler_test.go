package handler_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ims/internal/domain"
	"ims/internal/handler"
	"ims/mocks"
)

func ingestRequest(t *testing.T, h *handler.IntegrationHandler, secret string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/ingest", h.Ingest)

	req := httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewReader(body))
	if secret != "" {
		req.Header.Set("X-Webhook-Secret", secret)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIngest_ValidSecret(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	svc.On("IngestFormPayload", mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.Invoice{Title: "INV-1"}, nil)

	h := handler.NewIntegrationHandler(svc, "s3cret")
	w := ingestRequest(t, h, "s3cret", []byte(`{"title":"INV-1"}`))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestIngest_WrongSecret(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewIntegrationHandler(svc, "s3cret")

	w := ingestRequest(t, h, "wrong", []byte(`{}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "IngestFormPayload", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngest_MissingSecretHeader(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewIntegrationHandler(svc, "s3cret")

	w := ingestRequest(t, h, "", []byte(`{}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIngest_DisabledWithoutConfiguredSecret(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := handler.NewIntegrationHandler(svc, "")

	w := ingestRequest(t, h, "anything", []byte(`{}`))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMapDomainError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvoiceNotFound, http.StatusNotFound, "INVOICE_NOT_FOUND"},
		{domain.ErrTitleRequired, http.StatusBadRequest, "TITLE_REQUIRED"},
		{domain.ErrDateOrder, http.StatusBadRequest, "DATE_ORDER"},
		{domain.ErrPaymentDateOrder, http.StatusBadRequest, "PAYMENT_DATE_ORDER"},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{domain.ErrUploadFailed, http.StatusInternalServerError, "UPLOAD_FAILED"},
		{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{assert.AnError, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		status, code, _ := handler.MapDomainError(tc.err)
		assert.Equal(t, tc.status, status, tc.code)
		assert.Equal(t, tc.code, code)
	}
}
