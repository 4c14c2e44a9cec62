package service_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ims/internal/config"
	"ims/internal/domain"
	"ims/internal/port"
	"ims/internal/service"
	"ims/mocks"
)

func setupInvoiceService() (*mocks.MockInvoiceRepo, *mocks.MockObjectStorage, *mocks.MockNotifier, *mocks.MockEmailSender, service.InvoiceService) {
	repo := new(mocks.MockInvoiceRepo)
	storage := new(mocks.MockObjectStorage)
	notifier := new(mocks.MockNotifier)
	email := new(mocks.MockEmailSender)

	s3Cfg := &config.S3Config{Bucket: "ims-invoices", MaxFileSizeMB: 25, PresignExpiry: 3600}
	policy := config.PolicyConfig{RequireAttachment: false, EnforcePaymentDateOrder: true}
	portal := config.PortalConfig{MaxFileSizeMB: 5}

	svc := service.NewInvoiceService(repo, storage, notifier, email, nil, s3Cfg, policy, portal)
	return repo, storage, notifier, email, svc
}

func baseFields() map[string]string {
	return map[string]string{
		"title":           "INV-2024-001",
		"project":         "NFS",
		"location":        "Bihar",
		"invoice_date":    "2024-01-09",
		"submission_date": "2024-01-10",
		"gst_percent":     "18",
		"basic_amount":    "10000",
		"retention_amount": "500",
		"tds_amount":      "200",
		"amount_paid":     "9000",
	}
}

func TestSave_FirstPublishSendsCreatedEvent(t *testing.T) {
	repo, _, notifier, email, svc := setupInvoiceService()

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(ev port.Event) bool {
		return ev.Type == port.EventCreated
	})).Return()
	email.On("SendInvoicePublished", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil).Maybe()

	inv, err := svc.Save(context.Background(), service.SaveInput{
		Fields:  baseFields(),
		Publish: true,
		Surface: service.SurfaceAdmin,
		ActorID: uuid.New(),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatePublished, inv.State)
	assert.True(t, inv.HasBeenPublished)
	assert.Equal(t, domain.StatusPending, inv.Status)

	// Reference arithmetic: 10000 basic at 18% with 700 deductions and
	// 9000 paid.
	assert.Equal(t, 1800.0, inv.GSTAmount)
	assert.Equal(t, 11800.0, inv.TotalAmount)
	assert.Equal(t, 700.0, inv.TotalDeductionAmount)
	assert.Equal(t, 11100.0, inv.NetPayableAmount)
	assert.Equal(t, 2100.0, inv.BalanceAmount)

	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestSave_SecondSaveSendsUpdatedEvent(t *testing.T) {
	repo, _, notifier, email, svc := setupInvoiceService()

	id := uuid.New()
	existing := &domain.Invoice{
		ID:               id,
		Title:            "INV-2024-001",
		State:            domain.StatePublished,
		Status:           domain.StatusPending,
		HasBeenPublished: true,
	}

	repo.On("GetByID", mock.Anything, id).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(ev port.Event) bool {
		return ev.Type == port.EventUpdated
	})).Return()
	email.On("SendInvoicePublished", mock.Anything, mock.Anything).Return(nil).Maybe()

	inv, err := svc.Save(context.Background(), service.SaveInput{
		ID:      &id,
		Fields:  baseFields(),
		Publish: true,
		Surface: service.SurfaceAdmin,
	})

	require.NoError(t, err)
	assert.True(t, inv.HasBeenPublished)
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestSave_DraftSendsNoEvent(t *testing.T) {
	repo, _, notifier, _, svc := setupInvoiceService()

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)

	inv, err := svc.Save(context.Background(), service.SaveInput{
		Fields:  baseFields(),
		Publish: false,
		Surface: service.SurfaceAdmin,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StateDraft, inv.State)
	assert.False(t, inv.HasBeenPublished)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestSave_ValidationFailureStopsPersist(t *testing.T) {
	repo, _, notifier, _, svc := setupInvoiceService()

	fields := baseFields()
	fields["invoice_date"] = "2024-01-10"
	fields["submission_date"] = "2024-01-09"

	_, err := svc.Save(context.Background(), service.SaveInput{
		Fields:  fields,
		Publish: true,
		Surface: service.SurfaceAdmin,
	})

	assert.ErrorIs(t, err, domain.ErrDateOrder)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestSave_MissingTitleRejected(t *testing.T) {
	repo, _, _, _, svc := setupInvoiceService()

	fields := baseFields()
	delete(fields, "title")

	_, err := svc.Save(context.Background(), service.SaveInput{
		Fields:  fields,
		Publish: true,
		Surface: service.SurfaceAdmin,
	})

	assert.ErrorIs(t, err, domain.ErrTitleRequired)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSave_PaymentDateClearedUnlessPaid(t *testing.T) {
	repo, _, notifier, email, svc := setupInvoiceService()

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	notifier.On("Notify", mock.Anything, mock.Anything).Return().Maybe()
	email.On("SendInvoicePublished", mock.Anything, mock.Anything).Return(nil).Maybe()

	fields := baseFields()
	fields["payment_date"] = "2024-02-01"
	fields["status"] = "pending"

	inv, err := svc.Save(context.Background(), service.SaveInput{
		Fields:  fields,
		Publish: true,
		Surface: service.SurfaceAdmin,
	})

	require.NoError(t, err)
	assert.Nil(t, inv.PaymentDate)
}

func TestSave_PaymentDateKeptWhenPaid(t *testing.T) {
	repo, _, notifier, email, svc := setupInvoiceService()

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	notifier.On("Notify", mock.Anything, mock.Anything).Return().Maybe()
	email.On("SendInvoicePublished", mock.Anything, mock.Anything).Return(nil).Maybe()

	fields := baseFields()
	fields["payment_date"] = "2024-02-01"
	fields["status"] = "paid"

	inv, err := svc.Save(context.Background(), service.SaveInput{
		Fields:  fields,
		Publish: true,
		Surface: service.SurfaceAdmin,
	})

	require.NoError(t, err)
	require.NotNil(t, inv.PaymentDate)
	assert.Equal(t, "2024-02-01", inv.PaymentDate.Format("2006-01-02"))
	assert.Equal(t, domain.StatusPaid, inv.Status)
}

func TestSave_PortalEnforcesPaymentDateOrder(t *testing.T) {
	_, _, _, _, svc := setupInvoiceService()

	fields := baseFields()
	fields["status"] = "paid"
	fields["payment_date"] = "2024-01-05"

	_, err := svc.Save(context.Background(), service.SaveInput{
		Fields:  fields,
		Publish: true,
		Surface: service.SurfacePortal,
	})
	assert.ErrorIs(t, err, domain.ErrPaymentDateOrder)
}

func TestSave_AdminSkipsPaymentDateOrder(t *testing.T) {
	repo, _, notifier, email, svc := setupInvoiceService()

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	notifier.On("Notify", mock.Anything, mock.Anything).Return().Maybe()
	email.On("SendInvoicePublished", mock.Anything, mock.Anything).Return(nil).Maybe()

	fields := baseFields()
	fields["status"] = "paid"
	fields["payment_date"] = "2024-01-05"

	_, err := svc.Save(context.Background(), service.SaveInput{
		Fields:  fields,
		Publish: true,
		Surface: service.SurfaceAdmin,
	})
	assert.NoError(t, err)
}

func TestSave_PartialUpdateLeavesAbsentFields(t *testing.T) {
	repo, _, notifier, email, svc := setupInvoiceService()

	id := uuid.New()
	paid := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	existing := &domain.Invoice{
		ID:               id,
		Title:            "INV-2024-001",
		Project:          "GAIL",
		Location:         "Delhi",
		BasicAmount:      5000,
		GSTPercent:       18,
		Status:           domain.StatusPaid,
		PaymentDate:      &paid,
		State:            domain.StatePublished,
		HasBeenPublished: true,
	}

	repo.On("GetByID", mock.Anything, id).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	notifier.On("Notify", mock.Anything, mock.Anything).Return().Maybe()
	email.On("SendInvoicePublished", mock.Anything, mock.Anything).Return(nil).Maybe()

	inv, err := svc.Save(context.Background(), service.SaveInput{
		ID:      &id,
		Fields:  map[string]string{"title": "INV-2024-001", "basic_amount": "6000"},
		Publish: true,
		Surface: service.SurfaceIntegration,
		Partial: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "GAIL", inv.Project)
	assert.Equal(t, "Delhi", inv.Location)
	assert.Equal(t, 6000.0, inv.BasicAmount)
	assert.Equal(t, 18, inv.GSTPercent)
	assert.Equal(t, domain.StatusPaid, inv.Status)
	require.NotNil(t, inv.PaymentDate)
}

func TestIngestFormPayload_UpdatesByTitle(t *testing.T) {
	repo, _, notifier, email, svc := setupInvoiceService()

	id := uuid.New()
	existing := &domain.Invoice{
		ID:               id,
		Title:            "INV-77",
		State:            domain.StatePublished,
		Status:           domain.StatusPending,
		HasBeenPublished: true,
		GSTPercent:       18,
	}

	repo.On("GetByTitle", mock.Anything, "INV-77").Return(existing, nil)
	repo.On("GetByID", mock.Anything, id).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(ev port.Event) bool {
		return ev.Type == port.EventUpdated
	})).Return()
	email.On("SendInvoicePublished", mock.Anything, mock.Anything).Return(nil).Maybe()

	body := []byte(`{"fields":[{"id":"title","value":"INV-77"},{"id":"basic_amount","value":"12,345.60"}]}`)
	inv, err := svc.IngestFormPayload(context.Background(), body, uuid.Nil)

	require.NoError(t, err)
	assert.Equal(t, 12345.60, inv.BasicAmount)
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestIngestFormPayload_CreatesWhenUnknownTitle(t *testing.T) {
	repo, _, notifier, email, svc := setupInvoiceService()

	repo.On("GetByTitle", mock.Anything, "INV-NEW").Return(nil, domain.ErrInvoiceNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(ev port.Event) bool {
		return ev.Type == port.EventCreated
	})).Return()
	email.On("SendInvoicePublished", mock.Anything, mock.Anything).Return(nil).Maybe()

	body := []byte(`{"title":"INV-NEW","basic_amount":"1000","gst_percent":"18"}`)
	inv, err := svc.IngestFormPayload(context.Background(), body, uuid.Nil)

	require.NoError(t, err)
	assert.Equal(t, "INV-NEW", inv.Title)
	assert.True(t, inv.HasBeenPublished)
	repo.AssertExpectations(t)
}

func TestIngestFormPayload_MissingTitleRejected(t *testing.T) {
	_, _, _, _, svc := setupInvoiceService()

	_, err := svc.IngestFormPayload(context.Background(), []byte(`{"basic_amount":"1000"}`), uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrTitleRequired)
}

func TestRecompute_RewritesDerivedWithoutNotify(t *testing.T) {
	repo, _, notifier, _, svc := setupInvoiceService()

	id := uuid.New()
	existing := &domain.Invoice{
		ID:          id,
		Title:       "INV-5",
		BasicAmount: 1000,
		GSTPercent:  18,
		// Stale derived values from before a data repair.
		GSTAmount:   999,
		TotalAmount: 999,
		State:       domain.StatePublished,
	}

	repo.On("GetByID", mock.Anything, id).Return(existing, nil)
	repo.On("UpdateDerived", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)

	inv, err := svc.Recompute(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, 180.0, inv.GSTAmount)
	assert.Equal(t, 1180.0, inv.TotalAmount)
	assert.Equal(t, 1180.0, inv.NetPayableAmount)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

type memoryFile struct {
	*bytes.Reader
}

func (memoryFile) Close() error { return nil }

func uploadFixture(name string, payload []byte) (multipart.File, *multipart.FileHeader) {
	return memoryFile{bytes.NewReader(payload)}, &multipart.FileHeader{
		Filename: name,
		Size:     int64(len(payload)),
	}
}

func pdfPayload() []byte {
	return append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{0x20}, 64)...)
}

func jpegPayload() []byte {
	return append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0x00}, 64)...)
}

func TestSave_AttachmentUploaded(t *testing.T) {
	repo, storage, notifier, email, svc := setupInvoiceService()

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	notifier.On("Notify", mock.Anything, mock.Anything).Return().Maybe()
	email.On("SendInvoicePublished", mock.Anything, mock.Anything).Return(nil).Maybe()
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "ims-invoices" &&
			in.ContentType == "application/pdf" &&
			strings.HasPrefix(in.Key, "invoices/") &&
			strings.HasSuffix(in.Key, ".pdf")
	})).Return(&port.UploadOutput{Location: "https://ims-invoices.s3.amazonaws.com/scan.pdf"}, nil)

	file, header := uploadFixture("scan.pdf", pdfPayload())
	inv, err := svc.Save(context.Background(), service.SaveInput{
		Fields:  baseFields(),
		File:    file,
		Header:  header,
		Publish: true,
		Surface: service.SurfaceAdmin,
	})

	require.NoError(t, err)
	require.NotNil(t, inv.FileID)
	assert.Equal(t, "https://ims-invoices.s3.amazonaws.com/scan.pdf", inv.FileURL)
	storage.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestSave_RenamedAttachmentRejected(t *testing.T) {
	repo, storage, _, _, svc := setupInvoiceService()

	// JPEG bytes wearing a .pdf name must not pass the magic-byte check.
	file, header := uploadFixture("invoice.pdf", jpegPayload())
	_, err := svc.Save(context.Background(), service.SaveInput{
		Fields:  baseFields(),
		File:    file,
		Header:  header,
		Publish: true,
		Surface: service.SurfaceAdmin,
	})

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSave_UnknownAttachmentExtensionRejected(t *testing.T) {
	repo, storage, _, _, svc := setupInvoiceService()

	file, header := uploadFixture("invoice.exe", pdfPayload())
	_, err := svc.Save(context.Background(), service.SaveInput{
		Fields:  baseFields(),
		File:    file,
		Header:  header,
		Publish: true,
		Surface: service.SurfaceAdmin,
	})

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSave_PortalUploadCeiling(t *testing.T) {
	repo, storage, notifier, email, svc := setupInvoiceService()

	file, header := uploadFixture("scan.pdf", pdfPayload())
	header.Size = 6 << 20

	_, err := svc.Save(context.Background(), service.SaveInput{
		Fields:  baseFields(),
		File:    file,
		Header:  header,
		Publish: true,
		Surface: service.SurfacePortal,
	})
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	// The same size is fine through the admin surface and its 25MB
	// ceiling.
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	notifier.On("Notify", mock.Anything, mock.Anything).Return().Maybe()
	email.On("SendInvoicePublished", mock.Anything, mock.Anything).Return(nil).Maybe()
	storage.On("Upload", mock.Anything, mock.Anything).
		Return(&port.UploadOutput{Location: "https://ims-invoices.s3.amazonaws.com/scan.pdf"}, nil)

	file, header = uploadFixture("scan.pdf", pdfPayload())
	header.Size = 6 << 20

	_, err = svc.Save(context.Background(), service.SaveInput{
		Fields:  baseFields(),
		File:    file,
		Header:  header,
		Publish: true,
		Surface: service.SurfaceAdmin,
	})
	assert.NoError(t, err)
	storage.AssertExpectations(t)
}

func TestSave_UploadFailureAbortsSave(t *testing.T) {
	repo, storage, notifier, _, svc := setupInvoiceService()

	storage.On("Upload", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset"))

	file, header := uploadFixture("scan.pdf", pdfPayload())
	_, err := svc.Save(context.Background(), service.SaveInput{
		Fields:  baseFields(),
		File:    file,
		Header:  header,
		Publish: true,
		Surface: service.SurfaceAdmin,
	})

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestGetByRef(t *testing.T) {
	repo, _, _, _, svc := setupInvoiceService()

	id := uuid.New()
	byID := &domain.Invoice{ID: id, Title: "INV-1"}
	repo.On("GetByID", mock.Anything, id).Return(byID, nil)
	repo.On("GetByTitle", mock.Anything, "INV-1").Return(byID, nil)

	got, err := svc.GetByRef(context.Background(), id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	got, err = svc.GetByRef(context.Background(), "INV-1")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}
