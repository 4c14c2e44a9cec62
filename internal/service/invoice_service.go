package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"ims/internal/config"
	"ims/internal/domain"
	"ims/internal/finance"
	"ims/internal/normalize"
	"ims/internal/port"
	"ims/internal/validator"
	"ims/internal/webhook"
)

// Surface identifies which entry point a save came through. The admin
// surface runs relaxed validation and the large file ceiling; portal and
// integration saves get the strict rules.
type Surface string

const (
	SurfaceAdmin       Surface = "admin"
	SurfacePortal      Surface = "portal"
	SurfaceIntegration Surface = "integration"
)

// SaveInput is the DTO for invoice save requests from any surface.
type SaveInput struct {
	// ID is nil for a create, set for an update.
	ID      *uuid.UUID
	Fields  map[string]string
	File    multipart.File
	Header  *multipart.FileHeader
	Publish bool
	Surface Surface
	// Partial leaves fields absent from the submission untouched instead
	// of clearing them. Integration ingests are partial; form saves are
	// not.
	Partial bool
	ActorID uuid.UUID
}

// InvoiceService defines the invoice management contract.
type InvoiceService interface {
	Save(ctx context.Context, input SaveInput) (*domain.Invoice, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	// GetByRef resolves an invoice by UUID or, failing that, exact title.
	GetByRef(ctx context.Context, ref string) (*domain.Invoice, error)
	List(ctx context.Context, status domain.InvoiceStatus, offset, limit int) ([]domain.Invoice, int, error)
	CountsByStatus(ctx context.Context) (map[domain.InvoiceStatus]int, error)
	// Recompute rewrites the derived amounts of a stored invoice from its
	// stored inputs. It skips validation and sends no notifications.
	Recompute(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	// IngestFormPayload accepts a raw form-automation payload, locates the
	// target invoice by title, and applies a partial update, creating the
	// invoice when no match exists.
	IngestFormPayload(ctx context.Context, body []byte, actorID uuid.UUID) (*domain.Invoice, error)
}

type invoiceService struct {
	repo     port.InvoiceRepository
	storage  port.ObjectStorage
	notifier port.Notifier
	email    port.EmailSender
	cache    port.DashboardCache
	s3Cfg    *config.S3Config
	policy   config.PolicyConfig
	portal   config.PortalConfig
}

// NewInvoiceService creates a new InvoiceService implementation. cache
// may be nil when dashboard caching is disabled.
func NewInvoiceService(
	repo port.InvoiceRepository,
	storage port.ObjectStorage,
	notifier port.Notifier,
	email port.EmailSender,
	cache port.DashboardCache,
	s3Cfg *config.S3Config,
	policy config.PolicyConfig,
	portal config.PortalConfig,
) InvoiceService {
	return &invoiceService{
		repo:     repo,
		storage:  storage,
		notifier: notifier,
		email:    email,
		cache:    cache,
		s3Cfg:    s3Cfg,
		policy:   policy,
		portal:   portal,
	}
}

func (s *invoiceService) Save(ctx context.Context, input SaveInput) (*domain.Invoice, error) {
	inv, isNew, err := s.loadTarget(ctx, input)
	if err != nil {
		return nil, err
	}

	fields := normalize.ParseFields(input.Fields)
	applyFields(inv, fields, input.Partial)

	if input.Publish {
		inv.State = domain.StatePublished
	}

	hasUpload := input.File != nil && input.Header != nil
	if err := validator.Validate(inv, hasUpload, s.policyFor(input.Surface)); err != nil {
		return nil, err
	}

	if hasUpload {
		if err := s.attachFile(ctx, inv, input); err != nil {
			return nil, err
		}
	}

	derived := finance.Compute(finance.Inputs{
		BasicAmount: inv.BasicAmount,
		GSTPercent:  inv.GSTPercent,
		Deductions: finance.Deductions{
			Retention:         inv.RetentionAmount,
			GSTWithheld:       inv.GSTWithheld,
			TDS:               inv.TDSAmount,
			GSTTDS:            inv.GSTTDSAmount,
			BOCW:              inv.BOCWAmount,
			LowDepth:          inv.LowDepthDeductionAmount,
			LiquidatedDamages: inv.LiquidatedDamagesAmount,
			SLAPenalty:        inv.SLAPenaltyAmount,
			Penalty:           inv.PenaltyAmount,
			Other:             inv.OtherDeductionAmount,
		},
		AmountPaid: inv.AmountPaid,
	})
	inv.GSTAmount = derived.GSTAmount
	inv.TotalAmount = derived.TotalAmount
	inv.TotalDeductionAmount = derived.TotalDeductionAmount
	inv.NetPayableAmount = derived.NetPayableAmount
	inv.BalanceAmount = derived.BalanceAmount

	// The payment date only means something while the invoice is paid.
	if inv.Status != domain.StatusPaid {
		inv.PaymentDate = nil
	}

	firstPublish := inv.State == domain.StatePublished && !inv.HasBeenPublished
	if firstPublish {
		inv.HasBeenPublished = true
	}

	if isNew {
		err = s.repo.Create(ctx, inv)
	} else {
		err = s.repo.Update(ctx, inv)
	}
	if err != nil {
		return nil, err
	}

	s.afterSave(ctx, inv, firstPublish)
	return inv, nil
}

func (s *invoiceService) loadTarget(ctx context.Context, input SaveInput) (*domain.Invoice, bool, error) {
	if input.ID != nil {
		inv, err := s.repo.GetByID(ctx, *input.ID)
		if err != nil {
			return nil, false, err
		}
		return inv, false, nil
	}
	return &domain.Invoice{
		ID:        uuid.New(),
		Status:    domain.StatusPending,
		State:     domain.StateDraft,
		CreatedBy: input.ActorID,
	}, true, nil
}

func (s *invoiceService) policyFor(surface Surface) validator.Policy {
	p := validator.Policy{RequireAttachment: s.policy.RequireAttachment}
	if surface != SurfaceAdmin {
		p.EnforcePaymentDateOrder = s.policy.EnforcePaymentDateOrder
	}
	return p
}

func (s *invoiceService) maxUploadBytes(surface Surface) int64 {
	if surface == SurfaceAdmin {
		return s.s3Cfg.MaxFileSizeMB * 1024 * 1024
	}
	return s.portal.MaxFileSizeMB * 1024 * 1024
}

// attachFile validates and uploads the submitted attachment, then points
// the invoice at the stored object. A failed upload aborts the save.
func (s *invoiceService) attachFile(ctx context.Context, inv *domain.Invoice, input SaveInput) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return domain.ErrUnsupportedFileType
	}

	if input.Header.Size > s.maxUploadBytes(input.Surface) {
		return domain.ErrFileTooLarge
	}

	// Magic-byte check so a renamed file cannot sneak through: the
	// detected type must match what the extension claims.
	buf := make([]byte, 512)
	n, err := input.File.Read(buf)
	if err != nil && err != io.EOF {
		return fmt.Errorf("reading file header: %w", err)
	}
	detected, valid := domain.AllowedContentTypes[http.DetectContentType(buf[:n])]
	if !valid || detected != fileType {
		return domain.ErrUnsupportedFileType
	}

	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seeking file: %w", err)
	}

	fileID := uuid.New()
	key := fmt.Sprintf("invoices/%s/%s.%s", inv.ID, fileID, ext)
	contentType := domain.AllowedFileTypes[fileType]

	out, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3Cfg.Bucket,
		Key:         key,
		Body:        input.File,
		ContentType: contentType,
		Size:        input.Header.Size,
	})
	if err != nil {
		log.Error().Err(err).Str("invoice", inv.Title).Str("key", key).
			Msg("invoice attachment upload failed")
		return domain.ErrUploadFailed
	}

	inv.FileID = &fileID
	inv.FileURL = out.Location
	return nil
}

// afterSave runs the post-persist side effects: webhook notification for
// published invoices, the first-publish email, and dashboard cache
// invalidation. None of them can fail the save.
func (s *invoiceService) afterSave(ctx context.Context, inv *domain.Invoice, firstPublish bool) {
	if inv.State == domain.StatePublished {
		queue := webhook.NewQueue(s.notifier)
		evType := port.EventUpdated
		if firstPublish {
			evType = port.EventCreated
		}
		queue.Enqueue(port.Event{Type: evType, Invoice: inv})
		queue.Flush(ctx)
	}

	if firstPublish && s.email != nil {
		sent := *inv
		go func() {
			if err := s.email.SendInvoicePublished(context.Background(), &sent); err != nil {
				log.Warn().Err(err).Str("invoice", sent.Title).
					Msg("publish email failed")
			}
		}()
	}

	s.invalidateDashboard(ctx)
}

func (s *invoiceService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateDashboard(ctx); err != nil {
		log.Warn().Err(err).Msg("dashboard cache invalidation failed")
	}
}

func (s *invoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *invoiceService) GetByRef(ctx context.Context, ref string) (*domain.Invoice, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return s.repo.GetByID(ctx, id)
	}
	return s.repo.GetByTitle(ctx, ref)
}

func (s *invoiceService) List(ctx context.Context, status domain.InvoiceStatus, offset, limit int) ([]domain.Invoice, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 10000 {
		limit = 10000
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, status, offset, limit)
}

func (s *invoiceService) CountsByStatus(ctx context.Context) (map[domain.InvoiceStatus]int, error) {
	return s.repo.CountsByStatus(ctx)
}

func (s *invoiceService) Recompute(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	derived := finance.Compute(finance.Inputs{
		BasicAmount: inv.BasicAmount,
		GSTPercent:  inv.GSTPercent,
		Deductions: finance.Deductions{
			Retention:         inv.RetentionAmount,
			GSTWithheld:       inv.GSTWithheld,
			TDS:               inv.TDSAmount,
			GSTTDS:            inv.GSTTDSAmount,
			BOCW:              inv.BOCWAmount,
			LowDepth:          inv.LowDepthDeductionAmount,
			LiquidatedDamages: inv.LiquidatedDamagesAmount,
			SLAPenalty:        inv.SLAPenaltyAmount,
			Penalty:           inv.PenaltyAmount,
			Other:             inv.OtherDeductionAmount,
		},
		AmountPaid: inv.AmountPaid,
	})
	inv.GSTAmount = derived.GSTAmount
	inv.TotalAmount = derived.TotalAmount
	inv.TotalDeductionAmount = derived.TotalDeductionAmount
	inv.NetPayableAmount = derived.NetPayableAmount
	inv.BalanceAmount = derived.BalanceAmount

	if err := s.repo.UpdateDerived(ctx, inv); err != nil {
		return nil, err
	}
	s.invalidateDashboard(ctx)
	return inv, nil
}

func (s *invoiceService) IngestFormPayload(ctx context.Context, body []byte, actorID uuid.UUID) (*domain.Invoice, error) {
	fields := normalize.DecodeFormPayload(body)
	title := strings.TrimSpace(fields["title"])
	if title == "" {
		return nil, domain.ErrTitleRequired
	}

	input := SaveInput{
		Fields:  fields,
		Publish: true,
		Surface: SurfaceIntegration,
		Partial: true,
		ActorID: actorID,
	}

	existing, err := s.repo.GetByTitle(ctx, title)
	switch {
	case err == nil:
		input.ID = &existing.ID
	case errors.Is(err, domain.ErrInvoiceNotFound):
		// New invoice; nothing to target.
	default:
		return nil, err
	}

	return s.Save(ctx, input)
}

// applyFields copies parsed form fields onto the invoice. In partial mode
// absent fields keep their stored values; otherwise absent means cleared,
// matching what submitting an emptied form field does.
func applyFields(inv *domain.Invoice, f normalize.Fields, partial bool) {
	setString(&inv.Title, f.Title, partial)
	setString(&inv.Remarks, f.Remarks, partial)
	setString(&inv.BillCategory, f.BillCategory, partial)
	setString(&inv.Project, f.Project, partial)
	setString(&inv.Location, f.Location, partial)

	if f.ProjectMode != nil {
		inv.ProjectMode = domain.ProjectMode(*f.ProjectMode)
	} else if !partial {
		inv.ProjectMode = ""
	}

	setDate(&inv.InvoiceDate, f.InvoiceDate, partial)
	setDate(&inv.SubmissionDate, f.SubmissionDate, partial)
	setDate(&inv.PaymentDate, f.PaymentDate, partial)

	setInt(&inv.MilestonePercent, f.Milestone, partial)
	setInt(&inv.GSTPercent, f.GSTPercent, partial)

	setFloat(&inv.BasicAmount, f.BasicAmount, partial)
	setFloat(&inv.ClientAmount, f.ClientAmount, partial)
	setFloat(&inv.RetentionAmount, f.Retention, partial)
	setFloat(&inv.GSTWithheld, f.GSTWithheld, partial)
	setFloat(&inv.TDSAmount, f.TDS, partial)
	setFloat(&inv.GSTTDSAmount, f.GSTTDS, partial)
	setFloat(&inv.BOCWAmount, f.BOCW, partial)
	setFloat(&inv.LowDepthDeductionAmount, f.LowDepth, partial)
	setFloat(&inv.LiquidatedDamagesAmount, f.LiquidatedDamages, partial)
	setFloat(&inv.SLAPenaltyAmount, f.SLAPenalty, partial)
	setFloat(&inv.PenaltyAmount, f.Penalty, partial)
	setFloat(&inv.OtherDeductionAmount, f.Other, partial)
	setFloat(&inv.AmountPaid, f.AmountPaid, partial)

	// Status is never cleared, only replaced; a record always has one.
	if f.Status != nil {
		inv.Status = *f.Status
	} else if inv.Status == "" {
		inv.Status = domain.StatusPending
	}

	setString(&inv.ToEmail, f.ToEmail, partial)

	if f.CCEmails != nil {
		inv.CCEmails = domain.EmailList(*f.CCEmails)
	} else if !partial {
		inv.CCEmails = nil
	}
}

func setString(dst *string, src *string, partial bool) {
	if src != nil {
		*dst = *src
	} else if !partial {
		*dst = ""
	}
}

func setInt(dst *int, src *int, partial bool) {
	if src != nil {
		*dst = *src
	} else if !partial {
		*dst = 0
	}
}

func setFloat(dst *float64, src *float64, partial bool) {
	if src != nil {
		*dst = *src
	} else if !partial {
		*dst = 0
	}
}

func setDate(dst **time.Time, src *time.Time, partial bool) {
	if src != nil {
		t := *src
		*dst = &t
	} else if !partial {
		*dst = nil
	}
}
