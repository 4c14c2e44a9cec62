package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserInactive        = errors.New("user is inactive")
	ErrTitleRequired       = errors.New("invoice title is required")
	ErrDateOrder           = errors.New("invoice date must be before submission date")
	ErrPaymentDateOrder    = errors.New("payment date must be on or after submission date")
	ErrAttachmentRequired  = errors.New("invoice file is required")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrDuplicateEmail      = errors.New("email already exists")
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrCacheMiss           = errors.New("cache miss")
)
