package errors

import "github.com/pkg/errors"

var (
	// config errors
	ErrMissingConfig = errors.New("missing required config")
	ErrInvalidConfig = errors.New("invalid config")

	// tracking errors
	ErrInvalidMessageID = errors.New("invalid message id")
	ErrInvalidTarget    = errors.New("invalid redirect target")
	ErrForbidden        = errors.New("tracker secret mismatch")

	// dataset errors
	ErrMissingColumn  = errors.New("required column missing")
	ErrWorkbookLocked = errors.New("workbook is locked by another process")
)
