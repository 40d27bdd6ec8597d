package domain

import "errors"

// Domain errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidFormat     = errors.New("invalid format")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInternalError     = errors.New("internal error")
	ErrStoreEmpty        = errors.New("store has no saved ledger")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrBackupNotFound    = errors.New("backup not found")
	ErrBackupUnavailable = errors.New("backup service unavailable")
	ErrInvalidSnapshot   = errors.New("invalid snapshot")
	ErrAnalysisFailed    = errors.New("analysis failed")
)
