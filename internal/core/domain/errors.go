package domain

import "errors"

var (
	ErrDraftNotFound    = errors.New("draft not found")
	ErrNotSaved         = errors.New("draft was not saved")
	ErrIncompleteDraft  = errors.New("complete tasker and seller details first")
	ErrTargetNotReached = errors.New("target product count not reached")
	ErrTargetReached    = errors.New("target product count already reached")
	ErrInvalidQuantity  = errors.New("invalid product quantity")
	ErrProductIndex     = errors.New("product index out of range")
	ErrBusy             = errors.New("operation in progress")
	ErrNetwork          = errors.New("network error")
	ErrRejected         = errors.New("registration rejected")
	ErrTooLarge         = errors.New("registration exceeds message size limit")
)
