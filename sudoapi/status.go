package sudoapi

import (
	"github.com/vibeworks/inkwell"
)

var (
	ErrNoUpdates       = inkwell.ErrNoUpdates
	ErrMissingRequired = inkwell.ErrMissingRequired

	ErrEmptyTitle    = inkwell.ErrEmptyTitle
	ErrEmptySlug     = inkwell.ErrEmptySlug
	ErrEmptyContent  = inkwell.ErrEmptyContent
	ErrInvalidStatus = inkwell.ErrInvalidStatus
	ErrInvalidType   = inkwell.ErrInvalidType

	ErrNotFound      = inkwell.ErrNotFound
	ErrDuplicateSlug = inkwell.ErrDuplicateSlug
)
