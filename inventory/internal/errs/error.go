package errs

import (
	"errors"
)

var (
	ErrNotFound     = errors.New("book not found")
	ErrInvalidID    = errors.New("invalid book ID")
	ErrValidation   = errors.New("validation failed")
	ErrNoPagination = errors.New("pagination indicator not found")
)
