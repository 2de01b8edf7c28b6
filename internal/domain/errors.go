package domain

import "errors"

// ErrInvalidPosition marks a host-API rejection of an inline comment position
// ("unprocessable" class). It triggers the general-comment fallback instead of
// the per-file error boundary.
var ErrInvalidPosition = errors.New("comment position not within the diff")
