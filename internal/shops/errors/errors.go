package errors

import "errors"

var (
	ErrNotFound = errors.New("shop not found")

	ErrInvalidID = errors.New("invalid shop ID")
)
