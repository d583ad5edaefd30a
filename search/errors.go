package search

import "errors"

var (
	// ErrInvalidInput is returned when a query is empty or a page number or
	// size is out of range.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBusy is returned by a Session that is already running an operation.
	ErrBusy = errors.New("search already in progress")
)
