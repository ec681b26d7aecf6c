// Package services holds the application logic behind the HTTP handlers:
// the dispatch orchestrator, status reporting, and ledger administration.
//
// Errors returned here are translated to status codes by the handler layer.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrResponseNotFound indicates that no ledger entry exists for the
	// requested response id.
	ErrResponseNotFound = errors.New("response not found")

	// ErrInvalidResponseID is returned when a response id is not a
	// fingerprint-shaped string.
	ErrInvalidResponseID = errors.New("invalid response id")
)

// StorageError reports a failed ledger operation. Op names the operation
// ("exists", "insert", "get", "list", "stats", "purge").
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("ledger %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
