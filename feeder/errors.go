package feeder

import (
	"errors"
	"fmt"
)

// Sentinel errors for upload runs
var (
	// ErrStoreConnection indicates failure to connect to the document store
	ErrStoreConnection = errors.New("failed to connect to the document store")

	// ErrAllDocumentsRejected indicates that every submitted document was
	// rejected by the store
	ErrAllDocumentsRejected = errors.New("all documents were rejected by the store")

	// ErrNoRecords indicates that the input file contained no records
	ErrNoRecords = errors.New("no records found in input")
)

// InputError represents an unusable input file: missing, unreadable, or not
// parseable as measurement records
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// NewInputError creates a new InputError
func NewInputError(path string, err error) *InputError {
	return &InputError{
		Path: path,
		Err:  err,
	}
}

// ConnectionError represents a fatal store failure: an unreachable endpoint,
// a TLS failure, or rejected credentials
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("store %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) Is(target error) bool {
	return target == ErrStoreConnection
}

// NewConnectionError creates a new ConnectionError
func NewConnectionError(url string, err error) *ConnectionError {
	return &ConnectionError{
		URL: url,
		Err: err,
	}
}

// IsInputError returns true if the error stems from the input file
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// IsConnectionError returns true if the error is a store connection failure
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	if errors.As(err, &ce) {
		return true
	}
	return errors.Is(err, ErrStoreConnection)
}

// IsAllRejected returns true if the error indicates that no document survived
// the upload
func IsAllRejected(err error) bool {
	return errors.Is(err, ErrAllDocumentsRejected)
}
