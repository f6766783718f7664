package app

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned by operations that need a live database.
var ErrNotConnected = errors.New("no database connection")

// ErrConnection represents a database connection error.
type ErrConnection struct {
	Cause error
}

func (e *ErrConnection) Error() string {
	return fmt.Sprintf("connection error: %v", e.Cause)
}

func (e *ErrConnection) Unwrap() error {
	return e.Cause
}

// ErrDescribe represents a failure to prepare a statement on the server.
type ErrDescribe struct {
	Query string
	Cause error
}

func (e *ErrDescribe) Error() string {
	return fmt.Sprintf("describe error: %v", e.Cause)
}

func (e *ErrDescribe) Unwrap() error {
	return e.Cause
}

// ErrExport represents a failure to write an artifact file.
type ErrExport struct {
	Path  string
	Cause error
}

func (e *ErrExport) Error() string {
	return fmt.Sprintf("export %s: %v", e.Path, e.Cause)
}

func (e *ErrExport) Unwrap() error {
	return e.Cause
}

// ErrConfig represents a configuration error.
type ErrConfig struct {
	Cause error
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("config error: %v", e.Cause)
}

func (e *ErrConfig) Unwrap() error {
	return e.Cause
}
