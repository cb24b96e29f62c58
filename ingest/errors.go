package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is wrapped by every *ConfigError.
	ErrInvalidConfig = errors.New("invalid ingest configuration")
	// ErrUnsupportedKind is returned for material kinds outside slides, notes
	// and exam.
	ErrUnsupportedKind = errors.New("unsupported material kind")
	// ErrDocument is wrapped by every *DocumentError.
	ErrDocument = errors.New("document error")
	// ErrNoExtractableText is returned for exams without any text.
	ErrNoExtractableText = errors.New("no extractable text")
)

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
	// Err is an optional cause, e.g. chunking.ErrInvalidWindow.
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidConfig}
	}
	return []error{ErrInvalidConfig, e.Err}
}

// DocumentError is a fatal, whole-document failure.
type DocumentError struct {
	Op  string
	Err error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s document: %v", e.Op, e.Err)
}

func (e *DocumentError) Unwrap() []error {
	return []error{ErrDocument, e.Err}
}
