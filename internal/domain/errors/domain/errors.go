// Package domain provides domain-specific error definitions.
package domain

import "errors"

// Batch precondition errors. Each aborts a batch before any process is spawned.
var (
	ErrEmptySelection    = errors.New("no files selected")
	ErrMissingCredential = errors.New("credential is missing or empty")
	ErrOutputDirectory   = errors.New("output directory cannot be created")
)

// Test generation errors.
var (
	ErrUnsupportedLanguage = errors.New("unsupported file type")
	ErrNoCodeBlocks        = errors.New("no functions or methods found")
	ErrSourceSyntax        = errors.New("source file has syntax errors")
)
