// Package storage defines the vault file-system abstraction.
package storage

import "github.com/starford/vaultlink/internal/models"

// Provider is the vault handle every component receives explicitly.
// All paths are relative to the vault root.
type Provider interface {
	// Root returns the absolute vault directory.
	Root() string
	// Resolve maps a vault-relative path to an absolute one, rejecting
	// anything that escapes the root with apperr.ErrInvalidPath.
	Resolve(path string) (string, error)
	// Exists reports whether path resolves inside the vault and exists.
	Exists(path string) bool
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write replaces the file at path, creating parent directories.
	Write(path string, content []byte) error
	// Scan reads every Markdown document under the root.
	Scan() ScanResult
	// Entries lists files and directories under dir whose name contains pattern.
	Entries(dir, pattern string) ([]models.Entry, error)
}

// ScanResult is the document set produced by one vault scan. Skipped counts
// files and directories that could not be read; they are left out of
// Documents and never abort the scan.
type ScanResult struct {
	Documents []models.Document
	Skipped   int
}
