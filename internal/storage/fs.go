package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/vaultlink/internal/apperr"
	"github.com/starford/vaultlink/internal/models"
)

// DocumentExt is the extension that marks a vault file as a document.
const DocumentExt = ".md"

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to vault directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute vault directory.
func (f *FS) Root() string {
	return f.root
}

// Resolve joins rel onto the vault root and rejects absolute paths and any
// result that escapes it.
func (f *FS) Resolve(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: absolute path %s", apperr.ErrInvalidPath, rel)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("%w: %s escapes vault root", apperr.ErrInvalidPath, rel)
	}
	return abs, nil
}

// Exists reports whether rel resolves inside the vault and is present on disk.
func (f *FS) Exists(rel string) bool {
	abs, err := f.Resolve(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(abs)
	return err == nil
}

// Read returns the raw bytes of a vault file.
func (f *FS) Read(rel string) ([]byte, error) {
	abs, err := f.Resolve(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("storage: read %s: %w", rel, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read %s: %w", rel, err)
	}
	return data, nil
}

// Write replaces content via tmp file → fsync → rename.
func (f *FS) Write(rel string, content []byte) error {
	abs, err := f.Resolve(rel)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".vaultlink-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Scan walks the vault depth-first and reads every regular document.
// Symlinks are not followed. Unreadable directories and files are counted in
// Skipped and the walk continues.
func (f *FS) Scan() ScanResult {
	var res ScanResult
	_ = filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			res.Skipped++
			return nil
		}
		// Symlinks may point outside the root.
		if !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), DocumentExt) {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			res.Skipped++
			return nil
		}
		res.Documents = append(res.Documents, models.Document{
			Path:    f.rel(p),
			Content: string(data),
		})
		return nil
	})
	return res
}

// Entries walks dir and returns every file and directory whose name contains
// pattern (all of them when pattern is empty), directories first, then by path.
func (f *FS) Entries(dir, pattern string) ([]models.Entry, error) {
	base, err := f.Resolve(dir)
	if err != nil {
		return nil, err
	}
	out := []models.Entry{}
	_ = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || p == base {
			return nil
		}
		if pattern != "" && !strings.Contains(d.Name(), pattern) {
			return nil
		}
		typ := models.EntryFile
		if d.IsDir() {
			typ = models.EntryDirectory
		} else if !d.Type().IsRegular() {
			return nil
		}
		out = append(out, models.Entry{Path: f.rel(p), Type: typ})
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type == models.EntryDirectory
		}
		return out[i].Path < out[j].Path
	})
	return out, nil
}

func (f *FS) rel(abs string) string {
	rel, err := filepath.Rel(f.root, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}
