// Package storage persists document bytes on the local filesystem. Files are
// grouped under one directory per owner key (the procedure UUID) and named
// with fresh UUIDs so every store call yields a unique location handle.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store writes and reads opaque document blobs.
type Store struct {
	root string
}

// New creates a blob store rooted at the given directory.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the storage root directory.
func (s *Store) Root() string {
	return s.root
}

// StoreBytes persists a byte slice and returns its location handle. The
// suggested name contributes only its extension.
func (s *Store) StoreBytes(ownerKey string, content []byte, suggestedName string) (string, error) {
	dest, err := s.destination(ownerKey, suggestedName)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(dest, content, 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return s.handle(dest)
}

// StoreStream persists an upload stream and returns its location handle.
func (s *Store) StoreStream(ownerKey string, r io.Reader, suggestedName string) (string, error) {
	dest, err := s.destination(ownerKey, suggestedName)
	if err != nil {
		return "", err
	}
	file, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create document file: %w", err)
	}
	if _, err := io.Copy(file, r); err != nil {
		_ = file.Close()
		_ = os.Remove(dest)
		return "", fmt.Errorf("write document stream: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("close document file: %w", err)
	}
	return s.handle(dest)
}

// Open returns a reader for a previously stored location handle.
func (s *Store) Open(location string) (io.ReadCloser, error) {
	path := location
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, location)
	}
	cleaned := filepath.Clean(path)
	if !strings.HasPrefix(cleaned, s.root+string(filepath.Separator)) {
		return nil, fmt.Errorf("location %q outside storage root", location)
	}
	file, err := os.Open(cleaned)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	return file, nil
}

func (s *Store) destination(ownerKey, suggestedName string) (string, error) {
	owner := strings.TrimSpace(ownerKey)
	if owner == "" {
		return "", fmt.Errorf("owner key required")
	}
	dir := filepath.Join(s.root, owner)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create owner directory: %w", err)
	}
	name := uuid.NewString()
	if ext := filepath.Ext(suggestedName); ext != "" {
		name += ext
	}
	return filepath.Join(dir, name), nil
}

// handle returns the root-relative location recorded in the ledger, keeping
// stored rows portable across storage root moves.
func (s *Store) handle(dest string) (string, error) {
	rel, err := filepath.Rel(s.root, dest)
	if err != nil {
		return "", fmt.Errorf("relativize location: %w", err)
	}
	return rel, nil
}
