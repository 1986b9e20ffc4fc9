// Package filesystem provides the storage backend of the sandbox server.
// Files live at <root>/<org>/<context>/<name>; writes are atomic using temp
// files and carry SHA256-based etags.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a file or context does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidName is returned for names that cannot be stored
	ErrInvalidName = errors.New("invalid name")
)

// FileEntry describes a stored file. Date is the modification time in
// Unix seconds.
type FileEntry struct {
	Name string `json:"name"`
	Date int64  `json:"date"`
	Size int64  `json:"size"`
	ETag string `json:"etag"`
}

// ContextEntry names a context of an organization.
type ContextEntry struct {
	Org  string `json:"org"`
	Name string `json:"name"`
}

// SaveResult reports a completed write.
type SaveResult struct {
	BytesWritten int64
	Etag         string
	Date         time.Time
}

// Store provides file system storage operations.
type Store struct {
	root *os.Root
}

// NewFileStorage creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewFileStorage(root *os.Root) *Store {
	return &Store{root: root}
}

// IsValidName reports whether s can be used as an org, context or file
// name: non-empty, no separators, no leading dot, no control characters.
func IsValidName(s string) bool {
	if s == "" || strings.HasPrefix(s, ".") {
		return false
	}
	if strings.ContainsAny(s, `/\`) {
		return false
	}
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

func filePath(org, contextName, name string) (string, error) {
	for _, s := range []string{org, contextName, name} {
		if !IsValidName(s) {
			return "", fmt.Errorf("%w: %q", ErrInvalidName, s)
		}
	}
	return path.Join(org, contextName, name), nil
}

// Get opens a file for reading. Returns ErrNotFound if the file does not exist.
func (s *Store) Get(ctx context.Context, org, contextName, name string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := filePath(org, contextName, name)
	if err != nil {
		return nil, err
	}

	f, err := s.root.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return f, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Write atomically stores content as org/context/name, replacing any
// existing file. The context directory is created as needed.
func (s *Store) Write(ctx context.Context, org, contextName, name string, content io.Reader) (SaveResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return SaveResult{}, ctxErr
	}

	dest, err := filePath(org, contextName, name)
	if err != nil {
		return SaveResult{}, err
	}

	tmpFile := tmpFileName()
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return SaveResult{}, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	h := sha256.New()
	w := io.MultiWriter(h, t)

	fileSizeBytes, err := io.Copy(w, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return SaveResult{}, fmt.Errorf("could not copy file contents: %w", err)
	}

	if err := t.Sync(); err != nil {
		return SaveResult{}, fmt.Errorf("could not sync written file: %w", err)
	}

	if err := s.root.MkdirAll(path.Dir(dest), 0o755); err != nil {
		return SaveResult{}, fmt.Errorf("could not create context directory: %w", err)
	}

	if renameErr := s.root.Rename(tmpFile, dest); renameErr != nil {
		return SaveResult{}, fmt.Errorf("failed to rename file: %w", renameErr)
	}
	success = true

	info, err := s.root.Stat(dest)
	if err != nil {
		return SaveResult{}, fmt.Errorf("stat written file: %w", err)
	}

	return SaveResult{
		BytesWritten: fileSizeBytes,
		Etag:         hex.EncodeToString(h.Sum(nil)),
		Date:         info.ModTime(),
	}, nil
}

// Delete removes a file. Returns ErrNotFound if the file does not exist.
func (s *Store) Delete(ctx context.Context, org, contextName, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := filePath(org, contextName, name)
	if err != nil {
		return err
	}

	if err := s.root.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("could not delete file: %w", err)
	}
	return nil
}

// List returns the files of a context sorted by name. A context that was
// never written to yields ErrNotFound.
func (s *Store) List(ctx context.Context, org, contextName string) ([]FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !IsValidName(org) || !IsValidName(contextName) {
		return nil, fmt.Errorf("%w: %q/%q", ErrInvalidName, org, contextName)
	}

	dir := path.Join(org, contextName)
	dirEntries, err := fs.ReadDir(s.root.FS(), dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	entries := make([]FileEntry, 0, len(dirEntries))
	for _, entry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !IsValidName(entry.Name()) {
			continue
		}

		fe, err := s.describe(path.Join(dir, entry.Name()), entry)
		if err != nil {
			return nil, err
		}
		entries = append(entries, fe)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (s *Store) describe(p string, entry fs.DirEntry) (FileEntry, error) {
	info, err := entry.Info()
	if err != nil {
		return FileEntry{}, fmt.Errorf("list files: %w", err)
	}

	f, err := s.root.Open(p)
	if err != nil {
		return FileEntry{}, fmt.Errorf("list files: %w", err)
	}

	h := sha256.New()
	_, copyErr := io.Copy(h, f)

	if closeErr := f.Close(); closeErr != nil {
		slog.Warn("failed to close file", "path", p, "err", closeErr)
	}
	if copyErr != nil {
		return FileEntry{}, fmt.Errorf("list files: %w", copyErr)
	}

	return FileEntry{
		Name: entry.Name(),
		Date: info.ModTime().Unix(),
		Size: info.Size(),
		ETag: hex.EncodeToString(h.Sum(nil)),
	}, nil
}

// Contexts returns every org/context pair holding at least one directory
// level, sorted by org then name.
func (s *Store) Contexts(ctx context.Context) ([]ContextEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	orgs, err := fs.ReadDir(s.root.FS(), ".")
	if err != nil {
		return nil, fmt.Errorf("failed to list contexts: %w", err)
	}

	contexts := []ContextEntry{}
	for _, org := range orgs {
		if !org.IsDir() || !IsValidName(org.Name()) {
			continue
		}
		children, err := fs.ReadDir(s.root.FS(), org.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to list contexts: %w", err)
		}
		for _, c := range children {
			if c.IsDir() && IsValidName(c.Name()) {
				contexts = append(contexts, ContextEntry{Org: org.Name(), Name: c.Name()})
			}
		}
	}

	sort.Slice(contexts, func(i, j int) bool {
		if contexts[i].Org != contexts[j].Org {
			return contexts[i].Org < contexts[j].Org
		}
		return contexts[i].Name < contexts[j].Name
	})
	return contexts, nil
}

// CreateContext makes an empty context so it can be listed before any upload.
func (s *Store) CreateContext(ctx context.Context, org, contextName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !IsValidName(org) || !IsValidName(contextName) {
		return fmt.Errorf("%w: %q/%q", ErrInvalidName, org, contextName)
	}
	if err := s.root.MkdirAll(path.Join(org, contextName), 0o755); err != nil {
		return fmt.Errorf("create context: %w", err)
	}
	return nil
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}
