// Package receipts stores uploaded receipt files on local disk.
//
// Files are written to a temporary location and renamed into place, so a
// partially written receipt is never visible under its final name. Final
// names are keyed by expense id, which makes re-uploads overwrite the
// previous file instead of accumulating copies.
package receipts

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"

	"jobtrack/internal/core"
	applog "jobtrack/internal/log"
)

// MaxReceiptSize bounds a single uploaded receipt.
const MaxReceiptSize = 16 << 20 // 16 MiB

// Store is a directory-backed receipt file store.
type Store struct {
	dir string
}

// NewStore creates the receipt directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create receipt directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save stores the receipt bytes for an expense and returns the reference to
// persist on the expense row. Only the extension of the original filename
// survives into the stored name, which neutralizes path traversal in
// user-supplied names. A transient write failure is retried once.
func (s *Store) Save(expenseID int64, originalName string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxReceiptSize+1))
	if err != nil {
		return "", fmt.Errorf("read receipt upload: %w", errors.Join(core.ErrReceiptIO, err))
	}
	if len(data) > MaxReceiptSize {
		return "", fmt.Errorf("receipt exceeds %d bytes: %w", MaxReceiptSize, core.ErrReceiptIO)
	}

	ref := storedName(expenseID, originalName)
	path := filepath.Join(s.dir, ref)

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		slog.Warn("Receipt write failed, retrying once",
			applog.FieldComponent, applog.ComponentReceipts, "ref", ref, "error", err)
		if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
			return "", fmt.Errorf("write receipt %s: %w", ref, errors.Join(core.ErrReceiptIO, err))
		}
	}
	return ref, nil
}

// Open returns the stored receipt for reading.
func (s *Store) Open(ref string) (io.ReadCloser, error) {
	path, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("receipt %s: %w", ref, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open receipt %s: %w", ref, errors.Join(core.ErrReceiptIO, err))
	}
	return f, nil
}

// Remove deletes a stored receipt. Removing a reference that no longer
// exists is not an error; the goal state is the same.
func (s *Store) Remove(ref string) error {
	path, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove receipt %s: %w", ref, errors.Join(core.ErrReceiptIO, err))
	}
	return nil
}

// resolve rejects references that would escape the store directory.
func (s *Store) resolve(ref string) (string, error) {
	if ref == "" || ref != filepath.Base(ref) {
		return "", fmt.Errorf("receipt reference %q: %w", ref, core.ErrNotFound)
	}
	return filepath.Join(s.dir, ref), nil
}

// storedName builds the deterministic on-disk name for an expense receipt.
func storedName(expenseID int64, originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	// Keep only a plain alphanumeric extension; anything odd is dropped.
	for _, r := range strings.TrimPrefix(ext, ".") {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			ext = ""
			break
		}
	}
	return strconv.FormatInt(expenseID, 10) + ext
}
