package receipts

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jobtrack/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "receipts"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestSaveAndOpen(t *testing.T) {
	s := newTestStore(t)

	ref, err := s.Save(17, "home-depot-receipt.PDF", strings.NewReader("fake pdf bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if ref != "17.pdf" {
		t.Fatalf("ref = %q, want 17.pdf", ref)
	}

	rc, err := s.Open(ref)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "fake pdf bytes" {
		t.Fatalf("content = %q", data)
	}
}

func TestSaveOverwritesOnReupload(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Save(3, "first.jpg", strings.NewReader("v1")); err != nil {
		t.Fatalf("first save: %v", err)
	}
	ref, err := s.Save(3, "second.jpg", strings.NewReader("v2"))
	if err != nil {
		t.Fatalf("second save: %v", err)
	}

	rc, err := s.Open(ref)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "v2" {
		t.Fatalf("re-upload did not overwrite, got %q", data)
	}

	entries, err := os.ReadDir(filepath.Dir(filepath.Join(s.dir, ref)))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one stored file, found %d", len(entries))
	}
}

func TestStoredNameNeutralizesTraversal(t *testing.T) {
	cases := []struct {
		id   int64
		name string
		want string
	}{
		{1, "../../etc/passwd", ""}, // no usable extension
		{2, "receipt.pdf", ".pdf"},
		{3, "weird.p@f", ""},
		{4, "noext", ""},
		{5, "photo.JPEG", ".jpeg"},
	}
	for _, tc := range cases {
		got := storedName(tc.id, tc.name)
		if !strings.HasPrefix(got, "") || strings.ContainsAny(got, "/\\") {
			t.Fatalf("storedName(%q) = %q contains a path separator", tc.name, got)
		}
		if !strings.HasSuffix(got, tc.want) {
			t.Fatalf("storedName(%q) = %q, want suffix %q", tc.name, got, tc.want)
		}
	}
}

func TestOpenRejectsTraversalRef(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Open("../outside.txt"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for traversal ref, got %v", err)
	}
}

func TestOpenMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Open("404.pdf"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ref, err := s.Save(9, "r.png", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Remove(ref); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove(ref); err != nil {
		t.Fatalf("second remove should be a no-op: %v", err)
	}
}

func TestSaveRejectsOversizedUpload(t *testing.T) {
	s := newTestStore(t)
	big := io.LimitReader(neverEnding('x'), MaxReceiptSize+2)
	if _, err := s.Save(1, "big.pdf", big); !errors.Is(err, core.ErrReceiptIO) {
		t.Fatalf("expected ErrReceiptIO for oversized upload, got %v", err)
	}
}

type neverEnding byte

func (b neverEnding) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(b)
	}
	return len(p), nil
}
