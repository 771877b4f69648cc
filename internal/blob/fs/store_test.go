package fs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dotprep/internal/blob/core"
)

func TestStore_PutGetList(t *testing.T) {
	root := filepath.Join(t.TempDir(), "blobs")
	s, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	info, err := s.Put(ctx, "run1/out.coords", strings.NewReader("ref_start\n"), core.PutOptions{
		ContentType: "text/csv",
		Metadata:    map[string]string{"run_id": "abc"},
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if info.Size != 10 || info.ETag == "" {
		t.Fatalf("info: %+v", info)
	}
	if _, err := s.Put(ctx, "run1/out.coords", strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("want ErrExists, got %v", err)
	}
	got, rc, err := s.Get(ctx, "run1/out.coords")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != "ref_start\n" || got.ContentType != "text/csv" || got.Metadata["run_id"] != "abc" {
		t.Fatalf("got %q %+v", b, got)
	}
	if _, err := os.Stat(filepath.Join(root, "run1", "out.coords.meta")); err != nil {
		t.Fatalf("missing sidecar: %v", err)
	}
	if _, err := s.Put(ctx, "run2/a", strings.NewReader("1"), core.PutOptions{}); err != nil {
		t.Fatalf("Put run2: %v", err)
	}
	l, err := s.List(ctx, "run1/")
	if err != nil || len(l) != 1 || l[0].Key != "run1/out.coords" {
		t.Fatalf("List: %v %+v", err, l)
	}
	all, _ := s.List(ctx, "")
	if len(all) != 2 {
		t.Fatalf("List all: %+v", all)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s, _ := New(t.TempDir())
	if _, _, err := s.Get(context.Background(), "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSanitizeKey(t *testing.T) {
	for _, bad := range []string{"", "  ", "/abs", "../up", "a/../../b", "x.meta"} {
		if _, err := sanitizeKey(bad); err == nil {
			t.Errorf("sanitizeKey(%q) accepted", bad)
		}
	}
	if k, err := sanitizeKey("a//b/./c"); err != nil || k != "a/b/c" {
		t.Fatalf("sanitizeKey clean: %q %v", k, err)
	}
}

func TestNew_EmptyRoot(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatalf("expected error")
	}
}
