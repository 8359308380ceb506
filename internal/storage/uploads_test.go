package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newStore(t *testing.T) *UploadStore {
	t.Helper()
	s, err := NewUploadStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewUploadStore: %v", err)
	}
	return s
}

func TestSaveAndExists(t *testing.T) {
	s := newStore(t)
	url, err := s.Save(context.Background(), ".avif", bytes.NewReader([]byte("image-bytes")))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/") {
		t.Errorf("url = %s, want /uploads/ prefix", url)
	}
	if !strings.HasSuffix(url, ".avif") {
		t.Errorf("url = %s, want .avif suffix", url)
	}

	rel, ok := s.TrimPublicPrefix(url)
	if !ok {
		t.Fatalf("TrimPublicPrefix(%s) = not ours", url)
	}
	exists, err := s.Exists(rel)
	if err != nil || !exists {
		t.Errorf("Exists = %v, %v; want true", exists, err)
	}
}

func TestSave_UniqueNames(t *testing.T) {
	s := newStore(t)
	a, err := s.Save(context.Background(), ".webp", bytes.NewReader([]byte("a")))
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Save(context.Background(), ".webp", bytes.NewReader([]byte("b")))
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("two saves produced the same URL %s", a)
	}
}

func TestResolve_RejectsTraversal(t *testing.T) {
	s := newStore(t)
	for _, p := range []string{
		"../etc/passwd",
		"..",
		"a/../../etc/passwd",
		"a\\..\\b",
		"",
		"/..",
		"a/b\x00c",
	} {
		if _, err := s.Resolve(p); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Resolve(%q) err = %v, want ErrInvalidPath", p, err)
		}
	}
}

func TestResolve_AllowsNestedPaths(t *testing.T) {
	s := newStore(t)
	full, err := s.Resolve("2026-08/file.avif")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := filepath.Join(s.BasePath(), "2026-08", "file.avif")
	if full != want {
		t.Errorf("Resolve = %s, want %s", full, want)
	}
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	url, err := s.Save(context.Background(), ".avif", bytes.NewReader([]byte("x")))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(context.Background(), url); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	rel, _ := s.TrimPublicPrefix(url)
	exists, err := s.Exists(rel)
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("file still present after delete")
	}

	// Deleting again is a no-op, and foreign URLs are ignored.
	if err := s.Delete(context.Background(), url); err != nil {
		t.Errorf("second delete: %v", err)
	}
	if err := s.Delete(context.Background(), "https://cdn.example/img.avif"); err != nil {
		t.Errorf("foreign url delete: %v", err)
	}
}

func TestDelete_RejectsTraversal(t *testing.T) {
	s := newStore(t)
	victim := filepath.Join(filepath.Dir(s.BasePath()), "victim.txt")
	if err := os.WriteFile(victim, []byte("keep me"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(context.Background(), "/uploads/../victim.txt"); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("err = %v, want ErrInvalidPath", err)
	}
	if _, err := os.Stat(victim); err != nil {
		t.Error("file outside the store was deleted")
	}
}
