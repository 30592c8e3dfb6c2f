package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveWritesSanitizedFilename(t *testing.T) {
	dir := t.TempDir()
	s := NewFSStore(dir, nil)

	path, err := s.Save(context.Background(), "../étrange syllabus (v2).pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if filepath.Dir(path) != dir {
		t.Errorf("path %q escaped the upload dir", path)
	}
	base := filepath.Base(path)
	if strings.ContainsAny(base, " /()é") {
		t.Errorf("unsafe characters survived: %q", base)
	}
	if !strings.HasSuffix(base, ".pdf") {
		t.Errorf("extension lost: %q", base)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "%PDF-1.4" {
		t.Errorf("content = %q", data)
	}
}

func TestSaveCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	s := NewFSStore(dir, nil)

	if _, err := s.Save(context.Background(), "a.pdf", []byte("x")); err != nil {
		t.Fatalf("save: %v", err)
	}
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	s := NewFSStore(dir, nil)

	path, err := s.Save(context.Background(), "a.pdf", []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(context.Background(), path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file still present")
	}
}

func TestRemoveMissingFileIsNoError(t *testing.T) {
	s := NewFSStore(t.TempDir(), nil)
	if err := s.Remove(context.Background(), filepath.Join(t.TempDir(), "gone.pdf")); err != nil {
		t.Errorf("remove missing: %v", err)
	}
	if err := s.Remove(context.Background(), ""); err != nil {
		t.Errorf("remove empty path: %v", err)
	}
}
