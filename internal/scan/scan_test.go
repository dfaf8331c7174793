package scan

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestFiles(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{
		"b.png", "a.dds", "sub/c.jpg", "sub/d.jpeg", "sub/deeper/e.tga",
		"notes.txt", "upper.PNG", "out/skip.png",
	} {
		touch(t, filepath.Join(root, name))
	}

	got, err := Files(root, Options{Exclude: filepath.Join(root, "out")})
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	want := []string{
		filepath.Join(root, "a.dds"),
		filepath.Join(root, "b.png"),
		filepath.Join(root, "sub", "c.jpg"),
		filepath.Join(root, "sub", "d.jpeg"),
		filepath.Join(root, "sub", "deeper", "e.tga"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v\nwant %v", got, want)
	}
}

func TestFilesSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.tga")
	touch(t, path)
	got, err := Files(path, Options{})
	if err != nil || len(got) != 1 || got[0] != path {
		t.Fatalf("got %v, %v", got, err)
	}
}

func TestFilesMissingRoot(t *testing.T) {
	if _, err := Files(filepath.Join(t.TempDir(), "nope"), Options{}); err == nil {
		t.Fatalf("expected error")
	}
}
