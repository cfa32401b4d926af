package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func makeZip(t *testing.T, names ...string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	for _, name := range names {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", name, err)
		}
		if _, err := fw.Write([]byte(name + " content")); err != nil {
			t.Fatalf("Failed to write content for %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func openZip(t *testing.T, data []byte) *zip.Reader {
	t.Helper()
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("unable to open zip: %v", err)
	}
	return r
}

func TestWalk(t *testing.T) {
	r := openZip(t, makeZip(t, "word/document.xml", "word/styles.xml", "word/media/image1.png", "_rels/.rels", "word/"))

	tests := []struct {
		pattern string
		want    int
	}{
		{"word/", 3},
		{"word/media/", 1},
		{"_rels/", 1},
		{"customXml/", 0},
		{"", 4},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			var visited []string
			err := Walk(r, tt.pattern, func(file *zip.File) error {
				visited = append(visited, file.Name)
				return nil
			})
			if err != nil {
				t.Fatalf("Walk() error = %v", err)
			}
			if len(visited) != tt.want {
				t.Errorf("visited %v, want %d entries", visited, tt.want)
			}
		})
	}
}

func TestWalk_EarlyTermination(t *testing.T) {
	r := openZip(t, makeZip(t, "a.xml", "b.xml", "c.xml"))
	stop := errors.New("stop")
	count := 0
	err := Walk(r, "", func(file *zip.File) error {
		count++
		if count == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Errorf("Walk() error = %v, want %v", err, stop)
	}
	if count != 2 {
		t.Errorf("visited %d entries, want 2", count)
	}
}

func TestWalk_UnsafeEntry(t *testing.T) {
	r := openZip(t, makeZip(t, "word/document.xml", "../evil.xml"))
	err := Walk(r, "", func(file *zip.File) error { return nil })
	if err == nil {
		t.Fatal("expected error for path traversal entry")
	}
}

func TestWalkFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.docx")
	if err := os.WriteFile(path, makeZip(t, "word/document.xml"), 0644); err != nil {
		t.Fatal(err)
	}
	var names []string
	if err := WalkFile(path, "word/", func(file *zip.File) error {
		names = append(names, file.Name)
		return nil
	}); err != nil {
		t.Fatalf("WalkFile() error = %v", err)
	}
	if len(names) != 1 || names[0] != "word/document.xml" {
		t.Errorf("unexpected entries %v", names)
	}
	if err := WalkFile(filepath.Join(t.TempDir(), "absent.zip"), "", func(*zip.File) error { return nil }); err == nil {
		t.Error("expected error for nonexistent archive")
	}
}

func TestSafePath(t *testing.T) {
	tests := map[string]bool{
		"word/document.xml":      true,
		"[Content_Types].xml":    true,
		"/etc/passwd":            false,
		`\windows\system.ini`:    false,
		"word/../../escape.xml":  false,
		`word\..\..\escape.xml`:  false,
		"word/..hidden/file.xml": true,
	}
	for name, want := range tests {
		if got := SafePath(name); got != want {
			t.Errorf("SafePath(%q) = %v, want %v", name, got, want)
		}
	}
}
