package convert

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"wmlconv/opc"
	"wmlconv/wml/wmltest"
)

func docxBytes(t *testing.T, d wmltest.Docx) []byte {
	t.Helper()
	data, err := d.Package(t).Bytes(false)
	if err != nil {
		t.Fatalf("unable to serialize fixture: %v", err)
	}
	return data
}

func zipBytes(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create file in zip: %v", err)
		}
		if _, err := f.Write(data); err != nil {
			t.Fatalf("Failed to write file in zip: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return p
}

func TestDetectFile(t *testing.T) {
	dir := t.TempDir()

	sheet := opc.New()
	sheet.SetPart("xl/workbook.xml", []byte(`<workbook/>`), opc.ContentTypeWorkbook)
	root := opc.NewRelationships("")
	root.AddNew(opc.RelTypeOfficeDocument, "xl/workbook.xml", false)
	if err := sheet.SetRelationships(root); err != nil {
		t.Fatal(err)
	}
	xlsx, err := sheet.Bytes(false)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		file     string
		data     []byte
		wantKind sourceKind
		wantEnc  srcEncoding
	}{
		{"docx", "doc.docx", docxBytes(t, wmltest.Docx{Body: wmltest.P("x")}), kindDocx, encUnknown},
		{"docx without extension", "document", docxBytes(t, wmltest.Docx{Body: wmltest.P("x")}), kindDocx, encUnknown},
		{"plain archive", "files.zip", zipBytes(t, map[string][]byte{"a.txt": []byte("a")}), kindArchive, encUnknown},
		{"spreadsheet", "book.xlsx", xlsx, kindUnknown, encUnknown},
		{"broken zip", "broken.zip", []byte("PK\x03\x04 definitely not a zip"), kindUnknown, encUnknown},
		{"html by extension", "page.htm", []byte("<p>text</p>"), kindHTML, encUnknown},
		{"html by content", "page.txt", []byte("<!DOCTYPE html><html><body>x</body></html>"), kindHTML, encUnknown},
		{"html with BOM", "page.html", append([]byte{0xEF, 0xBB, 0xBF}, "<html/>"...), kindHTML, encUTF8},
		{"text", "notes.txt", []byte("just text"), kindUnknown, encUnknown},
		{"empty", "empty.bin", nil, kindUnknown, encUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeFile(t, dir, tt.file, tt.data)
			kind, enc, err := detectFile(p)
			if err != nil {
				t.Fatalf("detectFile() error = %v", err)
			}
			if kind != tt.wantKind {
				t.Errorf("detectFile() kind = %v, want %v", kind, tt.wantKind)
			}
			if enc != tt.wantEnc {
				t.Errorf("detectFile() encoding = %v, want %v", enc, tt.wantEnc)
			}
		})
	}
}

func TestDetectFile_NonExistent(t *testing.T) {
	if _, _, err := detectFile("/nonexistent/file.docx"); err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
}

func TestDetectInArchive(t *testing.T) {
	data := zipBytes(t, map[string][]byte{
		"docs/a.docx":  docxBytes(t, wmltest.Docx{Body: wmltest.P("x")}),
		"docs/b.html":  append([]byte{0xFF, 0xFE}, "<\x00p\x00>\x00"...),
		"docs/c.txt":   []byte("text"),
		"docs/d.zip":   zipBytes(t, map[string][]byte{"x.html": []byte("<p/>")}),
		"docs/e.xhtml": []byte("<html/>"),
	})
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]struct {
		kind sourceKind
		enc  srcEncoding
	}{
		"docs/a.docx":  {kindDocx, encUnknown},
		"docs/b.html":  {kindHTML, encUTF16LittleEndian},
		"docs/c.txt":   {kindUnknown, encUnknown},
		"docs/d.zip":   {kindUnknown, encUnknown},
		"docs/e.xhtml": {kindHTML, encUnknown},
	}
	for _, f := range r.File {
		t.Run(f.Name, func(t *testing.T) {
			kind, enc, got, err := detectInArchive(f)
			if err != nil {
				t.Fatalf("detectInArchive() error = %v", err)
			}
			w := want[f.Name]
			if kind != w.kind || enc != w.enc {
				t.Errorf("detectInArchive() = %v/%v, want %v/%v", kind, enc, w.kind, w.enc)
			}
			if (kind == kindUnknown) != (got == nil) {
				t.Errorf("detectInArchive() data returned for %v source: %d bytes", kind, len(got))
			}
		})
	}
}

// TestDetectUTF tests UTF encoding detection
func TestDetectUTF(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want srcEncoding
	}{
		{
			name: "UTF-8 BOM",
			buf:  []byte{0xEF, 0xBB, 0xBF, 0x00},
			want: encUTF8,
		},
		{
			name: "UTF-16 Big Endian BOM",
			buf:  []byte{0xFE, 0xFF, 0x00, 0x00},
			want: encUTF16BigEndian,
		},
		{
			name: "UTF-16 Little Endian BOM",
			buf:  []byte{0xFF, 0xFE, 0x01, 0x00}, // Different from UTF-32LE
			want: encUTF16LittleEndian,
		},
		{
			name: "UTF-32 Big Endian BOM",
			buf:  []byte{0x00, 0x00, 0xFE, 0xFF},
			want: encUTF32BigEndian,
		},
		{
			name: "UTF-32 Little Endian BOM",
			buf:  []byte{0xFF, 0xFE, 0x00, 0x00},
			want: encUTF32LittleEndian,
		},
		{
			name: "No BOM",
			buf:  []byte{0x00, 0x01, 0x02, 0x03},
			want: encUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectUTF(tt.buf)
			if got != tt.want {
				t.Errorf("detectUTF() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestBOMDetectionFunctions tests individual BOM detection functions
func TestBOMDetectionFunctions(t *testing.T) {
	t.Run("isUTF8BOM3", func(t *testing.T) {
		if !isUTF8BOM3([]byte{0xEF, 0xBB, 0xBF}) {
			t.Error("Expected true for UTF-8 BOM")
		}
		if isUTF8BOM3([]byte{0x00, 0x00, 0x00}) {
			t.Error("Expected false for non-BOM")
		}
	})

	t.Run("isUTF16BigEndianBOM2", func(t *testing.T) {
		if !isUTF16BigEndianBOM2([]byte{0xFE, 0xFF}) {
			t.Error("Expected true for UTF-16 BE BOM")
		}
		if isUTF16BigEndianBOM2([]byte{0xFF, 0xFE}) {
			t.Error("Expected false for UTF-16 LE BOM")
		}
	})

	t.Run("isUTF16LittleEndianBOM2", func(t *testing.T) {
		if !isUTF16LittleEndianBOM2([]byte{0xFF, 0xFE}) {
			t.Error("Expected true for UTF-16 LE BOM")
		}
		if isUTF16LittleEndianBOM2([]byte{0xFE, 0xFF}) {
			t.Error("Expected false for UTF-16 BE BOM")
		}
	})

	t.Run("isUTF32BigEndianBOM4", func(t *testing.T) {
		if !isUTF32BigEndianBOM4([]byte{0x00, 0x00, 0xFE, 0xFF}) {
			t.Error("Expected true for UTF-32 BE BOM")
		}
		if isUTF32BigEndianBOM4([]byte{0xFF, 0xFE, 0x00, 0x00}) {
			t.Error("Expected false for UTF-32 LE BOM")
		}
	})

	t.Run("isUTF32LittleEndianBOM4", func(t *testing.T) {
		if !isUTF32LittleEndianBOM4([]byte{0xFF, 0xFE, 0x00, 0x00}) {
			t.Error("Expected true for UTF-32 LE BOM")
		}
		if isUTF32LittleEndianBOM4([]byte{0x00, 0x00, 0xFE, 0xFF}) {
			t.Error("Expected false for UTF-32 BE BOM")
		}
	})
}

// TestSelectReader tests reader selection for different encodings
func TestSelectReader(t *testing.T) {
	testData := []byte("test data")
	r := bytes.NewReader(testData)

	tests := []srcEncoding{
		encUnknown,
		encUTF8,
		encUTF16BigEndian,
		encUTF16LittleEndian,
		encUTF32BigEndian,
		encUTF32LittleEndian,
	}

	for i, enc := range tests {
		t.Run(string(rune('0'+i)), func(t *testing.T) {
			result := selectReader(r, enc)
			if result == nil {
				t.Error("selectReader() returned nil")
			}
		})
	}
}

// TestSelectReader_Panic tests that invalid encoding causes panic
func TestSelectReader_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for invalid encoding, but didn't panic")
		}
	}()

	r := bytes.NewReader([]byte("test"))
	// Use an invalid encoding value
	selectReader(r, srcEncoding(999))
}

// TestSrcEncoding tests srcEncoding constants
func TestSrcEncoding(t *testing.T) {
	// Verify encoding constants are distinct
	encodings := map[srcEncoding]string{
		encUnknown:           "unknown",
		encUTF8:              "utf8",
		encUTF16BigEndian:    "utf16be",
		encUTF16LittleEndian: "utf16le",
		encUTF32BigEndian:    "utf32be",
		encUTF32LittleEndian: "utf32le",
	}

	seen := make(map[srcEncoding]bool)
	for enc := range encodings {
		if seen[enc] {
			t.Errorf("Duplicate encoding value: %v", enc)
		}
		seen[enc] = true
	}

	if len(seen) != 6 {
		t.Errorf("Expected 6 unique encodings, got %d", len(seen))
	}
}

func TestSelectReader_Decodes(t *testing.T) {
	data := append([]byte{0xFE, 0xFF}, 0x00, '<', 0x00, 'p', 0x00, '>')
	out, err := decodeHTML(data, detectUTF(data), nil)
	if err != nil {
		t.Fatalf("decodeHTML() error = %v", err)
	}
	if string(out) != "<p>" {
		t.Errorf("decodeHTML() = %q", out)
	}
}

func TestLooksLikeHTML(t *testing.T) {
	tests := []struct {
		head string
		want bool
	}{
		{"<!doctype HTML>", true},
		{"  <HTML lang=en>", true},
		{"<body>", true},
		{"<?xml version='1.0'?><note/>", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := looksLikeHTML([]byte(tt.head)); got != tt.want {
			t.Errorf("looksLikeHTML(%q) = %v, want %v", tt.head, got, tt.want)
		}
	}
}
