package convert

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"

	"wmlconv/common"
	"wmlconv/opc"
)

type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

// sourceKind is what we found at the source path.
type sourceKind int

const (
	kindUnknown sourceKind = iota
	kindDocx
	kindHTML
	kindArchive
)

func (k sourceKind) String() string {
	switch k {
	case kindDocx:
		return "docx"
	case kindHTML:
		return "html"
	case kindArchive:
		return "archive"
	default:
		return "unknown"
	}
}

// sniffing window, enough for BOM and HTML preamble
const headSize = 8192

// entries larger than that are not loaded from archives
const maxEntrySize = 512 << 20

var htmlExts = []string{".html", ".htm", ".xhtml"}

func isUTF8BOM3(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE
}

func isUTF32BigEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

// detectUTF looks at BOM, UTF-32 is checked first since its little endian
// mark starts with UTF-16 one.
func detectUTF(buf []byte) srcEncoding {
	switch {
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	}
	return encUnknown
}

// selectReader returns reader producing UTF-8 for the detected encoding.
// Unknown encoding is left for HTML charset detection.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	switch enc {
	case encUnknown:
		return r
	case encUTF8:
		return unicode.UTF8BOM.NewDecoder().Reader(r)
	case encUTF16BigEndian:
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Reader(r)
	case encUTF16LittleEndian:
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Reader(r)
	case encUTF32BigEndian:
		return utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM).NewDecoder().Reader(r)
	case encUTF32LittleEndian:
		return utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM).NewDecoder().Reader(r)
	default:
		// this should never happen
		panic(fmt.Sprintf("unsupported source encoding %d", enc))
	}
}

func hasHTMLExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range htmlExts {
		if ext == e {
			return true
		}
	}
	return false
}

// looksLikeHTML checks document preamble, wide encodings are narrowed by
// dropping zero bytes.
func looksLikeHTML(head []byte) bool {
	s := strings.ToLower(string(bytes.ReplaceAll(head, []byte{0}, nil)))
	for _, marker := range []string{"<!doctype html", "<html", "<body"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// detect classifies source by its first bytes, zip based sources are opened
// to tell documents from plain archives.
func detect(name string, head []byte, open func() (*opc.Package, error)) (sourceKind, srcEncoding, error) {
	if filetype.Is(head, "zip") {
		pkg, err := open()
		if err != nil {
			// broken zip is not ours to report
			if common.ErrorCode(err) == common.CodeZipInvalid {
				return kindUnknown, encUnknown, nil
			}
			return kindUnknown, encUnknown, err
		}
		switch pkg.Detect() {
		case opc.KindDocx:
			return kindDocx, encUnknown, nil
		case opc.KindUnknown:
			return kindArchive, encUnknown, nil
		}
		// spreadsheets, presentations and other packages
		return kindUnknown, encUnknown, nil
	}
	enc := detectUTF(head)
	if hasHTMLExt(name) || looksLikeHTML(head) {
		return kindHTML, enc, nil
	}
	return kindUnknown, enc, nil
}

// detectFile classifies file on disk.
func detectFile(path string) (sourceKind, srcEncoding, error) {
	f, err := os.Open(path)
	if err != nil {
		return kindUnknown, encUnknown, err
	}
	defer f.Close()

	head := make([]byte, headSize)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return kindUnknown, encUnknown, err
	}
	return detect(path, head[:n], func() (*opc.Package, error) { return opc.OpenFile(path) })
}

// detectInArchive loads and classifies archive entry. Data is returned only
// for recognized documents.
func detectInArchive(f *zip.File) (sourceKind, srcEncoding, []byte, error) {
	if f.UncompressedSize64 > maxEntrySize {
		return kindUnknown, encUnknown, nil, nil
	}
	r, err := f.Open()
	if err != nil {
		return kindUnknown, encUnknown, nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return kindUnknown, encUnknown, nil, err
	}
	kind, enc, err := detect(f.Name, data[:min(len(data), headSize)], func() (*opc.Package, error) { return opc.Open(data) })
	if err != nil || kind == kindUnknown || kind == kindArchive {
		// nested archives are not processed
		return kindUnknown, enc, nil, err
	}
	return kind, enc, data, nil
}
