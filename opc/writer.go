package opc

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	fixzip "github.com/hidez8891/zip"
)

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// WriteTo serializes package as zip archive. Content types go first, the
// rest of the parts follow in name order.
func (p *Package) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)

	ct, err := SerializeXML(p.ctypes.Document())
	if err != nil {
		return cw.n, fmt.Errorf("unable to serialize content types: %w", err)
	}
	if err := writeEntry(zw, ContentTypesName, ct); err != nil {
		return cw.n, err
	}
	for _, name := range p.Parts() {
		data, ok := p.Part(name)
		if !ok {
			return cw.n, fmt.Errorf("unable to read part %q", name)
		}
		if err := writeEntry(zw, name, data); err != nil {
			return cw.n, err
		}
	}
	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("unable to finalize package: %w", err)
	}
	return cw.n, nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	method := zip.Deflate
	if ext := strings.ToLower(name); strings.HasSuffix(ext, ".png") || strings.HasSuffix(ext, ".jpeg") || strings.HasSuffix(ext, ".jpg") {
		// already compressed
		method = zip.Store
	}
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: method})
	if err != nil {
		return fmt.Errorf("unable to create package entry %q: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("unable to write package entry %q: %w", name, err)
	}
	return nil
}

// Bytes returns serialized package, optionally rewritten without data
// descriptors for consumers which cannot handle them.
func (p *Package) Bytes(fixZip bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	if _, err := p.WriteTo(buf); err != nil {
		return nil, err
	}
	if !fixZip {
		return buf.Bytes(), nil
	}
	out := new(bytes.Buffer)
	if err := RewriteWithoutDataDescriptors(bytes.NewReader(buf.Bytes()), int64(buf.Len()), out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// WriteFile saves package to disk.
func (p *Package) WriteFile(fname string, fixZip bool) error {
	data, err := p.Bytes(fixZip)
	if err != nil {
		return err
	}
	if err := os.WriteFile(fname, data, 0644); err != nil {
		return fmt.Errorf("unable to write package %q: %w", fname, err)
	}
	return nil
}

// RewriteWithoutDataDescriptors copies zip archive entry by entry clearing
// data descriptor flag, entries are not recompressed.
func RewriteWithoutDataDescriptors(src io.ReaderAt, size int64, dst io.Writer) error {
	r, err := fixzip.NewReader(src, size)
	if err != nil {
		return fmt.Errorf("unable to read archive: %w", err)
	}
	w := fixzip.NewWriter(dst)
	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to copy archive entry %q: %w", file.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("unable to finalize archive: %w", err)
	}
	return nil
}
