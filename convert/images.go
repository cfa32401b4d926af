package convert

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"wmlconv/archive"
	"wmlconv/convert/tohtml"
	"wmlconv/convert/towml"
	"wmlconv/utils/images"
)

var errRemoteImage = errors.New("remote images are not fetched")

// imageWriter stores document images next to resulting HTML file in
// "<name>_files" directory.
type imageWriter struct {
	dir      string
	rel      string
	settings tohtml.ImageSettings
	log      *zap.Logger
	written  map[string]string // part -> src
	used     map[string]bool
}

func newImageWriter(outputName string, settings tohtml.ImageSettings, log *zap.Logger) *imageWriter {
	rel := strings.TrimSuffix(filepath.Base(outputName), filepath.Ext(outputName)) + "_files"
	return &imageWriter{
		dir:      filepath.Join(filepath.Dir(outputName), rel),
		rel:      rel,
		settings: settings,
		log:      log,
		written:  make(map[string]string),
		used:     make(map[string]bool),
	}
}

func (w *imageWriter) handle(info tohtml.ImageInfo) (tohtml.ImageResult, error) {
	if src, ok := w.written[info.Part]; ok {
		return tohtml.ImageResult{Src: src, Alt: info.Alt}, nil
	}

	data := info.Data
	base := path.Base(info.Part)
	ext := path.Ext(base)
	if w.settings.MaxWidth > 0 {
		scaled, inf, changed, err := images.Downscale(data, w.settings.MaxWidth, w.settings.JPEGQuality)
		if err != nil {
			w.log.Debug("Image left as is", zap.String("part", info.Part), zap.Error(err))
		} else if changed {
			data, ext = scaled, "."+inf.Ext
		}
	}
	name := w.unique(strings.TrimSuffix(base, path.Ext(base)), ext)

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return tohtml.ImageResult{}, fmt.Errorf("unable to create images directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(w.dir, name), data, 0644); err != nil {
		return tohtml.ImageResult{}, fmt.Errorf("unable to write image: %w", err)
	}
	src := w.rel + "/" + url.PathEscape(name)
	w.written[info.Part] = src
	return tohtml.ImageResult{Src: src, Alt: info.Alt}, nil
}

// unique keeps images of different parts apart when their base names match.
func (w *imageWriter) unique(stem, ext string) string {
	name := stem + ext
	for i := 2; w.used[name]; i++ {
		name = stem + "-" + strconv.Itoa(i) + ext
	}
	w.used[name] = true
	return name
}

// dropImage removes images from HTML output.
func dropImage(tohtml.ImageInfo) (tohtml.ImageResult, error) {
	return tohtml.ImageResult{}, nil
}

// localPath extracts path from image reference, only relative and file
// references are accepted.
func localPath(src string) (string, error) {
	u, err := url.Parse(src)
	if err != nil {
		return "", err
	}
	switch {
	case u.Scheme == "file":
		return filepath.FromSlash(u.Path), nil
	case len(u.Scheme) > 1:
		// single letter scheme is windows drive
		return "", errRemoteImage
	case len(u.Scheme) == 1:
		return src, nil
	}
	return u.Path, nil
}

// fileLoader resolves images relative to directory of HTML source.
func fileLoader(dir string) towml.ImageLoader {
	return func(src string) ([]byte, error) {
		p, err := localPath(src)
		if err != nil {
			return nil, err
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, filepath.FromSlash(p))
		}
		return os.ReadFile(p)
	}
}

// archiveLoader resolves images among entries of the archive HTML source
// came from.
func archiveLoader(r *zip.Reader, dir string) towml.ImageLoader {
	return func(src string) ([]byte, error) {
		p, err := localPath(src)
		if err != nil {
			return nil, err
		}
		name := path.Clean(path.Join(dir, filepath.ToSlash(p)))
		if !archive.SafePath(name) {
			return nil, fmt.Errorf("image %q points outside of archive", src)
		}
		for _, f := range r.File {
			if f.Name != name {
				continue
			}
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
		return nil, fs.ErrNotExist
	}
}
