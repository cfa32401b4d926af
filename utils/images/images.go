// Package images keeps image helpers shared by both conversion directions:
// format detection, intrinsic size, downscaling and SVG rasterization.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"mime"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const MimeSVG = "image/svg+xml"

var ErrUnknownFormat = errors.New("unknown image format")

// Info describes image data.
type Info struct {
	MimeType string
	Ext      string
	Width    int
	Height   int
}

// MimeToExt returns file extension (without dot) for image MIME type.
func MimeToExt(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return "jpeg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/bmp":
		return "bmp"
	case MimeSVG:
		return "svg"
	case "image/webp":
		return "webp"
	case "image/tiff":
		return "tiff"
	case "image/x-emf":
		return "emf"
	case "image/x-wmf":
		return "wmf"
	}
	exts, err := mime.ExtensionsByType(mimeType)
	if err == nil && len(exts) > 0 {
		return strings.TrimPrefix(exts[0], ".")
	}
	return "img"
}

// ExtToMime is the reverse of MimeToExt, empty string for unknown extensions.
func ExtToMime(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg", "jpe":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "svg":
		return MimeSVG
	case "webp":
		return "image/webp"
	case "tif", "tiff":
		return "image/tiff"
	case "emf":
		return "image/x-emf"
	case "wmf":
		return "image/x-wmf"
	}
	return ""
}

// IsSVG looks for svg root element near the beginning of the data.
func IsSVG(data []byte) bool {
	head := data[:min(len(data), 1024)]
	return bytes.Contains(head, []byte("<svg"))
}

// Sniff detects image format by content.
func Sniff(data []byte) (string, error) {
	if IsSVG(data) {
		return MimeSVG, nil
	}
	kind, err := filetype.Image(data)
	if err != nil || kind == filetype.Unknown {
		return "", ErrUnknownFormat
	}
	return kind.MIME.Value, nil
}

// Inspect detects image format and intrinsic size without decoding pixels.
// Formats which cannot be decoded (EMF, WMF) return zero size.
func Inspect(data []byte) (*Info, error) {
	mt, err := Sniff(data)
	if err != nil {
		return nil, err
	}
	info := &Info{MimeType: mt, Ext: MimeToExt(mt)}
	if mt == MimeSVG {
		info.Width, info.Height, err = SVGSize(data)
		return info, err
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		info.Width, info.Height = cfg.Width, cfg.Height
	}
	return info, nil
}

// Downscale shrinks raster image wider than maxWidth keeping aspect ratio and
// re-encodes it in its original family: JPEG stays JPEG, everything else
// becomes PNG. Returns original data untouched when nothing had to be done.
func Downscale(data []byte, maxWidth, quality int) ([]byte, *Info, bool, error) {
	info, err := Inspect(data)
	if err != nil {
		return nil, nil, false, err
	}
	if maxWidth <= 0 || info.MimeType == MimeSVG || info.Width <= maxWidth {
		return data, info, false, nil
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, false, fmt.Errorf("unable to decode %s image: %w", info.MimeType, err)
	}
	img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	if isGray(img) {
		img = imaging.Grayscale(img)
	}

	buf := new(bytes.Buffer)
	if format == "jpeg" {
		out, err := encodeJPEG(img, quality)
		if err != nil {
			return nil, nil, false, fmt.Errorf("unable to encode resized jpeg: %w", err)
		}
		buf.Write(out)
		info.MimeType = "image/jpeg"
	} else {
		if err := imaging.Encode(buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
			return nil, nil, false, fmt.Errorf("unable to encode resized png: %w", err)
		}
		info.MimeType = "image/png"
	}
	info.Ext = MimeToExt(info.MimeType)
	info.Width, info.Height = img.Bounds().Dx(), img.Bounds().Dy()
	return buf.Bytes(), info, true, nil
}
