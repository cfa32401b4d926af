package images

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
)

// Density stored in re-encoded JPEG data. Drawing extents and CSS pixels
// both assume 96 pixels per inch.
const densityDPI = 96

// isGray reports whether all pixels have equal color channels, which lets
// downscaled images be stored with a single channel.
func isGray(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.R != c.G || c.G != c.B {
				return false
			}
		}
	}
	return true
}

// encodeJPEG produces baseline JPEG with JFIF header carrying pixel density.
func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	out, _, err := withJFIF(buf.Bytes(), densityDPI)
	return out, err
}

// withJFIF inserts JFIF APP0 segment with density in dots per inch right
// after SOI marker. Data which already starts with APP0 is returned as is.
func withJFIF(data []byte, dpi uint16) ([]byte, bool, error) {
	if len(data) < 4 {
		return nil, false, errors.New("jpeg too small")
	}
	if data[0] != 0xFF || data[1] != 0xD8 {
		return nil, false, errors.New("not a jpeg")
	}
	if data[2] == 0xFF && data[3] == 0xE0 {
		return data, false, nil
	}

	out := make([]byte, 0, len(data)+18)
	out = append(out, data[:2]...)
	out = append(out, 0xFF, 0xE0)
	out = binary.BigEndian.AppendUint16(out, 16)
	out = append(out, 'J', 'F', 'I', 'F', 0, 1, 2)
	out = append(out, 1) // units: dots per inch
	out = binary.BigEndian.AppendUint16(out, dpi)
	out = binary.BigEndian.AppendUint16(out, dpi)
	out = append(out, 0, 0) // no thumbnail
	out = append(out, data[2:]...)
	return out, true, nil
}
