package images

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, 0, color.NRGBA{R: 200, A: 255})
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func makeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
		err  error
	}{
		{"png", makePNG(t, 2, 2), "image/png", nil},
		{"jpeg", makeJPEG(t, 2, 2), "image/jpeg", nil},
		{"svg", []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"/>`), MimeSVG, nil},
		{"garbage", []byte("hello world"), "", ErrUnknownFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sniff(tt.data)
			if !errors.Is(err, tt.err) {
				t.Fatalf("Sniff() error = %v, want %v", err, tt.err)
			}
			if got != tt.want {
				t.Errorf("Sniff() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInspect(t *testing.T) {
	info, err := Inspect(makePNG(t, 30, 12))
	if err != nil {
		t.Fatalf("Inspect() error: %v", err)
	}
	if info.Width != 30 || info.Height != 12 || info.Ext != "png" {
		t.Errorf("Inspect() = %+v", info)
	}
}

func TestMimeExtMapping(t *testing.T) {
	for _, mt := range []string{"image/png", "image/jpeg", "image/gif", MimeSVG, "image/x-emf"} {
		if got := ExtToMime(MimeToExt(mt)); got != mt {
			t.Errorf("round trip of %s gave %s", mt, got)
		}
	}
	if ExtToMime(".JPG") != "image/jpeg" {
		t.Error("extension lookup must be case insensitive and accept dot")
	}
	if ExtToMime("txt") != "" {
		t.Error("unknown extension must map to empty string")
	}
}

func TestDownscale(t *testing.T) {
	t.Run("narrow image untouched", func(t *testing.T) {
		data := makePNG(t, 10, 10)
		out, _, changed, err := Downscale(data, 100, 85)
		if err != nil {
			t.Fatalf("Downscale() error: %v", err)
		}
		if changed || !bytes.Equal(out, data) {
			t.Error("expected original data")
		}
	})

	t.Run("png shrinks", func(t *testing.T) {
		out, info, changed, err := Downscale(makePNG(t, 200, 100), 50, 85)
		if err != nil {
			t.Fatalf("Downscale() error: %v", err)
		}
		if !changed {
			t.Fatal("expected image to change")
		}
		if info.Width != 50 || info.Height != 25 || info.MimeType != "image/png" {
			t.Errorf("unexpected info: %+v", info)
		}
		if mt, _ := Sniff(out); mt != "image/png" {
			t.Errorf("encoded as %s", mt)
		}
	})

	t.Run("jpeg stays jpeg with jfif", func(t *testing.T) {
		out, info, changed, err := Downscale(makeJPEG(t, 80, 40), 40, 85)
		if err != nil {
			t.Fatalf("Downscale() error: %v", err)
		}
		if !changed || info.MimeType != "image/jpeg" {
			t.Fatalf("unexpected result: %v %+v", changed, info)
		}
		if !bytes.Equal(out[2:4], []byte{0xFF, 0xE0}) {
			t.Error("expected JFIF APP0 marker")
		}
	})
}
