package images

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"math"
	"regexp"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// size used when SVG has neither width/height nor viewBox
const defaultSVGSize = 300

// maxRasterDim limits rasterized SVG size (width or height), enormous viewBox
// values would otherwise allocate gigabytes for the RGBA buffer.
var maxRasterDim = 8192

// SVGSize returns intrinsic SVG size in pixels. Explicit width and height
// attributes win over viewBox.
func SVGSize(svgData []byte) (int, int, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData), oksvg.IgnoreErrorMode)
	if err != nil {
		return 0, 0, err
	}
	w, h := int(math.Ceil(icon.ViewBox.W)), int(math.Ceil(icon.ViewBox.H))
	if m := svgWidthRe.FindSubmatch(svgData); m != nil {
		if v, err := strconv.ParseFloat(string(m[1]), 64); err == nil && v > 0 {
			w = int(math.Ceil(v))
		}
	}
	if m := svgHeightRe.FindSubmatch(svgData); m != nil {
		if v, err := strconv.ParseFloat(string(m[1]), 64); err == nil && v > 0 {
			h = int(math.Ceil(v))
		}
	}
	if w <= 0 {
		w = defaultSVGSize
	}
	if h <= 0 {
		h = defaultSVGSize
	}
	return w, h, nil
}

// only plain numbers and px are treated as pixels
var (
	svgWidthRe  = regexp.MustCompile(`<svg[^>]*?\swidth\s*=\s*["']\s*(\d+(?:\.\d+)?)\s*(?:px)?\s*["']`)
	svgHeightRe = regexp.MustCompile(`<svg[^>]*?\sheight\s*=\s*["']\s*(\d+(?:\.\d+)?)\s*(?:px)?\s*["']`)
)

// RasterizeSVGToImage rasterizes SVG to an RGBA image on white background.
//
// Rules:
//   - if targetW == 0 && targetH == 0: use intrinsic SVG size
//   - if only one of targetW/targetH is > 0: scale by that dimension keeping aspect ratio
//   - if both targetW and targetH are > 0: fit into that box keeping aspect ratio
func RasterizeSVGToImage(svgData []byte, targetW, targetH int) (image.Image, error) {
	intrW, intrH, err := SVGSize(svgData)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, err
	}

	w, h := intrW, intrH
	if targetW <= 0 && targetH <= 0 {
		// Keep intrinsic size.
	} else if targetW > 0 && targetH <= 0 {
		w = targetW
		h = int(math.Round(float64(w) * float64(intrH) / float64(intrW)))
	} else if targetH > 0 && targetW <= 0 {
		h = targetH
		w = int(math.Round(float64(h) * float64(intrW) / float64(intrH)))
	} else {
		scaleW := float64(targetW) / float64(intrW)
		scaleH := float64(targetH) / float64(intrH)
		scale := math.Min(scaleW, scaleH)
		w = int(math.Round(float64(intrW) * scale))
		h = int(math.Round(float64(intrH) * scale))
	}
	w = max(w, 1)
	h = max(h, 1)

	// Clamp to maxRasterDim preserving aspect ratio to prevent OOM.
	if w > maxRasterDim || h > maxRasterDim {
		s := min(float64(maxRasterDim)/float64(w), float64(maxRasterDim)/float64(h))
		w = max(int(math.Round(float64(w)*s)), 1)
		h = max(int(math.Round(float64(h)*s)), 1)
	}

	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return dst, nil
}

// RasterizeSVGToPNG renders SVG into PNG data, used as fallback for consumers
// which do not understand SVG.
func RasterizeSVGToPNG(svgData []byte, targetW, targetH int) ([]byte, error) {
	img, err := RasterizeSVGToImage(svgData, targetW, targetH)
	if err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
