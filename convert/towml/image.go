package towml

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"wmlconv/common"
	"wmlconv/css"
	"wmlconv/opc"
	"wmlconv/utils/images"
)

const (
	emuPerPixel = 9525
	// extension list entry Word uses for SVG companion of a raster blip
	svgBlipExt = "{96DAC541-7B7A-43D3-8B79-37D633B846F1}"
)

var errNoLoader = errors.New("only data URIs are supported without image loader")

// relationship registers relationship of the main document part.
func (b *builder) relationship(relType, target string, external bool) string {
	id := "rIdHtml" + strconv.Itoa(len(b.rels)+1)
	b.rels = append(b.rels, opc.Relationship{ID: id, Type: relType, Target: target, External: external})
	return id
}

// addMedia stores image once and returns relationship id pointing to it.
func (b *builder) addMedia(data []byte, mimeType string) string {
	sum := sha256.Sum256(data)
	key := string(sum[:])
	if id, ok := b.images[key]; ok {
		return id
	}
	name := fmt.Sprintf("media/image%d.%s", len(b.media)+1, images.MimeToExt(mimeType))
	b.media = append(b.media, Media{Name: name, Data: data, ContentType: mimeType})
	id := b.relationship(opc.RelTypeImage, name, false)
	b.images[key] = id
	return id
}

// decodeDataURI handles base64 and percent encoded payloads.
func decodeDataURI(src string) ([]byte, error) {
	rest, ok := strings.CutPrefix(src, "data:")
	if !ok {
		return nil, errors.New("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errors.New("data URI without payload")
	}
	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		payload = strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
				return -1
			}
			return r
		}, payload)
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// some producers drop padding
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		return data, err
	}
	s, err := url.PathUnescape(payload)
	return []byte(s), err
}

func (b *builder) loadImage(src string) ([]byte, error) {
	if strings.HasPrefix(src, "data:") {
		return decodeDataURI(src)
	}
	if b.s.ImageLoader == nil {
		return nil, errNoLoader
	}
	return b.s.ImageLoader(src)
}

// pixels reads size from attribute or CSS property, 0 when absent.
func (b *builder) pixels(n *html.Node, props css.Properties, key string) int {
	if v, ok := props[key]; ok {
		if pt, ok := css.Points(v, 0); ok && pt > 0 {
			return int(math.Round(pt / 0.75))
		}
	}
	s := strings.TrimSuffix(strings.TrimSpace(attr(n, key)), "px")
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return int(math.Round(f))
	}
	return 0
}

// imageSize picks display size: explicit size, intrinsic size, then default
// width keeping aspect ratio where it is known.
func (b *builder) imageSize(n *html.Node, info *images.Info) (int, int) {
	props := b.computed(n)
	w, h := b.pixels(n, props, "width"), b.pixels(n, props, "height")
	iw, ih := info.Width, info.Height
	switch {
	case w > 0 && h > 0:
	case w > 0 && iw > 0 && ih > 0:
		h = int(math.Round(float64(w) * float64(ih) / float64(iw)))
	case h > 0 && iw > 0 && ih > 0:
		w = int(math.Round(float64(h) * float64(iw) / float64(ih)))
	case w == 0 && h == 0 && iw > 0 && ih > 0:
		w, h = iw, ih
	default:
		if w == 0 {
			w = b.s.DefaultImageWidth
		}
		if h == 0 {
			h = w
		}
	}
	return w, h
}

// image emits inline drawing run for img element.
func (b *builder) image(target *etree.Element, n *html.Node, c scope) {
	src := strings.TrimSpace(attr(n, "src"))
	if src == "" {
		b.warns.Add(common.CodeWMLImageInvalid, "", "image without source skipped")
		return
	}
	label := src
	if len(label) > 64 {
		label = label[:64] + "..."
	}
	data, err := b.loadImage(src)
	if err != nil {
		b.warns.Add(common.CodeWMLImageInvalid, "", "image %q skipped: %v", label, err)
		return
	}
	info, err := images.Inspect(data)
	if err != nil {
		b.warns.Add(common.CodeWMLImageInvalid, "", "image %q skipped: %v", label, err)
		return
	}
	w, h := b.imageSize(n, info)

	embed := b.addMedia(data, info.MimeType)
	svgEmbed := ""
	if info.MimeType == images.MimeSVG && b.s.RasterizeSVG {
		png, err := images.RasterizeSVGToPNG(data, w, h)
		if err != nil {
			b.log.Debug("SVG fallback not rendered", zap.String("image", label), zap.Error(err))
		} else {
			svgEmbed = embed
			embed = b.addMedia(png, "image/png")
		}
	}

	b.docPrID++
	b.drawing(b.run(target, c.run), drawingSpec{
		id:    b.docPrID,
		embed: embed,
		svg:   svgEmbed,
		alt:   attr(n, "alt"),
		title: attr(n, "title"),
		cx:    w * emuPerPixel,
		cy:    h * emuPerPixel,
	})
	b.space = false
}

type drawingSpec struct {
	id     int
	embed  string
	svg    string
	alt    string
	title  string
	cx, cy int
}

func (b *builder) drawing(r *etree.Element, d drawingSpec) {
	cx, cy := strconv.Itoa(d.cx), strconv.Itoa(d.cy)
	name := "Picture " + strconv.Itoa(d.id)

	inline := r.CreateElement("w:drawing").CreateElement("wp:inline")
	for _, k := range []string{"distT", "distB", "distL", "distR"} {
		inline.CreateAttr(k, "0")
	}
	ext := inline.CreateElement("wp:extent")
	ext.CreateAttr("cx", cx)
	ext.CreateAttr("cy", cy)
	docPr := inline.CreateElement("wp:docPr")
	docPr.CreateAttr("id", strconv.Itoa(d.id))
	docPr.CreateAttr("name", name)
	if d.alt != "" {
		docPr.CreateAttr("descr", d.alt)
	}
	if d.title != "" {
		docPr.CreateAttr("title", d.title)
	}
	inline.CreateElement("wp:cNvGraphicFramePr").
		CreateElement("a:graphicFrameLocks").CreateAttr("noChangeAspect", "1")

	gd := inline.CreateElement("a:graphic").CreateElement("a:graphicData")
	gd.CreateAttr("uri", "http://schemas.openxmlformats.org/drawingml/2006/picture")
	pic := gd.CreateElement("pic:pic")
	nv := pic.CreateElement("pic:nvPicPr")
	cNvPr := nv.CreateElement("pic:cNvPr")
	cNvPr.CreateAttr("id", strconv.Itoa(d.id))
	cNvPr.CreateAttr("name", name)
	nv.CreateElement("pic:cNvPicPr")

	fill := pic.CreateElement("pic:blipFill")
	blip := fill.CreateElement("a:blip")
	blip.CreateAttr("r:embed", d.embed)
	if d.svg != "" {
		e := blip.CreateElement("a:extLst").CreateElement("a:ext")
		e.CreateAttr("uri", svgBlipExt)
		e.CreateElement("asvg:svgBlip").CreateAttr("r:embed", d.svg)
	}
	fill.CreateElement("a:stretch").CreateElement("a:fillRect")

	sp := pic.CreateElement("pic:spPr")
	xfrm := sp.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", "0")
	off.CreateAttr("y", "0")
	aext := xfrm.CreateElement("a:ext")
	aext.CreateAttr("cx", cx)
	aext.CreateAttr("cy", cy)
	geom := sp.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")
}
