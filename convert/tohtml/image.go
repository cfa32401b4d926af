package tohtml

import (
	"encoding/base64"
	"strconv"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"wmlconv/common"
	"wmlconv/utils/images"
	"wmlconv/wml"
)

const emuPerPixel = 9525

// imageRef is a picture reference found in drawing or VML markup.
type imageRef struct {
	relID         string
	alt           string
	width, height int
}

func imageRefs(el *etree.Element) []imageRef {
	var alt string
	if docPr := first(wml.Descendants(el, wml.NSWP, "docPr")); docPr != nil {
		alt = wml.AttrValue(docPr, "descr", "")
		if alt == "" {
			alt = wml.AttrValue(docPr, "title", "")
		}
	}
	var w, h int
	if ext := first(wml.Descendants(el, wml.NSWP, "extent")); ext != nil {
		if cx, ok := wml.IntAttr(ext, "cx"); ok {
			w = cx / emuPerPixel
		}
		if cy, ok := wml.IntAttr(ext, "cy"); ok {
			h = cy / emuPerPixel
		}
	}

	var refs []imageRef
	for _, blip := range wml.Descendants(el, wml.NSA, "blip") {
		id := wml.RelID(blip, "embed")
		if svg := first(wml.Descendants(blip, wml.NSASVG, "svgBlip")); svg != nil {
			if sid := wml.RelID(svg, "embed"); sid != "" {
				id = sid
			}
		}
		if id != "" {
			refs = append(refs, imageRef{relID: id, alt: alt, width: w, height: h})
		}
	}
	for _, data := range wml.Descendants(el, wml.NSV, "imagedata") {
		if id := wml.RelID(data, "id"); id != "" {
			title := alt
			if title == "" {
				title = wml.AttrValue(data, "title", "")
			}
			refs = append(refs, imageRef{relID: id, alt: title})
		}
	}
	return refs
}

func first(els []*etree.Element) *etree.Element {
	if len(els) == 0 {
		return nil
	}
	return els[0]
}

// images emits img elements for pictures of drawing or pict element.
func (c *conversion) images(parent *etree.Element, el *etree.Element, story *wml.Story) {
	for _, ref := range imageRefs(el) {
		if img := c.image(ref, story); img != nil {
			parent.AddChild(img)
		}
	}
}

func (c *conversion) image(ref imageRef, story *wml.Story) *etree.Element {
	rel, ok := story.Rels.ByID(ref.relID)
	if !ok {
		c.warns.Add(common.CodeImageMissing, story.Part, "image relationship %s not found", ref.relID)
		return nil
	}
	info := ImageInfo{RelID: ref.relID, Alt: ref.alt, Width: ref.width, Height: ref.height}

	var src string
	if rel.External {
		src = rel.Target
	} else {
		info.Part = story.Rels.TargetPart(rel)
		data, ok := c.doc.Pkg.Part(info.Part)
		if !ok {
			c.warns.Add(common.CodeImageMissing, story.Part, "image part %s not found", info.Part)
			return nil
		}
		info.Data = data
		info.ContentType = c.doc.Pkg.ContentType(info.Part)
		if info.ContentType == "" || info.ContentType == "application/octet-stream" {
			if mt, err := images.Sniff(data); err == nil {
				info.ContentType = mt
			}
		}

		res, err := c.imageSource(info)
		if err != nil {
			c.warns.Add(common.CodeImageMissing, story.Part, "image %s: %v", info.Part, err)
			return nil
		}
		if res.Src == "" {
			return nil
		}
		src = res.Src
		if res.Alt != "" {
			info.Alt = res.Alt
		}
	}

	img := etree.NewElement("img")
	img.CreateAttr("src", src)
	img.CreateAttr("alt", info.Alt)
	if info.Width > 0 && info.Height > 0 {
		img.CreateAttr("width", strconv.Itoa(info.Width))
		img.CreateAttr("height", strconv.Itoa(info.Height))
	}
	return img
}

// imageSource asks the configured handler or produces data URI.
func (c *conversion) imageSource(info ImageInfo) (ImageResult, error) {
	if c.s.ImageHandler != nil {
		return c.s.ImageHandler(info)
	}
	data, ct := info.Data, info.ContentType
	if c.s.Images.MaxWidth > 0 {
		scaled, inf, changed, err := images.Downscale(data, c.s.Images.MaxWidth, c.s.Images.JPEGQuality)
		if err != nil {
			c.log.Debug("Image left as is", zap.String("part", info.Part), zap.Error(err))
		} else if changed {
			data, ct = scaled, inf.MimeType
		}
	}
	if ct == "" {
		ct = "application/octet-stream"
	}
	return ImageResult{Src: "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(data), Alt: info.Alt}, nil
}
