package towml

import (
	"github.com/beevik/etree"

	"wmlconv/common"
	"wmlconv/opc"
)

// DefaultCSS is applied before document and user style sheets.
const DefaultCSS = `code, kbd, samp, tt, pre { font-family: "Courier New"; }
mark { background-color: yellow; }
`

// ImageLoader fetches images referenced by non data URIs.
type ImageLoader func(src string) ([]byte, error)

// Settings of HTML to WML conversion.
type Settings struct {
	DefaultCSS  string
	UserCSS     string
	ImageLoader ImageLoader
	// add PNG rendition for SVG images, consumers without SVG support use it
	RasterizeSVG bool
	// width in pixels of images without known size
	DefaultImageWidth int
}

// DefaultSettings returns settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		DefaultCSS:        DefaultCSS,
		RasterizeSVG:      true,
		DefaultImageWidth: 96,
	}
}

// Media is binary part produced by conversion, Name is relative to word/.
type Media struct {
	Name        string
	Data        []byte
	ContentType string
}

// Result of conversion. Relationships belong to the main document part.
type Result struct {
	Document      *etree.Document
	Body          *etree.Element
	Numbering     *etree.Document // nil when no lists were produced
	Styles        *etree.Document
	Media         []Media
	Relationships []opc.Relationship
	Warnings      []common.Warning
}
