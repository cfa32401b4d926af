package tohtml

import (
	"github.com/beevik/etree"

	"wmlconv/common"
	"wmlconv/numbering"
	"wmlconv/preprocess"
)

// DefaultGeneralCSS keeps whitespace of runs visible.
const DefaultGeneralCSS = "span { white-space: pre-wrap; }"

// ImageInfo describes image found in the document.
type ImageInfo struct {
	RelID       string
	Part        string
	ContentType string
	Data        []byte
	Alt         string
	// extent from drawing in pixels at 96 dpi, 0 if unknown
	Width  int
	Height int
}

// ImageResult tells renderer how to reference an image. Empty Src drops it.
type ImageResult struct {
	Src string
	Alt string
}

// ImageHandler replaces default data URI embedding.
type ImageHandler func(ImageInfo) (ImageResult, error)

// ImageSettings control default embedding.
type ImageSettings struct {
	MaxWidth    int // downscale wider raster images, 0 keeps them
	JPEGQuality int
}

// Settings of WML to HTML conversion.
type Settings struct {
	PageTitle                    string
	ClassPrefix                  string
	FabricateClasses             bool
	GeneralCSS                   string
	AdditionalCSS                string
	RestrictToSupportedNumbering bool
	RestrictToSupportedLanguages bool
	ListMarkers                  map[string]numbering.MarkerFunc
	ImageHandler                 ImageHandler
	IncludeComments              bool
	Preprocess                   preprocess.Settings
	Images                       ImageSettings
	TreeOutput                   bool
}

// DefaultSettings returns settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		ClassPrefix:      "pt-",
		FabricateClasses: true,
		GeneralCSS:       DefaultGeneralCSS,
		Images:           ImageSettings{JPEGQuality: 75},
	}
}

// Result of conversion. Element is set only when tree output was requested.
type Result struct {
	HTML     string
	CSS      string
	Warnings []common.Warning
	Element  *etree.Element
}
