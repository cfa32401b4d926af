package config

//go:generate go tool go-enum --marshal --names

// Specification of how images found in documents are delivered with HTML.
// ENUM(embed, files, drop)
type ImageMode int

// Specification of requested conversion direction.
// ENUM(html, docx)
type OutputFmt int

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtHtml:
		return ".html"
	case OutputFmtDocx:
		return ".docx"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}
