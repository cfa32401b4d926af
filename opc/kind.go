package opc

//go:generate go tool go-enum --names

// Kind of office document stored in the package.
// ENUM(unknown, opc, docx, xlsx, pptx)
type Kind int

// Detect figures out kind of the package from main document content type.
func (p *Package) Detect() Kind {
	main, err := p.MainDocument()
	if err != nil {
		if p.Has(ContentTypesName) {
			return KindOpc
		}
		return KindUnknown
	}
	switch p.ContentType(main) {
	case ContentTypeDocument, ContentTypeDocumentMacro, ContentTypeTemplate:
		return KindDocx
	case ContentTypeWorkbook:
		return KindXlsx
	case ContentTypePresentation:
		return KindPptx
	default:
		return KindOpc
	}
}
