package convert

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"wmlconv/opc"
)

// metadata of the source document available to output name templates.
type metadata struct {
	Title    string
	Author   string
	Language string
	Date     string
}

// docxMetadata reads core properties part, missing or broken part gives
// empty metadata.
func docxMetadata(pkg *opc.Package) metadata {
	var md metadata
	rels, err := pkg.Relationships("")
	if err != nil {
		return md
	}
	core := rels.ByType(opc.RelTypeCoreProps)
	if len(core) == 0 {
		return md
	}
	doc, ok, err := pkg.PartXML(rels.TargetPart(core[0]))
	if err != nil || !ok || doc.Root() == nil {
		return md
	}
	for _, el := range doc.Root().ChildElements() {
		text := strings.TrimSpace(el.Text())
		switch el.Tag {
		case "title":
			md.Title = text
		case "creator":
			md.Author = text
		case "language":
			md.Language = text
		case "modified":
			if md.Date == "" {
				md.Date, _, _ = strings.Cut(text, "T")
			}
		case "created":
			md.Date, _, _ = strings.Cut(text, "T")
		}
	}
	return md
}

// htmlMetadata tokenizes document head: title element, author meta and
// language of the root element.
func htmlMetadata(data []byte) metadata {
	var md metadata
	z := html.NewTokenizer(bytes.NewReader(data))
	inTitle := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return md
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Html:
				md.Language = tokenAttr(tok, "lang")
			case atom.Title:
				inTitle = true
			case atom.Meta:
				switch strings.ToLower(tokenAttr(tok, "name")) {
				case "author":
					md.Author = tokenAttr(tok, "content")
				case "date", "dcterms.created":
					md.Date = tokenAttr(tok, "content")
				}
			case atom.Body:
				return md
			}
		case html.TextToken:
			if inTitle {
				md.Title += string(z.Text())
			}
		case html.EndTagToken:
			if tok := z.Token(); tok.DataAtom == atom.Title {
				inTitle = false
				md.Title = strings.Join(strings.Fields(md.Title), " ")
			} else if tok.DataAtom == atom.Head {
				return md
			}
		}
	}
}

func tokenAttr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}
