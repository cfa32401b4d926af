package wml_test

import (
	"context"
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"wmlconv/common"
	"wmlconv/opc"
	"wmlconv/wml"
	"wmlconv/wml/wmltest"
)

func parse(t *testing.T, xml string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc.Root()
}

func TestHelpers(t *testing.T) {
	root := parse(t, wmltest.Wrap("document", `<w:body><w:p><w:pPr><w:jc w:val="center"/><w:ind w:left="720" w:hanging="360.0"/><w:b/><w:i w:val="0"/><w:caps w:val="off"/></w:pPr><w:r><w:t>a</w:t></w:r><w:r><w:t>b</w:t></w:r></w:p></w:body>`))
	body := wml.Child(root, "body")
	if !wml.Is(body, "body") {
		t.Fatal("body not found")
	}
	p := wml.Child(body, "p")
	ppr := wml.Child(p, "pPr")
	if got := wml.Val(wml.Child(ppr, "jc")); got != "center" {
		t.Errorf("Val(jc) = %q", got)
	}
	ind := wml.Child(ppr, "ind")
	if n, ok := wml.IntAttr(ind, "left"); !ok || n != 720 {
		t.Errorf("IntAttr(left) = %d, %v", n, ok)
	}
	if n, ok := wml.IntAttr(ind, "hanging"); !ok || n != 360 {
		t.Errorf("IntAttr(hanging) = %d, %v", n, ok)
	}
	if b := wml.OnOff(wml.Child(ppr, "b")); b == nil || !*b {
		t.Error("bare toggle must be on")
	}
	if i := wml.OnOff(wml.Child(ppr, "i")); i == nil || *i {
		t.Error("val=0 must be off")
	}
	if c := wml.OnOff(wml.Child(ppr, "caps")); c == nil || *c {
		t.Error("val=off must be off")
	}
	if wml.OnOff(wml.Child(ppr, "strike")) != nil {
		t.Error("absent toggle must be nil")
	}
	if len(wml.Children(p, "r")) != 2 {
		t.Error("expected two runs")
	}
	if wml.Text(p) != "ab" {
		t.Errorf("Text() = %q", wml.Text(p))
	}
}

func TestHelpers_OtherPrefix(t *testing.T) {
	// same namespace under non-standard prefix
	root := parse(t, `<x:document xmlns:x="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><x:body><x:p/></x:body></x:document>`)
	if !wml.Is(root, "document") || wml.Child(wml.Child(root, "body"), "p") == nil {
		t.Error("namespace must be resolved by URI, not prefix")
	}
	// prefix without declaration falls back to well known mapping
	frag := parse(t, `<w:p><w:pPr><w:pStyle w:val="Title"/></w:pPr></w:p>`)
	if wml.Val(wml.Child(wml.Child(frag, "pPr"), "pStyle")) != "Title" {
		t.Error("undeclared w prefix must be recognized")
	}
}

func TestLoad(t *testing.T) {
	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller()))
	pkg := wmltest.Docx{
		Body:      wmltest.P("Hello"),
		Styles:    `<w:style w:type="paragraph" w:styleId="Normal"/>`,
		Footnotes: `<w:footnote w:id="1"/>`,
		Headers:   map[string]string{"rIdH1": wmltest.P("Header one"), "rIdH2": wmltest.P("Header two")},
		Footers:   map[string]string{"rIdF1": wmltest.P("Footer")},
		Dangling:  map[string]string{"rIdN": opc.RelTypeNumbering},
	}.Package(t)

	warns := common.NewWarnings(log)
	doc, err := wml.Load(context.Background(), pkg, warns, log)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Styles == nil || doc.Footnotes == nil {
		t.Error("styles and footnotes must be loaded")
	}
	if doc.Numbering != nil {
		t.Error("numbering must stay nil")
	}
	if len(doc.Headers) != 2 || len(doc.Footers) != 1 {
		t.Errorf("headers=%d footers=%d", len(doc.Headers), len(doc.Footers))
	}
	if got := wml.Text(doc.Headers["rIdH2"].Root); got != "Header two" {
		t.Errorf("header text = %q", got)
	}
	if warns.Count(common.CodePartMissing) != 1 {
		t.Errorf("warnings = %v", warns.List())
	}
	if len(doc.Stories()) != 5 {
		t.Errorf("Stories() = %d", len(doc.Stories()))
	}
}

func TestLoad_Fatal(t *testing.T) {
	t.Run("no main relationship", func(t *testing.T) {
		_, err := wml.Load(context.Background(), opc.New(), nil, nil)
		if common.ErrorCode(err) != common.CodeInvalidDocx {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("main part missing", func(t *testing.T) {
		pkg := wmltest.Docx{Body: wmltest.P("x")}.Package(t)
		pkg.RemovePart("word/document.xml")
		_, err := wml.Load(context.Background(), pkg, nil, nil)
		if common.ErrorCode(err) != common.CodeInvalidDocx {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("main part broken", func(t *testing.T) {
		pkg := wmltest.Docx{Body: wmltest.P("x")}.Package(t)
		pkg.SetPart("word/document.xml", []byte("<w:document"), "")
		_, err := wml.Load(context.Background(), pkg, nil, nil)
		if common.ErrorCode(err) != common.CodeXMLInvalid {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		pkg := wmltest.Docx{Body: wmltest.P("x"), Styles: `<w:style/>`}.Package(t)
		if _, err := wml.Load(ctx, pkg, nil, nil); err == nil {
			t.Error("expected error for canceled context")
		}
	})
}

func TestLoad_BrokenOptionalPart(t *testing.T) {
	pkg := wmltest.Docx{Body: wmltest.P("x"), Styles: `<w:style/>`}.Package(t)
	pkg.SetPart("word/styles.xml", []byte("<w:styles><oops"), "")
	warns := common.NewWarnings(nil)
	doc, err := wml.Load(context.Background(), pkg, warns, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Styles != nil || warns.Count(common.CodePartInvalid) != 1 {
		t.Errorf("styles=%v warnings=%v", doc.Styles, warns.List())
	}
}
