package styles

import (
	"reflect"
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"wmlconv/wml/wmltest"
)

const stylesXML = `
<w:docDefaults>
  <w:rPrDefault><w:rPr><w:sz w:val="22"/><w:rFonts w:ascii="Calibri"/></w:rPr></w:rPrDefault>
  <w:pPrDefault><w:pPr><w:spacing w:after="160" w:line="259" w:lineRule="auto"/></w:pPr></w:pPrDefault>
</w:docDefaults>
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:rPr><w:color w:val="333333"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/>
  <w:pPr><w:keepNext/><w:outlineLvl w:val="0"/><w:jc w:val="center"/></w:pPr><w:rPr><w:b/><w:sz w:val="32"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Custom"><w:name w:val="heading 3"/><w:basedOn w:val="Heading1"/>
  <w:rPr><w:b w:val="0"/><w:i/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Outlined"><w:name w:val="My Title"/><w:pPr><w:outlineLvl w:val="1"/></w:pPr></w:style>
<w:style w:type="paragraph" w:styleId="LoopA"><w:basedOn w:val="LoopB"/><w:pPr><w:jc w:val="right"/></w:pPr></w:style>
<w:style w:type="paragraph" w:styleId="LoopB"><w:basedOn w:val="LoopA"/><w:pPr><w:jc w:val="left"/><w:bidi/></w:pPr></w:style>
<w:style w:type="paragraph" w:styleId="Listed"><w:pPr><w:numPr><w:ilvl w:val="1"/><w:numId w:val="7"/></w:numPr></w:pPr></w:style>
<w:style w:type="character" w:styleId="Strong"><w:name w:val="Strong"/><w:rPr><w:b/><w:u w:val="double"/></w:rPr></w:style>
<w:style w:type="character" w:styleId="Normal"><w:rPr><w:caps/></w:rPr></w:style>
`

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(wmltest.Wrap("styles", stylesXML)); err != nil {
		t.Fatalf("parse: %v", err)
	}
	return NewResolver(doc.Root(), zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller())))
}

func TestResolveChain(t *testing.T) {
	r := newResolver(t)

	res, ok := r.Paragraph("Custom")
	if !ok {
		t.Fatal("Custom not resolved")
	}
	if got := res.Chain; !reflect.DeepEqual(got, []string{"Custom", "Heading1", "Normal"}) {
		t.Errorf("chain = %v", got)
	}
	if True(res.Run.Bold) {
		t.Error("bold must be switched off by the leaf")
	}
	if !True(res.Run.Italic) {
		t.Error("italic expected")
	}
	if res.Run.Size == nil || *res.Run.Size != 32 {
		t.Errorf("size = %v, want inherited 32", res.Run.Size)
	}
	if res.Run.Color != "333333" {
		t.Errorf("color = %q", res.Run.Color)
	}
	if res.Para.Justification != "center" || !True(res.Para.KeepNext) {
		t.Errorf("para = %+v", res.Para)
	}
}

func TestResolveIdempotent(t *testing.T) {
	r := newResolver(t)
	a, _ := r.Paragraph("Custom")
	b, _ := r.Paragraph("Custom")
	if !reflect.DeepEqual(a, b) {
		t.Fatal("second resolution differs")
	}

	fresh := newResolver(t)
	fresh.Paragraph("Heading1")
	c, _ := fresh.Paragraph("Custom")
	if !reflect.DeepEqual(a, c) {
		t.Fatal("resolution depends on cache state")
	}
}

func TestResolveCycle(t *testing.T) {
	r := newResolver(t)
	res, ok := r.Paragraph("LoopA")
	if !ok {
		t.Fatal("cyclic style must resolve to collected prefix")
	}
	if res.Para.Justification != "right" {
		t.Errorf("jc = %q, want leaf value", res.Para.Justification)
	}
	if !True(res.Para.Bidi) {
		t.Error("bidi from ancestor expected")
	}
	if len(res.Chain) != 2 {
		t.Errorf("chain = %v", res.Chain)
	}
}

func TestResolveUnknown(t *testing.T) {
	r := newResolver(t)
	if _, ok := r.Paragraph("Missing"); ok {
		t.Fatal("unknown style resolved")
	}
	if _, ok := r.Paragraph("Missing"); ok {
		t.Fatal("cached absence resolved")
	}
	if _, ok := r.Character("Heading1"); ok {
		t.Fatal("kinds must not mix")
	}
	empty := NewResolver(nil, nil)
	if _, ok := empty.Paragraph("Normal"); ok {
		t.Fatal("empty resolver resolved")
	}
}

func TestEffective(t *testing.T) {
	r := newResolver(t)

	para := r.EffectiveParagraph("", ParagraphProps{})
	if para.SpacingAfter == nil || *para.SpacingAfter != 160 {
		t.Errorf("docDefaults spacing not applied: %+v", para)
	}

	direct := ParseRunProps(mustElement(t, `<w:rPr><w:rStyle w:val="Strong"/><w:color w:val="FF0000"/></w:rPr>`))
	run := r.EffectiveRun("Heading1", direct)
	if !True(run.Bold) || run.Underline != "double" {
		t.Errorf("character style not applied: %+v", run)
	}
	if run.Color != "FF0000" {
		t.Errorf("direct color = %q", run.Color)
	}
	if run.Font != "Calibri" {
		t.Errorf("font = %q, want docDefaults", run.Font)
	}
	if True(run.Caps) {
		t.Error("unrelated character style applied")
	}

	listed := r.EffectiveParagraph("Listed", ParagraphProps{})
	if listed.NumID == nil || *listed.NumID != 7 || *listed.Ilvl != 1 {
		t.Errorf("numbering from style = %+v", listed)
	}
}

func TestHeadingLevel(t *testing.T) {
	r := newResolver(t)
	tests := map[string]int{
		"Heading1": 1,
		"heading2": 2,
		"Custom":   3,
		"Outlined": 2,
		"Normal":   0,
		"Missing":  0,
		"":         0,
	}
	for id, want := range tests {
		if got := r.HeadingLevel(id); got != want {
			t.Errorf("HeadingLevel(%q) = %d, want %d", id, got, want)
		}
	}
}

func TestParseParagraphProps(t *testing.T) {
	p := ParseParagraphProps(mustElement(t, `<w:pPr>
		<w:ind w:start="720" w:hanging="360"/>
		<w:shd w:val="clear" w:fill="auto"/>
		<w:pBdr><w:top w:val="single" w:sz="8" w:color="00FF00"/><w:bottom w:val="nil"/></w:pBdr>
		<w:pageBreakBefore w:val="false"/>
	</w:pPr>`))
	if p.IndLeft == nil || *p.IndLeft != 720 || p.IndHanging == nil || *p.IndHanging != 360 {
		t.Errorf("ind = %+v", p)
	}
	if p.Shading != "" {
		t.Errorf("auto fill must be ignored, got %q", p.Shading)
	}
	if !p.Borders.Top.Visible() || p.Borders.Top.Size != 8 || p.Borders.Bottom.Visible() {
		t.Errorf("borders = %+v %+v", p.Borders.Top, p.Borders.Bottom)
	}
	if p.PageBreakBefore == nil || *p.PageBreakBefore {
		t.Error("explicit false expected")
	}

	var merged ParagraphProps
	merged.Merge(p)
	one := 100
	merged.Merge(ParagraphProps{IndFirstLine: &one})
	if merged.IndHanging != nil || *merged.IndFirstLine != 100 {
		t.Error("first line must replace hanging")
	}
}

func mustElement(t *testing.T, s string) *etree.Element {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(wmltest.Wrap("root", s)); err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc.Root().ChildElements()[0]
}
