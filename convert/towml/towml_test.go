package towml

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"strconv"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"wmlconv/common"
	"wmlconv/convert/tohtml"
	"wmlconv/opc"
	"wmlconv/wml"
	"wmlconv/wml/wmltest"
)

func convert(t *testing.T, src string, s Settings) *Result {
	t.Helper()
	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller()))
	res, err := Convert(context.Background(), strings.NewReader(src), s, log)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	return res
}

func xmlString(t *testing.T, el *etree.Element) string {
	t.Helper()
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	s, err := doc.WriteToString()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func contains(t *testing.T, got string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("output does not contain %s:\n%s", w, got)
		}
	}
}

func pngURI(t *testing.T, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestConvertParagraphs(t *testing.T) {
	res := convert(t, `<html><body>
		<p>Hello  <b>world</b></p>
		<h2>Head</h2>
		<blockquote>quoted</blockquote>
		<pre>a  b
c</pre>
		<hr>
		<div><div>nested <i>text</i><br>next</div></div>
		loose <u>inline</u>
		</body></html>`, DefaultSettings())
	body := xmlString(t, res.Body)
	contains(t, body,
		`<w:p><w:r><w:t xml:space="preserve">Hello </w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t>world</w:t></w:r></w:p>`,
		`<w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t>Head</w:t></w:r></w:p>`,
		`<w:pStyle w:val="Quote"/>`,
		`<w:t xml:space="preserve">a  b</w:t><w:br/><w:t>c</w:t>`,
		`<w:pBdr><w:bottom w:val="single" w:sz="6" w:space="1" w:color="auto"/></w:pBdr>`,
		`<w:t xml:space="preserve">nested </w:t></w:r><w:r><w:rPr><w:i/></w:rPr><w:t>text</w:t></w:r><w:r><w:br/></w:r><w:r><w:t>next</w:t></w:r></w:p>`,
		`<w:r><w:t xml:space="preserve">loose </w:t></w:r><w:r><w:rPr><w:u w:val="single"/></w:rPr><w:t>inline</w:t></w:r>`,
		`<w:sectPr><w:pgSz w:w="12240" w:h="15840"/>`,
	)
	if res.Numbering != nil {
		t.Error("numbering produced without lists")
	}
	if n := strings.Count(body, `<w:p>`) + strings.Count(body, `<w:p/>`); n < 5 {
		t.Errorf("too few paragraphs: %d", n)
	}
}

func TestConvertCSS(t *testing.T) {
	s := DefaultSettings()
	s.UserCSS = "p { font-style: italic }"
	res := convert(t, `<html><head><style>.red { color: #f00 } p { text-align: center; margin-left: 36pt }</style></head>
		<body><p class="red" style="font-size: 14pt; text-indent: -18pt">x</p>
		<p><span style="font-weight: 700; text-decoration: line-through; vertical-align: super">y</span>
		<code>z</code> <font color="blue" size="5">f</font></p>
		<p dir="rtl">r</p></body></html>`, s)
	contains(t, xmlString(t, res.Body),
		`<w:pPr><w:ind w:left="720" w:hanging="360"/><w:jc w:val="center"/></w:pPr><w:r><w:rPr><w:i/><w:color w:val="FF0000"/><w:sz w:val="28"/></w:rPr><w:t>x</w:t></w:r>`,
		`<w:rPr><w:b/><w:i/><w:strike/><w:vertAlign w:val="superscript"/></w:rPr><w:t>y</w:t>`,
		`<w:rFonts w:ascii="Courier New" w:hAnsi="Courier New" w:cs="Courier New"/><w:i/></w:rPr><w:t>z</w:t>`,
		`<w:color w:val="0000FF"/><w:sz w:val="36"/></w:rPr><w:t>f</w:t>`,
		`<w:bidi/>`,
		`<w:rtl/>`,
	)
}

func TestConvertLists(t *testing.T) {
	res := convert(t, `<ol start="3"><li>a</li><li>b<ul><li>c</li></ul></li></ol><ol type="i"><li>d</li></ol><ul><li></li></ul>`, DefaultSettings())
	body := xmlString(t, res.Body)
	item := func(ilvl, numID int, text string) string {
		return `<w:p><w:pPr><w:numPr><w:ilvl w:val="` + strconv.Itoa(ilvl) + `"/><w:numId w:val="` + strconv.Itoa(numID) + `"/></w:numPr></w:pPr>` +
			`<w:r><w:t>` + text + `</w:t></w:r></w:p>`
	}
	contains(t, body, item(0, 1, "a"), item(0, 1, "b"), item(1, 2, "c"), item(0, 3, "d"),
		`<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="4"/></w:numPr></w:pPr></w:p>`)

	if res.Numbering == nil {
		t.Fatal("numbering part missing")
	}
	nums := xmlString(t, res.Numbering.Root())
	contains(t, nums,
		`<w:num w:numId="1"><w:abstractNumId w:val="0"/><w:lvlOverride w:ilvl="0"><w:startOverride w:val="3"/></w:lvlOverride></w:num>`,
		`<w:num w:numId="3"><w:abstractNumId w:val="2"/></w:num>`,
		`<w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="lowerRoman"/>`,
	)
	if n := strings.Count(nums, "<w:num "); n != 4 {
		t.Errorf("num instances = %d, want 4", n)
	}
}

func TestConvertTableRectangular(t *testing.T) {
	res := convert(t, `<table border="1">
		<thead><tr><th>h1</th><th>h2</th><th>h3</th></tr></thead>
		<tr><td rowspan="2">a</td><td colspan="2">b</td></tr>
		<tr><td>c</td></tr>
		<tr><td>d</td></tr>
		<tr><td rowspan="5">e</td><td>f</td><td>g</td></tr>
		</table>`, DefaultSettings())
	tbl := res.Body.SelectElement("w:tbl")
	if tbl == nil {
		t.Fatal("no table produced")
	}
	columns := len(tbl.SelectElement("w:tblGrid").SelectElements("w:gridCol"))
	if columns != 3 {
		t.Fatalf("grid columns = %d, want 3", columns)
	}
	rows := tbl.SelectElements("w:tr")
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(rows))
	}
	for i, tr := range rows {
		covered := 0
		for _, tc := range tr.SelectElements("w:tc") {
			span := 1
			if gs := tc.FindElement("w:tcPr/w:gridSpan"); gs != nil {
				span, _ = strconv.Atoi(gs.SelectAttrValue("w:val", "1"))
			}
			covered += span
			if tc.SelectElement("w:p") == nil {
				t.Errorf("row %d: cell without paragraph", i)
			}
		}
		if covered != columns {
			t.Errorf("row %d covers %d columns, want %d", i, covered, columns)
		}
	}
	if rows[0].FindElement("w:trPr/w:tblHeader") == nil {
		t.Error("header row not flagged")
	}
	merge := func(row, cell int) string {
		vm := rows[row].SelectElements("w:tc")[cell].FindElement("w:tcPr/w:vMerge")
		if vm == nil {
			return "none"
		}
		return vm.SelectAttrValue("w:val", "continue")
	}
	if merge(1, 0) != "restart" || merge(2, 0) != "continue" || merge(3, 0) != "none" {
		t.Errorf("vertical merge markers = %s %s %s", merge(1, 0), merge(2, 0), merge(3, 0))
	}
	// rowspan past the last row is truncated
	if merge(4, 0) != "none" {
		t.Errorf("single row span kept merge marker %s", merge(4, 0))
	}
	if n := strings.Count(xmlString(t, tbl), "<w:tblBorders>"); n != 1 {
		t.Errorf("table borders = %d", n)
	}
}

func TestConvertLinks(t *testing.T) {
	res := convert(t, `<p><a href="https://example.com/" title="ex">x</a> <a href="#sec">s</a></p><h1 id="sec">t</h1><p><a name="n"></a>u</p>`, DefaultSettings())
	contains(t, xmlString(t, res.Body),
		`<w:hyperlink r:id="rIdHtml1" w:tooltip="ex"><w:r><w:rPr><w:rStyle w:val="Hyperlink"/></w:rPr><w:t>x</w:t></w:r></w:hyperlink>`,
		`<w:hyperlink w:anchor="sec">`,
		`<w:pStyle w:val="Heading1"/></w:pPr><w:bookmarkStart w:id="0" w:name="sec"/><w:bookmarkEnd w:id="0"/>`,
		`<w:bookmarkStart w:id="1" w:name="n"/>`,
	)
	if len(res.Relationships) != 1 || !res.Relationships[0].External || res.Relationships[0].Type != opc.RelTypeHyperlink {
		t.Errorf("relationships = %+v", res.Relationships)
	}
}

func TestConvertImages(t *testing.T) {
	svg := `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="20"><rect width="10" height="20" fill="red"/></svg>`
	src := `<p><img src="` + pngURI(t, 4, 2) + `" alt="dot"><img width="8" src="` + pngURI(t, 4, 2) + `">` +
		`<img src="data:image/svg+xml;base64,` + base64.StdEncoding.EncodeToString([]byte(svg)) + `">` +
		`<img src="http://example.com/remote.png"><img src="data:image/png;base64,AAAA"></p>`
	res := convert(t, src, DefaultSettings())
	body := xmlString(t, res.Body)

	if len(res.Media) != 3 {
		t.Fatalf("media = %d, want 3 (png, svg, svg fallback)", len(res.Media))
	}
	if res.Media[0].Name != "media/image1.png" || res.Media[1].Name != "media/image2.svg" || res.Media[2].ContentType != "image/png" {
		t.Errorf("media names %s %s %s", res.Media[0].Name, res.Media[1].Name, res.Media[2].ContentType)
	}
	contains(t, body,
		`<wp:extent cx="38100" cy="19050"/><wp:docPr id="1" name="Picture 1" descr="dot"/>`,
		`<wp:extent cx="76200" cy="38100"/>`,
		`<a:blip r:embed="rIdHtml1"/>`,
		`<a:blip r:embed="rIdHtml3"><a:extLst><a:ext uri="`+svgBlipExt+`"><asvg:svgBlip r:embed="rIdHtml2"/></a:ext></a:extLst></a:blip>`,
		`<wp:extent cx="95250" cy="190500"/>`,
	)
	if n := strings.Count(body, "<w:drawing>"); n != 3 {
		t.Errorf("drawings = %d, want 3", n)
	}
	count := 0
	for _, w := range res.Warnings {
		if w.Code == common.CodeWMLImageInvalid {
			count++
		}
	}
	if count != 2 {
		t.Errorf("image warnings = %d, want 2: %v", count, res.Warnings)
	}
}

func TestImageLoader(t *testing.T) {
	s := DefaultSettings()
	uri := pngURI(t, 4, 2)
	s.ImageLoader = func(src string) ([]byte, error) {
		if src != "pic.png" {
			t.Errorf("loader got %q", src)
		}
		return decodeDataURI(uri)
	}
	res := convert(t, `<p><img src="pic.png" height="4"></p>`, s)
	contains(t, xmlString(t, res.Body), `<wp:extent cx="76200" cy="38100"/>`)
}

func TestPackageRoundTrip(t *testing.T) {
	res := convert(t, `<h1>Title</h1><p>Hello <b>bold</b></p><ol><li>one</li><li>two</li></ol>`+
		`<table><tr><td>a</td><td rowspan="2">b</td></tr><tr><td>c</td></tr></table><p><img src="`+pngURI(t, 2, 2)+`"></p>`,
		DefaultSettings())
	pkg, err := res.Package(nil)
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}
	data, err := pkg.Bytes(false)
	if err != nil {
		t.Fatal(err)
	}
	reopened, err := opc.Open(data)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if reopened.Detect() != opc.KindDocx {
		t.Errorf("package kind = %v", reopened.Detect())
	}
	for _, name := range []string{"word/document.xml", "word/styles.xml", "word/numbering.xml", "word/media/image1.png"} {
		if !reopened.Has(name) {
			t.Errorf("part %s missing", name)
		}
	}

	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller()))
	out, err := tohtml.Convert(context.Background(), reopened, tohtml.DefaultSettings(), log)
	if err != nil {
		t.Fatalf("tohtml.Convert() error = %v", err)
	}
	contains(t, out.HTML,
		`<h1 class="pt-p-heading1"><span><strong>Title</strong></span></h1>`,
		`<span>Hello </span><span><strong>bold</strong></span>`,
		`<li data-marker="1." class="pt-p-normal"><span>one</span></li><li data-marker="2." class="pt-p-normal"><span>two</span></li>`,
		`rowspan="2"`,
		`<img src="data:image/png;base64,`,
	)
	for _, w := range out.Warnings {
		switch w.Code {
		case common.CodeNumberingMissing, common.CodeImageMissing, common.CodeUnsupportedTable, common.CodeRelationshipMissing:
			t.Errorf("round trip warning: %v", w)
		}
	}
}

func TestWMLRoundTripRunFlags(t *testing.T) {
	src := wmltest.Docx{
		Body: `<w:p><w:r><w:t xml:space="preserve">plain </w:t></w:r>` +
			`<w:r><w:rPr><w:b/><w:i/></w:rPr><w:t>styled</w:t></w:r></w:p>`,
	}.Package(t)
	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller()))
	out, err := tohtml.Convert(context.Background(), src, tohtml.DefaultSettings(), log)
	if err != nil {
		t.Fatalf("tohtml.Convert() error = %v", err)
	}

	res := convert(t, out.HTML, DefaultSettings())
	body := xmlString(t, res.Body)
	contains(t, body,
		`<w:t xml:space="preserve">plain </w:t>`,
		`<w:rPr><w:b/><w:i/></w:rPr><w:t>styled</w:t>`,
	)
	if strings.Contains(body, `<w:rPr><w:b/><w:i/></w:rPr><w:t xml:space="preserve">plain`) {
		t.Errorf("flags leaked to plain run:\n%s", body)
	}
}

func TestPackageTemplate(t *testing.T) {
	styles := `<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Template Normal"/></w:style>`
	tmpl := wmltest.Docx{
		Body:      wmltest.P("old") + `<w:sectPr><w:headerReference w:type="default" r:id="rH"/><w:pgSz w:w="11906" w:h="16838"/></w:sectPr>`,
		Styles:    styles,
		Numbering: `<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>`,
		Headers:   map[string]string{"rH": wmltest.P("letterhead")},
	}.Package(t)

	res := convert(t, `<ul><li>new</li></ul>`, DefaultSettings())
	pkg, err := res.Package(tmpl)
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}
	found := false
	for _, w := range res.Warnings {
		found = found || w.Code == common.CodeWMLTemplatePartReplaced
	}
	if !found {
		t.Error("numbering replacement not reported")
	}

	warns := common.NewWarnings(nil)
	doc, err := wml.Load(context.Background(), pkg, warns, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	body := xmlString(t, doc.Body)
	contains(t, body, `<w:t>new</w:t>`, `<w:pgSz w:w="11906" w:h="16838"/>`, `r:id="rH"`)
	if strings.Contains(body, "old") {
		t.Error("template body content kept")
	}
	if doc.Headers["rH"] == nil {
		t.Error("template header lost")
	}
	if name := doc.Styles.Root.FindElement("w:style/w:name"); name == nil || name.SelectAttrValue("w:val", "") != "Template Normal" {
		t.Error("template styles replaced")
	}
	if !strings.Contains(xmlString(t, doc.Numbering.Root), `<w:abstractNum w:abstractNumId="0">`) {
		t.Error("numbering not replaced")
	}
	if len(warns.List()) != 0 {
		t.Errorf("load warnings: %v", warns.List())
	}
}

func TestPackageTemplateKeepsMedia(t *testing.T) {
	logo := []byte("template logo")
	tmpl := wmltest.Docx{
		Body:    wmltest.P("old") + `<w:sectPr><w:headerReference w:type="default" r:id="rH"/></w:sectPr>`,
		Headers: map[string]string{"rH": wmltest.P("letterhead")},
		Media:   map[string]wmltest.Media{"rLogo": {Name: "media/image1.png", Data: logo, Type: "image/png"}},
	}.Package(t)

	res := convert(t, `<p><img src="`+pngURI(t, 3, 3)+`"></p>`, DefaultSettings())
	pkg, err := res.Package(tmpl)
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}
	if data, ok := pkg.Part("word/media/image1.png"); !ok || !bytes.Equal(data, logo) {
		t.Errorf("template media overwritten")
	}

	rels, err := pkg.Relationships("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	imgs := rels.ByType(opc.RelTypeImage)
	if len(imgs) != 1 {
		t.Fatalf("image relationships = %v", imgs)
	}
	if imgs[0].Target != "media/image1-1.png" {
		t.Errorf("image target = %q", imgs[0].Target)
	}
	data, ok := pkg.Part(rels.TargetPart(imgs[0]))
	if !ok || bytes.Equal(data, logo) {
		t.Errorf("document image not stored under %s", rels.TargetPart(imgs[0]))
	}
}

func TestConvertErrors(t *testing.T) {
	if _, err := Convert(context.Background(), nil, DefaultSettings(), nil); common.ErrorCode(err) != common.CodeInvalidArgument {
		t.Errorf("nil reader error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Convert(ctx, strings.NewReader("<p>x</p>"), DefaultSettings(), nil); err == nil {
		t.Error("cancelled context accepted")
	}
}
