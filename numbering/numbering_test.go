package numbering

import (
	"strings"
	"testing"

	"github.com/beevik/etree"

	"wmlconv/wml/wmltest"
)

const numberingXML = `
<w:abstractNum w:abstractNumId="0">
  <w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="decimal"/><w:lvlText w:val="%1."/></w:lvl>
  <w:lvl w:ilvl="1"><w:start w:val="1"/><w:numFmt w:val="lowerLetter"/><w:lvlText w:val="%1.%2)"/><w:lvlJc w:val="right"/></w:lvl>
</w:abstractNum>
<w:abstractNum w:abstractNumId="1">
  <w:lvl w:ilvl="0"><w:numFmt w:val="bullet"/><w:lvlText w:val="•"/></w:lvl>
</w:abstractNum>
<w:abstractNum w:abstractNumId="2">
  <w:lvl w:ilvl="0"><w:numFmt w:val="chicago"/><w:lvlText w:val="%1"/></w:lvl>
  <w:lvl w:ilvl="1"><w:lvlText w:val="%2"/></w:lvl>
</w:abstractNum>
<w:abstractNum w:abstractNumId="3"><w:styleLink w:val="MyList"/>
  <w:lvl w:ilvl="0"><w:numFmt w:val="upperRoman"/><w:lvlText w:val="%1"/></w:lvl>
</w:abstractNum>
<w:abstractNum w:abstractNumId="4"><w:numStyleLink w:val="MyList"/></w:abstractNum>
<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>
<w:num w:numId="2"><w:abstractNumId w:val="0"/><w:lvlOverride w:ilvl="0"><w:startOverride w:val="5"/></w:lvlOverride></w:num>
<w:num w:numId="3"><w:abstractNumId w:val="1"/></w:num>
<w:num w:numId="4"><w:abstractNumId w:val="2"/></w:num>
<w:num w:numId="5"><w:abstractNumId w:val="4"/></w:num>
<w:num w:numId="7"><w:abstractNumId w:val="0"/><w:lvlOverride w:ilvl="1000000000"><w:startOverride w:val="2"/></w:lvlOverride></w:num>
<w:num w:numId="6"><w:abstractNumId w:val="1"/>
  <w:lvlOverride w:ilvl="0"><w:lvl w:ilvl="0"><w:start w:val="3"/><w:numFmt w:val="upperLetter"/><w:lvlText w:val="%1:"/></w:lvl></w:lvlOverride>
</w:num>
`

func definitions(t *testing.T) *Definitions {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(wmltest.Wrap("numbering", numberingXML)); err != nil {
		t.Fatal(err)
	}
	return Parse(doc.Root())
}

func TestLevel(t *testing.T) {
	d := definitions(t)
	tests := []struct {
		name      string
		numID     int
		ilvl      int
		ok        bool
		format    string
		text      string
		start     int
		ordered   bool
		listType  string
		supported bool
	}{
		{"decimal", 1, 0, true, "decimal", "%1.", 1, true, "1", true},
		{"nested letter", 1, 1, true, "lowerLetter", "%1.%2)", 1, true, "a", true},
		{"start override", 2, 0, true, "decimal", "%1.", 5, true, "1", true},
		{"override keeps other levels", 2, 1, true, "lowerLetter", "%1.%2)", 1, true, "a", true},
		{"bullet", 3, 0, true, "bullet", "•", 1, false, "1", true},
		{"unknown format", 4, 0, true, "chicago", "%1", 1, true, "1", false},
		{"missing format", 4, 1, true, "decimal", "%2", 1, true, "1", true},
		{"style link", 5, 0, true, "upperRoman", "%1", 1, true, "I", true},
		{"level override", 6, 0, true, "upperLetter", "%1:", 3, true, "A", true},
		{"unknown num", 42, 0, false, "", "", 0, false, "", false},
		{"unknown level", 3, 4, false, "", "", 0, false, "", false},
		{"level beyond range", 7, 1000000000, false, "", "", 0, false, "", false},
		{"negative level", 1, -1, false, "", "", 0, false, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lvl, ok := d.Level(tt.numID, tt.ilvl)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if lvl.Format != tt.format || lvl.Text != tt.text || lvl.Start != tt.start {
				t.Errorf("level = %+v", lvl)
			}
			if lvl.Ordered() != tt.ordered || lvl.ListType() != tt.listType || lvl.Supported() != tt.supported {
				t.Errorf("ordered=%v type=%q supported=%v", lvl.Ordered(), lvl.ListType(), lvl.Supported())
			}
		})
	}
	if lvl, _ := d.Level(1, 1); lvl.Justification != "right" {
		t.Errorf("justification = %q", lvl.Justification)
	}
	if Parse(nil).Has(1) {
		t.Error("empty definitions must have nothing")
	}
}

func TestStackSiblingLists(t *testing.T) {
	s := NewStack()
	var got []int
	for range 3 {
		got = append(got, s.Enter(2, 0, 5).Counter)
	}
	tr := s.Enter(1, 0, 1)
	if tr.Closed != 1 || tr.Opened != 1 {
		t.Errorf("switching list at same depth = %+v", tr)
	}
	got = append(got, tr.Counter)
	for range 2 {
		got = append(got, s.Enter(1, 0, 1).Counter)
	}
	want := []int{5, 6, 7, 1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("counters = %v, want %v", got, want)
		}
	}
}

func TestStackNesting(t *testing.T) {
	s := NewStack()
	steps := []struct {
		ilvl    int
		counter int
		closed  int
		opened  int
	}{
		{0, 1, 0, 1},
		{1, 1, 0, 1},
		{1, 2, 0, 0},
		{0, 2, 1, 0},
		{1, 1, 0, 1}, // restarted after higher level item
		{2, 1, 0, 1},
		{0, 3, 2, 0},
	}
	for i, st := range steps {
		tr := s.Enter(1, st.ilvl, 1)
		if tr.Counter != st.counter || tr.Closed != st.closed || tr.Opened != st.opened {
			t.Fatalf("step %d: %+v, want counter=%d closed=%d opened=%d", i, tr, st.counter, st.closed, st.opened)
		}
	}
	if s.Depth() != 1 {
		t.Errorf("depth = %d", s.Depth())
	}
	if n := s.Reset(); n != 1 || s.Depth() != 0 {
		t.Errorf("reset closed %d", n)
	}
	// closed levels are discarded, reopened list starts over
	if tr := s.Enter(1, 0, 1); tr.Counter != 1 || tr.Opened != 1 {
		t.Errorf("reopened = %+v", tr)
	}
	s.Enter(1, 0, 1)
	s.Enter(1, 1, 1)
	if got := s.Counters(1, 2, func(int) int { return 7 }); got[0] != 2 || got[1] != 1 || got[2] != 7 {
		t.Errorf("counters = %v", got)
	}
	if got := s.Counters(1, 1_000_000_000, nil); len(got) != MaxLevel+1 {
		t.Errorf("counters not clamped, len = %d", len(got))
	}
}

func TestStackInterleavedLists(t *testing.T) {
	s := NewStack()
	var got []int
	got = append(got, s.Enter(2, 0, 1).Counter, s.Enter(2, 0, 1).Counter)
	s.Reset() // ordinary paragraph
	got = append(got, s.Enter(2, 0, 1).Counter)
	got = append(got, s.Enter(1, 0, 1).Counter)
	got = append(got, s.Enter(2, 0, 1).Counter)
	want := []int{1, 2, 1, 1, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("counters = %v, want %v", got, want)
		}
	}
}

func TestMarkerText(t *testing.T) {
	tests := []struct {
		text     string
		counters []int
		formats  []string
		want     string
	}{
		{"%1.", []int{3}, []string{"decimal"}, "3."},
		{"%1.%2)", []int{2, 3}, []string{"decimal", "lowerLetter"}, "2.c)"},
		{"(%1)", []int{14}, []string{"lowerRoman"}, "(xiv)"},
		{"%1", []int{28}, []string{"upperLetter"}, "BB"},
		{"%1", []int{7}, []string{"decimalZero"}, "07"},
		{"%1", []int{12}, []string{"ordinal"}, "12th"},
		{"%1 %3", []int{1}, []string{"decimal"}, "1 "},
		{"•", []int{1}, []string{"bullet"}, "•"},
		{"100%", []int{1}, nil, "100%"},
	}
	for _, tt := range tests {
		if got := MarkerText(tt.text, tt.counters, tt.formats, nil); got != tt.want {
			t.Errorf("MarkerText(%q, %v) = %q, want %q", tt.text, tt.counters, got, tt.want)
		}
	}
}

func TestMarkers(t *testing.T) {
	upper := func(_ string, n int, _ string) string { return strings.Repeat("I", n) }
	m := NewMarkers(map[string]MarkerFunc{"de": upper, "not a tag!": upper})

	tests := []struct {
		lang string
		ok   bool
		want string
	}{
		{"", true, "c"},
		{"en-GB", true, "c"},
		{"ru-RU", true, "в"},
		{"de-AT", true, "III"},
		{"fr-FR", false, "c"},
		{"??", false, "c"},
	}
	for _, tt := range tests {
		fn, ok := m.Lookup(tt.lang)
		if ok != tt.ok {
			t.Errorf("Lookup(%q) ok = %v", tt.lang, ok)
		}
		if got := fn("%1", 3, "lowerLetter"); got != tt.want {
			t.Errorf("Lookup(%q) marker = %q, want %q", tt.lang, got, tt.want)
		}
	}
}
