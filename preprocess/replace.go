package preprocess

import (
	"strings"
	"unicode"

	"github.com/beevik/etree"

	"wmlconv/common"
	"wmlconv/wml"
)

// Replacement is text substitution inside paragraphs, matches may span
// runs.
type Replacement struct {
	Search    string
	Replace   string
	MatchCase bool
}

// Validate rejects replacement which cannot match anything.
func (r Replacement) Validate() error {
	if r.Search == "" {
		return common.NewError(common.CodeInvalidArgument, nil, "search text must not be empty")
	}
	return nil
}

// piece is a single character of run text or a node which breaks matching.
type piece struct {
	node  etree.Token
	space string // namespace prefix of the source run
	rPr   *etree.Element
	char  rune
	text  bool
}

// ReplaceText substitutes every non-overlapping occurrence of r.Search in
// paragraphs under root. Only runs which are direct children of a paragraph
// take part. Replacement text gets properties of the run where match
// starts, adjacent runs with identical properties are merged afterwards.
// Returns number of replacements.
func ReplaceText(root *etree.Element, r Replacement) (int, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	search := []rune(r.Search)
	if !r.MatchCase {
		for i := range search {
			search[i] = unicode.ToUpper(search[i])
		}
	}
	total := 0
	Apply(root, func(el *etree.Element) Action {
		if wml.Is(el, "p") {
			total += replaceInParagraph(el, search, r)
		}
		return Keep{}
	})
	return total, nil
}

func replaceInParagraph(p *etree.Element, search []rune, r Replacement) int {
	pieces := splitParagraph(p)

	var out []piece
	count := 0
	for i := 0; i < len(pieces); {
		if !matchAt(pieces, i, search, r.MatchCase) {
			out = append(out, pieces[i])
			i++
			continue
		}
		for _, ch := range r.Replace {
			out = append(out, piece{space: pieces[i].space, rPr: pieces[i].rPr, char: ch, text: true})
		}
		i += len(search)
		count++
	}
	if count == 0 {
		return 0
	}

	for len(p.Child) > 0 {
		p.RemoveChildAt(0)
	}
	for _, t := range joinPieces(out) {
		p.AddChild(t)
	}
	return count
}

func matchAt(pieces []piece, at int, search []rune, matchCase bool) bool {
	if at+len(search) > len(pieces) {
		return false
	}
	for j, want := range search {
		pc := pieces[at+j]
		if !pc.text {
			return false
		}
		got := pc.char
		if !matchCase {
			got = unicode.ToUpper(got)
		}
		if got != want {
			return false
		}
	}
	return true
}

// splitParagraph breaks runs into single characters, run content other than
// text becomes a run of its own.
func splitParagraph(p *etree.Element) []piece {
	var res []piece
	for _, tok := range p.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			if strings.TrimSpace(t.Data) == "" {
				continue
			}
		case *etree.Element:
			if wml.Is(t, "r") {
				res = append(res, splitRun(t)...)
				continue
			}
		}
		res = append(res, piece{node: tok})
	}
	return res
}

func splitRun(run *etree.Element) []piece {
	rPr := wml.Child(run, "rPr")
	var res []piece
	for _, ch := range run.ChildElements() {
		switch {
		case wml.Is(ch, "rPr"):
		case wml.Is(ch, "t"):
			for _, c := range ch.Text() {
				res = append(res, piece{space: run.Space, rPr: rPr, char: c, text: true})
			}
		default:
			r := newRun(run.Space, rPr)
			r.AddChild(ch.Copy())
			res = append(res, piece{node: r})
		}
	}
	return res
}

func newRun(space string, rPr *etree.Element) *etree.Element {
	r := etree.NewElement("r")
	r.Space = space
	if rPr != nil {
		r.AddChild(rPr.Copy())
	}
	return r
}

// joinPieces merges consecutive characters sharing run properties into
// text runs.
func joinPieces(pieces []piece) []etree.Token {
	keys := make(map[*etree.Element]string)
	key := func(rPr *etree.Element) string {
		k, ok := keys[rPr]
		if !ok {
			k = propsKey(rPr)
			keys[rPr] = k
		}
		return k
	}
	var res []etree.Token
	for i := 0; i < len(pieces); {
		if !pieces[i].text {
			res = append(res, pieces[i].node)
			i++
			continue
		}
		first := pieces[i]
		k := key(first.rPr)
		var sb strings.Builder
		for ; i < len(pieces) && pieces[i].text && key(pieces[i].rPr) == k; i++ {
			sb.WriteRune(pieces[i].char)
		}
		res = append(res, textRun(first.space, first.rPr, sb.String()))
	}
	return res
}

func textRun(space string, rPr *etree.Element, text string) *etree.Element {
	r := newRun(space, rPr)
	t := r.CreateElement("t")
	t.Space = space
	if strings.TrimSpace(text) != text || strings.Contains(text, "  ") {
		t.CreateAttr("xml:space", "preserve")
	}
	t.SetText(text)
	return r
}

// propsKey is serialized form of run properties, equal properties give
// equal keys.
func propsKey(rPr *etree.Element) string {
	if rPr == nil {
		return ""
	}
	doc := etree.NewDocument()
	doc.SetRoot(rPr.Copy())
	s, err := doc.WriteToString()
	if err != nil {
		return ""
	}
	return s
}
