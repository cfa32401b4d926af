package preprocess

import (
	"testing"

	"wmlconv/common"
)

func TestReplaceText(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		r     Replacement
		want  string
		count int
	}{
		{
			name:  "across runs ignoring case",
			body:  `<w:p><w:r><w:t>Hel</w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">lo world</w:t></w:r></w:p>`,
			r:     Replacement{Search: "hello", Replace: "Bye"},
			want:  `<w:p><w:r><w:t>Bye</w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve"> world</w:t></w:r></w:p>`,
			count: 1,
		},
		{
			name:  "match case",
			body:  `<w:p><w:r><w:t>Hello hello</w:t></w:r></w:p>`,
			r:     Replacement{Search: "hello", Replace: "X", MatchCase: true},
			want:  `<w:p><w:r><w:t>Hello X</w:t></w:r></w:p>`,
			count: 1,
		},
		{
			name: "markup between runs breaks match",
			body: `<w:p><w:r><w:t>ab</w:t></w:r><w:bookmarkStart w:id="0" w:name="m"/><w:r><w:t>c</w:t></w:r></w:p>`,
			r:    Replacement{Search: "abc", Replace: "x"},
			want: `<w:p><w:r><w:t>ab</w:t></w:r><w:bookmarkStart w:id="0" w:name="m"/><w:r><w:t>c</w:t></w:r></w:p>`,
		},
		{
			name:  "other run content kept in place",
			body:  `<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:t>a</w:t><w:tab/><w:t>bb</w:t></w:r></w:p>`,
			r:     Replacement{Search: "b", Replace: "c"},
			want:  `<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:t>a</w:t></w:r><w:r><w:tab/></w:r><w:r><w:t>cc</w:t></w:r></w:p>`,
			count: 2,
		},
		{
			name:  "empty replacement",
			body:  `<w:p><w:r><w:t>xay</w:t></w:r></w:p>`,
			r:     Replacement{Search: "A"},
			want:  `<w:p><w:r><w:t>xy</w:t></w:r></w:p>`,
			count: 1,
		},
		{
			name:  "matches do not overlap",
			body:  `<w:p><w:r><w:t>aaa</w:t></w:r></w:p>`,
			r:     Replacement{Search: "aa", Replace: "b"},
			want:  `<w:p><w:r><w:t>ba</w:t></w:r></w:p>`,
			count: 1,
		},
		{
			name:  "nested paragraphs",
			body:  `<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`,
			r:     Replacement{Search: "cell", Replace: "box"},
			want:  `<w:tbl><w:tr><w:tc><w:p><w:r><w:t>box</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`,
			count: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := parseBody(t, tt.body)
			n, err := ReplaceText(root, tt.r)
			if err != nil {
				t.Fatalf("ReplaceText() error = %v", err)
			}
			if n != tt.count {
				t.Errorf("count = %d, want %d", n, tt.count)
			}
			if got := serialize(t, root); got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestReplaceText_EmptySearch(t *testing.T) {
	root := parseBody(t, `<w:p><w:r><w:t>x</w:t></w:r></w:p>`)
	if _, err := ReplaceText(root, Replacement{Replace: "y"}); common.ErrorCode(err) != common.CodeInvalidArgument {
		t.Fatalf("error = %v, want %s", err, common.CodeInvalidArgument)
	}
}
