// Package grid reconstructs dense rectangular table grid from sparse span
// and merge markers. The algorithm is generic over source node type, so WML
// and HTML tables share it.
package grid

import (
	"fmt"
	"maps"
	"slices"
)

// Merge is vertical merge marker of WML cell.
type Merge int

const (
	MergeNone Merge = iota
	MergeRestart
	MergeContinue
)

// SourceCell is explicit cell as found in the source table.
type SourceCell[T any] struct {
	Node    T
	ColSpan int   // 0 or 1 means single column
	RowSpan int   // known row count (HTML rowspan), 0 or 1 means none
	Merge   Merge // open-ended WML vertical merge
}

// Row is explicit table row. Before and After are counts of grid columns
// skipped at the start and the end of the row (w:gridBefore, w:gridAfter).
type Row[T any] struct {
	Node   T
	Cells  []SourceCell[T]
	Before int
	After  int
	Header bool
}

// Kind of grid entry.
type Kind int

const (
	KindVisible Kind = iota
	KindContinuation
	KindFiller
)

func (k Kind) String() string {
	switch k {
	case KindVisible:
		return "visible"
	case KindContinuation:
		return "continuation"
	case KindFiller:
		return "filler"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Cell is grid entry. Continuations point to the visible cell they belong
// to, fillers have no source node.
type Cell[T any] struct {
	Row     int
	Col     int
	ColSpan int
	RowSpan int
	Kind    Kind
	Origin  *Cell[T]
	Node    T
}

// GridRow is a row of the reconstructed grid, entries are ordered by column.
type GridRow[T any] struct {
	Node   T
	Header bool
	Cells  []*Cell[T]
}

// IssueKind classifies structural problems found during reconstruction.
type IssueKind int

const (
	IssueOrphanContinuation IssueKind = iota
	IssueSpanTruncated
	IssueMergeWidthMismatch
)

func (k IssueKind) String() string {
	switch k {
	case IssueOrphanContinuation:
		return "orphan-continuation"
	case IssueSpanTruncated:
		return "span-truncated"
	case IssueMergeWidthMismatch:
		return "merge-width-mismatch"
	}
	return fmt.Sprintf("IssueKind(%d)", int(k))
}

// Issue is reported for malformed merges. Reconstruction never drops content
// because of them.
type Issue struct {
	Kind IssueKind
	Row  int
	Col  int
}

func (i Issue) String() string {
	return fmt.Sprintf("%s at row %d column %d", i.Kind, i.Row, i.Col)
}

// Grid is rectangular table model.
type Grid[T any] struct {
	Rows    []GridRow[T]
	Columns int
	// column widths from table definition, may be shorter than Columns
	Widths []int
	Issues []Issue
}

type span[T any] struct {
	origin    *Cell[T]
	remaining int // -1 for open-ended merge
	width     int
	continued bool
}

type builder[T any] struct {
	g       *Grid[T]
	pending map[int]*span[T]
	row     int
	cursor  int
	cells   []*Cell[T]
}

// Build reconstructs grid. Columns is maximum of declared column count and
// the widest row, short rows are padded with fillers.
func Build[T any](rows []Row[T], declaredColumns int) *Grid[T] {
	b := &builder[T]{
		g:       &Grid[T]{Columns: declaredColumns},
		pending: make(map[int]*span[T]),
	}
	for i, r := range rows {
		b.row = i
		b.buildRow(r)
	}
	// known spans running past the last row
	for _, col := range slices.Sorted(maps.Keys(b.pending)) {
		sp := b.pending[col]
		if sp.remaining > 0 {
			sp.origin.RowSpan -= sp.remaining
			b.g.Issues = append(b.g.Issues, Issue{Kind: IssueSpanTruncated, Row: sp.origin.Row, Col: col})
		}
	}
	for i := range b.g.Rows {
		gr := &b.g.Rows[i]
		end := 0
		if n := len(gr.Cells); n > 0 {
			end = gr.Cells[n-1].Col + gr.Cells[n-1].ColSpan
		}
		if end < b.g.Columns {
			gr.Cells = append(gr.Cells, &Cell[T]{Row: i, Col: end, ColSpan: b.g.Columns - end, RowSpan: 1, Kind: KindFiller})
		}
	}
	return b.g
}

func (b *builder[T]) emit(c *Cell[T]) {
	c.Row = b.row
	c.Col = b.cursor
	b.cells = append(b.cells, c)
	b.cursor += c.ColSpan
}

func (b *builder[T]) filler(width int) {
	if width > 0 {
		b.emit(&Cell[T]{ColSpan: width, RowSpan: 1, Kind: KindFiller})
	}
}

func (b *builder[T]) continuation(sp *span[T], width int) {
	b.emit(&Cell[T]{ColSpan: width, RowSpan: 1, Kind: KindContinuation, Origin: sp.origin, Node: sp.origin.Node})
}

// emitKnown consumes known-count spans sitting exactly at the cursor.
func (b *builder[T]) emitKnown() {
	for {
		sp, ok := b.pending[b.cursor]
		if !ok || sp.remaining <= 0 {
			return
		}
		col := b.cursor
		b.continuation(sp, sp.width)
		if sp.remaining--; sp.remaining == 0 {
			delete(b.pending, col)
		}
	}
}

// closeOverlapping removes pending spans covering [from, to).
func (b *builder[T]) closeOverlapping(from, to int) {
	for col, sp := range b.pending {
		if col < to && col+sp.width > from {
			if sp.remaining > 0 {
				sp.origin.RowSpan -= sp.remaining
				b.g.Issues = append(b.g.Issues, Issue{Kind: IssueSpanTruncated, Row: b.row, Col: col})
			}
			delete(b.pending, col)
		}
	}
}

func (b *builder[T]) buildRow(r Row[T]) {
	b.cursor = 0
	b.cells = nil
	for _, sp := range b.pending {
		sp.continued = false
	}

	b.emitKnown()
	if r.Before > 0 {
		b.closeOverlapping(b.cursor, b.cursor+r.Before)
		b.filler(r.Before)
	}

	for _, sc := range r.Cells {
		b.emitKnown()
		width := max(sc.ColSpan, 1)

		if sc.Merge == MergeContinue {
			if sp, ok := b.pending[b.cursor]; ok && sp.remaining < 0 {
				sp.origin.RowSpan++
				sp.continued = true
				if width != sp.width {
					b.g.Issues = append(b.g.Issues, Issue{Kind: IssueMergeWidthMismatch, Row: b.row, Col: b.cursor})
				}
				b.continuation(sp, sp.width)
				if rest := width - sp.width; rest > 0 {
					// columns of continuing cell outside of the merge stay empty
					b.closeOverlapping(b.cursor, b.cursor+rest)
					b.filler(rest)
				}
				continue
			}
			b.g.Issues = append(b.g.Issues, Issue{Kind: IssueOrphanContinuation, Row: b.row, Col: b.cursor})
		}

		b.closeOverlapping(b.cursor, b.cursor+width)
		c := &Cell[T]{ColSpan: width, RowSpan: 1, Kind: KindVisible, Node: sc.Node}
		col := b.cursor
		b.emit(c)
		switch {
		case sc.Merge == MergeRestart:
			b.pending[col] = &span[T]{origin: c, remaining: -1, width: width, continued: true}
		case sc.RowSpan > 1:
			c.RowSpan = sc.RowSpan
			b.pending[col] = &span[T]{origin: c, remaining: sc.RowSpan - 1, width: width, continued: true}
		}
	}

	// flush known spans at or beyond the cursor
	for _, col := range slices.Sorted(maps.Keys(b.pending)) {
		sp, ok := b.pending[col]
		if !ok || col < b.cursor || sp.remaining <= 0 {
			continue
		}
		b.filler(col - b.cursor)
		b.emitKnown()
	}

	if r.After > 0 {
		b.closeOverlapping(b.cursor, b.cursor+r.After)
		b.filler(r.After)
	}

	// open-ended merges end on the first row which does not continue them
	for col, sp := range b.pending {
		if sp.remaining < 0 && !sp.continued {
			delete(b.pending, col)
		}
	}

	b.g.Columns = max(b.g.Columns, b.cursor)
	b.g.Rows = append(b.g.Rows, GridRow[T]{Node: r.Node, Header: r.Header, Cells: b.cells})
}

// Validate checks that entries of every row partition [0, Columns) without
// gaps or overlaps and continuations reference visible origin cells.
func (g *Grid[T]) Validate() error {
	for i, r := range g.Rows {
		next := 0
		for _, c := range r.Cells {
			if c.Col != next {
				return fmt.Errorf("row %d: entry at column %d, expected %d", i, c.Col, next)
			}
			if c.ColSpan < 1 {
				return fmt.Errorf("row %d: entry at column %d has span %d", i, c.Col, c.ColSpan)
			}
			if c.Kind == KindContinuation && (c.Origin == nil || c.Origin.Kind != KindVisible) {
				return fmt.Errorf("row %d: continuation at column %d has no visible origin", i, c.Col)
			}
			next += c.ColSpan
		}
		if next != g.Columns {
			return fmt.Errorf("row %d: covers %d columns of %d", i, next, g.Columns)
		}
	}
	return nil
}

// HeaderRows returns number of leading rows flagged as header. The first
// non header row ends the group.
func (g *Grid[T]) HeaderRows() int {
	n := 0
	for _, r := range g.Rows {
		if !r.Header {
			break
		}
		n++
	}
	return n
}

// Visible returns visible cells of the row.
func (r GridRow[T]) Visible() []*Cell[T] {
	var res []*Cell[T]
	for _, c := range r.Cells {
		if c.Kind == KindVisible {
			res = append(res, c)
		}
	}
	return res
}
