package model

import "strings"

// Element is the interface for all positioned page elements.
type Element interface {
	Bounds() BBox
	SetBounds(BBox)
}

// TextElement is an interface for elements carrying text.
type TextElement interface {
	Element
	Text() string
}

// Char represents a single positioned character.
type Char struct {
	BBox     BBox
	Value    string
	FontName string
	FontSize float64
	Upright  bool
}

func (c *Char) Bounds() BBox     { return c.BBox }
func (c *Char) SetBounds(b BBox) { c.BBox = b }
func (c *Char) Text() string     { return c.Value }

// TextLine represents a horizontal run of characters.
type TextLine struct {
	BBox  BBox
	Chars []*Char
}

func (l *TextLine) Bounds() BBox     { return l.BBox }
func (l *TextLine) SetBounds(b BBox) { l.BBox = b }

// Text concatenates the characters of the line.
func (l *TextLine) Text() string {
	var sb strings.Builder
	for _, c := range l.Chars {
		sb.WriteString(c.Value)
	}
	return sb.String()
}

// RecomputeBounds sets the line's box to the union of its characters.
// A line with no characters keeps its current box.
func (l *TextLine) RecomputeBounds() {
	if len(l.Chars) == 0 {
		return
	}
	b := l.Chars[0].BBox
	for _, c := range l.Chars[1:] {
		b = b.Union(c.BBox)
	}
	l.BBox = b
}

// Clone returns a deep copy of the line.
func (l *TextLine) Clone() *TextLine {
	out := &TextLine{BBox: l.BBox, Chars: make([]*Char, len(l.Chars))}
	for i, c := range l.Chars {
		cc := *c
		out.Chars[i] = &cc
	}
	return out
}

// TextBlock represents a group of text lines produced by the upstream
// layout analyzer. TitleLevel is [BodyLevel] for body text and >= 0 once
// the block has been classified as a title, zero being the most
// prominent level.
type TextBlock struct {
	BBox       BBox
	Lines      []*TextLine
	Font       *FontSignature
	TitleLevel int
}

// NewTextBlock creates an empty text block with body-text classification.
func NewTextBlock() *TextBlock {
	return &TextBlock{TitleLevel: BodyLevel}
}

// BodyLevel is the TitleLevel of ordinary body text.
const BodyLevel = -1

func (t *TextBlock) Bounds() BBox     { return t.BBox }
func (t *TextBlock) SetBounds(b BBox) { t.BBox = b }

// Text concatenates the block's lines, separated by newlines.
func (t *TextBlock) Text() string {
	parts := make([]string, len(t.Lines))
	for i, l := range t.Lines {
		parts[i] = l.Text()
	}
	return strings.Join(parts, "\n")
}

// IsTitle reports whether the block has been classified as a title.
func (t *TextBlock) IsTitle() bool { return t.TitleLevel > BodyLevel }

// RecomputeBounds sets the block's box to the union of its lines.
// A block with no lines keeps its current box.
func (t *TextBlock) RecomputeBounds() {
	if len(t.Lines) == 0 {
		return
	}
	b := t.Lines[0].BBox
	for _, l := range t.Lines[1:] {
		b = b.Union(l.BBox)
	}
	t.BBox = b
}

// Clone returns a deep copy of the block.
func (t *TextBlock) Clone() *TextBlock {
	out := &TextBlock{BBox: t.BBox, TitleLevel: t.TitleLevel, Lines: make([]*TextLine, len(t.Lines))}
	if t.Font != nil {
		f := *t.Font
		out.Font = &f
	}
	for i, l := range t.Lines {
		out.Lines[i] = l.Clone()
	}
	return out
}

// Rule represents a line or thin rectangle drawing primitive. Tables are
// drawn as collections of rules; underlines are rules near text baselines.
type Rule struct {
	BBox BBox
}

func (r *Rule) Bounds() BBox     { return r.BBox }
func (r *Rule) SetBounds(b BBox) { r.BBox = b }

// Horizontal reports whether the rule is wider than tall.
func (r *Rule) Horizontal() bool { return r.BBox.Width() >= r.BBox.Height() }

// Vertical reports whether the rule is taller than wide.
func (r *Rule) Vertical() bool { return r.BBox.Height() > r.BBox.Width() }

// Table represents a detected table region. Elements holds the rules and
// text absorbed into the region; Grid is populated only when an external
// cell extractor contributed structured cells.
type Table struct {
	BBox     BBox
	Elements []Element
	Grid     *Grid
}

func (t *Table) Bounds() BBox     { return t.BBox }
func (t *Table) SetBounds(b BBox) { t.BBox = b }

// RecomputeBounds sets the table's box to the union of its elements.
// A table with no elements keeps its current box.
func (t *Table) RecomputeBounds() {
	if len(t.Elements) == 0 {
		return
	}
	b := t.Elements[0].Bounds()
	for _, e := range t.Elements[1:] {
		b = b.Union(e.Bounds())
	}
	t.BBox = b
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{BBox: t.BBox, Elements: make([]Element, len(t.Elements))}
	for i, e := range t.Elements {
		out.Elements[i] = CloneElement(e)
	}
	if t.Grid != nil {
		out.Grid = t.Grid.Clone()
	}
	return out
}

// Grid holds the structured cell content of a table, rows of cell texts.
type Grid struct {
	BBox BBox
	Rows [][]string
}

// Columns returns the number of columns in the widest row.
func (g *Grid) Columns() int {
	max := 0
	for _, row := range g.Rows {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	out := &Grid{BBox: g.BBox, Rows: make([][]string, len(g.Rows))}
	for i, row := range g.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// CloneElement deep-copies any element variant.
func CloneElement(e Element) Element {
	switch v := e.(type) {
	case *TextBlock:
		return v.Clone()
	case *TextLine:
		return v.Clone()
	case *Char:
		c := *v
		return &c
	case *Rule:
		r := *v
		return &r
	case *Table:
		return v.Clone()
	default:
		return e
	}
}
