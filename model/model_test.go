package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
)

// ============================================================================
// BBox Tests
// ============================================================================

func TestNewBBoxNormalizesCorners(t *testing.T) {
	tests := []struct {
		name string
		in   [4]float64
		want BBox
	}{
		{"ordered", [4]float64{10, 20, 100, 50}, BBox{10, 20, 100, 50}},
		{"reversed x", [4]float64{100, 20, 10, 50}, BBox{10, 20, 100, 50}},
		{"reversed y", [4]float64{10, 50, 100, 20}, BBox{10, 20, 100, 50}},
		{"degenerate", [4]float64{10, 10, 10, 10}, BBox{10, 10, 10, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewBBox(tt.in[0], tt.in[1], tt.in[2], tt.in[3])
			if got != tt.want {
				t.Errorf("NewBBox() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBBoxApproxEqual(t *testing.T) {
	base := BBox{10, 10, 100, 20}

	tests := []struct {
		name     string
		other    BBox
		tol      float64
		expected bool
	}{
		{"identical", BBox{10, 10, 100, 20}, 0, true},
		{"within tolerance", BBox{12, 8, 102, 22}, 3, true},
		{"one coord out", BBox{10, 10, 104, 20}, 3, false},
		{"strict position", BBox{10.05, 10, 100, 20}, 0.1, true},
		{"strict position out", BBox{10.2, 10, 100, 20}, 0.1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.ApproxEqual(tt.other, tt.tol); got != tt.expected {
				t.Errorf("ApproxEqual(%+v, %v) = %v, want %v", tt.other, tt.tol, got, tt.expected)
			}
		})
	}
}

func TestBBoxOverlaps(t *testing.T) {
	base := BBox{0, 0, 100, 100}

	tests := []struct {
		name     string
		other    BBox
		tol      float64
		expected bool
	}{
		{"overlapping", BBox{50, 50, 150, 150}, 0, true},
		{"touching edges", BBox{100, 0, 200, 100}, 0, true},
		{"contained", BBox{25, 25, 75, 75}, 0, true},
		{"disjoint", BBox{150, 150, 200, 200}, 0, false},
		{"near miss within tolerance", BBox{100.5, 0, 200, 100}, 1, true},
		{"near miss beyond tolerance", BBox{102, 0, 200, 100}, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other, tt.tol); got != tt.expected {
				t.Errorf("Overlaps(%+v, %v) = %v, want %v", tt.other, tt.tol, got, tt.expected)
			}
		})
	}
}

func TestBBoxTouches(t *testing.T) {
	tests := []struct {
		name     string
		a, b     BBox
		expected bool
	}{
		{"vertical stack same x-extent", BBox{0, 0, 100, 10}, BBox{0, 10, 100, 20}, true},
		{"horizontal run same y-extent", BBox{0, 0, 50, 10}, BBox{50, 0, 100, 10}, true},
		{"gap between", BBox{0, 0, 50, 10}, BBox{51, 0, 100, 10}, false},
		{"different extent", BBox{0, 0, 50, 10}, BBox{50, 0, 100, 12}, false},
		{"overlapping not touching", BBox{0, 0, 60, 10}, BBox{50, 0, 100, 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Touches(tt.b); got != tt.expected {
				t.Errorf("Touches() = %v, want %v", got, tt.expected)
			}
			if got := tt.b.Touches(tt.a); got != tt.expected {
				t.Errorf("Touches() reversed = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBBoxContainsAndWithin(t *testing.T) {
	outer := BBox{0, 0, 100, 100}

	if !outer.Contains(BBox{0, 0, 100, 100}) {
		t.Error("Contains() should include the boundary")
	}
	if outer.Within(outer) {
		t.Error("Within() is strict; a box is not within itself")
	}
	if !(BBox{10, 10, 90, 90}).Within(outer) {
		t.Error("strictly interior box should be Within")
	}
	if (BBox{0, 10, 90, 90}).Within(outer) {
		t.Error("box sharing an edge should not be Within")
	}
}

func TestBBoxOverlapLengths(t *testing.T) {
	a := BBox{0, 0, 100, 50}
	b := BBox{60, 40, 160, 90}

	if got := a.HOverlap(b); got != 40 {
		t.Errorf("HOverlap() = %v, want 40", got)
	}
	if got := a.VOverlap(b); got != 10 {
		t.Errorf("VOverlap() = %v, want 10", got)
	}
	if got := a.HOverlap(BBox{200, 0, 300, 50}); got != 0 {
		t.Errorf("disjoint HOverlap() = %v, want 0", got)
	}
}

func TestBBoxDistance(t *testing.T) {
	a := BBox{0, 0, 10, 10}

	if got := a.Distance(BBox{5, 5, 15, 15}); got != 0 {
		t.Errorf("overlapping Distance() = %v, want 0", got)
	}
	if got := a.Distance(BBox{13, 0, 20, 10}); got != 3 {
		t.Errorf("horizontal gap Distance() = %v, want 3", got)
	}
	if got := a.Distance(BBox{13, 14, 20, 20}); math.Abs(got-5) > 0.0001 {
		t.Errorf("diagonal gap Distance() = %v, want 5", got)
	}
}

func TestBBoxVDistance(t *testing.T) {
	a := BBox{0, 20, 100, 30}

	if got := a.VDistance(BBox{0, 0, 100, 15}); got != 5 {
		t.Errorf("VDistance() below = %v, want 5", got)
	}
	if got := a.VDistance(BBox{0, 33, 100, 40}); got != 3 {
		t.Errorf("VDistance() above = %v, want 3", got)
	}
	if got := a.VDistance(BBox{0, 25, 100, 40}); got != 0 {
		t.Errorf("VDistance() overlapping = %v, want 0", got)
	}
}

// ============================================================================
// Element Tests
// ============================================================================

func makeLine(x0, y0, x1, y1 float64, text string) *TextLine {
	line := &TextLine{BBox: NewBBox(x0, y0, x1, y1)}
	if text == "" {
		return line
	}
	step := (x1 - x0) / float64(len(text))
	for i, r := range text {
		cx := x0 + float64(i)*step
		line.Chars = append(line.Chars, &Char{
			BBox:     NewBBox(cx, y0, cx+step, y1),
			Value:    string(r),
			FontSize: y1 - y0,
			Upright:  true,
		})
	}
	return line
}

func TestTextBlockText(t *testing.T) {
	tb := NewTextBlock()
	tb.Lines = append(tb.Lines, makeLine(0, 20, 50, 30, "hello"), makeLine(0, 5, 50, 15, "world"))
	tb.RecomputeBounds()

	if got := tb.Text(); got != "hello\nworld" {
		t.Errorf("Text() = %q, want %q", got, "hello\nworld")
	}
	if tb.TitleLevel != BodyLevel {
		t.Errorf("new block TitleLevel = %d, want %d", tb.TitleLevel, BodyLevel)
	}
	if tb.IsTitle() {
		t.Error("new block should not be a title")
	}
}

func TestRecomputeBoundsIsUnionOfChildren(t *testing.T) {
	tb := NewTextBlock()
	tb.BBox = NewBBox(0, 0, 1, 1)
	tb.Lines = append(tb.Lines, makeLine(10, 40, 110, 52, "abc"), makeLine(5, 20, 90, 32, "de"))
	tb.RecomputeBounds()

	want := BBox{5, 20, 110, 52}
	if tb.BBox != want {
		t.Errorf("RecomputeBounds() = %+v, want %+v", tb.BBox, want)
	}

	// Removing a line shrinks the box again.
	tb.Lines = tb.Lines[:1]
	tb.RecomputeBounds()
	if tb.BBox != (BBox{10, 40, 110, 52}) {
		t.Errorf("after removal bounds = %+v", tb.BBox)
	}

	// An emptied block keeps its last box.
	tb.Lines = nil
	tb.RecomputeBounds()
	if tb.BBox != (BBox{10, 40, 110, 52}) {
		t.Errorf("empty block bounds changed to %+v", tb.BBox)
	}
}

func TestRuleOrientation(t *testing.T) {
	h := &Rule{BBox: NewBBox(0, 10, 200, 11)}
	v := &Rule{BBox: NewBBox(10, 0, 11, 200)}

	if !h.Horizontal() || h.Vertical() {
		t.Error("wide rule should be horizontal")
	}
	if !v.Vertical() || v.Horizontal() {
		t.Error("tall rule should be vertical")
	}
}

func TestTableRecomputeBounds(t *testing.T) {
	table := &Table{}
	table.Elements = append(table.Elements,
		&Rule{BBox: NewBBox(10, 10, 110, 11)},
		&Rule{BBox: NewBBox(10, 10, 11, 60)},
	)
	table.RecomputeBounds()

	if table.BBox != (BBox{10, 10, 110, 60}) {
		t.Errorf("table bounds = %+v, want {10 10 110 60}", table.BBox)
	}
}

func TestGridColumns(t *testing.T) {
	g := &Grid{Rows: [][]string{{"a", "b"}, {"c", "d", "e"}, {"f"}}}
	if g.Columns() != 3 {
		t.Errorf("Columns() = %d, want 3", g.Columns())
	}
}

// ============================================================================
// Page Tests
// ============================================================================

func TestPageAccessors(t *testing.T) {
	p := NewPage(1, 612, 792)
	tb := NewTextBlock()
	tb.Lines = append(tb.Lines, makeLine(10, 700, 100, 712, "text"))
	p.AddElement(tb)
	p.AddElement(&Rule{BBox: NewBBox(0, 500, 600, 501)})
	p.AddElement(&Table{BBox: NewBBox(0, 100, 300, 400)})

	if len(p.TextBlocks()) != 1 {
		t.Errorf("TextBlocks() = %d, want 1", len(p.TextBlocks()))
	}
	if len(p.Rules()) != 1 {
		t.Errorf("Rules() = %d, want 1", len(p.Rules()))
	}
	if len(p.Tables()) != 1 {
		t.Errorf("Tables() = %d, want 1", len(p.Tables()))
	}
	if p.Empty() {
		t.Error("page with elements should not be Empty")
	}
}

func TestPageCloneIsDeep(t *testing.T) {
	p := NewPage(1, 612, 792)
	tb := NewTextBlock()
	tb.Lines = append(tb.Lines, makeLine(10, 700, 100, 712, "orig"))
	tb.RecomputeBounds()
	p.AddElement(tb)

	clone := p.Clone()
	clone.TextBlocks()[0].Lines[0].Chars[0].Value = "X"
	clone.TextBlocks()[0].SetBounds(NewBBox(0, 0, 1, 1))

	if tb.Lines[0].Chars[0].Value != "o" {
		t.Error("mutating clone characters changed the original")
	}
	if tb.BBox == (BBox{0, 0, 1, 1}) {
		t.Error("mutating clone bounds changed the original")
	}
}

func TestClonePages(t *testing.T) {
	pages := []*Page{NewPage(1, 612, 792), NewPage(2, 612, 792)}
	pages[0].AddElement(&Rule{BBox: NewBBox(0, 0, 10, 1)})

	cloned := ClonePages(pages)
	cloned[0].Elements = nil

	if len(pages[0].Elements) != 1 {
		t.Error("clearing cloned page elements changed the original")
	}
}

// ============================================================================
// Font Tests
// ============================================================================

func TestFontSignatureSimilarText(t *testing.T) {
	base := FontSignature{Size: 12, Bold: true, Align: 56}

	tests := []struct {
		name     string
		other    FontSignature
		expected bool
	}{
		{"alignment differs only", FontSignature{Size: 12, Bold: true, Align: 120}, true},
		{"separator differs only", FontSignature{Size: 12, Bold: true, Align: 56, SepInTitle: true}, true},
		{"size differs", FontSignature{Size: 14, Bold: true, Align: 56}, false},
		{"bold differs", FontSignature{Size: 12, Align: 56}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.SimilarText(tt.other); got != tt.expected {
				t.Errorf("SimilarText(%+v) = %v, want %v", tt.other, got, tt.expected)
			}
		})
	}
}

func TestFontSignatureSmallerThan(t *testing.T) {
	tests := []struct {
		name     string
		a, b     FontSignature
		expected bool
	}{
		{"smaller size", FontSignature{Size: 10}, FontSignature{Size: 12}, true},
		{"larger size", FontSignature{Size: 14}, FontSignature{Size: 12}, false},
		{"same size less emphasis", FontSignature{Size: 12}, FontSignature{Size: 12, Bold: true}, true},
		{"same size same emphasis", FontSignature{Size: 12, Bold: true}, FontSignature{Size: 12, AllCaps: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.SmallerThan(tt.b); got != tt.expected {
				t.Errorf("SmallerThan() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTableFontIsComparable(t *testing.T) {
	counts := map[FontSignature]int{}
	counts[TableFont()]++
	counts[TableFont()]++
	if counts[TableFont()] != 2 {
		t.Error("TableFont() should map to a single key")
	}
}

// ============================================================================
// Document Output Tests
// ============================================================================

func sampleDocument() *Document {
	doc := NewDocument("report")
	doc.Append(Title{Page: 1, Level: 1, Text: "Introduction"})
	doc.Append(Paragraph{Page: 1, Text: "Opening words."})
	doc.Append(Title{Page: 2, Level: 2, Text: "Details & Scope"})
	doc.Append(TableNode{Page: 2, Rows: [][]string{{"Name", "Value"}, {"alpha", "1"}}})
	return doc
}

func TestDocumentToHTML(t *testing.T) {
	html := sampleDocument().ToHTML()

	for _, want := range []string{
		"<h1>Introduction</h1>",
		"<p>Opening words.</p>",
		"<h2>Details &amp; Scope</h2>",
		"<td>alpha</td>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("ToHTML() missing %q", want)
		}
	}
}

func TestDocumentToHTMLClampsDeepLevels(t *testing.T) {
	doc := NewDocument("deep")
	doc.Append(Title{Page: 1, Level: 9, Text: "Very deep"})

	if !strings.Contains(doc.ToHTML(), "<h6>Very deep</h6>") {
		t.Error("levels beyond 6 should render as h6")
	}
}

func TestDocumentToMarkdown(t *testing.T) {
	md := sampleDocument().ToMarkdown()

	for _, want := range []string{
		"# Introduction",
		"## Details & Scope",
		"| Name | Value |",
		"| --- | --- |",
		"| alpha | 1 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("ToMarkdown() missing %q", want)
		}
	}
}

func TestDocumentToJSON(t *testing.T) {
	data, err := sampleDocument().ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	var decoded struct {
		Name    string `json:"name"`
		Content []struct {
			Type  string     `json:"type"`
			Page  int        `json:"page"`
			Level int        `json:"level"`
			Text  string     `json:"text"`
			Rows  [][]string `json:"rows"`
		} `json:"content"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Name != "report" || len(decoded.Content) != 4 {
		t.Fatalf("decoded = %+v, unexpected shape", decoded)
	}
	if decoded.Content[0].Type != "title" || decoded.Content[0].Level != 1 {
		t.Errorf("first node = %+v, want level-1 title", decoded.Content[0])
	}
	if decoded.Content[3].Type != "table" || len(decoded.Content[3].Rows) != 2 {
		t.Errorf("last node = %+v, want 2-row table", decoded.Content[3])
	}
}

func TestDocumentToYAML(t *testing.T) {
	data, err := sampleDocument().ToYAML()
	if err != nil {
		t.Fatalf("ToYAML() error = %v", err)
	}
	if !strings.Contains(string(data), "type: title") {
		t.Error("ToYAML() missing title node")
	}
	if !strings.Contains(string(data), "text: Opening words.") {
		t.Error("ToYAML() missing paragraph text")
	}
}

// ============================================================================
// Page Codec Tests
// ============================================================================

func TestPageCodecRoundTrip(t *testing.T) {
	p := NewPage(1, 612, 792)
	tb := NewTextBlock()
	tb.Lines = append(tb.Lines, makeLine(56, 700, 156, 712, "hello"))
	tb.RecomputeBounds()
	tb.BBox = tb.Lines[0].BBox
	p.AddElement(tb)
	p.AddElement(&Rule{BBox: NewBBox(56, 500, 556, 501)})

	var buf bytes.Buffer
	if err := EncodePages(&buf, []*Page{p}); err != nil {
		t.Fatalf("EncodePages() error = %v", err)
	}

	pages, err := DecodePages(&buf)
	if err != nil {
		t.Fatalf("DecodePages() error = %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("decoded %d pages, want 1", len(pages))
	}

	got := pages[0]
	if got.Number != 1 || got.Width != 612 || got.Height != 792 {
		t.Errorf("page header = %+v, unexpected", got)
	}
	blocks := got.TextBlocks()
	if len(blocks) != 1 || blocks[0].Text() != "hello" {
		t.Fatalf("decoded blocks = %d, text mismatch", len(blocks))
	}
	if len(got.Rules()) != 1 {
		t.Errorf("decoded rules = %d, want 1", len(got.Rules()))
	}
}

func TestDecodePagesRejectsBadDimensions(t *testing.T) {
	in := strings.NewReader(`[{"number":1,"width":0,"height":792}]`)
	if _, err := DecodePages(in); err == nil {
		t.Error("DecodePages() should reject non-positive dimensions")
	}
}

func TestDecodePagesDefaultsNumbers(t *testing.T) {
	in := strings.NewReader(`[{"width":612,"height":792},{"width":612,"height":792}]`)
	pages, err := DecodePages(in)
	if err != nil {
		t.Fatalf("DecodePages() error = %v", err)
	}
	if pages[0].Number != 1 || pages[1].Number != 2 {
		t.Errorf("page numbers = %d, %d; want 1, 2", pages[0].Number, pages[1].Number)
	}
}
