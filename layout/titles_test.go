package layout

import (
	"testing"

	"github.com/tsawler/strata/model"
)

// ============================================================================
// Title classification
// ============================================================================

// fontedBlock builds a one-line block carrying a preset font signature.
func fontedBlock(f model.FontSignature, text string) *model.TextBlock {
	tb := makeBlock(makeLine(72, 700, 300, 712, text))
	font := f
	tb.Font = &font
	return tb
}

func TestTitleClassifierHierarchy(t *testing.T) {
	chapter := model.FontSignature{Size: 16, Bold: true, Align: 72}
	section := model.FontSignature{Size: 12, Bold: true, Align: 72}
	body := model.FontSignature{Size: 10, Align: 72}

	c1 := fontedBlock(chapter, "First Chapter")
	s1 := fontedBlock(section, "First Section")
	b1 := fontedBlock(body, "Some body text.")
	s2 := fontedBlock(section, "Second Section")
	b2 := fontedBlock(body, "More body text.")
	c2 := fontedBlock(chapter, "Second Chapter")
	s3 := fontedBlock(section, "Third Section")
	b3 := fontedBlock(body, "Even more body text.")
	b4 := fontedBlock(body, "Closing body text.")

	pages := []*model.Page{makePage(1, 612, 792, c1, s1, b1, s2, b2, c2, s3, b3, b4)}

	NewTitleClassifier().Classify(pages)

	for _, tb := range []*model.TextBlock{c1, c2} {
		if tb.TitleLevel != 0 {
			t.Errorf("chapter %q level = %d, want 0", tb.Text(), tb.TitleLevel)
		}
	}
	for _, tb := range []*model.TextBlock{s1, s2, s3} {
		if tb.TitleLevel != 1 {
			t.Errorf("section %q level = %d, want 1", tb.Text(), tb.TitleLevel)
		}
	}
	for _, tb := range []*model.TextBlock{b1, b2, b3, b4} {
		if tb.TitleLevel != model.BodyLevel {
			t.Errorf("body %q level = %d, want body", tb.Text(), tb.TitleLevel)
		}
	}
}

func TestTitleClassifierTableCountsAsContent(t *testing.T) {
	caption := model.FontSignature{Size: 14, Bold: true, Align: 72}
	body := model.FontSignature{Size: 10, Align: 72}

	t1 := fontedBlock(caption, "Table overview")
	t2 := fontedBlock(caption, "Second overview")
	b1 := fontedBlock(body, "body")
	b2 := fontedBlock(body, "body")
	b3 := fontedBlock(body, "body")
	table1 := &model.Table{BBox: model.BBox{X0: 72, Y0: 500, X1: 500, Y1: 650}}
	table2 := &model.Table{BBox: model.BBox{X0: 72, Y0: 200, X1: 500, Y1: 350}}

	pages := []*model.Page{makePage(1, 612, 792, t1, table1, b1, t2, table2, b2, b3)}

	NewTitleClassifier().Classify(pages)

	if t1.TitleLevel != 0 || t2.TitleLevel != 0 {
		t.Errorf("captions followed by tables not classified as titles: %d, %d",
			t1.TitleLevel, t2.TitleLevel)
	}
}

func TestTitleClassifierIdempotent(t *testing.T) {
	chapter := model.FontSignature{Size: 16, Bold: true, Align: 72}
	body := model.FontSignature{Size: 10, Align: 72}

	blocks := []*model.TextBlock{
		fontedBlock(chapter, "Chapter"),
		fontedBlock(body, "text"),
		fontedBlock(body, "text"),
	}
	pages := []*model.Page{makePage(1, 612, 792, blocks[0], blocks[1], blocks[2])}

	c := NewTitleClassifier()
	c.Classify(pages)
	first := []int{blocks[0].TitleLevel, blocks[1].TitleLevel, blocks[2].TitleLevel}
	c.Classify(pages)
	second := []int{blocks[0].TitleLevel, blocks[1].TitleLevel, blocks[2].TitleLevel}

	for i := range first {
		if first[i] != second[i] {
			t.Errorf("block %d level changed on reclassification: %d -> %d", i, first[i], second[i])
		}
	}
}

func TestTitleClassifierEmptyDocument(t *testing.T) {
	pages := []*model.Page{makePage(1, 612, 792)}
	NewTitleClassifier().Classify(pages) // must not panic
}

// ============================================================================
// Level normalization
// ============================================================================

func TestNormalizeTitleLevels(t *testing.T) {
	tests := []struct {
		name    string
		initial []int
		want    []int
	}{
		{"consistent", []int{0, 1, 2, 1}, []int{0, 1, 2, 1}},
		{"single jump", []int{0, 2}, []int{0, 1}},
		{"cascading jumps", []int{0, 2, 4}, []int{0, 1, 2}},
		{"deep start", []int{1, 0}, []int{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var blocks []*model.TextBlock
			var elems []model.Element
			for _, lvl := range tt.initial {
				tb := makeBlock(makeLine(72, 700, 300, 712, "title"))
				tb.TitleLevel = lvl
				blocks = append(blocks, tb)
				elems = append(elems, tb)
			}
			pages := []*model.Page{makePage(1, 612, 792, elems...)}

			NormalizeTitleLevels(pages)

			for i, tb := range blocks {
				if tb.TitleLevel != tt.want[i] {
					t.Errorf("title %d level = %d, want %d", i, tb.TitleLevel, tt.want[i])
				}
			}
		})
	}
}

func TestNormalizeTitleLevelsIgnoresBody(t *testing.T) {
	title := makeBlock(makeLine(72, 700, 300, 712, "title"))
	title.TitleLevel = 0
	body := makeBlock(makeLine(72, 600, 300, 612, "body"))
	pages := []*model.Page{makePage(1, 612, 792, title, body)}

	NormalizeTitleLevels(pages)

	if body.TitleLevel != model.BodyLevel {
		t.Errorf("body block level = %d, want body", body.TitleLevel)
	}
}
