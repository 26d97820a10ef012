package layout

import (
	"testing"

	"github.com/tsawler/strata/model"
)

// ============================================================================
// Line merging
// ============================================================================

func TestLineMergerJoinsSplitLine(t *testing.T) {
	page := makePage(1, 600, 800,
		makeBlock(makeLine(50, 700, 200, 712, "Hello ")),
		makeBlock(makeLine(205, 700, 350, 712, "world")),
	)

	NewLineMerger().Merge(page)

	blocks := page.TextBlocks()
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if len(blocks[0].Lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(blocks[0].Lines))
	}
	if got := blocks[0].Lines[0].Text(); got != "Hello world" {
		t.Errorf("merged text = %q, want %q", got, "Hello world")
	}
	want := model.BBox{X0: 50, Y0: 700, X1: 350, Y1: 712}
	if blocks[0].BBox != want {
		t.Errorf("merged bounds = %+v, want %+v", blocks[0].BBox, want)
	}
}

func TestLineMergerKeepsColumnPair(t *testing.T) {
	page := makePage(1, 600, 800,
		makeBlock(makeLine(50, 700, 280, 712, "Left column line")),
		makeBlock(makeLine(320, 700, 560, 712, "Right column line")),
	)

	NewLineMerger().Merge(page)

	if got := len(page.TextBlocks()); got != 2 {
		t.Errorf("got %d blocks, want 2; column lines must not merge", got)
	}
}

func TestLineMergerMergesNarrowGap(t *testing.T) {
	// Side-by-side lines closer than the column spacing are one line.
	page := makePage(1, 600, 800,
		makeBlock(makeLine(50, 700, 285, 712, "continues right")),
		makeBlock(makeLine(295, 700, 560, 712, " after a tab stop")),
	)

	NewLineMerger().Merge(page)

	if got := len(page.TextBlocks()); got != 1 {
		t.Errorf("got %d blocks, want 1", got)
	}
}

func TestLineMergerIgnoresDifferentHeights(t *testing.T) {
	page := makePage(1, 600, 800,
		makeBlock(makeLine(50, 700, 200, 712, "upper")),
		makeBlock(makeLine(205, 680, 350, 692, "lower")),
	)

	NewLineMerger().Merge(page)

	if got := len(page.TextBlocks()); got != 2 {
		t.Errorf("got %d blocks, want 2", got)
	}
}

func TestLineMergeConfigValidate(t *testing.T) {
	config := DefaultLineMergeConfig()
	if err := config.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	config.MinColumnSpacing = -1
	if err := config.Validate(); err == nil {
		t.Error("negative column spacing accepted")
	}
	config = DefaultLineMergeConfig()
	config.MiddleMargin = 0.9
	if err := config.Validate(); err == nil {
		t.Error("middle margin above half the page accepted")
	}
}

// ============================================================================
// Column reordering
// ============================================================================

func TestReorderColumns(t *testing.T) {
	title := makeBlock(makeLine(100, 750, 500, 770, "Full width title"))
	left1 := makeBlock(makeLine(50, 600, 280, 630, "left top"))
	left2 := makeBlock(makeLine(50, 500, 280, 530, "left bottom"))
	right1 := makeBlock(makeLine(320, 600, 560, 630, "right top"))
	right2 := makeBlock(makeLine(320, 500, 560, 530, "right bottom"))
	footer := makeBlock(makeLine(100, 100, 500, 120, "Full width closing"))

	// Analyzer order interleaves the columns by height.
	page := makePage(1, 600, 800, title, left1, right1, left2, right2, footer)

	ReorderColumns(page, DefaultLineMergeConfig().MiddleMargin)

	want := []*model.TextBlock{title, left1, left2, right1, right2, footer}
	if len(page.Elements) != len(want) {
		t.Fatalf("got %d elements, want %d", len(page.Elements), len(want))
	}
	for i, w := range want {
		if page.Elements[i] != model.Element(w) {
			t.Errorf("element %d = %q, want %q",
				i, page.Elements[i].(*model.TextBlock).Text(), w.Text())
		}
	}
}

func TestReorderColumnsSingleColumnUnchanged(t *testing.T) {
	a := makeBlock(makeLine(100, 700, 500, 712, "first"))
	b := makeBlock(makeLine(100, 600, 500, 612, "second"))
	page := makePage(1, 600, 800, a, b)

	ReorderColumns(page, DefaultLineMergeConfig().MiddleMargin)

	if page.Elements[0] != model.Element(a) || page.Elements[1] != model.Element(b) {
		t.Error("single-column page was reordered")
	}
}
