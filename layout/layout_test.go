package layout

import (
	"github.com/tsawler/strata/model"
)

// ============================================================================
// Test fixtures
// ============================================================================

// makeLine builds a text line with one evenly spaced character per rune.
func makeLine(x0, y0, x1, y1 float64, text string) *model.TextLine {
	return makeStyledLine(x0, y0, x1, y1, text, "Times-Roman", y1-y0)
}

// makeStyledLine builds a text line in a specific font.
func makeStyledLine(x0, y0, x1, y1 float64, text, fontName string, size float64) *model.TextLine {
	line := &model.TextLine{BBox: model.BBox{X0: x0, Y0: y0, X1: x1, Y1: y1}}
	runes := []rune(text)
	if len(runes) == 0 {
		return line
	}
	w := (x1 - x0) / float64(len(runes))
	for i, r := range runes {
		line.Chars = append(line.Chars, &model.Char{
			BBox:     model.BBox{X0: x0 + float64(i)*w, Y0: y0, X1: x0 + float64(i+1)*w, Y1: y1},
			Value:    string(r),
			FontName: fontName,
			FontSize: size,
			Upright:  true,
		})
	}
	return line
}

// makeBlock builds a text block covering its lines.
func makeBlock(lines ...*model.TextLine) *model.TextBlock {
	tb := model.NewTextBlock()
	tb.Lines = lines
	tb.RecomputeBounds()
	return tb
}

// makePage builds a page holding the given elements.
func makePage(number int, w, h float64, elems ...model.Element) *model.Page {
	p := model.NewPage(number, w, h)
	for _, e := range elems {
		p.AddElement(e)
	}
	return p
}
