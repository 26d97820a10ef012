package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/tsawler/strata/model"
)

// SplitBlockConfig holds configuration for split-block repair.
type SplitBlockConfig struct {
	// LineMargin is the maximum vertical offset between the last line of
	// a block and the first line of the next, as a fraction of their
	// combined heights, for the blocks to count as one text.
	LineMargin float64

	// EndAreaRatio marks the start of the line-end area: a first line
	// must reach past this fraction of the widest text seen so far to be
	// a wrapped line rather than a complete short one.
	EndAreaRatio float64
}

// DefaultSplitBlockConfig returns the default split-block configuration.
func DefaultSplitBlockConfig() SplitBlockConfig {
	return SplitBlockConfig{
		LineMargin:   0.75,
		EndAreaRatio: 0.75,
	}
}

// Validate checks the configuration for usable values.
func (c SplitBlockConfig) Validate() error {
	if c.LineMargin < 0 {
		return fmt.Errorf("line margin must be non-negative, got %g", c.LineMargin)
	}
	if c.EndAreaRatio < 0 || c.EndAreaRatio > 1 {
		return fmt.Errorf("end area ratio must be a ratio in [0, 1], got %g", c.EndAreaRatio)
	}
	return nil
}

// FixSplitBlocks merges successive text blocks that the analyzer split
// apart even though they form one paragraph. Two shapes qualify: an
// indented item, where a bullet makes the continuation lines start
// further right than the first, and centered text, where every line
// shares a midpoint. In both shapes the blocks must be vertically close.
func FixSplitBlocks(pages []*model.Page, config SplitBlockConfig) {
	for _, page := range pages {
		var prev model.Element
		var toMerge []int
		maxX1 := 0.0
		for e, elem := range page.Elements {
			if prev != nil {
				tb1, ok1 := prev.(*model.TextBlock)
				tb2, ok2 := elem.(*model.TextBlock)
				if ok1 && ok2 && blocksClose(tb1, tb2, config.LineMargin) {
					if indentedItem(tb1, tb2, maxX1, config.EndAreaRatio) || centeredText(tb1, tb2) {
						toMerge = append(toMerge, e)
					}
				}
			}
			prev = elem
			maxX1 = math.Max(maxX1, elem.Bounds().X1)
		}
		mergeWithPrevious(page, toMerge)
	}
}

// blocksClose reports whether the last line of the first block and the
// first line of the second sit within a combined-height margin of each
// other.
func blocksClose(tb1, tb2 *model.TextBlock, margin float64) bool {
	if len(tb1.Lines) == 0 || len(tb2.Lines) == 0 {
		return false
	}
	last := tb1.Lines[len(tb1.Lines)-1].BBox
	first := tb2.Lines[0].BBox
	limit := (last.Height() + first.Height()) * margin
	return last.Y1-first.Y1 < limit && last.Y0-first.Y0 < limit
}

// indentedItem reports whether the two blocks form a bulleted item: a
// single first line reaching the end of the text area, continued by an
// indented block. The continuation may end slightly past the first line
// when its last word would not have fit there.
func indentedItem(tb1, tb2 *model.TextBlock, maxX1, endAreaRatio float64) bool {
	if len(tb1.Lines) != 1 {
		return false
	}
	if tb1.BBox.X1 < endAreaRatio*maxX1 {
		return false
	}
	if tb2.BBox.X1 > tb1.BBox.X1 {
		w := firstWordWidth(tb2.Lines[0])
		return tb2.BBox.X0-tb1.BBox.X0 > 1 && tb2.BBox.X1 <= tb1.BBox.X1+w
	}
	return tb2.BBox.X0-tb1.BBox.X0 > 1
}

// firstWordWidth sums the widths of the first word's characters, less
// the last one.
func firstWordWidth(line *model.TextLine) float64 {
	var widths []float64
	for _, c := range line.Chars {
		if isWhitespaceChar(c.Value) {
			break
		}
		widths = append(widths, c.BBox.Width())
	}
	var w float64
	for i := 0; i+1 < len(widths); i++ {
		w += widths[i]
	}
	return w
}

func isWhitespaceChar(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return s != ""
}

// centeredText reports whether every line of both blocks shares one
// rounded midpoint.
func centeredText(tb1, tb2 *model.TextBlock) bool {
	var mid float64
	first := true
	for _, tb := range []*model.TextBlock{tb1, tb2} {
		for _, line := range tb.Lines {
			m := math.Round(line.BBox.MidX())
			if first {
				mid = m
				first = false
			} else if m != mid {
				return false
			}
		}
	}
	return true
}

// mergeWithPrevious folds each listed element into the element right
// before it. Indices are processed in descending order so that runs of
// consecutive indices chain into the block that starts the run.
func mergeWithPrevious(page *model.Page, indices []int) {
	for j := len(indices) - 1; j >= 0; j-- {
		i := indices[j]
		tb, ok := page.Elements[i].(*model.TextBlock)
		prev, okPrev := page.Elements[i-1].(*model.TextBlock)
		if !ok || !okPrev {
			continue
		}
		prev.Lines = append(prev.Lines, tb.Lines...)
		prev.BBox = prev.BBox.Union(tb.BBox)
		page.Elements = append(page.Elements[:i], page.Elements[i+1:]...)
	}
}

// ErrUnknownLineShape reports a pair of successive lines whose geometry
// fits none of the one-liner repair cases.
var ErrUnknownLineShape = errors.New("line pair fits no repair case")

// OneLinerConfig holds configuration for one-liner paragraph repair.
type OneLinerConfig struct {
	// OneLinerRatio is the minimum fraction of single-line text blocks
	// for a document to count as wrongly segmented and need repair.
	OneLinerRatio float64

	// X1Ratio is the fraction of the widest text position a line must
	// reach to count as a full-width line.
	X1Ratio float64

	// ApxTol is the maximum difference between two lines' left edges for
	// them to count as starting at the same position.
	ApxTol float64
}

// DefaultOneLinerConfig returns the default one-liner repair configuration.
func DefaultOneLinerConfig() OneLinerConfig {
	return OneLinerConfig{
		OneLinerRatio: 0.9,
		X1Ratio:       0.95,
		ApxTol:        1.0,
	}
}

// Validate checks the configuration for usable values.
func (c OneLinerConfig) Validate() error {
	if c.OneLinerRatio < 0 || c.OneLinerRatio > 1 {
		return fmt.Errorf("one-liner ratio must be a ratio in [0, 1], got %g", c.OneLinerRatio)
	}
	if c.X1Ratio < 0 || c.X1Ratio > 1 {
		return fmt.Errorf("width ratio must be a ratio in [0, 1], got %g", c.X1Ratio)
	}
	if c.ApxTol < 0 {
		return fmt.Errorf("alignment tolerance must be non-negative, got %g", c.ApxTol)
	}
	return nil
}

// OneLinerRepairer rebuilds paragraphs in documents where the analyzer
// produced one block per line. When almost every text block is a single
// line, the block segmentation carries no paragraph information, so
// paragraph boundaries are re-derived from line geometry instead: a
// full-width line continues into the next line unless the next line is
// outdented.
type OneLinerRepairer struct {
	config OneLinerConfig
}

// NewOneLinerRepairer creates a repairer with default configuration.
func NewOneLinerRepairer() *OneLinerRepairer {
	return &OneLinerRepairer{config: DefaultOneLinerConfig()}
}

// NewOneLinerRepairerWithConfig creates a repairer with the given
// configuration.
func NewOneLinerRepairerWithConfig(config OneLinerConfig) (*OneLinerRepairer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &OneLinerRepairer{config: config}, nil
}

// Repair merges single-line blocks back into paragraphs. Documents with
// a healthy share of multi-line blocks are left alone. A geometry that
// fits no merge case is reported as an error carrying both texts, since
// guessing a paragraph boundary there would corrupt the reading order.
func (r *OneLinerRepairer) Repair(pages []*model.Page) error {
	if r.oneLinerRatio(pages) < r.config.OneLinerRatio {
		return nil
	}
	maxX1, ok := maxTextX1(pages)
	if !ok {
		return nil
	}

	for _, page := range pages {
		var prev model.Element
		var toMerge []int
		for e, elem := range page.Elements {
			maxX1 = math.Max(maxX1, elem.Bounds().X1)
			if prev != nil {
				prevTB, ok1 := prev.(*model.TextBlock)
				tb, ok2 := elem.(*model.TextBlock)
				if ok1 && ok2 {
					merge, err := r.shouldMerge(prevTB, tb, maxX1)
					if err != nil {
						return err
					}
					if merge {
						toMerge = append(toMerge, e)
					}
				}
			}
			prev = elem
		}
		mergeWithPrevious(page, toMerge)
	}
	return nil
}

// shouldMerge decides whether a line continues the previous line's
// paragraph. A short previous line ends its paragraph; a full-width
// previous line continues into a line starting at the same position or
// indented further right; an outdented line starts a new paragraph.
func (r *OneLinerRepairer) shouldMerge(prev, curr *model.TextBlock, maxX1 float64) (bool, error) {
	shift := curr.BBox.X0 - prev.BBox.X0
	diff := math.Abs(shift)
	switch {
	case !r.isFullWidth(prev, maxX1):
		return false, nil
	case diff >= r.config.ApxTol && shift < 0:
		return false, nil
	case diff <= r.config.ApxTol:
		return true, nil
	case diff >= r.config.ApxTol && shift > 0:
		return true, nil
	default:
		return false, fmt.Errorf("%w:\n%s\n%s", ErrUnknownLineShape,
			strings.TrimSpace(prev.Text()), strings.TrimSpace(curr.Text()))
	}
}

// isFullWidth reports whether the block starts in the left half of the
// text area and reaches its right end.
func (r *OneLinerRepairer) isFullWidth(tb *model.TextBlock, maxX1 float64) bool {
	return tb.BBox.X0 < maxX1/2 && tb.BBox.X1 > maxX1*r.config.X1Ratio
}

// oneLinerRatio is the fraction of text blocks holding a single line.
func (r *OneLinerRepairer) oneLinerRatio(pages []*model.Page) float64 {
	var total, oneLiners int
	for _, page := range pages {
		for _, tb := range page.TextBlocks() {
			total++
			if len(tb.Lines) == 1 {
				oneLiners++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(oneLiners) / float64(total)
}

// maxTextX1 is the right edge of the widest text block in the document.
func maxTextX1(pages []*model.Page) (float64, bool) {
	var max float64
	found := false
	for _, page := range pages {
		for _, tb := range page.TextBlocks() {
			if !found || tb.BBox.X1 > max {
				max = tb.BBox.X1
				found = true
			}
		}
	}
	return max, found
}
