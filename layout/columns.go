package layout

import (
	"fmt"
	"math"
	"sort"

	"github.com/tsawler/strata/model"
)

// pageArea classifies where an element sits relative to a two-column
// split of the page.
type pageArea int

const (
	areaCommon pageArea = iota // spans the middle, or sits astride it
	areaLeft
	areaRight
)

// assignArea places an element in the left column, the right column, or
// the common area. The middle band is a tolerance zone around the page
// center so that columns with slightly uneven widths still classify.
func assignArea(page *model.Page, b model.BBox, middleMargin float64) pageArea {
	middle := page.Width / 2
	band := page.Width * middleMargin
	low, up := middle-band, middle+band

	switch {
	case b.X0 < low && b.X1 <= up:
		return areaLeft
	case b.X0 >= low && b.X1 > up:
		return areaRight
	default:
		return areaCommon
	}
}

// LineMergeConfig holds configuration for cross-block line merging.
type LineMergeConfig struct {
	// HeightTol is the maximum difference between two lines' vertical
	// extents for them to count as the same physical line.
	HeightTol float64

	// MinColumnSpacing is the minimum horizontal gap between a left and a
	// right column line. Side-by-side lines closer than this are treated
	// as one split line, not as column neighbors.
	MinColumnSpacing float64

	// MiddleMargin is the width of the column tolerance band around the
	// page center, as a fraction of the page width.
	MiddleMargin float64
}

// DefaultLineMergeConfig returns the default line merge configuration.
func DefaultLineMergeConfig() LineMergeConfig {
	return LineMergeConfig{
		HeightTol:        1,
		MinColumnSpacing: 13.5,
		MiddleMargin:     0.05,
	}
}

// Validate checks the configuration for usable values.
func (c LineMergeConfig) Validate() error {
	if c.HeightTol < 0 {
		return fmt.Errorf("height tolerance must be non-negative, got %g", c.HeightTol)
	}
	if c.MinColumnSpacing < 0 {
		return fmt.Errorf("minimum column spacing must be non-negative, got %g", c.MinColumnSpacing)
	}
	if c.MiddleMargin < 0 || c.MiddleMargin > 0.5 {
		return fmt.Errorf("middle margin must be a ratio in [0, 0.5], got %g", c.MiddleMargin)
	}
	return nil
}

// LineMerger joins text lines that the analyzer split into separate
// blocks even though they form one physical line on the page.
type LineMerger struct {
	config LineMergeConfig
}

// NewLineMerger creates a merger with default configuration.
func NewLineMerger() *LineMerger {
	return &LineMerger{config: DefaultLineMergeConfig()}
}

// NewLineMergerWithConfig creates a merger with the given configuration.
func NewLineMergerWithConfig(config LineMergeConfig) (*LineMerger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &LineMerger{config: config}, nil
}

// lineRef locates a line inside its owning block.
type lineRef struct {
	block *model.TextBlock
	line  *model.TextLine
}

// Merge joins same-height lines across the page's text blocks. Two lines
// at the same height merge unless they form a genuine column pair: one
// in each column, separated by at least the minimum column spacing.
// Merged lines leave their original blocks, block bounds are refreshed,
// and blocks left without lines are dropped.
func (m *LineMerger) Merge(page *model.Page) {
	var refs []lineRef
	for _, tb := range page.TextBlocks() {
		for _, line := range tb.Lines {
			refs = append(refs, lineRef{block: tb, line: line})
		}
	}

	groups := m.groupSameHeight(page, refs)

	removed := make(map[*model.TextLine]bool)
	touched := make(map[*model.TextBlock]bool)
	for _, group := range groups {
		sort.Slice(group, func(i, j int) bool {
			return group[i].line.BBox.X0 < group[j].line.BBox.X0
		})
		target := group[0]
		for _, r := range group[1:] {
			target.line.Chars = append(target.line.Chars, r.line.Chars...)
			removed[r.line] = true
			touched[r.block] = true
		}
		target.line.RecomputeBounds()
		touched[target.block] = true
	}
	if len(removed) == 0 {
		return
	}

	for tb := range touched {
		kept := tb.Lines[:0]
		for _, line := range tb.Lines {
			if !removed[line] {
				kept = append(kept, line)
			}
		}
		tb.Lines = kept
		tb.RecomputeBounds()
	}
	dropEmptyBlocks(page)
}

// groupSameHeight clusters lines sharing a vertical extent, leaving
// genuine column pairs alone.
func (m *LineMerger) groupSameHeight(page *model.Page, refs []lineRef) [][]lineRef {
	groupOf := make(map[*model.TextLine]int)
	var groups [][]lineRef

	for i := 0; i < len(refs); i++ {
		for j := i + 1; j < len(refs); j++ {
			l1, l2 := refs[i], refs[j]
			if l2.line.BBox.X0 < l1.line.BBox.X0 {
				l1, l2 = l2, l1
			}
			if !sameHeight(l1.line.BBox, l2.line.BBox, m.config.HeightTol) {
				continue
			}
			if l1.line.BBox.X1 > l2.line.BBox.X0 {
				continue
			}
			if m.columnPair(page, l1.line.BBox, l2.line.BBox) {
				continue
			}

			g1, ok1 := groupOf[l1.line]
			g2, ok2 := groupOf[l2.line]
			switch {
			case !ok1 && !ok2:
				groups = append(groups, []lineRef{l1, l2})
				groupOf[l1.line] = len(groups) - 1
				groupOf[l2.line] = len(groups) - 1
			case ok1 && !ok2:
				groups[g1] = append(groups[g1], l2)
				groupOf[l2.line] = g1
			case !ok1 && ok2:
				groups[g2] = append(groups[g2], l1)
				groupOf[l1.line] = g2
			case g1 != g2:
				for _, r := range groups[g2] {
					groupOf[r.line] = g1
				}
				groups[g1] = append(groups[g1], groups[g2]...)
				groups[g2] = nil
			}
		}
	}

	var out [][]lineRef
	for _, g := range groups {
		if len(g) > 1 {
			out = append(out, g)
		}
	}
	return out
}

func sameHeight(b1, b2 model.BBox, tol float64) bool {
	return math.Abs(b1.Y0-b2.Y0) <= tol && math.Abs(b1.Y1-b2.Y1) <= tol
}

// columnPair reports whether two side-by-side lines belong to different
// columns rather than to one split line.
func (m *LineMerger) columnPair(page *model.Page, left, right model.BBox) bool {
	a1 := assignArea(page, left, m.config.MiddleMargin)
	a2 := assignArea(page, right, m.config.MiddleMargin)
	if a1 != areaLeft || a2 != areaRight {
		return false
	}
	return right.X0-left.X1 >= m.config.MinColumnSpacing
}

// ReorderColumns rewrites the page's element order into reading order
// for a two-column layout: full-width elements act as separators, and
// between two separators the left column reads before the right one.
// The middle band is the same tolerance zone used for line merging.
func ReorderColumns(page *model.Page, middleMargin float64) {
	var left, right, common []model.Element
	for _, elem := range page.Elements {
		switch assignArea(page, elem.Bounds(), middleMargin) {
		case areaLeft:
			left = append(left, elem)
		case areaRight:
			right = append(right, elem)
		default:
			common = append(common, elem)
		}
	}
	if len(left) == 0 && len(right) == 0 {
		return
	}

	byTop := func(s []model.Element) {
		sort.SliceStable(s, func(i, j int) bool {
			return s[i].Bounds().Y1 > s[j].Bounds().Y1
		})
	}
	byTop(left)
	byTop(right)
	byTop(common)

	ordered := make([]model.Element, 0, len(page.Elements))
	drainAbove := func(s []model.Element, limit float64) []model.Element {
		for len(s) > 0 && s[0].Bounds().Y1 >= limit {
			ordered = append(ordered, s[0])
			s = s[1:]
		}
		return s
	}

	for _, c := range common {
		top := c.Bounds().Y1
		left = drainAbove(left, top)
		right = drainAbove(right, top)
		ordered = append(ordered, c)
	}
	ordered = append(ordered, left...)
	ordered = append(ordered, right...)

	page.Elements = ordered
}
