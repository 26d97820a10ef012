package tables

import (
	"fmt"
	"sort"

	"github.com/tsawler/strata/model"
)

// Config holds table detection configuration.
type Config struct {
	// LineMargin is the maximum thickness for a rectangle to count as a
	// drawn line, and the tolerance used when testing whether two lines
	// cross. Rectangles thicker than this on both axes are not ruling
	// lines and are ignored.
	LineMargin float64
}

// DefaultConfig returns the default detection configuration.
func DefaultConfig() Config {
	return Config{
		LineMargin: 1,
	}
}

// Validate checks the configuration for usable values.
func (c Config) Validate() error {
	if c.LineMargin < 0 {
		return fmt.Errorf("line margin must be non-negative, got %g", c.LineMargin)
	}
	return nil
}

// Detector finds ruled tables on pages.
type Detector struct {
	config Config
}

// NewDetector creates a detector with the default configuration.
func NewDetector() *Detector {
	return &Detector{config: DefaultConfig()}
}

// NewDetectorWithConfig creates a detector with the given configuration.
func NewDetectorWithConfig(config Config) (*Detector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Detector{config: config}, nil
}

// ruling is a classified drawing rule participating in detection.
type ruling struct {
	rule       *model.Rule
	horizontal bool
}

// Detect finds the table regions on a page and rewrites the page so that
// each region becomes a single table element: elements fully inside the
// region move into the table, text blocks straddling the boundary lose
// the lines that fall inside, and the table is inserted at its reading
// position. It returns the detected tables in page order.
func (d *Detector) Detect(page *model.Page) []*model.Table {
	rulings := d.classifyRules(page)
	groups := d.groupRulings(rulings)

	var tables []*model.Table
	for _, group := range groups {
		t := &model.Table{}
		for _, r := range group {
			t.Elements = append(t.Elements, r.rule)
		}
		t.RecomputeBounds()
		tables = append(tables, t)
	}

	sort.Slice(tables, func(i, j int) bool {
		return tables[i].BBox.Y1 > tables[j].BBox.Y1
	})

	if !page.Empty() {
		for _, t := range tables {
			d.replaceRegion(page, t)
		}
	}
	return tables
}

// DetectPages runs detection over every page and returns the tables of
// each page.
func (d *Detector) DetectPages(pages []*model.Page) [][]*model.Table {
	out := make([][]*model.Table, len(pages))
	for i, p := range pages {
		out[i] = d.Detect(p)
	}
	return out
}

// classifyRules splits the page's rules into horizontal and vertical
// ruling lines. Rules thin on both axes (dots) and thick on both axes
// (filled boxes) do not participate.
func (d *Detector) classifyRules(page *model.Page) []ruling {
	var rulings []ruling
	for _, r := range page.Rules() {
		w, h := r.BBox.Width(), r.BBox.Height()
		switch {
		case w <= d.config.LineMargin && h <= d.config.LineMargin:
			// A dot, not a line.
		case w <= d.config.LineMargin:
			rulings = append(rulings, ruling{rule: r, horizontal: false})
		case h <= d.config.LineMargin:
			rulings = append(rulings, ruling{rule: r, horizontal: true})
		}
	}
	return rulings
}

// groupRulings partitions the ruling lines into connected components
// under the crossing and touching relations, and keeps the components
// that contain both orientations. Crossing joins lines of opposite
// orientation that overlap within the line margin; touching joins
// segments of the same orientation that share an exact edge, stitching a
// visual line drawn as multiple primitives.
func (d *Detector) groupRulings(rulings []ruling) [][]ruling {
	n := len(rulings)
	if n == 0 {
		return nil
	}

	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(i, j int) {
		ri, rj := find(i), find(j)
		if ri != rj {
			parent[ri] = rj
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := rulings[i], rulings[j]
			if a.horizontal != b.horizontal {
				if a.rule.BBox.Overlaps(b.rule.BBox, d.config.LineMargin) {
					union(i, j)
				}
			} else if a.rule.BBox.Touches(b.rule.BBox) {
				union(i, j)
			}
		}
	}

	components := make(map[int][]ruling)
	for i, r := range rulings {
		root := find(i)
		components[root] = append(components[root], r)
	}

	var groups [][]ruling
	for _, group := range components {
		hasH, hasV := false, false
		for _, r := range group {
			if r.horizontal {
				hasH = true
			} else {
				hasV = true
			}
		}
		// A run of touching segments with a single orientation is a
		// plain line, not a table.
		if hasH && hasV {
			groups = append(groups, group)
		}
	}
	return groups
}

// replaceRegion moves everything inside the table region into the table,
// truncates text blocks that straddle the boundary, and inserts the
// table at its position in the page's top-to-bottom order.
func (d *Detector) replaceRegion(page *model.Page, table *model.Table) {
	region := table.BBox

	kept := page.Elements[:0]
	var truncated []*model.TextBlock
	for _, e := range page.Elements {
		if _, isRule := e.(*model.Rule); isRule && containsRule(table, e) {
			continue // already owned by the table
		}
		if region.Contains(e.Bounds()) {
			table.Elements = append(table.Elements, e)
			continue
		}
		if tb, ok := e.(*model.TextBlock); ok {
			if d.truncateBlock(tb, region) {
				if len(tb.Lines) == 0 {
					continue
				}
				truncated = append(truncated, tb)
				continue
			}
		}
		kept = append(kept, e)
	}
	page.Elements = kept

	// Truncated blocks may have moved in the top-to-bottom order.
	for _, tb := range truncated {
		insertByPosition(page, tb)
	}
	insertByPosition(page, table)
}

// truncateBlock removes the block's lines that fall inside the region
// and refreshes the block's bounds. It reports whether any line was
// removed.
func (d *Detector) truncateBlock(tb *model.TextBlock, region model.BBox) bool {
	kept := tb.Lines[:0]
	removed := false
	for _, line := range tb.Lines {
		if region.Contains(line.BBox) {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	tb.Lines = kept
	if removed {
		tb.RecomputeBounds()
	}
	return removed
}

func containsRule(table *model.Table, e model.Element) bool {
	for _, te := range table.Elements {
		if te == e {
			return true
		}
	}
	return false
}

// insertByPosition inserts the element before the first element that
// sits below it, keeping the page's top-to-bottom element order.
func insertByPosition(page *model.Page, elem model.Element) {
	idx := len(page.Elements)
	for i, e := range page.Elements {
		if e.Bounds().Y0 < elem.Bounds().Y0 {
			idx = i
			break
		}
	}
	page.Elements = append(page.Elements, nil)
	copy(page.Elements[idx+1:], page.Elements[idx:])
	page.Elements[idx] = elem
}
