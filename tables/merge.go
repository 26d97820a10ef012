package tables

import (
	"fmt"

	"github.com/tsawler/strata/model"
)

// MergeConfig holds cross-page table merge configuration.
type MergeConfig struct {
	// Margin is the maximum horizontal position difference for two
	// tables to count as the same table continued on the next page.
	Margin float64
}

// DefaultMergeConfig returns the default merge configuration.
func DefaultMergeConfig() MergeConfig {
	return MergeConfig{
		Margin: 1,
	}
}

// Validate checks the configuration for usable values.
func (c MergeConfig) Validate() error {
	if c.Margin < 0 {
		return fmt.Errorf("merge margin must be non-negative, got %g", c.Margin)
	}
	return nil
}

// MergeAcrossPages joins tables that were split by a page break: when
// the last element of a page and the first element of the next page are
// both tables with matching left and right edges and the same column
// count, the continuation's rows are appended to the first table and the
// continuation is removed from its page. Chains spanning several pages
// collapse into the table that started the chain.
func MergeAcrossPages(pages []*model.Page, config MergeConfig) {
	var start, tail *model.Table
	var prev model.Element

	type removal struct{ page int }
	var toRemove []removal

	for i, page := range pages {
		var curr model.Element
		if !page.Empty() {
			curr = page.Elements[0]
		}

		pt, pok := prev.(*model.Table)
		ct, cok := curr.(*model.Table)
		if pok && cok && sameTableContinuation(pt, ct, config.Margin) {
			if start == nil || pt != tail {
				start = pt
			}
			mergeInto(start, ct)
			tail = ct
			toRemove = append(toRemove, removal{page: i})
		} else {
			start = nil
			tail = nil
		}

		prev = nil
		if !page.Empty() {
			prev = page.Elements[len(page.Elements)-1]
		}
	}

	for j := len(toRemove) - 1; j >= 0; j-- {
		page := pages[toRemove[j].page]
		page.Elements = page.Elements[1:]
	}
}

func sameTableContinuation(prev, curr *model.Table, margin float64) bool {
	if prev.Grid == nil || curr.Grid == nil {
		return false
	}
	if abs(prev.BBox.X0-curr.BBox.X0) > margin || abs(prev.BBox.X1-curr.BBox.X1) > margin {
		return false
	}
	return prev.Grid.Columns() == curr.Grid.Columns()
}

func mergeInto(start, cont *model.Table) {
	start.Grid.Rows = append(start.Grid.Rows, cont.Grid.Rows...)
	start.Elements = append(start.Elements, cont.Elements...)
	start.BBox = start.BBox.Union(cont.BBox)
	start.Grid.BBox = start.Grid.BBox.Union(cont.Grid.BBox)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
