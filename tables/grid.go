package tables

import (
	"errors"
	"fmt"
	"math"

	"github.com/tsawler/strata/model"
)

// ErrTooManyGrids is returned when a cell extractor reports more grids
// on a page than table regions were detected there. The mapping from
// grids to regions is ambiguous and the document cannot be trusted.
var ErrTooManyGrids = errors.New("more cell grids than detected table regions")

// CellExtractor parses the cell content of table regions. It is an
// external collaborator; implementations typically shell out to a
// dedicated table parsing tool. Extract receives the regions detected on
// a page, ordered top to bottom, and may return fewer grids than regions
// when some regions yield no parseable cells.
type CellExtractor interface {
	Extract(pageNumber int, regions []model.BBox) ([]*model.Grid, error)
}

// AssignGrids matches extracted grids to detected tables by position.
// Each grid goes to the unassigned table whose coordinates are closest,
// measured as the summed absolute difference over the four box
// coordinates. More grids than tables is an ErrTooManyGrids error.
func AssignGrids(tables []*model.Table, grids []*model.Grid) error {
	if len(grids) > len(tables) {
		return fmt.Errorf("%w: %d grids for %d regions", ErrTooManyGrids, len(grids), len(tables))
	}
	for _, g := range grids {
		bestDist := math.Inf(1)
		bestIdx := -1
		for i, t := range tables {
			if t.Grid != nil {
				continue
			}
			if dist := boxDistance(t.BBox, g.BBox); dist < bestDist {
				bestDist = dist
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			return fmt.Errorf("%w: no free region left", ErrTooManyGrids)
		}
		tables[bestIdx].Grid = g
	}
	return nil
}

func boxDistance(a, b model.BBox) float64 {
	return math.Abs(a.X0-b.X0) + math.Abs(a.Y0-b.Y0) +
		math.Abs(a.X1-b.X1) + math.Abs(a.Y1-b.Y1)
}

// ExtractInto runs the extractor over each page's detected tables and
// assigns the resulting grids. A nil extractor leaves every table
// without a grid.
func ExtractInto(extractor CellExtractor, pages []*model.Page, detected [][]*model.Table) error {
	if extractor == nil {
		return nil
	}
	for i, tabs := range detected {
		if len(tabs) == 0 {
			continue
		}
		regions := make([]model.BBox, len(tabs))
		for j, t := range tabs {
			regions[j] = t.BBox
		}
		grids, err := extractor.Extract(pages[i].Number, regions)
		if err != nil {
			return fmt.Errorf("extracting cells on page %d: %w", pages[i].Number, err)
		}
		if err := AssignGrids(tabs, grids); err != nil {
			return fmt.Errorf("page %d: %w", pages[i].Number, err)
		}
	}
	return nil
}
