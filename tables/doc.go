// Package tables finds table regions on pages by analyzing the drawing
// rules that make up ruled tables, replaces the region's content with a
// single table element, and merges tables that continue across page
// breaks.
//
// Detection works on the rules alone: a horizontal and a vertical rule
// that cross are likely part of the same table, and a visual line drawn
// as several abutting segments is stitched back together. The connected
// groups of rules define the table perimeters. Cell content is not
// parsed here; an external CellExtractor can contribute structured grids
// which are matched to the detected regions by position.
package tables
