package layout

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/strata/model"
)

// HeaderFooterConfig holds configuration for header/footer detection.
type HeaderFooterConfig struct {
	// Margins are the page-edge bands where header and footer material
	// can live, as fractions of the page size: top, right, bottom, left.
	Margins [4]float64

	// StrictTol is the position tolerance when matching elements by
	// content. Content matching rarely produces false positives, so the
	// tolerance is generous enough to absorb scanner skew.
	StrictTol float64

	// PositionTol is the position tolerance when matching elements by
	// position alone.
	PositionTol float64
}

// DefaultHeaderFooterConfig returns the default detection configuration.
func DefaultHeaderFooterConfig() HeaderFooterConfig {
	return HeaderFooterConfig{
		Margins:     [4]float64{0.25, 0.2, 0.2, 0.2},
		StrictTol:   3,
		PositionTol: 0.1,
	}
}

// Validate checks the configuration for usable values. Opposite margins
// must leave room for content between them.
func (c HeaderFooterConfig) Validate() error {
	for i, m := range c.Margins {
		if m < 0 || m > 1 {
			return fmt.Errorf("margin %d must be a ratio in [0, 1], got %g", i, m)
		}
	}
	if c.Margins[0]+c.Margins[2] > 1 {
		return fmt.Errorf("top and bottom margins overlap: %g + %g > 1", c.Margins[0], c.Margins[2])
	}
	if c.Margins[1]+c.Margins[3] > 1 {
		return fmt.Errorf("right and left margins overlap: %g + %g > 1", c.Margins[1], c.Margins[3])
	}
	if c.StrictTol < 0 || c.PositionTol < 0 {
		return fmt.Errorf("tolerances must be non-negative")
	}
	return nil
}

// Header is a set of elements repeated across pages in the page margins,
// with a reference to where those elements sit on each page it covers.
type Header struct {
	// Elements are representative elements, one per repeated item.
	Elements []model.Element
	// Boxes are the union boxes of each item's occurrences.
	Boxes []model.BBox
	// Ref maps a page index to the element indices of the items on that
	// page, aligned with Elements. An entry of -1 means the item was not
	// found on that page.
	Ref map[int][]int
}

func newHeader(elements []model.Element, page int, indices []int) *Header {
	boxes := make([]model.BBox, len(elements))
	for i, e := range elements {
		boxes[i] = e.Bounds()
	}
	return &Header{
		Elements: elements,
		Boxes:    boxes,
		Ref:      map[int][]int{page: indices},
	}
}

// Match pairs this header's items with another header's items. When
// strict, items match on position and normalized content; otherwise on
// start position alone. It returns a map from item index here to item
// index there.
func (h *Header) Match(other *Header, strict bool, config HeaderFooterConfig) map[int]int {
	tol := config.StrictTol
	if !strict {
		tol = config.PositionTol
	}
	match := make(map[int]int)
	used := make(map[int]bool)
	for e1 := range h.Elements {
		for e2 := range other.Elements {
			if used[e2] {
				continue
			}
			strictMatch, posMatch := similarElements(h.Elements[e1], h.Boxes[e1], other.Elements[e2], other.Boxes[e2], tol)
			if (strict && strictMatch) || (!strict && posMatch) {
				match[e1] = e2
				used[e2] = true
			}
		}
	}
	return match
}

// OverlapMatch pairs items by maximum area of overlap, a looser relation
// than Match used when gathering headers that share a layout.
func (h *Header) OverlapMatch(other *Header) map[int]int {
	match := make(map[int]int)
	used := make(map[int]bool)
	for e1 := range h.Elements {
		best := 0.0
		bestIdx := -1
		for e2 := range other.Elements {
			if used[e2] {
				continue
			}
			ov := h.Boxes[e1].HOverlap(other.Boxes[e2]) * h.Boxes[e1].VOverlap(other.Boxes[e2])
			if ov > best {
				best = ov
				bestIdx = e2
			}
		}
		if bestIdx >= 0 {
			match[e1] = bestIdx
			used[bestIdx] = true
		}
	}
	return match
}

// Merge folds another header into this one, keeping only the matched
// items. Item boxes widen to cover both occurrences and both headers'
// page references are kept.
func (h *Header) Merge(other *Header, match map[int]int) {
	newRef := make(map[int][]int)
	for p := range h.Ref {
		newRef[p] = nil
	}
	for p := range other.Ref {
		newRef[p] = nil
	}

	var elements []model.Element
	var boxes []model.BBox
	for _, e1 := range sortedKeys(match) {
		e2 := match[e1]
		elements = append(elements, h.Elements[e1])
		boxes = append(boxes, h.Boxes[e1].Union(other.Boxes[e2]))
		for p, r := range h.Ref {
			newRef[p] = append(newRef[p], r[e1])
		}
		for p, r := range other.Ref {
			newRef[p] = append(newRef[p], r[e2])
		}
	}
	h.Elements = elements
	h.Boxes = boxes
	h.Ref = newRef
}

// Assign records another header's pages as occurrences of this header.
// Unlike Merge, the item list stays as is; items with no counterpart on
// the assigned pages get a -1 reference.
func (h *Header) Assign(other *Header, match map[int]int) {
	newRef := make(map[int][]int)
	for p := range other.Ref {
		newRef[p] = nil
	}
	for _, e1 := range sortedKeys(match) {
		e2 := match[e1]
		for p, r := range other.Ref {
			for len(newRef[p]) < e1 {
				newRef[p] = append(newRef[p], -1)
			}
			newRef[p] = append(newRef[p], r[e2])
		}
	}
	for p, r := range newRef {
		h.Ref[p] = r
	}
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// similarElements compares two elements for header matching. Text blocks
// match on start position, and strictly when the full box and the
// normalized text agree; other elements need their whole box to agree.
func similarElements(el1 model.Element, box1 model.BBox, el2 model.Element, box2 model.BBox, tol float64) (strict, position bool) {
	tb1, ok1 := el1.(*model.TextBlock)
	tb2, ok2 := el2.(*model.TextBlock)
	if ok1 != ok2 {
		return false, false
	}
	if !ok1 {
		same := box1.ApproxEqual(box2, tol)
		return same, same
	}
	if math.Abs(box1.X0-box2.X0) > tol || math.Abs(box1.Y0-box2.Y0) > tol {
		return false, false
	}
	if math.Abs(box1.X1-box2.X1) <= tol && math.Abs(box1.Y1-box2.Y1) <= tol {
		strict = normalizeHeaderText(tb1.Text()) == normalizeHeaderText(tb2.Text())
	}
	return strict, true
}

var (
	confusableOnes = regexp.MustCompile(`[1IiLl]`)
	digitRun       = regexp.MustCompile(`\d+`)
)

// normalizeHeaderText prepares text for repeated-content comparison:
// Unicode compatibility normalization, characters commonly confused with
// the digit one folded to "1", digit runs replaced by a placeholder so
// page numbers compare equal, and whitespace collapsed.
func normalizeHeaderText(s string) string {
	s = norm.NFKC.String(s)
	s = confusableOnes.ReplaceAllString(s, "1")
	s = digitRun.ReplaceAllString(s, "<#>")
	return strings.Join(strings.Fields(s), " ")
}

// HeaderFooterDetector finds repeated page-margin content and removes it.
type HeaderFooterDetector struct {
	config HeaderFooterConfig
}

// NewHeaderFooterDetector creates a detector with default configuration.
func NewHeaderFooterDetector() *HeaderFooterDetector {
	return &HeaderFooterDetector{config: DefaultHeaderFooterConfig()}
}

// NewHeaderFooterDetectorWithConfig creates a detector with the given
// configuration.
func NewHeaderFooterDetectorWithConfig(config HeaderFooterConfig) (*HeaderFooterDetector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &HeaderFooterDetector{config: config}, nil
}

// Remove finds the document's headers and footers and strips them from
// every page. Detection proceeds in phases: build one raw header per
// page from its margin elements, find runs of three or more neighboring
// pages sharing the same content, gather headers with the same layout,
// assign the remaining pages to the best matching header, and finally
// remove the header elements. Documents with distinct odd and even page
// layouts are handled by running the matching separately per parity and
// keeping whichever split explains more pages.
func (d *HeaderFooterDetector) Remove(pages []*model.Page) {
	raw := d.createHeaders(pages)
	var evenRaw, oddRaw []*Header
	for _, h := range d.createHeaders(pages) {
		if firstPage(h)%2 == 0 {
			evenRaw = append(evenRaw, h)
		} else {
			oddRaw = append(oddRaw, h)
		}
	}

	headers, raw := d.matchNeighbors(raw)
	evenHeaders, evenRaw := d.matchNeighbors(evenRaw)
	oddHeaders, oddRaw := d.matchNeighbors(oddRaw)

	headers = d.gatherHeaders(headers)
	evenHeaders = d.gatherHeaders(evenHeaders)
	oddHeaders = d.gatherHeaders(oddHeaders)

	// Fewer leftover raw headers means the split explains more pages.
	if len(evenRaw)+len(oddRaw) < len(raw) {
		headers = d.gatherHeaders(append(evenHeaders, oddHeaders...))
		raw = append(evenRaw, oddRaw...)
	}

	if len(headers) != 0 {
		d.assignRawHeaders(headers, raw)
	} else {
		// No page run agreed on content. As a last resort, intersect
		// all pages on position alone.
		headers = d.bruteForcePositionMatch(raw)
	}

	d.removeHeaders(pages, headers)
}

func firstPage(h *Header) int {
	first := -1
	for p := range h.Ref {
		if first < 0 || p < first {
			first = p
		}
	}
	return first
}

// createHeaders builds the per-page raw headers from elements living in
// the configured margin bands.
func (d *HeaderFooterDetector) createHeaders(pages []*model.Page) []*Header {
	var headers []*Header
	for p, page := range pages {
		if page.Empty() {
			continue
		}
		topY := page.Height - page.Height*d.config.Margins[0]
		bottomY := page.Height * d.config.Margins[2]
		rightX := page.Width - page.Width*d.config.Margins[1]
		leftX := page.Width * d.config.Margins[3]

		var material []model.Element
		var indices []int
		for e, elem := range page.Elements {
			b := elem.Bounds()
			if b.X1 < leftX || b.X0 > rightX || b.Y1 < bottomY || b.Y0 > topY {
				material = append(material, elem)
				indices = append(indices, e)
			}
		}
		if len(material) != 0 {
			headers = append(headers, newHeader(material, p, indices))
		}
	}
	return headers
}

// matchNeighbors repeatedly extracts the best run of three or more
// consecutive raw headers with matching content, until no run is left.
func (d *HeaderFooterDetector) matchNeighbors(raw []*Header) (headers, remaining []*Header) {
	for {
		var merged *Header
		raw, merged = d.groupMatchingTrio(raw)
		if merged == nil {
			break
		}
		headers = append(headers, merged)
	}
	return headers, raw
}

// groupMatchingTrio scans for three consecutive headers whose contents
// match pairwise, extends a found trio while the match holds, and merges
// the best-scoring run into one header. Three-way agreement keeps
// accidental two-page coincidences out.
func (d *HeaderFooterDetector) groupMatchingTrio(raw []*Header) ([]*Header, *Header) {
	var runs [][]int
	var scores []int
	inMatch := false

	var pcMatch map[int]int
	for i := 0; i+2 < len(raw); i++ {
		prev, curr, next := raw[i], raw[i+1], raw[i+2]
		if pcMatch == nil {
			pcMatch = prev.Match(curr, true, d.config)
		}
		cnMatch := curr.Match(next, true, d.config)

		matched := false
		if sameIntSet(mapValues(pcMatch), mapKeys(cnMatch)) {
			pnMatch := prev.Match(next, true, d.config)
			if sameIntSet(mapKeys(pcMatch), mapKeys(pnMatch)) {
				if inMatch {
					runs[len(runs)-1] = append(runs[len(runs)-1], i+2)
				} else {
					runs = append(runs, []int{i, i + 1, i + 2})
					scores = append(scores, len(pnMatch))
				}
				matched = true
			}
		}
		inMatch = matched
		pcMatch = cnMatch
	}

	if len(runs) == 0 {
		return raw, nil
	}

	bestRun := 0
	for i, s := range scores {
		if s > scores[bestRun] {
			bestRun = i
		}
	}

	var merged *Header
	run := runs[bestRun]
	for j := len(run) - 1; j >= 0; j-- {
		idx := run[j]
		h := raw[idx]
		raw = append(raw[:idx], raw[idx+1:]...)
		if merged == nil {
			merged = h
			continue
		}
		merged.Merge(h, merged.Match(h, true, d.config))
	}
	return raw, merged
}

// gatherHeaders merges headers that share a layout: same number of items
// all pairing up by overlap. Distinct sections of a document often carry
// the same header frame with different text.
func (d *HeaderFooterDetector) gatherHeaders(headers []*Header) []*Header {
	var groups [][]int
	inGroup := make(map[int]bool)
	for i1 := 0; i1 < len(headers); i1++ {
		for i2 := i1 + 1; i2 < len(headers); i2++ {
			if len(headers[i1].OverlapMatch(headers[i2])) != len(headers[i1].Elements) {
				continue
			}
			placed := false
			for g := range groups {
				if intSliceContains(groups[g], i1) || intSliceContains(groups[g], i2) {
					if !intSliceContains(groups[g], i1) {
						groups[g] = append(groups[g], i1)
					}
					if !intSliceContains(groups[g], i2) {
						groups[g] = append(groups[g], i2)
					}
					placed = true
					break
				}
			}
			if !placed {
				groups = append(groups, []int{i1, i2})
			}
			inGroup[i1] = true
			inGroup[i2] = true
		}
	}

	var gathered []*Header
	for _, group := range groups {
		sort.Ints(group)
		base := headers[group[0]]
		for _, idx := range group[1:] {
			base.Assign(headers[idx], base.OverlapMatch(headers[idx]))
		}
		gathered = append(gathered, base)
	}
	for i, h := range headers {
		if !inGroup[i] {
			gathered = append(gathered, h)
		}
	}
	return gathered
}

// assignRawHeaders attaches each leftover single-page header to the
// gathered header it overlaps best.
func (d *HeaderFooterDetector) assignRawHeaders(headers []*Header, raw []*Header) {
	for _, r := range raw {
		bestIdx := 0
		bestScore := -1
		for i, h := range headers {
			if score := len(r.OverlapMatch(h)); score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		headers[bestIdx].Assign(r, headers[bestIdx].OverlapMatch(r))
	}
}

// bruteForcePositionMatch intersects all raw headers on position alone.
// This assumes every page shares one header layout, which only holds as
// a fallback when content matching found nothing.
func (d *HeaderFooterDetector) bruteForcePositionMatch(raw []*Header) []*Header {
	if len(raw) <= 1 {
		// A single page has nothing to repeat across pages.
		return nil
	}
	header := raw[0]
	for _, rh := range raw[1:] {
		header.Merge(rh, header.Match(rh, false, d.config))
	}
	return []*Header{header}
}

// removeHeaders strips header content from each covered page. Rather
// than deleting the matched elements alone, each page keeps only the
// elements strictly inside its green zone, the central area clear of
// header material; fragments hugging a header (rules under a title line,
// page-number decorations) go with it.
func (d *HeaderFooterDetector) removeHeaders(pages []*model.Page, headers []*Header) {
	for _, header := range headers {
		for p, indices := range header.Ref {
			zone := d.computeGreenZone(pages[p], indices)
			kept := pages[p].Elements[:0]
			for _, e := range pages[p].Elements {
				if e.Bounds().Within(zone) {
					kept = append(kept, e)
				}
			}
			pages[p].Elements = kept
		}
	}
}

// computeGreenZone shrinks the page area away from each header element,
// from whichever side cuts off the fewest non-header elements.
func (d *HeaderFooterDetector) computeGreenZone(page *model.Page, indices []int) model.BBox {
	isHeader := make(map[int]bool)
	for _, idx := range indices {
		if idx >= 0 {
			isHeader[idx] = true
		}
	}

	var top, right, bottom, left float64
	for _, idx := range indices {
		if idx < 0 || idx >= len(page.Elements) {
			continue
		}
		hb := page.Elements[idx].Bounds()

		var topImpact, rightImpact, bottomImpact, leftImpact int
		for e, elem := range page.Elements {
			if isHeader[e] {
				continue
			}
			b := elem.Bounds()
			if b.Y1 >= hb.Y0 {
				topImpact++
			}
			if b.X1 >= hb.X0 {
				rightImpact++
			}
			if b.Y0 <= hb.Y1 {
				bottomImpact++
			}
			if b.X0 <= hb.X1 {
				leftImpact++
			}
		}

		minImpact := topImpact
		for _, v := range []int{rightImpact, bottomImpact, leftImpact} {
			if v < minImpact {
				minImpact = v
			}
		}
		switch minImpact {
		case topImpact:
			top = math.Max(top, page.Height-hb.Y0)
		case bottomImpact:
			bottom = math.Max(bottom, hb.Y1)
		case leftImpact:
			left = math.Max(left, hb.X1)
		default:
			right = math.Max(right, page.Width-hb.X0)
		}
	}

	return model.BBox{X0: left, Y0: bottom, X1: page.Width - right, Y1: page.Height - top}
}

func mapKeys(m map[int]int) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func mapValues(m map[int]int) []int {
	out := make([]int, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func sameIntSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[int]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		if !set[v] {
			return false
		}
	}
	return true
}

func intSliceContains(s []int, x int) bool {
	for _, v := range s {
		if v == x {
			return true
		}
	}
	return false
}
