package layout

import (
	"math"
	"regexp"
	"strings"

	"github.com/tsawler/strata/model"
)

// LandscapeConfig holds configuration for landscape page removal.
type LandscapeConfig struct {
	// DistMargin is the minimum size difference, summed over width and
	// height, for a page to count as differently sized than the rest of
	// the document.
	DistMargin float64
}

// DefaultLandscapeConfig returns the default landscape removal configuration.
func DefaultLandscapeConfig() LandscapeConfig {
	return LandscapeConfig{DistMargin: 10}
}

// RemoveLandscapePages empties pages whose size deviates from the
// document's most common page size. Odd-sized pages usually carry
// appendix material, oversized tables or figures. Pages are emptied, not
// deleted, so page numbering stays intact.
func RemoveLandscapePages(pages []*model.Page, config LandscapeConfig) {
	if len(pages) == 0 {
		return
	}

	type size struct{ w, h int }
	counts := make(map[size]int)
	sizes := make([]size, len(pages))
	for i, p := range pages {
		s := size{int(math.Round(p.Width)), int(math.Round(p.Height))}
		sizes[i] = s
		counts[s]++
	}

	var normal size
	best := -1
	for i, s := range sizes {
		// First-seen wins ties, matching the page order.
		if counts[s] > best {
			best = counts[s]
			normal = sizes[i]
		}
	}

	for i, s := range sizes {
		dist := math.Abs(float64(s.w-normal.w)) + math.Abs(float64(s.h-normal.h))
		if dist > config.DistMargin {
			pages[i].Elements = nil
		}
	}
}

// TOCConfig holds configuration for table-of-contents removal.
type TOCConfig struct {
	// DigitLineRatio is the minimum fraction of a page's lines that must
	// end with a digit (a page reference) for the page to count as TOC
	// content.
	DigitLineRatio float64
}

// DefaultTOCConfig returns the default TOC removal configuration.
func DefaultTOCConfig() TOCConfig {
	return TOCConfig{DigitLineRatio: 0.6}
}

var (
	tocTitleNormalizer = regexp.MustCompile(`[\W_]+`)
	trailingDigit      = regexp.MustCompile(`\d\s*$`)
)

var tocTitles = map[string]bool{
	"content":         true,
	"contents":        true,
	"tableofcontent":  true,
	"tableofcontents": true,
}

// RemoveTOCPages locates table-of-contents pages and empties them, along
// with everything before the first TOC: the document proper starts after
// its table of contents. A TOC starts at a page carrying a contents
// title and runs while most lines end with a page reference.
func RemoveTOCPages(pages []*model.Page, config TOCConfig) {
	tocs := findTOCRanges(pages, config)
	if len(tocs) == 0 {
		return
	}
	tocs[0][0] = 0 // front matter before the first TOC goes too

	for _, toc := range tocs {
		for i := toc[0]; i < toc[1]; i++ {
			pages[i].Elements = nil
		}
	}
}

func findTOCRanges(pages []*model.Page, config TOCConfig) [][2]int {
	var tocs [][2]int
	start := -1
	for p, page := range pages {
		type yKey struct{ y0, y1 int }
		lines := make(map[yKey]string)
		linesX := make(map[yKey]float64)

		for _, tb := range page.TextBlocks() {
			if start < 0 && isTOCTitle(tb.Text()) {
				start = p
			}
			if start < 0 {
				continue
			}
			for _, line := range tb.Lines {
				k := yKey{int(math.Round(line.BBox.Y0)), int(math.Round(line.BBox.Y1))}
				// Several lines can share a height in two-column
				// TOCs; the rightmost carries the page reference.
				if x, ok := linesX[k]; !ok || line.BBox.X1 > x {
					lines[k] = strings.TrimSpace(line.Text())
					linesX[k] = line.BBox.X1
				}
			}
		}

		if start >= 0 {
			texts := make([]string, 0, len(lines))
			for _, text := range lines {
				texts = append(texts, text)
			}
			if !isTOCContent(texts, config.DigitLineRatio) {
				tocs = append(tocs, [2]int{start, p})
				start = -1
			}
		}
	}
	if start >= 0 {
		tocs = append(tocs, [2]int{start, start + 1})
	}
	return tocs
}

func isTOCTitle(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		norm := strings.ToLower(tocTitleNormalizer.ReplaceAllString(line, ""))
		if tocTitles[norm] {
			return true
		}
	}
	return false
}

// isTOCContent reports whether most of the non-empty lines end with a
// digit, the page-reference shape of TOC entries.
func isTOCContent(lines []string, ratio float64) bool {
	var total, withDigit int
	for _, line := range lines {
		if line == "" {
			continue
		}
		total++
		if trailingDigit.MatchString(line) {
			withDigit++
		}
	}
	if total == 0 {
		return false
	}
	return float64(withDigit)/float64(total) > ratio
}

// RemoveNonSearchablePages empties pages holding no text at all, such as
// pages that are a single scanned image. Downstream table parsing cannot
// work with them and they carry no reconstructable structure.
func RemoveNonSearchablePages(pages []*model.Page) {
	for _, page := range pages {
		searchable := false
		for _, tb := range page.TextBlocks() {
			if strings.TrimSpace(tb.Text()) != "" {
				searchable = true
				break
			}
		}
		if !searchable {
			page.Elements = nil
		}
	}
}

// RemoveMathText drops characters rendered with a math font. Formula
// fragments read as garbage in reconstructed paragraphs.
func RemoveMathText(pages []*model.Page) {
	for _, page := range pages {
		for _, tb := range page.TextBlocks() {
			for _, line := range tb.Lines {
				kept := line.Chars[:0]
				for _, c := range line.Chars {
					if strings.Contains(c.FontName, "Math") {
						continue
					}
					kept = append(kept, c)
				}
				line.Chars = kept
			}
		}
	}
}

// RemoveEmptyLines drops whitespace-only lines from text blocks, and
// text blocks left without lines from their pages.
func RemoveEmptyLines(pages []*model.Page) {
	for _, page := range pages {
		for _, tb := range page.TextBlocks() {
			kept := tb.Lines[:0]
			for _, line := range tb.Lines {
				if strings.TrimSpace(line.Text()) == "" {
					continue
				}
				kept = append(kept, line)
			}
			tb.Lines = kept
		}
		dropEmptyBlocks(page)
	}
}

// dropEmptyBlocks removes text blocks with no lines left.
func dropEmptyBlocks(page *model.Page) {
	kept := page.Elements[:0]
	for _, e := range page.Elements {
		if tb, ok := e.(*model.TextBlock); ok && len(tb.Lines) == 0 {
			continue
		}
		kept = append(kept, e)
	}
	page.Elements = kept
}
