package layout

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tsawler/strata/model"
)

// ============================================================================
// Text normalization for header matching
// ============================================================================

func TestNormalizeHeaderText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Page 12", "Page <#>"},
		{"Page 7", "Page <#>"},
		{"Chapter I", "Chapter <#>"},
		{"  spaced   out ", "spaced out"},
	}
	for _, tt := range tests {
		if got := normalizeHeaderText(tt.in); got != tt.want {
			t.Errorf("normalizeHeaderText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeHeaderTextCompatibility(t *testing.T) {
	// The fi ligature must compare equal to its two-letter spelling.
	if normalizeHeaderText("ﬁle") != normalizeHeaderText("file") {
		t.Error("ligature and plain spelling normalize differently")
	}
}

// ============================================================================
// Detection and removal
// ============================================================================

// headerPages builds pages with a numbered top header and a body block.
func headerPages(n int) []*model.Page {
	pages := make([]*model.Page, n)
	for i := range pages {
		pages[i] = makePage(i+1, 600, 800,
			makeBlock(makeLine(250, 760, 350, 780, fmt.Sprintf("Report Page %d", i+1))),
			makeBlock(makeLine(100, 400, 500, 430, "Body paragraph that stays on the page.")),
		)
	}
	return pages
}

func TestHeaderFooterRemoveRepeatedHeader(t *testing.T) {
	pages := headerPages(4)

	NewHeaderFooterDetector().Remove(pages)

	for i, page := range pages {
		if len(page.Elements) != 1 {
			t.Fatalf("page %d has %d elements, want 1", i+1, len(page.Elements))
		}
		tb, ok := page.Elements[0].(*model.TextBlock)
		if !ok || !strings.Contains(tb.Text(), "Body paragraph") {
			t.Errorf("page %d kept the wrong element", i+1)
		}
	}
}

func TestHeaderFooterRemoveKeepsBodyIntact(t *testing.T) {
	pages := headerPages(5)

	var bodyTexts []string
	for _, p := range pages {
		bodyTexts = append(bodyTexts, p.TextBlocks()[1].Text())
	}

	NewHeaderFooterDetector().Remove(pages)

	for i, p := range pages {
		if got := p.TextBlocks()[0].Text(); got != bodyTexts[i] {
			t.Errorf("page %d body changed: %q -> %q", i+1, bodyTexts[i], got)
		}
	}
}

func TestHeaderFooterSinglePageUntouched(t *testing.T) {
	pages := headerPages(1)

	NewHeaderFooterDetector().Remove(pages)

	if len(pages[0].Elements) != 2 {
		t.Errorf("single page has %d elements, want 2; nothing repeats on one page", len(pages[0].Elements))
	}
}

func TestHeaderFooterOddEvenLayouts(t *testing.T) {
	// Even pages carry a top header, odd pages a bottom footer. Neither
	// parity alone reaches the whole document, but split by parity each
	// side repeats cleanly.
	pages := make([]*model.Page, 6)
	for i := range pages {
		body := makeBlock(makeLine(100, 400, 500, 430, "Body paragraph that stays."))
		if i%2 == 0 {
			pages[i] = makePage(i+1, 600, 800,
				makeBlock(makeLine(200, 760, 300, 775, "Alpha Report")), body)
		} else {
			pages[i] = makePage(i+1, 600, 800,
				makeBlock(makeLine(250, 20, 340, 35, "Beta Notes")), body)
		}
	}

	NewHeaderFooterDetector().Remove(pages)

	for i, page := range pages {
		if len(page.Elements) != 1 {
			t.Fatalf("page %d has %d elements, want 1", i+1, len(page.Elements))
		}
		tb := page.Elements[0].(*model.TextBlock)
		if !strings.Contains(tb.Text(), "Body paragraph") {
			t.Errorf("page %d kept %q instead of the body", i+1, tb.Text())
		}
	}
}

func TestHeaderFooterIgnoresCentralContent(t *testing.T) {
	// Identical blocks in the page center are content, not headers.
	pages := make([]*model.Page, 4)
	for i := range pages {
		pages[i] = makePage(i+1, 600, 800,
			makeBlock(makeLine(100, 400, 500, 430, "Warning: identical safety note on every page.")),
		)
	}

	NewHeaderFooterDetector().Remove(pages)

	for i, page := range pages {
		if page.Empty() {
			t.Errorf("page %d central content was removed", i+1)
		}
	}
}

// ============================================================================
// Configuration
// ============================================================================

func TestHeaderFooterConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*HeaderFooterConfig)
		wantErr bool
	}{
		{"default", func(c *HeaderFooterConfig) {}, false},
		{"margin above one", func(c *HeaderFooterConfig) { c.Margins[0] = 1.2 }, true},
		{"negative margin", func(c *HeaderFooterConfig) { c.Margins[3] = -0.1 }, true},
		{"vertical overlap", func(c *HeaderFooterConfig) { c.Margins[0], c.Margins[2] = 0.6, 0.6 }, true},
		{"horizontal overlap", func(c *HeaderFooterConfig) { c.Margins[1], c.Margins[3] = 0.7, 0.5 }, true},
		{"negative tolerance", func(c *HeaderFooterConfig) { c.StrictTol = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultHeaderFooterConfig()
			tt.mutate(&config)
			_, err := NewHeaderFooterDetectorWithConfig(config)
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
