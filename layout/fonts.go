package layout

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/tsawler/strata/model"
)

// FontConfig holds configuration for font extraction.
type FontConfig struct {
	// UnderlineMargin is the maximum height of a rule considered as an
	// underline stroke, and the maximum vertical gap between the stroke
	// and the text line it underlines.
	UnderlineMargin float64
}

// DefaultFontConfig returns the default font extraction configuration.
func DefaultFontConfig() FontConfig {
	return FontConfig{UnderlineMargin: 1.5}
}

// Validate checks the configuration for usable values.
func (c FontConfig) Validate() error {
	if c.UnderlineMargin < 0 {
		return fmt.Errorf("underline margin must be non-negative, got %g", c.UnderlineMargin)
	}
	return nil
}

// FontExtractor summarizes the visual style of every text block on a
// page into a [model.FontSignature], the input of title classification.
type FontExtractor struct {
	config FontConfig
}

// NewFontExtractor creates an extractor with default configuration.
func NewFontExtractor() *FontExtractor {
	return &FontExtractor{config: DefaultFontConfig()}
}

// NewFontExtractorWithConfig creates an extractor with the given
// configuration.
func NewFontExtractorWithConfig(config FontConfig) (*FontExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &FontExtractor{config: config}, nil
}

// Extract assigns a font signature to each text block on the page. The
// character-level style comes from the first alphanumeric character;
// blocks with none keep a nil font and stay out of classification. Thin
// horizontal rules close under a text line mark that block underlined.
func (x *FontExtractor) Extract(page *model.Page) {
	var strokes []*model.Rule
	for _, elem := range page.Elements {
		if r, ok := elem.(*model.Rule); ok && r.BBox.Height() <= x.config.UnderlineMargin {
			strokes = append(strokes, r)
		}
		tb, ok := elem.(*model.TextBlock)
		if !ok {
			continue
		}

		lead, found := firstAlnumChar(tb)
		if !found {
			tb.Font = nil
			continue
		}

		text := strings.TrimSpace(tb.Text())
		font := model.FontSignature{
			Size:       math.Round(lead.FontSize),
			Bold:       strings.Contains(lead.FontName, "Bold"),
			Italic:     strings.Contains(lead.FontName, "Italic"),
			AllCaps:    isAllUpper(strings.ReplaceAll(text, "'s", "")),
			TitleLike:  isTitleLike(text),
			SepInTitle: hasSepInTitle(text),
			Align:      math.Round(tb.BBox.X0),
		}
		tb.Font = &font
	}

	x.markUnderlined(page, strokes)
}

// ExtractPages runs Extract over each page.
func (x *FontExtractor) ExtractPages(pages []*model.Page) {
	for _, page := range pages {
		x.Extract(page)
	}
}

func firstAlnumChar(tb *model.TextBlock) (*model.Char, bool) {
	for _, line := range tb.Lines {
		for _, c := range line.Chars {
			if isAlnum(c.Value) {
				return c, true
			}
		}
	}
	return nil, false
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isAllUpper reports whether the text contains at least one cased letter
// and no lower-case letters.
func isAllUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

// Numbered-heading shapes: dotted digit or capital sequences followed by
// the heading text. The trailing capture holds everything after the
// numbering so it can be checked against measurement units separately.
var titleNumbering = []*regexp.Regexp{
	regexp.MustCompile(`(?s)^([0-9A-Z]{1,2}\.)*[0-9]{1,2}\.?\s+(\S.*)$`),
	regexp.MustCompile(`(?s)^([0-9A-Z]{1,2}\.)+\s+(\S.*)$`),
	regexp.MustCompile(`(?s)^[0-9]{1,3}(\.[0-9A-Z]{1,2})*\.?\s+(\S.*)$`),
}

// unitRemainder matches a measurement unit standing alone after a
// number. "3.5 cm" has the shape of a numbered heading but is not one.
var unitRemainder = regexp.MustCompile(`(?s)^\.*(m|cm|km|mm|nm|kg|°C|°K|°F)\.*(\n.+)?$`)

// isTitleLike reports whether the text starts like a numbered heading.
func isTitleLike(text string) bool {
	for _, re := range titleNumbering {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if !unitRemainder.MatchString(m[len(m)-1]) {
			return true
		}
	}
	return false
}

var noSepAfterNumber = regexp.MustCompile(`(?s)^\S+\s+[^.]+$`)

// hasSepInTitle reports whether a numbered heading carries separators in
// its body text. Dots after the heading text often mean a reference or a
// table-of-contents leader rather than a heading.
func hasSepInTitle(text string) bool {
	return isTitleLike(text) && !noSepAfterNumber.MatchString(text)
}

// markUnderlined matches each underline stroke to the first text line
// horizontally over it and within the vertical margin, and flags that
// block's font. One stroke underlines at most one block; partially
// underlined lines are not distinguished.
func (x *FontExtractor) markUnderlined(page *model.Page, strokes []*model.Rule) {
	for _, stroke := range strokes {
		x.matchStroke(page, stroke)
	}
}

func (x *FontExtractor) matchStroke(page *model.Page, stroke *model.Rule) {
	for _, tb := range page.TextBlocks() {
		if tb.Font == nil {
			continue
		}
		for _, line := range tb.Lines {
			if strings.TrimSpace(line.Text()) == "" {
				continue
			}
			if line.BBox.X0 <= stroke.BBox.X1 && stroke.BBox.X0 <= line.BBox.X1 &&
				line.BBox.VDistance(stroke.BBox) <= x.config.UnderlineMargin {
				tb.Font.Underline = true
				return
			}
		}
	}
}
