package layout

import (
	"github.com/tsawler/strata/model"
)

// TitleClassifier infers the title hierarchy of a document from font
// prominence. The most common font is the body text; any font that is
// always followed by body content is a title font, found level by level:
// once a title level is identified, its font counts as content when
// searching for the next, deeper level.
type TitleClassifier struct{}

// NewTitleClassifier creates a classifier.
func NewTitleClassifier() *TitleClassifier {
	return &TitleClassifier{}
}

// fontOf returns the classification font of an element. Table regions
// share one synthetic font; text blocks carry their extracted font, nil
// when the block has no alphanumeric content.
func fontOf(elem model.Element) (model.FontSignature, bool) {
	switch e := elem.(type) {
	case *model.Table:
		return model.TableFont(), true
	case *model.TextBlock:
		if e.Font != nil {
			return *e.Font, true
		}
	}
	return model.FontSignature{}, false
}

// Classify sets the title level of every text block across the pages.
// Blocks that are not titles get [model.BodyLevel]. Level zero is the
// most prominent title.
func (c *TitleClassifier) Classify(pages []*model.Page) {
	counts := make(map[model.FontSignature]int)
	var order []model.FontSignature
	for _, page := range pages {
		for _, elem := range page.Elements {
			font, ok := fontOf(elem)
			if !ok {
				continue
			}
			if counts[font] == 0 {
				order = append(order, font)
			}
			counts[font]++
		}
	}
	if len(order) == 0 {
		return
	}

	bodyFont := order[0]
	for _, f := range order {
		if counts[f] > counts[bodyFont] {
			bodyFont = f
		}
	}

	// Fonts rendering like the body font, and fonts less prominent than
	// it, can never be titles.
	textSet := make(map[model.FontSignature]bool)
	var candidates []model.FontSignature
	for _, f := range order {
		if sameRendering(f, bodyFont) || smallerFont(f, bodyFont) {
			textSet[f] = true
		} else {
			candidates = append(candidates, f)
		}
	}
	textSet[model.TableFont()] = true

	var titleFonts []model.FontSignature
	for len(candidates) > 0 {
		var chosen []model.FontSignature
		var isTitle bool
		chosen, candidates, isTitle = c.nextTitleFont(pages, candidates, textSet)
		if isTitle {
			titleFonts = append(titleFonts, chosen...)
		}
		for _, f := range chosen {
			textSet[f] = true
		}
	}

	// Title fonts were found most prominent first; the last found is
	// level zero of the hierarchy.
	level := make(map[model.FontSignature]int)
	for i, f := range titleFonts {
		level[f] = len(titleFonts) - 1 - i
	}
	for _, page := range pages {
		for _, tb := range page.TextBlocks() {
			tb.TitleLevel = model.BodyLevel
			if tb.Font != nil {
				if lvl, ok := level[*tb.Font]; ok {
					tb.TitleLevel = lvl
				}
			}
		}
	}
}

func sameRendering(f, ref model.FontSignature) bool {
	if f.Table != ref.Table {
		return false
	}
	return f == ref || f.SimilarText(ref)
}

func smallerFont(f, ref model.FontSignature) bool {
	if f.Table || ref.Table {
		return false
	}
	return f.SmallerThan(ref)
}

// nextTitleFont identifies the next title font among the candidates. A
// candidate qualifies when every encounter is followed by content, since
// a title without content under it does not exist. When no candidate
// qualifies, the weakest candidates are demoted to text so the search
// can continue.
func (c *TitleClassifier) nextTitleFont(pages []*model.Page, candidates []model.FontSignature, textSet map[model.FontSignature]bool) (chosen, remaining []model.FontSignature, isTitle bool) {
	encounter := make(map[model.FontSignature]int, len(candidates))
	valid := make(map[model.FontSignature]int, len(candidates))
	willBe := make(map[model.FontSignature]int, len(candidates))
	for _, f := range candidates {
		encounter[f] = 0
	}

	for _, page := range pages {
		for e, elem := range page.Elements {
			font, ok := fontOf(elem)
			if !ok || textSet[font] {
				continue
			}
			if _, ok := encounter[font]; !ok {
				continue
			}

			_, next, found := nextFontOnPage(page, e)
			if !found {
				continue
			}
			encounter[font]++
			if textSet[next] {
				valid[font]++
			} else if c.hasTextBetween(page, e, font, textSet) {
				willBe[font]++
			}
		}
	}

	// A font never encountered mid-page only ever closes pages; a lone
	// caption or table remnant, not a title. Demote all such fonts.
	var neverMet []model.FontSignature
	for _, f := range candidates {
		if encounter[f] == 0 {
			neverMet = append(neverMet, f)
		}
	}
	if len(neverMet) != 0 {
		return neverMet, withoutFonts(candidates, neverMet), false
	}

	// The next title is the always-valid candidate with the fewest
	// encounters, deeper titles being rarer than shallow ones.
	bestIdx := -1
	bestCount := 0
	for i, f := range candidates {
		if encounter[f] == valid[f] && (bestIdx < 0 || encounter[f] < bestCount) {
			bestIdx = i
			bestCount = encounter[f]
		}
	}
	if bestIdx >= 0 {
		chosen = []model.FontSignature{candidates[bestIdx]}
		remaining = append(candidates[:bestIdx], candidates[bestIdx+1:]...)
		return chosen, remaining, true
	}

	// No candidate is always valid: some text carries an odd font.
	// Demote the candidates with the fewest valid encounters, breaking
	// ties by the fewest would-be-valid encounters.
	minValid := -1
	for _, f := range candidates {
		if minValid < 0 || valid[f] < minValid {
			minValid = valid[f]
		}
	}
	var weakest []model.FontSignature
	for _, f := range candidates {
		if valid[f] == minValid {
			weakest = append(weakest, f)
		}
	}
	minWillBe := -1
	for _, f := range weakest {
		if minWillBe < 0 || willBe[f] < minWillBe {
			minWillBe = willBe[f]
		}
	}
	var demoted []model.FontSignature
	for _, f := range weakest {
		if willBe[f] == minWillBe {
			demoted = append(demoted, f)
		}
	}
	return demoted, withoutFonts(candidates, demoted), false
}

// nextFontOnPage returns the index and font of the first element after
// idx carrying a font.
func nextFontOnPage(page *model.Page, idx int) (int, model.FontSignature, bool) {
	for i := idx + 1; i < len(page.Elements); i++ {
		if font, ok := fontOf(page.Elements[i]); ok {
			return i, font, true
		}
	}
	return 0, model.FontSignature{}, false
}

// hasTextBetween reports whether content with a text font appears
// between the element at idx and the next occurrence of the same font.
func (c *TitleClassifier) hasTextBetween(page *model.Page, idx int, font model.FontSignature, textSet map[model.FontSignature]bool) bool {
	i := idx
	for {
		next, nextFont, found := nextFontOnPage(page, i)
		if !found {
			return false
		}
		if textSet[nextFont] {
			return true
		}
		if nextFont == font {
			return false
		}
		i = next
	}
}

func withoutFonts(fonts, drop []model.FontSignature) []model.FontSignature {
	dropSet := make(map[model.FontSignature]bool, len(drop))
	for _, f := range drop {
		dropSet[f] = true
	}
	var out []model.FontSignature
	for _, f := range fonts {
		if !dropSet[f] {
			out = append(out, f)
		}
	}
	return out
}

// maxNormalizePasses bounds the normalization loop. Each pass raises a
// whole title level toward the root, so real documents converge in far
// fewer passes.
const maxNormalizePasses = 1000

// NormalizeTitleLevels repairs jumps in the title hierarchy: a title
// whose level is deeper than its position in the document allows (a
// level-2 title directly under a level-0 title) moves up to the level
// its position implies. All titles sharing the wrong level move
// together, since they share a font. Fixing one level can expose
// another jump, so the repair loops until the hierarchy is consistent.
func NormalizeTitleLevels(pages []*model.Page) {
	for pass := 0; pass < maxNormalizePasses; pass++ {
		wrong, right, found := findLevelInconsistency(pages)
		if !found {
			return
		}
		for _, page := range pages {
			for _, tb := range page.TextBlocks() {
				if tb.IsTitle() && tb.TitleLevel == wrong {
					tb.TitleLevel = right
				}
			}
		}
	}
}

// findLevelInconsistency returns the shallowest title level that sits
// deeper than its nesting position allows, and the level it should have.
func findLevelInconsistency(pages []*model.Page) (wrong, right int, found bool) {
	nest := 0
	wrong = -1
	for _, page := range pages {
		for _, tb := range page.TextBlocks() {
			if !tb.IsTitle() {
				continue
			}
			if (wrong < 0 || tb.TitleLevel < wrong) && tb.TitleLevel > nest {
				wrong = tb.TitleLevel
				right = nest
				found = true
			}
			nest = tb.TitleLevel + 1
		}
	}
	return wrong, right, found
}
