package strata

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/tsawler/strata/model"
)

// Assemble flattens processed pages into a document node stream. Text
// blocks become titles or paragraphs by their classification, table
// regions become table nodes, and drawing rules are dropped. When
// groupBullets is set, runs of bulleted paragraphs introduced by a
// colon-terminated paragraph collapse into one node.
func Assemble(name string, pages []*model.Page, groupBullets bool) *model.Document {
	doc := model.NewDocument(name)
	var run []model.Paragraph

	flushRun := func() {
		if len(run) == 0 {
			return
		}
		if groupBullets {
			run = groupBulletRun(run)
		}
		for _, p := range run {
			doc.Append(p)
		}
		run = nil
	}

	for _, page := range pages {
		for _, elem := range page.Elements {
			switch e := elem.(type) {
			case *model.TextBlock:
				text := flattenText(e.Text())
				if text == "" {
					continue
				}
				if e.IsTitle() {
					flushRun()
					doc.Append(model.Title{Page: page.Number, Level: e.TitleLevel + 1, Text: text})
				} else {
					run = append(run, model.Paragraph{Page: page.Number, Text: text})
				}
			case *model.Table:
				flushRun()
				node := model.TableNode{Page: page.Number}
				if e.Grid != nil {
					node.Rows = e.Grid.Rows
				}
				doc.Append(node)
			}
		}
	}
	flushRun()
	return doc
}

// flattenText collapses a block's line breaks and runs of whitespace
// into single spaces.
func flattenText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// groupBulletRun folds bulleted list items into the paragraph that
// introduces them. A paragraph ending with a colon opens a group when
// the next paragraph starts with a bullet marker of a different shape;
// following paragraphs matching any collected marker shape join the
// group. Grouped paragraphs keep their own lines, joined by newlines.
func groupBulletRun(paras []model.Paragraph) []model.Paragraph {
	var out []model.Paragraph
	var group []model.Paragraph
	var patterns []*regexp.Regexp
	var patternSrcs map[string]bool
	inBullet := false

	addPattern := func(src string) {
		if patternSrcs == nil {
			patternSrcs = make(map[string]bool)
		}
		if patternSrcs[src] {
			return
		}
		patternSrcs[src] = true
		if re, err := regexp.Compile("^(?:" + src + ")"); err == nil {
			patterns = append(patterns, re)
		}
	}
	flushGroup := func() {
		if len(group) != 0 {
			out = append(out, joinGroup(group))
		}
		group = nil
		patterns = nil
		patternSrcs = nil
	}

	for n, para := range paras {
		text := para.Text
		switch {
		case strings.HasSuffix(text, ":") && n < len(paras)-1:
			next := bulletPattern(paras[n+1].Text)
			if next != "" && bulletPattern(text) != next {
				group = append(group, para)
				addPattern(next)
				inBullet = true
			} else if len(group) != 0 {
				group = append(group, para)
				addPattern(next)
			} else {
				out = append(out, para)
			}
		case inBullet:
			matched := false
			for _, re := range patterns {
				if re.MatchString(text) {
					matched = true
					break
				}
			}
			if matched {
				group = append(group, para)
			} else {
				flushGroup()
				out = append(out, para)
				inBullet = false
			}
		default:
			out = append(out, para)
		}
	}
	if inBullet {
		flushGroup()
	}
	return out
}

func joinGroup(group []model.Paragraph) model.Paragraph {
	parts := make([]string, len(group))
	for i, p := range group {
		parts[i] = p.Text
	}
	return model.Paragraph{Page: group[0].Page, Text: strings.Join(parts, "\n")}
}

// bulletAlnumClass matches a run of word characters inside a bullet
// marker, covering Latin, Hangul, and CJK scripts.
const bulletAlnumClass = `[a-zA-Z0-9가-힣ㅏ-ㅣㄱ-ㅎ\x{4e00}-\x{9fff}]+`

// bulletPattern derives a marker-shape expression from a paragraph's
// first token: punctuation characters match themselves, alphanumeric
// runs match any run. A token without punctuation, or a plain bracketed
// word, is not a bullet marker and yields the empty string.
func bulletPattern(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	token := strings.Fields(line)[0]
	runes := []rune(token)
	if len(runes) > 1 && strings.ContainsRune("([{", runes[0]) && allAlnum(runes[1:]) {
		return ""
	}

	var parts []string
	hasPunct := false
	for _, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if len(parts) == 0 || parts[len(parts)-1] != bulletAlnumClass {
				parts = append(parts, bulletAlnumClass)
			}
			continue
		}
		c := string(r)
		switch r {
		case '\'', '"', '\\':
			c = `\` + c
		}
		parts = append(parts, "["+c+"]")
		hasPunct = true
	}
	if !hasPunct {
		return ""
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}

func allAlnum(runes []rune) bool {
	for _, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return len(runes) != 0
}
