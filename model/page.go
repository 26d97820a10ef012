package model

// Page represents a single page of a document under reconstruction.
type Page struct {
	Number   int       // 1-indexed page number
	Width    float64   // Page width in points
	Height   float64   // Page height in points
	Rotation int       // Rotation angle (0, 90, 180, 270)
	Elements []Element // Ordered list of page elements
}

// NewPage creates an empty page with the given number and dimensions.
func NewPage(number int, width, height float64) *Page {
	return &Page{
		Number:   number,
		Width:    width,
		Height:   height,
		Elements: make([]Element, 0),
	}
}

// AddElement appends an element to the page.
func (p *Page) AddElement(elem Element) {
	p.Elements = append(p.Elements, elem)
}

// Empty reports whether the page has no elements left.
func (p *Page) Empty() bool { return len(p.Elements) == 0 }

// TextBlocks returns the page's text blocks in order.
func (p *Page) TextBlocks() []*TextBlock {
	var blocks []*TextBlock
	for _, e := range p.Elements {
		if tb, ok := e.(*TextBlock); ok {
			blocks = append(blocks, tb)
		}
	}
	return blocks
}

// Rules returns the page's line/rectangle primitives in order.
func (p *Page) Rules() []*Rule {
	var rules []*Rule
	for _, e := range p.Elements {
		if r, ok := e.(*Rule); ok {
			rules = append(rules, r)
		}
	}
	return rules
}

// Tables returns the page's detected table regions in order.
func (p *Page) Tables() []*Table {
	var tables []*Table
	for _, e := range p.Elements {
		if t, ok := e.(*Table); ok {
			tables = append(tables, t)
		}
	}
	return tables
}

// Clone returns a deep copy of the page.
func (p *Page) Clone() *Page {
	out := &Page{
		Number:   p.Number,
		Width:    p.Width,
		Height:   p.Height,
		Rotation: p.Rotation,
		Elements: make([]Element, len(p.Elements)),
	}
	for i, e := range p.Elements {
		out.Elements[i] = CloneElement(e)
	}
	return out
}

// ClonePages deep-copies a page list. Pipeline stages that run on a
// shared input use this before mutating.
func ClonePages(pages []*Page) []*Page {
	out := make([]*Page, len(pages))
	for i, p := range pages {
		out[i] = p.Clone()
	}
	return out
}
