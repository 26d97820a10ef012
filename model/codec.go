package model

import (
	"encoding/json"
	"fmt"
	"io"
)

// The page codec reads and writes the JSON interchange format produced by
// the upstream layout analyzer: a list of pages, each carrying its text
// blocks (lines of positioned characters) and drawing rules.

type pageJSON struct {
	Number   int           `json:"number"`
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Rotation int           `json:"rotation,omitempty"`
	Blocks   []blockJSON   `json:"blocks,omitempty"`
	Rules    []ruleJSON    `json:"rules,omitempty"`
}

type blockJSON struct {
	BBox  [4]float64 `json:"bbox"`
	Lines []lineJSON `json:"lines"`
}

type lineJSON struct {
	BBox  [4]float64 `json:"bbox"`
	Chars []charJSON `json:"chars"`
}

type charJSON struct {
	BBox    [4]float64 `json:"bbox"`
	Value   string     `json:"value"`
	Font    string     `json:"font,omitempty"`
	Size    float64    `json:"size,omitempty"`
	Upright bool       `json:"upright"`
}

type ruleJSON struct {
	BBox [4]float64 `json:"bbox"`
}

func boxOf(a [4]float64) BBox { return NewBBox(a[0], a[1], a[2], a[3]) }

func arrOf(b BBox) [4]float64 { return [4]float64{b.X0, b.Y0, b.X1, b.Y1} }

// DecodePages reads analyzer page JSON from r.
func DecodePages(r io.Reader) ([]*Page, error) {
	var raw []pageJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding pages: %w", err)
	}
	pages := make([]*Page, 0, len(raw))
	for i, pj := range raw {
		if pj.Width <= 0 || pj.Height <= 0 {
			return nil, fmt.Errorf("page %d: non-positive dimensions %gx%g", i+1, pj.Width, pj.Height)
		}
		number := pj.Number
		if number == 0 {
			number = i + 1
		}
		p := NewPage(number, pj.Width, pj.Height)
		p.Rotation = pj.Rotation
		for _, bj := range pj.Blocks {
			tb := NewTextBlock()
			tb.BBox = boxOf(bj.BBox)
			for _, lj := range bj.Lines {
				line := &TextLine{BBox: boxOf(lj.BBox)}
				for _, cj := range lj.Chars {
					line.Chars = append(line.Chars, &Char{
						BBox:     boxOf(cj.BBox),
						Value:    cj.Value,
						FontName: cj.Font,
						FontSize: cj.Size,
						Upright:  cj.Upright,
					})
				}
				tb.Lines = append(tb.Lines, line)
			}
			p.AddElement(tb)
		}
		for _, rj := range pj.Rules {
			p.AddElement(&Rule{BBox: boxOf(rj.BBox)})
		}
		pages = append(pages, p)
	}
	return pages, nil
}

// EncodePages writes pages to w in the analyzer page JSON format. Table
// regions are not representable in the interchange format and are skipped.
func EncodePages(w io.Writer, pages []*Page) error {
	raw := make([]pageJSON, 0, len(pages))
	for _, p := range pages {
		pj := pageJSON{Number: p.Number, Width: p.Width, Height: p.Height, Rotation: p.Rotation}
		for _, e := range p.Elements {
			switch v := e.(type) {
			case *TextBlock:
				bj := blockJSON{BBox: arrOf(v.BBox)}
				for _, l := range v.Lines {
					lj := lineJSON{BBox: arrOf(l.BBox)}
					for _, c := range l.Chars {
						lj.Chars = append(lj.Chars, charJSON{
							BBox:    arrOf(c.BBox),
							Value:   c.Value,
							Font:    c.FontName,
							Size:    c.FontSize,
							Upright: c.Upright,
						})
					}
					bj.Lines = append(bj.Lines, lj)
				}
				pj.Blocks = append(pj.Blocks, bj)
			case *Rule:
				pj.Rules = append(pj.Rules, ruleJSON{BBox: arrOf(v.BBox)})
			}
		}
		raw = append(raw, pj)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(raw); err != nil {
		return fmt.Errorf("encoding pages: %w", err)
	}
	return nil
}
