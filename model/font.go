package model

// FontSignature summarizes the visual style of a text block for title
// classification. The struct is comparable so it can key occurrence maps.
type FontSignature struct {
	// Table marks text living inside a detected table region. Table text
	// never participates in title classification.
	Table bool
	// Size is the dominant character height, rounded to one decimal.
	Size float64
	// Bold and Italic are derived from the dominant font name.
	Bold   bool
	Italic bool
	// Underline marks blocks with a horizontal rule at the baseline.
	Underline bool
	// AllCaps marks blocks whose letters are all upper case.
	AllCaps bool
	// TitleLike marks blocks matching a numbered-heading text shape.
	TitleLike bool
	// SepInTitle marks title-like blocks with a separator after the number.
	SepInTitle bool
	// Align is the left edge of the block, rounded to the nearest point.
	Align float64
}

// TableFont returns the signature shared by all table text.
func TableFont() FontSignature {
	return FontSignature{Table: true}
}

// SimilarText reports whether two signatures render text that looks the
// same to a reader, ignoring alignment and separator details. Used when
// absorbing rare fonts into a dominant similar font.
func (f FontSignature) SimilarText(other FontSignature) bool {
	return f.Size == other.Size &&
		f.Bold == other.Bold &&
		f.AllCaps == other.AllCaps &&
		f.Underline == other.Underline &&
		f.TitleLike == other.TitleLike
}

// SmallerThan reports whether the font renders visibly less prominent
// text than other: smaller size, or same size with fewer emphasis marks.
func (f FontSignature) SmallerThan(other FontSignature) bool {
	if f.Size != other.Size {
		return f.Size < other.Size
	}
	return f.weight() < other.weight()
}

func (f FontSignature) weight() int {
	w := 0
	if f.Bold {
		w++
	}
	if f.Underline {
		w++
	}
	if f.AllCaps {
		w++
	}
	return w
}
