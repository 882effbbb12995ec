// Package typescript holds the in-memory representation of a composed
// document: formatted text blocks, the compositor flowing them into
// pages, and the fixed geometry of typewriter manuscript format.
package typescript

import "msc/text"

// Page geometry. Typewriter lines are 12 points high, 66 per page.
// With at least one-inch margins that leaves 54 lines, or 27
// double-spaced lines.
const (
	// CharWidth is the fixed pitch character width in points.
	CharWidth = 7.2
	// LineHeight is the line height in points.
	LineHeight = 12.0
	// Indent is the default indent in spaces.
	Indent = 5
	// LeftMargin is one inch from the left edge, in columns.
	LeftMargin = 10
	// RightMargin is one inch from the right edge, in columns.
	RightMargin = 74
	// SlugLine is the row the slug line prints on.
	SlugLine = 62
	// TopLine is the first content row.
	TopLine = 59
	// MiddleLine is the middle of the page.
	MiddleLine = 27
	// BottomLine is the last content row.
	BottomLine = 6
	// PartSkip is the number of rows to skip after a part title.
	PartSkip = 5
	// ChapterSkip is the number of rows to skip after a chapter title.
	ChapterSkip = 11
	// SectionSkip is the number of rows to skip after a section title.
	SectionSkip = 5
)

// PageHeight is the number of content rows on a page.
const PageHeight = TopLine - BottomLine + 1

// LineSpacing selects the amount of line spacing for a block of text.
type LineSpacing int

const (
	SpacingSingle LineSpacing = 1
	SpacingDouble LineSpacing = 2
)

// ParseLineSpacing maps an attribute value to a spacing. Anything but
// "double" is single.
func ParseLineSpacing(s string) LineSpacing {
	if s == "double" {
		return SpacingDouble
	}
	return SpacingSingle
}

// Tag marks special-purpose blocks.
type Tag int

const (
	// TagNone marks an ordinary flowing block.
	TagNone Tag = iota
	// TagContact marks contact information, which is set aside and
	// printed in a corner of the title page.
	TagContact
	// TagHead marks head matter blocks. They flow with everything
	// else.
	TagHead
	// TagTOC marks table of contents entries, set aside by the
	// compositor and composed after the rest of the document.
	TagTOC
)

// Footnote pairs a note label with the formatted blocks of its body.
type Footnote struct {
	Label  string
	Blocks []Block
}

// Block is a formatted run of lines the compositor flows as a unit.
type Block struct {
	// Lines to be printed.
	Lines []text.Line
	// Footnotes appearing in the block, keyed for the compositor.
	Footnotes []Footnote
	// LineSpacing can be single or double.
	LineSpacing LineSpacing
	// PaddingBefore is the number of blank rows preceding the block.
	// A negative value -n forces a page break and opens the new page
	// with n-1 blank rows.
	PaddingBefore int
	// PaddingAfter is the number of blank rows following the block.
	PaddingAfter int
	// Tag marks special-purpose blocks.
	Tag Tag
}

// CountLines returns the number of rows the block occupies once it is
// rendered with its line spacing.
func (b *Block) CountLines() int {
	if len(b.Lines) == 0 {
		return 0
	}
	if b.LineSpacing == SpacingDouble {
		return len(b.Lines)*2 - 1
	}
	return len(b.Lines)
}

// CountBlockLines returns the total number of rows a block list
// occupies. Adjacent paddings collapse to the larger of the two.
func CountBlockLines(blocks []Block) int {
	var n, lastPaddingAfter int

	for i := range blocks {
		b := &blocks[i]
		if i > 0 && b.PaddingBefore >= 0 {
			n += max(b.PaddingBefore, lastPaddingAfter)
		}
		n += b.CountLines()
		lastPaddingAfter = b.PaddingAfter
	}
	return n
}

// Page is a numbered page: the rows to output and the footnote footer.
type Page struct {
	// Number is printed when positive. Zero or negative pages are
	// unnumbered.
	Number int
	// Height of the page in rows.
	Height int
	// Lines hold the page content. Nil entries are blank rows.
	Lines []*text.Line
	// Footer lines print at the bottom of the page, above the bottom
	// margin.
	Footer []*text.Line
}

// Typescript is the composed document handed to the PostScript writer.
type Typescript struct {
	// Contact information, printed in the top left corner of the
	// title page when present.
	Contact *Block
	// WordCount is printed in the top right corner of the title page
	// when positive.
	WordCount int
	// HasStructure indicates the document contained subdivisions:
	// parts, chapters or sections.
	HasStructure bool
	// ShortTitle is the document title formatted for the slug line.
	ShortTitle text.Segment
	// ShortAuthor is the surname of the first listed author,
	// formatted for the slug line.
	ShortAuthor text.Segment
	// Pages to write to the output stream.
	Pages []Page
}
