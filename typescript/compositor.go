package typescript

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"msc/text"
)

// Compositor flows formatted text blocks into pages, splitting them at
// page boundaries when necessary.
type Compositor struct {
	// Contact information found in the block stream, set aside for
	// the writer.
	Contact *Block
	// Pages composed so far.
	Pages []Page

	footnotes        map[string][]Block
	firstPage        int
	nextPageNo       int
	hasStructure     bool
	lastPaddingAfter int
}

// NewCompositor creates a compositor that starts numbering at the
// given page number.
//
// When hasStructure is set the document has subdivisions and therefore
// opens with a title page, which is unnumbered. Otherwise numbering
// begins on the first page, because body content appears on it.
func NewCompositor(firstPage int, hasStructure bool) *Compositor {
	return &Compositor{
		footnotes:    make(map[string][]Block),
		firstPage:    firstPage,
		nextPageNo:   -1,
		hasStructure: hasStructure,
	}
}

type tocEntry struct {
	pageNo int
	block  Block
}

// Run flows a sequence of blocks into pages. Contact blocks are set
// aside, table of contents entries are remembered together with the
// page number they were encountered on and composed at the end.
func (c *Compositor) Run(blocks []Block) {
	var toc []tocEntry

	if len(c.Pages) == 0 { // first page
		if c.hasStructure {
			c.startNewPage()
			c.nextPageNo = c.firstPage
		} else {
			c.nextPageNo = c.firstPage
			c.startNewPage()
		}
	}

	var paddingBefore int

	for _, block := range blocks {
		switch block.Tag {
		case TagContact:
			contact := block
			c.Contact = &contact
		case TagTOC:
			toc = append(toc, tocEntry{c.curPage().Number, block})
		default:
			c.compose(block, &paddingBefore)
		}
	}

	if len(toc) > 0 {
		c.composeTOC(toc)
	}
}

// compose consumes one block, adding it to the current page.
func (c *Compositor) compose(block Block, paddingBefore *int) {
	if block.PaddingBefore < 0 {
		c.startNewPage()
		*paddingBefore = -block.PaddingBefore - 1
		c.lastPaddingAfter = 0
	} else {
		*paddingBefore = block.PaddingBefore
	}

	padding := max(*paddingBefore, c.lastPaddingAfter)
	c.lastPaddingAfter = block.PaddingAfter

	page := c.curPage()
	for range padding {
		page.Lines = append(page.Lines, nil)
	}

	c.composeBlock(block)
}

// composeTOC replays the deferred table of contents entries onto fresh
// unnumbered pages, attaching dot leaders and page numbers.
func (c *Compositor) composeTOC(entries []tocEntry) {
	center := LeftMargin + (RightMargin-LeftMargin)/2
	s := text.NewSegment("Table of Contents")
	n := utf8.RuneCountInString(s.Text)
	header := text.Line{
		Column:   center - n/2 - n%2,
		Segments: []text.Segment{s},
	}

	var paddingBefore int

	c.nextPageNo = -1
	c.compose(Block{
		Lines:         []text.Line{header},
		LineSpacing:   SpacingSingle,
		PaddingBefore: -1,
		PaddingAfter:  ChapterSkip,
		Tag:           TagTOC,
	}, &paddingBefore)

	for _, entry := range entries {
		block := entry.block
		if len(block.Lines) == 0 {
			continue
		}

		lineLength := RightMargin - LeftMargin + 1

		line := block.Lines[0]
		n := line.Length()

		pageNo := strconv.Itoa(entry.pageNo)
		p := len(pageNo)

		spacesRemaining := lineLength - n - p

		// The dot leaders sit on even columns, so the pad before them
		// depends on the parity of the entry text and the pad after
		// on the parity of the page number.
		var beforePad string
		if n%2 == 1 {
			spacesRemaining--
			beforePad = " "
		} else {
			spacesRemaining -= 2
			beforePad = "  "
		}

		var afterPad string
		if p%2 == 0 {
			afterPad = " "
		}

		// an overlong entry line leaves no room for leaders at all
		if spacesRemaining < 0 {
			spacesRemaining = 0
		}
		dots := strings.Repeat(". ", spacesRemaining/2)

		line.Segments = append(line.Segments, text.NewSegment(beforePad+dots+afterPad+pageNo))
		block.Lines[0] = line

		remainder := c.curPage().Height -
			len(c.curPage().Lines) -
			1 - // for the current line
			1 // for the entry separator

		// If the entry is about to be split, start a new page instead.
		if remainder < block.CountLines() {
			c.startNewPage()
			c.lastPaddingAfter = 0
		}

		c.compose(block, &paddingBefore)
	}
}

func (c *Compositor) startNewPage() {
	c.Pages = append(c.Pages, Page{
		Number: c.nextPageNo,
		Height: PageHeight,
	})
	c.nextPageNo++
}

func (c *Compositor) curPage() *Page {
	return &c.Pages[len(c.Pages)-1]
}

func (c *Compositor) composeBlock(block Block) {
	// Transfer footnotes to the lookup table.
	for _, fn := range block.Footnotes {
		c.footnotes[fn.Label] = fn.Blocks
	}

	blockHeight := len(block.Lines)

	for i, line := range block.Lines {
		if len(line.NoteRefs) > 0 { // there are footnotes on this line
			// Count the footer lines the notes will need.
			var footerHeight, found int

			for _, label := range line.NoteRefs {
				if found > 0 {
					footerHeight++ // blank row between footnotes
				}
				if footnote, ok := c.footnotes[label]; ok {
					footerHeight += CountBlockLines(footnote)
					found++
				}
			}

			remainder := c.curPage().Height -
				len(c.curPage().Lines) -
				1 - // for the current line
				footerHeight -
				2 // for the footnote separator

			if len(c.curPage().Footer) > 0 {
				remainder-- // blank row between footnotes
				remainder -= len(c.curPage().Footer)
			}

			if remainder < 1 {
				c.startNewPage()
			}

			// Move the footnotes onto the current page. A note
			// reference with no attached footnote is dropped here; a
			// footnote is consumed by its first reference.
			for _, label := range line.NoteRefs {
				blocks, ok := c.footnotes[label]
				if !ok {
					continue
				}
				delete(c.footnotes, label)

				page := c.curPage()
				if len(page.Footer) > 0 {
					page.Footer = append(page.Footer, nil)
				}

				m := len(blocks)
				for j, noteBlock := range blocks {
					n := len(noteBlock.Lines)
					for k := range noteBlock.Lines {
						noteLine := noteBlock.Lines[k]
						page.Footer = append(page.Footer, &noteLine)

						// Blank row between double-spaced lines,
						// except after the very last one.
						if (j < m-1 || k < n-1) && noteBlock.LineSpacing == SpacingDouble {
							page.Footer = append(page.Footer, nil)
						}
					}
				}
			}
		}

		// Back to the current line. The footer of the current page
		// may just have grown.
		remainder := c.curPage().Height - len(c.curPage().Lines) - 1
		if len(c.curPage().Footer) > 0 {
			remainder -= len(c.curPage().Footer) + 2
		}
		if remainder < 1 {
			c.startNewPage()
		}

		pageLine := line
		page := c.curPage()
		page.Lines = append(page.Lines, &pageLine)

		// If that was not the last line, and we are double spacing,
		// and there is room for at least one more row, add a blank.
		if i < blockHeight-1 &&
			block.LineSpacing == SpacingDouble &&
			page.Height-len(page.Lines) > 1 {
			page.Lines = append(page.Lines, nil)
		}
	}
}
