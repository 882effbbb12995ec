package convert

import (
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"msc/manuscript"
	"msc/text"
	"msc/typescript"
)

// Conversions from manuscript elements to typescript blocks. Geometry is
// fixed: titles and headings are balanced into a narrow measure and centered,
// body text fills the full measure.
const (
	// centerColumn is the middle column of the text area.
	centerColumn = typescript.LeftMargin + (typescript.RightMargin-typescript.LeftMargin)/2
	// titleWidth is the measure titles and headings are balanced into.
	titleWidth = typescript.RightMargin - typescript.LeftMargin - 4*typescript.Indent + 1
	// textWidth is the full measure of the text area.
	textWidth = typescript.RightMargin - typescript.LeftMargin + 1
)

// centerLines positions every line around the center column. Odd-length
// lines shift left.
func centerLines(lines []text.Line) {
	for i := range lines {
		n := lines[i].Length()
		lines[i].Column = centerColumn - n/2 - n%2
	}
}

// centeredHeadline makes a single centered line from plain text.
func centeredHeadline(s string) text.Line {
	line := text.LineOf(text.NewSegment(s))
	n := line.Length()
	line.Column = centerColumn - n/2 - n%2
	return line
}

// formatBlocks flattens the manuscript tree into the block list handed to
// the compositor.
func formatBlocks(ms *manuscript.Manuscript, numerals *typescript.RomanNumerals) []typescript.Block {
	var blocks []typescript.Block

	for _, child := range ms.Children {
		switch e := child.(type) {
		case *manuscript.Head:
			blocks = append(blocks, formatHead(e)...)
		case *manuscript.Body:
			blocks = append(blocks, formatBody(e, numerals)...)
		case *manuscript.Frontmatter:
			blocks = append(blocks, formatMatter(e.Label, e.Children, false)...)
		case *manuscript.Backmatter:
			blocks = append(blocks, formatMatter(e.Label, e.Children, true)...)
		}
	}
	return blocks
}

// formatHead lays out the title page material. The title block is pushed
// down so the group of title, subtitle and author lines sits around the
// middle of the page. Only the last of each element kind survives.
func formatHead(head *manuscript.Head) []typescript.Block {
	var title, subtitle, authors, contact *typescript.Block
	var lineCount int
	n := len(head.Children)

	for i, child := range head.Children {
		switch e := child.(type) {
		case *manuscript.Authors:
			b := formatAuthors(e)
			lineCount += b.CountLines()
			authors = &b
		case *manuscript.Contact:
			b := formatContact(e)
			contact = &b
		case *manuscript.Title:
			b := formatTitle(e)
			if i < n-1 {
				lineCount += b.CountLines() + 2
			}
			title = &b
		case *manuscript.Subtitle:
			b := formatSubtitle(e)
			if i < n-1 {
				lineCount += b.CountLines() + 2
			}
			subtitle = &b
		}
	}

	var blocks []typescript.Block
	if contact != nil {
		blocks = append(blocks, *contact)
	}
	if title != nil {
		title.PaddingBefore = typescript.MiddleLine - lineCount
		blocks = append(blocks, *title)
	}
	if subtitle != nil {
		blocks = append(blocks, *subtitle)
	}
	if authors != nil {
		blocks = append(blocks, *authors)
	}
	return blocks
}

// formatBody flows the body children into blocks in document order.
func formatBody(body *manuscript.Body, numerals *typescript.RomanNumerals) []typescript.Block {
	blocks := make([]typescript.Block, 0, len(body.Children))

	for _, child := range body.Children {
		switch e := child.(type) {
		case *manuscript.Attribution:
			blocks = append(blocks, formatAttribution(e))
		case *manuscript.Blockquote:
			blocks = append(blocks, formatBlockquote(e)...)
		case *manuscript.Br:
			blocks = append(blocks, formatBr())
		case *manuscript.Chapter:
			blocks = append(blocks, formatChapter(e)...)
		case *manuscript.Div:
			blocks = append(blocks, formatDiv())
		case *manuscript.Frontmatter:
			blocks = append(blocks, formatMatter(e.Label, e.Children, false)...)
		case *manuscript.Backmatter:
			blocks = append(blocks, formatMatter(e.Label, e.Children, true)...)
		case *manuscript.OrderedList:
			blocks = append(blocks, formatList(e.Children)...)
		case *manuscript.Paragraph:
			blocks = append(blocks, formatParagraph(e))
		case *manuscript.PageBreak:
			blocks = append(blocks, formatPageBreak())
		case *manuscript.Part:
			blocks = append(blocks, formatPart(e, numerals)...)
		case *manuscript.Section:
			blocks = append(blocks, formatSection(e)...)
		case *manuscript.UnorderedList:
			blocks = append(blocks, formatList(e.Children)...)
		}
	}
	return blocks
}

// formatMatter lays out front or back matter: a centered label headline
// opening a fresh page, a table of contents entry, then the children.
// Bibliography entries only occur in back matter.
func formatMatter(label string, children []manuscript.Element, bibRefs bool) []typescript.Block {
	blocks := make([]typescript.Block, 0, len(children)+2)

	blocks = append(blocks, typescript.Block{
		Lines:         []text.Line{centeredHeadline(label)},
		LineSpacing:   typescript.SpacingSingle,
		PaddingBefore: -1,
		PaddingAfter:  typescript.ChapterSkip,
	})
	blocks = append(blocks, formatTocLabel(label))

	for _, child := range children {
		switch e := child.(type) {
		case *manuscript.Attribution:
			blocks = append(blocks, formatAttribution(e))
		case *manuscript.BibRef:
			if bibRefs {
				blocks = append(blocks, formatBibRef(e))
			}
		case *manuscript.Blockquote:
			blocks = append(blocks, formatBlockquote(e)...)
		case *manuscript.Br:
			blocks = append(blocks, formatBr())
		case *manuscript.Div:
			blocks = append(blocks, formatDiv())
		case *manuscript.OrderedList:
			blocks = append(blocks, formatList(e.Children)...)
		case *manuscript.Paragraph:
			blocks = append(blocks, formatParagraph(e))
		case *manuscript.PageBreak:
			blocks = append(blocks, formatPageBreak())
		case *manuscript.UnorderedList:
			blocks = append(blocks, formatList(e.Children)...)
		}
	}
	return blocks
}

// formatAuthors joins the author names into one centered byline reading
// "by A, B and C".
func formatAuthors(authors *manuscript.Authors) typescript.Block {
	n := len(authors.Children)
	tokens := make([]text.Token, 0, n*3+3)
	var footnotes []*manuscript.Footnote

	tokens = append(tokens, text.Word("by", 0), text.Space(1, 0))

	for i, child := range authors.Children {
		if i > 0 {
			if i == n-1 {
				tokens = append(tokens, text.Space(1, 0), text.Word("and", 0), text.Space(1, 0))
			} else {
				tokens = append(tokens, text.Symbol(",", 0), text.Space(1, 0))
			}
		}
		if person, ok := child.(*manuscript.Person); ok {
			pt, pf := personTokens(person)
			tokens = append(tokens, pt...)
			footnotes = append(footnotes, pf...)
		}
	}

	lines := text.BreakBalance(tokens, titleWidth)
	centerLines(lines)

	return typescript.Block{
		Lines:         lines,
		Footnotes:     formatFootnotes(footnotes),
		LineSpacing:   authors.Spacing,
		PaddingBefore: 2,
		PaddingAfter:  2,
		Tag:           typescript.TagHead,
	}
}

// personTokens assembles one author name from its parts, separated by
// single spaces. A suffix may be preceded by a comma.
func personTokens(person *manuscript.Person) ([]text.Token, []*manuscript.Footnote) {
	tokens := make([]text.Token, 0, len(person.Children))
	var footnotes []*manuscript.Footnote

	part := func(i int, t manuscript.Text) {
		if i > 0 {
			tokens = append(tokens, text.Space(1, 0))
		}
		tokens = append(tokens, t.Tokens...)
		footnotes = append(footnotes, t.Footnotes...)
	}

	for i, child := range person.Children {
		switch e := child.(type) {
		case *manuscript.Prefix:
			part(i, e.Text)
		case *manuscript.GivenName:
			part(i, e.Text)
		case *manuscript.Surname:
			part(i, e.Text)
		case *manuscript.Suffix:
			if e.Comma {
				tokens = append(tokens, text.Punct(",", 0))
			}
			part(i, e.Text)
		}
	}
	return tokens, footnotes
}

func formatTitle(title *manuscript.Title) typescript.Block {
	lines := text.BreakBalance(title.Tokens, titleWidth)
	centerLines(lines)

	return typescript.Block{
		Lines:        lines,
		Footnotes:    formatFootnotes(title.Footnotes),
		LineSpacing:  title.Spacing,
		PaddingAfter: 2,
		Tag:          typescript.TagHead,
	}
}

func formatSubtitle(subtitle *manuscript.Subtitle) typescript.Block {
	lines := text.BreakBalance(subtitle.Tokens, titleWidth)
	centerLines(lines)

	return typescript.Block{
		Lines:        lines,
		Footnotes:    formatFootnotes(subtitle.Footnotes),
		LineSpacing:  subtitle.Spacing,
		PaddingAfter: 2,
		Tag:          typescript.TagHead,
	}
}

// formatContact fills the contact information into the left half of the
// measure. The compositor sets the block aside for the title page corner.
func formatContact(contact *manuscript.Contact) typescript.Block {
	lines := text.BreakFill(contact.Tokens, (typescript.RightMargin-typescript.LeftMargin)/2+1)
	for i := range lines {
		lines[i].Column = typescript.LeftMargin
	}

	return typescript.Block{
		Lines:        lines,
		Footnotes:    formatFootnotes(contact.Footnotes),
		LineSpacing:  contact.Spacing,
		PaddingAfter: 2,
		Tag:          typescript.TagContact,
	}
}

// formatParagraph fills a paragraph between its margins, indenting the
// first line by turning the indent into leading spaces.
func formatParagraph(p *manuscript.Paragraph) typescript.Block {
	tokens := p.Tokens
	if p.Indent > 0 {
		tokens = slices.Insert(slices.Clone(tokens), 0, text.Space(p.Indent, 0))
	}

	lines := text.BreakFill(tokens, p.RightMargin-p.LeftMargin+1)
	for i := range lines {
		lines[i].Column = p.LeftMargin
	}

	var paddingAfter int
	if p.Spacing == typescript.SpacingDouble {
		paddingAfter = 1
	}

	return typescript.Block{
		Lines:        lines,
		Footnotes:    formatFootnotes(p.Footnotes),
		LineSpacing:  p.Spacing,
		PaddingAfter: paddingAfter,
	}
}

// formatBlockquote converts the quoted paragraphs, giving the last one a
// blank line of separation.
func formatBlockquote(bq *manuscript.Blockquote) []typescript.Block {
	n := len(bq.Children)
	blocks := make([]typescript.Block, 0, n)

	for i, child := range bq.Children {
		switch e := child.(type) {
		case *manuscript.Paragraph:
			block := formatParagraph(e)
			if i == n-1 {
				block.PaddingAfter = 1
			}
			blocks = append(blocks, block)
		case *manuscript.PageBreak:
			blocks = append(blocks, formatPageBreak())
		}
	}
	return blocks
}

// formatAttribution balances the attribution into the narrow measure and
// sets each line flush against the right margin.
func formatAttribution(attr *manuscript.Attribution) typescript.Block {
	lines := text.BreakBalance(attr.Tokens, titleWidth)
	for i := range lines {
		lines[i].Column = typescript.RightMargin - lines[i].Length()
	}

	return typescript.Block{
		Lines:         lines,
		Footnotes:     formatFootnotes(attr.Footnotes),
		LineSpacing:   attr.Spacing,
		PaddingBefore: 1,
		PaddingAfter:  1,
	}
}

// formatBibRef sets a bibliography entry with a hanging indent.
func formatBibRef(ref *manuscript.BibRef) typescript.Block {
	lines := text.BreakHang(ref.Tokens, textWidth, typescript.Indent)
	for i := range lines {
		lines[i].Column = typescript.LeftMargin
	}

	return typescript.Block{
		Lines:        lines,
		Footnotes:    formatFootnotes(ref.Footnotes),
		LineSpacing:  ref.Spacing,
		PaddingAfter: 1,
	}
}

// formatList converts list items and page breaks in order. Ordered and
// unordered lists differ only in the item prefix.
func formatList(children []manuscript.Element) []typescript.Block {
	blocks := make([]typescript.Block, 0, len(children))

	for _, child := range children {
		switch e := child.(type) {
		case *manuscript.ListItem:
			blocks = append(blocks, formatListItem(e)...)
		case *manuscript.PageBreak:
			blocks = append(blocks, formatPageBreak())
		}
	}
	return blocks
}

// formatListItem converts one list entry. The first line carries a number
// or bullet prefix, continuation lines a matching indent, and the whole
// item is shifted back so its text starts at the paragraph margin.
func formatListItem(li *manuscript.ListItem) []typescript.Block {
	n := len(li.Children)
	blocks := make([]typescript.Block, 0, n)

	indent := strings.Repeat(" ", typescript.Indent)
	var prefix string
	if li.Number != nil {
		label := strconv.Itoa(*li.Number)
		prefix = indent + label + ". "
		if pad := typescript.Indent - utf8.RuneCountInString(label) - 2; pad > 0 {
			prefix += strings.Repeat(" ", pad)
		}
	} else {
		prefix = indent + "* " + strings.Repeat(" ", typescript.Indent-2)
	}

	prefixSeg := text.NewSegment(prefix)
	contSeg := text.NewSegment(strings.Repeat(" ", typescript.Indent*2))

	for i, child := range li.Children {
		switch e := child.(type) {
		case *manuscript.Paragraph:
			p := *e
			if i == 0 {
				p.Indent = 0
			}
			block := formatParagraph(&p)

			for j := range block.Lines {
				block.Lines[j].Column -= typescript.Indent * 2
				if i == 0 && j == 0 {
					block.Lines[j].Segments = slices.Insert(block.Lines[j].Segments, 0, prefixSeg)
				} else {
					block.Lines[j].Segments = slices.Insert(block.Lines[j].Segments, 0, contSeg)
				}
			}

			if i == n-1 {
				block.PaddingAfter = 1
			}
			blocks = append(blocks, block)
		case *manuscript.PageBreak:
			blocks = append(blocks, formatPageBreak())
		}
	}
	return blocks
}

// formatChapter opens a fresh page with a centered "Chapter N" headline.
// A chapter title, when present, follows the headline and produces a
// table of contents entry.
func formatChapter(ch *manuscript.Chapter) []typescript.Block {
	tag := strconv.Itoa(ch.Number)

	paddingAfter := typescript.ChapterSkip
	if len(ch.Tokens) > 0 {
		paddingAfter = 2
	}

	blocks := []typescript.Block{{
		Lines:         []text.Line{centeredHeadline("Chapter " + tag)},
		LineSpacing:   typescript.SpacingSingle,
		PaddingBefore: -1,
		PaddingAfter:  paddingAfter,
	}}

	if len(ch.Tokens) > 0 {
		lines := text.BreakBalance(ch.Tokens, titleWidth)
		centerLines(lines)

		blocks = append(blocks, typescript.Block{
			Lines:        lines,
			Footnotes:    formatFootnotes(ch.Footnotes),
			LineSpacing:  ch.Spacing,
			PaddingAfter: typescript.ChapterSkip,
		})
		blocks = append(blocks, formatTocEntry(ch.Tokens, tag, ch.Depth))
	}
	return blocks
}

// formatPart opens a part page with the headline vertically centered.
// Parts are numbered with Roman numerals as far as the table goes.
func formatPart(part *manuscript.Part, numerals *typescript.RomanNumerals) []typescript.Block {
	tag, ok := numerals.Numeral(part.Number)
	if !ok {
		tag = strconv.Itoa(part.Number)
	}

	height := 1
	var blocks []typescript.Block

	if len(part.Tokens) > 0 {
		lines := text.BreakBalance(part.Tokens, titleWidth)
		height += 2 + len(lines)
		centerLines(lines)

		blocks = append(blocks, typescript.Block{
			Lines:         lines,
			Footnotes:     formatFootnotes(part.Footnotes),
			LineSpacing:   part.Spacing,
			PaddingBefore: 1,
			PaddingAfter:  typescript.PartSkip,
		})
		blocks = append(blocks, formatTocEntry(part.Tokens, tag, part.Depth))
	}

	paddingAfter := typescript.PartSkip
	if len(part.Tokens) > 0 {
		paddingAfter = 2
	}

	blocks = slices.Insert(blocks, 0, typescript.Block{
		Lines:         []text.Line{centeredHeadline("Part " + tag)},
		LineSpacing:   typescript.SpacingSingle,
		PaddingBefore: -(typescript.MiddleLine - height + 1),
		PaddingAfter:  paddingAfter,
	})
	return blocks
}

// formatSection prints a "Section A" headline, lettered from the section
// number. Unlike chapters, a section only breaks the page when its
// padding says so.
func formatSection(sec *manuscript.Section) []typescript.Block {
	tag := string(rune('@' + sec.Number))

	paddingAfter := typescript.SectionSkip
	if len(sec.Tokens) > 0 {
		paddingAfter = 2
	}

	blocks := []typescript.Block{{
		Lines:         []text.Line{centeredHeadline("Section " + tag)},
		LineSpacing:   typescript.SpacingSingle,
		PaddingBefore: sec.PaddingBefore,
		PaddingAfter:  paddingAfter,
	}}

	if len(sec.Tokens) > 0 {
		lines := text.BreakBalance(sec.Tokens, titleWidth)
		centerLines(lines)

		blocks = append(blocks, typescript.Block{
			Lines:         lines,
			Footnotes:     formatFootnotes(sec.Footnotes),
			LineSpacing:   sec.Spacing,
			PaddingBefore: 1,
			PaddingAfter:  typescript.SectionSkip,
		})
		blocks = append(blocks, formatTocEntry(sec.Tokens, tag, sec.Depth))
	}
	return blocks
}

func formatBr() typescript.Block {
	return typescript.Block{
		Lines: []text.Line{{
			Column:   typescript.LeftMargin,
			Segments: []text.Segment{text.NewSegment("")},
		}},
		LineSpacing: typescript.SpacingSingle,
	}
}

func formatDiv() typescript.Block {
	return typescript.Block{
		Lines: []text.Line{{
			Column:   centerColumn,
			Segments: []text.Segment{text.NewSegment("#")},
		}},
		LineSpacing:   typescript.SpacingSingle,
		PaddingBefore: 1,
		PaddingAfter:  1,
	}
}

func formatPageBreak() typescript.Block {
	return typescript.Block{
		LineSpacing:   typescript.SpacingSingle,
		PaddingBefore: -1,
	}
}

// formatTocEntry builds a table of contents line for a numbered division.
// The entry is indented one step per heading depth and prefixed with the
// division tag. Note references do not appear in the table.
func formatTocEntry(tokens []text.Token, tag string, depth int) typescript.Block {
	indent := typescript.Indent
	switch depth {
	case 1:
		indent = typescript.Indent * 2
	case 2:
		indent = typescript.Indent * 3
	}

	filtered := make([]text.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Kind == text.KindNoteRef {
			continue
		}
		filtered = append(filtered, t)
	}

	lineLength := typescript.RightMargin - typescript.LeftMargin - typescript.Indent*2 - indent
	lines := text.BreakFill(filtered, lineLength)
	spaces := text.NewSegment(strings.Repeat(" ", indent))

	for i := range lines {
		lines[i].Column = typescript.LeftMargin

		if i > 0 {
			lines[i].Segments = slices.Insert(lines[i].Segments, 0, spaces)
			continue
		}
		prefix := strings.Repeat(" ", indent-typescript.Indent) + tag + ". "
		if pad := typescript.Indent - utf8.RuneCountInString(tag) - 2; pad > 0 {
			prefix += strings.Repeat(" ", pad)
		}
		lines[i].Segments = slices.Insert(lines[i].Segments, 0, text.NewSegment(prefix))
	}

	return typescript.Block{
		Lines:        lines,
		LineSpacing:  typescript.SpacingSingle,
		PaddingAfter: 1,
		Tag:          typescript.TagTOC,
	}
}

// formatTocLabel builds a table of contents line for labeled front or
// back matter.
func formatTocLabel(label string) typescript.Block {
	return typescript.Block{
		Lines: []text.Line{{
			Column:   typescript.LeftMargin,
			Segments: []text.Segment{text.NewSegment(label)},
		}},
		LineSpacing:  typescript.SpacingSingle,
		PaddingAfter: 1,
		Tag:          typescript.TagTOC,
	}
}

// formatFootnotes converts footnote bodies. The first paragraph loses its
// indent and gains a right-aligned superscript label in the margin.
func formatFootnotes(notes []*manuscript.Footnote) []typescript.Footnote {
	if len(notes) == 0 {
		return nil
	}
	footnotes := make([]typescript.Footnote, 0, len(notes))

	for _, note := range notes {
		var blocks []typescript.Block

		for i, child := range note.Children {
			p, ok := child.(*manuscript.Paragraph)
			if !ok {
				continue
			}
			pc := *p
			if i == 0 {
				pc.Indent = 0

				pad := typescript.Indent - 1
				if n := utf8.RuneCountInString(note.Label); n > 1 {
					pad -= n - 1
				}
				prefix := strings.Repeat(" ", max(pad, 0)) + note.Label
				label := text.Token{Kind: text.KindWord, Text: prefix, Dpy: text.Superscript}
				pc.Tokens = slices.Insert(slices.Clone(pc.Tokens), 0, label)
			}
			blocks = append(blocks, formatParagraph(&pc))
		}
		footnotes = append(footnotes, typescript.Footnote{Label: note.Label, Blocks: blocks})
	}
	return footnotes
}

// shortTitle reduces the document title to its first line for the slug,
// words uppercased and an ellipsis marking a cut. The segment text keeps
// the original casing for use outside the page image.
func shortTitle(ms *manuscript.Manuscript) (text.Segment, bool) {
	head := ms.Head()
	if head == nil {
		return text.Segment{}, false
	}

	var title *manuscript.Title
	for _, child := range head.Children {
		if t, ok := child.(*manuscript.Title); ok {
			title = t
			break
		}
	}
	if title == nil {
		return text.Segment{}, false
	}

	const lineLength = typescript.RightMargin - typescript.LeftMargin - 4*typescript.Indent
	var textLength int
	for _, t := range title.Tokens {
		textLength += t.Length()
	}
	lineCount := textLength/lineLength + 1
	cutoff := textLength / lineCount

	// Find the index of the first line break.
	n := len(title.Tokens)
	j := n
	var x int

loop:
	for i, t := range title.Tokens {
		switch {
		case t.Frm&text.MandatoryBreak != 0:
			j = i
			break loop
		case t.Frm&text.DiscretionaryBreak != 0:
			if x+t.Length() >= cutoff {
				if t.Frm&text.DiscardOnBreak != 0 {
					j = i
				} else {
					j = i + 1
				}
				break loop
			}
			x += t.Length()
		default:
			x += t.Length()
		}
	}
	if j == 0 {
		return text.Segment{}, false
	}

	tokens := make([]text.Token, 0, j+2)
	var plain strings.Builder

	for _, t := range title.Tokens[:j] {
		if t.Kind == text.KindLineBreak || t.Kind == text.KindNoteRef {
			continue
		}
		plain.WriteString(t.Text)

		c := t
		c.Dpy = 0
		if c.Kind == text.KindWord {
			c.Text = strings.ToUpper(c.Text)
		}
		tokens = append(tokens, c)
	}

	if j < n {
		plain.WriteString(" . . .")
		tokens = append(tokens, text.Space(1, 0))
		tokens = append(tokens, text.Token{Kind: text.KindPunct, Text: ". . .", Frm: text.DiscretionaryBreak})
	}

	line := text.LineFromTokens(tokens)
	if len(line.Segments) == 0 {
		return text.Segment{}, false
	}
	segment := line.Segments[0]
	segment.Text = plain.String()
	return segment, true
}

// shortAuthor reduces the surname of the first listed author for the
// slug, words uppercased.
func shortAuthor(ms *manuscript.Manuscript) (text.Segment, bool) {
	head := ms.Head()
	if head == nil {
		return text.Segment{}, false
	}

	var surname *manuscript.Surname
find:
	for _, child := range head.Children {
		authors, ok := child.(*manuscript.Authors)
		if !ok {
			continue
		}
		for _, child := range authors.Children {
			person, ok := child.(*manuscript.Person)
			if !ok {
				continue
			}
			for _, child := range person.Children {
				if sn, ok := child.(*manuscript.Surname); ok {
					surname = sn
					break find
				}
			}
		}
	}
	if surname == nil {
		return text.Segment{}, false
	}

	tokens := make([]text.Token, 0, len(surname.Tokens))
	for _, t := range surname.Tokens {
		if t.Kind == text.KindLineBreak || t.Kind == text.KindNoteRef {
			continue
		}
		c := t
		c.Dpy = 0
		if c.Kind == text.KindWord {
			c.Text = strings.ToUpper(c.Text)
		}
		tokens = append(tokens, c)
	}

	line := text.LineFromTokens(tokens)
	if len(line.Segments) == 0 {
		return text.Segment{}, false
	}
	return line.Segments[0], true
}
