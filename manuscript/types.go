// Package manuscript reads typewriter manuscripts into a typed element
// tree. The XML reader follows the manuscript schema, the Markdown
// reader maps CommonMark structure onto the same tree.
package manuscript

import (
	"msc/text"
	"msc/typescript"
)

// Element is a node of the manuscript tree.
type Element interface {
	element()
}

// Text holds the token stream of a text-bearing element, together with
// any footnotes that were defined inline.
type Text struct {
	Tokens    []text.Token
	Footnotes []*Footnote
}

// Manuscript is the root element.
type Manuscript struct {
	// FirstPage is the page number of the first numbered page.
	FirstPage int
	// WordCount is the total number of word tokens in the document.
	WordCount int
	// HasStructure is true when the body is subdivided into parts,
	// chapters or sections, in which case the manuscript opens with a
	// separate title page.
	HasStructure bool

	Children []Element
}

// Head returns the head element, or nil.
func (m *Manuscript) Head() *Head {
	for _, child := range m.Children {
		if head, ok := child.(*Head); ok {
			return head
		}
	}
	return nil
}

// Body returns the body element, or nil.
func (m *Manuscript) Body() *Body {
	for _, child := range m.Children {
		if body, ok := child.(*Body); ok {
			return body
		}
	}
	return nil
}

// Head collects the front page material: contact information, titles,
// subtitles and the authors, in document order.
type Head struct {
	Children []Element
}

// Body holds the text of the manuscript.
type Body struct {
	Children []Element
}

// Title is a title line on the front page.
type Title struct {
	Text
	Spacing typescript.LineSpacing
}

// Subtitle is a subtitle line on the front page.
type Subtitle struct {
	Text
	Spacing typescript.LineSpacing
}

// Authors lists the authors on the front page.
type Authors struct {
	Children []Element
	Spacing  typescript.LineSpacing
}

// Person is one author name, assembled from its parts in document
// order.
type Person struct {
	Children []Element
}

// Prefix is an honorific preceding a name.
type Prefix struct {
	Text
}

// GivenName is the given name part of a person.
type GivenName struct {
	Text
}

// Surname is the family name part of a person.
type Surname struct {
	Text
}

// Suffix follows a name, optionally separated by a comma.
type Suffix struct {
	Text
	Comma bool
}

// Contact is the author's contact information, placed in the top left
// corner of the first page.
type Contact struct {
	Text
	Spacing typescript.LineSpacing
}

// Frontmatter groups material preceding the body text under a label.
type Frontmatter struct {
	Label    string
	Children []Element
}

// Backmatter groups material following the body text under a label.
type Backmatter struct {
	Label    string
	Children []Element
}

// Part is a top-level subdivision. Depth is the heading level used for
// the table of contents; it is assigned after the whole document has
// been read.
type Part struct {
	Text
	Number  int
	Spacing typescript.LineSpacing
	Depth   int
}

// Chapter is a subdivision below parts.
type Chapter struct {
	Text
	Number  int
	Spacing typescript.LineSpacing
	Depth   int
}

// Section is the smallest subdivision. PaddingBefore is -1 when the
// section opens a new page and 0 when it continues directly below a
// chapter heading.
type Section struct {
	Text
	Number        int
	Spacing       typescript.LineSpacing
	PaddingBefore int
	Depth         int
}

// Paragraph is a run of text filled between the margins, with the
// first line indented.
type Paragraph struct {
	Text
	Indent      int
	Spacing     typescript.LineSpacing
	LeftMargin  int
	RightMargin int
}

// Blockquote is a group of paragraphs set off from the main text by
// narrower margins.
type Blockquote struct {
	Children []Element
	Spacing  typescript.LineSpacing
}

// Attribution credits a quotation, set flush against the right margin.
type Attribution struct {
	Text
	Spacing typescript.LineSpacing
}

// BibRef is a bibliography entry with hanging indentation.
type BibRef struct {
	Text
	Spacing typescript.LineSpacing
}

// OrderedList is a numbered list.
type OrderedList struct {
	Children []Element
	Start    int
	Spacing  typescript.LineSpacing
}

// UnorderedList is a bulleted list.
type UnorderedList struct {
	Children []Element
	Spacing  typescript.LineSpacing
}

// ListItem is one list entry. Number is nil for items of unordered
// lists.
type ListItem struct {
	Children []Element
	Number   *int
	Spacing  typescript.LineSpacing
}

// Footnote is a note printed at the bottom of the page its first
// reference appears on.
type Footnote struct {
	Label    string
	Children []Element
	Spacing  typescript.LineSpacing
}

// Div is a scene break, rendered as a centered mark.
type Div struct{}

// Br between blocks produces a single blank line. Within text it
// becomes a line break token instead.
type Br struct{}

// PageBreak forces the following content onto a new page.
type PageBreak struct{}

func (*Manuscript) element()    {}
func (*Head) element()          {}
func (*Body) element()          {}
func (*Title) element()         {}
func (*Subtitle) element()      {}
func (*Authors) element()       {}
func (*Person) element()        {}
func (*Prefix) element()        {}
func (*GivenName) element()     {}
func (*Surname) element()       {}
func (*Suffix) element()        {}
func (*Contact) element()       {}
func (*Frontmatter) element()   {}
func (*Backmatter) element()    {}
func (*Part) element()          {}
func (*Chapter) element()       {}
func (*Section) element()       {}
func (*Paragraph) element()     {}
func (*Blockquote) element()    {}
func (*Attribution) element()   {}
func (*BibRef) element()        {}
func (*OrderedList) element()   {}
func (*UnorderedList) element() {}
func (*ListItem) element()      {}
func (*Footnote) element()      {}
func (*Div) element()           {}
func (*Br) element()            {}
func (*PageBreak) element()     {}
