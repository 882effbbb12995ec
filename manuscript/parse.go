package manuscript

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"msc/text"
	"msc/typescript"
)

// XML parsing functions for the manuscript schema. We walk the etree
// DOM exhaustively and construct a strongly typed element tree,
// warning about anything the schema does not allow instead of failing.

// parser carries the numbering counters across the walk.
type parser struct {
	tok *text.Tokenizer
	log *zap.Logger

	nextNoteNo    int
	nextPartNo    int
	nextChapterNo int
	nextSectionNo int

	hasParts    bool
	hasChapters bool
	hasSections bool

	wordCount int
}

// ParseManuscript walks the etree DOM and constructs the manuscript
// element tree, tokenizing all character data along the way.
func ParseManuscript(doc *etree.Document, tok *text.Tokenizer, log *zap.Logger) (*Manuscript, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	if root.Tag != "manuscript" {
		return nil, fmt.Errorf("unexpected root element %q", root.Tag)
	}

	p := &parser{
		tok:           tok,
		log:           log,
		nextNoteNo:    1,
		nextPartNo:    1,
		nextChapterNo: 1,
		nextSectionNo: 1,
	}

	ms := &Manuscript{
		FirstPage: intAttr(root, "firstPage", 1),
	}
	for _, child := range root.ChildElements() {
		switch child.Tag {
		case "head":
			ms.Children = append(ms.Children, p.parseHead(child))
		case "body":
			ms.Children = append(ms.Children, &Body{Children: p.parseBlocks(child)})
		case "frontmatter":
			ms.Children = append(ms.Children, &Frontmatter{
				Label:    stringAttr(child, "label", "FRONTMATTER"),
				Children: p.parseBlocks(child),
			})
		case "backmatter":
			ms.Children = append(ms.Children, &Backmatter{
				Label:    stringAttr(child, "label", "BACKMATTER"),
				Children: p.parseBlocks(child),
			})
		default:
			log.Warn("Unexpected tag in manuscript, ignoring", zap.String("parent", root.Tag), zap.String("tag", child.Tag))
		}
	}

	ms.WordCount = p.wordCount
	p.assignDepths(ms)

	return ms, nil
}

// assignDepths fixes up the table of contents levels, which depend on
// the kinds of subdivisions present in the whole document.
func (p *parser) assignDepths(ms *Manuscript) {
	partDepth, chapterDepth, sectionDepth := -1, -1, -1

	if p.hasParts {
		ms.HasStructure = true
		partDepth = 0
	}
	if p.hasChapters {
		ms.HasStructure = true
		if partDepth >= 0 {
			chapterDepth = 1
		} else {
			chapterDepth = 0
		}
	}
	if p.hasSections {
		ms.HasStructure = true
		if partDepth >= 0 && chapterDepth >= 0 {
			sectionDepth = 2
		} else {
			sectionDepth = 1
		}
	}

	body := ms.Body()
	if body == nil {
		return
	}
	for _, child := range body.Children {
		switch child := child.(type) {
		case *Part:
			child.Depth = partDepth
		case *Chapter:
			child.Depth = chapterDepth
		case *Section:
			child.Depth = sectionDepth
		}
	}
}

func (p *parser) parseHead(el *etree.Element) *Head {
	head := &Head{}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "contact":
			contact := &Contact{Spacing: spacingAttr(child, typescript.SpacingSingle)}
			p.parseText(child, &contact.Text, 0)
			trimSpace(&contact.Text)
			head.Children = append(head.Children, contact)
		case "title":
			title := &Title{Spacing: spacingAttr(child, typescript.SpacingSingle)}
			p.parseText(child, &title.Text, 0)
			trimSpace(&title.Text)
			head.Children = append(head.Children, title)
		case "subtitle":
			subtitle := &Subtitle{Spacing: spacingAttr(child, typescript.SpacingSingle)}
			p.parseText(child, &subtitle.Text, 0)
			trimSpace(&subtitle.Text)
			head.Children = append(head.Children, subtitle)
		case "authors":
			head.Children = append(head.Children, p.parseAuthors(child))
		default:
			p.log.Warn("Unexpected tag in head, ignoring", zap.String("parent", el.Tag), zap.String("tag", child.Tag))
		}
	}
	return head
}

func (p *parser) parseAuthors(el *etree.Element) *Authors {
	authors := &Authors{Spacing: spacingAttr(el, typescript.SpacingSingle)}
	for _, child := range el.ChildElements() {
		if child.Tag != "person" {
			p.log.Warn("Unexpected tag in authors, ignoring", zap.String("parent", el.Tag), zap.String("tag", child.Tag))
			continue
		}
		authors.Children = append(authors.Children, p.parsePerson(child))
	}
	return authors
}

func (p *parser) parsePerson(el *etree.Element) *Person {
	person := &Person{}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "prefix":
			part := &Prefix{}
			p.parseText(child, &part.Text, 0)
			trimSpace(&part.Text)
			person.Children = append(person.Children, part)
		case "gn":
			part := &GivenName{}
			p.parseText(child, &part.Text, 0)
			trimSpace(&part.Text)
			person.Children = append(person.Children, part)
		case "sn":
			part := &Surname{}
			p.parseText(child, &part.Text, 0)
			trimSpace(&part.Text)
			person.Children = append(person.Children, part)
		case "suffix":
			part := &Suffix{Comma: boolAttr(child, "comma", false)}
			p.parseText(child, &part.Text, 0)
			trimSpace(&part.Text)
			person.Children = append(person.Children, part)
		default:
			p.log.Warn("Unexpected tag in person, ignoring", zap.String("parent", el.Tag), zap.String("tag", child.Tag))
		}
	}
	return person
}

// parseBlocks reads the block-level children of body, frontmatter and
// backmatter elements. Stray character data between blocks is ignored.
func (p *parser) parseBlocks(el *etree.Element) []Element {
	var children []Element

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "p":
			children = append(children, p.parseP(child, typescript.SpacingDouble,
				typescript.LeftMargin, typescript.RightMargin))
		case "blockquote":
			children = append(children, p.parseBlockquote(child))
		case "ol":
			children = append(children, p.parseOl(child))
		case "ul":
			children = append(children, p.parseUl(child))
		case "part":
			children = append(children, p.parsePart(child))
		case "chapter":
			children = append(children, p.parseChapter(child))
		case "section":
			// A section directly below a chapter heading stays on the
			// same page; otherwise it opens a new one.
			paddingBefore := -1
			if len(children) > 0 {
				if _, ok := children[len(children)-1].(*Chapter); ok {
					paddingBefore = 0
				}
			}
			children = append(children, p.parseSection(child, paddingBefore))
		case "frontmatter":
			children = append(children, &Frontmatter{
				Label:    stringAttr(child, "label", "FRONTMATTER"),
				Children: p.parseBlocks(child),
			})
		case "backmatter":
			children = append(children, &Backmatter{
				Label:    stringAttr(child, "label", "BACKMATTER"),
				Children: p.parseBlocks(child),
			})
		case "attribution":
			attr := &Attribution{Spacing: spacingAttr(child, typescript.SpacingSingle)}
			p.parseText(child, &attr.Text, 0)
			trimSpace(&attr.Text)
			children = append(children, attr)
		case "bibRef":
			ref := &BibRef{Spacing: spacingAttr(child, typescript.SpacingSingle)}
			p.parseText(child, &ref.Text, 0)
			trimSpace(&ref.Text)
			children = append(children, ref)
		case "div":
			children = append(children, &Div{})
		case "br":
			children = append(children, &Br{})
		case "pageBreak":
			children = append(children, &PageBreak{})
		default:
			p.log.Warn("Unexpected tag in block content, ignoring", zap.String("parent", el.Tag), zap.String("tag", child.Tag))
		}
	}

	return children
}

func (p *parser) parseP(el *etree.Element, spacing typescript.LineSpacing, leftMargin, rightMargin int) *Paragraph {
	para := &Paragraph{
		Indent:      intAttr(el, "indent", typescript.Indent),
		Spacing:     spacingAttr(el, spacing),
		LeftMargin:  leftMargin,
		RightMargin: rightMargin,
	}
	p.parseText(el, &para.Text, 0)
	trimSpace(&para.Text)
	return para
}

func (p *parser) parseBlockquote(el *etree.Element) *Blockquote {
	bq := &Blockquote{Spacing: spacingAttr(el, typescript.SpacingSingle)}
	bq.Children = p.parseMixed(el, bq.Spacing,
		typescript.LeftMargin+typescript.Indent,
		typescript.RightMargin-typescript.Indent)
	return bq
}

func (p *parser) parseOl(el *etree.Element) *OrderedList {
	ol := &OrderedList{
		Start:   intAttr(el, "startNo", 1),
		Spacing: spacingAttr(el, typescript.SpacingSingle),
	}

	next := ol.Start
	for _, child := range el.ChildElements() {
		if child.Tag != "li" {
			p.log.Warn("Unexpected tag in ol, ignoring", zap.String("parent", el.Tag), zap.String("tag", child.Tag))
			continue
		}
		number := intAttr(child, "number", next)
		next = number + 1
		ol.Children = append(ol.Children, p.parseLi(child, &number, ol.Spacing))
	}
	return ol
}

func (p *parser) parseUl(el *etree.Element) *UnorderedList {
	ul := &UnorderedList{Spacing: spacingAttr(el, typescript.SpacingSingle)}
	for _, child := range el.ChildElements() {
		if child.Tag != "li" {
			p.log.Warn("Unexpected tag in ul, ignoring", zap.String("parent", el.Tag), zap.String("tag", child.Tag))
			continue
		}
		ul.Children = append(ul.Children, p.parseLi(child, nil, ul.Spacing))
	}
	return ul
}

func (p *parser) parseLi(el *etree.Element, number *int, spacing typescript.LineSpacing) *ListItem {
	li := &ListItem{
		Number:  number,
		Spacing: spacingAttr(el, spacing),
	}
	li.Children = p.parseMixed(el, li.Spacing,
		typescript.LeftMargin+2*typescript.Indent,
		typescript.RightMargin)
	return li
}

func (p *parser) parsePart(el *etree.Element) *Part {
	part := &Part{
		Number:  p.numberAttr(el, &p.nextPartNo),
		Spacing: spacingAttr(el, typescript.SpacingSingle),
		Depth:   -1,
	}
	p.nextChapterNo = 1
	p.nextSectionNo = 1
	p.hasParts = true

	p.parseText(el, &part.Text, 0)
	trimSpace(&part.Text)
	return part
}

func (p *parser) parseChapter(el *etree.Element) *Chapter {
	chapter := &Chapter{
		Number:  p.numberAttr(el, &p.nextChapterNo),
		Spacing: spacingAttr(el, typescript.SpacingSingle),
		Depth:   -1,
	}
	p.nextSectionNo = 1
	p.hasChapters = true

	p.parseText(el, &chapter.Text, 0)
	trimSpace(&chapter.Text)
	return chapter
}

func (p *parser) parseSection(el *etree.Element, paddingBefore int) *Section {
	section := &Section{
		Number:        p.numberAttr(el, &p.nextSectionNo),
		Spacing:       spacingAttr(el, typescript.SpacingSingle),
		PaddingBefore: paddingBefore,
		Depth:         -1,
	}
	p.hasSections = true

	p.parseText(el, &section.Text, 0)
	trimSpace(&section.Text)
	return section
}

func (p *parser) parseFootnote(el *etree.Element) *Footnote {
	label := stringAttr(el, "label", "")
	if label == "" {
		label = strconv.Itoa(p.nextNoteNo)
		p.nextNoteNo++
	} else if n, err := strconv.Atoi(label); err == nil {
		p.nextNoteNo = n + 1
	}

	fn := &Footnote{
		Label:   label,
		Spacing: spacingAttr(el, typescript.SpacingSingle),
	}
	fn.Children = p.parseMixed(el, fn.Spacing, typescript.LeftMargin, typescript.RightMargin)
	return fn
}

// parseMixed reads containers that allow both paragraph children and
// bare text. Character data and inline elements are folded into the
// trailing paragraph, or wrapped in a fresh unindented one.
func (p *parser) parseMixed(el *etree.Element, spacing typescript.LineSpacing, leftMargin, rightMargin int) []Element {
	var children []Element

	wrapper := func() *Paragraph {
		if len(children) > 0 {
			if para, ok := children[len(children)-1].(*Paragraph); ok {
				return para
			}
		}
		para := &Paragraph{
			Indent:      0,
			Spacing:     spacing,
			LeftMargin:  leftMargin,
			RightMargin: rightMargin,
		}
		children = append(children, para)
		return para
	}

	for _, node := range el.Child {
		switch node := node.(type) {
		case *etree.CharData:
			para := wrapper()
			var n int
			para.Tokens, n = p.tok.Append(para.Tokens, node.Data, 0)
			p.wordCount += n
		case *etree.Element:
			switch node.Tag {
			case "p":
				// Discard a wrapper that holds nothing but the
				// whitespace found between tags.
				if len(children) > 0 {
					if para, ok := children[len(children)-1].(*Paragraph); ok && whitespaceOnly(para.Tokens) {
						children = children[:len(children)-1]
					}
				}
				children = append(children, p.parseP(node, spacing, leftMargin, rightMargin))
			case "em", "sub", "sup", "br", "footnote", "noteRef":
				para := wrapper()
				p.parseTextChild(node, &para.Text, 0)
			default:
				p.log.Warn("Unexpected tag in mixed content, ignoring", zap.String("parent", el.Tag), zap.String("tag", node.Tag))
			}
		}
	}

	for _, child := range children {
		if para, ok := child.(*Paragraph); ok {
			trimSpace(&para.Text)
		}
	}

	return children
}

// parseText tokenizes the character data of a text element, descending
// into inline markup.
func (p *parser) parseText(el *etree.Element, txt *Text, dpy text.Display) {
	for _, node := range el.Child {
		switch node := node.(type) {
		case *etree.CharData:
			var n int
			txt.Tokens, n = p.tok.Append(txt.Tokens, node.Data, dpy)
			p.wordCount += n
		case *etree.Element:
			p.parseTextChild(node, txt, dpy)
		}
	}
}

func (p *parser) parseTextChild(el *etree.Element, txt *Text, dpy text.Display) {
	switch el.Tag {
	case "em":
		p.parseText(el, txt, text.Emphasis)
	case "sub":
		p.parseText(el, txt, text.Subscript)
	case "sup":
		p.parseText(el, txt, text.Superscript)
	case "br":
		txt.Tokens = append(txt.Tokens, text.LineBreak(dpy))
	case "footnote":
		fn := p.parseFootnote(el)
		txt.Tokens = append(txt.Tokens, text.NoteRef(fn.Label))
		txt.Footnotes = append(txt.Footnotes, fn)
	case "noteRef":
		txt.Tokens = append(txt.Tokens, text.NoteRef(stringAttr(el, "label", "*")))
	default:
		p.log.Warn("Unexpected tag in text, ignoring", zap.String("tag", el.Tag))
	}
}

// numberAttr reads an explicit subdivision number, falling back to the
// running counter. Either way the counter continues from the result.
func (p *parser) numberAttr(el *etree.Element, next *int) int {
	number := intAttr(el, "number", *next)
	*next = number + 1
	return number
}

// trimSpace removes a leading and a trailing space token. The
// tokenizer collapses whitespace runs, so one of each is enough.
func trimSpace(txt *Text) {
	if len(txt.Tokens) > 0 && txt.Tokens[0].Kind == text.KindSpace {
		txt.Tokens = txt.Tokens[1:]
	}
	if n := len(txt.Tokens); n > 0 && txt.Tokens[n-1].Kind == text.KindSpace {
		txt.Tokens = txt.Tokens[:n-1]
	}
}

func whitespaceOnly(tokens []text.Token) bool {
	for _, token := range tokens {
		if token.Kind != text.KindSpace {
			return false
		}
	}
	return true
}

func stringAttr(el *etree.Element, key, def string) string {
	if attr := el.SelectAttr(key); attr != nil {
		return attr.Value
	}
	return def
}

func intAttr(el *etree.Element, key string, def int) int {
	if raw := el.SelectAttrValue(key, ""); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return def
}

func boolAttr(el *etree.Element, key string, def bool) bool {
	switch el.SelectAttrValue(key, "") {
	case "true":
		return true
	case "false":
		return false
	}
	return def
}

func spacingAttr(el *etree.Element, def typescript.LineSpacing) typescript.LineSpacing {
	if raw := el.SelectAttrValue("lineSpacing", ""); raw != "" {
		return typescript.ParseLineSpacing(raw)
	}
	return def
}
