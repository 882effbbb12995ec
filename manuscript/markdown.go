package manuscript

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
	"go.uber.org/zap"

	"msc/text"
	"msc/typescript"
)

// Markdown input support. CommonMark structure is mapped onto the
// manuscript tree: level-1 headings open chapters, deeper headings open
// sections, thematic breaks become scene breaks. Markdown documents
// have no front page material.

// ParseMarkdown reads a CommonMark document into a manuscript tree.
func ParseMarkdown(source []byte, tok *text.Tokenizer, log *zap.Logger) (*Manuscript, error) {
	p := &parser{
		tok:           tok,
		log:           log,
		nextNoteNo:    1,
		nextPartNo:    1,
		nextChapterNo: 1,
		nextSectionNo: 1,
	}

	root := goldmark.New().Parser().Parse(gmtext.NewReader(source))

	ms := &Manuscript{FirstPage: 1}
	body := &Body{}
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		p.parseMarkdownBlock(node, source, &body.Children)
	}
	ms.Children = append(ms.Children, body)

	ms.WordCount = p.wordCount
	p.assignDepths(ms)

	return ms, nil
}

func (p *parser) parseMarkdownBlock(node ast.Node, source []byte, children *[]Element) {
	switch node := node.(type) {
	case *ast.Heading:
		if node.Level == 1 {
			chapter := &Chapter{
				Number:  p.nextChapterNo,
				Spacing: typescript.SpacingSingle,
				Depth:   -1,
			}
			p.nextChapterNo++
			p.nextSectionNo = 1
			p.hasChapters = true

			p.parseMarkdownInline(node, source, &chapter.Text, 0)
			trimSpace(&chapter.Text)
			*children = append(*children, chapter)
		} else {
			paddingBefore := -1
			if n := len(*children); n > 0 {
				if _, ok := (*children)[n-1].(*Chapter); ok {
					paddingBefore = 0
				}
			}

			section := &Section{
				Number:        p.nextSectionNo,
				Spacing:       typescript.SpacingSingle,
				PaddingBefore: paddingBefore,
				Depth:         -1,
			}
			p.nextSectionNo++
			p.hasSections = true

			p.parseMarkdownInline(node, source, &section.Text, 0)
			trimSpace(&section.Text)
			*children = append(*children, section)
		}
	case *ast.Paragraph:
		*children = append(*children, p.parseMarkdownP(node, source, typescript.SpacingDouble,
			typescript.Indent, typescript.LeftMargin, typescript.RightMargin))
	case *ast.Blockquote:
		bq := &Blockquote{Spacing: typescript.SpacingSingle}
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			p.parseMarkdownQuoted(child, source, bq)
		}
		*children = append(*children, bq)
	case *ast.List:
		*children = append(*children, p.parseMarkdownList(node, source))
	case *ast.ThematicBreak:
		*children = append(*children, &Div{})
	case *ast.FencedCodeBlock:
		*children = append(*children, p.parseMarkdownVerbatim(node, source))
	case *ast.CodeBlock:
		*children = append(*children, p.parseMarkdownVerbatim(node, source))
	default:
		p.log.Warn("Unexpected Markdown block, ignoring", zap.String("kind", node.Kind().String()))
	}
}

// parseMarkdownQuoted handles the children of a block quote, which can
// themselves be nested quotes or lists; only paragraphs survive.
func (p *parser) parseMarkdownQuoted(node ast.Node, source []byte, bq *Blockquote) {
	if _, ok := node.(*ast.Paragraph); !ok {
		p.log.Warn("Unexpected Markdown block in quote, ignoring", zap.String("kind", node.Kind().String()))
		return
	}
	bq.Children = append(bq.Children, p.parseMarkdownP(node, source, bq.Spacing,
		typescript.Indent,
		typescript.LeftMargin+typescript.Indent,
		typescript.RightMargin-typescript.Indent))
}

func (p *parser) parseMarkdownP(node ast.Node, source []byte, spacing typescript.LineSpacing, indent, leftMargin, rightMargin int) *Paragraph {
	para := &Paragraph{
		Indent:      indent,
		Spacing:     spacing,
		LeftMargin:  leftMargin,
		RightMargin: rightMargin,
	}
	p.parseMarkdownInline(node, source, &para.Text, 0)
	trimSpace(&para.Text)
	return para
}

func (p *parser) parseMarkdownList(node *ast.List, source []byte) Element {
	spacing := typescript.SpacingSingle

	var children []Element
	next := node.Start
	for item := node.FirstChild(); item != nil; item = item.NextSibling() {
		li := &ListItem{Spacing: spacing}
		if node.IsOrdered() {
			number := next
			next++
			li.Number = &number
		}

		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			switch child.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				li.Children = append(li.Children, p.parseMarkdownP(child, source, spacing,
					0, typescript.LeftMargin+2*typescript.Indent, typescript.RightMargin))
			default:
				p.log.Warn("Unexpected Markdown block in list item, ignoring", zap.String("kind", child.Kind().String()))
			}
		}

		children = append(children, li)
	}

	if node.IsOrdered() {
		return &OrderedList{Children: children, Start: node.Start, Spacing: spacing}
	}
	return &UnorderedList{Children: children, Spacing: spacing}
}

// parseMarkdownVerbatim keeps a code block as a single-spaced
// unindented paragraph with its line breaks preserved.
func (p *parser) parseMarkdownVerbatim(node ast.Node, source []byte) *Paragraph {
	para := &Paragraph{
		Indent:      0,
		Spacing:     typescript.SpacingSingle,
		LeftMargin:  typescript.LeftMargin,
		RightMargin: typescript.RightMargin,
	}

	lines := node.Lines()
	for i := range lines.Len() {
		if i > 0 {
			para.Tokens = append(para.Tokens, text.LineBreak(0))
		}
		segment := lines.At(i)
		var n int
		para.Tokens, n = p.tok.Append(para.Tokens, string(segment.Value(source)), 0)
		p.wordCount += n
	}

	trimSpace(&para.Text)
	return para
}

func (p *parser) parseMarkdownInline(node ast.Node, source []byte, txt *Text, dpy text.Display) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch child := child.(type) {
		case *ast.Text:
			var n int
			txt.Tokens, n = p.tok.Append(txt.Tokens, string(child.Segment.Value(source)), dpy)
			p.wordCount += n

			if child.HardLineBreak() {
				txt.Tokens = append(txt.Tokens, text.LineBreak(dpy))
			} else if child.SoftLineBreak() {
				txt.Tokens, _ = p.tok.Append(txt.Tokens, " ", dpy)
			}
		case *ast.String:
			var n int
			txt.Tokens, n = p.tok.Append(txt.Tokens, string(child.Value), dpy)
			p.wordCount += n
		case *ast.Emphasis:
			p.parseMarkdownInline(child, source, txt, text.Emphasis)
		case *ast.CodeSpan:
			p.parseMarkdownInline(child, source, txt, dpy)
		case *ast.Link:
			p.parseMarkdownInline(child, source, txt, dpy)
		case *ast.AutoLink:
			var n int
			txt.Tokens, n = p.tok.Append(txt.Tokens, string(child.URL(source)), dpy)
			p.wordCount += n
		case *ast.RawHTML:
			// dropped
		default:
			p.log.Warn("Unexpected Markdown inline, ignoring", zap.String("kind", child.Kind().String()))
		}
	}
}
