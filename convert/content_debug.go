package convert

import (
	"sort"
	"strings"

	"github.com/maruel/natural"

	"msc/manuscript"
	"msc/text"
	"msc/utils/debug"
)

// String returns a readable tree of the parsed manuscript.
// It exists solely for manual inspection during debugging.
func (c *Content) String() string {
	if c == nil || c.ms == nil {
		return "<nil Content>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "Manuscript src[%q] ref[%s] format[%s]", c.srcName, c.refID, c.format)
	tw.Line(1, "first page %d, words %d, structured %t", c.ms.FirstPage, c.ms.WordCount, c.ms.HasStructure)

	var labels []string
	for _, child := range c.ms.Children {
		dumpElement(tw, 1, child, &labels)
	}

	if len(labels) > 0 {
		sort.Sort(natural.StringSlice(labels))
		tw.Line(0, "Footnotes: %d", len(labels))
		for _, l := range labels {
			tw.Line(1, "Note[%q]", l)
		}
	}
	return tw.String()
}

// excerpt renders the beginning of a token stream as plain text.
func excerpt(tokens []text.Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.Text)
		if sb.Len() > 64 {
			break
		}
	}
	r := []rune(sb.String())
	if len(r) > 48 {
		return string(r[:48]) + "..."
	}
	return string(r)
}

func dumpText(tw *debug.TreeWriter, depth int, name string, t manuscript.Text, labels *[]string) {
	tw.Line(depth, "%s: %q", name, excerpt(t.Tokens))
	for _, note := range t.Footnotes {
		*labels = append(*labels, note.Label)
		for _, child := range note.Children {
			dumpElement(tw, depth+1, child, labels)
		}
	}
}

func dumpElement(tw *debug.TreeWriter, depth int, el manuscript.Element, labels *[]string) {
	switch e := el.(type) {
	case *manuscript.Head:
		tw.Line(depth, "Head")
		for _, child := range e.Children {
			dumpElement(tw, depth+1, child, labels)
		}
	case *manuscript.Body:
		tw.Line(depth, "Body")
		for _, child := range e.Children {
			dumpElement(tw, depth+1, child, labels)
		}
	case *manuscript.Title:
		dumpText(tw, depth, "Title", e.Text, labels)
	case *manuscript.Subtitle:
		dumpText(tw, depth, "Subtitle", e.Text, labels)
	case *manuscript.Authors:
		tw.Line(depth, "Authors")
		for _, child := range e.Children {
			dumpElement(tw, depth+1, child, labels)
		}
	case *manuscript.Person:
		tw.Line(depth, "Person")
		for _, child := range e.Children {
			dumpElement(tw, depth+1, child, labels)
		}
	case *manuscript.Prefix:
		dumpText(tw, depth, "Prefix", e.Text, labels)
	case *manuscript.GivenName:
		dumpText(tw, depth, "GivenName", e.Text, labels)
	case *manuscript.Surname:
		dumpText(tw, depth, "Surname", e.Text, labels)
	case *manuscript.Suffix:
		dumpText(tw, depth, "Suffix", e.Text, labels)
	case *manuscript.Contact:
		dumpText(tw, depth, "Contact", e.Text, labels)
	case *manuscript.Frontmatter:
		tw.Line(depth, "Frontmatter[%q]", e.Label)
		for _, child := range e.Children {
			dumpElement(tw, depth+1, child, labels)
		}
	case *manuscript.Backmatter:
		tw.Line(depth, "Backmatter[%q]", e.Label)
		for _, child := range e.Children {
			dumpElement(tw, depth+1, child, labels)
		}
	case *manuscript.Part:
		dumpText(tw, depth, "Part", e.Text, labels)
	case *manuscript.Chapter:
		dumpText(tw, depth, "Chapter", e.Text, labels)
	case *manuscript.Section:
		dumpText(tw, depth, "Section", e.Text, labels)
	case *manuscript.Paragraph:
		dumpText(tw, depth, "Paragraph", e.Text, labels)
	case *manuscript.Blockquote:
		tw.Line(depth, "Blockquote")
		for _, child := range e.Children {
			dumpElement(tw, depth+1, child, labels)
		}
	case *manuscript.Attribution:
		dumpText(tw, depth, "Attribution", e.Text, labels)
	case *manuscript.BibRef:
		dumpText(tw, depth, "BibRef", e.Text, labels)
	case *manuscript.OrderedList:
		tw.Line(depth, "OrderedList start[%d]", e.Start)
		for _, child := range e.Children {
			dumpElement(tw, depth+1, child, labels)
		}
	case *manuscript.UnorderedList:
		tw.Line(depth, "UnorderedList")
		for _, child := range e.Children {
			dumpElement(tw, depth+1, child, labels)
		}
	case *manuscript.ListItem:
		if e.Number != nil {
			tw.Line(depth, "ListItem[%d]", *e.Number)
		} else {
			tw.Line(depth, "ListItem")
		}
		for _, child := range e.Children {
			dumpElement(tw, depth+1, child, labels)
		}
	case *manuscript.Footnote:
		*labels = append(*labels, e.Label)
		tw.Line(depth, "Footnote[%q]", e.Label)
		for _, child := range e.Children {
			dumpElement(tw, depth+1, child, labels)
		}
	case *manuscript.Div:
		tw.Line(depth, "Div")
	case *manuscript.Br:
		tw.Line(depth, "Br")
	case *manuscript.PageBreak:
		tw.Line(depth, "PageBreak")
	default:
		tw.Line(depth, "Unknown element %T", el)
	}
}
