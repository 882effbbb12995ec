package manuscript

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"msc/text"
	"msc/typescript"
)

func parseTestMarkdown(t *testing.T, in string) *Manuscript {
	t.Helper()

	log := zaptest.NewLogger(t)
	ms, err := ParseMarkdown([]byte(in), text.NewTokenizer(text.NewSplitter(log)), log)
	if err != nil {
		t.Fatalf("parsing test document: %v", err)
	}
	return ms
}

func TestMarkdownHeadings(t *testing.T) {
	ms := parseTestMarkdown(t, "# Beginnings\n\n## At Sea\n\nSome text here.\n\n## Ashore\n")

	children := ms.Body().Children
	if len(children) != 4 {
		t.Fatalf("body has %d children, want 4", len(children))
	}

	chapter, ok := children[0].(*Chapter)
	if !ok {
		t.Fatal("level-1 heading did not open a chapter")
	}
	if chapter.Number != 1 {
		t.Errorf("chapter number = %d, want 1", chapter.Number)
	}
	if got := tokenTexts(chapter.Tokens); len(got) != 1 || got[0] != "Beginnings" {
		t.Errorf("chapter tokens = %v", got)
	}

	first, ok := children[1].(*Section)
	if !ok {
		t.Fatal("level-2 heading did not open a section")
	}
	if first.PaddingBefore != 0 {
		t.Errorf("section after chapter PaddingBefore = %d, want 0", first.PaddingBefore)
	}

	second := children[3].(*Section)
	if second.Number != 2 {
		t.Errorf("second section number = %d, want 2", second.Number)
	}
	if second.PaddingBefore != -1 {
		t.Errorf("detached section PaddingBefore = %d, want -1", second.PaddingBefore)
	}

	if !ms.HasStructure {
		t.Error("HasStructure not set")
	}
	if chapter.Depth != 0 || first.Depth != 1 {
		t.Errorf("depths = %d, %d, want 0, 1", chapter.Depth, first.Depth)
	}
}

func TestMarkdownParagraph(t *testing.T) {
	ms := parseTestMarkdown(t, "One two\nthree.\n")

	para := ms.Body().Children[0].(*Paragraph)
	if para.Spacing != typescript.SpacingDouble {
		t.Error("paragraph spacing is not double")
	}
	if para.Indent != typescript.Indent {
		t.Errorf("paragraph indent = %d, want %d", para.Indent, typescript.Indent)
	}

	// the soft line break joins the lines with a space
	got := tokenTexts(para.Tokens)
	want := []string{"One", " ", "two", " ", "three", "."}
	if len(got) != len(want) {
		t.Fatalf("tokens = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokens = %v, want %v", got, want)
		}
	}

	if ms.WordCount != 3 {
		t.Errorf("WordCount = %d, want 3", ms.WordCount)
	}
}

func TestMarkdownEmphasis(t *testing.T) {
	ms := parseTestMarkdown(t, "plain *slanted* **loud**\n")

	para := ms.Body().Children[0].(*Paragraph)

	var emphasized []string
	for _, token := range para.Tokens {
		if token.Kind == text.KindWord && token.Dpy&text.Emphasis != 0 {
			emphasized = append(emphasized, token.Text)
		}
	}
	if len(emphasized) != 2 || emphasized[0] != "slanted" || emphasized[1] != "loud" {
		t.Errorf("emphasized words = %v, want [slanted loud]", emphasized)
	}
}

func TestMarkdownHardLineBreak(t *testing.T) {
	ms := parseTestMarkdown(t, "first\\\nsecond\n")

	para := ms.Body().Children[0].(*Paragraph)
	var breaks int
	for _, token := range para.Tokens {
		if token.Kind == text.KindLineBreak {
			breaks++
		}
	}
	if breaks != 1 {
		t.Errorf("got %d line breaks, want 1", breaks)
	}
}

func TestMarkdownLists(t *testing.T) {
	ms := parseTestMarkdown(t, "3. first\n4. second\n\n- bullet\n")

	ol := ms.Body().Children[0].(*OrderedList)
	if ol.Start != 3 {
		t.Errorf("Start = %d, want 3", ol.Start)
	}
	if len(ol.Children) != 2 {
		t.Fatalf("ordered list has %d items, want 2", len(ol.Children))
	}
	second := ol.Children[1].(*ListItem)
	if second.Number == nil || *second.Number != 4 {
		t.Error("second item is not numbered 4")
	}

	para := second.Children[0].(*Paragraph)
	if para.LeftMargin != typescript.LeftMargin+2*typescript.Indent {
		t.Errorf("item paragraph LeftMargin = %d", para.LeftMargin)
	}

	ul := ms.Body().Children[1].(*UnorderedList)
	if item := ul.Children[0].(*ListItem); item.Number != nil {
		t.Error("unordered list item has a number")
	}
}

func TestMarkdownBlockquote(t *testing.T) {
	ms := parseTestMarkdown(t, "> Quoted words here.\n")

	bq := ms.Body().Children[0].(*Blockquote)
	para := bq.Children[0].(*Paragraph)
	if para.LeftMargin != typescript.LeftMargin+typescript.Indent {
		t.Errorf("quote LeftMargin = %d", para.LeftMargin)
	}
	if para.RightMargin != typescript.RightMargin-typescript.Indent {
		t.Errorf("quote RightMargin = %d", para.RightMargin)
	}
}

func TestMarkdownThematicBreak(t *testing.T) {
	ms := parseTestMarkdown(t, "before\n\n---\n\nafter\n")

	if _, ok := ms.Body().Children[1].(*Div); !ok {
		t.Error("thematic break did not become a scene break")
	}
}

func TestMarkdownNoFrontPage(t *testing.T) {
	ms := parseTestMarkdown(t, "Just a paragraph.\n")

	if ms.Head() != nil {
		t.Error("markdown input should not produce a head")
	}
	if ms.HasStructure {
		t.Error("HasStructure set without headings")
	}
	if ms.FirstPage != 1 {
		t.Errorf("FirstPage = %d, want 1", ms.FirstPage)
	}
}
