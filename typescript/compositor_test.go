package typescript

import (
	"strings"
	"testing"

	"msc/text"
)

func makeLine(s string) text.Line {
	return text.LineOf(text.NewSegment(s))
}

func makeLines(n int) []text.Line {
	lines := make([]text.Line, 0, n)
	for range n {
		lines = append(lines, makeLine("x"))
	}
	return lines
}

func TestCompositorSingleBlock(t *testing.T) {
	c := NewCompositor(1, false)
	c.Run([]Block{{Lines: []text.Line{makeLine("foo")}, LineSpacing: SpacingSingle}})

	if len(c.Pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(c.Pages))
	}
	if c.Pages[0].Number != 1 {
		t.Errorf("page number = %d, want 1", c.Pages[0].Number)
	}
	if len(c.Pages[0].Lines) != 1 {
		t.Errorf("got %d lines, want 1", len(c.Pages[0].Lines))
	}
}

func TestCompositorTitlePageIsUnnumbered(t *testing.T) {
	c := NewCompositor(1, true)
	c.Run([]Block{
		{Lines: []text.Line{makeLine("title")}, LineSpacing: SpacingSingle},
		{Lines: []text.Line{makeLine("chapter")}, LineSpacing: SpacingSingle, PaddingBefore: -1},
	})

	if len(c.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(c.Pages))
	}
	if c.Pages[0].Number != -1 {
		t.Errorf("title page number = %d, want -1", c.Pages[0].Number)
	}
	if c.Pages[1].Number != 1 {
		t.Errorf("second page number = %d, want 1", c.Pages[1].Number)
	}
}

func TestCompositorPaddingCollapse(t *testing.T) {
	c := NewCompositor(1, false)
	c.Run([]Block{
		{Lines: []text.Line{makeLine("a")}, LineSpacing: SpacingSingle, PaddingAfter: 3},
		{Lines: []text.Line{makeLine("b")}, LineSpacing: SpacingSingle, PaddingBefore: 2},
	})

	// padding after and padding before collapse to the larger value
	lines := c.Pages[0].Lines
	if len(lines) != 5 {
		t.Fatalf("got %d rows, want 5", len(lines))
	}
	for i := 1; i <= 3; i++ {
		if lines[i] != nil {
			t.Errorf("row %d is not blank", i)
		}
	}
}

func TestCompositorForcedPageBreak(t *testing.T) {
	c := NewCompositor(1, false)
	c.Run([]Block{
		{Lines: []text.Line{makeLine("a")}, LineSpacing: SpacingSingle},
		{Lines: []text.Line{makeLine("b")}, LineSpacing: SpacingSingle, PaddingBefore: -3},
	})

	if len(c.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(c.Pages))
	}
	// -3 opens the new page with two blank rows
	lines := c.Pages[1].Lines
	if len(lines) != 3 || lines[0] != nil || lines[1] != nil || lines[2] == nil {
		t.Errorf("second page rows = %d, want two blanks and a line", len(lines))
	}
}

func TestCompositorDoubleSpacing(t *testing.T) {
	c := NewCompositor(1, false)
	c.Run([]Block{{Lines: makeLines(3), LineSpacing: SpacingDouble}})

	lines := c.Pages[0].Lines
	if len(lines) != 5 {
		t.Fatalf("got %d rows, want 5", len(lines))
	}
	for i, row := range lines {
		blank := i%2 == 1
		if (row == nil) != blank {
			t.Errorf("row %d blank = %v, want %v", i, row == nil, blank)
		}
	}
}

func TestCompositorPageOverflow(t *testing.T) {
	c := NewCompositor(1, false)
	c.Run([]Block{{Lines: makeLines(60), LineSpacing: SpacingSingle}})

	if len(c.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(c.Pages))
	}
	if len(c.Pages[0].Lines) != 53 {
		t.Errorf("first page rows = %d, want 53", len(c.Pages[0].Lines))
	}
	if len(c.Pages[1].Lines) != 7 {
		t.Errorf("second page rows = %d, want 7", len(c.Pages[1].Lines))
	}
	if c.Pages[1].Number != 2 {
		t.Errorf("second page number = %d, want 2", c.Pages[1].Number)
	}
}

func TestCompositorFootnoteOnSamePage(t *testing.T) {
	line := makeLine("fact")
	line.NoteRefs = []string{"1"}

	c := NewCompositor(1, false)
	c.Run([]Block{{
		Lines:       []text.Line{line},
		LineSpacing: SpacingSingle,
		Footnotes: []Footnote{{
			Label:  "1",
			Blocks: []Block{{Lines: []text.Line{makeLine("the note")}, LineSpacing: SpacingSingle}},
		}},
	}})

	if len(c.Pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(c.Pages))
	}
	if len(c.Pages[0].Footer) != 1 {
		t.Errorf("footer rows = %d, want 1", len(c.Pages[0].Footer))
	}
}

func TestCompositorFootnoteForcesPageBreak(t *testing.T) {
	line := makeLine("fact")
	line.NoteRefs = []string{"1"}

	c := NewCompositor(1, false)
	c.Run([]Block{
		{Lines: makeLines(50), LineSpacing: SpacingSingle},
		{
			Lines:       []text.Line{line},
			LineSpacing: SpacingSingle,
			Footnotes: []Footnote{{
				Label:  "1",
				Blocks: []Block{{Lines: makeLines(5), LineSpacing: SpacingSingle}},
			}},
		},
	})

	if len(c.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(c.Pages))
	}
	if len(c.Pages[0].Footer) != 0 {
		t.Errorf("first page footer rows = %d, want 0", len(c.Pages[0].Footer))
	}
	if len(c.Pages[1].Footer) != 5 {
		t.Errorf("second page footer rows = %d, want 5", len(c.Pages[1].Footer))
	}
	if len(c.Pages[1].Lines) != 1 {
		t.Errorf("second page content rows = %d, want 1", len(c.Pages[1].Lines))
	}
}

func TestCompositorUnresolvedNoteRef(t *testing.T) {
	line := makeLine("fact")
	line.NoteRefs = []string{"9"}

	c := NewCompositor(1, false)
	c.Run([]Block{{Lines: []text.Line{line}, LineSpacing: SpacingSingle}})

	if len(c.Pages[0].Footer) != 0 {
		t.Errorf("footer rows = %d, want 0", len(c.Pages[0].Footer))
	}
	if len(c.Pages[0].Lines) != 1 {
		t.Errorf("content rows = %d, want 1", len(c.Pages[0].Lines))
	}
}

func TestCompositorFootnoteConsumedOnce(t *testing.T) {
	first := makeLine("first")
	first.NoteRefs = []string{"1"}
	second := makeLine("second")
	second.NoteRefs = []string{"1"}

	c := NewCompositor(1, false)
	c.Run([]Block{{
		Lines:       []text.Line{first, second},
		LineSpacing: SpacingSingle,
		Footnotes: []Footnote{{
			Label:  "1",
			Blocks: []Block{{Lines: []text.Line{makeLine("the note")}, LineSpacing: SpacingSingle}},
		}},
	}})

	if len(c.Pages[0].Footer) != 1 {
		t.Errorf("footer rows = %d, want 1", len(c.Pages[0].Footer))
	}
}

func TestCompositorContactSetAside(t *testing.T) {
	c := NewCompositor(1, false)
	c.Run([]Block{
		{Lines: []text.Line{makeLine("press")}, LineSpacing: SpacingSingle, Tag: TagContact},
		{Lines: []text.Line{makeLine("body")}, LineSpacing: SpacingSingle},
	})

	if c.Contact == nil {
		t.Fatal("contact block was not set aside")
	}
	if len(c.Pages[0].Lines) != 1 {
		t.Errorf("content rows = %d, want 1", len(c.Pages[0].Lines))
	}
}

func TestCompositorTableOfContents(t *testing.T) {
	entry := makeLine("I. Beginnings")
	entry.Column = LeftMargin

	c := NewCompositor(1, false)
	c.Run([]Block{
		{Lines: []text.Line{makeLine("body")}, LineSpacing: SpacingSingle},
		{Lines: []text.Line{entry}, LineSpacing: SpacingSingle, PaddingAfter: 1, Tag: TagTOC},
	})

	if len(c.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(c.Pages))
	}

	tocPage := c.Pages[1]
	if tocPage.Number != -1 {
		t.Errorf("contents page number = %d, want -1", tocPage.Number)
	}

	header := tocPage.Lines[0]
	if header == nil || header.Segments[0].Text != "Table of Contents" {
		t.Fatal("contents page does not open with the header")
	}
	if header.Column != 33 {
		t.Errorf("header column = %d, want 33", header.Column)
	}

	var entryLine *text.Line
	for _, row := range tocPage.Lines[1:] {
		if row != nil {
			entryLine = row
			break
		}
	}
	if entryLine == nil {
		t.Fatal("contents entry not found")
	}
	if entryLine.Length() != RightMargin-LeftMargin+1 {
		t.Errorf("entry length = %d, want %d", entryLine.Length(), RightMargin-LeftMargin+1)
	}
	leader := entryLine.Segments[len(entryLine.Segments)-1].Text
	if !strings.Contains(leader, ". .") || !strings.HasSuffix(leader, "1") {
		t.Errorf("leader = %q, want dot leaders ending in the page number", leader)
	}
}

func TestCompositorTableOfContentsOverlongEntry(t *testing.T) {
	entry := makeLine(strings.Repeat("x", RightMargin-LeftMargin+6))
	entry.Column = LeftMargin

	c := NewCompositor(1, false)
	c.Run([]Block{
		{Lines: []text.Line{makeLine("body")}, LineSpacing: SpacingSingle},
		{Lines: []text.Line{entry}, LineSpacing: SpacingSingle, PaddingAfter: 1, Tag: TagTOC},
	})

	tocPage := c.Pages[len(c.Pages)-1]
	var entryLine *text.Line
	for _, row := range tocPage.Lines[1:] {
		if row != nil {
			entryLine = row
			break
		}
	}
	if entryLine == nil {
		t.Fatal("contents entry not found")
	}
	// no room for leaders, the page number is still appended
	leader := entryLine.Segments[len(entryLine.Segments)-1].Text
	if strings.Contains(leader, ".") {
		t.Errorf("leader = %q, want no dots on an overlong entry", leader)
	}
	if !strings.HasSuffix(leader, "1") {
		t.Errorf("leader = %q, want the page number appended", leader)
	}
}
