package ps

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"msc/text"
	"msc/typescript"
)

func testLogger(t *testing.T) *zap.Logger {
	t.Helper()
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

func bodyLine(s string) *text.Line {
	line := text.LineOf(text.NewSegment(s))
	line.Column = typescript.LeftMargin
	return &line
}

func testTypescript() *typescript.Typescript {
	return &typescript.Typescript{
		ShortTitle:  text.NewSegment("NIGHT"),
		ShortAuthor: text.NewSegment("DOE"),
		Pages: []typescript.Page{{
			Number: 1,
			Height: typescript.PageHeight,
			Lines: []*text.Line{
				bodyLine("It was a dark and stormy night."),
				nil,
				bodyLine("Suddenly a shot rang out."),
			},
		}},
	}
}

func generateToString(t *testing.T, ts *typescript.Typescript, prologue []byte) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), "out.ps")
	if err := Generate(context.Background(), ts, fname, prologue, testLogger(t)); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	data, err := os.ReadFile(fname)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return string(data)
}

func TestGenerate_DocumentStructure(t *testing.T) {
	out := generateToString(t, testTypescript(), nil)

	if !strings.HasPrefix(out, "%!PS") {
		t.Errorf("output does not start with %%!PS:\n%.80s", out)
	}
	for _, want := range []string{
		"%%Title: NIGHT",
		"%%Pages: 1",
		"%%Page: 1 1",
		"page-begin",
		"page-end",
		"%%Trailer",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "@title@") || strings.Contains(out, "@pages@") || strings.Contains(out, "@creator@") {
		t.Error("prologue placeholders were not substituted")
	}
}

func TestGenerate_BodyLines(t *testing.T) {
	out := generateToString(t, testTypescript(), nil)

	// column 10 is 72 points in, the top line sits at row 59
	if !strings.Contains(out, "72 708 moveto (It was a dark and stormy night.) show") {
		t.Error("first body line missing or misplaced")
	}
	// nil entry leaves a blank row, next line lands two rows down
	if !strings.Contains(out, "72 684 moveto (Suddenly a shot rang out.) show") {
		t.Error("second body line missing or misplaced")
	}
}

func TestGenerate_SlugLine(t *testing.T) {
	// no contact and no word count on an unstructured manuscript puts a
	// slug even on the first page
	out := generateToString(t, testTypescript(), nil)

	if !strings.Contains(out, "(DOE) show (/) show (NIGHT) show (/1) show") {
		t.Error("slug line missing on first page")
	}
}

func TestGenerate_WordCountSuppressesSlug(t *testing.T) {
	ts := testTypescript()
	ts.WordCount = 60000

	out := generateToString(t, ts, nil)

	if strings.Contains(out, "(/1) show") {
		t.Error("first page should not carry a slug when the word count is shown")
	}
	if !strings.Contains(out, "Approx. 60,000 words") {
		t.Error("word count line missing")
	}
}

func TestGenerate_WordCountRounding(t *testing.T) {
	tests := []struct {
		wc   int
		want string
	}{
		{52341, "Approx. 52,000 words"},
		{52851, "Approx. 53,000 words"},
		{730, "Approx. 700 words"},
	}
	for _, tt := range tests {
		ts := testTypescript()
		ts.WordCount = tt.wc
		out := generateToString(t, ts, nil)
		if !strings.Contains(out, tt.want) {
			t.Errorf("word count %d: output missing %q", tt.wc, tt.want)
		}
	}
}

func TestGenerate_Contact(t *testing.T) {
	ts := testTypescript()
	line1 := text.LineOf(text.NewSegment("John Doe"))
	line1.Column = typescript.LeftMargin
	line2 := text.LineOf(text.NewSegment("123 Main Street"))
	line2.Column = typescript.LeftMargin
	ts.Contact = &typescript.Block{
		Lines:       []text.Line{line1, line2},
		LineSpacing: typescript.SpacingDouble,
		Tag:         typescript.TagContact,
	}

	out := generateToString(t, ts, nil)

	if !strings.Contains(out, "72 708 moveto (John Doe) show") {
		t.Error("first contact line missing or misplaced")
	}
	// double spacing skips a row between contact lines
	if !strings.Contains(out, "72 684 moveto (123 Main Street) show") {
		t.Error("second contact line missing or misplaced")
	}
	if strings.Contains(out, "(/1) show") {
		t.Error("first page should not carry a slug when contact information is shown")
	}
}

func TestGenerate_StructuredFirstPageIsSlugged(t *testing.T) {
	ts := testTypescript()
	ts.HasStructure = true
	ts.Contact = &typescript.Block{
		Lines:       []text.Line{text.LineOf(text.NewSegment("John Doe"))},
		LineSpacing: typescript.SpacingSingle,
	}

	out := generateToString(t, ts, nil)

	if !strings.Contains(out, "(/1) show") {
		t.Error("title page of a structured manuscript should carry a slug")
	}
}

func TestGenerate_Footer(t *testing.T) {
	note := text.LineOf(text.NewSegment("1 Except at occasional intervals."))
	ts := testTypescript()
	ts.Pages[0].Footer = []*text.Line{&note}

	out := generateToString(t, ts, nil)

	// separator rule sits three rows above the bottom line
	if !strings.Contains(out, "72 108 moveto (____________________) show") {
		t.Error("footnote separator missing or misplaced")
	}
	if !strings.Contains(out, "72 84 moveto (1 Except at occasional intervals.) show") {
		t.Error("footnote line missing or misplaced")
	}
}

func TestGenerate_MultiplePages(t *testing.T) {
	ts := testTypescript()
	ts.Pages = append(ts.Pages, typescript.Page{
		Number: 2,
		Height: typescript.PageHeight,
		Lines:  []*text.Line{bodyLine("Second page.")},
	})

	out := generateToString(t, ts, nil)

	if !strings.Contains(out, "%%Pages: 2") {
		t.Error("page count not updated")
	}
	if !strings.Contains(out, "%%Page: 2 2") {
		t.Error("second page structuring comment missing")
	}
	if !strings.Contains(out, "(/2) show") {
		t.Error("second page slug missing")
	}
	if got := strings.Count(out, "page-end"); got < 2 {
		t.Errorf("page-end emitted %d times, want one per page", got)
	}
}

func TestGenerate_CustomPrologue(t *testing.T) {
	prologue := []byte("%!PS\n%%Title: @title@\n%%Pages: @pages@\n% custom-prologue-marker\n")

	out := generateToString(t, testTypescript(), prologue)

	if !strings.Contains(out, "% custom-prologue-marker") {
		t.Error("custom prologue not used")
	}
	if !strings.Contains(out, "%%Title: NIGHT") {
		t.Error("custom prologue placeholders not substituted")
	}
}

func TestGenerate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fname := filepath.Join(t.TempDir(), "out.ps")
	if err := Generate(ctx, testTypescript(), fname, nil, testLogger(t)); err == nil {
		t.Error("Generate() expected error for cancelled context, got nil")
	}
}

func TestGenerate_BadPath(t *testing.T) {
	err := Generate(context.Background(), testTypescript(), "/nonexistent/dir/out.ps", nil, testLogger(t))
	if err == nil {
		t.Error("Generate() expected error for bad output path, got nil")
	}
}

func TestCoordinateConversion(t *testing.T) {
	tests := []struct {
		col, x int
	}{
		{0, 0},
		{10, 72},
		{74, 533}, // 532.8 rounds up
	}
	for _, tt := range tests {
		if got := colToX(tt.col); got != tt.x {
			t.Errorf("colToX(%d) = %d, want %d", tt.col, got, tt.x)
		}
	}

	if got := rowToY(typescript.TopLine); got != 708 {
		t.Errorf("rowToY(TopLine) = %d, want 708", got)
	}
	if got := rowToY(typescript.BottomLine); got != 72 {
		t.Errorf("rowToY(BottomLine) = %d, want 72", got)
	}
}
