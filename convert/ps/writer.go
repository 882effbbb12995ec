// Package ps renders a composed typescript as a PostScript program.
package ps

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/transform"

	"msc/misc"
	"msc/text"
	"msc/typescript"
)

// defaultPrologue carries the document structuring comments and the page
// procedures. The writer substitutes @title@, @creator@ and @pages@.
//
//go:embed prologue.ps
var defaultPrologue []byte

// Courier is fixed pitch, so the horizontal position of a column is a
// simple multiple. Positions are rounded to whole points.
func colToX(column int) int {
	return int(math.Round(float64(column) * typescript.CharWidth))
}

func rowToY(row int) int {
	return int(math.Round(float64(row) * typescript.LineHeight))
}

// Generate writes the typescript to fname. Output text is transcoded to
// ISO/IEC 8859-15 with unsupported characters replaced.
func Generate(ctx context.Context, ts *typescript.Typescript, fname string, prologue []byte, log *zap.Logger) (rerr error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(prologue) == 0 {
		prologue = defaultPrologue
	}

	f, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("unable to close output file: %w", err)
		}
	}()

	// bufio keeps the first write error sticky, so page output can run
	// unchecked and the error surfaces on Flush
	w := bufio.NewWriter(transform.NewWriter(f, encoding.ReplaceUnsupported(charmap.ISO8859_15.NewEncoder())))

	wr := &writer{ts: ts, w: w, realPageNo: 1}
	if err := wr.run(ctx, prologue); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}

	log.Debug("PostScript generated", zap.String("file", fname), zap.Int("pages", len(ts.Pages)))
	return nil
}

type writer struct {
	ts         *typescript.Typescript
	w          *bufio.Writer
	realPageNo int
}

func (wr *writer) run(ctx context.Context, prologue []byte) error {
	wr.writePrologue(prologue)

	for i := range wr.ts.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		page := &wr.ts.Pages[i]

		wr.startPage(page.Number)

		if i == 0 {
			if wr.ts.Contact != nil {
				wr.writeContact()
			}
			if wr.ts.WordCount > 0 {
				wr.writeWordCount()
			}
		}

		y := rowToY(typescript.TopLine)
		for _, line := range page.Lines {
			if line != nil {
				fmt.Fprintf(wr.w, "%d %d moveto %s\n", colToX(line.Column), y, line.PS())
			}
			y -= int(typescript.LineHeight)
		}

		if len(page.Footer) > 0 {
			x := colToX(typescript.LeftMargin)
			y = rowToY(typescript.BottomLine + len(page.Footer) + 2)

			fmt.Fprintf(wr.w, "%d %d moveto (____________________) show \n", x, y)
			y -= 2 * int(typescript.LineHeight)

			for _, line := range page.Footer {
				if line != nil {
					fmt.Fprintf(wr.w, "%d %d moveto %s\n", x, y, line.PS())
				}
				y -= int(typescript.LineHeight)
			}
		}

		fmt.Fprintln(wr.w, "page-end")
	}

	_, err := wr.w.WriteString("%%Trailer\n")
	return err
}

func (wr *writer) writePrologue(prologue []byte) {
	s := strings.NewReplacer(
		"@title@", wr.ts.ShortTitle.Text,
		"@creator@", misc.GetAppName(),
		"@pages@", strconv.Itoa(len(wr.ts.Pages)),
	).Replace(string(prologue))
	wr.w.WriteString(s)
}

// startPage emits the page structuring comment and the slug line. The
// first page of an unstructured manuscript carries contact information
// or a word count instead of a slug; title pages of structured ones and
// all later pages are slugged with author, title and the logical page
// number.
func (wr *writer) startPage(pageNo int) {
	fmt.Fprintf(wr.w, "%%%%Page: %d %d\n", wr.realPageNo, wr.realPageNo)
	fmt.Fprintln(wr.w, "page-begin")
	wr.realPageNo++

	slugged := pageNo > 1 ||
		(pageNo == 1 && wr.ts.HasStructure) ||
		(pageNo == 1 && !wr.ts.HasStructure && wr.ts.Contact == nil && wr.ts.WordCount <= 0)
	if !slugged {
		return
	}

	fmt.Fprintf(wr.w, "%d %d moveto ", colToX(typescript.LeftMargin), rowToY(typescript.SlugLine))
	wr.w.WriteString(wr.ts.ShortAuthor.PS)
	wr.w.WriteString("(/) show ")
	wr.w.WriteString(wr.ts.ShortTitle.PS)
	fmt.Fprintf(wr.w, "(/%d) show \n", pageNo)
}

func (wr *writer) writeContact() {
	block := wr.ts.Contact
	y := rowToY(typescript.TopLine)

	for i := range block.Lines {
		if i > 0 && block.LineSpacing == typescript.SpacingDouble {
			y -= int(typescript.LineHeight)
		}
		line := &block.Lines[i]
		fmt.Fprintf(wr.w, "%d %d moveto %s", colToX(line.Column), y, line.PS())
		y -= int(typescript.LineHeight)
	}
}

// writeWordCount prints the approximate word count in the top right
// corner, rounded to the nearest thousand, or to the nearest hundred for
// very short pieces.
func (wr *writer) writeWordCount() {
	wc := wr.ts.WordCount

	var n int
	if wc > 1000 {
		n = int(math.RoundToEven(float64(wc)/1000.0)) * 1000
	} else {
		n = int(math.RoundToEven(float64(wc)/100.0)) * 100
	}

	s := message.NewPrinter(language.AmericanEnglish).Sprintf("Approx. %d words", n)

	line := text.LineOf(text.NewSegment(s))
	line.Column = typescript.RightMargin - utf8.RuneCountInString(s)

	fmt.Fprintf(wr.w, "%d %d moveto %s", colToX(line.Column), rowToY(typescript.TopLine), line.PS())
}
