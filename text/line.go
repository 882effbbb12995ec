package text

import (
	"strings"
	"unicode/utf8"
)

// Segment is a run of output over which the display state does not
// change. The PostScript command is pre-rendered at construction so
// page assembly only concatenates strings.
type Segment struct {
	// Text is the plain text of the segment.
	Text string
	// PS is the PostScript command printing the segment.
	PS string
}

var psEscaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

// NewSegment pre-renders a plain string with default display state.
func NewSegment(s string) Segment {
	return Segment{
		Text: s,
		PS:   "(" + psEscaper.Replace(s) + ") show ",
	}
}

// segmentFromTokens renders a token run sharing one display state. The
// baseline is shifted around sub/superscripts and emphasis selects the
// underlining variant of show.
func segmentFromTokens(tokens []Token) Segment {
	var text, ps strings.Builder

	var dpy Display
	if len(tokens) > 0 {
		dpy = tokens[0].Dpy
	}

	if dpy&Subscript != 0 {
		ps.WriteString("0 -6 rmoveto ")
	} else if dpy&Superscript != 0 {
		ps.WriteString("0 6 rmoveto ")
	}

	ps.WriteByte('(')

	for _, t := range tokens {
		if t.Kind == KindLineBreak {
			continue
		}
		text.WriteString(t.Text)
		switch t.Text {
		case `\`, "(", ")":
			ps.WriteByte('\\')
			ps.WriteString(t.Text)
		default:
			ps.WriteString(t.Text)
		}
	}

	ps.WriteString(") ")

	if dpy&Emphasis != 0 {
		ps.WriteString("ushow ")
	} else {
		ps.WriteString("show ")
	}

	if dpy&Subscript != 0 {
		ps.WriteString("0 6 rmoveto ")
	} else if dpy&Superscript != 0 {
		ps.WriteString("0 -6 rmoveto ")
	}

	return Segment{Text: text.String(), PS: ps.String()}
}

// Line is one line of output. Different sets of display flags require
// different PostScript commands, so each line is split into segments
// based on the number of display state changes there are.
type Line struct {
	// Column is the start column.
	Column int
	// Segments are ordered from left to right.
	Segments []Segment
	// NoteRefs lists the note reference labels appearing on this
	// line, in order of appearance.
	NoteRefs []string
}

// LineOf wraps a single segment into a line starting at column 0.
func LineOf(segment Segment) Line {
	return Line{Segments: []Segment{segment}}
}

// Length returns the total number of characters in the line.
func (l *Line) Length() int {
	var n int
	for _, s := range l.Segments {
		n += utf8.RuneCountInString(s.Text)
	}
	return n
}

// PS returns the PostScript command to output the line.
func (l *Line) PS() string {
	var b strings.Builder
	for _, s := range l.Segments {
		b.WriteString(s.PS)
	}
	return b.String()
}

// LineFromTokens splits a token run into segments at display state
// changes and collects note reference labels. Line break tokens print
// nothing and do not end a segment.
func LineFromTokens(tokens []Token) Line {
	var noteRefs []string

	var dpy Display
	if len(tokens) > 0 {
		dpy = tokens[0].Dpy
	}

	changes := []int{0}

	for i, t := range tokens {
		if t.Kind == KindLineBreak {
			continue
		}
		if t.Dpy != dpy {
			dpy = t.Dpy
			changes = append(changes, i)
		}
		if t.Kind == KindNoteRef {
			noteRefs = append(noteRefs, t.Text)
		}
	}

	changes = append(changes, len(tokens))

	var segments []Segment
	for k := 1; k < len(changes); k++ {
		i, j := changes[k-1], changes[k]
		if j > i {
			segments = append(segments, segmentFromTokens(tokens[i:j]))
		}
	}

	return Line{Segments: segments, NoteRefs: noteRefs}
}
