package text

import (
	"slices"
	"strings"
)

// split marks a line break before tokens[index]. When discard is set
// the token the break was taken on is dropped from the output.
type split struct {
	index   int
	discard bool
}

// fitsToNextBreak looks ahead from position i to the next valid break
// point and checks whether everything up to it fits into the current
// line. x is the number of cells already committed to the line.
func fitsToNextBreak(tokens []Token, lineLength, i, x int) bool {
	u := x + tokens[i].Length()

	for j := i + 1; j < len(tokens); j++ {
		frm := tokens[j].Frm
		n := tokens[j].Length()

		switch {
		case frm&MandatoryBreak != 0:
			return u <= lineLength
		case frm&DiscretionaryBreak != 0:
			if frm&DiscardOnBreak != 0 {
				return u <= lineLength
			}
			return u+n <= lineLength
		default:
			u += n
		}
	}
	return u <= lineLength
}

// cutLines materializes lines from break positions, dropping tokens
// marked discard and skipping empty ranges.
func cutLines(tokens []Token, splits []split) []Line {
	lines := make([]Line, 0, len(splits)-1)

	for k := 1; k < len(splits); k++ {
		i, j := splits[k-1].index, splits[k].index
		if splits[k].discard {
			j--
		}
		if j > i {
			lines = append(lines, LineFromTokens(tokens[i:j]))
		}
	}
	return lines
}

// BreakFill breaks a token list into lines filling a text block of the
// given width. A break is taken on a discretionary token only when the
// text up to the next break point would overflow the line.
func BreakFill(tokens []Token, lineLength int) []Line {
	splits := []split{{0, false}}
	var x int

	for i, t := range tokens {
		switch {
		case t.Frm&MandatoryBreak != 0:
			splits = append(splits, split{i + 1, true})
			x = 0

		case t.Frm&DiscretionaryBreak != 0:
			if !fitsToNextBreak(tokens, lineLength, i, x) {
				splits = append(splits, split{i + 1, t.Frm&DiscardOnBreak != 0})
				x = 0
			} else {
				x += t.Length()
			}

		default:
			x += t.Length()
		}
	}

	splits = append(splits, split{len(tokens), false})
	return cutLines(tokens, splits)
}

// BreakBalance breaks a token list into lines of roughly equal length,
// for text that will be centered. The cutoff is the total text length
// divided over the number of lines the fill width would need.
func BreakBalance(tokens []Token, lineLength int) []Line {
	var textLength int
	for _, t := range tokens {
		textLength += t.Length()
	}
	height := textLength/lineLength + 1
	cutoff := textLength / height

	splits := []split{{0, false}}
	var x int

	for i, t := range tokens {
		switch {
		case t.Frm&MandatoryBreak != 0:
			splits = append(splits, split{i + 1, true})
			x = 0

		case t.Frm&DiscretionaryBreak != 0:
			if x+t.Length() >= cutoff {
				splits = append(splits, split{i + 1, t.Frm&DiscardOnBreak != 0})
				x = 0
			} else {
				x += t.Length()
			}

		default:
			x += t.Length()
		}
	}

	splits = append(splits, split{len(tokens), false})
	return cutLines(tokens, splits)
}

// BreakHang breaks a token list such that the first line hangs while
// subsequent lines are indented by indent columns. The budget of the
// continuation lines shrinks by the same amount, but always keeps at
// least one column.
func BreakHang(tokens []Token, firstLineLength, indent int) []Line {
	lineLength := firstLineLength
	splits := []split{{0, false}}
	var x int

	for i, t := range tokens {
		switch {
		case t.Frm&MandatoryBreak != 0:
			splits = append(splits, split{i + 1, true})
			x = 0

		case t.Frm&DiscretionaryBreak != 0:
			if !fitsToNextBreak(tokens, lineLength, i, x) {
				splits = append(splits, split{i + 1, t.Frm&DiscardOnBreak != 0})
				if len(splits) == 2 { // first break
					lineLength -= min(indent, lineLength-1)
				}
				x = 0
			} else {
				x += t.Length()
			}

		default:
			x += t.Length()
		}
	}

	splits = append(splits, split{len(tokens), false})

	pad := NewSegment(strings.Repeat(" ", indent))

	var lines []Line
	for k := 1; k < len(splits); k++ {
		i, j := splits[k-1].index, splits[k].index
		if splits[k].discard {
			j--
		}
		if j > i {
			line := LineFromTokens(tokens[i:j])
			if len(lines) > 0 {
				line.Segments = slices.Insert(line.Segments, 0, pad)
			}
			lines = append(lines, line)
		}
	}
	return lines
}
