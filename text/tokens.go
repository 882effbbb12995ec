// Package text implements low-level text processing: token lists that
// represent a stream of typed characters which can be broken up into
// lines in various ways.
//
// The main issue with structured input is whitespace. We are
// privileging the author's convenience, and a liberal whitespace policy
// is key to giving authors the freedom they need to format their text
// just as they like it. To regularize the input, the tokenizer
// collapses contiguous whitespace to a single space character in all
// cases but one: typewriter style requires two spaces after a full-stop
// character (an exclamation mark, a period, a colon, or a question
// mark).
package text

import (
	"strings"
	"unicode/utf8"
)

// Display selects rendering features. Changes to the display state are
// handled in PostScript.
type Display uint32

const (
	// Emphasis is rendered as underlining.
	Emphasis Display = 1 << iota
	// Subscript shifts the baseline down.
	Subscript
	// Superscript shifts the baseline up.
	Superscript
)

// Format flags affect line breaking.
type Format uint32

const (
	// FullStop marks sentence-ending punctuation.
	FullStop Format = 1 << iota
	// DiscretionaryBreak marks a token a line may be broken on.
	DiscretionaryBreak
	// MandatoryBreak forces a line break on the token.
	MandatoryBreak
	// DiscardOnBreak drops the token when a break is taken on it.
	DiscardOnBreak
)

// Kind classifies a token.
// ENUM(close, lineBreak, noteRef, open, punct, space, symbol, word)
type Kind int

// Token is a typed run of characters together with the display state it
// was created under. Tokens are value types and are not modified after
// construction.
type Token struct {
	Kind Kind
	Text string
	Dpy  Display
	Frm  Format
}

// Length returns the number of character cells the token occupies on a
// line. Line breaks occupy none.
func (t Token) Length() int {
	if t.Kind == KindLineBreak {
		return 0
	}
	return utf8.RuneCountInString(t.Text)
}

// Word makes a token holding one or more word characters.
func Word(text string, dpy Display) Token {
	return Token{Kind: KindWord, Text: text, Dpy: dpy}
}

// Space makes a run of n space characters. Spaces are discretionary
// break points and are discarded when a break is taken on them.
func Space(n int, dpy Display) Token {
	return Token{
		Kind: KindSpace,
		Text: strings.Repeat(" ", n),
		Dpy:  dpy,
		Frm:  DiscretionaryBreak | DiscardOnBreak,
	}
}

// Punct makes a punctuation token. Sentence-ending characters are
// flagged so the tokenizer can double the following space.
func Punct(text string, dpy Display) Token {
	var frm Format
	switch text {
	case ".", "?", "!", ":":
		frm = FullStop
	}
	return Token{Kind: KindPunct, Text: text, Dpy: dpy, Frm: frm}
}

// Symbol makes a token holding one symbol character.
func Symbol(text string, dpy Display) Token {
	return Token{Kind: KindSymbol, Text: text, Dpy: dpy}
}

// Open makes a token holding one start-of-group character.
func Open(text string, dpy Display) Token {
	return Token{Kind: KindOpen, Text: text, Dpy: dpy}
}

// Close makes a token holding one end-of-group character.
func Close(text string, dpy Display) Token {
	return Token{Kind: KindClose, Text: text, Dpy: dpy}
}

// NoteRef makes a note reference token. The label prints as a
// superscript and is also recorded on the line carrying it, so the
// compositor can pull the matching footnote onto the same page.
func NoteRef(label string) Token {
	return Token{Kind: KindNoteRef, Text: label, Dpy: Superscript}
}

// LineBreak makes a mandatory line break token. It prints nothing.
func LineBreak(dpy Display) Token {
	return Token{Kind: KindLineBreak, Dpy: dpy, Frm: MandatoryBreak}
}
