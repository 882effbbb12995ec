package text

import "strings"

// Character classes, limited to what survives the Latin-9 output
// encoding. Backslash and tilde are symbols too, but the tokenizer
// intercepts them before classification: backslash escapes the next
// character and tilde is the non-breaking space.
const (
	openChars   = "([{«‘“"
	closeChars  = ")]}»’”"
	punctChars  = "!',-.:;?¡¿–—…"
	symbolChars = "\"#$%&*+/<=>@^_`|¢£¥§©¬®¯°±¶·×÷€"
)

func isWordRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		return true
	case r >= 0xc0 && r <= 0xff && r != '×' && r != '÷':
		return true
	}
	return strings.ContainsRune("ª²³µ¹ºŒœŠšŸŽž", r)
}

func isSpaceRune(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// Tokenizer converts the character data of text elements into tokens.
// One tokenizer is shared by a whole document so the sentence splitter
// is loaded once.
type Tokenizer struct {
	splitter *Splitter
}

func NewTokenizer(splitter *Splitter) *Tokenizer {
	return &Tokenizer{splitter: splitter}
}

// plainText rebuilds the text accumulated so far, for sentence-boundary
// probing. Note reference labels are not part of the prose.
func plainText(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		if t.Kind == KindNoteRef {
			continue
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

// spaceWidth decides between the single space and the typewriter double
// space after a sentence end. Closing brackets and note references may
// sit between the full stop and the space. Only the period is
// ambiguous enough to ask the splitter about; the others always end a
// sentence.
func (tk *Tokenizer) spaceWidth(tokens []Token) int {
	for i := len(tokens) - 1; i >= 0; i-- {
		switch tokens[i].Kind {
		case KindClose, KindNoteRef:
			continue
		case KindPunct:
			if tokens[i].Frm&FullStop == 0 {
				return 1
			}
			if tokens[i].Text != "." {
				return 2
			}
			if tk.splitter.EndsSentence(plainText(tokens[:i+1])) {
				return 2
			}
			return 1
		}
		return 1
	}
	return 1
}

// Append scans in and appends the resulting tokens, which all carry the
// given display state. It returns the extended list and the number of
// word tokens appended. Whitespace runs collapse to a single space
// token (two after a confirmed sentence end); a backslash escapes the
// next character into a non-breaking symbol; a tilde is a non-breaking
// space.
func (tk *Tokenizer) Append(tokens []Token, in string, dpy Display) ([]Token, int) {
	var (
		word  strings.Builder
		words int
	)

	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, Word(word.String(), dpy))
			word.Reset()
			words++
		}
	}

	runes := []rune(in)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case isSpaceRune(r):
			flush()
			if n := len(tokens); n > 0 && tokens[n-1].Kind == KindSpace {
				continue // collapse
			}
			tokens = append(tokens, Space(tk.spaceWidth(tokens), dpy))

		case r == '\\':
			flush()
			if i+1 < len(runes) {
				i++
				tokens = append(tokens, Symbol(string(runes[i]), dpy))
			} else {
				tokens = append(tokens, Symbol(`\`, dpy))
			}

		case r == '~' || r == '\u00a0':
			flush()
			tokens = append(tokens, Symbol(" ", dpy))

		case isWordRune(r):
			word.WriteRune(r)

		case strings.ContainsRune(openChars, r):
			flush()
			tokens = append(tokens, Open(string(r), dpy))

		case strings.ContainsRune(closeChars, r):
			flush()
			tokens = append(tokens, Close(string(r), dpy))

		case strings.ContainsRune(punctChars, r):
			flush()
			tokens = append(tokens, Punct(string(r), dpy))

		default:
			// symbolChars and anything else the output encoder will
			// have to deal with
			flush()
			tokens = append(tokens, Symbol(string(r), dpy))
		}
	}

	flush()
	return tokens, words
}
