package text

import (
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"
)

// Splitter detects sentence boundaries so the tokenizer knows when a
// period really ends a sentence and deserves the typewriter double
// space. A nil Splitter treats every full-stop character as a boundary.
type Splitter struct {
	*sentences.DefaultSentenceTokenizer
}

// NewSplitter loads the pre-trained English Punkt model. Manuscript
// format is Latin-9 and overwhelmingly English; there is no per-book
// language selection here.
func NewSplitter(log *zap.Logger) *Splitter {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		log.Warn("Unable to load sentence tokenizer model, turning off boundary detection", zap.Error(err))
		return nil
	}
	return &Splitter{tokenizer}
}

// EndsSentence reports whether in ends at a sentence boundary. The
// probe word forces the tokenizer to decide whether the trailing
// period terminates a sentence or an abbreviation.
func (s *Splitter) EndsSentence(in string) bool {
	if s == nil {
		// boundary detection is off
		return true
	}
	return len(s.Tokenize(in+" Next.")) > 1
}

// Split returns slice of sentences.
func (s *Splitter) Split(in string) []string {
	var result []string
	if s == nil {
		return append(result, in)
	}

	for _, sentence := range s.Tokenize(in) {
		result = append(result, sentence.Text)
	}

	// Sentences tokenizer has a funny way of working - sentence trailing
	// spaces belong to the next sentence. Move them back where they came
	// from.

	for i := range len(result) - 1 {
		for idx, sym := range result[i+1] {
			if !unicode.IsSpace(sym) {
				result[i] = result[i] + result[i+1][0:idx]
				result[i+1] = result[i+1][idx:]
				break
			}
		}
	}
	return result
}
