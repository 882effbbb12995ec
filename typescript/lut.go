package typescript

import (
	_ "embed"
	"os"
	"strings"
)

//go:embed roman_numerals.txt
var romanNumeralsData string

// RomanNumerals is an ordered list of Roman numerals used for part
// numbering.
type RomanNumerals struct {
	numerals []string
}

// NewRomanNumerals builds the table from a whitespace-separated list,
// first entry for 1.
func NewRomanNumerals(data string) *RomanNumerals {
	return &RomanNumerals{numerals: strings.Fields(data)}
}

// DefaultRomanNumerals returns the embedded table, covering 1 to 100.
func DefaultRomanNumerals() *RomanNumerals {
	return NewRomanNumerals(romanNumeralsData)
}

// LoadRomanNumerals reads a replacement table from a file.
func LoadRomanNumerals(path string) (*RomanNumerals, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewRomanNumerals(string(data)), nil
}

// Numeral returns the numeral for i. The range goes from 1 to the
// number of entries in the table; outside it ok is false and the
// caller falls back to decimal numbering.
func (r *RomanNumerals) Numeral(i int) (string, bool) {
	if i >= 1 && i <= len(r.numerals) {
		return r.numerals[i-1], true
	}
	return "", false
}
