package index

import (
	"strings"
	"unicode"
)

// sentenceEnds returns the byte offsets just past every detected sentence
// ending in text. The final offset (len(text)) is not included.
func sentenceEnds(text string) []int {
	var ends []int
	for i := 0; i < len(text); i++ {
		if isSentenceEnd(text, i) {
			ends = append(ends, i+1)
		}
	}
	return ends
}

// isSentenceEnd checks if position i in text is a sentence ending.
func isSentenceEnd(text string, i int) bool {
	if i >= len(text) {
		return false
	}

	r := rune(text[i])

	if r != '.' && r != '!' && r != '?' {
		return false
	}

	if r == '.' && i >= 1 {
		prev := rune(text[i-1])

		// Single capital letter before the period ("J. Smith").
		if unicode.IsUpper(prev) {
			if i < 2 || !unicode.IsLetter(rune(text[i-2])) {
				return false
			}
		}

		if isAbbreviation(text, i) {
			return false
		}

		// Dotted abbreviations ("e.g.", "i.e.", "U.S.").
		if i >= 2 && unicode.IsLetter(prev) && text[i-2] == '.' {
			return false
		}

		// Decimal numbers ("p = 0.05").
		if unicode.IsDigit(prev) && i+1 < len(text) && unicode.IsDigit(rune(text[i+1])) {
			return false
		}
	}

	// End of text counts as a sentence end.
	if i+1 >= len(text) {
		return true
	}

	// Otherwise require whitespace followed by a capital letter or an
	// opening quote.
	if i+2 < len(text) && unicode.IsSpace(rune(text[i+1])) {
		next := rune(text[i+2])
		if unicode.IsUpper(next) || next == '"' || next == '\'' || next == '(' {
			return true
		}
	}

	return false
}

// abbreviations that commonly end with a period in research prose. Lowercase
// with trailing period.
var abbreviations = map[string]bool{
	"mr.": true, "mrs.": true, "ms.": true, "dr.": true, "prof.": true,
	"sr.": true, "jr.": true, "vs.": true, "etc.": true, "al.": true,
	"fig.": true, "figs.": true, "eq.": true, "ref.": true, "refs.": true,
	"no.": true, "vol.": true, "pp.": true, "pg.": true, "ca.": true,
	"approx.": true, "resp.": true, "cf.": true, "min.": true, "max.": true,
	"jan.": true, "feb.": true, "mar.": true, "apr.": true, "jun.": true,
	"jul.": true, "aug.": true, "sep.": true, "oct.": true, "nov.": true,
	"dec.": true, "inc.": true, "ltd.": true, "co.": true, "corp.": true,
}

// isAbbreviation checks if the period at position i ends a known
// abbreviation.
func isAbbreviation(text string, i int) bool {
	start := i
	for start > 0 && unicode.IsLetter(rune(text[start-1])) {
		start--
	}
	if start >= i {
		return false
	}

	word := strings.ToLower(text[start : i+1])
	return abbreviations[word]
}
