// Package features builds the sparse feature identifiers of a token in its
// sentence context.
package features

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"pner/pkg/io"
)

// Extractor returns the textual features of the token at index.
type Extractor interface {
	Features(sentence *io.Sentence, index int) []string
}

// historyPrefixes name the predicted label of the 1st, 2nd and 3rd previous token.
var historyPrefixes = []string{"PreType=", "2PreType=", "3PreType="}

// WithHistory appends the labels predicted for up to three tokens before index.
// No feature is added for positions before the sentence start.
func WithHistory(features []string, predicted []string, index int) []string {
	for k, prefix := range historyPrefixes {
		previous := index - k - 1
		if previous < 0 {
			break
		}
		features = append(features, prefix+predicted[previous])
	}
	return features
}

// TextualExtractor derives features from surface and normalized forms of the
// token and its neighbours.
type TextualExtractor struct {
	// AffixLength bounds the prefix and suffix features.
	AffixLength int
}

var _ Extractor = &TextualExtractor{}

func NewTextualExtractor() *TextualExtractor {
	return &TextualExtractor{AffixLength: 3}
}

func (e *TextualExtractor) Features(sentence *io.Sentence, index int) []string {
	token := sentence.Tokens[index]
	word := token.Word
	lower := strings.ToLower(token.Normalized)

	features := []string{
		"bias",
		"Word=" + word,
		"Lower=" + lower,
		"Shape=" + shape(word),
	}
	for n := 1; n <= e.AffixLength; n++ {
		if prefix, ok := prefixOf(lower, n); ok {
			features = append(features, "Prefix"+string(rune('0'+n))+"="+prefix)
		}
		if suffix, ok := suffixOf(lower, n); ok {
			features = append(features, "Suffix"+string(rune('0'+n))+"="+suffix)
		}
	}
	if first, _ := utf8.DecodeRuneInString(word); unicode.IsUpper(first) {
		features = append(features, "FirstUpper")
		if index == 0 {
			features = append(features, "FirstUpper&SentenceStart")
		}
	}
	if apostrophe := strings.IndexAny(word, "'’"); apostrophe > 0 {
		features = append(features, "Stem="+strings.ToLower(word[:apostrophe]))
	}
	if strings.IndexFunc(word, unicode.IsDigit) >= 0 {
		features = append(features, "HasDigit")
	}

	features = append(features, contextFeatures(sentence, index, -2, "Prev2")...)
	features = append(features, contextFeatures(sentence, index, -1, "Prev")...)
	features = append(features, contextFeatures(sentence, index, 1, "Next")...)
	features = append(features, contextFeatures(sentence, index, 2, "Next2")...)
	return features
}

func contextFeatures(sentence *io.Sentence, index, offset int, name string) []string {
	i := index + offset
	if i < 0 {
		return []string{name + "=<s>"}
	}
	if i >= len(sentence.Tokens) {
		return []string{name + "=</s>"}
	}
	token := sentence.Tokens[i]
	lower := strings.ToLower(token.Normalized)
	result := []string{name + "Lower=" + lower}
	if suffix, ok := suffixOf(lower, 3); ok {
		result = append(result, name+"Suffix3="+suffix)
	}
	result = append(result, name+"Shape="+shape(token.Word))
	return result
}

// shape maps letters to x/X and digits to d, collapsing repeats.
func shape(word string) string {
	var b strings.Builder
	var last rune
	for _, r := range word {
		var c rune
		switch {
		case unicode.IsUpper(r):
			c = 'X'
		case unicode.IsLetter(r):
			c = 'x'
		case unicode.IsDigit(r):
			c = 'd'
		default:
			c = r
		}
		if c != last {
			b.WriteRune(c)
			last = c
		}
	}
	return b.String()
}

func prefixOf(s string, n int) (string, bool) {
	runes := []rune(s)
	if len(runes) < n {
		return "", false
	}
	return string(runes[:n]), true
}

func suffixOf(s string, n int) (string, bool) {
	runes := []rune(s)
	if len(runes) < n {
		return "", false
	}
	return string(runes[len(runes)-n:]), true
}
