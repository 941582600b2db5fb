package analyzer

import (
	"strings"
	"unicode"
)

// Tokenizer turns product text into lowercase terms with stopwords removed.
// Plural suffixes are folded so "batteries" and "battery" share a term.
type Tokenizer struct {
	stopwords map[string]struct{}
	fold      bool
}

func NewTokenizer(foldPlurals bool) *Tokenizer {
	return &Tokenizer{
		stopwords: defaultStopwords(),
		fold:      foldPlurals,
	}
}

// Tokenize splits text into terms.
func (t *Tokenizer) Tokenize(text string) []string {
	words := splitWords(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		word = strings.ToLower(word)
		if len(word) < 2 {
			continue
		}
		if _, isStop := t.stopwords[word]; isStop {
			continue
		}
		if t.fold {
			word = singular(word)
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// Trigrams returns the padded character trigrams of a term, e.g. "cap" ->
// "^ca", "cap", "ap$". Short misspellings still share most trigrams.
func Trigrams(term string) []string {
	runes := []rune("^" + term + "$")
	if len(runes) < 3 {
		return nil
	}
	grams := make([]string, 0, len(runes)-2)
	for i := 0; i+3 <= len(runes); i++ {
		grams = append(grams, string(runes[i:i+3]))
	}
	return grams
}

func singular(word string) string {
	switch {
	case len(word) > 4 && strings.HasSuffix(word, "ies"):
		return word[:len(word)-3] + "y"
	case len(word) > 4 && (strings.HasSuffix(word, "ches") || strings.HasSuffix(word, "shes") || strings.HasSuffix(word, "xes")):
		return word[:len(word)-2]
	case len(word) > 3 && strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") && !strings.HasSuffix(word, "us"):
		return word[:len(word)-1]
	}
	return word
}

// splitWords splits text on anything that is not a letter or digit.
func splitWords(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
		} else {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}

func defaultStopwords() map[string]struct{} {
	stops := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for",
		"from", "in", "is", "it", "its", "of", "on", "or", "the",
		"to", "with", "this", "that", "new", "set", "pack", "pcs",
	}
	m := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		m[s] = struct{}{}
	}
	return m
}
