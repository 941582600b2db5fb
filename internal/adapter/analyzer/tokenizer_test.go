package analyzer

import (
	"reflect"
	"testing"
)

func TestTokenizer_FoldsPlurals(t *testing.T) {
	tok := NewTokenizer(true)

	tokens := tok.Tokenize("AA Batteries and Boxes of Matches")
	expected := []string{"aa", "battery", "box", "match"}
	if !reflect.DeepEqual(tokens, expected) {
		t.Errorf("expected %v, got %v", expected, tokens)
	}
}

func TestTokenizer_WithoutFolding(t *testing.T) {
	tok := NewTokenizer(false)

	tokens := tok.Tokenize("Running Shoes")
	expected := []string{"running", "shoes"}
	if !reflect.DeepEqual(tokens, expected) {
		t.Errorf("expected %v, got %v", expected, tokens)
	}
}

func TestTokenizer_StopwordRemoval(t *testing.T) {
	tok := NewTokenizer(false)

	tokens := tok.Tokenize("the cup for the kitchen")
	for _, token := range tokens {
		if token == "the" || token == "for" {
			t.Errorf("stopword %q should be removed, got %v", token, tokens)
		}
	}
}

func TestTokenizer_EmptyInput(t *testing.T) {
	tok := NewTokenizer(true)

	if tokens := tok.Tokenize(""); len(tokens) != 0 {
		t.Errorf("expected 0 tokens for empty input, got %d", len(tokens))
	}
}

func TestSingular(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"cables", "cable"},
		{"batteries", "battery"},
		{"glass", "glass"},
		{"cactus", "cactus"},
		{"dishes", "dish"},
		{"gas", "gas"},
	}

	for _, tt := range tests {
		if got := singular(tt.input); got != tt.expected {
			t.Errorf("singular(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestTrigrams(t *testing.T) {
	got := Trigrams("cap")
	expected := []string{"^ca", "cap", "ap$"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Trigrams(cap) = %v, want %v", got, expected)
	}
	if got := Trigrams("a"); len(got) != 1 {
		t.Errorf("expected single trigram for one-rune term, got %v", got)
	}
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"hello world", 2},
		{"USB-C cable", 3},
		{"12oz mug", 2},
		{"", 0},
	}

	for _, tt := range tests {
		words := splitWords(tt.input)
		if len(words) != tt.expected {
			t.Errorf("splitWords(%q) = %d words, want %d: %v", tt.input, len(words), tt.expected, words)
		}
	}
}
