package ai

import (
	"context"
	"strings"
	"unicode"
)

// LexicalOracle is an offline similarity provider based on character bigram overlap
// (Sørensen–Dice). It is symmetric and deterministic and needs no network access.
type LexicalOracle struct{}

func NewLexicalOracle() *LexicalOracle { return &LexicalOracle{} }

func (*LexicalOracle) Name() string { return "lexical" }

func (*LexicalOracle) Similarity(_ context.Context, a, b string) (float64, error) {
	return DiceSimilarity(a, b), nil
}

// DiceSimilarity returns 100 * 2|A∩B| / (|A|+|B|) over multisets of character bigrams.
func DiceSimilarity(a, b string) float64 {
	a, b = normalizeText(a), normalizeText(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	left := bigrams(a)
	right := bigrams(b)
	if len(left) == 0 || len(right) == 0 {
		return 0
	}

	counts := make(map[string]int, len(left))
	for _, g := range left {
		counts[g]++
	}

	shared := 0
	for _, g := range right {
		if counts[g] > 0 {
			counts[g]--
			shared++
		}
	}

	return 200 * float64(shared) / float64(len(left)+len(right))
}

func normalizeText(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func bigrams(s string) []string {
	runes := []rune(s)
	if len(runes) < 2 {
		return nil
	}
	out := make([]string, 0, len(runes)-1)
	for i := 0; i < len(runes)-1; i++ {
		out = append(out, string(runes[i:i+2]))
	}
	return out
}
