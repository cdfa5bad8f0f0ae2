package sentiment

import (
	"math"
	"strings"
	"unicode"
)

// negation dampens and flips a valence rather than mirroring it.
const negationFactor = -0.74

// alpha calibrates the normalization curve so that a handful of strong
// words approaches +-1 without ever reaching it.
const alpha = 15

// Scorer assigns a compound sentiment score in (-1, 1) to a headline.
// Zero means no recognized sentiment-bearing words.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// Score tokenizes text and sums lexicon valences, flipping on a
// negation and scaling on a booster within the three preceding tokens,
// then squashes the sum into (-1, 1).
func (s *Scorer) Score(text string) float64 {
	tokens := tokenize(text)

	sum := 0.0
	for i, tok := range tokens {
		v, ok := valence[tok]
		if !ok {
			continue
		}
		for j := i - 1; j >= 0 && j >= i-3; j-- {
			if b, ok := boosters[tokens[j]]; ok {
				if v > 0 {
					v += b
				} else {
					v -= b
				}
			}
			if negations[tokens[j]] {
				v *= negationFactor
				break
			}
		}
		sum += v
	}

	if sum == 0 {
		return 0
	}
	return sum / math.Sqrt(sum*sum+alpha)
}

func tokenize(text string) []string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return unicode.ToLower(r)
		case r == '\'':
			// drop apostrophes so "isn't" matches "isnt"
			return -1
		default:
			return ' '
		}
	}, text)
	return strings.Fields(clean)
}
