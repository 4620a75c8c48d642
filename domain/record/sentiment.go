package record

import (
	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"
)

// SentimentScorer produces a polarity score in [-1, 1] for a piece of text,
// negative for negative sentiment and positive for positive sentiment.
type SentimentScorer interface {
	Polarity(text string) float64
}

// VaderScorer scores text with the VADER sentiment lexicon. It is a
// rule-based scorer; no model training or external calls are involved.
type VaderScorer struct{}

// Polarity returns the compound VADER polarity of the given text.
func (VaderScorer) Polarity(text string) float64 {
	if text == "" {
		return 0
	}
	parsed := sentitext.Parse(text, lexicon.DefaultLexicon)
	return sentitext.PolarityScore(parsed).Compound
}
