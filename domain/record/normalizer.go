package record

import (
	"regexp"
	"strings"
	"time"

	pkgerrors "redstream/pkg/errors"
)

// punctuation matches anything that is not a word character or whitespace.
// Unicode classes rather than ASCII \w so accented titles keep their letters.
var punctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// Normalizer converts raw post records into canonical records.
//
// Normalization mutates the injected activity table; everything else is a
// pure function of the raw record and the supplied clock reading.
type Normalizer struct {
	activity *ActivityTable
	scorer   SentimentScorer
}

// NewNormalizer creates a Normalizer bound to the given activity table and
// sentiment scorer.
func NewNormalizer(activity *ActivityTable, scorer SentimentScorer) *Normalizer {
	return &Normalizer{activity: activity, scorer: scorer}
}

// Normalize derives a canonical record from a raw one.
//
// Returns a MissingField error when id or title is absent and a
// MalformedTimestamp error when created_time is absent or unparseable; both
// are record-scoped, the caller is expected to skip the record and continue.
func (n *Normalizer) Normalize(raw Raw, now time.Time) (*Canonical, error) {
	if err := raw.Validate(); err != nil {
		return nil, err
	}

	created, err := time.Parse(TimeLayout, raw.CreatedTime)
	if err != nil {
		return nil, pkgerrors.NewMalformedTimestamp(raw.CreatedTime, err).WithRecord(raw.ID)
	}
	// time.Parse on a zone-less layout already yields UTC
	raw.CreatedTime = created.Format(TimeLayout)

	raw.Title = strings.ToLower(raw.Title)
	if raw.FlairText != "" {
		raw.FlairText = strings.ToLower(raw.FlairText)
	}
	raw.Title = punctuation.ReplaceAllString(raw.Title, "")

	rec := &Canonical{Raw: raw}
	rec.TitleTokens = tokenize(raw.Title)
	rec.Sentiment = n.scorer.Polarity(raw.Title)
	// Negative when created_time is in the future; not rejected
	rec.PostAgeMinutes = now.UTC().Sub(created).Minutes()
	rec.PopularityScore = float64(raw.Score)*raw.UpvoteRatio + float64(raw.NumComments)*0.5

	if raw.Thumbnail == ThumbnailSelf {
		rec.PostType = PostTypeText
	} else {
		rec.PostType = PostTypeMedia
	}

	if h := created.Hour(); h >= 6 && h < 18 {
		rec.TimeOfDay = TimeOfDayDay
	} else {
		rec.TimeOfDay = TimeOfDayNight
	}

	rec.AuthorActivityCount = n.activity.Bump(raw.Author)

	return rec, nil
}

// tokenize splits a cleaned title on whitespace and drops stop-words,
// preserving order and duplicates.
func tokenize(title string) []string {
	fields := strings.Fields(title)
	tokens := make([]string, 0, len(fields))
	for _, word := range fields {
		if !IsStopWord(word) {
			tokens = append(tokens, word)
		}
	}
	return tokens
}
