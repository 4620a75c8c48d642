package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "redstream/pkg/errors"
)

func testNormalizer() *Normalizer {
	return NewNormalizer(NewActivityTable(), VaderScorer{})
}

func validRaw() Raw {
	return Raw{
		ID:          "abc123",
		Author:      "alice",
		Title:       "The Quick Brown Fox Jumps Over The Lazy Dog",
		Subreddit:   "golang",
		CreatedTime: "2024-05-01 10:30:00",
		Score:       10,
		NumComments: 4,
		UpvoteRatio: 0.8,
	}
}

func TestNormalize_DerivedFields(t *testing.T) {
	n := testNormalizer()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	rec, err := n.Normalize(validRaw(), now)
	require.NoError(t, err)

	assert.Equal(t, "2024-05-01 10:30:00", rec.CreatedTime)
	assert.Equal(t, "the quick brown fox jumps over the lazy dog", rec.Title)
	assert.Equal(t, []string{"quick", "brown", "fox", "jumps", "lazy", "dog"}, rec.TitleTokens)
	assert.InDelta(t, 90.0, rec.PostAgeMinutes, 1e-9)
	// 10*0.8 + 4*0.5
	assert.InDelta(t, 10.0, rec.PopularityScore, 1e-9)
	assert.Equal(t, PostTypeMedia, rec.PostType)
	assert.Equal(t, TimeOfDayDay, rec.TimeOfDay)
	assert.Equal(t, 1, rec.AuthorActivityCount)
}

func TestNormalize_StripsPunctuationAndLowercases(t *testing.T) {
	n := testNormalizer()
	raw := validRaw()
	raw.Title = "Don't Panic: A Beginner's Guide!!!"
	raw.FlairText = "DISCUSSION"

	rec, err := n.Normalize(raw, time.Now().UTC())
	require.NoError(t, err)

	assert.Equal(t, "dont panic a beginners guide", rec.Title)
	// Contractions lose their apostrophe before the stop-word filter runs,
	// so "dont" survives even though "don't" is on the list.
	assert.Equal(t, []string{"dont", "panic", "beginners", "guide"}, rec.TitleTokens)
	assert.Equal(t, "discussion", rec.FlairText)
}

func TestNormalize_TokenizationIsIdempotent(t *testing.T) {
	n := testNormalizer()
	now := time.Now().UTC()

	first, err := n.Normalize(validRaw(), now)
	require.NoError(t, err)
	second, err := n.Normalize(validRaw(), now)
	require.NoError(t, err)

	assert.Equal(t, first.TitleTokens, second.TitleTokens)
	assert.Equal(t, first.Title, second.Title)
}

func TestNormalize_SentimentSign(t *testing.T) {
	n := testNormalizer()
	now := time.Now().UTC()

	positive := validRaw()
	positive.Title = "This is absolutely wonderful, amazing and great"
	rec, err := n.Normalize(positive, now)
	require.NoError(t, err)
	assert.Greater(t, rec.Sentiment, 0.0)
	assert.LessOrEqual(t, rec.Sentiment, 1.0)

	negative := validRaw()
	negative.Title = "This is horrible, terrible and awful"
	rec, err = n.Normalize(negative, now)
	require.NoError(t, err)
	assert.Less(t, rec.Sentiment, 0.0)
	assert.GreaterOrEqual(t, rec.Sentiment, -1.0)
}

func TestNormalize_PostType(t *testing.T) {
	cases := []struct {
		thumbnail string
		want      string
	}{
		{"self", PostTypeText},
		{"", PostTypeMedia},
		{"http://x/img.png", PostTypeMedia},
	}

	n := testNormalizer()
	for _, tc := range cases {
		raw := validRaw()
		raw.Thumbnail = tc.thumbnail
		rec, err := n.Normalize(raw, time.Now().UTC())
		require.NoError(t, err)
		assert.Equal(t, tc.want, rec.PostType, "thumbnail=%q", tc.thumbnail)
	}
}

func TestNormalize_TimeOfDayBoundaries(t *testing.T) {
	cases := []struct {
		createdTime string
		want        string
	}{
		{"2024-05-01 06:00:00", TimeOfDayDay},
		{"2024-05-01 05:59:00", TimeOfDayNight},
		{"2024-05-01 17:59:00", TimeOfDayDay},
		{"2024-05-01 18:00:00", TimeOfDayNight},
	}

	n := testNormalizer()
	for _, tc := range cases {
		raw := validRaw()
		raw.CreatedTime = tc.createdTime
		rec, err := n.Normalize(raw, time.Now().UTC())
		require.NoError(t, err)
		assert.Equal(t, tc.want, rec.TimeOfDay, "created_time=%q", tc.createdTime)
	}
}

func TestNormalize_AuthorActivityIncrements(t *testing.T) {
	n := testNormalizer()
	now := time.Now().UTC()

	for want := 1; want <= 3; want++ {
		rec, err := n.Normalize(validRaw(), now)
		require.NoError(t, err)
		assert.Equal(t, want, rec.AuthorActivityCount)
	}

	other := validRaw()
	other.Author = "bob"
	rec, err := n.Normalize(other, now)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.AuthorActivityCount)
}

func TestNormalize_FuturePostAgeIsNegative(t *testing.T) {
	n := testNormalizer()
	raw := validRaw()
	raw.CreatedTime = "2024-05-01 13:00:00"
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	rec, err := n.Normalize(raw, now)
	require.NoError(t, err)
	assert.InDelta(t, -60.0, rec.PostAgeMinutes, 1e-9)
}

func TestNormalize_MalformedTimestamp(t *testing.T) {
	n := testNormalizer()

	raw := validRaw()
	raw.CreatedTime = "01/05/2024 10:30"
	_, err := n.Normalize(raw, time.Now().UTC())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsMalformedTimestamp(err))

	raw = validRaw()
	raw.CreatedTime = ""
	_, err = n.Normalize(raw, time.Now().UTC())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsMalformedTimestamp(err))
}

func TestNormalize_MissingRequiredFields(t *testing.T) {
	n := testNormalizer()

	raw := validRaw()
	raw.Title = ""
	_, err := n.Normalize(raw, time.Now().UTC())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsMissingField(err))

	raw = validRaw()
	raw.ID = ""
	_, err = n.Normalize(raw, time.Now().UTC())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsMissingField(err))
}

func TestNormalize_MissingFieldDoesNotBumpActivity(t *testing.T) {
	activity := NewActivityTable()
	n := NewNormalizer(activity, VaderScorer{})

	raw := validRaw()
	raw.Title = ""
	_, err := n.Normalize(raw, time.Now().UTC())
	require.Error(t, err)
	assert.Equal(t, 0, activity.Count(raw.Author))
}
