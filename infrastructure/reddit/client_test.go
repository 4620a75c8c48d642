package reddit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const listingFixture = `{
	"kind": "Listing",
	"data": {
		"after": "t3_def456",
		"children": [
			{
				"kind": "t3",
				"data": {
					"id": "abc123",
					"name": "t3_abc123",
					"author": "alice",
					"title": "Go generics explained",
					"subreddit": "golang",
					"created_utc": 1714557000.0,
					"score": 42,
					"num_comments": 7,
					"upvote_ratio": 0.93,
					"link_flair_text": "Tutorial",
					"thumbnail": "self",
					"url": "https://reddit.com/r/golang/abc123",
					"over_18": false,
					"stickied": false,
					"edited": false,
					"is_self": true
				}
			},
			{
				"kind": "t3",
				"data": {
					"id": "def456",
					"name": "t3_def456",
					"author": "bob",
					"title": "My first CLI tool",
					"subreddit": "golang",
					"created_utc": 1714560600.0,
					"score": 5,
					"num_comments": 1,
					"upvote_ratio": 0.8,
					"thumbnail": "https://thumbs.example/def456.png",
					"url": "https://example.com/blog",
					"over_18": false,
					"stickied": true,
					"edited": 1714561000.0,
					"is_self": false
				}
			}
		]
	}
}`

func newTestClient(t *testing.T) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(listingFixture)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)

	client := NewClient("test-agent", zap.NewNop(),
		WithBaseURL(srv.URL),
		WithRateLimit(rate.Inf),
	)
	return client, srv
}

func TestClient_HotParsesListing(t *testing.T) {
	client, _ := newTestClient(t)

	posts, err := client.Hot(context.Background(), "golang", 100)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	first := posts[0]
	assert.Equal(t, "abc123", first.ID)
	assert.Equal(t, "t3_abc123", first.FullName)
	assert.Equal(t, "alice", first.Author)
	assert.Equal(t, 42, first.Score)
	assert.Equal(t, 7, first.NumComments)
	assert.InDelta(t, 0.93, first.UpvoteRatio, 1e-9)
	assert.Equal(t, "Tutorial", first.FlairText)
	assert.Equal(t, "self", first.Thumbnail)
	assert.False(t, first.Edited)
	assert.True(t, first.IsSelf)

	second := posts[1]
	// An edit timestamp collapses to true
	assert.True(t, second.Edited)
	assert.True(t, second.Stickied)
	assert.Equal(t, "", second.FlairText)
}

func TestClient_UnseenFiltersRepeats(t *testing.T) {
	client, _ := newTestClient(t)

	posts, err := client.New(context.Background(), "golang", 100)
	require.NoError(t, err)

	fresh := client.Unseen(posts)
	assert.Len(t, fresh, 2)

	again, err := client.New(context.Background(), "golang", 100)
	require.NoError(t, err)
	assert.Empty(t, client.Unseen(again))
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("test-agent", zap.NewNop(),
		WithBaseURL(srv.URL),
		WithRateLimit(rate.Inf),
	)

	_, err := client.Hot(context.Background(), "golang", 100)
	assert.Error(t, err)
}

func TestPost_ToRaw(t *testing.T) {
	post := Post{
		ID:          "abc123",
		Author:      "alice",
		Title:       "Go generics explained",
		Subreddit:   "golang",
		CreatedUTC:  1714557000, // 2024-05-01 09:50:00 UTC
		Score:       42,
		NumComments: 7,
		UpvoteRatio: 0.93,
		Thumbnail:   "self",
		IsSelf:      true,
	}

	raw := post.ToRaw()
	assert.Equal(t, "abc123", raw.ID)
	assert.Equal(t, "2024-05-01 09:50:00", raw.CreatedTime)
	assert.Equal(t, 42, raw.Score)
	assert.Equal(t, "self", raw.Thumbnail)
	assert.True(t, raw.IsSelfPost)
}

func TestPost_ToRaw_MissingCreatedTime(t *testing.T) {
	raw := Post{ID: "abc123", Title: "x"}.ToRaw()
	assert.Equal(t, "", raw.CreatedTime)
}
