// Package reddit fetches subreddit listings from reddit's public JSON
// endpoints.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"redstream/domain/record"
)

const (
	defaultBaseURL = "https://www.reddit.com"
	maxBodyBytes   = 10 << 20

	// Reddit rejects clients that hammer the listing endpoints; stay at
	// one request per second like the rest of the pipeline.
	defaultRequestsPerSecond = 1

	// How long a post fullname stays in the seen cache.
	seenTTL = 24 * time.Hour
)

// Post is one listing entry.
type Post struct {
	ID          string
	FullName    string
	Author      string
	Title       string
	Subreddit   string
	CreatedUTC  float64
	Score       int
	NumComments int
	UpvoteRatio float64
	FlairText   string
	Thumbnail   string
	URL         string
	Over18      bool
	Stickied    bool
	Edited      bool
	IsSelf      bool
}

// ToRaw maps the post to the transport payload shape. The epoch creation
// time becomes the canonical zone-less UTC format.
func (p Post) ToRaw() record.Raw {
	created := ""
	if p.CreatedUTC > 0 {
		created = time.Unix(int64(p.CreatedUTC), 0).UTC().Format(record.TimeLayout)
	}
	return record.Raw{
		ID:          p.ID,
		Author:      p.Author,
		Title:       p.Title,
		Subreddit:   p.Subreddit,
		CreatedTime: created,
		Score:       p.Score,
		NumComments: p.NumComments,
		UpvoteRatio: p.UpvoteRatio,
		FlairText:   p.FlairText,
		Thumbnail:   p.Thumbnail,
		Over18:      p.Over18,
		Stickied:    p.Stickied,
		Edited:      p.Edited,
		IsSelfPost:  p.IsSelf,
	}
}

// Client is a rate-limited reddit listing client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	seen       *cache.Cache
	logger     *zap.Logger
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the reddit endpoint, for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithRateLimit overrides the default one-request-per-second throttle.
func WithRateLimit(limit rate.Limit) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(limit, 1) }
}

// NewClient creates a client identifying itself with the given user agent.
func NewClient(userAgent string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(defaultRequestsPerSecond, 1),
		seen:       cache.New(seenTTL, 10*time.Minute),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Hot fetches up to limit posts from the subreddit's hot listing.
func (c *Client) Hot(ctx context.Context, subreddit string, limit int) ([]Post, error) {
	return c.listing(ctx, subreddit, "hot", limit)
}

// New fetches up to limit posts from the subreddit's new listing.
func (c *Client) New(ctx context.Context, subreddit string, limit int) ([]Post, error) {
	return c.listing(ctx, subreddit, "new", limit)
}

// Unseen filters out posts already returned by an earlier call within the
// cache TTL and marks the remainder as seen.
func (c *Client) Unseen(posts []Post) []Post {
	fresh := make([]Post, 0, len(posts))
	for _, p := range posts {
		key := p.FullName
		if key == "" {
			key = p.ID
		}
		if _, found := c.seen.Get(key); found {
			continue
		}
		c.seen.Set(key, struct{}{}, cache.DefaultExpiration)
		fresh = append(fresh, p)
	}
	return fresh
}

func (c *Client) listing(ctx context.Context, subreddit, sort string, limit int) ([]Post, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/r/%s/%s.json?limit=%d&raw_json=1", c.baseURL, subreddit, sort, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	var envelope listingEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	posts := make([]Post, 0, len(envelope.Data.Children))
	for _, child := range envelope.Data.Children {
		posts = append(posts, child.Data.toPost())
	}

	c.logger.Debug("fetched listing",
		zap.String("subreddit", subreddit),
		zap.String("sort", sort),
		zap.Int("posts", len(posts)),
	)
	return posts, nil
}

type listingEnvelope struct {
	Data struct {
		Children []struct {
			Data postData `json:"data"`
		} `json:"children"`
		After string `json:"after"`
	} `json:"data"`
}

type postData struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Author        string          `json:"author"`
	Title         string          `json:"title"`
	Subreddit     string          `json:"subreddit"`
	CreatedUTC    float64         `json:"created_utc"`
	Score         int             `json:"score"`
	NumComments   int             `json:"num_comments"`
	UpvoteRatio   float64         `json:"upvote_ratio"`
	LinkFlairText string          `json:"link_flair_text"`
	Thumbnail     string          `json:"thumbnail"`
	URL           string          `json:"url"`
	Over18        bool            `json:"over_18"`
	Stickied      bool            `json:"stickied"`
	Edited        json.RawMessage `json:"edited"`
	IsSelf        bool            `json:"is_self"`
}

func (d postData) toPost() Post {
	return Post{
		ID:          d.ID,
		FullName:    d.Name,
		Author:      d.Author,
		Title:       d.Title,
		Subreddit:   d.Subreddit,
		CreatedUTC:  d.CreatedUTC,
		Score:       d.Score,
		NumComments: d.NumComments,
		UpvoteRatio: d.UpvoteRatio,
		FlairText:   d.LinkFlairText,
		Thumbnail:   d.Thumbnail,
		URL:         d.URL,
		Over18:      d.Over18,
		Stickied:    d.Stickied,
		Edited:      editedToBool(d.Edited),
		IsSelf:      d.IsSelf,
	}
}

// editedToBool collapses reddit's edited field, which is either false or an
// edit timestamp, into a plain bool.
func editedToBool(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "false"
}
