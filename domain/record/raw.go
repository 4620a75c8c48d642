// Package record holds the raw and canonical post record types and the
// normalizer that derives one from the other.
package record

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "redstream/pkg/errors"
)

// TimeLayout is the canonical created_time format, always UTC.
const TimeLayout = "2006-01-02 15:04:05"

// ThumbnailSelf is reddit's sentinel thumbnail value for text-only posts.
const ThumbnailSelf = "self"

var validate = validator.New()

// Raw is a post payload as received from the transport. Everything except
// ID and Title is optional; absent numerics default to zero.
type Raw struct {
	ID          string  `json:"id" validate:"required"`
	Author      string  `json:"author,omitempty"`
	Title       string  `json:"title" validate:"required"`
	Subreddit   string  `json:"subreddit,omitempty"`
	CreatedTime string  `json:"created_time,omitempty"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	FlairText   string  `json:"flair_text,omitempty"`
	Thumbnail   string  `json:"thumbnail,omitempty"`
	Over18      bool    `json:"over_18,omitempty"`
	Stickied    bool    `json:"stickied,omitempty"`
	Edited      bool    `json:"edited,omitempty"`
	IsSelfPost  bool    `json:"is_self_post,omitempty"`
}

// Validate checks that the required fields are present.
func (r *Raw) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return pkgerrors.NewMissingField(strings.ToLower(verrs[0].Field())).WithRecord(r.ID)
		}
		return pkgerrors.NewInternalError("record validation failed", err)
	}
	return nil
}
