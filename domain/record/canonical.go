package record

// Post type classifications. A post is "text" only when reddit reports the
// self-post sentinel thumbnail; everything else, including an absent
// thumbnail, counts as "media".
const (
	PostTypeMedia = "media"
	PostTypeText  = "text"
)

// Time-of-day classifications; "day" covers UTC hours [6, 18).
const (
	TimeOfDayDay   = "day"
	TimeOfDayNight = "night"
)

// Canonical is the enriched, normalized form of a Raw record.
//
// Derivation is deterministic given the raw record, except for
// PostAgeMinutes (depends on wall-clock time) and AuthorActivityCount
// (depends on the activity table at call time).
type Canonical struct {
	Raw

	TitleTokens         []string `json:"title_tokens"`
	Sentiment           float64  `json:"sentiment"`
	PostAgeMinutes      float64  `json:"post_age_minutes"`
	PopularityScore     float64  `json:"popularity_score"`
	PostType            string   `json:"post_type"`
	TimeOfDay           string   `json:"time_of_day"`
	AuthorActivityCount int      `json:"author_activity_count"`
}
