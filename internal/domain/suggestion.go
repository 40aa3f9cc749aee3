package domain

// Intent is the inferred purpose of a classification query.
type Intent string

const (
	// IntentBrowse means the user is searching existing listings.
	IntentBrowse Intent = "browse"
	// IntentPublish means the user wants to post a new listing.
	IntentPublish Intent = "publish"
)

// Match type labels identifying which strategy produced a suggestion.
const (
	MatchTypeSubstring = "substring"
	MatchTypeModel     = "model"
)

// Suggestion is one ranked category suggestion returned to the caller.
type Suggestion struct {
	CategoryID   int64   `json:"category_id"`
	CategoryName string  `json:"category_name"`
	URL          string  `json:"url"`
	Score        float64 `json:"score"`
	MatchType    string  `json:"match_type"`
}

// Score is one (category, probability) pair produced by the prediction
// source, probabilities summing to 1 across the language's model.
type Score struct {
	CategoryID  int64
	Probability float64
}
