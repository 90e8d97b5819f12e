package stripe

// Envelope is the standard list response returned by every Stripe list endpoint.
type Envelope[T any] struct {
	Object  string `json:"object"   yaml:"object"`
	Data    []T    `json:"data"     yaml:"data"`
	HasMore bool   `json:"has_more" yaml:"has_more"`
	URL     string `json:"url"      yaml:"url"`
}

// Identifiable is satisfied by list items; the id of the last item of a page
// is the cursor for the next one.
type Identifiable interface {
	GetID() string
}

// ListParams are the cursor parameters shared by list endpoints. Embed it in
// endpoint specific list parameters.
type ListParams struct {
	Limit         *int64      `form:"limit"`
	StartingAfter *string     `form:"starting_after"`
	EndingBefore  *string     `form:"ending_before"`
	Created       *RangeQuery `form:"created"`
	Expand        []string    `form:"expand"`
}

// RangeQuery filters a timestamp field, encoded as created[gte]=… and so on.
type RangeQuery struct {
	GT  *int64 `form:"gt"`
	GTE *int64 `form:"gte"`
	LT  *int64 `form:"lt"`
	LTE *int64 `form:"lte"`
}

// Cursor parameter names stripped from the base parameters of a paginator.
const (
	paramStartingAfter = "starting_after"
	paramEndingBefore  = "ending_before"
)
