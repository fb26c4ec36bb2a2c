package dietprefs

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// SearchRequest is the body of POST /vendors/search.
type SearchRequest struct {
	User1Preferences []string `json:"user1_preferences"`
	User2Preferences []string `json:"user2_preferences"`
	User1MaxPrice    *float64 `json:"user1_max_price,omitempty"`
	User2MaxPrice    *float64 `json:"user2_max_price,omitempty"`
	Lat              *float64 `json:"lat,omitempty"`
	Lng              *float64 `json:"lng,omitempty"`
	SearchQuery      *string  `json:"search_query,omitempty"`
	SortBy           string   `json:"sort_by"`
	SortDirection    string   `json:"sort_direction"`
	Page             int      `json:"page"`
	PageSize         int      `json:"page_size"`
}

// ItemsQuery holds the optional filters of GET /vendors/{id}/items.
type ItemsQuery struct {
	User1Preferences []string
	User2Preferences []string
	User1MaxPrice    *float64
	User2MaxPrice    *float64
}

// Values renders the filters as query parameters. Tag lists are
// comma-joined and nil prices are omitted.
func (q ItemsQuery) Values() url.Values {
	v := url.Values{}
	v.Set("user1_preferences", strings.Join(q.User1Preferences, ","))
	v.Set("user2_preferences", strings.Join(q.User2Preferences, ","))
	if q.User1MaxPrice != nil {
		v.Set("user1_max_price", strconv.FormatFloat(*q.User1MaxPrice, 'f', -1, 64))
	}
	if q.User2MaxPrice != nil {
		v.Set("user2_max_price", strconv.FormatFloat(*q.User2MaxPrice, 'f', -1, 64))
	}
	return v
}

// VoteResponse is the acknowledgement of POST /items/{id}/vote. The client
// only relies on the request succeeding; the counts are informational.
type VoteResponse struct {
	ItemID           int     `json:"item_id"`
	Upvotes          int     `json:"upvotes"`
	TotalVotes       int     `json:"total_votes"`
	RatingPercentage float64 `json:"rating_percentage"`
}

// errorBody is the FastAPI error envelope. Detail is a string for most
// errors and a list of field errors for 422s.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

func (b errorBody) message() string {
	if len(b.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(b.Detail, &s); err == nil {
		return s
	}
	var fields []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(b.Detail, &fields); err == nil {
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			msgs = append(msgs, f.Msg)
		}
		return strings.Join(msgs, "; ")
	}
	return string(b.Detail)
}
