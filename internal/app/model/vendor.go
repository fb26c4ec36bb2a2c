package model

import "fmt"

// Vendor is a search result as returned by the backend. Values are replaced
// wholesale on every search and never mutated.
type Vendor struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	Lat             float64         `json:"lat"`
	Lng             float64         `json:"lng"`
	Address         *string         `json:"address"`
	Zipcode         *int            `json:"zipcode"`
	Phone           *string         `json:"phone"`
	Website         *string         `json:"website"`
	Hours           *string         `json:"hours"`
	SEOTags         *string         `json:"seo_tags"`
	Region          *int            `json:"region"`
	CustomByNature  bool            `json:"custom_by_nature"`
	DistanceMiles   *float64        `json:"distance_miles"`
	Rating          VendorRating    `json:"rating"`
	ItemCounts      ItemCounts      `json:"item_counts"`
	DeliveryOptions DeliveryOptions `json:"delivery_options"`
}

type VendorRating struct {
	Upvotes    int     `json:"upvotes"`
	TotalVotes int     `json:"total_votes"`
	Percentage float64 `json:"percentage"`
}

type ItemCounts struct {
	User1Matches  int `json:"user1_matches"`
	User2Matches  int `json:"user2_matches"`
	TotalRelevant int `json:"total_relevant"`
}

type DeliveryOptions struct {
	Delivery  bool `json:"delivery"`
	Takeout   bool `json:"takeout"`
	Grubhub   bool `json:"grubhub"`
	Doordash  bool `json:"doordash"`
	UberEats  bool `json:"ubereats"`
	Postmates bool `json:"postmates"`
}

// DisplayVendor is the row projection the result table is sorted on.
type DisplayVendor struct {
	VendorID                  int     `json:"vendor_id"`
	VendorName                string  `json:"vendor_name"`
	User1Count                int     `json:"user1_count"`
	User2Count                int     `json:"user2_count"`
	DistanceMiles             float64 `json:"distance_miles"`
	QuerySpecificRatingString string  `json:"rating_string"`
	QuerySpecificRatingValue  float64 `json:"rating_value"`
	CombinedRelevantItemCount int     `json:"combined_relevant_item_count"`
}

// ToDisplayVendor projects a backend record onto a table row. A missing
// distance becomes 0.0.
func (v Vendor) ToDisplayVendor() DisplayVendor {
	distance := 0.0
	if v.DistanceMiles != nil {
		distance = *v.DistanceMiles
	}
	return DisplayVendor{
		VendorID:                  v.ID,
		VendorName:                v.Name,
		User1Count:                v.ItemCounts.User1Matches,
		User2Count:                v.ItemCounts.User2Matches,
		DistanceMiles:             distance,
		QuerySpecificRatingString: fmt.Sprintf("%d/%d", v.Rating.Upvotes, v.Rating.TotalVotes),
		QuerySpecificRatingValue:  v.Rating.Percentage,
		CombinedRelevantItemCount: v.ItemCounts.TotalRelevant,
	}
}

// PaginationMeta describes where a search page sits in the full result set.
type PaginationMeta struct {
	Page         int `json:"page"`
	PageSize     int `json:"page_size"`
	TotalResults int `json:"total_results"`
	TotalPages   int `json:"total_pages"`
}

// VendorSearchResponse is the body of POST /vendors/search.
type VendorSearchResponse struct {
	Vendors      []Vendor       `json:"vendors"`
	Pagination   PaginationMeta `json:"pagination"`
	User1Display string         `json:"user1_display"`
	User2Display string         `json:"user2_display"`
}
