package model

import "fmt"

// VoteType is the direction of a vote on a menu item.
type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

func ParseVoteType(s string) (VoteType, error) {
	switch VoteType(s) {
	case VoteUp, VoteDown:
		return VoteType(s), nil
	}
	return "", fmt.Errorf("unknown vote type %q", s)
}

// MenuItem belongs to exactly one vendor.
type MenuItem struct {
	ID           int          `json:"id"`
	VendorID     int          `json:"vendor_id"`
	Name         string       `json:"name"`
	Price        *float64     `json:"price"`
	Pictures     *string      `json:"pictures"`
	DietaryFlags DietaryFlags `json:"dietary_flags"`
	Rating       ItemRating   `json:"rating"`
	MatchesUser1 *bool        `json:"matches_user1"`
	MatchesUser2 *bool        `json:"matches_user2"`
	CreatedAt    string       `json:"created_at"`
}

type ItemRating struct {
	Upvotes    int     `json:"upvotes"`
	TotalVotes int     `json:"total_votes"`
	Percentage float64 `json:"percentage"`
}

// ApplyVote returns the rating after an acknowledged vote. Counts only ever
// grow locally; the backend value wins on the next fetch.
func (r ItemRating) ApplyVote(vote VoteType) ItemRating {
	out := r
	if vote == VoteUp {
		out.Upvotes++
	}
	out.TotalVotes++
	if out.TotalVotes > 0 {
		out.Percentage = float64(out.Upvotes) / float64(out.TotalVotes)
	} else {
		out.Percentage = 0
	}
	return out
}

type DietaryFlags struct {
	Vegetarian     bool `json:"vegetarian"`
	Pescetarian    bool `json:"pescetarian"`
	Vegan          bool `json:"vegan"`
	Keto           bool `json:"keto"`
	Organic        bool `json:"organic"`
	GMOFree        bool `json:"gmo_free"`
	LocallySourced bool `json:"locally_sourced"`
	Raw            bool `json:"raw"`
	Kosher         bool `json:"kosher"`
	Halal          bool `json:"halal"`
	Beef           bool `json:"beef"`
	Chicken        bool `json:"chicken"`
	Pork           bool `json:"pork"`
	Seafood        bool `json:"seafood"`
	NoPorkProducts bool `json:"no_pork_products"`
	NoRedMeat      bool `json:"no_red_meat"`
	NoMilk         bool `json:"no_milk"`
	NoEggs         bool `json:"no_eggs"`
	NoFish         bool `json:"no_fish"`
	NoShellfish    bool `json:"no_shellfish"`
	NoPeanuts      bool `json:"no_peanuts"`
	NoTreenuts     bool `json:"no_treenuts"`
	GlutenFree     bool `json:"gluten_free"`
	NoSoy          bool `json:"no_soy"`
	NoSesame       bool `json:"no_sesame"`
	NoMSG          bool `json:"no_msg"`
	NoAlliums      bool `json:"no_alliums"`
	LowSugar       bool `json:"low_sugar"`
	HighProtein    bool `json:"high_protein"`
	LowCarb        bool `json:"low_carb"`
	Entree         bool `json:"entree"`
	Sweet          bool `json:"sweet"`
}

// Matching returns the catalog tags whose flag is set, in catalog order.
func (f DietaryFlags) Matching() []Preference {
	flags := map[string]bool{
		Vegetarian.WireName: f.Vegetarian, Pescetarian.WireName: f.Pescetarian,
		Vegan.WireName: f.Vegan, Keto.WireName: f.Keto, Organic.WireName: f.Organic,
		GMOFree.WireName: f.GMOFree, LocallySourced.WireName: f.LocallySourced,
		Raw.WireName: f.Raw, Kosher.WireName: f.Kosher, Halal.WireName: f.Halal,
		Beef.WireName: f.Beef, Chicken.WireName: f.Chicken, PorkFamily.WireName: f.Pork,
		Seafood.WireName: f.Seafood, NoPorkProducts.WireName: f.NoPorkProducts,
		NoRedMeat.WireName: f.NoRedMeat, NoMilk.WireName: f.NoMilk, NoEggs.WireName: f.NoEggs,
		NoFish.WireName: f.NoFish, NoShellfish.WireName: f.NoShellfish,
		NoPeanuts.WireName: f.NoPeanuts, NoTreenuts.WireName: f.NoTreenuts,
		GlutenFree.WireName: f.GlutenFree, NoSoy.WireName: f.NoSoy, NoSesame.WireName: f.NoSesame,
		NoMSG.WireName: f.NoMSG, NoAlliums.WireName: f.NoAlliums, LowSugar.WireName: f.LowSugar,
		HighProtein.WireName: f.HighProtein, LowCarb.WireName: f.LowCarb,
		Entree.WireName: f.Entree, Sweet.WireName: f.Sweet,
	}
	var out []Preference
	for _, p := range AllPreferences() {
		if flags[p.WireName] {
			out = append(out, p)
		}
	}
	return out
}

// VoteRequest is the body of POST /items/{id}/vote.
type VoteRequest struct {
	Vote VoteType `json:"vote"`
}
