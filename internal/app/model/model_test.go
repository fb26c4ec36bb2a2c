package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_WireNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Catalog() {
		assert.False(t, seen[p.WireName], "duplicate wire name %s", p.WireName)
		seen[p.WireName] = true
	}
	assert.Len(t, AllPreferences(), 32)
	assert.NotContains(t, AllPreferences(), LowPrice)
}

func TestPreferenceLookups(t *testing.T) {
	p, ok := PreferenceByWireName("gluten_free")
	require.True(t, ok)
	assert.Equal(t, GlutenFree, p)

	p, ok = PreferenceFromDisplay("kosher")
	require.True(t, ok)
	assert.Equal(t, Kosher, p)

	_, ok = PreferenceByWireName("paleo")
	assert.False(t, ok)
}

func TestPreferenceSet_ToggleParity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	all := AllPreferences()
	counts := map[string]int{}
	set := NewPreferenceSet()

	for i := 0; i < 500; i++ {
		p := all[rng.Intn(len(all))]
		set.Toggle(p)
		counts[p.WireName]++
	}

	for _, p := range all {
		assert.Equal(t, counts[p.WireName]%2 == 1, set.Contains(p), p.WireName)
	}
}

func TestPreferenceSet_WireNamesInCatalogOrder(t *testing.T) {
	set := NewPreferenceSet(NoSoy, Vegan, Vegetarian)
	assert.Equal(t, []string{"vegetarian", "vegan", "no_soy"}, set.WireNames())
}

func TestUserFilterProfile_PriceSyncsLowPrice(t *testing.T) {
	profile := NewUserFilterProfile()
	price := 12.0

	profile.SetMaxPrice(&price)
	assert.True(t, profile.Preferences.Contains(LowPrice))
	require.NotNil(t, profile.MaxPrice)
	assert.Equal(t, 12.0, *profile.MaxPrice)

	// caller's variable is copied, not aliased
	price = 99
	assert.Equal(t, 12.0, *profile.MaxPrice)

	profile.SetMaxPrice(nil)
	assert.False(t, profile.Preferences.Contains(LowPrice))
	assert.Nil(t, profile.MaxPrice)
}

func TestSortState_Next(t *testing.T) {
	s := DefaultSortState()

	s = s.Next(SortDistance)
	assert.Equal(t, SortState{SortDistance, SortAscending}, s)
	s = s.Next(SortDistance)
	assert.Equal(t, SortDescending, s.Direction)
	s = s.Next(SortDistance)
	assert.Equal(t, SortAscending, s.Direction)

	s = s.Next(SortVendorRating)
	assert.Equal(t, SortState{SortVendorRating, SortDescending}, s)
	assert.Equal(t, "rating", s.WireSortBy())
	assert.Equal(t, "desc", s.WireDirection())

	_, err := ParseSortColumn("popularity")
	assert.Error(t, err)
}

func TestItemRating_ApplyVote(t *testing.T) {
	r := ItemRating{Upvotes: 3, TotalVotes: 4, Percentage: 0.75}

	up := r.ApplyVote(VoteUp)
	assert.Equal(t, 4, up.Upvotes)
	assert.Equal(t, 5, up.TotalVotes)
	assert.InDelta(t, 0.8, up.Percentage, 1e-9)

	down := r.ApplyVote(VoteDown)
	assert.Equal(t, 3, down.Upvotes)
	assert.Equal(t, 5, down.TotalVotes)
	assert.InDelta(t, 0.6, down.Percentage, 1e-9)

	// original untouched
	assert.Equal(t, 3, r.Upvotes)
}

func TestVendor_ToDisplayVendor(t *testing.T) {
	d := 2.5
	v := Vendor{
		ID:            7,
		Name:          "Green Bowl",
		DistanceMiles: &d,
		Rating:        VendorRating{Upvotes: 8, TotalVotes: 10, Percentage: 0.8},
		ItemCounts:    ItemCounts{User1Matches: 3, User2Matches: 1, TotalRelevant: 4},
	}

	row := v.ToDisplayVendor()
	assert.Equal(t, "8/10", row.QuerySpecificRatingString)
	assert.Equal(t, 2.5, row.DistanceMiles)
	assert.Equal(t, 4, row.CombinedRelevantItemCount)

	v.DistanceMiles = nil
	assert.Equal(t, 0.0, v.ToDisplayVendor().DistanceMiles)
}

func TestDietaryFlags_Matching(t *testing.T) {
	flags := DietaryFlags{Vegan: true, GlutenFree: true, Pork: true}
	assert.Equal(t, []Preference{Vegan, PorkFamily, GlutenFree}, flags.Matching())
}
