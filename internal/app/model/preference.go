package model

import (
	"sort"
	"strings"
)

// Preference is a single dietary filter tag. DisplayName is what the user
// sees, WireName is the snake_case identifier the backend expects.
type Preference struct {
	DisplayName string `json:"display_name"`
	WireName    string `json:"wire_name"`
}

var (
	Vegetarian     = Preference{"vegetarian", "vegetarian"}
	Pescetarian    = Preference{"pescetarian", "pescetarian"}
	Vegan          = Preference{"vegan", "vegan"}
	Keto           = Preference{"keto", "keto"}
	Organic        = Preference{"organic", "organic"}
	GMOFree        = Preference{"gmo-free", "gmo_free"}
	LocallySourced = Preference{"locally sourced", "locally_sourced"}
	Raw            = Preference{"raw", "raw"}
	Entree         = Preference{"entree", "entree"}
	Sweet          = Preference{"sweet", "sweet"}
	Kosher         = Preference{"Kosher", "kosher"}
	Halal          = Preference{"Halal", "halal"}
	Beef           = Preference{"beef", "beef"}
	Chicken        = Preference{"chicken", "chicken"}
	PorkFamily     = Preference{"bacon/pork/ham", "pork"}
	Seafood        = Preference{"seafood", "seafood"}
	LowSugar       = Preference{"low sugar", "low_sugar"}
	HighProtein    = Preference{"high protein", "high_protein"}
	LowCarb        = Preference{"low carb", "low_carb"}
	NoAlliums      = Preference{"no alliums", "no_alliums"}
	NoPorkProducts = Preference{"no pork products", "no_pork_products"}
	NoRedMeat      = Preference{"no red meat", "no_red_meat"}
	NoMSG          = Preference{"no msg", "no_msg"}
	NoSesame       = Preference{"no sesame", "no_sesame"}
	NoMilk         = Preference{"no milk", "no_milk"}
	NoEggs         = Preference{"no eggs", "no_eggs"}
	NoFish         = Preference{"no fish", "no_fish"}
	NoShellfish    = Preference{"no shellfish", "no_shellfish"}
	NoPeanuts      = Preference{"no peanuts", "no_peanuts"}
	NoTreenuts     = Preference{"no treenuts", "no_treenuts"}
	GlutenFree     = Preference{"gluten-free", "gluten_free"}
	NoSoy          = Preference{"no soy", "no_soy"}

	// LowPrice is synthetic: it is never toggled directly and mirrors
	// whether the owning profile has a max price set.
	LowPrice = Preference{"low price", "low_price"}
)

// catalog is the UI order. LowPrice is last and hidden from the grid.
var catalog = []Preference{
	Vegetarian, Pescetarian, Vegan, Keto, Organic, GMOFree,
	LocallySourced, Raw, Entree, Sweet, Kosher, Halal,
	Beef, Chicken, PorkFamily, Seafood,
	LowSugar, HighProtein, LowCarb, NoAlliums,
	NoPorkProducts, NoRedMeat, NoMSG, NoSesame,
	NoMilk, NoEggs, NoFish, NoShellfish,
	NoPeanuts, NoTreenuts, GlutenFree, NoSoy,
	LowPrice,
}

var catalogIndex = func() map[string]int {
	idx := make(map[string]int, len(catalog))
	for i, p := range catalog {
		idx[p.WireName] = i
	}
	return idx
}()

// AllPreferences returns the selectable tags in UI order (LowPrice excluded).
func AllPreferences() []Preference {
	out := make([]Preference, 0, len(catalog)-1)
	for _, p := range catalog {
		if p != LowPrice {
			out = append(out, p)
		}
	}
	return out
}

// Catalog returns every known tag including LowPrice.
func Catalog() []Preference {
	return append([]Preference(nil), catalog...)
}

// PreferenceByWireName looks a tag up by its backend identifier.
func PreferenceByWireName(wire string) (Preference, bool) {
	i, ok := catalogIndex[wire]
	if !ok {
		return Preference{}, false
	}
	return catalog[i], true
}

// PreferenceFromDisplay maps a display label (case-insensitive) to its tag.
func PreferenceFromDisplay(display string) (Preference, bool) {
	for _, p := range catalog {
		if strings.EqualFold(p.DisplayName, display) {
			return p, true
		}
	}
	return Preference{}, false
}

// PreferenceSet is an unordered set of tags keyed by wire name.
type PreferenceSet map[string]Preference

func NewPreferenceSet(prefs ...Preference) PreferenceSet {
	s := make(PreferenceSet, len(prefs))
	for _, p := range prefs {
		s.Add(p)
	}
	return s
}

func (s PreferenceSet) Add(p Preference)    { s[p.WireName] = p }
func (s PreferenceSet) Remove(p Preference) { delete(s, p.WireName) }
func (s PreferenceSet) Len() int            { return len(s) }

func (s PreferenceSet) Contains(p Preference) bool {
	_, ok := s[p.WireName]
	return ok
}

// Toggle adds p if absent and removes it if present. It reports whether p
// is in the set afterwards.
func (s PreferenceSet) Toggle(p Preference) bool {
	if s.Contains(p) {
		s.Remove(p)
		return false
	}
	s.Add(p)
	return true
}

func (s PreferenceSet) Clone() PreferenceSet {
	out := make(PreferenceSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Sorted returns the members in catalog order.
func (s PreferenceSet) Sorted() []Preference {
	out := make([]Preference, 0, len(s))
	for _, p := range s {
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return catalogIndex[out[i].WireName] < catalogIndex[out[j].WireName]
	})
	return out
}

// WireNames returns the members' backend identifiers in catalog order.
func (s PreferenceSet) WireNames() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, p := range sorted {
		out[i] = p.WireName
	}
	return out
}

// PreferenceMetadata maps wire names to backend-provided display labels.
type PreferenceMetadata map[string]string
