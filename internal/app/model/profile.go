package model

import "fmt"

// UserSlot identifies one of the two concurrent filter profiles.
type UserSlot int

const (
	User1 UserSlot = 1
	User2 UserSlot = 2
)

func (u UserSlot) Valid() bool { return u == User1 || u == User2 }

func (u UserSlot) String() string { return fmt.Sprintf("user%d", int(u)) }

// UserFilterProfile is one user's selected tags plus an optional price cap.
// LowPrice is a member of Preferences exactly when MaxPrice is non-nil.
type UserFilterProfile struct {
	Preferences PreferenceSet `json:"-"`
	MaxPrice    *float64      `json:"max_price"`
}

func NewUserFilterProfile() *UserFilterProfile {
	return &UserFilterProfile{Preferences: NewPreferenceSet()}
}

func (p *UserFilterProfile) Toggle(pref Preference) bool {
	return p.Preferences.Toggle(pref)
}

// SetMaxPrice stores the price cap and syncs LowPrice membership.
func (p *UserFilterProfile) SetMaxPrice(price *float64) {
	if price == nil {
		p.MaxPrice = nil
		p.Preferences.Remove(LowPrice)
		return
	}
	v := *price
	p.MaxPrice = &v
	p.Preferences.Add(LowPrice)
}

func (p *UserFilterProfile) Clear() {
	p.Preferences = NewPreferenceSet()
	p.MaxPrice = nil
}

func (p *UserFilterProfile) Clone() *UserFilterProfile {
	out := &UserFilterProfile{Preferences: p.Preferences.Clone()}
	if p.MaxPrice != nil {
		v := *p.MaxPrice
		out.MaxPrice = &v
	}
	return out
}

// Location is a geographic point supplied by the device.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}
