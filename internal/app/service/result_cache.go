package service

import (
	"sort"

	"github.com/ikkim/dietprefs-client/internal/app/model"
)

// ResultCache holds every vendor fetched for the active query and the
// prefix of it currently exposed to the UI. It is not safe for concurrent
// use; SearchCoordinator serialises access.
type ResultCache struct {
	pageSize int
	vendors  []model.Vendor        // fetch order, for detail navigation
	rows     []model.DisplayVendor // display order
	window   int
}

func NewResultCache(pageSize int) *ResultCache {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &ResultCache{pageSize: pageSize}
}

func (c *ResultCache) PageSize() int { return c.pageSize }

// ReplaceAll discards everything and exposes the first page of vendors.
func (c *ResultCache) ReplaceAll(vendors []model.Vendor) {
	c.vendors = append([]model.Vendor(nil), vendors...)
	c.rows = make([]model.DisplayVendor, len(vendors))
	for i, v := range vendors {
		c.rows[i] = v.ToDisplayVendor()
	}
	c.window = min(len(c.rows), c.pageSize)
}

// AppendPage adds a freshly fetched page to both the cache and the window.
func (c *ResultCache) AppendPage(vendors []model.Vendor) {
	c.vendors = append(c.vendors, vendors...)
	for _, v := range vendors {
		c.rows = append(c.rows, v.ToDisplayVendor())
	}
	c.window = min(c.window+len(vendors), len(c.rows))
}

// GrowWindow exposes up to one more page of already cached rows and
// returns how many rows were added.
func (c *ResultCache) GrowWindow() int {
	before := c.window
	c.window = min(c.window+c.pageSize, len(c.rows))
	return c.window - before
}

// ApplySort reorders the full cached sequence with a stable sort and
// resets the window to the first page.
func (c *ResultCache) ApplySort(less func(a, b model.DisplayVendor) bool) {
	sorted := append([]model.DisplayVendor(nil), c.rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	c.rows = sorted
	c.window = min(len(c.rows), c.pageSize)
}

func (c *ResultCache) Reset() {
	c.vendors = nil
	c.rows = nil
	c.window = 0
}

// Window returns a copy of the exposed prefix.
func (c *ResultCache) Window() []model.DisplayVendor {
	return append([]model.DisplayVendor{}, c.rows[:c.window]...)
}

// All returns a copy of the full cached sequence in display order.
func (c *ResultCache) All() []model.DisplayVendor {
	return append([]model.DisplayVendor{}, c.rows...)
}

func (c *ResultCache) Len() int        { return len(c.rows) }
func (c *ResultCache) WindowLen() int  { return c.window }
func (c *ResultCache) HasHidden() bool { return c.window < len(c.rows) }

// Vendor returns the full backend record for a cached vendor id.
func (c *ResultCache) Vendor(id int) (model.Vendor, bool) {
	for _, v := range c.vendors {
		if v.ID == id {
			return v, true
		}
	}
	return model.Vendor{}, false
}

// VendorByName returns the first cached vendor with the given name.
func (c *ResultCache) VendorByName(name string) (model.Vendor, bool) {
	for _, v := range c.vendors {
		if v.Name == name {
			return v, true
		}
	}
	return model.Vendor{}, false
}

// SortComparator returns the ordering for a sort state. Ties compare as
// not-less so the stable sort keeps their prior relative order.
func SortComparator(state model.SortState) func(a, b model.DisplayVendor) bool {
	var key func(v model.DisplayVendor) float64
	switch state.Column {
	case model.SortVendorRating:
		key = func(v model.DisplayVendor) float64 { return v.QuerySpecificRatingValue }
	case model.SortDistance:
		key = func(v model.DisplayVendor) float64 { return v.DistanceMiles }
	default:
		key = func(v model.DisplayVendor) float64 { return float64(v.CombinedRelevantItemCount) }
	}

	if state.Direction == model.SortAscending {
		return func(a, b model.DisplayVendor) bool { return key(a) < key(b) }
	}
	return func(a, b model.DisplayVendor) bool { return key(a) > key(b) }
}
