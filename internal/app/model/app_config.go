package model

// AppConfig is the backend's centrally managed business configuration.
type AppConfig struct {
	Version    string           `json:"version"`
	Pricing    PricingConfig    `json:"pricing"`
	Pagination PaginationConfig `json:"pagination"`
	Location   LocationConfig   `json:"location"`
	Sorting    SortingConfig    `json:"sorting"`
}

type PricingConfig struct {
	MinPrice       float64   `json:"min_price"`
	MaxPrice       float64   `json:"max_price"`
	PriceStep      float64   `json:"price_step"`
	DefaultOptions []float64 `json:"default_options"`
}

type PaginationConfig struct {
	DefaultPageSize int `json:"default_page_size"`
	MaxPageSize     int `json:"max_page_size"`
}

type LocationConfig struct {
	MaxDistanceMiles    float64 `json:"max_distance_miles"`
	DefaultLatitude     float64 `json:"default_latitude"`
	DefaultLongitude    float64 `json:"default_longitude"`
	DefaultLocationName string  `json:"default_location_name"`
}

type SortOption struct {
	ID               string `json:"id"`
	Display          string `json:"display"`
	DefaultDirection string `json:"default_direction"`
}

type SortingConfig struct {
	Options              []SortOption `json:"options"`
	DefaultSortBy        string       `json:"default_sort_by"`
	DefaultSortDirection string       `json:"default_sort_direction"`
}

// DefaultAppConfig is used until the backend config has been fetched.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Version: "1.0.0",
		Pricing: PricingConfig{
			MinPrice:       5,
			MaxPrice:       30,
			PriceStep:      1,
			DefaultOptions: []float64{5, 10, 15, 20, 25, 30},
		},
		Pagination: PaginationConfig{
			DefaultPageSize: 10,
			MaxPageSize:     100,
		},
		Location: LocationConfig{
			MaxDistanceMiles:    10,
			DefaultLatitude:     45.6770,
			DefaultLongitude:    -111.0429,
			DefaultLocationName: "Bozeman, MT",
		},
		Sorting: SortingConfig{
			Options: []SortOption{
				{ID: "rating", Display: "Rating", DefaultDirection: "desc"},
				{ID: "distance", Display: "Distance", DefaultDirection: "asc"},
				{ID: "item_count", Display: "Menu Items", DefaultDirection: "desc"},
			},
			DefaultSortBy:        "item_count",
			DefaultSortDirection: "desc",
		},
	}
}

// PreferenceInfo is one entry of GET /preferences.
type PreferenceInfo struct {
	APIName     string `json:"api_name"`
	DisplayText string `json:"display_text"`
	Category    string `json:"category,omitempty"`
}

// PreferencesConfig is the body of GET /preferences.
type PreferencesConfig struct {
	Preferences []PreferenceInfo `json:"preferences"`
}

// Metadata flattens the list into a wire name -> label map.
func (c PreferencesConfig) Metadata() PreferenceMetadata {
	out := make(PreferenceMetadata, len(c.Preferences))
	for _, p := range c.Preferences {
		if p.APIName != "" && p.DisplayText != "" {
			out[p.APIName] = p.DisplayText
		}
	}
	return out
}
