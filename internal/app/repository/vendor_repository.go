package repository

import (
	"context"
	"strings"

	"github.com/ikkim/dietprefs-client/internal/app/model"
	"github.com/ikkim/dietprefs-client/pkg/dietprefs"
	"github.com/ikkim/dietprefs-client/pkg/logger"
)

// SearchCriteria is everything the coordinator sends for one search page.
type SearchCriteria struct {
	User1Preferences []string
	User2Preferences []string
	User1MaxPrice    *float64
	User2MaxPrice    *float64
	Location         *model.Location
	SearchQuery      string
	SortBy           string
	SortDirection    string
	Page             int
	PageSize         int
}

// ItemCriteria is the subset of filters used to annotate a vendor's items.
type ItemCriteria struct {
	User1Preferences []string
	User2Preferences []string
	User1MaxPrice    *float64
	User2MaxPrice    *float64
}

// VendorRepository is the remote search contract the session depends on.
// Reads may be retried freely; VoteOnItem is not idempotent.
type VendorRepository interface {
	SearchVendors(ctx context.Context, criteria SearchCriteria) (*model.VendorSearchResponse, error)
	GetVendorItems(ctx context.Context, vendorID int, criteria ItemCriteria) ([]model.MenuItem, error)
	VoteOnItem(ctx context.Context, itemID int, vote model.VoteType) error
	GetConfig(ctx context.Context) (*model.AppConfig, error)
	GetPreferenceMetadata(ctx context.Context) (model.PreferenceMetadata, error)
}

// APIClient is the subset of *dietprefs.Client the repository uses.
type APIClient interface {
	FetchAppConfig(ctx context.Context) (*model.AppConfig, error)
	FetchPreferences(ctx context.Context) (*model.PreferencesConfig, error)
	SearchVendors(ctx context.Context, req dietprefs.SearchRequest) (*model.VendorSearchResponse, error)
	GetVendorItems(ctx context.Context, vendorID int, query dietprefs.ItemsQuery) ([]model.MenuItem, error)
	VoteOnItem(ctx context.Context, itemID int, vote model.VoteType) (*dietprefs.VoteResponse, error)
}

type vendorRepository struct {
	api APIClient
	log *logger.Logger
}

func NewVendorRepository(api APIClient) VendorRepository {
	return &vendorRepository{
		api: api,
		log: logger.Component("vendor-repository"),
	}
}

func (r *vendorRepository) SearchVendors(ctx context.Context, criteria SearchCriteria) (*model.VendorSearchResponse, error) {
	req := dietprefs.SearchRequest{
		User1Preferences: nonNil(criteria.User1Preferences),
		User2Preferences: nonNil(criteria.User2Preferences),
		User1MaxPrice:    criteria.User1MaxPrice,
		User2MaxPrice:    criteria.User2MaxPrice,
		SortBy:           criteria.SortBy,
		SortDirection:    criteria.SortDirection,
		Page:             criteria.Page,
		PageSize:         criteria.PageSize,
	}
	if criteria.Location != nil {
		lat, lng := criteria.Location.Latitude, criteria.Location.Longitude
		req.Lat = &lat
		req.Lng = &lng
	}
	if q := strings.TrimSpace(criteria.SearchQuery); q != "" {
		req.SearchQuery = &q
	}

	r.log.Debug("Searching vendors", map[string]interface{}{
		"has_location": criteria.Location != nil,
		"query":        criteria.SearchQuery,
		"sort_by":      criteria.SortBy,
		"sort_dir":     criteria.SortDirection,
		"page":         criteria.Page,
		"page_size":    criteria.PageSize,
	})

	resp, err := r.api.SearchVendors(ctx, req)
	if err != nil {
		r.log.Error("Search failed", err, map[string]interface{}{
			"page": criteria.Page,
		})
		return nil, err
	}

	fields := map[string]interface{}{
		"vendors":       len(resp.Vendors),
		"total_results": resp.Pagination.TotalResults,
		"total_pages":   resp.Pagination.TotalPages,
	}
	if len(resp.Vendors) > 0 && resp.Vendors[0].DistanceMiles != nil {
		fields["first_distance"] = *resp.Vendors[0].DistanceMiles
	}
	r.log.Debug("Search response received", fields)

	return resp, nil
}

func (r *vendorRepository) GetVendorItems(ctx context.Context, vendorID int, criteria ItemCriteria) ([]model.MenuItem, error) {
	r.log.Debug("Fetching vendor items", map[string]interface{}{
		"vendor_id":       vendorID,
		"user1_prefs":     strings.Join(criteria.User1Preferences, ","),
		"user2_prefs":     strings.Join(criteria.User2Preferences, ","),
		"user1_max_price": criteria.User1MaxPrice,
		"user2_max_price": criteria.User2MaxPrice,
	})

	items, err := r.api.GetVendorItems(ctx, vendorID, dietprefs.ItemsQuery{
		User1Preferences: criteria.User1Preferences,
		User2Preferences: criteria.User2Preferences,
		User1MaxPrice:    criteria.User1MaxPrice,
		User2MaxPrice:    criteria.User2MaxPrice,
	})
	if err != nil {
		r.log.Error("Failed to fetch items", err, map[string]interface{}{
			"vendor_id": vendorID,
		})
		return nil, err
	}

	r.log.Debug("Received items", map[string]interface{}{
		"vendor_id": vendorID,
		"count":     len(items),
	})
	return items, nil
}

func (r *vendorRepository) VoteOnItem(ctx context.Context, itemID int, vote model.VoteType) error {
	r.log.Debug("Voting on item", map[string]interface{}{
		"item_id": itemID,
		"vote":    vote,
	})

	if _, err := r.api.VoteOnItem(ctx, itemID, vote); err != nil {
		r.log.Error("Failed to vote", err, map[string]interface{}{
			"item_id": itemID,
		})
		return err
	}
	return nil
}

func (r *vendorRepository) GetConfig(ctx context.Context) (*model.AppConfig, error) {
	cfg, err := r.api.FetchAppConfig(ctx)
	if err != nil {
		r.log.Error("Failed to fetch config", err, nil)
		return nil, err
	}
	r.log.Debug("Config fetched", map[string]interface{}{"version": cfg.Version})
	return cfg, nil
}

func (r *vendorRepository) GetPreferenceMetadata(ctx context.Context) (model.PreferenceMetadata, error) {
	prefs, err := r.api.FetchPreferences(ctx)
	if err != nil {
		r.log.Error("Failed to fetch preference metadata", err, nil)
		return nil, err
	}
	return prefs.Metadata(), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
