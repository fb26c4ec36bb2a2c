package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/ikkim/dietprefs-client/internal/app/model"
	"github.com/ikkim/dietprefs-client/internal/app/repository"
)

// spyRepository records calls and serves canned responses. searchFn, when
// set, overrides the canned search pages.
type spyRepository struct {
	mu sync.Mutex

	searchCalls []repository.SearchCriteria
	pages       map[int]*model.VendorSearchResponse
	searchErr   error
	searchFn    func(ctx context.Context, c repository.SearchCriteria) (*model.VendorSearchResponse, error)

	itemCalls []int
	items     []model.MenuItem
	itemsErr  error

	votes   []model.VoteType
	voteErr error

	config    *model.AppConfig
	configErr error
	meta      model.PreferenceMetadata
	metaErr   error
}

func newSpyRepository() *spyRepository {
	return &spyRepository{pages: map[int]*model.VendorSearchResponse{}}
}

func (s *spyRepository) SearchVendors(ctx context.Context, c repository.SearchCriteria) (*model.VendorSearchResponse, error) {
	s.mu.Lock()
	s.searchCalls = append(s.searchCalls, c)
	fn, err, resp := s.searchFn, s.searchErr, s.pages[c.Page]
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, c)
	}
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("no canned page %d", c.Page)
	}
	return resp, nil
}

func (s *spyRepository) GetVendorItems(_ context.Context, vendorID int, _ repository.ItemCriteria) ([]model.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.itemCalls = append(s.itemCalls, vendorID)
	if s.itemsErr != nil {
		return nil, s.itemsErr
	}
	return append([]model.MenuItem(nil), s.items...), nil
}

func (s *spyRepository) VoteOnItem(_ context.Context, _ int, vote model.VoteType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes = append(s.votes, vote)
	return s.voteErr
}

func (s *spyRepository) GetConfig(context.Context) (*model.AppConfig, error) {
	if s.configErr != nil {
		return nil, s.configErr
	}
	return s.config, nil
}

func (s *spyRepository) GetPreferenceMetadata(context.Context) (model.PreferenceMetadata, error) {
	if s.metaErr != nil {
		return nil, s.metaErr
	}
	return s.meta, nil
}

func (s *spyRepository) searchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.searchCalls)
}

func (s *spyRepository) lastSearch() repository.SearchCriteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchCalls[len(s.searchCalls)-1]
}

// makeVendors builds n vendors with ids starting at first.
func makeVendors(first, n int) []model.Vendor {
	out := make([]model.Vendor, n)
	for i := range out {
		id := first + i
		out[i] = model.Vendor{
			ID:   id,
			Name: fmt.Sprintf("Vendor %d", id),
			Rating: model.VendorRating{
				Upvotes:    id,
				TotalVotes: 100,
				Percentage: float64(id) / 100,
			},
			ItemCounts: model.ItemCounts{TotalRelevant: id % 4},
		}
	}
	return out
}

func searchPage(page, totalResults, totalPages int, vendors []model.Vendor) *model.VendorSearchResponse {
	return &model.VendorSearchResponse{
		Vendors: vendors,
		Pagination: model.PaginationMeta{
			Page:         page,
			PageSize:     10,
			TotalResults: totalResults,
			TotalPages:   totalPages,
		},
	}
}
