package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ikkim/dietprefs-client/internal/app/model"
	"github.com/ikkim/dietprefs-client/internal/app/repository"
	apperrors "github.com/ikkim/dietprefs-client/internal/errors"
	"github.com/ikkim/dietprefs-client/pkg/logger"
	"github.com/ikkim/dietprefs-client/pkg/util"
)

// CoordinatorConfig tunes paging and the search-text quiet period.
type CoordinatorConfig struct {
	PageSize int
	Debounce time.Duration
}

// VisibleRange is the inclusive index range of rows on screen.
type VisibleRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ProfileSnapshot is one user's filters as exposed to the UI.
type ProfileSnapshot struct {
	Preferences []string `json:"preferences"`
	MaxPrice    *float64 `json:"max_price"`
	DisplayText string   `json:"display_text"`
	Backend     string   `json:"backend_display"`
}

// SessionSnapshot is the full observable state of a search session.
type SessionSnapshot struct {
	User1          ProfileSnapshot       `json:"user1"`
	User2          ProfileSnapshot       `json:"user2"`
	SearchQuery    string                `json:"search_query"`
	Sort           model.SortState       `json:"sort"`
	Vendors        []model.DisplayVendor `json:"vendors"`
	TotalResults   int                   `json:"total_results"`
	CachedResults  int                   `json:"cached_results"`
	CurrentPage    int                   `json:"current_page"`
	TotalPages     int                   `json:"total_pages"`
	VisibleRange   VisibleRange          `json:"visible_range"`
	Loading        bool                  `json:"loading"`
	Error          string                `json:"error,omitempty"`
	Location       *model.Location       `json:"location,omitempty"`
	SelectedVendor *model.Vendor         `json:"selected_vendor,omitempty"`
}

// SearchCoordinator owns the filter, sort and search-text state for a
// session and decides when a remote search is issued. Mutations are
// serialised by mu; network calls run outside it and are reconciled by
// generation so a superseded search never overwrites a newer one.
type SearchCoordinator struct {
	repo      repository.VendorRepository
	display   DisplayService
	debouncer *util.Debouncer
	log       *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	sorting atomic.Bool

	mu           sync.Mutex
	profiles     map[model.UserSlot]*model.UserFilterProfile
	backendText  map[model.UserSlot]string
	query        string
	sort         model.SortState
	location     *model.Location
	cache        *ResultCache
	totalResults int
	currentPage  int
	totalPages   int
	pageLoading  bool
	generation   uint64
	inFlight     int
	searching    int
	errMsg       string
	visible      VisibleRange
	selected     *model.Vendor

	listenerMu   sync.Mutex
	listeners    map[int]func(SessionSnapshot)
	nextListener int
}

func NewSearchCoordinator(repo repository.VendorRepository, display DisplayService, cfg CoordinatorConfig) *SearchCoordinator {
	if display == nil {
		display = NewDisplayService(nil)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 300 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &SearchCoordinator{
		repo:      repo,
		display:   display,
		debouncer: util.NewDebouncer(cfg.Debounce),
		log:       logger.Component("search-coordinator"),
		ctx:       ctx,
		cancel:    cancel,
		profiles: map[model.UserSlot]*model.UserFilterProfile{
			model.User1: model.NewUserFilterProfile(),
			model.User2: model.NewUserFilterProfile(),
		},
		backendText: map[model.UserSlot]string{},
		sort:        model.DefaultSortState(),
		cache:       NewResultCache(cfg.PageSize),
		listeners:   map[int]func(SessionSnapshot){},
	}
}

// Close cancels a pending debounced search and any search it started.
func (c *SearchCoordinator) Close() {
	c.debouncer.Cancel()
	c.cancel()
}

// TogglePreference adds pref to the user's set if absent and removes it
// otherwise, returning whether it is now selected. LowPrice is managed by
// SetMaxPrice only.
func (c *SearchCoordinator) TogglePreference(user model.UserSlot, pref model.Preference) (bool, error) {
	if !user.Valid() {
		return false, ErrInvalidUserSlot
	}
	if pref == model.LowPrice {
		return false, ErrLowPriceSynthetic
	}
	if _, ok := model.PreferenceByWireName(pref.WireName); !ok {
		return false, ErrUnknownPreference
	}

	c.mu.Lock()
	selected := c.profiles[user].Toggle(pref)
	c.mu.Unlock()

	c.publish()
	return selected, nil
}

// SetMaxPrice sets or clears (nil) the user's price cap.
func (c *SearchCoordinator) SetMaxPrice(user model.UserSlot, price *float64) error {
	if !user.Valid() {
		return ErrInvalidUserSlot
	}
	if price != nil && !(*price > 0) {
		return ErrInvalidPrice
	}

	c.mu.Lock()
	c.profiles[user].SetMaxPrice(price)
	c.mu.Unlock()

	c.publish()
	return nil
}

// ClearAll resets both profiles, the search text and the backend display
// strings. Sort state is kept.
func (c *SearchCoordinator) ClearAll() {
	c.mu.Lock()
	for _, p := range c.profiles {
		p.Clear()
	}
	c.query = ""
	c.backendText = map[model.UserSlot]string{}
	c.mu.Unlock()

	c.publish()
}

// SetSortColumn applies the toggle/default-direction rule and re-sorts the
// cached results locally. A call made while another sort is being applied
// is dropped and reports false.
func (c *SearchCoordinator) SetSortColumn(column model.SortColumn) bool {
	if !c.sorting.CompareAndSwap(false, true) {
		return false
	}
	defer c.sorting.Store(false)

	c.mu.Lock()
	c.sort = c.sort.Next(column)
	if c.cache.Len() > 0 {
		c.cache.ApplySort(SortComparator(c.sort))
	}
	state := c.sort
	c.mu.Unlock()

	c.log.Debug("Sort applied", map[string]interface{}{"sort": state.String()})
	c.publish()
	return true
}

// SetSearchText stores the free-text query. It does not start a search;
// see ScheduleSearch.
func (c *SearchCoordinator) SetSearchText(text string) {
	c.mu.Lock()
	c.query = text
	c.mu.Unlock()

	c.publish()
}

// ScheduleSearch runs Search once no further call has been made for the
// debounce delay. Each call restarts the wait.
func (c *SearchCoordinator) ScheduleSearch() {
	c.debouncer.Trigger(func() {
		if err := c.Search(c.ctx); err != nil && !errors.Is(err, ErrStaleResponse) {
			c.log.Warn("Debounced search failed", map[string]interface{}{"error": err.Error()})
		}
	})
}

// Search issues page 1 for the current state. On success the cache is
// replaced and the first page exposed; on failure results are emptied and
// the error published. A response overtaken by a newer Search is dropped
// with ErrStaleResponse.
func (c *SearchCoordinator) Search(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.pageLoading = false
	c.inFlight++
	c.searching++
	c.errMsg = ""
	criteria := c.criteriaLocked(1)
	c.mu.Unlock()
	c.publish()

	resp, err := c.repo.SearchVendors(ctx, criteria)

	c.mu.Lock()
	c.inFlight--
	c.searching--
	if gen != c.generation {
		c.mu.Unlock()
		c.log.Debug("Discarding superseded search response", map[string]interface{}{"generation": gen})
		c.publish()
		return ErrStaleResponse
	}

	if err != nil {
		c.cache.Reset()
		c.totalResults = 0
		c.currentPage = 0
		c.totalPages = 0
		c.selected = nil
		c.errMsg = apperrors.ParseError(err, "search").Message
		c.mu.Unlock()
		c.publish()
		return err
	}

	c.cache.ReplaceAll(resp.Vendors)
	c.totalResults = resp.Pagination.TotalResults
	c.currentPage = 1
	c.totalPages = resp.Pagination.TotalPages
	c.backendText[model.User1] = resp.User1Display
	c.backendText[model.User2] = resp.User2Display
	c.selected = nil
	fields := map[string]interface{}{
		"generation":    gen,
		"received":      len(resp.Vendors),
		"total_results": c.totalResults,
		"total_pages":   c.totalPages,
	}
	c.mu.Unlock()

	c.log.Info("Search completed", fields)
	c.publish()
	return nil
}

// LoadNextPage exposes the next page. Cached but hidden rows are shown
// without a network call; otherwise the next backend page is fetched and
// appended. On failure the page counter is rolled back so a retry asks for
// the same page, and existing results are kept. No page is fetched while a
// search is in flight, since its result replaces the cache.
func (c *SearchCoordinator) LoadNextPage(ctx context.Context) error {
	c.mu.Lock()
	if c.cache.HasHidden() {
		added := c.cache.GrowWindow()
		c.mu.Unlock()
		c.log.Debug("Grew window from cache", map[string]interface{}{"added": added})
		c.publish()
		return nil
	}
	if c.pageLoading || c.searching > 0 {
		c.mu.Unlock()
		return ErrLoadInProgress
	}
	if c.currentPage >= c.totalPages {
		c.mu.Unlock()
		return ErrNoMorePages
	}

	c.currentPage++
	page := c.currentPage
	gen := c.generation
	c.pageLoading = true
	c.inFlight++
	criteria := c.criteriaLocked(page)
	c.mu.Unlock()
	c.publish()

	resp, err := c.repo.SearchVendors(ctx, criteria)

	c.mu.Lock()
	c.inFlight--
	if gen != c.generation || page != c.currentPage {
		c.mu.Unlock()
		c.log.Debug("Discarding superseded page response", map[string]interface{}{"page": page})
		c.publish()
		return ErrStaleResponse
	}
	c.pageLoading = false

	if err != nil {
		c.currentPage--
		c.errMsg = apperrors.ParseError(err, "next page").Message
		c.mu.Unlock()
		c.publish()
		return err
	}

	c.cache.AppendPage(resp.Vendors)
	c.totalResults = resp.Pagination.TotalResults
	c.totalPages = resp.Pagination.TotalPages
	c.mu.Unlock()

	c.log.Debug("Next page appended", map[string]interface{}{
		"page":     page,
		"received": len(resp.Vendors),
	})
	c.publish()
	return nil
}

// SetLocation sets the searcher's location; nil means none is available.
func (c *SearchCoordinator) SetLocation(loc *model.Location) {
	c.mu.Lock()
	if loc == nil {
		c.location = nil
	} else {
		l := *loc
		c.location = &l
	}
	c.mu.Unlock()

	c.publish()
}

// RefreshLocation asks the provider for the current location. A provider
// failure such as a denied permission is not an error for the session, it
// just leaves no location.
func (c *SearchCoordinator) RefreshLocation(ctx context.Context, provider LocationProvider) {
	loc, err := provider.CurrentLocation(ctx)
	if err != nil {
		c.log.Warn("Location unavailable", map[string]interface{}{"error": err.Error()})
		loc = nil
	}
	c.SetLocation(loc)
}

func (c *SearchCoordinator) Location() *model.Location {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.location == nil {
		return nil
	}
	l := *c.location
	return &l
}

func (c *SearchCoordinator) ClearError() {
	c.mu.Lock()
	c.errMsg = ""
	c.mu.Unlock()

	c.publish()
}

// UpdateVisibleRange records which rows are on screen.
func (c *SearchCoordinator) UpdateVisibleRange(start, end int) {
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}

	c.mu.Lock()
	c.visible = VisibleRange{Start: start, End: end}
	c.mu.Unlock()

	c.publish()
}

// SelectVendor picks a vendor from the cached results for detail view.
func (c *SearchCoordinator) SelectVendor(id int) (model.Vendor, error) {
	c.mu.Lock()
	v, ok := c.cache.Vendor(id)
	if ok {
		c.selected = &v
	}
	c.mu.Unlock()

	if !ok {
		return model.Vendor{}, ErrVendorNotFound
	}
	c.publish()
	return v, nil
}

// SelectVendorByName is the lookup used by table rows, which carry names.
func (c *SearchCoordinator) SelectVendorByName(name string) (model.Vendor, error) {
	c.mu.Lock()
	v, ok := c.cache.VendorByName(name)
	if ok {
		c.selected = &v
	}
	c.mu.Unlock()

	if !ok {
		return model.Vendor{}, ErrVendorNotFound
	}
	c.publish()
	return v, nil
}

func (c *SearchCoordinator) SelectedVendor() (model.Vendor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return model.Vendor{}, ErrNoVendorSelected
	}
	return *c.selected, nil
}

// ItemCriteria returns the filters used to annotate a vendor's menu.
func (c *SearchCoordinator) ItemCriteria() repository.ItemCriteria {
	c.mu.Lock()
	defer c.mu.Unlock()
	u1, u2 := c.profiles[model.User1], c.profiles[model.User2]
	return repository.ItemCriteria{
		User1Preferences: u1.Preferences.WireNames(),
		User2Preferences: u2.Preferences.WireNames(),
		User1MaxPrice:    copyPrice(u1.MaxPrice),
		User2MaxPrice:    copyPrice(u2.MaxPrice),
	}
}

// Profile returns a copy of one user's filters.
func (c *SearchCoordinator) Profile(user model.UserSlot) (*model.UserFilterProfile, error) {
	if !user.Valid() {
		return nil, ErrInvalidUserSlot
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profiles[user].Clone(), nil
}

func (c *SearchCoordinator) SortState() model.SortState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sort
}

// AllResults returns every cached row in display order, not just the window.
func (c *SearchCoordinator) AllResults() []model.DisplayVendor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.All()
}

func (c *SearchCoordinator) Snapshot() SessionSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned func removes it.
func (c *SearchCoordinator) Subscribe(fn func(SessionSnapshot)) func() {
	c.listenerMu.Lock()
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	c.listenerMu.Unlock()

	return func() {
		c.listenerMu.Lock()
		delete(c.listeners, id)
		c.listenerMu.Unlock()
	}
}

func (c *SearchCoordinator) publish() {
	c.listenerMu.Lock()
	if len(c.listeners) == 0 {
		c.listenerMu.Unlock()
		return
	}
	fns := make([]func(SessionSnapshot), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.listenerMu.Unlock()

	snap := c.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}

func (c *SearchCoordinator) snapshotLocked() SessionSnapshot {
	snap := SessionSnapshot{
		User1:         c.profileSnapshotLocked(model.User1),
		User2:         c.profileSnapshotLocked(model.User2),
		SearchQuery:   c.query,
		Sort:          c.sort,
		Vendors:       c.cache.Window(),
		TotalResults:  c.totalResults,
		CachedResults: c.cache.Len(),
		CurrentPage:   c.currentPage,
		TotalPages:    c.totalPages,
		VisibleRange:  c.visible,
		Loading:       c.inFlight > 0,
		Error:         c.errMsg,
	}
	if c.location != nil {
		l := *c.location
		snap.Location = &l
	}
	if c.selected != nil {
		v := *c.selected
		snap.SelectedVendor = &v
	}
	return snap
}

func (c *SearchCoordinator) profileSnapshotLocked(user model.UserSlot) ProfileSnapshot {
	p := c.profiles[user]
	return ProfileSnapshot{
		Preferences: p.Preferences.WireNames(),
		MaxPrice:    copyPrice(p.MaxPrice),
		DisplayText: c.display.BuildDisplayText(p.Preferences, p.MaxPrice),
		Backend:     c.backendText[user],
	}
}

func (c *SearchCoordinator) criteriaLocked(page int) repository.SearchCriteria {
	u1, u2 := c.profiles[model.User1], c.profiles[model.User2]
	criteria := repository.SearchCriteria{
		User1Preferences: u1.Preferences.WireNames(),
		User2Preferences: u2.Preferences.WireNames(),
		User1MaxPrice:    copyPrice(u1.MaxPrice),
		User2MaxPrice:    copyPrice(u2.MaxPrice),
		SearchQuery:      strings.TrimSpace(c.query),
		SortBy:           c.sort.WireSortBy(),
		SortDirection:    c.sort.WireDirection(),
		Page:             page,
		PageSize:         c.cache.PageSize(),
	}
	if c.location != nil {
		l := *c.location
		criteria.Location = &l
	}
	return criteria
}

func copyPrice(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
