package service

import (
	"context"
	"sync"

	"github.com/ikkim/dietprefs-client/internal/app/model"
	"github.com/ikkim/dietprefs-client/internal/app/repository"
	apperrors "github.com/ikkim/dietprefs-client/internal/errors"
	"github.com/ikkim/dietprefs-client/pkg/logger"
)

// DetailSnapshot is the observable state of the vendor detail view.
type DetailSnapshot struct {
	Vendor        *model.Vendor    `json:"vendor,omitempty"`
	Items         []model.MenuItem `json:"items"`
	SelectedIndex int              `json:"selected_index"`
	Loading       bool             `json:"loading"`
	Error         string           `json:"error,omitempty"`
}

// VendorDetailSession holds one vendor's menu and the optimistic vote
// bookkeeping for it. SelectedIndex 0 is the vendor header and 1..N are
// the items.
type VendorDetailSession struct {
	repo repository.VendorRepository
	log  *logger.Logger

	mu         sync.Mutex
	vendor     *model.Vendor
	items      []model.MenuItem
	selected   int
	loading    bool
	errMsg     string
	generation uint64

	listenerMu   sync.Mutex
	listeners    map[int]func(DetailSnapshot)
	nextListener int
}

func NewVendorDetailSession(repo repository.VendorRepository) *VendorDetailSession {
	return &VendorDetailSession{
		repo:      repo,
		log:       logger.Component("vendor-detail"),
		listeners: map[int]func(DetailSnapshot){},
	}
}

// Open loads vendor's menu annotated with criteria. On failure the menu is
// emptied and the error published. Opening another vendor while a load is
// in flight discards the older response.
func (s *VendorDetailSession) Open(ctx context.Context, vendor model.Vendor, criteria repository.ItemCriteria) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.vendor = &vendor
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()
	s.publish()

	items, err := s.repo.GetVendorItems(ctx, vendor.ID, criteria)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return ErrStaleResponse
	}
	s.loading = false
	if err != nil {
		s.items = nil
		s.selected = 0
		s.errMsg = apperrors.ParseError(err, "menu items").Message
		s.mu.Unlock()
		s.publish()
		return err
	}
	s.items = items
	s.selected = 0
	s.mu.Unlock()

	s.log.Debug("Menu loaded", map[string]interface{}{
		"vendor_id": vendor.ID,
		"items":     len(items),
	})
	s.publish()
	return nil
}

// MenuItems returns a copy of the loaded items.
func (s *VendorDetailSession) MenuItems() []model.MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.MenuItem{}, s.items...)
}

func (s *VendorDetailSession) SelectedIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// UpdateSelectedIndex follows the scroll position, clamped to
// [0, len(items)]. It returns the stored index.
func (s *VendorDetailSession) UpdateSelectedIndex(i int) int {
	s.mu.Lock()
	if i < 0 {
		i = 0
	}
	if i > len(s.items) {
		i = len(s.items)
	}
	s.selected = i
	s.mu.Unlock()

	s.publish()
	return i
}

// Vote sends a vote and, once acknowledged, applies it to the local copy
// of the item. A failed vote changes nothing locally.
func (s *VendorDetailSession) Vote(ctx context.Context, itemID int, vote model.VoteType) error {
	if _, err := model.ParseVoteType(string(vote)); err != nil {
		return err
	}

	s.mu.Lock()
	found := false
	for _, it := range s.items {
		if it.ID == itemID {
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return ErrItemNotFound
	}

	if err := s.repo.VoteOnItem(ctx, itemID, vote); err != nil {
		s.mu.Lock()
		s.errMsg = apperrors.ParseError(err, "vote").Message
		s.mu.Unlock()
		s.publish()
		return err
	}

	s.mu.Lock()
	updated := make([]model.MenuItem, len(s.items))
	for i, it := range s.items {
		if it.ID == itemID {
			it.Rating = it.Rating.ApplyVote(vote)
		}
		updated[i] = it
	}
	s.items = updated
	s.mu.Unlock()

	s.log.Info("Vote recorded", map[string]interface{}{
		"item_id": itemID,
		"vote":    vote,
	})
	s.publish()
	return nil
}

func (s *VendorDetailSession) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
	s.publish()
}

func (s *VendorDetailSession) Snapshot() DetailSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := DetailSnapshot{
		Items:         append([]model.MenuItem{}, s.items...),
		SelectedIndex: s.selected,
		Loading:       s.loading,
		Error:         s.errMsg,
	}
	if s.vendor != nil {
		v := *s.vendor
		snap.Vendor = &v
	}
	return snap
}

// Subscribe registers fn for detail state changes and returns its remover.
func (s *VendorDetailSession) Subscribe(fn func(DetailSnapshot)) func() {
	s.listenerMu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.listenerMu.Unlock()

	return func() {
		s.listenerMu.Lock()
		delete(s.listeners, id)
		s.listenerMu.Unlock()
	}
}

func (s *VendorDetailSession) publish() {
	s.listenerMu.Lock()
	fns := make([]func(DetailSnapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenerMu.Unlock()
	if len(fns) == 0 {
		return
	}

	snap := s.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}
