package service

import (
	"fmt"
	"strings"

	"github.com/ikkim/dietprefs-client/internal/app/model"
)

// MetadataSource provides backend-supplied display labels keyed by wire name.
type MetadataSource interface {
	PreferenceMetadata() model.PreferenceMetadata
}

// DisplayService formats filter summaries such as
// "vegetarian, gluten-free, under $15".
type DisplayService interface {
	DisplayName(pref model.Preference) string
	BuildDisplayText(prefs model.PreferenceSet, maxPrice *float64) string
}

type displayService struct {
	metadata MetadataSource
}

// NewDisplayService accepts a nil source, in which case only the static
// catalog labels are used.
func NewDisplayService(metadata MetadataSource) DisplayService {
	return &displayService{metadata: metadata}
}

// DisplayName checks the backend label first and falls back to the static
// catalog label. The order matters for offline behaviour.
func (s *displayService) DisplayName(pref model.Preference) string {
	if s.metadata != nil {
		if label, ok := s.metadata.PreferenceMetadata()[pref.WireName]; ok && label != "" {
			return label
		}
	}
	return pref.DisplayName
}

func (s *displayService) BuildDisplayText(prefs model.PreferenceSet, maxPrice *float64) string {
	parts := make([]string, 0, prefs.Len()+1)
	for _, p := range prefs.Sorted() {
		if p == model.LowPrice {
			continue
		}
		parts = append(parts, s.DisplayName(p))
	}
	if maxPrice != nil {
		parts = append(parts, fmt.Sprintf("under $%.0f", *maxPrice))
	}
	return strings.Join(parts, ", ")
}
