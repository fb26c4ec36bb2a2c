package service

import (
	"context"
	"errors"
	"sync"

	"github.com/ikkim/dietprefs-client/internal/app/model"
	"github.com/ikkim/dietprefs-client/internal/app/repository"
	"github.com/ikkim/dietprefs-client/pkg/logger"
)

// ConfigSource says where the currently held configuration came from.
type ConfigSource string

const (
	ConfigSourceDefault ConfigSource = "default"
	ConfigSourceCache   ConfigSource = "cache"
	ConfigSourceRemote  ConfigSource = "remote"
)

// ConfigService holds the backend business configuration and preference
// labels. Until a refresh succeeds it serves the last cached copy, and
// before that the static defaults.
type ConfigService interface {
	Refresh(ctx context.Context) error
	AppConfig() model.AppConfig
	PreferenceMetadata() model.PreferenceMetadata
	PriceOptions() []float64
	Source() ConfigSource
}

type configService struct {
	repo  repository.VendorRepository
	cache repository.MetadataCache
	log   *logger.Logger

	mu       sync.RWMutex
	cfg      model.AppConfig
	metadata model.PreferenceMetadata
	source   ConfigSource
}

func NewConfigService(repo repository.VendorRepository, cache repository.MetadataCache) ConfigService {
	if cache == nil {
		cache = repository.NewMemoryMetadataCache()
	}
	return &configService{
		repo:     repo,
		cache:    cache,
		log:      logger.Component("config-service"),
		cfg:      model.DefaultAppConfig(),
		metadata: model.PreferenceMetadata{},
		source:   ConfigSourceDefault,
	}
}

// Refresh fetches config and preference labels. Remote failures are logged
// and the cached copies are loaded instead; the returned error is the
// remote failure so callers can report it, but the service stays usable.
func (s *configService) Refresh(ctx context.Context) error {
	var remoteErr error

	cfg, err := s.repo.GetConfig(ctx)
	if err == nil {
		if saveErr := s.cache.SaveAppConfig(ctx, *cfg); saveErr != nil {
			s.log.Warn("Failed to cache app config", map[string]interface{}{"error": saveErr.Error()})
		}
	} else {
		remoteErr = err
		cfg = s.loadCachedConfig(ctx)
	}

	meta, err := s.repo.GetPreferenceMetadata(ctx)
	if err == nil {
		if saveErr := s.cache.SavePreferenceMetadata(ctx, meta); saveErr != nil {
			s.log.Warn("Failed to cache preference metadata", map[string]interface{}{"error": saveErr.Error()})
		}
	} else {
		remoteErr = errors.Join(remoteErr, err)
		meta = s.loadCachedMetadata(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case remoteErr == nil:
		s.source = ConfigSourceRemote
	case cfg != nil || meta != nil:
		s.source = ConfigSourceCache
	}
	if cfg != nil {
		s.cfg = *cfg
	}
	if meta != nil {
		s.metadata = meta
	}

	s.log.Info("Configuration refreshed", map[string]interface{}{
		"source":        s.source,
		"version":       s.cfg.Version,
		"label_entries": len(s.metadata),
	})
	return remoteErr
}

func (s *configService) loadCachedConfig(ctx context.Context) *model.AppConfig {
	cfg, err := s.cache.LoadAppConfig(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) {
			s.log.Warn("Failed to load cached app config", map[string]interface{}{"error": err.Error()})
		}
		return nil
	}
	return cfg
}

func (s *configService) loadCachedMetadata(ctx context.Context) model.PreferenceMetadata {
	meta, err := s.cache.LoadPreferenceMetadata(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrCacheMiss) {
			s.log.Warn("Failed to load cached preference metadata", map[string]interface{}{"error": err.Error()})
		}
		return nil
	}
	return meta
}

func (s *configService) AppConfig() model.AppConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *configService) PreferenceMetadata() model.PreferenceMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(model.PreferenceMetadata, len(s.metadata))
	for k, v := range s.metadata {
		out[k] = v
	}
	return out
}

func (s *configService) Source() ConfigSource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// PriceOptions enumerates min..max by step, falling back to the default
// options when the range is unusable.
func (s *configService) PriceOptions() []float64 {
	p := s.AppConfig().Pricing
	if p.PriceStep <= 0 || p.MaxPrice < p.MinPrice {
		return append([]float64(nil), p.DefaultOptions...)
	}
	var out []float64
	for i := 0; ; i++ {
		v := p.MinPrice + float64(i)*p.PriceStep
		if v > p.MaxPrice+1e-9 {
			break
		}
		out = append(out, v)
	}
	return out
}

// LocationProvider supplies the device location. Returning an error (for
// example permission denied) means no location is available.
type LocationProvider interface {
	CurrentLocation(ctx context.Context) (*model.Location, error)
}

type staticLocationProvider struct {
	loc *model.Location
}

// NewStaticLocationProvider always reports loc; nil means "no location".
func NewStaticLocationProvider(loc *model.Location) LocationProvider {
	return &staticLocationProvider{loc: loc}
}

func (p *staticLocationProvider) CurrentLocation(context.Context) (*model.Location, error) {
	if p.loc == nil {
		return nil, nil
	}
	l := *p.loc
	return &l, nil
}
