package service

import (
	"context"
	"testing"

	"github.com/ikkim/dietprefs-client/internal/app/model"
	"github.com/ikkim/dietprefs-client/internal/app/repository"
	"github.com/ikkim/dietprefs-client/pkg/dietprefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigService_DefaultsBeforeRefresh(t *testing.T) {
	s := NewConfigService(newSpyRepository(), nil)

	assert.Equal(t, ConfigSourceDefault, s.Source())
	assert.Equal(t, model.DefaultAppConfig(), s.AppConfig())
	assert.Empty(t, s.PreferenceMetadata())
}

func TestConfigService_Refresh_Remote(t *testing.T) {
	repo := newSpyRepository()
	cfg := model.DefaultAppConfig()
	cfg.Version = "1.2.0"
	repo.config = &cfg
	repo.meta = model.PreferenceMetadata{"gmo_free": "GMO-free"}
	cache := repository.NewMemoryMetadataCache()

	s := NewConfigService(repo, cache)
	require.NoError(t, s.Refresh(context.Background()))

	assert.Equal(t, ConfigSourceRemote, s.Source())
	assert.Equal(t, "1.2.0", s.AppConfig().Version)
	assert.Equal(t, "GMO-free", s.PreferenceMetadata()["gmo_free"])

	cached, err := cache.LoadAppConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", cached.Version)
}

func TestConfigService_Refresh_FallsBackToCache(t *testing.T) {
	ctx := context.Background()
	cache := repository.NewMemoryMetadataCache()
	cfg := model.DefaultAppConfig()
	cfg.Version = "0.9.0"
	require.NoError(t, cache.SaveAppConfig(ctx, cfg))
	require.NoError(t, cache.SavePreferenceMetadata(ctx, model.PreferenceMetadata{"pork": "pork & ham"}))

	repo := newSpyRepository()
	repo.configErr = dietprefs.ErrNetworkError
	repo.metaErr = dietprefs.ErrNetworkError

	s := NewConfigService(repo, cache)
	err := s.Refresh(ctx)
	assert.ErrorIs(t, err, dietprefs.ErrNetworkError)

	assert.Equal(t, ConfigSourceCache, s.Source())
	assert.Equal(t, "0.9.0", s.AppConfig().Version)
	assert.Equal(t, "pork & ham", s.PreferenceMetadata()["pork"])
}

func TestConfigService_Refresh_NothingCached(t *testing.T) {
	repo := newSpyRepository()
	repo.configErr = dietprefs.ErrServerError
	repo.metaErr = dietprefs.ErrServerError

	s := NewConfigService(repo, nil)
	assert.Error(t, s.Refresh(context.Background()))
	assert.Equal(t, ConfigSourceDefault, s.Source())
	assert.Equal(t, model.DefaultAppConfig().Version, s.AppConfig().Version)
}

func TestConfigService_PriceOptions(t *testing.T) {
	repo := newSpyRepository()
	cfg := model.DefaultAppConfig()
	cfg.Pricing = model.PricingConfig{MinPrice: 5, MaxPrice: 20, PriceStep: 5, DefaultOptions: []float64{10}}
	repo.config = &cfg
	repo.meta = model.PreferenceMetadata{}

	s := NewConfigService(repo, nil)
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, []float64{5, 10, 15, 20}, s.PriceOptions())

	cfg.Pricing.PriceStep = 0
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, []float64{10}, s.PriceOptions())
}
