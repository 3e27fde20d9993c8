package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// CatalogConfig controls rule-catalog snapshot refresh and quote limits.
// It is loaded from catalog.yml and hot-reloaded on change.
type CatalogConfig struct {
	RefreshInterval       time.Duration `mapstructure:"refreshInterval"`
	DefaultPriorityWeight int32         `mapstructure:"defaultPriorityWeight"`
	QuoteRatePerSecond    int           `mapstructure:"quoteRatePerSecond"`
	QuoteBurst            int           `mapstructure:"quoteBurst"`
	CreditLockTTL         time.Duration `mapstructure:"creditLockTTL"`
}

func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		RefreshInterval:       30 * time.Second,
		DefaultPriorityWeight: 10,
		QuoteRatePerSecond:    200,
		QuoteBurst:            400,
		CreditLockTTL:         5 * time.Second,
	}
}

type CatalogConfigHolder struct {
	current atomic.Value // holds CatalogConfig
}

func NewCatalogConfigHolder() (*CatalogConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("catalog")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/fareway/config")
	v.AddConfigPath("/etc/fareway")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FAREWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultCatalogConfig()
	v.SetDefault("catalog.refreshInterval", defaults.RefreshInterval)
	v.SetDefault("catalog.defaultPriorityWeight", defaults.DefaultPriorityWeight)
	v.SetDefault("catalog.quoteRatePerSecond", defaults.QuoteRatePerSecond)
	v.SetDefault("catalog.quoteBurst", defaults.QuoteBurst)
	v.SetDefault("catalog.creditLockTTL", defaults.CreditLockTTL)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg CatalogConfig
	if err := v.UnmarshalKey("catalog", &cfg); err != nil {
		return nil, err
	}
	if err := validateCatalogConfig(cfg); err != nil {
		return nil, err
	}

	holder := &CatalogConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated CatalogConfig
		if err := v.UnmarshalKey("catalog", &updated); err != nil {
			log.Printf("[catalog-config] reload failed: %v", err)
			return
		}
		if err := validateCatalogConfig(updated); err != nil {
			log.Printf("[catalog-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[catalog-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *CatalogConfigHolder) Current() CatalogConfig {
	cfg, ok := h.current.Load().(CatalogConfig)
	if !ok {
		return DefaultCatalogConfig()
	}
	return cfg
}

func validateCatalogConfig(cfg CatalogConfig) error {
	if cfg.RefreshInterval <= 0 {
		return errors.New("catalog.refreshInterval must be positive")
	}
	if cfg.DefaultPriorityWeight <= 0 {
		return errors.New("catalog.defaultPriorityWeight must be positive")
	}
	if cfg.QuoteRatePerSecond < 0 || cfg.QuoteBurst < 0 {
		return errors.New("catalog quote limits must not be negative")
	}
	if cfg.CreditLockTTL <= 0 {
		return errors.New("catalog.creditLockTTL must be positive")
	}
	return nil
}
