package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/trielab/go-hamt4/store"
)

// loadStoreConfig builds a store.Config from, in priority order: built-in
// defaults, an optional config file, HAMTSTORE_* environment variables,
// and command line flags.
func loadStoreConfig() (*store.Config, error) {
	v := viper.New()

	def := store.DefaultConfig()
	v.SetDefault("backend", "pebble")
	v.SetDefault("path", "")
	v.SetDefault("compression", def.Compression)
	v.SetDefault("cache_size", def.CacheSize)
	v.SetDefault("cache_ttl", def.CacheTTL)
	v.SetDefault("negative_cache_size", def.NegativeCacheSize)
	v.SetDefault("negative_cache_ttl", def.NegativeCacheTTL)
	v.SetDefault("open_files_limit", def.OpenFilesLimit)
	v.SetDefault("block_cache_size", def.BlockCacheSize)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	v.SetEnvPrefix("HAMTSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Flags beat file and environment.
	if backendType != "" {
		v.Set("backend", backendType)
	}
	if storePath != "" {
		v.Set("path", storePath)
	}
	if compression != "" {
		v.Set("compression", compression)
	}

	cfg := &store.Config{
		BackendType:       v.GetString("backend"),
		Path:              v.GetString("path"),
		CreateIfMissing:   false,
		CacheSize:         v.GetInt("cache_size"),
		CacheTTL:          v.GetDuration("cache_ttl"),
		NegativeCacheSize: v.GetInt("negative_cache_size"),
		NegativeCacheTTL:  v.GetDuration("negative_cache_ttl"),
		Compression:       v.GetString("compression"),
		OpenFilesLimit:    v.GetInt("open_files_limit"),
		BlockCacheSize:    v.GetInt64("block_cache_size"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore() (*store.DB, error) {
	cfg, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg)
}
