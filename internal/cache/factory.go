package cache

import (
	"fmt"

	"casesync/internal/config"
	"casesync/internal/encryption"
	"casesync/internal/engine"
)

// NewCacheFromConfig creates the appropriate ContentCache based on configuration.
// Returns a nil cache for type "none" — the engine treats a nil cache as
// "do not retain content".
func NewCacheFromConfig(cfg *config.Config) (engine.ContentCache, error) {
	switch cfg.Cache.Type {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryCache(), nil
	case "filesystem":
		var encryptor encryption.Encryptor
		if cfg.Cache.Encrypted {
			encryptor = encryption.NewAgeEncryptor(cfg.Encryption)
		}
		return NewFilesystemCache(cfg.Cache.Dir, encryptor)
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.Cache.Type)
	}
}
