package remote

import (
	"context"
	"fmt"

	"casesync/internal/config"
	"casesync/internal/engine"
)

// NewClientFromConfig creates a Remote implementation based on the remote
// config type.
func NewClientFromConfig(ctx context.Context, cfg config.RemoteConfig) (engine.Remote, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryClient(cfg.PageSize), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem remote requires fs_root to be set")
		}
		return NewFilesystemClient(cfg.FSRoot, cfg.PageSize)
	case "s3":
		return NewS3Client(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown remote type: %s", cfg.Type)
	}
}
