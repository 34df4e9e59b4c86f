// Package config reads and writes the .gitalong.json configuration
// document that lives at the root of every managed working tree.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/douglaslassance/gitalong-go"
)

// Filename is the configuration document's name, relative to the
// working-tree root.
const Filename = ".gitalong.json"

// DefaultPullThreshold is the freshness window, in seconds, used when the
// configuration omits pull_threshold.
const DefaultPullThreshold = 60

// Configuration is the persisted, immutable-once-loaded setup for a managed
// repository.
type Configuration struct {
	StoreURL          string            `json:"store_url"`
	StoreHeaders      map[string]string `json:"store_headers,omitempty"`
	ModifyPermissions bool              `json:"modify_permissions,omitempty"`
	TrackBinaries     bool              `json:"track_binaries,omitempty"`
	TrackedExtensions []string          `json:"tracked_extensions,omitempty"`
	TrackUncommitted  bool              `json:"track_uncommitted,omitempty"`
	PullThreshold     int               `json:"pull_threshold,omitempty"`
}

// Path returns the absolute path to the configuration document under root.
func Path(root string) string {
	return filepath.Join(root, Filename)
}

// Load reads and validates the configuration document at root. Unknown
// keys in the document are ignored (encoding/json does this natively). A
// missing file is gitalong.ErrRepositoryNotSetup; a malformed document or
// an empty store_url is gitalong.ErrRepositoryInvalidConfig.
func Load(root string) (*Configuration, error) {
	data, err := os.ReadFile(Path(root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, gitalong.ErrRepositoryNotSetup
		}
		return nil, errors.Wrap(err, "reading configuration")
	}

	cfg := &Configuration{PullThreshold: DefaultPullThreshold}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(gitalong.ErrRepositoryInvalidConfig, err.Error())
	}
	if cfg.StoreURL == "" {
		return nil, errors.Wrap(gitalong.ErrRepositoryInvalidConfig, "store_url is required")
	}
	if cfg.PullThreshold <= 0 {
		cfg.PullThreshold = DefaultPullThreshold
	}
	return cfg, nil
}

// Save writes cfg to root, creating or overwriting the configuration
// document. Setup is idempotent: calling Save again with the same contents
// produces a byte-identical file.
func Save(root string, cfg *Configuration) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding configuration")
	}
	data = append(data, '\n')
	return os.WriteFile(Path(root), data, 0644)
}
