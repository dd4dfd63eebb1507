// Package config persists the ALICE-Presence configuration surface:
// max_distance, height_coupling, delta_clamp, batch_mix_ordering. It is
// reworked from the teacher's ConfigManager (go/config.go), keeping its
// load-or-default JSON-file persistence under a dotfile directory, guarded
// by a sync.RWMutex, but dropping the libp2p/node-specific fields.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/alice-net/presence/group"
)

// Surface is the persisted configuration surface.
type Surface struct {
	MaxDistance      float64 `json:"max_distance"`
	HeightCoupling   float64 `json:"height_coupling"`
	DeltaClamp       float64 `json:"delta_clamp"`
	BatchMixOrdering string  `json:"batch_mix_ordering"`
}

// Default returns the built-in configuration defaults.
func Default() Surface {
	return Surface{
		MaxDistance:      50.0,
		HeightCoupling:   0.1,
		DeltaClamp:       1.0,
		BatchMixOrdering: "ascending",
	}
}

// Ordering translates BatchMixOrdering into a group.Ordering, falling back
// to group.Ascending for any unrecognized value.
func (s Surface) Ordering() group.Ordering {
	if s.BatchMixOrdering == "insertion" {
		return group.Insertion
	}
	return group.Ascending
}

// Manager loads and saves a Surface from a JSON file, mirroring the
// teacher's ConfigManager.
type Manager struct {
	path string
	log  *zap.Logger

	mu      sync.RWMutex
	surface Surface
}

// NewManager returns a Manager persisting to dir/presence_config.json. If
// dir is empty, it defaults to $HOME/.alice-presence (falling back to the
// OS temp directory if the home directory or config directory cannot be
// determined or created, matching the teacher's fallback behavior).
func NewManager(dir string, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Warn("could not determine home directory, using temp dir", zap.Error(err))
			home = os.TempDir()
		}
		dir = filepath.Join(home, ".alice-presence")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warn("could not create config directory, using temp dir", zap.Error(err))
		dir = os.TempDir()
	}
	return &Manager{
		path:    filepath.Join(dir, "presence_config.json"),
		log:     log,
		surface: Default(),
	}
}

// Load reads the configuration file, returning defaults (and no error) if
// the file does not exist.
func (m *Manager) Load() (Surface, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(m.path); os.IsNotExist(err) {
		m.log.Info("no existing config file, using defaults", zap.String("path", m.path))
		return m.surface, nil
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		return Surface{}, fmt.Errorf("config: reading %s: %w", m.path, err)
	}
	var s Surface
	if err := json.Unmarshal(data, &s); err != nil {
		return Surface{}, fmt.Errorf("config: parsing %s: %w", m.path, err)
	}
	m.surface = s
	m.log.Info("loaded configuration", zap.String("path", m.path))
	return s, nil
}

// Save writes s to disk as the current configuration.
func (m *Manager) Save(s Surface) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", m.path, err)
	}
	m.surface = s
	m.log.Info("saved configuration", zap.String("path", m.path))
	return nil
}

// Current returns the in-memory configuration without touching disk.
func (m *Manager) Current() Surface {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.surface
}
