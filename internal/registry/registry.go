package registry

import (
	"fmt"

	"github.com/google/uuid"
)

// Registry is the protocol's global configuration: administrator identity,
// shard count, supported asset list, and the aggregate loan counter. Created
// once by Initialize; never destroyed. ShardCount is immutable after
// creation — routing stability depends on it.
type Registry struct {
	Admin            uuid.UUID `json:"admin"`
	ShardCount       uint64    `json:"shard_count"`
	SupportedAssets  []string  `json:"supported_assets"`
	TotalLoansIssued uint64    `json:"total_loans_issued"`
}

// Manager owns the registry singleton with init-once semantics.
// Not thread-safe — only accessed from the single-threaded engine.
type Manager struct {
	reg *Registry
}

func NewManager() *Manager {
	return &Manager{}
}

// Init creates the registry. Fails if it already exists or the parameters
// are degenerate.
func (m *Manager) Init(admin uuid.UUID, shardCount uint64, supportedAssets []string) (*Registry, error) {
	if m.reg != nil {
		return nil, fmt.Errorf("registry already initialized")
	}
	if shardCount == 0 {
		return nil, fmt.Errorf("shard count must be positive")
	}
	if len(supportedAssets) == 0 {
		return nil, fmt.Errorf("no supported assets provided")
	}

	seen := make(map[string]bool, len(supportedAssets))
	assets := make([]string, 0, len(supportedAssets))
	for _, a := range supportedAssets {
		if a == "" {
			return nil, fmt.Errorf("empty asset identifier")
		}
		if seen[a] {
			return nil, fmt.Errorf("duplicate asset %q", a)
		}
		seen[a] = true
		assets = append(assets, a)
	}

	m.reg = &Registry{
		Admin:           admin,
		ShardCount:      shardCount,
		SupportedAssets: assets,
	}
	return m.reg, nil
}

// Get returns the registry, or nil before initialization.
func (m *Manager) Get() *Registry {
	return m.reg
}

// Restore installs a registry loaded from a snapshot.
func (m *Manager) Restore(reg *Registry) {
	m.reg = reg
}

// IsSupported reports whether the asset is on the supported list.
func (r *Registry) IsSupported(asset string) bool {
	for _, a := range r.SupportedAssets {
		if a == asset {
			return true
		}
	}
	return false
}

// IncrementLoans bumps the aggregate loan counter. Informational only —
// matching logic never reads it.
func (r *Registry) IncrementLoans() {
	r.TotalLoansIssued++
}
