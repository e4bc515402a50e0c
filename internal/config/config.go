// Package config loads engine thresholds and policy tables from a YAML file
// and exposes them as immutable snapshots. Reload swaps the snapshot
// atomically and bumps a generation counter, replacing the old pattern of
// editing constants and restarting.
package config

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mkarlsson/surebet/internal/engine"
	"github.com/mkarlsson/surebet/internal/rank"
)

// File is the on-disk YAML shape. Absent fields fall back to the engine
// defaults.
type File struct {
	MinProfitPercent     float64           `yaml:"min_profit_percent"`
	OddsRatioCeiling     float64           `yaml:"odds_ratio_ceiling"`
	StalenessHours       float64           `yaml:"staleness_hours"`
	LineDependentMarkets []string          `yaml:"line_dependent_markets"`
	BookmakerAliases     map[string]string `yaml:"bookmaker_aliases"`
	AllowedRegions       []string          `yaml:"allowed_regions"`
	BookRegions          map[string]string `yaml:"book_regions"`
}

// Snapshot is one immutable view of the configuration.
type Snapshot struct {
	Generation     uint64
	Engine         engine.Config
	AllowedRegions map[rank.Region]bool
	BookRegions    map[string]rank.Region
}

// Provider owns the current snapshot.
type Provider struct {
	path    string
	current atomic.Pointer[Snapshot]
	gen     atomic.Uint64
}

// NewProvider loads the file once and fails fast on a broken config. An
// empty path yields a provider serving pure defaults.
func NewProvider(path string) (*Provider, error) {
	p := &Provider{path: path}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Snapshot returns the current configuration view. The returned value must
// be treated as read-only.
func (p *Provider) Snapshot() *Snapshot {
	return p.current.Load()
}

// Reload re-reads the file and publishes a new snapshot. On error the
// previous snapshot stays in place.
func (p *Provider) Reload() error {
	var f File
	if p.path != "" {
		raw, err := os.ReadFile(p.path)
		if err != nil {
			return fmt.Errorf("config: read %s: %w", p.path, err)
		}
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("config: parse %s: %w", p.path, err)
		}
	}

	snap := buildSnapshot(&f)
	snap.Generation = p.gen.Add(1)
	p.current.Store(snap)
	return nil
}

func buildSnapshot(f *File) *Snapshot {
	snap := &Snapshot{
		Engine: engine.Config{
			MinProfitPercent:     f.MinProfitPercent,
			OddsRatioCeiling:     f.OddsRatioCeiling,
			LineDependentMarkets: f.LineDependentMarkets,
			BookmakerAliases:     f.BookmakerAliases,
		},
	}
	if f.StalenessHours > 0 {
		snap.Engine.StalenessWindow = time.Duration(f.StalenessHours * float64(time.Hour))
	}

	if len(f.AllowedRegions) > 0 {
		snap.AllowedRegions = make(map[rank.Region]bool, len(f.AllowedRegions))
		for _, r := range f.AllowedRegions {
			snap.AllowedRegions[rank.Region(r)] = true
		}
	}
	if len(f.BookRegions) > 0 {
		snap.BookRegions = make(map[string]rank.Region, len(f.BookRegions))
		for book, r := range f.BookRegions {
			snap.BookRegions[book] = rank.Region(r)
		}
	}
	return snap
}
