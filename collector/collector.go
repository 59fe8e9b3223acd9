package collector

import (
	"context"
	"errors"
	"os"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-licenses/metrics"
	"github.com/ethereum-optimism/infra/op-licenses/types"
)

// Policy is the read-only view of the collection policy used by the Collector.
type Policy interface {
	IsException(pkg string) bool
	SeededLicenses() map[string]string
}

// ModuleMatcher reports whether a package belongs to the module being audited.
type ModuleMatcher interface {
	Contains(pkg string) bool
}

// Config holds the Collector dependencies.
type Config struct {
	Log     log.Logger
	Finder  *Finder
	Policy  Policy           // Optional
	Module  ModuleMatcher    // Optional
	Metrics metrics.Recorder // Optional
}

// Collector resolves the license of every package in a list.
type Collector struct {
	log     log.Logger
	finder  *Finder
	policy  Policy
	module  ModuleMatcher
	metrics metrics.Recorder
}

// New creates a Collector.
func New(cfg Config) (*Collector, error) {
	if cfg.Finder == nil {
		return nil, errors.New("finder is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NoopMetrics{}
	}
	return &Collector{
		log:     cfg.Log,
		finder:  cfg.Finder,
		policy:  cfg.Policy,
		module:  cfg.Module,
		metrics: cfg.Metrics,
	}, nil
}

// Collect resolves a license for each package. Packages in the exception set
// or in the audited module are skipped, and seeded licenses are included as
// given. The first package without a license aborts collection with a
// *MissingLicenseError; a license that cannot be read aborts with a *ReadError.
// On error no partial set is returned.
func (c *Collector) Collect(ctx context.Context, packages []string) (*types.LicenseSet, error) {
	set := types.NewLicenseSet()

	if c.policy != nil {
		for pkg, text := range c.policy.SeededLicenses() {
			set.Add(&types.LicenseRecord{
				Package:    pkg,
				LicensedBy: pkg,
				Text:       text,
				Seeded:     true,
			})
		}
	}

	for _, pkg := range packages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if c.policy != nil && c.policy.IsException(pkg) {
			c.log.Debug("Skipping exception", "package", pkg)
			c.metrics.RecordSkipped(metrics.SkipException)
			continue
		}
		if c.module != nil && c.module.Contains(pkg) {
			c.log.Debug("Skipping package of audited module", "package", pkg)
			c.metrics.RecordSkipped(metrics.SkipModule)
			continue
		}
		if existing, ok := set.Get(pkg); ok {
			if existing.Seeded {
				c.metrics.RecordSkipped(metrics.SkipSeeded)
			}
			continue
		}

		record, err := c.resolve(pkg)
		if err != nil {
			return nil, err
		}
		set.Add(record)
	}

	c.log.Info("Collected licenses", "packages", set.Len(), "distinct", set.DistinctLicenses())
	return set, nil
}

func (c *Collector) resolve(pkg string) (*types.LicenseRecord, error) {
	match, ok := c.finder.Find(pkg)
	if !ok {
		c.log.Error("No license found", "package", pkg)
		c.metrics.RecordMissing()
		return nil, &MissingLicenseError{Package: pkg}
	}

	data, err := os.ReadFile(match.Path)
	if err != nil {
		c.metrics.RecordError("read_license", err)
		return nil, &ReadError{Package: pkg, Path: match.Path, Err: err}
	}

	c.log.Debug("Found license", "package", pkg, "licensed_by", match.Prefix, "path", match.Path)
	c.metrics.RecordResolved(match.Depth, match.Depth > 0)

	return &types.LicenseRecord{
		Package:    pkg,
		LicensedBy: match.Prefix,
		Root:       match.Root,
		Source:     match.Path,
		Text:       string(data),
	}, nil
}
