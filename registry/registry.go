package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"github.com/ethereum-optimism/infra/op-licenses/types"
)

// Registry holds the immutable collection policy: the exception set, the
// licenses seeded ahead of the vendor walk and any extra vendor roots.
type Registry struct {
	exact      map[string]struct{}
	patterns   []exceptionPattern
	seeded     map[string]string
	vendorDirs []string
}

type exceptionPattern struct {
	raw string
	g   glob.Glob
}

// Config contains registry configuration
type Config struct {
	Log        log.Logger
	PolicyFile string // Optional; an empty path yields an empty policy
}

// NewRegistry creates a new registry instance
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	policy := &types.Policy{}
	baseDir := "."
	if cfg.PolicyFile != "" {
		var err error
		policy, err = loadPolicy(cfg.PolicyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load policy: %w", err)
		}
		baseDir = filepath.Dir(cfg.PolicyFile)
	}

	r, err := newFromPolicy(policy, baseDir)
	if err != nil {
		return nil, err
	}

	cfg.Log.Debug("Registry loaded",
		"exceptions", len(r.exact)+len(r.patterns),
		"seeded", len(r.seeded),
		"vendor", len(r.vendorDirs))

	return r, nil
}

// NewFromPolicy builds a registry from an in-memory policy. Seeded license
// files are resolved relative to baseDir.
func NewFromPolicy(policy *types.Policy, baseDir string) (*Registry, error) {
	return newFromPolicy(policy, baseDir)
}

func newFromPolicy(policy *types.Policy, baseDir string) (*Registry, error) {
	r := &Registry{
		exact:  make(map[string]struct{}),
		seeded: make(map[string]string),
	}
	if policy == nil {
		return r, nil
	}

	for _, exc := range policy.Exceptions {
		exc = strings.TrimSpace(exc)
		if exc == "" {
			continue
		}
		if !isPattern(exc) {
			r.exact[exc] = struct{}{}
			continue
		}
		g, err := glob.Compile(exc, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exception pattern %q: %w", exc, err)
		}
		r.patterns = append(r.patterns, exceptionPattern{raw: exc, g: g})
	}

	for pkg, seeded := range policy.Licenses {
		text, err := resolveSeeded(pkg, seeded, baseDir)
		if err != nil {
			return nil, err
		}
		r.seeded[pkg] = text
	}

	for _, dir := range policy.Vendor {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(baseDir, dir)
		}
		r.vendorDirs = append(r.vendorDirs, dir)
	}

	return r, nil
}

// IsException reports whether pkg is excluded from license resolution, either
// by exact match or by one of the exception patterns.
func (r *Registry) IsException(pkg string) bool {
	if _, ok := r.exact[pkg]; ok {
		return true
	}
	for _, p := range r.patterns {
		if p.g.Match(pkg) {
			return true
		}
	}
	return false
}

// SeededLicenses returns a copy of the licenses provided by the policy.
func (r *Registry) SeededLicenses() map[string]string {
	out := make(map[string]string, len(r.seeded))
	for pkg, text := range r.seeded {
		out[pkg] = text
	}
	return out
}

// SeededPackages returns the packages with seeded licenses, sorted.
func (r *Registry) SeededPackages() []string {
	pkgs := make([]string, 0, len(r.seeded))
	for pkg := range r.seeded {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)
	return pkgs
}

// VendorDirs returns the additional vendor roots declared by the policy.
func (r *Registry) VendorDirs() []string {
	return append([]string(nil), r.vendorDirs...)
}

// loadPolicy loads a policy from a file
func loadPolicy(path string) (*types.Policy, error) {
	log.Debug("Reading policy file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}

	var policy types.Policy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("parsing policy file: %w", err)
	}

	return &policy, nil
}

func resolveSeeded(pkg string, seeded types.SeededLicense, baseDir string) (string, error) {
	switch {
	case seeded.Text != "" && seeded.File != "":
		return "", fmt.Errorf("seeded license for %s sets both text and file", pkg)
	case seeded.Text != "":
		return seeded.Text, nil
	case seeded.File != "":
		path := seeded.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading seeded license for %s: %w", pkg, err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("seeded license for %s has neither text nor file", pkg)
	}
}

func isPattern(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}
