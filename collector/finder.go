package collector

import (
	"os"
	"path/filepath"

	"github.com/ethereum-optimism/infra/op-licenses/types"
)

// LicenseNames lists the recognized license filenames in lookup order.
var LicenseNames = []string{"License", "LICENSE", "LICENSE.md", "LICENSE.txt"}

// DefaultVendorDir is the conventional vendor root checked by DiscoverVendorRoots.
const DefaultVendorDir = "vendor"

// Match describes where a package's license was found.
type Match struct {
	Prefix string // Ancestor (or the package itself) that holds the file
	Root   string // Vendor root
	Path   string // Full path of the license file
	Depth  int    // Number of segments stripped from the package path
}

// Finder locates license files beneath a fixed, ordered set of vendor roots.
type Finder struct {
	Roots []string
	Names []string
}

// NewFinder creates a Finder using the default license filenames.
func NewFinder(roots []string) *Finder {
	return &Finder{
		Roots: append([]string(nil), roots...),
		Names: LicenseNames,
	}
}

// Find searches for a license for pkg. For each prefix of pkg, longest first,
// every root is checked in order and within a root every name in order; the
// first existing regular file wins. ok is false when no prefix has a license.
func (f *Finder) Find(pkg string) (match Match, ok bool) {
	for depth, prefix := range types.Prefixes(pkg) {
		for _, root := range f.Roots {
			for _, name := range f.Names {
				candidate := filepath.Join(root, filepath.FromSlash(prefix), name)
				if isFile(candidate) {
					return Match{
						Prefix: prefix,
						Root:   root,
						Path:   candidate,
						Depth:  depth,
					}, true
				}
			}
		}
	}
	return Match{}, false
}

// isFile treats any stat failure as absence; read errors surface later when
// the matched file is opened.
func isFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// DiscoverVendorRoots returns the conventional vendor directory beneath dir if
// it exists. It is meant to be called once at startup.
func DiscoverVendorRoots(dir string) []string {
	vendor := filepath.Join(dir, DefaultVendorDir)
	info, err := os.Stat(vendor)
	if err != nil || !info.IsDir() {
		return nil
	}
	return []string{vendor}
}
