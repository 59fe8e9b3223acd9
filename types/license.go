package types

import (
	"encoding/hex"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
)

// LicenseRecord is the license text resolved for a single package.
type LicenseRecord struct {
	Package    string // Package path as it appeared in the input
	LicensedBy string // Prefix of Package under which the license file was found
	Root       string // Vendor root the file was found in
	Source     string // Path of the license file that was read
	Text       string // Raw license text
	Seeded     bool   // Text came from the policy rather than the vendor tree
}

// TrimmedText returns the license text without leading or trailing whitespace.
func (r *LicenseRecord) TrimmedText() string {
	return strings.TrimSpace(r.Text)
}

// Digest returns the hex encoded BLAKE3 sum of the trimmed license text.
func (r *LicenseRecord) Digest() string {
	sum := blake3.Sum256([]byte(r.TrimmedText()))
	return hex.EncodeToString(sum[:])
}

// Inherited reports whether the license was found at an ancestor of the package.
func (r *LicenseRecord) Inherited() bool {
	return r.LicensedBy != "" && r.LicensedBy != r.Package
}

// LicenseSet maps package paths to their license records. It is built once by
// the collector and treated as read-only afterwards.
type LicenseSet struct {
	records map[string]*LicenseRecord
}

// NewLicenseSet creates an empty LicenseSet.
func NewLicenseSet() *LicenseSet {
	return &LicenseSet{records: make(map[string]*LicenseRecord)}
}

// Add stores a record, replacing any previous record for the same package.
func (s *LicenseSet) Add(record *LicenseRecord) {
	s.records[record.Package] = record
}

// Has reports whether a record exists for pkg.
func (s *LicenseSet) Has(pkg string) bool {
	_, ok := s.records[pkg]
	return ok
}

// Get returns the record for pkg.
func (s *LicenseSet) Get(pkg string) (*LicenseRecord, bool) {
	r, ok := s.records[pkg]
	return r, ok
}

// Len returns the number of records.
func (s *LicenseSet) Len() int {
	return len(s.records)
}

// Packages returns the package paths in lexicographic order.
func (s *LicenseSet) Packages() []string {
	pkgs := make([]string, 0, len(s.records))
	for pkg := range s.records {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)
	return pkgs
}

// Records returns the records ordered by package path.
func (s *LicenseSet) Records() []*LicenseRecord {
	pkgs := s.Packages()
	records := make([]*LicenseRecord, 0, len(pkgs))
	for _, pkg := range pkgs {
		records = append(records, s.records[pkg])
	}
	return records
}

// DistinctLicenses counts the number of different license texts in the set.
func (s *LicenseSet) DistinctLicenses() int {
	seen := make(map[string]struct{})
	for _, r := range s.records {
		seen[r.Digest()] = struct{}{}
	}
	return len(seen)
}
