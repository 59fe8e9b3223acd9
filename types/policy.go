package types

// Policy is the on-disk configuration of the collector. It names packages that
// are skipped outright, licenses that are known up front, and additional vendor
// roots to search.
type Policy struct {
	Exceptions []string                 `yaml:"exceptions"`
	Licenses   map[string]SeededLicense `yaml:"licenses"`
	Vendor     []string                 `yaml:"vendor"`
}

// SeededLicense is a license provided by the policy instead of the vendor tree.
// Exactly one of Text and File should be set; File is resolved relative to the
// policy file.
type SeededLicense struct {
	Text string `yaml:"text"`
	File string `yaml:"file"`
}
