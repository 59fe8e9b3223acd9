package types

import "fmt"

// Format selects the report output format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// ValidFormats returns all supported report formats.
func ValidFormats() []Format {
	return []Format{FormatMarkdown, FormatHTML, FormatJSON}
}

// String returns the string representation of the format
func (f Format) String() string {
	return string(f)
}

// IsValid checks if the format is supported
func (f Format) IsValid() bool {
	for _, valid := range ValidFormats() {
		if f == valid {
			return true
		}
	}
	return false
}

// ParseFormat converts a string to a Format, rejecting unknown values.
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if !f.IsValid() {
		return "", fmt.Errorf("format must be one of %v, got %q", ValidFormats(), s)
	}
	return f, nil
}
