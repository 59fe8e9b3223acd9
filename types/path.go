package types

import "strings"

// Parent strips the last slash-delimited segment from a package path.
// A path without a slash has no parent and yields "".
func Parent(pkg string) string {
	idx := strings.LastIndex(pkg, "/")
	if idx < 0 {
		return ""
	}
	return pkg[:idx]
}

// Prefixes returns pkg followed by each of its ancestors, shortest last.
// The empty path has no prefixes.
func Prefixes(pkg string) []string {
	var prefixes []string
	for p := pkg; p != ""; p = Parent(p) {
		prefixes = append(prefixes, p)
	}
	return prefixes
}
