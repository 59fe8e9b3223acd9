// Package collector resolves a license file for each imported package.
//
// The main components are:
//   - Finder: walks a package path and its ancestors across the vendor roots
//     looking for a recognized license file
//   - Collector: applies the exception policy, runs the Finder for every input
//     package and gathers the results into a types.LicenseSet
//
// Collection is all-or-nothing: the first package without a license aborts the
// run and no LicenseSet is returned.
package collector
