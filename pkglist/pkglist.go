// Package pkglist reads the package lists fed to the collector and filters
// out packages that belong to the module being audited.
package pkglist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

// maxLineBytes bounds a single input line; import paths are far shorter.
const maxLineBytes = 1024 * 1024

// Read returns the package paths in r, one per line, with trailing whitespace
// stripped. Blank lines are ignored. Order and duplicates are preserved.
func Read(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)

	var pkgs []string
	for scanner.Scan() {
		pkg := strings.TrimRightFunc(scanner.Text(), unicode.IsSpace)
		if pkg == "" {
			continue
		}
		pkgs = append(pkgs, pkg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read package list: %w", err)
	}
	return pkgs, nil
}

// ReadFile reads a package list from path, or from stdin when path is "" or "-".
func ReadFile(path string, stdin io.Reader) ([]string, error) {
	if path == "" || path == "-" {
		return Read(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open package list: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Invalid returns the entries of pkgs that are not well-formed import paths,
// paired with the reason.
func Invalid(pkgs []string) map[string]error {
	invalid := make(map[string]error)
	for _, pkg := range pkgs {
		if err := module.CheckImportPath(pkg); err != nil {
			invalid[pkg] = err
		}
	}
	return invalid
}

// ModuleFilter matches packages that live inside a single Go module.
type ModuleFilter struct {
	path string
}

// NewModuleFilter builds a filter for the module declared in the go.mod at goModPath.
func NewModuleFilter(goModPath string) (*ModuleFilter, error) {
	content, err := os.ReadFile(goModPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read go.mod: %w", err)
	}

	modFile, err := modfile.ParseLax(goModPath, content, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod: %w", err)
	}

	if modFile.Module == nil || modFile.Module.Mod.Path == "" {
		return nil, fmt.Errorf("could not find module name in go.mod")
	}

	return &ModuleFilter{path: modFile.Module.Mod.Path}, nil
}

// Path returns the module path.
func (f *ModuleFilter) Path() string {
	if f == nil {
		return ""
	}
	return f.path
}

// Contains reports whether pkg is the module itself or one of its packages.
// A nil filter contains nothing.
func (f *ModuleFilter) Contains(pkg string) bool {
	if f == nil || f.path == "" {
		return false
	}
	return pkg == f.path || strings.HasPrefix(pkg, f.path+"/")
}
