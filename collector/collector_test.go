package collector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/ethereum-optimism/optimism/op-service/testlog"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-licenses/metrics"
)

type mockPolicy struct {
	exceptions map[string]bool
	seeded     map[string]string
}

func (p *mockPolicy) IsException(pkg string) bool       { return p.exceptions[pkg] }
func (p *mockPolicy) SeededLicenses() map[string]string { return p.seeded }

type prefixModule string

func (m prefixModule) Contains(pkg string) bool {
	return pkg == string(m) || strings.HasPrefix(pkg, string(m)+"/")
}

// MockRecorder is a mock implementation of the metrics.Recorder interface
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordResolved(depth int, inherited bool) { m.Called(depth, inherited) }
func (m *MockRecorder) RecordSkipped(reason string)              { m.Called(reason) }
func (m *MockRecorder) RecordMissing()                           { m.Called() }
func (m *MockRecorder) RecordError(label string, err error)      { m.Called(label, err) }
func (m *MockRecorder) RecordRun(status string, packages int)    { m.Called(status, packages) }

func newTestCollector(t *testing.T, roots []string, policy Policy, module ModuleMatcher, rec metrics.Recorder) *Collector {
	t.Helper()
	c, err := New(Config{
		Log:     testlog.Logger(t, log.LevelInfo),
		Finder:  NewFinder(roots),
		Policy:  policy,
		Module:  module,
		Metrics: rec,
	})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresFinder(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finder is required")
}

func TestCollect_ParentLicenseAttributedToChild(t *testing.T) {
	vendor := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(vendor, "foo", "bar", "baz"), 0755))
	writeLicense(t, vendor, "foo/bar", "LICENSE", "\n  Foo Bar License  \n")
	writeLicense(t, vendor, "qux", "License", "Qux License\n")

	c := newTestCollector(t, []string{vendor}, nil, nil, nil)
	set, err := c.Collect(context.Background(), []string{"foo/bar/baz", "qux"})
	require.NoError(t, err)

	assert.Equal(t, []string{"foo/bar/baz", "qux"}, set.Packages())
	assert.False(t, set.Has("foo/bar"), "license is recorded under the original package only")

	rec, ok := set.Get("foo/bar/baz")
	require.True(t, ok)
	assert.Equal(t, "foo/bar", rec.LicensedBy)
	assert.Equal(t, "Foo Bar License", rec.TrimmedText())
	assert.True(t, rec.Inherited())
}

func TestCollect_MissingLicenseAborts(t *testing.T) {
	vendor := t.TempDir()
	writeLicense(t, vendor, "known", "LICENSE", "ok")

	rec := new(MockRecorder)
	rec.On("RecordResolved", 0, false).Return()
	rec.On("RecordMissing").Return()

	c := newTestCollector(t, []string{vendor}, nil, nil, rec)
	set, err := c.Collect(context.Background(), []string{"known", "unknown/pkg", "never/reached"})
	require.Error(t, err)
	assert.Nil(t, set)

	var missing *MissingLicenseError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "unknown/pkg", missing.Package)
	assert.Contains(t, err.Error(), "unknown/pkg")
	assert.True(t, errors.Is(err, ErrNoLicense))

	rec.AssertExpectations(t)
	rec.AssertNumberOfCalls(t, "RecordMissing", 1)
}

func TestCollect_Exceptions(t *testing.T) {
	vendor := t.TempDir()
	writeLicense(t, vendor, "licensed", "LICENSE", "L")

	rec := new(MockRecorder)
	rec.On("RecordSkipped", metrics.SkipException).Return()
	rec.On("RecordResolved", 0, false).Return()

	policy := &mockPolicy{exceptions: map[string]bool{"unlicensed/internal": true}}
	c := newTestCollector(t, []string{vendor}, policy, nil, rec)

	set, err := c.Collect(context.Background(), []string{"unlicensed/internal", "licensed"})
	require.NoError(t, err)
	assert.Equal(t, []string{"licensed"}, set.Packages())
	rec.AssertExpectations(t)
}

func TestCollect_SeededLicenses(t *testing.T) {
	vendor := t.TempDir()
	writeLicense(t, vendor, "seeded/pkg", "LICENSE", "from vendor")

	policy := &mockPolicy{
		exceptions: map[string]bool{"odd/pkg": true},
		seeded: map[string]string{
			"odd/pkg":    "Odd License",
			"seeded/pkg": "Seeded License",
		},
	}
	c := newTestCollector(t, []string{vendor}, policy, nil, nil)

	set, err := c.Collect(context.Background(), []string{"odd/pkg", "seeded/pkg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"odd/pkg", "seeded/pkg"}, set.Packages())

	rec, _ := set.Get("seeded/pkg")
	assert.True(t, rec.Seeded)
	assert.Equal(t, "Seeded License", rec.Text, "seeded licenses are not replaced by the vendor tree")

	// Seeded licenses are reported even when not listed in the input
	set, err = c.Collect(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
}

func TestCollect_SkipsAuditedModule(t *testing.T) {
	vendor := t.TempDir()
	writeLicense(t, vendor, "github.com/dep/lib", "LICENSE", "dep")

	c := newTestCollector(t, []string{vendor}, nil, prefixModule("github.com/acme/tool"), nil)
	set, err := c.Collect(context.Background(), []string{
		"github.com/acme/tool",
		"github.com/acme/tool/internal/x",
		"github.com/dep/lib",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"github.com/dep/lib"}, set.Packages())
}

func TestCollect_InputOrderDoesNotMatter(t *testing.T) {
	vendor := t.TempDir()
	for _, pkg := range []string{"c", "a", "b/x"} {
		writeLicense(t, vendor, pkg, "LICENSE", pkg)
	}

	c := newTestCollector(t, []string{vendor}, nil, nil, nil)
	first, err := c.Collect(context.Background(), []string{"c", "b/x", "a", "c"})
	require.NoError(t, err)
	second, err := c.Collect(context.Background(), []string{"a", "c", "b/x"})
	require.NoError(t, err)

	assert.Equal(t, first.Packages(), second.Packages())
	assert.Equal(t, []string{"a", "b/x", "c"}, first.Packages())
}

func TestCollect_ReadError(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced")
	}
	vendor := t.TempDir()
	path := writeLicense(t, vendor, "locked", "LICENSE", "secret")
	require.NoError(t, os.Chmod(path, 0000))
	t.Cleanup(func() { _ = os.Chmod(path, 0644) })

	c := newTestCollector(t, []string{vendor}, nil, nil, nil)
	_, err := c.Collect(context.Background(), []string{"locked"})
	require.Error(t, err)

	var readErr *ReadError
	require.True(t, errors.As(err, &readErr))
	assert.Equal(t, "locked", readErr.Package)
	assert.True(t, errors.Is(err, os.ErrPermission))
}

func TestCollect_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestCollector(t, nil, nil, nil, nil)
	_, err := c.Collect(ctx, []string{"anything"})
	assert.ErrorIs(t, err, context.Canceled)
}
