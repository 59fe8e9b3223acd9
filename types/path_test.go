package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParent(t *testing.T) {
	testCases := []struct {
		pkg      string
		expected string
	}{
		{"foo/bar/baz", "foo/bar"},
		{"foo/bar", "foo"},
		{"qux", ""},
		{"", ""},
		{"/foo", ""},
		{"github.com/a/b/", "github.com/a/b"},
	}

	for _, tc := range testCases {
		t.Run(tc.pkg, func(t *testing.T) {
			assert.Equal(t, tc.expected, Parent(tc.pkg))
		})
	}
}

func TestPrefixes(t *testing.T) {
	assert.Equal(t, []string{"foo/bar/baz", "foo/bar", "foo"}, Prefixes("foo/bar/baz"))
	assert.Equal(t, []string{"qux"}, Prefixes("qux"))
	assert.Empty(t, Prefixes(""))
	assert.Equal(t, []string{"/foo"}, Prefixes("/foo"), "a leading slash must not loop forever")
}
