package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeArg(t *testing.T) {
	tests := []struct{ in, want string }{
		{"d", "d"},
		{"d/", "d"},
		{"d///", "d"},
		{"/", "/"},
		{"///", "/"},
		{"/a/b/", "/a/b"},
		{".", "."},
		{"./", "."},
		{"host:dir/", "host:dir"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeArg(tt.in))
		})
	}
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "/a/b/c", OutputName("/a/b/c", "/a/b/c", false))
	assert.Equal(t, "c", OutputName("/a/b/c", "/a/b/c", true))
	assert.Equal(t, "c", OutputName("c", "c", true))
	assert.Equal(t, "/", OutputName("/", "/", true))
	assert.Equal(t, "dir", OutputName("host:/srv/dir", "/srv/dir", true))
	assert.Equal(t, "host:/srv/dir", OutputName("host:/srv/dir", "/srv/dir", false))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "a/b", joinPath("a", "b"))
	assert.Equal(t, "/b", joinPath("/", "b"))
	assert.Equal(t, "b", joinRel("", "b"))
	assert.Equal(t, "a/b", joinRel("a", "b"))
}
