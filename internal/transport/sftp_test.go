package transport

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPosixMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mode os.FileMode
		kind Kind
	}{
		{name: "regular", mode: 0o644, kind: Regular},
		{name: "directory", mode: os.ModeDir | 0o755, kind: Directory},
		{name: "symlink", mode: os.ModeSymlink | 0o777, kind: Symlink},
		{name: "fifo", mode: os.ModeNamedPipe | 0o600, kind: Other},
		{name: "socket", mode: os.ModeSocket | 0o600, kind: Other},
		{name: "char device", mode: os.ModeDevice | os.ModeCharDevice | 0o600, kind: Other},
		{name: "block device", mode: os.ModeDevice | 0o600, kind: Other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			raw := posixMode(tt.mode)
			assert.Equal(t, tt.kind, kindFromMode(raw))
			assert.Equal(t, uint32(tt.mode.Perm()), raw&0o777)
		})
	}
}
