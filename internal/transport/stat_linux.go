//go:build linux

package transport

import "golang.org/x/sys/unix"

// modeFromStat returns the raw st_mode bits from a unix.Stat_t.
func modeFromStat(st *unix.Stat_t) uint32 {
	return st.Mode
}
