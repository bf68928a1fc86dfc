//go:build darwin

package transport

import "golang.org/x/sys/unix"

// modeFromStat returns the raw st_mode bits from a unix.Stat_t.
// Darwin stores st_mode as a uint16.
func modeFromStat(st *unix.Stat_t) uint32 {
	return uint32(st.Mode)
}
