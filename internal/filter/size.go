package filter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var sizeUnits = map[string]int64{
	"":  1,
	"K": 1 << 10,
	"M": 1 << 20,
	"G": 1 << 30,
	"T": 1 << 40,
}

// ParseSize parses a byte count with an optional binary suffix: 512,
// 64K, 1.5M, 2GiB, 10MB. Suffixes are case-insensitive powers of 1024.
func ParseSize(s string) (int64, error) {
	num := strings.TrimSpace(s)
	unit := strings.ToUpper(strings.TrimLeft(num, "0123456789."))
	num = num[:len(num)-len(unit)]

	unit = strings.TrimSuffix(strings.TrimSuffix(unit, "IB"), "B")
	mult, ok := sizeUnits[unit]
	if !ok || num == "" {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	if n, err := strconv.ParseInt(num, 10, 64); err == nil {
		if n > math.MaxInt64/mult {
			return 0, fmt.Errorf("size out of range: %q", s)
		}
		return n * mult, nil
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || f*float64(mult) >= math.MaxInt64 {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	return int64(f * float64(mult)), nil
}
