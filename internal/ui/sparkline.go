package ui

import "slices"

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders the last width samples as block characters scaled to
// the largest of them, left-padded with the lowest block.
func Sparkline(data []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	out := make([]rune, width)
	for i := range out {
		out[i] = sparkBlocks[0]
	}
	if len(data) == 0 {
		return string(out)
	}

	peak := slices.Max(data)
	top := len(sparkBlocks) - 1
	pad := width - len(data)
	for i, v := range data {
		if peak <= 0 || v <= 0 {
			continue
		}
		out[pad+i] = sparkBlocks[min(int(v/peak*float64(top)), top)]
	}
	return string(out)
}
