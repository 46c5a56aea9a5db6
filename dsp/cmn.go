// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"fmt"
	"math"
)

// CMNConfig parameterises sliding-window cepstral mean normalisation.
type CMNConfig struct {
	// Window is the number of frames averaged.
	Window int
	// MinWindow is the minimum window at the start of a non-centered pass.
	MinWindow int
	// Center places the window around the current frame instead of
	// behind it.
	Center bool
	// NormVars also divides by the windowed standard deviation.
	NormVars bool
}

// cmnBounds returns the [start, end) frames averaged for frame t.
func (c CMNConfig) cmnBounds(t, frames int) (int, int) {
	var start, end int
	if c.Center {
		start = t - c.Window/2
		end = start + c.Window
	} else {
		start = t - c.Window
		end = t + 1
	}
	if start < 0 {
		end -= start
		start = 0
	}
	if !c.Center && end > t {
		end = max(t+1, c.MinWindow)
	}
	if end > frames {
		start -= end - frames
		end = frames
		if start < 0 {
			start = 0
		}
	}
	return start, end
}

// SlidingWindowCMN normalises a [frames][feats] matrix (flattened
// row-major) frame by frame against the statistics of a window of
// neighbouring frames.
func SlidingWindowCMN(x []float64, frames, feats int, cfg CMNConfig) ([]float64, error) {
	if cfg.Window <= 0 || cfg.MinWindow <= 0 {
		return nil, fmt.Errorf("%w: cmn_window=%d min_cmn_window=%d", ErrInvalidArgument, cfg.Window, cfg.MinWindow)
	}
	if len(x) != frames*feats {
		return nil, fmt.Errorf("%w: %d values for %d frames x %d features", ErrInvalidArgument, len(x), frames, feats)
	}

	// prefix sums over frames: sum[t*feats+f] covers frames [0, t)
	sum := make([]float64, (frames+1)*feats)
	sq := make([]float64, (frames+1)*feats)
	for t := range frames {
		for f := range feats {
			v := x[t*feats+f]
			sum[(t+1)*feats+f] = sum[t*feats+f] + v
			sq[(t+1)*feats+f] = sq[t*feats+f] + v*v
		}
	}

	out := make([]float64, len(x))
	for t := range frames {
		start, end := cfg.cmnBounds(t, frames)
		n := float64(end - start)
		for f := range feats {
			mean := (sum[end*feats+f] - sum[start*feats+f]) / n
			v := x[t*feats+f] - mean
			if cfg.NormVars {
				if end-start == 1 {
					v = 0
				} else {
					variance := (sq[end*feats+f]-sq[start*feats+f])/n - mean*mean
					v /= math.Sqrt(variance)
				}
			}
			out[t*feats+f] = v
		}
	}
	return out, nil
}

// Deltas computes regression deltas of each row of a [rows][cols] matrix
// along cols, using a window of winLength columns and edge replication.
func Deltas(x []float64, rows, cols, winLength int) ([]float64, error) {
	if winLength < 3 {
		return nil, fmt.Errorf("%w: win_length=%d, must be at least 3", ErrInvalidArgument, winLength)
	}
	if len(x) != rows*cols {
		return nil, fmt.Errorf("%w: %d values for %d x %d", ErrInvalidArgument, len(x), rows, cols)
	}
	n := (winLength - 1) / 2
	denom := float64(n*(n+1)*(2*n+1)) / 3

	out := make([]float64, len(x))
	for r := range rows {
		row := x[r*cols : (r+1)*cols]
		for c := range cols {
			var acc float64
			for k := -n; k <= n; k++ {
				idx := min(max(c+k, 0), cols-1)
				acc += float64(k) * row[idx]
			}
			out[r*cols+c] = acc / denom
		}
	}
	return out, nil
}
