package renderer

import "time"

// IterationStats describes one progressive iteration
type IterationStats struct {
	Iteration int           // 1-based
	Duration  time.Duration // wall time of the iteration
	Paths     int           // one per pixel
	Vertices  int           // surface interactions over all paths
	Escaped   int           // paths that ended on the background or a light
	Workers   int
	Tiles     int
}

// AveragePathLength returns the mean number of surface interactions per path
func (s IterationStats) AveragePathLength() float64 {
	if s.Paths == 0 {
		return 0
	}
	return float64(s.Vertices) / float64(s.Paths)
}

// PathsPerSecond returns the throughput of the iteration
func (s IterationStats) PathsPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Paths) / s.Duration.Seconds()
}

// tileStats is the per-tile share of an iteration, summed after the
// iteration completes
type tileStats struct {
	paths    int
	vertices int
	escaped  int
}

// RenderStats accumulates the statistics of all iterations so far
type RenderStats struct {
	TotalPixels    int
	TotalSamples   int     // paths traced over all iterations
	AverageSamples float64 // samples per pixel
	TotalVertices  int
	TotalDuration  time.Duration
	Iterations     []IterationStats
}

// add folds one iteration into the totals
func (rs *RenderStats) add(it IterationStats) {
	rs.Iterations = append(rs.Iterations, it)
	rs.TotalSamples += it.Paths
	rs.TotalVertices += it.Vertices
	rs.TotalDuration += it.Duration
	if rs.TotalPixels > 0 {
		rs.AverageSamples = float64(rs.TotalSamples) / float64(rs.TotalPixels)
	}
}

// AveragePathLength returns the mean path length over all iterations
func (rs RenderStats) AveragePathLength() float64 {
	if rs.TotalSamples == 0 {
		return 0
	}
	return float64(rs.TotalVertices) / float64(rs.TotalSamples)
}
