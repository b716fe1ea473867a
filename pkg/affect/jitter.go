package affect

import "math"

// Vec is a pixel-space 2D point.
type Vec struct {
	X, Y float64
}

// JitterTracker keeps the most recent nose-tip positions and scores the
// path length travelled across them as a tremor proxy.
type JitterTracker struct {
	cfg  JitterConfig
	buf  []Vec // ring buffer, len == cfg.Capacity
	head int   // index of the oldest sample
	n    int
}

// NewJitterTracker creates an empty tracker.
func NewJitterTracker(cfg JitterConfig) JitterTracker {
	if cfg.Capacity < 2 {
		cfg.Capacity = 2
	}
	return JitterTracker{
		cfg: cfg,
		buf: make([]Vec, cfg.Capacity),
	}
}

// Push appends p, evicting the oldest sample when full, and returns the
// updated score.
func (j *JitterTracker) Push(p Vec) float64 {
	if j.n < len(j.buf) {
		j.buf[(j.head+j.n)%len(j.buf)] = p
		j.n++
	} else {
		j.buf[j.head] = p
		j.head = (j.head + 1) % len(j.buf)
	}
	return j.Score()
}

// Score is min(MaxScore, path/PathScale*Gain), or 0 while the buffer holds
// MinSamples or fewer points.
func (j *JitterTracker) Score() float64 {
	if j.n <= j.cfg.MinSamples {
		return 0
	}
	path := j.PathLength()
	return math.Min(j.cfg.MaxScore, path/j.cfg.PathScale*j.cfg.Gain)
}

// PathLength sums the distances between consecutive samples, oldest first.
func (j *JitterTracker) PathLength() float64 {
	if j.n == 0 {
		return 0
	}
	total := 0.0
	prev := j.at(0)
	for i := 1; i < j.n; i++ {
		cur := j.at(i)
		total += math.Hypot(cur.X-prev.X, cur.Y-prev.Y)
		prev = cur
	}
	return total
}

// Len is the number of buffered samples.
func (j *JitterTracker) Len() int {
	return j.n
}

// Samples returns the buffered points, oldest first.
func (j *JitterTracker) Samples() []Vec {
	out := make([]Vec, j.n)
	for i := range out {
		out[i] = j.at(i)
	}
	return out
}

func (j *JitterTracker) at(i int) Vec {
	return j.buf[(j.head+i)%len(j.buf)]
}

func (j JitterTracker) clone() JitterTracker {
	j.buf = append([]Vec(nil), j.buf...)
	return j
}
