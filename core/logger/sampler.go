package logger

import (
	"strconv"
	"strings"
	"sync"
)

// ratioSampler passes the first allow events of every window events, so
// high-volume debug traces keep a predictable share of the log budget.
// An unset sampler lets everything through.
type ratioSampler struct {
	mu     sync.Mutex
	allow  int
	window int
	pos    int
}

func newRatioSampler(allow, window int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(allow, window)
	return s
}

// Set reconfigures the ratio. Non-positive values disable sampling.
func (s *ratioSampler) Set(allow, window int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if allow <= 0 || window <= 0 {
		s.allow, s.window, s.pos = 0, 0, 0
		return
	}
	if allow > window {
		allow = window
	}
	s.allow, s.window, s.pos = allow, window, 0
}

// Allow reports whether the current event falls inside the sampled share.
func (s *ratioSampler) Allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.window <= 0 {
		return true
	}
	s.pos++
	if s.pos > s.window {
		s.pos = 1
	}
	return s.pos <= s.allow
}

// parseRatioSpec accepts "1/50" or a bare denominator like "50" (one in
// fifty). Zero or malformed specs disable sampling.
func parseRatioSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, 0
	}
	if num, den, found := strings.Cut(spec, "/"); found {
		n, err1 := strconv.Atoi(strings.TrimSpace(num))
		d, err2 := strconv.Atoi(strings.TrimSpace(den))
		if err1 == nil && err2 == nil {
			return n, d
		}
		return 0, 0
	}
	if v, err := strconv.Atoi(spec); err == nil && v > 0 {
		return 1, v
	}
	return 0, 0
}
