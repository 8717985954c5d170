package urlwasher

import (
	"sync"
	"time"
)

// Stats summarizes the time spent washing URLs that were not served from
// the cache.
type Stats struct {
	Runs    int64
	Average time.Duration
	Max     time.Duration
	MaxURL  string
}

type washStats struct {
	mx        sync.Mutex
	runs      int64
	totalTime time.Duration
	max       time.Duration
	maxURL    string
}

func (s *washStats) addTiming(url string, dur time.Duration) {
	s.mx.Lock()
	s.runs++
	s.totalTime += dur
	if dur > s.max {
		s.max = dur
		s.maxURL = url
	}
	runs, totalTime, max, maxURL := s.runs, s.totalTime, s.max, s.maxURL
	s.mx.Unlock()

	log.Debugf("Average running time: %v", totalTime/time.Duration(runs))
	log.Debugf("Max running time: %v for url: %v", max, maxURL)
}

func (s *washStats) snapshot() Stats {
	s.mx.Lock()
	defer s.mx.Unlock()
	st := Stats{Runs: s.runs, Max: s.max, MaxURL: s.maxURL}
	if s.runs > 0 {
		st.Average = s.totalTime / time.Duration(s.runs)
	}
	return st
}
