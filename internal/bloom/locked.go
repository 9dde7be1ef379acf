package bloom

import "sync"

// Locked is a concurrency-safe Filter. Inserts are serialized and queries
// run under a shared lock.
type Locked struct {
	mu       sync.RWMutex
	filter   *Filter
	inserted int
}

// NewLocked constructs an empty Locked filter of m bits using k hashes.
func NewLocked(m, k int) (*Locked, error) {
	f, err := New(m, k)
	if err != nil {
		return nil, err
	}
	return &Locked{filter: f}, nil
}

// InsertAll inserts keys in order and stops at the first rejected key.
// It returns the number of keys inserted.
func (l *Locked) InsertAll(keys []Key) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, key := range keys {
		if err := l.filter.Insert(key); err != nil {
			return i, err
		}
		l.inserted++
	}
	return len(keys), nil
}

// Query checks if key might be in the filter.
func (l *Locked) Query(key Key) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.filter.Query(key)
}

// Stats is a point-in-time snapshot of a filter.
type Stats struct {
	Size          int     `json:"size"`
	Hashes        int     `json:"hashes"`
	Set           int     `json:"set"`
	Fill          float64 `json:"fill"`
	Inserted      int     `json:"inserted"`
	FalsePositive float64 `json:"fp"`
}

// Stats returns the filter's parameters and occupancy. Inserted counts
// every key accepted by InsertAll, repeated keys included.
func (l *Locked) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Stats{
		Size:          l.filter.Cap(),
		Hashes:        l.filter.K(),
		Set:           l.filter.Count(),
		Fill:          l.filter.FillRatio(),
		Inserted:      l.inserted,
		FalsePositive: FalsePositiveRate(l.filter.Cap(), l.filter.K(), l.inserted),
	}
}
