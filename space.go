package qecc

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Result wraps a job's value with metadata
type Result struct {
	Value     any
	Error     error
	CreatedAt time.Time
	TTL       time.Duration
}

// ResultSpace holds finished job results until someone awaits them. Results
// stored with a TTL are dropped once it has passed, checked every interval.
type ResultSpace struct {
	mu      sync.Mutex
	values  map[string]Result
	waiting map[string][]chan Result
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

func NewResultSpace(interval time.Duration) *ResultSpace {
	if interval <= 0 {
		interval = time.Minute
	}

	rs := &ResultSpace{
		values:  make(map[string]Result),
		waiting: make(map[string][]chan Result),
		done:    make(chan struct{}),
	}

	rs.wg.Add(1)
	go func() {
		defer rs.wg.Done()
		rs.cleanup(interval)
	}()

	return rs
}

// Store stores a value with its metadata and wakes anyone waiting on id.
func (rs *ResultSpace) Store(id string, value any, err error, ttl time.Duration) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	r := Result{
		Value:     value,
		Error:     err,
		CreatedAt: time.Now(),
		TTL:       ttl,
	}
	rs.values[id] = r
	log.Debug("stored result", "job", id, "err", err)

	for _, ch := range rs.waiting[id] {
		ch <- r
		close(ch)
	}
	delete(rs.waiting, id)
}

// Await returns a channel that will receive the value when it's available
func (rs *ResultSpace) Await(id string) chan Result {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	ch := make(chan Result, 1)

	if r, ok := rs.values[id]; ok {
		ch <- r
		close(ch)
		return ch
	}

	rs.waiting[id] = append(rs.waiting[id], ch)
	return ch
}

// Delete drops a stored result.
func (rs *ResultSpace) Delete(id string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	delete(rs.values, id)
}

// Len is the number of stored results.
func (rs *ResultSpace) Len() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.values)
}

func (rs *ResultSpace) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rs.done:
			return
		case <-ticker.C:
			rs.mu.Lock()
			rs.cleanupExpiredValues()
			rs.mu.Unlock()
		}
	}
}

func (rs *ResultSpace) cleanupExpiredValues() {
	now := time.Now()
	for id, r := range rs.values {
		if r.TTL > 0 && now.Sub(r.CreatedAt) > r.TTL {
			delete(rs.values, id)
		}
	}
}

// Close stops the cleanup goroutine. Stored values stay readable.
func (rs *ResultSpace) Close() {
	rs.once.Do(func() {
		close(rs.done)
	})
	rs.wg.Wait()
}
