// Package pending tracks sites that clients have asked for but were
// cache-missing or expired, awaiting a refresh batch.
package pending

import "sync"

// Set is an idempotent set of sites, drained atomically when a refresh
// batch is dispatched. Guarded by its own mutex, independent from the
// criteria cache's — the query handler never holds both at once.
type Set struct {
	mu    sync.Mutex
	sites map[string]struct{}
}

// New returns an empty Set.
func New() *Set {
	return &Set{sites: make(map[string]struct{})}
}

// Add inserts site. Re-adding an already-pending site is a no-op.
func (s *Set) Add(site string) {
	s.mu.Lock()
	s.sites[site] = struct{}{}
	s.mu.Unlock()
}

// Drain atomically returns the current contents and empties the set. Call
// this only at the moment a refresh batch is committed to being
// dispatched; if dispatch subsequently fails the sites are not
// automatically re-enqueued.
func (s *Set) Drain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.sites))
	for site := range s.sites {
		out = append(out, site)
	}
	s.sites = make(map[string]struct{})
	return out
}
