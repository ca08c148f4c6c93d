package ingest

import (
	"sync"

	"curator/internal/domain"
)

// RunContext carries the mutable state of one ingestion run: the global
// and per-domain quota counters and the set of canonical URLs already
// handled. It is created per run and threaded through every call; nothing
// here is package-level or shared across runs.
type RunContext struct {
	mu        sync.Mutex
	runCap    int
	domainCap int
	inserted  int
	reserved  int
	domains   map[string]int
	seen      map[string]struct{}
}

func NewRunContext(runCap, domainCap int) *RunContext {
	return &RunContext{
		runCap:    runCap,
		domainCap: domainCap,
		domains:   make(map[string]int),
		seen:      make(map[string]struct{}),
	}
}

// MarkSeen records a canonical URL and reports whether it was already
// handled this run. The store's unique index stays the real dedup
// guarantee; this only avoids fetching the same URL twice in one run.
func (r *RunContext) MarkSeen(canonicalURL string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.seen[canonicalURL]; dup {
		return true
	}
	r.seen[canonicalURL] = struct{}{}
	return false
}

// AtCapacity reports quota state without reserving anything, for the cheap
// pre-fetch check.
func (r *RunContext) AtCapacity(dom string) (runFull, domainFull bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inserted+r.reserved >= r.runCap, r.domains[dom] >= r.domainCap
}

// Reserve claims one slot against both quotas ahead of a store insert.
// Reservations keep concurrent workers from overshooting either cap; a
// failed insert must Release so the candidate consumes nothing.
func (r *RunContext) Reserve(dom string) (bool, domain.RejectReason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inserted+r.reserved >= r.runCap {
		return false, domain.RejectRunQuota
	}
	if r.domains[dom] >= r.domainCap {
		return false, domain.RejectDomainQuota
	}
	r.reserved++
	r.domains[dom]++
	return true, ""
}

// Commit converts a reservation into a consumed slot after a successful
// insert.
func (r *RunContext) Commit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reserved--
	r.inserted++
}

// Release returns a reservation after a failed or duplicate insert.
func (r *RunContext) Release(dom string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reserved--
	r.domains[dom]--
}

// Inserted returns the number of committed inserts so far.
func (r *RunContext) Inserted() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inserted
}

// PerDomain snapshots the per-domain consumption.
func (r *RunContext) PerDomain() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.domains))
	for d, n := range r.domains {
		if n > 0 {
			out[d] = n
		}
	}
	return out
}

// Exhausted reports whether the global cap is spent; the orchestrator
// halts all remaining sources when it is.
func (r *RunContext) Exhausted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inserted >= r.runCap
}
