package booking

import "sync"

// CapacityPolicy enforces per-service daily booking ceilings. Counters are
// derived from active bookings (seeded at startup, adjusted on every
// lifecycle transition) rather than persisted and reset at day boundaries.
// Check-and-increment for one (service, date) is a single atomic unit.
type CapacityPolicy struct {
	mu     sync.Mutex
	counts map[string]int // key: serviceID|date
}

// NewCapacityPolicy returns an empty policy.
func NewCapacityPolicy() *CapacityPolicy {
	return &CapacityPolicy{counts: make(map[string]int)}
}

func capKey(serviceID, date string) string {
	return serviceID + "|" + date
}

// CheckAndReserve admits one more booking for (service, date) if the ceiling
// permits, or fails with CapacityExceededError. max <= 0 means unlimited.
func (p *CapacityPolicy) CheckAndReserve(serviceID, date string, max int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := p.counts[capKey(serviceID, date)]
	if max > 0 && current >= max {
		return &CapacityExceededError{ServiceID: serviceID, Date: date, Current: current, Max: max}
	}
	p.counts[capKey(serviceID, date)] = current + 1
	return nil
}

// Release frees one unit of capacity for (service, date). Never goes below
// zero, so a double release cannot corrupt the counter.
func (p *CapacityPolicy) Release(serviceID, date string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := capKey(serviceID, date)
	if p.counts[key] > 0 {
		p.counts[key]--
	}
	if p.counts[key] == 0 {
		delete(p.counts, key)
	}
}

// Used returns the current count for (service, date).
func (p *CapacityPolicy) Used(serviceID, date string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[capKey(serviceID, date)]
}

// Seed sets the counter during startup rebuild.
func (p *CapacityPolicy) Seed(serviceID, date string, count int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if count > 0 {
		p.counts[capKey(serviceID, date)] = count
	}
}
