package api

import "sync"

// scanLimiter bounds concurrent in-flight scans per client IP and globally.
// Scans are CPU-bound, so a small per-IP cap keeps one client from pinning
// every core.
type scanLimiter struct {
	mu       sync.Mutex
	inFlight map[string]int
	total    int
	maxPerIP int
	maxTotal int
}

func newScanLimiter(maxPerIP int) *scanLimiter {
	return &scanLimiter{
		inFlight: make(map[string]int),
		maxPerIP: maxPerIP,
		maxTotal: 64, // global cap across all clients
	}
}

// acquire attempts to register a new scan for the given IP. Returns false
// if the IP or global limit has been reached.
func (l *scanLimiter) acquire(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.total >= l.maxTotal {
		return false
	}
	if l.inFlight[ip] >= l.maxPerIP {
		return false
	}

	l.inFlight[ip]++
	l.total++
	return true
}

// release decrements the scan count for the given IP.
func (l *scanLimiter) release(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.inFlight[ip]--
	l.total--
	if l.inFlight[ip] <= 0 {
		delete(l.inFlight, ip)
	}
}
