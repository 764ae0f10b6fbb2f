package tuner

import "sync"

var (
	backendMu      sync.Mutex
	exactAvailable bool
)

func init() {
	// The rational backend is compiled in, so detection is trivial;
	// callers still dispatch on the flag rather than probing a solve
	// call for failure.
	exactAvailable = true
}

// ExactAvailable reports whether the exact solver backend is present.
func ExactAvailable() bool {
	backendMu.Lock()
	defer backendMu.Unlock()
	return exactAvailable
}

// SetExactAvailable overrides backend detection. Intended for tests
// exercising the numeric fallback path.
func SetExactAvailable(ok bool) {
	backendMu.Lock()
	defer backendMu.Unlock()
	exactAvailable = ok
}
