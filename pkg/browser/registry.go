package browser

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Options carries session settings handed to a page factory. The runner does
// not interpret them; they pass through from configuration.
type Options struct {
	Headless     bool
	SlowMo       time.Duration
	RecordVideo  bool
	CollectHAR   bool
	ArtifactsDir string
}

// Factory builds a page handle for a named driver.
type Factory func(opts Options) (Page, error)

var (
	driversMu sync.RWMutex
	drivers   = map[string]Factory{}
)

// Register makes a page driver available by name. Typically called from an
// implementation package's init.
func Register(name string, factory Factory) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[name] = factory
}

// Open builds a page handle using the named registered driver.
func Open(name string, opts Options) (Page, error) {
	driversMu.RLock()
	factory, ok := drivers[name]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown page driver %q (registered: %v)", name, Drivers())
	}
	return factory(opts)
}

// Drivers lists registered driver names.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
