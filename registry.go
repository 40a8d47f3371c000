package softblit

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
)

// DriverEnv names the environment variable consulted by VideoInit when no
// driver is requested explicitly.
const DriverEnv = "SOFTBLIT_VIDEODRIVER"

// DriverFactory creates a video device.
type DriverFactory func() (VideoDevice, error)

// DriverEntry describes a registered video driver.
type DriverEntry struct {
	// Name is the unique driver name.
	Name string

	// Priority orders automatic selection, highest first. In-memory
	// drivers use 10.
	Priority int

	// Factory creates the device.
	Factory DriverFactory

	// Available reports whether the driver can run on this system.
	Available func() bool
}

// drivers is the global driver registry.
var drivers = &driverRegistry{}

type driverRegistry struct {
	mu      sync.RWMutex
	entries map[string]*DriverEntry
	current string
}

// RegisterDriver adds a video driver. Drivers usually call it from init.
// A nil available is treated as always available; registering an existing
// name replaces it.
//
//	func init() {
//	    softblit.RegisterDriver("dummy", 10, newDevice, nil)
//	}
func RegisterDriver(name string, priority int, factory DriverFactory, available func() bool) {
	drivers.mu.Lock()
	defer drivers.mu.Unlock()

	if drivers.entries == nil {
		drivers.entries = make(map[string]*DriverEntry)
	}
	if available == nil {
		available = func() bool { return true }
	}
	drivers.entries[name] = &DriverEntry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// UnregisterDriver removes a video driver.
func UnregisterDriver(name string) {
	drivers.mu.Lock()
	defer drivers.mu.Unlock()
	delete(drivers.entries, name)
}

// Drivers returns all registered driver names, highest priority first.
func Drivers() []string {
	drivers.mu.RLock()
	defer drivers.mu.RUnlock()
	return drivers.sortedNames(false)
}

// AvailableDrivers returns the names of usable drivers, highest priority
// first.
func AvailableDrivers() []string {
	drivers.mu.RLock()
	defer drivers.mu.RUnlock()
	return drivers.sortedNames(true)
}

// Driver returns a copy of the entry registered under name.
func Driver(name string) (*DriverEntry, bool) {
	drivers.mu.RLock()
	defer drivers.mu.RUnlock()

	e, ok := drivers.entries[name]
	if !ok {
		return nil, false
	}
	c := *e
	return &c, true
}

// VideoInit creates and registers a video device. The driver is the one
// named by WithDriver, else the one named by $SOFTBLIT_VIDEODRIVER, else the
// first available driver that initialises successfully.
func VideoInit(opts ...InitOption) error {
	o := defaultInitOptions()
	for _, opt := range opts {
		opt(&o)
	}
	name := o.driver
	if name == "" {
		name = os.Getenv(DriverEnv)
	}

	if name != "" {
		return setError(initDriver(name, o))
	}

	drivers.mu.RLock()
	names := drivers.sortedNames(true)
	drivers.mu.RUnlock()
	if len(names) == 0 {
		return setError(ErrNoDriverAvailable)
	}

	var errs []error
	for _, n := range names {
		err := initDriver(n, o)
		if err == nil {
			return nil
		}
		Logger().Warn("video driver failed", "driver", n, "err", err)
		errs = append(errs, err)
	}
	return setError(errors.Join(errs...))
}

func initDriver(name string, o initOptions) error {
	drivers.mu.RLock()
	e, ok := drivers.entries[name]
	drivers.mu.RUnlock()

	if !ok {
		return &DriverNotFoundError{Name: name}
	}
	if !e.Available() {
		return &DriverUnavailableError{Name: name}
	}
	dev, err := e.Factory()
	if err != nil {
		return fmt.Errorf("softblit: create %s: %w", name, err)
	}
	if err := RegisterDevice(dev); err != nil {
		return err
	}
	if o.logger != nil {
		propagateLogger(dev, o.logger)
	}

	drivers.mu.Lock()
	drivers.current = name
	drivers.mu.Unlock()
	Logger().Info("video driver selected", "driver", name)
	return nil
}

// VideoQuit closes the device started by VideoInit.
func VideoQuit() {
	UnregisterDevice()
	drivers.mu.Lock()
	drivers.current = ""
	drivers.mu.Unlock()
}

// VideoDriverName returns the name of the driver started by VideoInit, or
// "" if none is running.
func VideoDriverName() string {
	if CurrentDevice() == nil {
		return ""
	}
	drivers.mu.RLock()
	defer drivers.mu.RUnlock()
	return drivers.current
}

// sortedNames returns driver names by priority, highest first, then by
// name. Must be called with the lock held.
func (r *driverRegistry) sortedNames(onlyAvailable bool) []string {
	if len(r.entries) == 0 {
		return nil
	}

	entries := make([]*DriverEntry, 0, len(r.entries))
	for _, e := range r.entries {
		if onlyAvailable && !e.Available() {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].Name < entries[j].Name
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// ErrNoDriverAvailable is returned by VideoInit when no driver is
// registered or available.
var ErrNoDriverAvailable = errors.New("softblit: no video driver available")

// DriverNotFoundError indicates a named driver is not registered.
type DriverNotFoundError struct {
	Name string
}

func (e *DriverNotFoundError) Error() string {
	return "softblit: video driver not found: " + e.Name
}

// DriverUnavailableError indicates a driver is registered but cannot run.
type DriverUnavailableError struct {
	Name string
}

func (e *DriverUnavailableError) Error() string {
	return "softblit: video driver unavailable: " + e.Name
}
