package page

import (
	"image"
	"sync"

	"github.com/autowsgr/helmsman/log"
)

// Registry is a process-wide mapping of page name to identification
// checker. It is write-once: Register panics if called after the first
// call to GetCurrentPage, mirroring the Design Notes' "registered once
// during module initialization, read-only afterwards" requirement. A
// single package-level instance (DefaultRegistry) covers the normal case;
// tests construct their own Registry to avoid cross-test pollution.
type Registry struct {
	mu      sync.RWMutex
	order   []Name
	sealed  bool
	entries map[Name]Checker
}

// NewRegistry constructs an empty, unsealed Registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[Name]Checker{}}
}

// Register installs checker under name. Registering an already-registered
// name overwrites it with a warning. Register panics if the registry has
// already served a GetCurrentPage call — registration is init-time only.
func (r *Registry) Register(name Name, checker Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		panic("page: Register called after the registry was sealed by first read")
	}
	if _, exists := r.entries[name]; exists {
		log.Warn("page: re-registering page", log.F("name", string(name)))
	} else {
		r.order = append(r.order, name)
	}
	r.entries[name] = checker
}

// GetCurrentPage runs every registered checker in registration order and
// returns the first page it matches. A checker that panics is caught and
// logged at warn level — one broken checker never breaks identification
// of the rest. The registry is sealed against further Register calls as
// of the first invocation of this method.
func (r *Registry) GetCurrentPage(screen image.Image) (Name, bool) {
	r.mu.Lock()
	r.sealed = true
	order := append([]Name(nil), r.order...)
	entries := make(map[Name]Checker, len(r.entries))
	for k, v := range r.entries {
		entries[k] = v
	}
	r.mu.Unlock()

	for _, name := range order {
		checker := entries[name]
		if safeCheck(name, checker, screen) {
			return name, true
		}
	}
	return "", false
}

// Names returns every registered page name in registration order.
func (r *Registry) Names() []Name {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Name(nil), r.order...)
}

func safeCheck(name Name, checker Checker, screen image.Image) (matched bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Warn("page: checker panicked", log.F("page", string(name)), log.F("panic", rec))
			matched = false
		}
	}()
	return checker(screen)
}

// DefaultRegistry is the process-wide registry used by package-level
// Register/GetCurrentPage.
var DefaultRegistry = NewRegistry()

// Register installs checker under name in DefaultRegistry.
func Register(name Name, checker Checker) { DefaultRegistry.Register(name, checker) }

// GetCurrentPage identifies the current page in DefaultRegistry.
func GetCurrentPage(screen image.Image) (Name, bool) { return DefaultRegistry.GetCurrentPage(screen) }
