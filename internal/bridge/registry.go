package bridge

import "sync"

// ClassCtor builds a host wrapper for a reference blessed into a
// registered class. The Value already owns its reference.
type ClassCtor func(Value) Wrapper

var (
	classMu sync.RWMutex
	classes = make(map[string]ClassCtor)
)

// RegisterClass maps a runtime class name to a wrapper constructor.
// FromCell consults the registry for blessed references, so an embedding
// application can dispatch on the runtime's dynamic class names. A nil
// ctor removes the registration.
func RegisterClass(name string, ctor ClassCtor) {
	classMu.Lock()
	defer classMu.Unlock()
	if ctor == nil {
		delete(classes, name)
		return
	}
	classes[name] = ctor
}

func classCtor(name string) ClassCtor {
	classMu.RLock()
	defer classMu.RUnlock()
	return classes[name]
}
