package family

import (
	"fmt"
	"strings"
	"sync"

	hydraterrors "github.com/alexisbeaulieu97/hydrate/pkg/errors"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Family)
	order      []string
)

func init() {
	for _, f := range Builtins() {
		if err := Register(f); err != nil {
			panic(err)
		}
	}
}

// Register adds a family. Families are processed in registration order.
func Register(f *Family) error {
	if f == nil || f.Name == "" {
		return hydraterrors.NewValidationError("family", "family must have a name", nil)
	}
	if len(f.Endpoints) == 0 {
		return hydraterrors.NewValidationError("family", fmt.Sprintf("family %s declares no endpoints", f.Name), nil)
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	key := strings.ToLower(f.Name)
	if _, exists := registry[key]; exists {
		return hydraterrors.NewValidationError("family", fmt.Sprintf("family %s already registered", f.Name), nil)
	}
	registry[key] = f
	order = append(order, key)
	return nil
}

// Get retrieves a family by name, case-insensitively.
func Get(name string) (*Family, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	f, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, hydraterrors.NewValidationError("family", fmt.Sprintf("unknown family %q", name), nil)
	}
	return f, nil
}

// All returns every registered family in processing order.
func All() []*Family {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]*Family, 0, len(order))
	for _, key := range order {
		out = append(out, registry[key])
	}
	return out
}

// Names returns the registered family names in processing order.
func Names() []string {
	families := All()
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.Name)
	}
	return names
}

// Select returns the families named in filter, in processing order. An empty filter
// selects everything.
func Select(filter []string) ([]*Family, error) {
	if len(filter) == 0 {
		return All(), nil
	}
	wanted := make(map[string]bool, len(filter))
	for _, name := range filter {
		f, err := Get(name)
		if err != nil {
			return nil, err
		}
		wanted[strings.ToLower(f.Name)] = true
	}

	var out []*Family
	for _, f := range All() {
		if wanted[strings.ToLower(f.Name)] {
			out = append(out, f)
		}
	}
	return out, nil
}

// ResetRegistry restores the built-in families (for tests).
func ResetRegistry() {
	registryMu.Lock()
	registry = make(map[string]*Family)
	order = nil
	registryMu.Unlock()

	for _, f := range Builtins() {
		_ = Register(f)
	}
}

// Builtins returns fresh definitions of the built-in families in processing order.
func Builtins() []*Family {
	return []*Family{
		Groups(),
		Filters(),
		NotificationTemplates(),
		Compliance(),
		AppProtection(),
		MobileApps(),
		Enrollment(),
		ConditionalAccess(),
	}
}
