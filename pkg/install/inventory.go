package install

import (
	"sort"
)

// NewInventory starts from the name to version map pacman reports.
func NewInventory(installed map[string]string) *Inventory {
	x := Inventory{m: make(map[string]string, len(installed))}
	for k, v := range installed {
		x.m[k] = v
	}
	return &x
}

// Has reports whether name is installed.
func (i *Inventory) Has(name string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.m[name]
	return ok
}

// Version returns the installed version of name.
func (i *Inventory) Version(name string) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	v, ok := i.m[name]
	return v, ok
}

// Add records that name is now installed at version.
func (i *Inventory) Add(name, version string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.m[name] = version
}

// Names returns the installed names in order.
func (i *Inventory) Names() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]string, 0, len(i.m))
	for k := range i.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
