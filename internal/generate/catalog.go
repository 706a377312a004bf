package generate

import "strings"

// Catalog is an immutable, ordered list of backend identifiers in decreasing
// preference.
type Catalog struct {
	backends []string
}

// NewCatalog builds a catalog, dropping blank and duplicate identifiers while
// keeping first-seen order.
func NewCatalog(backends ...string) Catalog {
	seen := make(map[string]bool, len(backends))
	out := make([]string, 0, len(backends))
	for _, b := range backends {
		b = strings.TrimSpace(b)
		if b == "" || seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, b)
	}
	return Catalog{backends: out}
}

// Backends returns a copy of the catalog order.
func (c Catalog) Backends() []string {
	return append([]string(nil), c.backends...)
}

// Len returns the number of backends.
func (c Catalog) Len() int {
	return len(c.backends)
}

// Contains reports whether backend is in the catalog.
func (c Catalog) Contains(backend string) bool {
	for _, b := range c.backends {
		if b == backend {
			return true
		}
	}
	return false
}

// Prefer returns the effective attempt order for hint: hint first, then the
// remaining backends in catalog order. An empty or unknown hint leaves the
// order unchanged. The catalog itself is never modified.
func (c Catalog) Prefer(hint string) []string {
	if hint == "" || !c.Contains(hint) {
		return c.Backends()
	}
	order := make([]string, 0, len(c.backends))
	order = append(order, hint)
	for _, b := range c.backends {
		if b != hint {
			order = append(order, b)
		}
	}
	return order
}

// String joins the backends with commas.
func (c Catalog) String() string {
	return strings.Join(c.backends, ",")
}
