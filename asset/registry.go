package asset

import (
	"fmt"
	"strings"
)

// Placeholder stands for one linked file until assembly decides where it
// goes in the document.
type Placeholder struct {
	Path string
	RID  string
	Kind
}

// Registry hands out one placeholder per distinct path. A registry belongs
// to a single document.
type Registry struct {
	byPath map[string]*Placeholder
	order  []*Placeholder
	counts map[string]int
	taken  func(id string) bool
}

// NewRegistry returns an empty registry. Generated ids for which taken
// returns true are skipped; taken may be nil.
func NewRegistry(taken func(id string) bool) *Registry {
	if taken == nil {
		taken = func(string) bool { return false }
	}
	return &Registry{
		byPath: make(map[string]*Placeholder),
		counts: make(map[string]int),
		taken:  taken,
	}
}

// Placeholder returns the placeholder for path, creating it on first use.
// New placeholders of the same kind are numbered in order: images get
// "f1", "f2", other files "suppl1", "suppl2".
func (r *Registry) Placeholder(path string, kind Kind) (p *Placeholder, created bool) {
	key := NormalizePath(path)
	if p, ok := r.byPath[key]; ok {
		return p, false
	}

	prefix := "suppl"
	if kind.IsImage() {
		prefix = "f"
	}
	id := r.next(prefix)
	for r.taken(id) {
		id = r.next(prefix)
	}
	p = &Placeholder{
		Path: path,
		RID:  id,
		Kind: kind,
	}
	r.byPath[key] = p
	r.order = append(r.order, p)
	return p, true
}

func (r *Registry) next(prefix string) string {
	r.counts[prefix]++
	return fmt.Sprintf("%s%d", prefix, r.counts[prefix])
}

// Reserve marks an id as taken so generated ids skip it.
func (r *Registry) Reserve(prefix string, n int) {
	if n > r.counts[prefix] {
		r.counts[prefix] = n
	}
}

// Lookup returns the placeholder registered for path.
func (r *Registry) Lookup(path string) (*Placeholder, bool) {
	p, ok := r.byPath[NormalizePath(path)]
	return p, ok
}

// All returns the placeholders in creation order.
func (r *Registry) All() []*Placeholder {
	return append([]*Placeholder(nil), r.order...)
}

// Len returns the number of distinct paths.
func (r *Registry) Len() int {
	return len(r.order)
}

// NormalizePath makes equivalent spellings of a link compare equal.
func NormalizePath(p string) string {
	p = strings.TrimSpace(StripQuery(p))
	p = strings.ReplaceAll(p, `\`, "/")
	p = strings.TrimPrefix(p, "./")
	return strings.ToLower(p)
}
