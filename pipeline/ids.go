package pipeline

import (
	"regexp"
	"strconv"

	"github.com/antchfx/xmlquery"
)

var simpleNumberRegex = regexp.MustCompile(`^[0-9]+[a-z]?$`)

// idAllocator hands out ids that are unique within a document.
type idAllocator struct {
	used     map[string]bool
	counters map[string]int
}

func newIDAllocator(root *xmlquery.Node) *idAllocator {
	a := &idAllocator{used: map[string]bool{}, counters: map[string]int{}}
	for _, n := range descendants(root) {
		if id := attr(n, "id"); id != "" {
			a.used[id] = true
		}
	}
	return a
}

// numbered returns prefix+number+suffix when it is free and the number is
// plain ("3", "2a"), otherwise the next counter id.
func (a *idAllocator) numbered(prefix, number, suffix string) string {
	if simpleNumberRegex.MatchString(number) {
		id := prefix + number + suffix
		if !a.used[id] {
			a.used[id] = true
			return id
		}
	}
	return a.next(prefix, suffix)
}

func (a *idAllocator) next(prefix, suffix string) string {
	key := prefix + "\x00" + suffix
	for {
		a.counters[key]++
		id := prefix + strconv.Itoa(a.counters[key]) + suffix
		if !a.used[id] {
			a.used[id] = true
			return id
		}
	}
}

func (a *idAllocator) taken(id string) bool {
	return a.used[id]
}

func (a *idAllocator) reserve(id string) {
	a.used[id] = true
}
