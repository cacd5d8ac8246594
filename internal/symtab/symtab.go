// Package symtab implements the interned-symbol table shared across an
// engine pool.
package symtab

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Symbol is an interned word spelling. Two Symbols are the same word iff
// they are the same pointer; the table guarantees one Symbol per spelling.
type Symbol struct {
	name string
}

// String returns the word's spelling.
func (s *Symbol) String() string { return s.name }

// Table is a process-wide interning table. It is safe for concurrent use
// by multiple engine-pool members.
type Table struct {
	mu   sync.RWMutex
	syms map[string]*Symbol
	sf   singleflight.Group
}

// New returns an empty symbol table.
func New() *Table {
	return &Table{syms: make(map[string]*Symbol, 256)}
}

// Intern returns the canonical Symbol for name, creating it on first touch.
// Concurrent first-touch interning of the same spelling from different
// engine-pool members is deduplicated via singleflight so only one Symbol
// is ever allocated for a given name.
func (t *Table) Intern(name string) *Symbol {
	t.mu.RLock()
	if s, ok := t.syms[name]; ok {
		t.mu.RUnlock()
		return s
	}
	t.mu.RUnlock()

	v, _, _ := t.sf.Do(name, func() (interface{}, error) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if s, ok := t.syms[name]; ok {
			return s, nil
		}
		s := &Symbol{name: name}
		t.syms[name] = s
		return s, nil
	})
	return v.(*Symbol)
}

// Len reports how many distinct spellings have been interned.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.syms)
}
