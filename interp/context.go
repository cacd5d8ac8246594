package interp

import "sync"

// Context is a keyed collection of cells: an object, module, frame-reified-
// as-value, or error, distinguished only by Kind.
// The varlist's cell 0 is the "rootvar" archetype; Keylist holds the
// parallel symbol names for cells 1..N.
type Context struct {
	mu      sync.RWMutex
	Kind    Heart
	Varlist *Series  // FlavorVarlist
	Keylist *Series  // FlavorKeylist
	parent  *Context // lexical/ancestor chain for binding resolution

	errVal *RaisedError // set only when Kind == HeartError; see throw.go
}

// NewContext builds a context with one slot per (sym, val) pair. It starts
// unmanaged.
func NewContext(kind Heart, parent *Context, syms []*Symbol, vals []Cell) *Context {
	cells := make([]Cell, len(vals)+1) // +1 for rootvar archetype
	copy(cells[1:], vals)
	varlist := &Series{Flavor: FlavorVarlist, Cells: cells}
	keylist := &Series{Flavor: FlavorKeylist, Syms: append([]*Symbol(nil), syms...)}
	varlist.Bonus = keylist
	ctx := &Context{Kind: kind, Varlist: varlist, Keylist: keylist, parent: parent}
	cells[0] = Cell{Heart: kind, Quote: QuoteBase, Payload: Payload{Node: varlist}}
	return ctx
}

// Manage marks both backing series GC-eligible.
func (c *Context) Manage() {
	c.Varlist.Manage()
	c.Keylist.Manage()
}

// Parent returns the ancestor context used for lexical fallback lookup.
func (c *Context) Parent() *Context { return c.parent }

func (c *Context) indexOf(sym *Symbol) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i, s := range c.Keylist.Syms {
		if s == sym {
			return i + 1 // +1 to skip the rootvar archetype slot
		}
	}
	return -1
}

// Get returns the cell bound to sym in c only (no ancestor fallback), and
// whether it was found.
func (c *Context) Get(sym *Symbol) (*Cell, bool) {
	if c.Varlist.IsInaccessible() {
		return nil, false
	}
	i := c.indexOf(sym)
	if i < 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &c.Varlist.Cells[i], true
}

// Set stores val at sym's slot in c, creating the slot if c is not frozen
// and sym is new. It reports whether the store succeeded. Unlike an Array, a
// Context slot is allowed to hold an isotope (evalFinishSetRight is the
// checked boundary that rejects the ones that must not be stored); Set
// itself stores val as given, isotope or not.
func (c *Context) Set(sym *Symbol, val Cell) bool {
	if c.Varlist.IsInaccessible() {
		return false
	}
	if err := c.Varlist.CheckMutable(false); err != nil {
		return false
	}
	i := c.indexOf(sym)
	c.mu.Lock()
	defer c.mu.Unlock()
	if i >= 0 {
		c.Varlist.Cells[i] = val
		return true
	}
	if err := c.Varlist.CheckMutable(true); err != nil {
		return false
	}
	c.Keylist.Syms = append(c.Keylist.Syms, sym)
	c.Varlist.Cells = append(c.Varlist.Cells, val)
	return true
}

// Lookup implements Binding: resolve sym in c, falling back through the
// ancestor chain.
func (c *Context) Lookup(sym *Symbol) (*Cell, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if cell, ok := ctx.Get(sym); ok {
			return cell, true
		}
	}
	return nil, false
}

// Bound implements Binding.
func (c *Context) Bound() *Context { return c }

// Archetype returns the rootvar cell (cell 0 of the varlist), the value
// that represents "this context" when passed around.
func (c *Context) Archetype() Cell {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Varlist.Cells[0]
}

// Close tombstones c's varlist: an "inaccessible" context is a tombstone
// left when a frame exits but a cell still references its varlist by
// identity; all operations on it raise. Neither the trampoline nor Recycle
// (gc.go) calls it; a context is tombstoned only by an explicit call.
func (c *Context) Close() { c.Varlist.MarkInaccessible() }

func (c *Context) IsClosed() bool { return c.Varlist.IsInaccessible() }

// Len reports the number of named slots (excluding the rootvar archetype).
func (c *Context) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.Varlist.Cells) - 1
}
