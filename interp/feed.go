package interp

// VariadicSource supplies cells to a variadic feed on demand: a host may yield raw cell pointers, UTF-8 fragments to be scanned,
// or "instruction" singletons. The scanner that reifies UTF-8 fragments is
// out of scope; a host wanting that behavior supplies a
// VariadicSource whose Next already returns pre-scanned cells.
type VariadicSource interface {
	// Next returns the next cell, or ok=false at the end of the stream.
	Next() (Cell, bool)
}

// spliceFrame is one link in the feed's splice stack.
type spliceFrame struct {
	arr   *Series
	index int
	next  *spliceFrame
}

// Feed is the evaluator's bidirectional-lookahead cursor. It may be backed by an array+index (with a hold taken on the
// array) or by a VariadicSource; the two are unified behind the same
// At/FetchNext/Lookback surface so the evaluator never needs to know which.
type Feed struct {
	arr      *Series // current array being drained, nil if pure-variadic
	index    int
	splice   *spliceFrame // pending arrays queued ahead of arr, see Splice
	variadic VariadicSource

	gotten    *Cell // cached pending value so callers can peek without a
	gottenSet bool  // second lookup

	lookback    Cell // the cell that was at the prior position, see Lookback
	haveLookback bool

	scratch Series // FlavorFeedSingular backing for variadic-sourced cells
	held    []*Series
}

// OpenArray opens a feed over arr starting at index, taking a hold on arr
// for the feed's lifetime.
func OpenArray(arr *Series, index int) *Feed {
	arr.Hold()
	f := &Feed{arr: arr, index: index, scratch: Series{Flavor: FlavorFeedSingular, Cells: make([]Cell, 1)}}
	f.held = append(f.held, arr)
	return f
}

// OpenVariadic opens a feed over a host-supplied variadic source.
func OpenVariadic(src VariadicSource) *Feed {
	return &Feed{variadic: src, scratch: Series{Flavor: FlavorFeedSingular, Cells: make([]Cell, 1)}}
}

// Close releases every hold this feed is still carrying.
func (f *Feed) Close() {
	for _, s := range f.held {
		s.Release()
	}
	f.held = nil
}

// AtEnd reports whether the feed has no more cells without consuming one.
func (f *Feed) AtEnd() bool {
	_, ok := f.At()
	return !ok
}

// At returns the current cell without advancing, using the cached gotten
// slot when present.
func (f *Feed) At() (Cell, bool) {
	if f.gottenSet {
		if f.gotten == nil {
			return Cell{}, false
		}
		return *f.gotten, true
	}
	return f.peek()
}

// peek computes (without caching) what At/FetchNext would see next,
// draining exhausted splice frames and the current array as needed.
func (f *Feed) peek() (Cell, bool) {
	for {
		if f.arr != nil {
			if f.index < len(f.arr.Cells) {
				return f.arr.Cells[f.index], true
			}
			// current array exhausted: pop a splice frame if one is queued
			if f.splice != nil {
				top := f.splice
				f.splice = top.next
				f.arr = top.arr
				f.index = top.index
				continue
			}
			f.arr = nil
		}
		if f.variadic != nil {
			c, ok := f.variadic.Next()
			if !ok {
				f.variadic = nil
				return Cell{}, false
			}
			f.scratch.Cells[0] = c
			f.arr = &f.scratch
			f.index = 0
			continue
		}
		return Cell{}, false
	}
}

// FetchNext advances the feed by one cell and returns the cell that was
// just consumed (the new Lookback value).
func (f *Feed) FetchNext() (Cell, bool) {
	cur, ok := f.At()
	f.gottenSet = false
	f.gotten = nil
	if !ok {
		f.haveLookback = false
		return Cell{}, false
	}
	if f.arr != nil {
		f.index++
	}
	f.lookback = cur
	f.haveLookback = true
	return cur, true
}

// Lookback returns the cell that was at the prior position, i.e. the last
// cell FetchNext consumed.
func (f *Feed) Lookback() (Cell, bool) {
	if !f.haveLookback {
		return Cell{}, false
	}
	return f.lookback, true
}

// Splice pushes arr in front of the feed's current position; the feed
// drains arr fully (from index 0) before resuming whatever it was on.
func (f *Feed) Splice(arr *Series) {
	arr.Hold()
	f.held = append(f.held, arr)
	f.gottenSet = false
	if f.arr != nil {
		f.splice = &spliceFrame{arr: f.arr, index: f.index, next: f.splice}
	}
	f.arr = arr
	f.index = 0
}

// CacheGotten pre-fetches and caches the current cell so a second At() call
// is free. The evaluator does not call it.
func (f *Feed) CacheGotten() (Cell, bool) {
	c, ok := f.peek()
	if ok {
		cp := c
		f.gotten = &cp
	} else {
		f.gotten = nil
	}
	f.gottenSet = true
	return c, ok
}
