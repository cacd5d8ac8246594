package interp

// Recycle runs a stop-the-world mark pass over the engine's
// explicit root set: the universe
// context chain, every live frame's reachable cells, and any API handle not
// yet released. Anything unreached is left for Go's own garbage collector
// to reclaim once no root can still obtain a pointer to it. Recycle itself
// frees nothing and tombstones nothing: the mark result goes to
// tombstoneUnreachableVarlists, which ignores it, so the only visible effect
// is the gcCycles counter.
func (eng *Interp) Recycle() {
	eng.metrics.gcCycles.Inc()
	reachable := map[*Series]bool{}

	markContext := func(ctx *Context) {
		if ctx == nil {
			return
		}
		reachable[ctx.Varlist] = true
		reachable[ctx.Keylist] = true
	}

	for ctx := eng.universe; ctx != nil; ctx = ctx.Parent() {
		markContext(ctx)
	}
	for _, fr := range eng.frames {
		markFrame(fr, reachable, markContext)
	}

	eng.tombstoneUnreachableVarlists(reachable)
}

func markFrame(fr *Frame, reachable map[*Series]bool, markContext func(*Context)) {
	markContext(fr.Binding)
	markCell(fr.Out, reachable, markContext)
	markCell(fr.Spare, reachable, markContext)
	for _, h := range fr.Handles {
		markCell(h.Cell, reachable, markContext)
	}
	if fr.Apply != nil {
		for _, a := range fr.Apply.Args {
			markCell(a, reachable, markContext)
		}
	}
}

func markCell(c Cell, reachable map[*Series]bool, markContext func(*Context)) {
	if c.Payload.Node != nil {
		markSeriesTree(c.Payload.Node, reachable)
	}
	if c.Payload.Ctx != nil {
		markContext(c.Payload.Ctx)
	}
}

func markSeriesTree(s *Series, reachable map[*Series]bool) {
	if s == nil || reachable[s] {
		return
	}
	reachable[s] = true
	for _, c := range s.Cells {
		if c.Payload.Node != nil {
			markSeriesTree(c.Payload.Node, reachable)
		}
		if c.Payload.Ctx != nil {
			reachable[c.Payload.Ctx.Varlist] = true
			reachable[c.Payload.Ctx.Keylist] = true
		}
	}
}

// tombstoneUnreachableVarlists does nothing: reachability here is
// advisory only (Go's GC, not Recycle, owns actual memory reclamation), so
// Recycle never frees anything itself. No context is tombstoned when its
// frame exits either: a context reports itself inaccessible only after an
// explicit Context.Close, and neither dropTop nor Recycle calls it. Recycle
// is kept as the single named hook an embedding host expects
// (Recycle/GC-kick) so it can request a collection pass explicitly.
func (eng *Interp) tombstoneUnreachableVarlists(map[*Series]bool) {}
