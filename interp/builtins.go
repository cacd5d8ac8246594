package interp

// RegisterBuiltins installs the bootstrap action set into eng.lib: if/else, all, catch/
// throw, get, comment, quote/the/meta/unmeta, and the arithmetic enfix pair
// `+`/`*` needed to demonstrate left-to-right enfix chaining. A production
// build would load the rest of the mezzanine from scripted source; this
// port wires just enough natives, in the dispatcher style the action
// executor expects, to exercise every module end to end.
func RegisterBuiltins(eng *Interp) {
	sym := eng.symtab.Intern

	def := func(name string, params []*Param, d Dispatcher) {
		act := NewAction(name, params, &ActionMeta{Notes: map[string]string{}}, d)
		eng.lib.Set(sym(name), ActionCell(act))
	}

	p := func(name string, class ParamClass, attrs ParamAttrs) *Param {
		return &Param{Name: sym(name), Class: class, Attrs: attrs}
	}
	refinement := func(name string) *Param {
		return &Param{Name: sym(name), Class: ParamRefinement, IsRefinement: true}
	}

	def("if", []*Param{
		p("condition", ParamNormal, 0),
		p("branch", ParamNormal, AttrVoidOK),
	}, dispatchIf)

	elseAct := NewAction("else", []*Param{
		p("left", ParamMeta, 0),
		p("branch", ParamNormal, AttrVoidOK),
	}, &ActionMeta{Notes: map[string]string{}}, dispatchElse)
	eng.lib.Set(sym("else"), ActionCell(elseAct.AsEnfix(false, false)))

	def("either", []*Param{
		p("condition", ParamNormal, 0),
		p("true-branch", ParamNormal, 0),
		p("false-branch", ParamNormal, 0),
	}, dispatchEither)

	def("all", []*Param{
		p("block", ParamNormal, 0),
	}, dispatchAll)

	def("any", []*Param{
		p("block", ParamNormal, 0),
	}, dispatchAny)

	def("comment", []*Param{
		p("text", ParamHardQuote, 0),
	}, dispatchComment)

	def("quote", []*Param{
		p("value", ParamHardQuote, 0),
	}, dispatchQuote)

	def("the", []*Param{
		p("value", ParamHardQuote, 0),
	}, dispatchQuote)

	def("meta", []*Param{
		p("value", ParamNormal, AttrVoidOK),
	}, dispatchMeta)

	def("unmeta", []*Param{
		p("value", ParamNormal, 0),
	}, dispatchUnmeta)

	def("catch", append([]*Param{
		p("body", ParamNormal, 0),
	}, refinement("name"), &Param{Name: sym("label"), Class: ParamHardQuote, Under: sym("name")}),
		dispatchCatch)

	def("throw", append([]*Param{
		p("value", ParamNormal, 0),
	}, refinement("name"), &Param{Name: sym("label"), Class: ParamHardQuote, Under: sym("name")}),
		dispatchThrow)

	def("pack", []*Param{
		p("values", ParamNormal, 0),
	}, dispatchPack)

	def("get", []*Param{
		p("source", ParamHardQuote, 0),
		refinement("any"),
	}, dispatchGet)

	plus := NewAction("+", []*Param{
		p("left", ParamNormal, 0),
		p("right", ParamNormal, 0),
	}, &ActionMeta{Notes: map[string]string{}}, dispatchAdd)
	eng.lib.Set(sym("+"), ActionCell(plus.AsEnfix(false, false)))

	times := NewAction("*", []*Param{
		p("left", ParamNormal, 0),
		p("right", ParamNormal, 0),
	}, &ActionMeta{Notes: map[string]string{}}, dispatchMul)
	eng.lib.Set(sym("*"), ActionCell(times.AsEnfix(true, false)))
}

func dispatchIf(fr *Frame) Status {
	cond, _ := fr.ArgNamed(fr.Apply.Action.Params[0].Name)
	branch, _ := fr.ArgNamed(fr.Apply.Action.Params[1].Name)
	if !cond.IsTruthy() {
		fr.Out = VoidCell()
		return StatusCompleted
	}
	return runBranch(fr, branch)
}

func dispatchEither(fr *Frame) Status {
	cond, _ := fr.ArgNamed(fr.Apply.Action.Params[0].Name)
	trueB, _ := fr.ArgNamed(fr.Apply.Action.Params[1].Name)
	falseB, _ := fr.ArgNamed(fr.Apply.Action.Params[2].Name)
	if cond.IsTruthy() {
		return runBranch(fr, trueB)
	}
	return runBranch(fr, falseB)
}

func runBranch(fr *Frame, branch Cell) Status {
	if branch.Heart != HeartBlock {
		fr.Out = branch
		return StatusCompleted
	}
	sub := NewEvalFrame(fr.engine, fr, OpenArray(branch.Array(), 0), fr.Binding)
	fr.engine.Push(sub)
	return StatusDelegate
}

// dispatchAll implements `all [expr1 expr2 ...]`: evaluate each expression
// in turn, short-circuiting to false the moment one is falsey.
func dispatchAll(fr *Frame) Status {
	return allOrAny(fr, true)
}

func dispatchAny(fr *Frame) Status {
	return allOrAny(fr, false)
}

// allOrAny is a resumable dispatcher: since dispatchers are never recursed
// into by the Go call stack, the per-expression loop over
// the block's contents is driven by pushing one eval sub-frame at a time
// and resuming via fr.Apply.Phase/ScratchFeed rather than by calling Run
// reentrantly against the shared frame stack.
func allOrAny(fr *Frame, wantAll bool) Status {
	st := fr.Apply
	eng := fr.engine

	if eng.thrown.Active {
		if st.ScratchFeed != nil {
			st.ScratchFeed.Close()
		}
		return StatusThrown
	}

	if st.Phase == 0 {
		block, _ := fr.ArgNamed(st.Action.Params[0].Name)
		if block.Heart != HeartBlock {
			fr.Out = Logic(block.IsTruthy())
			return StatusCompleted
		}
		st.ScratchFeed = OpenArray(block.Array(), 0)
		st.ScratchCell = Cell{} // no value produced yet
		st.Phase = 1
	} else {
		out := fr.Spare
		if out.IsRaised() {
			st.ScratchFeed.Close()
			return eng.Promote(out)
		}
		if !out.Void() {
			truthy := out.IsTruthy()
			if wantAll && !truthy {
				st.ScratchFeed.Close()
				fr.Out = Logic(false)
				return StatusCompleted
			}
			if !wantAll && truthy {
				st.ScratchFeed.Close()
				fr.Out = out
				return StatusCompleted
			}
			st.ScratchCell = out
		}
	}

	if st.ScratchFeed.AtEnd() {
		st.ScratchFeed.Close()
		if st.ScratchCell.Void() {
			fr.Out = Logic(wantAll)
		} else {
			fr.Out = st.ScratchCell
		}
		return StatusCompleted
	}
	sub := NewEvalFrame(eng, fr, st.ScratchFeed, fr.Binding)
	sub.StopAfterOneExpr = true
	eng.Push(sub)
	return StatusContinue
}

// dispatchComment discards its hard-quoted argument entirely, leaving out
// stale so the surrounding expression's prior value survives.
func dispatchComment(fr *Frame) Status {
	fr.Out = VoidCell()
	fr.Out.MarkStale()
	return StatusCompleted
}

func dispatchQuote(fr *Frame) Status {
	v, _ := fr.ArgNamed(fr.Apply.Action.Params[0].Name)
	fr.Out = v
	return StatusCompleted
}

func dispatchMeta(fr *Frame) Status {
	v, _ := fr.ArgNamed(fr.Apply.Action.Params[0].Name)
	fr.Out = metaWrap(v)
	return StatusCompleted
}

func dispatchUnmeta(fr *Frame) Status {
	v, _ := fr.ArgNamed(fr.Apply.Action.Params[0].Name)
	if out, ok := unmetaWrap(v); ok {
		fr.Out = out
		return StatusCompleted
	}
	return fr.engine.Promote(Raise("argument", "unmeta requires a meta-form value"))
}

// unmetaWrap reverses metaWrap: a quasi form decays to its isotope, a quoted
// form drops one quote level. ok is false if v is neither, i.e. not a valid
// meta-form value.
func unmetaWrap(v Cell) (Cell, bool) {
	if v.Quote.IsQuasi() {
		return v.Decay(), true
	}
	if v.Quote.IsQuoted() {
		v.Quote = v.Quote.Unquoted()
		return v, true
	}
	return v, false
}

// dispatchElse implements enfix `else`: left was meta-wrapped by the apply
// executor's enfix fulfillment, so a vanished/void left (e.g. `if false
// [...]`) arrives as a meta-void and runs the branch; any other left value
// arrives as its meta form and is unwrapped back to its original value,
// the branch is skipped, and that original value passes through unchanged.
func dispatchElse(fr *Frame) Status {
	leftMeta, _ := fr.ArgNamed(fr.Apply.Action.Params[0].Name)
	branch, _ := fr.ArgNamed(fr.Apply.Action.Params[1].Name)
	if leftMeta.Void() {
		return runBranch(fr, branch)
	}
	out, ok := unmetaWrap(leftMeta)
	if !ok {
		out = leftMeta
	}
	fr.Out = out
	return StatusCompleted
}

// dispatchCatch evaluates body, trapping a throw whose label matches (by
// name, if /name was used) or any throw otherwise.
// Resumable, like allOrAny: the sub-frame it pushes shares the engine's one
// frame stack, so a throw from inside body surfaces here as eng.thrown
// being active on re-entry rather than as a returned Go error.
func dispatchCatch(fr *Frame) Status {
	eng := fr.engine
	st := fr.Apply

	if st.Phase == 0 {
		st.Phase = 1
		body, _ := fr.ArgNamed(st.Action.Params[0].Name)
		if fr.RefinementUsed(st.Action.Params[1].Name) {
			label, _ := fr.ArgNamed(st.Action.Params[2].Name)
			if sym := label.AsSymbol(); sym != nil {
				st.ScratchFilter = ByWordName(sym)
			} else {
				st.ScratchFilter = AnyLabel
			}
		} else {
			st.ScratchFilter = AnyLabel
		}
		if body.Heart != HeartBlock {
			fr.Out = body
			return StatusCompleted
		}
		sub := NewEvalFrame(eng, fr, OpenArray(body.Array(), 0), fr.Binding)
		eng.Push(sub)
		return StatusContinue
	}

	if eng.thrown.Active {
		if payload, ok := eng.TryCatch(st.ScratchFilter); ok {
			fr.Out = payload
			return StatusCompleted
		}
		return StatusThrown
	}

	result := fr.Spare
	if result.IsRaised() {
		return eng.Promote(result)
	}
	fr.Out = result
	return StatusCompleted
}

// dispatchGet implements `get 'word` / `get/any 'word`: a programmatic
// fetch by word value, distinct from `:word` get-word syntax. Plain `get`
// fails on an unbound word or a plain isotope read, matching word lookup's
// own rule; `/any` suppresses both, reporting an unbound word as a none
// isotope instead of an error.
func dispatchGet(fr *Frame) Status {
	eng := fr.engine
	st := fr.Apply
	source, _ := fr.ArgNamed(st.Action.Params[0].Name)
	sym := source.AsSymbol()
	if sym == nil {
		return eng.Promote(Raise("argument", "get requires a word"))
	}
	anyRefined := fr.RefinementUsed(st.Action.Params[1].Name)
	val, found := lookupBinding(fr, source)
	if !found {
		if anyRefined {
			fr.Out = noneIsotope()
			return StatusCompleted
		}
		return eng.Promote(Raise("binding", "unbound word: "+sym.String()))
	}
	if !anyRefined && !val.Void() && val.IsIsotope() {
		return eng.Promote(Raise("isotope", "cannot get isotope without /any"))
	}
	fr.Out = *val
	fr.Out.ClearStale()
	return StatusCompleted
}

// noneIsotope is the "unset" sentinel `get/any` reports for a word with no
// bound slot at all: an isotope form of the stable `_` blank value.
func noneIsotope() Cell {
	v := Blank()
	v.Quote = QuoteIsotope
	return v
}

// dispatchThrow throws its value argument, labelled by /name's word when
// given, or the generic `throw` word otherwise. The label is what a catcher's
// own /name refinement filters against (see dispatchCatch).
func dispatchThrow(fr *Frame) Status {
	st := fr.Apply
	v, _ := fr.ArgNamed(st.Action.Params[0].Name)
	label := fr.engine.symtab.Intern("throw")
	if fr.RefinementUsed(st.Action.Params[1].Name) {
		nameCell, _ := fr.ArgNamed(st.Action.Params[2].Name)
		if sym := nameCell.AsSymbol(); sym != nil {
			label = sym
		}
	}
	return fr.engine.Throw(WordCell(label, nil), v)
}

// dispatchPack wraps its already-evaluated block argument's cells into a
// multi-return pack.
func dispatchPack(fr *Frame) Status {
	v, _ := fr.ArgNamed(fr.Apply.Action.Params[0].Name)
	if v.Heart != HeartBlock {
		fr.Out = MakePack([]Cell{v})
		return StatusCompleted
	}
	fr.Out = MakePack(append([]Cell(nil), v.Array().Cells...))
	return StatusCompleted
}

func dispatchAdd(fr *Frame) Status {
	l, _ := fr.ArgNamed(fr.Apply.Action.Params[0].Name)
	r, _ := fr.ArgNamed(fr.Apply.Action.Params[1].Name)
	fr.Out = Integer(l.AsInteger() + r.AsInteger())
	return StatusCompleted
}

func dispatchMul(fr *Frame) Status {
	l, _ := fr.ArgNamed(fr.Apply.Action.Params[0].Name)
	r, _ := fr.ArgNamed(fr.Apply.Action.Params[1].Name)
	fr.Out = Integer(l.AsInteger() * r.AsInteger())
	return StatusCompleted
}
