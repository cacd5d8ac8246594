package interp

// NewApplyFrame builds a frame that fulfills act's parameters against fr's
// feed and invokes its dispatcher. If left is non-nil, act is
// being called enfix with left as the already-evaluated left operand.
func NewApplyFrame(eng *Interp, anc *Frame, act *Action, left *Cell) *Frame {
	fr := NewFrame(eng, anc, ApplyExecutor)
	fr.Feed = anc.Feed
	fr.Binding = anc.Binding
	fr.Apply = &ApplyState{
		Action:  act,
		Args:    make([]Cell, len(act.Params)),
		Refined: map[*Symbol]bool{},
	}
	if left != nil {
		fr.Apply.EnfixLeft = left
	}
	if act.Exemplar != nil {
		prefillFromExemplar(fr.Apply, act)
	}
	return fr
}

func prefillFromExemplar(st *ApplyState, act *Action) {
	for i, p := range act.Params {
		if p.Name == nil {
			continue
		}
		if v, ok := act.Exemplar.Get(p.Name); ok {
			st.Args[i] = *v
		}
	}
}

// ApplyExecutor drives the argument-fulfillment loop: walk act.Params in
// order, consuming feed cells (or the enfix left operand) per parameter
// class, typecheck, then invoke the dispatcher.
func ApplyExecutor(fr *Frame) Status {
	eng := fr.engine
	st := fr.Apply

	switch fr.State {
	case StateSteppingAgain:
		return applyResumeArg(eng, fr)
	case StateReevaluating:
		return st.Action.Dispatcher(fr)
	}

	for st.ArgIndex < len(st.Action.Params) {
		p := st.Action.Params[st.ArgIndex]

		if p.IsRefinement {
			present := st.Refined[p.Name]
			st.Args[st.ArgIndex] = Logic(present)
			st.ArgIndex++
			continue
		}

		if p.Under != nil && !st.Refined[p.Under] {
			// Argument belongs to a refinement that was not used at this
			// call site: it is not fulfilled from the feed at all.
			st.Args[st.ArgIndex] = Blank()
			st.ArgIndex++
			continue
		}

		if st.ArgIndex == 0 && st.EnfixLeft != nil {
			val := *st.EnfixLeft
			if p.Class == ParamMeta {
				val = metaWrap(val)
			}
			if err := typecheckArg(p, val); err != nil {
				return eng.Promote(Raise("argument", err.Error()))
			}
			st.Args[0] = val
			st.ArgIndex++
			continue
		}

		switch p.Class {
		case ParamReturn, ParamOutput:
			st.ArgIndex++
			continue

		case ParamHardQuote:
			cell, ok := fr.Feed.At()
			if !ok {
				if p.Attrs.Has(AttrEndable) {
					st.Args[st.ArgIndex] = VoidCell()
					st.ArgIndex++
					continue
				}
				return eng.Promote(Raise("argument", "end of input fulfilling quoted parameter "+p.Name.String()))
			}
			fr.Feed.FetchNext()
			val := cell.Unevaluated()
			if err := typecheckArg(p, val); err != nil {
				return eng.Promote(Raise("argument", err.Error()))
			}
			st.Args[st.ArgIndex] = val
			st.ArgIndex++
			continue

		case ParamSoftQuote, ParamMediumQuote:
			cell, ok := fr.Feed.At()
			if !ok {
				if p.Attrs.Has(AttrEndable) {
					st.Args[st.ArgIndex] = VoidCell()
					st.ArgIndex++
					continue
				}
				return eng.Promote(Raise("argument", "end of input fulfilling parameter "+p.Name.String()))
			}
			if cell.Heart == HeartGetWord || cell.Heart == HeartGetGroup {
				fr.Feed.FetchNext()
				sub := NewEvalFrame(eng, fr, singleCellFeed(cell), fr.Binding)
				eng.Push(sub)
				fr.State = StateSteppingAgain
				return StatusContinue
			}
			fr.Feed.FetchNext()
			val := cell.Unevaluated()
			if err := typecheckArg(p, val); err != nil {
				return eng.Promote(Raise("argument", err.Error()))
			}
			st.Args[st.ArgIndex] = val
			st.ArgIndex++
			continue

		case ParamNormal, ParamMeta:
			if fr.Feed.AtEnd() {
				if p.Attrs.Has(AttrEndable) {
					st.Args[st.ArgIndex] = VoidCell()
					st.ArgIndex++
					continue
				}
				return eng.Promote(Raise("argument", "end of input fulfilling parameter "+p.Name.String()))
			}
			sub := NewEvalFrame(eng, fr, fr.Feed, fr.Binding)
			sub.Tight = true
			eng.Push(sub)
			fr.State = StateSteppingAgain
			return StatusContinue

		default:
			st.ArgIndex++
		}
	}

	return dispatch(eng, fr)
}

// applyResumeArg handles the result of a pushed sub-evaluation used to
// fulfill a normal/meta/soft-quote parameter.
func applyResumeArg(eng *Interp, fr *Frame) Status {
	st := fr.Apply
	result := fr.Spare
	fr.State = StateInitial
	if result.IsRaised() {
		return eng.Promote(result)
	}
	p := st.Action.Params[st.ArgIndex]
	val := result.Decay()
	if p.Class == ParamMeta {
		val = metaWrap(result)
	}
	if val.Void() && !p.Attrs.Has(AttrVoidOK) && !p.Attrs.Has(AttrOptional) {
		return eng.Promote(Raise("argument", "void not accepted by parameter "+p.Name.String()))
	}
	if err := typecheckArg(p, val); err != nil {
		return eng.Promote(Raise("argument", err.Error()))
	}
	st.Args[st.ArgIndex] = val
	st.ArgIndex++
	return ApplyExecutor(fr)
}

func typecheckArg(p *Param, val Cell) error {
	if len(p.Types) == 0 {
		return nil
	}
	if !p.Types.Allows(val.Heart) {
		return &RaisedError{Kind: "argument", Message: "parameter " + p.Name.String() + " does not accept " + val.Heart.String()}
	}
	return nil
}

// singleCellFeed wraps one already-fetched cell (e.g. a get-word being
// resolved by soft-quote) in a one-shot array feed.
func singleCellFeed(c Cell) *Feed {
	arr := NewArray(c)
	return OpenArray(arr, 0)
}

// dispatch typechecks the fulfilled arguments a final time, wires up a
// synthesized RETURN if the action declared one, then invokes the
// dispatcher.
func dispatch(eng *Interp, fr *Frame) Status {
	st := fr.Apply
	for i, p := range st.Action.Params {
		if p.IsRefinement || p.Class == ParamReturn || p.Class == ParamOutput {
			continue
		}
		if err := typecheckArg(p, st.Args[i]); err != nil {
			return eng.Promote(Raise("argument", err.Error()))
		}
	}
	fr.State = StateReevaluating
	return st.Action.Dispatcher(fr)
}

// ArgNamed returns the fulfilled argument cell for parameter name, used by
// dispatcher implementations. A parameter that a specialization pre-filled
// (and so removed from Params) is read from the action's exemplar.
func (fr *Frame) ArgNamed(name *Symbol) (Cell, bool) {
	for i, p := range fr.Apply.Action.Params {
		if p.Name == name {
			return fr.Apply.Args[i], true
		}
	}
	if ex := fr.Apply.Action.Exemplar; ex != nil {
		if v, ok := ex.Get(name); ok {
			return *v, true
		}
	}
	return Cell{}, false
}

// RefinementUsed reports whether refinement name was pushed for this call.
func (fr *Frame) RefinementUsed(name *Symbol) bool {
	return fr.Apply.Refined[name]
}
