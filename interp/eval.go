package interp

// EvalExecutor is the core step-by-step expression evaluator.
// It is installed as a Frame's Executor by NewEvalFrame; the trampoline
// calls it repeatedly, once per quantum of work, until it reports
// StatusCompleted or StatusThrown.
func EvalExecutor(fr *Frame) Status {
	eng := fr.engine

	switch fr.State {
	case StateInitial:
		return evalStep(eng, fr)
	case StateRunningGroup:
		return evalFinishGroup(eng, fr)
	case StateSetWordRight, StateSetTupleRight, StateSetGroupRight:
		return evalFinishSetRight(eng, fr)
	case StateSetBlockRight:
		return evalFinishSetBlock(eng, fr)
	case StateLookingAhead:
		return evalResumeAfterApply(eng, fr)
	default:
		return evalStep(eng, fr)
	}
}

// NewEvalFrame builds a frame that evaluates feed to completion, leaving the
// final result in fr.Out.
func NewEvalFrame(eng *Interp, anc *Frame, feed *Feed, binding *Context) *Frame {
	fr := NewFrame(eng, anc, EvalExecutor)
	fr.Feed = feed
	fr.Binding = binding
	return fr
}

// afterValue is the shared trailing step once a frame has produced fr.Out:
// normally it runs the enfix lookahead, but a frame fulfilling a single
// "tight" normal/meta parameter (see apply.go) stops immediately instead, so
// a trailing infix word binds to the caller's own expression rather than
// being absorbed into this argument. This is what makes `1 + 2 * 3` parse
// left to right as `(1 + 2) * 3` instead of `1 + (2 * 3)`.
func afterValue(eng *Interp, fr *Frame) Status {
	if fr.Tight {
		return StatusCompleted
	}
	return evalPostStepLookahead(eng, fr)
}

// evalStep implements one quantum of evaluation: the stale-preserve
// prelude and per-cell-kind dispatch, followed by the post-step enfix
// lookahead in afterValue. No left-quote lookahead is done: an enfix action
// whose first parameter quotes is not offered the current cell before that
// cell is evaluated.
func evalStep(eng *Interp, fr *Frame) Status {
	// Step 1: stale-preserve prelude. If out already holds a value from a
	// prior expression and this step turns out to produce nothing (a
	// vanishing expression, e.g. evaluating `comment "x"`), out must retain
	// its previous value rather than being clobbered with void.
	fr.Out.MarkStale()

	cur, ok := fr.Feed.At()
	if !ok {
		return StatusCompleted // end of feed; fr.Out (possibly stale) is final
	}

	fr.Feed.FetchNext()

	switch {
	case cur.Heart.Inert():
		fr.Out = cur.Unevaluated()
		fr.Out.ClearStale()
		return afterValue(eng, fr)

	case cur.Heart == HeartComma:
		// Expression barrier: discard any stale leftover and produce void.
		fr.Out = VoidCell()
		return afterValue(eng, fr)

	case cur.Quote.IsQuoted():
		c := cur
		c.Quote = c.Quote.Unquoted()
		fr.Out = c.Unevaluated()
		fr.Out.ClearStale()
		return afterValue(eng, fr)

	case cur.Quote.IsQuasi():
		fr.Out = cur.Decay()
		return afterValue(eng, fr)

	case cur.Heart == HeartWord:
		return evalWord(eng, fr, cur)

	case cur.Heart == HeartGetWord:
		val, found := lookupBinding(fr, cur)
		if !found {
			return eng.Throw(WordCell(eng.errorSym, nil), Raise("binding", "unbound word"))
		}
		fr.Out = *val
		fr.Out.ClearStale()
		return afterValue(eng, fr)

	case cur.Heart == HeartSetWord, cur.Heart == HeartSetTuple:
		return evalBeginSetRight(eng, fr, cur)

	case cur.Heart == HeartSetBlock:
		return evalBeginSetBlock(eng, fr, cur)

	case cur.Heart == HeartGroup:
		return evalBeginGroup(eng, fr, cur)

	case cur.Heart == HeartGetGroup:
		return evalBeginGroup(eng, fr, cur)

	case cur.Heart == HeartPath:
		return evalPath(eng, fr, cur)

	case cur.Heart == HeartTuple:
		return evalTuple(eng, fr, cur)

	default:
		fr.Out = cur.Unevaluated()
		fr.Out.ClearStale()
		return afterValue(eng, fr)
	}
}

func lookupBinding(fr *Frame, cur Cell) (*Cell, bool) {
	if cur.Extra != nil {
		return cur.Extra.Lookup(cur.AsSymbol())
	}
	if fr.Binding != nil {
		return fr.Binding.Lookup(cur.AsSymbol())
	}
	return nil, false
}

// evalWord resolves a word and, if it is bound to an action, pushes an
// apply sub-frame to call it.
func evalWord(eng *Interp, fr *Frame, cur Cell) Status {
	val, found := lookupBinding(fr, cur)
	if !found {
		return eng.Throw(WordCell(eng.errorSym, nil), Raise("binding", "unbound word: "+symNameOf(cur)))
	}
	if val.Heart != HeartAction {
		out := *val
		if out.IsRaised() {
			return eng.Promote(out)
		}
		if !out.Void() && out.IsIsotope() {
			return eng.Promote(Raise("isotope", "cannot read isotope via plain word access: "+symNameOf(cur)))
		}
		fr.Out = out.Decay()
		fr.Out.ClearStale()
		return afterValue(eng, fr)
	}
	sub := NewApplyFrame(eng, fr, val.AsAction(), nil)
	sub.Out = Cell{}
	eng.Push(sub)
	fr.State = StateLookingAhead
	return StatusContinue
}

func symNameOf(c Cell) string {
	if s := c.AsSymbol(); s != nil {
		return s.String()
	}
	return "?"
}

// evalPath handles a HeartPath cell (`a/b/c`): the first segment names an
// action in the current binding, and every following segment is a
// refinement word pre-activated in the pushed apply frame's ApplyState
// before argument fulfillment begins — this is what makes `catch/name ...`
// and `get/any ...` reach ApplyState.Refined from real script syntax instead
// of only from a hand-built frame.
func evalPath(eng *Interp, fr *Frame, cur Cell) Status {
	segs := cur.Array().Cells
	if len(segs) == 0 {
		return eng.Throw(WordCell(eng.errorSym, nil), Raise("binding", "empty path"))
	}
	head := segs[0]
	if head.Heart != HeartWord {
		return eng.Throw(WordCell(eng.errorSym, nil), Raise("binding", "path must begin with a word"))
	}
	val, found := lookupBinding(fr, head)
	if !found {
		return eng.Throw(WordCell(eng.errorSym, nil), Raise("binding", "unbound word: "+symNameOf(head)))
	}
	if val.Heart != HeartAction {
		return eng.Throw(WordCell(eng.errorSym, nil), Raise("argument", "path refinements require an action at the head: "+symNameOf(head)))
	}

	sub := NewApplyFrame(eng, fr, val.AsAction(), nil)
	for _, seg := range segs[1:] {
		if seg.Heart != HeartWord {
			return eng.Throw(WordCell(eng.errorSym, nil), Raise("argument", "path refinement must be a word"))
		}
		sub.Apply.Refined[seg.AsSymbol()] = true
	}
	sub.Out = Cell{}
	eng.Push(sub)
	fr.State = StateLookingAhead
	return StatusContinue
}

// evalTuple handles a HeartTuple cell (`a.b.c`): the first segment is
// looked up in the current binding, and every following segment reads a
// field on the context the previous segment produced.
func evalTuple(eng *Interp, fr *Frame, cur Cell) Status {
	segs := cur.Array().Cells
	if len(segs) == 0 {
		return eng.Throw(WordCell(eng.errorSym, nil), Raise("binding", "empty tuple"))
	}
	head := segs[0]
	if head.Heart != HeartWord {
		return eng.Throw(WordCell(eng.errorSym, nil), Raise("binding", "tuple must begin with a word"))
	}
	val, found := lookupBinding(fr, head)
	if !found {
		return eng.Throw(WordCell(eng.errorSym, nil), Raise("binding", "unbound word: "+symNameOf(head)))
	}
	out := *val
	for _, seg := range segs[1:] {
		if seg.Heart != HeartWord {
			return eng.Throw(WordCell(eng.errorSym, nil), Raise("argument", "tuple segment must be a word"))
		}
		if out.Heart != HeartContext {
			return eng.Throw(WordCell(eng.errorSym, nil), Raise("argument", "cannot traverse a non-context value in a tuple"))
		}
		field, ok := out.AsContext().Get(seg.AsSymbol())
		if !ok {
			return eng.Throw(WordCell(eng.errorSym, nil), Raise("binding", "unbound field: "+symNameOf(seg)))
		}
		out = *field
	}
	if out.IsRaised() {
		return eng.Promote(out)
	}
	if !out.Void() && out.IsIsotope() {
		return eng.Promote(Raise("isotope", "cannot read isotope via plain tuple access"))
	}
	fr.Out = out.Decay()
	fr.Out.ClearStale()
	return afterValue(eng, fr)
}

// evalBeginGroup pushes a nested eval frame over the group's own array and
// suspends fr to resume via evalFinishGroup once it completes. fr must stay
// on the stack (StatusContinue, not StatusDelegate) rather than being
// replaced by the sub-frame: fr may be holding a stale prior-expression value
// in Out, and a vanishing group (e.g. `(comment "x")`) needs that value still
// there to fall back to.
func evalBeginGroup(eng *Interp, fr *Frame, cur Cell) Status {
	sub := NewEvalFrame(eng, fr, OpenArray(cur.Array(), 0), fr.Binding)
	eng.Push(sub)
	fr.State = StateRunningGroup
	return StatusContinue
}

func evalFinishGroup(eng *Interp, fr *Frame) Status {
	result := fr.Spare
	if result.IsRaised() {
		return eng.Promote(result)
	}
	if result.IsStale() {
		// The group vanished (e.g. `(comment "x")`): leave fr.Out, which may
		// itself be carrying a stale prior value, untouched.
		return afterValue(eng, fr)
	}
	fr.Out = result.Decay()
	fr.Out.ClearStale()
	return afterValue(eng, fr)
}

// evalBeginSetRight evaluates one expression to the right of a set-word /
// set-tuple, then stores it.
func evalBeginSetRight(eng *Interp, fr *Frame, setCell Cell) Status {
	fr.PendingTarget = setCell
	sub := NewEvalFrame(eng, fr, fr.Feed, fr.Binding)
	sub.State = StateInitial
	sub.StopAfterOneExpr = true
	eng.Push(sub)
	fr.State = StateSetWordRight
	return StatusContinue
}

func evalFinishSetRight(eng *Interp, fr *Frame) Status {
	setCell := fr.PendingTarget
	result := fr.Spare
	if result.IsRaised() {
		return eng.Promote(result)
	}
	if result.IsStale() {
		// The right-hand side vanished (e.g. `x: comment "hi"`): leave the
		// variable unset rather than storing void, and let fr.Out (already
		// marked stale by evalStep's prelude) fall through unset as well.
		return afterValue(eng, fr)
	}
	if !result.Void() && result.IsIsotope() && !result.Flags.Has(FlagFromQuasi) {
		return eng.Promote(Raise("isotope", "cannot assign an unstable isotope that did not originate from a quasi form"))
	}
	decayed := result.Decay()
	binding := setCell.Extra
	var bound *Context
	if binding != nil {
		bound = binding.Bound()
	} else {
		bound = fr.Binding
	}
	if bound == nil || !bound.Set(setCell.AsSymbol(), decayed) {
		return eng.Throw(WordCell(eng.errorSym, nil), Raise("binding", "cannot set word"))
	}
	fr.Out = decayed
	fr.Out.ClearStale()
	return afterValue(eng, fr)
}

// evalBeginSetBlock evaluates the right-hand side once, then distributes the
// resulting pack across the set-block's targets.
func evalBeginSetBlock(eng *Interp, fr *Frame, cur Cell) Status {
	arr := cur.Array()
	targets := append([]Cell(nil), arr.Cells...)
	fr.SetBlock = &SetBlockState{Targets: targets}
	sub := NewEvalFrame(eng, fr, fr.Feed, fr.Binding)
	sub.StopAfterOneExpr = true
	eng.Push(sub)
	fr.State = StateSetBlockRight
	return StatusContinue
}

func evalFinishSetBlock(eng *Interp, fr *Frame) Status {
	result := fr.Spare
	if result.IsRaised() {
		return eng.Promote(result)
	}
	out, err := DistributeSetBlock(eng, fr.SetBlock, result, fr.Binding)
	if err != nil {
		return eng.Promote(Raise(errKind(err), err.Error()))
	}
	fr.SetBlock = nil
	fr.Out = out
	fr.Out.ClearStale()
	return afterValue(eng, fr)
}

func errKind(err error) string {
	if re, ok := err.(*RaisedError); ok {
		return re.Kind
	}
	return "evaluation"
}

// evalPostStepLookahead implements the post-step enfix lookahead: after
// producing a value, check whether the next feed cell is a word bound
// to an enfix action, and if so apply it with fr.Out as its left operand
// before considering the expression finished.
func evalPostStepLookahead(eng *Interp, fr *Frame) Status {
	if fr.Out.IsStale() {
		// A vanishing step; nothing to offer as a left operand, continue the
		// feed as if nothing happened.
		return evalContinueOrComplete(eng, fr)
	}
	next, ok := fr.Feed.At()
	if !ok || next.Heart != HeartWord {
		return evalContinueOrComplete(eng, fr)
	}
	val, found := lookupBinding(fr, next)
	if !found || val.Heart != HeartAction || !val.AsAction().Enfix {
		return evalContinueOrComplete(eng, fr)
	}
	act := val.AsAction()
	fr.Feed.FetchNext()
	left := fr.Out
	sub := NewApplyFrame(eng, fr, act, &left)
	eng.Push(sub)
	fr.State = StateLookingAhead
	return StatusContinue
}

// evalResumeAfterApply picks up the result the trampoline deposited in
// fr.Spare once a pushed action-apply sub-frame completes, then re-runs the
// post-step enfix lookahead in case another enfix action follows.
func evalResumeAfterApply(eng *Interp, fr *Frame) Status {
	result := fr.Spare
	if result.IsRaised() {
		return eng.Promote(result)
	}
	if result.IsStale() {
		// The action vanished (e.g. `comment "x"`): leave fr.Out, already
		// marked stale by evalStep's prelude, holding its prior value.
		return afterValue(eng, fr)
	}
	fr.Out = result.Decay()
	fr.Out.ClearStale()
	return afterValue(eng, fr)
}

func evalContinueOrComplete(eng *Interp, fr *Frame) Status {
	if fr.Feed.AtEnd() || fr.StopAfterOneExpr {
		return StatusCompleted
	}
	fr.State = StateInitial
	return StatusRedo
}
