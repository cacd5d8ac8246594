package interp

// SetBlockState drives multi-return destructuring of a set-block target
// like `[a b]: pack [10 20]`. It is
// threaded onto the Frame evaluating the set-block's right-hand side so the
// evaluator executor can distribute the produced pack across targets once
// the right side completes.
type SetBlockState struct {
	Targets []Cell // the set-block's own cells: word, get-word, meta-word, or blank
	Index   int    // which target receives the next pack slot
}

// targetKind classifies one slot of a set-block target list.
type targetKind uint8

const (
	targetSkip targetKind = iota
	targetWildcard
	targetWord
	targetMeta
)

func classifyTarget(c Cell) targetKind {
	switch c.Heart {
	case HeartBlank:
		return targetSkip
	case HeartIssue:
		return targetWildcard
	case HeartMetaWord:
		return targetMeta
	default:
		return targetWord
	}
}

// Pack is the carrier for a multi-return result: an ordinary block cell
// whose cells are distributed one-for-one across a set-block's targets.
func MakePack(cells []Cell) Cell {
	arr := NewArray(cells...)
	arr.Manage()
	c := BlockCell(arr)
	c.Flags |= FlagPack
	return c
}

func IsPack(c Cell) bool { return c.Flags.Has(FlagPack) }

// DistributeSetBlock applies a completed right-hand-side result to a
// set-block's targets, writing each non-skip, non-wildcard target into
// binding.
func DistributeSetBlock(eng *Interp, st *SetBlockState, result Cell, binding *Context) (Cell, error) {
	var packCells []Cell
	if IsPack(result) {
		packCells = result.Array().Cells
	} else {
		packCells = []Cell{result}
	}

	pi := 0
	for _, target := range st.Targets {
		if target.Heart == HeartComma {
			break
		}
		kind := classifyTarget(target)
		switch kind {
		case targetSkip:
			pi++
			continue
		case targetWildcard:
			pi++
			continue
		}
		if pi >= len(packCells) {
			return Cell{}, &RaisedError{Kind: "argument", Message: "not enough pack values for set-block"}
		}
		val := packCells[pi]
		pi++
		if kind == targetMeta {
			val = metaWrap(val)
		} else {
			val = val.Decay()
		}
		sym := target.AsSymbol()
		if sym == nil {
			return Cell{}, &RaisedError{Kind: "binding", Message: "set-block target is not a word"}
		}
		if !binding.Set(sym, val) {
			return Cell{}, &RaisedError{Kind: "binding", Message: "cannot set protected binding"}
		}
	}

	if len(packCells) == 0 {
		return VoidCell(), nil
	}
	return packCells[0], nil
}

// metaWrap lifts val one quote level, promoting an isotope to a quasiform so
// it can be captured and later restored with unmeta.
func metaWrap(val Cell) Cell {
	if val.IsIsotope() {
		v := val
		v.Quote = QuoteQuasi
		return v
	}
	v := val
	v.Quote = v.Quote.Quoted()
	return v
}
