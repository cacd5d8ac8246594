package interp_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ren-core/ren/internal/corelog"
	"github.com/ren-core/ren/interp"
)

func newTestEngine(t *testing.T) *interp.Interp {
	t.Helper()
	eng := interp.New(interp.EngineOptions{Logger: corelog.Discard()})
	t.Cleanup(eng.Shutdown)
	return eng
}

func sym(eng *interp.Interp, name string) *interp.Symbol {
	return eng.Symtab().Intern(name)
}

func word(eng *interp.Interp, name string) interp.Cell {
	return interp.WordCell(sym(eng, name), nil)
}

func evalCells(t *testing.T, eng *interp.Interp, cells ...interp.Cell) interp.Cell {
	t.Helper()
	out, err := eng.Evaluate(interp.NewArray(cells...))
	require.NoError(t, err)
	return out
}

// TestEnfixChainsLeftToRight is the canonical scenario: `1 + 2 * 3` must
// evaluate left to right with no operator precedence, i.e. (1 + 2) * 3 = 9,
// not 1 + (2 * 3) = 7. This exercises the "tight" argument fetch that keeps
// a normal parameter's sub-evaluation from absorbing a trailing enfix word
// meant for the outer expression.
func TestEnfixChainsLeftToRight(t *testing.T) {
	eng := newTestEngine(t)
	out := evalCells(t, eng,
		interp.Integer(1), word(eng, "+"), interp.Integer(2), word(eng, "*"), interp.Integer(3),
	)
	require.Equal(t, interp.HeartInteger, out.Heart)
	require.EqualValues(t, 9, out.AsInteger())
}

func TestEnfixSingleStep(t *testing.T) {
	eng := newTestEngine(t)
	out := evalCells(t, eng, interp.Integer(4), word(eng, "+"), interp.Integer(5))
	require.EqualValues(t, 9, out.AsInteger())
}

func TestEnfixDefersThenChains(t *testing.T) {
	// `2 * 3 + 1` chains the same way: (2 * 3) + 1 = 7.
	eng := newTestEngine(t)
	out := evalCells(t, eng,
		interp.Integer(2), word(eng, "*"), interp.Integer(3), word(eng, "+"), interp.Integer(1),
	)
	require.EqualValues(t, 7, out.AsInteger())
}

func TestIfTrueBranchRunsBlock(t *testing.T) {
	eng := newTestEngine(t)
	branch := interp.NewArray(interp.Integer(42))
	out := evalCells(t, eng, word(eng, "if"), interp.Logic(true), interp.BlockCell(branch))
	require.EqualValues(t, 42, out.AsInteger())
}

func TestIfFalseBranchVanishes(t *testing.T) {
	eng := newTestEngine(t)
	branch := interp.NewArray(interp.Integer(42))
	out := evalCells(t, eng, word(eng, "if"), interp.Logic(false), interp.BlockCell(branch))
	require.True(t, out.Void())
}

func TestEitherPicksCorrectBranch(t *testing.T) {
	eng := newTestEngine(t)
	trueBranch := interp.BlockCell(interp.NewArray(interp.Integer(1)))
	falseBranch := interp.BlockCell(interp.NewArray(interp.Integer(2)))

	out := evalCells(t, eng, word(eng, "either"), interp.Logic(true), trueBranch, falseBranch)
	require.EqualValues(t, 1, out.AsInteger())

	out = evalCells(t, eng, word(eng, "either"), interp.Logic(false), trueBranch, falseBranch)
	require.EqualValues(t, 2, out.AsInteger())
}

// TestCommentVanishesPreservingPriorValue: `comment "x"` after a real
// expression must leave the previous result in place rather than clobber it
// with void, the stale-preserve rule evalStep's prelude implements.
func TestCommentVanishesPreservingPriorValue(t *testing.T) {
	eng := newTestEngine(t)
	out := evalCells(t, eng, interp.Integer(7), word(eng, "comment"), interp.TextCell("irrelevant"))
	require.EqualValues(t, 7, out.AsInteger())
}

// TestAllShortCircuitsOnFalsey exercises the resumable allOrAny dispatcher.
func TestAllShortCircuitsOnFalsey(t *testing.T) {
	eng := newTestEngine(t)
	block := interp.NewArray(interp.Logic(true), interp.Logic(false), interp.Integer(99))
	out := evalCells(t, eng, word(eng, "all"), interp.BlockCell(block))
	require.Equal(t, interp.HeartLogic, out.Heart)
	require.False(t, out.IsTruthy())
}

func TestAllReturnsLastWhenAllTruthy(t *testing.T) {
	eng := newTestEngine(t)
	block := interp.NewArray(interp.Logic(true), interp.Integer(5))
	out := evalCells(t, eng, word(eng, "all"), interp.BlockCell(block))
	require.EqualValues(t, 5, out.AsInteger())
}

// TestSetBlockDestructuresPack covers `[a b]: pack [10 20]` followed by
// reading both bindings back out.
func TestSetBlockDestructuresPack(t *testing.T) {
	eng := newTestEngine(t)

	// There is no dedicated set-block constructor; a set-block cell is just
	// a block cell with its Heart switched to HeartSetBlock.
	setBlock := interp.BlockCell(interp.NewArray(word(eng, "a"), word(eng, "b")))
	setBlock.Heart = interp.HeartSetBlock

	packArgs := interp.NewArray(interp.Integer(10), interp.Integer(20))

	evalCells(t, eng,
		setBlock, word(eng, "pack"), interp.BlockCell(packArgs),
	)

	aVal, ok := eng.Universe().Lookup(sym(eng, "a"))
	require.True(t, ok)
	require.EqualValues(t, 10, aVal.AsInteger())

	bVal, ok := eng.Universe().Lookup(sym(eng, "b"))
	require.True(t, ok)
	require.EqualValues(t, 20, bVal.AsInteger())
}

// TestCatchCatchesThrow covers plain `catch [throw 9]`.
func TestCatchCatchesThrow(t *testing.T) {
	eng := newTestEngine(t)
	body := interp.NewArray(word(eng, "throw"), interp.Integer(9))
	out := evalCells(t, eng, word(eng, "catch"), interp.BlockCell(body))
	require.EqualValues(t, 9, out.AsInteger())
}

// TestUncaughtThrowPropagatesAsError confirms a throw with no catch surfaces
// as an *interp.UncaughtThrow from Evaluate.
func TestUncaughtThrowPropagatesAsError(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.Evaluate(interp.NewArray(word(eng, "throw"), interp.Integer(1)))
	require.Error(t, err)
	var uncaught *interp.UncaughtThrow
	require.ErrorAs(t, err, &uncaught)
}

func TestMetaUnmetaRoundTrip(t *testing.T) {
	eng := newTestEngine(t)
	out := evalCells(t, eng, word(eng, "unmeta"), word(eng, "meta"), interp.Integer(3))
	require.EqualValues(t, 3, out.AsInteger())
}

// TestAllReturnsLastEvaluatedValueAcrossExpressions covers `all [1 + 2
// comment "x"]` -> 3: the trailing vanishing comment must not clobber the
// last truthy value produced by the block.
func TestAllReturnsLastEvaluatedValueAcrossExpressions(t *testing.T) {
	eng := newTestEngine(t)
	block := interp.NewArray(
		interp.Integer(1), word(eng, "+"), interp.Integer(2),
		word(eng, "comment"), interp.TextCell("x"),
	)
	out := evalCells(t, eng, word(eng, "all"), interp.BlockCell(block))
	require.EqualValues(t, 3, out.AsInteger())
}

func TestIfElseRunsBranchOnFalseLeft(t *testing.T) {
	eng := newTestEngine(t)
	trueBranch := interp.BlockCell(interp.NewArray(interp.Integer(10)))
	elseBranch := interp.BlockCell(interp.NewArray(interp.Integer(20)))
	out := evalCells(t, eng,
		word(eng, "if"), interp.Logic(false), trueBranch, word(eng, "else"), elseBranch,
	)
	require.EqualValues(t, 20, out.AsInteger())
}

func TestIfElsePassesThroughTrueLeft(t *testing.T) {
	eng := newTestEngine(t)
	trueBranch := interp.BlockCell(interp.NewArray(interp.Integer(10)))
	elseBranch := interp.BlockCell(interp.NewArray(interp.Integer(20)))
	out := evalCells(t, eng,
		word(eng, "if"), interp.Logic(true), trueBranch, word(eng, "else"), elseBranch,
	)
	require.EqualValues(t, 10, out.AsInteger())
}

// TestGroupVanishingPreservesStaleValue covers `10 (comment "x")`: the
// trailing group must vanish without clobbering the prior expression's
// value, exercising evalBeginGroup/evalFinishGroup's StateRunningGroup path.
func TestGroupVanishingPreservesStaleValue(t *testing.T) {
	eng := newTestEngine(t)
	group := interp.GroupCell(interp.NewArray(word(eng, "comment"), interp.TextCell("x")))
	out := evalCells(t, eng, interp.Integer(10), group)
	require.EqualValues(t, 10, out.AsInteger())
}

// TestSetWordLeavesUnsetWhenRightVanishes covers `x: comment "hi"` then a
// plain read of `x`, which must fail because the slot was never created.
func TestSetWordLeavesUnsetWhenRightVanishes(t *testing.T) {
	eng := newTestEngine(t)
	setX := interp.SetWordCell(sym(eng, "x"), nil)
	evalCells(t, eng, setX, word(eng, "comment"), interp.TextCell("hi"))

	_, err := eng.Evaluate(interp.NewArray(word(eng, "x")))
	require.Error(t, err)
}

// TestGetAnyReportsNoneIsotopeForUnboundWord covers the spec's meta-read
// scenario: a word with no bound slot at all reads as a none isotope under
// get/any instead of erroring.
func TestGetAnyReportsNoneIsotopeForUnboundWord(t *testing.T) {
	eng := newTestEngine(t)
	getPath := interp.PathCell(interp.NewArray(word(eng, "get"), word(eng, "any")))
	lit := word(eng, "never-bound")
	lit.Quote = lit.Quote.Quoted()

	out := evalCells(t, eng, getPath, lit)
	require.Equal(t, interp.HeartBlank, out.Heart)
	require.True(t, out.IsIsotope())
}

// TestCatchNameMatchesLabelledThrow covers `catch/name [throw/name 1 'foo]
// 'foo`, exercising real path-syntax refinement parsing end to end.
func TestCatchNameMatchesLabelledThrow(t *testing.T) {
	eng := newTestEngine(t)
	throwPath := interp.PathCell(interp.NewArray(word(eng, "throw"), word(eng, "name")))
	fooLit := word(eng, "foo")
	fooLit.Quote = fooLit.Quote.Quoted()
	body := interp.NewArray(throwPath, interp.Integer(1), fooLit)

	catchPath := interp.PathCell(interp.NewArray(word(eng, "catch"), word(eng, "name")))
	out := evalCells(t, eng, catchPath, interp.BlockCell(body), fooLit)
	require.EqualValues(t, 1, out.AsInteger())
}

// TestCatchNameMismatchRethrows covers `catch/name [throw/name 1 'foo]
// 'bar`: the label mismatch must rethrow rather than catch.
func TestCatchNameMismatchRethrows(t *testing.T) {
	eng := newTestEngine(t)
	throwPath := interp.PathCell(interp.NewArray(word(eng, "throw"), word(eng, "name")))
	fooLit := word(eng, "foo")
	fooLit.Quote = fooLit.Quote.Quoted()
	barLit := word(eng, "bar")
	barLit.Quote = barLit.Quote.Quoted()
	body := interp.NewArray(throwPath, interp.Integer(1), fooLit)

	catchPath := interp.PathCell(interp.NewArray(word(eng, "catch"), word(eng, "name")))
	_, err := eng.Evaluate(interp.NewArray(catchPath, interp.BlockCell(body), barLit))
	require.Error(t, err)
	var uncaught *interp.UncaughtThrow
	require.ErrorAs(t, err, &uncaught)
}
