package interp_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ren-core/ren/interp"
)

// TestPushContinuationSplicesHostResult mirrors how a resumable dispatcher
// interleaves host Go work with the trampoline: push a continuation, resume
// on the next turn by reading fr.Spare.
func TestPushContinuationSplicesHostResult(t *testing.T) {
	eng := newTestEngine(t)
	var called bool
	root := interp.NewFrame(eng, nil, func(fr *interp.Frame) interp.Status {
		if !called {
			called = true
			interp.PushContinuation(eng, fr, func(eng *interp.Interp) (interp.Cell, error) {
				return interp.Integer(99), nil
			})
			return interp.StatusContinue
		}
		fr.Out = fr.Spare
		return interp.StatusCompleted
	})
	out, err := eng.Run(root)
	require.NoError(t, err)
	require.EqualValues(t, 99, out.AsInteger())
}

func TestCatchUnwrapsMatchingThrow(t *testing.T) {
	eng := newTestEngine(t)
	body := func() (interp.Cell, error) {
		return eng.Evaluate(interp.NewArray(word(eng, "throw"), interp.Integer(5)))
	}
	payload, caught, err := eng.Catch(interp.AnyLabel, body)
	require.NoError(t, err)
	require.True(t, caught)
	require.EqualValues(t, 5, payload.AsInteger())
}

func TestCatchPassesThroughNonMatchingThrow(t *testing.T) {
	eng := newTestEngine(t)
	sentinel := &interp.UncaughtThrow{Label: word(eng, "other"), Payload: interp.Integer(1)}
	body := func() (interp.Cell, error) { return interp.Cell{}, sentinel }
	_, caught, err := eng.Catch(interp.ByWordName(sym(eng, "nomatch")), body)
	require.False(t, caught)
	require.Error(t, err)
}

func TestRecycleDoesNotPanic(t *testing.T) {
	eng := newTestEngine(t)
	evalCells(t, eng, interp.Integer(1))
	require.NotPanics(t, eng.Recycle)
}
