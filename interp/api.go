package interp

// This file rounds out the embedding surface: Startup/Shutdown,
// Evaluate-array, Evaluate-step, Make-action, Push-continuation,
// Throw/catch. Most of it is already implemented on *Interp (interp.go) and
// *Frame (frame.go); this file adds the handful of host-facing
// conveniences that don't belong on either of those directly.

// Startup is an alias for New kept for embedders who think in terms of the
// Startup/Shutdown pair rather than Go's usual New/Close naming.
func Startup(options EngineOptions) *Interp { return New(options) }

// HostContinuation is a Go closure a host can splice into a running
// evaluation as if it were a native action with no declared parameters.
type HostContinuation func(eng *Interp) (Cell, error)

// PushContinuation schedules fn to run as the next frame on top of anc. When
// it completes, the trampoline stores fn's result in anc.Spare and re-enters
// anc; an error from fn is thrown instead. Used by host code that wants to interleave native
// Go work with scripted evaluation without recursing through Run again.
func PushContinuation(eng *Interp, anc *Frame, fn HostContinuation) {
	fr := NewFrame(eng, anc, func(fr *Frame) Status {
		out, err := fn(eng)
		if err != nil {
			if uc, ok := err.(*UncaughtThrow); ok {
				return eng.Throw(uc.Label, uc.Payload)
			}
			return eng.Promote(Raise("resource", err.Error()))
		}
		fr.Out = out
		return StatusCompleted
	})
	eng.Push(fr)
}

// EvalArray is a host-facing synonym for Evaluate.
func (eng *Interp) EvalArray(arr *Series) (Cell, error) { return eng.Evaluate(arr) }

// Catch runs body (already reduced to a callback) and reports whether a
// throw matching filter was caught, unwrapping its payload.
func (eng *Interp) Catch(filter CatchFilter, body func() (Cell, error)) (Cell, bool, error) {
	out, err := body()
	if err == nil {
		return out, false, nil
	}
	uc, ok := err.(*UncaughtThrow)
	if !ok {
		return Cell{}, false, err
	}
	if !filter(uc.Label) {
		return Cell{}, false, err
	}
	return uc.Payload, true, nil
}
