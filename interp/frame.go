package interp

import "sync/atomic"

// ExecState records where a frame should resume after a pushed sub-frame
// returns.
type ExecState uint8

const (
	StateInitial ExecState = iota
	StateRunningGroup
	StateSetWordRight
	StateSetTupleRight
	StateSetGroupRight
	StateSetBlockRight
	StateSetBlockLookahead
	StateLookingAhead
	StateReevaluating
	StateSteppingAgain
)

// Executor is the function pointer every frame carries: given the frame,
// advance it by one unit of work and report what happened.
type Executor func(fr *Frame) Status

// ApplyState is the action-executor's per-frame union: the
// action being called, which parameter is currently being fulfilled, and
// the argument cells collected so far.
type ApplyState struct {
	Action    *Action
	ArgIndex  int
	Args      []Cell
	Refined   map[*Symbol]bool // which refinements were pushed
	EnfixLeft *Cell            // left operand when called via enfix

	// Dispatcher continuation scratch: a
	// multi-step native dispatcher (if/all/catch/...) that pushes a
	// sub-frame and must resume later stores its loop position here rather
	// than on the Go call stack, since dispatchers are never recursed into.
	Phase        int
	ScratchFeed  *Feed
	ScratchCells []Cell
	ScratchCell  Cell
	ScratchFilter CatchFilter
}

// APIHandle is a host-visible alloc-value handle.
type APIHandle struct {
	Cell    Cell
	Managed bool // promoted via Unmanage; outlives its owning frame
}

// Frame is suspended evaluation state: a runtime activation record for the
// trampoline. It is never recursed into by
// the Go call stack — the Trampoline is the sole owner of the frame stack.
type Frame struct {
	id uint64 // atomic, used for cancellation; see runid/setrunid

	Anc   *Frame
	Feed  *Feed
	Out   Cell
	Spare Cell

	Executor Executor
	State    ExecState
	Label    string

	Apply    *ApplyState
	SetBlock *SetBlockState
	PendingTarget Cell // set-word/set-tuple cell stashed across its right-hand eval, see eval.go

	Binding *Context // lexical context words in this frame resolve against

	StackBaseline int
	Handles       []*APIHandle

	NotifyOnAbruptFailure bool
	Keepalive             bool
	StopAfterOneExpr      bool // used by EvaluateStep, see interp.go
	Tight                 bool // fulfilling one normal/meta parameter: stop after one value, no enfix lookahead

	engine *Interp
}

func (fr *Frame) runid() uint64      { return atomic.LoadUint64(&fr.id) }
func (fr *Frame) setrunid(id uint64) { atomic.StoreUint64(&fr.id, id) }

// NewFrame allocates a frame as a child of anc (nil for a root frame).
func NewFrame(engine *Interp, anc *Frame, exec Executor) *Frame {
	fr := &Frame{Anc: anc, Executor: exec, engine: engine}
	if anc != nil {
		fr.Binding = anc.Binding
		fr.id = anc.runid()
	}
	if engine != nil {
		fr.StackBaseline = engine.stack.Depth()
	}
	return fr
}

// AllocValue creates a new API handle holding val, threaded onto fr's
// handle list.
func (fr *Frame) AllocValue(val Cell) *APIHandle {
	h := &APIHandle{Cell: val}
	fr.Handles = append(fr.Handles, h)
	return h
}

// Release frees h; idempotent.
func (fr *Frame) Release(h *APIHandle) {
	for i, cur := range fr.Handles {
		if cur == h {
			fr.Handles = append(fr.Handles[:i], fr.Handles[i+1:]...)
			return
		}
	}
}

// Unmanage promotes h so its lifetime no longer depends on fr.
func (fr *Frame) Unmanage(h *APIHandle) {
	h.Managed = true
	fr.Release(h)
}

// releaseHandles frees every still-owned, non-promoted handle when fr is
// dropped by the trampoline.
func (fr *Frame) releaseHandles() {
	fr.Handles = nil
}

// dropDataStack restores the engine's data stack to this frame's recorded
// baseline.
func (fr *Frame) dropDataStack() {
	if fr.engine != nil {
		fr.engine.stack.TruncateTo(fr.StackBaseline)
	}
}
