package interp

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ren-core/ren/internal/symtab"
)

// EngineOptions are the user-settable options for New.
type EngineOptions struct {
	// Standard input, output and error streams. Default to os.Stdin,
	// os.Stdout and os.Stderr respectively.
	Stdin          io.Reader
	Stdout, Stderr io.Writer

	// StackLimit bounds how many frames Run will allow on the stack before
	// raising a resource error, guarding against runaway recursion in
	// scripted code.
	StackLimit int

	// ForceGCEachStep runs Recycle on every trampoline step instead of only
	// when the host calls it explicitly; useful for exercising GC-adjacent
	// bugs under test, expensive otherwise.
	ForceGCEachStep bool

	// Logger overrides the default zap logger. Defaults to a production
	// encoder writing to Stderr.
	Logger *zap.Logger
}

// opt stores the resolved engine options after New applies defaults,
// separated from the public EngineOptions so internal code never has to
// handle nil streams or zero limits.
type opt struct {
	stdin           io.Reader
	stdout          io.Writer
	stderr          io.Writer
	stackLimit      int
	forceGCEachStep bool
}

type engineMetrics struct {
	evalSteps    prometheus.Counter
	framesActive prometheus.Gauge
	gcCycles     prometheus.Counter
	throws       *prometheus.CounterVec
}

func newEngineMetrics(sessionID string) *engineMetrics {
	labels := prometheus.Labels{"session": sessionID}
	return &engineMetrics{
		evalSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "ren_eval_steps_total",
			Help:        "Trampoline steps executed.",
			ConstLabels: labels,
		}),
		framesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "ren_frames_active",
			Help:        "Current frame stack depth.",
			ConstLabels: labels,
		}),
		gcCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "ren_gc_cycles_total",
			Help:        "Recycle passes run.",
			ConstLabels: labels,
		}),
		throws: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "ren_throws_total",
			Help:        "Throws raised, by label.",
			ConstLabels: labels,
		}, []string{"label"}),
	}
}

// Interp contains global resources and state for one interpreter session:
// the universe context chain, the shared data/mold stacks, the symbol
// table, and the frame stack the trampoline drives.
type Interp struct {
	// id is an atomic run-id counter used for cancellation (stop/runid);
	// kept at the front of the struct for 64-bit alignment on 32-bit
	// architectures.
	id uint64

	SessionID string
	opt       opt
	logger    *zap.Logger

	symtab   *symtab.Table
	universe *Context // user context; Parent() chains user -> sys -> lib
	lib      *Context
	sys      *Context

	stack *DataStack
	mold  *MoldBuffer

	frames []*Frame
	thrown ThrowState

	errorSym *Symbol
	haltSym  *Symbol

	evalCountdown   int64
	haltRequested   bool
	abruptCleanup   bool

	metrics *engineMetrics
}

// New builds an interpreter session: the lib/sys/user context chain,
// bootstrap builtins, and the shared stacks.
func New(options EngineOptions) *Interp {
	eng := &Interp{
		SessionID: uuid.NewString(),
		opt: opt{
			stackLimit:      options.StackLimit,
			forceGCEachStep: options.ForceGCEachStep,
		},
		symtab:        symtab.New(),
		stack:         NewDataStack(),
		mold:          NewMoldBuffer(),
		evalCountdown: evalCountdownReset,
	}

	if eng.opt.stdin = options.Stdin; eng.opt.stdin == nil {
		eng.opt.stdin = os.Stdin
	}
	if eng.opt.stdout = options.Stdout; eng.opt.stdout == nil {
		eng.opt.stdout = os.Stdout
	}
	if eng.opt.stderr = options.Stderr; eng.opt.stderr == nil {
		eng.opt.stderr = os.Stderr
	}
	if eng.opt.stackLimit == 0 {
		eng.opt.stackLimit = defaultStackLimit
	}

	if options.Logger != nil {
		eng.logger = options.Logger
	} else {
		eng.logger, _ = zap.NewProduction()
	}

	eng.metrics = newEngineMetrics(eng.SessionID)

	eng.errorSym = eng.symtab.Intern("error")
	eng.haltSym = eng.symtab.Intern("halt")

	eng.lib = NewContext(HeartContext, nil, nil, nil)
	eng.lib.Manage()
	eng.sys = NewContext(HeartContext, eng.lib, nil, nil)
	eng.sys.Manage()
	eng.universe = NewContext(HeartContext, eng.sys, nil, nil)
	eng.universe.Manage()

	RegisterBuiltins(eng)

	return eng
}

const defaultStackLimit = 10000

// Logger exposes the engine's structured logger to dependent packages
// (cmd/ren, internal/corehost).
func (eng *Interp) Logger() *zap.Logger { return eng.logger }

// Universe returns the user-level context new top-level bindings land in.
func (eng *Interp) Universe() *Context { return eng.universe }

// Symtab returns the engine's interning table.
func (eng *Interp) Symtab() *symtab.Table { return eng.symtab }

// Metrics exposes the engine's prometheus collectors so a host can register
// them.
func (eng *Interp) Metrics() []prometheus.Collector {
	return []prometheus.Collector{
		eng.metrics.evalSteps,
		eng.metrics.framesActive,
		eng.metrics.gcCycles,
		eng.metrics.throws,
	}
}

// Stop bumps the run-id, invalidating any in-flight frame's cancellation
// check.
func (eng *Interp) Stop() { atomic.AddUint64(&eng.id, 1) }

func (eng *Interp) runid() uint64 { return atomic.LoadUint64(&eng.id) }

// RequestHalt arranges a halt: the next time pollSignals finds the eval
// countdown expired, Run returns an *UncaughtThrow labelled halt. The halt is
// returned from Run directly; it does not unwind through catch frames.
func (eng *Interp) RequestHalt() { eng.haltRequested = true }

// Shutdown releases engine-held resources. Present for symmetry with
// Startup/New in the embedding API; the Go runtime's GC reclaims
// everything else once eng is dropped.
func (eng *Interp) Shutdown() {
	if eng.logger != nil {
		_ = eng.logger.Sync()
	}
}

// Evaluate is the convenience single-shot entry point: evaluate arr's
// already-scanned cells to a final result against the user context.
func (eng *Interp) Evaluate(arr *Series) (Cell, error) {
	fr := NewEvalFrame(eng, nil, OpenArray(arr, 0), eng.universe)
	defer fr.Feed.Close()
	return eng.Run(fr)
}

// EvaluateStep evaluates exactly one expression from feed, leaving the feed
// positioned after it.
func (eng *Interp) EvaluateStep(feed *Feed, binding *Context) (Cell, error) {
	fr := NewEvalFrame(eng, nil, feed, binding)
	fr.StopAfterOneExpr = true
	return eng.Run(fr)
}

// MakeAction compiles specBlock and wires dispatcher into a callable Action
// value.
func (eng *Interp) MakeAction(name string, specBlock *Series, dispatcher Dispatcher) (*Action, error) {
	params, meta, err := CompileSpec(specBlock)
	if err != nil {
		return nil, err
	}
	return NewAction(name, params, meta, dispatcher), nil
}

// MoldResult renders c through the engine's shared mold buffer, the
// convenience a REPL host wants for printing an evaluation result without
// taking on its own push/pop bookkeeping.
func (eng *Interp) MoldResult(c Cell) string {
	return eng.mold.MoldToString(c)
}

// WithAbruptFailureStack attaches the current Go stack trace to msg. Nothing
// in this package calls it; WrapAbruptFailure (throw.go) does not use it.
func WithAbruptFailureStack(msg string) string {
	return fmt.Sprintf("%s\n%s", msg, debug.Stack())
}
