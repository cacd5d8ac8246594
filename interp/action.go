package interp

// ParamClass selects how the action executor fulfills one parameter.
type ParamClass uint8

const (
	ParamNormal     ParamClass = iota // evaluate one expression
	ParamMeta                         // evaluate + quote-by-one the result
	ParamHardQuote                    // copy the next feed cell verbatim
	ParamSoftQuote                    // copy verbatim unless escapable get-form
	ParamMediumQuote                  // soft + accepts one literal quote level
	ParamReturn                       // filled by the frame's definitional RETURN
	ParamOutput                       // multi-return slot, filled from set-block
	ParamRefinement                   // truthy iff its path-segment was pushed
)

// ParamAttrs are the `<...>` tag attributes a parameter may carry.
type ParamAttrs uint8

const (
	AttrOptional  ParamAttrs = 1 << iota // <opt>  — accepts null
	AttrEndable                          // <end>  — tolerates end-of-feed
	AttrVoidOK                           // <void> — accepts void
	AttrSkippable                        // <skip>; typecheck does not consult it
	AttrVariadic                         // <variadic>; fulfillment does not consult it
)

func (a ParamAttrs) Has(bit ParamAttrs) bool { return a&bit != 0 }

// TypeSet constrains which Hearts a parameter accepts; an empty (nil) set
// means "any type".
type TypeSet map[Heart]bool

// Allows reports whether h satisfies ts.
func (ts TypeSet) Allows(h Heart) bool {
	if len(ts) == 0 {
		return true
	}
	return ts[h]
}

// Param is one declared parameter or refinement.
type Param struct {
	Name    *Symbol
	Class   ParamClass
	Attrs   ParamAttrs
	Types   TypeSet
	Note    string
	IsRefinement bool
	Under   *Symbol // for args declared under a refinement, the refinement's name
	Vanishable bool // set when the only typeset entry is block!; nothing reads it
}

// ActionMeta is the optional description/notes record produced by the spec
// compiler.
type ActionMeta struct {
	Description string
	Notes       map[string]string // keyed by parameter name's spelling
}

// Dispatcher is the uniform polymorphism point for every action kind
// (native, interpreted, specialization, generic, hijacker): it receives the
// frame built by the action executor and returns a trampoline Status.
type Dispatcher func(fr *Frame) Status

// Action is a callable value: a parameter spec plus a dispatcher. Exemplar,
// when non-nil, is the pre-filled specialization context.
type Action struct {
	Name       string
	Params     []*Param
	Meta       *ActionMeta
	Dispatcher Dispatcher
	Details    *Series // FlavorDetails, dispatcher-specific payload
	Exemplar   *Context

	// Cached first-parameter influences, computed once at creation time.
	Enfix              bool
	QuotesFirst        bool
	SkippableFirst     bool
	DefersLookback     bool
	PostponesLookback  bool

	ReturnParam *Param // synthesized RETURN local, if spec had a return: slot
}

// cacheFirstParamInfluences recomputes the first-parameter-derived flags
// from a.Params[0], called whenever Params is (re)established.
func (a *Action) cacheFirstParamInfluences() {
	a.QuotesFirst = false
	a.SkippableFirst = false
	if len(a.Params) == 0 {
		return
	}
	first := a.Params[0]
	switch first.Class {
	case ParamHardQuote, ParamSoftQuote, ParamMediumQuote:
		a.QuotesFirst = true
	}
	if first.Attrs.Has(AttrSkippable) {
		a.SkippableFirst = true
	}
}

// NewAction builds an action from an already-compiled parameter list. Most
// callers go through CompileSpec (spec.go) instead of calling this
// directly.
func NewAction(name string, params []*Param, meta *ActionMeta, dispatcher Dispatcher) *Action {
	a := &Action{Name: name, Params: params, Meta: meta, Dispatcher: dispatcher}
	for _, p := range params {
		if p.Class == ParamReturn {
			a.ReturnParam = p
		}
	}
	a.cacheFirstParamInfluences()
	return a
}

// AsEnfix returns a copy of a flagged enfix, with the given scheduling
// hints.
func (a *Action) AsEnfix(defers, postpones bool) *Action {
	cp := *a
	cp.Enfix = true
	cp.DefersLookback = defers
	cp.PostponesLookback = postpones
	return &cp
}

// Specialize returns a new action pre-filling the parameters named in
// exemplar, narrowing the remaining parameter list. Dispatchers read the
// pre-filled values through ArgNamed.
func (a *Action) Specialize(exemplar *Context) *Action {
	cp := *a
	cp.Exemplar = exemplar
	remaining := make([]*Param, 0, len(a.Params))
	for _, p := range a.Params {
		if p.Name != nil {
			if _, ok := exemplar.Get(p.Name); ok {
				continue // pre-filled, drop from the visible parameter list
			}
		}
		remaining = append(remaining, p)
	}
	cp.Params = remaining
	cp.cacheFirstParamInfluences()
	return &cp
}

// ParamByName finds a declared parameter by symbol.
func (a *Action) ParamByName(sym *Symbol) *Param {
	for _, p := range a.Params {
		if p.Name == sym {
			return p
		}
	}
	return nil
}
