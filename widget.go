package searchkit

// Config is the widget configuration snapshot held in the search state.
// It is owned by the rendering layer; the core stores and folds it but does
// not interpret individual keys.
type Config map[string]any

// Clone returns a shallow-key copy of the configuration snapshot.
func (c Config) Clone() Config {
	if c == nil {
		return nil
	}
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Metadata is a widget-declared descriptor of its contribution to the
// current state, used by refinement-list style UI surfaces.
type Metadata map[string]any

// Widget is a configuration unit contributing to search parameters,
// metadata, or state transitions. Widgets are created and destroyed by the
// rendering layer; the core only enumerates them.
//
// Capabilities are declared by setting the optional function fields. A nil
// field means the capability is absent. A panic inside any contribution is
// a programming defect in the widget and is deliberately not recovered.
type Widget struct {
	// ID identifies the widget in metadata entries. Optional.
	ID string

	// Index is the logical index this widget targets. Empty means the
	// primary index. A widget with a non-primary Index contributes its
	// parameters only to that index's derived request group.
	Index string

	// Parameters transforms the parameter accumulator during a fold.
	Parameters func(Parameters) Parameters

	// Metadata describes the widget's contribution for UI display.
	Metadata func(Config) Metadata

	// Transition adjusts an externally proposed configuration. It receives
	// the current and the proposed snapshot and returns the snapshot to
	// keep; widgets use it to veto or normalize deep-link state.
	Transition func(current, next Config) Config
}

// Capabilities is the explicit tagged capability record of a widget.
type Capabilities struct {
	HasParameters bool
	HasMetadata   bool
	HasTransition bool
}

// Capabilities reports which contribution functions the widget declares.
func (w *Widget) Capabilities() Capabilities {
	return Capabilities{
		HasParameters: w.Parameters != nil,
		HasMetadata:   w.Metadata != nil,
		HasTransition: w.Transition != nil,
	}
}

// foldParameters applies each widget's parameter contribution left to right
// over base. Widgets without the parameters capability are skipped.
func foldParameters(widgets []*Widget, base Parameters) Parameters {
	acc := base
	for _, w := range widgets {
		if w.Parameters == nil {
			continue
		}
		acc = w.Parameters(acc)
	}
	return acc
}
