package searchkit

// derivedGroup is the set of widgets targeting one non-primary logical
// index. Its fold over the shared parameters is deferred until dispatch so
// the physical index assignment commits atomically with the fold.
type derivedGroup struct {
	index   string // logical target index
	widgets []*Widget
}

// composition is the partitioned parameter set of one search cycle. All
// three partitions derive from the same widget-set snapshot.
type composition struct {
	shared  Parameters
	primary Parameters
	groups  []derivedGroup
}

// compose partitions the contributing widgets and folds the shared and
// primary parameter sets over base.
//
// Partition rule, evaluated in precedence order: a widget with an explicit
// target index different from base.Index belongs to that index's derived
// group; every other contributing widget folds into shared. Widgets that
// explicitly target the primary index fold a second stage over shared to
// produce the primary parameters. The partition is exhaustive and disjoint.
//
// Folding is pure left-to-right application in registration order; derived
// groups keep their widget order and appear in order of first appearance.
func compose(widgets []*Widget, base Parameters) composition {
	var (
		sharedWidgets  []*Widget
		primaryWidgets []*Widget
		groups         []derivedGroup
		groupIdx       = map[string]int{}
	)

	for _, w := range widgets {
		if w.Parameters == nil {
			continue
		}
		switch {
		case w.Index != "" && w.Index != base.Index:
			i, ok := groupIdx[w.Index]
			if !ok {
				i = len(groups)
				groupIdx[w.Index] = i
				groups = append(groups, derivedGroup{index: w.Index})
			}
			groups[i].widgets = append(groups[i].widgets, w)
		case w.Index != "":
			// Explicitly targets the primary index: folds after the shared
			// stage, so it can override any shared contribution.
			primaryWidgets = append(primaryWidgets, w)
		default:
			sharedWidgets = append(sharedWidgets, w)
		}
	}

	shared := foldParameters(sharedWidgets, base)

	return composition{
		shared:  shared,
		primary: foldParameters(primaryWidgets, shared),
		groups:  groups,
	}
}

// collectMetadata gathers the metadata entries of every widget declaring
// the capability, in registration order.
func collectMetadata(widgets []*Widget, cfg Config) []Metadata {
	var out []Metadata
	for _, w := range widgets {
		if w.Metadata == nil {
			continue
		}
		out = append(out, w.Metadata(cfg))
	}
	return out
}

// transitionConfig folds the proposed configuration through every widget
// declaring the transition capability, in registration order.
func transitionConfig(widgets []*Widget, current, next Config) Config {
	acc := next
	for _, w := range widgets {
		if w.Transition == nil {
			continue
		}
		acc = w.Transition(current, acc)
	}
	return acc
}
