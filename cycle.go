package searchkit

import "sync"

// plannedRequest is one request a cycle will dispatch, with both sides of
// its index identity resolved.
type plannedRequest struct {
	physical string
	logical  string
	params   Parameters
	primary  bool
}

// orchestrator manages the lifecycle of derived query contexts per search
// cycle and owns the physical->logical index mapping. It is an instance
// field of the manager: no package-level state, so independent managers
// never share contexts.
//
// Soft cancellation: starting a cycle bumps the generation, which detaches
// every context of the previous cycle. In-flight requests are not aborted;
// their responses fail generation resolution and become no-ops.
type orchestrator struct {
	mu             sync.Mutex
	primaryLogical string

	gen     uint64
	mapping map[string]string // physical index -> logical index
	multi   bool
}

func newOrchestrator(primaryLogical string) *orchestrator {
	return &orchestrator{primaryLogical: primaryLogical}
}

// plan tears down the previous cycle's contexts and builds the next
// cycle's: each derived group is folded over the shared parameters, its
// physical index derived and recorded in the mapping, and the primary
// entry committed last (it wins a physical-name collision with a derived
// group). The mapping is fully committed before plan returns, so every
// entry exists before any request is dispatched.
//
// The returned requests are ordered primary first, then derived groups in
// composition order.
func (o *orchestrator) plan(comp composition) (gen uint64, reqs []plannedRequest, multi bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.gen++
	o.mapping = make(map[string]string, len(comp.groups)+1)
	o.multi = len(comp.groups) > 0

	reqs = make([]plannedRequest, 0, len(comp.groups)+1)
	reqs = append(reqs, plannedRequest{
		physical: comp.primary.Index,
		logical:  o.primaryLogical,
		params:   comp.primary,
		primary:  true,
	})

	for _, g := range comp.groups {
		folded := foldParameters(g.widgets, comp.shared)
		physical := folded.Index
		if physical == "" || physical == comp.shared.Index {
			// No widget in the group picked a variant: query the logical
			// target directly.
			physical = g.index
			folded = folded.WithIndex(physical)
		}
		o.mapping[physical] = g.index
		reqs = append(reqs, plannedRequest{
			physical: physical,
			logical:  g.index,
			params:   folded,
		})
	}

	// Primary entry committed after the groups: on a collision the primary
	// attribution wins.
	o.mapping[comp.primary.Index] = o.primaryLogical

	return o.gen, reqs, o.multi
}

// resolve maps a response's physical index back to its logical name.
// ok is false when the response belongs to a torn-down cycle (stale
// generation) or to a physical index absent from the current mapping; such
// responses must be dropped.
func (o *orchestrator) resolve(gen uint64, physical string) (logical string, multi bool, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.gen {
		return "", false, false
	}
	logical, ok = o.mapping[physical]
	return logical, o.multi, ok
}
