package searchkit

// searchEvent is one reconciled outcome of a dispatched request, after its
// physical index has been resolved against the current index mapping.
type searchEvent struct {
	logical  string
	multi    bool
	response *Response
	err      error
}

// reconcileSearch applies one search outcome to the state tree and returns
// the next state. It never mutates prev: results maps are cloned before
// writing, so readers holding the previous snapshot are unaffected.
//
// Success semantics: a mono-index cycle stores the response directly; a
// multi-index cycle stores it under its logical index name, switching the
// results shape if needed. On a shape transition the prior value is
// discarded outright, not merged. Every success clears the main in-flight
// flag and the last error.
//
// Error semantics: the error is recorded and the in-flight flag cleared;
// prior results stay untouched. An error is terminal for its own request
// only.
func reconcileSearch(prev SearchState, ev searchEvent) SearchState {
	next := prev
	next.Searching = false

	if ev.err != nil {
		next.Error = ev.err
		return next
	}
	next.Error = nil

	if !ev.multi {
		next.Results = Results{Single: ev.response}
		return next
	}

	results := prev.Results
	if !results.Multi() {
		// Mono -> multi transition: the mono value is discarded.
		results = Results{ByIndex: make(map[string]*Response, 1)}
	} else {
		results = results.Clone()
	}
	results.ByIndex[ev.logical] = ev.response
	next.Results = results
	return next
}
