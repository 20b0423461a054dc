package searchkit

// Results is the reconciled result set of the most recent search cycles.
// Exactly one of the two shapes is populated at a time:
//
//   - mono shape: Single holds the primary response, ByIndex is nil;
//   - multi shape: ByIndex maps logical index name -> response, Single is
//     nil.
//
// The shape is multi if and only if the most recently reconciled cycle had
// at least one derived request group. On a shape transition the previous
// value is discarded, not merged.
type Results struct {
	Single  *Response
	ByIndex map[string]*Response
}

// Multi reports whether the results are in multi-index shape.
func (r Results) Multi() bool { return r.ByIndex != nil }

// Clone returns a copy whose ByIndex map can be written without affecting
// the original. Responses themselves are shared; they are never mutated
// after reconciliation.
func (r Results) Clone() Results {
	out := r
	if r.ByIndex != nil {
		out.ByIndex = make(map[string]*Response, len(r.ByIndex))
		for k, v := range r.ByIndex {
			out.ByIndex[k] = v
		}
	}
	return out
}

// SearchState is the single observable state tree. It is replaced wholesale
// on every mutation; readers holding a snapshot never observe a torn
// update.
type SearchState struct {
	// Config is the widget configuration snapshot, owned by the rendering
	// layer and updated through SetExternalConfig.
	Config Config

	// Metadata holds one entry per widget declaring the metadata
	// capability, in registration order. Recomputed on every widget set or
	// configuration change.
	Metadata []Metadata

	Results Results

	// Error is the last main-search error. It coexists with the last
	// successful results; a successful response clears it.
	Error error

	// Searching is the main-search in-flight flag.
	Searching bool

	// SearchingForFacetValues is the facet-value path's independent
	// in-flight flag.
	SearchingForFacetValues bool

	// FacetError is the last facet-value search error, isolated from the
	// main search's Error.
	FacetError error

	// FacetResults maps facet name -> latest suggestion result.
	FacetResults map[string]FacetValuesResult
}

// cloneFacetResults copies the facet results map for copy-on-write updates.
func cloneFacetResults(in map[string]FacetValuesResult) map[string]FacetValuesResult {
	if in == nil {
		return nil
	}
	out := make(map[string]FacetValuesResult, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
