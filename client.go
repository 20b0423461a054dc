package searchkit

import (
	"context"
	"time"
)

// Request is one physical-index query produced by a search cycle.
type Request struct {
	// Index is the physical index to query. It may differ from the logical
	// index name used to key results (e.g. a ranked variant).
	Index string

	// Params are the fully folded parameters for this request.
	// Params.Index always equals Index.
	Params Parameters
}

// Hit is a single matched document.
type Hit struct {
	ID     string
	Score  float64
	Fields map[string]string
}

// Response is the answer to one Request. Index echoes the physical index
// that was queried so late responses can be attributed.
type Response struct {
	Index       string
	Hits        []Hit
	Total       int
	Page        int
	HitsPerPage int

	// Facets maps attribute -> value -> count for the attributes declared
	// in Parameters.Facets.
	Facets map[string]map[string]int

	Took time.Duration
}

// FacetHit is one suggested facet value.
type FacetHit struct {
	Value       string
	Count       int
	Highlighted string
}

// FacetValuesResult holds facet-value suggestions together with the query
// they were computed for, so callers can detect staleness against the query
// currently typed.
type FacetValuesResult struct {
	Query string
	Hits  []FacetHit
	Took  time.Duration
}

// SearchClient is the remote search capability the manager dispatches
// through. Implementations own the wire format entirely; the core only
// requires that responses can be attributed to the physical index queried.
//
// Both methods must be safe for concurrent use: a cycle dispatches the
// primary and every derived request in parallel, and the facet-value path
// runs independently of the main cycle.
type SearchClient interface {
	Search(ctx context.Context, req Request) (*Response, error)
	SearchForFacetValues(ctx context.Context, req Request, facet, query string) (*FacetValuesResult, error)
}
