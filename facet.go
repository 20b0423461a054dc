package searchkit

import (
	"context"
	"errors"

	"github.com/kailas-cloud/searchkit/internal/metrics"
)

// SearchForFacetValues runs one incremental facet suggestion query using
// the current primary parameters plus the facet name and typed query. It is
// fully isolated from the main search cycle: it has its own in-flight flag
// and error field and never touches the main results.
//
// The call blocks until the response is stored; run it on its own goroutine
// to overlap with a main cycle. The stored result echoes the query so the
// caller can compare it against the query currently typed.
func (m *Manager) SearchForFacetValues(ctx context.Context, facet, query string) error {
	if facet == "" {
		return errors.New("searchkit: facet name is required")
	}

	comp := compose(m.registry.list(), m.base)

	m.store.Update(func(s SearchState) SearchState {
		s.SearchingForFacetValues = true
		return s
	})

	res, err := m.client.SearchForFacetValues(
		ctx, Request{Index: comp.primary.Index, Params: comp.primary}, facet, query,
	)

	m.store.Update(func(s SearchState) SearchState {
		s.SearchingForFacetValues = false
		if err != nil {
			s.FacetError = err
			return s
		}
		s.FacetError = nil
		fr := cloneFacetResults(s.FacetResults)
		if fr == nil {
			fr = make(map[string]FacetValuesResult, 1)
		}
		res.Query = query
		fr[facet] = *res
		s.FacetResults = fr
		return s
	})

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.FacetValueRequestsTotal.WithLabelValues(facet, status).Inc()
	return err
}
