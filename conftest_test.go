package searchkit

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeSearchClient is a controllable SearchClient for tests. Without an
// override it echoes a one-hit response for the requested physical index.
type fakeSearchClient struct {
	mu       sync.Mutex
	requests []Request
	searchFn func(req Request) (*Response, error)
	facetFn  func(req Request, facet, query string) (*FacetValuesResult, error)
	gate     chan struct{} // non-nil: Search blocks until closed
}

func (f *fakeSearchClient) Search(ctx context.Context, req Request) (*Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	fn := f.searchFn
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fn != nil {
		return fn(req)
	}
	return &Response{
		Index: req.Index,
		Hits:  []Hit{{ID: "doc-1", Score: 1, Fields: map[string]string{"name": "one"}}},
		Total: 1,
	}, nil
}

func (f *fakeSearchClient) SearchForFacetValues(
	_ context.Context, req Request, facet, query string,
) (*FacetValuesResult, error) {
	f.mu.Lock()
	fn := f.facetFn
	f.mu.Unlock()

	if fn != nil {
		return fn(req, facet, query)
	}
	return &FacetValuesResult{
		Hits: []FacetHit{{Value: "acme", Count: 3, Highlighted: "acme"}},
	}, nil
}

func (f *fakeSearchClient) seen() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *fakeSearchClient) setGate(gate chan struct{}) {
	f.mu.Lock()
	f.gate = gate
	f.mu.Unlock()
}

func newTestManager(t *testing.T, client SearchClient, opts ...Option) *Manager {
	t.Helper()
	all := append([]Option{
		WithIndex("products"),
		WithSearchClient(client),
		WithDebounce(time.Millisecond),
	}, opts...)
	m, err := New(all...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

// waitForState blocks until the manager's state satisfies pred.
func waitForState(t *testing.T, m *Manager, pred func(SearchState) bool) SearchState {
	t.Helper()

	ch := make(chan SearchState, 64)
	cancel := m.Subscribe(func(s SearchState) {
		select {
		case ch <- s:
		default:
		}
	})
	defer cancel()

	if s := m.State(); pred(s) {
		return s
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-ch:
			if pred(s) {
				return s
			}
		case <-time.After(5 * time.Millisecond):
			// The channel drops updates under pressure; poll as fallback.
			if s := m.State(); pred(s) {
				return s
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state, last: %+v", m.State())
		}
	}
}

// refinementWidget contributes a brand refinement to the shared fold.
func refinementWidget(attr, value string) *Widget {
	return &Widget{
		ID: "refinement-" + attr,
		Parameters: func(p Parameters) Parameters {
			return p.WithFacet(attr).WithFacetRefinement(attr, value)
		},
		Metadata: func(Config) Metadata {
			return Metadata{"id": "refinement-" + attr, "attribute": attr, "value": value}
		},
	}
}

// menuWidget targets a non-primary index.
func menuWidget(attr, targetIndex string) *Widget {
	return &Widget{
		ID:    "menu-" + attr,
		Index: targetIndex,
		Parameters: func(p Parameters) Parameters {
			return p.WithFacet(attr)
		},
	}
}
