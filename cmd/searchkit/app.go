package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/kailas-cloud/searchkit"
	"github.com/kailas-cloud/searchkit/internal/config"
	dbRedis "github.com/kailas-cloud/searchkit/internal/db/redis"
	chiTransport "github.com/kailas-cloud/searchkit/internal/transport/chi"
)

// app wires the demo widget set to the search manager and implements the
// transport's Controls contract. Widget closures read app fields under mu;
// the manager composes parameters on its own goroutine.
type app struct {
	manager *searchkit.Manager
	client  *dbRedis.Client

	mu          sync.Mutex
	query       string
	refinements map[string][]string
	ranges      map[string]searchkit.Range
	page        int
	sort        string

	sortVariants map[string]string
}

var _ chiTransport.Controls = (*app)(nil)

// newApp registers the demo widgets: a search box, one refinement list per
// configured facet, pagination, and a sort selector switching the primary
// request to a ranked index variant.
func newApp(manager *searchkit.Manager, client *dbRedis.Client, cfg config.SearchConfig) *app {
	a := &app{
		manager:      manager,
		client:       client,
		refinements:  make(map[string][]string),
		ranges:       make(map[string]searchkit.Range),
		sortVariants: cfg.SortVariants,
	}

	// Batch the initial registrations into one search cycle.
	manager.SkipSearch()

	manager.Register(&searchkit.Widget{
		ID: "search-box",
		Parameters: func(p searchkit.Parameters) searchkit.Parameters {
			a.mu.Lock()
			defer a.mu.Unlock()
			if a.query == "" {
				return p
			}
			return p.WithQuery(a.query)
		},
		Metadata: func(searchkit.Config) searchkit.Metadata {
			a.mu.Lock()
			defer a.mu.Unlock()
			return searchkit.Metadata{"id": "search-box", "query": a.query}
		},
	})

	for _, attr := range cfg.Facets {
		manager.Register(a.refinementList(attr))
	}

	manager.Register(&searchkit.Widget{
		ID: "numeric-range",
		Parameters: func(p searchkit.Parameters) searchkit.Parameters {
			a.mu.Lock()
			defer a.mu.Unlock()
			for attr, r := range a.ranges {
				p = p.WithNumericRefinement(attr, r)
			}
			return p
		},
		Metadata: func(searchkit.Config) searchkit.Metadata {
			a.mu.Lock()
			defer a.mu.Unlock()
			refined := make(map[string]searchkit.Range, len(a.ranges))
			for attr, r := range a.ranges {
				refined[attr] = r
			}
			return searchkit.Metadata{"id": "numeric-range", "refined": refined}
		},
	})

	manager.Register(&searchkit.Widget{
		ID: "pagination",
		Parameters: func(p searchkit.Parameters) searchkit.Parameters {
			a.mu.Lock()
			defer a.mu.Unlock()
			return p.WithPage(a.page)
		},
	})

	if len(cfg.SortVariants) > 0 {
		manager.Register(&searchkit.Widget{
			ID: "sort-by",
			Parameters: func(p searchkit.Parameters) searchkit.Parameters {
				a.mu.Lock()
				defer a.mu.Unlock()
				physical, ok := a.sortVariants[a.sort]
				if !ok {
					return p
				}
				return p.WithIndex(physical)
			},
			Metadata: func(searchkit.Config) searchkit.Metadata {
				a.mu.Lock()
				defer a.mu.Unlock()
				options := make([]string, 0, len(a.sortVariants))
				for name := range a.sortVariants {
					options = append(options, name)
				}
				return searchkit.Metadata{"id": "sort-by", "current": a.sort, "options": options}
			},
		})
	}

	manager.ResumeSearch()
	return a
}

// refinementList builds the widget for one facet attribute. It declares the
// attribute for counting and contributes the currently selected values.
func (a *app) refinementList(attr string) *searchkit.Widget {
	return &searchkit.Widget{
		ID: "refinement-list-" + attr,
		Parameters: func(p searchkit.Parameters) searchkit.Parameters {
			a.mu.Lock()
			defer a.mu.Unlock()
			p = p.WithFacet(attr)
			for _, v := range a.refinements[attr] {
				p = p.WithFacetRefinement(attr, v)
			}
			return p
		},
		Metadata: func(searchkit.Config) searchkit.Metadata {
			a.mu.Lock()
			defer a.mu.Unlock()
			selected := append([]string(nil), a.refinements[attr]...)
			return searchkit.Metadata{
				"id":        "refinement-list-" + attr,
				"attribute": attr,
				"selected":  selected,
			}
		},
	}
}

func (a *app) State() searchkit.SearchState {
	return a.manager.State()
}

func (a *app) SetQuery(query string) {
	a.mu.Lock()
	a.query = query
	// A new query restarts pagination.
	a.page = 0
	a.mu.Unlock()
	a.manager.WidgetUpdated()
}

func (a *app) ToggleRefinement(attribute, value string) {
	a.mu.Lock()
	values := a.refinements[attribute]
	found := -1
	for i, v := range values {
		if v == value {
			found = i
			break
		}
	}
	if found >= 0 {
		a.refinements[attribute] = append(values[:found], values[found+1:]...)
		if len(a.refinements[attribute]) == 0 {
			delete(a.refinements, attribute)
		}
	} else {
		a.refinements[attribute] = append(values, value)
	}
	a.page = 0
	a.mu.Unlock()
	a.manager.WidgetUpdated()
}

func (a *app) SetRange(attribute string, min, max *float64) {
	a.mu.Lock()
	if min == nil && max == nil {
		delete(a.ranges, attribute)
	} else {
		a.ranges[attribute] = searchkit.Range{GTE: min, LTE: max}
	}
	a.page = 0
	a.mu.Unlock()
	a.manager.WidgetUpdated()
}

func (a *app) SetPage(page int) {
	a.mu.Lock()
	a.page = page
	a.mu.Unlock()
	a.manager.WidgetUpdated()
}

func (a *app) SetSort(option string) error {
	a.mu.Lock()
	if option != "" {
		if _, ok := a.sortVariants[option]; !ok {
			a.mu.Unlock()
			return fmt.Errorf("%w: %q", chiTransport.ErrUnknownSort, option)
		}
	}
	a.sort = option
	a.page = 0
	a.mu.Unlock()
	a.manager.WidgetUpdated()
	return nil
}

func (a *app) FacetValues(ctx context.Context, attribute, query string) error {
	return a.manager.SearchForFacetValues(ctx, attribute, query)
}

func (a *app) Ready(ctx context.Context) error {
	return a.client.Ping(ctx)
}
