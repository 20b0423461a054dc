// Package searchkit is the orchestration core of a search-UI state
// manager. It reconciles a dynamic set of independently configured widgets
// into coherent search requests against a remote search service and folds
// the asynchronous responses back into a single observable state tree.
//
// A widget declares its contributions through optional capability
// functions; the manager composes them per cycle:
//
//	mgr, _ := searchkit.New(
//	    searchkit.WithIndex("products"),
//	    searchkit.WithSearchClient(client),
//	)
//	mgr.Register(&searchkit.Widget{
//	    ID: "brand",
//	    Parameters: func(p searchkit.Parameters) searchkit.Parameters {
//	        return p.WithFacet("brand").WithFacetRefinement("brand", "acme")
//	    },
//	})
//	mgr.Search(ctx)
//
// Widgets targeting a non-primary index spawn a derived request group; the
// manager queries every targeted index in the same cycle and keys the
// results by logical index name. See SearchState for the observable shape.
package searchkit
