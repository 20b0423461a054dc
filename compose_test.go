package searchkit

import (
	"reflect"
	"testing"
)

func TestCompose_Deterministic(t *testing.T) {
	widgets := []*Widget{
		refinementWidget("brand", "acme"),
		{Parameters: func(p Parameters) Parameters { return p.WithQuery("phone") }},
		menuWidget("category", "products_rank_desc"),
	}
	base := Parameters{Index: "products", HitsPerPage: 20}

	a := compose(widgets, base)
	b := compose(widgets, base)

	if !reflect.DeepEqual(a.shared, b.shared) {
		t.Errorf("shared differs across runs:\n%+v\n%+v", a.shared, b.shared)
	}
	if !reflect.DeepEqual(a.primary, b.primary) {
		t.Errorf("primary differs across runs:\n%+v\n%+v", a.primary, b.primary)
	}
	if len(a.groups) != len(b.groups) {
		t.Fatalf("group count differs: %d vs %d", len(a.groups), len(b.groups))
	}
	for i := range a.groups {
		if a.groups[i].index != b.groups[i].index {
			t.Errorf("group %d index differs: %q vs %q", i, a.groups[i].index, b.groups[i].index)
		}
	}
}

func TestCompose_PartitionIsExhaustiveAndDisjoint(t *testing.T) {
	shared := &Widget{ID: "q", Parameters: func(p Parameters) Parameters { return p.WithQuery("x") }}
	primary := &Widget{ID: "pp", Index: "products", Parameters: func(p Parameters) Parameters { return p.WithPage(3) }}
	derived := &Widget{ID: "d", Index: "products_by_price", Parameters: func(p Parameters) Parameters { return p }}
	noContribution := &Widget{ID: "meta-only", Metadata: func(Config) Metadata { return Metadata{} }}

	comp := compose([]*Widget{shared, primary, derived, noContribution}, Parameters{Index: "products"})

	// The derived widget lands in exactly one group and nowhere else.
	if len(comp.groups) != 1 || comp.groups[0].index != "products_by_price" {
		t.Fatalf("groups = %+v, want one group for products_by_price", comp.groups)
	}
	if len(comp.groups[0].widgets) != 1 || comp.groups[0].widgets[0] != derived {
		t.Errorf("derived group widgets = %v", comp.groups[0].widgets)
	}

	// The shared widget's contribution shows up in shared (and therefore
	// primary); the primary-targeting widget only in primary.
	if comp.shared.Query != "x" {
		t.Errorf("shared.Query = %q, want x", comp.shared.Query)
	}
	if comp.shared.Page != 0 {
		t.Errorf("shared.Page = %d, primary-targeting widget leaked into shared", comp.shared.Page)
	}
	if comp.primary.Page != 3 || comp.primary.Query != "x" {
		t.Errorf("primary = %+v, want Query=x Page=3", comp.primary)
	}
}

func TestCompose_FoldOrderLastWriteWins(t *testing.T) {
	first := &Widget{Parameters: func(p Parameters) Parameters { return p.WithHitsPerPage(10).WithQuery("first") }}
	second := &Widget{Parameters: func(p Parameters) Parameters { return p.WithQuery("second") }}

	comp := compose([]*Widget{first, second}, Parameters{Index: "products"})

	if comp.shared.Query != "second" {
		t.Errorf("Query = %q, later widget must override earlier", comp.shared.Query)
	}
	if comp.shared.HitsPerPage != 10 {
		t.Errorf("HitsPerPage = %d, non-overlapping setting must survive", comp.shared.HitsPerPage)
	}
}

func TestCompose_GroupsOrderedByFirstAppearance(t *testing.T) {
	widgets := []*Widget{
		menuWidget("a", "idx_b"),
		menuWidget("b", "idx_a"),
		menuWidget("c", "idx_b"),
	}

	comp := compose(widgets, Parameters{Index: "products"})

	if len(comp.groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(comp.groups))
	}
	if comp.groups[0].index != "idx_b" || comp.groups[1].index != "idx_a" {
		t.Errorf("group order = [%s %s], want [idx_b idx_a]", comp.groups[0].index, comp.groups[1].index)
	}
	if len(comp.groups[0].widgets) != 2 {
		t.Errorf("idx_b group has %d widgets, want 2", len(comp.groups[0].widgets))
	}
}

func TestCompose_BaseSnapshotUntouched(t *testing.T) {
	base := Parameters{
		Index:            "products",
		Facets:           []string{"brand"},
		FacetRefinements: map[string][]string{"brand": {"acme"}},
	}
	widgets := []*Widget{
		refinementWidget("category", "tools"),
		{Parameters: func(p Parameters) Parameters { return p.WithFacetRefinement("brand", "globex") }},
	}

	_ = compose(widgets, base)

	if !reflect.DeepEqual(base.Facets, []string{"brand"}) {
		t.Errorf("base facets mutated: %v", base.Facets)
	}
	if !reflect.DeepEqual(base.FacetRefinements["brand"], []string{"acme"}) {
		t.Errorf("base refinements mutated: %v", base.FacetRefinements)
	}
}

// Scenario from the refinement-list case: a single widget refining brand on
// the primary index yields no derived groups and a brand facet filter in
// shared.
func TestCompose_RefinementListScenario(t *testing.T) {
	comp := compose([]*Widget{refinementWidget("brand", "acme")}, Parameters{Index: "products"})

	if len(comp.groups) != 0 {
		t.Fatalf("derived groups = %v, want none", comp.groups)
	}
	if !comp.shared.IsFacetRefined("brand", "acme") {
		t.Errorf("shared refinements = %v, want brand=acme", comp.shared.FacetRefinements)
	}
	if comp.primary.Index != "products" {
		t.Errorf("primary index = %q, want products", comp.primary.Index)
	}
}

func TestCollectMetadata_OrderAndCapability(t *testing.T) {
	w1 := refinementWidget("brand", "acme")
	w2 := &Widget{ID: "no-meta", Parameters: func(p Parameters) Parameters { return p }}
	w3 := &Widget{ID: "third", Metadata: func(cfg Config) Metadata {
		return Metadata{"id": "third", "query": cfg["query"]}
	}}

	md := collectMetadata([]*Widget{w1, w2, w3}, Config{"query": "phone"})

	if len(md) != 2 {
		t.Fatalf("metadata entries = %d, want 2", len(md))
	}
	if md[0]["attribute"] != "brand" {
		t.Errorf("first entry = %v", md[0])
	}
	if md[1]["query"] != "phone" {
		t.Errorf("second entry did not receive config: %v", md[1])
	}
}

func TestTransitionConfig_FoldsInOrder(t *testing.T) {
	clamp := &Widget{Transition: func(_, next Config) Config {
		out := next.Clone()
		if p, ok := out["page"].(int); ok && p > 10 {
			out["page"] = 10
		}
		return out
	}}
	veto := &Widget{Transition: func(current, next Config) Config {
		out := next.Clone()
		out["locked"] = current["locked"]
		return out
	}}

	got := transitionConfig(
		[]*Widget{clamp, veto},
		Config{"locked": "yes"},
		Config{"page": 42, "locked": "no"},
	)

	if got["page"] != 10 {
		t.Errorf("page = %v, want clamped to 10", got["page"])
	}
	if got["locked"] != "yes" {
		t.Errorf("locked = %v, veto widget must restore current value", got["locked"])
	}
}
