package searchkit

import (
	"reflect"
	"testing"
)

func TestParameters_CloneIsIndependent(t *testing.T) {
	gte := 10.0
	orig := Parameters{
		Index:              "products",
		Facets:             []string{"brand"},
		FacetRefinements:   map[string][]string{"brand": {"acme"}},
		NumericRefinements: map[string]Range{"price": {GTE: &gte}},
		Extra:              map[string]string{"analytics": "false"},
	}

	clone := orig.Clone()
	clone.Facets = append(clone.Facets, "category")
	clone.FacetRefinements["brand"] = append(clone.FacetRefinements["brand"], "globex")
	clone.NumericRefinements["stock"] = Range{}
	clone.Extra["analytics"] = "true"

	if len(orig.Facets) != 1 {
		t.Errorf("original facets mutated: %v", orig.Facets)
	}
	if len(orig.FacetRefinements["brand"]) != 1 {
		t.Errorf("original refinements mutated: %v", orig.FacetRefinements)
	}
	if _, ok := orig.NumericRefinements["stock"]; ok {
		t.Error("original numeric refinements mutated")
	}
	if orig.Extra["analytics"] != "false" {
		t.Error("original extra settings mutated")
	}
}

func TestParameters_WithFacetRefinement(t *testing.T) {
	p := Parameters{}.
		WithFacetRefinement("brand", "acme").
		WithFacetRefinement("brand", "globex").
		WithFacetRefinement("brand", "acme") // duplicate: no-op

	if got := p.FacetRefinements["brand"]; !reflect.DeepEqual(got, []string{"acme", "globex"}) {
		t.Errorf("refinements = %v, want [acme globex]", got)
	}
	if !p.IsFacetRefined("brand", "acme") {
		t.Error("expected acme to be refined")
	}
	if p.IsFacetRefined("brand", "initech") {
		t.Error("initech should not be refined")
	}
}

func TestParameters_WithoutFacetRefinement(t *testing.T) {
	p := Parameters{}.
		WithFacetRefinement("brand", "acme").
		WithFacetRefinement("brand", "globex").
		WithoutFacetRefinement("brand", "acme")

	if got := p.FacetRefinements["brand"]; !reflect.DeepEqual(got, []string{"globex"}) {
		t.Errorf("refinements = %v, want [globex]", got)
	}

	p = p.WithoutFacetRefinement("brand", "globex")
	if _, ok := p.FacetRefinements["brand"]; ok {
		t.Error("attribute key should be removed with its last value")
	}

	// Removing from an unrefined attribute is a no-op.
	q := p.WithoutFacetRefinement("category", "tools")
	if !reflect.DeepEqual(q, p) {
		t.Error("removal on missing attribute should not change parameters")
	}
}

func TestParameters_WithFacetDeduplicates(t *testing.T) {
	p := Parameters{}.WithFacet("brand").WithFacet("brand").WithFacet("category")
	if !reflect.DeepEqual(p.Facets, []string{"brand", "category"}) {
		t.Errorf("facets = %v, want [brand category]", p.Facets)
	}
}

func TestParameters_NumericRefinements(t *testing.T) {
	gte, lt := 10.0, 100.0
	p := Parameters{}.
		WithNumericRefinement("price", Range{GTE: &gte}).
		WithNumericRefinement("price", Range{GTE: &gte, LT: &lt}) // last write wins

	r := p.NumericRefinements["price"]
	if r.GTE == nil || *r.GTE != 10 || r.LT == nil || *r.LT != 100 {
		t.Errorf("range = %+v, want GTE=10 LT=100", r)
	}

	p = p.WithoutNumericRefinement("price")
	if len(p.NumericRefinements) != 0 {
		t.Errorf("numeric refinements = %v, want empty", p.NumericRefinements)
	}
}

func TestParameters_ScalarHelpers(t *testing.T) {
	p := Parameters{}.
		WithIndex("products_by_price").
		WithQuery("phone").
		WithPage(2).
		WithHitsPerPage(50).
		WithExtra("analytics", "false")

	if p.Index != "products_by_price" || p.Query != "phone" || p.Page != 2 || p.HitsPerPage != 50 {
		t.Errorf("unexpected parameters: %+v", p)
	}
	if p.Extra["analytics"] != "false" {
		t.Errorf("extra = %v", p.Extra)
	}
}
