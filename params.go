package searchkit

// Range is a numeric refinement bound. Nil pointers mean "unbounded";
// GT/GTE and LT/LTE are mutually exclusive per side.
type Range struct {
	GT  *float64
	GTE *float64
	LT  *float64
	LTE *float64
}

// Parameters is the request parameter set a search cycle is built from.
//
// Parameters is a value type: widget contributions receive it by value and
// return the next accumulator. The With* helpers copy before mutating, so a
// fold never writes into the base snapshot or an earlier accumulator.
// Overlapping settings resolve last-write-wins in registration order.
type Parameters struct {
	// Index is the physical index the request is sent to. Widgets may
	// rewrite it (e.g. a sort-by widget selecting a ranked variant).
	Index string

	Query       string
	Page        int
	HitsPerPage int

	// Facets are the attributes to compute value counts for.
	Facets []string

	// FacetRefinements maps attribute -> selected values (OR within an
	// attribute, AND across attributes).
	FacetRefinements map[string][]string

	// NumericRefinements maps attribute -> numeric bounds.
	NumericRefinements map[string]Range

	HighlightPreTag  string
	HighlightPostTag string

	// Extra carries protocol-level settings the core does not interpret.
	Extra map[string]string
}

// Clone returns a deep copy. Mutating the copy never affects the original.
func (p Parameters) Clone() Parameters {
	out := p
	if p.Facets != nil {
		out.Facets = append([]string(nil), p.Facets...)
	}
	if p.FacetRefinements != nil {
		out.FacetRefinements = make(map[string][]string, len(p.FacetRefinements))
		for k, v := range p.FacetRefinements {
			out.FacetRefinements[k] = append([]string(nil), v...)
		}
	}
	if p.NumericRefinements != nil {
		out.NumericRefinements = make(map[string]Range, len(p.NumericRefinements))
		for k, v := range p.NumericRefinements {
			out.NumericRefinements[k] = v
		}
	}
	if p.Extra != nil {
		out.Extra = make(map[string]string, len(p.Extra))
		for k, v := range p.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// WithIndex returns a copy targeting the given physical index.
func (p Parameters) WithIndex(name string) Parameters {
	out := p.Clone()
	out.Index = name
	return out
}

// WithQuery returns a copy with the query text replaced.
func (p Parameters) WithQuery(q string) Parameters {
	out := p.Clone()
	out.Query = q
	return out
}

// WithPage returns a copy positioned on the given zero-based page.
func (p Parameters) WithPage(page int) Parameters {
	out := p.Clone()
	out.Page = page
	return out
}

// WithHitsPerPage returns a copy with the page size replaced.
func (p Parameters) WithHitsPerPage(n int) Parameters {
	out := p.Clone()
	out.HitsPerPage = n
	return out
}

// WithFacet returns a copy declaring attr as a faceted attribute.
// Declaring the same attribute twice is a no-op.
func (p Parameters) WithFacet(attr string) Parameters {
	for _, f := range p.Facets {
		if f == attr {
			return p
		}
	}
	out := p.Clone()
	out.Facets = append(out.Facets, attr)
	return out
}

// WithFacetRefinement returns a copy with value selected for attr.
// Selecting an already-selected value is a no-op.
func (p Parameters) WithFacetRefinement(attr, value string) Parameters {
	for _, v := range p.FacetRefinements[attr] {
		if v == value {
			return p
		}
	}
	out := p.Clone()
	if out.FacetRefinements == nil {
		out.FacetRefinements = make(map[string][]string)
	}
	out.FacetRefinements[attr] = append(out.FacetRefinements[attr], value)
	return out
}

// WithoutFacetRefinement returns a copy with value deselected for attr.
// The attribute key is removed once its last value is gone.
func (p Parameters) WithoutFacetRefinement(attr, value string) Parameters {
	current, ok := p.FacetRefinements[attr]
	if !ok {
		return p
	}
	out := p.Clone()
	kept := out.FacetRefinements[attr][:0]
	for _, v := range current {
		if v != value {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		delete(out.FacetRefinements, attr)
	} else {
		out.FacetRefinements[attr] = kept
	}
	return out
}

// IsFacetRefined reports whether value is currently selected for attr.
func (p Parameters) IsFacetRefined(attr, value string) bool {
	for _, v := range p.FacetRefinements[attr] {
		if v == value {
			return true
		}
	}
	return false
}

// WithNumericRefinement returns a copy with the numeric bounds for attr
// replaced (last write wins on the whole attribute).
func (p Parameters) WithNumericRefinement(attr string, r Range) Parameters {
	out := p.Clone()
	if out.NumericRefinements == nil {
		out.NumericRefinements = make(map[string]Range)
	}
	out.NumericRefinements[attr] = r
	return out
}

// WithoutNumericRefinement returns a copy with the numeric bounds for attr
// removed.
func (p Parameters) WithoutNumericRefinement(attr string) Parameters {
	if _, ok := p.NumericRefinements[attr]; !ok {
		return p
	}
	out := p.Clone()
	delete(out.NumericRefinements, attr)
	return out
}

// WithExtra returns a copy with an uninterpreted protocol setting added.
func (p Parameters) WithExtra(key, value string) Parameters {
	out := p.Clone()
	if out.Extra == nil {
		out.Extra = make(map[string]string)
	}
	out.Extra[key] = value
	return out
}
