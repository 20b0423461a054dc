package chi

import "github.com/kailas-cloud/searchkit"

// stateDTO is the wire shape of a SearchState snapshot.
type stateDTO struct {
	Config                  searchkit.Config            `json:"config,omitempty"`
	Metadata                []searchkit.Metadata        `json:"metadata,omitempty"`
	Results                 *resultsDTO                 `json:"results,omitempty"`
	Error                   string                      `json:"error,omitempty"`
	Searching               bool                        `json:"searching"`
	SearchingForFacetValues bool                        `json:"searching_for_facet_values"`
	FacetError              string                      `json:"facet_error,omitempty"`
	FacetResults            map[string]facetValuesDTO   `json:"facet_results,omitempty"`
}

type resultsDTO struct {
	// Mode is "single" for one primary result set, "multi" when derived
	// index groups are active.
	Mode    string                 `json:"mode"`
	Single  *responseDTO           `json:"single,omitempty"`
	ByIndex map[string]responseDTO `json:"by_index,omitempty"`
}

type responseDTO struct {
	Index       string                    `json:"index"`
	Hits        []hitDTO                  `json:"hits"`
	Total       int                       `json:"total"`
	Page        int                       `json:"page"`
	HitsPerPage int                       `json:"hits_per_page"`
	Facets      map[string]map[string]int `json:"facets,omitempty"`
	TookMS      int64                     `json:"took_ms"`
}

type hitDTO struct {
	ID     string            `json:"id"`
	Score  float64           `json:"score"`
	Fields map[string]string `json:"fields,omitempty"`
}

type facetValuesDTO struct {
	Query  string        `json:"query"`
	Hits   []facetHitDTO `json:"hits"`
	TookMS int64         `json:"took_ms"`
}

type facetHitDTO struct {
	Value       string `json:"value"`
	Count       int    `json:"count"`
	Highlighted string `json:"highlighted,omitempty"`
}

func stateToDTO(s searchkit.SearchState) stateDTO {
	dto := stateDTO{
		Config:                  s.Config,
		Metadata:                s.Metadata,
		Searching:               s.Searching,
		SearchingForFacetValues: s.SearchingForFacetValues,
	}
	if s.Error != nil {
		dto.Error = s.Error.Error()
	}
	if s.FacetError != nil {
		dto.FacetError = s.FacetError.Error()
	}

	if s.Results.Multi() {
		byIndex := make(map[string]responseDTO, len(s.Results.ByIndex))
		for logical, resp := range s.Results.ByIndex {
			byIndex[logical] = responseToDTO(resp)
		}
		dto.Results = &resultsDTO{Mode: "multi", ByIndex: byIndex}
	} else if s.Results.Single != nil {
		single := responseToDTO(s.Results.Single)
		dto.Results = &resultsDTO{Mode: "single", Single: &single}
	}

	if len(s.FacetResults) > 0 {
		dto.FacetResults = make(map[string]facetValuesDTO, len(s.FacetResults))
		for facet, res := range s.FacetResults {
			dto.FacetResults[facet] = facetValuesToDTO(res)
		}
	}
	return dto
}

func responseToDTO(r *searchkit.Response) responseDTO {
	hits := make([]hitDTO, len(r.Hits))
	for i, h := range r.Hits {
		hits[i] = hitDTO{ID: h.ID, Score: h.Score, Fields: h.Fields}
	}
	return responseDTO{
		Index:       r.Index,
		Hits:        hits,
		Total:       r.Total,
		Page:        r.Page,
		HitsPerPage: r.HitsPerPage,
		Facets:      r.Facets,
		TookMS:      r.Took.Milliseconds(),
	}
}

func facetValuesToDTO(r searchkit.FacetValuesResult) facetValuesDTO {
	hits := make([]facetHitDTO, len(r.Hits))
	for i, h := range r.Hits {
		hits[i] = facetHitDTO{Value: h.Value, Count: h.Count, Highlighted: h.Highlighted}
	}
	return facetValuesDTO{Query: r.Query, Hits: hits, TookMS: r.Took.Milliseconds()}
}
