package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/searchkit"
)

const defaultHitsPerPage = 20

// maxFacetHits caps the number of facet-value suggestions returned.
const maxFacetHits = 10

// Search runs one FT.SEARCH query for the request's physical index. Facet
// counts for the attributes declared in Params.Facets are collected with one
// FT.AGGREGATE per attribute over the same query.
func (c *Client) Search(ctx context.Context, req searchkit.Request) (*searchkit.Response, error) {
	if req.Index == "" {
		return nil, fmt.Errorf("index name is required")
	}

	start := time.Now()

	hitsPerPage := req.Params.HitsPerPage
	if hitsPerPage <= 0 {
		hitsPerPage = defaultHitsPerPage
	}
	offset := req.Params.Page * hitsPerPage

	queryStr := buildQuery(req.Params)

	args := []string{req.Index, queryStr, "WITHSCORES"}
	if req.Params.HighlightPreTag != "" && req.Params.HighlightPostTag != "" {
		args = append(args, "HIGHLIGHT", "TAGS", req.Params.HighlightPreTag, req.Params.HighlightPostTag)
	}
	args = append(args,
		"LIMIT", strconv.Itoa(offset), strconv.Itoa(hitsPerPage),
		"DIALECT", "2",
	)

	cmd := c.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := c.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "no such index") {
			return nil, fmt.Errorf("index %q does not exist: %w", req.Index, err)
		}
		return nil, fmt.Errorf("search %s: %w", req.Index, err)
	}

	total, hits, err := parseSearchResult(raw)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", req.Index, err)
	}

	resp := &searchkit.Response{
		Index:       req.Index,
		Hits:        hits,
		Total:       total,
		Page:        req.Params.Page,
		HitsPerPage: hitsPerPage,
	}

	for _, attr := range req.Params.Facets {
		counts, err := c.facetCounts(ctx, req.Index, queryStr, attr)
		if err != nil {
			return nil, fmt.Errorf("facet counts for %s: %w", attr, err)
		}
		if resp.Facets == nil {
			resp.Facets = make(map[string]map[string]int, len(req.Params.Facets))
		}
		resp.Facets[attr] = counts
	}

	resp.Took = time.Since(start)
	return resp, nil
}

// SearchForFacetValues suggests values for one facet attribute matching the
// typed query prefix. Counts come from FT.AGGREGATE over the request's
// composed query; prefix matching and highlighting happen client-side since
// RediSearch aggregations cannot filter group keys by prefix.
func (c *Client) SearchForFacetValues(
	ctx context.Context, req searchkit.Request, facet, query string,
) (*searchkit.FacetValuesResult, error) {
	if req.Index == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if facet == "" {
		return nil, fmt.Errorf("facet name is required")
	}

	start := time.Now()

	counts, err := c.facetCounts(ctx, req.Index, buildQuery(req.Params), facet)
	if err != nil {
		return nil, fmt.Errorf("facet values for %s: %w", facet, err)
	}

	prefix := strings.ToLower(query)
	hits := make([]searchkit.FacetHit, 0, len(counts))
	for value, count := range counts {
		if prefix != "" && !strings.HasPrefix(strings.ToLower(value), prefix) {
			continue
		}
		hits = append(hits, searchkit.FacetHit{
			Value:       value,
			Count:       count,
			Highlighted: highlightPrefix(value, query, req.Params.HighlightPreTag, req.Params.HighlightPostTag),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Count != hits[j].Count {
			return hits[i].Count > hits[j].Count
		}
		return hits[i].Value < hits[j].Value
	})
	if len(hits) > maxFacetHits {
		hits = hits[:maxFacetHits]
	}

	return &searchkit.FacetValuesResult{
		Query: query,
		Hits:  hits,
		Took:  time.Since(start),
	}, nil
}

// facetCounts runs FT.AGGREGATE ... GROUPBY @attr REDUCE COUNT and returns
// value -> count.
func (c *Client) facetCounts(ctx context.Context, index, query, attr string) (map[string]int, error) {
	cmd := c.b().Arbitrary("FT.AGGREGATE").Args(
		index, query,
		"GROUPBY", "1", "@"+attr,
		"REDUCE", "COUNT", "0", "AS", "count",
		"DIALECT", "2",
	).Build()

	raw, err := c.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return map[string]int{}, nil
	}

	counts := make(map[string]int, len(raw)-1)
	// RESP2 shape: [total, row1, row2, ...], each row a flat field-value array.
	for _, row := range raw[1:] {
		fields, err := row.ToArray()
		if err != nil {
			continue
		}
		pairs := parseFieldPairs(fields)
		value, ok := pairs[attr]
		if !ok {
			continue
		}
		count, err := strconv.Atoi(pairs["count"])
		if err != nil {
			continue
		}
		counts[value] = count
	}
	return counts, nil
}

// --- Result parsing ---

func parseSearchResult(raw []rueidis.RedisMessage) (int, []searchkit.Hit, error) {
	if len(raw) == 0 {
		return 0, nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return 0, nil, nil
	}

	hits := make([]searchkit.Hit, 0, total)
	// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}

		hits = append(hits, searchkit.Hit{
			ID:     key,
			Score:  score,
			Fields: parseFieldPairs(fields),
		})
	}

	return int(total), hits, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query building ---

// buildQuery translates the folded parameters into an FT.SEARCH query
// string: TAG filters for facet refinements, numeric range filters, and the
// escaped full-text query. Attribute order is sorted so the same parameters
// always produce the same query.
func buildQuery(p searchkit.Parameters) string {
	var parts []string

	for _, attr := range sortedKeys(p.FacetRefinements) {
		values := p.FacetRefinements[attr]
		if len(values) == 0 {
			continue
		}
		escaped := make([]string, len(values))
		for i, v := range values {
			escaped[i] = tagEscaper.Replace(v)
		}
		parts = append(parts, fmt.Sprintf("@%s:{%s}", attr, strings.Join(escaped, "|")))
	}

	for _, attr := range sortedKeys(p.NumericRefinements) {
		parts = append(parts, buildNumericFilter(attr, p.NumericRefinements[attr]))
	}

	if q := strings.TrimSpace(p.Query); q != "" {
		parts = append(parts, "("+escapeQuery(q)+")")
	}

	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

func buildNumericFilter(attr string, r searchkit.Range) string {
	minBound := "-inf"
	maxBound := "+inf"

	if r.GT != nil {
		minBound = fmt.Sprintf("(%g", *r.GT)
	} else if r.GTE != nil {
		minBound = fmt.Sprintf("%g", *r.GTE)
	}

	if r.LT != nil {
		maxBound = fmt.Sprintf("(%g", *r.LT)
	} else if r.LTE != nil {
		maxBound = fmt.Sprintf("%g", *r.LTE)
	}

	return fmt.Sprintf("@%s:[%s %s]", attr, minBound, maxBound)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// highlightPrefix wraps the matched prefix of value in the highlight tags.
func highlightPrefix(value, query, pre, post string) string {
	if query == "" || pre == "" || post == "" {
		return value
	}
	if !strings.HasPrefix(strings.ToLower(value), strings.ToLower(query)) {
		return value
	}
	n := len(query)
	return pre + value[:n] + post + value[n:]
}

// --- Query helpers ---

// isRedisErr checks if err is a Redis server error containing substr (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return containsIgnoreCase(re.Error(), substr)
}

func containsIgnoreCase(s, substr string) bool {
	ls := len(s)
	lsub := len(substr)
	if lsub > ls {
		return false
	}
	for i := 0; i <= ls-lsub; i++ {
		match := true
		for j := 0; j < lsub; j++ {
			sc := s[i+j]
			tc := substr[j]
			if sc >= 'A' && sc <= 'Z' {
				sc += 'a' - 'A'
			}
			if tc >= 'A' && tc <= 'Z' {
				tc += 'a' - 'A'
			}
			if sc != tc {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)
