package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a directory search.
type SearchParams struct {
	Query  string // User's search query
	Layout string // Filter by exact layout (empty = all)

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy string // "relevance", "recent"

	// Options
	Highlight bool // Include match highlighting
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:     20,
		Offset:    0,
		SortBy:    "relevance",
		Highlight: true,
	}
}

// SearchResult represents the directory search results.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit represents a single matched card.
type SearchHit struct {
	ID         string            `json:"id"`
	Handle     string            `json:"handle"`
	Score      float64           `json:"score"`
	Name       string            `json:"name"`
	Title      string            `json:"title,omitempty"`
	Layout     string            `json:"layout,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search executes a directory search.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	// Sorting: relevance is Bleve's default; recent sorts by publish time.
	if params.SortBy == "recent" {
		searchRequest.SortBy([]string{"-published_at"})
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("name")
		searchRequest.Highlight.AddField("title")
	}

	// Request stored fields
	searchRequest.Fields = []string{"id", "handle", "name", "title", "layout"}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if h, ok := hit.Fields["handle"].(string); ok {
			searchHit.Handle = h
		}
		if n, ok := hit.Fields["name"].(string); ok {
			searchHit.Name = n
		}
		if t, ok := hit.Fields["title"].(string); ok {
			searchHit.Title = t
		}
		if l, ok := hit.Fields["layout"].(string); ok {
			searchHit.Layout = l
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if params.Query != "" {
		textQueries := []query.Query{}

		// Display name match with highest boost
		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)
		textQueries = append(textQueries, nameMatch)

		// Professional title match
		titleMatch := bleve.NewMatchQuery(params.Query)
		titleMatch.SetField("title")
		titleMatch.SetBoost(1.5)
		textQueries = append(textQueries, titleMatch)

		// Bio match, lowest weight
		bioMatch := bleve.NewMatchQuery(params.Query)
		bioMatch.SetField("bio")
		bioMatch.SetBoost(0.5)
		textQueries = append(textQueries, bioMatch)

		// Fuzzy matching for typo tolerance on name
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Handle prefix for autocomplete (minimum 2 chars)
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("handle")
			prefixQuery.SetBoost(2.0)
			textQueries = append(textQueries, prefixQuery)
		}

		// Combine with OR (match any field)
		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Layout filter
	if params.Layout != "" {
		lq := bleve.NewTermQuery(params.Layout)
		lq.SetField("layout")
		queries = append(queries, lq)
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}
