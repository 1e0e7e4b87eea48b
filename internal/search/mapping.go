package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for card documents.
//
// The mapping is designed with these priorities:
//  1. Fast full-text search on names/titles/bios with English stemming
//  2. Exact keyword matching for handle and layout filters
//  3. Term vectors enabled on key fields for highlighting
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	// Use English analyzer as default for text fields
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Name field - primary search target
	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = en.AnalyzerName
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	// Title - searchable text
	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = en.AnalyzerName
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	// Bio - searchable but not stored (can be long)
	bioFieldMapping := bleve.NewTextFieldMapping()
	bioFieldMapping.Analyzer = en.AnalyzerName
	bioFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("bio", bioFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	// Handle - exact lookups and prefix search
	handleFieldMapping := bleve.NewTextFieldMapping()
	handleFieldMapping.Analyzer = keyword.Name
	handleFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("handle", handleFieldMapping)

	// Layout - for filtering by card layout
	layoutFieldMapping := bleve.NewTextFieldMapping()
	layoutFieldMapping.Analyzer = keyword.Name
	layoutFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("layout", layoutFieldMapping)

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// --- Numeric fields (sorting) ---

	publishedAtFieldMapping := bleve.NewNumericFieldMapping()
	publishedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("published_at", publishedAtFieldMapping)

	updatedAtFieldMapping := bleve.NewNumericFieldMapping()
	updatedAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updatedAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
