// Package search provides the published-card directory using Bleve:
// full-text search over handle, display name, title, and bio with
// fuzzy matching and highlighting.
package search

import (
	"github.com/linkcardapp/linkcard-server/internal/domain"
)

// CardDocument is the indexed shape of a published card.
type CardDocument struct {
	ID     string `json:"id"` // Profile owner's user ID
	Handle string `json:"handle"`
	Name   string `json:"name"`
	Title  string `json:"title"`
	Bio    string `json:"bio"`
	Layout string `json:"layout"` // Keyword, facetable

	PublishedAt int64 `json:"published_at"` // Unix millis
	UpdatedAt   int64 `json:"updated_at"`   // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *CardDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"handle":     d.Handle,
		"name":       d.Name,
		"updated_at": d.UpdatedAt,
	}

	// Optional fields - only add if non-empty
	if d.Title != "" {
		m["title"] = d.Title
	}
	if d.Bio != "" {
		m["bio"] = d.Bio
	}
	if d.Layout != "" {
		m["layout"] = d.Layout
	}
	if d.PublishedAt > 0 {
		m["published_at"] = d.PublishedAt
	}

	return m
}

// CardToDocument converts a published card to its indexed form. The card
// document comes from the profile record plus the reassembled CardData.
func CardToDocument(record *domain.ProfileRecord, card domain.CardData) *CardDocument {
	doc := &CardDocument{
		ID:        record.UserID,
		Handle:    record.Handle,
		Name:      card.Name,
		Title:     card.Title,
		Bio:       card.Bio,
		Layout:    string(card.Layout),
		UpdatedAt: record.UpdatedAt.UnixMilli(),
	}
	if record.PublishedAt != nil {
		doc.PublishedAt = record.PublishedAt.UnixMilli()
	}
	return doc
}
