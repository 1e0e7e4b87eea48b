package domain

import "time"

// ProfileRecord is the saved shape of a card in SQLite: three flat columns
// mapped from the document (name, bio, profile image) plus an opaque
// settings blob holding every other CardData field. SaveProfile splits the
// document this way; loading reassembles it over the default document.
type ProfileRecord struct {
	UserID      string     `json:"user_id"`
	FullName    string     `json:"full_name"`
	Bio         string     `json:"bio"`
	AvatarURL   string     `json:"avatar_url"`
	ThemeConfig []byte     `json:"theme_config,omitempty"` // JSON blob, CardData minus the flat fields
	Handle      string     `json:"handle,omitempty"`       // Set once published
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsPublished reports whether the card is publicly reachable by handle.
func (p *ProfileRecord) IsPublished() bool {
	return p.PublishedAt != nil && p.Handle != ""
}
