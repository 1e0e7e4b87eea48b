package domain

import "time"

// AnalyticsEventType discriminates recorded interactions.
type AnalyticsEventType string

const (
	EventView  AnalyticsEventType = "view"
	EventClick AnalyticsEventType = "click"
)

// AnalyticsEvent is one recorded view or interaction on a published card.
// Ingestion is fire-and-forget; events are buffered and may be dropped
// under load.
type AnalyticsEvent struct {
	ID         string             `json:"id"`
	ProfileID  string             `json:"profile_id"`
	EventType  AnalyticsEventType `json:"event_type"`
	TargetType string             `json:"target_type,omitempty"` // social_link, contact_button, story, widget
	TargetID   string             `json:"target_id,omitempty"`
	Metadata   map[string]string  `json:"metadata,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// AnalyticsSummary aggregates event counts for a profile.
type AnalyticsSummary struct {
	ProfileID      string           `json:"profile_id"`
	Views          int64            `json:"views"`
	Clicks         int64            `json:"clicks"`
	ClicksByTarget map[string]int64 `json:"clicks_by_target,omitempty"` // keyed by target type
}
