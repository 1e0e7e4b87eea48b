package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"fmt"
	"time"

	"github.com/linkcardapp/linkcard-server/internal/domain"
)

// InsertEvent appends one analytics event.
func (s *Store) InsertEvent(ctx context.Context, event *domain.AnalyticsEvent) error {
	var metadata sql.NullString
	if len(event.Metadata) > 0 {
		data, err := json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		metadata = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analytics_events (id, profile_id, event_type, target_type, target_id, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.ProfileID,
		string(event.EventType),
		nullString(event.TargetType),
		nullString(event.TargetID),
		metadata,
		formatTime(event.CreatedAt),
	)
	return err
}

// AnalyticsSummary aggregates event counts for a profile since the given time.
// A zero since counts everything.
func (s *Store) AnalyticsSummary(ctx context.Context, profileID string, since time.Time) (*domain.AnalyticsSummary, error) {
	summary := &domain.AnalyticsSummary{
		ProfileID:      profileID,
		ClicksByTarget: make(map[string]int64),
	}

	sinceStr := ""
	if !since.IsZero() {
		sinceStr = formatTime(since)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT event_type, COALESCE(target_type, ''), COUNT(*)
		FROM analytics_events
		WHERE profile_id = ? AND (? = '' OR created_at >= ?)
		GROUP BY event_type, target_type`,
		profileID, sinceStr, sinceStr)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var eventType, targetType string
		var count int64
		if err := rows.Scan(&eventType, &targetType, &count); err != nil {
			return nil, err
		}

		switch domain.AnalyticsEventType(eventType) {
		case domain.EventView:
			summary.Views += count
		case domain.EventClick:
			summary.Clicks += count
			if targetType != "" {
				summary.ClicksByTarget[targetType] += count
			}
		}
	}
	return summary, rows.Err()
}
