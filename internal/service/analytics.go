package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/linkcardapp/linkcard-server/internal/domain"
	domainerrors "github.com/linkcardapp/linkcard-server/internal/errors"
	"github.com/linkcardapp/linkcard-server/internal/id"
	"github.com/linkcardapp/linkcard-server/internal/store"
	"github.com/linkcardapp/linkcard-server/internal/store/sqlite"
)

// AnalyticsService records views and clicks on published cards.
//
// Ingestion is fire-and-forget: events go through a bounded buffer and a
// single writer goroutine. When the buffer is full the event is dropped;
// a public page must never block on analytics.
type AnalyticsService struct {
	profiles *sqlite.Store
	logger   *slog.Logger

	events  chan *domain.AnalyticsEvent
	wg      sync.WaitGroup
	dropped atomic.Int64

	mu      sync.Mutex
	started bool
	closed  bool
}

// NewAnalyticsService creates an analytics service with the given buffer size.
func NewAnalyticsService(profiles *sqlite.Store, bufferSize int, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		profiles: profiles,
		logger:   logger,
		events:   make(chan *domain.AnalyticsEvent, bufferSize),
	}
}

// Start launches the writer goroutine. It drains the buffer before
// returning when the service is closed.
func (s *AnalyticsService) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for event := range s.events {
			if err := s.profiles.InsertEvent(context.Background(), event); err != nil {
				s.logger.Warn("failed to insert analytics event",
					"profile_id", event.ProfileID,
					"error", err,
				)
			}
		}
	}()
}

// Close stops accepting events and waits for the buffer to drain.
func (s *AnalyticsService) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	started := s.started
	// Closing under the lock serializes with in-flight RecordEvent calls.
	close(s.events)
	s.mu.Unlock()

	if started {
		s.wg.Wait()
	}

	if dropped := s.dropped.Load(); dropped > 0 {
		s.logger.Warn("analytics events dropped during lifetime", "count", dropped)
	}
}

// RecordEvent is the raw ingestion entry point. TargetType and targetID
// are empty for plain views.
func (s *AnalyticsService) RecordEvent(eventType domain.AnalyticsEventType, profileID, targetType, targetID string, metadata map[string]string) {
	eventID, err := id.Generate("evt")
	if err != nil {
		s.logger.Warn("failed to generate analytics event id", "error", err)
		return
	}

	event := &domain.AnalyticsEvent{
		ID:         eventID,
		ProfileID:  profileID,
		EventType:  eventType,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	select {
	case s.events <- event:
	default:
		s.dropped.Add(1)
		s.logger.Debug("analytics buffer full, dropping event", "profile_id", profileID)
	}
}

// RecordView records a page view of a published card.
func (s *AnalyticsService) RecordView(profileID string, metadata map[string]string) {
	s.RecordEvent(domain.EventView, profileID, "", "", metadata)
}

// RecordClick records a click on a link, button, story, or widget.
func (s *AnalyticsService) RecordClick(profileID, targetType, targetID string, metadata map[string]string) {
	s.RecordEvent(domain.EventClick, profileID, targetType, targetID, metadata)
}

// Summary returns aggregated counts for the user's own card since the
// given time. A zero since covers all time.
func (s *AnalyticsService) Summary(ctx context.Context, userID string, since time.Time) (*domain.AnalyticsSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Analytics are keyed by profile; the owner must have a saved profile.
	record, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("no saved card")
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	summary, err := s.profiles.AnalyticsSummary(ctx, record.UserID, since)
	if err != nil {
		return nil, fmt.Errorf("analytics summary: %w", err)
	}
	return summary, nil
}

// Flush blocks until every buffered event has been handed to the writer.
// Intended for tests.
func (s *AnalyticsService) Flush() {
	for len(s.events) > 0 {
		time.Sleep(5 * time.Millisecond)
	}
	// One more beat so the in-flight event finishes its insert.
	time.Sleep(20 * time.Millisecond)
}
