// Package service contains the application's business logic.
package service

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/linkcardapp/linkcard-server/internal/domain"
	domainerrors "github.com/linkcardapp/linkcard-server/internal/errors"
	"github.com/linkcardapp/linkcard-server/internal/id"
	"github.com/linkcardapp/linkcard-server/internal/search"
	"github.com/linkcardapp/linkcard-server/internal/sse"
	"github.com/linkcardapp/linkcard-server/internal/store"
	"github.com/linkcardapp/linkcard-server/internal/store/sqlite"
	"github.com/linkcardapp/linkcard-server/internal/templates"
	"github.com/linkcardapp/linkcard-server/internal/util"
)

// CardService manages card documents: per-identity editing sessions with
// debounced draft persistence, explicit profile saves, and publishing to
// the public directory.
//
// Each identity (a user ID, or store.GuestIdentity for anonymous editors)
// gets one in-memory document. The document is reconciled from storage on
// first access and every mutation schedules a trailing-edge draft write,
// so rapid edits coalesce into a single write carrying the latest state.
type CardService struct {
	store      *store.Store
	profiles   *sqlite.Store
	index      *search.SearchIndex
	registry   *templates.Registry
	sseManager *sse.Manager
	logger     *slog.Logger

	publicURL string
	debounce  time.Duration

	mu       sync.Mutex
	sessions map[string]*cardSession
}

// ErrProfileUnavailable reports that a saved profile could not be read while
// reconciling a session. The document returned alongside it is still usable;
// it was assembled from the fallback chain instead of the saved profile.
var ErrProfileUnavailable = errors.New("saved profile unavailable")

// cardSession holds one identity's working document.
type cardSession struct {
	mu          sync.Mutex
	identity    string
	doc         domain.CardData
	loadWarning error       // Non-nil when reconciliation fell back past a read failure
	timer       *time.Timer // Pending draft flush, nil when none scheduled
	flushSeq    uint64      // Bumped on every arm; a stale flush sees a newer value
	dirty       bool        // Unflushed changes exist
}

// NewCardService creates a card service.
func NewCardService(
	st *store.Store,
	profiles *sqlite.Store,
	index *search.SearchIndex,
	registry *templates.Registry,
	sseManager *sse.Manager,
	publicURL string,
	debounce time.Duration,
	logger *slog.Logger,
) *CardService {
	return &CardService{
		store:      st,
		profiles:   profiles,
		index:      index,
		registry:   registry,
		sseManager: sseManager,
		publicURL:  strings.TrimRight(publicURL, "/"),
		debounce:   debounce,
		sessions:   make(map[string]*cardSession),
		logger:     logger,
	}
}

// Get returns the identity's current working document, reconciling it from
// storage on first access. Repeated calls return the in-memory document.
//
// When the saved profile could not be read during reconciliation, Get
// returns the fallback document together with an error wrapping
// ErrProfileUnavailable so callers can tell the caller's saved state was
// not consulted.
func (s *CardService) Get(ctx context.Context, identity string) (domain.CardData, error) {
	sess, err := s.session(ctx, identity)
	if err != nil {
		return domain.CardData{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.doc.Clone(), sess.loadWarning
}

// session returns the identity's session, creating and reconciling it if
// this is the first access.
func (s *CardService) session(ctx context.Context, identity string) (*cardSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if identity == "" {
		return nil, domainerrors.Validation("identity cannot be empty")
	}

	s.mu.Lock()
	sess, ok := s.sessions[identity]
	if !ok {
		sess = &cardSession{identity: identity}
		sess.mu.Lock() // Hold while reconciling so concurrent callers wait
		s.sessions[identity] = sess
	}
	s.mu.Unlock()

	if ok {
		return sess, nil
	}

	sess.doc, sess.loadWarning = s.reconcile(ctx, identity)
	sess.mu.Unlock()
	return sess, nil
}

// reconcile assembles the identity's starting document.
//
// Priority: a parseable draft wins unconditionally and is shallow-merged
// over the default document. Without a draft, a signed-in user's saved
// profile is used; anything else falls back to the default document.
// A draft that fails to parse is treated as absent. A saved profile that
// exists but cannot be read is surfaced as an ErrProfileUnavailable warning
// alongside the default document.
func (s *CardService) reconcile(ctx context.Context, identity string) (domain.CardData, error) {
	if raw, err := s.store.GetDraft(ctx, identity); err == nil {
		var patch domain.CardPatch
		if parseErr := json.Unmarshal(raw, &patch); parseErr == nil {
			return patch.Apply(domain.DefaultCard()), nil
		}
		s.logger.Warn("discarding unparseable draft",
			"identity", identity,
		)
	} else if !errors.Is(err, store.ErrNotFound) {
		s.logger.Warn("failed to load draft, falling back",
			"identity", identity,
			"error", err,
		)
	}

	if identity != store.GuestIdentity {
		record, err := s.profiles.GetProfile(ctx, identity)
		if err == nil {
			return AssembleCard(record), nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("failed to load saved profile, falling back to default",
				"identity", identity,
				"error", err,
			)
			return domain.DefaultCard(), fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
		}
	}

	return domain.DefaultCard(), nil
}

// AssembleCard rebuilds a full document from a saved profile record:
// the stored settings applied over the default document, then the flat
// profile columns layered on top.
func AssembleCard(record *domain.ProfileRecord) domain.CardData {
	doc := domain.DefaultCard()

	if len(record.ThemeConfig) > 0 {
		var patch domain.CardPatch
		if err := json.Unmarshal(record.ThemeConfig, &patch); err == nil {
			doc = patch.Apply(doc)
		}
	}

	doc.Name = record.FullName
	doc.Bio = record.Bio
	doc.ProfileImage = record.AvatarURL
	return doc
}

// mutate runs fn against the identity's document under its session lock,
// then schedules a draft flush and notifies the identity's live sessions.
func (s *CardService) mutate(ctx context.Context, identity string, fn func(doc *domain.CardData) error) (domain.CardData, error) {
	sess, err := s.session(ctx, identity)
	if err != nil {
		return domain.CardData{}, err
	}

	sess.mu.Lock()
	if err := fn(&sess.doc); err != nil {
		sess.mu.Unlock()
		return domain.CardData{}, err
	}
	out := sess.doc.Clone()
	s.scheduleFlushLocked(sess)
	sess.mu.Unlock()

	if identity != store.GuestIdentity && s.sseManager != nil {
		s.sseManager.Emit(sse.NewCardUpdatedEvent(identity, out))
	}

	return out, nil
}

// scheduleFlushLocked arms (or re-arms) the trailing-edge draft write.
// Callers must hold sess.mu. Each arm gets a new sequence number; a Stop
// that loses the race against a firing timer leaves a stale flush behind,
// and the sequence check keeps it from touching the newer arm's state.
func (s *CardService) scheduleFlushLocked(sess *cardSession) {
	sess.dirty = true
	if sess.timer != nil {
		sess.timer.Stop()
	}
	sess.flushSeq++
	seq := sess.flushSeq
	sess.timer = time.AfterFunc(s.debounce, func() {
		s.flush(sess, seq)
	})
}

// flush writes the session's current document to the draft store.
// Write failures are logged, not surfaced: draft persistence is
// best-effort and the in-memory document stays authoritative.
func (s *CardService) flush(sess *cardSession, seq uint64) {
	sess.mu.Lock()
	if seq != sess.flushSeq {
		// Superseded by a newer arm; that one owns the write.
		sess.mu.Unlock()
		return
	}
	sess.timer = nil
	if !sess.dirty {
		sess.mu.Unlock()
		return
	}
	sess.dirty = false
	data, err := json.Marshal(sess.doc)
	identity := sess.identity
	sess.mu.Unlock()

	if err != nil {
		s.logger.Error("failed to encode draft", "identity", identity, "error", err)
		return
	}

	if err := s.store.SaveDraft(context.Background(), identity, data); err != nil {
		s.logger.Error("failed to persist draft", "identity", identity, "error", err)
		return
	}

	s.logger.Debug("draft persisted", "identity", identity, "bytes", len(data))
}

// Close flushes all pending drafts. Called during server shutdown.
func (s *CardService) Close() {
	s.mu.Lock()
	sessions := make([]*cardSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.mu.Lock()
		if sess.timer != nil {
			sess.timer.Stop()
			sess.timer = nil
		}
		seq := sess.flushSeq
		sess.mu.Unlock()
		s.flush(sess, seq)
	}
}

// UpdateFields shallow-merges the patch over the identity's document.
// Each field present in the patch replaces its counterpart wholesale.
func (s *CardService) UpdateFields(ctx context.Context, identity string, patch domain.CardPatch) (domain.CardData, error) {
	return s.mutate(ctx, identity, func(doc *domain.CardData) error {
		*doc = patch.Apply(*doc)
		return nil
	})
}

// UpdateBackground merges the patch into the background config, leaving
// the settings of inactive background types intact.
func (s *CardService) UpdateBackground(ctx context.Context, identity string, patch domain.BackgroundPatch) (domain.CardData, error) {
	return s.mutate(ctx, identity, func(doc *domain.CardData) error {
		doc.Background = patch.Apply(doc.Background)
		return nil
	})
}

// SocialLinkUpdate holds the mutable fields of a social link.
type SocialLinkUpdate struct {
	URL     *string `json:"url,omitempty"`
	Enabled *bool   `json:"enabled,omitempty"`
}

// UpdateSocialLink updates one social link by ID. Unknown IDs are a no-op:
// the catalog is fixed and a stale editor may reference a removed entry.
func (s *CardService) UpdateSocialLink(ctx context.Context, identity, linkID string, update SocialLinkUpdate) (domain.CardData, error) {
	return s.mutate(ctx, identity, func(doc *domain.CardData) error {
		for i := range doc.SocialLinks {
			if doc.SocialLinks[i].ID != linkID {
				continue
			}
			if update.URL != nil {
				doc.SocialLinks[i].URL = *update.URL
			}
			if update.Enabled != nil {
				doc.SocialLinks[i].Enabled = *update.Enabled
			}
			return nil
		}
		return nil
	})
}

// ContactButtonUpdate holds the mutable fields of a contact button.
type ContactButtonUpdate struct {
	Label   *string `json:"label,omitempty"`
	Value   *string `json:"value,omitempty"`
	Enabled *bool   `json:"enabled,omitempty"`
}

// UpdateContactButton updates one contact button by ID. Unknown IDs are a no-op.
func (s *CardService) UpdateContactButton(ctx context.Context, identity, buttonID string, update ContactButtonUpdate) (domain.CardData, error) {
	return s.mutate(ctx, identity, func(doc *domain.CardData) error {
		for i := range doc.ContactButtons {
			if doc.ContactButtons[i].ID != buttonID {
				continue
			}
			if update.Label != nil {
				doc.ContactButtons[i].Label = *update.Label
			}
			if update.Value != nil {
				doc.ContactButtons[i].Value = *update.Value
			}
			if update.Enabled != nil {
				doc.ContactButtons[i].Enabled = *update.Enabled
			}
			return nil
		}
		return nil
	})
}

// AddStory appends a story. A missing ID is assigned server-side.
func (s *CardService) AddStory(ctx context.Context, identity string, story domain.Story) (domain.CardData, error) {
	if story.ID == "" {
		storyID, err := id.Generate("story")
		if err != nil {
			return domain.CardData{}, fmt.Errorf("generate story id: %w", err)
		}
		story.ID = storyID
	}
	if story.MediaType == "" {
		story.MediaType = domain.MediaImage
	}

	return s.mutate(ctx, identity, func(doc *domain.CardData) error {
		doc.Stories = append(doc.Stories, story)
		return nil
	})
}

// StoryUpdate holds the mutable fields of a story.
type StoryUpdate struct {
	Title     *string           `json:"title,omitempty"`
	Image     *string           `json:"image,omitempty"`
	Video     *string           `json:"video,omitempty"`
	MediaType *domain.MediaType `json:"mediaType,omitempty"`
	Content   *string           `json:"content,omitempty"`
}

// UpdateStory updates one story by ID. Unknown IDs are a no-op.
func (s *CardService) UpdateStory(ctx context.Context, identity, storyID string, update StoryUpdate) (domain.CardData, error) {
	return s.mutate(ctx, identity, func(doc *domain.CardData) error {
		for i := range doc.Stories {
			if doc.Stories[i].ID != storyID {
				continue
			}
			if update.Title != nil {
				doc.Stories[i].Title = *update.Title
			}
			if update.Image != nil {
				doc.Stories[i].Image = *update.Image
			}
			if update.Video != nil {
				doc.Stories[i].Video = *update.Video
			}
			if update.MediaType != nil {
				doc.Stories[i].MediaType = *update.MediaType
			}
			if update.Content != nil {
				doc.Stories[i].Content = *update.Content
			}
			return nil
		}
		return nil
	})
}

// RemoveStory deletes a story by ID. Unknown IDs are a no-op.
func (s *CardService) RemoveStory(ctx context.Context, identity, storyID string) (domain.CardData, error) {
	return s.mutate(ctx, identity, func(doc *domain.CardData) error {
		doc.Stories = removeByID(doc.Stories, storyID, func(st domain.Story) string { return st.ID })
		return nil
	})
}

// AddAchievement appends an achievement. A missing ID is assigned server-side.
func (s *CardService) AddAchievement(ctx context.Context, identity string, achievement domain.Achievement) (domain.CardData, error) {
	if achievement.ID == "" {
		achievementID, err := id.Generate("ach")
		if err != nil {
			return domain.CardData{}, fmt.Errorf("generate achievement id: %w", err)
		}
		achievement.ID = achievementID
	}

	return s.mutate(ctx, identity, func(doc *domain.CardData) error {
		doc.Achievements = append(doc.Achievements, achievement)
		return nil
	})
}

// AchievementUpdate holds the mutable fields of an achievement.
type AchievementUpdate struct {
	Label  *string `json:"label,omitempty"`
	Value  *int    `json:"value,omitempty"`
	Suffix *string `json:"suffix,omitempty"`
	Icon   *string `json:"icon,omitempty"`
}

// UpdateAchievement updates one achievement by ID. Unknown IDs are a no-op.
func (s *CardService) UpdateAchievement(ctx context.Context, identity, achievementID string, update AchievementUpdate) (domain.CardData, error) {
	return s.mutate(ctx, identity, func(doc *domain.CardData) error {
		for i := range doc.Achievements {
			if doc.Achievements[i].ID != achievementID {
				continue
			}
			if update.Label != nil {
				doc.Achievements[i].Label = *update.Label
			}
			if update.Value != nil {
				doc.Achievements[i].Value = *update.Value
			}
			if update.Suffix != nil {
				doc.Achievements[i].Suffix = *update.Suffix
			}
			if update.Icon != nil {
				doc.Achievements[i].Icon = *update.Icon
			}
			return nil
		}
		return nil
	})
}

// RemoveAchievement deletes an achievement by ID. Unknown IDs are a no-op.
func (s *CardService) RemoveAchievement(ctx context.Context, identity, achievementID string) (domain.CardData, error) {
	return s.mutate(ctx, identity, func(doc *domain.CardData) error {
		doc.Achievements = removeByID(doc.Achievements, achievementID, func(a domain.Achievement) string { return a.ID })
		return nil
	})
}

// AddBadge appends a badge. A missing ID is assigned server-side.
func (s *CardService) AddBadge(ctx context.Context, identity string, badge domain.Badge) (domain.CardData, error) {
	if badge.ID == "" {
		badgeID, err := id.Generate("badge")
		if err != nil {
			return domain.CardData{}, fmt.Errorf("generate badge id: %w", err)
		}
		badge.ID = badgeID
	}

	return s.mutate(ctx, identity, func(doc *domain.CardData) error {
		doc.Badges = append(doc.Badges, badge)
		return nil
	})
}

// BadgeUpdate holds the mutable fields of a badge.
type BadgeUpdate struct {
	Text  *string `json:"text,omitempty"`
	Color *string `json:"color,omitempty"`
}

// UpdateBadge updates one badge by ID. Unknown IDs are a no-op.
func (s *CardService) UpdateBadge(ctx context.Context, identity, badgeID string, update BadgeUpdate) (domain.CardData, error) {
	return s.mutate(ctx, identity, func(doc *domain.CardData) error {
		for i := range doc.Badges {
			if doc.Badges[i].ID != badgeID {
				continue
			}
			if update.Text != nil {
				doc.Badges[i].Text = *update.Text
			}
			if update.Color != nil {
				doc.Badges[i].Color = *update.Color
			}
			return nil
		}
		return nil
	})
}

// RemoveBadge deletes a badge by ID. Unknown IDs are a no-op.
func (s *CardService) RemoveBadge(ctx context.Context, identity, badgeID string) (domain.CardData, error) {
	return s.mutate(ctx, identity, func(doc *domain.CardData) error {
		doc.Badges = removeByID(doc.Badges, badgeID, func(b domain.Badge) string { return b.ID })
		return nil
	})
}

// ReorderSections rearranges sections into the given ID order and
// re-stamps Order densely from 0. IDs not present in the document are
// ignored; sections missing from the list keep their relative order at
// the end.
func (s *CardService) ReorderSections(ctx context.Context, identity string, orderedIDs []string) (domain.CardData, error) {
	return s.mutate(ctx, identity, func(doc *domain.CardData) error {
		byID := make(map[string]domain.Section, len(doc.Sections))
		for _, section := range doc.Sections {
			byID[section.ID] = section
		}

		reordered := make([]domain.Section, 0, len(doc.Sections))
		placed := make(map[string]bool, len(orderedIDs))
		for _, id := range orderedIDs {
			section, ok := byID[id]
			if !ok || placed[id] {
				continue
			}
			placed[id] = true
			reordered = append(reordered, section)
		}
		for _, section := range doc.Sections {
			if !placed[section.ID] {
				reordered = append(reordered, section)
			}
		}

		for i := range reordered {
			reordered[i].Order = i
		}
		doc.Sections = reordered
		return nil
	})
}

// ToggleSection flips a section's visibility by ID. Unknown IDs are a no-op.
func (s *CardService) ToggleSection(ctx context.Context, identity, sectionID string) (domain.CardData, error) {
	return s.mutate(ctx, identity, func(doc *domain.CardData) error {
		for i := range doc.Sections {
			if doc.Sections[i].ID == sectionID {
				doc.Sections[i].Enabled = !doc.Sections[i].Enabled
				return nil
			}
		}
		return nil
	})
}

// ApplyTemplate applies a template's presentation config to the document.
// Templates only carry presentation fields, so user content survives.
func (s *CardService) ApplyTemplate(ctx context.Context, identity, templateID string) (domain.CardData, error) {
	tmpl, ok := s.registry.Get(templateID)
	if !ok {
		return domain.CardData{}, domainerrors.NotFoundf("template %q not found", templateID)
	}

	return s.mutate(ctx, identity, func(doc *domain.CardData) error {
		*doc = tmpl.Config.Apply(*doc)
		return nil
	})
}

// SetCustomWidgets replaces the widget list wholesale.
// Invalid widgets (payload not matching the declared type) are rejected.
func (s *CardService) SetCustomWidgets(ctx context.Context, identity string, widgets []domain.CustomWidget) (domain.CardData, error) {
	for i := range widgets {
		if widgets[i].ID == "" {
			widgetID, err := id.Generate("widget")
			if err != nil {
				return domain.CardData{}, fmt.Errorf("generate widget id: %w", err)
			}
			widgets[i].ID = widgetID
		}
		if !widgets[i].Valid() {
			return domain.CardData{}, domainerrors.Validationf("widget %q has no %s content", widgets[i].ID, widgets[i].Type)
		}
	}

	return s.mutate(ctx, identity, func(doc *domain.CardData) error {
		doc.CustomWidgets = make([]domain.CustomWidget, len(widgets))
		for i, w := range widgets {
			doc.CustomWidgets[i] = w.Clone()
		}
		return nil
	})
}

// Reset discards the identity's draft and working document and
// re-reconciles from the saved profile (or the default document).
func (s *CardService) Reset(ctx context.Context, identity string) (domain.CardData, error) {
	sess, err := s.session(ctx, identity)
	if err != nil {
		return domain.CardData{}, err
	}

	if err := s.store.DeleteDraft(ctx, identity); err != nil {
		return domain.CardData{}, fmt.Errorf("delete draft: %w", err)
	}

	sess.mu.Lock()
	if sess.timer != nil {
		sess.timer.Stop()
		sess.timer = nil
	}
	sess.flushSeq++
	sess.dirty = false
	sess.doc, sess.loadWarning = s.reconcile(ctx, identity)
	out := sess.doc.Clone()
	warning := sess.loadWarning
	sess.mu.Unlock()

	if identity != store.GuestIdentity && s.sseManager != nil {
		s.sseManager.Emit(sse.NewCardUpdatedEvent(identity, out))
	}
	return out, warning
}

// SaveProfile persists the user's working document to durable storage,
// split into flat profile columns plus a settings blob. The draft is
// intentionally kept: it still mirrors the saved state, and losing it on
// save would discard unflushed edits from other sessions.
func (s *CardService) SaveProfile(ctx context.Context, userID string) (*domain.ProfileRecord, error) {
	if userID == store.GuestIdentity {
		return nil, domainerrors.Unauthorized("sign in to save your card")
	}

	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	doc := sess.doc.Clone()
	sess.mu.Unlock()

	record, err := s.buildProfileRecord(ctx, userID, doc)
	if err != nil {
		return nil, err
	}

	if err := s.profiles.SaveProfile(ctx, record); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	// The working document is durable again; any earlier load warning no
	// longer applies.
	sess.mu.Lock()
	sess.loadWarning = nil
	sess.mu.Unlock()

	// A published card's directory entry reflects the saved state.
	if record.IsPublished() {
		s.indexPublished(record, doc)
	}

	s.logger.Info("profile saved", "user_id", userID)
	return record, nil
}

// buildProfileRecord splits a document into the profile row shape,
// carrying over publication state from any existing record.
func (s *CardService) buildProfileRecord(ctx context.Context, userID string, doc domain.CardData) (*domain.ProfileRecord, error) {
	now := time.Now()
	record := &domain.ProfileRecord{
		UserID:    userID,
		FullName:  doc.Name,
		Bio:       doc.Bio,
		AvatarURL: doc.ProfileImage,
		CreatedAt: now,
		UpdatedAt: now,
	}

	existing, err := s.profiles.GetProfile(ctx, userID)
	if err == nil {
		record.Handle = existing.Handle
		record.PublishedAt = existing.PublishedAt
		record.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get existing profile: %w", err)
	}

	// Everything except the flat columns goes into the settings blob.
	settings := doc.Clone()
	settings.Name = ""
	settings.Bio = ""
	settings.ProfileImage = ""
	blob, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	record.ThemeConfig = blob

	return record, nil
}

// Publish saves the user's card and makes it publicly reachable under the
// given handle. The handle is normalized to lowercase-dash form; an empty
// result after normalization is rejected.
func (s *CardService) Publish(ctx context.Context, userID, rawHandle string) (*domain.ProfileRecord, error) {
	if userID == store.GuestIdentity {
		return nil, domainerrors.Unauthorized("sign in to publish your card")
	}

	handle := util.NormalizeHandle(rawHandle)
	if handle == "" {
		return nil, domainerrors.Validation("handle must contain letters or numbers")
	}

	// Handle collisions are checked up front for a friendly error; the
	// unique index still backstops races.
	if other, err := s.profiles.GetProfileByHandle(ctx, handle); err == nil && other.UserID != userID {
		return nil, domainerrors.AlreadyExists("handle already in use")
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check handle: %w", err)
	}

	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	doc := sess.doc.Clone()
	sess.mu.Unlock()

	record, err := s.buildProfileRecord(ctx, userID, doc)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record.Handle = handle
	if record.PublishedAt == nil {
		record.PublishedAt = &now
	}
	record.UpdatedAt = now

	if err := s.profiles.SaveProfile(ctx, record); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, domainerrors.AlreadyExists("handle already in use")
		}
		return nil, fmt.Errorf("save profile: %w", err)
	}

	s.indexPublished(record, doc)

	if s.sseManager != nil {
		s.sseManager.Emit(sse.NewCardPublishedEvent(userID, handle, *record.PublishedAt))
	}

	s.logger.Info("card published", "user_id", userID, "handle", handle)
	return record, nil
}

// Unpublish removes the user's card from the public directory.
// The handle is released so another user may claim it.
func (s *CardService) Unpublish(ctx context.Context, userID string) error {
	record, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("no saved card to unpublish")
		}
		return fmt.Errorf("get profile: %w", err)
	}

	handle := record.Handle
	record.Handle = ""
	record.PublishedAt = nil
	record.UpdatedAt = time.Now()

	if err := s.profiles.SaveProfile(ctx, record); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	if err := s.index.DeleteCard(userID); err != nil {
		s.logger.Warn("failed to remove card from directory index",
			"user_id", userID,
			"error", err,
		)
	}

	if s.sseManager != nil {
		s.sseManager.Emit(sse.NewCardUnpublishedEvent(userID, handle))
	}

	s.logger.Info("card unpublished", "user_id", userID, "handle", handle)
	return nil
}

// PublicCard returns the published document for a handle. OwnerID is the
// profile owner's user ID, used internally for analytics attribution.
type PublicCard struct {
	Handle      string          `json:"handle"`
	Card        domain.CardData `json:"card"`
	PublishedAt time.Time       `json:"publishedAt"`
	PublicURL   string          `json:"publicUrl"`
	OwnerID     string          `json:"-"`
}

// GetPublicCard resolves a handle to its published card.
func (s *CardService) GetPublicCard(ctx context.Context, handle string) (*PublicCard, error) {
	record, err := s.profiles.GetProfileByHandle(ctx, util.NormalizeHandle(handle))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("no card published at %q", handle)
		}
		return nil, fmt.Errorf("get profile by handle: %w", err)
	}
	if !record.IsPublished() {
		return nil, domainerrors.NotFoundf("no card published at %q", handle)
	}

	return &PublicCard{
		Handle:      record.Handle,
		Card:        AssembleCard(record),
		PublishedAt: *record.PublishedAt,
		PublicURL:   s.CardURL(record.Handle),
		OwnerID:     record.UserID,
	}, nil
}

// CardURL returns the public URL for a published handle.
func (s *CardService) CardURL(handle string) string {
	return fmt.Sprintf("%s/%s", s.publicURL, handle)
}

// QRCode renders a PNG QR code pointing at the handle's public URL.
func (s *CardService) QRCode(handle string, size int) ([]byte, error) {
	if size <= 0 {
		size = 512
	}
	png, err := qrcode.Encode(s.CardURL(handle), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

// RebuildDirectory reindexes every published profile. Called at startup
// when the search index was recreated.
func (s *CardService) RebuildDirectory(ctx context.Context) error {
	records, err := s.profiles.ListPublishedProfiles(ctx)
	if err != nil {
		return fmt.Errorf("list published profiles: %w", err)
	}

	docs := make([]*search.CardDocument, 0, len(records))
	for _, record := range records {
		docs = append(docs, search.CardToDocument(record, AssembleCard(record)))
	}

	if err := s.index.IndexCards(docs); err != nil {
		return fmt.Errorf("index cards: %w", err)
	}

	s.logger.Info("directory index rebuilt", "cards", len(docs))
	return nil
}

// indexPublished refreshes the directory entry for a published record.
func (s *CardService) indexPublished(record *domain.ProfileRecord, doc domain.CardData) {
	assembled := doc
	assembled.Name = record.FullName
	assembled.Bio = record.Bio
	if err := s.index.IndexCard(search.CardToDocument(record, assembled)); err != nil {
		s.logger.Warn("failed to index published card",
			"user_id", record.UserID,
			"error", err,
		)
	}
}

// removeByID filters out the element whose key matches id.
func removeByID[T any](items []T, id string, key func(T) string) []T {
	out := items[:0]
	for _, item := range items {
		if key(item) != id {
			out = append(out, item)
		}
	}
	return out
}
