package service

import (
	"context"
	"encoding/json/v2"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkcardapp/linkcard-server/internal/domain"
	domainerrors "github.com/linkcardapp/linkcard-server/internal/errors"
	"github.com/linkcardapp/linkcard-server/internal/search"
	"github.com/linkcardapp/linkcard-server/internal/store"
	"github.com/linkcardapp/linkcard-server/internal/store/sqlite"
	"github.com/linkcardapp/linkcard-server/internal/templates"
)

// setupCardTest creates a card service backed by temporary storage.
// The debounce is kept short so coalescing tests run quickly.
func setupCardTest(t *testing.T, debounce time.Duration) (*CardService, *store.Store, *sqlite.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "linkcard-card-test-*")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.New(filepath.Join(tmpDir, "drafts.db"), logger)
	require.NoError(t, err)

	db, err := sqlite.Open(filepath.Join(tmpDir, "profiles.db"), logger)
	require.NoError(t, err)

	idx, err := search.NewSearchIndex(search.Options{
		DataPath: filepath.Join(tmpDir, "search"),
		Logger:   logger,
	})
	require.NoError(t, err)

	registry, err := templates.NewRegistry("", logger)
	require.NoError(t, err)

	svc := NewCardService(st, db, idx, registry, nil, "https://cards.example.com", debounce, logger)

	cleanup := func() {
		svc.Close()
		_ = idx.Close()
		_ = db.Close()
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return svc, st, db, cleanup
}

// waitForDraft polls until a draft exists for the identity.
func waitForDraft(t *testing.T, st *store.Store, identity string) []byte {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		data, err := st.GetDraft(context.Background(), identity)
		if err == nil {
			return data
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for draft of %s", identity)
	return nil
}

func TestCardService_GetDefaultsForNewGuest(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()

	doc, err := svc.Get(context.Background(), store.GuestIdentity)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultCard(), doc)
}

func TestCardService_NewDocumentHasSeededContent(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()

	doc, err := svc.Get(context.Background(), store.GuestIdentity)
	require.NoError(t, err)

	// A fresh document is populated, not blank, so the editor has
	// placeholder content to customize.
	assert.NotEmpty(t, doc.Stories)
	assert.NotEmpty(t, doc.Achievements)
	assert.NotEmpty(t, doc.Badges)
	assert.NotEmpty(t, doc.SocialLinks)
	assert.NotEmpty(t, doc.ContactButtons)
	assert.NotEmpty(t, doc.Sections)
}

func TestCardService_GetIsIdempotent(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	first, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	second, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCardService_DraftWinsOverSavedProfile(t *testing.T) {
	svc, st, db, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, db.SaveProfile(ctx, &domain.ProfileRecord{
		UserID:    "user-1",
		FullName:  "Saved Name",
		Bio:       "Saved bio",
		CreatedAt: now,
		UpdatedAt: now,
	}))
	require.NoError(t, st.SaveDraft(ctx, "user-1", []byte(`{"name":"Draft Name","accentColor":"#123456"}`)))

	doc, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, "Draft Name", doc.Name)
	assert.Equal(t, "#123456", doc.AccentColor)
	// Fields absent from the draft come from the default document, not the profile.
	assert.Equal(t, domain.DefaultCard().Bio, doc.Bio)
}

func TestCardService_CorruptDraftFallsBackToProfile(t *testing.T) {
	svc, st, db, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, db.SaveProfile(ctx, &domain.ProfileRecord{
		UserID:    "user-1",
		FullName:  "Saved Name",
		CreatedAt: now,
		UpdatedAt: now,
	}))
	require.NoError(t, st.SaveDraft(ctx, "user-1", []byte(`{not valid json`)))

	doc, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, "Saved Name", doc.Name)
}

func TestCardService_ProfileSettingsRestoredOnLoad(t *testing.T) {
	svc, _, db, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, db.SaveProfile(ctx, &domain.ProfileRecord{
		UserID:      "user-1",
		FullName:    "Saved Name",
		ThemeConfig: []byte(`{"accentColor":"#ff0000","layout":"bento"}`),
		CreatedAt:   now,
		UpdatedAt:   now,
	}))

	doc, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, "Saved Name", doc.Name)
	assert.Equal(t, "#ff0000", doc.AccentColor)
	assert.Equal(t, domain.LayoutBento, doc.Layout)
	// Catalogs absent from the settings blob fall back to defaults.
	assert.Len(t, doc.SocialLinks, len(domain.DefaultCard().SocialLinks))
}

func TestCardService_UpdateFieldsShallowMerge(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	name := "Jamie Rivera"
	accent := "#00ff88"
	doc, err := svc.UpdateFields(ctx, store.GuestIdentity, domain.CardPatch{
		Name:        &name,
		AccentColor: &accent,
	})
	require.NoError(t, err)

	assert.Equal(t, "Jamie Rivera", doc.Name)
	assert.Equal(t, "#00ff88", doc.AccentColor)
	// Untouched fields keep their previous values.
	assert.Equal(t, domain.DefaultCard().Title, doc.Title)
	assert.Equal(t, domain.DefaultCard().FontFamily, doc.FontFamily)
}

func TestCardService_UpdateFieldsApplyTwiceIsStable(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	name := "Jamie"
	patch := domain.CardPatch{Name: &name}

	first, err := svc.UpdateFields(ctx, store.GuestIdentity, patch)
	require.NoError(t, err)
	second, err := svc.UpdateFields(ctx, store.GuestIdentity, patch)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCardService_UpdateBackgroundPartial(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	solid := domain.BackgroundSolid
	color := "#222222"
	doc, err := svc.UpdateBackground(ctx, store.GuestIdentity, domain.BackgroundPatch{
		Type:       &solid,
		SolidColor: &color,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.BackgroundSolid, doc.Background.Type)
	assert.Equal(t, "#222222", doc.Background.SolidColor)
	// The gradient settings survive for when the user switches back.
	assert.Equal(t, domain.DefaultCard().Background.Gradient, doc.Background.Gradient)
}

func TestCardService_UpdateSocialLink(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	initial, err := svc.Get(ctx, store.GuestIdentity)
	require.NoError(t, err)
	var facebook domain.SocialLink
	for _, link := range initial.SocialLinks {
		if link.Platform == domain.PlatformFacebook {
			facebook = link
		}
	}
	require.NotEmpty(t, facebook.ID)
	require.False(t, facebook.Enabled)

	url := "https://facebook.com/jamie"
	enabled := true
	doc, err := svc.UpdateSocialLink(ctx, store.GuestIdentity, facebook.ID, SocialLinkUpdate{
		URL:     &url,
		Enabled: &enabled,
	})
	require.NoError(t, err)

	updated, ok := findSocialLink(doc, facebook.ID)
	require.True(t, ok)
	assert.Equal(t, url, updated.URL)
	assert.True(t, updated.Enabled)
	// The catalog never grows or shrinks.
	assert.Len(t, doc.SocialLinks, len(initial.SocialLinks))
}

func TestCardService_UpdateSocialLinkUnknownIDIsNoop(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	before, err := svc.Get(ctx, store.GuestIdentity)
	require.NoError(t, err)

	url := "https://example.com"
	after, err := svc.UpdateSocialLink(ctx, store.GuestIdentity, "no-such-link", SocialLinkUpdate{URL: &url})
	require.NoError(t, err)

	assert.Equal(t, before, after)
}

func TestCardService_UpdateContactButton(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	initial, err := svc.Get(ctx, store.GuestIdentity)
	require.NoError(t, err)
	require.NotEmpty(t, initial.ContactButtons)
	button := initial.ContactButtons[0]

	value := "jamie@example.com"
	doc, err := svc.UpdateContactButton(ctx, store.GuestIdentity, button.ID, ContactButtonUpdate{Value: &value})
	require.NoError(t, err)

	assert.Equal(t, value, doc.ContactButtons[0].Value)
	assert.Equal(t, button.Label, doc.ContactButtons[0].Label)
}

func TestCardService_StoryLifecycle(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	// New documents start with seeded placeholder stories; added stories
	// append after them.
	seeded := len(domain.DefaultCard().Stories)
	require.Positive(t, seeded)

	doc, err := svc.AddStory(ctx, store.GuestIdentity, domain.Story{
		Title: "Launch Day",
		Image: "/uploads/launch.jpg",
	})
	require.NoError(t, err)
	require.Len(t, doc.Stories, seeded+1)

	story := doc.Stories[seeded]
	assert.NotEmpty(t, story.ID)
	assert.Equal(t, domain.MediaImage, story.MediaType)

	newTitle := "Launch Week"
	doc, err = svc.UpdateStory(ctx, store.GuestIdentity, story.ID, StoryUpdate{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Launch Week", doc.Stories[seeded].Title)
	assert.Equal(t, story.Image, doc.Stories[seeded].Image)

	doc, err = svc.RemoveStory(ctx, store.GuestIdentity, story.ID)
	require.NoError(t, err)
	assert.Len(t, doc.Stories, seeded)
	for _, remaining := range doc.Stories {
		assert.NotEqual(t, story.ID, remaining.ID)
	}
}

func TestCardService_UpdateStoryUnknownIDIsNoop(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	title := "ghost"
	doc, err := svc.UpdateStory(ctx, store.GuestIdentity, "story-missing", StoryUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCard().Stories, doc.Stories)
}

func TestCardService_AchievementLifecycle(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	seeded := len(domain.DefaultCard().Achievements)

	doc, err := svc.AddAchievement(ctx, store.GuestIdentity, domain.Achievement{
		Label: "Projects",
		Value: 40,
	})
	require.NoError(t, err)
	require.Len(t, doc.Achievements, seeded+1)
	achievementID := doc.Achievements[seeded].ID
	assert.NotEmpty(t, achievementID)

	value := 55
	suffix := "+"
	doc, err = svc.UpdateAchievement(ctx, store.GuestIdentity, achievementID, AchievementUpdate{
		Value:  &value,
		Suffix: &suffix,
	})
	require.NoError(t, err)
	assert.Equal(t, 55, doc.Achievements[seeded].Value)
	assert.Equal(t, "+", doc.Achievements[seeded].Suffix)
	assert.Equal(t, "Projects", doc.Achievements[seeded].Label)

	doc, err = svc.RemoveAchievement(ctx, store.GuestIdentity, achievementID)
	require.NoError(t, err)
	assert.Len(t, doc.Achievements, seeded)
}

func TestCardService_BadgeLifecycle(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	seeded := len(domain.DefaultCard().Badges)

	doc, err := svc.AddBadge(ctx, store.GuestIdentity, domain.Badge{Text: "Collaborator", Color: "#a855f7"})
	require.NoError(t, err)
	require.Len(t, doc.Badges, seeded+1)
	badgeID := doc.Badges[seeded].ID
	assert.NotEmpty(t, badgeID)

	text := "Maintainer"
	doc, err = svc.UpdateBadge(ctx, store.GuestIdentity, badgeID, BadgeUpdate{Text: &text})
	require.NoError(t, err)
	assert.Equal(t, "Maintainer", doc.Badges[seeded].Text)
	assert.Equal(t, "#a855f7", doc.Badges[seeded].Color)

	doc, err = svc.RemoveBadge(ctx, store.GuestIdentity, badgeID)
	require.NoError(t, err)
	assert.Len(t, doc.Badges, seeded)
}

func TestCardService_ReorderSections(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	initial, err := svc.Get(ctx, store.GuestIdentity)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(initial.Sections), 3)

	// Move the third section to the front, keep everything else in place.
	ids := make([]string, 0, len(initial.Sections))
	ids = append(ids, initial.Sections[2].ID, initial.Sections[0].ID, initial.Sections[1].ID)
	for _, section := range initial.Sections[3:] {
		ids = append(ids, section.ID)
	}

	doc, err := svc.ReorderSections(ctx, store.GuestIdentity, ids)
	require.NoError(t, err)

	require.Len(t, doc.Sections, len(initial.Sections))
	assert.Equal(t, initial.Sections[2].ID, doc.Sections[0].ID)
	assert.Equal(t, initial.Sections[0].ID, doc.Sections[1].ID)
	for i, section := range doc.Sections {
		assert.Equal(t, i, section.Order, "order must be dense from zero")
	}
}

func TestCardService_ReorderSectionsIgnoresUnknownAndKeepsMissing(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	initial, err := svc.Get(ctx, store.GuestIdentity)
	require.NoError(t, err)

	// Only name two sections; mention one bogus ID.
	doc, err := svc.ReorderSections(ctx, store.GuestIdentity, []string{
		initial.Sections[1].ID,
		"section-bogus",
		initial.Sections[0].ID,
	})
	require.NoError(t, err)

	require.Len(t, doc.Sections, len(initial.Sections))
	assert.Equal(t, initial.Sections[1].ID, doc.Sections[0].ID)
	assert.Equal(t, initial.Sections[0].ID, doc.Sections[1].ID)
	// The unlisted sections keep their relative order after the listed ones.
	for i, section := range initial.Sections[2:] {
		assert.Equal(t, section.ID, doc.Sections[2+i].ID)
	}
	for i, section := range doc.Sections {
		assert.Equal(t, i, section.Order)
	}
}

func TestCardService_ToggleSection(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	initial, err := svc.Get(ctx, store.GuestIdentity)
	require.NoError(t, err)
	target := initial.Sections[0]

	doc, err := svc.ToggleSection(ctx, store.GuestIdentity, target.ID)
	require.NoError(t, err)
	assert.Equal(t, !target.Enabled, doc.Sections[0].Enabled)

	doc, err = svc.ToggleSection(ctx, store.GuestIdentity, target.ID)
	require.NoError(t, err)
	assert.Equal(t, target.Enabled, doc.Sections[0].Enabled)
}

func TestCardService_ApplyTemplatePreservesContent(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	name := "Jamie"
	_, err := svc.UpdateFields(ctx, store.GuestIdentity, domain.CardPatch{Name: &name})
	require.NoError(t, err)
	_, err = svc.AddStory(ctx, store.GuestIdentity, domain.Story{Title: "Keep me"})
	require.NoError(t, err)

	doc, err := svc.ApplyTemplate(ctx, store.GuestIdentity, "terminal-dev")
	require.NoError(t, err)

	assert.Equal(t, "Jamie", doc.Name)
	require.Len(t, doc.Stories, len(domain.DefaultCard().Stories)+1)
	assert.Equal(t, "Keep me", doc.Stories[len(doc.Stories)-1].Title)
	assert.Equal(t, domain.LayoutTerminal, doc.Layout)
	assert.Equal(t, "#22d3ee", doc.AccentColor)
	assert.Equal(t, "JetBrains Mono", doc.FontFamily)
}

func TestCardService_ApplyTemplateUnknownID(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()

	_, err := svc.ApplyTemplate(context.Background(), store.GuestIdentity, "no-such-template")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCardService_SetCustomWidgets(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	text := "Hello there"
	doc, err := svc.SetCustomWidgets(ctx, store.GuestIdentity, []domain.CustomWidget{
		{Type: domain.WidgetText, Title: "About", Text: &text, Enabled: true},
	})
	require.NoError(t, err)
	require.Len(t, doc.CustomWidgets, 1)
	assert.NotEmpty(t, doc.CustomWidgets[0].ID)

	// Replacement is wholesale.
	doc, err = svc.SetCustomWidgets(ctx, store.GuestIdentity, nil)
	require.NoError(t, err)
	assert.Empty(t, doc.CustomWidgets)
}

func TestCardService_SetCustomWidgetsRejectsMismatchedPayload(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()

	_, err := svc.SetCustomWidgets(context.Background(), store.GuestIdentity, []domain.CustomWidget{
		{Type: domain.WidgetPoll, Title: "Broken"},
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestCardService_DraftWriteIsDebounced(t *testing.T) {
	svc, st, _, cleanup := setupCardTest(t, 60*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	// Rapid successive edits. The draft write trails the last one.
	for _, name := range []string{"A", "Ab", "Abb", "Abby"} {
		n := name
		_, err := svc.UpdateFields(ctx, store.GuestIdentity, domain.CardPatch{Name: &n})
		require.NoError(t, err)
	}

	// Before the debounce elapses there is no draft yet.
	_, err := st.GetDraft(ctx, store.GuestIdentity)
	assert.ErrorIs(t, err, store.ErrNotFound)

	data := waitForDraft(t, st, store.GuestIdentity)

	var persisted domain.CardData
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, "Abby", persisted.Name, "the coalesced write carries the final state")
}

func TestCardService_CloseFlushesPendingDraft(t *testing.T) {
	svc, st, _, cleanup := setupCardTest(t, 10*time.Second)
	defer cleanup()
	ctx := context.Background()

	name := "Pending"
	_, err := svc.UpdateFields(ctx, "user-1", domain.CardPatch{Name: &name})
	require.NoError(t, err)

	// The debounce is far in the future; Close must not wait for it.
	svc.Close()

	data, err := st.GetDraft(ctx, "user-1")
	require.NoError(t, err)

	var persisted domain.CardData
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, "Pending", persisted.Name)
}

func TestCardService_SupersededFlushKeepsPendingWrite(t *testing.T) {
	svc, st, _, cleanup := setupCardTest(t, 60*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	first := "First"
	_, err := svc.UpdateFields(ctx, store.GuestIdentity, domain.CardPatch{Name: &first})
	require.NoError(t, err)

	svc.mu.Lock()
	sess := svc.sessions[store.GuestIdentity]
	svc.mu.Unlock()

	sess.mu.Lock()
	supersededSeq := sess.flushSeq
	sess.mu.Unlock()

	second := "Second"
	_, err = svc.UpdateFields(ctx, store.GuestIdentity, domain.CardPatch{Name: &second})
	require.NoError(t, err)

	// The Stop in scheduleFlushLocked can lose the race against a timer
	// that is already firing. A flush from that superseded arm must leave
	// the newer arm's timer and dirty flag alone.
	svc.flush(sess, supersededSeq)

	sess.mu.Lock()
	assert.NotNil(t, sess.timer, "the pending write must stay armed")
	assert.True(t, sess.dirty)
	sess.mu.Unlock()

	data := waitForDraft(t, st, store.GuestIdentity)
	var persisted domain.CardData
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, "Second", persisted.Name)
}

func TestCardService_GetSurfacesProfileReadFailure(t *testing.T) {
	svc, _, db, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	// Closing the profile store makes the saved-profile read fail with
	// something other than not-found.
	require.NoError(t, db.Close())

	doc, err := svc.Get(ctx, "user-1")
	require.ErrorIs(t, err, ErrProfileUnavailable)
	assert.Equal(t, domain.DefaultCard(), doc, "the fallback document is still served")

	// The degraded load keeps being reported on later reads.
	_, err = svc.Get(ctx, "user-1")
	require.ErrorIs(t, err, ErrProfileUnavailable)
}

func TestCardService_ResetDiscardsDraft(t *testing.T) {
	svc, st, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	name := "Scratch"
	_, err := svc.UpdateFields(ctx, store.GuestIdentity, domain.CardPatch{Name: &name})
	require.NoError(t, err)
	waitForDraft(t, st, store.GuestIdentity)

	doc, err := svc.Reset(ctx, store.GuestIdentity)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultCard(), doc)
	_, err = st.GetDraft(ctx, store.GuestIdentity)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCardService_SaveProfileSplitsDocument(t *testing.T) {
	svc, st, db, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	name := "Jamie Rivera"
	bio := "Building things"
	avatar := "/uploads/jamie.jpg"
	accent := "#10b981"
	_, err := svc.UpdateFields(ctx, "user-1", domain.CardPatch{
		Name:         &name,
		Bio:          &bio,
		ProfileImage: &avatar,
		AccentColor:  &accent,
	})
	require.NoError(t, err)
	waitForDraft(t, st, "user-1")

	record, err := svc.SaveProfile(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, "Jamie Rivera", record.FullName)
	assert.Equal(t, "Building things", record.Bio)
	assert.Equal(t, "/uploads/jamie.jpg", record.AvatarURL)

	// The settings blob carries everything except the flat columns.
	var settings domain.CardData
	require.NoError(t, json.Unmarshal(record.ThemeConfig, &settings))
	assert.Empty(t, settings.Name)
	assert.Empty(t, settings.Bio)
	assert.Empty(t, settings.ProfileImage)
	assert.Equal(t, "#10b981", settings.AccentColor)

	stored, err := db.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Jamie Rivera", stored.FullName)

	// Saving does not clear the draft.
	has, err := st.HasDraft(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestCardService_SaveProfileRejectsGuest(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()

	_, err := svc.SaveProfile(context.Background(), store.GuestIdentity)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestCardService_PublishNormalizesHandle(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	record, err := svc.Publish(ctx, "user-1", "  Jamie Rivera!  ")
	require.NoError(t, err)

	assert.Equal(t, "jamie-rivera", record.Handle)
	require.NotNil(t, record.PublishedAt)
	assert.True(t, record.IsPublished())
}

func TestCardService_PublishRejectsEmptyHandle(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()

	_, err := svc.Publish(context.Background(), "user-1", "!!!")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestCardService_PublishHandleConflict(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	_, err := svc.Publish(ctx, "user-1", "jamie")
	require.NoError(t, err)

	_, err = svc.Publish(ctx, "user-2", "jamie")
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)

	// Re-publishing your own handle is fine.
	_, err = svc.Publish(ctx, "user-1", "jamie")
	require.NoError(t, err)
}

func TestCardService_RepublishKeepsOriginalPublishedAt(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	first, err := svc.Publish(ctx, "user-1", "jamie")
	require.NoError(t, err)

	second, err := svc.Publish(ctx, "user-1", "jamie-v2")
	require.NoError(t, err)

	assert.Equal(t, "jamie-v2", second.Handle)
	assert.Equal(t, first.PublishedAt.Unix(), second.PublishedAt.Unix())
}

func TestCardService_GetPublicCard(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	name := "Jamie"
	_, err := svc.UpdateFields(ctx, "user-1", domain.CardPatch{Name: &name})
	require.NoError(t, err)
	_, err = svc.Publish(ctx, "user-1", "jamie")
	require.NoError(t, err)

	public, err := svc.GetPublicCard(ctx, "Jamie")
	require.NoError(t, err)

	assert.Equal(t, "jamie", public.Handle)
	assert.Equal(t, "Jamie", public.Card.Name)
	assert.Equal(t, "https://cards.example.com/jamie", public.PublicURL)
}

func TestCardService_GetPublicCardUnknownHandle(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()

	_, err := svc.GetPublicCard(context.Background(), "nobody")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCardService_UnpublishRemovesPublicCard(t *testing.T) {
	svc, _, db, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	_, err := svc.Publish(ctx, "user-1", "jamie")
	require.NoError(t, err)

	require.NoError(t, svc.Unpublish(ctx, "user-1"))

	_, err = svc.GetPublicCard(ctx, "jamie")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	// The handle is released; the saved card itself survives.
	record, err := db.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, record.Handle)
	assert.Nil(t, record.PublishedAt)

	// Another user can claim the freed handle.
	_, err = svc.Publish(ctx, "user-2", "jamie")
	require.NoError(t, err)
}

func TestCardService_UnpublishWithoutProfile(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()

	err := svc.Unpublish(context.Background(), "user-ghost")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCardService_QRCode(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()

	png, err := svc.QRCode("jamie", 256)
	require.NoError(t, err)

	require.NotEmpty(t, png)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}

func TestCardService_RebuildDirectory(t *testing.T) {
	svc, _, _, cleanup := setupCardTest(t, 20*time.Millisecond)
	defer cleanup()
	ctx := context.Background()

	_, err := svc.Publish(ctx, "user-1", "jamie")
	require.NoError(t, err)
	_, err = svc.Publish(ctx, "user-2", "casey")
	require.NoError(t, err)

	require.NoError(t, svc.RebuildDirectory(ctx))
}

func findSocialLink(doc domain.CardData, id string) (domain.SocialLink, bool) {
	for _, link := range doc.SocialLinks {
		if link.ID == id {
			return link, true
		}
	}
	return domain.SocialLink{}, false
}
