package templates

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkcardapp/linkcard-server/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuiltin_Presets(t *testing.T) {
	presets := Builtin()
	require.Len(t, presets, 6)

	ids := make([]string, 0, len(presets))
	for _, p := range presets {
		ids = append(ids, p.ID)
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Description)
		assert.NotEmpty(t, p.PreviewColor)
		require.NotNil(t, p.Config.Layout, "preset %s must set a layout", p.ID)
		require.NotNil(t, p.Config.Background, "preset %s must set a background", p.ID)
		// Presentation-only: presets never carry content fields.
		assert.Nil(t, p.Config.Name)
		assert.Nil(t, p.Config.Stories)
		assert.Nil(t, p.Config.SocialLinks)
	}

	assert.Equal(t, []string{
		"hologram-nexus",
		"brutalist-raw",
		"portfolio-pro",
		"terminal-dev",
		"vibrant-influence",
		"minimal-studio",
	}, ids)
}

func TestBuiltin_ReturnsFreshValues(t *testing.T) {
	first := Builtin()
	first[0].Name = "mutated"
	first[0].Config.Background.Gradient.Colors[0] = "#ffffff"

	second := Builtin()
	assert.Equal(t, "Holographic Nexus", second[0].Name)
	assert.Equal(t, "#000000", second[0].Config.Background.Gradient.Colors[0])
}

func TestNewRegistry_BuiltinOnly(t *testing.T) {
	r, err := NewRegistry("", testLogger())
	require.NoError(t, err)

	assert.Equal(t, 6, r.Count())

	tmpl, ok := r.Get("terminal-dev")
	require.True(t, ok)
	assert.Equal(t, "Developer Mode", tmpl.Name)
	assert.Equal(t, domain.LayoutTerminal, *tmpl.Config.Layout)

	_, ok = r.Get("no-such-template")
	assert.False(t, ok)
}

func TestNewRegistry_LoadsDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "neon.json", `{
		"id": "neon-wave",
		"name": "Neon Wave",
		"description": "Synthwave styling.",
		"previewColor": "#f0abfc",
		"config": {"accentColor": "#f0abfc", "layout": "bento"}
	}`)

	r, err := NewRegistry(dir, testLogger())
	require.NoError(t, err)

	assert.Equal(t, 7, r.Count())

	tmpl, ok := r.Get("neon-wave")
	require.True(t, ok)
	assert.Equal(t, "Neon Wave", tmpl.Name)
	require.NotNil(t, tmpl.Config.AccentColor)
	assert.Equal(t, "#f0abfc", *tmpl.Config.AccentColor)

	// Directory templates sort after built-ins.
	list := r.List()
	assert.Equal(t, "neon-wave", list[len(list)-1].ID)
}

func TestNewRegistry_DirectoryOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "override.json", `{
		"id": "minimal-studio",
		"name": "Minimal Studio (Custom)",
		"config": {"accentColor": "#0ea5e9"}
	}`)

	r, err := NewRegistry(dir, testLogger())
	require.NoError(t, err)

	// Override replaces the built-in, so the count stays the same.
	assert.Equal(t, 6, r.Count())

	tmpl, ok := r.Get("minimal-studio")
	require.True(t, ok)
	assert.Equal(t, "Minimal Studio (Custom)", tmpl.Name)

	// It keeps the built-in's position in the list.
	list := r.List()
	assert.Equal(t, "minimal-studio", list[5].ID)
	assert.Equal(t, "Minimal Studio (Custom)", list[5].Name)
}

func TestNewRegistry_SkipsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "broken.json", `{not json`)
	writeTemplate(t, dir, "no-id.json", `{"name": "missing id"}`)
	writeTemplate(t, dir, "notes.txt", `not a template`)
	writeTemplate(t, dir, "good.json", `{"id": "good-one"}`)

	r, err := NewRegistry(dir, testLogger())
	require.NoError(t, err)

	assert.Equal(t, 7, r.Count())
	_, ok := r.Get("good-one")
	assert.True(t, ok)
}

func TestRegistry_NameDefaultsToID(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "bare.json", `{"id": "bare-bones"}`)

	r, err := NewRegistry(dir, testLogger())
	require.NoError(t, err)

	tmpl, ok := r.Get("bare-bones")
	require.True(t, ok)
	assert.Equal(t, "bare-bones", tmpl.Name)
}

func TestRegistry_ApplyPresetPreservesContent(t *testing.T) {
	r, err := NewRegistry("", testLogger())
	require.NoError(t, err)

	tmpl, ok := r.Get("vibrant-influence")
	require.True(t, ok)

	card := domain.DefaultCard()
	card.Name = "Jamie"

	out := tmpl.Config.Apply(card)

	assert.Equal(t, "Jamie", out.Name)
	assert.Equal(t, card.Stories, out.Stories)
	assert.Equal(t, domain.LayoutBento, out.Layout)
	assert.Equal(t, "#f43f5e", out.AccentColor)
	assert.Equal(t, domain.BackgroundGradient, out.Background.Type)
}

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
