// Package templates provides the card template registry: built-in
// presentation presets plus an optional directory of JSON template files
// that is watched for changes and hot-reloaded.
package templates

import (
	"github.com/linkcardapp/linkcard-server/internal/domain"
)

func strPtr(s string) *string                          { return &s }
func themePtr(m domain.ThemeMode) *domain.ThemeMode    { return &m }
func layoutPtr(l domain.Layout) *domain.Layout         { return &l }
func stylePtr(s domain.IconStyle) *domain.IconStyle    { return &s }
func animPtr(a domain.IconAnimation) *domain.IconAnimation {
	return &a
}

// Builtin returns the built-in template presets in display order.
// Each call returns fresh values so callers can't mutate the catalog.
func Builtin() []domain.Template {
	return []domain.Template{
		{
			ID:           "hologram-nexus",
			Name:         "Holographic Nexus",
			Description:  "Ultra-futuristic 3D floating layout with glowing effects.",
			PreviewColor: "#a855f7",
			Config: domain.CardPatch{
				AccentColor:   strPtr("#c084fc"),
				FontFamily:    strPtr("Outfit"),
				ThemeMode:     themePtr(domain.ThemeDark),
				Layout:        layoutPtr(domain.LayoutHologram),
				IconStyle:     stylePtr(domain.IconRounded),
				IconAnimation: animPtr(domain.IconAnimationGlow),
				Background: &domain.BackgroundConfig{
					Type:       domain.BackgroundParticles,
					SolidColor: "#000000",
					Gradient: domain.GradientConfig{
						Direction: 180,
						Colors:    []string{"#000000", "#2e1065"},
					},
					ParticlePreset: domain.ParticlesStars,
				},
			},
		},
		{
			ID:           "brutalist-raw",
			Name:         "Raw Brutalist",
			Description:  "Bold, high-contrast design inspired by modern art.",
			PreviewColor: "#facc15",
			Config: domain.CardPatch{
				AccentColor:   strPtr("#facc15"),
				FontFamily:    strPtr("Inter"),
				ThemeMode:     themePtr(domain.ThemeLight),
				Layout:        layoutPtr(domain.LayoutBrutalist),
				IconStyle:     stylePtr(domain.IconSquare),
				IconAnimation: animPtr(domain.IconAnimationNone),
				Background: &domain.BackgroundConfig{
					Type:       domain.BackgroundSolid,
					SolidColor: "#ffffff",
					Gradient: domain.GradientConfig{
						Direction: 180,
						Colors:    []string{"#ffffff", "#f1f5f9"},
					},
					ParticlePreset: domain.ParticlesNone,
				},
			},
		},
		{
			ID:           "portfolio-pro",
			Name:         "Executive Portfolio",
			Description:  "Professional sidebar layout for executives and creators.",
			PreviewColor: "#1e293b",
			Config: domain.CardPatch{
				AccentColor:   strPtr("#3b82f6"),
				FontFamily:    strPtr("Inter"),
				ThemeMode:     themePtr(domain.ThemeDark),
				Layout:        layoutPtr(domain.LayoutPortfolio),
				IconStyle:     stylePtr(domain.IconRounded),
				IconAnimation: animPtr(domain.IconAnimationLift),
				Background: &domain.BackgroundConfig{
					Type:       domain.BackgroundGradient,
					SolidColor: "#0f172a",
					Gradient: domain.GradientConfig{
						Direction: 135,
						Colors:    []string{"#0f172a", "#1e293b", "#334155"},
					},
					ParticlePreset: domain.ParticlesNone,
				},
			},
		},
		{
			ID:           "terminal-dev",
			Name:         "Developer Mode",
			Description:  "Interactive code editor style for developers.",
			PreviewColor: "#000000",
			Config: domain.CardPatch{
				AccentColor:   strPtr("#22d3ee"),
				FontFamily:    strPtr("JetBrains Mono"),
				ThemeMode:     themePtr(domain.ThemeDark),
				Layout:        layoutPtr(domain.LayoutTerminal),
				IconStyle:     stylePtr(domain.IconSquare),
				IconAnimation: animPtr(domain.IconAnimationGlow),
				Background: &domain.BackgroundConfig{
					Type:       domain.BackgroundParticles,
					SolidColor: "#000000",
					Gradient: domain.GradientConfig{
						Direction: 180,
						Colors:    []string{"#000000", "#0f172a"},
					},
					ParticlePreset: domain.ParticlesStars,
				},
			},
		},
		{
			ID:           "vibrant-influence",
			Name:         "Sunset Influence",
			Description:  "Vibrant and energetic, perfect for creators.",
			PreviewColor: "#ec4899",
			Config: domain.CardPatch{
				AccentColor:   strPtr("#f43f5e"),
				FontFamily:    strPtr("Outfit"),
				ThemeMode:     themePtr(domain.ThemeDark),
				Layout:        layoutPtr(domain.LayoutBento),
				IconStyle:     stylePtr(domain.IconPill),
				IconAnimation: animPtr(domain.IconAnimationPulse),
				Background: &domain.BackgroundConfig{
					Type:       domain.BackgroundGradient,
					SolidColor: "#831843",
					Gradient: domain.GradientConfig{
						Direction: 45,
						Colors:    []string{"#f43f5e", "#ec4899", "#d946ef"},
					},
					ParticlePreset: domain.ParticlesDefault,
				},
			},
		},
		{
			ID:           "minimal-studio",
			Name:         "Minimalist Studio",
			Description:  "Clean, light, and focused on content.",
			PreviewColor: "#f8fafc",
			Config: domain.CardPatch{
				AccentColor:   strPtr("#1e293b"),
				FontFamily:    strPtr("Instrument Sans"),
				ThemeMode:     themePtr(domain.ThemeLight),
				Layout:        layoutPtr(domain.LayoutList),
				IconStyle:     stylePtr(domain.IconSquare),
				IconAnimation: animPtr(domain.IconAnimationNone),
				Background: &domain.BackgroundConfig{
					Type:       domain.BackgroundSolid,
					SolidColor: "#f8fafc",
					Gradient: domain.GradientConfig{
						Direction: 180,
						Colors:    []string{"#f8fafc", "#f1f5f9"},
					},
					ParticlePreset: domain.ParticlesNone,
				},
			},
		},
	}
}
