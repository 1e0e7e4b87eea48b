// Package domain contains the core card document model.
//
// CardData is the root document a user edits: identity fields, presentation
// configuration, fixed catalogs (social links, contact buttons, sections) and
// user-created collections (stories, achievements, badges, custom widgets).
// JSON tags are camelCase because the document round-trips through drafts,
// the settings blob, and the editor client in that shape.
package domain

// BackgroundType selects which background variant is active.
type BackgroundType string

const (
	BackgroundSolid     BackgroundType = "solid"
	BackgroundGradient  BackgroundType = "gradient"
	BackgroundVideo     BackgroundType = "video"
	BackgroundParticles BackgroundType = "particles"
)

// ParticlePreset names a particle animation preset.
type ParticlePreset string

const (
	ParticlesNone     ParticlePreset = "none"
	ParticlesDefault  ParticlePreset = "default"
	ParticlesSnow     ParticlePreset = "snow"
	ParticlesBubbles  ParticlePreset = "bubbles"
	ParticlesStars    ParticlePreset = "stars"
	ParticlesConfetti ParticlePreset = "confetti"
)

// ThemeMode is the light/dark preference for the rendered card.
type ThemeMode string

const (
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
	ThemeAuto  ThemeMode = "auto"
)

// IconAnimation is the hover animation applied to social icons.
type IconAnimation string

const (
	IconAnimationNone  IconAnimation = "none"
	IconAnimationPulse IconAnimation = "pulse"
	IconAnimationGlow  IconAnimation = "glow"
	IconAnimationLift  IconAnimation = "lift"
	IconAnimationShake IconAnimation = "shake"
)

// IconStyle is the shape of social icon tiles.
type IconStyle string

const (
	IconRounded IconStyle = "rounded"
	IconSquare  IconStyle = "square"
	IconPill    IconStyle = "pill"
)

// Layout names a card rendering layout.
type Layout string

const (
	LayoutClassic   Layout = "classic"
	LayoutHologram  Layout = "hologram"
	LayoutBrutalist Layout = "brutalist"
	LayoutPortfolio Layout = "portfolio"
	LayoutTerminal  Layout = "terminal"
	LayoutBento     Layout = "bento"
	LayoutList      Layout = "list"
)

// SocialPlatform identifies an entry in the fixed social link catalog.
// The catalog membership never changes; entries are only toggled and URL-edited.
type SocialPlatform string

const (
	PlatformFacebook  SocialPlatform = "facebook"
	PlatformInstagram SocialPlatform = "instagram"
	PlatformLinkedIn  SocialPlatform = "linkedin"
	PlatformTwitter   SocialPlatform = "twitter"
	PlatformSnapchat  SocialPlatform = "snapchat"
	PlatformTikTok    SocialPlatform = "tiktok"
	PlatformYouTube   SocialPlatform = "youtube"
	PlatformMaps      SocialPlatform = "maps"
	PlatformWhatsApp  SocialPlatform = "whatsapp"
	PlatformTelegram  SocialPlatform = "telegram"
	PlatformPinterest SocialPlatform = "pinterest"
	PlatformMedium    SocialPlatform = "medium"
	PlatformGitHub    SocialPlatform = "github"
	PlatformDribbble  SocialPlatform = "dribbble"
	PlatformDiscord   SocialPlatform = "discord"
	PlatformSpotify   SocialPlatform = "spotify"
)

// SocialPlatforms is the full catalog in display order.
var SocialPlatforms = []SocialPlatform{
	PlatformFacebook, PlatformInstagram, PlatformLinkedIn, PlatformTwitter,
	PlatformSnapchat, PlatformTikTok, PlatformYouTube, PlatformMaps,
	PlatformWhatsApp, PlatformTelegram, PlatformPinterest, PlatformMedium,
	PlatformGitHub, PlatformDribbble, PlatformDiscord, PlatformSpotify,
}

// ContactType identifies an entry in the fixed contact button catalog.
type ContactType string

const (
	ContactEmail   ContactType = "email"
	ContactPhone   ContactType = "phone"
	ContactWebsite ContactType = "website"
)

// SectionType names a renderable region of the card. Exactly one section
// exists per type; only enablement and order are mutable.
type SectionType string

const (
	SectionBio           SectionType = "bio"
	SectionSocial        SectionType = "social"
	SectionContact       SectionType = "contact"
	SectionAchievements  SectionType = "achievements"
	SectionStories       SectionType = "stories"
	SectionBadges        SectionType = "badges"
	SectionCustomWidgets SectionType = "custom_widgets"
)

// SocialLink is one catalog entry for a social platform.
type SocialLink struct {
	ID       string         `json:"id"`
	Platform SocialPlatform `json:"platform"`
	URL      string         `json:"url"`
	Enabled  bool           `json:"enabled"`
}

// ContactButton is one catalog entry for a contact channel.
type ContactButton struct {
	ID      string      `json:"id"`
	Type    ContactType `json:"type"`
	Label   string      `json:"label"`
	Value   string      `json:"value"`
	Enabled bool        `json:"enabled"`
}

// MediaType discriminates story media.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Story is a user-created highlight tile.
type Story struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Image     string    `json:"image"`
	Video     string    `json:"video,omitempty"`
	MediaType MediaType `json:"mediaType"`
	Content   string    `json:"content,omitempty"`
}

// Achievement is a user-created stat counter.
type Achievement struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Value  int    `json:"value"`
	Suffix string `json:"suffix,omitempty"`
	Icon   string `json:"icon,omitempty"`
}

// Badge is a user-created colored label.
type Badge struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Color string `json:"color"`
}

// Section is one entry of the fixed section catalog.
type Section struct {
	ID      string      `json:"id"`
	Type    SectionType `json:"type"`
	Enabled bool        `json:"enabled"`
	Order   int         `json:"order"`
}

// GradientConfig is the gradient background variant.
type GradientConfig struct {
	Direction int      `json:"direction"` // degrees
	Colors    []string `json:"colors"`
}

// BackgroundConfig is the card background. Type selects the authoritative
// variant; the other fields are retained so switching back is lossless.
type BackgroundConfig struct {
	Type           BackgroundType `json:"type"`
	SolidColor     string         `json:"solidColor"`
	Gradient       GradientConfig `json:"gradient"`
	VideoURL       string         `json:"videoUrl"`
	ParticlePreset ParticlePreset `json:"particlePreset"`
}

// BackgroundPatch is a partial update to BackgroundConfig. Nil fields are
// left untouched on apply.
type BackgroundPatch struct {
	Type           *BackgroundType `json:"type,omitempty"`
	SolidColor     *string         `json:"solidColor,omitempty"`
	Gradient       *GradientConfig `json:"gradient,omitempty"`
	VideoURL       *string         `json:"videoUrl,omitempty"`
	ParticlePreset *ParticlePreset `json:"particlePreset,omitempty"`
}

// Apply merges the patch into a copy of bg and returns it.
func (p BackgroundPatch) Apply(bg BackgroundConfig) BackgroundConfig {
	if p.Type != nil {
		bg.Type = *p.Type
	}
	if p.SolidColor != nil {
		bg.SolidColor = *p.SolidColor
	}
	if p.Gradient != nil {
		g := *p.Gradient
		g.Colors = append([]string(nil), g.Colors...)
		bg.Gradient = g
	}
	if p.VideoURL != nil {
		bg.VideoURL = *p.VideoURL
	}
	if p.ParticlePreset != nil {
		bg.ParticlePreset = *p.ParticlePreset
	}
	return bg
}

// CardData is the full card document.
type CardData struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	Bio          string `json:"bio"`
	ProfileImage string `json:"profileImage,omitempty"`
	CoverImage   string `json:"coverImage,omitempty"`

	Background    BackgroundConfig `json:"background"`
	ThemeMode     ThemeMode        `json:"themeMode"`
	AccentColor   string           `json:"accentColor"`
	FontFamily    string           `json:"fontFamily"`
	IconAnimation IconAnimation    `json:"iconAnimation"`
	IconStyle     IconStyle        `json:"iconStyle"`
	Layout        Layout           `json:"layout"`
	CustomDomain  string           `json:"customDomain,omitempty"`

	SocialLinks    []SocialLink    `json:"socialLinks"`
	ContactButtons []ContactButton `json:"contactButtons"`
	Stories        []Story         `json:"stories"`
	Achievements   []Achievement   `json:"achievements"`
	Badges         []Badge         `json:"badges"`
	Sections       []Section       `json:"sections"`
	CustomWidgets  []CustomWidget  `json:"customWidgets"`
}

// Clone returns a deep copy of the document. Mutation operations derive a
// new document from the previous one; callers never receive aliased slices.
func (c CardData) Clone() CardData {
	out := c
	out.Background.Gradient.Colors = append([]string(nil), c.Background.Gradient.Colors...)
	out.SocialLinks = append([]SocialLink(nil), c.SocialLinks...)
	out.ContactButtons = append([]ContactButton(nil), c.ContactButtons...)
	out.Stories = append([]Story(nil), c.Stories...)
	out.Achievements = append([]Achievement(nil), c.Achievements...)
	out.Badges = append([]Badge(nil), c.Badges...)
	out.Sections = append([]Section(nil), c.Sections...)
	out.CustomWidgets = make([]CustomWidget, len(c.CustomWidgets))
	for i, w := range c.CustomWidgets {
		out.CustomWidgets[i] = w.Clone()
	}
	return out
}

// SectionByType returns the section entry for the given type, if present.
func (c CardData) SectionByType(t SectionType) (Section, bool) {
	for _, s := range c.Sections {
		if s.Type == t {
			return s, true
		}
	}
	return Section{}, false
}
