package domain

// CardPatch is a partial CardData applied by shallow merge: each non-nil
// field overwrites the corresponding top-level field wholesale, absent
// fields are untouched. Templates use it to swap presentation without
// touching user content.
type CardPatch struct {
	Name         *string `json:"name,omitempty"`
	Title        *string `json:"title,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	ProfileImage *string `json:"profileImage,omitempty"`
	CoverImage   *string `json:"coverImage,omitempty"`

	Background    *BackgroundConfig `json:"background,omitempty"`
	ThemeMode     *ThemeMode        `json:"themeMode,omitempty"`
	AccentColor   *string           `json:"accentColor,omitempty"`
	FontFamily    *string           `json:"fontFamily,omitempty"`
	IconAnimation *IconAnimation    `json:"iconAnimation,omitempty"`
	IconStyle     *IconStyle        `json:"iconStyle,omitempty"`
	Layout        *Layout           `json:"layout,omitempty"`
	CustomDomain  *string           `json:"customDomain,omitempty"`

	SocialLinks    []SocialLink    `json:"socialLinks,omitempty"`
	ContactButtons []ContactButton `json:"contactButtons,omitempty"`
	Stories        []Story         `json:"stories,omitempty"`
	Achievements   []Achievement   `json:"achievements,omitempty"`
	Badges         []Badge         `json:"badges,omitempty"`
	Sections       []Section       `json:"sections,omitempty"`
	CustomWidgets  []CustomWidget  `json:"customWidgets,omitempty"`
}

// Apply shallow-merges the patch over a copy of the document and returns it.
func (p CardPatch) Apply(c CardData) CardData {
	out := c.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Bio != nil {
		out.Bio = *p.Bio
	}
	if p.ProfileImage != nil {
		out.ProfileImage = *p.ProfileImage
	}
	if p.CoverImage != nil {
		out.CoverImage = *p.CoverImage
	}
	if p.Background != nil {
		bg := *p.Background
		bg.Gradient.Colors = append([]string(nil), bg.Gradient.Colors...)
		out.Background = bg
	}
	if p.ThemeMode != nil {
		out.ThemeMode = *p.ThemeMode
	}
	if p.AccentColor != nil {
		out.AccentColor = *p.AccentColor
	}
	if p.FontFamily != nil {
		out.FontFamily = *p.FontFamily
	}
	if p.IconAnimation != nil {
		out.IconAnimation = *p.IconAnimation
	}
	if p.IconStyle != nil {
		out.IconStyle = *p.IconStyle
	}
	if p.Layout != nil {
		out.Layout = *p.Layout
	}
	if p.CustomDomain != nil {
		out.CustomDomain = *p.CustomDomain
	}
	if p.SocialLinks != nil {
		out.SocialLinks = append([]SocialLink(nil), p.SocialLinks...)
	}
	if p.ContactButtons != nil {
		out.ContactButtons = append([]ContactButton(nil), p.ContactButtons...)
	}
	if p.Stories != nil {
		out.Stories = append([]Story(nil), p.Stories...)
	}
	if p.Achievements != nil {
		out.Achievements = append([]Achievement(nil), p.Achievements...)
	}
	if p.Badges != nil {
		out.Badges = append([]Badge(nil), p.Badges...)
	}
	if p.Sections != nil {
		out.Sections = append([]Section(nil), p.Sections...)
	}
	if p.CustomWidgets != nil {
		out.CustomWidgets = make([]CustomWidget, len(p.CustomWidgets))
		for i, w := range p.CustomWidgets {
			out.CustomWidgets[i] = w.Clone()
		}
	}
	return out
}

// Template is a named presentation preset.
type Template struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	PreviewColor string    `json:"previewColor"`
	Config       CardPatch `json:"config"`
}
