package domain

import "strconv"

// DefaultCard returns the starter document used when an identity has neither
// a draft nor a saved profile. The full social and contact catalogs are
// always present, so a brand-new document is never partially loaded.
func DefaultCard() CardData {
	return CardData{
		Name:         "Alex Johnson",
		Title:        "Digital Creator & Designer",
		Bio:          "Passionate about creating beautiful digital experiences. Let's connect and build something amazing together! ✨",
		ProfileImage: "",
		Background: BackgroundConfig{
			Type:       BackgroundGradient,
			SolidColor: "#6366f1",
			Gradient: GradientConfig{
				Direction: 135,
				Colors:    []string{"#6366f1", "#a855f7", "#ec4899"},
			},
			VideoURL:       "",
			ParticlePreset: ParticlesDefault,
		},
		ThemeMode:     ThemeDark,
		AccentColor:   "#a855f7",
		FontFamily:    "Inter",
		IconAnimation: IconAnimationLift,
		IconStyle:     IconRounded,
		Layout:        LayoutClassic,
		SocialLinks:   defaultSocialLinks(),
		ContactButtons: []ContactButton{
			{ID: "1", Type: ContactEmail, Label: "Email Me", Value: "", Enabled: true},
			{ID: "2", Type: ContactPhone, Label: "Call Me", Value: "", Enabled: false},
			{ID: "3", Type: ContactWebsite, Label: "Visit Website", Value: "", Enabled: true},
		},
		Stories: []Story{
			{ID: "1", Title: "Latest Work", Image: "https://images.unsplash.com/photo-1618005182384-a83a8bd57fbe?w=200&h=200&fit=crop", MediaType: MediaImage, Content: "Check out my latest design project!"},
			{ID: "2", Title: "Behind Scenes", Image: "https://images.unsplash.com/photo-1558618666-fcd25c85cd64?w=200&h=200&fit=crop", MediaType: MediaImage, Content: "A peek into my creative process"},
			{ID: "3", Title: "New Project", Image: "https://images.unsplash.com/photo-1633356122544-f134324a6cee?w=200&h=200&fit=crop", MediaType: MediaImage, Content: "Coming soon!"},
		},
		Achievements: []Achievement{
			{ID: "1", Label: "Followers", Value: 12500, Suffix: "+", Icon: "\U0001F465"},
			{ID: "2", Label: "Projects", Value: 248, Icon: "\U0001F4BC"},
			{ID: "3", Label: "Awards", Value: 15, Icon: "\U0001F3C6"},
		},
		Badges: []Badge{
			{ID: "1", Text: "Pro", Color: "#6366f1"},
			{ID: "2", Text: "Designer", Color: "#a855f7"},
			{ID: "3", Text: "Verified", Color: "#10b981"},
		},
		Sections: []Section{
			{ID: "1", Type: SectionBio, Enabled: true, Order: 0},
			{ID: "2", Type: SectionSocial, Enabled: true, Order: 1},
			{ID: "3", Type: SectionContact, Enabled: true, Order: 2},
			{ID: "4", Type: SectionAchievements, Enabled: true, Order: 3},
			{ID: "5", Type: SectionStories, Enabled: true, Order: 4},
			{ID: "6", Type: SectionBadges, Enabled: true, Order: 5},
			{ID: "7", Type: SectionCustomWidgets, Enabled: false, Order: 6},
		},
		CustomWidgets: []CustomWidget{},
	}
}

func defaultSocialLinks() []SocialLink {
	enabled := map[SocialPlatform]bool{
		PlatformInstagram: true,
		PlatformLinkedIn:  true,
		PlatformTwitter:   true,
		PlatformGitHub:    true,
	}
	links := make([]SocialLink, len(SocialPlatforms))
	for i, p := range SocialPlatforms {
		links[i] = SocialLink{
			ID:       strconv.Itoa(i + 1),
			Platform: p,
			URL:      "",
			Enabled:  enabled[p],
		}
	}
	return links
}
