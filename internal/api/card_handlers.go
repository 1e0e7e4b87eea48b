package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/linkcardapp/linkcard-server/internal/domain"
	"github.com/linkcardapp/linkcard-server/internal/service"
)

func (s *Server) registerCardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCard",
		Method:      http.MethodGet,
		Path:        "/api/v1/card",
		Summary:     "Get working card",
		Description: "Returns the caller's working card document. Unauthenticated callers edit the shared guest card.",
		Tags:        []string{"Card"},
	}, s.handleGetCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCard",
		Method:      http.MethodPatch,
		Path:        "/api/v1/card",
		Summary:     "Update card fields",
		Description: "Applies a shallow merge of the provided fields onto the working card",
		Tags:        []string{"Card"},
	}, s.handleUpdateCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCardBackground",
		Method:      http.MethodPatch,
		Path:        "/api/v1/card/background",
		Summary:     "Update background",
		Tags:        []string{"Card"},
	}, s.handleUpdateBackground)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateSocialLink",
		Method:      http.MethodPatch,
		Path:        "/api/v1/card/social-links/{id}",
		Summary:     "Update a social link",
		Tags:        []string{"Card"},
	}, s.handleUpdateSocialLink)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateContactButton",
		Method:      http.MethodPatch,
		Path:        "/api/v1/card/contact-buttons/{id}",
		Summary:     "Update a contact button",
		Tags:        []string{"Card"},
	}, s.handleUpdateContactButton)

	huma.Register(s.api, huma.Operation{
		OperationID: "addStory",
		Method:      http.MethodPost,
		Path:        "/api/v1/card/stories",
		Summary:     "Add a story",
		Tags:        []string{"Card"},
	}, s.handleAddStory)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateStory",
		Method:      http.MethodPatch,
		Path:        "/api/v1/card/stories/{id}",
		Summary:     "Update a story",
		Tags:        []string{"Card"},
	}, s.handleUpdateStory)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeStory",
		Method:      http.MethodDelete,
		Path:        "/api/v1/card/stories/{id}",
		Summary:     "Remove a story",
		Tags:        []string{"Card"},
	}, s.handleRemoveStory)

	huma.Register(s.api, huma.Operation{
		OperationID: "addAchievement",
		Method:      http.MethodPost,
		Path:        "/api/v1/card/achievements",
		Summary:     "Add an achievement",
		Tags:        []string{"Card"},
	}, s.handleAddAchievement)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateAchievement",
		Method:      http.MethodPatch,
		Path:        "/api/v1/card/achievements/{id}",
		Summary:     "Update an achievement",
		Tags:        []string{"Card"},
	}, s.handleUpdateAchievement)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeAchievement",
		Method:      http.MethodDelete,
		Path:        "/api/v1/card/achievements/{id}",
		Summary:     "Remove an achievement",
		Tags:        []string{"Card"},
	}, s.handleRemoveAchievement)

	huma.Register(s.api, huma.Operation{
		OperationID: "addBadge",
		Method:      http.MethodPost,
		Path:        "/api/v1/card/badges",
		Summary:     "Add a badge",
		Tags:        []string{"Card"},
	}, s.handleAddBadge)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBadge",
		Method:      http.MethodPatch,
		Path:        "/api/v1/card/badges/{id}",
		Summary:     "Update a badge",
		Tags:        []string{"Card"},
	}, s.handleUpdateBadge)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeBadge",
		Method:      http.MethodDelete,
		Path:        "/api/v1/card/badges/{id}",
		Summary:     "Remove a badge",
		Tags:        []string{"Card"},
	}, s.handleRemoveBadge)

	huma.Register(s.api, huma.Operation{
		OperationID: "reorderSections",
		Method:      http.MethodPut,
		Path:        "/api/v1/card/sections/order",
		Summary:     "Reorder sections",
		Description: "Orders sections by the given IDs. Unknown IDs are ignored; missing sections keep their relative order at the end.",
		Tags:        []string{"Card"},
	}, s.handleReorderSections)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleSection",
		Method:      http.MethodPost,
		Path:        "/api/v1/card/sections/{id}/toggle",
		Summary:     "Toggle section visibility",
		Tags:        []string{"Card"},
	}, s.handleToggleSection)

	huma.Register(s.api, huma.Operation{
		OperationID: "applyTemplate",
		Method:      http.MethodPost,
		Path:        "/api/v1/card/template/{id}",
		Summary:     "Apply a template",
		Description: "Applies a template's theme settings while keeping the user's content",
		Tags:        []string{"Card"},
	}, s.handleApplyTemplate)

	huma.Register(s.api, huma.Operation{
		OperationID: "setCustomWidgets",
		Method:      http.MethodPut,
		Path:        "/api/v1/card/widgets",
		Summary:     "Replace custom widgets",
		Tags:        []string{"Card"},
	}, s.handleSetCustomWidgets)

	huma.Register(s.api, huma.Operation{
		OperationID: "resetCard",
		Method:      http.MethodPost,
		Path:        "/api/v1/card/reset",
		Summary:     "Reset working card",
		Description: "Discards the draft. Signed-in users fall back to their saved card, guests to the default card.",
		Tags:        []string{"Card"},
	}, s.handleResetCard)
}

// === DTOs ===

// CardOutput wraps a card document for Huma.
type CardOutput struct {
	Body domain.CardData
}

// CardPatchInput wraps a card field patch.
type CardPatchInput struct {
	Body domain.CardPatch
}

// BackgroundPatchInput wraps a background patch.
type BackgroundPatchInput struct {
	Body domain.BackgroundPatch
}

// SocialLinkUpdateInput wraps a social link update with its path ID.
type SocialLinkUpdateInput struct {
	ID   string `path:"id" doc:"Social link ID (catalog entry, e.g. instagram)"`
	Body service.SocialLinkUpdate
}

// ContactButtonUpdateInput wraps a contact button update with its path ID.
type ContactButtonUpdateInput struct {
	ID   string `path:"id" doc:"Contact button ID (catalog entry, e.g. email)"`
	Body service.ContactButtonUpdate
}

// StoryInput carries the client-supplied fields of a new story. The ID is
// assigned server-side and the media type defaults to image, so only the
// title is required.
type StoryInput struct {
	Body struct {
		Title     string           `json:"title" minLength:"1" doc:"Story title"`
		Image     string           `json:"image,omitempty" doc:"Image URL or upload path"`
		Video     string           `json:"video,omitempty" doc:"Video URL or upload path"`
		MediaType domain.MediaType `json:"mediaType,omitempty" enum:"image,video" doc:"Defaults to image"`
		Content   string           `json:"content,omitempty" doc:"Story body text"`
	}
}

// StoryUpdateInput wraps a story update with its path ID.
type StoryUpdateInput struct {
	ID   string `path:"id" doc:"Story ID"`
	Body service.StoryUpdate
}

// AchievementInput carries the client-supplied fields of a new achievement.
// The ID is assigned server-side.
type AchievementInput struct {
	Body struct {
		Label  string `json:"label" minLength:"1" doc:"Counter label"`
		Value  int    `json:"value,omitempty" doc:"Counter value"`
		Suffix string `json:"suffix,omitempty" doc:"Display suffix, e.g. +"`
		Icon   string `json:"icon,omitempty" doc:"Emoji or icon"`
	}
}

// AchievementUpdateInput wraps an achievement update with its path ID.
type AchievementUpdateInput struct {
	ID   string `path:"id" doc:"Achievement ID"`
	Body service.AchievementUpdate
}

// BadgeInput carries the client-supplied fields of a new badge. The ID is
// assigned server-side.
type BadgeInput struct {
	Body struct {
		Text  string `json:"text" minLength:"1" doc:"Badge text"`
		Color string `json:"color,omitempty" doc:"Badge color as a hex string"`
	}
}

// BadgeUpdateInput wraps a badge update with its path ID.
type BadgeUpdateInput struct {
	ID   string `path:"id" doc:"Badge ID"`
	Body service.BadgeUpdate
}

// IDInput carries a single path ID.
type IDInput struct {
	ID string `path:"id"`
}

// SectionOrderInput wraps the desired section order.
type SectionOrderInput struct {
	Body struct {
		SectionIDs []string `json:"section_ids" validate:"required" doc:"Section IDs in display order"`
	}
}

// WidgetsInput wraps the full custom widget list.
type WidgetsInput struct {
	Body struct {
		Widgets []domain.CustomWidget `json:"widgets" doc:"Complete widget list; replaces the current set"`
	}
}

// === Handlers ===

func (s *Server) handleGetCard(ctx context.Context, _ *struct{}) (*CardOutput, error) {
	doc, err := s.services.Card.Get(ctx, Identity(ctx))
	if err != nil {
		// The fallback document is still served when the saved profile
		// could not be read; the degradation is logged, not fatal.
		if !errors.Is(err, service.ErrProfileUnavailable) {
			return nil, err
		}
		s.logger.Warn("serving fallback card document", "error", err)
	}
	return &CardOutput{Body: doc}, nil
}

func (s *Server) handleUpdateCard(ctx context.Context, input *CardPatchInput) (*CardOutput, error) {
	doc, err := s.services.Card.UpdateFields(ctx, Identity(ctx), input.Body)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: doc}, nil
}

func (s *Server) handleUpdateBackground(ctx context.Context, input *BackgroundPatchInput) (*CardOutput, error) {
	doc, err := s.services.Card.UpdateBackground(ctx, Identity(ctx), input.Body)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: doc}, nil
}

func (s *Server) handleUpdateSocialLink(ctx context.Context, input *SocialLinkUpdateInput) (*CardOutput, error) {
	doc, err := s.services.Card.UpdateSocialLink(ctx, Identity(ctx), input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: doc}, nil
}

func (s *Server) handleUpdateContactButton(ctx context.Context, input *ContactButtonUpdateInput) (*CardOutput, error) {
	doc, err := s.services.Card.UpdateContactButton(ctx, Identity(ctx), input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: doc}, nil
}

func (s *Server) handleAddStory(ctx context.Context, input *StoryInput) (*CardOutput, error) {
	doc, err := s.services.Card.AddStory(ctx, Identity(ctx), domain.Story{
		Title:     input.Body.Title,
		Image:     input.Body.Image,
		Video:     input.Body.Video,
		MediaType: input.Body.MediaType,
		Content:   input.Body.Content,
	})
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: doc}, nil
}

func (s *Server) handleUpdateStory(ctx context.Context, input *StoryUpdateInput) (*CardOutput, error) {
	doc, err := s.services.Card.UpdateStory(ctx, Identity(ctx), input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: doc}, nil
}

func (s *Server) handleRemoveStory(ctx context.Context, input *IDInput) (*CardOutput, error) {
	doc, err := s.services.Card.RemoveStory(ctx, Identity(ctx), input.ID)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: doc}, nil
}

func (s *Server) handleAddAchievement(ctx context.Context, input *AchievementInput) (*CardOutput, error) {
	doc, err := s.services.Card.AddAchievement(ctx, Identity(ctx), domain.Achievement{
		Label:  input.Body.Label,
		Value:  input.Body.Value,
		Suffix: input.Body.Suffix,
		Icon:   input.Body.Icon,
	})
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: doc}, nil
}

func (s *Server) handleUpdateAchievement(ctx context.Context, input *AchievementUpdateInput) (*CardOutput, error) {
	doc, err := s.services.Card.UpdateAchievement(ctx, Identity(ctx), input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: doc}, nil
}

func (s *Server) handleRemoveAchievement(ctx context.Context, input *IDInput) (*CardOutput, error) {
	doc, err := s.services.Card.RemoveAchievement(ctx, Identity(ctx), input.ID)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: doc}, nil
}

func (s *Server) handleAddBadge(ctx context.Context, input *BadgeInput) (*CardOutput, error) {
	doc, err := s.services.Card.AddBadge(ctx, Identity(ctx), domain.Badge{
		Text:  input.Body.Text,
		Color: input.Body.Color,
	})
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: doc}, nil
}

func (s *Server) handleUpdateBadge(ctx context.Context, input *BadgeUpdateInput) (*CardOutput, error) {
	doc, err := s.services.Card.UpdateBadge(ctx, Identity(ctx), input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: doc}, nil
}

func (s *Server) handleRemoveBadge(ctx context.Context, input *IDInput) (*CardOutput, error) {
	doc, err := s.services.Card.RemoveBadge(ctx, Identity(ctx), input.ID)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: doc}, nil
}

func (s *Server) handleReorderSections(ctx context.Context, input *SectionOrderInput) (*CardOutput, error) {
	doc, err := s.services.Card.ReorderSections(ctx, Identity(ctx), input.Body.SectionIDs)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: doc}, nil
}

func (s *Server) handleToggleSection(ctx context.Context, input *IDInput) (*CardOutput, error) {
	doc, err := s.services.Card.ToggleSection(ctx, Identity(ctx), input.ID)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: doc}, nil
}

func (s *Server) handleApplyTemplate(ctx context.Context, input *IDInput) (*CardOutput, error) {
	doc, err := s.services.Card.ApplyTemplate(ctx, Identity(ctx), input.ID)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: doc}, nil
}

func (s *Server) handleSetCustomWidgets(ctx context.Context, input *WidgetsInput) (*CardOutput, error) {
	doc, err := s.services.Card.SetCustomWidgets(ctx, Identity(ctx), input.Body.Widgets)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: doc}, nil
}

func (s *Server) handleResetCard(ctx context.Context, _ *struct{}) (*CardOutput, error) {
	doc, err := s.services.Card.Reset(ctx, Identity(ctx))
	if err != nil {
		if !errors.Is(err, service.ErrProfileUnavailable) {
			return nil, err
		}
		s.logger.Warn("serving fallback card document", "error", err)
	}
	return &CardOutput{Body: doc}, nil
}
